// Package orchestrator sequences the triage pipeline: raw payload in,
// canonical alert out, with a tracking record created, commented, or
// skipped along the way. The core stages (parsing, similarity,
// deduplication) are pure and stateless, so the orchestrator may be
// driven concurrently without coordination.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/oncallops/triage/internal/dedup"
	"github.com/oncallops/triage/internal/investigator"
	"github.com/oncallops/triage/internal/parser"
	"github.com/oncallops/triage/internal/types"
)

// Action is the terminal outcome for one processed alert
type Action string

const (
	// ActionCreated means a new tracking record was filed
	ActionCreated Action = "created"

	// ActionDuplicate means the alert matched an existing record, which
	// received a comment instead of a new filing
	ActionDuplicate Action = "duplicate"

	// ActionSkipped means a record for this exact alert ID already
	// exists (webhook redelivery)
	ActionSkipped Action = "skipped"
)

// Outcome reports what the pipeline did with one alert
type Outcome struct {
	Alert  *types.Alert `json:"alert"`
	Action Action       `json:"action"`

	// IssueNumber is the tracking record created or commented on
	IssueNumber int `json:"issue_number,omitempty"`

	// Match is the best duplicate match, set when Action is duplicate
	Match *dedup.DuplicateMatch `json:"match,omitempty"`

	// Investigation is the AI result for newly created records, when
	// investigation is enabled and succeeded
	Investigation *investigator.Result `json:"investigation,omitempty"`
}

// IssueWriter is the write side of the tracking store
type IssueWriter interface {
	CreateIssue(ctx context.Context, title, body string, labels []string) (int, error)
	AddComment(ctx context.Context, number int, author, body string) error
}

// AlertInvestigator runs an AI investigation for a newly filed alert
type AlertInvestigator interface {
	Investigate(ctx context.Context, alert *types.Alert) (*investigator.Result, error)
}

// commentAuthor signs tracking-record comments written by the pipeline
const commentAuthor = "triage-bot"

// Pipeline wires the parser registry, duplicate detector, tracking
// store, and optional investigator into one Process call.
type Pipeline struct {
	registry      *parser.Registry
	detector      dedup.Detector
	writer        IssueWriter
	investigator  AlertInvestigator
	trackingLabel string
	log           zerolog.Logger
}

// New creates a pipeline. investigator may be nil to disable AI
// investigation entirely.
func New(registry *parser.Registry, detector dedup.Detector, writer IssueWriter, inv AlertInvestigator, trackingLabel string, log zerolog.Logger) *Pipeline {
	return &Pipeline{
		registry:      registry,
		detector:      detector,
		writer:        writer,
		investigator:  inv,
		trackingLabel: trackingLabel,
		log:           log,
	}
}

// Process runs one raw webhook payload through the full pipeline.
// format is a source tag or "auto". Failures abort this alert only and
// carry the failing stage in the error.
func (p *Pipeline) Process(ctx context.Context, raw []byte, format string) (*Outcome, error) {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		alertsFailed.WithLabelValues("decode").Inc()
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}

	alert, err := p.registry.Normalize(payload, format)
	if err != nil {
		alertsFailed.WithLabelValues("normalize").Inc()
		return nil, fmt.Errorf("normalization failed: %w", err)
	}
	alertsReceived.WithLabelValues(string(alert.Source)).Inc()

	log := p.log.With().
		Str("source", string(alert.Source)).
		Str("alert_id", alert.ID).
		Str("severity", string(alert.Severity)).
		Logger()

	processed, err := p.detector.IsAlertProcessed(ctx, alert)
	if err != nil {
		alertsFailed.WithLabelValues("dedup").Inc()
		return nil, fmt.Errorf("processed-alert check failed: %w", err)
	}
	if processed {
		log.Info().Msg("alert already tracked, skipping redelivery")
		alertOutcomes.WithLabelValues(string(ActionSkipped)).Inc()
		return &Outcome{Alert: alert, Action: ActionSkipped}, nil
	}

	matches, err := p.detector.FindDuplicates(ctx, alert)
	if err != nil {
		alertsFailed.WithLabelValues("dedup").Inc()
		return nil, fmt.Errorf("duplicate detection failed: %w", err)
	}
	if len(matches) > 0 {
		best := matches[0]
		comment := fmt.Sprintf("Duplicate alert received from %s (id `%s`), similarity %.2f.",
			alert.Source, alert.ID, best.Similarity)
		if err := p.writer.AddComment(ctx, best.Number, commentAuthor, comment); err != nil {
			alertsFailed.WithLabelValues("tracker").Inc()
			return nil, fmt.Errorf("failed to comment on issue %d: %w", best.Number, err)
		}
		log.Info().Int("issue", best.Number).Float64("similarity", best.Similarity).
			Msg("alert deduplicated against existing issue")
		alertOutcomes.WithLabelValues(string(ActionDuplicate)).Inc()
		return &Outcome{Alert: alert, Action: ActionDuplicate, IssueNumber: best.Number, Match: &best}, nil
	}

	number, err := p.writer.CreateIssue(ctx, issueTitle(alert), renderIssueBody(alert), p.labels(alert))
	if err != nil {
		alertsFailed.WithLabelValues("tracker").Inc()
		return nil, fmt.Errorf("failed to create tracking issue: %w", err)
	}
	log.Info().Int("issue", number).Msg("tracking issue created")
	alertOutcomes.WithLabelValues(string(ActionCreated)).Inc()

	outcome := &Outcome{Alert: alert, Action: ActionCreated, IssueNumber: number}

	if p.investigator != nil {
		result, invErr := p.investigator.Investigate(ctx, alert)
		if invErr != nil {
			// The record exists; a failed investigation must not undo
			// the filing. Surface it on the record and in the log.
			log.Error().Err(invErr).Int("issue", number).Msg("investigation failed")
			_ = p.writer.AddComment(ctx, number, commentAuthor,
				fmt.Sprintf("Investigation failed: %v", invErr))
			return outcome, nil
		}
		investigationSeconds.Observe(result.Elapsed.Seconds())
		comment := fmt.Sprintf("## Investigation %s\n\n%s", result.RunID, result.Summary)
		if err := p.writer.AddComment(ctx, number, commentAuthor, comment); err != nil {
			log.Error().Err(err).Int("issue", number).Msg("failed to record investigation result")
			return outcome, nil
		}
		outcome.Investigation = result
	}

	return outcome, nil
}

func (p *Pipeline) labels(alert *types.Alert) []string {
	return []string{p.trackingLabel, string(alert.Source), string(alert.Severity)}
}

// issueTitle embeds the source-native alert ID so the exact-match
// idempotency check can find it verbatim.
func issueTitle(alert *types.Alert) string {
	return fmt.Sprintf("[%s] %s (%s)", alert.Severity, alert.Title, alert.ID)
}

// renderIssueBody lays the alert out as markdown. The stack trace goes
// into a fenced code block: that is the shape the duplicate detector's
// composite scoring extracts from candidate bodies.
func renderIssueBody(alert *types.Alert) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**Source:** %s\n", alert.Source)
	fmt.Fprintf(&sb, "**Alert ID:** `%s`\n", alert.ID)
	fmt.Fprintf(&sb, "**Severity:** %s\n", alert.Severity)
	if alert.Service != "" {
		fmt.Fprintf(&sb, "**Service:** %s\n", alert.Service)
	}
	fmt.Fprintf(&sb, "**Timestamp:** %s\n", alert.Timestamp)
	if alert.URL != "" {
		fmt.Fprintf(&sb, "**Link:** %s\n", alert.URL)
	}

	fmt.Fprintf(&sb, "\n## Description\n\n%s\n", alert.Description)

	if alert.StackTrace != "" {
		fmt.Fprintf(&sb, "\n## Stack trace\n\n```\n%s\n```\n", alert.StackTrace)
	}

	if len(alert.Tags) > 0 {
		sb.WriteString("\n## Tags\n\n")
		for k, v := range alert.Tags {
			if v == "" {
				fmt.Fprintf(&sb, "- %s\n", k)
			} else {
				fmt.Fprintf(&sb, "- %s: %s\n", k, v)
			}
		}
	}
	return sb.String()
}
