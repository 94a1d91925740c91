package dedup

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/oncallops/triage/internal/similarity"
	"github.com/oncallops/triage/internal/types"
)

// LexicalDetector implements Detector with the weighted lexical
// similarity blend. It is stateless: each call fetches a fresh
// candidate batch and holds nothing between invocations, so concurrent
// use by the orchestrator needs no locking here.
type LexicalDetector struct {
	lister IssueLister
	config Config
}

// NewLexicalDetector creates a detector backed by the given
// record-listing capability.
func NewLexicalDetector(lister IssueLister, config Config) *LexicalDetector {
	return &LexicalDetector{
		lister: lister,
		config: config,
	}
}

// FindDuplicates implements Detector
func (d *LexicalDetector) FindDuplicates(ctx context.Context, alert *types.Alert) ([]DuplicateMatch, error) {
	if !d.config.Enabled {
		return []DuplicateMatch{}, nil
	}

	candidates, err := d.candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list duplicate candidates: %w", err)
	}

	var matches []DuplicateMatch
	for _, issue := range candidates {
		score := d.compositeSimilarity(alert, issue)
		if score >= d.config.Threshold {
			matches = append(matches, DuplicateMatch{
				Number:     issue.Number,
				Title:      issue.Title,
				Similarity: score,
			})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if matches == nil {
		matches = []DuplicateMatch{}
	}
	return matches, nil
}

// IsAlertProcessed implements Detector
func (d *LexicalDetector) IsAlertProcessed(ctx context.Context, alert *types.Alert) (bool, error) {
	if !d.config.Enabled {
		return false, nil
	}

	candidates, err := d.candidates(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list processed-alert candidates: %w", err)
	}

	for _, issue := range candidates {
		if strings.Contains(issue.Title, alert.ID) || strings.Contains(issue.Body, alert.ID) {
			return true, nil
		}
	}
	return false, nil
}

// candidates performs the single external call: one bounded batch of
// recent open records carrying the tracking label, newest first.
func (d *LexicalDetector) candidates(ctx context.Context) ([]*TrackedIssue, error) {
	return d.lister.ListIssues(ctx, IssueQuery{
		Label: d.config.TrackingLabel,
		State: "open",
		Since: time.Now().Add(-d.config.LookbackWindow),
		Limit: d.config.MaxCandidates,
	})
}

// compositeSimilarity blends the per-field lexical scores. Title
// similarity always contributes. A stack trace on the alert paired with
// a fenced code block in the candidate body is the strongest duplicate
// signal and takes weight away from the noisy description comparison;
// without it the description carries the other half. Both branches sum
// to 1.0.
func (d *LexicalDetector) compositeSimilarity(alert *types.Alert, issue *TrackedIssue) float64 {
	score := d.config.TitleWeight * similarity.Score(alert.Title, issue.Title)

	if alert.StackTrace != "" {
		if block, ok := extractCodeBlock(issue.Body); ok {
			score += d.config.StackTraceWeight * similarity.Score(alert.StackTrace, block)
			score += d.config.descriptionWeight(true) * similarity.Score(alert.Description, issue.Body)
			return score
		}
	}

	score += d.config.descriptionWeight(false) * similarity.Score(alert.Description, issue.Body)
	return score
}

var codeBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n?(.*?)```")

// extractCodeBlock returns the first fenced code block in a tracked
// record's markdown body.
func extractCodeBlock(body string) (string, bool) {
	m := codeBlockRe.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	block := strings.TrimSpace(m[1])
	if block == "" {
		return "", false
	}
	return block, true
}
