// Package investigator is the boundary to the AI investigation engine.
// The core pipeline hands it a canonical alert; it builds a prompt,
// calls the model, and returns a structured result. It is opaque to the
// rest of the system: failures propagate, and the pipeline's duplicate
// decision never depends on it.
package investigator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/oncallops/triage/internal/types"
)

// DefaultModel is used when the configuration names none
const DefaultModel = string(anthropic.ModelClaudeSonnet4_5)

// Result is the outcome of one investigation run
type Result struct {
	// RunID identifies this investigation for cross-referencing in
	// tracking-record comments
	RunID string `json:"run_id"`

	// Summary is the model's one-paragraph read of the alert
	Summary string `json:"summary"`

	// Elapsed is wall-clock investigation time
	Elapsed time.Duration `json:"elapsed"`

	// InputTokens and OutputTokens record API usage for cost tracking
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Investigator runs AI investigations for normalized alerts
type Investigator struct {
	client  *anthropic.Client
	model   string
	retry   RetryConfig
	limiter *rate.Limiter
}

// New creates an investigator using the given API client. The rate
// limiter smooths bursts of alert storms into a steady call rate so a
// storm cannot exhaust the API quota that interactive users share.
func New(client *anthropic.Client, model string, retry RetryConfig) *Investigator {
	if model == "" {
		model = DefaultModel
	}
	return &Investigator{
		client:  client,
		model:   model,
		retry:   retry,
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 3),
	}
}

// Investigate analyzes one alert and returns the model's assessment.
// The caller owns cancellation; a canceled context aborts the run.
func (inv *Investigator) Investigate(ctx context.Context, alert *types.Alert) (*Result, error) {
	if err := inv.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("investigation rate limit wait aborted: %w", err)
	}

	start := time.Now()
	prompt := BuildPrompt(alert)

	var response *anthropic.Message
	err := inv.retryWithBackoff(ctx, "investigate", func(attemptCtx context.Context) error {
		resp, apiErr := inv.client.Messages.New(attemptCtx, anthropic.MessageNewParams{
			Model:     anthropic.Model(inv.model),
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
			},
		})
		if apiErr != nil {
			return apiErr
		}
		response = resp
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("investigation API call failed: %w", err)
	}

	var summary strings.Builder
	for _, block := range response.Content {
		if block.Type == "text" {
			summary.WriteString(block.Text)
		}
	}

	return &Result{
		RunID:        uuid.NewString(),
		Summary:      summary.String(),
		Elapsed:      time.Since(start),
		InputTokens:  response.Usage.InputTokens,
		OutputTokens: response.Usage.OutputTokens,
	}, nil
}

// BuildPrompt renders the investigation prompt from a canonical alert.
// Everything the model sees comes from the normalized record; the raw
// payload stays out of the prompt.
func BuildPrompt(alert *types.Alert) string {
	var sb strings.Builder
	sb.WriteString("You are investigating a production monitoring alert. Analyze the alert below and respond with:\n")
	sb.WriteString("1. A one-paragraph summary of what is failing\n")
	sb.WriteString("2. The most likely root cause\n")
	sb.WriteString("3. A concrete next step for the on-call engineer\n\n")

	fmt.Fprintf(&sb, "Source: %s\n", alert.Source)
	fmt.Fprintf(&sb, "Severity: %s\n", alert.Severity)
	fmt.Fprintf(&sb, "Title: %s\n", alert.Title)
	if alert.Service != "" {
		fmt.Fprintf(&sb, "Service: %s\n", alert.Service)
	}
	fmt.Fprintf(&sb, "Timestamp: %s\n", alert.Timestamp)
	fmt.Fprintf(&sb, "\nDescription:\n%s\n", alert.Description)

	if alert.StackTrace != "" {
		fmt.Fprintf(&sb, "\nStack trace:\n```\n%s\n```\n", alert.StackTrace)
	}
	if len(alert.Tags) > 0 {
		sb.WriteString("\nTags:\n")
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
