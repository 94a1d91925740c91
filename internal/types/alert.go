package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Alert is the canonical record every webhook format normalizes to.
// An Alert is constructed once per inbound payload and never mutated
// afterwards; deduplication produces a decision, not a merged alert.
type Alert struct {
	// Source identifies the origin monitoring system
	Source AlertSource `json:"source"`

	// ID uniquely identifies the alert within its source system.
	// Never empty: parsers substitute a time-derived fallback when the
	// payload carries no identifier.
	ID string `json:"id"`

	// Title is a short human-readable summary. Never empty.
	Title string `json:"title"`

	// Description is the longer free-text body. Falls back to Title
	// when the payload has nothing richer.
	Description string `json:"description"`

	// Severity is the normalized three-level severity
	Severity Severity `json:"severity"`

	// StackTrace is present only when the payload carries structured or
	// heuristically detected trace-like text
	StackTrace string `json:"stack_trace,omitempty"`

	// Service names the affected component, when the format exposes one
	Service string `json:"service,omitempty"`

	// Timestamp is RFC 3339. Always populated; defaults to the time of
	// parsing when the payload has no usable timestamp.
	Timestamp string `json:"timestamp"`

	// URL is a deep link back to the alert in its origin system
	URL string `json:"url,omitempty"`

	// Tags aggregates format-specific metadata (labels, dimensions,
	// custom fields)
	Tags map[string]string `json:"tags,omitempty"`

	// Raw is the original payload, retained verbatim for audit and
	// debugging. Never interpreted downstream.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// Validate checks that the alert satisfies the canonical-record invariants
func (a *Alert) Validate() error {
	if !a.Source.IsValid() {
		return fmt.Errorf("invalid source: %s", a.Source)
	}
	if a.ID == "" {
		return fmt.Errorf("id is required")
	}
	if a.Title == "" {
		return fmt.Errorf("title is required")
	}
	if !a.Severity.IsValid() {
		return fmt.Errorf("invalid severity: %s", a.Severity)
	}
	if a.Timestamp == "" {
		return fmt.Errorf("timestamp is required")
	}
	if _, err := time.Parse(time.RFC3339, a.Timestamp); err != nil {
		return fmt.Errorf("timestamp must be RFC 3339 (got %q): %w", a.Timestamp, err)
	}
	return nil
}

// AlertSource identifies the origin monitoring system of an alert
type AlertSource string

const (
	SourcePagerDuty    AlertSource = "pagerduty"
	SourceDatadog      AlertSource = "datadog"
	SourceCloudWatch   AlertSource = "cloudwatch"
	SourceSentry       AlertSource = "sentry"
	SourceOpsgenie     AlertSource = "opsgenie"
	SourceAlertmanager AlertSource = "alertmanager"
	SourceGeneric      AlertSource = "generic"
)

// IsValid checks if the source value is one of the supported systems
func (s AlertSource) IsValid() bool {
	switch s {
	case SourcePagerDuty, SourceDatadog, SourceCloudWatch, SourceSentry,
		SourceOpsgenie, SourceAlertmanager, SourceGeneric:
		return true
	}
	return false
}

// AllSources returns every supported alert source in detection order
func AllSources() []AlertSource {
	return []AlertSource{
		SourceCloudWatch,
		SourceAlertmanager,
		SourcePagerDuty,
		SourceSentry,
		SourceOpsgenie,
		SourceDatadog,
		SourceGeneric,
	}
}

// Severity is the normalized three-level alert severity
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IsValid checks if the severity value is valid
func (s Severity) IsValid() bool {
	switch s {
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// DefaultTitle is substituted when a payload carries no usable title
const DefaultTitle = "Untitled Alert"

// FallbackID returns a time-derived alert identifier for payloads that
// carry none. Uses millisecond resolution so two alerts arriving in the
// same second still get distinct IDs in practice.
func FallbackID(now time.Time) string {
	return "alert-" + strconv.FormatInt(now.UnixMilli(), 10)
}
