package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/oncallops/triage/internal/types"
)

// Detector defines the interface for deciding whether an incoming alert
// duplicates an already-tracked one.
//
// Example usage:
//
//	detector := NewLexicalDetector(store, DefaultConfig())
//
//	// Cheap idempotency check first
//	processed, err := detector.IsAlertProcessed(ctx, alert)
//	if processed {
//	    return // already filed for this exact alert ID
//	}
//
//	// Fuzzy duplicate search
//	matches, err := detector.FindDuplicates(ctx, alert)
//	if len(matches) > 0 {
//	    fmt.Printf("duplicate of #%d (%.2f)\n", matches[0].Number, matches[0].Similarity)
//	}
type Detector interface {
	// FindDuplicates returns every open tracked record whose composite
	// similarity to the alert meets or exceeds the configured threshold,
	// sorted by similarity, best match first. With deduplication
	// disabled it returns an empty list unconditionally.
	FindDuplicates(ctx context.Context, alert *types.Alert) ([]DuplicateMatch, error)

	// IsAlertProcessed reports whether a tracked record already exists
	// for this exact alert, by verbatim containment of the alert's
	// source-native identifier in a candidate's title or body. It is
	// the cheap idempotency short-circuit, distinct from the fuzzy
	// path: it answers "have we filed this alert", not "is this alert
	// similar to another".
	IsAlertProcessed(ctx context.Context, alert *types.Alert) (bool, error)
}

// DuplicateMatch is the transient output of the detector: one existing
// tracked record the alert plausibly duplicates. Not persisted;
// consumed immediately by the orchestrator.
type DuplicateMatch struct {
	// Number identifies the existing tracked record
	Number int `json:"number"`

	// Title is the record's title, for log and notification context
	Title string `json:"title"`

	// Similarity is the composite score in [0, 1]
	Similarity float64 `json:"similarity"`
}

// Validate checks if the match has valid values
func (m *DuplicateMatch) Validate() error {
	if m.Number <= 0 {
		return fmt.Errorf("number must be positive (got %d)", m.Number)
	}
	if m.Similarity < 0.0 || m.Similarity > 1.0 {
		return fmt.Errorf("similarity must be between 0.0 and 1.0 (got %.2f)", m.Similarity)
	}
	return nil
}

// TrackedIssue is the boundary shape of one persisted tracking record,
// as returned by the external store.
type TrackedIssue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	Body      string    `json:"body,omitempty"`
	State     string    `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueQuery bounds a candidate-retrieval call
type IssueQuery struct {
	// Label restricts results to records carrying the tracking label
	Label string

	// State filters by record state: "open", "closed", or "all"
	State string

	// Since excludes records created before the given time; zero means
	// no lower bound
	Since time.Time

	// Limit bounds the batch size; the listing is a single bounded
	// batch, not a stream
	Limit int
}

// IssueLister is the record-listing capability the detector depends on.
// It is the detector's only suspension point: a single request-response
// call with no internal retries (retry/backoff belongs to the store
// client). Results come back newest first.
type IssueLister interface {
	ListIssues(ctx context.Context, q IssueQuery) ([]*TrackedIssue, error)
}
