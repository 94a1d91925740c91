package dedup

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"time"
)

// Config holds configuration for the duplicate detector
type Config struct {
	// Enabled turns deduplication on. When false the detector reports
	// every alert as novel: FindDuplicates returns an empty list
	// unconditionally.
	// Default: true
	Enabled bool

	// Threshold is the minimum composite similarity (0.0-1.0) for a
	// record to be reported as a duplicate match.
	// Higher values = fewer false positives, more duplicate records.
	// Lower values = unrelated incidents start getting merged.
	// Default: 0.7
	Threshold float64

	// LookbackWindow is how far back to search for candidates.
	// Default: 7 days
	LookbackWindow time.Duration

	// MaxCandidates bounds the candidate batch fetched from the store.
	// Default: 50
	MaxCandidates int

	// TrackingLabel is the label that marks records created by this
	// pipeline; only labeled records are duplicate candidates.
	// Default: "triage"
	TrackingLabel string

	// TitleWeight, StackTraceWeight, and DescriptionWeight control the
	// composite blend. Title similarity always contributes TitleWeight.
	// When the alert carries a stack trace and the candidate body
	// contains a fenced code block, the trace comparison contributes
	// StackTraceWeight and the description comparison the remainder
	// (1 - TitleWeight - StackTraceWeight); otherwise the description
	// takes everything left after the title.
	//
	// The defaults (0.5/0.3) are tuned heuristics, not derived
	// constants: a matching stack trace is the strongest duplicate
	// signal available, titles are medium-strength, and free-text
	// descriptions are the noisiest. Tests pin the defaults as a
	// regression baseline.
	TitleWeight      float64
	StackTraceWeight float64
}

// DefaultConfig returns the default detector configuration
func DefaultConfig() Config {
	return Config{
		Enabled:          true,
		Threshold:        0.7,
		LookbackWindow:   7 * 24 * time.Hour,
		MaxCandidates:    50,
		TrackingLabel:    "triage",
		TitleWeight:      0.5,
		StackTraceWeight: 0.3,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.Threshold < 0.0 || c.Threshold > 1.0 {
		return fmt.Errorf("threshold must be between 0.0 and 1.0 (got %.2f)", c.Threshold)
	}
	if c.LookbackWindow <= 0 {
		return fmt.Errorf("lookback_window must be positive (got %v)", c.LookbackWindow)
	}
	if c.LookbackWindow > 90*24*time.Hour {
		return fmt.Errorf("lookback_window too large (got %v, max 90 days)", c.LookbackWindow)
	}
	if c.MaxCandidates <= 0 {
		return fmt.Errorf("max_candidates must be positive (got %d)", c.MaxCandidates)
	}
	if c.MaxCandidates > 500 {
		return fmt.Errorf("max_candidates too large (got %d, max 500)", c.MaxCandidates)
	}
	if c.TrackingLabel == "" {
		return fmt.Errorf("tracking_label is required")
	}
	if c.TitleWeight < 0 || c.StackTraceWeight < 0 {
		return fmt.Errorf("weights cannot be negative (title %.2f, stack %.2f)",
			c.TitleWeight, c.StackTraceWeight)
	}
	if c.TitleWeight+c.StackTraceWeight > 1.0+1e-9 {
		return fmt.Errorf("title and stack trace weights must sum to at most 1.0 (got %.2f)",
			c.TitleWeight+c.StackTraceWeight)
	}
	return nil
}

// descriptionWeight returns what remains for the description comparison
// when the stack-trace signal is in play. Both branches of the blend
// sum to 1.0.
func (c Config) descriptionWeight(withStack bool) float64 {
	if withStack {
		return math.Max(0, 1.0-c.TitleWeight-c.StackTraceWeight)
	}
	return math.Max(0, 1.0-c.TitleWeight)
}

// LoadConfigFromEnv returns DefaultConfig with any TRIAGE_DEDUP_*
// environment overrides applied. Malformed values are ignored in favor
// of the default rather than failing startup.
func LoadConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("TRIAGE_DEDUP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Enabled = b
		}
	}
	if v := os.Getenv("TRIAGE_DEDUP_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0.0 && f <= 1.0 {
			cfg.Threshold = f
		}
	}
	if v := os.Getenv("TRIAGE_DEDUP_LOOKBACK_DAYS"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 && d <= 90 {
			cfg.LookbackWindow = time.Duration(d) * 24 * time.Hour
		}
	}
	if v := os.Getenv("TRIAGE_DEDUP_MAX_CANDIDATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			cfg.MaxCandidates = n
		}
	}
	if v := os.Getenv("TRIAGE_DEDUP_LABEL"); v != "" {
		cfg.TrackingLabel = v
	}

	return cfg
}
