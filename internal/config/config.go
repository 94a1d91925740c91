// Package config loads the triage configuration: YAML file first, then
// environment overrides. Every field has a working default so a bare
// `triage serve` runs without any file at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oncallops/triage/internal/dedup"
)

// Config is the full runtime configuration
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Tracker       TrackerConfig       `yaml:"tracker"`
	Dedup         DedupConfig         `yaml:"dedup"`
	Investigation InvestigationConfig `yaml:"investigation"`
}

// ServerConfig configures the webhook ingestion server
type ServerConfig struct {
	// Addr is the listen address
	Addr string `yaml:"addr"`

	// RateLimit is the sustained request rate (requests/second) allowed
	// on the webhook endpoints; Burst is the short-term allowance.
	// Alert storms beyond this get 429s rather than melting the store.
	RateLimit float64 `yaml:"rate_limit"`
	Burst     int     `yaml:"burst"`

	// ShutdownGrace bounds how long in-flight requests get on shutdown
	ShutdownGrace time.Duration `yaml:"shutdown_grace"`
}

// TrackerConfig configures the tracking store
type TrackerConfig struct {
	// Path is the SQLite database file path. ":memory:" is accepted
	// for tests.
	Path string `yaml:"path"`
}

// DedupConfig mirrors the duplicate detector's tunables in file form
type DedupConfig struct {
	Enabled       *bool   `yaml:"enabled"`
	Threshold     float64 `yaml:"threshold"`
	LookbackDays  int     `yaml:"lookback_days"`
	MaxCandidates int     `yaml:"max_candidates"`
	Label         string  `yaml:"label"`
}

// InvestigationConfig configures the AI investigation boundary
type InvestigationConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
}

// Default returns the configuration used when no file and no overrides
// are present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			RateLimit:     20,
			Burst:         40,
			ShutdownGrace: 10 * time.Second,
		},
		Tracker: TrackerConfig{
			Path: ".triage/issues.db",
		},
		Dedup: DedupConfig{
			Threshold:     0.7,
			LookbackDays:  7,
			MaxCandidates: 50,
			Label:         "triage",
		},
		Investigation: InvestigationConfig{},
	}
}

// Load reads the configuration file at path (optional) and applies
// environment overrides on top of the defaults. A missing file is not
// an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("TRIAGE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("TRIAGE_TRACKER_PATH"); v != "" {
		c.Tracker.Path = v
	}
	if v := os.Getenv("TRIAGE_DEDUP_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Dedup.Enabled = &b
		}
	}
	if v := os.Getenv("TRIAGE_DEDUP_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Dedup.Threshold = f
		}
	}
	if v := os.Getenv("TRIAGE_DEDUP_LABEL"); v != "" {
		c.Dedup.Label = v
	}
	if v := os.Getenv("TRIAGE_INVESTIGATION_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Investigation.Enabled = b
		}
	}
	if v := os.Getenv("TRIAGE_MODEL"); v != "" {
		c.Investigation.Model = v
	}
}

// Validate checks the assembled configuration
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("server.rate_limit must be positive (got %v)", c.Server.RateLimit)
	}
	if c.Server.Burst <= 0 {
		return fmt.Errorf("server.burst must be positive (got %d)", c.Server.Burst)
	}
	if c.Tracker.Path == "" {
		return fmt.Errorf("tracker.path is required")
	}
	return c.DedupConfig().Validate()
}

// DedupConfig converts the file form into the detector's config
func (c *Config) DedupConfig() dedup.Config {
	out := dedup.DefaultConfig()
	if c.Dedup.Enabled != nil {
		out.Enabled = *c.Dedup.Enabled
	}
	if c.Dedup.Threshold > 0 {
		out.Threshold = c.Dedup.Threshold
	}
	if c.Dedup.LookbackDays > 0 {
		out.LookbackWindow = time.Duration(c.Dedup.LookbackDays) * 24 * time.Hour
	}
	if c.Dedup.MaxCandidates > 0 {
		out.MaxCandidates = c.Dedup.MaxCandidates
	}
	if c.Dedup.Label != "" {
		out.TrackingLabel = c.Dedup.Label
	}
	return out
}
