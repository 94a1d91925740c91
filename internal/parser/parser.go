package parser

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/oncallops/triage/internal/types"
)

// Parser normalizes one webhook format into the canonical Alert.
//
// CanParse is a cheap structural test on the payload's shape: presence
// and type of a few top-level or one-level-nested keys. It never walks
// the full payload, never calls out, and never panics. Parse is total
// over any payload CanParse accepts: missing fields degrade to
// documented defaults rather than failing. The only exception is a
// structurally impossible payload (e.g. a multi-alert envelope with
// zero alerts), for which no sensible placeholder exists.
type Parser interface {
	// Source returns the origin system this parser handles
	Source() types.AlertSource

	// CanParse reports whether the payload structurally matches this format
	CanParse(payload any) bool

	// Parse extracts a complete canonical Alert from the payload
	Parse(payload any) (*types.Alert, error)
}

var (
	// ErrUnknownFormat is returned when an explicitly requested format
	// names no registered parser
	ErrUnknownFormat = errors.New("unknown alert format")

	// ErrFormatMismatch is returned when an explicitly requested format's
	// parser rejects the payload. Explicit selection is a hard request,
	// not a hint; there is no silent fallback to auto-detection.
	ErrFormatMismatch = errors.New("payload does not match requested format")

	// ErrEmptyEnvelope is returned for a multi-alert envelope that
	// contains no alerts
	ErrEmptyEnvelope = errors.New("alert envelope contains no alerts")
)

// FormatAuto requests format auto-detection instead of a named parser
const FormatAuto = "auto"

// Registry holds the ordered parser list. Order encodes detection
// priority: formats with distinctive nested shapes come first, looser
// structural tests later, and the generic catch-all is always last so
// detection always terminates with a match.
type Registry struct {
	parsers []Parser
}

// NewRegistry returns a registry with all supported formats in
// detection order.
func NewRegistry() *Registry {
	return &Registry{
		parsers: []Parser{
			&cloudWatchParser{},
			&alertmanagerParser{},
			&pagerDutyParser{},
			&sentryParser{},
			&opsgenieParser{},
			&datadogParser{},
			&genericParser{},
		},
	}
}

// Detect returns the first parser whose CanParse accepts the payload.
// The generic catch-all guarantees a non-nil result.
func (r *Registry) Detect(payload any) Parser {
	for _, p := range r.parsers {
		if p.CanParse(payload) {
			return p
		}
	}
	// Unreachable: the generic parser accepts everything
	return r.parsers[len(r.parsers)-1]
}

// Lookup returns the parser registered for the named source, or nil
func (r *Registry) Lookup(format string) Parser {
	for _, p := range r.parsers {
		if string(p.Source()) == format {
			return p
		}
	}
	return nil
}

// Sources returns the registered source tags in detection order
func (r *Registry) Sources() []types.AlertSource {
	out := make([]types.AlertSource, 0, len(r.parsers))
	for _, p := range r.parsers {
		out = append(out, p.Source())
	}
	return out
}

// Normalize converts a decoded JSON payload into a canonical Alert.
//
// When format is "auto" (or empty) the payload is auto-detected. An
// explicit format is a hard request: an unrecognized name or a payload
// the named parser rejects fails normalization outright.
func (r *Registry) Normalize(payload any, format string) (*types.Alert, error) {
	var p Parser
	switch format {
	case "", FormatAuto:
		p = r.Detect(payload)
	default:
		p = r.Lookup(format)
		if p == nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
		}
		if !p.CanParse(payload) {
			return nil, fmt.Errorf("%w: %q", ErrFormatMismatch, format)
		}
	}

	alert, err := p.Parse(payload)
	if err != nil {
		return nil, fmt.Errorf("%s extraction failed: %w", p.Source(), err)
	}

	// Retain the original payload verbatim for audit/debug
	if raw, err := json.Marshal(payload); err == nil {
		alert.Raw = raw
	}
	return alert, nil
}
