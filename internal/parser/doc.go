// Package parser normalizes heterogeneous monitoring webhook payloads
// into the canonical Alert record.
//
// # Overview
//
// Each supported origin system (PagerDuty, Datadog, CloudWatch, Sentry,
// Opsgenie, Alertmanager) has its own parser implementing the Parser
// contract, plus a generic catch-all that accepts anything. None of the
// formats carry an explicit discriminator field, so detection is
// structural: each CanParse probes the presence and type of a few
// characteristic keys, and the registry tries parsers in a fixed order
// with more distinctive shapes first.
//
// # Extraction policy
//
// Parse is deliberately maximally defensive. Webhook shapes drift
// across provider API versions, and a partial payload must still yield
// a usable tracking record: a missing identifier becomes a time-derived
// fallback, a missing title becomes a fixed literal, a missing
// description falls back to the title, and an unparseable timestamp
// becomes the current time. The only hard parse failure is a payload
// that is structurally impossible to represent, such as an Alertmanager
// group envelope containing zero alerts.
//
// # Explicit format selection
//
// Registry.Normalize accepts a format name alongside the payload. The
// sentinel "auto" (or an empty string) runs detection; any other name
// is a hard request. If the name is unknown, or the named parser's
// CanParse rejects the payload, normalization fails rather than
// silently falling back to detection.
//
// # Adding a format
//
// Implement Parser, then insert it into NewRegistry ahead of any parser
// with a looser structural test. The generic parser must stay last.
package parser
