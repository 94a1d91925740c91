package parser

import (
	"strings"
	"time"

	"github.com/oncallops/triage/internal/types"
)

// genericParser is the catch-all for unrecognized payloads. CanParse
// unconditionally accepts, which is what guarantees detection always
// terminates. Every field is resolved through a layered fallback chain
// (direct field, nested field, heuristic text scan) so there is no
// "format unknown" failure path at all.
type genericParser struct{}

var (
	genericIDFields      = []string{"id", "alert_id", "alertId", "event_id", "eventId", "incident_id", "uuid", "key"}
	genericTitleFields   = []string{"title", "summary", "message", "name", "alert_name", "alertname"}
	genericBodyFields    = []string{"description", "body", "text", "details"}
	genericTimeFields    = []string{"timestamp", "time", "date", "created_at", "createdAt", "occurred_at"}
	genericURLFields     = []string{"url", "link", "html_url", "permalink"}
	genericServiceFields = []string{"service", "service_name", "serviceName", "component", "app", "application", "host"}
	genericStackFields   = []string{"stack_trace", "stacktrace", "stackTrace", "stack", "traceback", "backtrace"}

	// Nested objects worth descending into when hunting for a trace
	genericStackContainers = []string{"details", "data", "error", "exception"}

	// Fields consulted, in order, for severity classification
	genericSeverityFields = []string{"severity", "priority", "urgency", "level", "status"}
)

// Keyword sets for severity classification of free-form priority
// vocabularies. Unmatched values fall through to the default.
var (
	criticalKeywords = []string{"critical", "fatal", "emergency", "error", "page", "disaster", "p1", "sev1", "high"}
	warningKeywords  = []string{"warning", "warn", "minor", "degraded", "moderate", "p2", "sev2", "medium"}
	infoKeywords     = []string{"info", "informational", "notice", "ok", "normal", "resolved", "low", "p3", "p4", "p5"}
)

func (p *genericParser) Source() types.AlertSource { return types.SourceGeneric }

// CanParse accepts every input, including null, primitives, and empty
// objects. The generic parser must be the last entry in the registry.
func (p *genericParser) CanParse(payload any) bool { return true }

func (p *genericParser) Parse(payload any) (*types.Alert, error) {
	m, isMap := asMap(payload)

	id, ok := firstScalar(m, genericIDFields...)
	if !ok {
		id = types.FallbackID(time.Now())
	}

	title, ok := firstString(m, genericTitleFields...)
	if !ok {
		title = types.DefaultTitle
	}

	description, ok := firstString(m, genericBodyFields...)
	if !ok {
		if !isMap {
			// Primitive payloads: the value itself is all the context
			// there is
			description, ok = stringy(payload)
		}
		if !ok {
			description = title
		}
	}

	alert := &types.Alert{
		Source:      types.SourceGeneric,
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    genericSeverity(m),
		StackTrace:  genericStack(m, description),
		Service:     genericService(m),
		Timestamp:   timestampOrNow(firstPresent(m, genericTimeFields...)),
		Tags:        genericTags(m),
	}
	if url, ok := firstString(m, genericURLFields...); ok {
		alert.URL = url
	}
	return alert, nil
}

// genericSeverity classifies whichever severity-ish field is present
// against the three keyword sets. Unknown vocabulary defaults to
// warning: an alert someone bothered to send deserves attention.
func genericSeverity(m map[string]any) types.Severity {
	for _, field := range genericSeverityFields {
		v, ok := firstScalar(m, field)
		if !ok {
			continue
		}
		value := strings.ToLower(v)
		if matchesKeyword(value, criticalKeywords) {
			return types.SeverityCritical
		}
		if matchesKeyword(value, warningKeywords) {
			return types.SeverityWarning
		}
		if matchesKeyword(value, infoKeywords) {
			return types.SeverityInfo
		}
	}
	return types.SeverityWarning
}

func matchesKeyword(value string, keywords []string) bool {
	for _, kw := range keywords {
		if value == kw {
			return true
		}
	}
	return false
}

// genericStack applies the layered fallback chain: direct trace fields,
// then the same fields one level down inside conventional container
// objects, then a heuristic scan of the description text.
func genericStack(m map[string]any, description string) string {
	if s, ok := firstString(m, genericStackFields...); ok {
		return s
	}
	for _, container := range genericStackContainers {
		nested, ok := getMap(m, container)
		if !ok {
			continue
		}
		if s, ok := firstString(nested, genericStackFields...); ok {
			return s
		}
	}
	if s, ok := detectStack(description); ok {
		return s
	}
	return ""
}

func genericService(m map[string]any) string {
	if s, ok := firstString(m, genericServiceFields...); ok {
		return s
	}
	// One level of nesting: {"service": {"name": ...}}
	if service, ok := getMap(m, "service"); ok {
		if s, ok := firstString(service, "name"); ok {
			return s
		}
	}
	return ""
}

func genericTags(m map[string]any) map[string]string {
	tags := make(map[string]string)
	for _, field := range []string{"tags", "labels"} {
		switch t := m[field].(type) {
		case map[string]any:
			mergeStringMap(tags, t)
		case []any:
			for _, v := range t {
				s, ok := v.(string)
				if !ok {
					continue
				}
				if k, val, found := strings.Cut(s, ":"); found {
					tags[k] = val
				} else {
					tags[s] = ""
				}
			}
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
