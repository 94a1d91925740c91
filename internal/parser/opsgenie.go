package parser

import (
	"strings"
	"time"

	"github.com/oncallops/triage/internal/types"
)

// opsgenieParser handles Opsgenie alert webhook payloads: an "action"
// verb plus the alert body under "alert", with a P1..P5 priority tier.
type opsgenieParser struct{}

// Detail-map keys probed for an explicit stack trace, in order
var opsgenieStackKeys = []string{"stack_trace", "stacktrace", "stackTrace", "exception", "trace", "error_details"}

func (p *opsgenieParser) Source() types.AlertSource { return types.SourceOpsgenie }

func (p *opsgenieParser) CanParse(payload any) bool {
	m, ok := asMap(payload)
	if !ok {
		return false
	}
	alert, ok := getMap(m, "alert")
	if !ok {
		return false
	}
	if _, ok := getString(alert, "alertId"); ok {
		return true
	}
	_, ok = getString(alert, "message")
	return ok
}

func (p *opsgenieParser) Parse(payload any) (*types.Alert, error) {
	m, _ := asMap(payload)
	alertBody, _ := getMap(m, "alert")

	id, ok := firstScalar(alertBody, "alertId", "alias", "tinyId")
	if !ok {
		id = types.FallbackID(time.Now())
	}

	title, ok := getString(alertBody, "message")
	if !ok {
		title = types.DefaultTitle
	}

	description, ok := getString(alertBody, "description")
	if !ok {
		description = title
	}

	out := &types.Alert{
		Source:      types.SourceOpsgenie,
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    opsgenieSeverity(alertBody),
		StackTrace:  opsgenieStack(alertBody, description),
		Service:     opsgenieService(m, alertBody),
		Timestamp:   timestampOrNow(firstPresent(alertBody, "createdAt", "updatedAt")),
		Tags:        opsgenieTags(m, alertBody),
	}
	return out, nil
}

// P1 and P2 page someone; P3 is actionable-but-waitable; P4/P5 and
// anything unrecognized are informational.
func opsgenieSeverity(alert map[string]any) types.Severity {
	priority, _ := getString(alert, "priority")
	switch strings.ToUpper(priority) {
	case "P1", "P2":
		return types.SeverityCritical
	case "P3":
		return types.SeverityWarning
	default:
		return types.SeverityInfo
	}
}

// opsgenieStack checks the details map for a known trace key, then
// falls back to scanning the description for frame-shaped lines.
func opsgenieStack(alert map[string]any, description string) string {
	if details, ok := getMap(alert, "details"); ok {
		if s, ok := firstString(details, opsgenieStackKeys...); ok {
			return s
		}
	}
	if s, ok := stackFrameLines(description, minStackLines); ok {
		return s
	}
	return ""
}

// Service attribution order: the alert's own source name, then the
// integration that delivered it, then a service: prefixed tag.
func opsgenieService(m, alert map[string]any) string {
	if s, ok := getString(alert, "source"); ok {
		return s
	}
	if s, ok := getString(m, "integrationName"); ok {
		return s
	}
	if raw, ok := getSlice(alert, "tags"); ok {
		for _, v := range raw {
			if tag, ok := v.(string); ok && strings.HasPrefix(tag, "service:") {
				return strings.TrimPrefix(tag, "service:")
			}
		}
	}
	return ""
}

func opsgenieTags(m, alert map[string]any) map[string]string {
	tags := make(map[string]string)
	if action, ok := getString(m, "action"); ok {
		tags["action"] = action
	}
	if priority, ok := getString(alert, "priority"); ok {
		tags["priority"] = priority
	}
	if entity, ok := getString(alert, "entity"); ok {
		tags["entity"] = entity
	}
	if raw, ok := getSlice(alert, "tags"); ok {
		for _, v := range raw {
			tag, ok := v.(string)
			if !ok {
				continue
			}
			if k, val, found := strings.Cut(tag, ":"); found {
				tags[k] = val
			} else {
				tags[tag] = ""
			}
		}
	}
	if details, ok := getMap(alert, "details"); ok {
		mergeStringMap(tags, details)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
