package parser

import (
	"time"

	"github.com/oncallops/triage/internal/types"
)

// pagerDutyParser handles PagerDuty v3 webhook payloads: a top-level
// "event" envelope with an "event_type" discriminator and the incident
// itself under "data".
type pagerDutyParser struct{}

func (p *pagerDutyParser) Source() types.AlertSource { return types.SourcePagerDuty }

func (p *pagerDutyParser) CanParse(payload any) bool {
	m, ok := asMap(payload)
	if !ok {
		return false
	}
	event, ok := getMap(m, "event")
	if !ok {
		return false
	}
	if _, ok := getMap(event, "data"); ok {
		return true
	}
	_, ok = getString(event, "event_type")
	return ok
}

func (p *pagerDutyParser) Parse(payload any) (*types.Alert, error) {
	m, _ := asMap(payload)
	event, _ := getMap(m, "event")
	data, _ := getMap(event, "data")

	id, ok := firstScalar(data, "id")
	if !ok {
		id, ok = firstScalar(event, "id")
	}
	if !ok {
		id = types.FallbackID(time.Now())
	}

	title, ok := firstString(data, "title", "summary")
	if !ok {
		title = types.DefaultTitle
	}

	description, ok := firstString(data, "description", "summary")
	if !ok {
		description = title
	}

	alert := &types.Alert{
		Source:      types.SourcePagerDuty,
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    pagerDutySeverity(data),
		StackTrace:  pagerDutyStack(data),
		Service:     pagerDutyService(data),
		Timestamp:   timestampOrNow(event["occurred_at"]),
		Tags:        pagerDutyTags(event, data),
	}
	if url, ok := firstString(data, "html_url", "self"); ok {
		alert.URL = url
	}
	return alert, nil
}

// Urgency is PagerDuty's two-level scale: high maps to critical,
// everything else (low, absent) to warning.
func pagerDutySeverity(data map[string]any) types.Severity {
	if urgency, ok := getString(data, "urgency"); ok && urgency == "high" {
		return types.SeverityCritical
	}
	return types.SeverityWarning
}

// pagerDutyStack reads the explicit detail field. Details may be a plain
// string or a map carrying a trace under a conventional key.
func pagerDutyStack(data map[string]any) string {
	switch details := data["details"].(type) {
	case string:
		return details
	case map[string]any:
		if s, ok := firstString(details, "stack_trace", "stacktrace", "stackTrace", "trace"); ok {
			return s
		}
	}
	return ""
}

func pagerDutyService(data map[string]any) string {
	service, ok := getMap(data, "service")
	if !ok {
		return ""
	}
	s, _ := firstString(service, "name", "summary")
	return s
}

func pagerDutyTags(event, data map[string]any) map[string]string {
	tags := make(map[string]string)
	if et, ok := getString(event, "event_type"); ok {
		tags["event_type"] = et
	}
	if urgency, ok := getString(data, "urgency"); ok {
		tags["urgency"] = urgency
	}
	if status, ok := getString(data, "status"); ok {
		tags["status"] = status
	}
	if priority, ok := getMap(data, "priority"); ok {
		if s, ok := firstString(priority, "summary", "name"); ok {
			tags["priority"] = s
		}
	}
	if custom, ok := getMap(data, "custom_details"); ok {
		mergeStringMap(tags, custom)
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
