package parser

import (
	"strings"
	"time"

	"github.com/oncallops/triage/internal/types"
)

// datadogParser handles Datadog monitor webhook payloads. The shape is
// flat: title/body plus an "alert_type" classification and a tag list.
// Its structural test is looser than the nested-envelope formats, so it
// sits near the end of the detection order.
type datadogParser struct{}

func (p *datadogParser) Source() types.AlertSource { return types.SourceDatadog }

func (p *datadogParser) CanParse(payload any) bool {
	m, ok := asMap(payload)
	if !ok {
		return false
	}
	if _, ok := getString(m, "alert_type"); ok {
		return true
	}
	if _, ok := getString(m, "title"); !ok {
		return false
	}
	// Generic title-plus-timestamp pair; only trusted once the more
	// distinctive shapes have been ruled out.
	if _, ok := m["date"]; ok {
		return true
	}
	_, ok = m["last_updated"]
	return ok
}

func (p *datadogParser) Parse(payload any) (*types.Alert, error) {
	m, _ := asMap(payload)

	id, ok := firstScalar(m, "id", "event_id", "alert_id")
	if !ok {
		id = types.FallbackID(time.Now())
	}

	title, ok := getString(m, "title")
	if !ok {
		title = types.DefaultTitle
	}

	body, _ := firstString(m, "body", "text_only_msg", "message")
	description := body
	if description == "" {
		description = title
	}

	tags := datadogTagList(m)

	alert := &types.Alert{
		Source:      types.SourceDatadog,
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    datadogSeverity(m),
		Service:     serviceTag(tags),
		Timestamp:   timestampOrNow(firstPresent(m, "date", "last_updated")),
		Tags:        tags,
	}
	if stack, ok := detectStack(body); ok {
		alert.StackTrace = stack
	}
	if url, ok := firstString(m, "url", "event_url", "link"); ok {
		alert.URL = url
	}
	return alert, nil
}

func datadogSeverity(m map[string]any) types.Severity {
	switch alertType, _ := getString(m, "alert_type"); alertType {
	case "error":
		return types.SeverityCritical
	case "warning":
		return types.SeverityWarning
	}
	if priority, ok := getString(m, "priority"); ok && strings.EqualFold(priority, "low") {
		return types.SeverityInfo
	}
	return types.SeverityWarning
}

// datadogTagList normalizes the tag field, which arrives either as a
// comma-joined string or as an array of "key:value" entries. Bare tags
// (no colon) are kept with an empty value.
func datadogTagList(m map[string]any) map[string]string {
	var entries []string
	switch t := m["tags"].(type) {
	case string:
		entries = strings.Split(t, ",")
	case []any:
		for _, v := range t {
			if s, ok := v.(string); ok {
				entries = append(entries, s)
			}
		}
	}

	tags := make(map[string]string)
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if k, v, found := strings.Cut(e, ":"); found {
			tags[k] = v
		} else {
			tags[e] = ""
		}
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}

// serviceTag returns the value of the conventional service: tag
func serviceTag(tags map[string]string) string {
	return tags["service"]
}

// firstPresent returns the first key that exists in m, shaped or not
func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok {
			return v
		}
	}
	return nil
}
