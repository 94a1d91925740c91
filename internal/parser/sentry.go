package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/oncallops/triage/internal/types"
)

// sentryParser handles Sentry issue webhook payloads: project metadata
// at the top level and the captured event, including structured
// exception frames, under "event".
type sentryParser struct{}

// maxStackFrames caps the formatted trace; frames beyond the newest 20
// rarely add duplicate-detection signal and bloat issue bodies.
const maxStackFrames = 20

func (p *sentryParser) Source() types.AlertSource { return types.SourceSentry }

func (p *sentryParser) CanParse(payload any) bool {
	m, ok := asMap(payload)
	if !ok {
		return false
	}
	if event, ok := getMap(m, "event"); ok {
		if _, ok := getString(event, "event_id"); ok {
			return true
		}
		_, ok = firstScalar(m, "project", "project_slug")
		return ok
	}
	return false
}

func (p *sentryParser) Parse(payload any) (*types.Alert, error) {
	m, _ := asMap(payload)
	event, _ := getMap(m, "event")

	id, ok := getString(event, "event_id")
	if !ok {
		id, ok = firstScalar(m, "id")
	}
	if !ok {
		id = types.FallbackID(time.Now())
	}

	title, ok := firstString(event, "title", "message")
	if !ok {
		title, ok = firstString(m, "message", "culprit")
	}
	if !ok {
		title = types.DefaultTitle
	}

	description, ok := firstString(m, "message")
	if !ok {
		description, ok = firstString(event, "message")
	}
	if !ok {
		description = title
	}

	alert := &types.Alert{
		Source:      types.SourceSentry,
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    sentrySeverity(m, event),
		StackTrace:  sentryStack(event),
		Service:     sentryProject(m),
		Timestamp:   timestampOrNow(firstPresent(event, "timestamp")),
		Tags:        sentryTags(m, event),
	}
	if url, ok := firstString(m, "url", "web_url"); ok {
		alert.URL = url
	}
	return alert, nil
}

func sentrySeverity(m, event map[string]any) types.Severity {
	level, ok := getString(event, "level")
	if !ok {
		level, _ = getString(m, "level")
	}
	switch strings.ToLower(level) {
	case "fatal", "error":
		return types.SeverityCritical
	case "warning":
		return types.SeverityWarning
	default:
		return types.SeverityInfo
	}
}

// sentryStack formats the exception frames of the first exception value.
// Sentry orders frames oldest-first with the crash site last; they are
// reversed here so the crash site leads, then capped at maxStackFrames.
func sentryStack(event map[string]any) string {
	exception, ok := getMap(event, "exception")
	if !ok {
		return ""
	}
	values, ok := getSlice(exception, "values")
	if !ok || len(values) == 0 {
		return ""
	}
	first, ok := asMap(values[0])
	if !ok {
		return ""
	}

	var lines []string
	excType, _ := getString(first, "type")
	excValue, _ := getString(first, "value")
	if excType != "" || excValue != "" {
		lines = append(lines, strings.TrimSpace(excType+": "+excValue))
	}

	stacktrace, ok := getMap(first, "stacktrace")
	if !ok {
		if len(lines) == 0 {
			return ""
		}
		return lines[0]
	}
	frames, _ := getSlice(stacktrace, "frames")

	count := 0
	for i := len(frames) - 1; i >= 0 && count < maxStackFrames; i-- {
		frame, ok := asMap(frames[i])
		if !ok {
			continue
		}
		fn, _ := getString(frame, "function")
		if fn == "" {
			fn = "?"
		}
		file, _ := firstString(frame, "filename", "abs_path", "module")
		line, hasLine := getNumber(frame, "lineno")
		switch {
		case file != "" && hasLine:
			lines = append(lines, fmt.Sprintf("    at %s (%s:%d)", fn, file, int(line)))
		case file != "":
			lines = append(lines, fmt.Sprintf("    at %s (%s)", fn, file))
		default:
			lines = append(lines, fmt.Sprintf("    at %s", fn))
		}
		count++
	}
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n")
}

func sentryProject(m map[string]any) string {
	s, _ := firstScalar(m, "project_slug", "project_name", "project")
	return s
}

// sentryTags reads the event tag list, which Sentry emits as an array
// of [key, value] pairs.
func sentryTags(m, event map[string]any) map[string]string {
	tags := make(map[string]string)
	if raw, ok := getSlice(event, "tags"); ok {
		for _, pair := range raw {
			kv, ok := pair.([]any)
			if !ok || len(kv) != 2 {
				continue
			}
			k, kok := kv[0].(string)
			v, vok := stringy(kv[1])
			if kok && vok {
				tags[k] = v
			}
		}
	}
	if culprit, ok := getString(m, "culprit"); ok {
		tags["culprit"] = culprit
	}
	if env, ok := getString(event, "environment"); ok {
		tags["environment"] = env
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
