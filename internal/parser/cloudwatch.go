package parser

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/oncallops/triage/internal/types"
)

// cloudWatchParser handles CloudWatch alarm state changes, either as
// the raw alarm document or wrapped in the SNS notification envelope
// whose Message field is itself JSON.
type cloudWatchParser struct{}

// Dimension names checked in order when attributing an alarm to a
// service. The list favors compute-ish dimensions over storage ones.
var cloudWatchServiceDimensions = []string{
	"ServiceName",
	"FunctionName",
	"TableName",
	"QueueName",
	"ClusterName",
	"DBInstanceIdentifier",
	"LoadBalancerName",
}

func (p *cloudWatchParser) Source() types.AlertSource { return types.SourceCloudWatch }

func (p *cloudWatchParser) CanParse(payload any) bool {
	m, ok := asMap(payload)
	if !ok {
		return false
	}
	if _, ok := getString(m, "AlarmName"); ok {
		if _, ok := getString(m, "NewStateValue"); ok {
			return true
		}
	}
	// SNS envelope: a cheap substring probe on Message avoids decoding
	// the embedded JSON during detection.
	if t, ok := getString(m, "Type"); ok && t == "Notification" {
		if msg, ok := getString(m, "Message"); ok {
			return strings.Contains(msg, "AlarmName")
		}
	}
	return false
}

func (p *cloudWatchParser) Parse(payload any) (*types.Alert, error) {
	m, _ := asMap(payload)
	alarm, envelope := m, map[string]any(nil)

	if msg, ok := getString(m, "Message"); ok {
		if _, direct := getString(m, "AlarmName"); !direct {
			envelope = m
			var decoded map[string]any
			if err := json.Unmarshal([]byte(msg), &decoded); err == nil {
				alarm = decoded
			} else {
				// Unreadable envelope body: degrade to a minimal alert
				// carrying the raw message text rather than failing.
				alarm = map[string]any{"AlarmDescription": msg}
			}
		}
	}

	// The alarm name serves as both identity and title
	name, ok := getString(alarm, "AlarmName")
	if !ok {
		name = ""
	}
	id := name
	if id == "" {
		id = types.FallbackID(time.Now())
	}
	title := name
	if title == "" {
		title = types.DefaultTitle
	}

	description, ok := firstString(alarm, "NewStateReason", "AlarmDescription")
	if !ok {
		description = title
	}

	tsField := firstPresent(alarm, "StateChangeTime")
	if tsField == nil && envelope != nil {
		tsField = firstPresent(envelope, "Timestamp")
	}

	alert := &types.Alert{
		Source:      types.SourceCloudWatch,
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    cloudWatchSeverity(alarm),
		Service:     cloudWatchService(alarm),
		Timestamp:   timestampOrNow(tsField),
		Tags:        cloudWatchTags(alarm),
	}
	return alert, nil
}

func cloudWatchSeverity(alarm map[string]any) types.Severity {
	switch state, _ := getString(alarm, "NewStateValue"); state {
	case "ALARM":
		return types.SeverityCritical
	case "INSUFFICIENT_DATA":
		return types.SeverityWarning
	default:
		return types.SeverityInfo
	}
}

// cloudWatchService scans the alarm trigger's dimensions for the first
// name on the priority list.
func cloudWatchService(alarm map[string]any) string {
	dims := cloudWatchDimensions(alarm)
	if len(dims) == 0 {
		return ""
	}
	for _, want := range cloudWatchServiceDimensions {
		if v, ok := dims[want]; ok {
			return v
		}
	}
	return ""
}

// cloudWatchDimensions flattens Trigger.Dimensions, tolerating both the
// lowercase and capitalized key casings CloudWatch has used over time.
func cloudWatchDimensions(alarm map[string]any) map[string]string {
	trigger, ok := getMap(alarm, "Trigger")
	if !ok {
		return nil
	}
	raw, ok := getSlice(trigger, "Dimensions")
	if !ok {
		return nil
	}
	dims := make(map[string]string)
	for _, d := range raw {
		dm, ok := asMap(d)
		if !ok {
			continue
		}
		name, ok := firstString(dm, "name", "Name")
		if !ok {
			continue
		}
		if value, ok := firstString(dm, "value", "Value"); ok {
			dims[name] = value
		}
	}
	return dims
}

func cloudWatchTags(alarm map[string]any) map[string]string {
	tags := make(map[string]string)
	if region, ok := getString(alarm, "Region"); ok {
		tags["region"] = region
	}
	if state, ok := getString(alarm, "NewStateValue"); ok {
		tags["state"] = state
	}
	if trigger, ok := getMap(alarm, "Trigger"); ok {
		if metric, ok := getString(trigger, "MetricName"); ok {
			tags["metric"] = metric
		}
		if ns, ok := getString(trigger, "Namespace"); ok {
			tags["namespace"] = ns
		}
	}
	for name, value := range cloudWatchDimensions(alarm) {
		tags[name] = value
	}
	if len(tags) == 0 {
		return nil
	}
	return tags
}
