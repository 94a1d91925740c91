package parser

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/oncallops/triage/internal/types"
)

// alertmanagerParser handles Prometheus Alertmanager webhook payloads:
// a group envelope carrying one or more label-based alerts. The first
// alert in the group is normalized; an envelope with zero alerts is the
// one structurally impossible input in the framework and is rejected
// rather than defaulted.
type alertmanagerParser struct{}

// Labels checked in order when attributing an alert to a service
var alertmanagerServiceLabels = []string{
	"service",
	"job",
	"app",
	"application",
	"deployment",
	"container",
	"namespace",
}

func (p *alertmanagerParser) Source() types.AlertSource { return types.SourceAlertmanager }

func (p *alertmanagerParser) CanParse(payload any) bool {
	m, ok := asMap(payload)
	if !ok {
		return false
	}
	if _, ok := m["alerts"].([]any); !ok {
		return false
	}
	if _, ok := getString(m, "status"); ok {
		return true
	}
	if _, ok := getString(m, "receiver"); ok {
		return true
	}
	_, ok = getString(m, "groupKey")
	return ok
}

func (p *alertmanagerParser) Parse(payload any) (*types.Alert, error) {
	m, _ := asMap(payload)
	alerts, _ := getSlice(m, "alerts")
	if len(alerts) == 0 {
		return nil, ErrEmptyEnvelope
	}
	first, ok := asMap(alerts[0])
	if !ok {
		return nil, fmt.Errorf("%w: first alert is not an object", ErrEmptyEnvelope)
	}

	labels := stringMap(first, "labels")
	annotations := stringMap(first, "annotations")

	id, ok := getString(first, "fingerprint")
	if !ok {
		id = labelFingerprint(labels)
	}

	title := annotations["summary"]
	if title == "" {
		title = labels["alertname"]
	}
	if title == "" {
		title = types.DefaultTitle
	}

	description := annotations["description"]
	if description == "" {
		description = annotations["message"]
	}
	if description == "" {
		description = title
	}

	alert := &types.Alert{
		Source:      types.SourceAlertmanager,
		ID:          id,
		Title:       title,
		Description: description,
		Severity:    alertmanagerSeverity(labels, first, m),
		Service:     alertmanagerService(labels),
		Timestamp:   timestampOrNow(firstPresent(first, "startsAt")),
		Tags:        labels,
	}
	if url, ok := getString(first, "generatorURL"); ok {
		alert.URL = url
	} else if url, ok := getString(m, "externalURL"); ok {
		alert.URL = url
	}
	if len(alert.Tags) == 0 {
		alert.Tags = nil
	}
	return alert, nil
}

func alertmanagerSeverity(labels map[string]string, alert, envelope map[string]any) types.Severity {
	switch strings.ToLower(labels["severity"]) {
	case "critical", "page", "pager":
		return types.SeverityCritical
	case "warning", "warn":
		return types.SeverityWarning
	}
	status, ok := getString(alert, "status")
	if !ok {
		status, _ = getString(envelope, "status")
	}
	if status == "firing" {
		return types.SeverityWarning
	}
	return types.SeverityInfo
}

func alertmanagerService(labels map[string]string) string {
	for _, key := range alertmanagerServiceLabels {
		if v := labels[key]; v != "" {
			return v
		}
	}
	return ""
}

// labelFingerprint derives a deterministic identity from the sorted
// label pairs when Alertmanager supplied no fingerprint. Two alerts
// with identical label sets hash identically regardless of map order.
func labelFingerprint(labels map[string]string) string {
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)

	h := fnv.New64a()
	for _, p := range pairs {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// stringMap reads a map-valued field, keeping only string values
func stringMap(m map[string]any, key string) map[string]string {
	raw, ok := getMap(m, key)
	if !ok {
		return map[string]string{}
	}
	out := make(map[string]string, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
