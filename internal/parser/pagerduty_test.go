package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallops/triage/internal/types"
)

func TestPagerDutyParseFullFixture(t *testing.T) {
	p := &pagerDutyParser{}
	payload := decode(t, pagerDutyFixture)
	require.True(t, p.CanParse(payload))

	alert, err := p.Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, types.SourcePagerDuty, alert.Source)
	assert.Equal(t, "PT4KHLK", alert.ID)
	assert.Equal(t, "NullPointerException in UserController", alert.Title)
	assert.Equal(t, types.SeverityCritical, alert.Severity, "urgency high maps to critical")
	assert.Equal(t, "user-service", alert.Service)
	assert.Equal(t, "2026-01-15T10:30:00Z", alert.Timestamp)
	assert.Equal(t, "https://acme.pagerduty.com/incidents/PT4KHLK", alert.URL)
	assert.Contains(t, alert.StackTrace, "NullPointerException")
	assert.Contains(t, alert.StackTrace, "UserController.java:42")
	assert.Equal(t, "us-east-1", alert.Tags["region"])
	assert.Equal(t, "high", alert.Tags["urgency"])
}

func TestPagerDutyLowUrgencyMapsToWarning(t *testing.T) {
	p := &pagerDutyParser{}
	payload := decode(t, `{"event":{"event_type":"incident.triggered","data":{"id":"P1","title":"Disk filling","urgency":"low"}}}`)
	alert, err := p.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, types.SeverityWarning, alert.Severity)
}

func TestPagerDutyStringDetails(t *testing.T) {
	p := &pagerDutyParser{}
	payload := decode(t, `{"event":{"data":{"id":"P2","title":"Boom","details":"goroutine panic\n    at main.run (main.go:17)"}}}`)
	alert, err := p.Parse(payload)
	require.NoError(t, err)
	assert.Contains(t, alert.StackTrace, "goroutine panic")
}

func TestPagerDutyMinimalPayloadStillComplete(t *testing.T) {
	p := &pagerDutyParser{}
	payload := decode(t, `{"event":{"event_type":"incident.triggered"}}`)
	require.True(t, p.CanParse(payload))

	alert, err := p.Parse(payload)
	require.NoError(t, err)
	require.NoError(t, alert.Validate())
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, types.DefaultTitle, alert.Title)
	assert.Equal(t, alert.Title, alert.Description, "description falls back to title")
	assert.Equal(t, types.SeverityWarning, alert.Severity)
	assert.Empty(t, alert.StackTrace)
	assert.Empty(t, alert.Service)
}

func TestPagerDutyCanParseRejects(t *testing.T) {
	p := &pagerDutyParser{}
	assert.False(t, p.CanParse(map[string]any{}))
	assert.False(t, p.CanParse(decode(t, `{"event": "a string, not an object"}`)))
	assert.False(t, p.CanParse(nil))
}
