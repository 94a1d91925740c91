package parser

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallops/triage/internal/types"
)

func TestSentryParseFullFixture(t *testing.T) {
	p := &sentryParser{}
	payload := decode(t, sentryFixture)
	require.True(t, p.CanParse(payload))

	alert, err := p.Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, types.SourceSentry, alert.Source)
	assert.Equal(t, "9fbc0f2db2f24a1eb158f51b1e2a6c8d", alert.ID, "event id outranks issue id")
	assert.Equal(t, "IndexError: list index out of range", alert.Title)
	assert.Equal(t, types.SeverityCritical, alert.Severity, "level error maps to critical")
	assert.Equal(t, "billing", alert.Service)
	assert.Equal(t, "2026-01-15T10:30:00Z", alert.Timestamp)
	assert.Equal(t, "production", alert.Tags["environment"])
	assert.Equal(t, "2.14.0", alert.Tags["release"])
}

func TestSentryStackFramesReversedAndFormatted(t *testing.T) {
	p := &sentryParser{}
	alert, err := p.Parse(decode(t, sentryFixture))
	require.NoError(t, err)

	lines := strings.Split(alert.StackTrace, "\n")
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "IndexError: list index out of range", lines[0])
	// Sentry lists frames oldest first; the crash site must lead here.
	assert.Contains(t, lines[1], "billing.py:118")
	assert.Contains(t, lines[2], "worker.py:31")
}

func TestSentryStackFrameCap(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`{"event":{"event_id":"e1","title":"boom","exception":{"values":[{"type":"Error","stacktrace":{"frames":[`)
	for i := 0; i < 30; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(`{"filename":"f.py","function":"fn","lineno":` + strconv.Itoa(i) + `}`)
	}
	sb.WriteString(`]}}]}}}`)

	p := &sentryParser{}
	alert, err := p.Parse(decode(t, sb.String()))
	require.NoError(t, err)

	frameLines := 0
	for _, line := range strings.Split(alert.StackTrace, "\n") {
		if strings.Contains(line, " at ") {
			frameLines++
		}
	}
	assert.Equal(t, maxStackFrames, frameLines)
}

func TestSentrySeverityLevels(t *testing.T) {
	tests := []struct {
		level string
		want  types.Severity
	}{
		{"fatal", types.SeverityCritical},
		{"error", types.SeverityCritical},
		{"warning", types.SeverityWarning},
		{"info", types.SeverityInfo},
		{"debug", types.SeverityInfo},
		{"", types.SeverityInfo},
	}
	p := &sentryParser{}
	for _, tt := range tests {
		name := tt.level
		if name == "" {
			name = "absent"
		}
		t.Run(name, func(t *testing.T) {
			alert, err := p.Parse(decode(t, `{"event":{"event_id":"e1","title":"x","level":"`+tt.level+`"}}`))
			require.NoError(t, err)
			assert.Equal(t, tt.want, alert.Severity)
		})
	}
}

func TestSentryMinimalPayloadStillComplete(t *testing.T) {
	p := &sentryParser{}
	payload := decode(t, `{"project":"api","event":{}}`)
	require.True(t, p.CanParse(payload))

	alert, err := p.Parse(payload)
	require.NoError(t, err)
	require.NoError(t, alert.Validate())
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, types.DefaultTitle, alert.Title)
	assert.Empty(t, alert.StackTrace)
}
