package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oncallops/triage/internal/types"
)

func TestAlertmanagerParseFullFixture(t *testing.T) {
	p := &alertmanagerParser{}
	payload := decode(t, alertmanagerFixture)
	require.True(t, p.CanParse(payload))

	alert, err := p.Parse(payload)
	require.NoError(t, err)

	assert.Equal(t, types.SourceAlertmanager, alert.Source)
	assert.Equal(t, "c4e2b1a09d8f7e63", alert.ID, "fingerprint is the identity")
	assert.Equal(t, "High error rate on checkout", alert.Title)
	assert.Equal(t, "5xx rate is 8% over 10m", alert.Description)
	assert.Equal(t, types.SeverityCritical, alert.Severity)
	assert.Equal(t, "checkout", alert.Service)
	assert.Equal(t, "2026-01-15T10:30:00Z", alert.Timestamp)
	assert.Equal(t, "prod", alert.Tags["namespace"])
	assert.Empty(t, alert.StackTrace, "label-based alerts carry no trace")
}

func TestAlertmanagerEmptyEnvelopeIsStructuralError(t *testing.T) {
	p := &alertmanagerParser{}
	payload := decode(t, `{"status":"firing","receiver":"triage","alerts":[]}`)
	require.True(t, p.CanParse(payload), "detection accepts the envelope shape")

	_, err := p.Parse(payload)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyEnvelope)
}

func TestAlertmanagerLabelFingerprintFallback(t *testing.T) {
	p := &alertmanagerParser{}
	payload := `{"status":"firing","alerts":[{"status":"firing","labels":{"alertname":"A","severity":"warning"}}]}`

	first, err := p.Parse(decode(t, payload))
	require.NoError(t, err)
	second, err := p.Parse(decode(t, payload))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, first.ID, second.ID, "label hash must be deterministic")

	// Different label set, different identity
	other, err := p.Parse(decode(t, `{"status":"firing","alerts":[{"status":"firing","labels":{"alertname":"B"}}]}`))
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, other.ID)
}

func TestAlertmanagerSeverityLabels(t *testing.T) {
	tests := []struct {
		name     string
		severity string
		status   string
		want     types.Severity
	}{
		{"critical label", "critical", "firing", types.SeverityCritical},
		{"page label", "page", "firing", types.SeverityCritical},
		{"pager label", "pager", "resolved", types.SeverityCritical},
		{"warning label", "warning", "resolved", types.SeverityWarning},
		{"warn label", "warn", "firing", types.SeverityWarning},
		{"no label while firing", "", "firing", types.SeverityWarning},
		{"no label resolved", "", "resolved", types.SeverityInfo},
	}
	p := &alertmanagerParser{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := `{"status":"` + tt.status + `","alerts":[{"status":"` + tt.status + `","labels":{"alertname":"A"`
			if tt.severity != "" {
				payload += `,"severity":"` + tt.severity + `"`
			}
			payload += `}}]}`
			alert, err := p.Parse(decode(t, payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, alert.Severity)
		})
	}
}

func TestAlertmanagerServiceLabelPriority(t *testing.T) {
	p := &alertmanagerParser{}
	payload := decode(t, `{"status":"firing","alerts":[{"labels":{"alertname":"A","namespace":"prod","job":"ingester"}}]}`)
	alert, err := p.Parse(payload)
	require.NoError(t, err)
	assert.Equal(t, "ingester", alert.Service, "job outranks namespace")
}

func TestAlertmanagerTitleFallsBackToAlertname(t *testing.T) {
	p := &alertmanagerParser{}
	alert, err := p.Parse(decode(t, `{"status":"firing","alerts":[{"labels":{"alertname":"DiskFull"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "DiskFull", alert.Title)
	assert.Equal(t, "DiskFull", alert.Description)
}
