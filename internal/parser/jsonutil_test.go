package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeShapes(t *testing.T) {
	want := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		in   any
	}{
		{"rfc3339", "2026-01-15T10:30:00Z"},
		{"rfc3339 nano", "2026-01-15T10:30:00.000000000Z"},
		{"space separated", "2026-01-15 10:30:00"},
		{"cloudwatch offset", "2026-01-15T10:30:00.000+0000"},
		{"epoch seconds", 1768473000.0},
		{"epoch millis", 1768473000000.0},
		{"epoch string", "1768473000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseTime(tt.in)
			require.True(t, ok)
			assert.True(t, got.Equal(want), "got %v", got)
		})
	}
}

func TestParseTimeRejectsGarbage(t *testing.T) {
	for _, in := range []any{nil, "", "yesterday-ish", true, map[string]any{}} {
		_, ok := parseTime(in)
		assert.False(t, ok, "input %v", in)
	}
}

func TestTimestampOrNowDefaults(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	got := timestampOrNow("not a time")
	ts, err := time.Parse(time.RFC3339, got)
	require.NoError(t, err)
	assert.True(t, ts.After(before), "unparseable input must default to the current time")
}

func TestFencedBlock(t *testing.T) {
	block, ok := fencedBlock("prefix\n```go\npanic: boom\n```\nsuffix")
	require.True(t, ok)
	assert.Equal(t, "panic: boom", block)

	_, ok = fencedBlock("no fences here")
	assert.False(t, ok)

	_, ok = fencedBlock("``````")
	assert.False(t, ok, "an empty block carries no trace")
}

func TestStackFrameLines(t *testing.T) {
	text := "Error: nope\n    at a (a.go:1)\n    at b (b.go:2)\n    at c (c.go:3)\nfooter"
	got, ok := stackFrameLines(text, 3)
	require.True(t, ok)
	assert.Equal(t, "at a (a.go:1)\nat b (b.go:2)\nat c (c.go:3)", got)

	_, ok = stackFrameLines("met at noon\nleft at dusk", 3)
	assert.False(t, ok)
}

func TestFirstScalarRendersNumbersAndBools(t *testing.T) {
	m := map[string]any{"id": 42.0, "flag": true}
	got, ok := firstScalar(m, "missing", "id")
	require.True(t, ok)
	assert.Equal(t, "42", got)

	got, ok = firstScalar(m, "flag")
	require.True(t, ok)
	assert.Equal(t, "true", got)
}
