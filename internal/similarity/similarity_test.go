package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreIdentity(t *testing.T) {
	inputs := []string{
		"database connection timeout",
		"NullPointerException in UserController",
		"High error rate on checkout-service",
	}
	for _, s := range inputs {
		assert.Equal(t, 1.0, Score(s, s), "identical strings must score 1.0: %q", s)
	}
}

func TestScoreSymmetry(t *testing.T) {
	pairs := [][2]string{
		{"database timeout on orders", "orders database is slow"},
		{"disk full on node-7", "memory pressure on node-7"},
		{"", "anything"},
	}
	for _, p := range pairs {
		assert.Equal(t, Score(p[0], p[1]), Score(p[1], p[0]),
			"score must be symmetric for %q / %q", p[0], p[1])
	}
}

func TestScoreDisjointAndEmpty(t *testing.T) {
	tests := []struct {
		name string
		a, b string
	}{
		{"no shared vocabulary", "database timeout", "checkout latency spike"},
		{"empty left", "", "database timeout"},
		{"empty right", "database timeout", ""},
		{"both empty", "", ""},
		{"only short tokens", "a of is to", "it an on"},
		{"punctuation only", "!!! --- ...", "???"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, 0.0, Score(tt.a, tt.b))
		})
	}
}

func TestScoreCaseAndPunctuationInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Score("Hello, World!", "hello world"))
	assert.Equal(t, 1.0, Score("Database.Connection::Timeout", "database connection timeout"))
}

func TestScorePartialOverlap(t *testing.T) {
	// {database, connection, timeout} vs {database, connection, refused}
	// intersection 2, union 4
	assert.InDelta(t, 0.5, Score("database connection timeout", "database connection refused"), 1e-9)
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := Tokenize("OOM at 3 am in pod api-gateway")
	assert.Contains(t, tokens, "oom")
	assert.Contains(t, tokens, "pod")
	assert.Contains(t, tokens, "api")
	assert.Contains(t, tokens, "gateway")
	assert.NotContains(t, tokens, "at")
	assert.NotContains(t, tokens, "am")
	assert.NotContains(t, tokens, "in")
	assert.NotContains(t, tokens, "3")
}

// Pins the tuned cutoff so an accidental change shows up as a test failure
// rather than a silent shift in duplicate-detection behavior.
func TestMinTokenLengthBaseline(t *testing.T) {
	assert.Equal(t, 2, MinTokenLength)
}
