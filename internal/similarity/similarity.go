// Package similarity provides a cheap, deterministic lexical similarity
// measure used by duplicate detection.
//
// The score is the Jaccard index over normalized token sets: both inputs
// are lower-cased, punctuation is stripped to whitespace, and short
// tokens are discarded before comparison. The measure is deliberately
// simple and explainable; it carries no model, no state, and no
// language awareness.
package similarity

import (
	"strings"
	"unicode"
)

// MinTokenLength is the shortest token that participates in scoring.
// Tokens at or below this length are connective noise ("a", "of", "is")
// that inflates overlap between unrelated strings. The value is a tuned
// default, not a derived constant; tests pin it as a regression baseline.
const MinTokenLength = 2

// Score returns the lexical similarity between a and b in [0, 1].
// It is symmetric, deterministic, and total: if either input normalizes
// to an empty token set, the score is 0.
func Score(a, b string) float64 {
	setA := Tokenize(a)
	setB := Tokenize(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection

	return float64(intersection) / float64(union)
}

// Tokenize normalizes s into its set of comparison tokens: lower-cased,
// punctuation treated as whitespace, tokens of length <= MinTokenLength
// discarded.
func Tokenize(s string) map[string]struct{} {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
		} else {
			sb.WriteRune(' ')
		}
	}

	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(sb.String()) {
		if len(tok) > MinTokenLength {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}
