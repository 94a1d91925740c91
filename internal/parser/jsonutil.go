package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Typed accessors over decoded JSON values. Webhook payloads arrive as
// map[string]any with no schema guarantees; every read states explicitly
// whether the field was present and correctly shaped, and callers map
// "absent or wrong-shaped" to a documented default.

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func getMap(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	child, ok := m[key].(map[string]any)
	return child, ok
}

func getSlice(m map[string]any, key string) ([]any, bool) {
	if m == nil {
		return nil, false
	}
	s, ok := m[key].([]any)
	return s, ok
}

func getString(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func getNumber(m map[string]any, key string) (float64, bool) {
	if m == nil {
		return 0, false
	}
	n, ok := m[key].(float64)
	return n, ok
}

// firstString returns the first present, non-empty string among keys
func firstString(m map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := getString(m, k); ok {
			return s, true
		}
	}
	return "", false
}

// stringy renders a scalar JSON value as a string; maps and slices
// report absent.
func stringy(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return "", false
		}
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	}
	return "", false
}

// firstScalar is firstString but also accepts numbers and bools,
// rendered as strings. Used for identifier fields, which some systems
// emit numerically.
func firstScalar(m map[string]any, keys ...string) (string, bool) {
	if m == nil {
		return "", false
	}
	for _, k := range keys {
		if s, ok := stringy(m[k]); ok {
			return s, true
		}
	}
	return "", false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.000-0700",
}

// parseTime interprets a JSON value as a point in time: RFC 3339-ish
// strings, epoch seconds, or epoch milliseconds. Numeric strings are
// treated as epochs too.
func parseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case string:
		for _, layout := range timeLayouts {
			if ts, err := time.Parse(layout, t); err == nil {
				return ts, true
			}
		}
		if n, err := strconv.ParseFloat(t, 64); err == nil {
			return epochTime(n), true
		}
	case float64:
		if t > 0 {
			return epochTime(t), true
		}
	}
	return time.Time{}, false
}

// epochTime distinguishes second and millisecond epochs by magnitude;
// anything past the year 33658 in seconds is read as milliseconds.
func epochTime(n float64) time.Time {
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC()
	}
	sec, frac := int64(n), n-float64(int64(n))
	return time.Unix(sec, int64(frac*1e9)).UTC()
}

// timestampOrNow normalizes a payload timestamp field to RFC 3339,
// substituting the current time when the field is absent or unparseable.
func timestampOrNow(v any) string {
	if ts, ok := parseTime(v); ok {
		return ts.UTC().Format(time.RFC3339)
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func nowTimestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

var fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*\n?(.*?)```")

// fencedBlock returns the contents of the first fenced code block in s
func fencedBlock(s string) (string, bool) {
	m := fencedBlockRe.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return "", false
	}
	return body, true
}

// stackFrameLines collects lines containing " at ", the dominant frame
// shape across JVM, Node, and .NET traces. At least minLines must match
// before the text is believed to be a trace; fewer matches are treated
// as prose that happens to contain "at".
func stackFrameLines(s string, minLines int) (string, bool) {
	var matched []string
	for _, line := range strings.Split(s, "\n") {
		if strings.Contains(line, " at ") {
			matched = append(matched, strings.TrimSpace(line))
		}
	}
	if len(matched) < minLines {
		return "", false
	}
	return strings.Join(matched, "\n"), true
}

// minStackLines is the default threshold for the " at " heuristic
const minStackLines = 3

// detectStack applies the text heuristics in order: a fenced code block
// wins, then the " at " line scan.
func detectStack(text string) (string, bool) {
	if text == "" {
		return "", false
	}
	if block, ok := fencedBlock(text); ok {
		return block, true
	}
	return stackFrameLines(text, minStackLines)
}

// tagValue renders an arbitrary JSON value for inclusion in the tag map
func tagValue(v any) string {
	if s, ok := stringy(v); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// mergeStringMap copies scalar values of src into dst under their keys
func mergeStringMap(dst map[string]string, src map[string]any) {
	for k, v := range src {
		if s, ok := stringy(v); ok {
			dst[k] = s
		}
	}
}
