// Package coerce converts loosely typed values decoded from JSON or YAML
// into the concrete types the roster engine works with.
package coerce

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Number returns v as a finite float64. Numeric strings are parsed; anything
// else reports ok=false.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case int32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOr returns Number(v) or def when v is not a finite number
func NumberOr(v any, def float64) float64 {
	if f, ok := Number(v); ok {
		return f
	}
	return def
}

// Numeric is like Number but rejects strings. It is used where only a
// well-typed number may override a derived value.
func Numeric(v any) (float64, bool) {
	if _, isString := v.(string); isString {
		return 0, false
	}
	return Number(v)
}

// Integer parses v as an integer, truncating fractional values and reading
// the leading digits of strings ("12 models" -> 12). Results saturate at the
// int32 range.
func Integer(v any) (int, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		end := 0
		for end < len(s) && (s[end] >= '0' && s[end] <= '9' || (end == 0 && (s[end] == '-' || s[end] == '+'))) {
			end++
		}
		n, err := strconv.ParseInt(s[:end], 10, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		return saturate(float64(n)), true
	}
	f, ok := Number(v)
	if !ok {
		return 0, false
	}
	return saturate(f), true
}

func saturate(f float64) int {
	switch {
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int(math.Trunc(f))
}

// String returns v when it is a string. Numbers are formatted so that ids
// written as numbers in older files still resolve.
func String(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64), true
	case int:
		return strconv.Itoa(s), true
	case int64:
		return strconv.FormatInt(s, 10), true
	case fmt.Stringer:
		return s.String(), true
	default:
		return "", false
	}
}

// Text returns the trimmed string value of v or "" when it has none
func Text(v any) string {
	s, _ := String(v)
	return strings.TrimSpace(s)
}

// Bool reports whether v is the boolean true
func Bool(v any) bool {
	b, ok := v.(bool)
	return ok && b
}

// FirstText returns the first non-empty text value among the given keys
func FirstText(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := Text(rec[key]); s != "" {
			return s
		}
	}
	return ""
}

// Record returns v as a map, or nil when it is not an object
func Record(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

// List returns v as a slice, or nil when it is not an array
func List(v any) []any {
	l, _ := v.([]any)
	return l
}
