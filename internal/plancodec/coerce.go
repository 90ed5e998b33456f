package plancodec

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Record is one loosely typed persisted document.
type Record = map[string]any

// toFloat coerces any scalar to a finite float. The second result is false
// when the value is absent or does not parse. Booleans stringify to
// "true"/"false" and so never parse as numbers.
func toFloat(v any) (float64, bool) {
	switch v.(type) {
	case nil, bool, *bool:
		return 0, false
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		// Fall back to stringify-then-parse for types cast does not know.
		s, serr := cast.ToStringE(v)
		if serr != nil {
			return 0, false
		}
		f, err = strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func floatOr(v any, def float64) float64 {
	if f, ok := toFloat(v); ok {
		return f
	}
	return def
}

// toCount is toFloat restricted to the range of a 32-bit integer column.
// Anything outside it does not parse.
func toCount(v any) (float64, bool) {
	f, ok := toFloat(v)
	if !ok || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return f, true
}

// intOr truncates toward zero.
func intOr(v any, def int) int {
	if f, ok := toCount(v); ok {
		return int(f)
	}
	return def
}

func boolOr(v any, def bool) bool {
	if v == nil {
		return def
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return def
	}
	return b
}

// requiredString returns a non-empty string field.
func requiredString(rec Record, key string) (string, bool) {
	s, ok := rec[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func stringOr(v any, def string) string {
	if v == nil {
		return def
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return def
	}
	return s
}

func optionalString(v any) *string {
	s, ok := v.(string)
	if !ok {
		return nil
	}
	return &s
}

// optionalTime accepts RFC 3339 strings and time values; anything else is absent.
func optionalTime(v any) *time.Time {
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		return &parsed
	}
	return nil
}

// dateString normalizes a workout date to a string.
func dateString(v any) string {
	if t, ok := v.(time.Time); ok {
		return t.UTC().Format(time.RFC3339)
	}
	return stringOr(v, "")
}

// asList accepts the list shapes JSON and document stores hand back.
func asList(v any) []Record {
	switch l := v.(type) {
	case []Record:
		return l
	case []any:
		out := make([]Record, 0, len(l))
		for _, e := range l {
			if m, ok := e.(Record); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}
