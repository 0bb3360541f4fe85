package filter

import (
	"bytes"
	"strings"
)

// Equal reports whether two attribute values compare equal under filter
// semantics, so numeric types compare across widths.
func Equal(a, b any) bool {
	cmp, comparable := compareValues(a, b)
	return comparable && cmp == 0
}

// Less reports whether a orders before b. Incomparable values report false,
// which keeps their relative order under a stable sort.
func Less(a, b any) bool {
	cmp, comparable := compareValues(a, b)
	return comparable && cmp < 0
}

// compareValues orders two attribute values. The second return value reports
// whether the values are comparable at all; numeric types compare across
// widths, everything else only within its own kind.
func compareValues(a, b any) (cmp int, comparable bool) {
	if ai, ok := toInt(a); ok {
		if bi, ok := toInt(b); ok {
			return compareOrdered(ai, bi), true
		}
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return compareOrdered(af, bf), true
		}
		return 0, false
	}

	switch av := a.(type) {
	case nil:
		if b == nil {
			return 0, true
		}
		return 0, false
	case string:
		switch bv := b.(type) {
		case string:
			return strings.Compare(av, bv), true
		case []byte:
			return strings.Compare(av, string(bv)), true
		}
		return 0, false
	case []byte:
		switch bv := b.(type) {
		case []byte:
			return bytes.Compare(av, bv), true
		case string:
			return bytes.Compare(av, []byte(bv)), true
		}
		return 0, false
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case av:
			return 1, true
		default:
			return -1, true
		}
	default:
		return 0, false
	}
}

func compareOrdered[T int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}

func toFloat(v any) (float64, bool) {
	if n, ok := toInt(v); ok {
		return float64(n), true
	}
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
