package filter

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// DefaultEscape doubles single quotes. Drivers provide their own escaper to
// the builder; this one serves literal rendering outside a driver context.
func DefaultEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Literal renders a scalar value as filter text using the default escaper.
func Literal(v any) string {
	return escapedLiteral(v, DefaultEscape)
}

func escapedLiteral(v any, escape func(string) string) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + escape(value) + "'"
	case []byte:
		return "x'" + hex.EncodeToString(value) + "'"
	case bool:
		if value {
			return "1"
		}
		return "0"
	case float32:
		return strconv.FormatFloat(float64(value), 'g', -1, 64)
	case float64:
		return strconv.FormatFloat(value, 'g', -1, 64)
	default:
		if n, ok := toInt(v); ok {
			return strconv.FormatInt(n, 10)
		}
		return "'" + escape(fmt.Sprint(v)) + "'"
	}
}
