package boltdriver

import "github.com/tidwall/gjson"

// jsonFetcher evaluates filter conditions directly on a JSON payload, so
// non-matching entries never pay for a full decode.
type jsonFetcher []byte

// Attr returns the value of one attribute.
func (f jsonFetcher) Attr(name string) (any, bool) {
	result := gjson.GetBytes(f, name)
	if !result.Exists() {
		return nil, false
	}

	switch result.Type {
	case gjson.String:
		return result.Str, true
	case gjson.Number:
		return result.Num, true
	case gjson.True:
		return true, true
	case gjson.False:
		return false, true
	case gjson.Null:
		return nil, true
	default:
		return result.Value(), true
	}
}
