package driver

import (
	"encoding/binary"
	"fmt"
	"math"
)

// KeyBytes renders a storage key value as the byte key durable engines index
// rows by. Integer keys use an 8-byte big-endian representation so that byte
// order matches numeric order.
func KeyBytes(v any) ([]byte, error) {
	switch k := v.(type) {
	case []byte:
		return k, nil
	case string:
		return []byte(k), nil
	case int:
		return uintBytes(uint64(k)), nil
	case int64:
		return uintBytes(uint64(k)), nil
	case uint64:
		return uintBytes(k), nil
	case float64:
		// Integer keys come back as floats after a JSON round trip.
		if k != math.Trunc(k) {
			return nil, fmt.Errorf("%w: %v is not an integer key", ErrBadKeyType, k)
		}
		return uintBytes(uint64(int64(k))), nil
	default:
		return nil, fmt.Errorf("%w: cannot index key of type %T", ErrBadKeyType, v)
	}
}

func uintBytes(n uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], n)
	return b[:]
}
