package keys

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

type sequentialCodec struct{}

// NewSequential returns the codec for sequential integer keys. The canonical
// form is the decimal string of the integer, the storage form is an int64.
func NewSequential() Codec {
	return sequentialCodec{}
}

func (sequentialCodec) Scheme() Scheme {
	return Sequential
}

func (sequentialCodec) Encode(canonical string) (any, error) {
	n, err := strconv.ParseInt(canonical, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a sequential key", ErrMalformedKey, canonical)
	}
	return n, nil
}

func (sequentialCodec) Decode(storage any) (string, error) {
	switch v := storage.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		// Rows that went through a JSON round trip carry their integers as
		// floats.
		if v != math.Trunc(v) {
			return "", fmt.Errorf("%w: %v is not an integer", ErrMalformedKey, v)
		}
		return strconv.FormatInt(int64(v), 10), nil
	case []byte:
		// Storage engines that index sequential keys by byte order use an
		// 8-byte big-endian representation.
		if len(v) != 8 {
			return "", fmt.Errorf("%w: sequential key must be 8 bytes, got %d", ErrMalformedKey, len(v))
		}
		return strconv.FormatUint(binary.BigEndian.Uint64(v), 10), nil
	case string:
		if _, err := strconv.ParseInt(v, 10, 64); err != nil {
			return "", fmt.Errorf("%w: %q is not a sequential key", ErrMalformedKey, v)
		}
		return v, nil
	default:
		return "", fmt.Errorf("%w: cannot decode %T as sequential key", ErrMalformedKey, storage)
	}
}

func (sequentialCodec) Generate() (string, error) {
	// The storage engine assigns sequential keys on insert.
	return "", ErrNoGenerator
}

func (sequentialCodec) LooksEncoded(v any) bool {
	switch v.(type) {
	case int, int32, int64, uint64, float64:
		return true
	case []byte:
		return true
	default:
		return false
	}
}
