// Package rowenc serializes row attribute maps for the durable drivers. The
// first byte of every payload names its format, so tables may hold a mix of
// formats and drivers can pick fast paths per entry.
package rowenc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Format identifies the serialization of a row payload.
type Format byte

// Row payload formats.
const (
	JSON    Format = 'J'
	CBOR    Format = 'C'
	MsgPack Format = 'M'
)

// Errors.
var (
	ErrTruncated     = errors.New("rowenc: payload too short")
	ErrUnknownFormat = errors.New("rowenc: unknown format")
)

// Encode serializes an attribute map in the given format, prefixed with the
// format byte.
func Encode(attrs map[string]any, format Format) ([]byte, error) {
	var data []byte
	var err error

	switch format {
	case JSON:
		data, err = json.Marshal(attrs)
	case CBOR:
		data, err = cbor.Marshal(attrs)
	case MsgPack:
		data, err = msgpack.Marshal(attrs)
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownFormat, byte(format))
	}
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(data)+1)
	out = append(out, byte(format))
	return append(out, data...), nil
}

// Decode deserializes a format-prefixed payload back into an attribute map.
func Decode(data []byte) (map[string]any, error) {
	format, err := FormatOf(data)
	if err != nil {
		return nil, err
	}

	attrs := make(map[string]any)
	switch format {
	case JSON:
		err = json.Unmarshal(data[1:], &attrs)
	case CBOR:
		err = cbor.Unmarshal(data[1:], &attrs)
	case MsgPack:
		err = msgpack.Unmarshal(data[1:], &attrs)
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownFormat, byte(format))
	}
	if err != nil {
		return nil, err
	}
	return attrs, nil
}

// FormatOf returns the format byte of a payload.
func FormatOf(data []byte) (Format, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return Format(data[0]), nil
}

// Payload returns the serialized bytes without the format prefix, for
// drivers that operate on the raw payload directly.
func Payload(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrTruncated
	}
	return data[1:], nil
}
