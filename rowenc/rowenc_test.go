package rowenc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	attrs := map[string]any{
		"name":   "alice",
		"active": true,
		"note":   nil,
	}

	for _, format := range []Format{JSON, CBOR, MsgPack} {
		format := format
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			req := require.New(t)

			data, err := Encode(attrs, format)
			req.NoError(err)
			req.Equal(byte(format), data[0])

			got, err := FormatOf(data)
			req.NoError(err)
			req.Equal(format, got)

			decoded, err := Decode(data)
			req.NoError(err)
			req.Equal("alice", decoded["name"])
			req.Equal(true, decoded["active"])
			req.Nil(decoded["note"])
		})
	}
}

func TestBinaryFidelity(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	raw := []byte{0x01, 0x89, 0xae, 0xf2}

	// CBOR and MsgPack keep byte slices intact.
	for _, format := range []Format{CBOR, MsgPack} {
		data, err := Encode(map[string]any{"id": raw}, format)
		req.NoError(err)
		decoded, err := Decode(data)
		req.NoError(err)
		req.Equal(raw, decoded["id"])
	}

	// JSON does not: byte slices come back as base64 strings. Durable
	// drivers default to CBOR because of this.
	data, err := Encode(map[string]any{"id": raw}, JSON)
	req.NoError(err)
	decoded, err := Decode(data)
	req.NoError(err)
	req.IsType("", decoded["id"])
}

func TestErrors(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	_, err := Encode(map[string]any{}, Format('?'))
	req.ErrorIs(err, ErrUnknownFormat)

	_, err = Decode([]byte{'J'})
	req.ErrorIs(err, ErrTruncated)
	_, err = Decode(nil)
	req.ErrorIs(err, ErrTruncated)

	_, err = Decode([]byte{'?', '{', '}'})
	req.ErrorIs(err, ErrUnknownFormat)

	_, err = Payload([]byte{'J'})
	req.ErrorIs(err, ErrTruncated)
}
