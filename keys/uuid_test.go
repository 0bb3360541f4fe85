package keys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUUIDRoundTrip(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	codec := NewUUIDv4Comb()
	req.Equal(UUIDv4Comb, codec.Scheme())

	canonical := "0189aef2-8c01-4a02-9f3b-0c8d2e4f5a6b"
	encoded, err := codec.Encode(canonical)
	req.NoError(err)

	raw, ok := encoded.([]byte)
	req.True(ok)
	req.Len(raw, 16)

	decoded, err := codec.Decode(encoded)
	req.NoError(err)
	req.Equal(canonical, decoded)
}

func TestUUIDDecodeNormalizesCase(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	codec := NewUUIDv4Comb()
	decoded, err := codec.Decode("0189AEF2-8C01-4A02-9F3B-0C8D2E4F5A6B")
	req.NoError(err)
	req.Equal("0189aef2-8c01-4a02-9f3b-0c8d2e4f5a6b", decoded)
}

func TestUUIDGenerate(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	codec := NewUUIDv4Comb()
	id, err := codec.Generate()
	req.NoError(err)
	req.Len(id, 36)

	// Generated keys round trip like any other canonical key.
	encoded, err := codec.Encode(id)
	req.NoError(err)
	decoded, err := codec.Decode(encoded)
	req.NoError(err)
	req.Equal(id, decoded)

	// The version nibble survives the timestamp overlay.
	req.Equal(byte('4'), id[14])
}

func TestUUIDGenerateOrderTrendsWithTime(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	codec := &uuidCodec{now: func() time.Time { return clock }}

	earlier, err := codec.Generate()
	req.NoError(err)

	clock = clock.Add(time.Second)
	later, err := codec.Generate()
	req.NoError(err)

	earlierRaw, err := codec.Encode(earlier)
	req.NoError(err)
	laterRaw, err := codec.Encode(later)
	req.NoError(err)

	req.Less(string(earlierRaw.([]byte)), string(laterRaw.([]byte)))
}

func TestUUIDLooksEncoded(t *testing.T) {
	t.Parallel()
	req := require.New(t)

	codec := NewUUIDv4Comb()
	req.True(codec.LooksEncoded(make([]byte, 16)))
	req.True(codec.LooksEncoded(string([]byte{0x01, 0x89, 0xae, 0xf2, 0x8c, 0x01, 0x4a, 0x02, 0x9f, 0x3b, 0x0c, 0x8d, 0x2e, 0x4f, 0x5a, 0x6b})))
	req.False(codec.LooksEncoded("0189aef2-8c01-4a02-9f3b-0c8d2e4f5a6b"))
	// A printable 16 character string stays ambiguous and counts as
	// canonical.
	req.False(codec.LooksEncoded("sixteen chars..."))
}
