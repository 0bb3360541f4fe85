package keys

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
)

type uuidCodec struct {
	now func() time.Time
}

// NewUUIDv4Comb returns the codec for COMB UUID keys. The canonical form is
// the 36 character lowercase hyphenated hex string, the storage form is the
// hyphen-stripped hex nibbles packed big-endian into 16 raw bytes.
func NewUUIDv4Comb() Codec {
	return &uuidCodec{now: time.Now}
}

func (c *uuidCodec) Scheme() Scheme {
	return UUIDv4Comb
}

func (c *uuidCodec) Encode(canonical string) (any, error) {
	u, err := uuid.FromString(canonical)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedKey, err)
	}
	return u.Bytes(), nil
}

func (c *uuidCodec) Decode(storage any) (string, error) {
	switch v := storage.(type) {
	case []byte:
		u, err := uuid.FromBytes(v)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrMalformedKey, err)
		}
		return u.String(), nil
	case string:
		if len(v) == uuid.Size {
			u, err := uuid.FromBytes([]byte(v))
			if err != nil {
				return "", fmt.Errorf("%w: %s", ErrMalformedKey, err)
			}
			return u.String(), nil
		}
		u, err := uuid.FromString(v)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrMalformedKey, err)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("%w: cannot decode %T as UUID key", ErrMalformedKey, storage)
	}
}

// Generate returns a new v4 UUID with its first 48 bits replaced by the
// current Unix millisecond timestamp. Byte order of generated keys therefore
// trends with creation order, which keeps inserts roughly sorted at the
// storage layer. This is a locality optimization, not a monotonic guarantee.
func (c *uuidCodec) Generate() (string, error) {
	u, err := uuid.NewV4()
	if err != nil {
		return "", err
	}

	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(c.now().UnixMilli()))
	copy(u[0:6], ts[2:8])

	return u.String(), nil
}

func (c *uuidCodec) LooksEncoded(v any) bool {
	switch v := v.(type) {
	case []byte:
		return len(v) == uuid.Size
	case string:
		if len(v) != uuid.Size {
			return false
		}
		// A 16 byte string with non-printable bytes is almost certainly a
		// packed UUID. A printable 16 character string stays ambiguous and is
		// treated as canonical.
		for i := 0; i < len(v); i++ {
			if v[i] < 0x20 || v[i] > 0x7e {
				return true
			}
		}
		return false
	default:
		return false
	}
}
