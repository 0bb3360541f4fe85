// Package keys transcodes row identifiers between their canonical form (the
// string callers use everywhere) and their storage form (the value embedded
// into statements).
package keys

import "errors"

// Scheme identifies how a table's identifying keys are generated and stored.
type Scheme uint8

// Key schemes.
const (
	// Sequential keys are integers assigned by the storage engine on insert.
	Sequential Scheme = iota
	// UUIDv4Comb keys are random UUIDs with front-loaded timestamp bits, so
	// that byte order of generated keys trends with creation order.
	UUIDv4Comb
)

// Errors.
var (
	ErrNoGenerator  = errors.New("key scheme does not generate identifiers")
	ErrMalformedKey = errors.New("malformed key")
)

// Codec transcodes keys of one scheme. Encode and Decode are lossless
// inverses for every canonical key.
type Codec interface {
	// Scheme returns the key scheme of this codec.
	Scheme() Scheme

	// Encode converts a canonical key to its storage form.
	Encode(canonical string) (any, error)

	// Decode converts a storage value back to the canonical key.
	Decode(storage any) (string, error)

	// Generate produces a new canonical key. Schemes whose keys are assigned
	// by the storage engine return ErrNoGenerator.
	Generate() (string, error)

	// LooksEncoded reports whether a value appears to already be in storage
	// form. This is a heuristic, not a guarantee: a binary-looking string of
	// the right length is indistinguishable from an encoded key.
	LooksEncoded(v any) bool
}

// New returns the codec for the given scheme.
func New(scheme Scheme) Codec {
	switch scheme {
	case UUIDv4Comb:
		return NewUUIDv4Comb()
	default:
		return NewSequential()
	}
}
