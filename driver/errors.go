package driver

import "errors"

// Errors.
var (
	ErrClosed       = errors.New("driver is closed")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrMissingKey   = errors.New("row is missing its key attribute")
	ErrBadKeyType   = errors.New("unsupported key type")
)
