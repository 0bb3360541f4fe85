package gateway

import (
	"errors"
	"fmt"
)

// Errors.
var (
	ErrNotFound        = errors.New("row not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// invalidArgument marks a contract violation that was detectable without a
// round trip.
func invalidArgument(err error) error {
	if errors.Is(err, ErrInvalidArgument) {
		return err
	}
	return fmt.Errorf("%w: %s", ErrInvalidArgument, err)
}

// WriteError reports a failed insert, update, delete or replace statement.
// It carries the driver's diagnostic verbatim; the gateway performs no
// compensating action, callers treat it as terminal for that operation.
type WriteError struct {
	Op    string
	Table string
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s on table %s failed: %s", e.Op, e.Table, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func writeFailure(op, table string, err error) error {
	return &WriteError{Op: op, Table: table, Err: err}
}

// IsWriteFailure reports whether an error stems from a failed write
// statement.
func IsWriteFailure(err error) bool {
	var we *WriteError
	return errors.As(err, &we)
}
