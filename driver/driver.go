// Package driver defines the blocking storage primitive gateways run on,
// plus a name registry for the bundled driver implementations.
package driver

import "github.com/rowgate/rowgate/record"

// SelectOpts modify a Select call. A zero Limit means unlimited.
type SelectOpts struct {
	OrderBy    string
	Descending bool
	Offset     int
	Limit      int
}

// Result is a tabular query result. Rows are in storage-native order unless
// the Select was ordered explicitly.
type Result struct {
	Fields []record.Field
	Rows   []map[string]any
}

// Driver is the execution boundary of the storage engine. Every call blocks
// until the engine returns; the driver owns connection lifecycle, timeouts
// and cancellation. Failures carry the engine's diagnostic verbatim and are
// never retried at this layer. Drivers may be shared between gateways and
// must be safe for concurrent use.
type Driver interface {
	// Name returns the registered driver name.
	Name() string

	// Select returns all rows of the table matching the filter text.
	Select(table, where string, opts SelectOpts) (*Result, error)

	// Insert adds one row and returns the storage form of its key. When the
	// key column is absent from the values, the engine assigns the next
	// sequence value. Inserting a duplicate key fails.
	Insert(table, keyColumn string, values map[string]any) (any, error)

	// Replace inserts or overwrites one row by its unique key.
	Replace(table, keyColumn string, values map[string]any) error

	// Update merges the patch into every row matching the filter text and
	// returns the affected row count. The key column lets engines that index
	// rows by key re-key a row when the patch changes its key value.
	Update(table, keyColumn, where string, patch map[string]any) (int64, error)

	// Delete removes every row matching the filter text and returns the
	// affected row count.
	Delete(table, where string) (int64, error)

	// Truncate clears the whole table. The default mode is a fast clear that
	// causes an implicit commit and resets the sequence; rowWise deletes row
	// by row, stays usable inside a transaction and keeps the sequence.
	Truncate(table string, rowWise bool) (int64, error)

	// Escape escapes a scalar string value for embedding into filter text.
	Escape(s string) string

	// Close releases the underlying engine.
	Close() error
}
