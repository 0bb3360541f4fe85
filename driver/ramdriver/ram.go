// Package ramdriver provides a process-local, non-durable driver. It is the
// reference implementation of the driver contract and the engine the test
// suites run on.
package ramdriver

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/tevino/abool"

	"github.com/rowgate/rowgate/driver"
	"github.com/rowgate/rowgate/filter"
	"github.com/rowgate/rowgate/record"
)

func init() {
	_ = driver.Register("ram", func(location string) (driver.Driver, error) {
		return New(), nil
	})
}

// RAM is an in-memory tabular driver. Row order within a table is insertion
// order, which doubles as the storage-native order.
type RAM struct {
	lock   sync.RWMutex
	tables map[string]*table
	closed *abool.AtomicBool
}

type table struct {
	cols []string
	rows []map[string]any
	seq  int64
}

// New creates an empty in-memory driver.
func New() *RAM {
	return &RAM{
		tables: make(map[string]*table),
		closed: abool.NewBool(false),
	}
}

// Name returns the registered driver name.
func (r *RAM) Name() string {
	return "ram"
}

func (r *RAM) check() error {
	if r.closed.IsSet() {
		return driver.ErrClosed
	}
	return nil
}

func (t *table) trackColumns(values map[string]any) {
	for name := range values {
		found := false
		for _, col := range t.cols {
			if col == name {
				found = true
				break
			}
		}
		if !found {
			t.cols = append(t.cols, name)
		}
	}
	sort.Strings(t.cols)
}

func (t *table) fields() []record.Field {
	fields := make([]record.Field, 0, len(t.cols))
	for _, col := range t.cols {
		fields = append(fields, record.Field{Name: col, Type: t.typeOf(col)})
	}
	return fields
}

func (t *table) typeOf(col string) string {
	for _, row := range t.rows {
		switch row[col].(type) {
		case nil:
			continue
		case string:
			return "TEXT"
		case []byte:
			return "BLOB"
		case float32, float64:
			return "REAL"
		case bool:
			return "BOOL"
		default:
			return "INTEGER"
		}
	}
	return "TEXT"
}

// Select returns all rows of the table matching the filter text.
func (r *RAM) Select(tableName, where string, opts driver.SelectOpts) (*driver.Result, error) {
	if err := r.check(); err != nil {
		return nil, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return nil, err
	}

	r.lock.RLock()
	defer r.lock.RUnlock()

	t, ok := r.tables[tableName]
	if !ok {
		return &driver.Result{}, nil
	}

	var matched []map[string]any
	for _, row := range t.rows {
		if cond.Matches(filter.MapFetcher(row)) {
			matched = append(matched, row)
		}
	}

	matched = driver.OrderAndPage(matched, opts)

	rows := make([]map[string]any, 0, len(matched))
	for _, row := range matched {
		rows = append(rows, record.CloneAttrs(row))
	}
	return &driver.Result{Fields: t.fields(), Rows: rows}, nil
}

// Insert adds one row, assigning the next sequence value when the key column
// is absent. It returns the storage form of the row's key.
func (r *RAM) Insert(tableName, keyColumn string, values map[string]any) (any, error) {
	if err := r.check(); err != nil {
		return nil, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.tables[tableName]
	if !ok {
		t = &table{}
		r.tables[tableName] = t
	}

	row := record.CloneAttrs(values)
	key, ok := row[keyColumn]
	if !ok || key == nil {
		t.seq++
		key = t.seq
		row[keyColumn] = key
	} else {
		for _, existing := range t.rows {
			if filter.Equal(existing[keyColumn], key) {
				return nil, fmt.Errorf("%w: %v in table %s", driver.ErrDuplicateKey, key, tableName)
			}
		}
		// Keep the sequence ahead of explicitly supplied integer keys.
		if n, ok := asInt(key); ok && n > t.seq {
			t.seq = n
		}
	}

	t.trackColumns(row)
	t.rows = append(t.rows, row)
	return key, nil
}

// Replace inserts or overwrites one row by its unique key, keeping the
// original row position on overwrite.
func (r *RAM) Replace(tableName, keyColumn string, values map[string]any) error {
	if err := r.check(); err != nil {
		return err
	}

	key, ok := values[keyColumn]
	if !ok || key == nil {
		return driver.ErrMissingKey
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.tables[tableName]
	if !ok {
		t = &table{}
		r.tables[tableName] = t
	}

	row := record.CloneAttrs(values)
	t.trackColumns(row)
	for i, existing := range t.rows {
		if filter.Equal(existing[keyColumn], key) {
			t.rows[i] = row
			return nil
		}
	}
	if n, ok := asInt(key); ok && n > t.seq {
		t.seq = n
	}
	t.rows = append(t.rows, row)
	return nil
}

// Update merges the patch into every row matching the filter text. Rows are
// not indexed by key here, so the key column needs no special handling.
func (r *RAM) Update(tableName, keyColumn, where string, patch map[string]any) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return 0, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.tables[tableName]
	if !ok {
		return 0, nil
	}

	var affected int64
	for _, row := range t.rows {
		if !cond.Matches(filter.MapFetcher(row)) {
			continue
		}
		for name, value := range record.CloneAttrs(patch) {
			row[name] = value
		}
		t.trackColumns(row)
		affected++
	}
	return affected, nil
}

// Delete removes every row matching the filter text.
func (r *RAM) Delete(tableName, where string) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return 0, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.tables[tableName]
	if !ok {
		return 0, nil
	}

	kept := t.rows[:0]
	var affected int64
	for _, row := range t.rows {
		if cond.Matches(filter.MapFetcher(row)) {
			affected++
			continue
		}
		kept = append(kept, row)
	}
	t.rows = kept
	return affected, nil
}

// Truncate clears the whole table. The fast mode also resets the sequence,
// the rowWise mode keeps it, mirroring TRUNCATE vs DELETE semantics.
func (r *RAM) Truncate(tableName string, rowWise bool) (int64, error) {
	if err := r.check(); err != nil {
		return 0, err
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	t, ok := r.tables[tableName]
	if !ok {
		return 0, nil
	}

	affected := int64(len(t.rows))
	t.rows = nil
	if !rowWise {
		t.seq = 0
	}
	return affected, nil
}

// Escape doubles single quotes.
func (r *RAM) Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Close marks the driver as closed. Further calls fail with ErrClosed.
func (r *RAM) Close() error {
	r.closed.Set()
	return nil
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	default:
		return 0, false
	}
}
