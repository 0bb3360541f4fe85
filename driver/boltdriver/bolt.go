// Package boltdriver provides a durable driver backed by a bbolt file. Each
// table lives in its own bucket, keyed by the byte form of the row key, so a
// cursor walk is the storage-native order. Row payloads are encoded with
// rowenc; JSON-encoded rows get in-place read and patch fast paths via gjson
// and sjson.
package boltdriver

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/tevino/abool"
	"github.com/tidwall/sjson"
	"go.etcd.io/bbolt"

	"github.com/rowgate/rowgate/driver"
	"github.com/rowgate/rowgate/filter"
	"github.com/rowgate/rowgate/record"
	"github.com/rowgate/rowgate/rowenc"
)

func init() {
	_ = driver.Register("bbolt", func(location string) (driver.Driver, error) {
		return New(&Config{Location: location})
	})
}

// Config holds the options of a bbolt driver.
type Config struct {
	// Location is the directory holding the database file.
	Location string
	// Format is the row payload encoding, rowenc.CBOR if unset. The JSON
	// format enables in-place fast paths but stores binary attribute values
	// as base64 text, so UUID-keyed tables should keep a binary format.
	Format rowenc.Format
	// Logger is optional.
	Logger *zerolog.Logger
}

func (c *Config) validate() error {
	var errs []error
	if c.Location == "" {
		errs = append(errs, errors.New("location is required"))
	}
	return errors.Join(errs...)
}

// Bolt is a bbolt backed driver.
type Bolt struct {
	db     *bbolt.DB
	format rowenc.Format
	closed *abool.AtomicBool
	log    zerolog.Logger
}

// New opens or creates a bbolt database at the configured location.
func New(cfg *Config) (*Bolt, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	format := cfg.Format
	if format == 0 {
		format = rowenc.CBOR
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	db, err := bbolt.Open(filepath.Join(cfg.Location, "tables.bbolt"), 0o600, nil)
	if err != nil {
		return nil, err
	}

	return &Bolt{
		db:     db,
		format: format,
		closed: abool.NewBool(false),
		log:    logger,
	}, nil
}

// Name returns the registered driver name.
func (b *Bolt) Name() string {
	return "bbolt"
}

func (b *Bolt) check() error {
	if b.closed.IsSet() {
		return driver.ErrClosed
	}
	return nil
}

// Select returns all rows of the table matching the filter text.
func (b *Bolt) Select(table, where string, opts driver.SelectOpts) (*driver.Result, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return nil, err
	}

	var matched []map[string]any
	err = b.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}

		return bucket.ForEach(func(k, v []byte) error {
			ok, txErr := entryMatches(v, cond)
			if txErr != nil {
				return txErr
			}
			if !ok {
				return nil
			}

			row, txErr := rowenc.Decode(v)
			if txErr != nil {
				return txErr
			}
			matched = append(matched, row)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	matched = driver.OrderAndPage(matched, opts)
	return &driver.Result{Fields: driver.InferFields(matched), Rows: matched}, nil
}

// entryMatches evaluates the condition against a stored entry. JSON payloads
// are probed in place with gjson; other formats are decoded first.
func entryMatches(data []byte, cond filter.Condition) (bool, error) {
	format, err := rowenc.FormatOf(data)
	if err != nil {
		return false, err
	}

	if format == rowenc.JSON {
		payload, err := rowenc.Payload(data)
		if err != nil {
			return false, err
		}
		return cond.Matches(jsonFetcher(payload)), nil
	}

	row, err := rowenc.Decode(data)
	if err != nil {
		return false, err
	}
	return cond.Matches(filter.MapFetcher(row)), nil
}

// Insert adds one row, assigning the bucket's next sequence value when the
// key column is absent.
func (b *Bolt) Insert(table, keyColumn string, values map[string]any) (any, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	var assigned any
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket, txErr := tx.CreateBucketIfNotExists([]byte(table))
		if txErr != nil {
			return txErr
		}

		row := record.CloneAttrs(values)
		key, ok := row[keyColumn]
		if !ok || key == nil {
			seq, seqErr := bucket.NextSequence()
			if seqErr != nil {
				return seqErr
			}
			key = int64(seq)
			row[keyColumn] = key
		}

		kb, txErr := driver.KeyBytes(key)
		if txErr != nil {
			return txErr
		}
		if bucket.Get(kb) != nil {
			return fmt.Errorf("%w: %v in table %s", driver.ErrDuplicateKey, key, table)
		}

		data, txErr := rowenc.Encode(row, b.format)
		if txErr != nil {
			return txErr
		}
		if txErr := bucket.Put(kb, data); txErr != nil {
			return txErr
		}
		assigned = key
		return nil
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug().Str("table", table).Msg("inserted row")
	return assigned, nil
}

// Replace inserts or overwrites one row by its unique key.
func (b *Bolt) Replace(table, keyColumn string, values map[string]any) error {
	if err := b.check(); err != nil {
		return err
	}

	key, ok := values[keyColumn]
	if !ok || key == nil {
		return driver.ErrMissingKey
	}
	kb, err := driver.KeyBytes(key)
	if err != nil {
		return err
	}
	data, err := rowenc.Encode(record.CloneAttrs(values), b.format)
	if err != nil {
		return err
	}

	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket, txErr := tx.CreateBucketIfNotExists([]byte(table))
		if txErr != nil {
			return txErr
		}
		return bucket.Put(kb, data)
	})
}

// Update merges the patch into every row matching the filter text. If the
// patch changes the key column, the affected entries are re-keyed.
func (b *Bolt) Update(table, keyColumn, where string, patch map[string]any) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}

		// Collect matches first; mutating while iterating invalidates the
		// cursor.
		type entry struct {
			key  []byte
			data []byte
		}
		var matches []entry
		txErr := bucket.ForEach(func(k, v []byte) error {
			ok, matchErr := entryMatches(v, cond)
			if matchErr != nil {
				return matchErr
			}
			if ok {
				matches = append(matches, entry{
					key:  bytes.Clone(k),
					data: bytes.Clone(v),
				})
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		for _, e := range matches {
			data, newKey, txErr := b.patchEntry(e.data, keyColumn, patch)
			if txErr != nil {
				return txErr
			}

			kb := e.key
			if newKey != nil {
				nkb, keyErr := driver.KeyBytes(newKey)
				if keyErr != nil {
					return keyErr
				}
				if !bytes.Equal(nkb, e.key) {
					if txErr := bucket.Delete(e.key); txErr != nil {
						return txErr
					}
					kb = nkb
				}
			}
			if txErr := bucket.Put(kb, data); txErr != nil {
				return txErr
			}
			affected++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// patchEntry applies the patch to a stored entry. JSON payloads are patched
// in place with sjson; other formats take a decode/merge/encode round trip.
// newKey is non-nil when the patch touches the key column.
func (b *Bolt) patchEntry(data []byte, keyColumn string, patch map[string]any) (patched []byte, newKey any, err error) {
	format, err := rowenc.FormatOf(data)
	if err != nil {
		return nil, nil, err
	}

	if format == rowenc.JSON {
		payload, err := rowenc.Payload(data)
		if err != nil {
			return nil, nil, err
		}
		payload = bytes.Clone(payload)
		for name, value := range patch {
			payload, err = sjson.SetBytes(payload, name, value)
			if err != nil {
				return nil, nil, err
			}
		}
		if v, ok := patch[keyColumn]; ok {
			newKey = v
		}
		return append([]byte{byte(rowenc.JSON)}, payload...), newKey, nil
	}

	row, err := rowenc.Decode(data)
	if err != nil {
		return nil, nil, err
	}
	for name, value := range record.CloneAttrs(patch) {
		row[name] = value
	}
	if v, ok := patch[keyColumn]; ok {
		newKey = v
	}
	patched, err = rowenc.Encode(row, format)
	return patched, newKey, err
}

// Delete removes every row matching the filter text.
func (b *Bolt) Delete(table, where string) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}

		var doomed [][]byte
		txErr := bucket.ForEach(func(k, v []byte) error {
			ok, matchErr := entryMatches(v, cond)
			if matchErr != nil {
				return matchErr
			}
			if ok {
				doomed = append(doomed, bytes.Clone(k))
			}
			return nil
		})
		if txErr != nil {
			return txErr
		}

		for _, k := range doomed {
			if txErr := bucket.Delete(k); txErr != nil {
				return txErr
			}
			affected++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Truncate clears the whole table. The fast mode drops the bucket, which
// also resets the sequence; the rowWise mode deletes entry by entry and
// keeps it.
func (b *Bolt) Truncate(table string, rowWise bool) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}

	var affected int64
	err := b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(table))
		if bucket == nil {
			return nil
		}
		affected = int64(bucket.Stats().KeyN)

		if !rowWise {
			return tx.DeleteBucket([]byte(table))
		}

		var doomed [][]byte
		txErr := bucket.ForEach(func(k, v []byte) error {
			doomed = append(doomed, bytes.Clone(k))
			return nil
		})
		if txErr != nil {
			return txErr
		}
		for _, k := range doomed {
			if txErr := bucket.Delete(k); txErr != nil {
				return txErr
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// Escape doubles single quotes.
func (b *Bolt) Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Close syncs and closes the database file.
func (b *Bolt) Close() error {
	if !b.closed.SetToIf(false, true) {
		return nil
	}
	return b.db.Close()
}
