// Package badgerdriver provides a durable driver backed by a badger LSM
// store. Rows of one table share a key prefix, so a prefix scan in badger's
// key order is the storage-native order. Row payloads are encoded with
// rowenc.
package badgerdriver

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger"
	"github.com/rs/zerolog"
	"github.com/tevino/abool"

	"github.com/rowgate/rowgate/driver"
	"github.com/rowgate/rowgate/filter"
	"github.com/rowgate/rowgate/record"
	"github.com/rowgate/rowgate/rowenc"
)

func init() {
	_ = driver.Register("badger", func(location string) (driver.Driver, error) {
		return New(&Config{Location: location})
	})
}

// sequence values are handed out in batches; unused ones are lost on close,
// which only leaves gaps, never collisions.
const sequenceBandwidth = 16

// Config holds the options of a badger driver.
type Config struct {
	// Location is the directory holding the database.
	Location string
	// Format is the row payload encoding, rowenc.CBOR if unset.
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

// Badger is a badger backed driver.
type Badger struct {
	db     *badger.DB
	format rowenc.Format
	closed *abool.AtomicBool
	log    zerolog.Logger

	seqLock sync.Mutex
	seqs    map[string]*badger.Sequence
}

// New opens or creates a badger database at the configured location.
func New(cfg *Config) (*Badger, error) {
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

	db, err := badger.Open(badger.DefaultOptions(cfg.Location).WithLogger(nil))
	if err != nil {
		return nil, err
	}

	return &Badger{
		db:     db,
		format: format,
		closed: abool.NewBool(false),
		log:    logger,
		seqs:   make(map[string]*badger.Sequence),
	}, nil
}

// Name returns the registered driver name.
func (b *Badger) Name() string {
	return "badger"
}

func (b *Badger) check() error {
	if b.closed.IsSet() {
		return driver.ErrClosed
	}
	return nil
}

func tablePrefix(table string) []byte {
	return []byte(table + "/")
}

func (b *Badger) entryKey(table string, key any) ([]byte, error) {
	kb, err := driver.KeyBytes(key)
	if err != nil {
		return nil, err
	}
	return append(tablePrefix(table), kb...), nil
}

func (b *Badger) nextSequence(table string) (int64, error) {
	b.seqLock.Lock()
	defer b.seqLock.Unlock()

	seq, ok := b.seqs[table]
	if !ok {
		var err error
		seq, err = b.db.GetSequence([]byte("!seq/"+table), sequenceBandwidth)
		if err != nil {
			return 0, err
		}
		b.seqs[table] = seq
	}

	n, err := seq.Next()
	if err != nil {
		return 0, err
	}
	// Sequences start at zero, keys at one.
	return int64(n) + 1, nil
}

// Select returns all rows of the table matching the filter text.
func (b *Badger) Select(table, where string, opts driver.SelectOpts) (*driver.Result, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return nil, err
	}

	var matched []map[string]any
	err = b.db.View(func(txn *badger.Txn) error {
		prefix := tablePrefix(table)
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix

		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			data, txErr := it.Item().ValueCopy(nil)
			if txErr != nil {
				return txErr
			}
			row, txErr := rowenc.Decode(data)
			if txErr != nil {
				return txErr
			}
			if cond.Matches(filter.MapFetcher(row)) {
				matched = append(matched, row)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matched = driver.OrderAndPage(matched, opts)
	return &driver.Result{Fields: driver.InferFields(matched), Rows: matched}, nil
}

// Insert adds one row, assigning the table's next sequence value when the
// key column is absent.
func (b *Badger) Insert(table, keyColumn string, values map[string]any) (any, error) {
	if err := b.check(); err != nil {
		return nil, err
	}

	row := record.CloneAttrs(values)
	key, ok := row[keyColumn]
	if !ok || key == nil {
		seq, err := b.nextSequence(table)
		if err != nil {
			return nil, err
		}
		key = seq
		row[keyColumn] = key
	}

	ek, err := b.entryKey(table, key)
	if err != nil {
		return nil, err
	}
	data, err := rowenc.Encode(row, b.format)
	if err != nil {
		return nil, err
	}

	err = b.db.Update(func(txn *badger.Txn) error {
		_, txErr := txn.Get(ek)
		switch {
		case txErr == nil:
			return fmt.Errorf("%w: %v in table %s", driver.ErrDuplicateKey, key, table)
		case !errors.Is(txErr, badger.ErrKeyNotFound):
			return txErr
		}
		return txn.Set(ek, data)
	})
	if err != nil {
		return nil, err
	}

	b.log.Debug().Str("table", table).Msg("inserted row")
	return key, nil
}

// Replace inserts or overwrites one row by its unique key.
func (b *Badger) Replace(table, keyColumn string, values map[string]any) error {
	if err := b.check(); err != nil {
		return err
	}

	key, ok := values[keyColumn]
	if !ok || key == nil {
		return driver.ErrMissingKey
	}
	ek, err := b.entryKey(table, key)
	if err != nil {
		return err
	}
	data, err := rowenc.Encode(record.CloneAttrs(values), b.format)
	if err != nil {
		return err
	}

	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(ek, data)
	})
}

// Update merges the patch into every row matching the filter text. If the
// patch changes the key column, the affected entries are re-keyed.
func (b *Badger) Update(table, keyColumn, where string, patch map[string]any) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = b.db.Update(func(txn *badger.Txn) error {
		prefix := tablePrefix(table)
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix

		type entry struct {
			key []byte
			row map[string]any
		}
		var matches []entry

		it := txn.NewIterator(iterOpts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			data, txErr := it.Item().ValueCopy(nil)
			if txErr != nil {
				it.Close()
				return txErr
			}
			row, txErr := rowenc.Decode(data)
			if txErr != nil {
				it.Close()
				return txErr
			}
			if cond.Matches(filter.MapFetcher(row)) {
				matches = append(matches, entry{
					key: it.Item().KeyCopy(nil),
					row: row,
				})
			}
		}
		it.Close()

		for _, e := range matches {
			for name, value := range record.CloneAttrs(patch) {
				e.row[name] = value
			}

			ek := e.key
			if newKey, ok := patch[keyColumn]; ok {
				nek, keyErr := b.entryKey(table, newKey)
				if keyErr != nil {
					return keyErr
				}
				if !bytes.Equal(nek, e.key) {
					if txErr := txn.Delete(e.key); txErr != nil {
						return txErr
					}
					ek = nek
				}
			}

			data, txErr := rowenc.Encode(e.row, b.format)
			if txErr != nil {
				return txErr
			}
			if txErr := txn.Set(ek, data); txErr != nil {
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

// Delete removes every row matching the filter text.
func (b *Badger) Delete(table, where string) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}

	cond, err := filter.Parse(where)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = b.db.Update(func(txn *badger.Txn) error {
		prefix := tablePrefix(table)
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix

		var doomed [][]byte
		it := txn.NewIterator(iterOpts)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			data, txErr := it.Item().ValueCopy(nil)
			if txErr != nil {
				it.Close()
				return txErr
			}
			row, txErr := rowenc.Decode(data)
			if txErr != nil {
				it.Close()
				return txErr
			}
			if cond.Matches(filter.MapFetcher(row)) {
				doomed = append(doomed, it.Item().KeyCopy(nil))
			}
		}
		it.Close()

		for _, k := range doomed {
			if txErr := txn.Delete(k); txErr != nil {
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

// Truncate clears the whole table. The fast mode drops the key prefix
// outside of any transaction, causing an implicit commit; the rowWise mode
// deletes entry by entry inside one transaction.
func (b *Badger) Truncate(table string, rowWise bool) (int64, error) {
	if err := b.check(); err != nil {
		return 0, err
	}

	if !rowWise {
		count, err := b.countPrefix(table)
		if err != nil {
			return 0, err
		}
		if err := b.db.DropPrefix(tablePrefix(table)); err != nil {
			return 0, err
		}
		if err := b.resetSequence(table); err != nil {
			return 0, err
		}
		return count, nil
	}

	return b.Delete(table, "")
}

// resetSequence drops the table's key sequence, both the leased in-memory
// range and the persisted counter, so the next insert starts at one again.
func (b *Badger) resetSequence(table string) error {
	b.seqLock.Lock()
	defer b.seqLock.Unlock()

	if seq, ok := b.seqs[table]; ok {
		if err := seq.Release(); err != nil {
			return err
		}
		delete(b.seqs, table)
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte("!seq/" + table))
	})
}

func (b *Badger) countPrefix(table string) (int64, error) {
	var count int64
	err := b.db.View(func(txn *badger.Txn) error {
		prefix := tablePrefix(table)
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = prefix
		iterOpts.PrefetchValues = false

		it := txn.NewIterator(iterOpts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// Escape doubles single quotes.
func (b *Badger) Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// Close releases the sequences and closes the database.
func (b *Badger) Close() error {
	if !b.closed.SetToIf(false, true) {
		return nil
	}

	b.seqLock.Lock()
	for _, seq := range b.seqs {
		_ = seq.Release()
	}
	b.seqLock.Unlock()

	return b.db.Close()
}
