// Package gateway implements a table gateway: CRUD operations scoped to one
// logical table, mapping persisted rows to immutable in-memory row objects
// through an identity cache.
//
// Every public operation flows key-normalize, cache-check, batched driver
// call, object construction, cache update. Each operation issues at most one
// blocking round trip to the driver unless its contract says otherwise, and
// nothing is retried; a failed statement surfaces once and the caller
// decides on remediation.
//
// A gateway and its cache serve one unit of concurrent work at a time. There
// is no internal locking; hosting a gateway across goroutines requires
// external synchronization or one gateway instance per concurrent unit.
package gateway

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rowgate/rowgate/driver"
	"github.com/rowgate/rowgate/filter"
	"github.com/rowgate/rowgate/keys"
	"github.com/rowgate/rowgate/record"
)

// Config holds the options of a gateway.
type Config struct {
	// Table is the logical table this gateway serves.
	Table string
	// KeyColumn is the table's identifying key column.
	KeyColumn string
	// Codec transcodes keys between canonical and storage form.
	Codec keys.Codec
	// Factory constructs row objects, record.DefaultFactory if unset.
	Factory record.Factory
	// Driver executes statements. The gateway holds a reference only;
	// connection lifecycle stays with the host.
	Driver driver.Driver
	// CacheSize bounds the identity cache with an LRU. Zero keeps the cache
	// unbounded, growing with process lifetime and caller discipline.
	CacheSize int
	// ReplaceEvictsCache makes Replace evict the cache entry of the replaced
	// key. Off by default: a stale entry for a replaced row is then left
	// untouched until the next targeted delete or clear.
	ReplaceEvictsCache bool
	// Logger is optional.
	Logger *zerolog.Logger
}

func (c *Config) validate() error {
	var errs []error
	if c.Table == "" {
		errs = append(errs, errors.New("table is required"))
	}
	if c.KeyColumn == "" {
		errs = append(errs, errors.New("key column is required"))
	}
	if c.Codec == nil {
		errs = append(errs, errors.New("key codec is required"))
	}
	if c.Driver == nil {
		errs = append(errs, errors.New("driver is required"))
	}
	return errors.Join(errs...)
}

// Gateway provides the CRUD operations of one logical table. Create one
// gateway per table type and keep it for the lifetime of the process.
type Gateway struct {
	table     string
	keyColumn string
	codec     keys.Codec
	factory   record.Factory
	drv       driver.Driver
	cache     cache
	where     *filter.Builder
	log       zerolog.Logger
	stats     *tableStats

	replaceEvictsCache bool
}

// New creates a gateway from the given config.
func New(cfg *Config) (*Gateway, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	factory := cfg.Factory
	if factory == nil {
		factory = record.DefaultFactory
	}
	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = cfg.Logger.With().Str("table", cfg.Table).Logger()
	}

	return &Gateway{
		table:     cfg.Table,
		keyColumn: cfg.KeyColumn,
		codec:     cfg.Codec,
		factory:   factory,
		drv:       cfg.Driver,
		cache:     newCache(cfg.CacheSize),
		where: &filter.Builder{
			KeyColumn: cfg.KeyColumn,
			Codec:     cfg.Codec,
			Escape:    cfg.Driver.Escape,
		},
		log:                logger,
		stats:              newTableStats(cfg.Table),
		replaceEvictsCache: cfg.ReplaceEvictsCache,
	}, nil
}

// Table returns the table this gateway serves.
func (g *Gateway) Table() string {
	return g.table
}

// ClearCache drops every cached row object.
func (g *Gateway) ClearCache() {
	g.cache.clear()
}

// buildObject turns one raw result row into its canonical key and a cached
// row object.
func (g *Gateway) buildObject(raw map[string]any, fields []record.Field) (string, record.Object, error) {
	keyValue, ok := raw[g.keyColumn]
	if !ok {
		return "", nil, fmt.Errorf("%w: result row is missing key column %s", ErrInvalidArgument, g.keyColumn)
	}
	id, err := g.codec.Decode(keyValue)
	if err != nil {
		return "", nil, err
	}

	obj, err := g.factory(raw, fields)
	if err != nil {
		return "", nil, err
	}
	return id, obj, nil
}

// normalizeKeyAttr rewrites a canonical key value inside an attribute map to
// its storage form before it is handed to the driver.
func (g *Gateway) normalizeKeyAttr(values map[string]any) error {
	v, ok := values[g.keyColumn]
	if !ok || v == nil || g.codec.LooksEncoded(v) {
		return nil
	}
	canonical, ok := v.(string)
	if !ok {
		return fmt.Errorf("%w: key attribute must be a canonical string or storage value, got %T", ErrInvalidArgument, v)
	}
	encoded, err := g.codec.Encode(canonical)
	if err != nil {
		return err
	}
	values[g.keyColumn] = encoded
	return nil
}

// canonicalKey returns the canonical form of a key value that may arrive in
// either representation. Canonical input is normalized through an
// encode/decode round trip, so e.g. uppercase UUID strings come back in
// canonical lowercase.
func (g *Gateway) canonicalKey(v any) (string, error) {
	if s, ok := v.(string); ok && !g.codec.LooksEncoded(v) {
		encoded, err := g.codec.Encode(s)
		if err != nil {
			return "", err
		}
		return g.codec.Decode(encoded)
	}
	return g.codec.Decode(v)
}

func (g *Gateway) keyFilter(ids []string) (string, error) {
	values := make([]any, 0, len(ids))
	for _, id := range ids {
		values = append(values, id)
	}
	return g.where.Build(filter.Pairs{filter.P(g.keyColumn, values)}, "AND")
}
