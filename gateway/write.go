package gateway

import (
	"errors"
	"fmt"

	"github.com/rowgate/rowgate/keys"
	"github.com/rowgate/rowgate/record"
)

// Create inserts a new row and returns its canonical key together with a
// fresh snapshot of the persisted row. If the key scheme generates
// identifiers and the caller omitted one, a new key is generated; otherwise
// the storage engine assigns it on insert. The row is reloaded by key after
// the insert, so storage-computed defaults are reflected, and cached.
func (g *Gateway) Create(attrs map[string]any) (string, record.Object, error) {
	values := record.CloneAttrs(attrs)
	if values == nil {
		values = make(map[string]any)
	}

	if v, ok := values[g.keyColumn]; !ok || v == nil {
		id, err := g.codec.Generate()
		switch {
		case err == nil:
			values[g.keyColumn] = id
		case errors.Is(err, keys.ErrNoGenerator):
			delete(values, g.keyColumn)
		default:
			return "", nil, err
		}
	}
	if err := g.normalizeKeyAttr(values); err != nil {
		return "", nil, err
	}

	g.stats.roundTrips.Inc()
	storageKey, err := g.drv.Insert(g.table, g.keyColumn, values)
	if err != nil {
		return "", nil, writeFailure("insert", g.table, err)
	}

	id, err := g.codec.Decode(storageKey)
	if err != nil {
		return "", nil, err
	}

	obj, err := g.Load(id, false)
	if err != nil {
		return "", nil, err
	}

	g.log.Debug().Str("key", id).Msg("created row")
	return id, obj, nil
}

// Replace inserts or overwrites a row by its unique key. It may silently
// create a row that did not previously exist. Unless ReplaceEvictsCache is
// set, the cache is not reconciled: a stale entry for the same key is left
// untouched.
func (g *Gateway) Replace(attrs map[string]any) error {
	values := record.CloneAttrs(attrs)
	v, ok := values[g.keyColumn]
	if !ok || v == nil {
		return fmt.Errorf("%w: replace requires the %s attribute", ErrInvalidArgument, g.keyColumn)
	}
	if err := g.normalizeKeyAttr(values); err != nil {
		return err
	}

	g.stats.roundTrips.Inc()
	if err := g.drv.Replace(g.table, g.keyColumn, values); err != nil {
		return writeFailure("replace", g.table, err)
	}

	if g.replaceEvictsCache {
		id, err := g.codec.Decode(values[g.keyColumn])
		if err != nil {
			return err
		}
		g.cache.remove(id)
	}
	return nil
}

// Update issues a partial UPDATE directly against storage; it never does a
// read-modify-write round trip, which keeps load and save cycles from
// recursing into each other. A statement affecting zero rows is not a
// failure.
//
// Cache reconciliation: if the key is cached and unchanged, a new object is
// synthesized by merging the patch into the prior snapshot (fast path;
// storage-computed side effects such as trigger-set defaults are not
// reflected). If the key is not cached, or the patch changes the key, a
// fresh load is performed instead, and a changed key evicts the stale entry
// under the old key.
func (g *Gateway) Update(id string, patch map[string]any) (record.Object, error) {
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty patch", ErrInvalidArgument)
	}

	values := record.CloneAttrs(patch)
	newID := id
	if v, ok := values[g.keyColumn]; ok {
		canonical, err := g.canonicalKey(v)
		if err != nil {
			return nil, err
		}
		newID = canonical
		if err := g.normalizeKeyAttr(values); err != nil {
			return nil, err
		}
	}

	where, err := g.keyFilter([]string{id})
	if err != nil {
		return nil, err
	}

	g.stats.roundTrips.Inc()
	if _, err := g.drv.Update(g.table, g.keyColumn, where, values); err != nil {
		return nil, writeFailure("update", g.table, err)
	}

	if newID != id {
		g.cache.remove(id)
		g.log.Debug().Str("key", id).Str("new_key", newID).Msg("updated row key")
		return g.Load(newID, false)
	}

	prior, ok := g.cache.get(id)
	if !ok {
		return g.Load(id, false)
	}

	attrs := prior.Attrs()
	for name, value := range values {
		attrs[name] = value
	}
	fields := make([]record.Field, 0, len(prior.Columns()))
	for _, col := range prior.Columns() {
		fields = append(fields, record.Field{Name: col})
	}

	obj, err := g.factory(attrs, fields)
	if err != nil {
		return nil, err
	}
	g.cache.put(id, obj)
	return obj, nil
}
