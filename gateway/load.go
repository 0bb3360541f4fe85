package gateway

import (
	"github.com/rowgate/rowgate/driver"
	"github.com/rowgate/rowgate/filter"
	"github.com/rowgate/rowgate/record"
)

// LoadIDs loads the rows with the given canonical keys. Requested keys are
// partitioned into cache hits and misses; all misses are fetched in a single
// batched query and freshly fetched rows populate the cache. Keys absent
// from storage are silently omitted from the result, never an error.
func (g *Gateway) LoadIDs(ids []string, useCache bool) (map[string]record.Object, error) {
	found := make(map[string]record.Object, len(ids))

	var misses []string
	if useCache {
		for _, id := range ids {
			if obj, ok := g.cache.get(id); ok {
				found[id] = obj
				g.stats.cacheHits.Inc()
			} else {
				misses = append(misses, id)
				g.stats.cacheMisses.Inc()
			}
		}
	} else {
		misses = ids
	}
	if len(misses) == 0 {
		return found, nil
	}

	where, err := g.keyFilter(misses)
	if err != nil {
		return nil, err
	}

	g.stats.roundTrips.Inc()
	res, err := g.drv.Select(g.table, where, driver.SelectOpts{})
	if err != nil {
		return nil, err
	}

	for _, raw := range res.Rows {
		id, obj, err := g.buildObject(raw, res.Fields)
		if err != nil {
			return nil, err
		}
		found[id] = obj
		g.cache.put(id, obj)
	}
	g.stats.rowsLoaded.Add(len(res.Rows))

	g.log.Debug().Int("requested", len(ids)).Int("fetched", len(res.Rows)).Msg("loaded rows by key")
	return found, nil
}

// Load loads a single row by its canonical key. It fails with ErrNotFound
// if no such row exists.
func (g *Gateway) Load(id string, useCache bool) (record.Object, error) {
	found, err := g.LoadIDs([]string{id}, useCache)
	if err != nil {
		return nil, err
	}
	obj, ok := found[id]
	if !ok {
		return nil, ErrNotFound
	}
	return obj, nil
}

// LoadRange loads a positional page of rows in storage-native order. The
// offset has no relation to key values or insertion order unless the
// storage engine orders rows that way.
func (g *Gateway) LoadRange(offset, count int) ([]record.Object, error) {
	g.stats.roundTrips.Inc()
	res, err := g.drv.Select(g.table, "", driver.SelectOpts{Offset: offset, Limit: count})
	if err != nil {
		return nil, err
	}
	return g.buildAll(res, true)
}

// LoadWhereAnd loads all rows matching the conjunction of the given
// predicate pairs.
func (g *Gateway) LoadWhereAnd(pairs filter.Pairs) ([]record.Object, error) {
	return g.loadWhere(pairs, "AND")
}

// LoadWhereOr loads all rows matching the disjunction of the given
// predicate pairs.
func (g *Gateway) LoadWhereOr(pairs filter.Pairs) ([]record.Object, error) {
	return g.loadWhere(pairs, "OR")
}

// loadWhere caches every match, but does not evict entries of previously
// cached rows that no longer match; only a targeted delete or an explicit
// clear does that.
func (g *Gateway) loadWhere(pairs filter.Pairs, conjunction string) ([]record.Object, error) {
	where, err := g.where.Build(pairs, conjunction)
	if err != nil {
		return nil, invalidArgument(err)
	}

	g.stats.roundTrips.Inc()
	res, err := g.drv.Select(g.table, where, driver.SelectOpts{})
	if err != nil {
		return nil, err
	}
	return g.buildAll(res, true)
}

func (g *Gateway) buildAll(res *driver.Result, cacheResults bool) ([]record.Object, error) {
	objects := make([]record.Object, 0, len(res.Rows))
	for _, raw := range res.Rows {
		id, obj, err := g.buildObject(raw, res.Fields)
		if err != nil {
			return nil, err
		}
		if cacheResults {
			g.cache.put(id, obj)
		}
		objects = append(objects, obj)
	}
	g.stats.rowsLoaded.Add(len(objects))
	return objects, nil
}
