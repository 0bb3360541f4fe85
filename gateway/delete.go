package gateway

import "github.com/rowgate/rowgate/filter"

// Delete removes a single row by its canonical key. It returns true iff
// exactly one row was removed.
func (g *Gateway) Delete(id string) (bool, error) {
	affected, err := g.DeleteIDs([]string{id})
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DeleteIDs removes the rows with the given canonical keys in one batched
// statement. Every requested key is evicted from the cache unconditionally,
// whether or not a row existed for it. The returned count is what the
// storage engine actually removed and may be less than len(ids).
func (g *Gateway) DeleteIDs(ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	where, err := g.keyFilter(ids)
	if err != nil {
		return 0, err
	}

	for _, id := range ids {
		g.cache.remove(id)
	}

	g.stats.roundTrips.Inc()
	affected, err := g.drv.Delete(g.table, where)
	if err != nil {
		return 0, writeFailure("delete", g.table, err)
	}

	g.log.Debug().Int("requested", len(ids)).Int64("removed", affected).Msg("deleted rows by key")
	return affected, nil
}

// DeleteAll clears the whole table and the cache. The default is a fast
// whole-table clear that causes an implicit commit and is unsafe inside a
// larger transaction; transactionSafe switches to the slower row-equivalent
// delete.
func (g *Gateway) DeleteAll(transactionSafe bool) error {
	g.stats.roundTrips.Inc()
	_, err := g.drv.Truncate(g.table, transactionSafe)
	g.cache.clear()
	if err != nil {
		return writeFailure("truncate", g.table, err)
	}
	return nil
}

// DeleteWhereAnd removes all rows matching the conjunction of the given
// predicate pairs.
func (g *Gateway) DeleteWhereAnd(pairs filter.Pairs, clearCache bool) (int64, error) {
	return g.deleteWhere(pairs, "AND", clearCache)
}

// DeleteWhereOr removes all rows matching the disjunction of the given
// predicate pairs.
func (g *Gateway) DeleteWhereOr(pairs filter.Pairs, clearCache bool) (int64, error) {
	return g.deleteWhere(pairs, "OR", clearCache)
}

// deleteWhere does not know the individual keys it removed, so it defaults
// to clearing the entire cache. Callers may opt out only if they can prove
// no cached entry is affected.
func (g *Gateway) deleteWhere(pairs filter.Pairs, conjunction string, clearCache bool) (int64, error) {
	where, err := g.where.Build(pairs, conjunction)
	if err != nil {
		return 0, invalidArgument(err)
	}

	if clearCache {
		g.cache.clear()
	}

	g.stats.roundTrips.Inc()
	affected, err := g.drv.Delete(g.table, where)
	if err != nil {
		return 0, writeFailure("delete", g.table, err)
	}
	return affected, nil
}
