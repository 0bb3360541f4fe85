package gateway

import (
	"fmt"

	vm "github.com/VictoriaMetrics/metrics"
)

// tableStats are process-wide per-table counters, exposed through the
// default VictoriaMetrics registry.
type tableStats struct {
	cacheHits   *vm.Counter
	cacheMisses *vm.Counter
	roundTrips  *vm.Counter
	rowsLoaded  *vm.Counter
}

func newTableStats(table string) *tableStats {
	counter := func(name string) *vm.Counter {
		return vm.GetOrCreateCounter(fmt.Sprintf(`rowgate_%s_total{table=%q}`, name, table))
	}
	return &tableStats{
		cacheHits:   counter("cache_hits"),
		cacheMisses: counter("cache_misses"),
		roundTrips:  counter("driver_round_trips"),
		rowsLoaded:  counter("rows_loaded"),
	}
}
