package gateway

import (
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/rowgate/rowgate/driver"
)

// Registry holds the gateways of a host application. It is constructed once
// by the host and passed by reference to whoever needs table access; there
// is no ambient process-wide registry.
type Registry struct {
	gateways map[string]*Gateway
	owned    []driver.Driver
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		gateways: make(map[string]*Gateway),
	}
}

// Add registers a gateway under its table name.
func (r *Registry) Add(g *Gateway) error {
	if _, ok := r.gateways[g.Table()]; ok {
		return fmt.Errorf("gateway for table %q already registered", g.Table())
	}
	r.gateways[g.Table()] = g
	return nil
}

// Get returns the gateway of a table.
func (r *Registry) Get(table string) (*Gateway, bool) {
	g, ok := r.gateways[table]
	return g, ok
}

// Tables returns the registered table names.
func (r *Registry) Tables() []string {
	tables := make([]string, 0, len(r.gateways))
	for table := range r.gateways {
		tables = append(tables, table)
	}
	return tables
}

// OpenDriver opens a driver by registered type name. The registry owns the
// driver and closes it on Close.
func (r *Registry) OpenDriver(name, location string) (driver.Driver, error) {
	d, err := driver.Open(name, location)
	if err != nil {
		return nil, err
	}
	r.owned = append(r.owned, d)
	return d, nil
}

// Close clears all gateway caches and closes every driver the registry
// owns, collecting all close errors.
func (r *Registry) Close() error {
	for _, g := range r.gateways {
		g.ClearCache()
	}

	var merr *multierror.Error
	for _, d := range r.owned {
		merr = multierror.Append(merr, d.Close())
	}
	r.owned = nil
	return merr.ErrorOrNil()
}
