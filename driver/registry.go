package driver

import (
	"fmt"
	"sync"
)

// A Factory opens a new driver of its type at the given location.
type Factory func(location string) (Driver, error)

var (
	drivers     = make(map[string]Factory)
	driversLock sync.Mutex
)

// Register registers a new driver type. Bundled drivers register themselves
// on import.
func Register(name string, factory Factory) error {
	driversLock.Lock()
	defer driversLock.Unlock()

	if _, ok := drivers[name]; ok {
		return fmt.Errorf("driver type %q already registered", name)
	}
	drivers[name] = factory
	return nil
}

// Open opens a driver of the given registered type.
func Open(name, location string) (Driver, error) {
	driversLock.Lock()
	factory, ok := drivers[name]
	driversLock.Unlock()

	if !ok {
		return nil, fmt.Errorf("driver type %q not registered", name)
	}
	return factory(location)
}
