package gateway

import (
	"github.com/bluele/gcache"

	"github.com/rowgate/rowgate/record"
)

// cache is the identity map of one gateway: canonical key to row object,
// at most one live entry per key. It is exclusively owned and mutated by
// its gateway and therefore unlocked.
type cache interface {
	get(id string) (record.Object, bool)
	put(id string, obj record.Object)
	remove(id string)
	clear()
}

func newCache(size int) cache {
	if size > 0 {
		return &lruCache{gc: gcache.New(size).LRU().Build()}
	}
	return make(mapCache)
}

// mapCache is the default unbounded identity map.
type mapCache map[string]record.Object

func (c mapCache) get(id string) (record.Object, bool) {
	obj, ok := c[id]
	return obj, ok
}

func (c mapCache) put(id string, obj record.Object) {
	c[id] = obj
}

func (c mapCache) remove(id string) {
	delete(c, id)
}

func (c mapCache) clear() {
	for id := range c {
		delete(c, id)
	}
}

// lruCache bounds the identity map for hosts that outlive their working set.
type lruCache struct {
	gc gcache.Cache
}

func (c *lruCache) get(id string) (record.Object, bool) {
	v, err := c.gc.GetIFPresent(id)
	if err != nil {
		return nil, false
	}
	obj, ok := v.(record.Object)
	return obj, ok
}

func (c *lruCache) put(id string, obj record.Object) {
	_ = c.gc.Set(id, obj)
}

func (c *lruCache) remove(id string) {
	c.gc.Remove(id)
}

func (c *lruCache) clear() {
	c.gc.Purge()
}
