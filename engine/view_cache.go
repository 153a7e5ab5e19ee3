package engine

import (
	"sync/atomic"

	"github.com/guileen/gridsource/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ViewCache memoizes filtered, sorted views by plan key. A nil *ViewCache is
// a valid, always-missing cache.
type ViewCache struct {
	views    *lru.Cache[string, []types.Record]
	hits     atomic.Uint64
	misses   atomic.Uint64
	onLookup func(hit bool)
}

// NewViewCache creates a cache holding up to size views. A size of zero or
// less returns nil, disabling caching.
func NewViewCache(size int) (*ViewCache, error) {
	if size <= 0 {
		return nil, nil
	}
	views, err := lru.New[string, []types.Record](size)
	if err != nil {
		return nil, err
	}
	return &ViewCache{views: views}, nil
}

// OnLookup registers fn to observe every lookup
func (c *ViewCache) OnLookup(fn func(hit bool)) {
	if c != nil {
		c.onLookup = fn
	}
}

func (c *ViewCache) Get(key string) ([]types.Record, bool) {
	if c == nil {
		return nil, false
	}
	view, ok := c.views.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	if c.onLookup != nil {
		c.onLookup(ok)
	}
	return view, ok
}

func (c *ViewCache) Add(key string, view []types.Record) {
	if c == nil {
		return
	}
	c.views.Add(key, view)
}

// Len returns the number of cached views
func (c *ViewCache) Len() int {
	if c == nil {
		return 0
	}
	return c.views.Len()
}

// Stats returns lookup hit and miss counts
func (c *ViewCache) Stats() (hits, misses uint64) {
	if c == nil {
		return 0, 0
	}
	return c.hits.Load(), c.misses.Load()
}
