package filter

import (
	"sync"
	"time"

	"github.com/ecanbaykurt/Project-Explorer/internal/dataset"
	"github.com/ecanbaykurt/Project-Explorer/internal/logger"
	"github.com/ecanbaykurt/Project-Explorer/pkg/explorer"
)

// Cache memoizes filtered views keyed by (dataset generation, FilterState
// key). It is an explicit cache, not authoritative state: entries are derived
// values and the whole cache is discarded whenever the dataset generation
// changes or Invalidate is called.
//
// Cached views are shared slices; callers must treat them as read-only.
type Cache struct {
	mu         sync.Mutex
	generation uint64
	entries    map[string][]explorer.ProjectRecord
}

// NewCache creates an empty filter cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string][]explorer.ProjectRecord)}
}

// Apply returns the filtered view for (ds, state), computing and memoizing it
// on first use. Entries cached against an older dataset generation are
// discarded before lookup, so a reloaded dataset never serves stale views.
func (c *Cache) Apply(ds *dataset.Dataset, state explorer.FilterState) ([]explorer.ProjectRecord, error) {
	key := state.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != ds.Generation {
		c.entries = make(map[string][]explorer.ProjectRecord)
		c.generation = ds.Generation
	}

	if view, ok := c.entries[key]; ok {
		logger.LogFilterApplied(key, len(ds.Records), len(view), true, 0)
		return view, nil
	}

	start := time.Now()
	pred, err := Compile(state)
	if err != nil {
		return nil, err
	}
	view := make([]explorer.ProjectRecord, 0, len(ds.Records))
	for i, rec := range ds.Records {
		ok, err := pred.Match(rec, i)
		if err != nil {
			return nil, err
		}
		if ok {
			view = append(view, rec)
		}
	}
	c.entries[key] = view
	logger.LogFilterApplied(key, len(ds.Records), len(view), false, time.Since(start))
	return view, nil
}

// Invalidate discards every cached view.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]explorer.ProjectRecord)
	c.generation = 0
}
