package usecases

import (
	"context"
	"sync"
	"time"

	"github.com/sglre6355/guildassistant/internal/modules/catalog/application/ports"
	"github.com/sglre6355/guildassistant/internal/modules/catalog/domain"
	"golang.org/x/sync/singleflight"
)

// DefaultIndexTTL is how long a fetched index is served without refetching.
const DefaultIndexTTL = 5 * time.Minute

// Clock returns the current time.
type Clock func() time.Time

type indexEntry struct {
	index     *domain.CatalogIndex
	fetchedAt time.Time
}

// IndexCache memoizes the catalog index for a fixed TTL.
// The entry is replaced as a whole on refresh; readers never see a
// partially updated index.
type IndexCache struct {
	source ports.CatalogSource
	ttl    time.Duration
	now    Clock

	mu    sync.RWMutex
	entry *indexEntry

	group singleflight.Group
}

// IndexCacheOption configures an IndexCache.
type IndexCacheOption func(*IndexCache)

// WithClock replaces the wall clock, mostly for tests.
func WithClock(now Clock) IndexCacheOption {
	return func(c *IndexCache) { c.now = now }
}

// NewIndexCache creates a new IndexCache. A non-positive ttl falls back to
// DefaultIndexTTL.
func NewIndexCache(source ports.CatalogSource, ttl time.Duration, opts ...IndexCacheOption) *IndexCache {
	if ttl <= 0 {
		ttl = DefaultIndexTTL
	}
	c := &IndexCache{
		source: source,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Get returns the cached index, fetching a fresh one when the entry is
// missing or older than the TTL. Concurrent misses share one fetch. The
// shared fetch is not bound to any single caller's cancellation; each caller
// stops waiting when its own ctx is done.
func (c *IndexCache) Get(ctx context.Context) (*domain.CatalogIndex, error) {
	if idx := c.fresh(); idx != nil {
		return idx, nil
	}

	fetchCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan("index", func() (any, error) {
		// Another caller may have refreshed while we were waiting.
		if idx := c.fresh(); idx != nil {
			return idx, nil
		}

		idx, err := c.source.FetchIndex(fetchCtx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entry = &indexEntry{index: idx, fetchedAt: c.now()}
		c.mu.Unlock()

		return idx, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.CatalogIndex), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Invalidate drops the cached entry.
func (c *IndexCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = nil
}

func (c *IndexCache) fresh() *domain.CatalogIndex {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.entry == nil {
		return nil
	}
	if c.now().Sub(c.entry.fetchedAt) >= c.ttl {
		return nil
	}
	return c.entry.index
}
