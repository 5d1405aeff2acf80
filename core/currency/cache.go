package currency

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kilianp07/evcharge/core/logger"
)

// DefaultTTL is how long a fetched table is served before it is replaced.
const DefaultTTL = 30 * time.Minute

// Source returns the latest live quotes.
type Source interface {
	Latest(ctx context.Context) (RateTable, error)
}

// SnapshotStore shares the last live table between processes. Implementations
// must treat a missing entry as (RateTable{}, false, nil).
type SnapshotStore interface {
	Load(ctx context.Context) (RateTable, bool, error)
	Save(ctx context.Context, t RateTable, ttl time.Duration) error
}

// Fetch asks src for live quotes and substitutes the fallback table on any
// failure. It never returns an error.
func Fetch(ctx context.Context, src Source, log logger.Logger) RateTable {
	if log == nil {
		log = logger.Nop{}
	}
	if src == nil {
		return FallbackTable()
	}
	t, err := src.Latest(ctx)
	if err != nil {
		log.Warnf("exchange rates unavailable, using fallback values: %v", err)
		return FallbackTable()
	}
	return t
}

type entry struct {
	table   RateTable
	expires time.Time
}

// Cache serves a rate table for a fixed time window. The table is replaced
// as a whole on refresh so readers always see a complete table.
type Cache struct {
	src   Source
	store SnapshotStore
	ttl   time.Duration
	log   logger.Logger
	now   func() time.Time

	// OnRefresh, if set, is called with every newly installed table.
	OnRefresh func(RateTable)

	mu      sync.Mutex
	current atomic.Pointer[entry]
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithTTL overrides DefaultTTL. Non-positive values are ignored.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithSnapshotStore shares live tables through store.
func WithSnapshotStore(store SnapshotStore) CacheOption {
	return func(c *Cache) { c.store = store }
}

// WithLogger sets the logger used for fetch and snapshot failures.
func WithLogger(l logger.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) { c.now = now }
}

// NewCache returns a cache fetching from src.
func NewCache(src Source, opts ...CacheOption) *Cache {
	c := &Cache{src: src, ttl: DefaultTTL, log: logger.Nop{}, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Table returns the current table, refreshing it when the window expired.
func (c *Cache) Table(ctx context.Context) RateTable {
	if e := c.current.Load(); e != nil && c.now().Before(e.expires) {
		return e.table
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.current.Load(); e != nil && c.now().Before(e.expires) {
		return e.table
	}
	t := c.load(ctx)
	c.current.Store(&entry{table: t, expires: c.now().Add(c.ttl)})
	if c.OnRefresh != nil {
		c.OnRefresh(t)
	}
	return t
}

// Invalidate forces the next Table call to refresh.
func (c *Cache) Invalidate() { c.current.Store(nil) }

func (c *Cache) load(ctx context.Context) RateTable {
	if c.store != nil {
		t, ok, err := c.store.Load(ctx)
		if err != nil {
			c.log.Warnf("rate snapshot load: %v", err)
		} else if ok && t.Status() == StatusLive {
			return t
		}
	}
	t := Fetch(ctx, c.src, c.log)
	if c.store != nil && t.Status() == StatusLive {
		if err := c.store.Save(ctx, t, c.ttl); err != nil {
			c.log.Warnf("rate snapshot save: %v", err)
		}
	}
	return t
}
