package cache

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"ExchangeCore/internal/observability"
)

// Entity is what a write-behind cache can hold: anything with a stable key,
// a logical timestamp for last-write-wins ordering, and a Clone so the cache
// can hand immutable snapshots to readers on other goroutines.
type Entity[T any] interface {
	CacheKey() string
	Timestamp() int64
	Clone() T
}

// Store is the durable backing for one entity type. Implementations must
// tolerate an empty batch (no-op).
type Store[T Entity[T]] interface {
	GetAll() ([]T, error)
	Get(key string) (T, bool, error)
	Save(e T) error
	SaveBatch(batch map[string]T) error
}

// Cache is the write-behind cache for one aggregate type: an authoritative
// in-memory map plus a pending batch staged for asynchronous flush. All
// domain mutation happens on the single sequencer consumer; the maps are
// still guarded because reads and flushes run on other goroutines.
type Cache[T Entity[T]] struct {
	name string

	mu      sync.RWMutex
	entries map[string]T

	batchMu sync.Mutex
	batch   map[string]T

	// flushMu serializes FlushToDisk calls; staging is never blocked by an
	// in-flight flush because the batch map is swapped out under batchMu.
	flushMu sync.Mutex

	updates atomic.Int64

	policy  FlushPolicy
	store   Store[T]
	newFn   func(key string) T
	log     zerolog.Logger
	metrics *observability.Metrics
}

// New creates a cache. newFn constructs the default entity for GetOrInit and
// GetOrCreate. metrics may be nil.
func New[T Entity[T]](name string, store Store[T], policy FlushPolicy, newFn func(key string) T, log zerolog.Logger, metrics *observability.Metrics) *Cache[T] {
	return &Cache[T]{
		name:    name,
		entries: make(map[string]T),
		batch:   make(map[string]T),
		policy:  policy,
		store:   store,
		newFn:   newFn,
		log:     log.With().Str("cache", name).Logger(),
		metrics: metrics,
	}
}

// Name returns the cache's entity-type name.
func (c *Cache[T]) Name() string { return c.name }

// Get reads from the in-memory map only.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	return e, ok
}

// GetOrInit returns the cached entity or a freshly constructed default
// without storing it.
func (c *Cache[T]) GetOrInit(key string) T {
	if e, ok := c.Get(key); ok {
		return e
	}
	return c.newFn(key)
}

// GetOrCreate returns the cached entity, constructing and storing a default
// if absent.
func (c *Cache[T]) GetOrCreate(key string) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e
	}
	e := c.newFn(key)
	c.entries[key] = e
	return e
}

// Update overwrites the in-memory map unconditionally, then stages a snapshot
// of the entity into the pending batch. The snapshot is returned so callers
// can attach it to results read on other goroutines; the cached entity itself
// stays private to the sequencer consumer.
func (c *Cache[T]) Update(e T) T {
	key := e.CacheKey()
	c.mu.Lock()
	c.entries[key] = e
	c.mu.Unlock()
	snap := e.Clone()
	c.AddToBatch(snap)
	return snap
}

// AddToBatch stages the entity under its key using last-write-wins by
// timestamp: a strictly newer entity replaces the staged one, an equal or
// older one is dropped.
func (c *Cache[T]) AddToBatch(e T) {
	key := e.CacheKey()
	c.batchMu.Lock()
	if staged, ok := c.batch[key]; !ok || e.Timestamp() > staged.Timestamp() {
		c.batch[key] = e
	}
	c.batchMu.Unlock()
	c.updates.Add(1)
}

// ShouldFlush evaluates the cache's flush policy.
func (c *Cache[T]) ShouldFlush() bool {
	c.batchMu.Lock()
	staged := len(c.batch)
	c.batchMu.Unlock()
	return c.policy.ShouldFlush(c.updates.Load(), staged)
}

// FlushToDisk atomically snapshots and clears the pending batch, then writes
// the snapshot to the store in one batch. A concurrent AddToBatch lands in
// the fresh map, never lost and never double-written. Store errors are logged
// and swallowed: the batch stays cleared, an accepted data-loss-on-crash
// tradeoff rather than error-retry.
func (c *Cache[T]) FlushToDisk() {
	c.flushMu.Lock()
	defer c.flushMu.Unlock()

	c.batchMu.Lock()
	if len(c.batch) == 0 {
		c.batchMu.Unlock()
		return
	}
	snapshot := c.batch
	c.batch = make(map[string]T)
	c.batchMu.Unlock()

	start := time.Now()
	if err := c.store.SaveBatch(snapshot); err != nil {
		c.log.Error().Err(err).Int("batch_size", len(snapshot)).Msg("batch flush failed, entities dropped from this cycle")
		if c.metrics != nil {
			c.metrics.StoreErrors.WithLabelValues(c.name).Inc()
		}
		return
	}

	if c.metrics != nil {
		c.metrics.FlushBatchSize.WithLabelValues(c.name).Observe(float64(len(snapshot)))
		c.metrics.FlushDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())
	}
	c.log.Debug().Int("batch_size", len(snapshot)).Msg("batch flushed")
}

// Initialize loads all persisted entities and merges them into the in-memory
// map. Cache wins on tie: a loaded entity only overwrites an in-memory entry
// if its timestamp is strictly greater. Entities with an empty key are
// skipped. Load errors are logged; the cache stays usable (empty).
func (c *Cache[T]) Initialize() {
	loaded, err := c.store.GetAll()
	if err != nil {
		c.log.Error().Err(err).Msg("initialize failed, starting empty")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	merged := 0
	for _, e := range loaded {
		key := e.CacheKey()
		if key == "" {
			continue
		}
		if cur, ok := c.entries[key]; ok && e.Timestamp() <= cur.Timestamp() {
			continue
		}
		c.entries[key] = e
		merged++
	}
	c.log.Info().Int("loaded", len(loaded)).Int("merged", merged).Msg("cache initialized")
}

// Len returns the number of in-memory entries.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// PendingBatchSize returns the number of staged entities.
func (c *Cache[T]) PendingBatchSize() int {
	c.batchMu.Lock()
	defer c.batchMu.Unlock()
	return len(c.batch)
}

// UpdateCounter returns the cumulative AddToBatch count.
func (c *Cache[T]) UpdateCounter() int64 {
	return c.updates.Load()
}
