package core

import (
	"context"
	"sync"
	"time"
)

// DefaultDedupTTL is how long a processed event id is remembered. Entries
// older than this are treated as not-yet-processed: a bounded false-negative
// window traded for bounded memory, an explicit approximation of
// exactly-once, not a guarantee over unbounded replay.
const DefaultDedupTTL = 48 * time.Hour

// DedupCache is a time-expiring set of processed event identifiers. Ids are
// grouped into time buckets; expiry is checked lazily on lookup and whole
// buckets are dropped by the periodic sweep.
type DedupCache struct {
	mu         sync.Mutex
	buckets    map[int64]map[string]struct{}
	ttl        time.Duration
	bucketSpan time.Duration
	now        func() time.Time
}

// NewDedupCache creates a dedup cache remembering ids for ttl.
func NewDedupCache(ttl time.Duration) *DedupCache {
	return newDedupCache(ttl, time.Now)
}

func newDedupCache(ttl time.Duration, now func() time.Time) *DedupCache {
	span := ttl / 8
	if span <= 0 {
		span = time.Second
	}
	return &DedupCache{
		buckets:    make(map[int64]map[string]struct{}),
		ttl:        ttl,
		bucketSpan: span,
		now:        now,
	}
}

// MarkProcessed records eventID as processed at the current time.
func (c *DedupCache) MarkProcessed(eventID string) {
	b := c.now().UnixNano() / int64(c.bucketSpan)
	c.mu.Lock()
	set, ok := c.buckets[b]
	if !ok {
		set = make(map[string]struct{})
		c.buckets[b] = set
	}
	set[eventID] = struct{}{}
	c.mu.Unlock()
}

// IsProcessed reports whether eventID was marked within the TTL. Expired
// buckets are ignored even before the sweeper drops them.
func (c *DedupCache) IsProcessed(eventID string) bool {
	oldest := (c.now().Add(-c.ttl).UnixNano()) / int64(c.bucketSpan)
	c.mu.Lock()
	defer c.mu.Unlock()
	for b, set := range c.buckets {
		if b < oldest {
			continue
		}
		if _, ok := set[eventID]; ok {
			return true
		}
	}
	return false
}

// Sweep drops buckets entirely past the TTL.
func (c *DedupCache) Sweep() {
	oldest := (c.now().Add(-c.ttl).UnixNano()) / int64(c.bucketSpan)
	c.mu.Lock()
	for b := range c.buckets {
		if b < oldest {
			delete(c.buckets, b)
		}
	}
	c.mu.Unlock()
}

// StartSweeper runs Sweep every interval until ctx is cancelled.
func (c *DedupCache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

// Size returns the number of remembered ids, expired buckets included.
func (c *DedupCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, set := range c.buckets {
		n += len(set)
	}
	return n
}
