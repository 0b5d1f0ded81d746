package syncer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Deduplicator guarantees at most one in-flight operation per key
// within a freshness window. The first caller executes; everyone else
// arriving before the entry expires shares that execution's outcome,
// including failures. The window is measured from entry creation, not
// settlement, so a hung operation only holds its slot until the TTL
// elapses and a fresh attempt can proceed.
type Deduplicator struct {
	mu      sync.Mutex
	clock   Clock
	ttl     time.Duration
	entries map[string]*dedupEntry
}

type dedupEntry struct {
	done      chan struct{}
	value     any
	err       error
	createdAt time.Time
}

func NewDeduplicator(clock Clock, ttl time.Duration) *Deduplicator {
	if clock == nil {
		clock = SystemClock()
	}
	if ttl <= 0 {
		ttl = 2 * time.Second
	}
	return &Deduplicator{
		clock:   clock,
		ttl:     ttl,
		entries: make(map[string]*dedupEntry),
	}
}

// Do executes fn for key, or joins an execution already in flight.
// The returned shared flag is true when this call did not execute fn
// itself; such callers must re-check resulting state rather than assume
// their own payload was transmitted.
func (d *Deduplicator) Do(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error, bool) {
	d.mu.Lock()
	now := d.clock.Now()
	entry, ok := d.entries[key]
	if ok && now.Sub(entry.createdAt) >= d.ttl {
		// Expired: a fresh attempt proceeds independently. A late result
		// from the superseded entry is discarded by its own callers.
		delete(d.entries, key)
		ok = false
	}
	if ok {
		d.mu.Unlock()
		select {
		case <-entry.done:
			return entry.value, entry.err, true
		case <-ctx.Done():
			return nil, ctx.Err(), true
		}
	}

	entry = &dedupEntry{
		done:      make(chan struct{}),
		createdAt: now,
	}
	d.entries[key] = entry
	d.mu.Unlock()

	entry.value, entry.err = fn(ctx)
	close(entry.done)
	return entry.value, entry.err, false
}

// Forget drops the entry for key so the next call always executes.
func (d *Deduplicator) Forget(key string) {
	d.mu.Lock()
	delete(d.entries, key)
	d.mu.Unlock()
}

// Key builds a dedup key from an operation name and the resource
// identity, so writes to different resources never collide.
func Key(op string, restaurantID, resourceID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", op, restaurantID, resourceID)
}
