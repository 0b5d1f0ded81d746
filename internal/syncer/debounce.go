package syncer

import (
	"context"
	"sync"
	"time"
)

// Debouncer coalesces bursts of triggers per key into a single delayed
// invocation. Each trigger resets the short delay, but a burst's hard
// deadline (first trigger + max delay) is never extended, so continuous
// input cannot starve the flush.
type Debouncer struct {
	mu       sync.Mutex
	clock    Clock
	delay    time.Duration
	maxDelay time.Duration
	entries  map[string]*debounceEntry
	onError  func(key string, err error)
	stopped  bool
}

type debounceEntry struct {
	fn       func(context.Context) error
	timer    Timer
	deadline time.Time
	gen      int64
}

type DebounceOptions struct {
	Clock    Clock
	Delay    time.Duration
	MaxDelay time.Duration
	// OnError receives the failure when a fired function returns an
	// error. There is no automatic retry; the next trigger re-arms.
	OnError func(key string, err error)
}

func NewDebouncer(opts DebounceOptions) *Debouncer {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Delay <= 0 {
		opts.Delay = 500 * time.Millisecond
	}
	if opts.MaxDelay < opts.Delay {
		opts.MaxDelay = 10 * opts.Delay
	}
	return &Debouncer{
		clock:    opts.Clock,
		delay:    opts.Delay,
		maxDelay: opts.MaxDelay,
		entries:  make(map[string]*debounceEntry),
		onError:  opts.OnError,
	}
}

// Trigger records fn as the latest payload for key and re-arms the
// timer. Only the most recent fn survives a burst; earlier ones in the
// same window are discarded.
func (d *Debouncer) Trigger(key string, fn func(context.Context) error) {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}

	now := d.clock.Now()
	entry, ok := d.entries[key]
	if !ok {
		entry = &debounceEntry{deadline: now.Add(d.maxDelay)}
		d.entries[key] = entry
	}
	entry.fn = fn
	entry.gen++

	wait := d.delay
	if remaining := entry.deadline.Sub(now); remaining < wait {
		wait = remaining
	}
	if wait < 0 {
		wait = 0
	}

	if entry.timer != nil {
		entry.timer.Stop()
	}
	gen := entry.gen
	entry.timer = d.clock.AfterFunc(wait, func() {
		d.fire(key, gen)
	})
	d.mu.Unlock()
}

// Flush fires the pending entry for key immediately, if any.
func (d *Debouncer) Flush(key string) {
	d.mu.Lock()
	entry, ok := d.entries[key]
	if !ok {
		d.mu.Unlock()
		return
	}
	gen := entry.gen
	d.mu.Unlock()
	d.fire(key, gen)
}

// Cancel drops the pending entry for key without firing it.
func (d *Debouncer) Cancel(key string) {
	d.mu.Lock()
	if entry, ok := d.entries[key]; ok {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		delete(d.entries, key)
	}
	d.mu.Unlock()
}

// Stop cancels every pending entry. Further triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	d.stopped = true
	for key, entry := range d.entries {
		if entry.timer != nil {
			entry.timer.Stop()
		}
		delete(d.entries, key)
	}
	d.mu.Unlock()
}

// Pending reports whether a flush is still armed for key.
func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.entries[key]
	return ok
}

func (d *Debouncer) fire(key string, gen int64) {
	d.mu.Lock()
	entry, ok := d.entries[key]
	if !ok || entry.gen != gen {
		// A newer trigger re-armed the timer; this firing is stale.
		d.mu.Unlock()
		return
	}
	if entry.timer != nil {
		entry.timer.Stop()
	}
	fn := entry.fn
	delete(d.entries, key)
	d.mu.Unlock()

	if err := fn(context.Background()); err != nil && d.onError != nil {
		d.onError(key, err)
	}
}
