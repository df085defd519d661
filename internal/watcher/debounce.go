package watcher

import (
	"context"
	"sync"
	"time"
)

// debouncer batches events per path, flushing the latest event type for
// each path after a quiet period (spec.md §4.5: events for the same path
// ≤100ms apart MAY be coalesced). Adapted from the teacher's
// eventDebouncer.
type debouncer struct {
	mu       sync.Mutex
	events   map[string]EventType
	debounce time.Duration
	timer    *time.Timer
	apply    func(path string, kind EventType)
}

func newDebouncer(debounce time.Duration, apply func(path string, kind EventType)) *debouncer {
	return &debouncer{
		events:   make(map[string]EventType),
		debounce: debounce,
		apply:    apply,
	}
}

func (d *debouncer) add(path string, kind EventType) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.events[path] = kind
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.debounce, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	events := d.events
	d.events = make(map[string]EventType)
	d.mu.Unlock()

	for path, kind := range events {
		d.apply(path, kind)
	}
}

// run blocks until ctx is cancelled. Pending events at shutdown are
// intentionally dropped rather than flushed, mirroring the teacher's
// decision to avoid flushing into a torn-down store.
func (d *debouncer) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	<-ctx.Done()

	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.events = make(map[string]EventType)
	d.mu.Unlock()
}
