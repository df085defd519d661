package watcher

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDebouncerCoalescesRapidEventsForSamePath(t *testing.T) {
	var mu sync.Mutex
	var applied []EventType

	d := newDebouncer(20*time.Millisecond, func(path string, kind EventType) {
		mu.Lock()
		applied = append(applied, kind)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go d.run(ctx, &wg)

	d.add("a.py", EventWrite)
	d.add("a.py", EventWrite)
	d.add("a.py", EventRemove)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(applied) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	require.Equal(t, EventRemove, applied[0])
	mu.Unlock()

	cancel()
	wg.Wait()
}

func TestDebouncerHandlesDistinctPathsIndependently(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]EventType{}

	d := newDebouncer(10*time.Millisecond, func(path string, kind EventType) {
		mu.Lock()
		seen[path] = kind
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go d.run(ctx, &wg)

	d.add("a.py", EventWrite)
	d.add("b.py", EventRemove)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, time.Second, 5*time.Millisecond)

	cancel()
	wg.Wait()
}
