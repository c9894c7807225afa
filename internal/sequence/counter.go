package sequence

import (
	"context"
	"sync"

	"pos-backend/internal/database"
)

// CounterAllocator increments a stored counter atomically. The counter is
// seeded from the highest existing number the first time it is used, so an
// existing collection continues its sequence.
type CounterAllocator struct {
	name     string
	source   Source
	counters database.CounterStore

	mu     sync.Mutex
	seeded bool
}

func NewCounterAllocator(name string, source Source, counters database.CounterStore) *CounterAllocator {
	return &CounterAllocator{name: name, source: source, counters: counters}
}

func (a *CounterAllocator) Next(ctx context.Context) string {
	if err := a.seed(ctx); err != nil {
		return fallback(a.name, err)
	}
	n, err := a.counters.Increment(ctx, a.name)
	if err != nil {
		return fallback(a.name, err)
	}
	return Format(n)
}

func (a *CounterAllocator) seed(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seeded {
		return nil
	}
	max, err := a.source.MaxSequence(ctx)
	if err != nil {
		return err
	}
	if err := a.counters.Seed(ctx, a.name, max); err != nil {
		return err
	}
	a.seeded = true
	return nil
}
