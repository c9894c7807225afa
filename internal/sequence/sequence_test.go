package sequence

import (
	"context"
	"errors"
	"os"
	"regexp"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"

	"pos-backend/internal/database/memdb"
	"pos-backend/internal/models"
)

var timestampNumber = regexp.MustCompile(`^#[0-9]{14}$`)

type failingSource struct{}

func (failingSource) MaxSequence(context.Context) (int64, error) {
	return 0, errors.New("store unavailable")
}

type fixedSource int64

func (s fixedSource) MaxSequence(context.Context) (int64, error) { return int64(s), nil }

func TestFormat(t *testing.T) {
	cases := map[int64]string{1: "#001", 42: "#042", 999: "#999", 1000: "#1000"}
	for n, want := range cases {
		if got := Format(n); got != want {
			t.Fatalf("Format(%d): expected %s, got %s", n, want, got)
		}
	}
}

func TestScanAllocatorSequentialCreations(t *testing.T) {
	ctx := context.Background()
	orders := memdb.New().Orders()
	alloc := NewScanAllocator(Orders, orders)

	for i, want := range []string{"#001", "#002", "#003"} {
		number := alloc.Next(ctx)
		if number != want {
			t.Fatalf("creation %d: expected %s, got %s", i+1, want, number)
		}
		_ = orders.Insert(ctx, &models.Order{OrderID: number, SaleNumber: number})
	}
}

func TestAllocatorsFallBackToTimestamp(t *testing.T) {
	ctx := context.Background()
	allocators := []Allocator{
		NewScanAllocator(Estimates, failingSource{}),
		NewCounterAllocator(Estimates, failingSource{}, memdb.New().Counters()),
	}
	for _, alloc := range allocators {
		if number := alloc.Next(ctx); !timestampNumber.MatchString(number) {
			t.Fatalf("%T: expected timestamp fallback, got %s", alloc, number)
		}
	}
}

func TestCounterAllocatorContinuesExistingSequence(t *testing.T) {
	alloc := NewCounterAllocator(Orders, fixedSource(17), memdb.New().Counters())
	if got := alloc.Next(context.Background()); got != "#018" {
		t.Fatalf("expected #018, got %s", got)
	}
	if got := alloc.Next(context.Background()); got != "#019" {
		t.Fatalf("expected #019, got %s", got)
	}
}

func TestCounterAllocatorIssuesUniqueNumbersConcurrently(t *testing.T) {
	alloc := NewCounterAllocator(Orders, fixedSource(0), memdb.New().Counters())

	const workers = 64
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[string]bool, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number := alloc.Next(context.Background())
			mu.Lock()
			defer mu.Unlock()
			if seen[number] {
				t.Errorf("duplicate number %s", number)
			}
			seen[number] = true
		}()
	}
	wg.Wait()

	if len(seen) != workers || !seen["#064"] {
		t.Fatalf("expected #001..#064, got %d numbers", len(seen))
	}
}

func TestRedisAllocator(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	name := "test-" + t.Name()
	client.Del(ctx, redisKeyPrefix+name)
	t.Cleanup(func() { client.Del(ctx, redisKeyPrefix+name) })

	alloc := NewRedisAllocator(name, fixedSource(9), client)
	if got := alloc.Next(ctx); got != "#010" {
		t.Fatalf("expected #010, got %s", got)
	}
	if got := alloc.Next(ctx); got != "#011" {
		t.Fatalf("expected #011, got %s", got)
	}

	// A stale key from an earlier run sits below the stored maximum.
	client.Set(ctx, redisKeyPrefix+name, 3, 0)
	if got := NewRedisAllocator(name, fixedSource(20), client).Next(ctx); got != "#021" {
		t.Fatalf("stale key must be raised to the stored maximum, expected #021, got %s", got)
	}

	// A key already ahead of the scan is left alone.
	if got := NewRedisAllocator(name, fixedSource(5), client).Next(ctx); got != "#022" {
		t.Fatalf("expected #022, got %s", got)
	}
}
