package sequence

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "pos:sequence:"

// raiseScript sets KEYS[1] to ARGV[1] unless it already holds a larger value,
// mirroring the $max seed of the Mongo counter.
var raiseScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if current < floor then
	redis.call("SET", KEYS[1], floor)
	return floor
end
return current
`)

// RedisAllocator keeps the counter in Redis and advances it with INCR.
type RedisAllocator struct {
	name   string
	key    string
	source Source
	client redis.Cmdable

	mu     sync.Mutex
	seeded bool
}

func NewRedisAllocator(name string, source Source, client redis.Cmdable) *RedisAllocator {
	return &RedisAllocator{
		name:   name,
		key:    redisKeyPrefix + name,
		source: source,
		client: client,
	}
}

func (a *RedisAllocator) Next(ctx context.Context) string {
	if err := a.seed(ctx); err != nil {
		return fallback(a.name, err)
	}
	n, err := a.client.Incr(ctx, a.key).Result()
	if err != nil {
		return fallback(a.name, err)
	}
	return Format(n)
}

// seed raises the key to at least the scanned maximum, so a counter left
// behind by an earlier deployment cannot reissue numbers already stored.
func (a *RedisAllocator) seed(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.seeded {
		return nil
	}
	max, err := a.source.MaxSequence(ctx)
	if err != nil {
		return err
	}
	if err := raiseScript.Run(ctx, a.client, []string{a.key}, max).Err(); err != nil {
		return err
	}
	a.seeded = true
	return nil
}
