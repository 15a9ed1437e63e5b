// Package sequence provides monotonically increasing sequence numbers for
// certificate allocation. Gaps are acceptable, duplicates are not.
package sequence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Allocator hands out monotonically increasing numbers for a named sequence
type Allocator interface {
	// Next returns the next number in the sequence. A number returned once
	// is never returned again, even across restarts.
	Next(ctx context.Context, name string) (int64, error)
}

// RedisAllocator implements Allocator on Redis INCR. INCR is atomic and the
// counter survives restarts, so the sequence is crash-safe; an allocation
// whose surrounding work fails leaves a gap, never a duplicate.
type RedisAllocator struct {
	redis     *redis.Client
	keyPrefix string
}

func NewRedisAllocator(redis *redis.Client, keyPrefix string) *RedisAllocator {
	return &RedisAllocator{
		redis:     redis,
		keyPrefix: keyPrefix,
	}
}

func (a *RedisAllocator) Next(ctx context.Context, name string) (int64, error) {
	key := fmt.Sprintf("%s:sequence:%s", a.keyPrefix, name)
	return a.redis.Incr(ctx, key).Result()
}
