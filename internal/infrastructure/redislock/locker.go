package redislock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// releaseScript deletes the lock key only if it still holds our token, so
// an expired lock reacquired by another process is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end`)

const (
	defaultTTL        = 30 * time.Second
	defaultRetryDelay = 50 * time.Millisecond
)

// Locker provides cross-process mutual exclusion keyed by order ID. Locks
// auto-expire after the TTL so a crashed holder cannot wedge an order
// forever.
type Locker struct {
	client     *redis.Client
	ttl        time.Duration
	retryDelay time.Duration
}

func New(client *redis.Client) *Locker {
	return &Locker{client: client, ttl: defaultTTL, retryDelay: defaultRetryDelay}
}

func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	lockKey := "lock:order:" + key
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("redis lock %s: %w", lockKey, err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retryDelay):
		}
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = releaseScript.Run(ctx, l.client, []string{lockKey}, token).Result()
	}
	return release, nil
}
