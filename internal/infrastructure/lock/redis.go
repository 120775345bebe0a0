package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"

	"github.com/rolegate/rolegate/internal/shared/logger"
)

const (
	keyPrefix     = "rolegate:order-lock:"
	defaultExpiry = 2 * time.Minute
	retryDelay    = 100 * time.Millisecond
)

// RedisLocker holds a redsync mutex per key. The expiry bounds how long a
// crashed holder can block others.
type RedisLocker struct {
	rs     *redsync.Redsync
	expiry time.Duration
	tries  int
	logger logger.Interface
}

func NewRedisLocker(client *redis.Client, expiry time.Duration, log logger.Interface) *RedisLocker {
	if expiry <= 0 {
		expiry = defaultExpiry
	}
	return &RedisLocker{
		rs:     redsync.New(goredis.NewPool(client)),
		expiry: expiry,
		// keep retrying for roughly one expiry window
		tries:  int(expiry/retryDelay) + 1,
		logger: log.Named("lock"),
	}
}

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(keyPrefix+key,
		redsync.WithExpiry(l.expiry),
		redsync.WithTries(l.tries),
		redsync.WithRetryDelay(retryDelay),
	)
	if err := mutex.LockContext(ctx); err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}

	return func() {
		// the caller's ctx may already be done
		if _, err := mutex.UnlockContext(context.Background()); err != nil {
			l.logger.Warnw("failed to release lock", "key", key, "error", err)
		}
	}, nil
}
