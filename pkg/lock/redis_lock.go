package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"profileHub/pkg/logger"
)

// RedisLocker is a cluster-wide mutual exclusion client for scheduled jobs.
// A lock is a redis key holding a random token; only the holder of the token
// may release or renew it. While held, a background goroutine extends the
// lease so long jobs survive their initial lease time. If the process dies,
// the lease expires and a peer instance can take over.
type RedisLocker struct {
	client *redis.Client

	mu   sync.Mutex
	held map[string]*heldLock
}

type heldLock struct {
	token  string
	cancel context.CancelFunc
}

const lockKeyPrefix = "lock:job:"

// releaseScript deletes the key only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript extends the lease only when the caller still owns it.
var renewScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{
		client: client,
		held:   make(map[string]*heldLock),
	}
}

// TryAcquire attempts to take the lock for key. With wait == 0 it is a single
// fail-fast attempt; otherwise it polls until wait has elapsed. Returns false
// (not an error) when another holder owns the lock.
func (l *RedisLocker) TryAcquire(ctx context.Context, key string, wait, lease time.Duration) (bool, error) {
	if lease <= 0 {
		return false, fmt.Errorf("lease must be positive")
	}

	token := uuid.NewString()
	deadline := time.Now().Add(wait)

	for {
		ok, err := l.client.SetNX(ctx, lockKeyPrefix+key, token, lease).Result()
		if err != nil {
			return false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			l.startRenewal(key, token, lease)
			return true, nil
		}
		if wait <= 0 || time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Release drops the lock if this instance still owns it. Releasing a lock
// that expired or was never held is a no-op.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	h, ok := l.held[key]
	if ok {
		h.cancel()
		delete(l.held, key)
	}
	l.mu.Unlock()

	if !ok {
		return nil
	}

	if err := releaseScript.Run(ctx, l.client, []string{lockKeyPrefix + key}, h.token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}

	return nil
}

// startRenewal extends the lease at a third of its duration until Release.
func (l *RedisLocker) startRenewal(key, token string, lease time.Duration) {
	renewCtx, cancel := context.WithCancel(context.Background())

	l.mu.Lock()
	l.held[key] = &heldLock{token: token, cancel: cancel}
	l.mu.Unlock()

	interval := lease / 3
	if interval < time.Second {
		interval = time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-renewCtx.Done():
				return
			case <-ticker.C:
				res, err := renewScript.Run(renewCtx, l.client,
					[]string{lockKeyPrefix + key}, token, lease.Milliseconds()).Int()
				if err != nil && err != context.Canceled {
					logger.Warn("lock renewal failed", "key", key, "error", err)
					continue
				}
				if res == 0 {
					// lost ownership, stop renewing
					logger.Warn("lock no longer owned, stopping renewal", "key", key)
					return
				}
			}
		}
	}()
}
