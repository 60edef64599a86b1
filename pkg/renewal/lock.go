package renewal

import (
	"context"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Locker guards a renewal pass. With several gateway replicas running, only
// the lock holder renews; the others skip the pass and try again next tick.
type Locker interface {
	TryLock(ctx context.Context) (bool, error)
	Unlock(ctx context.Context) error
}

// NoopLocker always grants the lock; the single-replica default.
type NoopLocker struct{}

func (NoopLocker) TryLock(_ context.Context) (bool, error) { return true, nil }

func (NoopLocker) Unlock(_ context.Context) error { return nil }

const lockKey = "switchyard:renewal:lock"

// releaseScript deletes the lock only when this holder still owns it, so a
// slow pass can never release a lock a newer holder re-acquired after TTL.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker implements Locker with a SET NX PX lease.
type RedisLocker struct {
	client redis.UniversalClient
	token  string
	ttl    time.Duration
}

func NewRedisLocker(client redis.UniversalClient, token string, ttl time.Duration) *RedisLocker {
	return &RedisLocker{client: client, token: token, ttl: ttl}
}

func (l *RedisLocker) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, lockKey, l.token, l.ttl).Result()
}

func (l *RedisLocker) Unlock(ctx context.Context) error {
	return l.client.Eval(ctx, releaseScript, []string{lockKey}, l.token).Err()
}
