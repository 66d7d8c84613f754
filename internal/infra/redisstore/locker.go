package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"staybook/internal/app/policies"
)

// Locker implements single-flight locks with SET NX and a TTL so a
// crashed holder cannot wedge the key forever.
type Locker struct {
	Client *redis.Client
}

var _ policies.LockPort = (*Locker)(nil)

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.Client.SetNX(ctx, "lock:"+key, "1", ttl).Result()
}

func (l *Locker) Unlock(ctx context.Context, key string) error {
	return l.Client.Del(ctx, "lock:"+key).Err()
}
