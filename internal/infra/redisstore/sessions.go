package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"staybook/internal/app/admin"
)

// Sessions stores admin session tokens with their TTL.
type Sessions struct {
	Client *redis.Client
}

var _ admin.SessionStore = (*Sessions)(nil)

func (s *Sessions) Save(ctx context.Context, token string, ttl time.Duration) error {
	return s.Client.Set(ctx, "admin-session:"+token, "1", ttl).Err()
}

func (s *Sessions) Exists(ctx context.Context, token string) (bool, error) {
	n, err := s.Client.Exists(ctx, "admin-session:"+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
