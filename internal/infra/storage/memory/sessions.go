package memory

import (
	"context"
	"sync"
	"time"

	"staybook/internal/app/admin"
)

// Sessions keeps admin tokens in process memory.
type Sessions struct {
	mu     sync.Mutex
	tokens map[string]time.Time
}

var _ admin.SessionStore = (*Sessions)(nil)

func NewSessions() *Sessions {
	return &Sessions{tokens: map[string]time.Time{}}
}

func (s *Sessions) Save(ctx context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = time.Now().Add(ttl)
	return nil
}

func (s *Sessions) Exists(ctx context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[token]
	if !ok {
		return false, nil
	}
	if time.Now().After(expiry) {
		delete(s.tokens, token)
		return false, nil
	}
	return true, nil
}
