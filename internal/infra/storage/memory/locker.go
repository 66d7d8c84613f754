package memory

import (
	"context"
	"sync"
	"time"

	"staybook/internal/app/policies"
)

// Locker is the in-process fallback lock used when Redis is not
// configured.
type Locker struct {
	mu    sync.Mutex
	holds map[string]time.Time
}

var _ policies.LockPort = (*Locker)(nil)

func NewLocker() *Locker {
	return &Locker{holds: map[string]time.Time{}}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if expiry, ok := l.holds[key]; ok && time.Now().Before(expiry) {
		return false, nil
	}
	l.holds[key] = time.Now().Add(ttl)
	return true, nil
}

func (l *Locker) Unlock(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.holds, key)
	return nil
}
