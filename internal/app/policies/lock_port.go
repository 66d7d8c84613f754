package policies

import (
	"context"
	"time"
)

// LockPort provides single-flight execution per key, used to keep two
// calendar syncs from interleaving their delete/insert phases.
type LockPort interface {
	// TryLock returns false when another holder owns the key.
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key string) error
}
