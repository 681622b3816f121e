package lease

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// LocalLocker keeps leases in process memory. Used when Redis is not
// configured; it only excludes workers sharing this process.
type LocalLocker struct {
	leases *cache.Cache
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{leases: cache.New(cache.NoExpiration, time.Minute)}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), bool, error) {
	token := uuid.NewString()
	if err := l.leases.Add(key, token, ttl); err != nil {
		return nil, false, nil
	}
	release := func() {
		if held, ok := l.leases.Get(key); ok && held == token {
			l.leases.Delete(key)
		}
	}
	return release, true, nil
}

func (l *LocalLocker) Held(ctx context.Context, key string) (bool, error) {
	_, ok := l.leases.Get(key)
	return ok, nil
}
