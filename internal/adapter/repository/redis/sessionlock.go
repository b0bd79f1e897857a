package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// SessionLock implements usecase.SessionLock using Redis SET NX. It keeps
// two runner instances from reconciling the same account at once; the TTL
// frees the account if a runner dies mid-session.
type SessionLock struct {
	client *redis.Client
	prefix string
}

// NewSessionLock creates a new SessionLock.
func NewSessionLock(client *redis.Client) *SessionLock {
	return &SessionLock{
		client: client,
		prefix: "reconcile:lock:",
	}
}

// Acquire takes the account lock. Returns false when another runner holds it.
func (l *SessionLock) Acquire(ctx context.Context, accountRef string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+accountRef, "locked", ttl).Result()
}

// Release frees the account lock.
func (l *SessionLock) Release(ctx context.Context, accountRef string) error {
	return l.client.Del(ctx, l.prefix+accountRef).Err()
}
