package user

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList remembers signed-out token ids until the token would have
// expired anyway.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewRevocationList keeps revocations in Redis, or in process memory when
// rdb is nil.
func NewRevocationList(rdb *redis.Client) RevocationList {
	if rdb == nil {
		return &memoryRevocations{until: make(map[string]time.Time)}
	}
	return &redisRevocations{rdb: rdb}
}

func revokedKey(tokenID string) string {
	return "revoked_token:" + tokenID
}

type redisRevocations struct {
	rdb *redis.Client
}

func (r *redisRevocations) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	return r.rdb.SetEx(ctx, revokedKey(tokenID), "1", ttl).Err()
}

func (r *redisRevocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, revokedKey(tokenID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type memoryRevocations struct {
	mu    sync.Mutex
	until map[string]time.Time
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	for id, t := range m.until {
		if now.After(t) {
			delete(m.until, id)
		}
	}
	m.until[tokenID] = now.Add(ttl)
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.until[tokenID]
	return ok && time.Now().Before(t), nil
}
