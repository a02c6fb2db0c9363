// Package ratelimiter throttles user actions with one Redis key per user and
// action. A nil client disables limiting.
package ratelimiter

import (
	"context"
	"fmt"
	"time"

	"github.com/Marco3041/linkedin-clone/pkg/apperror"
	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	rdb *redis.Client
}

func New(rdb *redis.Client) *Limiter {
	return &Limiter{rdb: rdb}
}

func key(userID, action string) string {
	return fmt.Sprintf("rate_limit:user:%s:%s", userID, action)
}

// Allow reports whether userID may perform action now, and if so blocks it
// for the next window.
func (l *Limiter) Allow(ctx context.Context, userID, action string, window time.Duration) (bool, error) {
	if l == nil || l.rdb == nil || window <= 0 {
		return true, nil
	}

	wasSet, err := l.rdb.SetNX(ctx, key(userID, action), "locked", window).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit in redis: %w", err)
	}
	return wasSet, nil
}

// Retry returns how long userID has to wait before action is allowed again.
func (l *Limiter) Retry(ctx context.Context, userID, action string) (time.Duration, error) {
	if l == nil || l.rdb == nil {
		return 0, nil
	}
	return l.rdb.TTL(ctx, key(userID, action)).Result()
}

func (l *Limiter) Clear(ctx context.Context, userID, action string) error {
	if l == nil || l.rdb == nil {
		return nil
	}
	return l.rdb.Del(ctx, key(userID, action)).Err()
}

// RateLimitError tells the client how long to back off.
type RateLimitError struct {
	Message    string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return e.Message
}

func (e *RateLimitError) Unwrap() error {
	return apperror.ErrRateLimitExceeded
}
