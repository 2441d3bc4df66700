package redis

import (
	"context"
	"fmt"
	"time"
)

// RateLimiter is a fixed-window counter on top of Redis. It guards both
// inbound bot commands and the tariff-bound "check now" action.
type RateLimiter struct {
	client RedisClient
}

func NewRateLimiter(client RedisClient) *RateLimiter {
	return &RateLimiter{client: client}
}

func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := r.client.Incr(ctx, key)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := r.client.Expire(ctx, key, window); err != nil {
			return false, err
		}
	}

	if count > int64(limit) {
		return false, nil
	}

	return true, nil
}

// AllowManualCheck admits at most one on-demand check per user within
// the given window.
func (r *RateLimiter) AllowManualCheck(ctx context.Context, userID int64, window time.Duration) (bool, error) {
	return r.Allow(ctx, CheckNowKey(userID), 1, window)
}

func UserCommandKey(userID int64, command string) string {
	return fmt.Sprintf("rate_limit:%d:%s", userID, command)
}

// CheckNowKey scopes the manual-check window per user; the window length
// comes from the user's tariff.
func CheckNowKey(userID int64) string {
	return fmt.Sprintf("check_now:%d", userID)
}
