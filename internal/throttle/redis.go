// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 EcoTech Solutions Contributors

// Package throttle tracks failed logins per username across processes.
package throttle

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

// KeyPrefix namespaces the failure counters.
const KeyPrefix = "ecotech:login_failures:"

// Default limits.
const (
	DefaultMaxFailures = 10
	DefaultWindow      = 15 * time.Minute
)

// RedisLimiter counts failures in Redis with a sliding expiry. The window is
// refreshed on every failure, so a username stays blocked until it has been
// quiet for a full window.
type RedisLimiter struct {
	client      redis.UniversalClient
	maxFailures int64
	window      time.Duration
}

// NewRedisLimiter creates a limiter. Non-positive limits fall back to the
// defaults.
func NewRedisLimiter(client redis.UniversalClient, maxFailures int, window time.Duration) (*RedisLimiter, error) {
	if client == nil {
		return nil, oops.Code("THROTTLE_INVALID").Errorf("redis client is required")
	}
	if maxFailures <= 0 {
		maxFailures = DefaultMaxFailures
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &RedisLimiter{client: client, maxFailures: int64(maxFailures), window: window}, nil
}

// Key returns the counter key for username.
func Key(username string) string {
	return KeyPrefix + strings.ToLower(strings.TrimSpace(username))
}

// Blocked reports whether username has reached the failure limit.
func (l *RedisLimiter) Blocked(ctx context.Context, username string) (bool, error) {
	count, err := l.client.Get(ctx, Key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, oops.Code("THROTTLE_READ_FAILED").With("username", username).Wrap(err)
	}
	return count >= l.maxFailures, nil
}

// RecordFailure increments the counter and refreshes its expiry.
func (l *RedisLimiter) RecordFailure(ctx context.Context, username string) error {
	key := Key(username)
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, l.window)
		return nil
	})
	if err != nil {
		return oops.Code("THROTTLE_WRITE_FAILED").With("username", username).Wrap(err)
	}
	return nil
}

// Failures returns the current counter for username.
func (l *RedisLimiter) Failures(ctx context.Context, username string) (int64, error) {
	count, err := l.client.Get(ctx, Key(username)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, oops.Code("THROTTLE_READ_FAILED").With("username", username).Wrap(err)
	}
	return count, nil
}

// Reset clears the counter after a successful login.
func (l *RedisLimiter) Reset(ctx context.Context, username string) error {
	if err := l.client.Del(ctx, Key(username)).Err(); err != nil {
		return oops.Code("THROTTLE_WRITE_FAILED").With("username", username).Wrap(err)
	}
	return nil
}

// Dial connects to addr and pings it.
func Dial(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close() //nolint:errcheck // ping error takes precedence
		return nil, oops.Code("THROTTLE_CONNECT_FAILED").With("addr", addr).Wrap(err)
	}
	return client, nil
}
