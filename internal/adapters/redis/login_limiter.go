package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/utem-ti/canvas-auth/internal/domain/auth"
)

// LoginLimiter counts failed login attempts per email in a fixed window and
// locks the email out once the threshold is reached.
type LoginLimiter struct {
	client      redis.UniversalClient
	prefix      string
	maxAttempts int
	lockout     time.Duration
}

// NewLoginLimiter creates a Redis-backed login limiter.
func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, lockout time.Duration) *LoginLimiter {
	if maxAttempts < 1 {
		maxAttempts = 5
	}
	if lockout <= 0 {
		lockout = 5 * time.Minute
	}
	return &LoginLimiter{
		client:      client,
		prefix:      "loginfail:",
		maxAttempts: maxAttempts,
		lockout:     lockout,
	}
}

// Allow returns ErrLoginLocked while the email has accumulated too many
// recent failures.
func (l *LoginLimiter) Allow(ctx context.Context, email string) error {
	count, err := l.client.Get(ctx, l.key(email)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("redis get: %w", err)
	}
	if count >= l.maxAttempts {
		return domainauth.ErrLoginLocked
	}
	return nil
}

// RecordFailure increments the failure counter. The lockout window restarts
// with every failure, matching the original lockout semantics.
func (l *LoginLimiter) RecordFailure(ctx context.Context, email string) error {
	key := l.key(email)
	if err := l.client.Incr(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis incr: %w", err)
	}
	if err := l.client.Expire(ctx, key, l.lockout).Err(); err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	return nil
}

// Reset clears the failure counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, email string) error {
	return l.client.Del(ctx, l.key(email)).Err()
}

func (l *LoginLimiter) key(email string) string {
	return l.prefix + domainauth.NormalizeEmail(email)
}
