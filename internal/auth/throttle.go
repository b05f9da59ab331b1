package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	apperrors "github.com/coursehub/course-service/pkg/util"
)

const throttleKeyPrefix = "login_attempts:"

// LoginThrottle counts failed logins per email in Redis inside a sliding TTL
// window. It fails open: an unreachable Redis must not lock everyone out.
type LoginThrottle struct {
	client *redis.Client
	logger *zap.Logger
	max    int
	window time.Duration
}

// NewLoginThrottle builds a throttle. A nil client disables it.
func NewLoginThrottle(client *redis.Client, logger *zap.Logger, maxAttempts, windowSeconds int) *LoginThrottle {
	if maxAttempts <= 0 {
		return nil
	}
	return &LoginThrottle{
		client: client,
		logger: logger,
		max:    maxAttempts,
		window: time.Duration(windowSeconds) * time.Second,
	}
}

// Allow returns a rate-limit error once the window holds too many failures.
func (t *LoginThrottle) Allow(ctx context.Context, email string) error {
	if t == nil || t.client == nil {
		return nil
	}
	count, err := t.client.Get(ctx, t.key(email)).Int64()
	if err != nil {
		if err != redis.Nil {
			t.logger.Warn("login throttle unavailable", zap.Error(err))
		}
		return nil
	}
	if count >= int64(t.max) {
		return apperrors.NewRateLimited("too many failed login attempts, try again later")
	}
	return nil
}

// RecordFailure bumps the failure counter, starting the window on the first hit.
func (t *LoginThrottle) RecordFailure(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	count, err := t.client.Incr(ctx, t.key(email)).Result()
	if err != nil {
		t.logger.Warn("login throttle unavailable", zap.Error(err))
		return
	}
	if count == 1 {
		_ = t.client.Expire(ctx, t.key(email), t.window).Err()
	}
}

// Reset clears the counter after a successful login.
func (t *LoginThrottle) Reset(ctx context.Context, email string) {
	if t == nil || t.client == nil {
		return
	}
	_ = t.client.Del(ctx, t.key(email)).Err()
}

func (t *LoginThrottle) key(email string) string {
	return fmt.Sprintf("%s%s", throttleKeyPrefix, strings.ToLower(email))
}
