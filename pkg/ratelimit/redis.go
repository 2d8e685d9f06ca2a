package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "otp-transfers:rate_limit"

// minWindow is the shortest window the limiter enforces.
const minWindow = time.Second

// windowCounter increments the counter for the current window, starts the window
// on the first hit, and replies with {count, remaining ms}.
var windowCounter = redis.NewScript(`
local n = redis.call("INCR", KEYS[1])
if n == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {n, redis.call("PTTL", KEYS[1])}
`)

// Limiter counts events per subject in fixed windows.
type Limiter interface {
	// Consume records one event and returns the count in the current window and
	// the seconds until the window resets.
	Consume(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// RedisLimiter keeps fixed-window counters in Redis so every replica shares them.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a limiter. A nil client yields a limiter that never limits.
func NewRedisLimiter(client redis.UniversalClient, prefix string) *RedisLimiter {
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultKeyPrefix
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

func (l *RedisLimiter) Consume(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	if l == nil || l.client == nil || limit <= 0 || window <= 0 {
		return 0, 0, nil
	}
	key, ok := l.counterKey(scope, subject)
	if !ok {
		return 0, 0, nil
	}
	window = max(window, minWindow)

	reply, err := windowCounter.Run(ctx, l.client, []string{key}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return 0, 0, fmt.Errorf("rate limit %s: %w", key, err)
	}
	if len(reply) != 2 {
		return 0, 0, fmt.Errorf("rate limit %s: expected 2 values, got %d", key, len(reply))
	}

	remaining := time.Duration(reply[1]) * time.Millisecond
	if remaining < 0 {
		// PTTL is negative when the key has no expiry.
		remaining = window
	}
	return int(reply[0]), retryAfter(remaining), nil
}

func (l *RedisLimiter) counterKey(scope, subject string) (string, bool) {
	scope, subject = strings.TrimSpace(scope), strings.TrimSpace(subject)
	if scope == "" || subject == "" {
		return "", false
	}
	return l.prefix + ":" + scope + ":" + subject, true
}

// retryAfter rounds up to whole seconds, never below one.
func retryAfter(remaining time.Duration) int {
	secs := int((remaining + time.Second - 1) / time.Second)
	return max(secs, 1)
}
