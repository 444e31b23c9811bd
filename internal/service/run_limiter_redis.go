package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"synthetic-audience/internal/observability"
)

const redisRunAllowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

// RunLimiter limita cuantos experimentos puede lanzar un cliente por ventana.
type RunLimiter interface {
	Allow(ctx context.Context, key string) bool
}

type redisRunLimiter struct {
	client  redisEvaler
	window  time.Duration
	max     int
	prefix  string
	metrics *observability.Metrics
	logger  *zap.Logger
}

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// NewRedisRunLimiter devuelve nil sin cliente; el middleware trata nil como "sin limite".
func NewRedisRunLimiter(client *redis.Client, window time.Duration, max int, metrics *observability.Metrics, logger *zap.Logger) RunLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRunLimiter{
		client:  client,
		window:  window,
		max:     max,
		prefix:  "runs:rl:",
		metrics: metrics,
		logger:  logger,
	}
}

// Allow es fail-open: si Redis falla, el run se permite.
func (l *redisRunLimiter) Allow(ctx context.Context, key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	normalizedKey := strings.ToLower(strings.TrimSpace(key))
	if normalizedKey == "" {
		l.metrics.RecordRateLimit("limited")
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	redisKey := l.prefix + normalizedKey
	seconds := int(l.window.Seconds())
	if seconds <= 0 {
		seconds = 60
	}
	count, err := l.client.Eval(ctx, redisRunAllowScript, []string{redisKey}, seconds).Int()
	if err != nil {
		if l.logger != nil {
			l.logger.Warn("run limiter unavailable, allowing", zap.Error(err))
		}
		l.metrics.RecordRateLimit("error")
		return true
	}
	if count > l.max {
		l.metrics.RecordRateLimit("limited")
		return false
	}
	l.metrics.RecordRateLimit("allowed")
	return true
}
