package analyzer

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"time"

	"brandpulse/config"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cached serves repeated prompt/input pairs from Redis.
// Only successful analyses are cached.
type Cached struct {
	next   Analyzer
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached wraps next with a Redis backed result cache
func NewCached(next Analyzer, client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cached {
	if ttl <= 0 {
		ttl = config.DefaultCacheTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{next: next, client: client, ttl: ttl, logger: logger}
}

// CacheKey is the Redis key for a prompt/input pair
func CacheKey(prompt, input string) string {
	sum := md5.Sum([]byte(prompt + input))
	return "analysis:cache:" + hex.EncodeToString(sum[:])
}

// Analyze implements Analyzer
func (c *Cached) Analyze(ctx context.Context, prompt, input string) (string, error) {
	key := CacheKey(prompt, input)

	hit, err := c.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		c.logger.Debug("analysis cache hit", zap.String("key", key))
		return hit, nil
	case !errors.Is(err, redis.Nil):
		// a broken cache must not block analysis
		c.logger.Warn("analysis cache read failed", zap.Error(err))
	}

	out, err := c.next.Analyze(ctx, prompt, input)
	if err != nil {
		return "", err
	}

	if err := c.client.Set(ctx, key, out, c.ttl).Err(); err != nil {
		c.logger.Warn("analysis cache write failed", zap.Error(err))
	}
	return out, nil
}
