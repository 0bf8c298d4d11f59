package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// SlotCache is a short-TTL Redis cache for search responses. Results depend
// on the sampled clock, so keys carry a minute bucket and the TTL stays small;
// staleness is bounded by both. All failures are soft: a broken Redis means a
// fresh computation, never an error to the caller.
type SlotCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *SlotCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &SlotCache{rdb: rdb, ttl: ttl, logger: logger}
}

// Key derives the cache key from the canonical request body and the minute
// the clock was sampled in.
func Key(canonicalRequest []byte, now time.Time) string {
	h := sha256.New()
	h.Write(canonicalRequest)
	h.Write([]byte(now.UTC().Truncate(time.Minute).Format(time.RFC3339)))
	return "slots:" + hex.EncodeToString(h.Sum(nil))
}

func (c *SlotCache) Get(ctx context.Context, key string) ([]byte, bool) {
	body, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil && c.logger != nil {
			c.logger.Warn("slot cache read failed", "err", err)
		}
		return nil, false
	}
	return body, true
}

func (c *SlotCache) Set(ctx context.Context, key string, body []byte) {
	if err := c.rdb.Set(ctx, key, body, c.ttl).Err(); err != nil && c.logger != nil {
		c.logger.Warn("slot cache write failed", "err", err)
	}
}
