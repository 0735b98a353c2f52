package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/crossarb/internal/matches"
)

// VerdictCache stores resolution verdicts by matches.VerdictCacheKey.
type VerdictCache interface {
	Get(ctx context.Context, key string) (*matches.ResolutionVerdict, bool, error)
	Set(ctx context.Context, key string, verdict *matches.ResolutionVerdict) error
}

type redisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisVerdictCache(client *redis.Client, ttl time.Duration, prefix string) VerdictCache {
	if ttl <= 0 {
		ttl = 240 * time.Hour
	}
	if prefix == "" {
		prefix = "arb_verdict"
	}
	return &redisVerdictCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisVerdictCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisVerdictCache) Get(ctx context.Context, key string) (*matches.ResolutionVerdict, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var v matches.ResolutionVerdict
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false, err
	}
	return &v, true, nil
}

func (c *redisVerdictCache) Set(ctx context.Context, key string, verdict *matches.ResolutionVerdict) error {
	if c == nil || c.client == nil || verdict == nil {
		return nil
	}
	stored := *verdict
	stored.Cached = false
	payload, err := json.Marshal(stored)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}
