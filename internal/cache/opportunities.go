package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matches"
)

// OpportunityRecord captures the last reported state of an opportunity.
type OpportunityRecord struct {
	Key              string    `json:"key"`
	ProfitPercentage float64   `json:"profit_percentage"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OpportunityCache stores the last reported opportunity per key so repeated
// detections across scans can be suppressed.
type OpportunityCache interface {
	Get(ctx context.Context, key string) (*OpportunityRecord, bool, error)
	Set(ctx context.Context, key string, record OpportunityRecord) error
}

type redisOpportunityCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisOpportunityCache builds a cache keyed by the hashed opportunity key.
// Entries expire after ttl, which acts as the alert cooldown.
func NewRedisOpportunityCache(client *redis.Client, ttl time.Duration, prefix string) OpportunityCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if prefix == "" {
		prefix = "arb_seen"
	}
	return &redisOpportunityCache{client: client, ttl: ttl, prefix: prefix}
}

func (c *redisOpportunityCache) key(k string) string {
	return fmt.Sprintf("%s:%s", c.prefix, k)
}

func (c *redisOpportunityCache) Get(ctx context.Context, key string) (*OpportunityRecord, bool, error) {
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
	var record OpportunityRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, false, err
	}
	return &record, true, nil
}

func (c *redisOpportunityCache) Set(ctx context.Context, key string, record OpportunityRecord) error {
	if c == nil || c.client == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(key), payload, c.ttl).Err()
}

// Suppressor drops opportunities that were already reported within the cache
// TTL, unless their profit has since improved. A nil Suppressor passes
// everything through.
type Suppressor struct {
	cache OpportunityCache
	now   func() time.Time
}

func NewSuppressor(cache OpportunityCache) *Suppressor {
	if cache == nil {
		return nil
	}
	return &Suppressor{cache: cache, now: time.Now}
}

// Fresh returns the subset of opps worth reporting, in input order, and
// records them as reported. Cache failures never hide an opportunity.
func (s *Suppressor) Fresh(ctx context.Context, opps []matches.Opportunity) []matches.Opportunity {
	if s == nil || len(opps) == 0 {
		return opps
	}
	out := make([]matches.Opportunity, 0, len(opps))
	for _, opp := range opps {
		key := matches.HashStrings(opp.Key())
		prev, found, err := s.cache.Get(ctx, key)
		if err != nil {
			logging.Warnf("[cache] opportunity lookup failed, reporting anyway: %v", err)
		}
		if found && !improved(prev, opp) {
			logging.Debugf("[cache] suppress %q (last %.2f%% at %s)", opp.Question, prev.ProfitPercentage, prev.UpdatedAt.Format(time.RFC3339))
			continue
		}
		out = append(out, opp)
		record := OpportunityRecord{Key: opp.Key(), ProfitPercentage: opp.ProfitPercentage, UpdatedAt: s.now().UTC()}
		if err := s.cache.Set(ctx, key, record); err != nil {
			logging.Warnf("[cache] opportunity store failed: %v", err)
		}
	}
	return out
}

func improved(prev *OpportunityRecord, opp matches.Opportunity) bool {
	const epsilon = 1e-9
	return prev == nil || opp.ProfitPercentage > prev.ProfitPercentage+epsilon
}
