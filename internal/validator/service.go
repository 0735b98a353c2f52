package validator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hetulpatel/crossarb/internal/cache"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matches"
)

const systemPrompt = "You are a strict arbitrage validator. Determine if two binary markets resolve identically with no ambiguity. Reject if timing, definitions, or data sources differ. Respond only with JSON."

// Service validates matched market pairs via LLM.
type Service struct {
	llm          Completer
	cache        cache.VerdictCache
	systemPrompt string
	now          func() time.Time
}

// NewService creates a validator.
func NewService(cfg Config) (*Service, error) {
	if cfg.LLMClient == nil {
		return nil, fmt.Errorf("validator: llm client is required")
	}
	system := cfg.SystemPrompt
	if strings.TrimSpace(system) == "" {
		system = systemPrompt
	}
	return &Service{
		llm:          cfg.LLMClient,
		cache:        cfg.Cache,
		systemPrompt: system,
		now:          time.Now,
	}, nil
}

// Validate asks whether both legs of opp resolve identically. Verdicts are
// cached per question pair, so a cached answer is returned with Cached set.
func (s *Service) Validate(ctx context.Context, opp matches.Opportunity) (*matches.ResolutionVerdict, error) {
	if s == nil {
		return nil, fmt.Errorf("validator: service is nil")
	}

	key := matches.VerdictCacheKey(opp)
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			logging.Warnf("[validator] verdict cache get: %v", err)
		} else if ok {
			cached.Cached = true
			return cached, nil
		}
	}

	userPrompt, err := buildUserPrompt(buildPromptPayload(opp, s.now()))
	if err != nil {
		return nil, err
	}
	raw, err := s.llm.Complete(ctx, s.systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("validator: llm call: %w", err)
	}
	res, err := parseResult(raw)
	if err != nil {
		return nil, fmt.Errorf("validator: parse response: %w", err)
	}

	verdict := matches.NewResolutionVerdict(res.ValidResolution, res.ResolutionReason, false)
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, verdict); err != nil {
			logging.Warnf("[validator] verdict cache set: %v", err)
		}
	}
	return verdict, nil
}
