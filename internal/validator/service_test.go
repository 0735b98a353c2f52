package validator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/crossarb/internal/matches"
)

type fakeLLM struct {
	reply  string
	err    error
	calls  int
	prompt string
}

func (f *fakeLLM) Complete(_ context.Context, _, user string) (string, error) {
	f.calls++
	f.prompt = user
	return f.reply, f.err
}

type mapVerdicts map[string]matches.ResolutionVerdict

func (m mapVerdicts) Get(_ context.Context, key string) (*matches.ResolutionVerdict, bool, error) {
	v, ok := m[key]
	if !ok {
		return nil, false, nil
	}
	return &v, true, nil
}

func (m mapVerdicts) Set(_ context.Context, key string, v *matches.ResolutionVerdict) error {
	m[key] = *v
	return nil
}

func testOpp() matches.Opportunity {
	return matches.Opportunity{
		Question:        "Will BTC hit $100k in 2025?",
		CounterQuestion: "Will Bitcoin reach $100k in 2025?",
		Venue1:          "Polymarket",
		Action1:         matches.ActionBuyYes,
		Odds1:           0.40,
		Venue2:          "Kalshi",
		Action2:         matches.ActionBuyNo,
		Odds2:           0.38,
	}
}

func TestParseResult(t *testing.T) {
	res, err := parseResult("Sure!\n```json\n{\"ValidResolution\": true, \"ResolutionReason\": \"same event\"}\n```")
	require.NoError(t, err)
	assert.True(t, res.ValidResolution)
	assert.Equal(t, "same event", res.ResolutionReason)

	_, err = parseResult("   ")
	assert.Error(t, err)
	_, err = parseResult("no json here")
	assert.Error(t, err)
}

func TestValidate_CachesVerdicts(t *testing.T) {
	llm := &fakeLLM{reply: `{"ValidResolution": false, "ResolutionReason": "different thresholds"}`}
	verdicts := mapVerdicts{}
	svc, err := NewService(Config{LLMClient: llm, Cache: verdicts})
	require.NoError(t, err)

	v, err := svc.Validate(context.Background(), testOpp())
	require.NoError(t, err)
	assert.False(t, v.ValidResolution)
	assert.Equal(t, "different thresholds", v.ResolutionReason)
	assert.False(t, v.Cached)
	assert.Contains(t, llm.prompt, "Will Bitcoin reach $100k in 2025?")
	assert.Contains(t, llm.prompt, "Compare the following Polymarket and Kalshi markets.")

	// Same pair seen from the other direction hits the cache.
	reversed := testOpp()
	reversed.Question, reversed.CounterQuestion = reversed.CounterQuestion, reversed.Question
	reversed.Venue1, reversed.Venue2 = reversed.Venue2, reversed.Venue1
	v, err = svc.Validate(context.Background(), reversed)
	require.NoError(t, err)
	assert.True(t, v.Cached)
	assert.Equal(t, 1, llm.calls)
}

func TestValidate_Errors(t *testing.T) {
	_, err := NewService(Config{})
	assert.Error(t, err)

	svc, err := NewService(Config{LLMClient: &fakeLLM{err: errors.New("boom")}})
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), testOpp())
	assert.ErrorContains(t, err, "llm call")

	svc, err = NewService(Config{LLMClient: &fakeLLM{reply: "maybe"}})
	require.NoError(t, err)
	_, err = svc.Validate(context.Background(), testOpp())
	assert.ErrorContains(t, err, "parse response")
}
