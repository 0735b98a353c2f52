package matcher

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/matches"
)

func market(q string) collectors.Market {
	return collectors.Market{
		Question: q,
		Outcomes: []string{collectors.OutcomeYes, collectors.OutcomeNo},
		Odds:     map[string]float64{collectors.OutcomeYes: 0.5, collectors.OutcomeNo: 0.5},
	}
}

func TestFindMatchingMarkets_VisitsEachVenuePairOnce(t *testing.T) {
	q := "Will the Lakers win the 2025 NBA Finals?"
	markets := collectors.MarketsByVenue{
		{Venue: "A", Markets: []collectors.Market{market(q)}},
		{Venue: "B", Markets: []collectors.Market{market(q)}},
		{Venue: "C", Markets: []collectors.Market{market(q)}},
	}

	pairs := FindMatchingMarkets(markets, DefaultSimilarityThreshold)
	require.Len(t, pairs, 3)

	got := make([][2]collectors.Venue, 0, len(pairs))
	for _, p := range pairs {
		got = append(got, [2]collectors.Venue{p.VenueA, p.VenueB})
		assert.Equal(t, 1.0, p.Similarity)
	}
	assert.Equal(t, [][2]collectors.Venue{{"A", "B"}, {"A", "C"}, {"B", "C"}}, got)
}

func TestFindMatchingMarkets_NestedOrder(t *testing.T) {
	lakers := "Will the Lakers win the 2025 NBA Finals?"
	snow := "Will it snow in Paris on Christmas Day?"
	markets := collectors.MarketsByVenue{
		{Venue: "X", Markets: []collectors.Market{market(snow), market(lakers)}},
		{Venue: "Y", Markets: []collectors.Market{market(lakers + " "), market(snow + " ")}},
	}

	pairs := FindMatchingMarkets(markets, DefaultSimilarityThreshold)
	require.Len(t, pairs, 2)
	assert.Equal(t, snow, pairs[0].MarketA.Question)
	assert.Equal(t, lakers, pairs[1].MarketA.Question)
}

func TestFindMatchingMarkets_EmptyVenues(t *testing.T) {
	markets := collectors.MarketsByVenue{
		{Venue: "X", Markets: []collectors.Market{market("Will it rain?")}},
		{Venue: "Failed"},
	}
	assert.Empty(t, FindMatchingMarkets(markets, DefaultSimilarityThreshold))
	assert.Empty(t, FindMatchingMarkets(nil, DefaultSimilarityThreshold))
}

func TestLogger_AppendsMatches(t *testing.T) {
	path := filepath.Join(t.TempDir(), "matches.log")
	l := NewLogger(ParseLogMode("summary"), path)
	require.True(t, l.Enabled())

	pairs := []matches.MatchedPair{{VenueA: "X", MarketA: market("q"), VenueB: "Y", MarketB: market("q"), Similarity: 1}}
	l.LogMatches("scan-1", pairs, 0.75)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"scan_id":"scan-1"`)

	var quiet *Logger
	assert.False(t, quiet.Enabled())
	assert.Equal(t, LogModeQuiet, quiet.Mode())
	assert.Equal(t, LogModeQuiet, ParseLogMode("nope"))
}

func TestLogMode_String(t *testing.T) {
	for _, name := range []string{"quiet", "summary", "verbose"} {
		assert.Equal(t, name, NewLogger(ParseLogMode(name), "").Mode().String())
	}
}
