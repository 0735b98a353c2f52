package arb

import (
	"fmt"
	"sort"

	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matcher"
	"github.com/hetulpatel/crossarb/internal/matches"
)

// DefaultMinProfitThreshold is the minimum profit, in percentage points, for an
// opportunity to be reported.
const DefaultMinProfitThreshold = 2.0

type Config struct {
	MinProfitThreshold  float64
	SimilarityThreshold float64
}

// Report is the full output of one detection pass.
type Report struct {
	Matches       []matches.MatchedPair
	Opportunities []matches.Opportunity
	Skipped       int
}

// Detector turns one scan's markets into ranked, deduplicated opportunities.
// It holds no mutable state and is safe for concurrent use.
type Detector struct {
	minProfit  float64
	similarity float64
}

// DefaultConfig returns the thresholds used when the caller has no preference.
func DefaultConfig() Config {
	return Config{
		MinProfitThreshold:  DefaultMinProfitThreshold,
		SimilarityThreshold: matcher.DefaultSimilarityThreshold,
	}
}

// NewDetector uses cfg as given: a zero MinProfitThreshold reports every
// positive-profit opportunity. Start from DefaultConfig for the usual values.
func NewDetector(cfg Config) *Detector {
	return &Detector{minProfit: cfg.MinProfitThreshold, similarity: cfg.SimilarityThreshold}
}

func (d *Detector) MinProfitThreshold() float64 {
	return d.minProfit
}

func (d *Detector) SimilarityThreshold() float64 {
	return d.similarity
}

// Detect returns the opportunities found across markets, most profitable first.
// An empty result is the normal "nothing this cycle" outcome.
func (d *Detector) Detect(markets collectors.MarketsByVenue) []matches.Opportunity {
	return d.Run(markets).Opportunities
}

// Run is Detect plus the matched pairs the opportunities were derived from.
func (d *Detector) Run(markets collectors.MarketsByVenue) Report {
	report := Report{Matches: matcher.FindMatchingMarkets(markets, d.similarity)}
	seen := make(map[string]struct{})

	for i := range report.Matches {
		candidates, err := d.evaluatePair(&report.Matches[i])
		if err != nil {
			report.Skipped++
			logging.Debugf("[arb] skip pair %s/%s: %v", report.Matches[i].VenueA, report.Matches[i].VenueB, err)
			continue
		}
		for _, opp := range candidates {
			key := opp.Key()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			report.Opportunities = append(report.Opportunities, opp)
		}
	}

	sort.SliceStable(report.Opportunities, func(i, j int) bool {
		return report.Opportunities[i].ProfitPercentage > report.Opportunities[j].ProfitPercentage
	})
	return report
}

// evaluatePair tries both hedges of a pair: Yes on A with No on B, then No on
// A with Yes on B. A malformed market never aborts the scan.
func (d *Detector) evaluatePair(pair *matches.MatchedPair) (out []matches.Opportunity, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("recovered: %v", r)
		}
	}()

	strategies := [2][2]matches.Action{
		{matches.ActionBuyYes, matches.ActionBuyNo},
		{matches.ActionBuyNo, matches.ActionBuyYes},
	}
	for _, s := range strategies {
		if opp, ok := d.evaluateStrategy(pair, s[0], s[1]); ok {
			out = append(out, opp)
		}
	}
	return out, nil
}

func (d *Detector) evaluateStrategy(pair *matches.MatchedPair, actionA, actionB matches.Action) (matches.Opportunity, bool) {
	priceA, okA := OddsFor(pair.MarketA, actionA.Outcome())
	priceB, okB := OddsFor(pair.MarketB, actionB.Outcome())
	if !okA || !okB {
		logging.Debugf("[arb] %s/%s %s+%s: missing or invalid odds for %q",
			pair.VenueA, pair.VenueB, actionA, actionB, pair.MarketA.Question)
		return matches.Opportunity{}, false
	}
	profit, ok := Evaluate(priceA, priceB)
	if !ok || profit < d.minProfit {
		return matches.Opportunity{}, false
	}
	return matches.Opportunity{
		Question:         pair.MarketA.Question,
		Venue1:           pair.VenueA,
		Action1:          actionA,
		Odds1:            priceA,
		Venue2:           pair.VenueB,
		Action2:          actionB,
		Odds2:            priceB,
		ProfitPercentage: profit,
		Volume1:          pair.MarketA.VolumeOrZero(),
		Volume2:          pair.MarketB.VolumeOrZero(),
		CounterQuestion:  pair.MarketB.Question,
		Similarity:       pair.Similarity,
	}, true
}
