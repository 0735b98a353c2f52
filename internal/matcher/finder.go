package matcher

import (
	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matches"
)

// FindMatchingMarkets compares every market of each venue against every market
// of each later venue and returns the pairs SameEvent accepts. Output follows
// the nested enumeration order: venue pair, then first market, then second.
func FindMatchingMarkets(markets collectors.MarketsByVenue, threshold float64) []matches.MatchedPair {
	var pairs []matches.MatchedPair
	for i := range markets {
		for j := i + 1; j < len(markets); j++ {
			pairs = appendVenuePair(pairs, markets[i], markets[j], threshold)
		}
	}
	return pairs
}

func appendVenuePair(pairs []matches.MatchedPair, a, b collectors.VenueMarkets, threshold float64) []matches.MatchedPair {
	compared, matched := 0, 0
	for _, m1 := range a.Markets {
		for _, m2 := range b.Markets {
			compared++
			ok, similarity := SameEvent(m1.Question, m2.Question, threshold)
			if !ok {
				continue
			}
			matched++
			pairs = append(pairs, matches.MatchedPair{
				VenueA:     a.Venue,
				MarketA:    m1,
				VenueB:     b.Venue,
				MarketB:    m2,
				Similarity: similarity,
			})
		}
	}
	logging.Debugf("[matcher] %s x %s compared=%d matched=%d", a.Venue, b.Venue, compared, matched)
	return pairs
}
