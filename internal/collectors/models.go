package collectors

import (
	"context"
)

// Venue identifies the platform a market belongs to. It is a label only.
type Venue string

const (
	VenuePolymarket Venue = "Polymarket"
	VenueKalshi     Venue = "Kalshi"
)

// Outcome labels every binary market is expected to quote.
const (
	OutcomeYes = "Yes"
	OutcomeNo  = "No"
)

// Collector is implemented by venue-specific clients (Polymarket, Kalshi, ...).
// Each collector fetches and normalizes one venue's open binary markets; odds
// must already be probabilities in [0,1] when they leave Fetch.
type Collector interface {
	Name() Venue
	Fetch(ctx context.Context) ([]Market, error)
	Info() PlatformInfo
}

// PlatformInfo is descriptive metadata about a venue.
type PlatformInfo struct {
	Name        string `json:"name"`
	Chain       string `json:"chain"`
	Description string `json:"description"`
}

// Market is an immutable snapshot of a single priced question.
type Market struct {
	Question  string             `json:"question"`
	Outcomes  []string           `json:"outcomes"`
	Odds      map[string]float64 `json:"odds"`
	Volume24h *float64           `json:"volume_24h,omitempty"`
	Liquidity *float64           `json:"liquidity,omitempty"`
}

// Price returns the probability quoted for outcome and whether it is present.
func (m Market) Price(outcome string) (float64, bool) {
	if m.Odds == nil {
		return 0, false
	}
	p, ok := m.Odds[outcome]
	return p, ok
}

// VolumeOrZero returns the 24h volume, treating a missing value as 0.
func (m Market) VolumeOrZero() float64 {
	if m.Volume24h == nil {
		return 0
	}
	return *m.Volume24h
}

// VenueMarkets pairs a venue with the markets fetched from it in one scan.
type VenueMarkets struct {
	Venue   Venue
	Markets []Market
}

// MarketsByVenue is one scan's venue -> markets mapping. Slice order is the
// venue enumeration order used by the matcher.
type MarketsByVenue []VenueMarkets

// Venues returns the venue labels in enumeration order.
func (mv MarketsByVenue) Venues() []Venue {
	out := make([]Venue, 0, len(mv))
	for _, v := range mv {
		out = append(out, v.Venue)
	}
	return out
}

// Count returns the total number of markets across venues.
func (mv MarketsByVenue) Count() int {
	n := 0
	for _, v := range mv {
		n += len(v.Markets)
	}
	return n
}

// Float returns a pointer to v, for populating optional market fields.
func Float(v float64) *float64 {
	return &v
}
