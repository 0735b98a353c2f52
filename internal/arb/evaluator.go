package arb

import (
	"math"

	"github.com/hetulpatel/crossarb/internal/collectors"
)

// ValidPrice reports whether p is a usable probability strictly inside (0,1).
func ValidPrice(p float64) bool {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return false
	}
	return p > 0 && p < 1
}

// OddsFor returns the market's price for outcome when present and valid.
func OddsFor(m collectors.Market, outcome string) (float64, bool) {
	p, ok := m.Price(outcome)
	if !ok || !ValidPrice(p) {
		return 0, false
	}
	return p, true
}

// Evaluate checks whether buying both complementary legs costs less than the
// guaranteed payout of 1. It returns the profit relative to cost, in percent,
// and false when either price is unusable or the pair is not profitable.
func Evaluate(priceA, priceB float64) (float64, bool) {
	if !ValidPrice(priceA) || !ValidPrice(priceB) {
		return 0, false
	}
	total := priceA + priceB
	if total <= 0 || total >= 1 {
		return 0, false
	}
	return (1 - total) / total * 100, true
}
