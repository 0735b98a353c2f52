package matcher

import (
	"github.com/hetulpatel/crossarb/internal/logging"
)

// DefaultSimilarityThreshold is the minimum ratio for two questions to be
// considered for a match.
const DefaultSimilarityThreshold = 0.75

// Verdict explains a SameEvent decision.
type Verdict struct {
	Match      bool
	Similarity float64
	Reason     string
}

const (
	ReasonMatch          = "match"
	ReasonBelowThreshold = "below_threshold"
	ReasonYearMismatch   = "year_mismatch"
	ReasonPriceMismatch  = "price_target_mismatch"
)

// SameEvent decides whether two questions describe the same event and returns
// the string similarity used for the decision.
func SameEvent(q1, q2 string, threshold float64) (bool, float64) {
	v := Score(q1, q2, threshold)
	return v.Match, v.Similarity
}

// Score is SameEvent with the rejection reason attached.
func Score(q1, q2 string, threshold float64) Verdict {
	similarity := SimilarityRatio(q1, q2)
	if similarity < threshold {
		return Verdict{Similarity: similarity, Reason: ReasonBelowThreshold}
	}
	if !temporalCompatible(q1, q2) {
		return Verdict{Similarity: similarity, Reason: ReasonYearMismatch}
	}
	if !priceTargetCompatible(q1, q2) {
		return Verdict{Similarity: similarity, Reason: ReasonPriceMismatch}
	}
	return Verdict{Match: true, Similarity: similarity, Reason: ReasonMatch}
}

func temporalCompatible(q1, q2 string) bool {
	years1 := ExtractYears(q1)
	years2 := ExtractYears(q2)
	if len(years1) > 0 && len(years2) > 0 && !years1.Equal(years2) {
		logging.Debugf("[matcher] year mismatch: %v vs %v", years1.Sorted(), years2.Sorted())
		return false
	}

	// Dates are only extracted for now. Formats differ too much across venues
	// to compare them without normalization, so they never reject a pair.
	_ = ExtractDates(q1)
	_ = ExtractDates(q2)
	return true
}

func priceTargetCompatible(q1, q2 string) bool {
	prices1 := ExtractPriceTargets(q1)
	prices2 := ExtractPriceTargets(q2)
	if len(prices1) > 0 && len(prices2) > 0 && !prices1.Equal(prices2) {
		logging.Debugf("[matcher] price target mismatch: %v vs %v", prices1.Sorted(), prices2.Sorted())
		return false
	}
	return true
}
