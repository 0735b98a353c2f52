package matches

import (
	"math"

	"github.com/hetulpatel/crossarb/internal/collectors"
)

// Action is the position taken on one leg of a hedge.
type Action string

const (
	ActionBuyYes Action = "Buy Yes"
	ActionBuyNo  Action = "Buy No"
)

// Outcome returns the odds key the action buys.
func (a Action) Outcome() string {
	if a == ActionBuyNo {
		return collectors.OutcomeNo
	}
	return collectors.OutcomeYes
}

// MatchedPair is a pair of markets on two venues judged to be the same event.
type MatchedPair struct {
	VenueA     collectors.Venue
	MarketA    collectors.Market
	VenueB     collectors.Venue
	MarketB    collectors.Market
	Similarity float64
}

// Opportunity is a riskless two-leg hedge across venues. Odds1+Odds2 < 1 and
// both legs lie strictly inside (0,1).
type Opportunity struct {
	Question         string           `json:"question"`
	Venue1           collectors.Venue `json:"venue1"`
	Action1          Action           `json:"action1"`
	Odds1            float64          `json:"odds1"`
	Venue2           collectors.Venue `json:"venue2"`
	Action2          Action           `json:"action2"`
	Odds2            float64          `json:"odds2"`
	ProfitPercentage float64          `json:"profit_percentage"`
	Volume1          float64          `json:"volume1"`
	Volume2          float64          `json:"volume2"`
	CounterQuestion  string           `json:"counter_question,omitempty"`
	Similarity       float64          `json:"similarity,omitempty"`
}

// TotalCost is the combined price paid for both legs.
func (o Opportunity) TotalCost() float64 {
	return o.Odds1 + o.Odds2
}

// Stars rates an opportunity for display: 5 above 2%, 3 above 1%, 2 above 0.5%.
func (o Opportunity) Stars() int {
	switch {
	case o.ProfitPercentage > 2.0:
		return 5
	case o.ProfitPercentage > 1.0:
		return 3
	case o.ProfitPercentage > 0.5:
		return 2
	default:
		return 1
	}
}

// Valid reports whether the opportunity still satisfies its pricing invariant.
func (o Opportunity) Valid() bool {
	in := func(p float64) bool { return !math.IsNaN(p) && p > 0 && p < 1 }
	return in(o.Odds1) && in(o.Odds2) && o.TotalCost() < 1
}
