package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matches"
)

// Sink receives the opportunities reported by one scan. Implementations
// include the Kafka publisher, the SQLite journal and LogSink.
type Sink interface {
	Name() string
	Publish(ctx context.Context, scanID string, opps []matches.Opportunity) error
}

// LogSink prints opportunities to the log, one block per opportunity.
type LogSink struct{}

func (LogSink) Name() string {
	return "log"
}

func (LogSink) Publish(_ context.Context, scanID string, opps []matches.Opportunity) error {
	for i, o := range opps {
		logging.Infof("[scanner] scan=%s #%d %s", scanID, i+1, FormatOpportunity(o))
	}
	return nil
}

// FormatOpportunity renders one opportunity as a single human-readable line.
func FormatOpportunity(o matches.Opportunity) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %q: %s on %s @ %.3f + %s on %s @ %.3f = %.3f, profit %.2f%%",
		strings.Repeat("*", o.Stars()), o.Question,
		o.Action1, o.Venue1, o.Odds1,
		o.Action2, o.Venue2, o.Odds2,
		o.TotalCost(), o.ProfitPercentage)
	if o.Volume1 > 0 || o.Volume2 > 0 {
		fmt.Fprintf(&b, " (24h volume %.0f / %.0f)", o.Volume1, o.Volume2)
	}
	return b.String()
}
