package collectors

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hetulpatel/crossarb/internal/logging"
)

// FetchResult reports how a single venue fetch went during FetchAll.
type FetchResult struct {
	Venue    Venue
	Count    int
	Err      error
	Duration time.Duration
}

// FetchAll queries every collector concurrently. A venue whose fetch fails is
// kept in the result with an empty market set so one failure never removes a
// venue from the scan. Output order follows the collectors slice.
func FetchAll(ctx context.Context, cols []Collector) (MarketsByVenue, []FetchResult) {
	out := make(MarketsByVenue, len(cols))
	results := make([]FetchResult, len(cols))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range cols {
		out[i] = VenueMarkets{Venue: c.Name()}
		results[i] = FetchResult{Venue: c.Name()}
		g.Go(func() error {
			start := time.Now()
			markets, err := c.Fetch(gctx)
			results[i].Duration = time.Since(start)
			if err != nil {
				logging.Errorf("[%s] fetch failed: %v", c.Name(), err)
				results[i].Err = err
				return nil
			}
			out[i].Markets = markets
			results[i].Count = len(markets)
			return nil
		})
	}
	_ = g.Wait()
	return out, results
}
