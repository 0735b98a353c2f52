package scanner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/crossarb/internal/arb"
	"github.com/hetulpatel/crossarb/internal/cache"
	"github.com/hetulpatel/crossarb/internal/category"
	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/matches"
)

type fakeCollector struct {
	venue   collectors.Venue
	markets []collectors.Market
	err     error
}

func (f fakeCollector) Name() collectors.Venue { return f.venue }

func (f fakeCollector) Info() collectors.PlatformInfo {
	return collectors.PlatformInfo{Name: string(f.venue)}
}

func (f fakeCollector) Fetch(context.Context) ([]collectors.Market, error) {
	return f.markets, f.err
}

type recordingSink struct {
	name  string
	err   error
	mu    sync.Mutex
	scans map[string][]matches.Opportunity
}

func newRecordingSink(name string, err error) *recordingSink {
	return &recordingSink{name: name, err: err, scans: map[string][]matches.Opportunity{}}
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) Publish(_ context.Context, scanID string, opps []matches.Opportunity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scans[scanID] = append(r.scans[scanID], opps...)
	return r.err
}

type mapCache map[string]cache.OpportunityRecord

func (m mapCache) Get(_ context.Context, key string) (*cache.OpportunityRecord, bool, error) {
	r, ok := m[key]
	if !ok {
		return nil, false, nil
	}
	return &r, true, nil
}

func (m mapCache) Set(_ context.Context, key string, r cache.OpportunityRecord) error {
	m[key] = r
	return nil
}

func binary(q string, yes, no float64) collectors.Market {
	return collectors.Market{
		Question: q,
		Outcomes: []string{collectors.OutcomeYes, collectors.OutcomeNo},
		Odds:     map[string]float64{collectors.OutcomeYes: yes, collectors.OutcomeNo: no},
	}
}

const lakers = "Will the Lakers win the 2025 NBA Finals?"

func testCollectors() []collectors.Collector {
	return []collectors.Collector{
		fakeCollector{venue: "X", markets: []collectors.Market{
			binary(lakers, 0.40, 0.62),
			binary("Will it rain in London tomorrow?", 0.30, 0.30),
		}},
		fakeCollector{venue: "Broken", err: errors.New("503")},
		fakeCollector{venue: "Y", markets: []collectors.Market{binary(lakers, 0.63, 0.38)}},
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return []string{"scan-1", "scan-2", "scan-3"}[n-1]
	}
}

func TestScanOnce_ReportsToEverySink(t *testing.T) {
	failing := newRecordingSink("failing", errors.New("down"))
	ok := newRecordingSink("ok", nil)

	sc, err := New(testCollectors(), arb.NewDetector(arb.DefaultConfig()), Config{Categories: category.ParseAllowed("sports")},
		WithSinks(failing, ok))
	require.NoError(t, err)
	sc.newID = sequentialIDs()

	res, err := sc.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "scan-1", res.ScanID)
	assert.Equal(t, 2, res.MarketCount, "rain market filtered out")
	assert.Equal(t, 1, res.Matches)
	require.Len(t, res.Reported, 1)
	assert.InDelta(t, 28.2051, res.Reported[0].ProfitPercentage, 1e-4)

	require.Len(t, res.Fetches, 3)
	assert.Error(t, res.Fetches[1].Err)
	assert.Equal(t, 2, res.Fetches[0].Count)

	assert.Len(t, failing.scans["scan-1"], 1)
	assert.Len(t, ok.scans["scan-1"], 1, "a failing sink does not stop the others")
}

func TestScanOnce_SuppressesRepeats(t *testing.T) {
	sink := newRecordingSink("rec", nil)
	sc, err := New(testCollectors(), arb.NewDetector(arb.DefaultConfig()), Config{},
		WithSinks(sink), WithSuppressor(cache.NewSuppressor(mapCache{})))
	require.NoError(t, err)
	sc.newID = sequentialIDs()

	first, err := sc.ScanOnce(context.Background())
	require.NoError(t, err)
	second, err := sc.ScanOnce(context.Background())
	require.NoError(t, err)

	assert.Len(t, first.Reported, 1)
	assert.Len(t, second.Opportunities, 1)
	assert.Empty(t, second.Reported)
	assert.Len(t, sink.scans, 1)
}

func TestScanOnce_DetectTimeout(t *testing.T) {
	sink := newRecordingSink("rec", nil)
	sc, err := New(testCollectors(), arb.NewDetector(arb.DefaultConfig()), Config{DetectTimeout: 10 * time.Millisecond}, WithSinks(sink))
	require.NoError(t, err)

	release := make(chan struct{})
	defer close(release)
	sc.run = func(collectors.MarketsByVenue) arb.Report {
		<-release
		return arb.Report{}
	}

	_, err = sc.ScanOnce(context.Background())
	assert.ErrorIs(t, err, ErrDetectTimeout)
	assert.Empty(t, sink.scans)
}

func TestScanOnce_ReportsSkippedPairs(t *testing.T) {
	sc, err := New(testCollectors(), arb.NewDetector(arb.DefaultConfig()), Config{})
	require.NoError(t, err)
	sc.run = func(collectors.MarketsByVenue) arb.Report {
		return arb.Report{Skipped: 2}
	}

	res, err := sc.ScanOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Skipped)
	assert.Empty(t, res.Reported)
}

func TestRun_StopsOnCancel(t *testing.T) {
	sink := newRecordingSink("rec", nil)
	sc, err := New(testCollectors(), arb.NewDetector(arb.DefaultConfig()), Config{Interval: 5 * time.Millisecond}, WithSinks(sink))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- sc.Run(ctx) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.GreaterOrEqual(t, len(sink.scans), 2, "each cycle gets its own scan id")
}

func TestNew_Validates(t *testing.T) {
	_, err := New(nil, arb.NewDetector(arb.DefaultConfig()), Config{})
	assert.Error(t, err)
	_, err = New(testCollectors(), nil, Config{})
	assert.Error(t, err)

	sc, err := New(testCollectors(), arb.NewDetector(arb.DefaultConfig()), Config{})
	require.NoError(t, err)
	assert.Equal(t, defaultInterval, sc.cfg.Interval)
	assert.True(t, sc.cfg.Categories.All())
}

func TestFormatOpportunity(t *testing.T) {
	line := FormatOpportunity(matches.Opportunity{
		Question: "q", Venue1: "X", Action1: matches.ActionBuyYes, Odds1: 0.4,
		Venue2: "Y", Action2: matches.ActionBuyNo, Odds2: 0.38, ProfitPercentage: 28.2,
	})
	assert.Equal(t, `***** "q": Buy Yes on X @ 0.400 + Buy No on Y @ 0.380 = 0.780, profit 28.20%`, line)
}
