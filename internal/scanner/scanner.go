package scanner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hetulpatel/crossarb/internal/arb"
	"github.com/hetulpatel/crossarb/internal/cache"
	"github.com/hetulpatel/crossarb/internal/category"
	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matcher"
	"github.com/hetulpatel/crossarb/internal/matches"
)

const (
	defaultInterval      = 30 * time.Second
	defaultDetectTimeout = 20 * time.Second
)

// ErrDetectTimeout is returned by ScanOnce when detection overruns its deadline.
var ErrDetectTimeout = errors.New("scanner: detection deadline exceeded")

type Config struct {
	Interval      time.Duration
	DetectTimeout time.Duration
	Categories    category.Allowed
}

// Scanner runs the fetch, detect and report cycle over a fixed set of venues.
type Scanner struct {
	collectors []collectors.Collector
	detector   *arb.Detector
	suppressor *cache.Suppressor
	matchLog   *matcher.Logger
	sinks      []Sink
	cfg        Config
	newID      func() string
	run        func(collectors.MarketsByVenue) arb.Report
}

// Result summarises one completed scan.
type Result struct {
	ScanID        string
	Fetches       []collectors.FetchResult
	MarketCount   int
	Matches       int
	Skipped       int
	Opportunities []matches.Opportunity
	Reported      []matches.Opportunity
	Duration      time.Duration
}

// Option customises a Scanner.
type Option func(*Scanner)

func WithSuppressor(s *cache.Suppressor) Option {
	return func(sc *Scanner) { sc.suppressor = s }
}

func WithMatchLogger(l *matcher.Logger) Option {
	return func(sc *Scanner) { sc.matchLog = l }
}

func WithSinks(sinks ...Sink) Option {
	return func(sc *Scanner) { sc.sinks = append(sc.sinks, sinks...) }
}

func New(cols []collectors.Collector, detector *arb.Detector, cfg Config, opts ...Option) (*Scanner, error) {
	if len(cols) == 0 {
		return nil, fmt.Errorf("scanner: at least one collector is required")
	}
	if detector == nil {
		return nil, fmt.Errorf("scanner: detector is required")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.DetectTimeout <= 0 {
		cfg.DetectTimeout = defaultDetectTimeout
	}
	s := &Scanner{
		collectors: cols,
		detector:   detector,
		cfg:        cfg,
		newID:      func() string { return uuid.NewString() },
		run:        detector.Run,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ScanOnce runs a single cycle. Fetch failures are absorbed per venue; only a
// detection timeout or cancellation is returned as an error.
func (s *Scanner) ScanOnce(ctx context.Context) (Result, error) {
	start := time.Now()
	res := Result{ScanID: s.newID()}

	markets, fetches := collectors.FetchAll(ctx, s.collectors)
	res.Fetches = fetches
	markets = category.FilterVenues(markets, s.cfg.Categories)
	res.MarketCount = markets.Count()
	logging.Infof("[scanner] scan=%s fetched %d markets from %v", res.ScanID, res.MarketCount, markets.Venues())

	report, err := s.detect(ctx, markets)
	if err != nil {
		res.Duration = time.Since(start)
		return res, err
	}
	res.Matches = len(report.Matches)
	res.Skipped = report.Skipped
	if res.Skipped > 0 {
		logging.Warnf("[scanner] scan=%s skipped %d malformed pairs", res.ScanID, res.Skipped)
	}
	res.Opportunities = report.Opportunities
	s.matchLog.LogMatches(res.ScanID, report.Matches, s.detector.SimilarityThreshold())

	res.Reported = s.suppressor.Fresh(ctx, report.Opportunities)
	if len(res.Reported) > 0 {
		s.publish(ctx, res.ScanID, res.Reported)
	}

	res.Duration = time.Since(start)
	logging.Infof("[scanner] scan=%s matches=%d opportunities=%d reported=%d in %s",
		res.ScanID, res.Matches, len(res.Opportunities), len(res.Reported), res.Duration.Round(time.Millisecond))
	return res, nil
}

// detect runs the CPU-bound detector off the caller's goroutine so a slow pass
// can be abandoned at the deadline. An abandoned pass finishes in the
// background and its result is discarded.
func (s *Scanner) detect(ctx context.Context, markets collectors.MarketsByVenue) (arb.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DetectTimeout)
	defer cancel()

	done := make(chan arb.Report, 1)
	go func() {
		done <- s.run(markets)
	}()

	select {
	case report := <-done:
		return report, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return arb.Report{}, ErrDetectTimeout
		}
		return arb.Report{}, ctx.Err()
	}
}

func (s *Scanner) publish(ctx context.Context, scanID string, opps []matches.Opportunity) {
	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, scanID, opps); err != nil {
			logging.Errorf("[scanner] sink %s failed: %v", sink.Name(), err)
		}
	}
}

// Run scans every Interval until ctx is cancelled. A failed cycle is logged
// and the loop continues.
func (s *Scanner) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for cycle := 1; ; cycle++ {
		logging.Debugf("[scanner] cycle %d", cycle)
		if _, err := s.ScanOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logging.Errorf("[scanner] cycle %d failed: %v", cycle, err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}
