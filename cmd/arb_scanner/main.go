package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/crossarb/internal/arb"
	"github.com/hetulpatel/crossarb/internal/cache"
	"github.com/hetulpatel/crossarb/internal/category"
	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/config"
	"github.com/hetulpatel/crossarb/internal/kafka"
	"github.com/hetulpatel/crossarb/internal/kalshi"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matcher"
	"github.com/hetulpatel/crossarb/internal/polymarket"
	"github.com/hetulpatel/crossarb/internal/queue"
	"github.com/hetulpatel/crossarb/internal/scanner"
	sqlstore "github.com/hetulpatel/crossarb/internal/storage/sqlite"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "optional TOML config file")
	once := flag.Bool("once", false, "run a single scan and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Errorf("[arb-scanner] config: %v", err)
		return 1
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	defer logging.Sync()

	httpClient := &http.Client{Timeout: cfg.Venues.HTTPTimeout.Duration}
	defer httpClient.CloseIdleConnections()

	cols := []collectors.Collector{
		polymarket.NewClient(httpClient, polymarket.Config{BaseURL: cfg.Venues.PolymarketURL, Limit: cfg.Venues.PolymarketLimit}),
		kalshi.NewClient(httpClient, kalshi.Config{BaseURL: cfg.Venues.KalshiURL, Limit: cfg.Venues.KalshiLimit}),
	}
	for _, c := range cols {
		info := c.Info()
		logging.Infof("[arb-scanner] venue %s (%s)", info.Name, info.Chain)
	}

	detector := arb.NewDetector(arb.Config{
		MinProfitThreshold:  cfg.Detector.MinProfitThreshold,
		SimilarityThreshold: cfg.Detector.SimilarityThreshold,
	})

	matchLog := matcher.NewLogger(matcher.ParseLogMode(cfg.Detector.MatchLogMode), cfg.Detector.MatchLogPath)
	opts := []scanner.Option{
		scanner.WithSinks(scanner.LogSink{}),
		scanner.WithMatchLogger(matchLog),
	}

	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logging.Warnf("[arb-scanner] redis unavailable, suppression disabled: %v", err)
		} else {
			defer rdb.Close()
			seen := cache.NewRedisOpportunityCache(rdb, cfg.Redis.AlertCooldown.Duration, "")
			opts = append(opts, scanner.WithSuppressor(cache.NewSuppressor(seen)))
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
		err := kafka.WaitForBroker(waitCtx, cfg.Kafka.Brokers)
		cancel()
		if err != nil {
			logging.Errorf("[arb-scanner] wait for broker: %v", err)
			return 1
		}
		ensureCtx, cancelEnsure := context.WithTimeout(ctx, 30*time.Second)
		if err := kafka.EnsureTopic(ensureCtx, cfg.Kafka.Brokers, cfg.Kafka.Topic, 3); err != nil {
			logging.Errorf("[arb-scanner] ensure topic warning: %v", err)
		}
		cancelEnsure()

		writer := kafka.NewWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer writer.Close()
		opts = append(opts, scanner.WithSinks(queue.NewPublisher(writer)))
		logging.Infof("[arb-scanner] publishing to %s", cfg.Kafka.Topic)
	}

	if cfg.SQLite.Path != "" {
		store, err := sqlstore.Open(cfg.SQLite.Path)
		if err != nil {
			logging.Errorf("[arb-scanner] open sqlite: %v", err)
			return 1
		}
		defer store.Close()
		if err := store.CreateTables(ctx); err != nil {
			logging.Errorf("[arb-scanner] create tables: %v", err)
			return 1
		}
		opts = append(opts, scanner.WithSinks(store))
	}

	sc, err := scanner.New(cols, detector, scanner.Config{
		Interval:      cfg.Scan.Interval.Duration,
		DetectTimeout: cfg.Scan.DetectTimeout.Duration,
		Categories:    category.ParseAllowed(cfg.Scan.AllowedCategories),
	}, opts...)
	if err != nil {
		logging.Errorf("[arb-scanner] %v", err)
		return 1
	}

	logging.Infof("[arb-scanner] min_profit=%.2f%% similarity=%.2f categories=%s interval=%s match_log=%s",
		detector.MinProfitThreshold(), detector.SimilarityThreshold(),
		category.ParseAllowed(cfg.Scan.AllowedCategories), cfg.Scan.Interval.Duration, matchLog.Mode())

	if *once {
		if _, err := sc.ScanOnce(ctx); err != nil {
			logging.Errorf("[arb-scanner] scan failed: %v", err)
			return 1
		}
		return 0
	}
	if err := sc.Run(ctx); err != nil {
		logging.Errorf("[arb-scanner] %v", err)
		return 1
	}
	logging.Infof("[arb-scanner] stopped")
	return 0
}
