package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hetulpatel/crossarb/internal/cache"
	"github.com/hetulpatel/crossarb/internal/config"
	"github.com/hetulpatel/crossarb/internal/kafka"
	"github.com/hetulpatel/crossarb/internal/llm"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matches"
	sqlstore "github.com/hetulpatel/crossarb/internal/storage/sqlite"
	"github.com/hetulpatel/crossarb/internal/validator"
	"github.com/hetulpatel/crossarb/internal/workers"
)

func main() {
	configPath := flag.String("config", "", "optional TOML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("[opportunity-worker] config: %v", err)
	}
	logging.SetLevel(logging.ParseLevel(cfg.LogLevel))
	defer logging.Sync()

	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		brokers = kafka.ParseBrokers("")
	}

	waitCtx, cancel := context.WithTimeout(ctx, 45*time.Second)
	err = kafka.WaitForBroker(waitCtx, brokers)
	cancel()
	if err != nil {
		logging.Fatalf("[opportunity-worker] wait for broker: %v", err)
	}

	store, err := sqlstore.Open(cfg.SQLite.Path)
	if err != nil {
		logging.Fatalf("[opportunity-worker] open sqlite: %v", err)
	}
	defer store.Close()
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("[opportunity-worker] create tables: %v", err)
	}

	svc, closeValidator := buildValidator(ctx, cfg)
	defer closeValidator()

	handler := func(ctx context.Context, p *matches.Payload) error {
		if svc != nil {
			verdict, err := svc.Validate(ctx, p.Opportunity)
			if err != nil {
				logging.Warnf("[opportunity-worker] validate %s: %v", p.Key, err)
			} else {
				p.ResolutionVerdict = verdict
				logVerdict(p)
			}
		}
		if err := store.InsertPayload(ctx, p); err != nil {
			return err
		}
		if p.ResolutionVerdict == nil {
			return nil
		}
		// A verdict holds for the pair, so backfill rows from earlier scans.
		return store.RecordVerdict(ctx, p.Key, p.ResolutionVerdict)
	}

	logging.Infof("[opportunity-worker] consuming %s with group %s (%d workers, review=%t)",
		cfg.Kafka.Topic, cfg.Kafka.Group, cfg.Kafka.Workers, svc != nil)
	workers.Run(ctx, brokers, cfg.Kafka.Topic, cfg.Kafka.Group, cfg.Kafka.Workers, handler)
}

func buildValidator(ctx context.Context, cfg *config.Config) (*validator.Service, func()) {
	noop := func() {}
	if cfg.LLM.APIKey == "" {
		logging.Infof("[opportunity-worker] LLM_API_KEY not set, journaling without resolution review")
		return nil, noop
	}
	client, err := llm.New(llm.Config{
		APIKey:   cfg.LLM.APIKey,
		BaseURL:  cfg.LLM.BaseURL,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout.Duration,
		JSONMode: true,
	})
	if err != nil {
		logging.Fatalf("[opportunity-worker] llm client: %v", err)
	}

	vcfg := validator.Config{LLMClient: client}
	closer := noop
	if cfg.Redis.Addr != "" {
		rdb, err := cache.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logging.Warnf("[opportunity-worker] redis unavailable, verdict cache disabled: %v", err)
		} else {
			closer = func() { _ = rdb.Close() }
			vcfg.Cache = cache.NewRedisVerdictCache(rdb, cfg.Redis.VerdictTTL.Duration, "")
		}
	}
	svc, err := validator.NewService(vcfg)
	if err != nil {
		logging.Fatalf("[opportunity-worker] validator: %v", err)
	}
	return svc, closer
}

func logVerdict(p *matches.Payload) {
	v := p.ResolutionVerdict
	status := "INVALID"
	if v.ValidResolution {
		status = "VALID"
	}
	logging.Infof("[opportunity-worker] %s %q profit=%.2f%% cached=%t reason=%s",
		status, p.Opportunity.Question, p.Opportunity.ProfitPercentage, v.Cached, v.ResolutionReason)
}
