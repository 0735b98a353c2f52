package main

import (
	"context"
	"flag"

	"github.com/hetulpatel/crossarb/internal/config"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "optional TOML config file")
	drop := flag.Bool("drop", false, "drop the journal before creating it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatalf("config: %v", err)
	}

	store, err := sqlite.Open(cfg.SQLite.Path)
	if err != nil {
		logging.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if *drop {
		if err := store.DropTables(ctx); err != nil {
			logging.Fatalf("drop tables: %v", err)
		}
	}
	if err := store.CreateTables(ctx); err != nil {
		logging.Fatalf("create tables: %v", err)
	}
	logging.Infof("SQLite tables created at %s", store.Path())
}
