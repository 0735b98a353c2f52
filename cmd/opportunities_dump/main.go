package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"

	"github.com/hetulpatel/crossarb/internal/config"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/storage/sqlite"
)

func main() {
	configPath := flag.String("config", "", "optional TOML config file")
	limit := flag.Int("n", 20, "number of opportunities to print")
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

	rows, err := store.RecentOpportunities(context.Background(), *limit)
	if err != nil {
		logging.Fatalf("query: %v", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		logging.Fatalf("encode: %v", err)
	}
}
