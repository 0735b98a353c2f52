package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Detector DetectorConfig `toml:"detector"`
	Scan     ScanConfig     `toml:"scan"`
	Venues   VenuesConfig   `toml:"venues"`
	Kafka    KafkaConfig    `toml:"kafka"`
	Redis    RedisConfig    `toml:"redis"`
	SQLite   SQLiteConfig   `toml:"sqlite"`
	LLM      LLMConfig      `toml:"llm"`
	LogLevel string         `toml:"log_level"`
}

type DetectorConfig struct {
	MinProfitThreshold  float64 `toml:"min_profit_threshold"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	MatchLogMode        string  `toml:"match_log_mode"`
	MatchLogPath        string  `toml:"match_log_path"`
}

type ScanConfig struct {
	Interval          Duration `toml:"interval"`
	DetectTimeout     Duration `toml:"detect_timeout"`
	AllowedCategories string   `toml:"allowed_categories"`
}

type VenuesConfig struct {
	PolymarketURL   string   `toml:"polymarket_url"`
	PolymarketLimit int      `toml:"polymarket_limit"`
	KalshiURL       string   `toml:"kalshi_url"`
	KalshiLimit     int      `toml:"kalshi_limit"`
	HTTPTimeout     Duration `toml:"http_timeout"`
}

type KafkaConfig struct {
	Brokers []string `toml:"brokers"`
	Topic   string   `toml:"topic"`
	Group   string   `toml:"group"`
	Workers int      `toml:"workers"`
}

type RedisConfig struct {
	Addr          string   `toml:"addr"`
	Password      string   `toml:"password"`
	DB            int      `toml:"db"`
	AlertCooldown Duration `toml:"alert_cooldown"`
	VerdictTTL    Duration `toml:"verdict_ttl"`
}

type SQLiteConfig struct {
	Path string `toml:"path"`
}

type LLMConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Model   string   `toml:"model"`
	Timeout Duration `toml:"timeout"`
}

// Duration wraps time.Duration for TOML unmarshaling.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			MinProfitThreshold:  2.0,
			SimilarityThreshold: 0.75,
			MatchLogMode:        "quiet",
			MatchLogPath:        "matches.log",
		},
		Scan: ScanConfig{
			Interval:          Duration{30 * time.Second},
			DetectTimeout:     Duration{20 * time.Second},
			AllowedCategories: "sports,crypto",
		},
		Venues: VenuesConfig{
			PolymarketURL:   "https://gamma-api.polymarket.com",
			PolymarketLimit: 100,
			KalshiURL:       "https://api.elections.kalshi.com",
			KalshiLimit:     100,
			HTTPTimeout:     Duration{30 * time.Second},
		},
		Kafka: KafkaConfig{
			Topic:   "arb.opportunities",
			Group:   "opportunity-worker",
			Workers: 1,
		},
		Redis: RedisConfig{
			AlertCooldown: Duration{10 * time.Minute},
			VerdictTTL:    Duration{7 * 24 * time.Hour},
		},
		SQLite: SQLiteConfig{
			Path: "data/crossarb.db",
		},
		LLM: LLMConfig{
			Model:   "gpt-4o-mini",
			Timeout: Duration{45 * time.Second},
		},
		LogLevel: "info",
	}
}

// Load builds the configuration from defaults, the optional TOML file at path,
// a .env file in the working directory and finally the process environment.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs []error
	setFloat := func(key string, dst *float64) {
		if v, ok := lookup(key); ok {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = f
		}
	}
	setInt := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	setSeconds := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			dst.Duration = time.Duration(n) * time.Second
		}
	}
	setString := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}

	setFloat("MIN_PROFIT_THRESHOLD", &c.Detector.MinProfitThreshold)
	setFloat("SIMILARITY_THRESHOLD", &c.Detector.SimilarityThreshold)
	setString("MATCH_LOG_MODE", &c.Detector.MatchLogMode)
	setString("MATCH_LOG_PATH", &c.Detector.MatchLogPath)
	setSeconds("CHECK_INTERVAL_SECONDS", &c.Scan.Interval)
	setSeconds("DETECT_TIMEOUT_SECONDS", &c.Scan.DetectTimeout)
	if v, ok := os.LookupEnv("ALLOWED_CATEGORIES"); ok {
		c.Scan.AllowedCategories = strings.TrimSpace(v)
	}
	setString("POLYMARKET_API_URL", &c.Venues.PolymarketURL)
	setInt("POLYMARKET_LIMIT", &c.Venues.PolymarketLimit)
	setString("KALSHI_API_URL", &c.Venues.KalshiURL)
	setInt("KALSHI_LIMIT", &c.Venues.KalshiLimit)
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.Kafka.Brokers = splitList(v)
	}
	setString("OPPORTUNITIES_KAFKA_TOPIC", &c.Kafka.Topic)
	setString("OPPORTUNITY_WORKER_GROUP", &c.Kafka.Group)
	setInt("OPPORTUNITY_WORKERS", &c.Kafka.Workers)
	setString("REDIS_ADDR", &c.Redis.Addr)
	setString("REDIS_PASSWORD", &c.Redis.Password)
	setInt("REDIS_DB", &c.Redis.DB)
	setSeconds("ALERT_COOLDOWN_SECONDS", &c.Redis.AlertCooldown)
	setString("SQLITE_PATH", &c.SQLite.Path)
	setString("LLM_API_KEY", &c.LLM.APIKey)
	setString("LLM_BASE_URL", &c.LLM.BaseURL)
	setString("LLM_MODEL", &c.LLM.Model)
	setString("LOG_LEVEL", &c.LogLevel)

	return errors.Join(errs...)
}

// Validate rejects values the detector or scan loop cannot work with.
func (c *Config) Validate() error {
	var errs []error
	if c.Detector.MinProfitThreshold < 0 {
		errs = append(errs, fmt.Errorf("config: min_profit_threshold must be >= 0, got %v", c.Detector.MinProfitThreshold))
	}
	if s := c.Detector.SimilarityThreshold; s < 0 || s > 1 {
		errs = append(errs, fmt.Errorf("config: similarity_threshold must be in [0,1], got %v", s))
	}
	if c.Scan.Interval.Duration <= 0 {
		errs = append(errs, fmt.Errorf("config: scan interval must be positive"))
	}
	if c.Scan.DetectTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("config: detect timeout must be positive"))
	}
	if c.Venues.PolymarketLimit < 0 || c.Venues.KalshiLimit < 0 {
		errs = append(errs, fmt.Errorf("config: venue limits must not be negative"))
	}
	return errors.Join(errs...)
}

func lookup(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
