package kalshi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/logging"
)

const (
	defaultBaseURL = "https://api.elections.kalshi.com"
	marketsPath    = "/trade-api/v2/markets"
	defaultLimit   = 100
	maxLimit       = 1000
)

// Client talks to the Kalshi Trade API.
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
	retry      collectors.RetryPolicy
}

// Config provides optional overrides.
type Config struct {
	BaseURL string
	Limit   int
	Retry   collectors.RetryPolicy
}

// NewClient builds a configured Kalshi API client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit // API limit
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{baseURL: base, limit: limit, httpClient: httpClient, retry: cfg.Retry}
}

func (c *Client) Name() collectors.Venue {
	return collectors.VenueKalshi
}

func (c *Client) Info() collectors.PlatformInfo {
	return collectors.PlatformInfo{
		Name:        string(collectors.VenueKalshi),
		Chain:       "Centralized (US)",
		Description: "CFTC-regulated US prediction market covering economics, politics and sports",
	}
}

// Fetch returns one page of open markets priced at the ask, converted from
// cents to probabilities.
func (c *Client) Fetch(ctx context.Context) ([]collectors.Market, error) {
	query := map[string]string{
		"status": "open",
		"limit":  strconv.Itoa(c.limit),
	}
	var resp marketsResponse
	if err := collectors.GetJSON(ctx, c.httpClient, c.baseURL+marketsPath, query, nil, c.retry, &resp); err != nil {
		return nil, fmt.Errorf("list kalshi markets: %w", err)
	}

	out := make([]collectors.Market, 0, len(resp.Markets))
	for i := range resp.Markets {
		m, err := normalizeMarket(&resp.Markets[i])
		if err != nil {
			logging.Debugf("[kalshi] skip market %s: %v", resp.Markets[i].Ticker, err)
			continue
		}
		out = append(out, m)
	}
	logging.Debugf("[kalshi] fetched %d markets, kept %d", len(resp.Markets), len(out))
	return out, nil
}

func normalizeMarket(m *market) (collectors.Market, error) {
	question := deriveKalshiQuestion(m)
	if question == "" {
		return collectors.Market{}, fmt.Errorf("empty title")
	}

	// Buying costs the ask; fall back to the bid when no ask is posted.
	yes := firstPrice(m.YesAsk, m.YesBid)
	no := firstPrice(m.NoAsk, m.NoBid)
	if yes < 0 || yes > 1 || no < 0 || no > 1 {
		return collectors.Market{}, fmt.Errorf("invalid odds yes=%v no=%v", yes, no)
	}

	return collectors.Market{
		Question: question,
		Outcomes: []string{collectors.OutcomeYes, collectors.OutcomeNo},
		Odds: map[string]float64{
			collectors.OutcomeYes: yes,
			collectors.OutcomeNo:  no,
		},
		Volume24h: collectors.Float(float64(m.Volume24h)),
		Liquidity: collectors.Float(float64(m.Liquidity)),
	}, nil
}

func firstPrice(ask, bid *collectors.FlexFloat) float64 {
	if ask != nil {
		return centsToFloat(*ask)
	}
	if bid != nil {
		return centsToFloat(*bid)
	}
	return 0
}

func centsToFloat(v collectors.FlexFloat) float64 {
	return float64(v) / 100.0
}

// deriveKalshiQuestion fills the double-space placeholder some multi-market
// titles carry ("Will  become ...") with the entity named in the rules.
func deriveKalshiQuestion(m *market) string {
	base := strings.TrimSpace(m.Title)
	if !strings.Contains(base, "  ") {
		return base
	}
	alias := extractEntityFromRules(m.RulesPrimary)
	if alias == "" {
		return base
	}
	return strings.Replace(base, "  ", " "+alias+" ", 1)
}

func extractEntityFromRules(rule string) string {
	rule = strings.TrimSpace(rule)
	lower := strings.ToLower(rule)
	if !strings.HasPrefix(lower, "if ") {
		return ""
	}
	trimmed := strings.TrimSpace(rule[3:])
	lowerTrimmed := strings.ToLower(trimmed)
	keywords := []string{" becomes", " is ", " wins", " will ", " reaches", " secures", " scores", " resigns", " retires", " defeats", " beats", " finishes", " captures", " takes", " makes", " receives", " gets "}
	pos := -1
	for _, kw := range keywords {
		if idx := strings.Index(lowerTrimmed, kw); idx != -1 && (pos == -1 || idx < pos) {
			pos = idx
		}
	}
	if pos == -1 {
		if idx := strings.Index(lowerTrimmed, ","); idx != -1 {
			pos = idx
		} else {
			return ""
		}
	}
	return strings.Trim(strings.TrimSpace(trimmed[:pos]), `"'`)
}

type marketsResponse struct {
	Markets []market `json:"markets"`
	Cursor  string   `json:"cursor"`
}

type market struct {
	Ticker       string                `json:"ticker"`
	EventTicker  string                `json:"event_ticker"`
	Title        string                `json:"title"`
	Status       string                `json:"status"`
	YesAsk       *collectors.FlexFloat `json:"yes_ask"`
	YesBid       *collectors.FlexFloat `json:"yes_bid"`
	NoAsk        *collectors.FlexFloat `json:"no_ask"`
	NoBid        *collectors.FlexFloat `json:"no_bid"`
	Volume24h    collectors.FlexFloat  `json:"volume_24h"`
	Liquidity    collectors.FlexFloat  `json:"liquidity"`
	RulesPrimary string                `json:"rules_primary"`
}
