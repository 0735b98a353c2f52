package polymarket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hetulpatel/crossarb/internal/collectors"
	"github.com/hetulpatel/crossarb/internal/logging"
)

const (
	defaultBaseURL = "https://gamma-api.polymarket.com"
	defaultLimit   = 100
)

// Client fetches open Polymarket markets from the Gamma API.
type Client struct {
	baseURL    string
	limit      int
	httpClient *http.Client
	retry      collectors.RetryPolicy
}

// Config controls optional overrides for the client.
type Config struct {
	BaseURL string
	Limit   int
	Retry   collectors.RetryPolicy
}

// NewClient builds a Polymarket client on the shared http client.
func NewClient(httpClient *http.Client, cfg Config) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 20 * time.Second}
	}
	return &Client{baseURL: base, limit: limit, httpClient: httpClient, retry: cfg.Retry}
}

func (c *Client) Name() collectors.Venue {
	return collectors.VenuePolymarket
}

func (c *Client) Info() collectors.PlatformInfo {
	return collectors.PlatformInfo{
		Name:        string(collectors.VenuePolymarket),
		Chain:       "Polygon",
		Description: "Highest liquidity, best known globally",
	}
}

// Fetch returns the highest-volume open markets that quote both Yes and No.
func (c *Client) Fetch(ctx context.Context) ([]collectors.Market, error) {
	query := map[string]string{
		"closed": "false",
		"limit":  strconv.Itoa(c.limit),
		"_sort":  "volume24hr:desc",
	}
	var raw []market
	if err := collectors.GetJSON(ctx, c.httpClient, c.baseURL+"/markets", query, nil, c.retry, &raw); err != nil {
		return nil, fmt.Errorf("polymarket list markets: %w", err)
	}

	out := make([]collectors.Market, 0, len(raw))
	for i := range raw {
		m, err := normalizeMarket(&raw[i])
		if err != nil {
			logging.Debugf("[polymarket] skip market %q: %v", raw[i].Question, err)
			continue
		}
		out = append(out, m)
	}
	logging.Debugf("[polymarket] fetched %d markets, kept %d", len(raw), len(out))
	return out, nil
}

func normalizeMarket(m *market) (collectors.Market, error) {
	question := strings.TrimSpace(m.Question)
	if question == "" {
		return collectors.Market{}, fmt.Errorf("empty question")
	}
	if isPlaceholderMarket(m) {
		return collectors.Market{}, fmt.Errorf("placeholder market")
	}
	outcomes, err := decodeList[string](m.Outcomes)
	if err != nil {
		return collectors.Market{}, fmt.Errorf("outcomes: %w", err)
	}
	prices, err := decodeList[collectors.FlexFloat](m.OutcomePrices)
	if err != nil {
		return collectors.Market{}, fmt.Errorf("outcome prices: %w", err)
	}

	odds := make(map[string]float64, len(outcomes))
	for i, outcome := range outcomes {
		if i >= len(prices) {
			break
		}
		p := float64(prices[i])
		if p >= 0 && p <= 1 {
			odds[outcome] = p
		}
	}
	_, yes := odds[collectors.OutcomeYes]
	_, no := odds[collectors.OutcomeNo]
	if !yes || !no {
		return collectors.Market{}, fmt.Errorf("missing Yes/No odds")
	}

	return collectors.Market{
		Question:  question,
		Outcomes:  outcomes,
		Odds:      odds,
		Volume24h: collectors.Float(float64(m.Volume24h)),
		Liquidity: collectors.Float(float64(m.Liquidity)),
	}, nil
}

// decodeList accepts either a JSON array or a string holding a JSON array,
// which is how the Gamma API encodes outcomes and outcomePrices.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		raw = json.RawMessage(s)
	}
	var out []T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

var placeholderQuestionRe = regexp.MustCompile(`(?i)^will\s+\w+\s+[a-z]\b`)

// isPlaceholderMarket drops template markets such as "Will Person X win ..."
// that Polymarket lists before the real candidate is known.
func isPlaceholderMarket(m *market) bool {
	q := strings.TrimSpace(m.Question)
	if placeholderQuestionRe.MatchString(q) {
		return true
	}
	desc := strings.ToLower(m.Description)
	return strings.Contains(desc, "may be updated to replace") || strings.Contains(desc, "placeholder")
}

type market struct {
	ID            string               `json:"id"`
	Question      string               `json:"question"`
	Description   string               `json:"description"`
	Outcomes      json.RawMessage      `json:"outcomes"`
	OutcomePrices json.RawMessage      `json:"outcomePrices"`
	Volume24h     collectors.FlexFloat `json:"volume24hr"`
	Liquidity     collectors.FlexFloat `json:"liquidity"`
	Closed        bool                 `json:"closed"`
}
