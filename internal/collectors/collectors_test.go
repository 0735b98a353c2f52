package collectors

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCollector struct {
	venue   Venue
	markets []Market
	err     error
	delay   time.Duration
}

func (s stubCollector) Name() Venue { return s.venue }

func (s stubCollector) Info() PlatformInfo { return PlatformInfo{Name: string(s.venue)} }

func (s stubCollector) Fetch(ctx context.Context) ([]Market, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	return s.markets, s.err
}

func TestFetchAll_KeepsOrderAndFailedVenues(t *testing.T) {
	cols := []Collector{
		stubCollector{venue: "slow", markets: []Market{{Question: "a"}}, delay: 20 * time.Millisecond},
		stubCollector{venue: "down", err: errors.New("503")},
		stubCollector{venue: "fast", markets: []Market{{Question: "b"}, {Question: "c"}}},
	}

	markets, results := FetchAll(context.Background(), cols)
	assert.Equal(t, []Venue{"slow", "down", "fast"}, markets.Venues())
	assert.Len(t, markets[0].Markets, 1)
	assert.Empty(t, markets[1].Markets)
	assert.Len(t, markets[2].Markets, 2)
	assert.Equal(t, 3, markets.Count())

	require.Len(t, results, 3)
	assert.Error(t, results[1].Err)
	assert.Equal(t, 2, results[2].Count)
	assert.GreaterOrEqual(t, results[0].Duration, 20*time.Millisecond)
}

func TestGetJSON_RetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, userAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "token", r.Header.Get("X-Api-Key"))
		assert.Equal(t, "open", r.URL.Query().Get("status"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"value": 7}`))
	}))
	defer srv.Close()

	var dst struct{ Value int }
	err := GetJSON(context.Background(), srv.Client(), srv.URL, map[string]string{"status": "open"},
		map[string]string{"X-Api-Key": "token"}, RetryPolicy{BaseDelay: time.Millisecond}, &dst)
	require.NoError(t, err)
	assert.Equal(t, 7, dst.Value)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetJSON_GivesUpAfterAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	var dst any
	err := GetJSON(context.Background(), srv.Client(), srv.URL, nil, nil, RetryPolicy{Attempts: 2, BaseDelay: time.Millisecond}, &dst)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_RespectsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var dst any
	err := GetJSON(ctx, srv.Client(), srv.URL, nil, nil, RetryPolicy{BaseDelay: time.Second}, &dst)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Error(t, GetJSON(context.Background(), nil, srv.URL, nil, nil, RetryPolicy{}, &dst))
}

func TestRetryPolicyDelay(t *testing.T) {
	p := RetryPolicy{BaseDelay: time.Second}
	assert.Equal(t, time.Second, p.delay(1, 0))
	assert.Equal(t, 4*time.Second, p.delay(3, http.StatusBadGateway))
	assert.Equal(t, 8*time.Second, p.delay(3, http.StatusTooManyRequests))
	assert.Equal(t, maxBackoff, p.delay(10, 0))
}

func TestFlexFloat(t *testing.T) {
	var v struct {
		A FlexFloat `json:"a"`
		B FlexFloat `json:"b"`
		C FlexFloat `json:"c"`
		D FlexFloat `json:"d"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": 1.5, "b": "2.25", "c": null, "d": ""}`), &v))
	assert.Equal(t, FlexFloat(1.5), v.A)
	assert.Equal(t, FlexFloat(2.25), v.B)
	assert.Zero(t, v.C)
	assert.Zero(t, v.D)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "abc"}`), &v))
}

func TestMarketHelpers(t *testing.T) {
	m := Market{Odds: map[string]float64{OutcomeYes: 0.3}}
	p, ok := m.Price(OutcomeYes)
	assert.True(t, ok)
	assert.Equal(t, 0.3, p)
	_, ok = m.Price(OutcomeNo)
	assert.False(t, ok)
	_, ok = Market{}.Price(OutcomeYes)
	assert.False(t, ok)

	assert.Zero(t, m.VolumeOrZero())
	m.Volume24h = Float(12)
	assert.Equal(t, 12.0, m.VolumeOrZero())
}
