package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/crossarb/internal/matches"
)

type recordingWriter struct {
	msgs []kafka.Message
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func TestPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := NewPublisher(w)
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return at }

	opps := []matches.Opportunity{
		{Question: "a", Venue1: "Polymarket", Venue2: "Kalshi", Action1: matches.ActionBuyYes, Action2: matches.ActionBuyNo, Odds1: 0.4, Odds2: 0.5, ProfitPercentage: 11.11},
		{Question: "b", Venue1: "Kalshi", Venue2: "Polymarket", ProfitPercentage: 3},
	}
	require.NoError(t, p.Publish(context.Background(), "scan-1", opps))
	require.Len(t, w.msgs, 2)

	var got matches.Payload
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &got))
	assert.Equal(t, "scan-1", got.ScanID)
	assert.Equal(t, matches.HashStrings("a|Kalshi|Polymarket"), got.Key)
	assert.Equal(t, got.Key, string(w.msgs[0].Key))
	assert.True(t, at.Equal(got.DetectedAt))
	assert.Equal(t, opps[0], got.Opportunity)
	assert.Nil(t, got.ResolutionVerdict)
}

func TestPublisher_NoOpportunitiesWritesNothing(t *testing.T) {
	w := &recordingWriter{}
	require.NoError(t, NewPublisher(w).Publish(context.Background(), "scan-1", nil))
	assert.Empty(t, w.msgs)
}
