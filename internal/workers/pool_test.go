package workers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hetulpatel/crossarb/internal/matches"
)

type chanReader struct {
	msgs   chan kafkago.Message
	closed bool
	mu     sync.Mutex
}

func (r *chanReader) ReadMessage(ctx context.Context) (kafkago.Message, error) {
	select {
	case <-ctx.Done():
		return kafkago.Message{}, ctx.Err()
	case m := <-r.msgs:
		return m, nil
	}
}

func (r *chanReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func TestRunWith_DecodesPayloads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &chanReader{msgs: make(chan kafkago.Message, 3)}
	good, err := json.Marshal(matches.NewPayload("scan-1", matches.Opportunity{Question: "a", Venue1: "X", Venue2: "Y"}, time.Now()))
	require.NoError(t, err)
	reader.msgs <- kafkago.Message{Value: []byte("{not json")}
	reader.msgs <- kafkago.Message{Value: good}
	reader.msgs <- kafkago.Message{Value: good}

	got := make(chan *matches.Payload, 3)
	calls := 0
	handler := func(_ context.Context, p *matches.Payload) error {
		got <- p
		calls++
		if calls == 1 {
			return errors.New("transient")
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		RunWith(ctx, 1, func() MessageReader { return reader }, handler)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case p := <-got:
			assert.Equal(t, "scan-1", p.ScanID)
			assert.Equal(t, "a", p.Opportunity.Question)
		case <-time.After(2 * time.Second):
			t.Fatal("handler not called")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
	reader.mu.Lock()
	assert.True(t, reader.closed)
	reader.mu.Unlock()
}
