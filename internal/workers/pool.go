package workers

import (
	"context"
	"encoding/json"
	"sync"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/hetulpatel/crossarb/internal/kafka"
	"github.com/hetulpatel/crossarb/internal/logging"
	"github.com/hetulpatel/crossarb/internal/matches"
)

type Handler func(context.Context, *matches.Payload) error

// MessageReader is the subset of *kafka.Reader a worker consumes from.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafkago.Message, error)
	Close() error
}

// Run starts workerCount consumers in one group and blocks until ctx is done.
func Run(ctx context.Context, brokers []string, topic, group string, workerCount int, handler Handler) {
	RunWith(ctx, workerCount, func() MessageReader {
		return kafka.NewReader(brokers, topic, group)
	}, handler)
}

// RunWith is Run with a custom reader factory.
func RunWith(ctx context.Context, workerCount int, newReader func() MessageReader, handler Handler) {
	if workerCount <= 0 {
		workerCount = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reader := newReader()
			defer reader.Close()
			consume(ctx, reader, handler)
		}()
	}

	<-ctx.Done()
	wg.Wait()
}

func consume(ctx context.Context, reader MessageReader, handler Handler) {
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logging.Errorf("[worker] read error: %v", err)
			continue
		}

		var payload matches.Payload
		if err := json.Unmarshal(msg.Value, &payload); err != nil {
			logging.Errorf("[worker] unmarshal error: %v", err)
			continue
		}

		if handler != nil {
			if err := handler(ctx, &payload); err != nil {
				logging.Errorf("[worker] handler error for %s: %v", payload.Key, err)
			}
		}
	}
}
