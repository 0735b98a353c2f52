package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/hetulpatel/crossarb/internal/matches"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Publisher sends each opportunity of a scan as a matches.Payload keyed by
// the hashed opportunity key.
type Publisher struct {
	writer MessageWriter
	now    func() time.Time
}

func NewPublisher(writer MessageWriter) *Publisher {
	return &Publisher{writer: writer, now: time.Now}
}

func (p *Publisher) Name() string {
	return "kafka"
}

func (p *Publisher) Publish(ctx context.Context, scanID string, opps []matches.Opportunity) error {
	if p == nil || p.writer == nil || len(opps) == 0 {
		return nil
	}

	detected := p.now()
	msgs := make([]kafka.Message, 0, len(opps))
	for _, opp := range opps {
		payload := matches.NewPayload(scanID, opp, detected)
		value, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal opportunity %q: %w", opp.Question, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(payload.Key), Value: value})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}
