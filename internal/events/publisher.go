// Package events relays committed outbox rows to Kafka.
package events

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"

	"github.com/segmentio/kafka-go"
)

// Publisher delivers a batch of events. Either all are accepted or an error
// is returned.
type Publisher interface {
	Publish(ctx context.Context, events []model.OutboxEvent) error
	Close() error
}

// KafkaPublisher writes events to one topic, keyed by order number so every
// event for an order lands on the same partition.
type KafkaPublisher struct {
	writer *kafka.Writer
}

// NewKafkaPublisher creates a synchronous writer for topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 50 * time.Millisecond,
		},
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events []model.OutboxEvent) error {
	msgs := make([]kafka.Message, len(events))
	for i, e := range events {
		msgs[i] = toMessage(e)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write %d messages: %w", len(msgs), err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(e model.OutboxEvent) kafka.Message {
	return kafka.Message{
		Key:   []byte(e.Key),
		Value: e.Payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(e.EventID.String())},
			{Key: "event_type", Value: []byte(e.Topic)},
		},
		Time: e.CreatedAt.UTC(),
	}
}
