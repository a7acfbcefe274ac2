package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"inkwell/internal/metrics"
)

// KafkaPublisher writes events keyed by post id so every post's events stay
// in one partition and keep their order.
type KafkaPublisher struct {
	w      *kafka.Writer
	logger *slog.Logger
}

func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(msgs []kafka.Message, err error) {
			if err != nil {
				logger.Error("kafka write failed", "count", len(msgs), "error", err)
			}
		},
	}
	return &KafkaPublisher{w: w, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	err = p.w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(ev.PostID.String()),
		Value: payload,
		Time:  ev.At,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(ev.Type)},
		},
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		p.logger.Error("publish event", "type", ev.Type, "error", err)
		return err
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
	return nil
}

func (p *KafkaPublisher) Close() error { return p.w.Close() }
