package repository

import (
	"context"
	"fmt"

	"TickPulse/internal/domain/models"
	drepo "TickPulse/internal/domain/repository"
	appkafka "TickPulse/pkg/kafka"
)

// KafkaSignalSink publishes signals to the signals topic, keyed by symbol so
// per-symbol ordering survives partitioning.
type KafkaSignalSink struct {
	producer *appkafka.Producer
	topic    string
}

func NewKafkaSignalSink(producer *appkafka.Producer, topic string) drepo.SignalSink {
	return &KafkaSignalSink{producer: producer, topic: topic}
}

func (k *KafkaSignalSink) Publish(ctx context.Context, s *models.Signal) error {
	if err := k.producer.Publish(ctx, k.topic, []byte(s.Symbol), s); err != nil {
		return fmt.Errorf("publish signal %s: %w", s.Symbol, err)
	}
	return nil
}

func (k *KafkaSignalSink) Close() error {
	return k.producer.Close()
}
