package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"brandpulse/types"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// EventProducer publishes job events keyed by job ID
type EventProducer struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewEventProducer connects a synchronous producer to the brokers
func NewEventProducer(brokers []string, topic string, logger *zap.Logger) (*EventProducer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_6_0_0
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewEventProducerWith(producer, topic, logger), nil
}

// NewEventProducerWith wraps an existing producer
func NewEventProducerWith(producer sarama.SyncProducer, topic string, logger *zap.Logger) *EventProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventProducer{producer: producer, topic: topic, logger: logger}
}

// Publish sends one event. ctx is unused: the sync producer cannot be cancelled per call.
func (p *EventProducer) Publish(ctx context.Context, ev types.JobEvent) error {
	value, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode job event: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(ev.JobID),
		Value: sarama.ByteEncoder(value),
	})
	if err != nil {
		return fmt.Errorf("failed to publish job event: %w", err)
	}

	p.logger.Debug("job event published",
		zap.String("job_id", ev.JobID),
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close flushes and closes the producer
func (p *EventProducer) Close() error {
	return p.producer.Close()
}
