// Package kafka relays outbox events to a Kafka topic.
package kafka

import (
	"context"
	"fmt"

	"fulfillment/config"
	"fulfillment/infrastructure/persistence/mysql"
	"fulfillment/pkg/logger"

	"github.com/IBM/sarama"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

func InitProducer(cfg *config.KafkaConfig) (sarama.SyncProducer, error) {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	sc.Producer.Retry.Max = 5
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.Info("Kafka producer initialized", zap.Strings("brokers", cfg.Brokers))
	return producer, nil
}

// Publisher sends each outbox event keyed by aggregate id, so events of one
// aggregate stay ordered within a partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
}

func NewPublisher(producer sarama.SyncProducer, topic string) *Publisher {
	return &Publisher{producer: producer, topic: topic}
}

func (p *Publisher) Publish(ctx context.Context, msg mysql.OutboxMessage) error {
	carrier := saramaHeaderCarrier{
		{Key: []byte("event_id"), Value: []byte(msg.ID)},
		{Key: []byte("event_type"), Value: []byte(msg.EventType)},
	}
	otel.GetTextMapPropagator().Inject(ctx, &carrier)

	pm := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(msg.AggregateID),
		Value:   sarama.StringEncoder(msg.Payload),
		Headers: []sarama.RecordHeader(carrier),
	}

	partition, offset, err := p.producer.SendMessage(pm)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	logger.Ctx(ctx).Debug("Event published",
		zap.String("event_id", msg.ID),
		zap.String("topic", p.topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// saramaHeaderCarrier implements the TextMapCarrier interface for Kafka headers
type saramaHeaderCarrier []sarama.RecordHeader

func (c saramaHeaderCarrier) Get(key string) string {
	for _, h := range c {
		if string(h.Key) == key {
			return string(h.Value)
		}
	}
	return ""
}

func (c *saramaHeaderCarrier) Set(key, value string) {
	*c = append(*c, sarama.RecordHeader{
		Key:   []byte(key),
		Value: []byte(value),
	})
}

func (c saramaHeaderCarrier) Keys() []string {
	keys := make([]string, len(c))
	for i, h := range c {
		keys[i] = string(h.Key)
	}
	return keys
}

var _ mysql.OutboxPublisher = (*Publisher)(nil)
