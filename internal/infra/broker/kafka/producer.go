package kafka

import (
	"context"
	"log/slog"

	"github.com/IBM/sarama"
)

// Producer publishes outbox events to Kafka with idempotent, fully-acked
// writes.
type Producer struct {
	sync   sarama.SyncProducer
	logger *slog.Logger
}

func NewProducer(brokers []string, clientID string, logger *slog.Logger) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.ClientID = clientID
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Idempotent = true
	cfg.Producer.Retry.Max = 5
	cfg.Producer.Return.Successes = true
	cfg.Net.MaxOpenRequests = 1

	sync, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{sync: sync, logger: logger}, nil
}

func (p *Producer) Publish(_ context.Context, topic string, key string, payload []byte, headers map[string]string) error {
	hs := make([]sarama.RecordHeader, 0, len(headers))
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	msg := &sarama.ProducerMessage{
		Topic:   topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(payload),
		Headers: hs,
	}
	partition, offset, err := p.sync.SendMessage(msg)
	if err != nil {
		return err
	}
	if p.logger != nil {
		p.logger.Debug("event published", "topic", topic, "partition", partition, "offset", offset)
	}
	return nil
}

func (p *Producer) Close() error {
	if p.sync == nil {
		return nil
	}
	return p.sync.Close()
}

// NoopProducer drops events, used when the broker is not configured.
type NoopProducer struct {
	Logger *slog.Logger
}

func (n NoopProducer) Publish(_ context.Context, topic string, _ string, _ []byte, _ map[string]string) error {
	if n.Logger != nil {
		n.Logger.Debug("event dropped, broker disabled", "topic", topic)
	}
	return nil
}
