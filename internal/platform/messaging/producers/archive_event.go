package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"

	"github.com/btg-funds-backend/internal/config"
)

// ArchiveEventProducer publishes completed ledger entries onto the archive
// event stream. Writes are synchronous so the outbox poller only marks a
// message processed once the broker has acknowledged it.
type ArchiveEventProducer struct {
	logger *slog.Logger
	writer KafkaWriter
	topic  string
}

// NewArchiveEventProducer creates the archive stream producer and ensures the topic exists
func NewArchiveEventProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*ArchiveEventProducer, error) {
	if cfg.EventTopic == "" {
		return nil, fmt.Errorf("kafka event topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for archive event producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.EventTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure event topic %s exists: %w", cfg.EventTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.EventTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireAll,
		Async:        false,
		WriteTimeout: cfg.MaxWait,
	}

	return &ArchiveEventProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.EventTopic,
	}, nil
}

// Publish writes a single event keyed by transaction ID. Keying by transaction
// ID keeps retries of the same entry on one partition.
func (p *ArchiveEventProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal archive event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish archive event",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish archive event to %s: %w", p.topic, err)
	}

	p.logger.Debug("Published archive event",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

func (p *ArchiveEventProducer) Close() error {
	p.logger.Info("Closing archive event producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
