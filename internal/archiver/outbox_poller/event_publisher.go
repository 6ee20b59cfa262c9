package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/btg-funds-backend/internal/domain/outbox"
	"github.com/btg-funds-backend/internal/domain/shared"
	"github.com/btg-funds-backend/internal/platform/messaging/producers"
)

// EventPublisher pushes an outbox message onto the archive event stream
type EventPublisher interface {
	PublishEvent(ctx context.Context, message *outbox.Message) error
}

// EventPublisherImpl implements EventPublisher on top of a Kafka producer
type EventPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewEventPublisher creates a new publisher
func NewEventPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) EventPublisher {
	return &EventPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishEvent publishes the message payload keyed by transaction ID and marks
// the outbox row processed. A payload that cannot decode is marked
// FAILED_TO_PUBLISH immediately since retrying cannot fix it.
func (p *EventPublisherImpl) PublishEvent(ctx context.Context, message *outbox.Message) error {
	entry, err := message.GetEntry()
	if err != nil {
		p.logger.Error("Failed to decode ledger entry from outbox payload",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status after decode error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("decode payload for outbox %d failed: %w", message.ID, err)
	}

	if err := p.producer.Publish(ctx, entry.TransactionID, entry); err != nil {
		return fmt.Errorf("failed to publish outbox %d to archive stream: %w", message.ID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		p.logger.Error("Failed to mark outbox message as PROCESSED",
			"outbox_id", message.ID, "transaction_id", message.TransactionID, "error", err,
		)
		return fmt.Errorf("event for %s published, but failed to mark outbox %d as PROCESSED: %w", message.TransactionID, message.ID, err)
	}

	p.logger.Info("Outbox message published to archive stream", "outbox_id", message.ID, "transaction_id", message.TransactionID)
	return nil
}
