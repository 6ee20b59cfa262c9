package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/btg-funds-backend/internal/archiver/service"
	"github.com/btg-funds-backend/internal/domain/transaction"
	"github.com/btg-funds-backend/internal/platform/messaging/producers"
)

// ArchiveEventHandler handles incoming ledger entry events from Kafka
type ArchiveEventHandler struct {
	archivingService service.ArchivingService
	producer         producers.DeadLetterPublisher
	logger           *slog.Logger
}

// NewArchiveEventHandler creates a new handler
func NewArchiveEventHandler(
	logger *slog.Logger,
	archivingService service.ArchivingService,
	producer producers.DeadLetterPublisher,
) *ArchiveEventHandler {
	return &ArchiveEventHandler{
		archivingService: archivingService,
		producer:         producer,
		logger:           logger,
	}
}

// HandleMessage processes one Kafka message. Undecodable payloads go to the
// DLQ so the partition is not blocked behind a poison message.
func (h *ArchiveEventHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var entry transaction.Entry
	if err := json.Unmarshal(value, &entry); err != nil {
		unmarshalErrorMsg := "Failed to unmarshal ledger entry from Kafka message"
		h.logger.Error(unmarshalErrorMsg,
			"error", err,
			"message_key", string(key),
		)

		if h.producer != nil {
			dlqReason := fmt.Sprintf("%s: %s", unmarshalErrorMsg, err.Error())
			if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, dlqReason); dlqErr != nil {
				h.logger.Error("Failed to publish message to DLQ after unmarshal error",
					"dlq_error", dlqErr,
					"original_error", err,
					"message_key", string(key),
				)
			} else {
				h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", dlqReason)
				return nil
			}
		}
		return fmt.Errorf("failed to unmarshal message value: %w", err)
	}

	h.logger.Info("Received ledger entry for archiving",
		"transaction_id", entry.TransactionID,
		"user_id", entry.UserID.String(),
		"type", entry.Type,
		"amount", entry.Amount,
	)

	if err := h.archivingService.ArchiveEntry(ctx, &entry); err != nil {
		h.logger.Error("Failed to archive ledger entry",
			"transaction_id", entry.TransactionID,
			"error", err,
		)
		return fmt.Errorf("archiving entry %s failed: %w", entry.TransactionID, err)
	}

	h.logger.Info("Successfully archived ledger entry", "transaction_id", entry.TransactionID)
	return nil
}
