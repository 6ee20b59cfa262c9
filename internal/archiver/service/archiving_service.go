package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/btg-funds-backend/internal/domain/transaction"
)

// ArchivingServiceImpl copies ledger entries into the archive store.
// Writes are idempotent upserts keyed by transaction ID, so replayed
// events converge on the same document.
type ArchivingServiceImpl struct {
	archiveRepo transaction.ArchiveRepository
	logger      *slog.Logger
}

// NewArchivingService creates a new archiving service
func NewArchivingService(archiveRepo transaction.ArchiveRepository, logger *slog.Logger) *ArchivingServiceImpl {
	return &ArchivingServiceImpl{
		archiveRepo: archiveRepo,
		logger:      logger,
	}
}

// ArchiveEntry persists one ledger entry into the archive
func (s *ArchivingServiceImpl) ArchiveEntry(ctx context.Context, entry *transaction.Entry) error {
	if entry.TransactionID == "" {
		return fmt.Errorf("cannot archive entry without a transaction ID")
	}

	if err := s.archiveRepo.Upsert(ctx, entry); err != nil {
		s.logger.Error("Failed to archive ledger entry",
			"transaction_id", entry.TransactionID,
			"user_id", entry.UserID,
			"error", err,
		)
		return fmt.Errorf("failed to archive entry %s: %w", entry.TransactionID, err)
	}

	s.logger.Debug("Archived ledger entry",
		"transaction_id", entry.TransactionID,
		"type", entry.Type,
		"amount", entry.Amount,
	)
	return nil
}
