package service

import (
	"context"

	"github.com/btg-funds-backend/internal/domain/transaction"
)

// ArchivingService writes completed ledger entries into the archive store
type ArchivingService interface {
	ArchiveEntry(ctx context.Context, entry *transaction.Entry) error
}
