package transaction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ArchiveRepository manages the derived audit archive of completed
// ledger entries. Writes are idempotent by transaction ID so the event
// stream can be replayed safely; the Balance Engine never reads it.
type ArchiveRepository interface {
	Upsert(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Entry, error)
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)
	GetByTimeRange(ctx context.Context, startTime, endTime time.Time, limit, offset int) ([]*Entry, error)
}
