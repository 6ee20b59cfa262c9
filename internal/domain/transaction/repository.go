package transaction

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository manages ledger entry persistence. The ledger is append
// only: entries are created and read, never updated or deleted.
type Repository interface {
	Create(ctx context.Context, entry *Entry) error
	GetByTransactionID(ctx context.Context, transactionID string) (*Entry, error)

	// GetByUserID returns paginated entries, newest first
	GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*Entry, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// NetInvested folds COMPLETED entries for one user/fund pair:
	// subscriptions add, cancellations subtract
	NetInvested(ctx context.Context, userID, fundID uuid.UUID) (int64, error)

	// TotalInvested folds COMPLETED entries across all funds for a user
	TotalInvested(ctx context.Context, userID uuid.UUID) (int64, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrEntryNotFound indicates missing ledger entry
type ErrEntryNotFound struct {
	TransactionID string
}

func (e ErrEntryNotFound) Error() string {
	return "ledger entry not found: " + e.TransactionID
}

// Is matches any ErrEntryNotFound when the target carries an empty ID
func (e ErrEntryNotFound) Is(target error) bool {
	t, ok := target.(ErrEntryNotFound)
	if !ok {
		return false
	}
	if t.TransactionID == "" {
		return true
	}
	return e.TransactionID == t.TransactionID
}

// ErrDuplicateEntry indicates transaction uniqueness violation
type ErrDuplicateEntry struct {
	TransactionID string
}

func (e ErrDuplicateEntry) Error() string {
	return "duplicate ledger entry: " + e.TransactionID
}
