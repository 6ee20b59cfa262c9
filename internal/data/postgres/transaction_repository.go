package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btg-funds-backend/internal/domain/transaction"
	"github.com/btg-funds-backend/internal/platform/persistence"
)

const entryColumns = `id, transaction_id, user_id, fund_id, fund_name, type, amount, status,
		created_at, completed_at`

// TransactionRepository implements the transaction.Repository interface
// for PostgreSQL. The ledger lives next to the users table so a subscribe
// or cancel commits the entry and the balance change in one transaction.
type TransactionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewTransactionRepository creates a new PostgreSQL ledger repository
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB) transaction.Repository {
	return &TransactionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *TransactionRepository) WithTx(tx pgx.Tx) transaction.Repository {
	return &TransactionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create appends a ledger entry. The transaction_id unique constraint
// guards against duplicate appends on replay.
func (r *TransactionRepository) Create(ctx context.Context, entry *transaction.Entry) error {
	query := `
		INSERT INTO transactions (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		entry.ID,
		entry.TransactionID,
		entry.UserID,
		entry.FundID,
		entry.FundName,
		entry.Type,
		entry.Amount,
		entry.Status,
		entry.CreatedAt,
		entry.CompletedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create ledger entry",
			"transaction_id", entry.TransactionID,
			"error", err)
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves a ledger entry by its business identifier.
// Returns ErrEntryNotFound if no entry exists.
func (r *TransactionRepository) GetByTransactionID(ctx context.Context, transactionID string) (*transaction.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM transactions WHERE transaction_id = $1`

	var e transaction.Entry
	err := r.querier.QueryRow(ctx, query, transactionID).Scan(
		&e.ID,
		&e.TransactionID,
		&e.UserID,
		&e.FundID,
		&e.FundName,
		&e.Type,
		&e.Amount,
		&e.Status,
		&e.CreatedAt,
		&e.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, transaction.ErrEntryNotFound{TransactionID: transactionID}
		}
		r.logger.Error("Failed to get ledger entry", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("failed to get ledger entry: %w", err)
	}

	return &e, nil
}

// GetByUserID retrieves paginated ledger entries for a user, newest first
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*transaction.Entry, error) {
	query := `
		SELECT ` + entryColumns + `
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.querier.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to get ledger entries", "user_id", userID.String(), "error", err)
		return nil, fmt.Errorf("failed to get ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*transaction.Entry
	for rows.Next() {
		var e transaction.Entry
		err := rows.Scan(&e.ID, &e.TransactionID, &e.UserID, &e.FundID, &e.FundName,
			&e.Type, &e.Amount, &e.Status, &e.CreatedAt, &e.CompletedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entry rows: %w", err)
	}

	return entries, nil
}

// CountByUserID counts the total number of ledger entries for a user
func (r *TransactionRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM transactions WHERE user_id = $1`

	var count int64
	if err := r.querier.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		r.logger.Error("Failed to count ledger entries", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to count ledger entries: %w", err)
	}

	return count, nil
}

// NetInvested folds COMPLETED entries for one user/fund pair. The ledger
// is the source of truth for the position; the cached subscribed_funds
// set is never consulted here.
func (r *TransactionRepository) NetInvested(ctx context.Context, userID, fundID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'SUBSCRIPTION' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = $1 AND fund_id = $2 AND status = 'COMPLETED'
	`

	var net int64
	if err := r.querier.QueryRow(ctx, query, userID, fundID).Scan(&net); err != nil {
		r.logger.Error("Failed to compute net invested amount",
			"user_id", userID.String(), "fund_id", fundID.String(), "error", err)
		return 0, fmt.Errorf("failed to compute net invested amount: %w", err)
	}

	return net, nil
}

// TotalInvested folds COMPLETED entries across all funds for a user
func (r *TransactionRepository) TotalInvested(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(CASE WHEN type = 'SUBSCRIPTION' THEN amount ELSE -amount END), 0)
		FROM transactions
		WHERE user_id = $1 AND status = 'COMPLETED'
	`

	var total int64
	if err := r.querier.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		r.logger.Error("Failed to compute total invested amount", "user_id", userID.String(), "error", err)
		return 0, fmt.Errorf("failed to compute total invested amount: %w", err)
	}

	return total, nil
}
