// Package postgres provides PostgreSQL implementations of the domain
// repositories. Users, the fund catalog, the transaction ledger, and the
// outbox all live in one database so subscribe/cancel operations commit
// as a single transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btg-funds-backend/internal/domain/user"
	"github.com/btg-funds-backend/internal/platform/persistence"
)

const userColumns = `id, email, full_name, phone, hashed_password, balance, subscribed_funds,
		notification_preference, role, is_active, version, created_at, updated_at`

// UserRepository implements the user.Repository interface for PostgreSQL
type UserRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewUserRepository creates a new PostgreSQL user repository.
// It expects db.Pool() to satisfy persistence.Querier.
func NewUserRepository(logger *slog.Logger, db *persistence.PostgresDB) user.Repository {
	return &UserRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing for atomic
// operations across multiple repository calls.
func (r *UserRepository) WithTx(tx pgx.Tx) user.Repository {
	return &UserRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new user. Callers pre-check the email, but the database
// constraint is the authority: a unique violation from a concurrent insert
// still surfaces as the typed duplicate error.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := r.querier.Exec(ctx, query,
		u.ID,
		u.Email,
		u.FullName,
		u.Phone,
		u.HashedPassword,
		u.Balance,
		u.SubscribedFunds,
		u.NotificationPreference,
		u.Role,
		u.IsActive,
		u.Version,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateEmail{Email: u.Email}
		}
		r.logger.Error("Failed to create user", "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := r.scanUser(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{UserID: id}
		}
		r.logger.Error("Failed to get user", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return u, nil
}

// GetByEmail retrieves a user by email. Returns nil, nil when no user
// exists with the given email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := r.scanUser(r.querier.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get user by email", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return u, nil
}

// List retrieves users ordered by creation time, newest first
func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`

	rows, err := r.querier.Query(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list users", "error", err)
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := r.scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, nil
}

// Update persists the whole user row using optimistic locking on Version.
// Returns ErrConcurrentModification if the row changed between read and write.
func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET email = $1, full_name = $2, phone = $3, balance = $4, subscribed_funds = $5,
			notification_preference = $6, role = $7, is_active = $8, version = $9, updated_at = $10
		WHERE id = $11 AND version = $12
	`

	result, err := r.querier.Exec(ctx, query,
		u.Email,
		u.FullName,
		u.Phone,
		u.Balance,
		u.SubscribedFunds,
		u.NotificationPreference,
		u.Role,
		u.IsActive,
		u.Version,
		u.UpdatedAt,
		u.ID,
		u.Version-1, // Check previous version for optimistic locking
	)
	if err != nil {
		r.logger.Error("Failed to update user", "id", u.ID.String(), "error", err)
		return fmt.Errorf("failed to update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return user.ErrConcurrentModification{UserID: u.ID}
	}

	return nil
}

// LockForUpdate obtains a pessimistic lock on the user row and returns its
// current state. Must run inside a transaction; concurrent subscribe/cancel
// calls for the same user serialize here while other users stay unblocked.
func (r *UserRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`

	u, err := r.scanUser(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrUserNotFound{UserID: id}
		}
		r.logger.Error("Failed to lock user for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock user for update: %w", err)
	}

	return u, nil
}

func (r *UserRepository) scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.Phone,
		&u.HashedPassword,
		&u.Balance,
		&u.SubscribedFunds,
		&u.NotificationPreference,
		&u.Role,
		&u.IsActive,
		&u.Version,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if u.SubscribedFunds == nil {
		u.SubscribedFunds = []uuid.UUID{}
	}
	return &u, nil
}
