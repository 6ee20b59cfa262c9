package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btg-funds-backend/internal/domain/fund"
	"github.com/btg-funds-backend/internal/platform/persistence"
)

// FundRepository implements the fund.Repository interface for PostgreSQL
type FundRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewFundRepository creates a new PostgreSQL fund repository
func NewFundRepository(logger *slog.Logger, db *persistence.PostgresDB) fund.Repository {
	return &FundRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction
func (r *FundRepository) WithTx(tx pgx.Tx) fund.Repository {
	return &FundRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new fund. Callers pre-check the name, but the database
// constraint is the authority: a unique violation from a concurrent insert
// still surfaces as the typed duplicate error.
func (r *FundRepository) Create(ctx context.Context, f *fund.Fund) error {
	query := `
		INSERT INTO funds (id, name, category, minimum_amount, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.querier.Exec(ctx, query,
		f.ID,
		f.Name,
		f.Category,
		f.MinimumAmount,
		f.IsActive,
		f.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fund.ErrDuplicateName{Name: f.Name}
		}
		r.logger.Error("Failed to create fund", "name", f.Name, "error", err)
		return fmt.Errorf("failed to create fund: %w", err)
	}

	return nil
}

// GetByID retrieves a fund by its ID
func (r *FundRepository) GetByID(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	query := `
		SELECT id, name, category, minimum_amount, is_active, created_at
		FROM funds
		WHERE id = $1
	`

	var f fund.Fund
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&f.ID,
		&f.Name,
		&f.Category,
		&f.MinimumAmount,
		&f.IsActive,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fund.ErrFundNotFound{FundID: id}
		}
		r.logger.Error("Failed to get fund", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get fund: %w", err)
	}

	return &f, nil
}

// GetByName retrieves a fund by its unique name. Returns nil, nil when no
// fund exists with the given name.
func (r *FundRepository) GetByName(ctx context.Context, name string) (*fund.Fund, error) {
	query := `
		SELECT id, name, category, minimum_amount, is_active, created_at
		FROM funds
		WHERE name = $1
	`

	var f fund.Fund
	err := r.querier.QueryRow(ctx, query, name).Scan(
		&f.ID,
		&f.Name,
		&f.Category,
		&f.MinimumAmount,
		&f.IsActive,
		&f.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get fund by name", "name", name, "error", err)
		return nil, fmt.Errorf("failed to get fund by name: %w", err)
	}

	return &f, nil
}

// List retrieves funds matching the filter, ordered by name ascending
func (r *FundRepository) List(ctx context.Context, filter fund.Filter) ([]*fund.Fund, error) {
	query := `
		SELECT id, name, category, minimum_amount, is_active, created_at
		FROM funds
		WHERE 1=1
	`
	var args []interface{}

	if filter.Category != "" {
		args = append(args, filter.Category)
		query += " AND category = $" + strconv.Itoa(len(args))
	}
	if filter.ActiveOnly {
		query += " AND is_active = TRUE"
	}
	if filter.MaxMinimum > 0 {
		args = append(args, filter.MaxMinimum)
		query += " AND minimum_amount <= $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY name ASC"

	rows, err := r.querier.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list funds", "error", err)
		return nil, fmt.Errorf("failed to list funds: %w", err)
	}
	defer rows.Close()

	var funds []*fund.Fund
	for rows.Next() {
		var f fund.Fund
		if err := rows.Scan(&f.ID, &f.Name, &f.Category, &f.MinimumAmount, &f.IsActive, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fund row: %w", err)
		}
		funds = append(funds, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fund rows: %w", err)
	}

	return funds, nil
}
