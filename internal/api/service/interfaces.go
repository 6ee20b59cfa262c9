package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/domain/fund"
	"github.com/btg-funds-backend/internal/domain/transaction"
	"github.com/btg-funds-backend/internal/domain/user"
)

// CatalogService defines the interface for fund catalog operations
type CatalogService interface {
	// CreateFund adds a new fund to the catalog
	// Returns ErrDuplicateName if a fund with the same name exists
	CreateFund(ctx context.Context, name string, category fund.Category, minimumAmount int64) (*fund.Fund, error)

	// GetFund retrieves a fund by its ID
	// Returns ErrFundNotFound if the fund doesn't exist
	GetFund(ctx context.Context, id uuid.UUID) (*fund.Fund, error)

	// ListFunds returns funds matching the filter, ordered by name ascending
	ListFunds(ctx context.Context, filter fund.Filter) ([]*fund.Fund, error)
}

// SubscriptionService is the balance engine: it validates and applies
// subscribe/cancel operations against the ledger and the user's cash,
// with both-or-nothing storage semantics.
type SubscriptionService interface {
	// Subscribe debits the user's cash and opens or grows a fund position.
	// Precondition failures surface as typed domain errors.
	Subscribe(ctx context.Context, userID, fundID uuid.UUID, amount int64) (*transaction.Entry, error)

	// Cancel liquidates the user's entire position in the fund and credits
	// the proceeds back to the available balance.
	Cancel(ctx context.Context, userID, fundID uuid.UUID) (*transaction.Entry, error)
}

// PortfolioBalance is the projection of a user's money split between
// available cash and ledger-derived invested value.
type PortfolioBalance struct {
	UserID    uuid.UUID
	Available int64
	Invested  int64
	Total     int64
}

// TransactionHistory is a paginated, newest-first view of a user's ledger
// plus a recomputed investment summary.
type TransactionHistory struct {
	Transactions      []*transaction.Entry
	TotalInvested     int64
	AvailableBalance  int64
	TotalTransactions int64
}

// PortfolioService derives read-side views from the transaction ledger
type PortfolioService interface {
	// Balance returns available cash, invested value, and their sum
	Balance(ctx context.Context, userID uuid.UUID) (*PortfolioBalance, error)

	// History returns a paginated transaction listing with summary totals
	History(ctx context.Context, userID uuid.UUID, page, perPage int) (*TransactionHistory, error)
}

// BalanceOperation selects the direction of an admin balance adjustment
type BalanceOperation string

const (
	BalanceOperationAdd      BalanceOperation = "add"
	BalanceOperationSubtract BalanceOperation = "subtract"
)

// UserService defines the interface for account management operations
type UserService interface {
	// Register creates a new client with the default starting balance
	// Returns ErrDuplicateEmail if the email is taken
	Register(ctx context.Context, email, fullName, phone, password string, pref user.NotificationPreference) (*user.User, error)

	// Authenticate verifies credentials, returning ErrInvalidCredentials on mismatch
	Authenticate(ctx context.Context, email, password string) (*user.User, error)

	// GetByID retrieves a user by ID
	// Returns ErrUserNotFound if the user doesn't exist
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)

	// List returns paginated users, newest first
	List(ctx context.Context, page, perPage int) ([]*user.User, error)

	// AdjustBalance applies an admin cash correction outside the ledger
	AdjustBalance(ctx context.Context, userID uuid.UUID, amount int64, op BalanceOperation) (*user.User, error)

	// UpdateProfile changes the caller's editable profile fields;
	// empty arguments keep their current value
	UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, phone string, pref user.NotificationPreference) (*user.User, error)

	// SetActive activates or deactivates an account. Deactivated users
	// can no longer authenticate
	SetActive(ctx context.Context, userID uuid.UUID, active bool) (*user.User, error)
}

// AuditService queries the derived transaction archive
type AuditService interface {
	// Search returns archived entries within the time window, newest first
	Search(ctx context.Context, startTime, endTime time.Time, page, perPage int) ([]*transaction.Entry, error)
}
