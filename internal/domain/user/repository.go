package user

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines user persistence operations
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, limit, offset int) ([]*User, error)

	// Update persists the whole user row using optimistic locking on Version
	Update(ctx context.Context, u *User) error

	// LockForUpdate acquires a pessimistic row lock for subscribe/cancel
	// processing; same-user operations serialize on this lock
	LockForUpdate(ctx context.Context, id uuid.UUID) (*User, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrUserNotFound indicates missing user
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e ErrUserNotFound) Error() string {
	return "user not found: " + e.UserID.String()
}

// Is matches any ErrUserNotFound when the target carries a nil ID
func (e ErrUserNotFound) Is(target error) bool {
	t, ok := target.(ErrUserNotFound)
	if !ok {
		return false
	}
	if t.UserID == uuid.Nil {
		return true
	}
	return e.UserID == t.UserID
}

// ErrDuplicateEmail indicates email uniqueness violation
type ErrDuplicateEmail struct {
	Email string
}

func (e ErrDuplicateEmail) Error() string {
	return "user with email already exists: " + e.Email
}

// ErrConcurrentModification indicates optimistic lock failure
type ErrConcurrentModification struct {
	UserID uuid.UUID
}

func (e ErrConcurrentModification) Error() string {
	return "concurrent modification detected for user: " + e.UserID.String()
}

// ErrNotSubscribed indicates a cancellation for a fund the user never joined
type ErrNotSubscribed struct {
	FundName string
}

func (e ErrNotSubscribed) Error() string {
	return "user is not subscribed to fund: " + e.FundName
}

// ErrNoActiveInvestment indicates a zero net-invested position in the ledger
type ErrNoActiveInvestment struct {
	FundName string
}

func (e ErrNoActiveInvestment) Error() string {
	return "no active investment in fund: " + e.FundName
}
