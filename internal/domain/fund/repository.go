package fund

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Filter narrows catalog listings. Zero values leave the dimension open.
type Filter struct {
	Category   Category
	ActiveOnly bool
	MaxMinimum int64
}

// Repository defines fund catalog persistence operations
type Repository interface {
	Create(ctx context.Context, f *Fund) error
	GetByID(ctx context.Context, id uuid.UUID) (*Fund, error)
	GetByName(ctx context.Context, name string) (*Fund, error)

	// List returns funds matching the filter, ordered by name ascending
	List(ctx context.Context, filter Filter) ([]*Fund, error)
	WithTx(tx pgx.Tx) Repository
}

// ErrFundNotFound indicates missing fund
type ErrFundNotFound struct {
	FundID uuid.UUID
}

func (e ErrFundNotFound) Error() string {
	return "fund not found: " + e.FundID.String()
}

// Is matches any ErrFundNotFound when the target carries a nil ID
func (e ErrFundNotFound) Is(target error) bool {
	t, ok := target.(ErrFundNotFound)
	if !ok {
		return false
	}
	if t.FundID == uuid.Nil {
		return true
	}
	return e.FundID == t.FundID
}

// ErrFundInactive indicates the fund is closed to new subscriptions
type ErrFundInactive struct {
	FundName string
}

func (e ErrFundInactive) Error() string {
	return "fund is not active: " + e.FundName
}

// ErrDuplicateName indicates fund name uniqueness violation
type ErrDuplicateName struct {
	Name string
}

func (e ErrDuplicateName) Error() string {
	return "fund with name already exists: " + e.Name
}

// ErrBelowMinimum indicates a subscription amount under the fund's minimum
type ErrBelowMinimum struct {
	FundName string
	Required int64
}

func (e ErrBelowMinimum) Error() string {
	return "amount below minimum for fund " + e.FundName + ": required " + strconv.FormatInt(e.Required, 10)
}
