package fund

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyName            = errors.New("fund name cannot be empty")
	ErrInvalidMinimumAmount = errors.New("minimum amount must be positive")
	ErrInvalidCategory      = errors.New("invalid fund category")
)

// Category classifies a fund
type Category string

const (
	CategoryFPV Category = "FPV" // Fondo de Pensiones Voluntarias
	CategoryFIC Category = "FIC" // Fondo de Inversion Colectiva
)

// Valid reports whether the category is a known one
func (c Category) Valid() bool {
	return c == CategoryFPV || c == CategoryFIC
}

// Fund represents an investment fund in the catalog
type Fund struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Category      Category  `json:"category"`
	MinimumAmount int64     `json:"minimum_amount"` // Stored in COP, no minor units
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewFund creates a new active fund with the given parameters
func NewFund(name string, category Category, minimumAmount int64) (*Fund, error) {
	if name == "" {
		return nil, ErrEmptyName
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}
	if minimumAmount <= 0 {
		return nil, ErrInvalidMinimumAmount
	}

	return &Fund{
		ID:            uuid.New(),
		Name:          name,
		Category:      category,
		MinimumAmount: minimumAmount,
		IsActive:      true,
		CreatedAt:     time.Now(),
	}, nil
}
