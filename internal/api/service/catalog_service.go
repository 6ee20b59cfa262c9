package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/domain/fund"
)

// CatalogServiceImpl implements the CatalogService interface
type CatalogServiceImpl struct {
	fundRepo fund.Repository
}

// NewCatalogService creates a new fund catalog service
func NewCatalogService(fundRepo fund.Repository) CatalogService {
	return &CatalogServiceImpl{
		fundRepo: fundRepo,
	}
}

// CreateFund adds a new fund to the catalog, checking for duplicate names
func (s *CatalogServiceImpl) CreateFund(ctx context.Context, name string, category fund.Category, minimumAmount int64) (*fund.Fund, error) {
	existing, err := s.fundRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fund.ErrDuplicateName{Name: name}
	}

	f, err := fund.NewFund(name, category, minimumAmount)
	if err != nil {
		return nil, err
	}

	if err := s.fundRepo.Create(ctx, f); err != nil {
		return nil, err
	}

	return f, nil
}

// GetFund retrieves a fund by its ID, returns ErrFundNotFound if not found
func (s *CatalogServiceImpl) GetFund(ctx context.Context, id uuid.UUID) (*fund.Fund, error) {
	return s.fundRepo.GetByID(ctx, id)
}

// ListFunds returns funds matching the filter, ordered by name ascending
func (s *CatalogServiceImpl) ListFunds(ctx context.Context, filter fund.Filter) ([]*fund.Fund, error) {
	return s.fundRepo.List(ctx, filter)
}
