package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/domain/transaction"
	"github.com/btg-funds-backend/internal/domain/user"
)

// PortfolioServiceImpl implements the PortfolioService interface. Both
// views are folds over the same ledger the balance engine writes, so the
// incremental projection and the full-history summary always reconcile.
type PortfolioServiceImpl struct {
	userRepo   user.Repository
	ledgerRepo transaction.Repository
	logger     *slog.Logger
}

// NewPortfolioService creates a new portfolio projection service
func NewPortfolioService(logger *slog.Logger, userRepo user.Repository, ledgerRepo transaction.Repository) PortfolioService {
	return &PortfolioServiceImpl{
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		logger:     logger,
	}
}

// Balance returns the user's available cash, ledger-derived invested
// value, and their sum
func (s *PortfolioServiceImpl) Balance(ctx context.Context, userID uuid.UUID) (*PortfolioBalance, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	invested, err := s.ledgerRepo.TotalInvested(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &PortfolioBalance{
		UserID:    userID,
		Available: u.Balance,
		Invested:  invested,
		Total:     u.Balance + invested,
	}, nil
}

// History returns a paginated, newest-first transaction listing with a
// recomputed investment summary. TotalInvested is floored at zero: a
// well-formed ledger never folds negative, but a reported negative total
// would only mislead the caller, so the floor stays.
func (s *PortfolioServiceImpl) History(ctx context.Context, userID uuid.UUID, page, perPage int) (*TransactionHistory, error) {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage
	entries, err := s.ledgerRepo.GetByUserID(ctx, userID, perPage, offset)
	if err != nil {
		return nil, err
	}

	total, err := s.ledgerRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	invested, err := s.ledgerRepo.TotalInvested(ctx, userID)
	if err != nil {
		return nil, err
	}
	if invested < 0 {
		s.logger.Warn("Ledger folded to negative invested amount, clamping",
			"user_id", userID.String(),
			"invested", invested,
		)
		invested = 0
	}

	return &TransactionHistory{
		Transactions:      entries,
		TotalInvested:     invested,
		AvailableBalance:  u.Balance,
		TotalTransactions: total,
	}, nil
}
