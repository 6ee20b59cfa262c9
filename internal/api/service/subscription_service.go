package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btg-funds-backend/internal/domain/fund"
	"github.com/btg-funds-backend/internal/domain/outbox"
	"github.com/btg-funds-backend/internal/domain/shared"
	"github.com/btg-funds-backend/internal/domain/transaction"
	"github.com/btg-funds-backend/internal/domain/user"
	"github.com/btg-funds-backend/internal/platform/persistence"
)

// SubscriptionServiceImpl implements the SubscriptionService interface.
//
// Every operation runs inside one storage transaction: the user row is
// locked before any balance or ledger read, and the ledger append, the
// balance mutation, the subscribed_funds cache update, and the outbox
// message commit together or not at all. Same-user requests serialize on
// the row lock; requests for different users proceed in parallel.
type SubscriptionServiceImpl struct {
	txManager  persistence.TxManager
	fundRepo   fund.Repository
	userRepo   user.Repository
	ledgerRepo transaction.Repository
	outboxRepo outbox.Repository
	logger     *slog.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	logger *slog.Logger,
	txManager persistence.TxManager,
	fundRepo fund.Repository,
	userRepo user.Repository,
	ledgerRepo transaction.Repository,
	outboxRepo outbox.Repository,
) SubscriptionService {
	return &SubscriptionServiceImpl{
		txManager:  txManager,
		fundRepo:   fundRepo,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

// Subscribe validates and applies a fund subscription. Precondition order:
// fund exists, fund active, user exists, amount is positive, amount meets
// the fund minimum, balance covers the amount. First failure wins.
func (s *SubscriptionServiceImpl) Subscribe(ctx context.Context, userID, fundID uuid.UUID, amount int64) (*transaction.Entry, error) {
	var entry *transaction.Entry
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		f, err := s.fundRepo.WithTx(tx).GetByID(ctx, fundID)
		if err != nil {
			return err
		}
		if !f.IsActive {
			return fund.ErrFundInactive{FundName: f.Name}
		}

		userRepoTx := s.userRepo.WithTx(tx)
		u, err := userRepoTx.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if amount <= 0 {
			return transaction.ErrInvalidAmount
		}
		if amount < f.MinimumAmount {
			return fund.ErrBelowMinimum{FundName: f.Name, Required: f.MinimumAmount}
		}
		if u.Balance < amount {
			return user.ErrInsufficientFunds
		}

		entry, err = transaction.NewEntry(userID, fundID, f.Name, shared.TransactionTypeSubscription, amount)
		if err != nil {
			return err
		}
		if err := s.ledgerRepo.WithTx(tx).Create(ctx, entry); err != nil {
			return err
		}

		if err := u.Withdraw(amount); err != nil {
			return err
		}
		u.AddFund(fundID)
		if err := userRepoTx.Update(ctx, u); err != nil {
			return err
		}

		return s.enqueueArchiveMessage(ctx, tx, entry)
	})
	if err != nil {
		s.logger.Warn("Subscription rejected",
			"user_id", userID.String(),
			"fund_id", fundID.String(),
			"amount", amount,
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Subscription completed",
		"transaction_id", entry.TransactionID,
		"user_id", userID.String(),
		"fund_id", fundID.String(),
		"amount", amount,
	)
	return entry, nil
}

// Cancel liquidates the user's full position in the fund. The amount is
// always the current net-invested value recomputed from the ledger inside
// the same transaction; the cached subscribed_funds set alone is never
// trusted. Partial redemption is not supported.
func (s *SubscriptionServiceImpl) Cancel(ctx context.Context, userID, fundID uuid.UUID) (*transaction.Entry, error) {
	var entry *transaction.Entry
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		f, err := s.fundRepo.WithTx(tx).GetByID(ctx, fundID)
		if err != nil {
			return err
		}

		userRepoTx := s.userRepo.WithTx(tx)
		u, err := userRepoTx.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		if !u.IsSubscribed(fundID) {
			return user.ErrNotSubscribed{FundName: f.Name}
		}

		ledgerRepoTx := s.ledgerRepo.WithTx(tx)
		invested, err := ledgerRepoTx.NetInvested(ctx, userID, fundID)
		if err != nil {
			return err
		}
		if invested <= 0 {
			return user.ErrNoActiveInvestment{FundName: f.Name}
		}

		entry, err = transaction.NewEntry(userID, fundID, f.Name, shared.TransactionTypeCancellation, invested)
		if err != nil {
			return err
		}
		if err := ledgerRepoTx.Create(ctx, entry); err != nil {
			return err
		}

		if err := u.Deposit(invested); err != nil {
			return err
		}
		u.RemoveFund(fundID)
		if err := userRepoTx.Update(ctx, u); err != nil {
			return err
		}

		return s.enqueueArchiveMessage(ctx, tx, entry)
	})
	if err != nil {
		s.logger.Warn("Cancellation rejected",
			"user_id", userID.String(),
			"fund_id", fundID.String(),
			"error", err,
		)
		return nil, err
	}

	s.logger.Info("Cancellation completed",
		"transaction_id", entry.TransactionID,
		"user_id", userID.String(),
		"fund_id", fundID.String(),
		"amount", entry.Amount,
	)
	return entry, nil
}

// enqueueArchiveMessage records the completed entry for the archiver in
// the same transaction as the ledger append and balance update
func (s *SubscriptionServiceImpl) enqueueArchiveMessage(ctx context.Context, tx pgx.Tx, entry *transaction.Entry) error {
	message, err := outbox.NewMessage(entry)
	if err != nil {
		return err
	}
	return s.outboxRepo.WithTx(tx).Create(ctx, message)
}
