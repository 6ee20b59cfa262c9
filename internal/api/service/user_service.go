package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/btg-funds-backend/internal/auth"
	"github.com/btg-funds-backend/internal/domain/user"
	"github.com/btg-funds-backend/internal/platform/persistence"
)

// Common errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidOperation   = errors.New("invalid balance operation")
)

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	txManager persistence.TxManager
	userRepo  user.Repository
	logger    *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(logger *slog.Logger, txManager persistence.TxManager, userRepo user.Repository) UserService {
	return &UserServiceImpl{
		txManager: txManager,
		userRepo:  userRepo,
		logger:    logger,
	}
}

// Register creates a new client with the default starting balance,
// checking for duplicate emails
func (s *UserServiceImpl) Register(ctx context.Context, email, fullName, phone, password string, pref user.NotificationPreference) (*user.User, error) {
	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, user.ErrDuplicateEmail{Email: email}
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := user.NewUser(email, fullName, phone, hashed, pref)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", "user_id", u.ID.String(), "email", email)
	return u, nil
}

// Authenticate verifies credentials. A missing user and a wrong password
// produce the same error so the endpoint does not leak which emails exist.
func (s *UserServiceImpl) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(password, u.HashedPassword); err != nil {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}

// GetByID retrieves a user by ID, returns ErrUserNotFound if not found
func (s *UserServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// List returns paginated users, newest first
func (s *UserServiceImpl) List(ctx context.Context, page, perPage int) ([]*user.User, error) {
	offset := (page - 1) * perPage
	return s.userRepo.List(ctx, perPage, offset)
}

// AdjustBalance applies an admin cash correction. The user row is locked
// so the adjustment serializes with in-flight subscribe/cancel calls.
func (s *UserServiceImpl) AdjustBalance(ctx context.Context, userID uuid.UUID, amount int64, op BalanceOperation) (*user.User, error) {
	var adjusted *user.User
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		userRepoTx := s.userRepo.WithTx(tx)
		u, err := userRepoTx.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		switch op {
		case BalanceOperationAdd:
			if err := u.Deposit(amount); err != nil {
				return err
			}
		case BalanceOperationSubtract:
			if err := u.Withdraw(amount); err != nil {
				return err
			}
		default:
			return ErrInvalidOperation
		}

		if err := userRepoTx.Update(ctx, u); err != nil {
			return err
		}
		adjusted = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Balance adjusted",
		"user_id", userID.String(),
		"operation", string(op),
		"amount", amount,
		"new_balance", adjusted.Balance,
	)
	return adjusted, nil
}

// UpdateProfile changes the user's editable profile fields. The row is
// locked so the version bump does not race with balance mutations.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, userID uuid.UUID, fullName, phone string, pref user.NotificationPreference) (*user.User, error) {
	var updated *user.User
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		userRepoTx := s.userRepo.WithTx(tx)
		u, err := userRepoTx.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		u.UpdateProfile(fullName, phone, pref)
		if err := userRepoTx.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Profile updated", "user_id", userID.String())
	return updated, nil
}

// SetActive activates or deactivates an account
func (s *UserServiceImpl) SetActive(ctx context.Context, userID uuid.UUID, active bool) (*user.User, error) {
	var updated *user.User
	err := s.txManager.ExecuteTx(ctx, func(tx pgx.Tx) error {
		userRepoTx := s.userRepo.WithTx(tx)
		u, err := userRepoTx.LockForUpdate(ctx, userID)
		if err != nil {
			return err
		}

		u.SetActive(active)
		if err := userRepoTx.Update(ctx, u); err != nil {
			return err
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Account status changed", "user_id", userID.String(), "is_active", active)
	return updated, nil
}
