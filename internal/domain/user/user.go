package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// InitialBalance is the starting cash every new client receives, in COP.
const InitialBalance int64 = 500000

// Common errors
var (
	ErrInsufficientFunds = errors.New("insufficient balance for subscription")
	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrEmptyEmail        = errors.New("email cannot be empty")
	ErrEmptyFullName     = errors.New("full name cannot be empty")
)

// NotificationPreference selects how the user is notified of transactions
type NotificationPreference string

const (
	NotifyByEmail NotificationPreference = "email"
	NotifyBySMS   NotificationPreference = "sms"
)

// Role defines user authorization levels
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

// User represents a client with available cash and fund subscriptions.
// SubscribedFunds is a denormalized cache of the funds with positive
// net-invested amount; the ledger remains authoritative and every
// mutation path updates both within the same storage transaction.
type User struct {
	ID                     uuid.UUID              `json:"id"`
	Email                  string                 `json:"email"`
	FullName               string                 `json:"full_name"`
	Phone                  string                 `json:"phone,omitempty"`
	HashedPassword         string                 `json:"-"`
	Balance                int64                  `json:"balance"` // Available cash in COP
	SubscribedFunds        []uuid.UUID            `json:"subscribed_funds"`
	NotificationPreference NotificationPreference `json:"notification_preference"`
	Role                   Role                   `json:"role"`
	IsActive               bool                   `json:"is_active"`
	Version                int                    `json:"version"` // For optimistic locking
	CreatedAt              time.Time              `json:"created_at"`
	UpdatedAt              time.Time              `json:"updated_at"`
}

// NewUser creates a new active client with the default starting balance
func NewUser(email, fullName, phone, hashedPassword string, pref NotificationPreference) (*User, error) {
	if email == "" {
		return nil, ErrEmptyEmail
	}
	if fullName == "" {
		return nil, ErrEmptyFullName
	}
	if pref == "" {
		pref = NotifyByEmail
	}

	return &User{
		ID:                     uuid.New(),
		Email:                  email,
		FullName:               fullName,
		Phone:                  phone,
		HashedPassword:         hashedPassword,
		Balance:                InitialBalance,
		SubscribedFunds:        []uuid.UUID{},
		NotificationPreference: pref,
		Role:                   RoleClient,
		IsActive:               true,
		Version:                1,
		CreatedAt:              time.Now(),
		UpdatedAt:              time.Now(),
	}, nil
}

// Deposit adds the specified amount to the available balance
func (u *User) Deposit(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	u.Balance += amount
	u.UpdatedAt = time.Now()
	u.Version++
	return nil
}

// Withdraw subtracts the specified amount from the available balance
func (u *User) Withdraw(amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	if u.Balance < amount {
		return ErrInsufficientFunds
	}

	u.Balance -= amount
	u.UpdatedAt = time.Now()
	u.Version++
	return nil
}

// UpdateProfile applies the editable profile fields. Empty arguments keep
// the current value so callers can send partial updates.
func (u *User) UpdateProfile(fullName, phone string, pref NotificationPreference) {
	if fullName != "" {
		u.FullName = fullName
	}
	if phone != "" {
		u.Phone = phone
	}
	if pref != "" {
		u.NotificationPreference = pref
	}
	u.UpdatedAt = time.Now()
	u.Version++
}

// SetActive activates or deactivates the account. Inactive users keep
// their balance and positions but can no longer authenticate.
func (u *User) SetActive(active bool) {
	u.IsActive = active
	u.UpdatedAt = time.Now()
	u.Version++
}

// IsSubscribed reports whether the fund is in the subscription cache
func (u *User) IsSubscribed(fundID uuid.UUID) bool {
	for _, id := range u.SubscribedFunds {
		if id == fundID {
			return true
		}
	}
	return false
}

// AddFund records a subscription in the cache. Adding an already
// present fund is a no-op, so replays are safe.
func (u *User) AddFund(fundID uuid.UUID) {
	if u.IsSubscribed(fundID) {
		return
	}
	u.SubscribedFunds = append(u.SubscribedFunds, fundID)
	u.UpdatedAt = time.Now()
}

// RemoveFund drops a subscription from the cache
func (u *User) RemoveFund(fundID uuid.UUID) {
	for i, id := range u.SubscribedFunds {
		if id == fundID {
			u.SubscribedFunds = append(u.SubscribedFunds[:i], u.SubscribedFunds[i+1:]...)
			u.UpdatedAt = time.Now()
			return
		}
	}
}
