package handler

// RegisterRequest represents a request to create a new user account
type RegisterRequest struct {
	Email                  string `json:"email" binding:"required,email"`
	FullName               string `json:"full_name" binding:"required,min=2,max=100"`
	Phone                  string `json:"phone,omitempty"`
	Password               string `json:"password" binding:"required,min=8"`
	NotificationPreference string `json:"notification_preference,omitempty" binding:"omitempty,oneof=email sms"`
}

// LoginRequest represents an authentication request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse carries an issued access token
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   string       `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID                     string   `json:"id"`
	Email                  string   `json:"email"`
	FullName               string   `json:"full_name"`
	Phone                  string   `json:"phone,omitempty"`
	Balance                int64    `json:"balance"`
	SubscribedFunds        []string `json:"subscribed_funds"`
	NotificationPreference string   `json:"notification_preference"`
	Role                   string   `json:"role"`
	IsActive               bool     `json:"is_active"`
	CreatedAt              string   `json:"created_at"`
}

// UpdateProfileRequest carries the editable profile fields.
// Omitted fields keep their current value.
type UpdateProfileRequest struct {
	FullName               string `json:"full_name,omitempty" binding:"omitempty,min=2,max=100"`
	Phone                  string `json:"phone,omitempty"`
	NotificationPreference string `json:"notification_preference,omitempty" binding:"omitempty,oneof=email sms"`
}

// UpdateStatusRequest activates or deactivates an account.
// A pointer distinguishes an explicit false from a missing field.
type UpdateStatusRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// AdjustBalanceRequest represents an admin balance correction
type AdjustBalanceRequest struct {
	Amount    int64  `json:"amount" binding:"required,gt=0"`
	Operation string `json:"operation" binding:"required,oneof=add subtract"`
}

// CreateFundRequest represents a request to add a fund to the catalog
type CreateFundRequest struct {
	Name          string `json:"name" binding:"required"`
	Category      string `json:"category" binding:"required,oneof=FPV FIC"`
	MinimumAmount int64  `json:"minimum_amount" binding:"required,gt=0"`
}

// FundResponse represents a fund in API responses
type FundResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	MinimumAmount int64  `json:"minimum_amount"`
	IsActive      bool   `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

// ListFundsParams represents catalog listing filters
type ListFundsParams struct {
	Category   string `form:"category" binding:"omitempty,oneof=FPV FIC"`
	ActiveOnly bool   `form:"active_only,default=true"`
	MaxMinimum int64  `form:"max_minimum" binding:"omitempty,gt=0"`
}

// SubscribeRequest represents a fund subscription request
type SubscribeRequest struct {
	FundID string `json:"fund_id" binding:"required,uuid"`
	Amount int64  `json:"amount" binding:"required,gt=0"`
}

// TransactionResponse represents a ledger entry in API responses
type TransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	UserID        string `json:"user_id"`
	FundID        string `json:"fund_id"`
	FundName      string `json:"fund_name"`
	Type          string `json:"type"`
	Amount        int64  `json:"amount"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	CompletedAt   string `json:"completed_at,omitempty"`
}

// BalanceResponse represents a user's portfolio balance projection
type BalanceResponse struct {
	UserID           string `json:"user_id"`
	AvailableBalance int64  `json:"available_balance"`
	InvestedAmount   int64  `json:"invested_amount"`
	TotalBalance     int64  `json:"total_balance"`
}

// HistoryResponse represents a paginated transaction history with summary
type HistoryResponse struct {
	Transactions      []TransactionResponse `json:"transactions"`
	TotalInvested     int64                 `json:"total_invested"`
	AvailableBalance  int64                 `json:"available_balance"`
	TotalTransactions int64                 `json:"total_transactions"`
}

// AuditParams represents archive search parameters
type AuditParams struct {
	From string `form:"from" binding:"required"`
	To   string `form:"to" binding:"required"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
