package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/api/middleware"
	"github.com/btg-funds-backend/internal/api/service"
	"github.com/btg-funds-backend/internal/domain/fund"
	"github.com/btg-funds-backend/internal/domain/transaction"
	"github.com/btg-funds-backend/internal/domain/user"
)

// PortfolioHandler handles HTTP requests for subscriptions, balance, and history
type PortfolioHandler struct {
	subscriptionService service.SubscriptionService
	portfolioService    service.PortfolioService
	logger              *slog.Logger
}

// NewPortfolioHandler creates a new portfolio handler
func NewPortfolioHandler(logger *slog.Logger, subscriptionService service.SubscriptionService, portfolioService service.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{
		subscriptionService: subscriptionService,
		portfolioService:    portfolioService,
		logger:              logger,
	}
}

// Subscribe opens or grows the caller's position in a fund
func (h *PortfolioHandler) Subscribe(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	fundID, err := uuid.Parse(req.FundID)
	if err != nil {
		RespondBadRequest(c, "Invalid fund ID")
		return
	}

	entry, err := h.subscriptionService.Subscribe(c.Request.Context(), userID, fundID, req.Amount)
	if err != nil {
		h.respondSubscriptionError(c, err)
		return
	}

	RespondCreated(c, mapEntryToResponse(entry))
}

// Cancel liquidates the caller's entire position in a fund
func (h *PortfolioHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	fundIDParam := c.Param("fund_id")
	fundID, err := uuid.Parse(fundIDParam)
	if err != nil {
		RespondBadRequest(c, "Invalid fund ID")
		return
	}

	entry, err := h.subscriptionService.Cancel(c.Request.Context(), userID, fundID)
	if err != nil {
		h.respondSubscriptionError(c, err)
		return
	}

	RespondOK(c, mapEntryToResponse(entry))
}

// Balance returns the caller's available cash, invested value, and total
func (h *PortfolioHandler) Balance(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	balance, err := h.portfolioService.Balance(c.Request.Context(), userID)
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to get balance", "user_id", userID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, BalanceResponse{
		UserID:           balance.UserID.String(),
		AvailableBalance: balance.Available,
		InvestedAmount:   balance.Invested,
		TotalBalance:     balance.Total,
	})
}

// History returns the caller's paginated transaction history with summary totals
func (h *PortfolioHandler) History(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	history, err := h.portfolioService.History(c.Request.Context(), userID, params.Page, params.PerPage)
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to get history", "user_id", userID, "error", err)
		RespondInternalError(c)
		return
	}

	entries := make([]TransactionResponse, 0, len(history.Transactions))
	for _, entry := range history.Transactions {
		entries = append(entries, mapEntryToResponse(entry))
	}

	response := HistoryResponse{
		Transactions:      entries,
		TotalInvested:     history.TotalInvested,
		AvailableBalance:  history.AvailableBalance,
		TotalTransactions: history.TotalTransactions,
	}

	RespondWithPaginatedData(c, 200, response, params.Page, params.PerPage, int(history.TotalTransactions))
}

// respondSubscriptionError maps balance engine failures to HTTP statuses.
// Missing entities map to 404, violated business rules to 422.
func (h *PortfolioHandler) respondSubscriptionError(c *gin.Context, err error) {
	var fundNotFound fund.ErrFundNotFound
	if errors.As(err, &fundNotFound) {
		RespondNotFound(c, "Fund not found")
		return
	}

	var userNotFound user.ErrUserNotFound
	if errors.As(err, &userNotFound) {
		RespondNotFound(c, "User not found")
		return
	}

	var inactive fund.ErrFundInactive
	if errors.As(err, &inactive) {
		RespondUnprocessable(c, "FUND_INACTIVE", err.Error())
		return
	}

	var belowMinimum fund.ErrBelowMinimum
	if errors.As(err, &belowMinimum) {
		RespondUnprocessable(c, "BELOW_MINIMUM", err.Error())
		return
	}

	if errors.Is(err, user.ErrInsufficientFunds) {
		RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient available balance")
		return
	}

	var notSubscribed user.ErrNotSubscribed
	if errors.As(err, &notSubscribed) {
		RespondUnprocessable(c, "NOT_SUBSCRIBED", err.Error())
		return
	}

	var noInvestment user.ErrNoActiveInvestment
	if errors.As(err, &noInvestment) {
		RespondUnprocessable(c, "NO_ACTIVE_INVESTMENT", err.Error())
		return
	}

	if errors.Is(err, transaction.ErrInvalidAmount) {
		RespondBadRequest(c, "Amount must be a positive integer")
		return
	}

	h.logger.Error("Subscription operation failed", "error", err)
	RespondInternalError(c)
}

// mapEntryToResponse maps a ledger entry to a transaction response DTO
func mapEntryToResponse(entry *transaction.Entry) TransactionResponse {
	resp := TransactionResponse{
		TransactionID: entry.TransactionID,
		UserID:        entry.UserID.String(),
		FundID:        entry.FundID.String(),
		FundName:      entry.FundName,
		Type:          string(entry.Type),
		Amount:        entry.Amount,
		Status:        string(entry.Status),
		CreatedAt:     entry.CreatedAt.Format(time.RFC3339),
	}
	if entry.CompletedAt != nil {
		resp.CompletedAt = entry.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
