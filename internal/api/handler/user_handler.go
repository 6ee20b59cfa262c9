package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/api/middleware"
	"github.com/btg-funds-backend/internal/api/service"
	"github.com/btg-funds-backend/internal/auth"
	"github.com/btg-funds-backend/internal/domain/user"
)

// UserHandler handles HTTP requests for registration, login, and account management
type UserHandler struct {
	userService service.UserService
	tokens      *auth.TokenManager
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(logger *slog.Logger, userService service.UserService, tokens *auth.TokenManager) *UserHandler {
	return &UserHandler{
		userService: userService,
		tokens:      tokens,
		logger:      logger,
	}
}

// Register creates a new client account with the default starting balance
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	pref := user.NotifyByEmail
	if req.NotificationPreference != "" {
		pref = user.NotificationPreference(req.NotificationPreference)
	}

	u, err := h.userService.Register(c.Request.Context(), req.Email, req.FullName, req.Phone, req.Password, pref)
	if err != nil {
		var duplicateEmail user.ErrDuplicateEmail
		if errors.As(err, &duplicateEmail) {
			h.logger.Warn("Attempt to register duplicate email", "email", duplicateEmail.Email)
			RespondConflict(c, "User with this email already exists")
			return
		}
		if errors.Is(err, auth.ErrPasswordTooShort) || errors.Is(err, user.ErrEmptyEmail) || errors.Is(err, user.ErrEmptyFullName) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to register user", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapUserToResponse(u))
}

// Login authenticates a user and issues an access token
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			RespondUnauthorized(c, "Invalid email or password")
			return
		}
		h.logger.Error("Failed to authenticate user", "error", err)
		RespondInternalError(c)
		return
	}

	token, expiresAt, err := h.tokens.Issue(u)
	if err != nil {
		h.logger.Error("Failed to issue token", "user_id", u.ID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
		User:        mapUserToResponse(u),
	})
}

// Me returns the authenticated caller's profile
func (h *UserHandler) Me(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to get user", "user_id", userID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapUserToResponse(u))
}

// UpdateProfile changes the authenticated caller's profile fields.
// Fields left out of the request keep their current value.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.UpdateProfile(c.Request.Context(), userID,
		req.FullName, req.Phone, user.NotificationPreference(req.NotificationPreference))
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to update profile", "user_id", userID, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapUserToResponse(u))
}

// UpdateStatus activates or deactivates a user account. Admin only.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to update user status", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapUserToResponse(u))
}

// GetByID returns a user by ID. Admin only.
func (h *UserHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	u, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "User not found")
			return
		}
		h.logger.Error("Failed to get user", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapUserToResponse(u))
}

// List returns paginated users. Admin only.
func (h *UserHandler) List(c *gin.Context) {
	var params PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	users, err := h.userService.List(c.Request.Context(), params.Page, params.PerPage)
	if err != nil {
		h.logger.Error("Failed to list users", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, mapUserToResponse(u))
	}

	RespondOK(c, responses)
}

// AdjustBalance applies an admin cash correction to a user's available balance
func (h *UserHandler) AdjustBalance(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		RespondBadRequest(c, "Invalid user ID")
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	u, err := h.userService.AdjustBalance(c.Request.Context(), id, req.Amount, service.BalanceOperation(req.Operation))
	if err != nil {
		var notFound user.ErrUserNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "User not found")
			return
		}
		if errors.Is(err, user.ErrInsufficientFunds) {
			RespondUnprocessable(c, "INSUFFICIENT_FUNDS", "Insufficient available balance")
			return
		}
		if errors.Is(err, service.ErrInvalidOperation) || errors.Is(err, user.ErrInvalidAmount) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to adjust balance", "user_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapUserToResponse(u))
}

// mapUserToResponse maps a user entity to a user response DTO
func mapUserToResponse(u *user.User) UserResponse {
	fundIDs := make([]string, 0, len(u.SubscribedFunds))
	for _, id := range u.SubscribedFunds {
		fundIDs = append(fundIDs, id.String())
	}

	return UserResponse{
		ID:                     u.ID.String(),
		Email:                  u.Email,
		FullName:               u.FullName,
		Phone:                  u.Phone,
		Balance:                u.Balance,
		SubscribedFunds:        fundIDs,
		NotificationPreference: string(u.NotificationPreference),
		Role:                   string(u.Role),
		IsActive:               u.IsActive,
		CreatedAt:              u.CreatedAt.Format(time.RFC3339),
	}
}
