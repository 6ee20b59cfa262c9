package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/btg-funds-backend/internal/api/service"
	"github.com/btg-funds-backend/internal/domain/fund"
)

// FundHandler handles HTTP requests for fund catalog operations
type FundHandler struct {
	catalogService service.CatalogService
	logger         *slog.Logger
}

// NewFundHandler creates a new fund handler
func NewFundHandler(logger *slog.Logger, catalogService service.CatalogService) *FundHandler {
	return &FundHandler{
		catalogService: catalogService,
		logger:         logger,
	}
}

// Create handles registration of a new fund in the catalog
func (h *FundHandler) Create(c *gin.Context) {
	var req CreateFundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	f, err := h.catalogService.CreateFund(c.Request.Context(), req.Name, fund.Category(req.Category), req.MinimumAmount)
	if err != nil {
		var duplicateErr fund.ErrDuplicateName
		if errors.As(err, &duplicateErr) {
			h.logger.Warn("Attempt to create fund with duplicate name", "name", duplicateErr.Name)
			RespondConflict(c, "Fund with this name already exists")
			return
		}
		if errors.Is(err, fund.ErrEmptyName) || errors.Is(err, fund.ErrInvalidMinimumAmount) || errors.Is(err, fund.ErrInvalidCategory) {
			RespondBadRequest(c, err.Error())
			return
		}
		h.logger.Error("Failed to create fund", "error", err)
		RespondInternalError(c)
		return
	}

	RespondCreated(c, mapFundToResponse(f))
}

// GetByID retrieves a fund by its ID, returning 404 if not found
func (h *FundHandler) GetByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid fund ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid fund ID")
		return
	}

	f, err := h.catalogService.GetFund(c.Request.Context(), id)
	if err != nil {
		var notFound fund.ErrFundNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Fund not found")
			return
		}
		h.logger.Error("Failed to get fund", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapFundToResponse(f))
}

// List returns catalog funds matching the query filters
func (h *FundHandler) List(c *gin.Context) {
	var params ListFundsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	filter := fund.Filter{
		Category:   fund.Category(params.Category),
		ActiveOnly: params.ActiveOnly,
		MaxMinimum: params.MaxMinimum,
	}

	funds, err := h.catalogService.ListFunds(c.Request.Context(), filter)
	if err != nil {
		h.logger.Error("Failed to list funds", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]FundResponse, 0, len(funds))
	for _, f := range funds {
		responses = append(responses, mapFundToResponse(f))
	}

	RespondOK(c, responses)
}

// mapFundToResponse maps a fund entity to a fund response DTO
func mapFundToResponse(f *fund.Fund) FundResponse {
	return FundResponse{
		ID:            f.ID.String(),
		Name:          f.Name,
		Category:      string(f.Category),
		MinimumAmount: f.MinimumAmount,
		IsActive:      f.IsActive,
		CreatedAt:     f.CreatedAt.Format(time.RFC3339),
	}
}
