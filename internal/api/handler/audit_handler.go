package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/btg-funds-backend/internal/api/service"
)

// AuditHandler handles HTTP requests against the derived transaction archive
type AuditHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(logger *slog.Logger, auditService service.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// Search returns archived entries within a time window. Admin only.
func (h *AuditHandler) Search(c *gin.Context) {
	var params AuditParams
	if err := c.ShouldBindQuery(&params); err != nil {
		RespondBadRequest(c, "Invalid query parameters: "+err.Error())
		return
	}

	startTime, err := time.Parse(time.RFC3339, params.From)
	if err != nil {
		RespondBadRequest(c, "Invalid 'from' timestamp, expected RFC3339")
		return
	}
	endTime, err := time.Parse(time.RFC3339, params.To)
	if err != nil {
		RespondBadRequest(c, "Invalid 'to' timestamp, expected RFC3339")
		return
	}
	if endTime.Before(startTime) {
		RespondBadRequest(c, "'to' must not precede 'from'")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	entries, err := h.auditService.Search(c.Request.Context(), startTime, endTime, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to search archive", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]TransactionResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, mapEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, 200, responses, pagination.Page, pagination.PerPage, len(responses))
}
