package service

import (
	"context"
	"time"

	"github.com/btg-funds-backend/internal/domain/transaction"
)

// AuditServiceImpl implements the AuditService interface over the
// MongoDB transaction archive
type AuditServiceImpl struct {
	archiveRepo transaction.ArchiveRepository
}

// NewAuditService creates a new audit query service
func NewAuditService(archiveRepo transaction.ArchiveRepository) AuditService {
	return &AuditServiceImpl{
		archiveRepo: archiveRepo,
	}
}

// Search returns archived entries within the time window, newest first
func (s *AuditServiceImpl) Search(ctx context.Context, startTime, endTime time.Time, page, perPage int) ([]*transaction.Entry, error) {
	offset := (page - 1) * perPage
	return s.archiveRepo.GetByTimeRange(ctx, startTime, endTime, perPage, offset)
}
