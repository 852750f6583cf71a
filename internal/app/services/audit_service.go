package services

import (
	"context"
	"time"

	"github.com/emre/campuserp/internal/app/models"
	"github.com/emre/campuserp/internal/app/repositories"
	"github.com/emre/campuserp/internal/pkg/logger"
)

// AuditService exposes the audit trail to administrators and prunes it per
// the retention policy
type AuditService struct {
	auditRepo     *repositories.AuditRepository
	retentionDays int
}

// NewAuditService creates a new audit service
func NewAuditService(auditRepo *repositories.AuditRepository, retentionDays int) *AuditService {
	return &AuditService{
		auditRepo:     auditRepo,
		retentionDays: retentionDays,
	}
}

// List retrieves audit entries with filtering and pagination. Admin-only.
func (s *AuditService) List(ctx context.Context, filter repositories.AuditFilter) ([]*models.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, filter)
}

// Prune deletes entries older than the retention window
func (s *AuditService) Prune(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)
	deleted, err := s.auditRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		logger.Info().Int64("deleted", deleted).Msg("Pruned audit entries past retention")
	}
	return deleted, nil
}
