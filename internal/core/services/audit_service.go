package services

import (
	"context"
	"encoding/json"
	"log/slog"

	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
)

// auditService is the best-effort compliance sink. Failures are logged and
// swallowed so they never abort the operation being audited.
type auditService struct {
	BaseService
	auditRepo portsrepo.AuditRepository
}

// NewAuditService creates a new audit service.
func NewAuditService(auditRepo portsrepo.AuditRepository) portssvc.AuditSvc {
	return &auditService{
		auditRepo: auditRepo,
	}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

// Record appends one audit entry.
func (s *auditService) Record(ctx context.Context, userID, action string, details map[string]any) {
	payload, err := json.Marshal(details)
	if err != nil {
		s.LogError(ctx, err, "Failed to marshal audit details",
			slog.String("action", action))
		return
	}

	if err := s.auditRepo.SaveAuditLog(ctx, userID, action, payload); err != nil {
		s.LogError(ctx, err, "Failed to save audit log",
			slog.String("action", action),
			slog.String("user_id", userID))
	}
}
