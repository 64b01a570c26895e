package repositories

import "context"

// AuditRepository is the append-only sink for compliance records. Callers
// treat writes as best-effort: failures are logged, never propagated.
type AuditRepository interface {
	// SaveAuditLog appends one audit entry. details must be valid JSON.
	SaveAuditLog(ctx context.Context, userID, action string, details []byte) error
}
