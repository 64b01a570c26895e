package pgsql

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khatapp/khata_backend/internal/apperrors"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
)

type PgxAuditRepository struct {
	BaseRepository
}

// newPgxAuditRepository creates a new repository for audit log entries.
func newPgxAuditRepository(pool *pgxpool.Pool) portsrepo.AuditRepository {
	return &PgxAuditRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

// SaveAuditLog appends one audit entry. The table is append-only; there are no
// update or delete paths.
func (r *PgxAuditRepository) SaveAuditLog(ctx context.Context, userID, action string, details []byte) error {
	query := `
		INSERT INTO audit_logs (audit_id, user_id, action, details, created_at)
		VALUES ($1, $2, $3, $4, NOW());
	`
	_, err := r.Pool.Exec(ctx, query, uuid.NewString(), userID, action, details)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert audit log for action "+action, err)
	}
	return nil
}
