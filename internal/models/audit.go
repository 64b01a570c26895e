package models

import "time"

// AuditLog is an append-only compliance record of a mutation. Writes are
// best-effort; a failed audit insert never fails the primary operation.
type AuditLog struct {
	AuditID   string    `json:"auditID" db:"audit_id"`
	UserID    string    `json:"userID" db:"user_id"`
	Action    string    `json:"action" db:"action"`
	Details   []byte    `json:"details" db:"details"` // JSON blob
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
