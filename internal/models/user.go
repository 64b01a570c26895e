package models

import (
	"database/sql"
	"time"
)

// User represents a user of the application.
// PasswordHash may be empty for users who only sign in via Google OAuth.
type User struct {
	UserID       string  `json:"userID" db:"user_id"`
	Email        string  `json:"email" db:"email"`
	PasswordHash string  `json:"-" db:"password_hash"`
	Name         string  `json:"name" db:"name"`
	GoogleID     *string `json:"-" db:"google_id"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`

	// Refresh Token Fields
	RefreshTokenHash       sql.NullString `db:"refresh_token_hash"`        // Store hash of the refresh token
	RefreshTokenExpiryTime sql.NullTime   `db:"refresh_token_expiry_time"` // Expiry of the stored refresh token
}
