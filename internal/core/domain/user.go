package domain

import "time"

// User represents a user of the application in the domain.
type User struct {
	UserID string `json:"userID"` // Primary Key (e.g., UUID)
	Email  string `json:"email"`
	Name   string `json:"name"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

// GoogleUserInfo is the subset of the Google profile used to create or link
// an account during OAuth login.
type GoogleUserInfo struct {
	GoogleID string `json:"googleID"` // the "sub" claim
	Email    string `json:"email"`
	Name     string `json:"name"`
	Picture  string `json:"picture"`
}
