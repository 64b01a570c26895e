package repositories

import (
	"context"
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/khatapp/khata_backend/internal/models"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUsers retrieves a paginated list of users.
	FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. The model carries the password hash,
	// which never leaves the repository/service boundary.
	SaveUser(ctx context.Context, user models.User) error

	// UpdateUser updates an existing user's details.
	UpdateUser(ctx context.Context, user domain.User) error
}

// UserLifecycleManager defines operations for managing user lifecycle
type UserLifecycleManager interface {
	// MarkUserDeleted marks a user as deleted (soft delete).
	MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error
}

// UserAuthSupport defines the credential lookups and refresh-token state the
// auth service needs.
type UserAuthSupport interface {
	// FindUserByEmail retrieves a user with credential fields by email.
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)

	// FindUserByGoogleID retrieves a user previously linked to a Google account.
	FindUserByGoogleID(ctx context.Context, googleID string) (*models.User, error)

	// FindUserWithRefreshToken retrieves a user with refresh-token fields by ID.
	FindUserWithRefreshToken(ctx context.Context, userID string) (*models.User, error)

	// LinkGoogleAccount attaches a Google account ID to an existing user.
	LinkGoogleAccount(ctx context.Context, userID string, googleID string) error

	// UpdateRefreshToken stores the hash and expiry of the user's current
	// refresh token, replacing any previous one.
	UpdateRefreshToken(ctx context.Context, userID string, tokenHash string, expiry time.Time) error

	// ClearRefreshToken invalidates the user's stored refresh token.
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
// This is a facade for clients that need access to all operations
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserLifecycleManager
	UserAuthSupport
}
