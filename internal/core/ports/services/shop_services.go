package services

import (
	"context"

	"github.com/khatapp/khata_backend/internal/core/domain"
)

// ShopReaderSvc defines read operations for shop data
type ShopReaderSvc interface {
	// FindShopByID retrieves a specific shop by its ID.
	FindShopByID(ctx context.Context, shopID string) (*domain.Shop, error)

	// ListUserShops retrieves shops a user belongs to.
	ListUserShops(ctx context.Context, userID string, includeDisabled bool) ([]domain.Shop, error)

	// ListShopUsers retrieves all users and their roles for a specific shop.
	// Only members of the shop can access this data.
	ListShopUsers(ctx context.Context, shopID string, requestingUserID string) ([]domain.UserShop, error)
}

// ShopWriterSvc defines write operations for shop data
type ShopWriterSvc interface {
	// CreateShop persists a new shop with the creator as ADMIN.
	CreateShop(ctx context.Context, name, description, defaultCurrencyCode, creatorUserID string) (*domain.Shop, error)

	// DeactivateShop marks a shop as inactive.
	DeactivateShop(ctx context.Context, shopID string, requestingUserID string) error

	// ActivateShop marks a shop as active.
	ActivateShop(ctx context.Context, shopID string, requestingUserID string) error
}

// ShopMembershipSvc defines operations for managing shop membership
type ShopMembershipSvc interface {
	// AddUserToShop adds a user to a shop with a specific role.
	AddUserToShop(ctx context.Context, addingUserID, targetUserID, shopID string, role domain.UserShopRole) error

	// RemoveUserFromShop removes a user from a shop. Admins only.
	RemoveUserFromShop(ctx context.Context, requestingUserID, targetUserID, shopID string) error

	// UpdateUserShopRole updates a user's role in a shop. Admins only.
	UpdateUserShopRole(ctx context.Context, requestingUserID, targetUserID, shopID string, newRole domain.UserShopRole) error
}

// ShopAuthorizerSvc defines operations for shop authorization
type ShopAuthorizerSvc interface {
	// AuthorizeUserAction checks if a user has required permissions for a shop.
	AuthorizeUserAction(ctx context.Context, userID, shopID string, requiredRole domain.UserShopRole) error
}

// ShopSvcFacade combines all shop-related service interfaces
// This is a facade for clients that need access to all operations
type ShopSvcFacade interface {
	ShopReaderSvc
	ShopWriterSvc
	ShopMembershipSvc
	ShopAuthorizerSvc
}
