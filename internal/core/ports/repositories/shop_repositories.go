package repositories

import (
	"context"

	"github.com/khatapp/khata_backend/internal/core/domain"
)

// ShopReader defines read operations for shop data
type ShopReader interface {
	// FindShopByID retrieves a specific shop by its ID.
	FindShopByID(ctx context.Context, shopID string) (*domain.Shop, error)

	// ListShopsByUserID retrieves all shops a user belongs to.
	ListShopsByUserID(ctx context.Context, userID string) ([]domain.Shop, error)
}

// ShopWriter defines write operations for shop data
type ShopWriter interface {
	// SaveShop persists a new shop.
	SaveShop(ctx context.Context, shop domain.Shop) error

	// UpdateShop updates an existing shop's details (name, description,
	// active flag).
	UpdateShop(ctx context.Context, shop domain.Shop) error
}

// ShopMembershipManager defines operations for managing shop memberships
type ShopMembershipManager interface {
	// AddUserToShop adds a user to a shop with a specific role.
	AddUserToShop(ctx context.Context, membership domain.UserShop) error

	// FindUserShopRole retrieves the role of a user in a shop.
	FindUserShopRole(ctx context.Context, userID, shopID string) (*domain.UserShop, error)

	// UpdateUserShopRole changes a user's role in a shop (REMOVED revokes
	// access).
	UpdateUserShopRole(ctx context.Context, userID, shopID string, role domain.UserShopRole) error

	// ListShopUsers retrieves all memberships of a shop.
	ListShopUsers(ctx context.Context, shopID string) ([]domain.UserShop, error)
}

// ShopRepositoryFacade combines all shop-related repository interfaces
type ShopRepositoryFacade interface {
	ShopReader
	ShopWriter
	ShopMembershipManager
}
