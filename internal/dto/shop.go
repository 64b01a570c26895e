package dto

import (
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
)

// --- Shop DTOs ---

// CreateShopRequest defines data for creating a new shop.
type CreateShopRequest struct {
	Name                string `json:"name" binding:"required"`
	Description         string `json:"description"`
	DefaultCurrencyCode string `json:"defaultCurrencyCode" binding:"omitempty,iso4217"`
}

// ShopResponse defines data returned for a shop.
type ShopResponse struct {
	ShopID              string    `json:"shopID"`
	Name                string    `json:"name"`
	Description         string    `json:"description"`
	DefaultCurrencyCode *string   `json:"defaultCurrencyCode,omitempty"`
	IsActive            bool      `json:"isActive"`
	CreatedAt           time.Time `json:"createdAt"`
	CreatedBy           string    `json:"createdBy"` // UserID
	LastUpdatedAt       time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy       string    `json:"lastUpdatedBy"` // UserID
}

// ToShopResponse converts domain.Shop to DTO.
func ToShopResponse(s *domain.Shop) ShopResponse {
	return ShopResponse{
		ShopID:              s.ShopID,
		Name:                s.Name,
		Description:         s.Description,
		DefaultCurrencyCode: s.DefaultCurrencyCode,
		IsActive:            s.IsActive,
		CreatedAt:           s.CreatedAt,
		CreatedBy:           s.CreatedBy,
		LastUpdatedAt:       s.LastUpdatedAt,
		LastUpdatedBy:       s.LastUpdatedBy,
	}
}

// ListShopsResponse wraps a list of shops.
type ListShopsResponse struct {
	Shops []ShopResponse `json:"shops"`
}

// ToListShopsResponse converts a slice of domain.Shop to DTO.
func ToListShopsResponse(ss []domain.Shop) ListShopsResponse {
	list := make([]ShopResponse, len(ss))
	for i, s := range ss {
		list[i] = ToShopResponse(&s)
	}
	return ListShopsResponse{Shops: list}
}

// --- Shop Membership DTOs ---

// AddUserToShopRequest defines data for adding a user to a shop.
type AddUserToShopRequest struct {
	UserID string              `json:"userID" binding:"required"`
	Role   domain.UserShopRole `json:"role" binding:"required,oneof=ADMIN STAFF READONLY"`
}

// UpdateUserShopRoleRequest changes a member's role.
type UpdateUserShopRoleRequest struct {
	Role domain.UserShopRole `json:"role" binding:"required,oneof=ADMIN STAFF READONLY"`
}

// UserShopResponse defines data returned about a user's membership.
type UserShopResponse struct {
	UserID   string              `json:"userID"`
	UserName string              `json:"userName,omitempty"`
	ShopID   string              `json:"shopID"`
	Role     domain.UserShopRole `json:"role"`
	JoinedAt time.Time           `json:"joinedAt"`
}

// ToUserShopResponse converts domain.UserShop to DTO.
func ToUserShopResponse(us *domain.UserShop) UserShopResponse {
	return UserShopResponse{
		UserID:   us.UserID,
		UserName: us.UserName,
		ShopID:   us.ShopID,
		Role:     us.Role,
		JoinedAt: us.JoinedAt,
	}
}
