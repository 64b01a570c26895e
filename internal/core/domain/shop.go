package domain

import "time"

// Shop represents an isolated tenant containing customers, sales and udhaars.
type Shop struct {
	ShopID              string  `json:"shopID"`
	Name                string  `json:"name"`
	Description         string  `json:"description"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode"`
	IsActive            bool    `json:"isActive"`
	AuditFields
}

// UserShopRole defines the possible roles a user can have within a shop.
type UserShopRole string

const (
	RoleAdmin    UserShopRole = "ADMIN"
	RoleStaff    UserShopRole = "STAFF"
	RoleReadOnly UserShopRole = "READONLY"
	RoleRemoved  UserShopRole = "REMOVED" // For users who have been removed from the shop
)

// UserShop represents the membership of a User in a Shop.
type UserShop struct {
	UserID   string       `json:"userID"`
	UserName string       `json:"userName"`
	ShopID   string       `json:"shopID"`
	Role     UserShopRole `json:"role"`
	JoinedAt time.Time    `json:"joinedAt"`
}
