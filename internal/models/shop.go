package models

import "time"

// UserShopRole defines the role a user holds within a shop.
type UserShopRole string

const (
	RoleAdmin    UserShopRole = "ADMIN"
	RoleStaff    UserShopRole = "STAFF"
	RoleReadOnly UserShopRole = "READONLY"
	RoleRemoved  UserShopRole = "REMOVED"
)

// Shop is the tenant root; every ledger row is scoped to a shop.
type Shop struct {
	ShopID              string  `json:"shopID" db:"shop_id"`
	Name                string  `json:"name" db:"name"`
	Description         string  `json:"description" db:"description"`
	DefaultCurrencyCode *string `json:"defaultCurrencyCode,omitempty" db:"default_currency_code"`
	IsActive            bool    `json:"isActive" db:"is_active"`
	AuditFields
}

// UserShop represents a user's membership in a shop.
type UserShop struct {
	UserID   string       `json:"userID" db:"user_id"`
	ShopID   string       `json:"shopID" db:"shop_id"`
	Role     UserShopRole `json:"role" db:"role"`
	JoinedAt time.Time    `json:"joinedAt" db:"joined_at"`
}
