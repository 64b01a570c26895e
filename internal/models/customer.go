package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a shop's credit customer. CreditLimit is the configured ceiling
// on outstanding udhaar; nil means no limit is enforced.
type Customer struct {
	CustomerID  string           `json:"customerID" db:"customer_id"`
	ShopID      string           `json:"shopID" db:"shop_id"`
	Name        string           `json:"name" db:"name"`
	Phone       string           `json:"phone" db:"phone"`
	Notes       string           `json:"notes" db:"notes"`
	CreditLimit *decimal.Decimal `json:"creditLimit,omitempty" db:"credit_limit"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"`
}
