package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Customer is a shop's credit customer.
type Customer struct {
	CustomerID  string           `json:"customerID"`
	ShopID      string           `json:"shopID"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone"`
	Notes       string           `json:"notes"`
	CreditLimit *decimal.Decimal `json:"creditLimit,omitempty"` // nil = no limit enforced
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"`
}
