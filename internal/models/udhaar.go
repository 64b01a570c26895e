package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UdhaarStatus is the reconciliation state of a credit record.
type UdhaarStatus string

const (
	UdhaarOpen UdhaarStatus = "OPEN"
	UdhaarPaid UdhaarStatus = "PAID"
)

// Udhaar is the credit record created alongside an UDHAAR sale. It is a
// best-effort index only; the customer's real balance is always derived from
// the sales table.
type Udhaar struct {
	UdhaarID   string          `json:"udhaarID" db:"udhaar_id"`
	ShopID     string          `json:"shopID" db:"shop_id"`
	CustomerID string          `json:"customerID" db:"customer_id"`
	SaleID     string          `json:"saleID" db:"sale_id"` // 1:1 with the originating sale
	Amount     decimal.Decimal `json:"amount" db:"amount"`
	Status     UdhaarStatus    `json:"status" db:"status"`
	ClosedAt   *time.Time      `json:"closedAt,omitempty" db:"closed_at"`
	AuditFields
}
