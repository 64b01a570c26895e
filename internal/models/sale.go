package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentType classifies how a sale was settled.
type PaymentType string

const (
	PaymentCash   PaymentType = "CASH"
	PaymentUPI    PaymentType = "UPI"
	PaymentUdhaar PaymentType = "UDHAAR"
)

// SaleSource records where a sale entry originated.
type SaleSource string

const (
	SourceManual SaleSource = "MANUAL"
	SourcePOS    SaleSource = "POS"
	SourceOrder  SaleSource = "ORDER"
)

// Sale is a single monetary event in a shop's ledger. UDHAAR sales extend
// credit to a customer; CASH/UPI sales (including recorded payments) reduce
// what the customer owes.
type Sale struct {
	SaleID      string          `json:"saleID" db:"sale_id"`
	ShopID      string          `json:"shopID" db:"shop_id"`
	CustomerID  *string         `json:"customerID,omitempty" db:"customer_id"` // nil = walk-in sale
	Amount      decimal.Decimal `json:"amount" db:"amount"`                    // always > 0
	PaymentType PaymentType     `json:"paymentType" db:"payment_type"`
	Source      SaleSource      `json:"source" db:"source"`
	Notes       string          `json:"notes" db:"notes"`
	Tags        []string        `json:"tags" db:"tags"`
	AuditFields
	// Edit metadata, set only when the sale has been amended.
	EditedAt   *time.Time `json:"editedAt,omitempty" db:"edited_at"`
	EditedBy   *string    `json:"editedBy,omitempty" db:"edited_by"`
	EditReason *string    `json:"editReason,omitempty" db:"edit_reason"`

	// Joined columns, populated by list queries only.
	CustomerName  string `json:"customerName,omitempty" db:"customer_name"`
	CustomerPhone string `json:"customerPhone,omitempty" db:"customer_phone"`
}
