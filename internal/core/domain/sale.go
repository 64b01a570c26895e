package domain

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

// IsCredit reports whether this payment type extends credit to the customer.
func (p PaymentType) IsCredit() bool {
	return p == PaymentUdhaar
}

// IsSettlement reports whether this payment type moves money immediately
// (CASH or UPI) and therefore counts against the customer's balance.
func (p PaymentType) IsSettlement() bool {
	return p == PaymentCash || p == PaymentUPI
}

// Valid reports whether p is a known payment type.
func (p PaymentType) Valid() bool {
	return p == PaymentCash || p == PaymentUPI || p == PaymentUdhaar
}

// SaleSource records where a sale entry originated.
type SaleSource string

const (
	SourceManual SaleSource = "MANUAL"
	SourcePOS    SaleSource = "POS"
	SourceOrder  SaleSource = "ORDER"
)

// Valid reports whether s is a known sale source.
func (s SaleSource) Valid() bool {
	return s == SourceManual || s == SourcePOS || s == SourceOrder
}

// Sale is a single monetary event in a shop's ledger.
type Sale struct {
	SaleID      string          `json:"saleID"`
	ShopID      string          `json:"shopID"`
	CustomerID  *string         `json:"customerID,omitempty"` // nil = walk-in sale
	Amount      decimal.Decimal `json:"amount"`
	PaymentType PaymentType     `json:"paymentType"`
	Source      SaleSource      `json:"source"`
	Notes       string          `json:"notes"`
	Tags        []string        `json:"tags"`
	AuditFields
	EditedAt   *time.Time `json:"editedAt,omitempty"`
	EditedBy   *string    `json:"editedBy,omitempty"`
	EditReason *string    `json:"editReason,omitempty"`

	// Populated by list queries that join the customer directory.
	CustomerName  string `json:"customerName,omitempty"`
	CustomerPhone string `json:"customerPhone,omitempty"`
}

// SaleFilter narrows sale listings. Zero values mean "no constraint".
type SaleFilter struct {
	PaymentType *PaymentType
	CustomerID  *string
	From        *time.Time
	To          *time.Time
	MinAmount   *decimal.Decimal
	MaxAmount   *decimal.Decimal
	Search      string // matched against sale id, customer name, phone and notes
}

// BalanceFromSales derives a customer's outstanding balance from their full
// sale history: sum of UDHAAR amounts minus sum of CASH/UPI amounts. A
// positive result means the customer owes the shop. This is the reference
// definition; the SQL aggregate in the sale repository must agree with it.
func BalanceFromSales(sales []Sale) decimal.Decimal {
	balance := decimal.Zero
	for _, s := range sales {
		switch {
		case s.PaymentType.IsCredit():
			balance = balance.Add(s.Amount)
		case s.PaymentType.IsSettlement():
			balance = balance.Sub(s.Amount)
		}
	}
	return balance
}
