package dto

import (
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordPaymentRequest defines data for recording a payment against a
// customer. PaymentMethod defaults to CASH; UDHAAR is not a payment method.
type RecordPaymentRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"paymentMethod" binding:"omitempty,oneof=CASH UPI"`
	Notes         string          `json:"notes"`
}

// UdhaarResponse defines data returned for one credit record.
type UdhaarResponse struct {
	UdhaarID   string          `json:"udhaarID"`
	SaleID     string          `json:"saleID"`
	CustomerID string          `json:"customerID"`
	Amount     decimal.Decimal `json:"amount"`
	Status     string          `json:"status"`
	ClosedAt   *time.Time      `json:"closedAt,omitempty"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// ToUdhaarResponse converts a domain.Udhaar to its response DTO.
func ToUdhaarResponse(u *domain.Udhaar) UdhaarResponse {
	return UdhaarResponse{
		UdhaarID:   u.UdhaarID,
		SaleID:     u.SaleID,
		CustomerID: u.CustomerID,
		Amount:     u.Amount,
		Status:     string(u.Status),
		ClosedAt:   u.ClosedAt,
		CreatedAt:  u.CreatedAt,
	}
}

// PaymentResult is the outcome of recording a payment: the transaction that
// was written, the credit records it closed and the estimated new balance
// (prior balance minus payment, computed before the write; re-query for
// strict freshness).
type PaymentResult struct {
	Transaction          SaleResponse     `json:"transaction"`
	UpdatedCreditRecords []UdhaarResponse `json:"updatedCreditRecords"`
	NewBalance           decimal.Decimal  `json:"newBalance"`
}
