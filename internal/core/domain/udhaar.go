package domain

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

// Udhaar is the credit record that mirrors an UDHAAR sale. It exists iff a
// live UDHAAR sale references it. The record is a reconciliation aid only:
// partial payments leave it OPEN with a stale amount, and the authoritative
// balance is always recomputed from the sales log.
type Udhaar struct {
	UdhaarID   string          `json:"udhaarID"`
	ShopID     string          `json:"shopID"`
	CustomerID string          `json:"customerID"`
	SaleID     string          `json:"saleID"`
	Amount     decimal.Decimal `json:"amount"`
	Status     UdhaarStatus    `json:"status"`
	ClosedAt   *time.Time      `json:"closedAt,omitempty"`
	AuditFields
}

// ReconcileOldestFirst walks open udhaar records in the given order (callers
// pass them oldest-created first) and returns the IDs of records fully covered
// by the payment amount. The walk stops at the first record the remaining pool
// only partially covers; that record stays OPEN untouched. Oldest-first is a
// stated policy, not an accident; tests depend on it.
func ReconcileOldestFirst(open []Udhaar, payment decimal.Decimal) []string {
	remaining := payment
	closed := make([]string, 0, len(open))
	for _, u := range open {
		if u.Status != UdhaarOpen {
			continue
		}
		if u.Amount.GreaterThan(remaining) {
			break
		}
		closed = append(closed, u.UdhaarID)
		remaining = remaining.Sub(u.Amount)
	}
	return closed
}
