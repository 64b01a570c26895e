package apperrors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// CreditLimitExceededError is returned when recording an UDHAAR sale would push
// a customer past their configured credit limit. It carries the full picture so
// callers can offer an explicit "override and proceed" flow.
type CreditLimitExceededError struct {
	CurrentBalance   decimal.Decimal
	CreditLimit      decimal.Decimal
	ProjectedBalance decimal.Decimal
	ExceededBy       decimal.Decimal
}

func (e *CreditLimitExceededError) Error() string {
	return fmt.Sprintf("credit limit exceeded: balance %s + sale would reach %s, limit is %s (over by %s)",
		e.CurrentBalance.String(), e.ProjectedBalance.String(), e.CreditLimit.String(), e.ExceededBy.String())
}

// NewCreditLimitExceeded builds the structured credit limit error from the
// current balance, the configured limit and the projected post-sale balance.
func NewCreditLimitExceeded(current, limit, projected decimal.Decimal) *CreditLimitExceededError {
	return &CreditLimitExceededError{
		CurrentBalance:   current,
		CreditLimit:      limit,
		ProjectedBalance: projected,
		ExceededBy:       projected.Sub(limit),
	}
}

// BulkOperationError aggregates per-item failures of an all-or-nothing batch.
// When any item fails the whole batch is rolled back and this error reports
// every failing sale ID with its reason.
type BulkOperationError struct {
	Failures map[string]error
}

func (e *BulkOperationError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for id := range e.Failures {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %v", id, e.Failures[id]))
	}
	return fmt.Sprintf("bulk operation failed for %d sale(s): %s", len(ids), strings.Join(parts, "; "))
}
