package utils

import (
	"github.com/shopspring/decimal"
)

// moneyPrecision is the number of decimal places used for ledger amounts.
// Rupee amounts are stored with paise precision.
const moneyPrecision = 2

// FormatMoney formats a ledger amount with paise precision.
// Example: 12.3456 returns "12.35".
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(moneyPrecision)
}

// FormatWithPrecision formats an amount with the given precision
// This is a convenience function when a caller needs a different scale
func FormatWithPrecision(amount decimal.Decimal, precision int) string {
	return amount.Round(int32(precision)).String()
}
