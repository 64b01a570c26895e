package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentTypeTotal is the aggregate for one payment type in a sales summary.
type PaymentTypeTotal struct {
	PaymentType PaymentType     `json:"paymentType"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

// TopCustomer is a customer ranked by total spend in the summarised window.
type TopCustomer struct {
	CustomerID string          `json:"customerID"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// DailySales is one day's totals in the trailing breakdown.
type DailySales struct {
	Date    time.Time       `json:"date"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesSummary aggregates a filtered sale set. Revenue counts CASH and UPI
// only; UDHAAR sales appear in the per-type totals but are money not yet
// received.
type SalesSummary struct {
	Revenue          decimal.Decimal    `json:"revenue"`
	TransactionCount int                `json:"transactionCount"`
	ByPaymentType    []PaymentTypeTotal `json:"byPaymentType"`
	TopCustomers     []TopCustomer      `json:"topCustomers"`
	DailyBreakdown   []DailySales       `json:"dailyBreakdown"` // trailing 7 days
}

// ShopDailyStat is the per-(shop, date) analytics aggregate.
type ShopDailyStat struct {
	ShopID        string          `json:"shopID"`
	StatDate      time.Time       `json:"statDate"`
	Views         int64           `json:"views"`
	Orders        int64           `json:"orders"`
	Revenue       decimal.Decimal `json:"revenue"`
	Profit        decimal.Decimal `json:"profit"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}
