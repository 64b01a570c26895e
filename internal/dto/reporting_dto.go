package dto

import (
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PaymentTypeTotalResponse is one payment type's slice of the summary.
type PaymentTypeTotalResponse struct {
	PaymentType string          `json:"paymentType"`
	Count       int             `json:"count"`
	Total       decimal.Decimal `json:"total"`
}

// TopCustomerResponse is a customer ranked by spend in the summary window.
type TopCustomerResponse struct {
	CustomerID string          `json:"customerID"`
	Name       string          `json:"name"`
	Total      decimal.Decimal `json:"total"`
}

// DailySalesResponse is one day of the trailing breakdown.
type DailySalesResponse struct {
	Date    string          `json:"date"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SalesSummaryResponse represents the sales summary report response.
type SalesSummaryResponse struct {
	Revenue          decimal.Decimal            `json:"revenue"`
	TransactionCount int                        `json:"transactionCount"`
	ByPaymentType    []PaymentTypeTotalResponse `json:"byPaymentType"`
	TopCustomers     []TopCustomerResponse      `json:"topCustomers"`
	DailyBreakdown   []DailySalesResponse       `json:"dailyBreakdown"`
}

// ToSalesSummaryResponse converts a domain summary to its response DTO.
func ToSalesSummaryResponse(s *domain.SalesSummary) SalesSummaryResponse {
	resp := SalesSummaryResponse{
		Revenue:          s.Revenue,
		TransactionCount: s.TransactionCount,
		ByPaymentType:    make([]PaymentTypeTotalResponse, len(s.ByPaymentType)),
		TopCustomers:     make([]TopCustomerResponse, len(s.TopCustomers)),
		DailyBreakdown:   make([]DailySalesResponse, len(s.DailyBreakdown)),
	}
	for i, t := range s.ByPaymentType {
		resp.ByPaymentType[i] = PaymentTypeTotalResponse{
			PaymentType: string(t.PaymentType),
			Count:       t.Count,
			Total:       t.Total,
		}
	}
	for i, c := range s.TopCustomers {
		resp.TopCustomers[i] = TopCustomerResponse{
			CustomerID: c.CustomerID,
			Name:       c.Name,
			Total:      c.Total,
		}
	}
	for i, d := range s.DailyBreakdown {
		resp.DailyBreakdown[i] = DailySalesResponse{
			Date:    d.Date.Format("2006-01-02"),
			Count:   d.Count,
			Revenue: d.Revenue,
		}
	}
	return resp
}

// DailyStatResponse is one row of the shop's daily analytics.
type DailyStatResponse struct {
	Date    string          `json:"date"`
	Views   int64           `json:"views"`
	Orders  int64           `json:"orders"`
	Revenue decimal.Decimal `json:"revenue"`
	Profit  decimal.Decimal `json:"profit"`
}

// ToDailyStatsResponse converts domain daily stats to response DTOs.
func ToDailyStatsResponse(stats []domain.ShopDailyStat) []DailyStatResponse {
	out := make([]DailyStatResponse, len(stats))
	for i, s := range stats {
		out[i] = DailyStatResponse{
			Date:    s.StatDate.Format("2006-01-02"),
			Views:   s.Views,
			Orders:  s.Orders,
			Revenue: s.Revenue,
			Profit:  s.Profit,
		}
	}
	return out
}

// StatsRangeParams bounds a daily-stats query.
type StatsRangeParams struct {
	From string `form:"from"`
	To   string `form:"to"`
}

// ParseStatsRange resolves the range, defaulting to the trailing 30 days.
func (p StatsRangeParams) ParseStatsRange(now time.Time) (time.Time, time.Time, error) {
	from := now.AddDate(0, 0, -30)
	to := now
	var err error
	if p.From != "" {
		from, err = time.Parse("2006-01-02", p.From)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if p.To != "" {
		to, err = time.Parse("2006-01-02", p.To)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
