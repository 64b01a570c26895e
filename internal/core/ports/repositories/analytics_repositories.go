package repositories

import (
	"context"
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AnalyticsRepository maintains the per-(shop, date) aggregates updated
// fire-and-forget after each sale.
type AnalyticsRepository interface {
	// UpsertDailyStat adds the deltas to the shop's aggregate for the given
	// date, creating the row if needed.
	UpsertDailyStat(ctx context.Context, shopID string, date time.Time, orders int64, revenue, profit decimal.Decimal) error

	// GetDailyStats retrieves a shop's daily aggregates in [from, to].
	GetDailyStats(ctx context.Context, shopID string, from, to time.Time) ([]domain.ShopDailyStat, error)
}
