package services

import (
	"context"
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AnalyticsSvc maintains per-day shop counters. TrackSale is invoked
// fire-and-forget after a sale commits: its errors are logged, never
// propagated, and it must not sit on the sale's response path.
type AnalyticsSvc interface {
	// TrackSale adds one order with its revenue and profit to today's
	// aggregate for the shop.
	TrackSale(ctx context.Context, shopID string, amount, profit decimal.Decimal) error

	// GetDailyStats retrieves a shop's daily aggregates in [from, to].
	GetDailyStats(ctx context.Context, shopID string, from, to time.Time, requestingUserID string) ([]domain.ShopDailyStat, error)
}

// AuditSvc is the best-effort compliance sink. Record never returns an error;
// failures are logged and swallowed so they cannot abort the primary
// operation.
type AuditSvc interface {
	Record(ctx context.Context, userID, action string, details map[string]any)
}
