package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

type PgxAnalyticsRepository struct {
	BaseRepository
}

// newPgxAnalyticsRepository creates a new repository for daily stat aggregates.
func newPgxAnalyticsRepository(pool *pgxpool.Pool) portsrepo.AnalyticsRepository {
	return &PgxAnalyticsRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.AnalyticsRepository = (*PgxAnalyticsRepository)(nil)

// UpsertDailyStat adds the deltas to the shop's aggregate for the given date,
// creating the row if needed. The date is truncated to UTC midnight so all
// sales of a day land on one row.
func (r *PgxAnalyticsRepository) UpsertDailyStat(ctx context.Context, shopID string, date time.Time, orders int64, revenue, profit decimal.Decimal) error {
	statDate := date.UTC().Truncate(24 * time.Hour)
	query := `
		INSERT INTO shop_daily_stats (shop_id, stat_date, views, orders, revenue, profit, last_updated_at)
		VALUES ($1, $2, 0, $3, $4, $5, NOW())
		ON CONFLICT (shop_id, stat_date) DO UPDATE SET
			orders = shop_daily_stats.orders + EXCLUDED.orders,
			revenue = shop_daily_stats.revenue + EXCLUDED.revenue,
			profit = shop_daily_stats.profit + EXCLUDED.profit,
			last_updated_at = NOW();
	`
	_, err := r.Pool.Exec(ctx, query, shopID, statDate, orders, revenue, profit)
	if err != nil {
		return apperrors.NewAppError(500, "failed to upsert daily stat for shop "+shopID, err)
	}
	return nil
}

// GetDailyStats retrieves a shop's daily aggregates in [from, to].
func (r *PgxAnalyticsRepository) GetDailyStats(ctx context.Context, shopID string, from, to time.Time) ([]domain.ShopDailyStat, error) {
	query := `
		SELECT shop_id, stat_date, views, orders, revenue, profit, last_updated_at
		FROM shop_daily_stats
		WHERE shop_id = $1 AND stat_date >= $2 AND stat_date <= $3
		ORDER BY stat_date ASC;
	`
	rows, err := r.Pool.Query(ctx, query, shopID, from.UTC().Truncate(24*time.Hour), to.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query daily stats for shop "+shopID, err)
	}
	defer rows.Close()

	stats := []domain.ShopDailyStat{}
	for rows.Next() {
		var s domain.ShopDailyStat
		err := rows.Scan(
			&s.ShopID,
			&s.StatDate,
			&s.Views,
			&s.Orders,
			&s.Revenue,
			&s.Profit,
			&s.LastUpdatedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan daily stat row", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating daily stat rows", err)
	}
	return stats, nil
}
