package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
)

// analyticsService maintains per-day shop aggregates.
type analyticsService struct {
	BaseService
	analyticsRepo portsrepo.AnalyticsRepository
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(analyticsRepo portsrepo.AnalyticsRepository, shopAuthorizer portssvc.ShopAuthorizerSvc) portssvc.AnalyticsSvc {
	return &analyticsService{
		BaseService:   BaseService{ShopAuthorizer: shopAuthorizer},
		analyticsRepo: analyticsRepo,
	}
}

var _ portssvc.AnalyticsSvc = (*analyticsService)(nil)

// TrackSale adds one order with its revenue and profit to today's aggregate.
// Called fire-and-forget after a sale commits, so no authorization here: the
// caller already authorized the sale itself.
func (s *analyticsService) TrackSale(ctx context.Context, shopID string, amount, profit decimal.Decimal) error {
	err := s.analyticsRepo.UpsertDailyStat(ctx, shopID, time.Now().UTC(), 1, amount, profit)
	if err != nil {
		s.LogError(ctx, err, "Failed to track sale in daily stats",
			slog.String("shop_id", shopID))
		return fmt.Errorf("failed to track sale: %w", err)
	}
	return nil
}

// GetDailyStats retrieves a shop's daily aggregates in [from, to].
func (s *analyticsService) GetDailyStats(ctx context.Context, shopID string, from, to time.Time, requestingUserID string) ([]domain.ShopDailyStat, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, shopID, domain.RoleReadOnly); err != nil {
		return nil, err
	}
	if to.Before(from) {
		from, to = to, from
	}

	stats, err := s.analyticsRepo.GetDailyStats(ctx, shopID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to read daily stats",
			slog.String("shop_id", shopID))
		return nil, fmt.Errorf("failed to read daily stats: %w", err)
	}
	if stats == nil {
		return []domain.ShopDailyStat{}, nil
	}
	return stats, nil
}
