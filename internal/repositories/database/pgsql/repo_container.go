package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	udhaarRepo := newPgxUdhaarRepository(dbPool)
	saleRepo := newPgxSaleRepository(dbPool, udhaarRepo)
	customerRepo := newPgxCustomerRepository(dbPool)
	shopRepo := newPgxShopRepository(dbPool)
	userRepo := newPgxUserRepository(dbPool)
	analyticsRepo := newPgxAnalyticsRepository(dbPool)
	auditRepo := newPgxAuditRepository(dbPool)
	apiTokenRepo := newPgxAPITokenRepository(dbPool)

	return portsrepo.RepositoryProvider{
		SaleRepo:      saleRepo,
		UdhaarRepo:    udhaarRepo,
		CustomerRepo:  customerRepo,
		ShopRepo:      shopRepo,
		UserRepo:      userRepo,
		AnalyticsRepo: analyticsRepo,
		AuditRepo:     auditRepo,
		APITokenRepo:  apiTokenRepo,
	}
}
