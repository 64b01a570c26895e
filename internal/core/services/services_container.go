package services

import (
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	// Create the container structure first
	container := &portssvc.ServiceContainer{}

	// Initialize shop service first since other services depend on it for
	// authorization
	container.Shop = NewShopService(repos.ShopRepo)
	shopAuthorizer := portssvc.ShopAuthorizerSvc(container.Shop)

	container.Audit = NewAuditService(repos.AuditRepo)
	container.Analytics = NewAnalyticsService(repos.AnalyticsRepo, shopAuthorizer)
	container.Customer = NewCustomerService(repos.CustomerRepo, repos.SaleRepo, shopAuthorizer)

	container.Ledger = NewLedgerService(
		repos.SaleRepo,
		repos.UdhaarRepo,
		repos.CustomerRepo,
		shopAuthorizer,
		container.Analytics,
		container.Audit,
	)

	container.User = NewUserService(repos.UserRepo)
	container.APIToken = NewAPITokenService(repos.APITokenRepo, container.User)

	// Initialize TokenService
	container.TokenService = NewTokenService(cfg, container.User)

	// Initialize GoogleOAuthHandlerSvcFacade
	container.GoogleOAuthHandler = NewGoogleOAuthHandlerService(cfg)

	return container
}
