package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	SaleRepo      SaleRepositoryWithTx
	UdhaarRepo    UdhaarRepositoryFacade
	CustomerRepo  CustomerRepositoryFacade
	ShopRepo      ShopRepositoryFacade
	UserRepo      UserRepositoryFacade
	AnalyticsRepo AnalyticsRepository
	AuditRepo     AuditRepository
	APITokenRepo  APITokenRepository
}
