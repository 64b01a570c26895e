package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/shopspring/decimal"
)

var ErrNegativeCreditLimit = errors.New("credit limit cannot be negative")

// customerService manages a shop's customer directory.
type customerService struct {
	BaseService
	customerRepo portsrepo.CustomerRepositoryFacade
	saleRepo     portsrepo.SaleRepositoryWithTx
}

// NewCustomerService creates a new customer service.
func NewCustomerService(customerRepo portsrepo.CustomerRepositoryFacade, saleRepo portsrepo.SaleRepositoryWithTx, shopAuthorizer portssvc.ShopAuthorizerSvc) portssvc.CustomerSvcFacade {
	return &customerService{
		BaseService:  BaseService{ShopAuthorizer: shopAuthorizer},
		customerRepo: customerRepo,
		saleRepo:     saleRepo,
	}
}

var _ portssvc.CustomerSvcFacade = (*customerService)(nil)

// CreateCustomer creates a new customer in the shop.
func (s *customerService) CreateCustomer(ctx context.Context, shopID string, req dto.CreateCustomerRequest, userID string) (*domain.Customer, error) {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleStaff); err != nil {
		return nil, err
	}

	if req.CreditLimit != nil && req.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNegativeCreditLimit)
	}

	now := time.Now().UTC()
	customer := domain.Customer{
		CustomerID:  uuid.NewString(),
		ShopID:      shopID,
		Name:        req.Name,
		Phone:       req.Phone,
		Notes:       req.Notes,
		CreditLimit: req.CreditLimit,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	if err := s.customerRepo.SaveCustomer(ctx, customer); err != nil {
		s.LogError(ctx, err, "Failed to save customer", slog.String("shop_id", shopID))
		return nil, fmt.Errorf("failed to save customer: %w", err)
	}

	s.LogInfo(ctx, "Customer created",
		slog.String("customer_id", customer.CustomerID),
		slog.String("shop_id", shopID))
	return &customer, nil
}

// UpdateCustomer updates a customer's details. A CreditLimit in the request
// replaces the configured ceiling; ClearCreditLimit removes it entirely.
func (s *customerService) UpdateCustomer(ctx context.Context, shopID, customerID string, req dto.UpdateCustomerRequest, userID string) (*domain.Customer, error) {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleStaff); err != nil {
		return nil, err
	}

	if req.CreditLimit != nil && req.CreditLimit.IsNegative() {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, ErrNegativeCreditLimit)
	}

	customer, err := s.customerRepo.FindCustomerByID(ctx, shopID, customerID)
	if err != nil {
		return nil, fmt.Errorf("customer %s: %w", customerID, err)
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Phone != nil {
		customer.Phone = *req.Phone
	}
	if req.Notes != nil {
		customer.Notes = *req.Notes
	}
	if req.ClearCreditLimit {
		customer.CreditLimit = nil
	} else if req.CreditLimit != nil {
		customer.CreditLimit = req.CreditLimit
	}
	customer.LastUpdatedAt = time.Now().UTC()
	customer.LastUpdatedBy = userID

	if err := s.customerRepo.UpdateCustomer(ctx, *customer); err != nil {
		s.LogError(ctx, err, "Failed to update customer", slog.String("customer_id", customerID))
		return nil, fmt.Errorf("failed to update customer %s: %w", customerID, err)
	}

	s.LogInfo(ctx, "Customer updated", slog.String("customer_id", customerID))
	return customer, nil
}

// DeleteCustomer soft-deletes a customer. Their sale history stays in the
// ledger and keeps contributing to reports.
func (s *customerService) DeleteCustomer(ctx context.Context, shopID, customerID string, userID string) error {
	if err := s.AuthorizeUser(ctx, userID, shopID, domain.RoleAdmin); err != nil {
		return err
	}

	if err := s.customerRepo.MarkCustomerDeleted(ctx, shopID, customerID, time.Now().UTC(), userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("customer %s: %w", customerID, apperrors.ErrNotFound)
		}
		s.LogError(ctx, err, "Failed to delete customer", slog.String("customer_id", customerID))
		return fmt.Errorf("failed to delete customer %s: %w", customerID, err)
	}

	s.LogInfo(ctx, "Customer deleted", slog.String("customer_id", customerID), slog.String("shop_id", shopID))
	return nil
}

// GetCustomerByID retrieves a customer by ID within a shop.
func (s *customerService) GetCustomerByID(ctx context.Context, shopID, customerID string, requestingUserID string) (*domain.Customer, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, shopID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	customer, err := s.customerRepo.FindCustomerByID(ctx, shopID, customerID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find customer", slog.String("customer_id", customerID))
		}
		return nil, fmt.Errorf("customer %s: %w", customerID, err)
	}
	return customer, nil
}

// ListCustomers retrieves a paginated list of a shop's customers.
func (s *customerService) ListCustomers(ctx context.Context, shopID string, limit, offset int, requestingUserID string) ([]domain.Customer, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, shopID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	customers, err := s.customerRepo.ListCustomers(ctx, shopID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list customers", slog.String("shop_id", shopID))
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	return customers, nil
}

// GetCustomerBalance exposes the derived ledger balance as a pure read.
func (s *customerService) GetCustomerBalance(ctx context.Context, shopID, customerID string, requestingUserID string) (decimal.Decimal, error) {
	if err := s.AuthorizeUser(ctx, requestingUserID, shopID, domain.RoleReadOnly); err != nil {
		return decimal.Zero, err
	}

	if _, err := s.customerRepo.FindCustomerByID(ctx, shopID, customerID); err != nil {
		return decimal.Zero, fmt.Errorf("customer %s: %w", customerID, err)
	}

	balance, err := s.saleRepo.GetBalance(ctx, shopID, customerID)
	if err != nil {
		s.LogError(ctx, err, "Failed to read customer balance", slog.String("customer_id", customerID))
		return decimal.Zero, fmt.Errorf("failed to read balance for customer %s: %w", customerID, err)
	}
	return balance, nil
}
