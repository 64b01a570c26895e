package services

import (
	"context"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// CustomerReaderSvc defines read operations for customer data
type CustomerReaderSvc interface {
	// GetCustomerByID retrieves a customer by ID within a shop.
	GetCustomerByID(ctx context.Context, shopID, customerID string, requestingUserID string) (*domain.Customer, error)

	// ListCustomers retrieves a paginated list of a shop's customers.
	ListCustomers(ctx context.Context, shopID string, limit, offset int, requestingUserID string) ([]domain.Customer, error)

	// GetCustomerBalance exposes the ledger balance as a pure read. Consumed
	// by the reminder scheduler to decide whether to nudge this customer.
	GetCustomerBalance(ctx context.Context, shopID, customerID string, requestingUserID string) (decimal.Decimal, error)
}

// CustomerWriterSvc defines write operations for customer data
type CustomerWriterSvc interface {
	// CreateCustomer creates a new customer in the shop.
	CreateCustomer(ctx context.Context, shopID string, req dto.CreateCustomerRequest, userID string) (*domain.Customer, error)

	// UpdateCustomer updates a customer's details, including the credit limit.
	UpdateCustomer(ctx context.Context, shopID, customerID string, req dto.UpdateCustomerRequest, userID string) (*domain.Customer, error)

	// DeleteCustomer soft-deletes a customer.
	DeleteCustomer(ctx context.Context, shopID, customerID string, userID string) error
}

// CustomerSvcFacade combines all customer-related service interfaces
type CustomerSvcFacade interface {
	CustomerReaderSvc
	CustomerWriterSvc
}
