package repositories

import (
	"context"
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
)

// CustomerReader defines read operations for customer data
type CustomerReader interface {
	// FindCustomerByID retrieves a customer by ID within a shop.
	FindCustomerByID(ctx context.Context, shopID, customerID string) (*domain.Customer, error)

	// ListCustomers retrieves a paginated list of a shop's customers.
	ListCustomers(ctx context.Context, shopID string, limit int, offset int) ([]domain.Customer, error)
}

// CustomerWriter defines write operations for customer data
type CustomerWriter interface {
	// SaveCustomer persists a new customer.
	SaveCustomer(ctx context.Context, customer domain.Customer) error

	// UpdateCustomer updates an existing customer's details, including the
	// configured credit limit.
	UpdateCustomer(ctx context.Context, customer domain.Customer) error

	// MarkCustomerDeleted marks a customer as deleted (soft delete).
	MarkCustomerDeleted(ctx context.Context, shopID, customerID string, deletedAt time.Time, deletedBy string) error
}

// CustomerRepositoryFacade combines all customer-related repository interfaces
type CustomerRepositoryFacade interface {
	CustomerReader
	CustomerWriter
}
