package dto

import (
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateCustomerRequest defines data for creating a new customer.
type CreateCustomerRequest struct {
	Name        string           `json:"name" binding:"required"`
	Phone       string           `json:"phone"`
	Notes       string           `json:"notes"`
	CreditLimit *decimal.Decimal `json:"creditLimit"`
}

// UpdateCustomerRequest defines the data allowed for updating a customer.
// Pointers distinguish omitted fields from zero values; a CreditLimit set to
// null clears the limit (handled by ClearCreditLimit).
type UpdateCustomerRequest struct {
	Name             *string          `json:"name"`
	Phone            *string          `json:"phone"`
	Notes            *string          `json:"notes"`
	CreditLimit      *decimal.Decimal `json:"creditLimit"`
	ClearCreditLimit bool             `json:"clearCreditLimit"`
}

// CustomerResponse defines data returned for a customer.
type CustomerResponse struct {
	CustomerID  string           `json:"customerID"`
	ShopID      string           `json:"shopID"`
	Name        string           `json:"name"`
	Phone       string           `json:"phone,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	CreditLimit *decimal.Decimal `json:"creditLimit,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// ToCustomerResponse converts domain.Customer to DTO.
func ToCustomerResponse(c *domain.Customer) CustomerResponse {
	return CustomerResponse{
		CustomerID:  c.CustomerID,
		ShopID:      c.ShopID,
		Name:        c.Name,
		Phone:       c.Phone,
		Notes:       c.Notes,
		CreditLimit: c.CreditLimit,
		CreatedAt:   c.CreatedAt,
	}
}

// ListCustomersResponse wraps a list of customers.
type ListCustomersResponse struct {
	Customers []CustomerResponse `json:"customers"`
}

// ToListCustomersResponse converts a slice of domain.Customer to DTO.
func ToListCustomersResponse(cs []domain.Customer) ListCustomersResponse {
	list := make([]CustomerResponse, len(cs))
	for i, c := range cs {
		list[i] = ToCustomerResponse(&c)
	}
	return ListCustomersResponse{Customers: list}
}

// BalanceResponse is the outstanding balance of a customer. Positive means
// the customer owes the shop.
type BalanceResponse struct {
	ShopID     string          `json:"shopID"`
	CustomerID string          `json:"customerID"`
	Balance    decimal.Decimal `json:"balance"`
}
