package services

import (
	"context"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines the read side of the ledger.
type LedgerReaderSvc interface {
	// CalculateBalance derives a customer's outstanding balance from the live
	// sales log. Pure read, no caching; positive means the customer owes the
	// shop. This is the single source of truth for "what does this customer
	// owe" and must never be answered from udhaar records.
	CalculateBalance(ctx context.Context, shopID, customerID string) (decimal.Decimal, error)

	// GetSaleByID retrieves one sale within the shop scope.
	GetSaleByID(ctx context.Context, shopID, saleID string) (*domain.Sale, error)

	// ListSales retrieves a filtered, cursor-paginated page of sales.
	ListSales(ctx context.Context, shopID string, filter domain.SaleFilter, limit int, nextToken *string) ([]domain.Sale, *string, error)

	// GetSalesSummary aggregates the filtered sale set in memory: revenue
	// (CASH+UPI), counts, per-type totals, top customers, 7-day breakdown.
	GetSalesSummary(ctx context.Context, shopID string, filter domain.SaleFilter) (*domain.SalesSummary, error)

	// ListCustomerUdhaars lists a customer's credit records, newest first.
	// With openOnly set, only OPEN records are returned, oldest first, the
	// order a payment would settle them in.
	ListCustomerUdhaars(ctx context.Context, shopID, customerID string, openOnly bool) ([]domain.Udhaar, error)
}

// LedgerWriterSvc defines the mutations of the ledger.
type LedgerWriterSvc interface {
	// RecordSale validates and commits a new sale. UDHAAR sales require a
	// customer and are checked against the customer's credit limit unless the
	// request sets the bypass flag; the sale and its credit record commit
	// atomically. Analytics tracking happens after commit, detached.
	RecordSale(ctx context.Context, shopID string, req dto.RecordSaleRequest, userID string) (*domain.Sale, error)

	// RecordPayment commits a CASH/UPI payment for a customer and reconciles
	// their open credit records oldest-first within the same transaction.
	// Overpayments and advance payments are allowed.
	RecordPayment(ctx context.Context, shopID, customerID string, req dto.RecordPaymentRequest, userID string) (*dto.PaymentResult, error)

	// UpdateSale amends a sale, applying the credit-record transition the
	// change requires, atomically. Editing a sale whose credit record is PAID
	// fails with apperrors.ErrUdhaarSettled.
	UpdateSale(ctx context.Context, shopID, saleID string, req dto.UpdateSaleRequest, userID string) (*domain.Sale, error)

	// BulkUpdateSales applies the single-update logic to every listed sale,
	// all-or-nothing, and writes one summary audit entry on success. Returns
	// the number of sales updated.
	BulkUpdateSales(ctx context.Context, shopID string, req dto.BulkUpdateSalesRequest, userID string) (int, error)

	// DeleteSale hard-deletes a sale and its credit record (any status).
	DeleteSale(ctx context.Context, shopID, saleID string, userID string) error

	// DeleteSales batch-deletes sales; zero matches is not an error. Returns
	// the number removed.
	DeleteSales(ctx context.Context, shopID string, saleIDs []string, userID string) (int, error)
}

// LedgerSvcFacade combines the ledger read and write interfaces.
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
}
