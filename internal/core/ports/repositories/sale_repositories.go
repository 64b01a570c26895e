package repositories

import (
	"context"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreditCheck carries the credit-limit policy into the sale insert
// transaction. The repository locks the customer row, recomputes the balance
// under the lock and enforces the limit there, so two concurrent UDHAAR sales
// cannot jointly overrun it.
type CreditCheck struct {
	Limit  decimal.Decimal
	Bypass bool
}

// UdhaarAction names the credit-record side effect an update requires.
type UdhaarAction string

const (
	// UdhaarActionNone leaves the credit record untouched.
	UdhaarActionNone UdhaarAction = "NONE"
	// UdhaarActionCreate creates an OPEN record for the sale's new amount
	// (non-UDHAAR -> UDHAAR transition).
	UdhaarActionCreate UdhaarAction = "CREATE"
	// UdhaarActionSyncAmount updates the linked record's amount to the sale's
	// new amount. Fails if the record is PAID.
	UdhaarActionSyncAmount UdhaarAction = "SYNC_AMOUNT"
	// UdhaarActionDelete removes the linked record (UDHAAR -> non-UDHAAR
	// transition). Fails if the record is PAID.
	UdhaarActionDelete UdhaarAction = "DELETE"
)

// SaleUpdate pairs the fully updated sale with the credit-record side effect
// it requires. The repository re-checks the PAID guard inside the transaction.
type SaleUpdate struct {
	Sale   domain.Sale
	Action UdhaarAction
}

// SaleReader defines read operations for sale data. All reads are shop scoped.
type SaleReader interface {
	// FindSaleByID retrieves a sale by ID within a shop.
	FindSaleByID(ctx context.Context, shopID, saleID string) (*domain.Sale, error)

	// FindSalesByIDs retrieves the sales from the given ID set that exist in
	// the shop. Missing IDs are simply absent from the result.
	FindSalesByIDs(ctx context.Context, shopID string, saleIDs []string) ([]domain.Sale, error)

	// GetBalance derives the customer's outstanding balance from the live
	// sales log: sum of UDHAAR amounts minus sum of CASH/UPI amounts.
	GetBalance(ctx context.Context, shopID, customerID string) (decimal.Decimal, error)

	// ListSales retrieves a filtered, cursor-paginated page of sales,
	// newest first. Returns the page and a token for the next page.
	ListSales(ctx context.Context, shopID string, filter domain.SaleFilter, limit int, nextToken *string) ([]domain.Sale, *string, error)
}

// SaleWriter defines the atomic mutations of the sale ledger. Every method
// that touches both the sale and its credit record executes as one database
// transaction.
type SaleWriter interface {
	// SaveSale inserts the sale and, for UDHAAR sales, its OPEN credit record
	// atomically. When check is non-nil the customer row is locked and the
	// credit limit enforced inside the same transaction; a breach returns
	// *apperrors.CreditLimitExceededError.
	SaveSale(ctx context.Context, sale domain.Sale, udhaar *domain.Udhaar, check *CreditCheck) error

	// SavePayment inserts the payment sale and closes the customer's open
	// udhaar records oldest-first, as far as the amount reaches, in one
	// transaction. Returns the records it marked PAID.
	SavePayment(ctx context.Context, payment domain.Sale) ([]domain.Udhaar, error)

	// UpdateSale applies the amended sale plus its credit-record side effect
	// atomically. Returns apperrors.ErrUdhaarSettled when the side effect
	// would touch a PAID record.
	UpdateSale(ctx context.Context, update SaleUpdate) error

	// BulkUpdateSales applies every update in one transaction, all-or-nothing.
	// Per-item failures are collected; if any exist the transaction is rolled
	// back and a *apperrors.BulkOperationError reports them all.
	BulkUpdateSales(ctx context.Context, shopID string, updates []SaleUpdate) error

	// DeleteSale hard-deletes the sale and any linked credit record regardless
	// of its status. Returns the removed sale for audit capture.
	DeleteSale(ctx context.Context, shopID, saleID string) (*domain.Sale, error)

	// DeleteSales batch-deletes the matching sales and their credit records in
	// one transaction. IDs that match nothing are ignored; the removed sales
	// are returned.
	DeleteSales(ctx context.Context, shopID string, saleIDs []string) ([]domain.Sale, error)
}

// SaleRepositoryFacade combines all sale-related repository interfaces
type SaleRepositoryFacade interface {
	SaleReader
	SaleWriter
}

// SaleRepositoryWithTx extends SaleRepositoryFacade with transaction capabilities
type SaleRepositoryWithTx interface {
	SaleRepositoryFacade
	TransactionManager
}
