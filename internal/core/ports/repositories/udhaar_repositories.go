package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// UdhaarReader defines read operations for credit records.
type UdhaarReader interface {
	// ListOpenByCustomer retrieves a customer's OPEN credit records,
	// oldest-created first.
	ListOpenByCustomer(ctx context.Context, shopID, customerID string) ([]domain.Udhaar, error)

	// ListByCustomer retrieves all of a customer's credit records, newest
	// first, regardless of status.
	ListByCustomer(ctx context.Context, shopID, customerID string) ([]domain.Udhaar, error)
}

// UdhaarTransactionSupport defines the in-transaction operations the sale
// repository composes into its atomic units.
type UdhaarTransactionSupport interface {
	// FindBySaleIDForUpdate selects and locks the credit record linked to a
	// sale within a transaction. Returns apperrors.ErrNotFound if none exists.
	FindBySaleIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Udhaar, error)

	// ListOpenByCustomerForUpdate selects and locks a customer's OPEN records,
	// oldest-created first, within a transaction.
	ListOpenByCustomerForUpdate(ctx context.Context, tx pgx.Tx, shopID, customerID string) ([]domain.Udhaar, error)

	// CreateInTx inserts a credit record within a transaction.
	CreateInTx(ctx context.Context, tx pgx.Tx, udhaar domain.Udhaar) error

	// UpdateAmountInTx sets a record's amount within a transaction.
	UpdateAmountInTx(ctx context.Context, tx pgx.Tx, udhaarID string, amount decimal.Decimal, userID string, now time.Time) error

	// MarkPaidInTx marks the given records PAID with the given close time.
	MarkPaidInTx(ctx context.Context, tx pgx.Tx, udhaarIDs []string, closedAt time.Time, userID string) error

	// DeleteInTx removes a credit record within a transaction.
	DeleteInTx(ctx context.Context, tx pgx.Tx, udhaarID string) error

	// DeleteBySaleIDsInTx removes every credit record linked to the given
	// sales within a transaction.
	DeleteBySaleIDsInTx(ctx context.Context, tx pgx.Tx, saleIDs []string) error
}

// UdhaarRepositoryFacade combines all credit-record repository interfaces
type UdhaarRepositoryFacade interface {
	UdhaarReader
	UdhaarTransactionSupport
}
