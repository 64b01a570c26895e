package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	"github.com/khatapp/khata_backend/internal/models"
	"github.com/khatapp/khata_backend/internal/utils/mapping"
	"github.com/shopspring/decimal"
)

const udhaarColumns = `udhaar_id, shop_id, customer_id, sale_id, amount, status, closed_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxUdhaarRepository struct {
	BaseRepository
}

// newPgxUdhaarRepository creates a new repository for credit-record data.
func newPgxUdhaarRepository(pool *pgxpool.Pool) portsrepo.UdhaarRepositoryFacade {
	return &PgxUdhaarRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.UdhaarRepositoryFacade = (*PgxUdhaarRepository)(nil)

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx, so the scan
// helpers below serve plain reads and in-transaction reads alike.
type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanUdhaar(row pgx.Row) (*models.Udhaar, error) {
	var u models.Udhaar
	err := row.Scan(
		&u.UdhaarID,
		&u.ShopID,
		&u.CustomerID,
		&u.SaleID,
		&u.Amount,
		&u.Status,
		&u.ClosedAt,
		&u.CreatedAt,
		&u.CreatedBy,
		&u.LastUpdatedAt,
		&u.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func queryUdhaars(ctx context.Context, q rowQuerier, query string, args ...any) ([]domain.Udhaar, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query udhaar records", err)
	}
	defer rows.Close()

	out := []domain.Udhaar{}
	for rows.Next() {
		u, err := scanUdhaar(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan udhaar row", err)
		}
		out = append(out, mapping.ToDomainUdhaar(*u))
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating udhaar rows", err)
	}
	return out, nil
}

// ListOpenByCustomer retrieves a customer's OPEN credit records, oldest first.
// The ordering is load-bearing: payment reconciliation walks it in order.
func (r *PgxUdhaarRepository) ListOpenByCustomer(ctx context.Context, shopID, customerID string) ([]domain.Udhaar, error) {
	query := `SELECT ` + udhaarColumns + ` FROM udhaars
		WHERE shop_id = $1 AND customer_id = $2 AND status = 'OPEN'
		ORDER BY created_at ASC, udhaar_id ASC;`
	return queryUdhaars(ctx, r.Pool, query, shopID, customerID)
}

// ListByCustomer retrieves all of a customer's credit records, newest first.
func (r *PgxUdhaarRepository) ListByCustomer(ctx context.Context, shopID, customerID string) ([]domain.Udhaar, error) {
	query := `SELECT ` + udhaarColumns + ` FROM udhaars
		WHERE shop_id = $1 AND customer_id = $2
		ORDER BY created_at DESC, udhaar_id DESC;`
	return queryUdhaars(ctx, r.Pool, query, shopID, customerID)
}

// FindBySaleIDForUpdate selects and locks the credit record for a sale inside tx.
func (r *PgxUdhaarRepository) FindBySaleIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Udhaar, error) {
	query := `SELECT ` + udhaarColumns + ` FROM udhaars WHERE sale_id = $1 FOR UPDATE;`
	u, err := scanUdhaar(tx.QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to lock udhaar for sale "+saleID, err)
	}
	d := mapping.ToDomainUdhaar(*u)
	return &d, nil
}

// ListOpenByCustomerForUpdate selects and locks the customer's OPEN records,
// oldest first, inside tx.
func (r *PgxUdhaarRepository) ListOpenByCustomerForUpdate(ctx context.Context, tx pgx.Tx, shopID, customerID string) ([]domain.Udhaar, error) {
	query := `SELECT ` + udhaarColumns + ` FROM udhaars
		WHERE shop_id = $1 AND customer_id = $2 AND status = 'OPEN'
		ORDER BY created_at ASC, udhaar_id ASC
		FOR UPDATE;`
	return queryUdhaars(ctx, tx, query, shopID, customerID)
}

// CreateInTx inserts a credit record inside tx.
func (r *PgxUdhaarRepository) CreateInTx(ctx context.Context, tx pgx.Tx, udhaar domain.Udhaar) error {
	m := mapping.ToModelUdhaar(udhaar)
	query := `
		INSERT INTO udhaars (` + udhaarColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := tx.Exec(ctx, query,
		m.UdhaarID,
		m.ShopID,
		m.CustomerID,
		m.SaleID,
		m.Amount,
		m.Status,
		m.ClosedAt,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert udhaar for sale "+m.SaleID, err)
	}
	return nil
}

// UpdateAmountInTx sets a record's amount inside tx.
func (r *PgxUdhaarRepository) UpdateAmountInTx(ctx context.Context, tx pgx.Tx, udhaarID string, amount decimal.Decimal, userID string, now time.Time) error {
	query := `UPDATE udhaars SET amount = $1, last_updated_at = $2, last_updated_by = $3 WHERE udhaar_id = $4;`
	tag, err := tx.Exec(ctx, query, amount, now, userID, udhaarID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update udhaar amount "+udhaarID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkPaidInTx marks the given records PAID inside tx.
func (r *PgxUdhaarRepository) MarkPaidInTx(ctx context.Context, tx pgx.Tx, udhaarIDs []string, closedAt time.Time, userID string) error {
	if len(udhaarIDs) == 0 {
		return nil
	}
	query := `UPDATE udhaars
		SET status = 'PAID', closed_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE udhaar_id = ANY($3) AND status = 'OPEN';`
	tag, err := tx.Exec(ctx, query, closedAt, userID, udhaarIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark udhaar records paid", err)
	}
	if tag.RowsAffected() != int64(len(udhaarIDs)) {
		return apperrors.NewAppError(500, "udhaar records changed underneath reconciliation", nil)
	}
	return nil
}

// DeleteInTx removes a credit record inside tx.
func (r *PgxUdhaarRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, udhaarID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM udhaars WHERE udhaar_id = $1;`, udhaarID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete udhaar "+udhaarID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// DeleteBySaleIDsInTx removes all credit records linked to the sales inside tx.
func (r *PgxUdhaarRepository) DeleteBySaleIDsInTx(ctx context.Context, tx pgx.Tx, saleIDs []string) error {
	if len(saleIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `DELETE FROM udhaars WHERE sale_id = ANY($1);`, saleIDs)
	if err != nil {
		return apperrors.NewAppError(500, "failed to delete udhaar records for sales batch", err)
	}
	return nil
}
