package pgsql

import (
	"context"
	"errors"
	"strconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	"github.com/khatapp/khata_backend/internal/models"
	"github.com/khatapp/khata_backend/internal/utils/mapping"
	"github.com/khatapp/khata_backend/internal/utils/pagination"
	"github.com/shopspring/decimal"
)

const saleColumns = `sale_id, shop_id, customer_id, amount, payment_type, source, notes, tags, created_at, created_by, last_updated_at, last_updated_by, edited_at, edited_by, edit_reason`

// balanceQuery is the SQL twin of domain.BalanceFromSales: UDHAAR adds to what
// the customer owes, CASH/UPI subtracts.
const balanceQuery = `
	SELECT COALESCE(SUM(CASE WHEN payment_type = 'UDHAAR' THEN amount ELSE -amount END), 0)
	FROM sales
	WHERE shop_id = $1 AND customer_id = $2;
`

type PgxSaleRepository struct {
	BaseRepository
	udhaarRepo portsrepo.UdhaarTransactionSupport
}

// newPgxSaleRepository creates a new repository for sale ledger data. The
// udhaar repository is injected so sale mutations can drive credit-record side
// effects inside the same database transaction.
func newPgxSaleRepository(pool *pgxpool.Pool, udhaarRepo portsrepo.UdhaarTransactionSupport) portsrepo.SaleRepositoryWithTx {
	return &PgxSaleRepository{
		BaseRepository: BaseRepository{Pool: pool},
		udhaarRepo:     udhaarRepo,
	}
}

// Ensure PgxSaleRepository implements portsrepo.SaleRepositoryWithTx
var _ portsrepo.SaleRepositoryWithTx = (*PgxSaleRepository)(nil)

func scanSale(row pgx.Row) (*models.Sale, error) {
	var s models.Sale
	err := row.Scan(
		&s.SaleID,
		&s.ShopID,
		&s.CustomerID,
		&s.Amount,
		&s.PaymentType,
		&s.Source,
		&s.Notes,
		&s.Tags,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
		&s.EditedAt,
		&s.EditedBy,
		&s.EditReason,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func insertSaleInTx(ctx context.Context, tx pgx.Tx, sale domain.Sale) error {
	m := mapping.ToModelSale(sale)
	query := `
		INSERT INTO sales (` + saleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := tx.Exec(ctx, query,
		m.SaleID,
		m.ShopID,
		m.CustomerID,
		m.Amount,
		m.PaymentType,
		m.Source,
		m.Notes,
		m.Tags,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.EditedAt,
		m.EditedBy,
		m.EditReason,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to insert sale "+m.SaleID, err)
	}
	return nil
}

// lockCustomerRow locks the customer row so concurrent sale inserts for the
// same customer serialize on it. Both SaveSale and SavePayment take this lock,
// which is what makes the in-transaction balance read trustworthy.
func lockCustomerRow(ctx context.Context, tx pgx.Tx, shopID, customerID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT customer_id FROM customers WHERE shop_id = $1 AND customer_id = $2 FOR UPDATE;`, shopID, customerID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.ErrNotFound
		}
		return apperrors.NewAppError(500, "failed to lock customer "+customerID, err)
	}
	return nil
}

// SaveSale inserts the sale and, for UDHAAR sales, its credit record in one
// transaction. When check is non-nil the customer row is locked first and the
// balance recomputed under the lock, so two concurrent UDHAAR sales cannot
// jointly slip past the limit.
func (r *PgxSaleRepository) SaveSale(ctx context.Context, sale domain.Sale, udhaar *domain.Udhaar, check *portsrepo.CreditCheck) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx) // Will be ignored if transaction is committed successfully

	if check != nil {
		if sale.CustomerID == nil {
			return apperrors.NewAppError(400, "credit check requires a customer", apperrors.ErrValidation)
		}
		if err := lockCustomerRow(ctx, tx, sale.ShopID, *sale.CustomerID); err != nil {
			return err
		}

		var balance decimal.Decimal
		if err := tx.QueryRow(ctx, balanceQuery, sale.ShopID, *sale.CustomerID).Scan(&balance); err != nil {
			return apperrors.NewAppError(500, "failed to compute balance for customer "+*sale.CustomerID, err)
		}

		projected := balance.Add(sale.Amount)
		if !check.Bypass && projected.GreaterThan(check.Limit) {
			return apperrors.NewCreditLimitExceeded(balance, check.Limit, projected)
		}
	}

	if err := insertSaleInTx(ctx, tx, sale); err != nil {
		return err
	}

	if udhaar != nil {
		if err := r.udhaarRepo.CreateInTx(ctx, tx, *udhaar); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// SavePayment inserts the payment sale and settles the customer's open udhaar
// records oldest-first, as far as the amount reaches, all in one transaction.
func (r *PgxSaleRepository) SavePayment(ctx context.Context, payment domain.Sale) ([]domain.Udhaar, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	settled := []domain.Udhaar{}
	if payment.CustomerID != nil {
		if err := lockCustomerRow(ctx, tx, payment.ShopID, *payment.CustomerID); err != nil {
			return nil, err
		}

		open, err := r.udhaarRepo.ListOpenByCustomerForUpdate(ctx, tx, payment.ShopID, *payment.CustomerID)
		if err != nil {
			return nil, err
		}

		closedIDs := domain.ReconcileOldestFirst(open, payment.Amount)
		if len(closedIDs) > 0 {
			closedAt := payment.CreatedAt
			if err := r.udhaarRepo.MarkPaidInTx(ctx, tx, closedIDs, closedAt, payment.CreatedBy); err != nil {
				return nil, err
			}
			closedSet := make(map[string]bool, len(closedIDs))
			for _, id := range closedIDs {
				closedSet[id] = true
			}
			for _, u := range open {
				if !closedSet[u.UdhaarID] {
					continue
				}
				u.Status = domain.UdhaarPaid
				u.ClosedAt = &closedAt
				u.LastUpdatedAt = closedAt
				u.LastUpdatedBy = payment.CreatedBy
				settled = append(settled, u)
			}
		}
	}

	if err := insertSaleInTx(ctx, tx, payment); err != nil {
		return nil, err
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return settled, nil
}

// applySaleUpdateInTx applies one amended sale plus its credit-record side
// effect inside tx. Business failures (missing sale, settled udhaar) are
// returned as sentinel errors and do not abort the surrounding transaction.
func (r *PgxSaleRepository) applySaleUpdateInTx(ctx context.Context, tx pgx.Tx, update portsrepo.SaleUpdate) error {
	sale := update.Sale

	switch update.Action {
	case portsrepo.UdhaarActionNone:
		// Nothing to do on the credit record.
	case portsrepo.UdhaarActionCreate:
		if sale.CustomerID == nil {
			return apperrors.NewAppError(400, "udhaar sale requires a customer", apperrors.ErrValidation)
		}
		u := domain.Udhaar{
			UdhaarID:   uuid.NewString(),
			ShopID:     sale.ShopID,
			CustomerID: *sale.CustomerID,
			SaleID:     sale.SaleID,
			Amount:     sale.Amount,
			Status:     domain.UdhaarOpen,
			AuditFields: domain.AuditFields{
				CreatedAt:     sale.LastUpdatedAt,
				CreatedBy:     sale.LastUpdatedBy,
				LastUpdatedAt: sale.LastUpdatedAt,
				LastUpdatedBy: sale.LastUpdatedBy,
			},
		}
		if err := r.udhaarRepo.CreateInTx(ctx, tx, u); err != nil {
			return err
		}
	case portsrepo.UdhaarActionSyncAmount:
		u, err := r.udhaarRepo.FindBySaleIDForUpdate(ctx, tx, sale.SaleID)
		if err != nil {
			return err
		}
		if u.Status == domain.UdhaarPaid {
			return apperrors.ErrUdhaarSettled
		}
		if err := r.udhaarRepo.UpdateAmountInTx(ctx, tx, u.UdhaarID, sale.Amount, sale.LastUpdatedBy, sale.LastUpdatedAt); err != nil {
			return err
		}
	case portsrepo.UdhaarActionDelete:
		u, err := r.udhaarRepo.FindBySaleIDForUpdate(ctx, tx, sale.SaleID)
		if err != nil {
			return err
		}
		if u.Status == domain.UdhaarPaid {
			return apperrors.ErrUdhaarSettled
		}
		if err := r.udhaarRepo.DeleteInTx(ctx, tx, u.UdhaarID); err != nil {
			return err
		}
	default:
		return apperrors.NewAppError(400, "unknown udhaar action "+string(update.Action), apperrors.ErrValidation)
	}

	m := mapping.ToModelSale(sale)
	query := `
		UPDATE sales SET
			customer_id = $1, amount = $2, payment_type = $3, source = $4,
			notes = $5, tags = $6, last_updated_at = $7, last_updated_by = $8,
			edited_at = $9, edited_by = $10, edit_reason = $11
		WHERE shop_id = $12 AND sale_id = $13;
	`
	tag, err := tx.Exec(ctx, query,
		m.CustomerID,
		m.Amount,
		m.PaymentType,
		m.Source,
		m.Notes,
		m.Tags,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.EditedAt,
		m.EditedBy,
		m.EditReason,
		m.ShopID,
		m.SaleID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update sale "+m.SaleID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateSale applies the amended sale and its credit-record side effect
// atomically.
func (r *PgxSaleRepository) UpdateSale(ctx context.Context, update portsrepo.SaleUpdate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := r.applySaleUpdateInTx(ctx, tx, update); err != nil {
		return err
	}

	return r.Commit(ctx, tx)
}

// BulkUpdateSales applies every update in one transaction, all-or-nothing.
// Business failures are collected per sale; if any exist the transaction rolls
// back and the aggregate error reports them all. Infrastructure errors abort
// immediately because they poison the transaction.
func (r *PgxSaleRepository) BulkUpdateSales(ctx context.Context, shopID string, updates []portsrepo.SaleUpdate) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	failures := map[string]error{}
	for _, update := range updates {
		update.Sale.ShopID = shopID
		err := r.applySaleUpdateInTx(ctx, tx, update)
		if err == nil {
			continue
		}
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrUdhaarSettled) || errors.Is(err, apperrors.ErrValidation) {
			failures[update.Sale.SaleID] = err
			continue
		}
		return err
	}

	if len(failures) > 0 {
		return &apperrors.BulkOperationError{Failures: failures}
	}

	return r.Commit(ctx, tx)
}

// DeleteSale hard-deletes the sale and any linked credit record, whatever its
// status, and returns the removed sale for audit capture.
func (r *PgxSaleRepository) DeleteSale(ctx context.Context, shopID, saleID string) (*domain.Sale, error) {
	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	query := `SELECT ` + saleColumns + ` FROM sales WHERE shop_id = $1 AND sale_id = $2 FOR UPDATE;`
	m, err := scanSale(tx.QueryRow(ctx, query, shopID, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to load sale "+saleID+" for deletion", err)
	}

	if err := r.udhaarRepo.DeleteBySaleIDsInTx(ctx, tx, []string{saleID}); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM sales WHERE shop_id = $1 AND sale_id = $2;`, shopID, saleID); err != nil {
		return nil, apperrors.NewAppError(500, "failed to delete sale "+saleID, err)
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	d := mapping.ToDomainSale(*m)
	return &d, nil
}

// DeleteSales batch-deletes the matching sales and their credit records in one
// transaction. IDs that match nothing in the shop are silently skipped.
func (r *PgxSaleRepository) DeleteSales(ctx context.Context, shopID string, saleIDs []string) ([]domain.Sale, error) {
	if len(saleIDs) == 0 {
		return []domain.Sale{}, nil
	}

	tx, err := r.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Rollback(ctx, tx)

	query := `SELECT ` + saleColumns + ` FROM sales WHERE shop_id = $1 AND sale_id = ANY($2) FOR UPDATE;`
	rows, err := tx.Query(ctx, query, shopID, saleIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to load sales for deletion", err)
	}

	found := []models.Sale{}
	for rows.Next() {
		m, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, apperrors.NewAppError(500, "failed to scan sale row for deletion", err)
		}
		found = append(found, *m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, apperrors.NewAppError(500, "error iterating sale rows for deletion", err)
	}
	rows.Close()

	foundIDs := make([]string, len(found))
	for i, m := range found {
		foundIDs[i] = m.SaleID
	}

	if err := r.udhaarRepo.DeleteBySaleIDsInTx(ctx, tx, foundIDs); err != nil {
		return nil, err
	}

	if len(foundIDs) > 0 {
		if _, err := tx.Exec(ctx, `DELETE FROM sales WHERE shop_id = $1 AND sale_id = ANY($2);`, shopID, foundIDs); err != nil {
			return nil, apperrors.NewAppError(500, "failed to delete sales batch", err)
		}
	}

	if err := r.Commit(ctx, tx); err != nil {
		return nil, err
	}
	return mapping.ToDomainSaleSlice(found), nil
}

// FindSaleByID retrieves a sale by ID within a shop.
func (r *PgxSaleRepository) FindSaleByID(ctx context.Context, shopID, saleID string) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE shop_id = $1 AND sale_id = $2;`
	m, err := scanSale(r.Pool.QueryRow(ctx, query, shopID, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find sale "+saleID, err)
	}
	d := mapping.ToDomainSale(*m)
	return &d, nil
}

// FindSalesByIDs retrieves the subset of the given IDs that exist in the shop.
func (r *PgxSaleRepository) FindSalesByIDs(ctx context.Context, shopID string, saleIDs []string) ([]domain.Sale, error) {
	if len(saleIDs) == 0 {
		return []domain.Sale{}, nil
	}
	query := `SELECT ` + saleColumns + ` FROM sales WHERE shop_id = $1 AND sale_id = ANY($2);`
	rows, err := r.Pool.Query(ctx, query, shopID, saleIDs)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query sales by IDs", err)
	}
	defer rows.Close()

	sales := []models.Sale{}
	for rows.Next() {
		m, err := scanSale(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan sale row", err)
		}
		sales = append(sales, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating sale rows", err)
	}
	return mapping.ToDomainSaleSlice(sales), nil
}

// GetBalance derives the customer's outstanding balance from the live sales
// log.
func (r *PgxSaleRepository) GetBalance(ctx context.Context, shopID, customerID string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	if err := r.Pool.QueryRow(ctx, balanceQuery, shopID, customerID).Scan(&balance); err != nil {
		return decimal.Zero, apperrors.NewAppError(500, "failed to compute balance for customer "+customerID, err)
	}
	return balance, nil
}

// ListSales retrieves a filtered, cursor-paginated page of sales for a shop,
// newest first, with the customer's name and phone joined in.
func (r *PgxSaleRepository) ListSales(ctx context.Context, shopID string, filter domain.SaleFilter, limit int, nextToken *string) ([]domain.Sale, *string, error) {
	// Default limit handling
	if limit <= 0 {
		limit = 20
	}
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1

	baseQuery := `
		SELECT s.sale_id, s.shop_id, s.customer_id, s.amount, s.payment_type, s.source, s.notes, s.tags,
		       s.created_at, s.created_by, s.last_updated_at, s.last_updated_by, s.edited_at, s.edited_by, s.edit_reason,
		       COALESCE(c.name, ''), COALESCE(c.phone, '')
		FROM sales s
		LEFT JOIN customers c ON s.customer_id = c.customer_id
		WHERE s.shop_id = $1
	`
	args := []interface{}{shopID}

	addCondition := func(clause string, value interface{}) {
		args = append(args, value)
		baseQuery += " AND " + clause + "$" + strconv.Itoa(len(args))
	}

	if filter.PaymentType != nil {
		addCondition("s.payment_type = ", string(*filter.PaymentType))
	}
	if filter.CustomerID != nil {
		addCondition("s.customer_id = ", *filter.CustomerID)
	}
	if filter.From != nil {
		addCondition("s.created_at >= ", *filter.From)
	}
	if filter.To != nil {
		addCondition("s.created_at <= ", *filter.To)
	}
	if filter.MinAmount != nil {
		addCondition("s.amount >= ", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		addCondition("s.amount <= ", *filter.MaxAmount)
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := "$" + strconv.Itoa(len(args))
		baseQuery += " AND (s.sale_id ILIKE " + p + " OR s.notes ILIKE " + p + " OR c.name ILIKE " + p + " OR c.phone ILIKE " + p + ")"
	}

	// Ordering is crucial and must be stable. Newest first, with sale_id as a
	// tie-breaker for rows created in the same instant.
	if nextToken != nil && *nextToken != "" {
		lastCreatedAt, lastSaleID, decodeErr := pagination.DecodeToken(*nextToken)
		if decodeErr != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", decodeErr)
		}
		args = append(args, lastCreatedAt, lastSaleID)
		baseQuery += " AND (s.created_at, s.sale_id) < ($" + strconv.Itoa(len(args)-1) + ", $" + strconv.Itoa(len(args)) + ")"
	}

	args = append(args, fetchLimit)
	query := baseQuery + " ORDER BY s.created_at DESC, s.sale_id DESC LIMIT $" + strconv.Itoa(len(args)) + ";"

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, apperrors.NewAppError(500, "failed to query sales for shop "+shopID, err)
	}
	defer rows.Close()

	sales := make([]models.Sale, 0, fetchLimit)
	for rows.Next() {
		var s models.Sale
		err := rows.Scan(
			&s.SaleID,
			&s.ShopID,
			&s.CustomerID,
			&s.Amount,
			&s.PaymentType,
			&s.Source,
			&s.Notes,
			&s.Tags,
			&s.CreatedAt,
			&s.CreatedBy,
			&s.LastUpdatedAt,
			&s.LastUpdatedBy,
			&s.EditedAt,
			&s.EditedBy,
			&s.EditReason,
			&s.CustomerName,
			&s.CustomerPhone,
		)
		if err != nil {
			return nil, nil, apperrors.NewAppError(500, "failed to scan sale row for shop "+shopID, err)
		}
		sales = append(sales, s)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, apperrors.NewAppError(500, "error iterating sale rows for shop "+shopID, err)
	}

	// Determine the next token
	var nextTokenVal *string
	var results []models.Sale
	if len(sales) > limit {
		// The token points to the last item included in this response page; the
		// next query starts after it.
		lastSale := sales[limit-1]
		token := pagination.EncodeToken(lastSale.CreatedAt, lastSale.SaleID)
		nextTokenVal = &token
		results = sales[:limit]
	} else {
		results = sales
	}

	return mapping.ToDomainSaleSlice(results), nextTokenVal, nil
}
