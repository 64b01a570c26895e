package pgsql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	"github.com/khatapp/khata_backend/internal/models"
	"github.com/khatapp/khata_backend/internal/utils/mapping"
)

const customerColumns = `customer_id, shop_id, name, phone, notes, credit_limit, created_at, created_by, last_updated_at, last_updated_by, deleted_at`

type PgxCustomerRepository struct {
	BaseRepository
}

// newPgxCustomerRepository creates a new repository for customer data.
func newPgxCustomerRepository(pool *pgxpool.Pool) portsrepo.CustomerRepositoryFacade {
	return &PgxCustomerRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

var _ portsrepo.CustomerRepositoryFacade = (*PgxCustomerRepository)(nil)

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.CustomerID,
		&c.ShopID,
		&c.Name,
		&c.Phone,
		&c.Notes,
		&c.CreditLimit,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
		&c.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// FindCustomerByID retrieves a customer by ID within a shop. Soft-deleted
// customers are not returned.
func (r *PgxCustomerRepository) FindCustomerByID(ctx context.Context, shopID, customerID string) (*domain.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE shop_id = $1 AND customer_id = $2 AND deleted_at IS NULL;`
	c, err := scanCustomer(r.Pool.QueryRow(ctx, query, shopID, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, apperrors.NewAppError(500, "failed to find customer "+customerID, err)
	}
	d := mapping.ToDomainCustomer(*c)
	return &d, nil
}

// ListCustomers retrieves a paginated list of a shop's live customers,
// ordered by name.
func (r *PgxCustomerRepository) ListCustomers(ctx context.Context, shopID string, limit int, offset int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE shop_id = $1 AND deleted_at IS NULL
		ORDER BY name ASC, customer_id ASC
		LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, shopID, limit, offset)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query customers for shop "+shopID, err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan customer row", err)
		}
		customers = append(customers, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating customer rows", err)
	}
	return mapping.ToDomainCustomerSlice(customers), nil
}

// SaveCustomer persists a new customer.
func (r *PgxCustomerRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	m := mapping.ToModelCustomer(customer)
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.CustomerID,
		m.ShopID,
		m.Name,
		m.Phone,
		m.Notes,
		m.CreditLimit,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.DeletedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.ErrDuplicate
		}
		return apperrors.NewAppError(500, "failed to insert customer "+m.CustomerID, err)
	}
	return nil
}

// UpdateCustomer updates an existing customer's details, including the
// configured credit limit (nil clears it).
func (r *PgxCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	m := mapping.ToModelCustomer(customer)
	query := `
		UPDATE customers SET
			name = $1, phone = $2, notes = $3, credit_limit = $4,
			last_updated_at = $5, last_updated_by = $6
		WHERE shop_id = $7 AND customer_id = $8 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Name,
		m.Phone,
		m.Notes,
		m.CreditLimit,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.ShopID,
		m.CustomerID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update customer "+m.CustomerID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// MarkCustomerDeleted marks a customer as deleted (soft delete). Their sale
// history stays in the ledger.
func (r *PgxCustomerRepository) MarkCustomerDeleted(ctx context.Context, shopID, customerID string, deletedAt time.Time, deletedBy string) error {
	query := `
		UPDATE customers SET deleted_at = $1, last_updated_at = $1, last_updated_by = $2
		WHERE shop_id = $3 AND customer_id = $4 AND deleted_at IS NULL;
	`
	tag, err := r.Pool.Exec(ctx, query, deletedAt, deletedBy, shopID, customerID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark customer "+customerID+" deleted", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
