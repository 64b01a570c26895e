package pgsql

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	"github.com/khatapp/khata_backend/internal/models"
	"github.com/khatapp/khata_backend/internal/utils/mapping"
)

type PgxShopRepository struct {
	BaseRepository
}

// newPgxShopRepository creates a new repository for shop data.
func newPgxShopRepository(pool *pgxpool.Pool) portsrepo.ShopRepositoryFacade {
	return &PgxShopRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure PgxShopRepository implements portsrepo.ShopRepositoryFacade
var _ portsrepo.ShopRepositoryFacade = (*PgxShopRepository)(nil)

const fullShopSelectQuery = `
SELECT
	s.shop_id, s.name, s.description, s.default_currency_code, s.is_active,
	s.created_at, s.created_by, s.last_updated_at, s.last_updated_by
FROM shops s
`

// getShops runs the shop select with the given filter suffix.
func (r *PgxShopRepository) getShops(ctx context.Context, filterQuery string, args ...any) ([]domain.Shop, error) {
	query := fullShopSelectQuery + filterQuery
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query shops", err)
	}
	defer rows.Close()

	shops := []models.Shop{}
	for rows.Next() {
		var s models.Shop
		err := rows.Scan(
			&s.ShopID,
			&s.Name,
			&s.Description,
			&s.DefaultCurrencyCode,
			&s.IsActive,
			&s.CreatedAt,
			&s.CreatedBy,
			&s.LastUpdatedAt,
			&s.LastUpdatedBy,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan shop row", err)
		}
		shops = append(shops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating shop rows", err)
	}

	out := make([]domain.Shop, len(shops))
	for i, s := range shops {
		out[i] = mapping.ToDomainShop(s)
	}
	return out, nil
}

// SaveShop persists a new shop.
func (r *PgxShopRepository) SaveShop(ctx context.Context, shop domain.Shop) error {
	m := mapping.ToModelShop(shop)
	query := `
		INSERT INTO shops (
			shop_id, name, description, default_currency_code, is_active,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := r.Pool.Exec(ctx, query,
		m.ShopID,
		m.Name,
		m.Description,
		m.DefaultCurrencyCode,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return apperrors.NewConflictError("shop ID " + m.ShopID + " already exists")
		}
		return apperrors.NewAppError(500, "failed to save shop "+m.ShopID, err)
	}
	return nil
}

// UpdateShop updates a shop's name, description and active flag.
func (r *PgxShopRepository) UpdateShop(ctx context.Context, shop domain.Shop) error {
	m := mapping.ToModelShop(shop)
	query := `
		UPDATE shops SET
			name = $1, description = $2, is_active = $3,
			last_updated_at = $4, last_updated_by = $5
		WHERE shop_id = $6;
	`
	tag, err := r.Pool.Exec(ctx, query,
		m.Name,
		m.Description,
		m.IsActive,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
		m.ShopID,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update shop "+m.ShopID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindShopByID retrieves a specific shop by its ID.
func (r *PgxShopRepository) FindShopByID(ctx context.Context, shopID string) (*domain.Shop, error) {
	shops, err := r.getShops(ctx, `WHERE s.shop_id = $1`, shopID)
	if err != nil {
		return nil, err
	}
	if len(shops) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &shops[0], nil
}

// ListShopsByUserID retrieves all active shops the user is a live member of.
func (r *PgxShopRepository) ListShopsByUserID(ctx context.Context, userID string) ([]domain.Shop, error) {
	filter := `
		JOIN user_shops us ON s.shop_id = us.shop_id
		WHERE us.user_id = $1 AND us.role != $2 AND s.is_active = true
		ORDER BY s.name;
	`
	return r.getShops(ctx, filter, userID, domain.RoleRemoved)
}

// AddUserToShop adds a user to a shop with a specific role. Re-adding an
// existing member updates their role instead.
func (r *PgxShopRepository) AddUserToShop(ctx context.Context, membership domain.UserShop) error {
	query := `
		INSERT INTO user_shops (user_id, shop_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, shop_id) DO UPDATE SET role = EXCLUDED.role;
	`
	_, err := r.Pool.Exec(ctx, query,
		membership.UserID,
		membership.ShopID,
		membership.Role,
		membership.JoinedAt,
	)
	if err != nil {
		return apperrors.NewAppError(500, "failed to add/update user "+membership.UserID+" in shop "+membership.ShopID, err)
	}
	return nil
}

// FindUserShopRole retrieves the role of a user in a shop.
func (r *PgxShopRepository) FindUserShopRole(ctx context.Context, userID, shopID string) (*domain.UserShop, error) {
	query := `
		SELECT user_id, shop_id, role, joined_at
		FROM user_shops
		WHERE user_id = $1 AND shop_id = $2;
	`
	var us domain.UserShop
	err := r.Pool.QueryRow(ctx, query, userID, shopID).Scan(
		&us.UserID,
		&us.ShopID,
		&us.Role,
		&us.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("user is not a member of this shop")
		}
		return nil, apperrors.NewAppError(500, "failed to find user "+userID+" shop role in "+shopID, err)
	}
	return &us, nil
}

// UpdateUserShopRole changes a user's role in a shop. Setting REMOVED revokes
// their access without erasing the membership history.
func (r *PgxShopRepository) UpdateUserShopRole(ctx context.Context, userID, shopID string, role domain.UserShopRole) error {
	query := `UPDATE user_shops SET role = $1 WHERE user_id = $2 AND shop_id = $3;`
	tag, err := r.Pool.Exec(ctx, query, role, userID, shopID)
	if err != nil {
		return apperrors.NewAppError(500, "failed to update role of user "+userID+" in shop "+shopID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// ListShopUsers retrieves all memberships of a shop with the member's name
// joined in.
func (r *PgxShopRepository) ListShopUsers(ctx context.Context, shopID string) ([]domain.UserShop, error) {
	query := `
		SELECT us.user_id, u.name, us.shop_id, us.role, us.joined_at
		FROM user_shops us
		JOIN users u ON us.user_id = u.user_id
		WHERE us.shop_id = $1
		ORDER BY us.joined_at;
	`
	rows, err := r.Pool.Query(ctx, query, shopID)
	if err != nil {
		return nil, apperrors.NewAppError(500, "failed to query users for shop "+shopID, err)
	}
	defer rows.Close()

	memberships := []domain.UserShop{}
	for rows.Next() {
		var us domain.UserShop
		err := rows.Scan(
			&us.UserID,
			&us.UserName,
			&us.ShopID,
			&us.Role,
			&us.JoinedAt,
		)
		if err != nil {
			return nil, apperrors.NewAppError(500, "failed to scan user shop row", err)
		}
		memberships = append(memberships, us)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewAppError(500, "error iterating user shop rows", err)
	}
	return memberships, nil
}
