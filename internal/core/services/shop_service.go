package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
)

// shopService implements the ShopSvcFacade interface. It is also the
// ShopAuthorizerSvc every other service consults for role checks.
type shopService struct {
	BaseService
	shopRepo portsrepo.ShopRepositoryFacade
}

// NewShopService creates a new shop service with the provided dependencies
func NewShopService(shopRepo portsrepo.ShopRepositoryFacade) portssvc.ShopSvcFacade {
	svc := &shopService{
		shopRepo: shopRepo,
	}
	// The shop service authorizes itself.
	svc.BaseService = BaseService{ShopAuthorizer: svc}
	return svc
}

// Ensure shopService implements the ShopSvcFacade interface
var _ portssvc.ShopSvcFacade = (*shopService)(nil)

// FindShopByID retrieves a shop by its ID
func (s *shopService) FindShopByID(ctx context.Context, shopID string) (*domain.Shop, error) {
	shop, err := s.shopRepo.FindShopByID(ctx, shopID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find shop by ID",
				slog.String("shop_id", shopID))
		}
		return nil, err
	}

	s.LogDebug(ctx, "Shop retrieved successfully",
		slog.String("shop_id", shop.ShopID))
	return shop, nil
}

// ListUserShops retrieves the shops a user belongs to
func (s *shopService) ListUserShops(ctx context.Context, userID string, includeDisabled bool) ([]domain.Shop, error) {
	shops, err := s.shopRepo.ListShopsByUserID(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list shops for user",
			slog.String("user_id", userID))
		return nil, err
	}

	if !includeDisabled {
		active := shops[:0]
		for _, shop := range shops {
			if shop.IsActive {
				active = append(active, shop)
			}
		}
		shops = active
	}

	if shops == nil {
		return []domain.Shop{}, nil
	}

	s.LogDebug(ctx, "Shops listed successfully",
		slog.Int("count", len(shops)),
		slog.String("user_id", userID))
	return shops, nil
}

// ListShopUsers retrieves all memberships of a shop. Any member may look.
func (s *shopService) ListShopUsers(ctx context.Context, shopID string, requestingUserID string) ([]domain.UserShop, error) {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, shopID, domain.RoleReadOnly); err != nil {
		return nil, err
	}

	members, err := s.shopRepo.ListShopUsers(ctx, shopID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list shop users",
			slog.String("shop_id", shopID))
		return nil, err
	}
	return members, nil
}

// CreateShop creates a new shop and enrolls the creator as its admin
func (s *shopService) CreateShop(ctx context.Context, name, description, defaultCurrencyCode, creatorUserID string) (*domain.Shop, error) {
	now := time.Now()
	shopID := uuid.NewString()

	shop := domain.Shop{
		ShopID:      shopID,
		Name:        name,
		Description: description,
		IsActive:    true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if defaultCurrencyCode != "" {
		shop.DefaultCurrencyCode = &defaultCurrencyCode
	}

	err := s.shopRepo.SaveShop(ctx, shop)
	if err != nil {
		s.LogError(ctx, err, "Failed to save shop",
			slog.String("shop_id", shop.ShopID))
		return nil, err
	}

	// Add creator as an admin to the new shop
	membershipErr := s.AddUserToShop(ctx, creatorUserID, creatorUserID, shopID, domain.RoleAdmin)
	if membershipErr != nil {
		s.LogError(ctx, membershipErr, "Failed to add creator as admin to new shop",
			slog.String("shop_id", shop.ShopID),
			slog.String("user_id", creatorUserID))
		return nil, fmt.Errorf("shop created but admin membership failed: %w", membershipErr)
	}

	s.LogInfo(ctx, "Shop created successfully",
		slog.String("shop_id", shop.ShopID),
		slog.String("creator_id", creatorUserID))
	return &shop, nil
}

// DeactivateShop marks a shop as inactive. Admins only.
func (s *shopService) DeactivateShop(ctx context.Context, shopID string, requestingUserID string) error {
	return s.setShopActive(ctx, shopID, requestingUserID, false)
}

// ActivateShop marks a shop as active again. Admins only.
func (s *shopService) ActivateShop(ctx context.Context, shopID string, requestingUserID string) error {
	return s.setShopActive(ctx, shopID, requestingUserID, true)
}

func (s *shopService) setShopActive(ctx context.Context, shopID, requestingUserID string, active bool) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, shopID, domain.RoleAdmin); err != nil {
		return err
	}

	shop, err := s.shopRepo.FindShopByID(ctx, shopID)
	if err != nil {
		return err
	}
	if shop.IsActive == active {
		return nil
	}

	shop.IsActive = active
	shop.LastUpdatedAt = time.Now()
	shop.LastUpdatedBy = requestingUserID

	if err := s.shopRepo.UpdateShop(ctx, *shop); err != nil {
		s.LogError(ctx, err, "Failed to update shop active flag",
			slog.String("shop_id", shopID),
			slog.Bool("active", active))
		return err
	}

	s.LogInfo(ctx, "Shop active flag updated",
		slog.String("shop_id", shopID),
		slog.Bool("active", active))
	return nil
}

// AddUserToShop adds a user to a shop with a specific role
func (s *shopService) AddUserToShop(ctx context.Context, addingUserID, targetUserID, shopID string, role domain.UserShopRole) error {
	// Check if adding user has permission (must be admin)
	if addingUserID != targetUserID { // Self-assignment is permitted (e.g., creator adding self as admin)
		err := s.AuthorizeUserAction(ctx, addingUserID, shopID, domain.RoleAdmin)
		if err != nil {
			s.LogError(ctx, err, "User not authorized to add members to shop",
				slog.String("adding_user_id", addingUserID),
				slog.String("shop_id", shopID))
			return err
		}
	}

	if role == domain.RoleRemoved {
		return fmt.Errorf("%w: cannot add a user with the REMOVED role", apperrors.ErrValidation)
	}

	// Create membership
	membership := domain.UserShop{
		UserID:   targetUserID,
		ShopID:   shopID,
		Role:     role,
		JoinedAt: time.Now(),
	}

	err := s.shopRepo.AddUserToShop(ctx, membership)
	if err != nil {
		s.LogError(ctx, err, "Failed to add user to shop",
			slog.String("target_user_id", targetUserID),
			slog.String("shop_id", shopID))
		return err
	}

	s.LogInfo(ctx, "User added to shop successfully",
		slog.String("target_user_id", targetUserID),
		slog.String("shop_id", shopID),
		slog.String("role", string(role)))
	return nil
}

// RemoveUserFromShop revokes a user's shop membership. Admins only. The
// membership row survives with the REMOVED role so history keeps its author.
func (s *shopService) RemoveUserFromShop(ctx context.Context, requestingUserID, targetUserID, shopID string) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, shopID, domain.RoleAdmin); err != nil {
		return err
	}

	if requestingUserID == targetUserID {
		if err := s.ensureAnotherAdmin(ctx, shopID, targetUserID); err != nil {
			return err
		}
	}

	err := s.shopRepo.UpdateUserShopRole(ctx, targetUserID, shopID, domain.RoleRemoved)
	if err != nil {
		s.LogError(ctx, err, "Failed to remove user from shop",
			slog.String("target_user_id", targetUserID),
			slog.String("shop_id", shopID))
		return err
	}

	s.LogInfo(ctx, "User removed from shop",
		slog.String("target_user_id", targetUserID),
		slog.String("shop_id", shopID))
	return nil
}

// UpdateUserShopRole changes a user's role in a shop. Admins only.
func (s *shopService) UpdateUserShopRole(ctx context.Context, requestingUserID, targetUserID, shopID string, newRole domain.UserShopRole) error {
	if err := s.AuthorizeUserAction(ctx, requestingUserID, shopID, domain.RoleAdmin); err != nil {
		return err
	}

	if newRole == domain.RoleRemoved {
		return fmt.Errorf("%w: use the remove operation to revoke membership", apperrors.ErrValidation)
	}

	// An admin demoting themselves must leave another admin behind.
	if requestingUserID == targetUserID && newRole != domain.RoleAdmin {
		if err := s.ensureAnotherAdmin(ctx, shopID, targetUserID); err != nil {
			return err
		}
	}

	err := s.shopRepo.UpdateUserShopRole(ctx, targetUserID, shopID, newRole)
	if err != nil {
		s.LogError(ctx, err, "Failed to update user shop role",
			slog.String("target_user_id", targetUserID),
			slog.String("shop_id", shopID),
			slog.String("new_role", string(newRole)))
		return err
	}

	s.LogInfo(ctx, "User shop role updated",
		slog.String("target_user_id", targetUserID),
		slog.String("shop_id", shopID),
		slog.String("new_role", string(newRole)))
	return nil
}

func (s *shopService) ensureAnotherAdmin(ctx context.Context, shopID, exceptUserID string) error {
	members, err := s.shopRepo.ListShopUsers(ctx, shopID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.UserID != exceptUserID && m.Role == domain.RoleAdmin {
			return nil
		}
	}
	return fmt.Errorf("%w: shop must retain at least one admin", apperrors.ErrValidation)
}

// AuthorizeUserAction checks if a user has required permissions for a shop
func (s *shopService) AuthorizeUserAction(ctx context.Context, userID, shopID string, requiredRole domain.UserShopRole) error {
	membership, err := s.shopRepo.FindUserShopRole(ctx, userID, shopID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.LogDebug(ctx, "User not a member of shop",
				slog.String("user_id", userID),
				slog.String("shop_id", shopID))
			return apperrors.ErrForbidden
		}
		s.LogError(ctx, err, "Failed to find user shop role",
			slog.String("user_id", userID),
			slog.String("shop_id", shopID))
		return err
	}

	// Check if user has required role or higher
	if !hasRequiredRole(membership.Role, requiredRole) {
		s.LogDebug(ctx, "User does not have required role",
			slog.String("user_id", userID),
			slog.String("shop_id", shopID),
			slog.String("user_role", string(membership.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.ErrForbidden
	}

	return nil
}

// hasRequiredRole checks if the user's role meets or exceeds the required role
func hasRequiredRole(userRole, requiredRole domain.UserShopRole) bool {
	if userRole == domain.RoleRemoved {
		return false
	}
	switch requiredRole {
	case domain.RoleReadOnly:
		return userRole == domain.RoleReadOnly || userRole == domain.RoleStaff || userRole == domain.RoleAdmin
	case domain.RoleStaff:
		return userRole == domain.RoleStaff || userRole == domain.RoleAdmin
	case domain.RoleAdmin:
		return userRole == domain.RoleAdmin
	default:
		return false
	}
}
