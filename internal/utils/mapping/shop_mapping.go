package mapping

import (
	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/khatapp/khata_backend/internal/models"
)

// ToModelShop converts a domain Shop to a model Shop
func ToModelShop(d domain.Shop) models.Shop {
	return models.Shop{
		ShopID:              d.ShopID,
		Name:                d.Name,
		Description:         d.Description,
		DefaultCurrencyCode: d.DefaultCurrencyCode,
		IsActive:            d.IsActive,
		AuditFields:         ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainShop converts a model Shop to a domain Shop
func ToDomainShop(m models.Shop) domain.Shop {
	return domain.Shop{
		ShopID:              m.ShopID,
		Name:                m.Name,
		Description:         m.Description,
		DefaultCurrencyCode: m.DefaultCurrencyCode,
		IsActive:            m.IsActive,
		AuditFields:         ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainUserShop converts a model UserShop to a domain UserShop. UserName is
// a joined column and is left for the caller to fill.
func ToDomainUserShop(m models.UserShop) domain.UserShop {
	return domain.UserShop{
		UserID:   m.UserID,
		ShopID:   m.ShopID,
		Role:     domain.UserShopRole(m.Role),
		JoinedAt: m.JoinedAt,
	}
}
