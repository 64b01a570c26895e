package mapping

import (
	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/khatapp/khata_backend/internal/models"
)

// ToModelSale converts a domain Sale to a model Sale
func ToModelSale(d domain.Sale) models.Sale {
	return models.Sale{
		SaleID:        d.SaleID,
		ShopID:        d.ShopID,
		CustomerID:    d.CustomerID,
		Amount:        d.Amount,
		PaymentType:   models.PaymentType(d.PaymentType),
		Source:        models.SaleSource(d.Source),
		Notes:         d.Notes,
		Tags:          d.Tags,
		AuditFields:   ToModelAuditFields(d.AuditFields),
		EditedAt:      d.EditedAt,
		EditedBy:      d.EditedBy,
		EditReason:    d.EditReason,
		CustomerName:  d.CustomerName,
		CustomerPhone: d.CustomerPhone,
	}
}

// ToDomainSale converts a model Sale to a domain Sale
func ToDomainSale(m models.Sale) domain.Sale {
	return domain.Sale{
		SaleID:        m.SaleID,
		ShopID:        m.ShopID,
		CustomerID:    m.CustomerID,
		Amount:        m.Amount,
		PaymentType:   domain.PaymentType(m.PaymentType),
		Source:        domain.SaleSource(m.Source),
		Notes:         m.Notes,
		Tags:          m.Tags,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
		EditedAt:      m.EditedAt,
		EditedBy:      m.EditedBy,
		EditReason:    m.EditReason,
		CustomerName:  m.CustomerName,
		CustomerPhone: m.CustomerPhone,
	}
}

// ToDomainSaleSlice converts a slice of model Sales to a slice of domain Sales
func ToDomainSaleSlice(ms []models.Sale) []domain.Sale {
	ds := make([]domain.Sale, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainSale(m)
	}
	return ds
}
