package mapping

import (
	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/khatapp/khata_backend/internal/models"
)

// ToModelUdhaar converts a domain Udhaar to a model Udhaar
func ToModelUdhaar(d domain.Udhaar) models.Udhaar {
	return models.Udhaar{
		UdhaarID:    d.UdhaarID,
		ShopID:      d.ShopID,
		CustomerID:  d.CustomerID,
		SaleID:      d.SaleID,
		Amount:      d.Amount,
		Status:      models.UdhaarStatus(d.Status),
		ClosedAt:    d.ClosedAt,
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainUdhaar converts a model Udhaar to a domain Udhaar
func ToDomainUdhaar(m models.Udhaar) domain.Udhaar {
	return domain.Udhaar{
		UdhaarID:    m.UdhaarID,
		ShopID:      m.ShopID,
		CustomerID:  m.CustomerID,
		SaleID:      m.SaleID,
		Amount:      m.Amount,
		Status:      domain.UdhaarStatus(m.Status),
		ClosedAt:    m.ClosedAt,
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainUdhaarSlice converts a slice of model Udhaars to a slice of domain Udhaars
func ToDomainUdhaarSlice(ms []models.Udhaar) []domain.Udhaar {
	ds := make([]domain.Udhaar, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainUdhaar(m)
	}
	return ds
}
