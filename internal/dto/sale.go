package dto

import (
	"time"

	"github.com/khatapp/khata_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordSaleRequest defines data for recording a new sale.
type RecordSaleRequest struct {
	Amount            decimal.Decimal `json:"amount" binding:"required"`
	PaymentType       string          `json:"paymentType" binding:"required,paymenttype"`
	Source            string          `json:"source" binding:"omitempty,salesource"`
	CustomerID        *string         `json:"customerID"`
	Notes             string          `json:"notes"`
	Tags              []string        `json:"tags"`
	BypassCreditLimit bool            `json:"bypassCreditLimit"`
}

// UpdateSaleRequest defines data for amending a sale. Pointers distinguish
// omitted fields from zero values. EditReason is mandatory for the audit
// stamp.
type UpdateSaleRequest struct {
	Amount      *decimal.Decimal `json:"amount"`
	PaymentType *string          `json:"paymentType" binding:"omitempty,paymenttype"`
	Notes       *string          `json:"notes"`
	Tags        []string         `json:"tags"`
	EditReason  string           `json:"editReason" binding:"required"`
}

// BulkUpdateSalesRequest applies one change set to many sales, all-or-nothing.
type BulkUpdateSalesRequest struct {
	SaleIDs     []string `json:"saleIDs" binding:"required,min=1"`
	PaymentType *string  `json:"paymentType" binding:"omitempty,paymenttype"`
	Tags        []string `json:"tags"`
}

// BulkDeleteSalesRequest removes many sales in one call.
type BulkDeleteSalesRequest struct {
	SaleIDs []string `json:"saleIDs" binding:"required,min=1"`
}

// ListSalesParams defines the query parameters for sale listings and
// summaries. Date bounds are inclusive, RFC3339 or YYYY-MM-DD.
type ListSalesParams struct {
	PaymentType string  `form:"paymentType"`
	CustomerID  string  `form:"customerID"`
	From        string  `form:"from"`
	To          string  `form:"to"`
	MinAmount   *string `form:"minAmount"`
	MaxAmount   *string `form:"maxAmount"`
	Search      string  `form:"search"`
	Limit       int     `form:"limit,default=20"`
	NextToken   string  `form:"nextToken"`
}

// SaleResponse defines data returned for one sale.
type SaleResponse struct {
	SaleID        string          `json:"saleID"`
	ShopID        string          `json:"shopID"`
	CustomerID    *string         `json:"customerID,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	CustomerPhone string          `json:"customerPhone,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   string          `json:"paymentType"`
	Source        string          `json:"source"`
	Notes         string          `json:"notes,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CreatedBy     string          `json:"createdBy"`
	EditedAt      *time.Time      `json:"editedAt,omitempty"`
	EditedBy      *string         `json:"editedBy,omitempty"`
	EditReason    *string         `json:"editReason,omitempty"`
}

// ToSaleResponse converts a domain.Sale to its response DTO.
func ToSaleResponse(s *domain.Sale) SaleResponse {
	return SaleResponse{
		SaleID:        s.SaleID,
		ShopID:        s.ShopID,
		CustomerID:    s.CustomerID,
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		Amount:        s.Amount,
		PaymentType:   string(s.PaymentType),
		Source:        string(s.Source),
		Notes:         s.Notes,
		Tags:          s.Tags,
		CreatedAt:     s.CreatedAt,
		CreatedBy:     s.CreatedBy,
		EditedAt:      s.EditedAt,
		EditedBy:      s.EditedBy,
		EditReason:    s.EditReason,
	}
}

// ListSalesResponse wraps a page of sales with cursor metadata.
type ListSalesResponse struct {
	Sales      []SaleResponse `json:"sales"`
	NextCursor *string        `json:"nextCursor,omitempty"`
	HasMore    bool           `json:"hasMore"`
}

// ToListSalesResponse converts a page of domain sales to the response DTO.
func ToListSalesResponse(sales []domain.Sale, nextToken *string) ListSalesResponse {
	out := make([]SaleResponse, len(sales))
	for i, s := range sales {
		out[i] = ToSaleResponse(&s)
	}
	return ListSalesResponse{
		Sales:      out,
		NextCursor: nextToken,
		HasMore:    nextToken != nil,
	}
}

// BulkResultResponse reports how many items a bulk call affected.
type BulkResultResponse struct {
	Count int `json:"count"`
}
