package handlers

import (
	"errors"
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/khatapp/khata_backend/internal/apperrors"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// CreditLimitExceededResponse is the structured payload returned when an
// UDHAAR sale would push a customer past their credit limit. It carries
// everything a client needs to offer an explicit override flow.
type CreditLimitExceededResponse struct {
	Error            string          `json:"error"`
	CurrentBalance   decimal.Decimal `json:"currentBalance"`
	CreditLimit      decimal.Decimal `json:"creditLimit"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	ExceededBy       decimal.Decimal `json:"exceededBy"`
}

// BulkFailure reports one failing item of an all-or-nothing batch.
type BulkFailure struct {
	SaleID string `json:"saleID"`
	Reason string `json:"reason"`
}

// BulkOperationErrorResponse reports every failing item of a rolled-back batch.
type BulkOperationErrorResponse struct {
	Error    string        `json:"error"`
	Failures []BulkFailure `json:"failures"`
}

// respondError maps a service error to its HTTP response. Handlers call this
// for every error path so status codes stay consistent across the API.
func respondError(c *gin.Context, err error) {
	var creditErr *apperrors.CreditLimitExceededError
	if errors.As(err, &creditErr) {
		c.JSON(http.StatusConflict, CreditLimitExceededResponse{
			Error:            "credit limit exceeded",
			CurrentBalance:   creditErr.CurrentBalance,
			CreditLimit:      creditErr.CreditLimit,
			ProjectedBalance: creditErr.ProjectedBalance,
			ExceededBy:       creditErr.ExceededBy,
		})
		return
	}

	var bulkErr *apperrors.BulkOperationError
	if errors.As(err, &bulkErr) {
		ids := make([]string, 0, len(bulkErr.Failures))
		for id := range bulkErr.Failures {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		failures := make([]BulkFailure, 0, len(ids))
		for _, id := range ids {
			failures = append(failures, BulkFailure{SaleID: id, Reason: bulkErr.Failures[id].Error()})
		}
		c.JSON(http.StatusUnprocessableEntity, BulkOperationErrorResponse{
			Error:    "bulk operation failed, no changes were applied",
			Failures: failures,
		})
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		c.JSON(appErr.Code, ErrorResponse{Error: appErr.Message})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "resource not found"})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "forbidden"})
	case errors.Is(err, apperrors.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	case errors.Is(err, apperrors.ErrRefreshTokenExpired):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "refresh token expired"})
	case errors.Is(err, apperrors.ErrUdhaarSettled):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "udhaar record is already settled"})
	case errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "resource already exists"})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
	}
}
