package handlers

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/khatapp/khata_backend/internal/core/domain"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/khatapp/khata_backend/internal/middleware"
	"github.com/khatapp/khata_backend/internal/utils"
)

// saleHandler handles HTTP requests related to sales and the ledger.
type saleHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

// newSaleHandler creates a new saleHandler.
func newSaleHandler(ls portssvc.LedgerSvcFacade) *saleHandler {
	return &saleHandler{
		ledgerService: ls,
	}
}

// RegisterSaleRoutes registers the sale routes nested under a specific shop.
func RegisterSaleRoutes(shopGroup *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade) {
	h := newSaleHandler(ledgerService)

	sales := shopGroup.Group("/sales")
	{
		sales.POST("", h.recordSale)
		sales.GET("", h.listSales)
		sales.GET("/summary", h.getSalesSummary)
		sales.GET("/export", h.exportSalesCSV)
		sales.POST("/bulk-update", h.bulkUpdateSales)
		sales.POST("/bulk-delete", h.bulkDeleteSales)
		sales.GET("/:sale_id", h.getSale)
		sales.PUT("/:sale_id", h.updateSale)
		sales.DELETE("/:sale_id", h.deleteSale)
	}
}

// recordSale godoc
// @Summary Record a new sale
// @Description Records a sale in the shop's ledger. UDHAAR sales require a customer and are checked against the customer's credit limit unless bypassCreditLimit is set.
// @Tags sales
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param sale body dto.RecordSaleRequest true "Sale details"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} CreditLimitExceededResponse "Credit limit exceeded"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales [post]
func (h *saleHandler) recordSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shopID := c.Param("shop_id")

	var req dto.RecordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recordSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	sale, err := h.ledgerService.RecordSale(c.Request.Context(), shopID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToSaleResponse(sale))
}

// getSale godoc
// @Summary Get a sale
// @Description Retrieves one sale within the shop scope.
// @Tags sales
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param sale_id path string true "Sale ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} ErrorResponse "Sale not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales/{sale_id} [get]
func (h *saleHandler) getSale(c *gin.Context) {
	shopID := c.Param("shop_id")
	saleID := c.Param("sale_id")

	sale, err := h.ledgerService.GetSaleByID(c.Request.Context(), shopID, saleID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}

// listSales godoc
// @Summary List sales
// @Description Retrieves a filtered, cursor-paginated page of the shop's sales, newest first.
// @Tags sales
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param paymentType query string false "Filter by payment type (CASH, UPI, UDHAAR)"
// @Param customerID query string false "Filter by customer"
// @Param from query string false "Inclusive lower date bound (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Inclusive upper date bound (RFC3339 or YYYY-MM-DD)"
// @Param minAmount query string false "Minimum amount"
// @Param maxAmount query string false "Maximum amount"
// @Param search query string false "Free-text search over id, notes, customer name and phone"
// @Param limit query int false "Page size" default(20)
// @Param nextToken query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListSalesResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales [get]
func (h *saleHandler) listSales(c *gin.Context) {
	shopID := c.Param("shop_id")

	var params dto.ListSalesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	filter, err := buildSaleFilter(params)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	var nextToken *string
	if params.NextToken != "" {
		nextToken = &params.NextToken
	}

	sales, next, err := h.ledgerService.ListSales(c.Request.Context(), shopID, filter, params.Limit, nextToken)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListSalesResponse(sales, next))
}

// updateSale godoc
// @Summary Amend a sale
// @Description Amends a sale and applies the credit-record transition the change requires. Amount and payment type edits fail once the sale's udhaar has been settled.
// @Tags sales
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param sale_id path string true "Sale ID"
// @Param sale body dto.UpdateSaleRequest true "Fields to amend"
// @Success 200 {object} dto.SaleResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Sale not found"
// @Failure 409 {object} ErrorResponse "Udhaar already settled"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales/{sale_id} [put]
func (h *saleHandler) updateSale(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shopID := c.Param("shop_id")
	saleID := c.Param("sale_id")

	var req dto.UpdateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateSale", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	sale, err := h.ledgerService.UpdateSale(c.Request.Context(), shopID, saleID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}

// bulkUpdateSales godoc
// @Summary Bulk-amend sales
// @Description Applies one change set to many sales, all-or-nothing. If any sale fails the whole batch is rolled back and every failure is reported.
// @Tags sales
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param request body dto.BulkUpdateSalesRequest true "Sale IDs and the change set"
// @Success 200 {object} dto.BulkResultResponse
// @Failure 422 {object} BulkOperationErrorResponse "One or more sales failed; nothing was applied"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales/bulk-update [post]
func (h *saleHandler) bulkUpdateSales(c *gin.Context) {
	shopID := c.Param("shop_id")

	var req dto.BulkUpdateSalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	count, err := h.ledgerService.BulkUpdateSales(c.Request.Context(), shopID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BulkResultResponse{Count: count})
}

// deleteSale godoc
// @Summary Delete a sale
// @Description Hard-deletes a sale and its credit record, settled or not. Admins only.
// @Tags sales
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param sale_id path string true "Sale ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Sale not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales/{sale_id} [delete]
func (h *saleHandler) deleteSale(c *gin.Context) {
	shopID := c.Param("shop_id")
	saleID := c.Param("sale_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.ledgerService.DeleteSale(c.Request.Context(), shopID, saleID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// bulkDeleteSales godoc
// @Summary Bulk-delete sales
// @Description Deletes many sales and their credit records in one transaction. IDs with no match are skipped; zero matches is not an error.
// @Tags sales
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param request body dto.BulkDeleteSalesRequest true "Sale IDs"
// @Success 200 {object} dto.BulkResultResponse
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales/bulk-delete [post]
func (h *saleHandler) bulkDeleteSales(c *gin.Context) {
	shopID := c.Param("shop_id")

	var req dto.BulkDeleteSalesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	count, err := h.ledgerService.DeleteSales(c.Request.Context(), shopID, req.SaleIDs, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BulkResultResponse{Count: count})
}

// getSalesSummary godoc
// @Summary Sales summary
// @Description Aggregates the filtered sale set: received revenue, counts, per-type totals, top customers and a trailing 7-day breakdown.
// @Tags sales
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param paymentType query string false "Filter by payment type"
// @Param customerID query string false "Filter by customer"
// @Param from query string false "Inclusive lower date bound"
// @Param to query string false "Inclusive upper date bound"
// @Success 200 {object} dto.SalesSummaryResponse
// @Security BearerAuth
// @Router /shops/{shop_id}/sales/summary [get]
func (h *saleHandler) getSalesSummary(c *gin.Context) {
	shopID := c.Param("shop_id")

	var params dto.ListSalesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	filter, err := buildSaleFilter(params)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	summary, err := h.ledgerService.GetSalesSummary(c.Request.Context(), shopID, filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToSalesSummaryResponse(summary))
}

// exportSalesCSV godoc
// @Summary Export sales as CSV
// @Description Streams the filtered sale set as a CSV download.
// @Tags sales
// @Produce text/csv
// @Param shop_id path string true "Shop ID"
// @Param paymentType query string false "Filter by payment type"
// @Param customerID query string false "Filter by customer"
// @Param from query string false "Inclusive lower date bound"
// @Param to query string false "Inclusive upper date bound"
// @Success 200 {string} string "CSV payload"
// @Security BearerAuth
// @Router /shops/{shop_id}/sales/export [get]
func (h *saleHandler) exportSalesCSV(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shopID := c.Param("shop_id")

	var params dto.ListSalesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	filter, err := buildSaleFilter(params)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	filename := fmt.Sprintf("sales-%s-%s.csv", shopID, time.Now().Format("20060102"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	w := csv.NewWriter(c.Writer)
	header := []string{"sale_id", "created_at", "customer_name", "customer_phone", "amount", "payment_type", "source", "notes", "tags"}
	if err := w.Write(header); err != nil {
		logger.Error("Failed to write CSV header", slog.String("error", err.Error()))
		return
	}

	// Page through the full result set with the same cursor the list API uses.
	const exportPageSize = 500
	var nextToken *string
	for {
		sales, next, err := h.ledgerService.ListSales(c.Request.Context(), shopID, filter, exportPageSize, nextToken)
		if err != nil {
			// Headers may already be out; all we can do is stop the stream.
			logger.Error("Failed to list sales for CSV export", slog.String("error", err.Error()))
			return
		}
		for i := range sales {
			if err := w.Write(saleCSVRow(&sales[i])); err != nil {
				logger.Error("Failed to write CSV row", slog.String("error", err.Error()))
				return
			}
		}
		if next == nil {
			break
		}
		nextToken = next
	}
	w.Flush()
}

func saleCSVRow(s *domain.Sale) []string {
	tags := ""
	for i, t := range s.Tags {
		if i > 0 {
			tags += "|"
		}
		tags += t
	}
	return []string{
		s.SaleID,
		s.CreatedAt.Format(time.RFC3339),
		s.CustomerName,
		s.CustomerPhone,
		utils.FormatMoney(s.Amount),
		string(s.PaymentType),
		string(s.Source),
		s.Notes,
		tags,
	}
}

// buildSaleFilter converts the query params into a domain filter, validating
// dates and amounts as it goes.
func buildSaleFilter(params dto.ListSalesParams) (domain.SaleFilter, error) {
	var filter domain.SaleFilter

	if params.PaymentType != "" {
		pt := domain.PaymentType(params.PaymentType)
		if !pt.Valid() {
			return filter, fmt.Errorf("unknown payment type %q", params.PaymentType)
		}
		filter.PaymentType = &pt
	}
	if params.CustomerID != "" {
		customerID := params.CustomerID
		filter.CustomerID = &customerID
	}
	if params.From != "" {
		from, err := parseDateBound(params.From, false)
		if err != nil {
			return filter, fmt.Errorf("invalid from date %q", params.From)
		}
		filter.From = &from
	}
	if params.To != "" {
		to, err := parseDateBound(params.To, true)
		if err != nil {
			return filter, fmt.Errorf("invalid to date %q", params.To)
		}
		filter.To = &to
	}
	if params.MinAmount != nil {
		min, err := decimal.NewFromString(*params.MinAmount)
		if err != nil {
			return filter, fmt.Errorf("invalid minAmount %q", *params.MinAmount)
		}
		filter.MinAmount = &min
	}
	if params.MaxAmount != nil {
		max, err := decimal.NewFromString(*params.MaxAmount)
		if err != nil {
			return filter, fmt.Errorf("invalid maxAmount %q", *params.MaxAmount)
		}
		filter.MaxAmount = &max
	}
	filter.Search = params.Search

	return filter, nil
}

// parseDateBound accepts RFC3339 or bare dates. A bare upper bound covers the
// whole day.
func parseDateBound(value string, upper bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, err
	}
	if upper {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
