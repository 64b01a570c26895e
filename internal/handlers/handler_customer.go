package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/khatapp/khata_backend/internal/core/domain"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/khatapp/khata_backend/internal/middleware"
)

// customerHandler handles HTTP requests related to a shop's customers,
// including their balances, credit records and payments.
type customerHandler struct {
	customerService portssvc.CustomerSvcFacade
	ledgerService   portssvc.LedgerSvcFacade
}

// newCustomerHandler creates a new customerHandler.
func newCustomerHandler(cs portssvc.CustomerSvcFacade, ls portssvc.LedgerSvcFacade) *customerHandler {
	return &customerHandler{
		customerService: cs,
		ledgerService:   ls,
	}
}

// registerCustomerRoutes registers the customer routes nested under a shop.
func registerCustomerRoutes(shopGroup *gin.RouterGroup, customerService portssvc.CustomerSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := newCustomerHandler(customerService, ledgerService)

	customers := shopGroup.Group("/customers")
	{
		customers.POST("", h.createCustomer)
		customers.GET("", h.listCustomers)
		customers.GET("/:customer_id", h.getCustomer)
		customers.PUT("/:customer_id", h.updateCustomer)
		customers.DELETE("/:customer_id", h.deleteCustomer)
		customers.GET("/:customer_id/balance", h.getCustomerBalance)
		customers.GET("/:customer_id/udhaars", h.listCustomerUdhaars)
		customers.POST("/:customer_id/payments", h.recordPayment)
	}
}

// createCustomer godoc
// @Summary Create a customer
// @Description Creates a customer in the shop's directory, optionally with a credit limit.
// @Tags customers
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param customer body dto.CreateCustomerRequest true "Customer details"
// @Success 201 {object} dto.CustomerResponse
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "Phone already registered in this shop"
// @Security BearerAuth
// @Router /shops/{shop_id}/customers [post]
func (h *customerHandler) createCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shopID := c.Param("shop_id")

	var req dto.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for createCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	customer, err := h.customerService.CreateCustomer(c.Request.Context(), shopID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToCustomerResponse(customer))
}

// listCustomers godoc
// @Summary List customers
// @Description Retrieves the shop's customers ordered by name.
// @Tags customers
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param limit query int false "Page size" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListCustomersResponse
// @Security BearerAuth
// @Router /shops/{shop_id}/customers [get]
func (h *customerHandler) listCustomers(c *gin.Context) {
	shopID := c.Param("shop_id")

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	customers, err := h.customerService.ListCustomers(c.Request.Context(), shopID, limit, offset, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListCustomersResponse(customers))
}

// getCustomer godoc
// @Summary Get a customer
// @Tags customers
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/customers/{customer_id} [get]
func (h *customerHandler) getCustomer(c *gin.Context) {
	shopID := c.Param("shop_id")
	customerID := c.Param("customer_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	customer, err := h.customerService.GetCustomerByID(c.Request.Context(), shopID, customerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// updateCustomer godoc
// @Summary Update a customer
// @Description Updates a customer's details. Set clearCreditLimit to remove the credit ceiling.
// @Tags customers
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param customer_id path string true "Customer ID"
// @Param customer body dto.UpdateCustomerRequest true "Fields to update"
// @Success 200 {object} dto.CustomerResponse
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/customers/{customer_id} [put]
func (h *customerHandler) updateCustomer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shopID := c.Param("shop_id")
	customerID := c.Param("customer_id")

	var req dto.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for updateCustomer", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	customer, err := h.customerService.UpdateCustomer(c.Request.Context(), shopID, customerID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCustomerResponse(customer))
}

// deleteCustomer godoc
// @Summary Delete a customer
// @Description Soft-deletes a customer. Their sale history stays in the ledger. Admins only.
// @Tags customers
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param customer_id path string true "Customer ID"
// @Success 204 "Deleted"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/customers/{customer_id} [delete]
func (h *customerHandler) deleteCustomer(c *gin.Context) {
	shopID := c.Param("shop_id")
	customerID := c.Param("customer_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	if err := h.customerService.DeleteCustomer(c.Request.Context(), shopID, customerID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// getCustomerBalance godoc
// @Summary Get a customer's outstanding balance
// @Description Derives the balance from the live sales log. Positive means the customer owes the shop.
// @Tags customers
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param customer_id path string true "Customer ID"
// @Success 200 {object} dto.BalanceResponse
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/customers/{customer_id}/balance [get]
func (h *customerHandler) getCustomerBalance(c *gin.Context) {
	shopID := c.Param("shop_id")
	customerID := c.Param("customer_id")

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	balance, err := h.customerService.GetCustomerBalance(c.Request.Context(), shopID, customerID, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		ShopID:     shopID,
		CustomerID: customerID,
		Balance:    balance,
	})
}

// listCustomerUdhaars godoc
// @Summary List a customer's credit records
// @Description Retrieves the customer's udhaar records, newest first, settled and open alike. Pass status=OPEN to get only the outstanding records, oldest first.
// @Tags customers
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param customer_id path string true "Customer ID"
// @Param status query string false "Filter to OPEN records only"
// @Success 200 {array} dto.UdhaarResponse
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/customers/{customer_id}/udhaars [get]
func (h *customerHandler) listCustomerUdhaars(c *gin.Context) {
	shopID := c.Param("shop_id")
	customerID := c.Param("customer_id")
	openOnly := strings.EqualFold(c.Query("status"), string(domain.UdhaarOpen))

	udhaars, err := h.ledgerService.ListCustomerUdhaars(c.Request.Context(), shopID, customerID, openOnly)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]dto.UdhaarResponse, len(udhaars))
	for i := range udhaars {
		out[i] = dto.ToUdhaarResponse(&udhaars[i])
	}
	c.JSON(http.StatusOK, out)
}

// recordPayment godoc
// @Summary Record a payment from a customer
// @Description Commits a CASH/UPI payment and reconciles the customer's open credit records oldest-first in the same transaction. Overpayments and advance payments are allowed.
// @Tags customers
// @Accept json
// @Produce json
// @Param shop_id path string true "Shop ID"
// @Param customer_id path string true "Customer ID"
// @Param payment body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResult
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Customer not found"
// @Security BearerAuth
// @Router /shops/{shop_id}/customers/{customer_id}/payments [post]
func (h *customerHandler) recordPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	shopID := c.Param("shop_id")
	customerID := c.Param("customer_id")

	var req dto.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for recordPayment", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	result, err := h.ledgerService.RecordPayment(c.Request.Context(), shopID, customerID, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}
