package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/dto"
	"github.com/khatapp/khata_backend/internal/handlers"
	"github.com/khatapp/khata_backend/internal/middleware"
)

// --- Mock LedgerService ---
type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CalculateBalance(ctx context.Context, shopID, customerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, shopID, customerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedgerService) GetSaleByID(ctx context.Context, shopID, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, shopID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockLedgerService) ListSales(ctx context.Context, shopID string, filter domain.SaleFilter, limit int, nextToken *string) ([]domain.Sale, *string, error) {
	args := m.Called(ctx, shopID, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return args.Get(0).([]domain.Sale), next, args.Error(2)
}

func (m *MockLedgerService) GetSalesSummary(ctx context.Context, shopID string, filter domain.SaleFilter) (*domain.SalesSummary, error) {
	args := m.Called(ctx, shopID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SalesSummary), args.Error(1)
}

func (m *MockLedgerService) ListCustomerUdhaars(ctx context.Context, shopID, customerID string, openOnly bool) ([]domain.Udhaar, error) {
	args := m.Called(ctx, shopID, customerID, openOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Udhaar), args.Error(1)
}

func (m *MockLedgerService) RecordSale(ctx context.Context, shopID string, req dto.RecordSaleRequest, userID string) (*domain.Sale, error) {
	args := m.Called(ctx, shopID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockLedgerService) RecordPayment(ctx context.Context, shopID, customerID string, req dto.RecordPaymentRequest, userID string) (*dto.PaymentResult, error) {
	args := m.Called(ctx, shopID, customerID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.PaymentResult), args.Error(1)
}

func (m *MockLedgerService) UpdateSale(ctx context.Context, shopID, saleID string, req dto.UpdateSaleRequest, userID string) (*domain.Sale, error) {
	args := m.Called(ctx, shopID, saleID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockLedgerService) BulkUpdateSales(ctx context.Context, shopID string, req dto.BulkUpdateSalesRequest, userID string) (int, error) {
	args := m.Called(ctx, shopID, req, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockLedgerService) DeleteSale(ctx context.Context, shopID, saleID string, userID string) error {
	args := m.Called(ctx, shopID, saleID, userID)
	return args.Error(0)
}

func (m *MockLedgerService) DeleteSales(ctx context.Context, shopID string, saleIDs []string, userID string) (int, error) {
	args := m.Called(ctx, shopID, saleIDs, userID)
	return args.Int(0), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.LedgerSvcFacade = (*MockLedgerService)(nil)

// --- Test Suite ---
type SaleHandlerTestSuite struct {
	suite.Suite
	router            *gin.Engine
	mockLedgerService *MockLedgerService
	jwtSecret         string
}

// generateTestToken creates a dummy JWT for testing.
func (suite *SaleHandlerTestSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Issuer:    "khata-test",
		Subject:   userID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(suite.jwtSecret))
	if err != nil {
		suite.FailNow("Failed to sign test token", err.Error())
	}
	return signed
}

func (suite *SaleHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(dto.RegisterCustomValidators())

	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockLedgerService = new(MockLedgerService)

	// Mimic the shop-scoped grouping used in production route registration.
	shopGroup := suite.router.Group("/api/v1/shops/:shop_id")
	handlers.RegisterSaleRoutes(shopGroup, suite.mockLedgerService)
}

func (suite *SaleHandlerTestSuite) doJSON(method, url string, body any, userID string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(userID))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// --- Test Cases ---

func (suite *SaleHandlerTestSuite) TestRecordSale_Success() {
	shopID := uuid.NewString()
	userID := uuid.NewString()

	expected := &domain.Sale{
		SaleID:      uuid.NewString(),
		ShopID:      shopID,
		Amount:      decimal.NewFromInt(250),
		PaymentType: domain.PaymentCash,
		Source:      domain.SourceManual,
		AuditFields: domain.AuditFields{CreatedAt: time.Now(), CreatedBy: userID},
	}

	suite.mockLedgerService.On("RecordSale",
		mock.Anything,
		shopID,
		mock.MatchedBy(func(req dto.RecordSaleRequest) bool {
			return req.Amount.Equal(decimal.NewFromInt(250)) && req.PaymentType == "CASH"
		}),
		userID,
	).Return(expected, nil).Once()

	body := gin.H{"amount": "250", "paymentType": "CASH"}
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/shops/%s/sales", shopID), body, userID)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.SaleResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(expected.SaleID, resp.SaleID)
	suite.Equal("CASH", resp.PaymentType)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *SaleHandlerTestSuite) TestRecordSale_UnknownPaymentTypeRejectedAtBinding() {
	shopID := uuid.NewString()
	userID := uuid.NewString()

	body := gin.H{"amount": "250", "paymentType": "CHEQUE"}
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/shops/%s/sales", shopID), body, userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "RecordSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleHandlerTestSuite) TestRecordSale_CreditLimitExceededConflict() {
	shopID := uuid.NewString()
	userID := uuid.NewString()
	customerID := uuid.NewString()

	creditErr := apperrors.NewCreditLimitExceeded(
		decimal.NewFromInt(400),
		decimal.NewFromInt(500),
		decimal.NewFromInt(650),
	)
	suite.mockLedgerService.On("RecordSale", mock.Anything, shopID, mock.AnythingOfType("dto.RecordSaleRequest"), userID).
		Return(nil, creditErr).Once()

	body := gin.H{"amount": "250", "paymentType": "UDHAAR", "customerID": customerID}
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/shops/%s/sales", shopID), body, userID)

	suite.Equal(http.StatusConflict, w.Code)
	var resp handlers.CreditLimitExceededResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.True(resp.ExceededBy.Equal(decimal.NewFromInt(150)))
	suite.True(resp.ProjectedBalance.Equal(decimal.NewFromInt(650)))
}

func (suite *SaleHandlerTestSuite) TestRecordSale_MissingTokenUnauthorized() {
	shopID := uuid.NewString()

	req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/shops/%s/sales", shopID), bytes.NewBufferString(`{"amount":"100","paymentType":"CASH"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "RecordSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleHandlerTestSuite) TestListSales_Success() {
	shopID := uuid.NewString()
	userID := uuid.NewString()

	sales := []domain.Sale{
		{SaleID: uuid.NewString(), ShopID: shopID, Amount: decimal.NewFromInt(100), PaymentType: domain.PaymentUPI, AuditFields: domain.AuditFields{CreatedAt: time.Now()}},
		{SaleID: uuid.NewString(), ShopID: shopID, Amount: decimal.NewFromInt(60), PaymentType: domain.PaymentCash, AuditFields: domain.AuditFields{CreatedAt: time.Now().Add(-time.Hour)}},
	}
	suite.mockLedgerService.On("ListSales",
		mock.Anything,
		shopID,
		mock.MatchedBy(func(f domain.SaleFilter) bool {
			return f.PaymentType == nil && f.CustomerID == nil
		}),
		10,
		(*string)(nil),
	).Return(sales, nil, nil).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/shops/%s/sales?limit=10", shopID), nil, userID)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.ListSalesResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Len(resp.Sales, 2)
	suite.False(resp.HasMore)
	suite.Equal(sales[0].SaleID, resp.Sales[0].SaleID)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *SaleHandlerTestSuite) TestListSales_InvalidDateFilter() {
	shopID := uuid.NewString()
	userID := uuid.NewString()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/shops/%s/sales?from=not-a-date", shopID), nil, userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "ListSales", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleHandlerTestSuite) TestUpdateSale_SettledUdhaarConflict() {
	shopID := uuid.NewString()
	saleID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("UpdateSale", mock.Anything, shopID, saleID, mock.AnythingOfType("dto.UpdateSaleRequest"), userID).
		Return(nil, apperrors.ErrUdhaarSettled).Once()

	body := gin.H{"amount": "300", "editReason": "typo in amount"}
	w := suite.doJSON(http.MethodPut, fmt.Sprintf("/api/v1/shops/%s/sales/%s", shopID, saleID), body, userID)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *SaleHandlerTestSuite) TestUpdateSale_EditReasonRequired() {
	shopID := uuid.NewString()
	saleID := uuid.NewString()
	userID := uuid.NewString()

	body := gin.H{"amount": "300"}
	w := suite.doJSON(http.MethodPut, fmt.Sprintf("/api/v1/shops/%s/sales/%s", shopID, saleID), body, userID)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockLedgerService.AssertNotCalled(suite.T(), "UpdateSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleHandlerTestSuite) TestBulkUpdateSales_ReportsEveryFailure() {
	shopID := uuid.NewString()
	userID := uuid.NewString()
	saleA := "sale-a"
	saleB := "sale-b"

	bulkErr := &apperrors.BulkOperationError{Failures: map[string]error{
		saleB: apperrors.ErrNotFound,
		saleA: apperrors.ErrUdhaarSettled,
	}}
	suite.mockLedgerService.On("BulkUpdateSales", mock.Anything, shopID, mock.AnythingOfType("dto.BulkUpdateSalesRequest"), userID).
		Return(0, bulkErr).Once()

	body := gin.H{"saleIDs": []string{saleA, saleB}, "tags": []string{"festival"}}
	w := suite.doJSON(http.MethodPost, fmt.Sprintf("/api/v1/shops/%s/sales/bulk-update", shopID), body, userID)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
	var resp handlers.BulkOperationErrorResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp.Failures, 2)
	// Failures come back sorted by sale ID.
	suite.Equal(saleA, resp.Failures[0].SaleID)
	suite.Equal(saleB, resp.Failures[1].SaleID)
}

func (suite *SaleHandlerTestSuite) TestDeleteSale_Forbidden() {
	shopID := uuid.NewString()
	saleID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("DeleteSale", mock.Anything, shopID, saleID, userID).
		Return(apperrors.ErrForbidden).Once()

	w := suite.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/shops/%s/sales/%s", shopID, saleID), nil, userID)

	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *SaleHandlerTestSuite) TestDeleteSale_NoContentOnSuccess() {
	shopID := uuid.NewString()
	saleID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("DeleteSale", mock.Anything, shopID, saleID, userID).
		Return(nil).Once()

	w := suite.doJSON(http.MethodDelete, fmt.Sprintf("/api/v1/shops/%s/sales/%s", shopID, saleID), nil, userID)

	suite.Equal(http.StatusNoContent, w.Code)
	suite.mockLedgerService.AssertExpectations(suite.T())
}

func (suite *SaleHandlerTestSuite) TestGetSale_NotFound() {
	shopID := uuid.NewString()
	saleID := uuid.NewString()
	userID := uuid.NewString()

	suite.mockLedgerService.On("GetSaleByID", mock.Anything, shopID, saleID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.doJSON(http.MethodGet, fmt.Sprintf("/api/v1/shops/%s/sales/%s", shopID, saleID), nil, userID)

	suite.Equal(http.StatusNotFound, w.Code)
}

// --- Run Test Suite ---
func TestSaleHandler(t *testing.T) {
	suite.Run(t, new(SaleHandlerTestSuite))
}
