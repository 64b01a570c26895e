package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portsrepo "github.com/khatapp/khata_backend/internal/core/ports/repositories"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/core/services"
	"github.com/khatapp/khata_backend/internal/dto"
)

// MockSaleRepository is a mock type for the SaleRepositoryWithTx interface
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindSaleByID(ctx context.Context, shopID, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, shopID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindSalesByIDs(ctx context.Context, shopID string, saleIDs []string) ([]domain.Sale, error) {
	args := m.Called(ctx, shopID, saleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) GetBalance(ctx context.Context, shopID, customerID string) (decimal.Decimal, error) {
	args := m.Called(ctx, shopID, customerID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockSaleRepository) ListSales(ctx context.Context, shopID string, filter domain.SaleFilter, limit int, nextToken *string) ([]domain.Sale, *string, error) {
	args := m.Called(ctx, shopID, filter, limit, nextToken)
	var sales []domain.Sale
	if args.Get(0) != nil {
		sales = args.Get(0).([]domain.Sale)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return sales, next, args.Error(2)
}

func (m *MockSaleRepository) SaveSale(ctx context.Context, sale domain.Sale, udhaar *domain.Udhaar, check *portsrepo.CreditCheck) error {
	args := m.Called(ctx, sale, udhaar, check)
	return args.Error(0)
}

func (m *MockSaleRepository) SavePayment(ctx context.Context, payment domain.Sale) ([]domain.Udhaar, error) {
	args := m.Called(ctx, payment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Udhaar), args.Error(1)
}

func (m *MockSaleRepository) UpdateSale(ctx context.Context, update portsrepo.SaleUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockSaleRepository) BulkUpdateSales(ctx context.Context, shopID string, updates []portsrepo.SaleUpdate) error {
	args := m.Called(ctx, shopID, updates)
	return args.Error(0)
}

func (m *MockSaleRepository) DeleteSale(ctx context.Context, shopID, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, shopID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) DeleteSales(ctx context.Context, shopID string, saleIDs []string) ([]domain.Sale, error) {
	args := m.Called(ctx, shopID, saleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockSaleRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockSaleRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockUdhaarRepository is a mock type for the UdhaarRepositoryFacade interface
type MockUdhaarRepository struct {
	mock.Mock
}

func (m *MockUdhaarRepository) ListOpenByCustomer(ctx context.Context, shopID, customerID string) ([]domain.Udhaar, error) {
	args := m.Called(ctx, shopID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Udhaar), args.Error(1)
}

func (m *MockUdhaarRepository) ListByCustomer(ctx context.Context, shopID, customerID string) ([]domain.Udhaar, error) {
	args := m.Called(ctx, shopID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Udhaar), args.Error(1)
}

func (m *MockUdhaarRepository) FindBySaleIDForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Udhaar, error) {
	args := m.Called(ctx, tx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Udhaar), args.Error(1)
}

func (m *MockUdhaarRepository) ListOpenByCustomerForUpdate(ctx context.Context, tx pgx.Tx, shopID, customerID string) ([]domain.Udhaar, error) {
	args := m.Called(ctx, tx, shopID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Udhaar), args.Error(1)
}

func (m *MockUdhaarRepository) CreateInTx(ctx context.Context, tx pgx.Tx, udhaar domain.Udhaar) error {
	args := m.Called(ctx, tx, udhaar)
	return args.Error(0)
}

func (m *MockUdhaarRepository) UpdateAmountInTx(ctx context.Context, tx pgx.Tx, udhaarID string, amount decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, tx, udhaarID, amount, userID, now)
	return args.Error(0)
}

func (m *MockUdhaarRepository) MarkPaidInTx(ctx context.Context, tx pgx.Tx, udhaarIDs []string, closedAt time.Time, userID string) error {
	args := m.Called(ctx, tx, udhaarIDs, closedAt, userID)
	return args.Error(0)
}

func (m *MockUdhaarRepository) DeleteInTx(ctx context.Context, tx pgx.Tx, udhaarID string) error {
	args := m.Called(ctx, tx, udhaarID)
	return args.Error(0)
}

func (m *MockUdhaarRepository) DeleteBySaleIDsInTx(ctx context.Context, tx pgx.Tx, saleIDs []string) error {
	args := m.Called(ctx, tx, saleIDs)
	return args.Error(0)
}

// MockCustomerRepository is a mock type for the CustomerRepositoryFacade interface
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindCustomerByID(ctx context.Context, shopID, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, shopID, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) ListCustomers(ctx context.Context, shopID string, limit int, offset int) ([]domain.Customer, error) {
	args := m.Called(ctx, shopID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Customer), args.Error(1)
}

func (m *MockCustomerRepository) SaveCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) UpdateCustomer(ctx context.Context, customer domain.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) MarkCustomerDeleted(ctx context.Context, shopID, customerID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, shopID, customerID, deletedAt, deletedBy)
	return args.Error(0)
}

// MockShopAuthorizer is a mock type for the ShopAuthorizerSvc interface
type MockShopAuthorizer struct {
	mock.Mock
}

func (m *MockShopAuthorizer) AuthorizeUserAction(ctx context.Context, userID, shopID string, requiredRole domain.UserShopRole) error {
	args := m.Called(ctx, userID, shopID, requiredRole)
	return args.Error(0)
}

// MockAnalyticsService is a mock type for the AnalyticsSvc interface
type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) TrackSale(ctx context.Context, shopID string, amount, profit decimal.Decimal) error {
	args := m.Called(ctx, shopID, amount, profit)
	return args.Error(0)
}

func (m *MockAnalyticsService) GetDailyStats(ctx context.Context, shopID string, from, to time.Time, requestingUserID string) ([]domain.ShopDailyStat, error) {
	args := m.Called(ctx, shopID, from, to, requestingUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ShopDailyStat), args.Error(1)
}

// MockAuditService is a mock type for the AuditSvc interface
type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) Record(ctx context.Context, userID, action string, details map[string]any) {
	m.Called(ctx, userID, action, details)
}

// --- Test Suite Setup ---

type LedgerServiceTestSuite struct {
	suite.Suite
	mockSaleRepo     *MockSaleRepository
	mockUdhaarRepo   *MockUdhaarRepository
	mockCustomerRepo *MockCustomerRepository
	mockAuthorizer   *MockShopAuthorizer
	mockAudit        *MockAuditService
	service          portssvc.LedgerSvcFacade

	shopID string
	userID string
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	suite.mockSaleRepo = new(MockSaleRepository)
	suite.mockUdhaarRepo = new(MockUdhaarRepository)
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockAuthorizer = new(MockShopAuthorizer)
	suite.mockAudit = new(MockAuditService)
	// Analytics is fire-and-forget and runs detached; keep it out of the
	// assertions by leaving it nil.
	suite.service = services.NewLedgerService(
		suite.mockSaleRepo,
		suite.mockUdhaarRepo,
		suite.mockCustomerRepo,
		suite.mockAuthorizer,
		nil,
		suite.mockAudit,
	)
	suite.shopID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.mockAudit.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
}

func (suite *LedgerServiceTestSuite) allowRole(role domain.UserShopRole) {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, role).Return(nil).Once()
}

// --- RecordSale ---

func (suite *LedgerServiceTestSuite) TestRecordSale_CashSuccess() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)

	req := dto.RecordSaleRequest{
		Amount:      decimal.NewFromInt(250),
		PaymentType: "CASH",
		Notes:       "two bags of rice",
		Tags:        []string{"groceries"},
	}

	suite.mockSaleRepo.On("SaveSale", ctx, mock.AnythingOfType("domain.Sale"), (*domain.Udhaar)(nil), (*portsrepo.CreditCheck)(nil)).Return(nil).Once()

	sale, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(sale)
	suite.NotEmpty(sale.SaleID)
	suite.Equal(suite.shopID, sale.ShopID)
	suite.Nil(sale.CustomerID)
	suite.Equal(domain.PaymentCash, sale.PaymentType)
	suite.Equal(domain.SourceManual, sale.Source)
	suite.True(sale.Amount.Equal(decimal.NewFromInt(250)))
	suite.Equal(suite.userID, sale.CreatedBy)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordSale_UdhaarCreatesCreditRecord() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()

	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID, Name: "Ravi"}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()

	var captured *domain.Udhaar
	suite.mockSaleRepo.On("SaveSale", ctx, mock.AnythingOfType("domain.Sale"), mock.AnythingOfType("*domain.Udhaar"), (*portsrepo.CreditCheck)(nil)).
		Run(func(args mock.Arguments) {
			captured = args.Get(2).(*domain.Udhaar)
		}).Return(nil).Once()

	req := dto.RecordSaleRequest{
		Amount:      decimal.NewFromInt(400),
		PaymentType: "UDHAAR",
		CustomerID:  &customerID,
	}

	sale, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(captured)
	suite.Equal(sale.SaleID, captured.SaleID)
	suite.Equal(customerID, captured.CustomerID)
	suite.Equal(domain.UdhaarOpen, captured.Status)
	suite.True(captured.Amount.Equal(decimal.NewFromInt(400)))
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordSale_UdhaarWithoutCustomerFails() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)

	req := dto.RecordSaleRequest{
		Amount:      decimal.NewFromInt(100),
		PaymentType: "UDHAAR",
	}

	sale, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(sale)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SaveSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecordSale_NonPositiveAmountFails() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)

	req := dto.RecordSaleRequest{
		Amount:      decimal.Zero,
		PaymentType: "CASH",
	}

	_, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *LedgerServiceTestSuite) TestRecordSale_CreditLimitPassedToRepository() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	limit := decimal.NewFromInt(500)

	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID, Name: "Meena", CreditLimit: &limit}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()

	limitErr := apperrors.NewCreditLimitExceeded(decimal.NewFromInt(400), limit, decimal.NewFromInt(550))
	suite.mockSaleRepo.On("SaveSale", ctx, mock.AnythingOfType("domain.Sale"), mock.AnythingOfType("*domain.Udhaar"), mock.MatchedBy(func(check *portsrepo.CreditCheck) bool {
		return check != nil && check.Limit.Equal(limit) && !check.Bypass
	})).Return(limitErr).Once()

	req := dto.RecordSaleRequest{
		Amount:      decimal.NewFromInt(150),
		PaymentType: "UDHAAR",
		CustomerID:  &customerID,
	}

	_, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	var gotLimitErr *apperrors.CreditLimitExceededError
	suite.Require().ErrorAs(err, &gotLimitErr)
	suite.True(gotLimitErr.ExceededBy.Equal(decimal.NewFromInt(50)))
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordSale_BypassFlagSkipsLimit() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	limit := decimal.NewFromInt(500)

	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID, CreditLimit: &limit}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()

	suite.mockSaleRepo.On("SaveSale", ctx, mock.AnythingOfType("domain.Sale"), mock.AnythingOfType("*domain.Udhaar"), mock.MatchedBy(func(check *portsrepo.CreditCheck) bool {
		return check != nil && check.Bypass
	})).Return(nil).Once()

	req := dto.RecordSaleRequest{
		Amount:            decimal.NewFromInt(150),
		PaymentType:       "UDHAAR",
		CustomerID:        &customerID,
		BypassCreditLimit: true,
	}

	_, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordSale_Forbidden() {
	ctx := context.Background()
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, domain.RoleStaff).Return(apperrors.ErrForbidden).Once()

	req := dto.RecordSaleRequest{
		Amount:      decimal.NewFromInt(100),
		PaymentType: "CASH",
	}

	_, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SaveSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

// --- RecordPayment ---

func (suite *LedgerServiceTestSuite) TestRecordPayment_SettlesAndReportsBalance() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()

	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()
	suite.mockSaleRepo.On("GetBalance", ctx, suite.shopID, customerID).Return(decimal.NewFromInt(300), nil).Once()

	settled := []domain.Udhaar{
		{UdhaarID: uuid.NewString(), CustomerID: customerID, Status: domain.UdhaarPaid, Amount: decimal.NewFromInt(100)},
	}
	suite.mockSaleRepo.On("SavePayment", ctx, mock.MatchedBy(func(p domain.Sale) bool {
		return p.PaymentType == domain.PaymentCash && p.CustomerID != nil && *p.CustomerID == customerID
	})).Return(settled, nil).Once()

	req := dto.RecordPaymentRequest{Amount: decimal.NewFromInt(150)}

	result, err := suite.service.RecordPayment(ctx, suite.shopID, customerID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(result)
	suite.Len(result.UpdatedCreditRecords, 1)
	suite.True(result.NewBalance.Equal(decimal.NewFromInt(150)))
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestRecordPayment_UdhaarIsNotAPaymentMethod() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()

	req := dto.RecordPaymentRequest{
		Amount:        decimal.NewFromInt(100),
		PaymentMethod: "UDHAAR",
	}

	_, err := suite.service.RecordPayment(ctx, suite.shopID, customerID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SavePayment", mock.Anything, mock.Anything)
}

// --- UpdateSale ---

func (suite *LedgerServiceTestSuite) makeSale(paymentType domain.PaymentType, amount int64, customerID *string) domain.Sale {
	now := time.Now().UTC().Add(-time.Hour)
	return domain.Sale{
		SaleID:      uuid.NewString(),
		ShopID:      suite.shopID,
		CustomerID:  customerID,
		Amount:      decimal.NewFromInt(amount),
		PaymentType: paymentType,
		Source:      domain.SourceManual,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     suite.userID,
			LastUpdatedAt: now,
			LastUpdatedBy: suite.userID,
		},
	}
}

func (suite *LedgerServiceTestSuite) TestUpdateSale_AmountChangeSyncsCreditRecord() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	existing := suite.makeSale(domain.PaymentUdhaar, 200, &customerID)

	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.shopID, existing.SaleID).Return(&existing, nil).Once()

	newAmount := decimal.NewFromInt(350)
	suite.mockSaleRepo.On("UpdateSale", ctx, mock.MatchedBy(func(u portsrepo.SaleUpdate) bool {
		return u.Action == portsrepo.UdhaarActionSyncAmount && u.Sale.Amount.Equal(newAmount)
	})).Return(nil).Once()

	req := dto.UpdateSaleRequest{Amount: &newAmount, EditReason: "wrong amount entered"}

	updated, err := suite.service.UpdateSale(ctx, suite.shopID, existing.SaleID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(updated)
	suite.Require().NotNil(updated.EditedAt)
	suite.Equal("wrong amount entered", *updated.EditReason)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateSale_CashToUdhaarCreatesRecord() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	existing := suite.makeSale(domain.PaymentCash, 200, &customerID)

	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.shopID, existing.SaleID).Return(&existing, nil).Once()
	suite.mockSaleRepo.On("UpdateSale", ctx, mock.MatchedBy(func(u portsrepo.SaleUpdate) bool {
		return u.Action == portsrepo.UdhaarActionCreate
	})).Return(nil).Once()

	udhaar := "UDHAAR"
	req := dto.UpdateSaleRequest{PaymentType: &udhaar, EditReason: "customer paid on credit"}

	_, err := suite.service.UpdateSale(ctx, suite.shopID, existing.SaleID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateSale_UdhaarToCashDeletesRecord() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	existing := suite.makeSale(domain.PaymentUdhaar, 200, &customerID)

	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.shopID, existing.SaleID).Return(&existing, nil).Once()
	suite.mockSaleRepo.On("UpdateSale", ctx, mock.MatchedBy(func(u portsrepo.SaleUpdate) bool {
		return u.Action == portsrepo.UdhaarActionDelete
	})).Return(nil).Once()

	cash := "CASH"
	req := dto.UpdateSaleRequest{PaymentType: &cash, EditReason: "paid in cash after all"}

	_, err := suite.service.UpdateSale(ctx, suite.shopID, existing.SaleID, req, suite.userID)

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestUpdateSale_SettledRecordBlocksEdit() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	existing := suite.makeSale(domain.PaymentUdhaar, 200, &customerID)

	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.shopID, existing.SaleID).Return(&existing, nil).Once()
	suite.mockSaleRepo.On("UpdateSale", ctx, mock.AnythingOfType("repositories.SaleUpdate")).Return(apperrors.ErrUdhaarSettled).Once()

	newAmount := decimal.NewFromInt(50)
	req := dto.UpdateSaleRequest{Amount: &newAmount, EditReason: "typo"}

	_, err := suite.service.UpdateSale(ctx, suite.shopID, existing.SaleID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUdhaarSettled)
}

func (suite *LedgerServiceTestSuite) TestUpdateSale_UdhaarWithoutCustomerFails() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	existing := suite.makeSale(domain.PaymentCash, 200, nil)

	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.shopID, existing.SaleID).Return(&existing, nil).Once()

	udhaar := "UDHAAR"
	req := dto.UpdateSaleRequest{PaymentType: &udhaar, EditReason: "switch to credit"}

	_, err := suite.service.UpdateSale(ctx, suite.shopID, existing.SaleID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "UpdateSale", mock.Anything, mock.Anything)
}

// --- Bulk operations ---

func (suite *LedgerServiceTestSuite) TestBulkUpdateSales_MissingIDAbortsBatch() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	found := suite.makeSale(domain.PaymentCash, 100, &customerID)
	missingID := uuid.NewString()

	req := dto.BulkUpdateSalesRequest{
		SaleIDs: []string{found.SaleID, missingID},
		Tags:    []string{"wholesale"},
	}

	suite.mockSaleRepo.On("FindSalesByIDs", ctx, suite.shopID, req.SaleIDs).Return([]domain.Sale{found}, nil).Once()

	count, err := suite.service.BulkUpdateSales(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.Zero(count)
	var bulkErr *apperrors.BulkOperationError
	suite.Require().ErrorAs(err, &bulkErr)
	suite.Contains(bulkErr.Failures, missingID)
	suite.ErrorIs(bulkErr.Failures[missingID], apperrors.ErrNotFound)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "BulkUpdateSales", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestBulkUpdateSales_Success() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	first := suite.makeSale(domain.PaymentCash, 100, &customerID)
	second := suite.makeSale(domain.PaymentUPI, 200, &customerID)

	req := dto.BulkUpdateSalesRequest{
		SaleIDs: []string{first.SaleID, second.SaleID},
		Tags:    []string{"festival"},
	}

	suite.mockSaleRepo.On("FindSalesByIDs", ctx, suite.shopID, req.SaleIDs).Return([]domain.Sale{first, second}, nil).Once()
	suite.mockSaleRepo.On("BulkUpdateSales", ctx, suite.shopID, mock.MatchedBy(func(updates []portsrepo.SaleUpdate) bool {
		if len(updates) != 2 {
			return false
		}
		for _, u := range updates {
			if len(u.Sale.Tags) != 1 || u.Sale.Tags[0] != "festival" {
				return false
			}
		}
		return true
	})).Return(nil).Once()

	count, err := suite.service.BulkUpdateSales(ctx, suite.shopID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(2, count)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeleteSale_RequiresAdmin() {
	ctx := context.Background()
	saleID := uuid.NewString()
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	err := suite.service.DeleteSale(ctx, suite.shopID, saleID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "DeleteSale", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestDeleteSale_Success() {
	ctx := context.Background()
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, domain.RoleAdmin).Return(nil).Once()
	customerID := uuid.NewString()
	removed := suite.makeSale(domain.PaymentUdhaar, 300, &customerID)

	suite.mockSaleRepo.On("DeleteSale", ctx, suite.shopID, removed.SaleID).Return(&removed, nil).Once()

	err := suite.service.DeleteSale(ctx, suite.shopID, removed.SaleID, suite.userID)

	suite.Require().NoError(err)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeleteSale_AuditEntryNamesCustomer() {
	ctx := context.Background()
	// Rebuild with a strict audit mock so the entry's contents can be
	// asserted instead of swallowed by the suite's catch-all.
	suite.mockAudit = new(MockAuditService)
	suite.service = services.NewLedgerService(
		suite.mockSaleRepo,
		suite.mockUdhaarRepo,
		suite.mockCustomerRepo,
		suite.mockAuthorizer,
		nil,
		suite.mockAudit,
	)

	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, domain.RoleAdmin).Return(nil).Once()
	customerID := uuid.NewString()
	removed := suite.makeSale(domain.PaymentUdhaar, 300, &customerID)

	suite.mockSaleRepo.On("DeleteSale", ctx, suite.shopID, removed.SaleID).Return(&removed, nil).Once()
	suite.mockAudit.On("Record", mock.Anything, suite.userID, "sale.deleted",
		mock.MatchedBy(func(details map[string]any) bool {
			return details["saleID"] == removed.SaleID &&
				details["customerID"] == customerID &&
				details["amount"] == removed.Amount.String() &&
				details["paymentType"] == string(domain.PaymentUdhaar)
		})).Once()

	err := suite.service.DeleteSale(ctx, suite.shopID, removed.SaleID, suite.userID)

	suite.Require().NoError(err)
	suite.mockAudit.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestDeleteSales_SkipsMissingIDs() {
	ctx := context.Background()
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, domain.RoleAdmin).Return(nil).Once()
	customerID := uuid.NewString()
	kept := suite.makeSale(domain.PaymentCash, 50, &customerID)
	ids := []string{kept.SaleID, uuid.NewString()}

	suite.mockSaleRepo.On("DeleteSales", ctx, suite.shopID, ids).Return([]domain.Sale{kept}, nil).Once()

	count, err := suite.service.DeleteSales(ctx, suite.shopID, ids, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, count)
}

// --- Reads ---

func (suite *LedgerServiceTestSuite) TestCalculateBalance() {
	ctx := context.Background()
	customerID := uuid.NewString()
	suite.mockSaleRepo.On("GetBalance", ctx, suite.shopID, customerID).Return(decimal.NewFromInt(-75), nil).Once()

	balance, err := suite.service.CalculateBalance(ctx, suite.shopID, customerID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(-75)))
}

func (suite *LedgerServiceTestSuite) TestGetSaleByID_NotFound() {
	ctx := context.Background()
	saleID := uuid.NewString()
	suite.mockSaleRepo.On("FindSaleByID", ctx, suite.shopID, saleID).Return(nil, apperrors.ErrNotFound).Once()

	sale, err := suite.service.GetSaleByID(ctx, suite.shopID, saleID)

	suite.Require().Error(err)
	suite.Nil(sale)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *LedgerServiceTestSuite) TestGetSalesSummary_AggregatesSettlementRevenue() {
	ctx := context.Background()
	customerID := uuid.NewString()
	now := time.Now().UTC()

	sales := []domain.Sale{
		{SaleID: uuid.NewString(), PaymentType: domain.PaymentCash, Amount: decimal.NewFromInt(100), CustomerID: &customerID, CustomerName: "Ravi", AuditFields: domain.AuditFields{CreatedAt: now}},
		{SaleID: uuid.NewString(), PaymentType: domain.PaymentUPI, Amount: decimal.NewFromInt(200), AuditFields: domain.AuditFields{CreatedAt: now}},
		{SaleID: uuid.NewString(), PaymentType: domain.PaymentUdhaar, Amount: decimal.NewFromInt(500), CustomerID: &customerID, CustomerName: "Ravi", AuditFields: domain.AuditFields{CreatedAt: now}},
	}
	suite.mockSaleRepo.On("ListSales", ctx, suite.shopID, mock.AnythingOfType("domain.SaleFilter"), 500, (*string)(nil)).Return(sales, nil, nil).Once()

	summary, err := suite.service.GetSalesSummary(ctx, suite.shopID, domain.SaleFilter{})

	suite.Require().NoError(err)
	suite.Require().NotNil(summary)
	// UDHAAR is money not yet received; only CASH and UPI count as revenue.
	suite.True(summary.Revenue.Equal(decimal.NewFromInt(300)), "got revenue %s", summary.Revenue)
	suite.Equal(3, summary.TransactionCount)
	suite.Len(summary.DailyBreakdown, 7)
	suite.Require().NotEmpty(summary.TopCustomers)
	suite.Equal(customerID, summary.TopCustomers[0].CustomerID)
	suite.True(summary.TopCustomers[0].Total.Equal(decimal.NewFromInt(600)))
}

func (suite *LedgerServiceTestSuite) TestGetSalesSummary_PagesThroughAllSales() {
	ctx := context.Background()
	now := time.Now().UTC()
	token := "page-2"

	firstPage := []domain.Sale{{SaleID: uuid.NewString(), PaymentType: domain.PaymentCash, Amount: decimal.NewFromInt(10), AuditFields: domain.AuditFields{CreatedAt: now}}}
	secondPage := []domain.Sale{{SaleID: uuid.NewString(), PaymentType: domain.PaymentCash, Amount: decimal.NewFromInt(20), AuditFields: domain.AuditFields{CreatedAt: now}}}

	suite.mockSaleRepo.On("ListSales", ctx, suite.shopID, mock.AnythingOfType("domain.SaleFilter"), 500, (*string)(nil)).Return(firstPage, &token, nil).Once()
	suite.mockSaleRepo.On("ListSales", ctx, suite.shopID, mock.AnythingOfType("domain.SaleFilter"), 500, &token).Return(secondPage, nil, nil).Once()

	summary, err := suite.service.GetSalesSummary(ctx, suite.shopID, domain.SaleFilter{})

	suite.Require().NoError(err)
	suite.True(summary.Revenue.Equal(decimal.NewFromInt(30)))
	suite.Equal(2, summary.TransactionCount)
	suite.mockSaleRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestListCustomerUdhaars_UnknownCustomer() {
	ctx := context.Background()
	customerID := uuid.NewString()
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(nil, apperrors.ErrNotFound).Once()

	records, err := suite.service.ListCustomerUdhaars(ctx, suite.shopID, customerID, false)

	suite.Require().Error(err)
	suite.Nil(records)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockUdhaarRepo.AssertNotCalled(suite.T(), "ListByCustomer", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestListCustomerUdhaars_Success() {
	ctx := context.Background()
	customerID := uuid.NewString()
	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()

	records := []domain.Udhaar{
		{UdhaarID: uuid.NewString(), CustomerID: customerID, Status: domain.UdhaarOpen, Amount: decimal.NewFromInt(200)},
		{UdhaarID: uuid.NewString(), CustomerID: customerID, Status: domain.UdhaarPaid, Amount: decimal.NewFromInt(100)},
	}
	suite.mockUdhaarRepo.On("ListByCustomer", ctx, suite.shopID, customerID).Return(records, nil).Once()

	got, err := suite.service.ListCustomerUdhaars(ctx, suite.shopID, customerID, false)

	suite.Require().NoError(err)
	suite.Len(got, 2)
}

func (suite *LedgerServiceTestSuite) TestListCustomerUdhaars_OpenOnly() {
	ctx := context.Background()
	customerID := uuid.NewString()
	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()

	open := []domain.Udhaar{
		{UdhaarID: uuid.NewString(), CustomerID: customerID, Status: domain.UdhaarOpen, Amount: decimal.NewFromInt(200)},
	}
	suite.mockUdhaarRepo.On("ListOpenByCustomer", ctx, suite.shopID, customerID).Return(open, nil).Once()

	got, err := suite.service.ListCustomerUdhaars(ctx, suite.shopID, customerID, true)

	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal(domain.UdhaarOpen, got[0].Status)
	suite.mockUdhaarRepo.AssertNotCalled(suite.T(), "ListByCustomer", mock.Anything, mock.Anything, mock.Anything)
	suite.mockUdhaarRepo.AssertExpectations(suite.T())
}

func (suite *LedgerServiceTestSuite) TestBulkUpdateSales_RepositoryFailurePropagated() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	sale := suite.makeSale(domain.PaymentUdhaar, 100, &customerID)

	req := dto.BulkUpdateSalesRequest{SaleIDs: []string{sale.SaleID}, Tags: []string{"retag"}}
	suite.mockSaleRepo.On("FindSalesByIDs", ctx, suite.shopID, req.SaleIDs).Return([]domain.Sale{sale}, nil).Once()

	repoErr := &apperrors.BulkOperationError{Failures: map[string]error{
		sale.SaleID: apperrors.ErrUdhaarSettled,
	}}
	suite.mockSaleRepo.On("BulkUpdateSales", ctx, suite.shopID, mock.Anything).Return(repoErr).Once()

	count, err := suite.service.BulkUpdateSales(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.Zero(count)
	var bulkErr *apperrors.BulkOperationError
	suite.Require().ErrorAs(err, &bulkErr)
	suite.ErrorIs(bulkErr.Failures[sale.SaleID], apperrors.ErrUdhaarSettled)
}

func (suite *LedgerServiceTestSuite) TestRecordSale_UnknownCustomer() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()

	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(nil, apperrors.ErrNotFound).Once()

	req := dto.RecordSaleRequest{
		Amount:      decimal.NewFromInt(100),
		PaymentType: "CASH",
		CustomerID:  &customerID,
	}

	_, err := suite.service.RecordSale(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "SaveSale", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *LedgerServiceTestSuite) TestRecordPayment_RepositoryError() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()

	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()
	suite.mockSaleRepo.On("GetBalance", ctx, suite.shopID, customerID).Return(decimal.NewFromInt(100), nil).Once()
	suite.mockSaleRepo.On("SavePayment", ctx, mock.AnythingOfType("domain.Sale")).Return(nil, fmt.Errorf("connection reset")).Once()

	result, err := suite.service.RecordPayment(ctx, suite.shopID, customerID, dto.RecordPaymentRequest{Amount: decimal.NewFromInt(50)}, suite.userID)

	suite.Require().Error(err)
	suite.Nil(result)
	suite.False(errors.Is(err, apperrors.ErrValidation))
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}
