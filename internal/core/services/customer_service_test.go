package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/core/services"
	"github.com/khatapp/khata_backend/internal/dto"
)

type CustomerServiceTestSuite struct {
	suite.Suite
	mockCustomerRepo *MockCustomerRepository
	mockSaleRepo     *MockSaleRepository
	mockAuthorizer   *MockShopAuthorizer
	service          portssvc.CustomerSvcFacade

	shopID string
	userID string
}

func (suite *CustomerServiceTestSuite) SetupTest() {
	suite.mockCustomerRepo = new(MockCustomerRepository)
	suite.mockSaleRepo = new(MockSaleRepository)
	suite.mockAuthorizer = new(MockShopAuthorizer)
	suite.service = services.NewCustomerService(suite.mockCustomerRepo, suite.mockSaleRepo, suite.mockAuthorizer)
	suite.shopID = uuid.NewString()
	suite.userID = uuid.NewString()
}

func (suite *CustomerServiceTestSuite) allowRole(role domain.UserShopRole) {
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, role).Return(nil).Once()
}

func (suite *CustomerServiceTestSuite) TestCreateCustomer_Success() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	limit := decimal.NewFromInt(1000)

	req := dto.CreateCustomerRequest{
		Name:        "Ravi Kumar",
		Phone:       "9876543210",
		Notes:       "buys on fridays",
		CreditLimit: &limit,
	}

	suite.mockCustomerRepo.On("SaveCustomer", ctx, mock.AnythingOfType("domain.Customer")).Return(nil).Once()

	customer, err := suite.service.CreateCustomer(ctx, suite.shopID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(customer)
	suite.NotEmpty(customer.CustomerID)
	suite.Equal(suite.shopID, customer.ShopID)
	suite.Equal(req.Name, customer.Name)
	suite.Equal(req.Phone, customer.Phone)
	suite.Require().NotNil(customer.CreditLimit)
	suite.True(customer.CreditLimit.Equal(limit))
	suite.Equal(suite.userID, customer.CreatedBy)
	suite.WithinDuration(time.Now(), customer.CreatedAt, time.Second)
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *CustomerServiceTestSuite) TestCreateCustomer_NegativeCreditLimit() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	limit := decimal.NewFromInt(-100)

	req := dto.CreateCustomerRequest{Name: "Bad Limit", CreditLimit: &limit}

	customer, err := suite.service.CreateCustomer(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.Nil(customer)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "SaveCustomer", mock.Anything, mock.Anything)
}

func (suite *CustomerServiceTestSuite) TestCreateCustomer_DuplicatePhone() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)

	req := dto.CreateCustomerRequest{Name: "Twin", Phone: "9876543210"}
	suite.mockCustomerRepo.On("SaveCustomer", ctx, mock.AnythingOfType("domain.Customer")).Return(apperrors.ErrDuplicate).Once()

	_, err := suite.service.CreateCustomer(ctx, suite.shopID, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

func (suite *CustomerServiceTestSuite) TestUpdateCustomer_ClearCreditLimit() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()
	limit := decimal.NewFromInt(500)

	existing := &domain.Customer{
		CustomerID:  customerID,
		ShopID:      suite.shopID,
		Name:        "Meena",
		CreditLimit: &limit,
	}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(existing, nil).Once()

	var saved domain.Customer
	suite.mockCustomerRepo.On("UpdateCustomer", ctx, mock.AnythingOfType("domain.Customer")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(domain.Customer)
		}).Return(nil).Once()

	req := dto.UpdateCustomerRequest{ClearCreditLimit: true}

	updated, err := suite.service.UpdateCustomer(ctx, suite.shopID, customerID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Nil(updated.CreditLimit)
	suite.Nil(saved.CreditLimit)
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *CustomerServiceTestSuite) TestUpdateCustomer_PartialFields() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()

	existing := &domain.Customer{
		CustomerID: customerID,
		ShopID:     suite.shopID,
		Name:       "Old Name",
		Phone:      "1112223334",
		Notes:      "keep these notes",
	}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(existing, nil).Once()
	suite.mockCustomerRepo.On("UpdateCustomer", ctx, mock.AnythingOfType("domain.Customer")).Return(nil).Once()

	newName := "New Name"
	req := dto.UpdateCustomerRequest{Name: &newName}

	updated, err := suite.service.UpdateCustomer(ctx, suite.shopID, customerID, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("New Name", updated.Name)
	suite.Equal("1112223334", updated.Phone)
	suite.Equal("keep these notes", updated.Notes)
	suite.Equal(suite.userID, updated.LastUpdatedBy)
}

func (suite *CustomerServiceTestSuite) TestUpdateCustomer_NotFound() {
	ctx := context.Background()
	suite.allowRole(domain.RoleStaff)
	customerID := uuid.NewString()

	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.UpdateCustomer(ctx, suite.shopID, customerID, dto.UpdateCustomerRequest{}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *CustomerServiceTestSuite) TestDeleteCustomer_RequiresAdmin() {
	ctx := context.Background()
	customerID := uuid.NewString()
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, domain.RoleAdmin).Return(apperrors.ErrForbidden).Once()

	err := suite.service.DeleteCustomer(ctx, suite.shopID, customerID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrForbidden)
	suite.mockCustomerRepo.AssertNotCalled(suite.T(), "MarkCustomerDeleted", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CustomerServiceTestSuite) TestDeleteCustomer_Success() {
	ctx := context.Background()
	customerID := uuid.NewString()
	suite.mockAuthorizer.On("AuthorizeUserAction", mock.Anything, suite.userID, suite.shopID, domain.RoleAdmin).Return(nil).Once()
	suite.mockCustomerRepo.On("MarkCustomerDeleted", ctx, suite.shopID, customerID, mock.AnythingOfType("time.Time"), suite.userID).Return(nil).Once()

	err := suite.service.DeleteCustomer(ctx, suite.shopID, customerID, suite.userID)

	suite.Require().NoError(err)
	suite.mockCustomerRepo.AssertExpectations(suite.T())
}

func (suite *CustomerServiceTestSuite) TestGetCustomerBalance() {
	ctx := context.Background()
	suite.allowRole(domain.RoleReadOnly)
	customerID := uuid.NewString()

	customer := &domain.Customer{CustomerID: customerID, ShopID: suite.shopID}
	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(customer, nil).Once()
	suite.mockSaleRepo.On("GetBalance", ctx, suite.shopID, customerID).Return(decimal.NewFromInt(420), nil).Once()

	balance, err := suite.service.GetCustomerBalance(ctx, suite.shopID, customerID, suite.userID)

	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.NewFromInt(420)))
}

func (suite *CustomerServiceTestSuite) TestGetCustomerBalance_UnknownCustomer() {
	ctx := context.Background()
	suite.allowRole(domain.RoleReadOnly)
	customerID := uuid.NewString()

	suite.mockCustomerRepo.On("FindCustomerByID", ctx, suite.shopID, customerID).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetCustomerBalance(ctx, suite.shopID, customerID, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockSaleRepo.AssertNotCalled(suite.T(), "GetBalance", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *CustomerServiceTestSuite) TestListCustomers() {
	ctx := context.Background()
	suite.allowRole(domain.RoleReadOnly)

	customers := []domain.Customer{
		{CustomerID: uuid.NewString(), ShopID: suite.shopID, Name: "A"},
		{CustomerID: uuid.NewString(), ShopID: suite.shopID, Name: "B"},
	}
	suite.mockCustomerRepo.On("ListCustomers", ctx, suite.shopID, 20, 0).Return(customers, nil).Once()

	got, err := suite.service.ListCustomers(ctx, suite.shopID, 20, 0, suite.userID)

	suite.Require().NoError(err)
	suite.Len(got, 2)
}

func TestCustomerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(CustomerServiceTestSuite))
}
