package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/khatapp/khata_backend/internal/apperrors"
	"github.com/khatapp/khata_backend/internal/core/domain"
	portssvc "github.com/khatapp/khata_backend/internal/core/ports/services"
	"github.com/khatapp/khata_backend/internal/core/services"
)

// MockAPITokenRepository is a mock type for the APITokenRepository interface
type MockAPITokenRepository struct {
	mock.Mock
}

func (m *MockAPITokenRepository) Create(ctx context.Context, token *domain.APIToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIToken), args.Error(1)
}

func (m *MockAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.APIToken), args.Error(1)
}

func (m *MockAPITokenRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*domain.APIToken, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.APIToken), args.Error(1)
}

func (m *MockAPITokenRepository) Update(ctx context.Context, token *domain.APIToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAPITokenRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAPITokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

type APITokenServiceTestSuite struct {
	suite.Suite
	mockTokenRepo *MockAPITokenRepository
	mockUserRepo  *MockUserRepository
	service       portssvc.APITokenSvc

	userID string
}

func (suite *APITokenServiceTestSuite) SetupTest() {
	suite.mockTokenRepo = new(MockAPITokenRepository)
	suite.mockUserRepo = new(MockUserRepository)
	userSvc := services.NewUserService(suite.mockUserRepo)
	suite.service = services.NewAPITokenService(suite.mockTokenRepo, userSvc)
	suite.userID = uuid.NewString()
}

func (suite *APITokenServiceTestSuite) TestCreateToken_PlaintextShownOnce() {
	ctx := context.Background()

	var saved *domain.APIToken
	suite.mockTokenRepo.On("Create", ctx, mock.AnythingOfType("*domain.APIToken")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.APIToken)
		}).Return(nil).Once()

	plaintext, token, err := suite.service.CreateToken(ctx, suite.userID, "pos-terminal-1", nil)

	suite.Require().NoError(err)
	suite.Require().NotNil(token)
	suite.True(strings.HasPrefix(plaintext, "khata_"))
	suite.NotEqual(plaintext, saved.TokenHash)
	suite.NotContains(saved.TokenHash, plaintext)
	suite.Nil(saved.ExpiresAt)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestCreateToken_WithExpiry() {
	ctx := context.Background()
	suite.mockTokenRepo.On("Create", ctx, mock.AnythingOfType("*domain.APIToken")).Return(nil).Once()

	expiresIn := 30 * 24 * time.Hour
	_, token, err := suite.service.CreateToken(ctx, suite.userID, "seasonal-pos", &expiresIn)

	suite.Require().NoError(err)
	suite.Require().NotNil(token.ExpiresAt)
	suite.WithinDuration(time.Now().Add(expiresIn), *token.ExpiresAt, time.Second)
}

func (suite *APITokenServiceTestSuite) TestCreateToken_NameRequired() {
	ctx := context.Background()

	_, _, err := suite.service.CreateToken(ctx, suite.userID, "", nil)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *APITokenServiceTestSuite) TestRevokeToken_OtherUsersTokenLooksMissing() {
	ctx := context.Background()
	tokenID := uuid.NewString()

	token := &domain.APIToken{ID: tokenID, UserID: uuid.NewString(), Name: "not-yours"}
	suite.mockTokenRepo.On("FindByID", ctx, tokenID).Return(token, nil).Once()

	err := suite.service.RevokeToken(ctx, suite.userID, tokenID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockTokenRepo.AssertNotCalled(suite.T(), "Delete", mock.Anything, mock.Anything)
}

func (suite *APITokenServiceTestSuite) TestRevokeToken_Success() {
	ctx := context.Background()
	tokenID := uuid.NewString()

	token := &domain.APIToken{ID: tokenID, UserID: suite.userID, Name: "mine"}
	suite.mockTokenRepo.On("FindByID", ctx, tokenID).Return(token, nil).Once()
	suite.mockTokenRepo.On("Delete", ctx, tokenID).Return(nil).Once()

	err := suite.service.RevokeToken(ctx, suite.userID, tokenID)

	suite.Require().NoError(err)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestValidateToken_RoundTrip() {
	ctx := context.Background()

	// Create a token through the service so the stored hash matches the
	// plaintext we validate with.
	var saved *domain.APIToken
	suite.mockTokenRepo.On("Create", ctx, mock.AnythingOfType("*domain.APIToken")).
		Run(func(args mock.Arguments) {
			saved = args.Get(1).(*domain.APIToken)
			saved.ID = uuid.NewString()
		}).Return(nil).Once()

	plaintext, _, err := suite.service.CreateToken(ctx, suite.userID, "pos", nil)
	suite.Require().NoError(err)

	suite.mockTokenRepo.On("FindByTokenHash", ctx, saved.TokenHash).Return(saved, nil).Once()
	suite.mockTokenRepo.On("Update", ctx, saved).Return(nil).Once()

	user := &domain.User{UserID: suite.userID, Email: "pos-owner@example.com"}
	suite.mockUserRepo.On("FindUserByID", ctx, suite.userID).Return(user, nil).Once()

	got, err := suite.service.ValidateToken(ctx, plaintext)

	suite.Require().NoError(err)
	suite.Equal(suite.userID, got.UserID)
	suite.Require().NotNil(saved.LastUsedAt)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestValidateToken_UnknownToken() {
	ctx := context.Background()
	suite.mockTokenRepo.On("FindByTokenHash", ctx, mock.AnythingOfType("string")).Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ValidateToken(ctx, "khata_bogus")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func (suite *APITokenServiceTestSuite) TestValidateToken_ExpiredTokenAutoRevoked() {
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)
	expired := &domain.APIToken{ID: uuid.NewString(), UserID: suite.userID, ExpiresAt: &past}

	suite.mockTokenRepo.On("FindByTokenHash", ctx, mock.AnythingOfType("string")).Return(expired, nil).Once()
	suite.mockTokenRepo.On("Delete", ctx, expired.ID).Return(nil).Once()

	_, err := suite.service.ValidateToken(ctx, "khata_expired")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
	suite.mockTokenRepo.AssertExpectations(suite.T())
}

func (suite *APITokenServiceTestSuite) TestValidateToken_EmptyString() {
	ctx := context.Background()

	_, err := suite.service.ValidateToken(ctx, "")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrUnauthorized)
}

func TestAPITokenServiceTestSuite(t *testing.T) {
	suite.Run(t, new(APITokenServiceTestSuite))
}
