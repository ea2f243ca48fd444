package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"clinic/internal/auth"
	apperrors "clinic/internal/errors"
	"clinic/internal/model"
	"clinic/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepository) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) CreateDoctorProfile(ctx context.Context, profile *model.DoctorProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockUserRepository) CreatePatientProfile(ctx context.Context, profile *model.PatientProfile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

// MockUserService is a mock implementation of UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) CreateUser(ctx context.Context, input CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Actor(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) UpdateUser(ctx context.Context, id uint, input UpdateUserInput) (*model.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) ListDoctors(ctx context.Context, filter repository.UserFilter) ([]model.User, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]model.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) GetDoctor(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uint, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uint, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func (m *MockTokenStore) BlacklistAccessToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsAccessTokenBlacklisted(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

func TestAuthService_Register(t *testing.T) {
	tests := []struct {
		name          string
		input         CreateUserInput
		confirm       string
		setupMock     func(*MockUserService)
		expectedError error
	}{
		{
			name:    "successful registration defaults to patient",
			input:   CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password123"},
			confirm: "password123",
			setupMock: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, mock.MatchedBy(func(in CreateUserInput) bool {
					return in.Role == model.RolePatient && !in.IsSuperuser
				})).Return(&model.User{ID: 1, Username: "alice", Role: model.RolePatient}, nil)
			},
		},
		{
			name:    "doctor registration",
			input:   CreateUserInput{Username: "house", Email: "house@example.com", Password: "password123", Role: model.RoleDoctor},
			confirm: "password123",
			setupMock: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, mock.AnythingOfType("service.CreateUserInput")).
					Return(&model.User{ID: 2, Username: "house", Role: model.RoleDoctor}, nil)
			},
		},
		{
			name:          "passwords must match",
			input:         CreateUserInput{Username: "bob", Email: "bob@example.com", Password: "password123"},
			confirm:       "password124",
			setupMock:     func(m *MockUserService) {},
			expectedError: apperrors.ErrPasswordMismatch,
		},
		{
			name:          "admin cannot self register",
			input:         CreateUserInput{Username: "root", Email: "root@example.com", Password: "password123", Role: model.RoleAdmin},
			confirm:       "password123",
			setupMock:     func(m *MockUserService) {},
			expectedError: apperrors.ErrInvalidRole,
		},
		{
			name:    "user already exists",
			input:   CreateUserInput{Username: "alice", Email: "alice@example.com", Password: "password123"},
			confirm: "password123",
			setupMock: func(m *MockUserService) {
				m.On("CreateUser", mock.Anything, mock.Anything).Return(nil, apperrors.ErrUserAlreadyExists)
			},
			expectedError: apperrors.ErrUserAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUsers := new(MockUserService)
			tt.setupMock(mockUsers)

			service := NewAuthService(new(MockUserRepository), mockUsers, auth.NewJWTService("test-secret"), new(MockTokenStore))
			user, err := service.Register(context.Background(), tt.input, tt.confirm)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
			}

			mockUsers.AssertExpectations(t)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	active := &model.User{ID: 5, Username: "alice", Email: "alice@example.com", PasswordHash: string(hashedPassword), Role: model.RolePatient, IsActive: true}
	disabled := &model.User{ID: 6, Username: "eve", Email: "eve@example.com", PasswordHash: string(hashedPassword), Role: model.RolePatient}

	tests := []struct {
		name          string
		identifier    string
		password      string
		setupMock     func(*MockUserRepository, *MockTokenStore)
		expectedError error
	}{
		{
			name:       "successful login by email",
			identifier: "Alice@Example.com",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "alice@example.com").Return(active, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.AnythingOfType("string"), uint(5), auth.RefreshTokenExpiry).Return(nil)
			},
		},
		{
			name:       "successful login by username",
			identifier: "alice",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "alice").Return(active, nil)
				mToken.On("StoreRefreshToken", mock.Anything, mock.Anything, uint(5), mock.Anything).Return(nil)
			},
		},
		{
			name:       "invalid credentials - user not found",
			identifier: "notfound@example.com",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:       "invalid credentials - wrong password",
			identifier: "alice",
			password:   "wrong",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "alice").Return(active, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:       "disabled account",
			identifier: "eve",
			password:   "password123",
			setupMock: func(mRepo *MockUserRepository, mToken *MockTokenStore) {
				mRepo.On("FindByUsername", mock.Anything, "eve").Return(disabled, nil)
			},
			expectedError: ErrAccountDisabled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			mockTokenStore := new(MockTokenStore)
			tt.setupMock(mockRepo, mockTokenStore)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(mockRepo, new(MockUserService), jwtService, mockTokenStore)

			tokens, user, err := service.Login(context.Background(), tt.identifier, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, tokens)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, tokens.AccessToken)
				assert.NotEmpty(t, tokens.RefreshToken)
				assert.Equal(t, uint(5), user.ID)

				claims, err := jwtService.ValidateToken(tokens.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, model.RolePatient, claims.Role)
			}

			mockRepo.AssertExpectations(t)
			mockTokenStore.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: 9, Email: "dr@example.com", Role: model.RoleDoctor, IsActive: true}
	tokenID, refresh, err := jwtService.GenerateRefreshToken(user)
	require.NoError(t, err)
	_, access, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)

	t.Run("issues a new access token", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(9), nil)
		mockRepo.On("FindByID", mock.Anything, uint(9)).Return(user, nil)

		service := NewAuthService(mockRepo, new(MockUserService), jwtService, mockTokenStore)
		token, err := service.RefreshToken(context.Background(), refresh)
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, auth.TokenTypeAccess, claims.TokenType)
		assert.Equal(t, uint(9), claims.UserID)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		mockTokenStore := new(MockTokenStore)
		mockTokenStore.On("GetRefreshToken", mock.Anything, tokenID).Return(uint(0), auth.ErrRefreshTokenNotFound)

		service := NewAuthService(new(MockUserRepository), new(MockUserService), jwtService, mockTokenStore)
		_, err := service.RefreshToken(context.Background(), refresh)
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		service := NewAuthService(new(MockUserRepository), new(MockUserService), jwtService, new(MockTokenStore))
		_, err := service.RefreshToken(context.Background(), access)
		assert.Equal(t, ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	user := &model.User{ID: 3, Role: model.RolePatient}
	refreshID, refresh, err := jwtService.GenerateRefreshToken(user)
	require.NoError(t, err)
	_, access, err := jwtService.GenerateAccessToken(user)
	require.NoError(t, err)
	accessClaims, err := jwtService.ValidateToken(access)
	require.NoError(t, err)

	mockTokenStore := new(MockTokenStore)
	mockTokenStore.On("DeleteRefreshToken", mock.Anything, refreshID).Return(nil)
	mockTokenStore.On("BlacklistAccessToken", mock.Anything, accessClaims.ID, mock.MatchedBy(func(ttl time.Duration) bool {
		return ttl > 0 && ttl <= auth.AccessTokenExpiry
	})).Return(nil)

	service := NewAuthService(new(MockUserRepository), new(MockUserService), jwtService, mockTokenStore)
	require.NoError(t, service.Logout(context.Background(), refresh, accessClaims))
	mockTokenStore.AssertExpectations(t)

	other := &auth.Claims{UserID: 99}
	assert.Equal(t, ErrInvalidRefreshToken, service.Logout(context.Background(), refresh, other))
}
