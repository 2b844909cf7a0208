package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"mdsq/internal/auth"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
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

func (m *MockUserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMemberRepository mocks the lookups the auth service makes.
type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *model.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *model.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Member), args.Error(1)
}

func (m *MockMemberRepository) List(ctx context.Context) ([]model.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Member), args.Error(1)
}

func (m *MockMemberRepository) ListWithBirthDate(ctx context.Context) ([]model.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Member), args.Error(1)
}

func (m *MockMemberRepository) ReplaceLabels(ctx context.Context, member *model.Member, labels []model.Label) error {
	return m.Called(ctx, member, labels).Error(0)
}

func (m *MockMemberRepository) ClearLabels(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockMemberRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID string, userID uuid.UUID, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenID)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthService_Login(t *testing.T) {
	userID := uuid.New()
	memberID := uuid.New()

	tests := []struct {
		name          string
		email         string
		password      string
		setupMock     func(*MockUserRepository, *MockMemberRepository, *MockTokenStore)
		expectedError error
		expectedRole  string
		expectedClass auth.RoleClass
	}{
		{
			name:     "church role wins",
			email:    "Ana@Example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, m *MockMemberRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "ana@example.com").Return(&model.User{
					ID: userID, Email: "ana@example.com", PasswordHash: hashed(t, "password123"), Role: "USER",
				}, nil)
				m.On("FindByUserID", mock.Anything, userID).Return(&model.Member{ID: memberID, ChurchRole: "Pastora"}, nil)
				ts.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, auth.RefreshTokenExpiry).Return(nil)
			},
			expectedRole:  "Pastora",
			expectedClass: auth.RoleAdmin,
		},
		{
			name:     "user without member falls back to system role",
			email:    "ops@example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, m *MockMemberRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "ops@example.com").Return(&model.User{
					ID: userID, Email: "ops@example.com", PasswordHash: hashed(t, "password123"), Role: "ADMIN",
				}, nil)
				m.On("FindByUserID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
				ts.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, auth.RefreshTokenExpiry).Return(nil)
			},
			expectedRole:  "ADMIN",
			expectedClass: auth.RoleAdmin,
		},
		{
			name:     "no role anywhere",
			email:    "new@example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, m *MockMemberRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "new@example.com").Return(&model.User{
					ID: userID, Email: "new@example.com", PasswordHash: hashed(t, "password123"),
				}, nil)
				m.On("FindByUserID", mock.Anything, userID).Return(nil, gorm.ErrRecordNotFound)
				ts.On("StoreRefreshToken", mock.Anything, mock.Anything, userID, auth.RefreshTokenExpiry).Return(nil)
			},
			expectedRole:  model.DefaultChurchRole,
			expectedClass: auth.RoleCollaborator,
		},
		{
			name:     "wrong password",
			email:    "ana@example.com",
			password: "nope",
			setupMock: func(u *MockUserRepository, m *MockMemberRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "ana@example.com").Return(&model.User{
					ID: userID, Email: "ana@example.com", PasswordHash: hashed(t, "password123"),
				}, nil)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "notfound@example.com",
			password: "password123",
			setupMock: func(u *MockUserRepository, m *MockMemberRepository, ts *MockTokenStore) {
				u.On("FindByEmail", mock.Anything, "notfound@example.com").Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			members := new(MockMemberRepository)
			tokens := new(MockTokenStore)
			tt.setupMock(users, members, tokens)

			jwtService := auth.NewJWTService("test-secret")
			service := NewAuthService(users, members, jwtService, tokens, zap.NewNop())

			result, err := service.Login(context.Background(), tt.email, tt.password)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
				assert.Nil(t, result)
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, result.AccessToken)
				assert.NotEmpty(t, result.RefreshToken)
				assert.Equal(t, tt.expectedRole, result.Role)
				assert.Equal(t, tt.expectedClass, result.RoleClass)

				claims, err := jwtService.ValidateToken(result.AccessToken)
				require.NoError(t, err)
				assert.Equal(t, tt.expectedRole, claims.Role)
				assert.Equal(t, userID, claims.UserID)
			}

			users.AssertExpectations(t)
			members.AssertExpectations(t)
			tokens.AssertExpectations(t)
		})
	}
}

func TestAuthService_RefreshToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	userID := uuid.New()
	tokenID, refresh, err := jwtService.GenerateRefreshToken(auth.Identity{UserID: userID, Email: "ana@example.com", Role: "Colaborador"})
	require.NoError(t, err)

	t.Run("reissues with current role", func(t *testing.T) {
		users := new(MockUserRepository)
		members := new(MockMemberRepository)
		tokens := new(MockTokenStore)
		tokens.On("GetRefreshToken", mock.Anything, tokenID).Return(userID, nil)
		users.On("FindByID", mock.Anything, userID).Return(&model.User{ID: userID, Email: "ana@example.com"}, nil)
		members.On("FindByUserID", mock.Anything, userID).Return(&model.Member{ID: uuid.New(), ChurchRole: "Productor"}, nil)

		service := NewAuthService(users, members, jwtService, tokens, zap.NewNop())
		access, err := service.RefreshToken(context.Background(), refresh)
		require.NoError(t, err)

		claims, err := jwtService.ValidateToken(access)
		require.NoError(t, err)
		assert.Equal(t, "Productor", claims.Role)
	})

	t.Run("revoked token", func(t *testing.T) {
		tokens := new(MockTokenStore)
		tokens.On("GetRefreshToken", mock.Anything, tokenID).Return(uuid.Nil, assert.AnError)

		service := NewAuthService(new(MockUserRepository), new(MockMemberRepository), jwtService, tokens, zap.NewNop())
		_, err := service.RefreshToken(context.Background(), refresh)
		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		access, err := jwtService.GenerateAccessToken(auth.Identity{UserID: userID})
		require.NoError(t, err)

		service := NewAuthService(new(MockUserRepository), new(MockMemberRepository), jwtService, new(MockTokenStore), zap.NewNop())
		_, err = service.RefreshToken(context.Background(), access)
		assert.Equal(t, apperrors.ErrInvalidRefreshToken, err)
	})
}

func TestAuthService_Logout(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret")
	tokenID, refresh, err := jwtService.GenerateRefreshToken(auth.Identity{UserID: uuid.New()})
	require.NoError(t, err)

	tokens := new(MockTokenStore)
	tokens.On("DeleteRefreshToken", mock.Anything, tokenID).Return(nil)

	service := NewAuthService(new(MockUserRepository), new(MockMemberRepository), jwtService, tokens, zap.NewNop())
	require.NoError(t, service.Logout(context.Background(), refresh))
	assert.Equal(t, apperrors.ErrInvalidRefreshToken, service.Logout(context.Background(), "garbage"))
	tokens.AssertExpectations(t)
}
