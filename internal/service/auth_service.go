package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"mdsq/internal/auth"
	apperrors "mdsq/internal/errors"
	"mdsq/internal/model"
	"mdsq/internal/repository"
)

const bcryptCost = 10

// LoginResult is returned by a successful login.
type LoginResult struct {
	AccessToken  string
	RefreshToken string
	User         *model.User
	Member       *model.Member
	// Role is the raw label the tokens carry; RoleClass is its classification.
	Role      string
	RoleClass auth.RoleClass
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	RefreshToken(ctx context.Context, refreshToken string) (accessToken string, err error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	memberRepo repository.MemberRepository
	jwtService *auth.JWTService
	tokenStore auth.TokenStoreInterface
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	jwtService *auth.JWTService,
	tokenStore auth.TokenStoreInterface,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		memberRepo: memberRepo,
		jwtService: jwtService,
		tokenStore: tokenStore,
		logger:     logger,
	}
}

// identityFor resolves the role a user acts with: the member's church role,
// else the user's system role, else the default church role.
func (s *authService) identityFor(ctx context.Context, user *model.User) (auth.Identity, *model.Member, error) {
	id := auth.Identity{UserID: user.ID, Email: user.Email}

	member, err := s.memberRepo.FindByUserID(ctx, user.ID)
	switch {
	case err == nil:
		id.MemberID = &member.ID
	case isNotFound(err):
		member = nil
	default:
		return id, nil, fmt.Errorf("find member: %w", err)
	}

	switch {
	case member != nil && strings.TrimSpace(member.ChurchRole) != "":
		id.Role = member.ChurchRole
	case strings.TrimSpace(user.Role) != "":
		id.Role = user.Role
	default:
		id.Role = model.DefaultChurchRole
	}
	return id, member, nil
}

// Login authenticates a user and returns access and refresh tokens.
func (s *authService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	identity, member, err := s.identityFor(ctx, user)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtService.GenerateAccessToken(identity)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	tokenID, refreshToken, err := s.jwtService.GenerateRefreshToken(identity)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.tokenStore.StoreRefreshToken(ctx, tokenID, user.ID, auth.RefreshTokenExpiry); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	s.logger.Info("login", zap.String("user_id", user.ID.String()), zap.String("role", identity.Role))
	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user,
		Member:       member,
		Role:         identity.Role,
		RoleClass:    auth.Classify(identity.Role),
	}, nil
}

// RefreshToken validates a refresh token and returns a new access token
// carrying the user's current role.
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil || claims.ID == "" {
		return "", apperrors.ErrInvalidRefreshToken
	}

	storedUserID, err := s.tokenStore.GetRefreshToken(ctx, claims.ID)
	if err != nil || storedUserID == uuid.Nil || storedUserID != claims.UserID {
		return "", apperrors.ErrInvalidRefreshToken
	}

	user, err := s.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		// the login was deleted after the token was issued
		return "", apperrors.ErrInvalidRefreshToken
	}

	identity, _, err := s.identityFor(ctx, user)
	if err != nil {
		return "", err
	}

	accessToken, err := s.jwtService.GenerateAccessToken(identity)
	if err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return accessToken, nil
}

// Logout invalidates a refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	tokenID, err := s.jwtService.ExtractTokenID(refreshToken)
	if err != nil {
		return apperrors.ErrInvalidRefreshToken
	}
	return s.tokenStore.DeleteRefreshToken(ctx, tokenID)
}
