package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenExpiry is the duration for which access tokens are valid.
	AccessTokenExpiry = 15 * time.Minute
	// RefreshTokenExpiry is the duration for which refresh tokens are valid.
	RefreshTokenExpiry = 7 * 24 * time.Hour
)

// Identity is what a token says about its bearer.
type Identity struct {
	UserID   uuid.UUID
	MemberID *uuid.UUID
	Email    string
	// Role is the raw role label; the Role Gate classifies it per request.
	Role string
}

// Claims represents JWT claims.
type Claims struct {
	UserID   uuid.UUID  `json:"user_id"`
	MemberID *uuid.UUID `json:"member_id,omitempty"`
	Email    string     `json:"email"`
	Role     string     `json:"role"`
	jwt.RegisteredClaims
}

// Identity returns the bearer identity carried by the claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, MemberID: c.MemberID, Email: c.Email, Role: c.Role}
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string) *JWTService {
	return &JWTService{
		secret: []byte(secret),
	}
}

// Secret returns the signing key for middleware that verifies tokens itself.
func (s *JWTService) Secret() []byte {
	return s.secret
}

func (s *JWTService) claimsFor(id Identity, tokenID string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		UserID:   id.UserID,
		MemberID: id.MemberID,
		Email:    id.Email,
		Role:     id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   id.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
}

// GenerateAccessToken generates a new access token for the identity.
func (s *JWTService) GenerateAccessToken(id Identity) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, s.claimsFor(id, "", AccessTokenExpiry))
	return token.SignedString(s.secret)
}

// GenerateRefreshToken generates a new refresh token for the identity.
// The refresh token ID is returned separately for storage in Redis.
func (s *JWTService) GenerateRefreshToken(id Identity) (tokenID string, token string, err error) {
	tokenID = uuid.New().String()
	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, s.claimsFor(id, tokenID, RefreshTokenExpiry))
	token, err = tokenObj.SignedString(s.secret)
	return tokenID, token, err
}

// ValidateToken validates a JWT token and returns the claims.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	return claims, nil
}

// ExtractTokenID extracts the token ID (JTI) from a refresh token.
func (s *JWTService) ExtractTokenID(tokenString string) (string, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return "", err
	}
	if claims.ID == "" {
		return "", errors.New("token ID not found")
	}
	return claims.ID, nil
}
