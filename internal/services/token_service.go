package services

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrNotRefreshToken = errors.New("token is not a refresh token")
)

// Claims are the identity facts embedded in every issued token.
type Claims struct {
	Role      models.UserRole `json:"role"`
	Username  string          `json:"username"`
	Email     string          `json:"email"`
	LastName  string          `json:"last_name"`
	FirstName string          `json:"first_name"`
	TokenType string          `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID parses the user ID bound to the token.
func (c *Claims) UserID() (uint64, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}

// TokenPair is an access/refresh token pair bound to one user.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenService issues and verifies HS256 bearer tokens. Access tokens live
// for a day, refresh tokens for a week; refresh tokens are not rotated.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService from the process configuration.
func NewTokenService(cfg *config.Config) *TokenService {
	return &TokenService{
		secret:     []byte(cfg.JWTSecret),
		accessTTL:  cfg.AccessTokenTTL,
		refreshTTL: cfg.RefreshTokenTTL,
	}
}

// IssuePair issues an access/refresh pair carrying the user's claims.
func (s *TokenService) IssuePair(user *models.User) (*TokenPair, error) {
	now := time.Now()

	access, err := s.sign(user, TokenTypeAccess, now, s.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, err := s.sign(user, TokenTypeRefresh, now, s.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Verify parses and validates a token of either type.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// VerifyAccess validates an access token and returns its claims.
func (s *TokenService) VerifyAccess(tokenString string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Refresh exchanges a valid refresh token for a new access token. The
// refresh token itself stays valid until it expires.
func (s *TokenService) Refresh(refreshToken string) (string, error) {
	claims, err := s.Verify(refreshToken)
	if err != nil {
		return "", err
	}
	if claims.TokenType != TokenTypeRefresh {
		return "", ErrNotRefreshToken
	}

	now := time.Now()
	newClaims := &Claims{
		Role:      claims.Role,
		Username:  claims.Username,
		Email:     claims.Email,
		LastName:  claims.LastName,
		FirstName: claims.FirstName,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, newClaims)
	return token.SignedString(s.secret)
}

func (s *TokenService) sign(user *models.User, tokenType string, now time.Time, ttl time.Duration) (string, error) {
	claims := &Claims{
		Role:      user.Role,
		Username:  user.Username,
		Email:     user.Email,
		LastName:  user.LastName,
		FirstName: user.FirstName,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}
