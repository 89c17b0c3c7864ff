package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/infinitynet/api/pkg/kernel"
)

// TokenService signs and verifies the HS256 session tokens. A single
// static secret and issuer tag, read from configuration at startup.
type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	issuer     string
	now        func() time.Time
}

func NewTokenService(secret string, accessTTL, refreshTTL time.Duration, issuer string) *TokenService {
	if accessTTL == 0 {
		accessTTL = 24 * time.Hour
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	if issuer == "" {
		issuer = "api-infinitynet"
	}

	return &TokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		issuer:     issuer,
		now:        time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	s.now = now
	return s
}

// AccessClaims is the decoded payload of an access token.
type AccessClaims struct {
	Name   string          `json:"name,omitempty"`
	Email  string          `json:"email,omitempty"`
	Source string          `json:"source"`
	Role   *kernel.RoleRef `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs an access token carrying the full identity
// snapshot including the role.
func (s *TokenService) IssueAccessToken(user UserSnapshot) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Name:   user.Nome,
		Email:  user.Email,
		Source: user.Source,
		Role:   &user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", ErrInvalidToken().WithDetail("error", err.Error())
	}
	return signed, nil
}

// IssueRefreshToken signs a refresh token carrying only the subject and
// the source discriminator.
func (s *TokenService) IssueRefreshToken(userID, source string) (string, error) {
	now := s.now()
	claims := AccessClaims{
		Source: source,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", ErrInvalidToken().WithDetail("error", err.Error())
	}
	return signed, nil
}

// VerifyAccessToken decodes and validates an access token.
func (s *TokenService) VerifyAccessToken(tokenString string) (*AccessClaims, error) {
	return s.verify(tokenString, false)
}

// VerifyRefreshToken decodes and validates a refresh token; the source
// discriminator is mandatory here.
func (s *TokenService) VerifyRefreshToken(tokenString string) (*AccessClaims, error) {
	return s.verify(tokenString, true)
}

func (s *TokenService) verify(tokenString string, requireSource bool) (*AccessClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AccessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken().WithDetail("error", err.Error())
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken()
	}
	if claims.Issuer != s.issuer {
		return nil, ErrInvalidToken().WithDetail("error", "issuer mismatch")
	}
	if claims.Subject == "" {
		return nil, ErrInvalidToken().WithDetail("error", "missing subject")
	}
	if requireSource && claims.Source == "" {
		return nil, ErrInvalidToken().WithDetail("error", "missing source")
	}
	return claims, nil
}
