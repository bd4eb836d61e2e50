package localauth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/contextkeys"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/domain"
	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const tokenIssuer = "listing-browser"

// TokenService выпускает и проверяет JWT (HS256). Отозванные токены
// помнятся по jti до истечения их срока.
type TokenService struct {
	signingKey []byte
	now        func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

func NewTokenService(signingKey string) (*TokenService, error) {
	if signingKey == "" {
		return nil, fmt.Errorf("JWT signing key cannot be empty")
	}
	return &TokenService{
		signingKey: []byte(signingKey),
		now:        time.Now,
		revoked:    make(map[string]time.Time),
	}, nil
}

type jwtCustomClaims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	jwt.RegisteredClaims
}

// Claims - проверенное содержимое токена.
type Claims struct {
	UserID    uuid.UUID
	Email     string
	ExpiresAt time.Time
}

func (s *TokenService) GenerateToken(ctx context.Context, u *user, ttl time.Duration) (string, time.Time, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TokenService",
		"method":    "GenerateToken",
		"user_id":   u.ID.String(),
	})

	now := s.now()
	expiresAt := now.Add(ttl)
	claims := &jwtCustomClaims{
		UserID: u.ID,
		Email:  u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    tokenIssuer,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.Error("Failed to sign token", err, nil)
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	logger.Debug("Token generated", port.Fields{"ttl": ttl.String()})
	return signed, expiresAt, nil
}

func (s *TokenService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{
		"component": "TokenService",
		"method":    "ValidateToken",
	})

	claims, err := s.parse(tokenString)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Debug("Token has expired", nil)
		} else {
			logger.Warn("Invalid token format or signature", port.Fields{"error": err.Error()})
		}
		return nil, domain.ErrTokenInvalid
	}

	if s.isRevoked(claims.ID) {
		logger.Debug("Token has been revoked", port.Fields{"user_id": claims.UserID.String()})
		return nil, domain.ErrTokenInvalid
	}

	return &Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Revoke помечает токен отозванным. Невалидный токен отзывать не нужно.
func (s *TokenService) Revoke(tokenString string) error {
	claims, err := s.parse(tokenString)
	if err != nil {
		return domain.ErrTokenInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[claims.ID] = claims.ExpiresAt.Time
	s.pruneLocked()
	return nil
}

func (s *TokenService) parse(tokenString string) (*jwtCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.signingKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrTokenInvalid
	}
	return claims, nil
}

func (s *TokenService) isRevoked(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

// pruneLocked удаляет из списка отзыва токены, срок которых уже истек.
func (s *TokenService) pruneLocked() {
	now := s.now()
	for id, exp := range s.revoked {
		if now.After(exp) {
			delete(s.revoked, id)
		}
	}
}
