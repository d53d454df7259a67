package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that does not verify.
var ErrInvalidToken = errors.New("invalid token")

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = 7 * 24 * time.Hour

// AuthService issues and verifies the bearer tokens that identify an actor.
// The token subject is the actor id every mutation is authorized against.
type AuthService struct {
	jwtSecret []byte
	now       func() time.Time
}

func NewAuthService(secret string) *AuthService {
	return &AuthService{jwtSecret: []byte(secret), now: time.Now}
}

// CreateToken generates a signed token for actor that expires after ttl.
func (s *AuthService) CreateToken(actor string, ttl time.Duration) (string, error) {
	if actor == "" {
		return "", errors.New("create token: empty actor")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   actor,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	})

	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken checks the signature and expiry of tokenString and returns the
// actor it was issued for.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return s.jwtSecret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", fmt.Errorf("%w: subject claim missing", ErrInvalidToken)
	}
	return claims.Subject, nil
}
