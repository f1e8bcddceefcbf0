package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned when a console token fails signature, issuer or expiry checks.
var ErrInvalidToken = errors.New("invalid token")

// TokenManager signs and verifies the HS256 JWTs the console keeps in cookies.
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewTokenManager creates a manager with the provided key, issuer, and default lifetime.
func NewTokenManager(secret []byte, issuer string, ttl time.Duration) *TokenManager {
	return &TokenManager{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
	}
}

// TTL is the default lifetime applied by Registered.
func (t *TokenManager) TTL() time.Duration {
	return t.ttl
}

// Registered builds standard claims for subject. A zero ttl uses the manager default.
func (t *TokenManager) Registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	if ttl <= 0 {
		ttl = t.ttl
	}
	now := time.Now()
	return jwt.RegisteredClaims{
		Issuer:    t.issuer,
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

// Generate issues a signed JWT string for the provided claims.
func (t *TokenManager) Generate(claims jwt.Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Parse verifies token and decodes it into claims.
func (t *TokenManager) Parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	}, jwt.WithIssuer(t.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenExpired)
		}
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return ErrInvalidToken
	}
	return nil
}
