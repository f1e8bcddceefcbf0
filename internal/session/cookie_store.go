package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hongminglow/loyalty-console/internal/auth"
)

// CookieStore keeps the whole session in a signed cookie. The backend token
// inside it is sealed so the browser never sees it in clear.
type CookieStore struct {
	tokens *auth.TokenManager
	sealer *auth.Sealer
	jar    cookieJar
}

// NewCookieStore returns a stateless store.
func NewCookieStore(tokens *auth.TokenManager, sealer *auth.Sealer, secure bool) *CookieStore {
	return &CookieStore{tokens: tokens, sealer: sealer, jar: cookieJar{secure: secure}}
}

type cookieClaims struct {
	jwt.RegisteredClaims
	Name   string `json:"name,omitempty"`
	CSRF   string `json:"csrf"`
	Sealed string `json:"tok"`
}

// Load decodes the session cookie.
func (c *CookieStore) Load(r *http.Request) (Session, error) {
	raw, ok := sessionCookie(r)
	if !ok {
		return Session{}, ErrNoSession
	}
	var claims cookieClaims
	if err := c.tokens.Parse(raw, &claims); err != nil {
		return Session{}, classify(err)
	}
	token, err := c.sealer.Open(claims.Sealed)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrNoSession, err)
	}
	s := Session{
		ID:        claims.ID,
		UserID:    claims.Subject,
		UserName:  claims.Name,
		Token:     token,
		CSRFToken: claims.CSRF,
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	return s, nil
}

// Save signs s into the session cookie. A session already past its expiry
// is refused and nothing is written.
func (c *CookieStore) Save(_ context.Context, w http.ResponseWriter, s Session) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session: save: %w", ErrExpired)
	}
	sealed, err := c.sealer.Seal(s.Token)
	if err != nil {
		return fmt.Errorf("session: seal token: %w", err)
	}
	claims := cookieClaims{
		RegisteredClaims: c.tokens.Registered(s.UserID, ttl),
		Name:             s.UserName,
		CSRF:             s.CSRFToken,
		Sealed:           sealed,
	}
	claims.ID = s.ID
	signed, err := c.tokens.Generate(claims)
	if err != nil {
		return fmt.Errorf("session: sign cookie: %w", err)
	}
	c.jar.write(w, s, signed)
	return nil
}

// Clear expires the session cookies.
func (c *CookieStore) Clear(_ context.Context, w http.ResponseWriter, _ *http.Request) error {
	c.jar.expireAll(w)
	return nil
}

func classify(err error) error {
	if errors.Is(err, jwt.ErrTokenExpired) {
		return ErrExpired
	}
	return fmt.Errorf("%w: %v", ErrNoSession, err)
}
