// Package session reads, writes and clears the operator session shared by every
// console page, and turns it into the credentials attached to backend calls.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hongminglow/loyalty-console/internal/auth"
	"github.com/hongminglow/loyalty-console/internal/backend"
)

// Cookie names shared with the pages' scripts.
const (
	CookieSession = "session_token"
	CookieUserID  = "user_id"
	CookieCSRF    = "csrf_token"
)

var (
	// ErrNoSession means the request carries no usable session.
	ErrNoSession = errors.New("no session")
	// ErrExpired means the session existed but its lifetime is over.
	ErrExpired = errors.New("session expired")
)

// Session is the signed-in operator.
type Session struct {
	ID        string
	UserID    string
	UserName  string
	Token     string
	CSRFToken string
	ExpiresAt time.Time
}

// Store reads, writes and clears sessions on behalf of handlers.
type Store interface {
	Load(r *http.Request) (Session, error)
	Save(ctx context.Context, w http.ResponseWriter, s Session) error
	Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

// New starts a session for a successful login. The backend token loses any
// "Bearer " prefix; the session ends at ttl or the backend expiry, whichever
// comes first. A backend expiry that has already passed yields ErrExpired.
func New(userID, userName, token string, backendExpiry time.Time, ttl time.Duration) (Session, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(token) == "" {
		return Session{}, errors.New("session: user id and token are required")
	}
	csrf, err := auth.NewCSRFToken()
	if err != nil {
		return Session{}, fmt.Errorf("session: %w", err)
	}
	expires := time.Now().Add(ttl)
	if !backendExpiry.IsZero() && backendExpiry.Before(expires) {
		expires = backendExpiry
	}
	if !expires.After(time.Now()) {
		return Session{}, fmt.Errorf("session: backend token already expired: %w", ErrExpired)
	}
	return Session{
		ID:        uuid.NewString(),
		UserID:    strings.TrimSpace(userID),
		UserName:  strings.TrimSpace(userName),
		Token:     strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer ")),
		CSRFToken: csrf,
		ExpiresAt: expires,
	}, nil
}

// Expired reports whether the session is past its expiry at now.
func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Credentials returns the headers the backend expects for this operator.
func (s Session) Credentials() backend.Credentials {
	return backend.Credentials{Token: s.Token, UserID: s.UserID, CSRFToken: s.CSRFToken}
}

type contextKey struct{}

// WithSession stores s in ctx.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
