package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hongminglow/loyalty-console/internal/auth"
	"github.com/hongminglow/loyalty-console/internal/storage"
)

// ServerStore keeps session data in a storage.SessionStore (Redis or Postgres)
// and only a signed session id in the cookie.
type ServerStore struct {
	records storage.SessionStore
	tokens  *auth.TokenManager
	jar     cookieJar
	now     func() time.Time
}

// NewServerStore returns a store backed by records.
func NewServerStore(records storage.SessionStore, tokens *auth.TokenManager, secure bool) *ServerStore {
	return &ServerStore{records: records, tokens: tokens, jar: cookieJar{secure: secure}, now: time.Now}
}

// Load resolves the cookie's session id against the record store.
func (s *ServerStore) Load(r *http.Request) (Session, error) {
	id, err := s.sessionID(r)
	if err != nil {
		return Session{}, err
	}
	rec, err := s.records.FindSession(r.Context(), id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Session{}, ErrExpired
		}
		return Session{}, fmt.Errorf("session: load record: %w", err)
	}
	sess := Session{
		ID:        rec.ID,
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		Token:     rec.Token,
		CSRFToken: rec.CSRFToken,
		ExpiresAt: rec.ExpiresAt,
	}
	if sess.Expired(s.now()) {
		return Session{}, ErrExpired
	}
	return sess, nil
}

// Save persists sess and points the cookie at it. A session already past its
// expiry is refused before any record or cookie is written.
func (s *ServerStore) Save(ctx context.Context, w http.ResponseWriter, sess Session) error {
	ttl := sess.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return fmt.Errorf("session: save: %w", ErrExpired)
	}
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	err := s.records.SaveSession(ctx, storage.SessionRecord{
		ID:        sess.ID,
		UserID:    sess.UserID,
		UserName:  sess.UserName,
		Token:     sess.Token,
		CSRFToken: sess.CSRFToken,
		CreatedAt: s.now(),
		ExpiresAt: sess.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("session: save record: %w", err)
	}
	claims := s.tokens.Registered(sess.UserID, ttl)
	claims.ID = sess.ID
	signed, err := s.tokens.Generate(claims)
	if err != nil {
		return fmt.Errorf("session: sign cookie: %w", err)
	}
	s.jar.write(w, sess, signed)
	return nil
}

// Clear drops the record, if any, and expires the cookies.
func (s *ServerStore) Clear(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	s.jar.expireAll(w)
	id, err := s.sessionID(r)
	if err != nil {
		return nil
	}
	return s.records.DeleteSession(ctx, id)
}

func (s *ServerStore) sessionID(r *http.Request) (string, error) {
	raw, ok := sessionCookie(r)
	if !ok {
		return "", ErrNoSession
	}
	var claims jwt.RegisteredClaims
	if err := s.tokens.Parse(raw, &claims); err != nil {
		return "", classify(err)
	}
	if claims.ID == "" {
		return "", ErrNoSession
	}
	return claims.ID, nil
}
