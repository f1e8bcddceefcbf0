package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/hongminglow/loyalty-console/internal/storage"
)

const sessionKeyPrefix = "console:session:"

// Ensure Store satisfies the storage.SessionStore interface at compile time.
var _ storage.SessionStore = (*Store)(nil)

// Store keeps console sessions as JSON values that Redis expires on its own.
type Store struct {
	client *goredis.Client
}

// NewSessionStore wraps client. The caller owns the client's lifecycle.
func NewSessionStore(client *goredis.Client) *Store {
	if client == nil {
		panic("redis: client cannot be nil")
	}
	return &Store{client: client}
}

type sessionValue struct {
	UserID    string    `json:"user_id"`
	UserName  string    `json:"user_name,omitempty"`
	Token     string    `json:"token"`
	CSRFToken string    `json:"csrf_token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SaveSession writes rec with a TTL matching its expiry.
func (s *Store) SaveSession(ctx context.Context, rec storage.SessionRecord) error {
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("redis: session %s already expired", rec.ID)
	}
	payload, err := json.Marshal(sessionValue{
		UserID:    rec.UserID,
		UserName:  rec.UserName,
		Token:     rec.Token,
		CSRFToken: rec.CSRFToken,
		CreatedAt: rec.CreatedAt,
		ExpiresAt: rec.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(rec.ID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis: save session: %w", err)
	}
	return nil
}

// FindSession loads a session by id.
func (s *Store) FindSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	raw, err := s.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("redis: find session: %w", err)
	}
	var v sessionValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return storage.SessionRecord{}, fmt.Errorf("redis: decode session: %w", err)
	}
	return storage.SessionRecord{
		ID:        id,
		UserID:    v.UserID,
		UserName:  v.UserName,
		Token:     v.Token,
		CSRFToken: v.CSRFToken,
		CreatedAt: v.CreatedAt,
		ExpiresAt: v.ExpiresAt,
	}, nil
}

// DeleteSession removes a session. Deleting a missing key is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	return nil
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
