package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates a record does not exist or has expired.
var ErrNotFound = errors.New("record not found")

// SessionRecord is the server-side half of an operator session.
type SessionRecord struct {
	ID        string
	UserID    string
	UserName  string
	Token     string
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore captures persistence operations needed by the session layer.
type SessionStore interface {
	SaveSession(ctx context.Context, rec SessionRecord) error
	FindSession(ctx context.Context, id string) (SessionRecord, error)
	DeleteSession(ctx context.Context, id string) error
}
