package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hongminglow/loyalty-console/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Ensure Store satisfies the storage.SessionStore interface at compile time.
var _ storage.SessionStore = (*Store)(nil)

// DB is the subset of pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// Store provides Postgres-backed persistence for console sessions.
type Store struct {
	db DB
}

// NewSessionStore connects to databaseURL and runs migrations.
func NewSessionStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := New(pool)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// New wraps an existing pool without migrating.
func New(db DB) *Store {
	return &Store{db: db}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
	}
}

// Migrate creates the sessions table if needed.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS console_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_name TEXT NOT NULL DEFAULT '',
			token TEXT NOT NULL,
			csrf_token TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS console_sessions_expires_idx ON console_sessions (expires_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

// SaveSession upserts a session row.
func (s *Store) SaveSession(ctx context.Context, rec storage.SessionRecord) error {
	const query = `
		INSERT INTO console_sessions (id, user_id, user_name, token, csrf_token, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			user_name = EXCLUDED.user_name,
			token = EXCLUDED.token,
			csrf_token = EXCLUDED.csrf_token,
			expires_at = EXCLUDED.expires_at;
	`
	if _, err := s.db.Exec(ctx, query, rec.ID, rec.UserID, rec.UserName, rec.Token, rec.CSRFToken, rec.CreatedAt, rec.ExpiresAt); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// FindSession fetches an unexpired session by id.
func (s *Store) FindSession(ctx context.Context, id string) (storage.SessionRecord, error) {
	const query = `
		SELECT id, user_id, user_name, token, csrf_token, created_at, expires_at
		FROM console_sessions
		WHERE id = $1 AND expires_at > $2;
	`
	var rec storage.SessionRecord
	err := s.db.QueryRow(ctx, query, id, time.Now()).Scan(&rec.ID, &rec.UserID, &rec.UserName, &rec.Token, &rec.CSRFToken, &rec.CreatedAt, &rec.ExpiresAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.SessionRecord{}, storage.ErrNotFound
		}
		return storage.SessionRecord{}, fmt.Errorf("find session: %w", err)
	}
	return rec, nil
}

// DeleteSession removes a session row. Deleting a missing row is not an error.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM console_sessions WHERE id = $1;`, id); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// PurgeExpired deletes every expired session and reports how many went.
func (s *Store) PurgeExpired(ctx context.Context) (int64, error) {
	tag, err := s.db.Exec(ctx, `DELETE FROM console_sessions WHERE expires_at <= $1;`, time.Now())
	if err != nil {
		return 0, fmt.Errorf("purge sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
