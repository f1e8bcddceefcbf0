package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hongminglow/loyalty-console/internal/storage"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestMigrate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS console_sessions").WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS console_sessions_expires_idx").WillReturnResult(pgxmock.NewResult("CREATE", 0))

	require.NoError(t, New(mock).Migrate(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrateFailure(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS console_sessions").WillReturnError(errors.New("permission denied"))

	err := New(mock).Migrate(context.Background())
	assert.ErrorContains(t, err, "apply migrations")
}

func TestSaveSession(t *testing.T) {
	mock := newMock(t)
	now := time.Now().UTC()
	rec := storage.SessionRecord{
		ID: "sid-1", UserID: "user-1", UserName: "Ops", Token: "tok", CSRFToken: "csrf",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}
	mock.ExpectExec("INSERT INTO console_sessions").
		WithArgs(rec.ID, rec.UserID, rec.UserName, rec.Token, rec.CSRFToken, rec.CreatedAt, rec.ExpiresAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, New(mock).SaveSession(context.Background(), rec))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSession(t *testing.T) {
	mock := newMock(t)
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "user_id", "user_name", "token", "csrf_token", "created_at", "expires_at"}).
		AddRow("sid-1", "user-1", "Ops", "tok", "csrf", now, now.Add(time.Hour))
	mock.ExpectQuery("SELECT id, user_id, user_name, token, csrf_token, created_at, expires_at").
		WithArgs("sid-1", pgxmock.AnyArg()).
		WillReturnRows(rows)

	rec, err := New(mock).FindSession(context.Background(), "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "user-1", rec.UserID)
	assert.Equal(t, "tok", rec.Token)
	assert.Equal(t, "csrf", rec.CSRFToken)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFindSessionNotFound(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("missing", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "user_name", "token", "csrf_token", "created_at", "expires_at"}))

	_, err := New(mock).FindSession(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDeleteAndPurge(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec("DELETE FROM console_sessions WHERE id").WithArgs("sid-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec("DELETE FROM console_sessions WHERE expires_at").WithArgs(pgxmock.AnyArg()).WillReturnResult(pgxmock.NewResult("DELETE", 3))

	store := New(mock)
	require.NoError(t, store.DeleteSession(context.Background(), "sid-1"))
	n, err := store.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	require.NoError(t, mock.ExpectationsWereMet())
}
