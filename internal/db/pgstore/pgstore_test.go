package pgstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/attendance"
)

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.True(t, isUniqueViolation(fmt.Errorf("exec: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}

// newTestStore connects to PUNCH_TEST_DATABASE_URL and skips when unset.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("PUNCH_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PUNCH_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return New(pool)
}

func TestStore_Lifecycle(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	user := "pg-" + uuid.New().String()
	in := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

	open := attendance.OpenSession{Base: attendance.Base{ID: uuid.New().String(), UserID: user, Date: "2025-03-10", CheckInTime: in}}
	require.NoError(t, store.Insert(ctx, open))

	dup := open
	dup.ID = uuid.New().String()
	assert.ErrorIs(t, store.Insert(ctx, dup), attendance.ErrConflict)

	found, ok, err := store.FindOpen(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, open.ID, found.ID)

	closed := open.Close(in.Add(75*time.Minute), "")
	require.NoError(t, store.Close(ctx, closed))
	assert.ErrorIs(t, store.Close(ctx, closed), attendance.ErrConflict)

	sessions, err := store.ListDay(ctx, user, "2025-03-10")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	got, ok := sessions[0].(attendance.ClosedSession)
	require.True(t, ok)
	assert.Equal(t, 75, got.DurationMinutes)
}
