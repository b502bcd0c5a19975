package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/db"
	"github.com/balkashynov/punch/internal/testutil"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D}

func TestCheckInPhoto_NotReusedForTimerCheckOut(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "snap.png")
	require.NoError(t, os.WriteFile(snap, pngHeader, 0o600))
	require.NoError(t, inCmd.Flags().Set("photo", snap))
	t.Cleanup(func() { _ = inCmd.Flags().Set("photo", "") })

	now := monday
	store := db.NewSessionStore(testutil.NewTestDB(t))
	opts := append([]attendance.Option{
		attendance.WithClock(func() time.Time { return now }),
		attendance.WithLocation(time.UTC),
	}, checkInPhoto(inCmd)...)
	tracker := attendance.NewTracker(store, opts...)
	ctx := context.Background()

	open, err := tracker.CheckIn(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(open.CheckInPhoto, "data:image/png;base64,"))

	// The timer view checks out through the same tracker.
	now = now.Add(time.Hour)
	closed, err := tracker.CheckOut(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, open.CheckInPhoto, closed.CheckInPhoto)
	assert.Empty(t, closed.CheckOutPhoto)

	sessions, err := store.ListDay(ctx, "alice", "2025-03-10")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	stored, ok := sessions[0].(attendance.ClosedSession)
	require.True(t, ok)
	assert.Empty(t, stored.CheckOutPhoto)
}

func TestCheckOutPhoto_AttachedToCheckOutOnly(t *testing.T) {
	snap := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, os.WriteFile(snap, pngHeader, 0o600))
	require.NoError(t, outCmd.Flags().Set("photo", snap))
	t.Cleanup(func() { _ = outCmd.Flags().Set("photo", "") })

	now := monday
	opts := append([]attendance.Option{
		attendance.WithClock(func() time.Time { return now }),
		attendance.WithLocation(time.UTC),
	}, checkOutPhoto(outCmd)...)
	tracker := attendance.NewTracker(db.NewSessionStore(testutil.NewTestDB(t)), opts...)
	ctx := context.Background()

	open, err := tracker.CheckIn(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, open.CheckInPhoto)

	now = now.Add(time.Minute)
	closed, err := tracker.CheckOut(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(closed.CheckOutPhoto, "data:image/png;base64,"))
}

func TestFollowStatus_StopsWhenCheckedOutElsewhere(t *testing.T) {
	open := session("a", monday)
	minutes := 75
	events := make(chan attendance.Event, 2)
	events <- attendance.Event{Type: attendance.EventCheckedOut, SessionID: "other", UserID: "alice", At: monday.Add(time.Hour)}
	events <- attendance.Event{Type: attendance.EventCheckedOut, SessionID: "a", UserID: "alice", At: monday.Add(75 * time.Minute), DurationMinutes: &minutes}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var buf bytes.Buffer
	clock := func() time.Time { return monday.Add(2 * time.Hour) }
	require.NoError(t, followStatus(ctx, &buf, open, clock, time.UTC, time.Hour, events))

	require.NoError(t, ctx.Err(), "returned on the feed event, not the timeout")
	out := buf.String()
	assert.Contains(t, out, "Checked in since 09:00:00")
	assert.Contains(t, out, "Checked out at 10:15:00")
	assert.Contains(t, out, "Session duration: 1h 15m")
}

func TestFollowStatus_WithoutFeedRunsUntilCancelled(t *testing.T) {
	open := session("a", monday)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	clock := func() time.Time { return monday.Add(90 * time.Second) }
	require.NoError(t, followStatus(ctx, &buf, open, clock, time.UTC, 5*time.Millisecond, nil))

	out := buf.String()
	assert.Contains(t, out, "00:01:30")
	assert.NotContains(t, out, "Checked out")
}
