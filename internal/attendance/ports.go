package attendance

import (
	"context"
	"time"
)

// Store persists session records. Implementations return ErrConflict when a
// write would break the one-open-session-per-user rule.
type Store interface {
	// Insert writes a new open session.
	Insert(ctx context.Context, s OpenSession) error

	// Close writes the check-out fields, but only if the row is still open.
	Close(ctx context.Context, s ClosedSession) error

	// FindOpen returns the user's open session, if any.
	FindOpen(ctx context.Context, userID string) (OpenSession, bool, error)

	// ListDay returns the user's sessions on date ordered by check-in time.
	ListDay(ctx context.Context, userID, date string) ([]Session, error)

	// ListRange is ListDay over the inclusive date range [from, to].
	ListRange(ctx context.Context, userID, from, to string) ([]Session, error)
}

// Camera produces an opaque encoded image attached to a check-in or check-out.
type Camera interface {
	Capture(ctx context.Context) (string, error)
}

// EventType names a change feed event.
type EventType string

const (
	EventCheckedIn  EventType = "checked_in"
	EventCheckedOut EventType = "checked_out"
)

// Event is published on the change feed after a write is committed.
type Event struct {
	Type            EventType `json:"type"`
	SessionID       string    `json:"session_id"`
	UserID          string    `json:"user_id"`
	Date            string    `json:"date"`
	At              time.Time `json:"at"`
	DurationMinutes *int      `json:"duration_minutes,omitempty"`
}

// Publisher fans events out to other clients of the same user.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}
