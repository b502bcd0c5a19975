package testutil

import (
	"time"

	"github.com/google/uuid"

	"github.com/balkashynov/punch/internal/attendance"
)

// SessionOption adjusts a fixture session.
type SessionOption func(*attendance.OpenSession)

func WithUser(userID string) SessionOption {
	return func(s *attendance.OpenSession) {
		s.UserID = userID
	}
}

func WithPhoto(photo string) SessionOption {
	return func(s *attendance.OpenSession) {
		s.CheckInPhoto = photo
	}
}

// NewOpenSession returns an open session for "alice" checked in at checkIn,
// dated by its UTC calendar day.
func NewOpenSession(checkIn time.Time, opts ...SessionOption) attendance.OpenSession {
	s := attendance.OpenSession{Base: attendance.Base{
		ID:          uuid.New().String(),
		UserID:      "alice",
		Date:        attendance.DayOf(checkIn, time.UTC),
		CheckInTime: checkIn,
	}}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}
