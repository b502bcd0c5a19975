package attendance

import "time"

// DateLayout is the calendar-day format stored on every session.
const DateLayout = "2006-01-02"

// Session is one check-in to check-out interval. Every value is either an
// OpenSession or a ClosedSession.
type Session interface {
	SessionID() string
	Owner() string
	Day() string
	CheckedInAt() time.Time

	// Elapsed returns the worked time as of now. Closed sessions ignore now.
	Elapsed(now time.Time) time.Duration

	// Display renders the worked time: HH:MM:SS while open, "Hh Mm" once closed.
	Display(now time.Time) string

	isSession()
}

// Base holds the fields written at check-in.
type Base struct {
	ID           string
	UserID       string
	Date         string
	CheckInTime  time.Time
	CheckInPhoto string
}

func (b Base) SessionID() string      { return b.ID }
func (b Base) Owner() string          { return b.UserID }
func (b Base) Day() string            { return b.Date }
func (b Base) CheckedInAt() time.Time { return b.CheckInTime }

// OpenSession is a session with no check-out yet: the user is working.
type OpenSession struct {
	Base
}

func (s OpenSession) Elapsed(now time.Time) time.Duration {
	d := now.Sub(s.CheckInTime)
	if d < 0 {
		return 0
	}
	return d
}

func (s OpenSession) Display(now time.Time) string {
	return FormatElapsed(s.Elapsed(now))
}

func (OpenSession) isSession() {}

// Close builds the closed form of s. It does not validate the instant.
func (s OpenSession) Close(at time.Time, photo string) ClosedSession {
	return ClosedSession{
		Base:            s.Base,
		CheckOutTime:    at,
		DurationMinutes: DurationMinutes(s.CheckInTime, at),
		CheckOutPhoto:   photo,
	}
}

// ClosedSession is a terminal session. DurationMinutes is fixed at check-out.
type ClosedSession struct {
	Base
	CheckOutTime    time.Time
	DurationMinutes int
	CheckOutPhoto   string
}

func (s ClosedSession) Elapsed(time.Time) time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

func (s ClosedSession) Display(time.Time) string {
	return FormatHoursMinutes(s.DurationMinutes)
}

func (ClosedSession) isSession() {}

// DurationMinutes returns whole minutes between in and out, never negative.
func DurationMinutes(in, out time.Time) int {
	d := out.Sub(in)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}

// DayOf returns the calendar day of t in loc.
func DayOf(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(DateLayout)
}
