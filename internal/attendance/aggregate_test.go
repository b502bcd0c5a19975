package attendance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(hour, minute int) time.Time {
	return time.Date(2025, time.March, 10, hour, minute, 0, 0, time.UTC)
}

func closedSession(id string, in, out time.Time) ClosedSession {
	return OpenSession{Base: Base{ID: id, UserID: "alice", Date: "2025-03-10", CheckInTime: in}}.Close(out, "")
}

func TestSummarize_ClosedSessions(t *testing.T) {
	sessions := []Session{
		closedSession("a", at(9, 0), at(9, 30)),
		closedSession("b", at(10, 0), at(10, 45)),
	}

	summary := Summarize("2025-03-10", sessions, at(18, 0))
	assert.Equal(t, 75, summary.TotalMinutes)
	assert.Equal(t, 1, summary.Hours)
	assert.Equal(t, 15, summary.Minutes)
	assert.Equal(t, "1h 15m", summary.Total())
	assert.False(t, summary.Live)
}

func TestSummarize_OrdersByCheckInAndLabelsPositionally(t *testing.T) {
	sessions := []Session{
		closedSession("late", at(14, 0), at(15, 0)),
		closedSession("early", at(8, 0), at(8, 10)),
		OpenSession{Base: Base{ID: "open", CheckInTime: at(16, 0)}},
	}

	summary := Summarize("2025-03-10", sessions, at(16, 5))
	require.Len(t, summary.Entries, 3)
	assert.Equal(t, "early", summary.Entries[0].Session.SessionID())
	assert.Equal(t, "Session 1", summary.Entries[0].Label())
	assert.Equal(t, "late", summary.Entries[1].Session.SessionID())
	assert.Equal(t, "open", summary.Entries[2].Session.SessionID())
	assert.Equal(t, "Session 3", summary.Entries[2].Label())

	// The input slice is left untouched.
	assert.Equal(t, "late", sessions[0].SessionID())
}

func TestSummarize_LiveSessionRecomputedPerTick(t *testing.T) {
	sessions := []Session{
		closedSession("a", at(9, 0), at(9, 30)),
		OpenSession{Base: Base{ID: "b", CheckInTime: at(10, 0)}},
	}

	first := Summarize("2025-03-10", sessions, at(10, 0))
	assert.True(t, first.Live)
	assert.Equal(t, 30, first.TotalMinutes)

	later := Summarize("2025-03-10", sessions, at(11, 15))
	assert.Equal(t, 105, later.TotalMinutes)
	assert.Equal(t, "1h 45m", later.Total())
}

func TestSummarize_Empty(t *testing.T) {
	summary := Summarize("2025-03-10", nil, at(12, 0))
	assert.Empty(t, summary.Entries)
	assert.Equal(t, 0, summary.TotalMinutes)
	assert.Equal(t, "0h 0m", summary.Total())
}

func TestSummarize_OpenSessionInFutureCountsZero(t *testing.T) {
	sessions := []Session{OpenSession{Base: Base{ID: "skew", CheckInTime: at(12, 0)}}}

	summary := Summarize("2025-03-10", sessions, at(11, 0))
	assert.Equal(t, 0, summary.TotalMinutes)
}

func TestDurationMinutes(t *testing.T) {
	cases := []struct {
		name string
		in   time.Time
		out  time.Time
		want int
	}{
		{"exact", at(9, 0), at(9, 30), 30},
		{"floors seconds", at(9, 0), at(9, 0).Add(59 * time.Second), 0},
		{"just over", at(9, 0), at(9, 1).Add(time.Second), 1},
		{"negative clamps", at(10, 0), at(9, 0), 0},
		{"overnight", at(22, 0), at(22, 0).Add(10 * time.Hour), 600},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DurationMinutes(tc.in, tc.out))
		})
	}
}

func TestWeekStart(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, monday, WeekStart(time.Date(2025, time.March, 10, 17, 30, 0, 0, time.UTC)))
	assert.Equal(t, monday, WeekStart(time.Date(2025, time.March, 13, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, monday, WeekStart(time.Date(2025, time.March, 16, 23, 59, 0, 0, time.UTC)), "sunday belongs to the week before")
}

func TestSummarizeWeek_IgnoresOutsideDays(t *testing.T) {
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	outside := OpenSession{Base: Base{ID: "x", Date: "2025-03-17", CheckInTime: at(9, 0)}}.Close(at(10, 0), "")
	inside := closedSession("a", at(9, 0), at(9, 45))

	week := SummarizeWeek(start, []Session{outside, inside}, at(18, 0))
	assert.Equal(t, 45, week.TotalMinutes)
	assert.Equal(t, "2025-03-16", week.Days[6].Date)
}
