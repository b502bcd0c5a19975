package attendance

import (
	"fmt"
	"sort"
	"time"
)

// DayEntry is a session with its position in the day. The index is not persisted.
type DayEntry struct {
	Index   int
	Session Session
}

// Label returns "Session N".
func (e DayEntry) Label() string {
	return fmt.Sprintf("Session %d", e.Index)
}

// DailySummary aggregates one user's sessions on one calendar day.
type DailySummary struct {
	Date         string
	Entries      []DayEntry
	TotalMinutes int
	Hours        int
	Minutes      int

	// Live is set while one of the sessions is open; the totals are only
	// valid for the instant they were computed at.
	Live bool
}

// Total renders the total as "Hh Mm".
func (s DailySummary) Total() string {
	return FormatHoursMinutes(s.TotalMinutes)
}

// Summarize orders sessions by check-in time and sums their durations.
// Closed sessions contribute their stored minutes, an open one contributes
// the time elapsed until now.
func Summarize(date string, sessions []Session, now time.Time) DailySummary {
	ordered := make([]Session, len(sessions))
	copy(ordered, sessions)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CheckedInAt().Before(ordered[j].CheckedInAt())
	})

	summary := DailySummary{Date: date}
	var total time.Duration
	for i, s := range ordered {
		summary.Entries = append(summary.Entries, DayEntry{Index: i + 1, Session: s})
		if _, open := s.(OpenSession); open {
			summary.Live = true
		}
		total += s.Elapsed(now)
	}

	summary.TotalMinutes = int(total / time.Minute)
	summary.Hours = summary.TotalMinutes / 60
	summary.Minutes = summary.TotalMinutes % 60
	return summary
}

// WeekSummary holds Monday..Sunday summaries for one calendar week.
type WeekSummary struct {
	Start        time.Time
	Days         [7]DailySummary
	TotalMinutes int
}

// Total renders the week total as "Hh Mm".
func (w WeekSummary) Total() string {
	return FormatHoursMinutes(w.TotalMinutes)
}

// SummarizeWeek groups sessions by their stored date into the week that
// starts at weekStart. Sessions outside the week are ignored.
func SummarizeWeek(weekStart time.Time, sessions []Session, now time.Time) WeekSummary {
	week := WeekSummary{Start: weekStart}

	byDate := make(map[string][]Session)
	for _, s := range sessions {
		byDate[s.Day()] = append(byDate[s.Day()], s)
	}

	for i := 0; i < 7; i++ {
		date := weekStart.AddDate(0, 0, i).Format(DateLayout)
		week.Days[i] = Summarize(date, byDate[date], now)
		week.TotalMinutes += week.Days[i].TotalMinutes
	}
	return week
}

// WeekStart returns midnight of the Monday on or before t, in t's location.
func WeekStart(t time.Time) time.Time {
	weekday := t.Weekday()
	daysFromMonday := int(weekday - time.Monday)
	if weekday == time.Sunday {
		daysFromMonday = 6
	}

	start := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
}
