package commands

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/punch/internal/attendance"
)

var monday = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func session(id string, in time.Time) attendance.OpenSession {
	return attendance.OpenSession{Base: attendance.Base{
		ID:          id,
		UserID:      "alice",
		Date:        in.Format(attendance.DateLayout),
		CheckInTime: in,
	}}
}

func sampleDay(now time.Time) attendance.DailySummary {
	sessions := []attendance.Session{
		session("a", monday).Close(monday.Add(30*time.Minute), ""),
		session("b", monday.Add(time.Hour)).Close(monday.Add(time.Hour+45*time.Minute), ""),
	}
	return attendance.Summarize("2025-03-10", sessions, now)
}

func TestRenderDay(t *testing.T) {
	var buf bytes.Buffer
	renderDay(&buf, sampleDay(monday.Add(8*time.Hour)), monday.Add(8*time.Hour), time.UTC)

	out := buf.String()
	assert.Contains(t, out, "2025-03-10")
	assert.Contains(t, out, "Session 1")
	assert.Contains(t, out, "09:00")
	assert.Contains(t, out, "09:30")
	assert.Contains(t, out, "Session 2")
	assert.Contains(t, out, "0h 45m")
	assert.Contains(t, out, "1h 15m")
}

func TestRenderDay_OpenSessionMarkedRunning(t *testing.T) {
	now := monday.Add(90 * time.Second)
	summary := attendance.Summarize("2025-03-10", []attendance.Session{session("a", monday)}, now)

	var buf bytes.Buffer
	renderDay(&buf, summary, now, time.UTC)
	assert.Contains(t, buf.String(), "00:01:30 (running)")
}

func TestRenderDay_Empty(t *testing.T) {
	var buf bytes.Buffer
	renderDay(&buf, attendance.Summarize("2025-03-10", nil, monday), monday, time.UTC)
	assert.Equal(t, "No sessions on 2025-03-10.\n", buf.String())
}

func TestRenderDayJSON(t *testing.T) {
	now := monday.Add(3 * time.Hour)
	sessions := []attendance.Session{
		session("a", monday).Close(monday.Add(30*time.Minute), ""),
		session("b", monday.Add(2*time.Hour)),
	}
	summary := attendance.Summarize("2025-03-10", sessions, now)

	var buf bytes.Buffer
	require.NoError(t, renderDayJSON(&buf, "alice", summary, now))

	var decoded struct {
		UserID   string `json:"user_id"`
		Date     string `json:"date"`
		Sessions []struct {
			Label           string     `json:"label"`
			CheckOutTime    *time.Time `json:"check_out_time"`
			DurationMinutes int        `json:"duration_minutes"`
			Open            bool       `json:"open"`
		} `json:"sessions"`
		TotalMinutes int    `json:"total_minutes"`
		Total        string `json:"total"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "alice", decoded.UserID)
	require.Len(t, decoded.Sessions, 2)
	assert.Equal(t, "Session 1", decoded.Sessions[0].Label)
	assert.NotNil(t, decoded.Sessions[0].CheckOutTime)
	assert.Equal(t, 30, decoded.Sessions[0].DurationMinutes)
	assert.True(t, decoded.Sessions[1].Open)
	assert.Nil(t, decoded.Sessions[1].CheckOutTime)
	assert.Equal(t, 60, decoded.Sessions[1].DurationMinutes)
	assert.Equal(t, 90, decoded.TotalMinutes)
	assert.Equal(t, "1h 30m", decoded.Total)
}

func TestRenderWeek(t *testing.T) {
	wednesday := monday.AddDate(0, 0, 2)
	sessions := []attendance.Session{
		session("a", monday).Close(monday.Add(75*time.Minute), ""),
		session("b", wednesday).Close(wednesday.Add(8*time.Hour), ""),
	}
	week := attendance.SummarizeWeek(attendance.WeekStart(monday), sessions, wednesday.Add(9*time.Hour))

	var buf bytes.Buffer
	renderWeek(&buf, week)

	out := buf.String()
	assert.Contains(t, out, "2025-03-10")
	assert.Contains(t, out, "1h 15m")
	assert.Contains(t, out, "8h 0m")
	assert.Contains(t, out, "9h 15m")
	assert.Contains(t, out, "Week of Mar 10 to Mar 16, 2025")
}

func TestRenderEvent(t *testing.T) {
	minutes := 75
	var buf bytes.Buffer
	renderEvent(&buf, attendance.Event{Type: attendance.EventCheckedIn, UserID: "alice", Date: "2025-03-10", At: monday}, time.UTC)
	renderEvent(&buf, attendance.Event{Type: attendance.EventCheckedOut, UserID: "alice", At: monday.Add(75 * time.Minute), DurationMinutes: &minutes}, time.UTC)

	out := buf.String()
	assert.Contains(t, out, "09:00:00")
	assert.Contains(t, out, "alice checked in (2025-03-10)")
	assert.Contains(t, out, "alice checked out after 1h 15m")
}

func TestRenderStatusAndCheckOut(t *testing.T) {
	open := session("a", monday)

	var buf bytes.Buffer
	renderStatus(&buf, open, monday.Add(61*time.Second), time.UTC)
	assert.Contains(t, buf.String(), "Elapsed time: 00:01:01")

	buf.Reset()
	renderCheckOut(&buf, open.Close(monday.Add(75*time.Minute), ""), time.UTC)
	assert.Contains(t, buf.String(), "Checked out at 10:15:00")
	assert.Contains(t, buf.String(), "Session duration: 1h 15m")
}
