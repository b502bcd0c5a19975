package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/balkashynov/punch/internal/attendance"
	"github.com/balkashynov/punch/internal/parser"
)

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show the day's sessions and total",
	Long: `Show every session of a day in check-in order with the day's total.
An open session counts up to now.

Examples:
  punch today
  punch today --date yesterday
  punch today --date 2025-03-10 --json`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		dayFlag, _ := cmd.Flags().GetString("date")
		now := a.tracker.Now().In(a.tracker.Location())
		day, err := parser.ParseDay(dayFlag, now)
		if err != nil {
			return err
		}

		summary, err := a.tracker.Summary(cmd.Context(), a.user, day.Format(attendance.DateLayout))
		if err != nil {
			return err
		}

		jsonOutput, _ := cmd.Flags().GetBool("json")
		if jsonOutput {
			return renderDayJSON(cmd.OutOrStdout(), a.user, summary, now)
		}
		renderDay(cmd.OutOrStdout(), summary, now, a.tracker.Location())
		return nil
	}),
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Show the weekly timesheet",
	Long: `Show hours worked per day for a calendar week, Monday to Sunday.

Example output:
  Day         Date         Sessions  Total
  Mon         2025-03-10          2  1h 15m
  Tue         2025-03-11          1  8h 0m
  ...
  Total                           3  9h 15m`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		dayFlag, _ := cmd.Flags().GetString("date")
		day, err := parser.ParseDay(dayFlag, a.tracker.Now().In(a.tracker.Location()))
		if err != nil {
			return err
		}

		week, err := a.tracker.Week(cmd.Context(), a.user, day)
		if err != nil {
			return err
		}
		renderWeek(cmd.OutOrStdout(), week)
		return nil
	}),
}

func init() {
	todayCmd.Flags().StringP("date", "d", "", "Day to show (today, yesterday, yyyy-mm-dd, dd/mm/yyyy, 3 days ago, -3d)")
	todayCmd.Flags().Bool("json", false, "JSON output")
	weekCmd.Flags().StringP("date", "d", "", "Any day in the week to show")
}

// renderDay prints the day's sessions as a table with the total
func renderDay(out io.Writer, summary attendance.DailySummary, now time.Time, loc *time.Location) {
	if len(summary.Entries) == 0 {
		fmt.Fprintf(out, "No sessions on %s.\n", summary.Date)
		return
	}

	fmt.Fprintf(out, "%s\n\n", summary.Date)
	fmt.Fprintf(out, "%-12s %-8s %-8s %s\n", "Session", "In", "Out", "Duration")
	fmt.Fprintf(out, "%s\n", strings.Repeat("-", 40))

	for _, entry := range summary.Entries {
		in := entry.Session.CheckedInAt().In(loc).Format("15:04")
		outAt := "-"
		if closed, ok := entry.Session.(attendance.ClosedSession); ok {
			outAt = closed.CheckOutTime.In(loc).Format("15:04")
		}
		value := entry.Session.Display(now)
		if _, open := entry.Session.(attendance.OpenSession); open {
			value += " (running)"
		}
		fmt.Fprintf(out, "%-12s %-8s %-8s %s\n", entry.Label(), in, outAt, value)
	}

	fmt.Fprintf(out, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(out, "%-30s %s\n", "Total", summary.Total())
}

// renderDayJSON outputs the day as JSON
func renderDayJSON(out io.Writer, userID string, summary attendance.DailySummary, now time.Time) error {
	// Create a simplified structure for JSON output
	type JSONSession struct {
		Label           string     `json:"label"`
		ID              string     `json:"id"`
		CheckInTime     time.Time  `json:"check_in_time"`
		CheckOutTime    *time.Time `json:"check_out_time,omitempty"`
		DurationMinutes int        `json:"duration_minutes"`
		Open            bool       `json:"open"`
		Display         string     `json:"display"`
	}
	type JSONDay struct {
		UserID       string        `json:"user_id"`
		Date         string        `json:"date"`
		Sessions     []JSONSession `json:"sessions"`
		TotalMinutes int           `json:"total_minutes"`
		Total        string        `json:"total"`
	}

	day := JSONDay{
		UserID:       userID,
		Date:         summary.Date,
		Sessions:     make([]JSONSession, 0, len(summary.Entries)),
		TotalMinutes: summary.TotalMinutes,
		Total:        summary.Total(),
	}
	for _, entry := range summary.Entries {
		js := JSONSession{
			Label:       entry.Label(),
			ID:          entry.Session.SessionID(),
			CheckInTime: entry.Session.CheckedInAt(),
			Display:     entry.Session.Display(now),
		}
		switch s := entry.Session.(type) {
		case attendance.ClosedSession:
			checkOut := s.CheckOutTime
			js.CheckOutTime = &checkOut
			js.DurationMinutes = s.DurationMinutes
		case attendance.OpenSession:
			js.Open = true
			js.DurationMinutes = int(s.Elapsed(now) / time.Minute)
		}
		day.Sessions = append(day.Sessions, js)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(day)
}

// renderWeek outputs the Monday..Sunday timesheet
func renderWeek(out io.Writer, week attendance.WeekSummary) {
	dayNames := []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

	fmt.Fprintf(out, "%-6s %-12s %8s  %s\n", "Day", "Date", "Sessions", "Total")
	fmt.Fprintf(out, "%s\n", strings.Repeat("-", 40))

	sessions := 0
	for i, day := range week.Days {
		total := day.Total()
		if len(day.Entries) == 0 {
			total = "-"
		} else if day.Live {
			total += " *"
		}
		fmt.Fprintf(out, "%-6s %-12s %8d  %s\n", dayNames[i], day.Date, len(day.Entries), total)
		sessions += len(day.Entries)
	}

	fmt.Fprintf(out, "%s\n", strings.Repeat("-", 40))
	fmt.Fprintf(out, "%-19s %8d  %s\n", "Total", sessions, week.Total())

	// Print week info
	fmt.Fprintf(out, "\nWeek of %s to %s\n",
		week.Start.Format("Jan 2"),
		week.Start.AddDate(0, 0, 6).Format("Jan 2, 2006"))
}
