package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/balkashynov/punch/internal/attendance"
)

// RunTimerTUI starts the live timer for an open session and reports how it ended
func RunTimerTUI(cfg TimerConfig, out io.Writer) error {
	model := NewTimerModel(cfg)

	p := tea.NewProgram(model, tea.WithAltScreen())
	finalModel, err := p.Run()

	// Handle exit messages after TUI closes
	if err != nil {
		return err
	}

	if m, ok := finalModel.(TimerModel); ok {
		if closed, done := m.CheckedOut(); done {
			fmt.Fprintf(out, "✅ Checked out. Session lasted %s\n", closed.Display(closed.CheckOutTime))
		} else {
			fmt.Fprintf(out, "⏱  Still checked in since %s. Run 'punch out' to check out.\n",
				m.session.CheckInTime.In(m.cfg.Location).Format("15:04"))
		}
		summary := m.Summary()
		fmt.Fprintf(out, "Total for %s: %s\n", summary.Date, summary.Total())
	}

	return nil
}

// compile-time check that the tracker drives the timer view
var _ SessionCloser = (*attendance.Tracker)(nil)
