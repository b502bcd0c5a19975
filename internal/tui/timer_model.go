package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/balkashynov/punch/internal/attendance"
)

// SessionCloser checks a user out. *attendance.Tracker satisfies it.
type SessionCloser interface {
	CheckOut(ctx context.Context, userID string) (attendance.ClosedSession, error)
}

// TimerConfig is everything the timer view needs.
type TimerConfig struct {
	Closer   SessionCloser
	UserID   string
	Session  attendance.OpenSession
	Earlier  []attendance.Session // the day's other sessions
	Clock    func() time.Time
	Interval time.Duration
	Location *time.Location
}

// TimerModel represents the TUI model for an active attendance session
type TimerModel struct {
	width  int
	height int

	cfg     TimerConfig
	keys    timerKeyMap
	help    help.Model
	session attendance.OpenSession

	// Timer state
	now time.Time

	// Animation state
	timerAnimation int

	// UI state
	checkingOut bool // check-out request in flight
	checkedOut  bool // store confirmed the check-out
	exiting     bool // user left with the session still open
	closed      attendance.ClosedSession
	err         error
}

// timerTickMsg is sent every interval to update the timer
type timerTickMsg struct{}

// animationTickMsg is sent for faster animations
type animationTickMsg struct{}

type checkOutDoneMsg struct {
	closed attendance.ClosedSession
}

type checkOutFailedMsg struct {
	err error
}

// NewTimerModel creates a new timer TUI model
func NewTimerModel(cfg TimerConfig) TimerModel {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return TimerModel{
		cfg:     cfg,
		keys:    defaultTimerKeys(),
		help:    help.New(),
		session: cfg.Session,
		now:     cfg.Clock(),
	}
}

// Init starts both the timer and animation tickers
func (m TimerModel) Init() tea.Cmd {
	return tea.Batch(m.tick(), m.animate())
}

func (m TimerModel) tick() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(time.Time) tea.Msg {
		return timerTickMsg{}
	})
}

func (m TimerModel) animate() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(time.Time) tea.Msg {
		return animationTickMsg{}
	})
}

// running is false once the view is done; ticks stop re-arming from then on
func (m TimerModel) running() bool {
	return !m.checkedOut && !m.exiting
}

// Update handles messages
func (m TimerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case timerTickMsg:
		m.now = m.cfg.Clock()
		if m.running() {
			return m, m.tick()
		}
		return m, nil

	case animationTickMsg:
		m.timerAnimation = (m.timerAnimation + 1) % 4
		if m.running() {
			return m, m.animate()
		}
		return m, nil

	case checkOutDoneMsg:
		m.checkingOut = false
		m.checkedOut = true
		m.closed = msg.closed
		m.err = nil
		return m, tea.Quit

	case checkOutFailedMsg:
		// Session stays open; the user can retry
		m.checkingOut = false
		m.err = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.CheckOut):
			if m.checkingOut || !m.running() {
				return m, nil
			}
			m.checkingOut = true
			m.err = nil
			return m, m.checkOut()
		case key.Matches(msg, m.keys.Leave), key.Matches(msg, m.keys.Quit):
			m.exiting = true
			return m, tea.Quit
		}
	}

	return m, nil
}

// checkOut runs the store round-trip off the UI loop so the clock keeps ticking
func (m TimerModel) checkOut() tea.Cmd {
	closer, userID := m.cfg.Closer, m.cfg.UserID
	return func() tea.Msg {
		closed, err := closer.CheckOut(context.Background(), userID)
		if err != nil {
			return checkOutFailedMsg{err: err}
		}
		return checkOutDoneMsg{closed: closed}
	}
}

// Elapsed is the live duration of the open session
func (m TimerModel) Elapsed() time.Duration {
	return m.session.Elapsed(m.now)
}

// Summary aggregates the day including the live session
func (m TimerModel) Summary() attendance.DailySummary {
	sessions := append([]attendance.Session{}, m.cfg.Earlier...)
	if m.checkedOut {
		sessions = append(sessions, m.closed)
	} else {
		sessions = append(sessions, m.session)
	}
	return attendance.Summarize(m.session.Date, sessions, m.now)
}

// CheckedOut reports whether the view ended with a confirmed check-out
func (m TimerModel) CheckedOut() (attendance.ClosedSession, bool) {
	return m.closed, m.checkedOut
}

// View renders the timer TUI
func (m TimerModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	helpBar := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHelpText)).
		Align(lipgloss.Center).
		Width(m.width).
		Render(m.help.View(m.keys))

	// Available height for content (total minus help bar and gap)
	contentHeight := m.height - 2

	// Narrow view: just timer panel, full width
	if m.width < 90 {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderTimerPanel(m.width, contentHeight),
			helpBar,
		)
	}

	// Wide view: timer left, the day's sessions right
	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 2

	content := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.renderTimerPanel(leftWidth, contentHeight),
		"  ",
		m.renderDayPanel(rightWidth, contentHeight),
	)

	return lipgloss.JoinVertical(lipgloss.Left, content, helpBar)
}

func centered(width int) lipgloss.Style {
	return lipgloss.NewStyle().Align(lipgloss.Center).Width(width)
}

// renderTimerPanel renders the big clock with status lines
func (m TimerModel) renderTimerPanel(width, height int) string {
	var components []string

	animChars := []string{"⏱", "⏲", "⏱", "⏲"}
	animChar := animChars[m.timerAnimation]
	header := fmt.Sprintf("%s  CHECKED IN  %s", animChar, animChar)
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true).
		Render(header))

	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Bold(true).
		Render(m.cfg.UserID))

	components = append(components, renderBigClock(attendance.FormatElapsed(m.Elapsed()), width))

	since := m.session.CheckInTime.In(m.cfg.Location).Format("15:04:05")
	components = append(components, centered(width).
		Foreground(lipgloss.Color(ColorSecondaryText)).
		Italic(true).
		Render("Checked in at "+since))

	switch {
	case m.checkingOut:
		components = append(components, centered(width).
			Foreground(lipgloss.Color(ColorWarning)).
			Render("Checking out..."))
	case m.err != nil:
		components = append(components, centered(width).
			Foreground(lipgloss.Color(ColorError)).
			Render("Check-out failed: "+m.err.Error()+" (press o to retry)"))
	}

	content := strings.Join(components, "\n\n")
	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Render(content)
}

// renderDayPanel lists the day's sessions and the live total
func (m TimerModel) renderDayPanel(width, height int) string {
	summary := m.Summary()
	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorPrimaryText)).
		Align(lipgloss.Center).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorAccentMain)).
		Width(width-12).
		Padding(0, 1)
	b.WriteString(titleStyle.Render(m.dayTitle(summary.Date)))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSecondaryText))
	liveStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorSuccess)).Bold(true)

	for _, entry := range summary.Entries {
		in := entry.Session.CheckedInAt().In(m.cfg.Location).Format("15:04")
		out := "now"
		value := entry.Session.Display(m.now)
		if closed, ok := entry.Session.(attendance.ClosedSession); ok {
			out = closed.CheckOutTime.In(m.cfg.Location).Format("15:04")
		} else {
			value = liveStyle.Render(value)
		}
		line := fmt.Sprintf("%s  %s – %s  %s", labelStyle.Render(entry.Label()), in, out, value)
		b.WriteString(centered(width - 8).Render(line))
		b.WriteString("\n")
	}

	separator := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorBorder)).
		Render(strings.Repeat("─", min(width-12, 40)))
	b.WriteString(centered(width - 8).Render(separator))
	b.WriteString("\n")

	total := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorAccentBright)).Bold(true).Render(summary.Total())
	b.WriteString(centered(width - 8).Render("Total: " + total))

	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

// dayTitle names the session's day; a session left open since an earlier
// day is not labelled as today.
func (m TimerModel) dayTitle(date string) string {
	if date == attendance.DayOf(m.now, m.cfg.Location) {
		return "Today · " + date
	}
	return "Day · " + date
}

// bigDigits is 5-row ASCII art for the clock characters
var bigDigits = map[rune][5]string{
	'0': {" ███ ", "█   █", "█   █", "█   █", " ███ "},
	'1': {"  █  ", " ██  ", "  █  ", "  █  ", "█████"},
	'2': {" ███ ", "█   █", "   █ ", "  █  ", "█████"},
	'3': {" ███ ", "█   █", "  ██ ", "█   █", " ███ "},
	'4': {"█   █", "█   █", "█████", "    █", "    █"},
	'5': {"█████", "█    ", "████ ", "    █", "████ "},
	'6': {" ███ ", "█    ", "████ ", "█   █", " ███ "},
	'7': {"█████", "    █", "   █ ", "  █  ", " █   "},
	'8': {" ███ ", "█   █", " ███ ", "█   █", " ███ "},
	'9': {" ███ ", "█   █", " ████", "    █", " ███ "},
	':': {"     ", "  █  ", "     ", "  █  ", "     "},
}

// renderBigClock renders an HH:MM:SS string as ASCII art centered in width
func renderBigClock(timeStr string, width int) string {
	var lines [5]strings.Builder
	for _, char := range timeStr {
		art, ok := bigDigits[char]
		if !ok {
			continue
		}
		for i := range art {
			lines[i].WriteString(art[i])
			lines[i].WriteString(" ")
		}
	}

	clockStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccentBright)).
		Bold(true)

	rows := make([]string, 0, len(lines))
	for i := range lines {
		rows = append(rows, centered(width).Render(clockStyle.Render(lines[i].String())))
	}
	return strings.Join(rows, "\n")
}
