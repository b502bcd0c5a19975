package tui

// Palette for the timer view
const (
	ColorBorder = "#3A3F55" // separators

	ColorPrimaryText   = "#E6EAF2" // user id, panel titles
	ColorSecondaryText = "#B1B8C7" // session labels, check-in time
	ColorHelpText      = "240"     // key help bar

	ColorAccentMain   = "#7C3AED" // panel borders
	ColorAccentBright = "#A78BFA" // big clock, totals

	ColorError   = "#EF4444" // failed check-out
	ColorSuccess = "#22C55E" // running session
	ColorWarning = "#F59E0B" // check-out in flight
)
