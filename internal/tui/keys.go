package tui

import "github.com/charmbracelet/bubbles/key"

type timerKeyMap struct {
	CheckOut key.Binding
	Leave    key.Binding
	Quit     key.Binding
}

func (k timerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.CheckOut, k.Leave, k.Quit}
}

func (k timerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultTimerKeys() timerKeyMap {
	return timerKeyMap{
		CheckOut: key.NewBinding(key.WithKeys("o", "O"), key.WithHelp("o", "check out & save")),
		Leave:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc/q", "exit (keep running)")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "force quit")),
	}
}
