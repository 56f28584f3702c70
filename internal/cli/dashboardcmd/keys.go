package dashboardcmd

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the dashboard.
type keyMap struct {
	Submit      key.Binding
	Acknowledge key.Binding
	Refresh     key.Binding
	Identity    key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	ToggleHelp  key.Binding
	Quit        key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Submit: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "submit request"),
		),
		Acknowledge: key.NewBinding(
			key.WithKeys("a", "enter"),
			key.WithHelp("a/enter", "acknowledge popup"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Identity: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "change register number"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		ToggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the collapsed help bar.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Refresh, k.ToggleHelp, k.Quit}
}

// FullHelp returns all key bindings grouped.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Acknowledge, k.Refresh}, // request column
		{k.Identity, k.ToggleHelp, k.Quit},   // session column
	}
}

// editingKeys is the help shown while the register number input is focused.
type editingKeys struct{ k keyMap }

func (e editingKeys) ShortHelp() []key.Binding  { return []key.Binding{e.k.Confirm, e.k.Cancel} }
func (e editingKeys) FullHelp() [][]key.Binding { return [][]key.Binding{e.ShortHelp()} }
