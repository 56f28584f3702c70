package ui

import (
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// ConfirmYesTTY runs a Bubble Tea prompt that shows message and asks the user
// to type "yes" to confirm. It renders only when attached to a TTY via
// tea.WithInput/WithOutput provided by the caller. It returns whether the user
// confirmed and the raw value that was entered.
func ConfirmYesTTY(in io.Reader, out io.Writer, message string) (bool, string, error) {
	m := newConfirmModel(message)
	p := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	finalModel, err := p.Run()
	if err != nil {
		return false, "", err
	}
	cm := finalModel.(confirmModel)
	return cm.confirmed, cm.value, nil
}

type confirmModel struct {
	ti        textinput.Model
	message   string
	confirmed bool
	value     string
}

func newConfirmModel(message string) confirmModel {
	ti := textinput.New()
	ti.Placeholder = "yes"
	ti.Cursor.Style = styleInfoPrefix
	ti.Focus()
	return confirmModel{ti: ti, message: message}
}

func (m confirmModel) Init() tea.Cmd { return textinput.Blink }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type { //nolint:exhaustive
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			m.value = strings.TrimSpace(m.ti.Value())
			m.confirmed = m.value == "yes"
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m confirmModel) View() string {
	return m.message + "\n" +
		"Type 'yes' to confirm.\n\n" +
		"Enter a value: " + m.ti.View()
}
