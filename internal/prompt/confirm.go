// Package prompt asks the operator to confirm a generation in the terminal.
package prompt

import (
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Actions returned by HandleKey.
const (
	ActionConfirm = "confirm"
	ActionCancel  = "cancel"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	buttonStyle  = lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("245"))
	focusedStyle = lipgloss.NewStyle().Padding(0, 1).Bold(true).
			Foreground(lipgloss.Color("0")).Background(lipgloss.Color("39"))
	boxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("39")).Padding(1, 2)
)

// Confirm is a yes/no dialog. Focus 1 is the confirm button, 2 cancel.
type Confirm struct {
	Title   string
	Message string
	Width   int

	Focus     int
	confirmed bool
	done      bool
}

func NewConfirm(title, message string) *Confirm {
	return &Confirm{Title: title, Message: message, Width: 60, Focus: 1}
}

// HandleKey returns ActionConfirm, ActionCancel or "" and whether the key
// was consumed.
func (d *Confirm) HandleKey(key string) (action string, handled bool) {
	switch key {
	case "tab", "right", "left", "shift+tab":
		if d.Focus == 1 {
			d.Focus = 2
		} else {
			d.Focus = 1
		}
		return "", true
	case "enter":
		if d.Focus == 2 {
			return ActionCancel, true
		}
		return ActionConfirm, true
	case "y", "Y":
		return ActionConfirm, true
	case "esc", "n", "N", "q", "ctrl+c":
		return ActionCancel, true
	}
	return "", false
}

func (d *Confirm) Init() tea.Cmd { return nil }

func (d *Confirm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch action, _ := d.HandleKey(key.String()); action {
	case ActionConfirm:
		d.confirmed, d.done = true, true
		return d, tea.Quit
	case ActionCancel:
		d.done = true
		return d, tea.Quit
	}
	return d, nil
}

func (d *Confirm) View() string {
	if d.done {
		return ""
	}
	yes, no := buttonStyle, buttonStyle
	if d.Focus == 1 {
		yes = focusedStyle
	} else {
		no = focusedStyle
	}
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(d.Title))
	sb.WriteString("\n\n")
	sb.WriteString(d.Message)
	sb.WriteString("\n\n")
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, yes.Render("Generate"), "  ", no.Render("Cancel")))
	return boxStyle.Width(d.Width).Render(sb.String()) + "\n"
}

// Confirmed reports the final choice.
func (d *Confirm) Confirmed() bool { return d.confirmed }

// Ask runs the dialog on in and out until the operator answers.
func Ask(title, message string, in io.Reader, out io.Writer) (bool, error) {
	d := NewConfirm(title, message)
	m, err := tea.NewProgram(d, tea.WithInput(in), tea.WithOutput(out)).Run()
	if err != nil {
		return false, err
	}
	return m.(*Confirm).Confirmed(), nil
}
