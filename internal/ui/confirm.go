package ui

import (
	"fmt"
	"io"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ConfirmModel is a Bubble Tea model asking a yes/no question.
// Anything other than y or Y answers no.
type ConfirmModel struct {
	Question  string
	Warnings  []string
	confirmed bool
	done      bool
}

// NewConfirmModel creates a confirmation prompt
func NewConfirmModel(question string, warnings []string) ConfirmModel {
	return ConfirmModel{Question: question, Warnings: warnings}
}

// Confirmed reports the answer once the program has finished
func (m ConfirmModel) Confirmed() bool {
	return m.confirmed
}

// Init implements tea.Model
func (m ConfirmModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m ConfirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.confirmed = true
	case "ctrl+c", "esc", "n", "N", "enter":
	default:
		return m, nil
	}
	m.done = true
	return m, tea.Quit
}

// View implements tea.Model
func (m ConfirmModel) View() string {
	var b strings.Builder
	for _, w := range m.Warnings {
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Render("⚠  " + w))
		b.WriteString("\n")
	}
	b.WriteString(PromptStyle.Render(m.Question + " [y/N] "))
	if m.done {
		if m.confirmed {
			b.WriteString("yes")
		} else {
			b.WriteString("no")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Confirm runs a confirmation prompt reading keys from in and drawing on out
func Confirm(question string, warnings []string, in io.Reader, out io.Writer) (bool, error) {
	p := tea.NewProgram(NewConfirmModel(question, warnings), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		return false, fmt.Errorf("confirmation prompt failed: %w", err)
	}
	m, ok := final.(ConfirmModel)
	return ok && m.Confirmed(), nil
}
