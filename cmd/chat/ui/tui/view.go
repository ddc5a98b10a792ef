package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// View renders the entire UI
func (m Model) View() string {
	main := []string{m.chat.View()}
	if m.transcript.Visible() {
		main = append(main, m.transcript.View())
	}
	if m.confirm.IsVisible() {
		main = append(main, m.confirm.View())
	} else {
		main = append(main, m.input.View())
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.sidebar.View(),
		lipgloss.JoinVertical(lipgloss.Left, main...),
	)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.status.View())
}
