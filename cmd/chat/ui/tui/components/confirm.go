package components

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/styles"
)

// ConfirmDialog asks before running a destructive action
type ConfirmDialog struct {
	theme    *styles.Theme
	message  string
	onAccept tea.Cmd
	visible  bool
	width    int
}

// NewConfirmDialog creates a new confirmation dialog
func NewConfirmDialog(theme *styles.Theme) *ConfirmDialog {
	return &ConfirmDialog{
		theme: theme,
		width: 80,
	}
}

func (c *ConfirmDialog) View() string {
	if !c.visible {
		return ""
	}

	boxWidth := max(c.width-4, 40)
	text := fmt.Sprintf("⚠️  %s\n\n[Enter] Accept  [Esc] Reject", c.message)
	return c.theme.Confirm.BoxStyle.Width(boxWidth).Render(c.theme.Confirm.TextStyle.Render(text))
}

// Show displays message and remembers the command to run on accept.
func (c *ConfirmDialog) Show(message string, onAccept tea.Cmd) {
	c.message = message
	c.onAccept = onAccept
	c.visible = true
}

// Hide hides the confirmation dialog
func (c *ConfirmDialog) Hide() {
	c.visible = false
	c.message = ""
	c.onAccept = nil
}

func (c *ConfirmDialog) IsVisible() bool {
	return c.visible
}

// Accept hides the dialog and returns the pending command.
func (c *ConfirmDialog) Accept() tea.Cmd {
	cmd := c.onAccept
	c.Hide()
	return cmd
}

// Reject hides the dialog and drops the pending command.
func (c *ConfirmDialog) Reject() {
	c.Hide()
}

func (c *ConfirmDialog) SetWidth(width int) {
	c.width = width
}
