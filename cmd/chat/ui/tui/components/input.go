package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	placeholderChat   = "What can I do for you?"
	placeholderRename = "New title for this session"
)

// InputComponent handles user input
type InputComponent struct {
	textarea textarea.Model
	renaming bool
}

// NewInputComponent creates a new input component
func NewInputComponent(height int) *InputComponent {
	ta := textarea.New()
	ta.Placeholder = placeholderChat
	ta.Focus()
	ta.Prompt = "┃ "
	ta.SetHeight(height)
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.BlurredStyle.CursorLine = lipgloss.NewStyle()

	return &InputComponent{textarea: ta}
}

func (c *InputComponent) Init() tea.Cmd {
	return textarea.Blink
}

func (c *InputComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.textarea, cmd = c.textarea.Update(msg)
	return cmd
}

func (c *InputComponent) View() string {
	return c.textarea.View()
}

// Value returns the current input value
func (c *InputComponent) Value() string {
	return strings.TrimSpace(c.textarea.Value())
}

// Reset clears the input and leaves rename mode
func (c *InputComponent) Reset() {
	c.textarea.Reset()
	c.textarea.Placeholder = placeholderChat
	c.renaming = false
	c.textarea.Focus()
}

// StartRename switches the input to editing the title of the current session.
func (c *InputComponent) StartRename(title string) {
	c.renaming = true
	c.textarea.Placeholder = placeholderRename
	c.textarea.SetValue(title)
	c.textarea.Focus()
}

// Restore puts text back as the draft unless something was typed since.
func (c *InputComponent) Restore(text string) {
	if c.renaming || c.Value() != "" {
		return
	}
	c.textarea.SetValue(text)
}

func (c *InputComponent) Renaming() bool {
	return c.renaming
}

func (c *InputComponent) SetWidth(width int) {
	c.textarea.SetWidth(width)
}

func (c *InputComponent) Focus() {
	c.textarea.Focus()
}

func (c *InputComponent) Blur() {
	c.textarea.Blur()
}
