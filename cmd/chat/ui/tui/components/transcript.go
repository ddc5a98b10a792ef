package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/codemaster/transcript"
)

// TranscriptComponent shows the bash scroll-back below the chat
type TranscriptComponent struct {
	viewport viewport.Model
	theme    *styles.Theme
	source   *transcript.Scrollback
}

func NewTranscriptComponent(theme *styles.Theme, source *transcript.Scrollback) *TranscriptComponent {
	vp := viewport.New(80, 8)
	vp.MouseWheelEnabled = true
	vp.KeyMap = viewport.KeyMap{}

	return &TranscriptComponent{viewport: vp, theme: theme, source: source}
}

func (c *TranscriptComponent) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	c.viewport, cmd = c.viewport.Update(msg)
	return cmd
}

func (c *TranscriptComponent) View() string {
	if c.source.Len() == 0 {
		return ""
	}
	return c.theme.Transcript.Width(c.viewport.Width).Render(c.viewport.View())
}

// Visible reports whether anything has been written to the transcript.
func (c *TranscriptComponent) Visible() bool {
	return c.source.Len() > 0
}

func (c *TranscriptComponent) SetSize(width, height int) {
	c.viewport.Width = width
	c.viewport.Height = height
}

// Refresh reloads the scroll-back and follows its tail.
func (c *TranscriptComponent) Refresh() {
	c.viewport.SetContent(strings.Join(c.source.Lines(), "\n"))
	c.viewport.GotoBottom()
}
