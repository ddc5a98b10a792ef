package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/styles"
)

const keyHints = "enter send · ctrl+n new · ctrl+↑/↓ switch · ctrl+r rename · ctrl+d delete · ctrl+c quit"

// StatusComponent shows the transport, the current session and the last error
type StatusComponent struct {
	viewport  viewport.Model
	theme     *styles.Theme
	transport string
	session   string
	tokens    int
	err       string
}

// NewStatusComponent creates a new status line
func NewStatusComponent(theme *styles.Theme, transport string) *StatusComponent {
	vp := viewport.New(80, 1)
	vp.MouseWheelEnabled = false
	vp.KeyMap = viewport.KeyMap{}

	c := &StatusComponent{viewport: vp, theme: theme, transport: transport}
	c.refresh()
	return c
}

func (c *StatusComponent) View() string {
	return c.viewport.View()
}

func (c *StatusComponent) SetSession(title string) {
	if c.session != title {
		c.session = title
		c.refresh()
	}
}

// SetTokens shows the estimated size of the history sent with each turn.
func (c *StatusComponent) SetTokens(n int) {
	if c.tokens != n {
		c.tokens = n
		c.refresh()
	}
}

func (c *StatusComponent) Error() string {
	return c.err
}

// SetError shows err until the next call; nil clears it.
func (c *StatusComponent) SetError(err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if c.err != msg {
		c.err = msg
		c.refresh()
	}
}

func (c *StatusComponent) SetWidth(width int) {
	c.viewport.Width = width
	c.refresh()
}

func (c *StatusComponent) refresh() {
	if c.err != "" {
		c.viewport.SetContent(c.theme.Error.Render("✗ " + c.err))
		return
	}

	parts := []string{"[" + c.transport + "]"}
	if c.session != "" {
		parts = append(parts, c.session)
	} else {
		parts = append(parts, "new chat")
	}
	if c.tokens > 0 {
		parts = append(parts, fmt.Sprintf("~%d tokens", c.tokens))
	}
	parts = append(parts, keyHints)
	c.viewport.SetContent(c.theme.Status.Render(strings.Join(parts, " · ")))
}
