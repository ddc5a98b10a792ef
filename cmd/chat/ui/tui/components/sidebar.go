package components

import (
	"strings"

	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/codemaster/pkg/xstring"
	"github.com/ryanreadbooks/codemaster/store"
)

// SidebarComponent lists the stored sessions, most recent first
type SidebarComponent struct {
	theme    *styles.Theme
	sessions []store.Session
	current  string
	width    int
	height   int
}

func NewSidebarComponent(theme *styles.Theme) *SidebarComponent {
	return &SidebarComponent{theme: theme, width: 28, height: 20}
}

func (c *SidebarComponent) SetSessions(sessions []store.Session) {
	c.sessions = sessions
}

func (c *SidebarComponent) SetCurrent(id string) {
	c.current = id
}

func (c *SidebarComponent) SetSize(width, height int) {
	c.width = width
	c.height = height
}

func (c *SidebarComponent) Width() int {
	return c.width
}

// Title returns the title of session id, if listed.
func (c *SidebarComponent) Title(id string) string {
	for _, s := range c.sessions {
		if s.ID == id {
			return s.Title
		}
	}
	return ""
}

// Neighbor returns the id of the session delta positions away from the current
// one. With no current session, moving down starts at the top.
func (c *SidebarComponent) Neighbor(delta int) (string, bool) {
	if len(c.sessions) == 0 {
		return "", false
	}

	idx := -1
	for i, s := range c.sessions {
		if s.ID == c.current {
			idx = i
			break
		}
	}

	var next int
	switch {
	case idx < 0 && delta > 0:
		next = 0
	case idx < 0:
		next = len(c.sessions) - 1
	default:
		next = idx + delta
	}
	if next < 0 || next >= len(c.sessions) || next == idx {
		return "", false
	}
	return c.sessions[next].ID, true
}

func (c *SidebarComponent) View() string {
	th := c.theme.Sidebar
	inner := max(c.width-2, 8)

	lines := []string{th.TitleStyle.Render("Sessions")}
	if c.current == "" {
		lines = append(lines, th.CurrentStyle.Render("● New chat"))
	}
	for _, s := range c.sessions {
		title := xstring.Truncate(s.Title, inner-2)
		if s.ID == c.current {
			lines = append(lines, th.CurrentStyle.Render("● "+title))
		} else {
			lines = append(lines, th.ItemStyle.Render("  "+title))
		}
	}

	return th.BoxStyle.
		Width(inner).
		Height(c.height).
		MaxHeight(c.height).
		Render(strings.Join(lines, "\n"))
}
