package components

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/chat/state"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/codemaster/store"
	"github.com/ryanreadbooks/codemaster/transcript"
)

func sessions(ids ...string) []store.Session {
	out := make([]store.Session, 0, len(ids))
	for _, id := range ids {
		out = append(out, store.Session{ID: id, Title: "title " + id, UpdatedAt: time.Now()})
	}
	return out
}

func TestSidebarNeighbor(t *testing.T) {
	sb := NewSidebarComponent(styles.DefaultTheme())

	_, ok := sb.Neighbor(1)
	assert.False(t, ok, "empty list")

	sb.SetSessions(sessions("a", "b", "c"))

	id, ok := sb.Neighbor(1)
	require.True(t, ok)
	assert.Equal(t, "a", id, "new chat moves down to the top")

	id, ok = sb.Neighbor(-1)
	require.True(t, ok)
	assert.Equal(t, "c", id, "new chat moves up to the bottom")

	sb.SetCurrent("b")
	id, _ = sb.Neighbor(1)
	assert.Equal(t, "c", id)
	id, _ = sb.Neighbor(-1)
	assert.Equal(t, "a", id)

	sb.SetCurrent("c")
	_, ok = sb.Neighbor(1)
	assert.False(t, ok, "no wrap at the end")

	assert.Equal(t, "title b", sb.Title("b"))
	assert.Empty(t, sb.Title("missing"))
}

func TestSidebarViewListsTitles(t *testing.T) {
	sb := NewSidebarComponent(styles.DefaultTheme())
	sb.SetSessions(sessions("a", "b"))
	sb.SetCurrent("a")

	view := sb.View()
	assert.Contains(t, view, "title a")
	assert.Contains(t, view, "title b")
	assert.NotContains(t, view, "New chat")
}

func TestConfirmDialogAccept(t *testing.T) {
	c := NewConfirmDialog(styles.DefaultTheme())
	assert.Empty(t, c.View())

	called := false
	c.Show("Delete?", func() tea.Msg {
		called = true
		return nil
	})
	assert.True(t, c.IsVisible())
	assert.Contains(t, c.View(), "Delete?")

	cmd := c.Accept()
	require.NotNil(t, cmd)
	cmd()
	assert.True(t, called)
	assert.False(t, c.IsVisible())
}

func TestConfirmDialogReject(t *testing.T) {
	c := NewConfirmDialog(styles.DefaultTheme())
	c.Show("Delete?", func() tea.Msg { return nil })
	c.Reject()

	assert.False(t, c.IsVisible())
	assert.Nil(t, c.Accept())
}

func TestStatusShowsErrorUntilCleared(t *testing.T) {
	s := NewStatusComponent(styles.DefaultTheme(), "ws")
	s.SetWidth(200)
	s.SetSession("fix bug")
	assert.Contains(t, s.View(), "fix bug")

	s.SetError(errors.New("boom"))
	assert.Equal(t, "boom", s.Error())
	assert.Contains(t, s.View(), "boom")

	s.SetError(nil)
	assert.Empty(t, s.Error())
	assert.Contains(t, s.View(), "fix bug")

	s.SetTokens(42)
	assert.Contains(t, s.View(), "~42 tokens")
}

func TestInputRename(t *testing.T) {
	in := NewInputComponent(2)
	in.StartRename("old title")
	assert.True(t, in.Renaming())
	assert.Equal(t, "old title", in.Value())

	in.Reset()
	assert.False(t, in.Renaming())
	assert.Empty(t, in.Value())
}

func TestTranscriptFollowsScrollback(t *testing.T) {
	sb := transcript.NewScrollback(10)
	c := NewTranscriptComponent(styles.DefaultTheme(), sb)
	c.SetSize(40, 4)
	assert.False(t, c.Visible())
	assert.Empty(t, c.View())

	sb.Append("$ ls")
	c.Refresh()
	assert.True(t, c.Visible())
	assert.Contains(t, c.View(), "$ ls")
}

func TestChatRendersConversation(t *testing.T) {
	c := NewChatComponent(styles.DefaultTheme())
	c.SetSize(100, 40)

	s := state.Hydrate("s1", []model.Message{
		model.UserMessage("list files"),
		{
			Role:      model.RoleAssistant,
			ToolCalls: []model.ToolCall{model.NewToolCall("c1", "bash", `{"command":"ls -la"}`)},
		},
		model.ToolMessage("bash", "a.txt\nb.txt", "c1"),
	})
	s.Loading = true
	s.StreamingContent = "Thinking..."
	c.SetState(s)

	view := c.View()
	assert.Contains(t, view, "list files")
	assert.Contains(t, view, "bash")
	assert.Contains(t, view, "ls -la")
	assert.Contains(t, view, "a.txt")
	assert.Contains(t, view, "Thinking...")
}
