package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/types"
)

// storeTimeout bounds every store call made on behalf of a key press.
const storeTimeout = 10 * time.Second

func (m Model) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.ctx, storeTimeout)
}

func (m Model) listSessions() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := m.storeCtx()
		defer cancel()

		sessions, err := ctrl.ListSessions(ctx)
		return types.SessionsLoadedMsg{Sessions: sessions, Err: err}
	}
}

// send runs the whole user turn off the update loop; the controller may block
// on creating the session and on the transport.
func (m Model) send(text string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		return types.SendDoneMsg{Text: text, Err: ctrl.OnUserSend(m.ctx, text)}
	}
}

func (m Model) switchSession(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := m.storeCtx()
		defer cancel()
		return types.ActionDoneMsg{Action: "switch", Err: ctrl.SwitchSession(ctx, id)}
	}
}

func (m Model) renameSession(id, title string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := m.storeCtx()
		defer cancel()
		return types.ActionDoneMsg{Action: "rename", Err: ctrl.RenameSession(ctx, id, title)}
	}
}

func (m Model) deleteSession(id string) tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		ctx, cancel := m.storeCtx()
		defer cancel()
		return types.ActionDoneMsg{Action: "delete", Err: ctrl.DeleteSession(ctx, id)}
	}
}
