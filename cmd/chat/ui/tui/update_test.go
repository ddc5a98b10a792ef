package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/controller"
	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/types"
	"github.com/ryanreadbooks/codemaster/persist"
	"github.com/ryanreadbooks/codemaster/store/memory"
	"github.com/ryanreadbooks/codemaster/transcript"
)

type idleTurns struct{}

func (idleTurns) DispatchUserTurn(context.Context, string, []model.Message) error { return nil }

func newTestModel(t *testing.T) Model {
	t.Helper()

	ms := memory.New()
	d, err := persist.New(ms, persist.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(time.Second) })

	ctrl := controller.New(idleTurns{}, d, ms)
	return New(t.Context(), Deps{Controller: ctrl, Scrollback: transcript.NewScrollback(16)})
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func typed(t *testing.T, m Model, text string) Model {
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

func TestEnterWhileSendingKeepsDraft(t *testing.T) {
	m := newTestModel(t)

	m = typed(t, m, "first")
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Empty(t, m.input.Value())

	// the send command has not reported back yet
	m = typed(t, m, "second")
	m, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Equal(t, "second", m.input.Value())
	assert.Equal(t, controller.ErrBusy.Error(), m.status.Error())

	m, _ = step(t, m, types.SendDoneMsg{Text: "first"})
	assert.Empty(t, m.status.Error())
	assert.Equal(t, "second", m.input.Value())

	_, cmd = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
}

func TestRejectedSendRestoresDraft(t *testing.T) {
	m := newTestModel(t)

	m = typed(t, m, "hello")
	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Empty(t, m.input.Value())

	m, _ = step(t, m, types.SendDoneMsg{Text: "hello", Err: controller.ErrSessionChanged})
	assert.Equal(t, "hello", m.input.Value())
	assert.Equal(t, controller.ErrSessionChanged.Error(), m.status.Error())
}
