package tui

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanreadbooks/codemaster/chat/controller"
	"github.com/ryanreadbooks/codemaster/chat/estimate"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/types"
)

var errTransportClosed = errors.New("connection to agent closed")

// Update handles all model updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.layout(), nil

	case tea.KeyMsg:
		newModel, cmd, handled := m.handleKeyPress(msg)
		if handled {
			return newModel, cmd
		}
		return newModel, m.input.Update(msg)

	case tea.MouseMsg:
		return m, tea.Batch(m.chat.Update(msg), m.transcript.Update(msg))

	case spinner.TickMsg:
		return m, m.chat.Update(msg)

	case types.StateChangedMsg:
		return m.handleStateChanged(), nil

	case types.RefreshSessionsMsg:
		return m, m.listSessions()

	case types.SessionsLoadedMsg:
		if msg.Err != nil {
			m.status.SetError(fmt.Errorf("failed to list sessions: %w", msg.Err))
			return m, nil
		}
		m.sidebar.SetSessions(msg.Sessions)
		m.status.SetSession(m.sidebar.Title(m.ctrl.Snapshot().SessionID))
		return m, nil

	case types.TranscriptChangedMsg:
		wasVisible := m.transcript.Visible()
		m.transcript.Refresh()
		if !wasVisible {
			m = m.layout()
		}
		return m, nil

	case types.SendDoneMsg:
		m.sending = false
		m.status.SetError(msg.Err)
		if errors.Is(msg.Err, controller.ErrBusy) || errors.Is(msg.Err, controller.ErrSessionChanged) {
			// the text never made it into the conversation
			m.input.Restore(msg.Text)
		}
		return m, nil

	case types.ActionDoneMsg:
		if msg.Err != nil {
			m.status.SetError(fmt.Errorf("%s: %w", msg.Action, msg.Err))
		} else {
			m.status.SetError(nil)
		}
		return m, nil

	case types.TransportDoneMsg:
		if msg.Err != nil {
			m.status.SetError(fmt.Errorf("%w: %w", errTransportClosed, msg.Err))
		} else {
			m.status.SetError(errTransportClosed)
		}
		return m, nil
	}

	// blink and friends
	return m, m.input.Update(msg)
}

func (m Model) handleStateChanged() Model {
	s := m.ctrl.Snapshot()
	m.chat.SetState(s)
	m.sidebar.SetCurrent(s.SessionID)
	m.status.SetSession(m.sidebar.Title(s.SessionID))
	m.status.SetTokens(estimate.History(s.Messages))
	return m
}

// layout distributes the window between the sidebar, the chat, the transcript
// and the input.
func (m Model) layout() Model {
	side := min(sidebarWidth, m.width/3)
	mainWidth := max(m.width-side, 20)

	reserved := inputHeight + statusHeight + 2
	tHeight := 0
	if m.transcript.Visible() {
		tHeight = transcriptHeight
		reserved += tHeight + 1
	}
	chatHeight := max(m.height-reserved, minChatHeight)

	m.sidebar.SetSize(side, m.height-1)
	m.chat.SetSize(mainWidth, chatHeight)
	m.transcript.SetSize(mainWidth, tHeight)
	m.input.SetWidth(mainWidth)
	m.status.SetWidth(m.width)
	m.confirm.SetWidth(mainWidth)
	return m
}

// handleKeyPress handles keyboard input. Keys it does not consume go to the
// input.
func (m Model) handleKeyPress(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	if m.confirm.IsVisible() {
		switch msg.Type {
		case tea.KeyEnter:
			return m, m.confirm.Accept(), true
		case tea.KeyEsc, tea.KeyCtrlC:
			m.confirm.Reject()
		}
		// everything else is swallowed while asking
		return m, nil, true
	}

	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit, true

	case tea.KeyEsc:
		if m.input.Renaming() {
			m.input.Reset()
			return m, nil, true
		}

	case tea.KeyEnter:
		return m.submit()

	case tea.KeyCtrlN:
		m.ctrl.ResetSession()
		m.input.Reset()
		return m, nil, true

	case tea.KeyCtrlUp, tea.KeyCtrlDown:
		delta := 1
		if msg.Type == tea.KeyCtrlUp {
			delta = -1
		}
		if id, ok := m.sidebar.Neighbor(delta); ok {
			return m, m.switchSession(id), true
		}
		return m, nil, true

	case tea.KeyCtrlR:
		if id := m.ctrl.Snapshot().SessionID; id != "" {
			m.input.StartRename(m.sidebar.Title(id))
		}
		return m, nil, true

	case tea.KeyCtrlD:
		if id := m.ctrl.Snapshot().SessionID; id != "" {
			title := m.sidebar.Title(id)
			m.confirm.Show(fmt.Sprintf("Delete session %q and all its messages?", title), m.deleteSession(id))
		}
		return m, nil, true

	case tea.KeyPgUp, tea.KeyPgDown:
		return m, m.chat.Update(msg), true
	}

	return m, nil, false
}

func (m Model) submit() (Model, tea.Cmd, bool) {
	text := m.input.Value()

	if m.input.Renaming() {
		id := m.ctrl.Snapshot().SessionID
		m.input.Reset()
		if id == "" || text == "" {
			return m, nil, true
		}
		return m, m.renameSession(id, text), true
	}

	if text == "" {
		return m, nil, true
	}
	if m.sending || m.ctrl.Snapshot().Loading {
		// keep the draft until the agent is done
		m.status.SetError(controller.ErrBusy)
		return m, nil, true
	}

	m.sending = true
	m.input.Reset()
	m.status.SetError(nil)
	return m, tea.Batch(m.send(text), m.input.Init()), true
}
