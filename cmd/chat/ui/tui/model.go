package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanreadbooks/codemaster/chat/controller"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/components"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/types"
	"github.com/ryanreadbooks/codemaster/transcript"
)

const (
	inputHeight      = 2
	statusHeight     = 1
	transcriptHeight = 8
	sidebarWidth     = 28
	minChatHeight    = 5
)

// Deps is what the TUI drives.
type Deps struct {
	Controller *controller.Controller
	Scrollback *transcript.Scrollback
	// Transport names the connection in the status line.
	Transport string
	// Refresh is a cron spec for reloading the session list. Empty disables it.
	Refresh string
	Bridge  *Bridge
}

// Model is the main TUI model
type Model struct {
	ctx   context.Context
	ctrl  *controller.Controller
	theme *styles.Theme

	chat       *components.ChatComponent
	sidebar    *components.SidebarComponent
	input      *components.InputComponent
	transcript *components.TranscriptComponent
	status     *components.StatusComponent
	confirm    *components.ConfirmDialog

	// sending is set from Enter until the send command reports back.
	sending bool

	width  int
	height int
}

// New creates a new TUI model
func New(ctx context.Context, deps Deps) Model {
	theme := styles.DefaultTheme()

	return Model{
		ctx:        ctx,
		ctrl:       deps.Controller,
		theme:      theme,
		chat:       components.NewChatComponent(theme),
		sidebar:    components.NewSidebarComponent(theme),
		input:      components.NewInputComponent(inputHeight),
		transcript: components.NewTranscriptComponent(theme, deps.Scrollback),
		status:     components.NewStatusComponent(theme, deps.Transport),
		confirm:    components.NewConfirmDialog(theme),
		width:      80,
		height:     24,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Init(),
		m.chat.Init(),
		m.listSessions(),
		func() tea.Msg { return types.StateChangedMsg{} },
	)
}
