package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ryanreadbooks/codemaster/chat/reconcile"
	"github.com/ryanreadbooks/codemaster/chat/state"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/types"
	"github.com/ryanreadbooks/codemaster/pkg/safe"
)

// Bridge forwards notifications from background goroutines into the running
// program. It exists before the program does, so the controller and the
// persist dispatcher can be built with its hooks. Messages sent before Attach
// are dropped; the model pulls a fresh snapshot on start anyway.
type Bridge struct {
	mu      sync.RWMutex
	program *tea.Program
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	b.program = p
	b.mu.Unlock()
}

// send never blocks the caller: the controller notifies while handling
// messages of the program itself.
func (b *Bridge) send(msg tea.Msg) {
	b.mu.RLock()
	p := b.program
	b.mu.RUnlock()
	if p == nil {
		return
	}

	safe.Go("tui-send", func() {
		p.Send(msg)
	})
}

// StateChanged is the controller notifier.
func (b *Bridge) StateChanged(state.State) {
	b.send(types.StateChangedMsg{})
}

// SessionsChanged asks the program to reload the session list.
func (b *Bridge) SessionsChanged() {
	b.send(types.RefreshSessionsMsg{})
}

// TranscriptChanged is the formatter update hook.
func (b *Bridge) TranscriptChanged() {
	b.send(types.TranscriptChangedMsg{})
}

func (b *Bridge) TransportDone(err error) {
	b.send(types.TransportDoneMsg{Err: err})
}

// PersistFailed is the persist dispatcher failure hook.
func (b *Bridge) PersistFailed(_ reconcile.PersistMessage, err error) {
	b.send(types.ActionDoneMsg{Action: "save message", Err: err})
}
