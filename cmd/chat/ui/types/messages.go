package types

import "github.com/ryanreadbooks/codemaster/store"

// Tea messages exchanged between the program, the controller and the
// background hooks.
type (
	// StateChangedMsg tells the model to take a fresh controller snapshot.
	StateChangedMsg struct{}

	// RefreshSessionsMsg asks for the session list to be reloaded.
	RefreshSessionsMsg struct{}

	SessionsLoadedMsg struct {
		Sessions []store.Session
		Err      error
	}

	// TranscriptChangedMsg tells the model the scroll-back has new lines.
	TranscriptChangedMsg struct{}

	// SendDoneMsg carries the outcome of a user send.
	SendDoneMsg struct {
		Text string
		Err  error
	}

	// ActionDoneMsg carries the outcome of a session action.
	ActionDoneMsg struct {
		Action string
		Err    error
	}

	// TransportDoneMsg reports that the connection to the host has ended.
	TransportDoneMsg struct {
		Err error
	}
)
