// Package state holds the in-memory record of one conversation.
package state

import (
	"log/slog"

	"github.com/jinzhu/copier"

	"github.com/ryanreadbooks/codemaster/chat/model"
)

// State is the conversation as the UI shows it. SessionID is empty until a
// session has been materialized in the store.
//
// NextSeq is the store position the next persisted message takes. It only
// grows, so messages added after a reload sort after everything stored.
type State struct {
	Messages         []model.Message
	StreamingContent string
	Loading          bool
	SessionID        string
	NextSeq          int
}

// New returns the empty state of a fresh chat.
func New() State {
	return State{}
}

// Hydrate returns the state of a session whose messages were stored at
// positions 0 through len(messages)-1.
func Hydrate(sessionID string, messages []model.Message) State {
	return State{
		Messages:  messages,
		SessionID: sessionID,
		NextSeq:   len(messages),
	}
}

// Resume returns the state of a session loaded from the store, continuing
// after the highest stored Seq.
func Resume(sessionID string, entries []model.Entry) State {
	s := State{
		Messages:  make([]model.Message, 0, len(entries)),
		SessionID: sessionID,
	}
	for _, e := range entries {
		s.Messages = append(s.Messages, e.Message)
		s.NextSeq = max(s.NextSeq, e.Seq+1)
	}
	return s
}

func (s State) HasSession() bool {
	return s.SessionID != ""
}

// Clone returns a deep copy that shares no slices with s.
func (s State) Clone() State {
	var out State
	if err := copier.CopyWithOption(&out, &s, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for State
		slog.Error("[state] failed to clone state", "error", err)
		return s
	}
	return out
}

// History returns a copy of the messages suitable for handing to the agent.
func (s State) History() []model.Message {
	return s.Clone().Messages
}

func (s State) LastMessage() (model.Message, bool) {
	if len(s.Messages) == 0 {
		return model.Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}
