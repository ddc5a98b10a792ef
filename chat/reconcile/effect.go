package reconcile

import "github.com/ryanreadbooks/codemaster/chat/model"

// Effect is a side effect requested by a transition. Effects are executed by
// the persistence dispatcher, never by the reconciler itself.
type Effect interface {
	isEffect()
}

// PersistMessage asks for one message to be stored under SessionID.
type PersistMessage struct {
	SessionID string
	Entry     model.Entry
}

func (PersistMessage) isEffect() {}

// RefreshSessions signals that the session list shown to the user is stale.
type RefreshSessions struct{}

func (RefreshSessions) isEffect() {}
