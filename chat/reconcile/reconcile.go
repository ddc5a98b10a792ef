// Package reconcile maps agent events onto the conversation state.
//
// All functions here are pure: they never perform I/O and never write into
// the backing arrays of the state they receive.
package reconcile

import (
	"slices"
	"strings"

	"github.com/ryanreadbooks/codemaster/chat/event"
	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/chat/state"
)

const (
	// ThinkingPlaceholder fills the streaming buffer while the agent reasons.
	// The first real chunk replaces it.
	ThinkingPlaceholder = "Thinking..."

	errorPrefix         = "❌ Error: "
	dispatchErrorPrefix = "Error sending message: "
)

// Reconcile applies one delivered event to s.
func Reconcile(s state.State, d event.Delivery) (state.State, []Effect) {
	switch e := d.Event.(type) {
	case *event.ThinkingEvent:
		s.StreamingContent = ThinkingPlaceholder

	case *event.StreamChunkEvent:
		if s.StreamingContent == ThinkingPlaceholder {
			s.StreamingContent = e.Content
		} else {
			s.StreamingContent += e.Content
		}

	case *event.StreamEndEvent:
		s.StreamingContent = ""

	case *event.NewMessageEvent:
		return appendMessage(s, d.ID, e.Message)

	case *event.ToolResultEvent:
		return appendMessage(s, d.ID, model.ToolMessage(e.Name, e.Result, e.ID))

	case *event.ErrorEvent:
		s.StreamingContent = ""
		s.Loading = false
		s.Messages = appended(s.Messages, model.AssistantMessage(errorPrefix+e.Message))

	case *event.DoneEvent:
		s.StreamingContent = ""
		s.Loading = false

	case *event.ToolCallEvent:
		// tool calls reach the conversation through the NewMessage that carries them
	}

	return s, nil
}

// UserSend appends the text typed by the user and marks the turn as loading.
func UserSend(s state.State, id, text string) (state.State, []Effect) {
	s.Loading = true
	return appendMessage(s, id, model.UserMessage(text))
}

// DispatchFailed records that the user turn never reached the agent. The user
// message stays in place. Like agent errors, the notice is not persisted.
func DispatchFailed(s state.State, err error) state.State {
	s.Loading = false
	s.StreamingContent = ""
	s.Messages = appended(s.Messages, model.AssistantMessage(dispatchErrorPrefix+errorText(err)))
	return s
}

func errorText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return strings.TrimSpace(err.Error())
}

func appendMessage(s state.State, id string, msg model.Message) (state.State, []Effect) {
	seq := s.NextSeq
	s.NextSeq++
	s.Messages = appended(s.Messages, msg)
	if !s.HasSession() {
		return s, nil
	}

	return s, []Effect{PersistMessage{
		SessionID: s.SessionID,
		Entry: model.Entry{
			ID:      id,
			Seq:     seq,
			Message: msg,
		},
	}}
}

// appended never reuses spare capacity of msgs so earlier states stay intact.
func appended(msgs []model.Message, msg model.Message) []model.Message {
	return append(slices.Clip(msgs), msg)
}
