package event

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ryanreadbooks/codemaster/chat/model"
)

var (
	ErrUnknownType = errors.New("unknown event type")
	ErrMalformed   = errors.New("malformed event")
)

type envelope struct {
	Type    Type            `json:"type"`
	Content json.RawMessage `json:"content,omitempty"`
}

var jsonNull = []byte("null")

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

func malformed(typ Type, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrMalformed, typ, err)
}

func decodeString(typ Type, raw json.RawMessage) (string, error) {
	if isAbsent(raw) {
		return "", malformed(typ, errors.New("missing string content"))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", malformed(typ, err)
	}
	return s, nil
}

func decodeObject[T any](typ Type, raw json.RawMessage) (*T, error) {
	if isAbsent(raw) {
		return nil, malformed(typ, errors.New("missing object content"))
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, malformed(typ, err)
	}
	return &v, nil
}

// Decode parses one wire envelope into its concrete event.
func Decode(data []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch env.Type {
	case TypeThinking:
		s, err := decodeString(env.Type, env.Content)
		if err != nil {
			return nil, err
		}
		return Thinking(s), nil

	case TypeStreamChunk:
		s, err := decodeString(env.Type, env.Content)
		if err != nil {
			return nil, err
		}
		return StreamChunk(s), nil

	case TypeError:
		s, err := decodeString(env.Type, env.Content)
		if err != nil {
			return nil, err
		}
		return Error(s), nil

	case TypeStreamEnd:
		return StreamEnd(), nil

	case TypeDone:
		return Done(), nil

	case TypeToolCall:
		tc, err := decodeObject[ToolCallEvent](env.Type, env.Content)
		if err != nil {
			return nil, err
		}
		return tc, nil

	case TypeToolResult:
		tr, err := decodeObject[ToolResultEvent](env.Type, env.Content)
		if err != nil {
			return nil, err
		}
		return tr, nil

	case TypeNewMessage:
		msg, err := decodeObject[model.Message](env.Type, env.Content)
		if err != nil {
			return nil, err
		}
		if err := msg.Validate(); err != nil {
			return nil, malformed(env.Type, err)
		}
		return NewMessage(*msg), nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
}

// Encode serializes an event into its wire envelope.
func Encode(e Event) ([]byte, error) {
	var content any
	switch e := e.(type) {
	case *ThinkingEvent:
		content = e.Content
	case *StreamChunkEvent:
		content = e.Content
	case *ErrorEvent:
		content = e.Message
	case *StreamEndEvent, *DoneEvent:
		content = nil
	case *ToolCallEvent:
		content = e
	case *ToolResultEvent:
		content = e
	case *NewMessageEvent:
		content = e.Message
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, e)
	}

	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s content: %w", e.Type(), err)
	}

	return json.Marshal(envelope{Type: e.Type(), Content: raw})
}
