package model

import (
	"errors"
	"fmt"
)

var (
	ErrToolMessageWithoutName  = errors.New("tool message must carry a name")
	ErrToolCallsOnNonAssistant = errors.New("only assistant messages may carry tool calls")
)

// Message is one entry of the conversation. Field names are shared with the
// agent host process and must not change.
type Message struct {
	Role       Role       `json:"role"`
	Content    string     `json:"content,omitempty"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

func ToolMessage(name, content, toolCallID string) Message {
	return Message{
		Role:       RoleTool,
		Name:       name,
		Content:    content,
		ToolCallID: toolCallID,
	}
}

func (m *Message) IsUser() bool {
	return m.Role.User()
}

func (m *Message) IsAssistant() bool {
	return m.Role.Assistant()
}

func (m *Message) IsTool() bool {
	return m.Role.Tool()
}

func (m *Message) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

func (m *Message) Validate() error {
	if !m.Role.Valid() {
		return fmt.Errorf("unknown role %q", m.Role)
	}
	if m.IsTool() && m.Name == "" {
		return ErrToolMessageWithoutName
	}
	if m.HasToolCalls() && !m.IsAssistant() {
		return ErrToolCallsOnNonAssistant
	}
	return nil
}

// Entry is a message together with the identity it is persisted under.
// ID is unique per message; Seq is the message position in the conversation
// when it was appended and only orders entries on load.
type Entry struct {
	ID      string
	Seq     int
	Message Message
}
