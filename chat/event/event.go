// Package event defines the agent events streamed from the host process.
//
// Every event travels as a tagged envelope {"type": ..., "content": ...}.
// The set of types is closed: Decode rejects discriminants it does not know.
package event

import "github.com/ryanreadbooks/codemaster/chat/model"

type Type string

const (
	TypeThinking    Type = "Thinking"
	TypeStreamChunk Type = "StreamChunk"
	TypeStreamEnd   Type = "StreamEnd"
	TypeToolCall    Type = "ToolCall"
	TypeToolResult  Type = "ToolResult"
	TypeNewMessage  Type = "NewMessage"
	TypeError       Type = "Error"
	TypeDone        Type = "Done"
)

func (t Type) String() string { return string(t) }

// Terminal reports whether the type ends an agent turn.
func (t Type) Terminal() bool {
	return t == TypeError || t == TypeDone
}

var allTypes = []Type{
	TypeThinking,
	TypeStreamChunk,
	TypeStreamEnd,
	TypeToolCall,
	TypeToolResult,
	TypeNewMessage,
	TypeError,
	TypeDone,
}

// Types returns every known discriminant in declaration order.
func Types() []Type {
	out := make([]Type, len(allTypes))
	copy(out, allTypes)
	return out
}

type Event interface {
	Type() Type
	isEvent()
}

// ThinkingEvent is sent when the agent starts reasoning before any token is produced.
type ThinkingEvent struct {
	Content string
}

func Thinking(content string) Event { return &ThinkingEvent{Content: content} }

func (e *ThinkingEvent) Type() Type { return TypeThinking }
func (e *ThinkingEvent) isEvent()   {}

// StreamChunkEvent carries a partial piece of assistant text.
type StreamChunkEvent struct {
	Content string
}

func StreamChunk(content string) Event { return &StreamChunkEvent{Content: content} }

func (e *StreamChunkEvent) Type() Type { return TypeStreamChunk }
func (e *StreamChunkEvent) isEvent()   {}

type StreamEndEvent struct{}

func StreamEnd() Event { return &StreamEndEvent{} }

func (e *StreamEndEvent) Type() Type { return TypeStreamEnd }
func (e *StreamEndEvent) isEvent()   {}

// ToolCallEvent is sent right before the agent executes a tool.
type ToolCallEvent struct {
	Name string `json:"name"`
	Args string `json:"args"`
	ID   string `json:"id"`
}

func ToolCall(name, args, id string) Event {
	return &ToolCallEvent{Name: name, Args: args, ID: id}
}

func (e *ToolCallEvent) Type() Type { return TypeToolCall }
func (e *ToolCallEvent) isEvent()   {}

// ToolResultEvent carries the output of a finished tool call.
type ToolResultEvent struct {
	Name   string `json:"name"`
	Result string `json:"result"`
	ID     string `json:"id"`
}

func ToolResult(name, result, id string) Event {
	return &ToolResultEvent{Name: name, Result: result, ID: id}
}

func (e *ToolResultEvent) Type() Type { return TypeToolResult }
func (e *ToolResultEvent) isEvent()   {}

// NewMessageEvent is sent when the agent finalizes a message.
type NewMessageEvent struct {
	Message model.Message
}

func NewMessage(msg model.Message) Event { return &NewMessageEvent{Message: msg} }

func (e *NewMessageEvent) Type() Type { return TypeNewMessage }
func (e *NewMessageEvent) isEvent()   {}

type ErrorEvent struct {
	Message string
}

func Error(msg string) Event { return &ErrorEvent{Message: msg} }

func (e *ErrorEvent) Type() Type { return TypeError }
func (e *ErrorEvent) isEvent()   {}

type DoneEvent struct{}

func Done() Event { return &DoneEvent{} }

func (e *DoneEvent) Type() Type { return TypeDone }
func (e *DoneEvent) isEvent()   {}

// Delivery is one event as handed to subscribers. ID is unique per delivery
// and doubles as the identity of any message created from the event.
type Delivery struct {
	ID    string
	Event Event
}
