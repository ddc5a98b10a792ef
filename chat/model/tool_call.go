package model

type ToolCallType string

const (
	ToolCallTypeFunction ToolCallType = "function"
)

// ToolCall is one function invocation requested by the assistant.
// Arguments is kept as the raw serialized string, only tool-aware consumers parse it.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     ToolCallType     `json:"type"`
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	// the name of the function to call
	Name string `json:"name"`

	// the arguments to call the function with
	Arguments string `json:"arguments"`
}

func NewToolCall(id, name, arguments string) ToolCall {
	return ToolCall{
		ID:   id,
		Type: ToolCallTypeFunction,
		Function: ToolCallFunction{
			Name:      name,
			Arguments: arguments,
		},
	}
}
