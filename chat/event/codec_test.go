package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/model"
)

func TestDecodeVariants(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Event
	}{
		{"thinking", `{"type":"Thinking","content":"Thinking..."}`, Thinking("Thinking...")},
		{"chunk", `{"type":"StreamChunk","content":"Hi"}`, StreamChunk("Hi")},
		{"stream end null", `{"type":"StreamEnd","content":null}`, StreamEnd()},
		{"stream end absent", `{"type":"StreamEnd"}`, StreamEnd()},
		{"done", `{"type":"Done","content":null}`, Done()},
		{"error", `{"type":"Error","content":"boom"}`, Error("boom")},
		{
			"tool call",
			`{"type":"ToolCall","content":{"name":"bash","args":"{\"command\":\"ls\"}","id":"c1"}}`,
			ToolCall("bash", `{"command":"ls"}`, "c1"),
		},
		{
			"tool result",
			`{"type":"ToolResult","content":{"name":"bash","result":"a.txt","id":"c1"}}`,
			ToolResult("bash", "a.txt", "c1"),
		},
		{
			"new message",
			`{"type":"NewMessage","content":{"role":"assistant","content":"hello","tool_calls":[{"id":"c1","type":"function","function":{"name":"bash","arguments":"{}"}}]}}`,
			NewMessage(model.Message{
				Role:      model.RoleAssistant,
				Content:   "hello",
				ToolCalls: []model.ToolCall{model.NewToolCall("c1", "bash", "{}")},
			}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeRejectsUnknownType(t *testing.T) {
	_, err := Decode([]byte(`{"type":"Message","content":"legacy"}`))
	require.ErrorIs(t, err, ErrUnknownType)

	_, err = Decode([]byte(`{"content":"no type"}`))
	require.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `not json`},
		{"chunk without content", `{"type":"StreamChunk"}`},
		{"chunk with object", `{"type":"StreamChunk","content":{"a":1}}`},
		{"tool call with string", `{"type":"ToolCall","content":"bash"}`},
		{"tool message without name", `{"type":"NewMessage","content":{"role":"tool","content":"x"}}`},
		{"user message with tool calls", `{"type":"NewMessage","content":{"role":"user","tool_calls":[{"id":"1","type":"function","function":{"name":"x","arguments":""}}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode([]byte(tt.in))
			require.ErrorIs(t, err, ErrMalformed)
			assert.Nil(t, got)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	events := []Event{
		Thinking("Thinking..."),
		StreamChunk("partial"),
		StreamEnd(),
		ToolCall("bash", `{"command":"pwd"}`, "c9"),
		ToolResult("bash", "/tmp", "c9"),
		NewMessage(model.ToolMessage("bash", "/tmp", "c9")),
		Error("rate limited"),
		Done(),
	}

	for _, e := range events {
		raw, err := Encode(e)
		require.NoError(t, err)

		got, err := Decode(raw)
		require.NoError(t, err)
		assert.Equal(t, e, got, "type %s", e.Type())
	}
}

func TestEncodeUnitVariantHasNullContent(t *testing.T) {
	raw, err := Encode(Done())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Done","content":null}`, string(raw))
}

func TestTerminalTypes(t *testing.T) {
	for _, typ := range Types() {
		want := typ == TypeError || typ == TypeDone
		assert.Equal(t, want, typ.Terminal(), typ.String())
	}
}
