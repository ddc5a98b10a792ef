package schema

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayloadsHaveProperties(t *testing.T) {
	for _, p := range Payloads() {
		require.NotNil(t, p.Schema, p.Name)
		require.NotNil(t, p.Schema.Properties, p.Name)
	}
}

func TestToolCallSchemaMatchesWire(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSchema(&buf, "ToolCall"))

	var got struct {
		Properties map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Contains(t, got.Properties, "name")
	assert.Contains(t, got.Properties, "args")
	assert.Contains(t, got.Properties, "id")
}

func TestUnknownPayload(t *testing.T) {
	require.Error(t, runSchema(&bytes.Buffer{}, "Nope"))
}

func TestAllPayloads(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runSchema(&buf, ""))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, len(Payloads()))
}
