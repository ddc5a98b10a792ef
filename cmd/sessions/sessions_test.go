package sessions

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/store"
	"github.com/ryanreadbooks/codemaster/store/memory"
)

func TestListEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, runList(context.Background(), memory.New(), &buf))
	assert.Equal(t, "No sessions yet.\n", buf.String())
}

func TestListAndRename(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	sess, err := s.CreateSession(ctx, "fix bug")
	require.NoError(t, err)

	require.NoError(t, runRename(ctx, s, sess.ID, "  fix the parser  "))
	require.Error(t, runRename(ctx, s, sess.ID, "   "))

	var buf bytes.Buffer
	require.NoError(t, runList(ctx, s, &buf))
	assert.Contains(t, buf.String(), sess.ID)
	assert.Contains(t, buf.String(), "fix the parser")
}

func TestShow(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	sess, err := s.CreateSession(ctx, "ls")
	require.NoError(t, err)

	msgs := []model.Message{
		model.UserMessage("list files"),
		{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{model.NewToolCall("c1", "bash", `{"command":"ls"}`)}},
		model.ToolMessage("bash", "a.txt\nb.txt", "c1"),
		model.AssistantMessage("Two files."),
	}
	for i, m := range msgs {
		require.NoError(t, s.PersistMessage(ctx, sess.ID, model.Entry{ID: store.NewID(), Seq: i, Message: m}))
	}

	var buf bytes.Buffer
	require.NoError(t, runShow(ctx, s, sess.ID, &buf))
	out := buf.String()
	assert.Contains(t, out, "> list files")
	assert.Contains(t, out, "🔧 bash")
	assert.Contains(t, out, "  a.txt\n  b.txt")
	assert.Contains(t, out, "Two files.")

	require.ErrorIs(t, runShow(ctx, s, "missing", &buf), store.ErrNotFound)
}
