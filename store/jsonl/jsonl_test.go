package jsonl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/store"
	"github.com/ryanreadbooks/codemaster/store/storetest"
)

func openTemp(t *testing.T) *Store {
	t.Helper()

	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestJSONLStore(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return openTemp(t)
	})
}

func TestLoadSkipsBrokenAndDuplicateLines(t *testing.T) {
	s := openTemp(t)
	ctx := t.Context()

	sess, err := s.CreateSession(ctx, "chat")
	require.NoError(t, err)
	require.NoError(t, s.PersistMessage(ctx, sess.ID, model.Entry{ID: "a", Seq: 0, Message: model.UserMessage("one")}))

	f, err := os.OpenFile(filepath.Join(s.root, sess.ID, logFilename), os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{broken\n\n" + `{"id":"a","seq":0,"message":{"role":"user","content":"one"}}` + "\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	msgs, err := s.LoadSessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "one", msgs[0].Content)
}

func TestReopenRemembersPersistedIDs(t *testing.T) {
	root := t.TempDir()
	ctx := t.Context()

	s, err := Open(root)
	require.NoError(t, err)
	sess, err := s.CreateSession(ctx, "chat")
	require.NoError(t, err)
	entry := model.Entry{ID: "x", Message: model.AssistantMessage("hello")}
	require.NoError(t, s.PersistMessage(ctx, sess.ID, entry))
	require.NoError(t, s.Close())

	s, err = Open(root)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.PersistMessage(ctx, sess.ID, entry))

	items, err := readLogItems(filepath.Join(root, sess.ID, logFilename))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "chat", list[0].Title)
}
