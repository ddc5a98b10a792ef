// Package storetest holds the behavior every store.Store implementation must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/store"
)

// Run exercises s against the store contract. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Helper()

	t.Run("CreateAndList", func(t *testing.T) { testCreateAndList(t, newStore(t)) })
	t.Run("Rename", func(t *testing.T) { testRename(t, newStore(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newStore(t)) })
	t.Run("PersistAndLoad", func(t *testing.T) { testPersistAndLoad(t, newStore(t)) })
	t.Run("PersistIsIdempotent", func(t *testing.T) { testIdempotent(t, newStore(t)) })
	t.Run("OrderBySeqNotArrival", func(t *testing.T) { testOrderBySeq(t, newStore(t)) })
	t.Run("EntriesKeepSeq", func(t *testing.T) { testEntriesKeepSeq(t, newStore(t)) })
	t.Run("ConcurrentPersist", func(t *testing.T) { testConcurrentPersist(t, newStore(t)) })
	t.Run("UnknownSession", func(t *testing.T) { testUnknownSession(t, newStore(t)) })
	t.Run("PersistTouchesSession", func(t *testing.T) { testPersistTouches(t, newStore(t)) })
}

func testCreateAndList(t *testing.T, s store.Store) {
	ctx := t.Context()

	first, err := s.CreateSession(ctx, "first")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "first", first.Title)
	assert.False(t, first.CreatedAt.IsZero())

	time.Sleep(10 * time.Millisecond)
	second, err := s.CreateSession(ctx, "second")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func testRename(t *testing.T, s store.Store) {
	ctx := t.Context()

	sess, err := s.CreateSession(ctx, "old")
	require.NoError(t, err)
	require.NoError(t, s.RenameSession(ctx, sess.ID, "new"))

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].Title)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := t.Context()

	keep, err := s.CreateSession(ctx, "keep")
	require.NoError(t, err)
	drop, err := s.CreateSession(ctx, "drop")
	require.NoError(t, err)

	require.NoError(t, s.PersistMessage(ctx, drop.ID, model.Entry{ID: "m1", Message: model.UserMessage("x")}))
	require.NoError(t, s.DeleteSession(ctx, drop.ID))

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	_, err = s.LoadSessionMessages(ctx, drop.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testPersistAndLoad(t *testing.T, s store.Store) {
	ctx := t.Context()

	sess, err := s.CreateSession(ctx, "chat")
	require.NoError(t, err)

	msgs := []model.Message{
		model.UserMessage("list files"),
		{
			Role:      model.RoleAssistant,
			ToolCalls: []model.ToolCall{model.NewToolCall("c1", "bash", `{"command":"ls"}`)},
		},
		model.ToolMessage("bash", "a.txt\nb.txt", "c1"),
		model.AssistantMessage("There are two files."),
	}
	for i, m := range msgs {
		require.NoError(t, s.PersistMessage(ctx, sess.ID, model.Entry{ID: fmt.Sprintf("m%d", i), Seq: i, Message: m}))
	}

	got, err := s.LoadSessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got, len(msgs))
	for i := range msgs {
		assert.Equal(t, msgs[i].Role, got[i].Role)
		assert.Equal(t, msgs[i].Content, got[i].Content)
		assert.Equal(t, msgs[i].Name, got[i].Name)
		assert.Equal(t, msgs[i].ToolCallID, got[i].ToolCallID)
		assert.Equal(t, len(msgs[i].ToolCalls), len(got[i].ToolCalls))
	}
	assert.Equal(t, "bash", got[1].ToolCalls[0].Function.Name)
	assert.Equal(t, `{"command":"ls"}`, got[1].ToolCalls[0].Function.Arguments)
}

func testIdempotent(t *testing.T, s store.Store) {
	ctx := t.Context()

	sess, err := s.CreateSession(ctx, "chat")
	require.NoError(t, err)

	entry := model.Entry{ID: "same", Seq: 0, Message: model.UserMessage("once")}
	require.NoError(t, s.PersistMessage(ctx, sess.ID, entry))
	require.NoError(t, s.PersistMessage(ctx, sess.ID, entry))

	got, err := s.LoadSessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func testOrderBySeq(t *testing.T, s store.Store) {
	ctx := t.Context()

	sess, err := s.CreateSession(ctx, "chat")
	require.NoError(t, err)

	require.NoError(t, s.PersistMessage(ctx, sess.ID, model.Entry{ID: "b", Seq: 1, Message: model.AssistantMessage("second")}))
	require.NoError(t, s.PersistMessage(ctx, sess.ID, model.Entry{ID: "a", Seq: 0, Message: model.UserMessage("first")}))

	got, err := s.LoadSessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Content)
	assert.Equal(t, "second", got[1].Content)
}

func testEntriesKeepSeq(t *testing.T, s store.Store) {
	ctx := t.Context()

	sess, err := s.CreateSession(ctx, "chat")
	require.NoError(t, err)

	// a gap left by a failed write
	require.NoError(t, s.PersistMessage(ctx, sess.ID, model.Entry{ID: "c", Seq: 3, Message: model.AssistantMessage("late")}))
	require.NoError(t, s.PersistMessage(ctx, sess.ID, model.Entry{ID: "a", Seq: 0, Message: model.UserMessage("early")}))

	got, err := s.LoadSessionEntries(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 0, got[0].Seq)
	assert.Equal(t, "c", got[1].ID)
	assert.Equal(t, 3, got[1].Seq)
	assert.Equal(t, "late", got[1].Message.Content)
}

func testConcurrentPersist(t *testing.T, s store.Store) {
	ctx := t.Context()

	sess, err := s.CreateSession(ctx, "chat")
	require.NoError(t, err)

	const n = 32
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Go(func() {
			errs <- s.PersistMessage(ctx, sess.ID, model.Entry{
				ID:      fmt.Sprintf("m%02d", i),
				Seq:     i,
				Message: model.AssistantMessage(fmt.Sprint(i)),
			})
		})
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := s.LoadSessionMessages(ctx, sess.ID)
	require.NoError(t, err)
	require.Len(t, got, n)
	for i := range n {
		assert.Equal(t, fmt.Sprint(i), got[i].Content)
	}
}

func testUnknownSession(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.LoadSessionMessages(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.RenameSession(ctx, "missing", "x"), store.ErrNotFound)
	assert.ErrorIs(t, s.DeleteSession(ctx, "missing"), store.ErrNotFound)
	assert.ErrorIs(t, s.PersistMessage(ctx, "missing", model.Entry{ID: "x"}), store.ErrNotFound)

	_, err = s.LoadSessionMessages(ctx, "")
	assert.ErrorIs(t, err, store.ErrEmptyID)
}

func testPersistTouches(t *testing.T, s store.Store) {
	ctx := t.Context()

	older, err := s.CreateSession(ctx, "older")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	_, err = s.CreateSession(ctx, "newer")
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)

	require.NoError(t, s.PersistMessage(ctx, older.ID, model.Entry{ID: "m", Message: model.UserMessage("bump")}))

	list, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, older.ID, list[0].ID)
	assert.True(t, list[0].UpdatedAt.After(older.UpdatedAt))
}
