package controller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanreadbooks/codemaster/chat/event"
	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/chat/reconcile"
	"github.com/ryanreadbooks/codemaster/chat/state"
	"github.com/ryanreadbooks/codemaster/store"
	"github.com/ryanreadbooks/codemaster/store/memory"
)

type fakeTurns struct {
	mu      sync.Mutex
	texts   []string
	history [][]model.Message
	err     error
	before  func()
}

func (f *fakeTurns) DispatchUserTurn(_ context.Context, text string, history []model.Message) error {
	if f.before != nil {
		f.before()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	f.history = append(f.history, history)
	return f.err
}

// syncExec persists effects inline so tests can inspect the store right away.
type syncExec struct {
	store        *memory.Store
	createErr    error
	beforeCreate func()

	mu        sync.Mutex
	effects   []reconcile.Effect
	refreshes int
}

func (e *syncExec) Apply(effects ...reconcile.Effect) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, eff := range effects {
		e.effects = append(e.effects, eff)
		switch eff := eff.(type) {
		case reconcile.PersistMessage:
			_ = e.store.PersistMessage(context.Background(), eff.SessionID, eff.Entry)
		case reconcile.RefreshSessions:
			e.refreshes++
		}
	}
}

func (e *syncExec) CreateSession(ctx context.Context, title string) (store.Session, error) {
	if e.beforeCreate != nil {
		e.beforeCreate()
	}
	if e.createErr != nil {
		return store.Session{}, e.createErr
	}
	return e.store.CreateSession(ctx, title)
}

func (e *syncExec) persisted() []reconcile.PersistMessage {
	e.mu.Lock()
	defer e.mu.Unlock()
	var out []reconcile.PersistMessage
	for _, eff := range e.effects {
		if pm, ok := eff.(reconcile.PersistMessage); ok {
			out = append(out, pm)
		}
	}
	return out
}

type fixture struct {
	ctrl  *Controller
	turns *fakeTurns
	exec  *syncExec
	store *memory.Store
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	ms := memory.New()
	f := &fixture{
		turns: &fakeTurns{},
		exec:  &syncExec{store: ms},
		store: ms,
	}
	f.ctrl = New(f.turns, f.exec, ms, opts...)
	return f
}

func deliver(e event.Event) event.Delivery {
	return event.Delivery{ID: "evt-" + e.Type().String(), Event: e}
}

func TestFirstSendCreatesSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	require.NoError(t, f.ctrl.OnUserSend(ctx, "fix bug"))

	sessions, err := f.store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "fix bug", sessions[0].Title)

	s := f.ctrl.Snapshot()
	assert.Equal(t, sessions[0].ID, s.SessionID)
	assert.True(t, s.Loading)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, model.UserMessage("fix bug"), s.Messages[0])

	assert.Equal(t, 1, f.exec.refreshes)
	pms := f.exec.persisted()
	require.Len(t, pms, 1)
	assert.Equal(t, sessions[0].ID, pms[0].SessionID)
	assert.Equal(t, 0, pms[0].Entry.Seq)

	require.Len(t, f.turns.history, 1)
	assert.Equal(t, []string{"fix bug"}, f.turns.texts)
	assert.Len(t, f.turns.history[0], 1)

	f.ctrl.HandleEvent(deliver(event.Done()))
	assert.False(t, f.ctrl.Snapshot().Loading)
}

func TestLongFirstMessageIsTruncatedInTitle(t *testing.T) {
	f := newFixture(t)
	text := strings.Repeat("a", 45)

	require.NoError(t, f.ctrl.OnUserSend(t.Context(), text))

	sessions, err := f.store.ListSessions(t.Context())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, strings.Repeat("a", 30)+"…", sessions[0].Title)
}

func TestSecondSendReusesSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	require.NoError(t, f.ctrl.OnUserSend(ctx, "one"))
	f.ctrl.HandleEvent(deliver(event.Done()))
	require.NoError(t, f.ctrl.OnUserSend(ctx, "two"))

	sessions, err := f.store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.Len(t, f.turns.history, 2)
	assert.Len(t, f.turns.history[1], 2)
	assert.Equal(t, 1, f.exec.refreshes)
}

func TestCreateFailureAbortsSend(t *testing.T) {
	f := newFixture(t)
	f.exec.createErr = errors.New("database is locked")

	err := f.ctrl.OnUserSend(t.Context(), "hello")
	require.Error(t, err)
	assert.ErrorContains(t, err, "database is locked")

	s := f.ctrl.Snapshot()
	assert.Empty(t, s.Messages)
	assert.False(t, s.Loading)
	assert.False(t, s.HasSession())
	assert.Empty(t, f.turns.texts)
	assert.Empty(t, f.exec.effects)
}

func TestRejectsEmptyAndBusy(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	assert.ErrorIs(t, f.ctrl.OnUserSend(ctx, "   \n"), ErrEmptyMessage)

	require.NoError(t, f.ctrl.OnUserSend(ctx, "first"))
	assert.ErrorIs(t, f.ctrl.OnUserSend(ctx, "second"), ErrBusy)
	assert.Len(t, f.ctrl.Snapshot().Messages, 1)
}

func TestDispatchFailureIsRecorded(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("connection refused")
	f.turns.err = boom

	err := f.ctrl.OnUserSend(t.Context(), "hello")
	assert.ErrorIs(t, err, boom)

	s := f.ctrl.Snapshot()
	assert.False(t, s.Loading)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, model.UserMessage("hello"), s.Messages[0])
	assert.Equal(t, model.AssistantMessage("Error sending message: connection refused"), s.Messages[1])

	// only the user message reached the store
	msgs, err := f.store.LoadSessionMessages(t.Context(), s.SessionID)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestDispatchFailureAfterSessionChangeIsDropped(t *testing.T) {
	f := newFixture(t)
	f.turns.err = errors.New("timeout")
	f.turns.before = f.ctrl.ResetSession

	require.Error(t, f.ctrl.OnUserSend(t.Context(), "hello"))

	s := f.ctrl.Snapshot()
	assert.False(t, s.HasSession())
	assert.Empty(t, s.Messages)
}

func TestSwitchDuringSessionCreationKeepsOtherSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	other, err := f.store.CreateSession(ctx, "other")
	require.NoError(t, err)
	require.NoError(t, f.store.PersistMessage(ctx, other.ID, model.Entry{ID: "o1", Seq: 0, Message: model.UserMessage("kept")}))

	f.exec.beforeCreate = func() {
		require.NoError(t, f.ctrl.SwitchSession(ctx, other.ID))
	}

	err = f.ctrl.OnUserSend(ctx, "hello")
	assert.ErrorIs(t, err, ErrSessionChanged)

	s := f.ctrl.Snapshot()
	assert.Equal(t, other.ID, s.SessionID)
	assert.False(t, s.Loading)
	require.Len(t, s.Messages, 1)
	assert.Equal(t, "kept", s.Messages[0].Content)

	assert.Empty(t, f.turns.texts)
	assert.Empty(t, f.exec.persisted())
	stored, err := f.store.LoadSessionMessages(ctx, other.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestResetDuringSessionCreationDropsSend(t *testing.T) {
	f := newFixture(t)
	f.exec.beforeCreate = f.ctrl.ResetSession

	assert.ErrorIs(t, f.ctrl.OnUserSend(t.Context(), "hello"), ErrSessionChanged)
	s := f.ctrl.Snapshot()
	assert.False(t, s.HasSession())
	assert.Empty(t, s.Messages)
	assert.Empty(t, f.turns.texts)
}

func TestStoredOrderSurvivesErrorsAndReload(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	turn := func(text string, events ...event.Event) {
		t.Helper()
		require.NoError(t, f.ctrl.OnUserSend(ctx, text))
		for i, e := range events {
			f.ctrl.HandleEvent(event.Delivery{ID: text + "-" + string(rune('a'+i)), Event: e})
		}
	}

	turn("a", event.Error("rate limited"))
	turn("r", event.Error("rate limited"))
	turn("b", event.NewMessage(model.AssistantMessage("c")), event.Done())

	id := f.ctrl.Snapshot().SessionID
	require.NoError(t, f.ctrl.SwitchSession(ctx, id))
	turn("d", event.NewMessage(model.AssistantMessage("e")), event.Done())

	stored, err := f.store.LoadSessionMessages(ctx, id)
	require.NoError(t, err)
	var contents []string
	for _, m := range stored {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"a", "r", "b", "c", "d", "e"}, contents)
}

func TestPanickingTransitionReleasesLock(t *testing.T) {
	f := newFixture(t)

	assert.Panics(t, func() {
		f.ctrl.update(func(state.State) (state.State, []reconcile.Effect) {
			panic("boom")
		})
	})

	done := make(chan struct{})
	go func() {
		f.ctrl.Snapshot()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("state lock was left held")
	}
}

func TestFullTurnIsPersistedInOrder(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	require.NoError(t, f.ctrl.OnUserSend(ctx, "list files"))

	call := model.NewToolCall("c1", "bash", `{"command":"ls"}`)
	events := []event.Event{
		event.Thinking("Thinking..."),
		event.StreamChunk("Let me "),
		event.StreamChunk("look"),
		event.StreamEnd(),
		event.NewMessage(model.Message{Role: model.RoleAssistant, ToolCalls: []model.ToolCall{call}}),
		event.ToolCall("bash", `{"command":"ls"}`, "c1"),
		event.ToolResult("bash", "a.txt", "c1"),
		event.NewMessage(model.AssistantMessage("One file.")),
		event.Done(),
	}
	for i, e := range events {
		f.ctrl.HandleEvent(event.Delivery{ID: string(rune('a' + i)), Event: e})
	}

	s := f.ctrl.Snapshot()
	assert.False(t, s.Loading)
	assert.Empty(t, s.StreamingContent)
	require.Len(t, s.Messages, 4)

	stored, err := f.store.LoadSessionMessages(ctx, s.SessionID)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, model.RoleUser, stored[0].Role)
	assert.True(t, stored[1].HasToolCalls())
	assert.Equal(t, model.RoleTool, stored[2].Role)
	assert.Equal(t, "One file.", stored[3].Content)
}

func TestEventsWithoutSessionAreNotPersisted(t *testing.T) {
	f := newFixture(t)

	f.ctrl.HandleEvent(deliver(event.NewMessage(model.AssistantMessage("hi"))))

	assert.Len(t, f.ctrl.Snapshot().Messages, 1)
	assert.Empty(t, f.exec.persisted())
}

func TestSwitchSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	sess, err := f.store.CreateSession(ctx, "old chat")
	require.NoError(t, err)
	require.NoError(t, f.store.PersistMessage(ctx, sess.ID, model.Entry{ID: "1", Seq: 0, Message: model.UserMessage("q")}))
	require.NoError(t, f.store.PersistMessage(ctx, sess.ID, model.Entry{ID: "2", Seq: 1, Message: model.AssistantMessage("a")}))

	require.NoError(t, f.ctrl.SwitchSession(ctx, sess.ID))
	s := f.ctrl.Snapshot()
	assert.Equal(t, sess.ID, s.SessionID)
	require.Len(t, s.Messages, 2)
	assert.Equal(t, "a", s.Messages[1].Content)

	err = f.ctrl.SwitchSession(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, sess.ID, f.ctrl.Snapshot().SessionID)
}

func TestResetSession(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.ctrl.OnUserSend(t.Context(), "x"))

	f.ctrl.ResetSession()
	s := f.ctrl.Snapshot()
	assert.False(t, s.HasSession())
	assert.Empty(t, s.Messages)
	assert.False(t, s.Loading)
}

func TestDeleteSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	other, err := f.store.CreateSession(ctx, "other")
	require.NoError(t, err)
	require.NoError(t, f.ctrl.OnUserSend(ctx, "current"))
	current := f.ctrl.Snapshot().SessionID

	require.NoError(t, f.ctrl.DeleteSession(ctx, other.ID))
	assert.Equal(t, current, f.ctrl.Snapshot().SessionID)

	require.NoError(t, f.ctrl.DeleteSession(ctx, current))
	s := f.ctrl.Snapshot()
	assert.False(t, s.HasSession())
	assert.Empty(t, s.Messages)

	sessions, err := f.ctrl.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
	assert.Equal(t, 3, f.exec.refreshes)

	assert.ErrorIs(t, f.ctrl.DeleteSession(ctx, "missing"), store.ErrNotFound)
}

func TestRenameSession(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	sess, err := f.store.CreateSession(ctx, "old")
	require.NoError(t, err)

	require.NoError(t, f.ctrl.RenameSession(ctx, sess.ID, "  new title "))
	sessions, err := f.ctrl.ListSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new title", sessions[0].Title)
	assert.Equal(t, 1, f.exec.refreshes)

	assert.ErrorIs(t, f.ctrl.RenameSession(ctx, sess.ID, " "), ErrEmptyMessage)
}

func TestNotifierReceivesCopies(t *testing.T) {
	var (
		mu   sync.Mutex
		seen []state.State
	)
	f := newFixture(t, WithNotifier(func(s state.State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}), WithIDFunc(func() string { return "fixed" }))

	require.NoError(t, f.ctrl.OnUserSend(t.Context(), "hi"))
	f.ctrl.HandleEvent(deliver(event.StreamChunk("yo")))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.True(t, seen[0].Loading)
	assert.Equal(t, "yo", seen[1].StreamingContent)

	seen[1].Messages[0].Content = "mutated"
	assert.Equal(t, "hi", f.ctrl.Snapshot().Messages[0].Content)
	assert.Equal(t, "fixed", f.exec.persisted()[0].Entry.ID)
}
