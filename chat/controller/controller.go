// Package controller owns the live conversation: it serializes user sends,
// creates sessions lazily, feeds agent events through the reconciler and hands
// the resulting effects to an executor.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ryanreadbooks/codemaster/chat/event"
	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/chat/reconcile"
	"github.com/ryanreadbooks/codemaster/chat/state"
	"github.com/ryanreadbooks/codemaster/pkg/xstring"
	"github.com/ryanreadbooks/codemaster/store"
)

// TitleLimit is the number of runes of the first message used as session title.
const TitleLimit = 30

var (
	ErrEmptyMessage   = errors.New("message is empty")
	ErrBusy           = errors.New("agent is still working on the previous message")
	// ErrSessionChanged is returned when the chat was switched, reset or
	// deleted while a send was still creating its session.
	ErrSessionChanged = errors.New("session changed while sending")
)

// TurnDispatcher delivers a user turn to the agent host.
type TurnDispatcher interface {
	DispatchUserTurn(ctx context.Context, text string, history []model.Message) error
}

// Executor runs effects and creates sessions on demand.
type Executor interface {
	Apply(effects ...reconcile.Effect)
	CreateSession(ctx context.Context, title string) (store.Session, error)
}

// Sessions is the read and management side of the session store.
type Sessions interface {
	ListSessions(ctx context.Context) ([]store.Session, error)
	RenameSession(ctx context.Context, id, title string) error
	DeleteSession(ctx context.Context, id string) error
	LoadSessionEntries(ctx context.Context, id string) ([]model.Entry, error)
}

type Option func(c *Controller)

// WithNotifier registers fn to receive a copy of the state after every change.
// fn is called without any controller lock held.
func WithNotifier(fn func(state.State)) Option {
	return func(c *Controller) { c.notify = fn }
}

// WithIDFunc replaces the generator of ids for locally created messages.
func WithIDFunc(fn func() string) Option {
	return func(c *Controller) { c.newID = fn }
}

type Controller struct {
	turns    TurnDispatcher
	exec     Executor
	sessions Sessions

	sendMu sync.Mutex

	mu    sync.Mutex
	state state.State
	// gen is bumped whenever the conversation is replaced wholesale.
	gen uint64

	notify func(state.State)
	newID  func() string
}

func New(turns TurnDispatcher, exec Executor, sessions Sessions, opts ...Option) *Controller {
	c := &Controller{
		turns:    turns,
		exec:     exec,
		sessions: sessions,
		state:    state.New(),
		notify:   func(state.State) {},
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() state.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// update applies fn to the state under lock and publishes the result.
func (c *Controller) update(fn func(s state.State) (state.State, []reconcile.Effect)) {
	snap, effects := c.transition(fn)

	if len(effects) > 0 {
		c.exec.Apply(effects...)
	}
	c.notify(snap)
}

func (c *Controller) transition(fn func(s state.State) (state.State, []reconcile.Effect)) (state.State, []reconcile.Effect) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, effects := fn(c.state)
	c.state = next
	return next.Clone(), effects
}

// replace swaps the whole conversation for next.
func (c *Controller) replace(next func(s state.State) (state.State, bool), effects ...reconcile.Effect) {
	c.update(func(s state.State) (state.State, []reconcile.Effect) {
		if n, ok := next(s); ok {
			c.gen++
			s = n
		}
		return s, effects
	})
}

// OnUserSend sends text as a new user turn. A session is created first when the
// chat has none; if that fails nothing is appended. A dispatch failure is
// recorded in the conversation and also returned.
func (c *Controller) OnUserSend(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	busy, sessionID, gen := c.state.Loading, c.state.SessionID, c.gen
	c.mu.Unlock()
	if busy {
		return ErrBusy
	}

	var effects []reconcile.Effect
	if sessionID == "" {
		sess, err := c.exec.CreateSession(ctx, xstring.Truncate(text, TitleLimit))
		if err != nil {
			slog.Error("[controller] failed to create session", "error", err)
			return fmt.Errorf("failed to create session: %w", err)
		}
		sessionID = sess.ID
		effects = append(effects, reconcile.RefreshSessions{})
		slog.Info("[controller] session created", "session", sess.ID, "title", sess.Title)
	}

	var (
		history []model.Message
		stale   bool
	)
	c.update(func(s state.State) (state.State, []reconcile.Effect) {
		if c.gen != gen {
			stale = true
			return s, effects
		}
		s.SessionID = sessionID
		next, sent := reconcile.UserSend(s, c.newID(), text)
		history = next.History()
		return next, append(effects, sent...)
	})
	if stale {
		slog.Warn("[controller] conversation replaced while sending, dropping message", "session", sessionID)
		return ErrSessionChanged
	}

	err := c.turns.DispatchUserTurn(ctx, text, history)
	if err == nil {
		return nil
	}

	slog.Error("[controller] failed to dispatch user turn", "session", sessionID, "error", err)
	c.update(func(s state.State) (state.State, []reconcile.Effect) {
		if c.gen != gen {
			slog.Warn("[controller] session changed before dispatch failed, dropping notice",
				"sent_in", sessionID, "current", s.SessionID)
			return s, nil
		}
		return reconcile.DispatchFailed(s, err), nil
	})

	return fmt.Errorf("failed to dispatch user turn: %w", err)
}

// HandleEvent feeds one agent event into the conversation. It is meant to be
// subscribed to the event bus.
func (c *Controller) HandleEvent(d event.Delivery) {
	if d.Event == nil {
		return
	}
	c.update(func(s state.State) (state.State, []reconcile.Effect) {
		return reconcile.Reconcile(s, d)
	})
}

// SwitchSession loads id from the store and replaces the conversation with it.
// On error the current conversation is left untouched.
func (c *Controller) SwitchSession(ctx context.Context, id string) error {
	entries, err := c.sessions.LoadSessionEntries(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load session %s: %w", id, err)
	}

	c.replace(func(state.State) (state.State, bool) {
		return state.Resume(id, entries), true
	})
	return nil
}

// ResetSession starts a new, not yet persisted chat.
func (c *Controller) ResetSession() {
	c.replace(func(state.State) (state.State, bool) {
		return state.New(), true
	})
}

func (c *Controller) ListSessions(ctx context.Context) ([]store.Session, error) {
	return c.sessions.ListSessions(ctx)
}

func (c *Controller) RenameSession(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyMessage
	}
	if err := c.sessions.RenameSession(ctx, id, title); err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	c.exec.Apply(reconcile.RefreshSessions{})
	return nil
}

// DeleteSession removes id from the store. Deleting the current session resets the chat.
func (c *Controller) DeleteSession(ctx context.Context, id string) error {
	if err := c.sessions.DeleteSession(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	c.replace(func(s state.State) (state.State, bool) {
		return state.New(), s.SessionID == id
	}, reconcile.RefreshSessions{})
	return nil
}
