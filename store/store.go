// Package store declares the session store the chat client persists into.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ryanreadbooks/codemaster/chat/model"
)

var (
	ErrEmptyID  = errors.New("session ID cannot be empty")
	ErrNotFound = errors.New("session not found")
)

// Session is a named, persisted conversation thread.
type Session struct {
	ID        string    `json:"id"         yaml:"id"`
	Title     string    `json:"title"      yaml:"title"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store persists sessions and their messages.
//
// PersistMessage must be safe to call concurrently for different messages of
// the same session, and must be idempotent per entry ID: storing the same
// entry twice keeps a single copy. Messages are returned ordered by entry Seq,
// ties broken by the order they were stored in.
type Store interface {
	CreateSession(ctx context.Context, title string) (Session, error)
	// ListSessions returns sessions most recently updated first.
	ListSessions(ctx context.Context) ([]Session, error)
	RenameSession(ctx context.Context, id, title string) error
	// DeleteSession removes the session and all its messages.
	DeleteSession(ctx context.Context, id string) error
	LoadSessionMessages(ctx context.Context, id string) ([]model.Message, error)
	// LoadSessionEntries is LoadSessionMessages with the stored IDs and Seqs kept.
	LoadSessionEntries(ctx context.Context, id string) ([]model.Entry, error)
	// PersistMessage appends entry to the session and bumps its UpdatedAt.
	PersistMessage(ctx context.Context, sessionID string, entry model.Entry) error
	Close() error
}

// Messages strips entries down to their messages, keeping order.
func Messages(entries []model.Entry) []model.Message {
	msgs := make([]model.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, e.Message)
	}
	return msgs
}
