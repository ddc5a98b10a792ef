// Package memory is a Store kept entirely in process memory.
package memory

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/store"
)

type session struct {
	meta    store.Session
	entries []model.Entry
	seen    map[string]struct{}
}

type Store struct {
	mu       sync.RWMutex
	sessions map[string]*session

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

func (s *Store) CreateSession(_ context.Context, title string) (store.Session, error) {
	now := s.now()
	meta := store.Session{
		ID:        store.NewID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[meta.ID] = &session{
		meta: meta,
		seen: make(map[string]struct{}),
	}

	return meta, nil
}

func (s *Store) ListSessions(_ context.Context) ([]store.Session, error) {
	s.mu.RLock()
	out := make([]store.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.meta)
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b store.Session) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	return out, nil
}

func (s *Store) get(id string) (*session, error) {
	if id == "" {
		return nil, store.ErrEmptyID
	}
	sess, ok := s.sessions[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return sess, nil
}

func (s *Store) RenameSession(_ context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(id)
	if err != nil {
		return err
	}
	sess.meta.Title = title
	sess.meta.UpdatedAt = s.now()
	return nil
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.get(id); err != nil {
		return err
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) LoadSessionMessages(ctx context.Context, id string) ([]model.Message, error) {
	entries, err := s.LoadSessionEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.Messages(entries), nil
}

func (s *Store) LoadSessionEntries(_ context.Context, id string) ([]model.Entry, error) {
	s.mu.RLock()
	sess, err := s.get(id)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	entries := slices.Clone(sess.entries)
	s.mu.RUnlock()

	slices.SortStableFunc(entries, func(a, b model.Entry) int {
		return cmp.Compare(a.Seq, b.Seq)
	})
	return entries, nil
}

func (s *Store) PersistMessage(_ context.Context, sessionID string, entry model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.get(sessionID)
	if err != nil {
		return err
	}

	if _, dup := sess.seen[entry.ID]; dup {
		return nil
	}
	sess.seen[entry.ID] = struct{}{}
	sess.entries = append(sess.entries, entry)
	sess.meta.UpdatedAt = s.now()

	return nil
}

func (s *Store) Close() error {
	return nil
}
