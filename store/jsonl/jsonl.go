// Package jsonl is a Store that keeps every session as a directory holding an
// append-only JSON lines log and a small YAML metadata file.
package jsonl

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/store"
)

type Store struct {
	root string

	mu   sync.RWMutex
	logs map[string]*sessionLog

	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func Open(root string) (*Store, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create sessions dir: %w", err)
	}

	return &Store{
		root: root,
		logs: make(map[string]*sessionLog),
		now:  time.Now,
	}, nil
}

func (s *Store) CreateSession(_ context.Context, title string) (store.Session, error) {
	now := s.now()
	sess := store.Session{
		ID:        store.NewID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	dir := filepath.Join(s.root, sess.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return store.Session{}, fmt.Errorf("failed to create session dir: %w", err)
	}
	err := writeMeta(filepath.Join(dir, metaFilename), meta{
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return store.Session{}, fmt.Errorf("failed to write session meta: %w", err)
	}

	return sess, nil
}

func (s *Store) ListSessions(_ context.Context) ([]store.Session, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions dir: %w", err)
	}

	out := make([]store.Session, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}

		m, err := readMeta(filepath.Join(s.root, e.Name(), metaFilename))
		if err != nil {
			slog.Warn("[store] skip unreadable session", "id", e.Name(), "error", err)
			continue
		}
		out = append(out, store.Session{
			ID:        e.Name(),
			Title:     m.Title,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		})
	}

	slices.SortFunc(out, func(a, b store.Session) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return strings.Compare(b.ID, a.ID)
	})

	return out, nil
}

// getOrOpen returns the cached log of id, opening it on first use.
func (s *Store) getOrOpen(id string) (*sessionLog, error) {
	if id == "" {
		return nil, store.ErrEmptyID
	}

	s.mu.RLock()
	if l, ok := s.logs[id]; ok {
		s.mu.RUnlock()
		return l, nil
	}
	s.mu.RUnlock()

	l, err := openSessionLog(s.root, id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cur, ok := s.logs[id]; ok {
		l.close()
		return cur, nil
	}
	s.logs[id] = l
	return l, nil
}

func (s *Store) RenameSession(_ context.Context, id, title string) error {
	l, err := s.getOrOpen(id)
	if err != nil {
		return err
	}

	now := s.now()
	return l.touch(func(m *meta) {
		m.Title = title
		m.UpdatedAt = now
	})
}

func (s *Store) DeleteSession(_ context.Context, id string) error {
	l, err := s.getOrOpen(id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.logs, id)
	s.mu.Unlock()

	l.close()
	if err := os.RemoveAll(l.dir); err != nil {
		return fmt.Errorf("failed to remove session dir: %w", err)
	}
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
	l, err := s.getOrOpen(id)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	items, err := readLogItems(l.logPath())
	l.mu.Unlock()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	uniq := items[:0]
	for _, item := range items {
		if _, dup := seen[item.Id]; dup {
			continue
		}
		seen[item.Id] = struct{}{}
		uniq = append(uniq, item)
	}

	slices.SortStableFunc(uniq, func(a, b logItem) int {
		return cmp.Compare(a.Seq, b.Seq)
	})

	entries := make([]model.Entry, 0, len(uniq))
	for _, item := range uniq {
		entries = append(entries, model.Entry{ID: item.Id, Seq: item.Seq, Message: item.Message})
	}
	return entries, nil
}

func (s *Store) PersistMessage(_ context.Context, sessionID string, entry model.Entry) error {
	l, err := s.getOrOpen(sessionID)
	if err != nil {
		return err
	}
	return l.append(entry, s.now())
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, l := range s.logs {
		l.close()
		delete(s.logs, id)
	}
	return nil
}
