// Package sqlite is a Store backed by a local SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/pkg/sqliteutil"
	"github.com/ryanreadbooks/codemaster/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	pk           INTEGER PRIMARY KEY AUTOINCREMENT,
	id           TEXT NOT NULL UNIQUE,
	session_id   TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	seq          INTEGER NOT NULL,
	role         TEXT NOT NULL,
	content      TEXT NOT NULL DEFAULT '',
	tool_calls   TEXT,
	tool_call_id TEXT,
	name         TEXT,
	created_at   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the database at path and ensures the schema exists.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqliteutil.OpenDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session db: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate session db: %w", err)
	}

	slog.Debug("[store] sqlite session store opened", "path", path)

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) CreateSession(ctx context.Context, title string) (store.Session, error) {
	now := s.now()
	sess := store.Session{
		ID:        store.NewID(),
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, title, created_at, updated_at) VALUES (?, ?, ?, ?)",
		sess.ID, sess.Title, now.UnixNano(), now.UnixNano())
	if err != nil {
		return store.Session{}, fmt.Errorf("failed to insert session: %w", err)
	}

	return sess, nil
}

func (s *Store) ListSessions(ctx context.Context) ([]store.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, created_at, updated_at FROM sessions ORDER BY updated_at DESC, id DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []store.Session
	for rows.Next() {
		var (
			sess             store.Session
			created, updated int64
		)
		if err := rows.Scan(&sess.ID, &sess.Title, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sess.CreatedAt = time.Unix(0, created)
		sess.UpdatedAt = time.Unix(0, updated)
		out = append(out, sess)
	}

	return out, rows.Err()
}

func (s *Store) RenameSession(ctx context.Context, id, title string) error {
	if id == "" {
		return store.ErrEmptyID
	}

	res, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET title = ?, updated_at = ? WHERE id = ?",
		title, s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("failed to rename session: %w", err)
	}
	return mustAffect(res)
}

func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if id == "" {
		return store.ErrEmptyID
	}

	res, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return mustAffect(res)
}

func (s *Store) LoadSessionMessages(ctx context.Context, id string) ([]model.Message, error) {
	entries, err := s.LoadSessionEntries(ctx, id)
	if err != nil {
		return nil, err
	}
	return store.Messages(entries), nil
}

func (s *Store) LoadSessionEntries(ctx context.Context, id string) ([]model.Entry, error) {
	if id == "" {
		return nil, store.ErrEmptyID
	}
	if err := s.exists(ctx, id); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, seq, role, content, tool_calls, tool_call_id, name
		   FROM messages WHERE session_id = ? ORDER BY seq ASC, pk ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var entries []model.Entry
	for rows.Next() {
		var (
			entry                        model.Entry
			role                         string
			toolCalls, toolCallID, named sql.NullString
		)
		msg := &entry.Message
		if err := rows.Scan(&entry.ID, &entry.Seq, &role, &msg.Content, &toolCalls, &toolCallID, &named); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}

		msg.Role, err = model.ParseRole(role)
		if err != nil {
			return nil, err
		}
		msg.ToolCallID = toolCallID.String
		msg.Name = named.String
		if toolCalls.Valid && toolCalls.String != "" {
			if err := json.Unmarshal([]byte(toolCalls.String), &msg.ToolCalls); err != nil {
				return nil, fmt.Errorf("failed to decode tool calls: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *Store) PersistMessage(ctx context.Context, sessionID string, entry model.Entry) error {
	if sessionID == "" {
		return store.ErrEmptyID
	}

	var toolCalls sql.NullString
	if entry.Message.HasToolCalls() {
		raw, err := json.Marshal(entry.Message.ToolCalls)
		if err != nil {
			return fmt.Errorf("failed to encode tool calls: %w", err)
		}
		toolCalls = sql.NullString{String: string(raw), Valid: true}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := existsWith(ctx, tx, sessionID); err != nil {
		return err
	}

	now := s.now().UnixNano()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO messages (id, session_id, seq, role, content, tool_calls, tool_call_id, name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		entry.ID, sessionID, entry.Seq, entry.Message.Role.String(), entry.Message.Content,
		toolCalls, nullable(entry.Message.ToolCallID), nullable(entry.Message.Name), now)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	if n, _ := res.RowsAffected(); n > 0 {
		if _, err := tx.ExecContext(ctx,
			"UPDATE sessions SET updated_at = ? WHERE id = ?", now, sessionID); err != nil {
			return fmt.Errorf("failed to touch session: %w", err)
		}
	}

	return tx.Commit()
}

func (s *Store) Close() error {
	return s.db.Close()
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) exists(ctx context.Context, id string) error {
	return existsWith(ctx, s.db, id)
}

func existsWith(ctx context.Context, q querier, id string) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM sessions WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mustAffect(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
