package jsonl

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/store"
)

const (
	logFilename  = "log.jsonl"
	metaFilename = "meta.yaml"
)

// logItem is one line of a session log.
type logItem struct {
	Id      string        `json:"id"`
	Seq     int           `json:"seq"`
	Created int64         `json:"created"`
	Message model.Message `json:"message"`
}

type meta struct {
	Title     string    `yaml:"title"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

// sessionLog is the append-only log of a single session
//
// - root/<session id>/log.jsonl
// - root/<session id>/meta.yaml
type sessionLog struct {
	dir string
	id  string

	mu   sync.Mutex
	f    *os.File
	seen map[string]struct{}
}

func openSessionLog(root, id string) (*sessionLog, error) {
	l := &sessionLog{
		dir:  filepath.Join(root, id),
		id:   id,
		seen: make(map[string]struct{}),
	}

	if _, err := os.Stat(l.metaPath()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	items, err := readLogItems(l.logPath())
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		l.seen[item.Id] = struct{}{}
	}

	f, err := os.OpenFile(l.logPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	l.f = f

	return l, nil
}

func (l *sessionLog) logPath() string  { return filepath.Join(l.dir, logFilename) }
func (l *sessionLog) metaPath() string { return filepath.Join(l.dir, metaFilename) }

func (l *sessionLog) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
}

// append writes entry unless an item with the same id is already in the log.
func (l *sessionLog) append(entry model.Entry, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return fmt.Errorf("session log closed")
	}
	if _, dup := l.seen[entry.ID]; dup {
		return nil
	}

	line, err := json.Marshal(logItem{
		Id:      entry.ID,
		Seq:     entry.Seq,
		Created: now.UnixNano(),
		Message: entry.Message,
	})
	if err != nil {
		return err
	}
	if _, err := l.f.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append session log: %w", err)
	}
	l.seen[entry.ID] = struct{}{}

	return l.touchLocked(func(m *meta) { m.UpdatedAt = now })
}

func (l *sessionLog) touch(fn func(m *meta)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.touchLocked(fn)
}

func (l *sessionLog) touchLocked(fn func(m *meta)) error {
	m, err := readMeta(l.metaPath())
	if err != nil {
		return err
	}
	fn(&m)
	return writeMeta(l.metaPath(), m)
}

func readMeta(path string) (meta, error) {
	var m meta
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, store.ErrNotFound
		}
		return m, err
	}
	if err := yaml.Unmarshal(data, &m); err != nil {
		return m, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return m, nil
}

func writeMeta(path string, m meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readLogItems reads every decodable line of the log, skipping broken ones.
func readLogItems(path string) ([]logItem, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open session log: %w", err)
	}
	defer f.Close()

	items := make([]logItem, 0, 128)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var item logItem
		if err := json.Unmarshal(line, &item); err != nil {
			continue
		}
		items = append(items, item)
	}

	return items, scanner.Err()
}
