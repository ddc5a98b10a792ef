// Package transcript renders bash tool activity from the agent event stream
// as framed blocks in a bounded scroll-back buffer.
package transcript

import (
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/ryanreadbooks/codemaster/chat/event"
)

const (
	BashTool              = "bash"
	DefaultMaxResultLines = 50
)

type Phase int

const (
	Idle Phase = iota
	AwaitingResult
)

func (p Phase) String() string {
	if p == AwaitingResult {
		return "awaiting-result"
	}
	return "idle"
}

type Option func(f *Formatter)

// WithWriter mirrors every rendered block to w.
func WithWriter(w io.Writer) Option {
	return func(f *Formatter) { f.out = w }
}

func WithMaxResultLines(n int) Option {
	return func(f *Formatter) {
		if n > 0 {
			f.maxLines = n
		}
	}
}

func WithScrollback(sb *Scrollback) Option {
	return func(f *Formatter) { f.scroll = sb }
}

func WithTheme(th Theme) Option {
	return func(f *Formatter) { f.theme = th }
}

// Formatter consumes agent events and keeps a transcript of bash commands and
// their output. Other tools are ignored.
type Formatter struct {
	mu       sync.Mutex
	phase    Phase
	maxLines int
	scroll   *Scrollback
	out      io.Writer
	theme    Theme

	onUpdate func()
}

func New(opts ...Option) *Formatter {
	f := &Formatter{
		maxLines: DefaultMaxResultLines,
		theme:    DefaultTheme(),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.scroll == nil {
		f.scroll = NewScrollback(DefaultScrollback)
	}
	return f
}

// OnUpdate registers fn to be called after a block was written.
func (f *Formatter) OnUpdate(fn func()) {
	f.mu.Lock()
	f.onUpdate = fn
	f.mu.Unlock()
}

func (f *Formatter) Phase() Phase {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.phase
}

func (f *Formatter) Scrollback() *Scrollback {
	return f.scroll
}

// HandleEvent is the bus subscriber entry point.
func (f *Formatter) HandleEvent(d event.Delivery) {
	b, ok := f.Format(d.Event)
	if !ok {
		return
	}
	f.emit(b)
}

// Format advances the state machine with e and returns the block to show, if any.
func (f *Formatter) Format(e event.Event) (Block, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch e := e.(type) {
	case *event.ToolCallEvent:
		if e.Name != BashTool {
			return Block{}, false
		}
		b, err := commandBlock(e.Args)
		if err != nil {
			slog.Debug("[transcript] skip bash call with unreadable args", "id", e.ID, "error", err)
			return Block{}, false
		}
		f.phase = AwaitingResult
		return b, true

	case *event.ToolResultEvent:
		if e.Name != BashTool {
			return Block{}, false
		}
		f.phase = Idle
		return resultBlock(e.Result, f.maxLines), true
	}

	return Block{}, false
}

func (f *Formatter) emit(b Block) {
	rendered := f.theme.Render(b)
	f.scroll.Append(strings.Split(rendered, "\n")...)

	f.mu.Lock()
	out, hook := f.out, f.onUpdate
	f.mu.Unlock()

	if out != nil {
		if _, err := io.WriteString(out, rendered+"\n"); err != nil {
			slog.Warn("[transcript] failed to write block", "error", err)
		}
	}
	if hook != nil {
		hook()
	}
}
