package transcript

import (
	"sync"

	"github.com/charmbracelet/x/ansi"
)

const DefaultScrollback = 1000

// Scrollback is a bounded line buffer. Once full, the oldest line is evicted
// for every new one.
type Scrollback struct {
	mu    sync.Mutex
	lines []string
	start int
	size  int
}

func NewScrollback(capacity int) *Scrollback {
	if capacity <= 0 {
		capacity = DefaultScrollback
	}
	return &Scrollback{lines: make([]string, capacity)}
}

func (b *Scrollback) Append(lines ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	capacity := len(b.lines)
	for _, l := range lines {
		if b.size < capacity {
			b.lines[(b.start+b.size)%capacity] = l
			b.size++
			continue
		}
		b.lines[b.start] = l
		b.start = (b.start + 1) % capacity
	}
}

// Lines returns the buffered lines, oldest first.
func (b *Scrollback) Lines() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]string, b.size)
	for i := range b.size {
		out[i] = b.lines[(b.start+i)%len(b.lines)]
	}
	return out
}

// PlainLines is Lines with escape sequences removed.
func (b *Scrollback) PlainLines() []string {
	lines := b.Lines()
	for i, l := range lines {
		lines[i] = ansi.Strip(l)
	}
	return lines
}

func (b *Scrollback) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

func (b *Scrollback) Cap() int {
	return len(b.lines)
}

func (b *Scrollback) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	clear(b.lines)
	b.start, b.size = 0, 0
}
