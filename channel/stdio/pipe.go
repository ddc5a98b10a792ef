// Package stdio exchanges JSON lines with an agent host over a reader/writer
// pair: events come in one per line, user turns go out one per line.
package stdio

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ryanreadbooks/codemaster/channel"
	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/pkg/xstring"
)

const maxLineSize = 16 * 1024 * 1024

var ErrReadOnly = errors.New("transport does not accept user turns")

type Pipe struct {
	typ chmodel.Type
	in  io.Reader
	bus *channel.Bus

	writeMu sync.Mutex
	out     io.Writer

	dropped atomic.Int64
}

var _ channel.Transport = (*Pipe)(nil)

// NewPipe reads events from in. out may be nil for a read-only pipe.
func NewPipe(typ chmodel.Type, in io.Reader, out io.Writer, bus *channel.Bus) *Pipe {
	return &Pipe{typ: typ, in: in, out: out, bus: bus}
}

func (p *Pipe) Type() chmodel.Type {
	return p.typ
}

// Run publishes every line of the input until EOF or ctx is done.
// Cancellation is checked between lines.
func (p *Pipe) Run(ctx context.Context) error {
	scanner := bufio.NewScanner(p.in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}
		lineNo++

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if _, err := p.bus.PublishFrame(line); err != nil {
			p.dropped.Add(1)
			slog.Warn("[stdio] drop line", "transport", p.typ, "line", lineNo,
				"error", err, "content", xstring.FromBytes(line))
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read events: %w", err)
	}
	return nil
}

// Dropped reports how many lines Run rejected so far.
func (p *Pipe) Dropped() int {
	return int(p.dropped.Load())
}

func (p *Pipe) DispatchUserTurn(_ context.Context, text string, history []model.Message) error {
	if p.out == nil {
		return ErrReadOnly
	}

	frame, err := channel.EncodeUserTurn(text, history)
	if err != nil {
		return err
	}

	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	if _, err := p.out.Write(append(frame, '\n')); err != nil {
		return fmt.Errorf("failed to send user turn: %w", err)
	}
	return nil
}

func (p *Pipe) Close() error {
	var errs []error
	if c, ok := p.in.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := p.out.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
