// Package persist executes the side effects produced by the reconciler.
package persist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/ryanreadbooks/codemaster/chat/reconcile"
	"github.com/ryanreadbooks/codemaster/pkg/safe"
	"github.com/ryanreadbooks/codemaster/store"
)

const (
	defaultPoolSize = 16
	defaultTimeout  = 10 * time.Second
)

var ErrClosed = errors.New("persist dispatcher is closed")

type Config struct {
	PoolSize int
	Timeout  time.Duration

	// OnFailure is called from a pool worker after a write failed.
	OnFailure func(effect reconcile.PersistMessage, err error)
	// OnRefresh is called synchronously for every RefreshSessions effect.
	OnRefresh func()
}

// Dispatcher writes messages in the background. Every write is attempted once;
// failures are logged and never returned to the caller.
//
// Writes wait in an unbounded queue that a single feeder hands to the pool, so
// a saturated pool slows the feeder down and never the caller of Apply.
type Dispatcher struct {
	store store.Store
	pool  *ants.Pool
	cfg   Config

	mu     sync.Mutex
	queue  []reconcile.PersistMessage
	closed bool
	wake   chan struct{}

	// inflight counts writes from enqueue until they finish.
	inflight sync.WaitGroup
}

func New(s store.Store, c Config) (*Dispatcher, error) {
	if c.PoolSize <= 0 {
		c.PoolSize = defaultPoolSize
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}

	pool, err := ants.NewPool(c.PoolSize, ants.WithPanicHandler(func(p any) {
		slog.Error("[persist] worker panic", "error", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to create persist pool: %w", err)
	}

	d := &Dispatcher{
		store: s,
		pool:  pool,
		cfg:   c,
		wake:  make(chan struct{}, 1),
	}
	safe.Go("persist-feeder", d.feed)
	return d, nil
}

// Apply executes effects in order. It never blocks on storage.
func (d *Dispatcher) Apply(effects ...reconcile.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case reconcile.PersistMessage:
			d.submit(e)
		case reconcile.RefreshSessions:
			if d.cfg.OnRefresh != nil {
				d.cfg.OnRefresh()
			}
		default:
			slog.Warn("[persist] unknown effect", "effect", fmt.Sprintf("%T", e))
		}
	}
}

func (d *Dispatcher) submit(e reconcile.PersistMessage) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.fail(e, ErrClosed)
		return
	}
	d.inflight.Add(1)
	d.queue = append(d.queue, e)
	d.mu.Unlock()

	d.signal()
}

func (d *Dispatcher) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// feed moves queued writes into the pool until the dispatcher is closed and
// the queue is drained. pool.Submit blocks while every worker is busy.
func (d *Dispatcher) feed() {
	for {
		d.mu.Lock()
		batch, closed := d.queue, d.closed
		d.queue = nil
		d.mu.Unlock()

		for _, e := range batch {
			err := d.pool.Submit(func() {
				defer d.inflight.Done()
				d.write(e)
			})
			if err != nil {
				d.inflight.Done()
				d.fail(e, fmt.Errorf("failed to submit persist task: %w", err))
			}
		}

		if len(batch) > 0 {
			continue
		}
		if closed {
			return
		}
		<-d.wake
	}
}

func (d *Dispatcher) write(e reconcile.PersistMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), d.cfg.Timeout)
	defer cancel()

	if err := d.store.PersistMessage(ctx, e.SessionID, e.Entry); err != nil {
		d.fail(e, err)
		return
	}

	slog.Debug("[persist] message saved",
		"session", e.SessionID, "id", e.Entry.ID, "seq", e.Entry.Seq, "role", e.Entry.Message.Role)
}

func (d *Dispatcher) fail(e reconcile.PersistMessage, err error) {
	slog.Error("[persist] failed to save message",
		"session", e.SessionID, "id", e.Entry.ID, "error", err)
	if d.cfg.OnFailure != nil {
		d.cfg.OnFailure(e, err)
	}
}

// CreateSession goes straight to the store; the caller needs the new id.
func (d *Dispatcher) CreateSession(ctx context.Context, title string) (store.Session, error) {
	return d.store.CreateSession(ctx, title)
}

// Wait blocks until every queued write has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}

// Close stops accepting writes, waits up to timeout for pending ones and
// releases the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.signal()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		slog.Warn("[persist] close timed out with writes pending")
	}

	return d.pool.ReleaseTimeout(timeout)
}
