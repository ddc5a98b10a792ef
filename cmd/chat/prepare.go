package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ryanreadbooks/codemaster/channel"
	chfactory "github.com/ryanreadbooks/codemaster/channel/factory"
	"github.com/ryanreadbooks/codemaster/chat/controller"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui"
	"github.com/ryanreadbooks/codemaster/config"
	"github.com/ryanreadbooks/codemaster/persist"
	"github.com/ryanreadbooks/codemaster/store"
	stfactory "github.com/ryanreadbooks/codemaster/store/factory"
	"github.com/ryanreadbooks/codemaster/transcript"
)

// client is everything one chat window runs on.
type client struct {
	cfg        config.Config
	store      store.Store
	dispatcher *persist.Dispatcher
	bus        *channel.Bus
	transport  channel.Transport
	ctrl       *controller.Controller
	formatter  *transcript.Formatter
	bridge     *tui.Bridge
}

func prepareClient(ctx context.Context, cfg config.Config) (c *client, err error) {
	c = &client{cfg: cfg, bridge: tui.NewBridge()}
	defer func() {
		if err != nil {
			c.close()
			c = nil
		}
	}()

	c.store, err = stfactory.NewStore(ctx,
		stfactory.WithDriver(cfg.Store.Driver),
		stfactory.WithPath(cfg.StorePath()),
	)
	if err != nil {
		err = fmt.Errorf("failed to open store: %w", err)
		return
	}

	c.dispatcher, err = persist.New(c.store, persist.Config{
		PoolSize:  cfg.Persist.PoolSize,
		Timeout:   cfg.Persist.Timeout,
		OnFailure: c.bridge.PersistFailed,
		OnRefresh: c.bridge.SessionsChanged,
	})
	if err != nil {
		return
	}

	c.bus = channel.NewBus()
	c.transport, err = chfactory.NewTransport(ctx, c.bus,
		chfactory.WithKind(cfg.Transport.Kind),
		chfactory.WithURL(cfg.Transport.URL),
		chfactory.WithCommand(cfg.Transport.Command),
	)
	if err != nil {
		err = fmt.Errorf("failed to connect to agent: %w", err)
		return
	}

	c.ctrl = controller.New(c.transport, c.dispatcher, c.store,
		controller.WithNotifier(c.bridge.StateChanged),
	)
	c.formatter = transcript.New(
		transcript.WithMaxResultLines(cfg.Transcript.MaxResultLines),
		transcript.WithScrollback(transcript.NewScrollback(cfg.Transcript.Scrollback)),
	)
	c.formatter.OnUpdate(c.bridge.TranscriptChanged)

	c.bus.Subscribe(c.ctrl.HandleEvent)
	c.bus.Subscribe(c.formatter.HandleEvent)

	return c, nil
}

// close shuts down in dependency order: no more events, then drain pending
// writes, then the store.
func (c *client) close() {
	if c.transport != nil {
		if err := c.transport.Close(); err != nil {
			slog.Warn("[chat] failed to close transport", "error", err)
		}
	}
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(c.cfg.Persist.Timeout); err != nil {
			slog.Warn("[chat] pending messages were not saved", "error", err)
		}
	}
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			slog.Warn("[chat] failed to close store", "error", err)
		}
	}
}
