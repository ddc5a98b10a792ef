package factory

import (
	"context"
	"fmt"

	"github.com/ryanreadbooks/codemaster/channel"
	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
	"github.com/ryanreadbooks/codemaster/channel/stdio"
	"github.com/ryanreadbooks/codemaster/channel/ws"
)

type option struct {
	kind    chmodel.Type
	url     string
	command []string
}

func (o *option) apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

type Option func(*option)

func WithKind(kind chmodel.Type) Option {
	return func(o *option) {
		o.kind = kind
	}
}

func WithURL(url string) Option {
	return func(o *option) {
		o.url = url
	}
}

func WithCommand(argv []string) Option {
	return func(o *option) {
		o.command = argv
	}
}

// NewTransport connects to the agent host. Events it receives go to bus once
// the transport's Run is started.
func NewTransport(ctx context.Context, bus *channel.Bus, opts ...Option) (channel.Transport, error) {
	o := option{kind: chmodel.WS}
	o.apply(opts...)

	switch o.kind {
	case chmodel.WS:
		return ws.Dial(ctx, o.url, nil, bus)
	case chmodel.Exec:
		return stdio.Start(ctx, o.command, bus)
	default:
		return nil, fmt.Errorf("unsupported transport: %s", o.kind)
	}
}
