package factory

import (
	"context"
	"fmt"

	"github.com/ryanreadbooks/codemaster/store"
	"github.com/ryanreadbooks/codemaster/store/jsonl"
	"github.com/ryanreadbooks/codemaster/store/memory"
	"github.com/ryanreadbooks/codemaster/store/sqlite"
)

type Driver string

const (
	DriverSQLite Driver = "sqlite"
	DriverJSONL  Driver = "jsonl"
	DriverMemory Driver = "memory"
)

type option struct {
	driver Driver
	path   string
}

func (o *option) apply(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

type Option func(*option)

func WithDriver(driver string) Option {
	return func(o *option) {
		o.driver = Driver(driver)
	}
}

// WithPath sets the database file for sqlite or the root dir for jsonl.
func WithPath(path string) Option {
	return func(o *option) {
		o.path = path
	}
}

func NewStore(ctx context.Context, opts ...Option) (store.Store, error) {
	o := option{driver: DriverMemory}
	o.apply(opts...)

	switch o.driver {
	case DriverMemory:
		return memory.New(), nil
	case DriverSQLite:
		if o.path == "" {
			return nil, fmt.Errorf("sqlite store requires a path")
		}
		return sqlite.Open(ctx, o.path)
	case DriverJSONL:
		if o.path == "" {
			return nil, fmt.Errorf("jsonl store requires a path")
		}
		return jsonl.Open(o.path)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", o.driver)
	}
}
