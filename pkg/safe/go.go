package safe

import (
	"context"
	"log/slog"
	"runtime/debug"

	"github.com/ryanreadbooks/codemaster/pkg/process"
)

// Go runs f in a new goroutine and logs instead of crashing on panic.
func Go(name string, f func()) {
	go run(name, f)
}

// GoCtx is Go, but the goroutine is tracked by the root wait group of ctx so
// the process waits for it on exit.
func GoCtx(ctx context.Context, name string, f func()) {
	wg := process.GetRootWaitGroup(ctx)
	if wg == nil {
		Go(name, f)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		run(name, f)
	}()
}

func run(name string, f func()) {
	defer func() {
		if err := recover(); err != nil {
			slog.Error("[safe] go panic", "goroutine", name, "error", err, "stack", string(debug.Stack()))
		}
	}()

	f()
}
