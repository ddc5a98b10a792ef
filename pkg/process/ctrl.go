package process

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	exitTimeout = 5 * time.Second
)

type CmdCtxKey string

const (
	RootWgKey CmdCtxKey = "__root_wg_key__"
)

func GetRootWaitGroup(ctx context.Context) *sync.WaitGroup {
	v := ctx.Value(RootWgKey)
	if wg, ok := v.(*sync.WaitGroup); ok {
		return wg
	}

	return nil
}

// GetRootContext returns the context of the whole process. It is cancelled by
// the returned cancel func or by SIGINT/SIGTERM. The wait func blocks until
// every goroutine tracked by the root wait group is done, at most exitTimeout.
func GetRootContext() (context.Context, context.CancelFunc, func()) {
	rootWg := &sync.WaitGroup{}
	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCtx = context.WithValue(rootCtx, RootWgKey, rootWg)

	waitFn := func() {
		waitDone := make(chan struct{})
		go func() {
			rootWg.Wait()
			close(waitDone)
		}()

		select {
		case <-time.After(exitTimeout):
		case <-waitDone:
		}
	}

	return rootCtx, stop, waitFn
}
