package stdio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/ryanreadbooks/codemaster/channel"
	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
)

// Process is an agent host running as a child process, talking JSON lines
// over its stdin and stdout.
type Process struct {
	*Pipe
	cmd *exec.Cmd
}

var _ channel.Transport = (*Process)(nil)

func Start(ctx context.Context, argv []string, bus *channel.Bus) (*Process, error) {
	if len(argv) == 0 {
		return nil, errors.New("agent host command is empty")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open host stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start agent host: %w", err)
	}
	slog.Info("[stdio] agent host started", "cmd", argv[0], "pid", cmd.Process.Pid)

	return &Process{
		Pipe: NewPipe(chmodel.Exec, stdout, stdin, bus),
		cmd:  cmd,
	}, nil
}

// Run reads until the host closes stdout, then reaps it.
func (p *Process) Run(ctx context.Context) error {
	readErr := p.Pipe.Run(ctx)
	waitErr := p.cmd.Wait()
	if waitErr != nil && ctx.Err() == nil {
		slog.Warn("[stdio] agent host exited", "error", waitErr)
	}
	return readErr
}

func (p *Process) Close() error {
	// closing stdin asks a well-behaved host to exit
	if c, ok := p.out.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
