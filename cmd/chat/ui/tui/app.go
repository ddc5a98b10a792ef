package tui

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
)

// Run starts the TUI application and blocks until the user quits or ctx is done.
func Run(ctx context.Context, deps Deps) error {
	model := New(ctx, deps)

	program := tea.NewProgram(&model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	deps.Bridge.Attach(program)
	defer deps.Bridge.Attach(nil)

	if deps.Refresh != "" {
		c := cron.New()
		if _, err := c.AddFunc(deps.Refresh, deps.Bridge.SessionsChanged); err != nil {
			return fmt.Errorf("invalid session refresh schedule %q: %w", deps.Refresh, err)
		}
		c.Start()
		defer c.Stop()
	}

	slog.Info("[tui] starting", "transport", deps.Transport)
	if _, err := program.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
