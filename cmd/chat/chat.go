package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	chmodel "github.com/ryanreadbooks/codemaster/channel/model"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui"
	"github.com/ryanreadbooks/codemaster/config"
	"github.com/ryanreadbooks/codemaster/pkg/bash"
	"github.com/ryanreadbooks/codemaster/pkg/safe"
)

var (
	resumeSessionID string
	execCommand     string
	agentURL        string
)

var ChatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the coding agent in a terminal UI.",
	Long:  "Chat with the coding agent in a terminal UI. Sessions are saved and can be resumed.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd.Context())
	},
}

func init() {
	ChatCmd.Flags().StringVar(&resumeSessionID, "session", "", "To resume an existing session, provide the session id.")
	ChatCmd.Flags().StringVar(&execCommand, "exec", "", "Run the agent host as a subprocess speaking JSON lines, e.g. --exec 'agent-host --stdio'.")
	ChatCmd.Flags().StringVar(&agentURL, "url", "", "WebSocket URL of the agent host; overrides the config.")
}

// applyFlags overlays the command line on cfg.
func applyFlags(cfg config.Config) (config.Config, error) {
	if agentURL != "" && execCommand != "" {
		return cfg, fmt.Errorf("--url and --exec are mutually exclusive")
	}

	if agentURL != "" {
		cfg.Transport.Kind = chmodel.WS
		cfg.Transport.URL = agentURL
	}
	if execCommand != "" {
		argv, err := bash.Split(execCommand)
		if err != nil {
			return cfg, fmt.Errorf("invalid --exec command: %w", err)
		}
		cfg.Transport.Kind = chmodel.Exec
		cfg.Transport.Command = argv
	}

	return cfg, cfg.Validate()
}

func runChat(ctx context.Context) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg, err = applyFlags(cfg); err != nil {
		return err
	}

	c, err := prepareClient(ctx, cfg)
	if err != nil {
		return err
	}
	defer c.close()

	if resumeSessionID != "" {
		if err := c.ctrl.SwitchSession(ctx, resumeSessionID); err != nil {
			return err
		}
	}

	safe.GoCtx(ctx, "transport", func() {
		err := c.transport.Run(ctx)
		if err != nil {
			slog.Error("[chat] transport stopped", "transport", c.transport.Type(), "error", err)
		}
		c.bridge.TransportDone(err)
	})

	err = tui.Run(ctx, tui.Deps{
		Controller: c.ctrl,
		Scrollback: c.formatter.Scrollback(),
		Transport:  c.transport.Type().String(),
		Refresh:    cfg.UI.SessionRefresh,
		Bridge:     c.bridge,
	})
	if err != nil {
		return err
	}

	if id := c.ctrl.Snapshot().SessionID; id != "" {
		fmt.Printf("\nBye, use --session %s to resume conversation\n", id)
	}
	return nil
}
