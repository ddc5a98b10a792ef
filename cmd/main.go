package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ryanreadbooks/codemaster/cmd/chat"
	"github.com/ryanreadbooks/codemaster/cmd/onboard"
	"github.com/ryanreadbooks/codemaster/cmd/replay"
	"github.com/ryanreadbooks/codemaster/cmd/schema"
	"github.com/ryanreadbooks/codemaster/cmd/sessions"
	"github.com/ryanreadbooks/codemaster/config"
	"github.com/ryanreadbooks/codemaster/pkg/process"
)

var logCloser io.Closer

var rootCmd = &cobra.Command{
	Use:           "codemaster",
	Short:         "Terminal client for a coding agent.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == onboard.OnboardCmd || cmd == schema.SchemaCmd {
			return nil
		}

		cfg, err := config.GetConfig()
		if err != nil {
			return err
		}
		logCloser, err = config.SetupLogger(cfg)
		return err
	},
}

func init() {
	rootCmd.AddCommand(chat.ChatCmd)
	rootCmd.AddCommand(sessions.SessionsCmd)
	rootCmd.AddCommand(replay.ReplayCmd)
	rootCmd.AddCommand(schema.SchemaCmd)
	rootCmd.AddCommand(onboard.OnboardCmd)
}

func main() {
	ctx, cancel, wait := process.GetRootContext()
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	wait()
	if logCloser != nil {
		logCloser.Close()
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
