package sessions

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/types"
	"github.com/ryanreadbooks/codemaster/config"
	"github.com/ryanreadbooks/codemaster/store"
	stfactory "github.com/ryanreadbooks/codemaster/store/factory"
)

var SessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved chat sessions.",
	Long:  "Manage saved chat sessions.",
}

var (
	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List sessions, most recent first.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(s store.Store) error {
				return runList(cmd.Context(), s, cmd.OutOrStdout())
			})
		},
	}

	renameCmd = &cobra.Command{
		Use:   "rename <id> <title>",
		Short: "Rename a session.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(s store.Store) error {
				return runRename(cmd.Context(), s, args[0], args[1])
			})
		},
	}

	deleteCmd = &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a session and all its messages.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(s store.Store) error {
				return s.DeleteSession(cmd.Context(), args[0])
			})
		},
	}

	showCmd = &cobra.Command{
		Use:   "show <id>",
		Short: "Print the messages of a session.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(s store.Store) error {
				return runShow(cmd.Context(), s, args[0], cmd.OutOrStdout())
			})
		},
	}
)

func init() {
	SessionsCmd.AddCommand(listCmd, renameCmd, deleteCmd, showCmd)
}

func withStore(ctx context.Context, fn func(store.Store) error) error {
	cfg, err := config.GetConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s, err := stfactory.NewStore(ctx,
		stfactory.WithDriver(cfg.Store.Driver),
		stfactory.WithPath(cfg.StorePath()),
	)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer s.Close()

	return fn(s)
}

func runList(ctx context.Context, s store.Store, w io.Writer) error {
	sessions, err := s.ListSessions(ctx)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions yet.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tUPDATED")
	for _, sess := range sessions {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", sess.ID, sess.Title, sess.UpdatedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func runRename(ctx context.Context, s store.Store, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("title cannot be empty")
	}
	return s.RenameSession(ctx, id, title)
}

func runShow(ctx context.Context, s store.Store, id string, w io.Writer) error {
	msgs, err := s.LoadSessionMessages(ctx, id)
	if err != nil {
		return err
	}

	for _, m := range msgs {
		switch m.Role {
		case model.RoleUser:
			fmt.Fprintf(w, "> %s\n\n", m.Content)
		case model.RoleAssistant:
			if m.Content != "" {
				fmt.Fprintf(w, "%s\n\n", m.Content)
			}
			for _, tc := range m.ToolCalls {
				fmt.Fprintf(w, "🔧 %s %s\n", tc.Function.Name, types.FormatToolCallArgs(tc.Function.Name, tc.Function.Arguments, 100))
			}
		case model.RoleTool:
			fmt.Fprintf(w, "↳ %s\n%s\n\n", m.Name, indent(m.Content))
		}
	}
	return nil
}

func indent(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n")
}

