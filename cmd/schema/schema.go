package schema

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ryanreadbooks/codemaster/channel"
	"github.com/ryanreadbooks/codemaster/chat/event"
	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/pkg/schema"
	"github.com/ryanreadbooks/codemaster/store"
)

var SchemaCmd = &cobra.Command{
	Use:   "schema [name]",
	Short: "Print the JSON schema of the payloads exchanged with the agent host.",
	Long: "Print the JSON schema of the payloads exchanged with the agent host. " +
		"Without a name every payload is printed.",
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		return runSchema(cmd.OutOrStdout(), name)
	},
}

// Payloads lists the schemas by the name they travel under.
func Payloads() []schema.Named {
	return []schema.Named{
		{Name: "UserTurn", Schema: schema.Get[channel.UserTurn]()},
		{Name: event.TypeToolCall.String(), Schema: schema.Get[event.ToolCallEvent]()},
		{Name: event.TypeToolResult.String(), Schema: schema.Get[event.ToolResultEvent]()},
		{Name: event.TypeNewMessage.String(), Schema: schema.Get[model.Message]()},
		{Name: "Session", Schema: schema.Get[store.Session]()},
	}
}

func runSchema(w io.Writer, name string) error {
	payloads := Payloads()

	var out any = payloads
	if name != "" {
		out = nil
		for _, p := range payloads {
			if p.Name == name {
				out = p.Schema
				break
			}
		}
		if out == nil {
			return fmt.Errorf("unknown payload %q", name)
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
