package types

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/ryanreadbooks/codemaster/pkg/xstring"
)

// ParseToolCallArgs parses JSON arguments into a map
func ParseToolCallArgs(argsJSON string) (map[string]any, error) {
	if argsJSON == "" {
		return nil, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, err
	}

	return args, nil
}

// FormatToolCallArgs formats tool call arguments for a one-line summary
func FormatToolCallArgs(name string, argsJSON string, maxLen int) string {
	args, err := ParseToolCallArgs(argsJSON)
	if err != nil {
		return xstring.Truncate(argsJSON, maxLen)
	}

	if len(args) == 0 {
		return "(no arguments)"
	}

	switch name {
	case "bash":
		return formatBashArgs(args, maxLen)
	case "read_file", "project_structure":
		return formatPathArgs("📄", args, maxLen)
	case "write_file":
		return formatWriteFileArgs(args)
	case "edit_file":
		return formatEditFileArgs(args)
	case "grep", "glob":
		return formatSearchArgs(args, maxLen)
	default:
		return formatGenericArgs(args, maxLen)
	}
}

func str(args map[string]any, key string) (string, bool) {
	v, ok := args[key].(string)
	return v, ok && v != ""
}

func formatBashArgs(args map[string]any, maxLen int) string {
	cmd, ok := str(args, "command")
	if !ok {
		return formatGenericArgs(args, maxLen)
	}
	out := "$ " + xstring.Truncate(cmd, maxLen)
	if dir, ok := str(args, "workdir"); ok {
		out += "  (in " + shortenPath(dir, 40) + ")"
	}
	return out
}

func formatPathArgs(icon string, args map[string]any, maxLen int) string {
	if path, ok := str(args, "path"); ok {
		return icon + " " + shortenPath(path, maxLen)
	}
	return formatGenericArgs(args, maxLen)
}

func formatWriteFileArgs(args map[string]any) string {
	path, ok := str(args, "path")
	if !ok {
		return formatGenericArgs(args, 100)
	}
	content, _ := args["content"].(string)
	return fmt.Sprintf("📝 %s (%d bytes)", shortenPath(path, 40), len(content))
}

func formatEditFileArgs(args map[string]any) string {
	var parts []string
	if path, ok := str(args, "path"); ok {
		parts = append(parts, "✏️  "+shortenPath(path, 40))
	}
	if old, ok := args["old_string"].(string); ok {
		parts = append(parts, fmt.Sprintf("replace %d chars", len(old)))
	}
	if repl, ok := args["new_string"].(string); ok {
		parts = append(parts, fmt.Sprintf("with %d chars", len(repl)))
	}
	if len(parts) == 0 {
		return formatGenericArgs(args, 100)
	}
	return strings.Join(parts, ", ")
}

func formatSearchArgs(args map[string]any, maxLen int) string {
	pattern, ok := str(args, "pattern")
	if !ok {
		return formatGenericArgs(args, maxLen)
	}
	out := "🔍 " + xstring.Truncate(pattern, maxLen)
	if path, ok := str(args, "path"); ok {
		out += " in " + shortenPath(path, 40)
	}
	return out
}

func formatGenericArgs(args map[string]any, maxLen int) string {
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, xstring.Truncate(fmt.Sprint(args[k]), 30)))
	}
	return xstring.Truncate(strings.Join(parts, ", "), maxLen)
}

func shortenPath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		shortened := ".../" + parts[len(parts)-2] + "/" + parts[len(parts)-1]
		if len(shortened) <= maxLen {
			return shortened
		}
	}

	return xstring.Truncate(path, maxLen)
}
