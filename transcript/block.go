package transcript

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type BlockKind int

const (
	KindCommand BlockKind = iota
	KindSuccess
	KindFailure
)

func (k BlockKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindSuccess:
		return "success"
	case KindFailure:
		return "failure"
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// Block is one framed section of the transcript.
type Block struct {
	Kind    BlockKind
	Title   string
	Lines   []string
	Omitted int
}

// bashArgs are the arguments of the bash tool.
type bashArgs struct {
	Command string `json:"command"`
	Workdir string `json:"workdir,omitempty"`
}

var errNoCommand = errors.New("bash call without command")

func commandBlock(rawArgs string) (Block, error) {
	var args bashArgs
	if err := json.Unmarshal([]byte(rawArgs), &args); err != nil {
		return Block{}, err
	}
	if args.Command == "" {
		return Block{}, errNoCommand
	}

	b := Block{
		Kind:  KindCommand,
		Title: "bash",
		Lines: []string{"$ " + args.Command},
	}
	if args.Workdir != "" {
		b.Lines = append(b.Lines, "in "+args.Workdir)
	}
	return b, nil
}

// IsFailure classifies a bash result by its text.
func IsFailure(result string) bool {
	return strings.HasPrefix(result, "Exit Code:") || strings.Contains(result, "Error:")
}

func resultBlock(result string, maxLines int) Block {
	b := Block{Kind: KindSuccess, Title: "✓ done"}
	if IsFailure(result) {
		b.Kind, b.Title = KindFailure, "✗ failed"
	}

	trimmed := strings.TrimRight(result, "\r\n")
	if trimmed == "" {
		return b
	}

	lines := strings.Split(trimmed, "\n")
	if len(lines) > maxLines {
		b.Omitted = len(lines) - maxLines
		lines = lines[:maxLines]
	}
	b.Lines = lines
	return b
}

func elision(n int) string {
	return fmt.Sprintf("... %d more lines omitted", n)
}

// Theme holds the styles used to frame blocks.
type Theme struct {
	Command lipgloss.Style
	Success lipgloss.Style
	Failure lipgloss.Style
	Title   lipgloss.Style
	Muted   lipgloss.Style
}

var (
	colorCommand = lipgloss.Color("#6b7b8c")
	colorSuccess = lipgloss.Color("#0f8b56")
	colorFailure = lipgloss.Color("#ff6b6b")
	colorMuted   = lipgloss.Color("#808080")
)

func DefaultTheme() Theme {
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)

	return Theme{
		Command: box.BorderForeground(colorCommand),
		Success: box.BorderForeground(colorSuccess),
		Failure: box.BorderForeground(colorFailure),
		Title:   lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(colorMuted).Italic(true),
	}
}

// Render draws b as a bordered box.
func (th Theme) Render(b Block) string {
	var frame lipgloss.Style
	switch b.Kind {
	case KindFailure:
		frame = th.Failure
	case KindSuccess:
		frame = th.Success
	default:
		frame = th.Command
	}

	body := make([]string, 0, len(b.Lines)+2)
	body = append(body, th.Title.Foreground(frame.GetBorderTopForeground()).Render(b.Title))
	body = append(body, b.Lines...)
	if b.Omitted > 0 {
		body = append(body, th.Muted.Render(elision(b.Omitted)))
	}

	return frame.Render(strings.Join(body, "\n"))
}
