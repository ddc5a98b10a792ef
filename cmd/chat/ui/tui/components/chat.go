package components

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/ryanreadbooks/codemaster/chat/model"
	"github.com/ryanreadbooks/codemaster/chat/state"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/tui/styles"
	"github.com/ryanreadbooks/codemaster/cmd/chat/ui/types"
)

// ChatComponent shows the conversation and the streaming buffer
type ChatComponent struct {
	viewport viewport.Model
	spinner  spinner.Model
	theme    *styles.Theme
	state    state.State

	markdown      *glamour.TermRenderer
	markdownWidth int
	rendered      map[string]string
}

// NewChatComponent creates a new chat component
func NewChatComponent(theme *styles.Theme) *ChatComponent {
	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true
	vp.KeyMap = viewport.DefaultKeyMap()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sp.Style.Foreground(styles.ColorSpinner)

	return &ChatComponent{
		viewport: vp,
		spinner:  sp,
		theme:    theme,
		rendered: make(map[string]string),
	}
}

func (c *ChatComponent) Init() tea.Cmd {
	return c.spinner.Tick
}

func (c *ChatComponent) Update(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	var vpCmd tea.Cmd
	c.viewport, vpCmd = c.viewport.Update(msg)
	cmds = append(cmds, vpCmd)

	if _, ok := msg.(spinner.TickMsg); ok {
		var spCmd tea.Cmd
		c.spinner, spCmd = c.spinner.Update(msg)
		cmds = append(cmds, spCmd)
		if c.state.Loading {
			c.refresh()
		}
	}

	return tea.Batch(cmds...)
}

func (c *ChatComponent) View() string {
	return c.viewport.View()
}

// SetState replaces what is shown with s.
func (c *ChatComponent) SetState(s state.State) {
	c.state = s
	c.refresh()
}

func (c *ChatComponent) SetSize(width, height int) {
	c.viewport.Width = width
	c.viewport.Height = height
	c.refresh()
}

func (c *ChatComponent) refresh() {
	c.viewport.SetContent(lipgloss.NewStyle().Width(c.viewport.Width).Render(c.renderMessages()))
	c.viewport.GotoBottom()
}

func (c *ChatComponent) boxWidth() int {
	return max(c.viewport.Width-4, 20)
}

func (c *ChatComponent) renderMessages() string {
	var sb strings.Builder
	for _, msg := range c.state.Messages {
		switch msg.Role {
		case model.RoleUser:
			sb.WriteString(c.renderUserMessage(msg.Content))
		case model.RoleAssistant:
			if msg.Content != "" {
				sb.WriteString(c.renderAssistantMessage(msg.Content))
			}
			for _, tc := range msg.ToolCalls {
				sb.WriteString(c.renderToolCall(tc))
			}
		case model.RoleTool:
			sb.WriteString(c.renderToolResult(msg))
		}
	}

	if c.state.StreamingContent != "" || c.state.Loading {
		sb.WriteString(c.renderStreaming())
	}

	return sb.String()
}

func (c *ChatComponent) renderUserMessage(content string) string {
	header := c.theme.User.HeaderStyle.Render("You:")
	body := c.theme.User.BodyStyle.Render(content)
	return c.theme.User.BoxStyle.Width(c.boxWidth()).Render(header+"\n"+body) + "\n"
}

func (c *ChatComponent) renderAssistantMessage(content string) string {
	header := c.theme.Assistant.HeaderStyle.Render("Assistant:")
	body := c.renderMarkdown(content)
	return c.theme.Assistant.BoxStyle.Width(c.boxWidth()).Render(header+"\n"+body) + "\n"
}

func (c *ChatComponent) renderToolCall(tc model.ToolCall) string {
	header := c.theme.Tool.HeaderStyle.Render("🔧 Tool: " + tc.Function.Name)
	body := c.theme.Tool.BodyStyle.Render(types.FormatToolCallArgs(tc.Function.Name, tc.Function.Arguments, 100))
	return header + "\n" + body + "\n"
}

func (c *ChatComponent) renderToolResult(msg model.Message) string {
	lines := strings.Split(strings.TrimRight(msg.Content, "\n"), "\n")
	summary := lines[0]
	if len(lines) > 1 {
		summary += c.theme.Tool.BodyStyle.Render(" (+" + strconv.Itoa(len(lines)-1) + " lines)")
	}
	return c.theme.Tool.BodyStyle.Render("↳ "+msg.Name+": ") + summary + "\n\n"
}

func (c *ChatComponent) renderStreaming() string {
	header := c.theme.Streaming.HeaderStyle.Render(c.spinner.View() + " Assistant")
	if !c.state.Loading {
		header = c.theme.Streaming.HeaderStyle.Render("Assistant")
	}
	return header + "\n" + c.theme.Streaming.BodyStyle.Render(c.state.StreamingContent) + "\n"
}

// renderMarkdown renders content with glamour, falling back to plain text.
func (c *ChatComponent) renderMarkdown(content string) string {
	width := c.boxWidth() - 4
	if c.markdown == nil || c.markdownWidth != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			slog.Warn("[tui] markdown renderer unavailable", "error", err)
			return content
		}
		c.markdown, c.markdownWidth = r, width
		clear(c.rendered)
	}

	if out, ok := c.rendered[content]; ok {
		return out
	}
	out, err := c.markdown.Render(content)
	if err != nil {
		return content
	}
	out = strings.Trim(out, "\n")
	c.rendered[content] = out
	return out
}
