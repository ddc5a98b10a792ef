package styles

import "github.com/charmbracelet/lipgloss"

// MessageTheme defines styling for a message type
type MessageTheme struct {
	HeaderStyle lipgloss.Style
	BodyStyle   lipgloss.Style
	BoxStyle    lipgloss.Style
}

// SidebarTheme defines styling for the session list
type SidebarTheme struct {
	BoxStyle     lipgloss.Style
	TitleStyle   lipgloss.Style
	ItemStyle    lipgloss.Style
	CurrentStyle lipgloss.Style
}

// ConfirmTheme defines styling for confirmation dialog
type ConfirmTheme struct {
	BoxStyle  lipgloss.Style
	TextStyle lipgloss.Style
}

// Theme contains all UI styling
type Theme struct {
	User       MessageTheme
	Assistant  MessageTheme
	Streaming  MessageTheme
	Tool       MessageTheme
	Transcript lipgloss.Style
	Sidebar    SidebarTheme
	Status     lipgloss.Style
	Error      lipgloss.Style
	Confirm    ConfirmTheme
}

func messageBox(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder(), true, true, true, true).
		BorderForeground(c).
		Padding(0, 1).
		MarginBottom(1)
}

// DefaultTheme returns the default theme
func DefaultTheme() *Theme {
	return &Theme{
		User: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().Foreground(ColorUserPrimary).Bold(true),
			BodyStyle:   lipgloss.NewStyle().Foreground(ColorUserPrimary),
			BoxStyle:    messageBox(ColorUserPrimary),
		},
		Assistant: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().Foreground(ColorAssistantPrimary).Bold(true),
			BodyStyle:   lipgloss.NewStyle(),
			BoxStyle:    messageBox(ColorAssistantPrimary),
		},
		Streaming: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().Foreground(ColorAssistantThinking),
			BodyStyle:   lipgloss.NewStyle().Foreground(ColorAssistantThinking),
		},
		Tool: MessageTheme{
			HeaderStyle: lipgloss.NewStyle().Foreground(ColorToolCall).Italic(true),
			BodyStyle:   lipgloss.NewStyle().Foreground(ColorToolCallArgs),
		},
		Transcript: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(ColorMuted),
		Sidebar: SidebarTheme{
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, true, false, false).
				BorderForeground(ColorMuted).
				PaddingRight(1),
			TitleStyle:   lipgloss.NewStyle().Bold(true).MarginBottom(1),
			ItemStyle:    lipgloss.NewStyle().Foreground(ColorMuted),
			CurrentStyle: lipgloss.NewStyle().Foreground(ColorAssistantPrimary).Bold(true),
		},
		Status: lipgloss.NewStyle().Foreground(ColorMuted),
		Error:  lipgloss.NewStyle().Foreground(ColorConfirmDanger),
		Confirm: ConfirmTheme{
			BoxStyle: lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(ColorConfirmDanger).
				Padding(1, 2),
			TextStyle: lipgloss.NewStyle(),
		},
	}
}
