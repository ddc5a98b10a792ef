package styles

import "github.com/charmbracelet/lipgloss"

// Color definitions
var (
	ColorUserPrimary       = lipgloss.Color("#937dd8")
	ColorAssistantPrimary  = lipgloss.Color("#0f8b56")
	ColorAssistantThinking = lipgloss.Color("#5e5e5e") // neutral gray
	ColorToolCall          = lipgloss.Color("#6b7b8c") // blue-gray
	ColorToolCallArgs      = lipgloss.Color("#5e6e7e")
	ColorMuted             = lipgloss.Color("#808080")
	ColorConfirmDanger     = lipgloss.Color("#ff6b6b")
	ColorSpinner           = lipgloss.Color("#2ECC71")
)
