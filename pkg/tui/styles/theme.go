package styles

import "github.com/charmbracelet/lipgloss"

// Theme defines the color palette and base styles for the TUI.
type Theme struct {
	Primary lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
	Muted   lipgloss.Color
	Text    lipgloss.Color
	TextDim lipgloss.Color

	Border        lipgloss.Style
	Title         lipgloss.Style
	Header        lipgloss.Style
	StepRunning   lipgloss.Style
	StepDone      lipgloss.Style
	StepStopped   lipgloss.Style
	StepError     lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	ContentDim    lipgloss.Style
	AnswerStyle   lipgloss.Style
	SummaryStyle  lipgloss.Style
	KeybindLegend lipgloss.Style
}

// DefaultTheme returns the default agentline TUI theme.
func DefaultTheme() Theme {
	primary := lipgloss.Color("#7C3AED") // Purple
	success := lipgloss.Color("#22C55E") // Green
	warning := lipgloss.Color("#EAB308") // Yellow
	errorC := lipgloss.Color("#EF4444")  // Red
	muted := lipgloss.Color("#6B7280")   // Gray
	text := lipgloss.Color("#F9FAFB")    // White
	textDim := lipgloss.Color("#9CA3AF") // Light gray

	return Theme{
		Primary: primary,
		Success: success,
		Warning: warning,
		Error:   errorC,
		Muted:   muted,
		Text:    text,
		TextDim: textDim,

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted),
		Title:         lipgloss.NewStyle().Bold(true).Foreground(primary),
		Header:        lipgloss.NewStyle().Bold(true).Foreground(text),
		StepRunning:   lipgloss.NewStyle().Foreground(warning),
		StepDone:      lipgloss.NewStyle().Foreground(success),
		StepStopped:   lipgloss.NewStyle().Foreground(muted),
		StepError:     lipgloss.NewStyle().Foreground(errorC),
		TabActive:     lipgloss.NewStyle().Bold(true).Foreground(primary).Underline(true),
		TabInactive:   lipgloss.NewStyle().Foreground(textDim),
		ContentDim:    lipgloss.NewStyle().Foreground(textDim),
		AnswerStyle:   lipgloss.NewStyle().Foreground(text),
		SummaryStyle:  lipgloss.NewStyle().Foreground(textDim).Italic(true),
		KeybindLegend: lipgloss.NewStyle().Foreground(muted),
	}
}
