package ui

import "github.com/charmbracelet/lipgloss"

var (
	normalFg  = lipgloss.AdaptiveColor{Light: "235", Dark: "252"}
	subtleFg  = lipgloss.AdaptiveColor{Light: "#9B9B9B", Dark: "#5C5C5C"}
	accentFg  = lipgloss.Color("#04B575")
	warningFg = lipgloss.Color("#FF5F87")
	pausedFg  = lipgloss.Color("#FFD700")

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#5A56E0")).
			Padding(0, 1)

	subtleStyle = lipgloss.NewStyle().Foreground(subtleFg)
	normalStyle = lipgloss.NewStyle().Foreground(normalFg)

	buttonStyle = lipgloss.NewStyle().
			Foreground(normalFg).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(subtleFg).
			Padding(0, 1)

	activeButtonStyle = buttonStyle.
				BorderForeground(accentFg).
				Foreground(accentFg).
				Bold(true)

	disabledButtonStyle = buttonStyle.
				Foreground(subtleFg)

	recordingStyle = lipgloss.NewStyle().Foreground(warningFg).Bold(true)
	pausedStyle    = lipgloss.NewStyle().Foreground(pausedFg)

	alertStyle = lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(warningFg).
			Padding(0, 1)

	alertTitleStyle = lipgloss.NewStyle().Foreground(warningFg).Bold(true)

	transcriptStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false).
			BorderForeground(subtleFg).
			Foreground(normalFg)
)
