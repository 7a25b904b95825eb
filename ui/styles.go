package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	colorViolet  = lipgloss.Color("#9C43FE")
	colorCyan    = lipgloss.Color("#4CC2E9")
	colorRed     = lipgloss.Color("#FF5555")
	colorGreen   = lipgloss.Color("#50FA7B")
	colorYellow  = lipgloss.Color("#F1FA8C")
	colorGray    = lipgloss.Color("#666666")
	colorDimGray = lipgloss.Color("#444444")
	colorWhite   = lipgloss.Color("#F8F8F2")
)

// Base styles reused by UI components.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorViolet)

	userLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	assistantLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorViolet)

	noticeStyle = lipgloss.NewStyle().
			Foreground(colorYellow)

	errorStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	errorTextStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	onlineStyle = lipgloss.NewStyle().
			Foreground(colorGreen).
			Bold(true)

	offlineStyle = lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true)

	streamingStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	searchTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorWhite)

	searchURLStyle = lipgloss.NewStyle().
			Foreground(colorCyan).
			Underline(true)

	footerKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow).
			Bold(true)

	footerDescStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	dividerStyle = lipgloss.NewStyle().
			Foreground(colorDimGray)

	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)
)
