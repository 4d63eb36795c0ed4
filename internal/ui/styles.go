package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the device display.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
)

// Base styles reused by the display renderer.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	StateBadgeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	PromptLabelStyle = lipgloss.NewStyle().
				Foreground(ColorCyan)

	QualityLabelStyle = lipgloss.NewStyle().
				Foreground(ColorYellow)

	SendingStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	ResponseStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	BriefBadgeStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	VerboseBadgeStyle = lipgloss.NewStyle().
				Foreground(ColorGreen).
				Bold(true)

	PageIndicatorStyle = lipgloss.NewStyle().
				Foreground(ColorGray)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)
)
