package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorWhite)

	labelStyle = lipgloss.NewStyle().Foreground(colorWhite)
	unitStyle  = lipgloss.NewStyle().Foreground(colorDim)
	dimStyle   = lipgloss.NewStyle().Foreground(colorDim)

	statusActiveStyle   = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	statusInactiveStyle = lipgloss.NewStyle().Foreground(colorDim)
	statusUnknownStyle  = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)

	messageStyle = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
)
