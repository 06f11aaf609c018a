package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/systrayctl/systrayctl/internal/models"
)

// Adaptive colors matching the TUI palette.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Semantic styles for CLI output.
var (
	styleBrand   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleVersion = lipgloss.NewStyle().Foreground(colorGreen)
	styleLabel   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleError   = lipgloss.NewStyle().Bold(true).Foreground(colorRed)
	styleHint    = lipgloss.NewStyle().Foreground(colorDim)
	styleHeader  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
)

// Service status badge styles.
var (
	badgeActive   = lipgloss.NewStyle().Foreground(colorGreen)
	badgeInactive = lipgloss.NewStyle().Foreground(colorDim)
	badgeUnknown  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

func statusBadge(s models.Status) lipgloss.Style {
	switch s {
	case models.StatusActive:
		return badgeActive
	case models.StatusInactive:
		return badgeInactive
	default:
		return badgeUnknown
	}
}
