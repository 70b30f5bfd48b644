package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleGoalBar = lipgloss.NewStyle().
			Foreground(lipgloss.Color("109"))

	styleDialogue = lipgloss.NewStyle().
			Foreground(lipgloss.Color("228"))

	styleSpeaker = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	styleAtmosphere = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("135"))

	styleEvent = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	styleCommand = lipgloss.NewStyle().
			Foreground(lipgloss.Color("34"))

	styleHorrorHigh = lipgloss.NewStyle().
			Background(lipgloss.Color("52")).
			Foreground(lipgloss.Color("224")).
			Bold(true)
)
