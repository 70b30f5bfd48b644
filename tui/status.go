package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ahale/housebound/engine"
	"github.com/ahale/housebound/types"
)

// roomDisplayName turns a room id like "master_bedroom" into "Master Bedroom".
func roomDisplayName(id string) string {
	parts := strings.Split(id, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// renderStatusBar draws the bottom bar: room and horror on the left,
// difficulty and the opponent's state on the right.
func renderStatusBar(s *engine.Session, width int) string {
	player, _ := s.AgentState(s.PlayerID())
	horror := s.HorrorLevel()

	left := fmt.Sprintf(" %s  ", roomDisplayName(player.Room))
	gauge := fmt.Sprintf("Horror %.1f/10", horror)
	if horror >= 7 {
		gauge = styleHorrorHigh.Render(gauge)
	}
	left += gauge

	right := fmt.Sprintf("Difficulty %.2f  %s: %s ",
		s.DifficultyLevel(), s.OpponentID(), s.PlannerPhase(s.OpponentID()))

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}
	return styleStatusBar.Render(left + strings.Repeat(" ", pad) + right)
}

// renderGoalBar draws the player's visible goals in one line.
func renderGoalBar(s *engine.Session, width int) string {
	goals := s.GoalsForCharacter(s.PlayerID())
	var parts []string
	for _, g := range goals {
		switch g.Status {
		case types.GoalCompleted:
			parts = append(parts, "[x] "+g.Description)
		case types.GoalFailed:
			parts = append(parts, "[!] "+g.Description)
		case types.GoalActive:
			parts = append(parts, "[ ] "+g.Description)
		}
	}
	if len(parts) == 0 {
		return styleGoalBar.Render(" No goals yet.")
	}
	line := " " + strings.Join(parts, "   ")
	if lipgloss.Width(line) > width && width > 4 {
		line = line[:width-3] + "..."
	}
	return styleGoalBar.Render(line)
}
