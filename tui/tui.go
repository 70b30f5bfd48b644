// Package tui is the terminal frontend: a fixed-timestep loop driving the
// session, with a scrollback feed for dialogue and events, a goal tracker,
// and slash commands for saves and diagnostics.
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ahale/housebound/engine"
	"github.com/ahale/housebound/engine/save"
)

const maxFeedLines = 500

// tickMsg advances the simulation by one fixed step.
type tickMsg time.Time

type lineKind int

const (
	lineDialogue lineKind = iota
	lineSpeaker
	lineAtmosphere
	lineEvent
	lineSystem
	lineError
	lineCommand
)

type feedLine struct {
	kind lineKind
	text string
}

// Options configure the terminal frontend.
type Options struct {
	Session  *engine.Session
	Input    *Input
	TickRate int // simulation steps per second
	SaveDir  string
}

// Model is the bubbletea model wrapping a running session.
type Model struct {
	session  *engine.Session
	input    *Input
	interval time.Duration
	saveDir  string

	viewport viewport.Model
	textin   textinput.Model
	history  *History
	feed     []feedLine

	width      int
	height     int
	ready      bool
	commanding bool
	quitting   bool
}

// NewModel builds the initial model.
func NewModel(opts Options) Model {
	rate := opts.TickRate
	if rate <= 0 {
		rate = 30
	}
	ti := textinput.New()
	ti.Prompt = "/"
	ti.CharLimit = 120

	return Model{
		session:  opts.Session,
		input:    opts.Input,
		interval: time.Second / time.Duration(rate),
		saveDir:  opts.SaveDir,
		textin:   ti,
		history:  NewHistory(50),
	}
}

// Run starts the frontend and blocks until quit.
func Run(opts Options) error {
	p := tea.NewProgram(NewModel(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.tick())
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Feed takes everything above the goal bar, status bar and
		// command line.
		vpHeight := msg.Height - 3
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
			m.appendSystem("Welcome to Flat 13. Arrow keys move, 'e' interacts, '/' for commands.")
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.refreshViewport()
		return m, nil

	case tickMsg:
		if m.quitting {
			return m, nil
		}
		frame := m.session.Step(m.interval.Seconds())
		if len(frame.Events) > 0 {
			m.appendEvents(frame.Events)
			m.refreshViewport()
		}
		return m, m.tick()

	case tea.KeyMsg:
		if m.commanding {
			return m.updateCommand(msg)
		}
		return m.updateGame(msg)
	}

	return m, nil
}

// updateGame handles keys while the simulation has focus.
func (m Model) updateGame(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "up", "w":
		m.input.press(0, 1)
	case "down", "s":
		m.input.press(0, -1)
	case "left", "a":
		m.input.press(-1, 0)
	case "right", "d":
		m.input.press(1, 0)
	case "e", " ":
		m.input.pressInteract()
	case "/":
		m.commanding = true
		m.input.clear()
		m.textin.SetValue("")
		m.textin.Focus()
	case "pgup":
		m.viewport.HalfViewUp()
	case "pgdown":
		m.viewport.HalfViewDown()
	}
	return m, nil
}

// updateCommand handles keys while the slash prompt has focus. The
// simulation keeps ticking underneath.
func (m Model) updateCommand(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commanding = false
		m.textin.Blur()
		return m, nil
	case "enter":
		cmd := strings.TrimSpace(m.textin.Value())
		m.commanding = false
		m.textin.Blur()
		if cmd == "" {
			return m, nil
		}
		m.history.Push(cmd)
		m.history.ResetCursor()
		return m.execute(cmd)
	case "up":
		if prev, ok := m.history.Prev(); ok {
			m.textin.SetValue(prev)
			m.textin.CursorEnd()
		}
		return m, nil
	case "down":
		next, _ := m.history.Next()
		m.textin.SetValue(next)
		m.textin.CursorEnd()
		return m, nil
	}
	var cmd tea.Cmd
	m.textin, cmd = m.textin.Update(msg)
	return m, cmd
}

// execute runs one slash command.
func (m Model) execute(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	name := fields[0]
	arg := "quicksave"
	if len(fields) > 1 {
		arg = fields[1]
	}

	m.appendLine(lineCommand, "/"+line)
	switch name {
	case "quit", "exit":
		m.quitting = true
		return m, tea.Quit
	case "save":
		if err := m.saveGame(arg); err != nil {
			m.appendLine(lineError, err.Error())
		} else {
			m.appendSystem(fmt.Sprintf("Saved to %s.", arg))
		}
	case "load":
		if err := m.loadGame(arg); err != nil {
			m.appendLine(lineError, err.Error())
		} else {
			m.appendSystem(fmt.Sprintf("Loaded %s.", arg))
		}
	case "reset":
		m.session.Reset()
		m.appendSystem("Session reset.")
	case "trace":
		m.dumpTrace()
	case "goals":
		m.dumpGoals()
	case "help":
		m.appendSystem("Commands: /save [slot], /load [slot], /reset, /trace, /goals, /quit")
	default:
		m.appendLine(lineError, fmt.Sprintf("Unknown command %q. Try /help.", name))
	}
	m.refreshViewport()
	return m, nil
}

func (m *Model) saveGame(slot string) error {
	if err := os.MkdirAll(m.saveDir, 0o755); err != nil {
		return fmt.Errorf("save dir: %w", err)
	}
	return save.WriteFile(m.savePath(slot), m.session.Snapshot())
}

func (m *Model) loadGame(slot string) error {
	snap, err := save.ReadFile(m.savePath(slot))
	if err != nil {
		return err
	}
	return m.session.Restore(snap)
}

func (m *Model) savePath(slot string) string {
	return filepath.Join(m.saveDir, slot+".json")
}

func (m *Model) dumpTrace() {
	entries := m.session.TriggerLog()
	if len(entries) == 0 {
		m.appendSystem("No beats have fired yet.")
		return
	}
	for _, e := range entries {
		m.appendSystem(fmt.Sprintf("#%d %s (by %s)", e.Sequence, e.BeatID, e.Character))
	}
}

func (m *Model) dumpGoals() {
	for _, id := range []string{m.session.PlayerID(), m.session.OpponentID()} {
		m.appendSystem(id + ":")
		for _, g := range m.session.GoalsForCharacter(id) {
			m.appendSystem(fmt.Sprintf("  %s [%s]", g.Description, g.Status))
		}
	}
}

// appendEvents turns frame events into feed lines.
func (m *Model) appendEvents(events []engine.Event) {
	for _, e := range events {
		switch e.Kind {
		case engine.EventDialogue:
			m.appendLine(lineSpeaker, e.Speaker+":")
			for _, l := range e.Lines {
				m.appendLine(lineDialogue, "  "+l)
			}
		case engine.EventAtmosphere:
			m.appendLine(lineAtmosphere, fmt.Sprintf("The flat shifts. (%s)", e.Text))
		case engine.EventAtmospherePulse:
			m.appendLine(lineAtmosphere, "Something pulses through the walls.")
		case engine.EventRoomChange:
			m.appendLine(lineEvent, fmt.Sprintf("%s enters the %s.", e.Agent, roomDisplayName(e.Text)))
		case engine.EventPickup:
			m.appendLine(lineEvent, fmt.Sprintf("%s picks up the %s.", e.Agent, strings.ReplaceAll(e.Text, "_", " ")))
		case engine.EventGoalCompleted:
			m.appendLine(lineEvent, fmt.Sprintf("%s finished: %s", e.Agent, strings.ReplaceAll(e.Text, "_", " ")))
		}
	}
}

func (m *Model) appendSystem(text string) {
	m.appendLine(lineSystem, text)
}

func (m *Model) appendLine(kind lineKind, text string) {
	m.feed = append(m.feed, feedLine{kind: kind, text: text})
	if len(m.feed) > maxFeedLines {
		m.feed = m.feed[len(m.feed)-maxFeedLines:]
	}
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, l := range m.feed {
		b.WriteString(styleFor(l.kind).Render(l.text))
		b.WriteByte('\n')
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func styleFor(kind lineKind) lipgloss.Style {
	switch kind {
	case lineDialogue:
		return styleDialogue
	case lineSpeaker:
		return styleSpeaker
	case lineAtmosphere:
		return styleAtmosphere
	case lineEvent:
		return styleEvent
	case lineError:
		return styleError
	case lineCommand:
		return styleCommand
	}
	return styleSystem
}

func (m Model) View() string {
	if !m.ready {
		return "Moving in..."
	}
	bottom := styleSystem.Render(" arrows move | e interact | / commands | q quit")
	if m.commanding {
		bottom = m.textin.View()
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s",
		m.viewport.View(),
		renderGoalBar(m.session, m.width),
		renderStatusBar(m.session, m.width),
		bottom,
	)
}
