// Package cli provides a plain-terminal frontend for scripted and
// non-interactive runs. Commands advance the simulation by explicit step
// counts, which makes transcripts reproducible.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ahale/housebound/engine"
	"github.com/ahale/housebound/engine/save"
	"github.com/ahale/housebound/types"
)

// tapLimitSeconds bounds how long "tap" will simulate while waiting for
// the player to arrive.
const tapLimitSeconds = 15

// ScriptInput is the polled input state driven by CLI commands.
type ScriptInput struct {
	state types.InputState
}

// NewScriptInput creates an empty input source.
func NewScriptInput() *ScriptInput {
	return &ScriptInput{}
}

// Poll returns the commanded state. Interact and tap are one-shot.
func (s *ScriptInput) Poll() types.InputState {
	st := s.state
	s.state.Interact = false
	s.state.Tap = nil
	return st
}

// CLI runs the command loop against a live session.
type CLI struct {
	Session   *engine.Session
	Input     *ScriptInput
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	TickRate  int
	Trace     bool
	EchoInput bool // echo each input line after the prompt (for script playback)
}

// New creates a CLI wired to the given session.
func New(session *engine.Session, input *ScriptInput, tickRate int) *CLI {
	home, _ := os.UserHomeDir()
	if tickRate <= 0 {
		tickRate = 30
	}
	return &CLI{
		Session:  session,
		Input:    input,
		In:       os.Stdin,
		Out:      os.Stdout,
		SaveDir:  filepath.Join(home, ".housebound", "saves"),
		TickRate: tickRate,
	}
}

// Run starts the loop: prompt, input, dispatch, output.
func (c *CLI) Run() {
	c.printLine(c.Session.Stage().Title)
	c.printLine("")

	scanner := bufio.NewScanner(c.In)
	for {
		c.print("> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		// Skip comment lines (for script files).
		if strings.HasPrefix(input, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(input)
		}

		if c.dispatch(input) {
			return
		}
	}
}

// dispatch runs one command. Returns true if the loop should exit.
func (c *CLI) dispatch(input string) bool {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "quit", "exit":
		c.printSystem("Goodbye.")
		return true

	case "step":
		c.cmdStep(args)

	case "wait":
		c.cmdWait(args)

	case "move":
		c.cmdMove(args)

	case "tap":
		c.cmdTap(args)

	case "interact", "e":
		c.Input.state.Interact = true
		c.runFrames(1)

	case "status":
		c.cmdStatus()

	case "goals":
		c.cmdGoals()

	case "inventory", "i":
		items := c.Session.Inventory(c.Session.PlayerID())
		if len(items) == 0 {
			c.printLine("You are carrying nothing.")
		} else {
			c.printLine("Carrying: " + strings.Join(items, ", "))
		}

	case "log":
		c.cmdLog()

	case "save":
		c.cmdSave(first(args))

	case "load":
		c.cmdLoad(first(args))

	case "reset":
		c.Session.Reset()
		c.printSystem("Session reset.")

	case "trace":
		c.Trace = !c.Trace
		if c.Trace {
			c.printSystem("Trace output enabled.")
		} else {
			c.printSystem("Trace output disabled.")
		}

	case "help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type help for available commands.", cmd))
	}

	return false
}

// cmdStep advances the simulation by n frames.
func (c *CLI) cmdStep(args []string) {
	n := 1
	if len(args) > 0 {
		v, err := strconv.Atoi(args[0])
		if err != nil || v < 1 {
			c.printSystem("step wants a positive frame count.")
			return
		}
		n = v
	}
	c.runFrames(n)
}

// cmdWait advances the simulation by a number of seconds.
func (c *CLI) cmdWait(args []string) {
	secs := 1.0
	if len(args) > 0 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil || v <= 0 {
			c.printSystem("wait wants a positive number of seconds.")
			return
		}
		secs = v
	}
	c.runFrames(int(secs * float64(c.TickRate)))
}

// cmdMove holds a direction for a duration, default one second.
func (c *CLI) cmdMove(args []string) {
	if len(args) == 0 {
		c.printSystem("move wants a direction: n, s, e or w.")
		return
	}
	var dx, dz float64
	switch strings.ToLower(args[0]) {
	case "n", "north":
		dz = 1
	case "s", "south":
		dz = -1
	case "e", "east":
		dx = 1
	case "w", "west":
		dx = -1
	default:
		c.printSystem(fmt.Sprintf("Unknown direction %q.", args[0]))
		return
	}
	secs := 1.0
	if len(args) > 1 {
		if v, err := strconv.ParseFloat(args[1], 64); err == nil && v > 0 {
			secs = v
		}
	}
	c.Input.state.MoveX = dx
	c.Input.state.MoveZ = dz
	c.runFrames(int(secs * float64(c.TickRate)))
	c.Input.state.MoveX = 0
	c.Input.state.MoveZ = 0
}

// cmdTap sends a tap-to-move destination and simulates until the player
// stops moving.
func (c *CLI) cmdTap(args []string) {
	if len(args) < 2 {
		c.printSystem("tap wants x and z coordinates.")
		return
	}
	x, errX := strconv.ParseFloat(args[0], 64)
	z, errZ := strconv.ParseFloat(args[1], 64)
	if errX != nil || errZ != nil {
		c.printSystem("tap wants numeric coordinates.")
		return
	}
	c.Input.state.Tap = &types.Vec2{X: x, Z: z}

	dt := 1.0 / float64(c.TickRate)
	limit := tapLimitSeconds * c.TickRate
	for i := 0; i < limit; i++ {
		frame := c.Session.Step(dt)
		c.printFrame(frame)
		// Give the navigator a frame to engage before testing arrival.
		if i > 0 && !frame.PlayerMoved {
			return
		}
	}
	c.printSystem("Still walking; giving up on arrival.")
}

func (c *CLI) runFrames(n int) {
	dt := 1.0 / float64(c.TickRate)
	for i := 0; i < n; i++ {
		c.printFrame(c.Session.Step(dt))
	}
}

func (c *CLI) printFrame(frame engine.Frame) {
	for _, e := range frame.Events {
		switch e.Kind {
		case engine.EventDialogue:
			c.printLine(e.Speaker + ":")
			for _, l := range e.Lines {
				c.printLine("  " + l)
			}
		case engine.EventAtmosphere:
			c.printLine(fmt.Sprintf("* The flat shifts. (%s)", e.Text))
		case engine.EventAtmospherePulse:
			c.printLine("* Something pulses through the walls.")
		case engine.EventRoomChange:
			c.printLine(fmt.Sprintf("* %s enters the %s.", e.Agent, strings.ReplaceAll(e.Text, "_", " ")))
		case engine.EventPickup:
			c.printLine(fmt.Sprintf("* %s picks up the %s.", e.Agent, strings.ReplaceAll(e.Text, "_", " ")))
		case engine.EventGoalCompleted:
			c.printLine(fmt.Sprintf("* %s finished: %s", e.Agent, strings.ReplaceAll(e.Text, "_", " ")))
		}
		if c.Trace {
			c.printSystem(fmt.Sprintf("[trace] event kind=%d agent=%s text=%s", e.Kind, e.Agent, e.Text))
		}
	}
}

func (c *CLI) cmdStatus() {
	s := c.Session
	player, _ := s.AgentState(s.PlayerID())
	opp, _ := s.AgentState(s.OpponentID())
	tuning := s.Tuning()

	c.printSystem(fmt.Sprintf("Room: %s at (%.1f, %.1f)", player.Room, player.Position.X, player.Position.Z))
	c.printSystem(fmt.Sprintf("Horror: %.1f/10", s.HorrorLevel()))
	c.printSystem(fmt.Sprintf("Difficulty: %.2f (speed %.2f, delay %.2fs, accuracy %.2f)",
		s.DifficultyLevel(), tuning.SpeedMultiplier, tuning.PlanningDelay, tuning.PathfindingAccuracy))
	c.printSystem(fmt.Sprintf("%s: %s in %s", opp.ID, s.PlannerPhase(opp.ID), opp.Room))
}

func (c *CLI) cmdGoals() {
	for _, id := range []string{c.Session.PlayerID(), c.Session.OpponentID()} {
		c.printLine(id + ":")
		goals := c.Session.GoalsForCharacter(id)
		if len(goals) == 0 {
			c.printLine("  (none)")
			continue
		}
		for _, g := range goals {
			c.printLine(fmt.Sprintf("  %s [%s]", g.Description, g.Status))
		}
	}
}

func (c *CLI) cmdLog() {
	entries := c.Session.TriggerLog()
	if len(entries) == 0 {
		c.printSystem("No beats have fired yet.")
		return
	}
	for _, e := range entries {
		c.printSystem(fmt.Sprintf("#%d %s (by %s)", e.Sequence, e.BeatID, e.Character))
	}
}

func (c *CLI) cmdSave(name string) {
	if name == "" {
		name = "quicksave"
	}
	if err := os.MkdirAll(c.SaveDir, 0o755); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	path := filepath.Join(c.SaveDir, name+".json")
	if err := save.WriteFile(path, c.Session.Snapshot()); err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", name))
}

func (c *CLI) cmdLoad(name string) {
	if name == "" {
		name = "quicksave"
	}
	path := filepath.Join(c.SaveDir, name+".json")
	snap, err := save.ReadFile(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	if err := c.Session.Restore(snap); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game loaded from %s.", name))
	c.cmdStatus()
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  save [name]   — Save game (default: quicksave)",
		"  load [name]   — Load game (default: quicksave)",
		"  reset         — Restart the session",
		"  trace         — Toggle event trace output",
		"  quit          — Exit",
		"",
		"Simulation:",
		"  step [n]        — Advance n frames (default 1)",
		"  wait [seconds]  — Advance by wall time",
		"  move <dir> [s]  — Hold a direction (n/s/e/w) for s seconds",
		"  tap <x> <z>     — Walk to a point, waits for arrival",
		"  interact (e)    — Use the nearest prop",
		"",
		"Inspection:",
		"  status          — Room, horror, difficulty, opponent state",
		"  goals           — Goal tracker for both characters",
		"  inventory (i)   — What you're carrying",
		"  log             — Story beats fired so far",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

func first(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintf(c.Out, "[%s]\n", text)
}
