// Housebound is a real-time coordination core for a two-character haunted
// flat: collision, AI planning, adaptive difficulty and a Lua-scripted story.
// Usage: housebound [--version] [--plain] [--script <file>] [--trace]
//
//	[--autopilot] [--config <file>] [stage_directory]
package main

import (
	"fmt"
	"os"

	"github.com/ahale/housebound/audio"
	"github.com/ahale/housebound/cli"
	"github.com/ahale/housebound/config"
	"github.com/ahale/housebound/engine"
	"github.com/ahale/housebound/loader"
	"github.com/ahale/housebound/tui"
	"github.com/ahale/housebound/types"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	plain := false
	trace := false
	autopilot := false
	var stageDir string
	var scriptFile string
	var configFile string

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--version":
			fmt.Printf("housebound %s (commit %s, built %s)\n", version, commit, date)
			return
		case "--plain":
			plain = true
		case "--trace":
			trace = true
		case "--autopilot":
			autopilot = true
		case "--script":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--script requires a file path\n")
				os.Exit(1)
			}
			i++
			scriptFile = args[i]
		case "--config":
			if i+1 >= len(args) {
				fmt.Fprintf(os.Stderr, "--config requires a file path\n")
				os.Exit(1)
			}
			i++
			configFile = args[i]
		default:
			if stageDir == "" {
				stageDir = args[i]
			}
		}
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if stageDir == "" {
		stageDir = cfg.StageDir
	}
	if autopilot {
		cfg.AutoPilot = true
	}

	// Load and compile Lua stage content.
	stage, err := loader.Load(stageDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading stage: %v\n", err)
		os.Exit(1)
	}

	// Audio is best effort. A machine without a sound device still plays.
	snd := audio.NewManager(cfg.Audio.Enabled && !plain && scriptFile == "", cfg.Audio.SampleRate)
	if err := snd.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
	defer snd.Cleanup()

	tickRate := int(cfg.TickRate)

	// Script mode: read commands from file, force plain, echo commands.
	if scriptFile != "" {
		f, err := os.Open(scriptFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening script: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		runPlain(stage, cfg, tickRate, f, true, trace)
		return
	}

	// Use the plain CLI if --plain or stdout is not a terminal.
	if plain || !isTerminal() {
		runPlain(stage, cfg, tickRate, os.Stdin, false, trace)
		return
	}

	input := tui.NewInput()
	session, err := engine.NewSession(engine.Options{
		Stage:      stage,
		Input:      input.Poll,
		Audio:      snd,
		Difficulty: cfg.Difficulty.ScalerConfig(),
		AutoPilot:  cfg.AutoPilot,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(tui.Options{
		Session:  session,
		Input:    input,
		TickRate: tickRate,
		SaveDir:  cfg.SaveDir,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runPlain(stage *types.StageDef, cfg config.Config, tickRate int, in *os.File, echo, trace bool) {
	input := cli.NewScriptInput()
	session, err := engine.NewSession(engine.Options{
		Stage:      stage,
		Input:      input.Poll,
		Difficulty: cfg.Difficulty.ScalerConfig(),
		AutoPilot:  cfg.AutoPilot,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	c := cli.New(session, input, tickRate)
	c.In = in
	c.EchoInput = echo
	c.Trace = trace
	if cfg.SaveDir != "" {
		c.SaveDir = cfg.SaveDir
	}
	c.Run()
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
