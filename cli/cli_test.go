package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ahale/housebound/engine"
	"github.com/ahale/housebound/types"
)

// One-room flat with a biscuit tin the player can raid.
func testStage() *types.StageDef {
	return &types.StageDef{
		Title:      "Test Flat",
		AgentSpeed: 2.0,
		Player: types.CharacterDef{
			ID: "winslow", Name: "Winslow", Path: types.PathOrder,
			SpawnRoom: "lounge", Spawn: types.Vec2{X: 5, Z: 5},
		},
		Opponent: types.CharacterDef{
			ID: "mortimer", Name: "Mortimer", Path: types.PathChaos,
			SpawnRoom: "lounge", Spawn: types.Vec2{X: 2, Z: 8},
		},
		Rooms: map[string]types.RoomDef{
			"lounge": {
				ID:     "lounge",
				Bounds: types.Bounds{MinX: 0, MaxX: 10, MinZ: 0, MaxZ: 10},
				Props: []types.PropDef{
					{ID: "biscuit_tin", Kind: "prop", Position: types.Vec2{X: 5, Z: 4}, Interactive: true, InteractionRadius: 1.5, ItemDrop: "stale_biscuit"},
				},
			},
		},
		Beats: []types.BeatDef{
			{ID: "lounge_intro", Trigger: types.TriggerSceneEnter, Scene: "lounge",
				Effects: []types.EffectDef{
					{Kind: types.EffectDialogue, Lines: []string{"Home, such as it is."}, Speaker: "narrator"},
				}},
			{ID: "biscuit_found", Trigger: types.TriggerItemPickup, Item: "stale_biscuit",
				Effects: []types.EffectDef{
					{Kind: types.EffectHorror, Amount: 1},
				}},
		},
	}
}

func newTestCLI(t *testing.T, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	in := NewScriptInput()
	session, err := engine.NewSession(engine.Options{Stage: testStage(), Input: in.Poll, Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	c := New(session, in, 10)
	c.In = strings.NewReader(input)
	c.Out = &out
	c.SaveDir = t.TempDir()
	return c, &out
}

func TestCLI_TitleAndIntro(t *testing.T) {
	c, out := newTestCLI(t, "step\nquit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Test Flat") {
		t.Error("expected stage title in output")
	}
	if !strings.Contains(output, "Home, such as it is.") {
		t.Error("expected intro dialogue after first step")
	}
}

func TestCLI_InteractPicksUpItem(t *testing.T) {
	c, out := newTestCLI(t, "interact\ninventory\nquit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "picks up the stale biscuit") {
		t.Errorf("expected pickup event, got:\n%s", output)
	}
	if !strings.Contains(output, "Carrying: stale_biscuit") {
		t.Errorf("expected inventory listing, got:\n%s", output)
	}
}

func TestCLI_StatusReportsHorror(t *testing.T) {
	c, out := newTestCLI(t, "interact\nstatus\nquit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "Horror: 1.0/10") {
		t.Errorf("expected horror 1.0 after biscuit beat, got:\n%s", output)
	}
	if !strings.Contains(output, "Room: lounge") {
		t.Error("expected room in status output")
	}
}

func TestCLI_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	c, out := newTestCLI(t, "interact\nsave test\nquit\n")
	c.SaveDir = dir
	c.Run()
	if !strings.Contains(out.String(), "Game saved to test.") {
		t.Error("expected save confirmation")
	}

	c2, out2 := newTestCLI(t, "load test\ninventory\nquit\n")
	c2.SaveDir = dir
	c2.Run()

	output := out2.String()
	if !strings.Contains(output, "Game loaded from test.") {
		t.Error("expected load confirmation")
	}
	if !strings.Contains(output, "Carrying: stale_biscuit") {
		t.Error("expected restored inventory after load")
	}
}

func TestCLI_LoadNonexistent(t *testing.T) {
	c, out := newTestCLI(t, "load nothing_here\nquit\n")
	c.Run()

	if !strings.Contains(out.String(), "Load failed") {
		t.Error("expected load failure message")
	}
}

func TestCLI_UnknownCommand(t *testing.T) {
	c, out := newTestCLI(t, "bogus\nquit\n")
	c.Run()

	if !strings.Contains(out.String(), "Unknown command") {
		t.Error("expected unknown command message")
	}
}

func TestCLI_HelpListsCommands(t *testing.T) {
	c, out := newTestCLI(t, "help\nquit\n")
	c.Run()

	output := out.String()
	for _, want := range []string{"save", "load", "step", "tap", "goals"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in help output", want)
		}
	}
}

func TestCLI_EmptyAndCommentLinesSkipped(t *testing.T) {
	c, out := newTestCLI(t, "\n# a comment\nquit\n")
	c.Run()

	if strings.Contains(out.String(), "Unknown command") {
		t.Error("empty and comment lines should be skipped")
	}
}

func TestCLI_LogListsFiredBeats(t *testing.T) {
	c, out := newTestCLI(t, "interact\nlog\nquit\n")
	c.Run()

	output := out.String()
	if !strings.Contains(output, "lounge_intro") {
		t.Error("expected spawn beat in log output")
	}
	if !strings.Contains(output, "biscuit_found") {
		t.Error("expected pickup beat in log output")
	}
}
