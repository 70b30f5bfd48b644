package loader

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahale/housebound/types"
)

const validStage = `
Stage {
	title = "Flat 13",
	author = "test",
	version = "1.0",
	intro = "The lease said nothing about any of this.",
	agent_speed = 2.0,
}

Character "winslow" {
	name = "Winslow",
	role = "player",
	path = "order",
	spawn_room = "lounge",
	spawn = { x = 5, z = 5 },
}

Character "mortimer" {
	name = "Mortimer",
	role = "opponent",
	path = "chaos",
	spawn_room = "lounge",
	spawn = { x = 3, z = 7 },
}

Room "lounge" {
	name = "The Lounge",
	bounds = { min_x = 0, max_x = 10, min_z = 0, max_z = 10 },
	exits = {
		{ direction = "east", to = "kitchen", position = { x = 9.5, z = 5 },
		  lock = "kitchen_door", locked = true, required_item = "rusty_key" },
	},
	props = {
		{ id = "key_table", kind = "prop", position = { x = 2, z = 2 },
		  width = 1, depth = 0.6, interactive = true,
		  interaction_radius = 1.0, item_drop = "rusty_key" },
		{ id = "sofa", kind = "prop", position = { x = 5, z = 8 },
		  width = 2, depth = 1, solid = true },
	},
}

Room "kitchen" {
	name = "The Kitchen",
	bounds = { min_x = 10, max_x = 20, min_z = 0, max_z = 10 },
	exits = {
		{ direction = "west", to = "lounge", position = { x = 10.5, z = 5 },
		  lock = "kitchen_door", locked = true },
	},
	props = {
		{ id = "toaster", kind = "prop", position = { x = 15, z = 5 },
		  interactive = true, interaction_radius = 1.0 },
	},
}

Goal "sabotage_toaster" {
	character = "mortimer",
	description = "Do something unspeakable to the toaster",
	room = "kitchen",
	target = { x = 15, z = 5 },
	prop = "toaster",
	radius = 0.8,
	priority = 5,
}

Beat "key_found" {
	on = ItemPickup("rusty_key"),
	effects = {
		Unlock("kitchen_door"),
		Horror(1),
		Dialogue("narrator", "The key is warm.", "Keys should not be warm."),
		Sound("click"),
	},
}

Beat "kitchen_dread" {
	on = SceneEnter("kitchen"),
	path = "order",
	min_horror = 1,
	effects = {
		Atmosphere("dread", 4),
		AtmospherePulse(),
	},
}
`

func writeStage(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "stage.lua"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoad_CompleteStage(t *testing.T) {
	stage, err := Load(writeStage(t, validStage))
	if err != nil {
		t.Fatal(err)
	}

	if stage.Title != "Flat 13" || stage.AgentSpeed != 2.0 {
		t.Fatalf("stage header wrong: %+v", stage)
	}
	if stage.Player.ID != "winslow" || stage.Player.Path != types.PathOrder {
		t.Fatalf("player wrong: %+v", stage.Player)
	}
	if stage.Opponent.ID != "mortimer" || stage.Opponent.Spawn != (types.Vec2{X: 3, Z: 7}) {
		t.Fatalf("opponent wrong: %+v", stage.Opponent)
	}
	if len(stage.Rooms) != 2 {
		t.Fatalf("expected 2 rooms, got %d", len(stage.Rooms))
	}

	lounge := stage.Rooms["lounge"]
	if len(lounge.Exits) != 1 || lounge.Exits[0].LockID != "kitchen_door" || !lounge.Exits[0].Locked {
		t.Fatalf("lounge exits wrong: %+v", lounge.Exits)
	}
	if len(lounge.Props) != 2 || lounge.Props[0].ItemDrop != "rusty_key" || !lounge.Props[1].Solid {
		t.Fatalf("lounge props wrong: %+v", lounge.Props)
	}

	if len(stage.Goals) != 1 || stage.Goals[0].Prop != "toaster" || stage.Goals[0].Priority != 5 {
		t.Fatalf("goals wrong: %+v", stage.Goals)
	}

	if len(stage.Beats) != 2 {
		t.Fatalf("expected 2 beats, got %d", len(stage.Beats))
	}
	key := stage.Beats[0]
	if key.Trigger != types.TriggerItemPickup || key.Item != "rusty_key" {
		t.Fatalf("beat trigger wrong: %+v", key)
	}
	kinds := []types.EffectKind{}
	for _, eff := range key.Effects {
		kinds = append(kinds, eff.Kind)
	}
	want := []types.EffectKind{types.EffectUnlock, types.EffectHorror, types.EffectDialogue, types.EffectSound}
	for i, k := range want {
		if kinds[i] != k {
			t.Fatalf("effect %d: got %v, want %v", i, kinds[i], k)
		}
	}
	if key.Effects[2].Speaker != "narrator" || len(key.Effects[2].Lines) != 2 {
		t.Fatalf("dialogue effect wrong: %+v", key.Effects[2])
	}

	dread := stage.Beats[1]
	if dread.Path != types.PathOrder || dread.MinHorror != 1 || dread.Scene != "kitchen" {
		t.Fatalf("gated beat wrong: %+v", dread)
	}
}

func TestLoad_DanglingExitTargetFails(t *testing.T) {
	broken := strings.Replace(validStage, `to = "kitchen"`, `to = "cellar"`, 1)
	_, err := Load(writeStage(t, broken))
	if err == nil {
		t.Fatal("expected validation error for dangling exit target")
	}
	if !strings.Contains(err.Error(), "cellar") {
		t.Fatalf("error does not name the bad room: %v", err)
	}
}

func TestLoad_UnknownLockInEffectFails(t *testing.T) {
	broken := strings.Replace(validStage, `Unlock("kitchen_door")`, `Unlock("vault_door")`, 1)
	if _, err := Load(writeStage(t, broken)); err == nil {
		t.Fatal("expected validation error for unknown lock")
	}
}

func TestLoad_MissingTriggerFails(t *testing.T) {
	broken := strings.Replace(validStage, `on = ItemPickup("rusty_key"),`, ``, 1)
	if _, err := Load(writeStage(t, broken)); err == nil {
		t.Fatal("expected compile error for beat without trigger")
	}
}

func TestLoad_MissingStageBlockFails(t *testing.T) {
	if _, err := Load(writeStage(t, `Room "only" { bounds = { min_x = 0, max_x = 1, min_z = 0, max_z = 1 } }`)); err == nil {
		t.Fatal("expected error for missing Stage block")
	}
}

func TestLoad_EmptyDirFails(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Fatal("expected error for directory without lua files")
	}
}

func TestLoad_SandboxBlocksUnsafeGlobals(t *testing.T) {
	for _, snippet := range []string{
		`os.execute("true")`,
		`io.open("/etc/passwd")`,
		`dofile("other.lua")`,
	} {
		if _, err := Load(writeStage(t, validStage+"\n"+snippet)); err == nil {
			t.Fatalf("sandbox allowed %q", snippet)
		}
	}
}
