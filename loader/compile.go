package loader

import (
	"fmt"

	"github.com/ahale/housebound/types"
	lua "github.com/yuin/gopher-lua"
)

func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

func getBool(tbl *lua.LTable, key string, def bool) bool {
	if b, ok := tbl.RawGetString(key).(lua.LBool); ok {
		return bool(b)
	}
	return def
}

func getNumber(tbl *lua.LTable, key string) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return 0
}

func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key))
}

func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

func getVec(tbl *lua.LTable, key string) types.Vec2 {
	t := getTable(tbl, key)
	if t == nil {
		return types.Vec2{}
	}
	return types.Vec2{X: getNumber(t, "x"), Z: getNumber(t, "z")}
}

func getBounds(tbl *lua.LTable, key string) types.Bounds {
	t := getTable(tbl, key)
	if t == nil {
		return types.Bounds{}
	}
	return types.Bounds{
		MinX: getNumber(t, "min_x"), MaxX: getNumber(t, "max_x"),
		MinZ: getNumber(t, "min_z"), MaxZ: getNumber(t, "max_z"),
	}
}

// forEachEntry walks the array part of a table, requiring table entries.
func forEachEntry(tbl *lua.LTable, fn func(*lua.LTable) error) error {
	for i := 1; ; i++ {
		v := tbl.RawGetInt(i)
		if v == lua.LNil {
			return nil
		}
		t, ok := v.(*lua.LTable)
		if !ok {
			return fmt.Errorf("entry %d: expected table, got %s", i, v.Type())
		}
		if err := fn(t); err != nil {
			return err
		}
	}
}

func compile(coll *collector) (*types.StageDef, error) {
	if coll.stage == nil {
		return nil, fmt.Errorf("no Stage block defined")
	}
	stage := &types.StageDef{
		Title:      getString(coll.stage, "title"),
		Author:     getString(coll.stage, "author"),
		Version:    getString(coll.stage, "version"),
		Intro:      getString(coll.stage, "intro"),
		AgentSpeed: getNumber(coll.stage, "agent_speed"),
		Rooms:      make(map[string]types.RoomDef),
	}

	for _, raw := range coll.characters {
		ch, role, err := compileCharacter(raw)
		if err != nil {
			return nil, err
		}
		switch role {
		case "player":
			if stage.Player.ID != "" {
				return nil, fmt.Errorf("character %s: player role already taken by %s", raw.id, stage.Player.ID)
			}
			stage.Player = ch
		case "opponent":
			if stage.Opponent.ID != "" {
				return nil, fmt.Errorf("character %s: opponent role already taken by %s", raw.id, stage.Opponent.ID)
			}
			stage.Opponent = ch
		default:
			return nil, fmt.Errorf("character %s: unknown role %q", raw.id, role)
		}
	}

	for _, raw := range coll.rooms {
		if _, dup := stage.Rooms[raw.id]; dup {
			return nil, fmt.Errorf("duplicate room %q", raw.id)
		}
		room, err := compileRoom(raw)
		if err != nil {
			return nil, err
		}
		stage.Rooms[raw.id] = room
	}

	for _, raw := range coll.goals {
		stage.Goals = append(stage.Goals, compileGoal(raw))
	}

	for _, raw := range coll.beats {
		beat, err := compileBeat(raw)
		if err != nil {
			return nil, err
		}
		stage.Beats = append(stage.Beats, beat)
	}
	return stage, nil
}

func compileCharacter(raw rawNamed) (types.CharacterDef, string, error) {
	path := types.CharacterPath(getString(raw.table, "path"))
	switch path {
	case types.PathOrder, types.PathChaos:
	default:
		return types.CharacterDef{}, "", fmt.Errorf("character %s: path must be %q or %q", raw.id, types.PathOrder, types.PathChaos)
	}
	return types.CharacterDef{
		ID:        raw.id,
		Name:      getString(raw.table, "name"),
		Path:      path,
		SpawnRoom: getString(raw.table, "spawn_room"),
		Spawn:     getVec(raw.table, "spawn"),
	}, getString(raw.table, "role"), nil
}

func compileRoom(raw rawNamed) (types.RoomDef, error) {
	room := types.RoomDef{
		ID:     raw.id,
		Name:   getString(raw.table, "name"),
		Bounds: getBounds(raw.table, "bounds"),
	}
	if exits := getTable(raw.table, "exits"); exits != nil {
		err := forEachEntry(exits, func(t *lua.LTable) error {
			room.Exits = append(room.Exits, types.ExitDef{
				Direction:    getString(t, "direction"),
				TargetRoom:   getString(t, "to"),
				Position:     getVec(t, "position"),
				LockID:       getString(t, "lock"),
				Locked:       getBool(t, "locked", false),
				RequiredItem: getString(t, "required_item"),
			})
			return nil
		})
		if err != nil {
			return room, fmt.Errorf("room %s exits: %w", raw.id, err)
		}
	}
	if props := getTable(raw.table, "props"); props != nil {
		err := forEachEntry(props, func(t *lua.LTable) error {
			id := getString(t, "id")
			if id == "" {
				return fmt.Errorf("prop without id")
			}
			room.Props = append(room.Props, types.PropDef{
				ID:                id,
				Kind:              getString(t, "kind"),
				Position:          getVec(t, "position"),
				Width:             getNumber(t, "width"),
				Depth:             getNumber(t, "depth"),
				Solid:             getBool(t, "solid", false),
				Interactive:       getBool(t, "interactive", false),
				InteractionRadius: getNumber(t, "interaction_radius"),
				ItemDrop:          getString(t, "item_drop"),
			})
			return nil
		})
		if err != nil {
			return room, fmt.Errorf("room %s props: %w", raw.id, err)
		}
	}
	return room, nil
}

func compileGoal(raw rawNamed) types.GoalDef {
	return types.GoalDef{
		ID:           raw.id,
		Character:    getString(raw.table, "character"),
		Description:  getString(raw.table, "description"),
		Room:         getString(raw.table, "room"),
		Target:       getVec(raw.table, "target"),
		Prop:         getString(raw.table, "prop"),
		Radius:       getNumber(raw.table, "radius"),
		Priority:     getInt(raw.table, "priority"),
		Hidden:       getBool(raw.table, "hidden", false),
		MinHorror:    getNumber(raw.table, "min_horror"),
		RequiredItem: getString(raw.table, "required_item"),
		RequiredBeat: getString(raw.table, "required_beat"),
		Interference: getString(raw.table, "interference"),
	}
}

func compileBeat(raw rawNamed) (types.BeatDef, error) {
	beat := types.BeatDef{
		ID:        raw.id,
		MinHorror: getNumber(raw.table, "min_horror"),
		MaxHorror: getNumber(raw.table, "max_horror"),
	}

	if path := getString(raw.table, "path"); path != "" {
		switch types.CharacterPath(path) {
		case types.PathOrder, types.PathChaos:
			beat.Path = types.CharacterPath(path)
		default:
			return beat, fmt.Errorf("beat %s: unknown path %q", raw.id, path)
		}
	}

	on := getTable(raw.table, "on")
	if on == nil {
		return beat, fmt.Errorf("beat %s: missing trigger (use SceneEnter/ItemPickup/NPCInteract/Proximity)", raw.id)
	}
	switch kind := getString(on, "type"); kind {
	case "scene_enter":
		beat.Trigger = types.TriggerSceneEnter
		beat.Scene = getString(on, "scene")
	case "item_pickup":
		beat.Trigger = types.TriggerItemPickup
		beat.Item = getString(on, "item")
	case "npc_interact":
		beat.Trigger = types.TriggerNPCInteract
		beat.NPC = getString(on, "npc")
	case "proximity":
		beat.Trigger = types.TriggerProximity
		beat.Near = types.Vec2{X: getNumber(on, "x"), Z: getNumber(on, "z")}
		beat.NearRadius = getNumber(on, "radius")
	default:
		return beat, fmt.Errorf("beat %s: unknown trigger type %q", raw.id, kind)
	}

	if effects := getTable(raw.table, "effects"); effects != nil {
		err := forEachEntry(effects, func(t *lua.LTable) error {
			eff, err := compileEffect(t)
			if err != nil {
				return err
			}
			beat.Effects = append(beat.Effects, eff)
			return nil
		})
		if err != nil {
			return beat, fmt.Errorf("beat %s effects: %w", raw.id, err)
		}
	}
	return beat, nil
}

func compileEffect(t *lua.LTable) (types.EffectDef, error) {
	switch kind := getString(t, "type"); kind {
	case "dialogue":
		eff := types.EffectDef{Kind: types.EffectDialogue, Speaker: getString(t, "speaker")}
		if lines := getTable(t, "lines"); lines != nil {
			for i := 1; ; i++ {
				v := lines.RawGetInt(i)
				if v == lua.LNil {
					break
				}
				eff.Lines = append(eff.Lines, v.String())
			}
		}
		return eff, nil
	case "horror":
		return types.EffectDef{Kind: types.EffectHorror, Amount: getNumber(t, "amount")}, nil
	case "unlock":
		return types.EffectDef{Kind: types.EffectUnlock, LockID: getString(t, "lock")}, nil
	case "lock":
		return types.EffectDef{Kind: types.EffectLock, LockID: getString(t, "lock")}, nil
	case "spawn":
		return types.EffectDef{
			Kind:     types.EffectSpawn,
			EntityID: getString(t, "entity"),
			Position: types.Vec2{X: getNumber(t, "x"), Z: getNumber(t, "z")},
		}, nil
	case "despawn":
		return types.EffectDef{Kind: types.EffectDespawn, EntityID: getString(t, "entity")}, nil
	case "atmosphere":
		return types.EffectDef{Kind: types.EffectAtmosphere, Preset: getString(t, "preset"), Duration: getNumber(t, "duration")}, nil
	case "atmosphere_pulse":
		return types.EffectDef{Kind: types.EffectAtmospherePulse}, nil
	case "sound":
		return types.EffectDef{Kind: types.EffectSound, SoundID: getString(t, "sound")}, nil
	case "music":
		return types.EffectDef{Kind: types.EffectMusic, SoundID: getString(t, "sound")}, nil
	case "reveal_goal":
		return types.EffectDef{Kind: types.EffectRevealGoal, GoalID: getString(t, "goal")}, nil
	default:
		return types.EffectDef{}, fmt.Errorf("unknown effect type %q", kind)
	}
}
