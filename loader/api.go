package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerTriggerHelpers(L)
	registerEffectHelpers(L)
}

// curried registers a global of the form Name "id" { ... }.
func curried(L *lua.LState, name string, sink func(rawNamed)) {
	L.SetGlobal(name, L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			sink(rawNamed{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Stage { title = "...", ... }
	L.SetGlobal("Stage", L.NewFunction(func(L *lua.LState) int {
		coll.stage = L.CheckTable(1)
		return 0
	}))

	// Character "id" { name = ..., role = "player"|"opponent", ... }
	curried(L, "Character", func(r rawNamed) { coll.characters = append(coll.characters, r) })

	// Room "id" { bounds = ..., exits = {...}, props = {...} }
	curried(L, "Room", func(r rawNamed) { coll.rooms = append(coll.rooms, r) })

	// Goal "id" { character = ..., room = ..., target = ..., ... }
	curried(L, "Goal", func(r rawNamed) { coll.goals = append(coll.goals, r) })

	// Beat "id" { on = SceneEnter(...), effects = { ... } }
	curried(L, "Beat", func(r rawNamed) { coll.beats = append(coll.beats, r) })
}

// tagged builds a {type=...} table from key/value pairs.
func tagged(L *lua.LState, kind string, kv ...lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(kind))
	for i := 0; i+1 < len(kv); i += 2 {
		tbl.RawSetString(string(kv[i].(lua.LString)), kv[i+1])
	}
	return tbl
}

func registerTriggerHelpers(L *lua.LState) {
	// SceneEnter("room_id")
	L.SetGlobal("SceneEnter", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "scene_enter", lua.LString("scene"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// ItemPickup("item_id")
	L.SetGlobal("ItemPickup", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "item_pickup", lua.LString("item"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// NPCInteract("npc_id")
	L.SetGlobal("NPCInteract", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "npc_interact", lua.LString("npc"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// Proximity(x, z, radius)
	L.SetGlobal("Proximity", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "proximity",
			lua.LString("x"), lua.LNumber(L.CheckNumber(1)),
			lua.LString("z"), lua.LNumber(L.CheckNumber(2)),
			lua.LString("radius"), lua.LNumber(L.CheckNumber(3))))
		return 1
	}))
}

func registerEffectHelpers(L *lua.LState) {
	// Dialogue("speaker", "line1", "line2", ...)
	L.SetGlobal("Dialogue", L.NewFunction(func(L *lua.LState) int {
		speaker := L.CheckString(1)
		lines := L.NewTable()
		for i := 2; i <= L.GetTop(); i++ {
			lines.Append(lua.LString(L.CheckString(i)))
		}
		tbl := tagged(L, "dialogue", lua.LString("speaker"), lua.LString(speaker))
		tbl.RawSetString("lines", lines)
		L.Push(tbl)
		return 1
	}))

	// Horror(amount), negative amounts ease off.
	L.SetGlobal("Horror", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "horror", lua.LString("amount"), lua.LNumber(L.CheckNumber(1))))
		return 1
	}))

	// Unlock("lock_id") / Lock("lock_id")
	L.SetGlobal("Unlock", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "unlock", lua.LString("lock"), lua.LString(L.CheckString(1))))
		return 1
	}))
	L.SetGlobal("Lock", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "lock", lua.LString("lock"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// Spawn("entity_id", x, z) / Despawn("entity_id")
	L.SetGlobal("Spawn", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "spawn",
			lua.LString("entity"), lua.LString(L.CheckString(1)),
			lua.LString("x"), lua.LNumber(L.CheckNumber(2)),
			lua.LString("z"), lua.LNumber(L.CheckNumber(3))))
		return 1
	}))
	L.SetGlobal("Despawn", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "despawn", lua.LString("entity"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// Atmosphere("preset", duration) / AtmospherePulse()
	L.SetGlobal("Atmosphere", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "atmosphere",
			lua.LString("preset"), lua.LString(L.CheckString(1)),
			lua.LString("duration"), lua.LNumber(L.CheckNumber(2))))
		return 1
	}))
	L.SetGlobal("AtmospherePulse", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "atmosphere_pulse"))
		return 1
	}))

	// Sound("id") / Music("id")
	L.SetGlobal("Sound", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "sound", lua.LString("sound"), lua.LString(L.CheckString(1))))
		return 1
	}))
	L.SetGlobal("Music", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "music", lua.LString("sound"), lua.LString(L.CheckString(1))))
		return 1
	}))

	// RevealGoal("goal_id")
	L.SetGlobal("RevealGoal", L.NewFunction(func(L *lua.LState) int {
		L.Push(tagged(L, "reveal_goal", lua.LString("goal"), lua.LString(L.CheckString(1))))
		return 1
	}))
}
