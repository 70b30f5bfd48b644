package engine

import (
	"sort"

	"github.com/ahale/housebound/types"
)

// Agent is the authoritative state of one character. The render layer reads
// it; mutation flows only through the Session.
type Agent struct {
	ID       string
	Name     string
	Path     types.CharacterPath
	Room     string
	Position types.Vec2
	Rotation float64 // radians, facing direction on the floor plane
	Moving   bool    // moved during the last frame
}

// world is the shared mutable state behind the planner's read-only view.
// All writes happen inside Session.Step.
type world struct {
	stage     *types.StageDef
	agents    map[string]*Agent
	locks     map[string]bool            // live state by lock id
	inventory map[string]map[string]bool // agent id -> held items
	horror    func() float64
	beatDone  func(id string) bool
}

func newWorld(stage *types.StageDef) *world {
	w := &world{
		stage:     stage,
		agents:    make(map[string]*Agent),
		locks:     make(map[string]bool),
		inventory: make(map[string]map[string]bool),
	}
	w.resetLocks()
	return w
}

// resetLocks restores every lock to its content-defined initial state.
func (w *world) resetLocks() {
	clear(w.locks)
	for _, room := range w.stage.Rooms {
		for _, exit := range room.Exits {
			if exit.LockID != "" {
				w.locks[exit.LockID] = exit.Locked
			}
		}
	}
}

func (w *world) addAgent(def types.CharacterDef) *Agent {
	a := &Agent{
		ID:       def.ID,
		Name:     def.Name,
		Path:     def.Path,
		Room:     def.SpawnRoom,
		Position: def.Spawn,
	}
	w.agents[a.ID] = a
	w.inventory[a.ID] = make(map[string]bool)
	return a
}

func (w *world) giveItem(agent, item string) {
	if inv, ok := w.inventory[agent]; ok {
		inv[item] = true
	}
}

// items returns the agent's inventory in a stable order for snapshots and
// the HUD.
func (w *world) items(agent string) []string {
	inv := w.inventory[agent]
	out := make([]string, 0, len(inv))
	for item := range inv {
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

// roomAt returns the id of the room whose bounds contain the point, or "".
func (w *world) roomAt(pos types.Vec2) string {
	for id, room := range w.stage.Rooms {
		if room.Bounds.Contains(pos.X, pos.Z) {
			return id
		}
	}
	return ""
}

// The read-only view handed to planners.

func (w *world) RoomBounds(roomID string) (types.Bounds, bool) {
	room, ok := w.stage.Rooms[roomID]
	return room.Bounds, ok
}

func (w *world) IsLocked(lockID string) bool { return w.locks[lockID] }

func (w *world) HasItem(agent, item string) bool {
	return w.inventory[agent][item]
}

func (w *world) HorrorLevel() float64 { return w.horror() }

func (w *world) BeatCompleted(id string) bool { return w.beatDone(id) }
