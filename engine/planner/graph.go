package planner

import (
	"github.com/ahale/housebound/types"
)

// RoomGraph answers cross-room reachability over a stage's rooms. The graph
// itself is immutable; lock state is supplied live at query time.
type RoomGraph struct {
	rooms map[string]types.RoomDef
}

// NewRoomGraph builds a graph over the stage's rooms.
func NewRoomGraph(rooms map[string]types.RoomDef) *RoomGraph {
	return &RoomGraph{rooms: rooms}
}

// Route returns the exit sequence to traverse from one room to another,
// shortest by hop count. locked reports the live state of a lock id; locked
// exits are impassable. A same-room route is empty. ok is false when no
// route exists.
//
// Expansion follows each room's exit order from content, so equal-length
// routes resolve the same way every run.
func (g *RoomGraph) Route(from, to string, locked func(lockID string) bool) ([]types.ExitDef, bool) {
	if _, ok := g.rooms[from]; !ok {
		return nil, false
	}
	if _, ok := g.rooms[to]; !ok {
		return nil, false
	}
	if from == to {
		return nil, true
	}

	type hop struct {
		prev string
		exit types.ExitDef
	}
	visited := map[string]hop{from: {}}
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, exit := range g.rooms[cur].Exits {
			if exit.LockID != "" && locked != nil && locked(exit.LockID) {
				continue
			}
			if _, seen := visited[exit.TargetRoom]; seen {
				continue
			}
			if _, known := g.rooms[exit.TargetRoom]; !known {
				continue
			}
			visited[exit.TargetRoom] = hop{prev: cur, exit: exit}
			if exit.TargetRoom == to {
				var route []types.ExitDef
				for at := to; at != from; {
					h := visited[at]
					route = append([]types.ExitDef{h.exit}, route...)
					at = h.prev
				}
				return route, true
			}
			queue = append(queue, exit.TargetRoom)
		}
	}
	return nil, false
}

// Reachable reports whether any route exists, ignoring locks entirely. Used
// to tell "blocked by a door" apart from "no path at all".
func (g *RoomGraph) Reachable(from, to string) bool {
	_, ok := g.Route(from, to, nil)
	return ok
}
