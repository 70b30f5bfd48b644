// Package planner drives one AI-controlled agent: it scores the agent's
// goal set, routes across rooms, and walks the navigator through each leg.
// One planner per agent; the orchestrator advances it once per frame and
// the difficulty tuning it receives is the previous frame's evaluation.
package planner

import (
	"math"
	"math/rand"

	"github.com/ahale/housebound/engine/nav"
	"github.com/ahale/housebound/types"
)

const (
	// legArriveRadius is how close to an exit position counts as reaching
	// that route leg. Exits sit in doorways next to walls, so the agent's
	// collision radius can keep it from ever satisfying the navigator's
	// own arrival threshold; this matches the orchestrator's transition
	// radius for manually controlled agents.
	legArriveRadius = 0.6

	// wallInset keeps generated navigation targets (wander points,
	// jittered goal targets) away from room edges the agent's radius
	// cannot reach.
	wallInset = 0.5

	// stallTimeout is how long an agent may make no progress toward its
	// destination before the leg is abandoned and planning restarts.
	stallTimeout = 2.0

	// stallEpsilon is the movement that counts as progress.
	stallEpsilon = 0.15
)

// Phase is the planner's objective state.
type Phase int

const (
	PhasePlanning Phase = iota
	PhaseNavigating
	PhaseArriving
	PhaseInteracting
	PhaseWaiting
	PhaseWandering
)

// String returns the HUD-facing name of the phase.
func (p Phase) String() string {
	switch p {
	case PhasePlanning:
		return "planning"
	case PhaseNavigating:
		return "navigating"
	case PhaseArriving:
		return "arriving"
	case PhaseInteracting:
		return "interacting"
	case PhaseWaiting:
		return "waiting"
	case PhaseWandering:
		return "wandering"
	}
	return "unknown"
}

// World is the read-only view of shared state the planner consults. Horror
// and lock state are written elsewhere; the planner only reads them.
type World interface {
	RoomBounds(roomID string) (types.Bounds, bool)
	IsLocked(lockID string) bool
	HasItem(agent, item string) bool
	HorrorLevel() float64
	BeatCompleted(id string) bool
}

// Hooks are the planner's outward effects, fixed at construction. Traverse
// executes a room transition for the agent (reposition, collider rebuild,
// scene triggers); Interact runs the same interaction pathway a player
// takes. The goal callbacks keep the difficulty scaler's activation
// accounting balanced.
type Hooks struct {
	Interact        func(goal types.GoalDef)
	Traverse        func(exit types.ExitDef)
	OnGoalActivated func(id string)
	OnGoalCompleted func(id string)
	OnGoalAbandoned func(id string)
}

type goalRecord struct {
	def    types.GoalDef
	status types.GoalStatus
}

// Planner is the per-agent goal state machine.
type Planner struct {
	agent string
	room  string
	goals []goalRecord
	graph *RoomGraph
	nav   *nav.Navigator
	world World
	hooks Hooks
	rng   *rand.Rand

	phase   Phase
	current int // index into goals, -1 when none
	route   []types.ExitDef
	settle  float64 // remaining deliberation time in arriving
	replan  float64 // countdown to the next planning attempt
	recheck bool    // forces an immediate re-plan, set by unlock events

	lastPos types.Vec2 // progress reference while navigating
	stall   float64    // seconds without progress
}

// New creates a planner for one agent, keeping only the goals addressed to
// it. seed fixes the wander/jitter stream so runs are reproducible.
func New(agent, room string, goals []types.GoalDef, graph *RoomGraph, n *nav.Navigator, world World, hooks Hooks, seed int64) *Planner {
	p := &Planner{
		agent:   agent,
		room:    room,
		graph:   graph,
		nav:     n,
		world:   world,
		hooks:   hooks,
		rng:     rand.New(rand.NewSource(seed)),
		current: -1,
	}
	for _, g := range goals {
		if g.Character != "" && g.Character != agent {
			continue
		}
		status := types.GoalActive
		if g.Hidden {
			status = types.GoalHidden
		}
		p.goals = append(p.goals, goalRecord{def: g, status: status})
	}
	return p
}

// Update advances the state machine by one frame. The navigator's movement
// itself is executed by the orchestrator; the planner only sets and reads
// destinations.
func (p *Planner) Update(dt float64, tn types.Tuning) {
	switch p.phase {
	case PhasePlanning:
		p.replan -= dt
		if p.replan <= 0 || p.recheck {
			p.recheck = false
			p.plan(tn)
		}
	case PhaseNavigating:
		p.advanceRoute(dt, tn)
	case PhaseArriving:
		p.settle -= dt
		if p.settle <= 0 {
			p.finishArrival()
		}
	case PhaseInteracting:
		p.interact(tn)
	case PhaseWaiting:
		p.replan -= dt
		if p.replan <= 0 || p.recheck {
			p.recheck = false
			p.plan(tn)
		}
	case PhaseWandering:
		p.replan -= dt
		if p.replan <= 0 || p.recheck {
			p.recheck = false
			p.plan(tn)
			return
		}
		if p.nav.Arrived() || p.nav.Mode() == nav.ModeIdle {
			p.pickWanderTarget()
		}
	}
}

// plan selects the highest-priority eligible goal. A goal whose only
// obstacle is a locked door parks the planner in waiting; a goal with no
// path at all is skipped. With nothing selectable the planner wanders.
func (p *Planner) plan(tn types.Tuning) {
	best := -1
	blocked := false
	var bestRoute []types.ExitDef

	for i := range p.goals {
		g := &p.goals[i]
		if !p.eligible(g) {
			continue
		}
		if best >= 0 && g.def.Priority <= p.goals[best].def.Priority {
			continue
		}
		route, ok := p.graph.Route(p.room, g.def.Room, p.world.IsLocked)
		if !ok {
			if p.graph.Reachable(p.room, g.def.Room) {
				blocked = true
			}
			continue
		}
		best = i
		bestRoute = route
	}

	if best >= 0 {
		p.current = best
		p.route = bestRoute
		if p.hooks.OnGoalActivated != nil {
			p.hooks.OnGoalActivated(p.goals[best].def.ID)
		}
		p.phase = PhaseNavigating
		p.startLeg(tn)
		return
	}
	if blocked {
		p.phase = PhaseWaiting
		p.replan = tn.PlanningDelay
		p.nav.Idle()
		return
	}
	p.phase = PhaseWandering
	p.replan = 2 * tn.PlanningDelay
	p.pickWanderTarget()
}

// eligible checks everything except reachability.
func (p *Planner) eligible(g *goalRecord) bool {
	if g.status != types.GoalActive {
		return false
	}
	if p.world.HorrorLevel() < g.def.MinHorror {
		return false
	}
	if g.def.RequiredItem != "" && !p.world.HasItem(p.agent, g.def.RequiredItem) {
		return false
	}
	if g.def.RequiredBeat != "" && !p.world.BeatCompleted(g.def.RequiredBeat) {
		return false
	}
	return true
}

// startLeg points the navigator at the next waypoint: the next exit on the
// route, or the goal target once in the goal's room. The final target is
// jittered by the tuning's pathfinding accuracy, so a low-difficulty
// opponent walks to roughly the right spot rather than the exact one. The
// jittered point is clamped inside the goal room's bounds so inaccuracy can
// never aim at a wall.
func (p *Planner) startLeg(tn types.Tuning) {
	p.lastPos = p.nav.Position()
	p.stall = 0
	if len(p.route) > 0 {
		pos := p.route[0].Position
		p.nav.MoveTo(pos.X, pos.Z)
		return
	}
	g := p.goals[p.current].def
	spread := (1 - tn.PathfindingAccuracy) * 1.5
	x := g.Target.X + (p.rng.Float64()*2-1)*spread
	z := g.Target.Z + (p.rng.Float64()*2-1)*spread
	if b, ok := p.world.RoomBounds(g.Room); ok {
		x = clampRange(x, b.MinX+wallInset, b.MaxX-wallInset)
		z = clampRange(z, b.MinZ+wallInset, b.MaxZ-wallInset)
	}
	p.nav.MoveTo(x, z)
}

// advanceRoute watches the navigator and steps through route legs. A route
// leg counts as reached anywhere inside the doorway's transition radius;
// on the final leg the goal's own radius counts as arrival even when the
// jittered navigator target is elsewhere.
func (p *Planner) advanceRoute(dt float64, tn types.Tuning) {
	g := p.goals[p.current].def
	pos := p.nav.Position()

	if len(p.route) > 0 {
		exit := p.route[0]
		if math.Hypot(exit.Position.X-pos.X, exit.Position.Z-pos.Z) > legArriveRadius {
			p.trackProgress(dt, pos, tn)
			return
		}
		if exit.LockID != "" && p.world.IsLocked(exit.LockID) {
			// Door re-locked mid-route. Abandon and wait for it.
			p.abandon()
			p.phase = PhaseWaiting
			p.replan = tn.PlanningDelay
			return
		}
		p.route = p.route[1:]
		p.room = exit.TargetRoom
		if p.hooks.Traverse != nil {
			p.hooks.Traverse(exit)
		}
		p.startLeg(tn)
		return
	}

	r := math.Max(g.Radius, nav.ArriveThreshold)
	if math.Hypot(g.Target.X-pos.X, g.Target.Z-pos.Z) <= r || p.nav.Arrived() {
		p.beginArrival(tn)
		return
	}
	p.trackProgress(dt, pos, tn)
}

// trackProgress watches for a navigator pinned against something the route
// did not account for (a solid prop on the target, a doorway narrower than
// the agent). After stallTimeout without covering stallEpsilon the leg is
// abandoned and planning restarts with a fresh target.
func (p *Planner) trackProgress(dt float64, pos types.Vec2, tn types.Tuning) {
	if math.Hypot(pos.X-p.lastPos.X, pos.Z-p.lastPos.Z) >= stallEpsilon {
		p.lastPos = pos
		p.stall = 0
		return
	}
	p.stall += dt
	if p.stall >= stallTimeout {
		p.abandon()
		p.phase = PhasePlanning
		p.replan = tn.PlanningDelay
		p.stall = 0
	}
}

func clampRange(v, lo, hi float64) float64 {
	if lo > hi {
		return (lo + hi) / 2
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (p *Planner) beginArrival(tn types.Tuning) {
	p.nav.Idle()
	p.phase = PhaseArriving
	p.settle = tn.PlanningDelay
}

// finishArrival re-validates preconditions before acting. The world may
// have shifted between planning and arrival, so a stale goal is abandoned
// instead of interacted with.
func (p *Planner) finishArrival() {
	if p.current < 0 || !p.eligible(&p.goals[p.current]) {
		p.abandon()
		p.phase = PhasePlanning
		p.replan = 0
		return
	}
	p.phase = PhaseInteracting
}

func (p *Planner) interact(tn types.Tuning) {
	g := &p.goals[p.current]
	if p.hooks.Interact != nil {
		p.hooks.Interact(g.def)
	}
	g.status = types.GoalCompleted
	if p.hooks.OnGoalCompleted != nil {
		p.hooks.OnGoalCompleted(g.def.ID)
	}
	p.current = -1
	p.route = nil
	p.phase = PhasePlanning
	p.replan = tn.PlanningDelay
}

func (p *Planner) pickWanderTarget() {
	bounds, ok := p.world.RoomBounds(p.room)
	if !ok {
		p.nav.Idle()
		return
	}
	minX, maxX := bounds.MinX+wallInset, bounds.MaxX-wallInset
	minZ, maxZ := bounds.MinZ+wallInset, bounds.MaxZ-wallInset
	if minX > maxX {
		minX, maxX = (bounds.MinX+bounds.MaxX)/2, (bounds.MinX+bounds.MaxX)/2
	}
	if minZ > maxZ {
		minZ, maxZ = (bounds.MinZ+bounds.MaxZ)/2, (bounds.MinZ+bounds.MaxZ)/2
	}
	x := minX + p.rng.Float64()*(maxX-minX)
	z := minZ + p.rng.Float64()*(maxZ-minZ)
	p.nav.MoveTo(x, z)
}

// abandon drops the in-flight goal without completing it, releasing the
// navigator so a stale destination cannot resurface next cycle. The goal
// stays active and may be re-selected later.
func (p *Planner) abandon() {
	if p.current >= 0 {
		if p.hooks.OnGoalAbandoned != nil {
			p.hooks.OnGoalAbandoned(p.goals[p.current].def.ID)
		}
		p.current = -1
	}
	p.route = nil
	p.nav.Idle()
}

// OnDoorUnlocked re-checks eligibility immediately instead of on the next
// poll tick.
func (p *Planner) OnDoorUnlocked(lockID string) {
	p.recheck = true
}

// Recheck forces goal re-evaluation on the next Update. Used when shared
// state the planner polls (horror level, inventory) changes between its
// poll ticks.
func (p *Planner) Recheck() { p.recheck = true }

// OnRoomChanged reports an externally-caused room transition (the agent was
// moved by something other than its own route traversal). The in-flight
// goal is abandoned and planning restarts in the new room.
func (p *Planner) OnRoomChanged(room string) {
	p.room = room
	p.abandon()
	p.phase = PhasePlanning
	p.replan = 0
}

// RevealGoal flips a hidden goal to active. Unknown or non-hidden goals are
// left alone.
func (p *Planner) RevealGoal(id string) {
	for i := range p.goals {
		if p.goals[i].def.ID == id && p.goals[i].status == types.GoalHidden {
			p.goals[i].status = types.GoalActive
			p.recheck = true
		}
	}
}

// FailGoal marks a goal failed so it is never selected again.
func (p *Planner) FailGoal(id string) {
	for i := range p.goals {
		if p.goals[i].def.ID != id {
			continue
		}
		if p.current == i {
			p.abandon()
			p.phase = PhasePlanning
			p.replan = 0
		}
		p.goals[i].status = types.GoalFailed
	}
}

// Phase returns the current objective state.
func (p *Planner) Phase() Phase { return p.phase }

// Room returns the room the planner believes its agent is in.
func (p *Planner) Room() string { return p.room }

// CurrentGoal returns the id of the goal being pursued, or "".
func (p *Planner) CurrentGoal() string {
	if p.current < 0 {
		return ""
	}
	return p.goals[p.current].def.ID
}

// States returns the HUD snapshot of all goals, in content order.
func (p *Planner) States() []types.GoalState {
	out := make([]types.GoalState, 0, len(p.goals))
	for _, g := range p.goals {
		out = append(out, types.GoalState{
			ID:           g.def.ID,
			Description:  g.def.Description,
			Status:       g.status,
			Interference: g.def.Interference,
		})
	}
	return out
}
