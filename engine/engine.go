// Package engine provides the Session orchestrator that wires collision,
// navigation, difficulty scaling, goal planning, and story triggers into a
// single per-frame Step.
package engine

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/ahale/housebound/engine/collision"
	"github.com/ahale/housebound/engine/difficulty"
	"github.com/ahale/housebound/engine/nav"
	"github.com/ahale/housebound/engine/planner"
	"github.com/ahale/housebound/engine/save"
	"github.com/ahale/housebound/engine/story"
	"github.com/ahale/housebound/types"
)

const (
	agentRadius   = 0.35
	interactRange = 1.5
	exitRadius    = 0.6
	defaultSpeed  = 2.0
)

// InputProvider polls the player's intent for the current frame.
type InputProvider func() types.InputState

// AudioSink receives fire-and-forget cue requests from story effects.
type AudioSink interface {
	PlaySound(id string)
	PlayMusic(id string)
	CrossfadeMusic(id string)
}

// EventKind classifies the observable events a frame produces.
type EventKind int

const (
	EventDialogue EventKind = iota
	EventAtmosphere
	EventAtmospherePulse
	EventRoomChange
	EventPickup
	EventGoalCompleted
)

// Event is one observable occurrence for frontends to render.
type Event struct {
	Kind     EventKind
	Lines    []string // dialogue
	Speaker  string   // dialogue
	Text     string   // room id, item id, preset, or goal id
	Agent    string   // who caused it, when attributable
	Duration float64  // atmosphere
}

// Frame is the observable output of one Step.
type Frame struct {
	Events      []Event
	PlayerMoved bool
}

// Options configure a new Session.
type Options struct {
	Stage      *types.StageDef
	Input      InputProvider
	Audio      AudioSink
	Difficulty difficulty.Config
	Seed       int64
	AutoPilot  bool // drive the player character with a planner too
}

// Session owns every service for one play-through. All shared state is
// mutated inside Step, in a fixed order, by this single writer.
type Session struct {
	ID    string
	stage *types.StageDef

	world     *world
	colliders map[string]*collision.Service // by room id
	graph     *planner.RoomGraph
	scaler    *difficulty.Scaler
	story     *story.Manager

	player   *Agent
	opponent *Agent
	navs     map[string]*nav.Navigator
	planners map[string]*planner.Planner

	input     InputProvider
	audio     AudioSink
	autopilot bool
	seed      int64
	baseSpeed float64

	events []Event
}

// NewSession builds a session from loaded stage content. Content problems
// that make the stage unplayable are returned as errors, not defaulted.
func NewSession(opts Options) (*Session, error) {
	stage := opts.Stage
	if stage == nil {
		return nil, fmt.Errorf("session: no stage")
	}
	if _, ok := stage.Rooms[stage.Player.SpawnRoom]; !ok {
		return nil, fmt.Errorf("session: player spawn room %q not in stage", stage.Player.SpawnRoom)
	}
	if _, ok := stage.Rooms[stage.Opponent.SpawnRoom]; !ok {
		return nil, fmt.Errorf("session: opponent spawn room %q not in stage", stage.Opponent.SpawnRoom)
	}

	s := &Session{
		ID:        uuid.NewString(),
		stage:     stage,
		world:     newWorld(stage),
		colliders: make(map[string]*collision.Service),
		graph:     planner.NewRoomGraph(stage.Rooms),
		scaler:    difficulty.New(opts.Difficulty),
		navs:      make(map[string]*nav.Navigator),
		planners:  make(map[string]*planner.Planner),
		input:     opts.Input,
		audio:     opts.Audio,
		autopilot: opts.AutoPilot,
		seed:      opts.Seed,
		baseSpeed: stage.AgentSpeed,
	}
	if s.baseSpeed <= 0 {
		s.baseSpeed = defaultSpeed
	}

	for id, room := range stage.Rooms {
		s.colliders[id] = buildRoomService(room)
	}

	s.player = s.world.addAgent(stage.Player)
	s.opponent = s.world.addAgent(stage.Opponent)

	s.story = story.New(stage.Beats, stage.Player.Path, s.storySinks())
	s.world.horror = s.story.HorrorLevel
	s.world.beatDone = s.story.BeatCompleted

	s.navs[s.player.ID] = nav.New(s.player.Position)
	s.navs[s.opponent.ID] = nav.New(s.opponent.Position)

	s.planners[s.opponent.ID] = planner.New(
		s.opponent.ID, s.opponent.Room, stage.Goals, s.graph,
		s.navs[s.opponent.ID], s.world, s.plannerHooks(s.opponent), opts.Seed)
	if opts.AutoPilot {
		s.planners[s.player.ID] = planner.New(
			s.player.ID, s.player.Room, stage.Goals, s.graph,
			s.navs[s.player.ID], s.world, s.plannerHooks(s.player), opts.Seed+1)
	}

	// Entering the spawn room is the first scene of the session.
	s.story.CheckTrigger(types.TriggerSceneEnter, types.TriggerContext{
		Scene: s.player.Room, Character: s.player.ID, Position: s.player.Position,
	})
	return s, nil
}

// Step advances the session by one frame.
func (s *Session) Step(dt float64) Frame {
	// 1. Read tuning before anything moves, so this frame runs on the
	// previous evaluation and cannot oscillate within itself.
	tn := s.scaler.Tuning()
	speed := s.baseSpeed * tn.SpeedMultiplier
	horrorBefore := s.story.HorrorLevel()

	// 2. Poll player input. Autopilot mode ignores it entirely.
	var in types.InputState
	if !s.autopilot && s.input != nil {
		in = s.input()
	}
	if in.Tap != nil {
		s.navs[s.player.ID].MoveTo(in.Tap.X, in.Tap.Z)
	}

	// 3. Advance planners. They only set navigator destinations here;
	// movement is resolved below.
	for _, a := range []*Agent{s.player, s.opponent} {
		if p, ok := s.planners[a.ID]; ok {
			p.Update(dt, tn)
		}
	}

	// 4. Resolve movement through collision and write positions back.
	var manual *types.InputState
	if !s.autopilot {
		manual = &in
	}
	playerMoved := s.moveAgent(s.player, dt, speed, manual)
	s.moveAgent(s.opponent, dt, speed, nil)

	// 5. Player interaction request.
	if !s.autopilot && in.Interact {
		s.tryInteract(s.player)
	}

	// 6. Room transitions for the manually-controlled player. AI agents
	// traverse exits through their planner instead.
	if !s.autopilot {
		s.checkExits(s.player)
	}

	// 7. Proximity story triggers see the final, collision-resolved player
	// position. Player-only, like scene beats: the opponent's roaming must
	// not consume once-per-session beats before the player gets near them.
	s.story.CheckTrigger(types.TriggerProximity, types.TriggerContext{
		Character: s.player.ID, Position: s.player.Position,
	})

	// 8. A horror shift re-gates goals the frame it happens.
	if s.story.HorrorLevel() != horrorBefore {
		for _, p := range s.planners {
			p.Recheck()
		}
	}

	// 9. Feed the difficulty scaler last.
	s.scaler.TrackFrame(dt, playerMoved)

	frame := Frame{Events: s.events, PlayerMoved: playerMoved}
	s.events = nil
	return frame
}

// moveAgent executes one agent's desired step through the collision
// service. Manual input supersedes navigation when present.
func (s *Session) moveAgent(a *Agent, dt, speed float64, manual *types.InputState) bool {
	n := s.navs[a.ID]
	var dx, dz float64
	if manual != nil && (manual.MoveX != 0 || manual.MoveZ != 0) {
		n.Idle()
		mag := math.Hypot(manual.MoveX, manual.MoveZ)
		dx = manual.MoveX / mag * speed * dt
		dz = manual.MoveZ / mag * speed * dt
	} else {
		step := n.Update(dt, speed)
		dx, dz = step.DX, step.DZ
	}
	if dx == 0 && dz == 0 {
		a.Moving = false
		return false
	}

	res := s.colliders[a.Room].CheckMovement(a.Position.X, a.Position.Z, a.Position.X+dx, a.Position.Z+dz, agentRadius)
	moved := res.X != a.Position.X || res.Z != a.Position.Z
	if moved {
		a.Rotation = math.Atan2(res.X-a.Position.X, res.Z-a.Position.Z)
	}
	a.Position = types.Vec2{X: res.X, Z: res.Z}
	n.SetPosition(res.X, res.Z)
	a.Moving = moved
	return moved
}

// tryInteract runs the interaction pathway on the nearest interactable.
// Nothing in range is normal control flow, not an error.
func (s *Session) tryInteract(a *Agent) {
	c := s.colliders[a.Room].FindNearestInteractable(a.Position.X, a.Position.Z, interactRange)
	if c == nil {
		return
	}
	s.interactWith(a, *c)
}

// interactWith is the single interaction pathway shared by player input and
// AI goals.
func (s *Session) interactWith(a *Agent, c types.Collider) {
	switch {
	case c.ItemDrop != "":
		item := c.ItemDrop
		s.world.giveItem(a.ID, item)
		s.colliders[a.Room].RemoveProp(c.ID)
		s.pushEvent(Event{Kind: EventPickup, Text: item, Agent: a.ID})
		s.story.CheckTrigger(types.TriggerItemPickup, types.TriggerContext{
			Item: item, Character: a.ID, Position: a.Position,
		})
	case c.Kind == "npc":
		s.story.CheckTrigger(types.TriggerNPCInteract, types.TriggerContext{
			NPC: c.ID, Character: a.ID, Position: a.Position,
		})
	}
}

// checkExits transitions the agent when it stands on an unlocked exit.
func (s *Session) checkExits(a *Agent) {
	for _, exit := range s.stage.Rooms[a.Room].Exits {
		if exit.LockID != "" && s.world.locks[exit.LockID] {
			continue
		}
		if math.Hypot(exit.Position.X-a.Position.X, exit.Position.Z-a.Position.Z) <= exitRadius {
			s.enterRoom(a, exit.TargetRoom, false)
			return
		}
	}
}

// enterRoom moves the agent to a new room. viaPlanner marks transitions the
// agent's own planner initiated, which must not abandon its goal.
func (s *Session) enterRoom(a *Agent, room string, viaPlanner bool) {
	from := a.Room
	a.Room = room
	a.Position = s.entryPoint(room, from)
	n := s.navs[a.ID]
	if !viaPlanner {
		n.Idle()
	}
	n.SetPosition(a.Position.X, a.Position.Z)

	if p, ok := s.planners[a.ID]; ok && !viaPlanner {
		p.OnRoomChanged(room)
	}
	s.pushEvent(Event{Kind: EventRoomChange, Text: room, Agent: a.ID})
	if a == s.player {
		s.scaler.OnRoomTransition()
		s.story.CheckTrigger(types.TriggerSceneEnter, types.TriggerContext{
			Scene: room, Character: a.ID, Position: a.Position,
		})
	}
}

// entryPoint places an arriving agent just inside the destination room,
// past the return exit's own transition radius so the agent cannot bounce
// straight back.
func (s *Session) entryPoint(room, from string) types.Vec2 {
	def := s.stage.Rooms[room]
	center := def.Bounds.Center()
	for _, exit := range def.Exits {
		if exit.TargetRoom != from {
			continue
		}
		dx := center.X - exit.Position.X
		dz := center.Z - exit.Position.Z
		dist := math.Hypot(dx, dz)
		nudge := exitRadius + 0.4
		if dist <= nudge {
			return center
		}
		return types.Vec2{X: exit.Position.X + dx/dist*nudge, Z: exit.Position.Z + dz/dist*nudge}
	}
	return center
}

// plannerHooks wires one agent's planner to the session's shared services.
func (s *Session) plannerHooks(a *Agent) planner.Hooks {
	return planner.Hooks{
		Interact: func(g types.GoalDef) {
			if g.Prop == "" {
				return
			}
			if c, ok := s.colliders[a.Room].Get(g.Prop); ok {
				s.interactWith(a, c)
			}
		},
		Traverse: func(exit types.ExitDef) {
			s.enterRoom(a, exit.TargetRoom, true)
		},
		OnGoalActivated: s.scaler.OnGoalActivated,
		OnGoalCompleted: func(id string) {
			s.scaler.OnGoalCompleted(id)
			s.pushEvent(Event{Kind: EventGoalCompleted, Text: id, Agent: a.ID})
		},
		OnGoalAbandoned: s.scaler.OnGoalAbandoned,
	}
}

// storySinks wires story effects to the session's collaborators.
func (s *Session) storySinks() story.Sinks {
	return story.Sinks{
		Dialogue: func(lines []string, speaker string) {
			s.pushEvent(Event{Kind: EventDialogue, Lines: lines, Speaker: speaker})
		},
		Sound: func(id string) {
			if s.audio != nil {
				s.audio.PlaySound(id)
			}
		},
		Music: func(id string) {
			if s.audio != nil {
				s.audio.PlayMusic(id)
			}
		},
		Atmosphere: func(preset string, duration float64) {
			s.pushEvent(Event{Kind: EventAtmosphere, Text: preset, Duration: duration})
		},
		AtmospherePulse: func() {
			s.pushEvent(Event{Kind: EventAtmospherePulse})
		},
		SetLock:    s.setLock,
		Spawn:      s.spawnEntity,
		Despawn:    s.despawnEntity,
		RevealGoal: s.revealGoal,
	}
}

// setLock flips a lock's live state. Unlocking notifies planners
// immediately instead of waiting for their next poll tick.
func (s *Session) setLock(lockID string, locked bool) {
	s.world.locks[lockID] = locked
	if !locked {
		for _, p := range s.planners {
			p.OnDoorUnlocked(lockID)
		}
	}
}

// spawnEntity places a story entity as an interactable collider in whatever
// room contains the position. Positions outside every room are dropped.
func (s *Session) spawnEntity(id string, pos types.Vec2) {
	room := s.world.roomAt(pos)
	if room == "" {
		return
	}
	s.colliders[room].AddProp(types.Collider{
		ID:   id,
		Kind: "entity",
		Bounds: types.Bounds{
			MinX: pos.X - 0.25, MaxX: pos.X + 0.25,
			MinZ: pos.Z - 0.25, MaxZ: pos.Z + 0.25,
		},
		Interactable:      true,
		InteractionRadius: interactRange,
	})
}

func (s *Session) despawnEntity(id string) {
	for _, svc := range s.colliders {
		svc.RemoveProp(id)
	}
}

func (s *Session) revealGoal(goalID string) {
	for _, p := range s.planners {
		p.RevealGoal(goalID)
	}
}

func (s *Session) pushEvent(e Event) {
	s.events = append(s.events, e)
}

// buildRoomService compiles one room's static props into a collision
// service.
func buildRoomService(room types.RoomDef) *collision.Service {
	svc := collision.New()
	svc.SetRoomBounds(room.Bounds)
	for _, prop := range room.Props {
		svc.AddProp(propCollider(prop))
	}
	return svc
}

func propCollider(p types.PropDef) types.Collider {
	w, d := p.Width, p.Depth
	if w <= 0 {
		w = 0.5
	}
	if d <= 0 {
		d = 0.5
	}
	return types.Collider{
		ID:   p.ID,
		Kind: p.Kind,
		Bounds: types.Bounds{
			MinX: p.Position.X - w/2, MaxX: p.Position.X + w/2,
			MinZ: p.Position.Z - d/2, MaxZ: p.Position.Z + d/2,
		},
		Solid:             p.Solid,
		Interactable:      p.Interactive,
		InteractionRadius: p.InteractionRadius,
		ItemDrop:          p.ItemDrop,
	}
}

// Snapshot captures the flat save state.
func (s *Session) Snapshot() save.Snapshot {
	st := s.story.State()
	return save.Snapshot{
		CompletedBeats:  st.CompletedBeats,
		HorrorLevel:     st.HorrorLevel,
		CharacterPath:   st.CharacterPath,
		DifficultyLevel: s.scaler.Level(),
		PlayerRoom:      s.player.Room,
		PlayerPosition:  s.player.Position,
		Inventory:       s.world.items(s.player.ID),
	}
}

// Restore applies a snapshot onto the live session. World state the
// snapshot does not carry directly (locks, revealed goals, spawned
// entities, consumed pickups) is re-derived by replaying the durable
// effects of the completed beats in content order.
func (s *Session) Restore(snap save.Snapshot) error {
	if _, ok := s.stage.Rooms[snap.PlayerRoom]; !ok {
		return fmt.Errorf("restore: unknown room %q", snap.PlayerRoom)
	}

	s.story.LoadState(story.Snapshot{
		CompletedBeats: snap.CompletedBeats,
		HorrorLevel:    snap.HorrorLevel,
		CharacterPath:  snap.CharacterPath,
	})
	s.scaler.SetLevel(snap.DifficultyLevel)

	s.world.resetLocks()
	done := make(map[string]bool, len(snap.CompletedBeats))
	for _, id := range snap.CompletedBeats {
		done[id] = true
	}
	for _, beat := range s.stage.Beats {
		if !done[beat.ID] {
			continue
		}
		for _, eff := range beat.Effects {
			switch eff.Kind {
			case types.EffectUnlock:
				s.world.locks[eff.LockID] = false
			case types.EffectLock:
				s.world.locks[eff.LockID] = true
			case types.EffectSpawn:
				s.spawnEntity(eff.EntityID, eff.Position)
			case types.EffectDespawn:
				s.despawnEntity(eff.EntityID)
			case types.EffectRevealGoal:
				s.revealGoal(eff.GoalID)
			}
		}
	}

	p := s.player
	p.Room = snap.PlayerRoom
	p.Position = snap.PlayerPosition
	s.navs[p.ID].Idle()
	s.navs[p.ID].SetPosition(p.Position.X, p.Position.Z)

	inv := make(map[string]bool, len(snap.Inventory))
	for _, item := range snap.Inventory {
		inv[item] = true
	}
	s.world.inventory[p.ID] = inv
	for roomID, room := range s.stage.Rooms {
		for _, prop := range room.Props {
			if prop.ItemDrop != "" && inv[prop.ItemDrop] {
				s.colliders[roomID].RemoveProp(prop.ID)
			}
		}
	}

	// Planners abandon whatever they were doing and replan in the
	// restored world.
	for id, pl := range s.planners {
		pl.OnRoomChanged(s.world.agents[id].Room)
	}
	s.events = nil
	return nil
}

// Reset restores the session to its initial state: spawn positions, locks,
// goals, difficulty, and narrative progress.
func (s *Session) Reset() {
	s.world.resetLocks()
	for agent, inv := range s.world.inventory {
		s.world.inventory[agent] = make(map[string]bool, len(inv))
	}
	for id, room := range s.stage.Rooms {
		s.colliders[id] = buildRoomService(room)
	}
	for _, pair := range []struct {
		a   *Agent
		def types.CharacterDef
	}{{s.player, s.stage.Player}, {s.opponent, s.stage.Opponent}} {
		pair.a.Room = pair.def.SpawnRoom
		pair.a.Position = pair.def.Spawn
		pair.a.Rotation = 0
		pair.a.Moving = false
		s.navs[pair.a.ID] = nav.New(pair.a.Position)
	}
	s.scaler.Reset()
	s.story.Reset()

	s.planners[s.opponent.ID] = planner.New(
		s.opponent.ID, s.opponent.Room, s.stage.Goals, s.graph,
		s.navs[s.opponent.ID], s.world, s.plannerHooks(s.opponent), s.seed)
	if s.autopilot {
		s.planners[s.player.ID] = planner.New(
			s.player.ID, s.player.Room, s.stage.Goals, s.graph,
			s.navs[s.player.ID], s.world, s.plannerHooks(s.player), s.seed+1)
	}

	s.events = nil
	s.story.CheckTrigger(types.TriggerSceneEnter, types.TriggerContext{
		Scene: s.player.Room, Character: s.player.ID, Position: s.player.Position,
	})
}

// Read-only accessors for frontends.

// GoalsForCharacter returns the goal tracker snapshot for one agent. Agents
// without a planner have no tracked goals.
func (s *Session) GoalsForCharacter(id string) []types.GoalState {
	if p, ok := s.planners[id]; ok {
		return p.States()
	}
	return nil
}

// DifficultyLevel returns the current difficulty scalar.
func (s *Session) DifficultyLevel() float64 { return s.scaler.Level() }

// Tuning returns the AI tuning derived from the current difficulty.
func (s *Session) Tuning() types.Tuning { return s.scaler.Tuning() }

// HorrorLevel returns the current narrative horror level.
func (s *Session) HorrorLevel() float64 { return s.story.HorrorLevel() }

// TriggerLog returns recently fired beats, oldest first.
func (s *Session) TriggerLog() []story.TriggerEntry { return s.story.Log().Entries() }

// AgentState returns a copy of one agent's authoritative state.
func (s *Session) AgentState(id string) (Agent, bool) {
	if a, ok := s.world.agents[id]; ok {
		return *a, true
	}
	return Agent{}, false
}

// PlayerID returns the player character's agent id.
func (s *Session) PlayerID() string { return s.player.ID }

// OpponentID returns the opponent character's agent id.
func (s *Session) OpponentID() string { return s.opponent.ID }

// Inventory returns the agent's held items in stable order.
func (s *Session) Inventory(id string) []string { return s.world.items(id) }

// PlannerPhase returns the HUD name of the agent's objective state, or ""
// for agents without a planner.
func (s *Session) PlannerPhase(id string) string {
	if p, ok := s.planners[id]; ok {
		return p.Phase().String()
	}
	return ""
}

// Stage returns the immutable stage content.
func (s *Session) Stage() *types.StageDef { return s.stage }
