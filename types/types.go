// Package types defines the shared data structures for the Housebound core.
// This package contains only type definitions and trivial accessors, no
// game logic.
package types

// Vec2 is a point on the apartment floor plane. Y (height) is owned by the
// walkability collaborator, not the core.
type Vec2 struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Bounds is an axis-aligned rectangle in world space, already offset for
// multi-room layouts.
type Bounds struct {
	MinX float64 `json:"min_x"`
	MaxX float64 `json:"max_x"`
	MinZ float64 `json:"min_z"`
	MaxZ float64 `json:"max_z"`
}

// Contains reports whether the point lies inside the bounds.
func (b Bounds) Contains(x, z float64) bool {
	return x >= b.MinX && x <= b.MaxX && z >= b.MinZ && z <= b.MaxZ
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() Vec2 {
	return Vec2{X: (b.MinX + b.MaxX) / 2, Z: (b.MinZ + b.MaxZ) / 2}
}

// Collider is an axis-aligned bounding box tagged solid and/or interactable.
// Solid colliders block movement; interactable colliders are discoverable by
// proximity queries independent of solidity.
type Collider struct {
	ID                string
	Kind              string // "wall", "prop", "door"
	Bounds            Bounds
	Solid             bool
	Interactable      bool
	InteractionRadius float64
	ItemDrop          string // item granted when interacted with, if any
}

// ExitDef connects a room to a neighbor. An exit with a LockID starts in the
// state given by Locked and is toggled by story lock/unlock effects.
type ExitDef struct {
	Direction    string
	TargetRoom   string
	Position     Vec2
	LockID       string // empty: never lockable
	Locked       bool   // initial state
	RequiredItem string // item that authorizes the unlock interaction
}

// PropDef places a piece of furniture or pickup in a room.
type PropDef struct {
	ID                string
	Kind              string
	Position          Vec2
	Width             float64
	Depth             float64
	Solid             bool
	Interactive       bool
	InteractionRadius float64
	ItemDrop          string
}

// RoomDef is one room of the pre-generated apartment graph.
type RoomDef struct {
	ID     string
	Name   string
	Bounds Bounds
	Exits  []ExitDef
	Props  []PropDef
}

// CharacterPath selects which half of the stage's content a character sees.
type CharacterPath string

const (
	PathOrder CharacterPath = "order"
	PathChaos CharacterPath = "chaos"
)

// CharacterDef defines one of the two playable characters.
type CharacterDef struct {
	ID        string
	Name      string
	Path      CharacterPath
	SpawnRoom string
	Spawn     Vec2
}

// GoalStatus tracks the lifecycle of a goal.
type GoalStatus int

const (
	GoalHidden GoalStatus = iota
	GoalActive
	GoalCompleted
	GoalFailed
)

// String returns the content-facing name of the status.
func (s GoalStatus) String() string {
	switch s {
	case GoalHidden:
		return "hidden"
	case GoalActive:
		return "active"
	case GoalCompleted:
		return "completed"
	case GoalFailed:
		return "failed"
	}
	return "unknown"
}

// GoalDef is a unit of AI intent: reach a point or interact with a prop,
// gated by preconditions.
type GoalDef struct {
	ID           string
	Character    string // owning agent
	Description  string
	Room         string
	Target       Vec2
	Prop         string // prop to interact with on arrival, optional
	Radius       float64
	Priority     int
	Hidden       bool    // starts hidden until revealed by a beat
	MinHorror    float64 // eligible only at or above this horror level
	RequiredItem string
	RequiredBeat string
	Interference string // how completing this goal antagonizes the other character
}

// GoalState is the snapshot the HUD reads.
type GoalState struct {
	ID           string     `json:"id"`
	Description  string     `json:"description"`
	Status       GoalStatus `json:"status"`
	Interference string     `json:"interference,omitempty"`
}

// TriggerKind enumerates the story trigger channels.
type TriggerKind int

const (
	TriggerSceneEnter TriggerKind = iota
	TriggerItemPickup
	TriggerNPCInteract
	TriggerProximity
)

// String returns the content-facing name of the trigger kind.
func (k TriggerKind) String() string {
	switch k {
	case TriggerSceneEnter:
		return "scene_enter"
	case TriggerItemPickup:
		return "item_pickup"
	case TriggerNPCInteract:
		return "npc_interact"
	case TriggerProximity:
		return "proximity"
	}
	return "unknown"
}

// TriggerContext carries the facts a trigger evaluation matches against.
// Unused fields are zero.
type TriggerContext struct {
	Scene     string
	Item      string
	NPC       string
	Character string // who caused the trigger
	Position  Vec2
}

// EffectKind enumerates the closed story effect vocabulary. Adding a kind
// means extending the dispatcher switch in engine/story.
type EffectKind int

const (
	EffectDialogue EffectKind = iota
	EffectHorror
	EffectUnlock
	EffectLock
	EffectSpawn
	EffectDespawn
	EffectAtmosphere
	EffectAtmospherePulse
	EffectSound
	EffectMusic
	EffectRevealGoal
)

// EffectDef is one tagged-union story effect. Only the fields for its Kind
// are meaningful.
type EffectDef struct {
	Kind     EffectKind
	Lines    []string // dialogue
	Speaker  string   // dialogue
	Amount   float64  // horror delta (may be negative)
	LockID   string   // lock/unlock
	EntityID string   // spawn/despawn
	Position Vec2     // spawn
	Preset   string   // atmosphere
	Duration float64  // atmosphere
	SoundID  string   // sound/music
	GoalID   string   // reveal_goal
}

// BeatDef is a single narrative trigger/effect bundle. A beat fires at most
// once per session.
type BeatDef struct {
	ID         string
	Trigger    TriggerKind
	Scene      string        // scene_enter match
	Item       string        // item_pickup match
	NPC        string        // npc_interact match
	Near       Vec2          // proximity match center
	NearRadius float64       // proximity match radius
	MinHorror  float64       // fires only at or above
	MaxHorror  float64       // fires only below, when > 0
	Path       CharacterPath // empty: both paths
	Effects    []EffectDef
}

// StageDef holds the complete immutable content of one stage.
type StageDef struct {
	Title      string
	Author     string
	Version    string
	Intro      string
	Player     CharacterDef
	Opponent   CharacterDef
	Rooms      map[string]RoomDef
	Goals      []GoalDef
	Beats      []BeatDef
	AgentSpeed float64 // base world units per second
}

// Tuning is the only channel through which difficulty reaches AI behavior.
type Tuning struct {
	SpeedMultiplier     float64 `json:"speed_multiplier"`
	PlanningDelay       float64 `json:"planning_delay"`
	PathfindingAccuracy float64 `json:"pathfinding_accuracy"`
}

// InputState is the polled player intent for one frame.
type InputState struct {
	MoveX    float64
	MoveZ    float64
	Interact bool
	Tap      *Vec2 // tap-to-move destination, nil when absent
}
