// Package story tracks narrative progression: which beats have fired and
// the current horror level. It is an event-driven trigger evaluator rather
// than a strict state machine. Beats fire at most once per session, in
// content order, through a callback table fixed at session start. Horror is
// written only here; everyone else reads it.
package story

import (
	"github.com/ahale/housebound/types"
)

// Horror level bounds.
const (
	HorrorMin = 0.0
	HorrorMax = 10.0
)

// Sinks is the callback table wiring story effects to external
// collaborators. Unset callbacks are skipped; the story machine holds no
// rendering or audio logic of its own.
type Sinks struct {
	Dialogue        func(lines []string, speaker string)
	Sound           func(id string)
	Music           func(id string)
	Atmosphere      func(preset string, duration float64)
	AtmospherePulse func()
	SetLock         func(lockID string, locked bool)
	Spawn           func(entityID string, pos types.Vec2)
	Despawn         func(entityID string)
	RevealGoal      func(goalID string)
}

// Manager is the story/interaction state machine. One instance per session,
// mutated only by the session's frame writer.
type Manager struct {
	beats     []types.BeatDef
	completed map[string]bool
	horror    float64
	path      types.CharacterPath
	current   string // last beat fired, "" before the first
	sinks     Sinks
	log       *TriggerLog
}

// New creates a story manager over the stage's beats.
func New(beats []types.BeatDef, path types.CharacterPath, sinks Sinks) *Manager {
	return &Manager{
		beats:     beats,
		completed: make(map[string]bool),
		path:      path,
		sinks:     sinks,
		log:       NewTriggerLog(32),
	}
}

// CheckTrigger evaluates every beat whose trigger kind matches the context
// and fires the eligible ones. Returns the ids of beats fired this call.
func (m *Manager) CheckTrigger(kind types.TriggerKind, ctx types.TriggerContext) []string {
	var fired []string
	for i := range m.beats {
		beat := &m.beats[i]
		if beat.Trigger != kind || m.completed[beat.ID] {
			continue
		}
		if !m.matches(beat, kind, ctx) {
			continue
		}
		// Mark before executing effects so a beat can never re-enter
		// itself through a trigger raised by its own effects.
		m.completed[beat.ID] = true
		m.current = beat.ID
		m.log.Record(beat.ID, ctx.Character)
		for _, eff := range beat.Effects {
			m.apply(eff)
		}
		fired = append(fired, beat.ID)
	}
	return fired
}

// matches checks the beat's trigger-specific fields and gates.
func (m *Manager) matches(beat *types.BeatDef, kind types.TriggerKind, ctx types.TriggerContext) bool {
	if beat.Path != "" && beat.Path != m.path {
		return false
	}
	if m.horror < beat.MinHorror {
		return false
	}
	if beat.MaxHorror > 0 && m.horror >= beat.MaxHorror {
		return false
	}

	switch kind {
	case types.TriggerSceneEnter:
		return beat.Scene == ctx.Scene
	case types.TriggerItemPickup:
		return beat.Item == ctx.Item
	case types.TriggerNPCInteract:
		return beat.NPC == ctx.NPC
	case types.TriggerProximity:
		dx := ctx.Position.X - beat.Near.X
		dz := ctx.Position.Z - beat.Near.Z
		r := beat.NearRadius
		return dx*dx+dz*dz <= r*r
	}
	return false
}

// apply dispatches one effect. The switch is exhaustive over the closed
// EffectKind vocabulary; extending the vocabulary means extending this
// dispatcher.
func (m *Manager) apply(eff types.EffectDef) {
	switch eff.Kind {
	case types.EffectDialogue:
		if m.sinks.Dialogue != nil {
			m.sinks.Dialogue(eff.Lines, eff.Speaker)
		}
	case types.EffectHorror:
		m.horror = clampHorror(m.horror + eff.Amount)
	case types.EffectUnlock:
		if m.sinks.SetLock != nil {
			m.sinks.SetLock(eff.LockID, false)
		}
	case types.EffectLock:
		if m.sinks.SetLock != nil {
			m.sinks.SetLock(eff.LockID, true)
		}
	case types.EffectSpawn:
		if m.sinks.Spawn != nil {
			m.sinks.Spawn(eff.EntityID, eff.Position)
		}
	case types.EffectDespawn:
		if m.sinks.Despawn != nil {
			m.sinks.Despawn(eff.EntityID)
		}
	case types.EffectAtmosphere:
		if m.sinks.Atmosphere != nil {
			m.sinks.Atmosphere(eff.Preset, eff.Duration)
		}
	case types.EffectAtmospherePulse:
		if m.sinks.AtmospherePulse != nil {
			m.sinks.AtmospherePulse()
		}
	case types.EffectSound:
		if m.sinks.Sound != nil {
			m.sinks.Sound(eff.SoundID)
		}
	case types.EffectMusic:
		if m.sinks.Music != nil {
			m.sinks.Music(eff.SoundID)
		}
	case types.EffectRevealGoal:
		if m.sinks.RevealGoal != nil {
			m.sinks.RevealGoal(eff.GoalID)
		}
	}
}

// HorrorLevel returns the current horror level.
func (m *Manager) HorrorLevel() float64 { return m.horror }

// CharacterPath returns the session's narrative path.
func (m *Manager) CharacterPath() types.CharacterPath { return m.path }

// CurrentBeat returns the id of the last beat fired, or "".
func (m *Manager) CurrentBeat() string { return m.current }

// BeatCompleted reports whether the beat has fired this session.
func (m *Manager) BeatCompleted(id string) bool { return m.completed[id] }

// Log returns the bounded trigger log for the dev overlay.
func (m *Manager) Log() *TriggerLog { return m.log }

// Snapshot is the persisted story state.
type Snapshot struct {
	CompletedBeats []string            `json:"completed_beats"`
	HorrorLevel    float64             `json:"horror_level"`
	CharacterPath  types.CharacterPath `json:"character_path"`
	CurrentBeat    string              `json:"current_beat,omitempty"`
}

// State captures the story state for saving. Completed beats are reported
// in content order so snapshots are deterministic.
func (m *Manager) State() Snapshot {
	snap := Snapshot{
		HorrorLevel:   m.horror,
		CharacterPath: m.path,
		CurrentBeat:   m.current,
	}
	for _, beat := range m.beats {
		if m.completed[beat.ID] {
			snap.CompletedBeats = append(snap.CompletedBeats, beat.ID)
		}
	}
	return snap
}

// LoadState restores a snapshot. Beats listed as completed will not re-fire.
func (m *Manager) LoadState(snap Snapshot) {
	clear(m.completed)
	for _, id := range snap.CompletedBeats {
		m.completed[id] = true
	}
	m.horror = clampHorror(snap.HorrorLevel)
	if snap.CharacterPath != "" {
		m.path = snap.CharacterPath
	}
	m.current = snap.CurrentBeat
}

// Reset clears all narrative progress for a new session.
func (m *Manager) Reset() {
	clear(m.completed)
	m.horror = 0
	m.current = ""
	m.log.Clear()
}

func clampHorror(v float64) float64 {
	if v < HorrorMin {
		return HorrorMin
	}
	if v > HorrorMax {
		return HorrorMax
	}
	return v
}
