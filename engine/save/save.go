// Package save defines the flat snapshot format a session round-trips
// through JSON.
package save

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ahale/housebound/types"
)

// Snapshot is the complete persisted state of a session. Everything else
// (locks, revealed goals, consumed pickups) is re-derived from the
// completed beats on restore.
type Snapshot struct {
	CompletedBeats  []string            `json:"completed_beats"`
	HorrorLevel     float64             `json:"horror_level"`
	CharacterPath   types.CharacterPath `json:"character_path"`
	DifficultyLevel float64             `json:"difficulty_level"`
	PlayerRoom      string              `json:"player_room"`
	PlayerPosition  types.Vec2          `json:"player_position"`
	Inventory       []string            `json:"inventory"`
}

// normalize replaces nil slices so a decoded snapshot behaves like a fresh
// one.
func (s *Snapshot) normalize() {
	if s.CompletedBeats == nil {
		s.CompletedBeats = []string{}
	}
	if s.Inventory == nil {
		s.Inventory = []string{}
	}
}

// Encode serializes a snapshot as indented JSON.
func Encode(snap Snapshot) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode save: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot, normalizing absent fields.
func Decode(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("decode save: %w", err)
	}
	snap.normalize()
	return snap, nil
}

// WriteFile writes a snapshot to disk.
func WriteFile(path string, snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	return nil
}

// ReadFile loads a snapshot from disk.
func ReadFile(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read save: %w", err)
	}
	return Decode(data)
}
