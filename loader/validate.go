package loader

import (
	"fmt"
	"strings"

	"github.com/ahale/housebound/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

// validate checks the compiled stage for referential integrity. A stage
// with dangling references cannot start; the game never silently defaults
// around broken content.
func validate(stage *types.StageDef) error {
	ve := &ValidationError{}

	if stage.Title == "" {
		ve.Errors = append(ve.Errors, "Stage.title is required")
	}
	if len(stage.Rooms) == 0 {
		ve.Errors = append(ve.Errors, "at least one Room is required")
	}

	locks := map[string]bool{}
	props := map[string]string{} // prop id -> room id
	items := map[string]bool{}   // item ids obtainable from props
	for id, room := range stage.Rooms {
		for _, exit := range room.Exits {
			if _, ok := stage.Rooms[exit.TargetRoom]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf("room %s: exit targets unknown room %q", id, exit.TargetRoom))
			}
			if !room.Bounds.Contains(exit.Position.X, exit.Position.Z) {
				ve.Warnings = append(ve.Warnings, fmt.Sprintf("room %s: exit to %s sits outside the room bounds", id, exit.TargetRoom))
			}
			if exit.LockID != "" {
				locks[exit.LockID] = true
			}
		}
		for _, prop := range room.Props {
			if other, dup := props[prop.ID]; dup {
				ve.Errors = append(ve.Errors, fmt.Sprintf("prop %q defined in both %s and %s", prop.ID, other, id))
			}
			props[prop.ID] = id
			if prop.ItemDrop != "" {
				items[prop.ItemDrop] = true
			}
		}
	}

	for _, role := range []struct {
		name string
		def  types.CharacterDef
	}{{"player", stage.Player}, {"opponent", stage.Opponent}} {
		if role.def.ID == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("no %s character defined", role.name))
			continue
		}
		if _, ok := stage.Rooms[role.def.SpawnRoom]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("character %s: spawn room %q does not exist", role.def.ID, role.def.SpawnRoom))
		}
	}

	goalIDs := map[string]bool{}
	beatIDs := map[string]bool{}
	for _, beat := range stage.Beats {
		if beatIDs[beat.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate beat %q", beat.ID))
		}
		beatIDs[beat.ID] = true
	}
	for _, goal := range stage.Goals {
		if goalIDs[goal.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate goal %q", goal.ID))
		}
		goalIDs[goal.ID] = true
	}

	for _, goal := range stage.Goals {
		if goal.Character != stage.Player.ID && goal.Character != stage.Opponent.ID {
			ve.Errors = append(ve.Errors, fmt.Sprintf("goal %s: unknown character %q", goal.ID, goal.Character))
		}
		if _, ok := stage.Rooms[goal.Room]; !ok {
			ve.Errors = append(ve.Errors, fmt.Sprintf("goal %s: unknown room %q", goal.ID, goal.Room))
		}
		if goal.Prop != "" {
			if room, ok := props[goal.Prop]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf("goal %s: unknown prop %q", goal.ID, goal.Prop))
			} else if room != goal.Room {
				ve.Errors = append(ve.Errors, fmt.Sprintf("goal %s: prop %q is in room %s, not %s", goal.ID, goal.Prop, room, goal.Room))
			}
		}
		if goal.RequiredBeat != "" && !beatIDs[goal.RequiredBeat] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("goal %s: unknown required beat %q", goal.ID, goal.RequiredBeat))
		}
		if goal.RequiredItem != "" && !items[goal.RequiredItem] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf("goal %s: no prop drops item %q", goal.ID, goal.RequiredItem))
		}
	}

	for _, beat := range stage.Beats {
		if beat.Trigger == types.TriggerSceneEnter {
			if _, ok := stage.Rooms[beat.Scene]; !ok {
				ve.Errors = append(ve.Errors, fmt.Sprintf("beat %s: unknown scene %q", beat.ID, beat.Scene))
			}
		}
		for _, eff := range beat.Effects {
			switch eff.Kind {
			case types.EffectUnlock, types.EffectLock:
				if !locks[eff.LockID] {
					ve.Errors = append(ve.Errors, fmt.Sprintf("beat %s: no exit carries lock %q", beat.ID, eff.LockID))
				}
			case types.EffectRevealGoal:
				if !goalIDs[eff.GoalID] {
					ve.Errors = append(ve.Errors, fmt.Sprintf("beat %s: reveals unknown goal %q", beat.ID, eff.GoalID))
				}
			}
		}
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
