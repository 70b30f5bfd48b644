// Package nav converts a destination point into per-frame movement steps.
// The navigator reports *desired* steps only; the orchestrator resolves
// them through the collision service and writes positions back, so the
// same navigator serves player tap-to-move and AI movement execution.
package nav

import (
	"math"

	"github.com/ahale/housebound/types"
)

// ArriveThreshold is the remaining distance below which a destination
// counts as reached.
const ArriveThreshold = 0.1

// Mode is the navigator's movement mode.
type Mode int

const (
	ModeIdle Mode = iota
	ModeMoveTo
)

// Step is the desired displacement for one frame, before collision
// resolution.
type Step struct {
	DX float64
	DZ float64
}

// Navigator tracks one character's destination and position. One instance
// per character for the whole session; on room transition the owner idles
// it and writes the new position.
type Navigator struct {
	mode    Mode
	pos     types.Vec2
	target  types.Vec2
	arrived bool
}

// New creates an idle navigator at the given position.
func New(pos types.Vec2) *Navigator {
	return &Navigator{pos: pos}
}

// MoveTo sets a destination. Movement happens on subsequent Update calls.
func (n *Navigator) MoveTo(x, z float64) {
	n.mode = ModeMoveTo
	n.target = types.Vec2{X: x, Z: z}
	n.arrived = false
}

// Idle cancels any pending destination.
func (n *Navigator) Idle() {
	n.mode = ModeIdle
	n.arrived = false
}

// Update returns the desired step toward the target for this frame, capped
// so the navigator never overshoots. speed is world units per second.
// Deterministic: identical dt sequences produce identical paths.
func (n *Navigator) Update(dt, speed float64) Step {
	if n.mode != ModeMoveTo || n.arrived {
		return Step{}
	}

	dx := n.target.X - n.pos.X
	dz := n.target.Z - n.pos.Z
	dist := math.Hypot(dx, dz)
	if dist <= ArriveThreshold {
		n.arrived = true
		return Step{}
	}

	max := speed * dt
	if max >= dist {
		return Step{DX: dx, DZ: dz}
	}
	return Step{DX: dx / dist * max, DZ: dz / dist * max}
}

// SetPosition writes the collision-resolved position back. Arrival is
// re-checked here so a clipped step still registers when it lands within
// the threshold.
func (n *Navigator) SetPosition(x, z float64) {
	n.pos = types.Vec2{X: x, Z: z}
	if n.mode == ModeMoveTo {
		if math.Hypot(n.target.X-x, n.target.Z-z) <= ArriveThreshold {
			n.arrived = true
		}
	}
}

// Position returns the current position.
func (n *Navigator) Position() types.Vec2 { return n.pos }

// Target returns the current destination (zero when idle).
func (n *Navigator) Target() types.Vec2 { return n.target }

// Mode returns the current movement mode.
func (n *Navigator) Mode() Mode { return n.mode }

// Arrived reports whether the last destination has been reached.
func (n *Navigator) Arrived() bool { return n.arrived }
