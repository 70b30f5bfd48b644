package tui

import (
	"time"

	"github.com/ahale/housebound/types"
)

// keyHold is how long a single key press counts as held movement. Terminals
// only deliver discrete presses, so a press drives the character for a few
// frames and key-repeat sustains it.
const keyHold = time.Millisecond * 180

// Input adapts discrete key presses into the polled per-frame state the
// session expects. Bubbletea delivers key messages and ticks on one
// goroutine, so no locking is needed.
type Input struct {
	moveX, moveZ float64
	heldUntil    time.Time
	interact     bool
	tap          *types.Vec2
}

// NewInput creates an empty input adapter.
func NewInput() *Input {
	return &Input{}
}

// Poll is the session's input provider. Interact and tap are consumed by
// the frame that reads them.
func (k *Input) Poll() types.InputState {
	st := types.InputState{}
	if time.Now().Before(k.heldUntil) {
		st.MoveX = k.moveX
		st.MoveZ = k.moveZ
	}
	if k.interact {
		st.Interact = true
		k.interact = false
	}
	if k.tap != nil {
		st.Tap = k.tap
		k.tap = nil
	}
	return st
}

func (k *Input) press(dx, dz float64) {
	k.moveX = dx
	k.moveZ = dz
	k.heldUntil = time.Now().Add(keyHold)
	k.tap = nil
}

func (k *Input) pressInteract() {
	k.interact = true
}

func (k *Input) clear() {
	k.heldUntil = time.Time{}
	k.interact = false
	k.tap = nil
}
