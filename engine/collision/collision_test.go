package collision

import (
	"math"
	"testing"

	"github.com/ahale/housebound/types"
)

func testRoom() *Service {
	s := New()
	s.SetRoomBounds(types.Bounds{MinX: 0, MaxX: 10, MinZ: 0, MaxZ: 10})
	return s
}

func wall(id string, minX, maxX, minZ, maxZ float64) types.Collider {
	return types.Collider{
		ID:     id,
		Kind:   "wall",
		Bounds: types.Bounds{MinX: minX, MaxX: maxX, MinZ: minZ, MaxZ: maxZ},
		Solid:  true,
	}
}

func TestCheckMovement_OpenFloor(t *testing.T) {
	s := testRoom()
	res := s.CheckMovement(1, 1, 2, 2, 0.3)
	if res.Blocked {
		t.Fatal("expected unobstructed move")
	}
	if res.X != 2 || res.Z != 2 {
		t.Fatalf("expected (2,2), got (%v,%v)", res.X, res.Z)
	}
}

func TestCheckMovement_SlidesAlongWall(t *testing.T) {
	s := testRoom()
	// Wall spanning z=5..6 across most of the room.
	s.AddProp(wall("w1", 0, 8, 5, 6))

	// Diagonal approach into the wall: x movement must survive.
	res := s.CheckMovement(2, 4.5, 3, 5.2, 0.3)
	if !res.Blocked {
		t.Fatal("expected blocked move")
	}
	if res.X != 3 || res.Z != 4.5 {
		t.Fatalf("expected slide to (3,4.5), got (%v,%v)", res.X, res.Z)
	}
}

func TestCheckMovement_SlidesAlongZ(t *testing.T) {
	s := testRoom()
	s.AddProp(wall("w1", 5, 6, 0, 8))

	res := s.CheckMovement(4.5, 2, 5.2, 3, 0.3)
	if !res.Blocked {
		t.Fatal("expected blocked move")
	}
	if res.X != 4.5 || res.Z != 3 {
		t.Fatalf("expected slide to (4.5,3), got (%v,%v)", res.X, res.Z)
	}
}

func TestCheckMovement_CornerSlidesOnFreeAxis(t *testing.T) {
	s := testRoom()
	s.AddProp(wall("w1", 4, 6, 4, 6))

	// Diagonal into the corner from outside the z band: the x component is
	// geometrically clear and must survive as a slide.
	res := s.CheckMovement(3.5, 3.5, 4.2, 4.2, 0.3)
	if !res.Blocked {
		t.Fatal("expected blocked flag")
	}
	if res.X != 4.2 || res.Z != 3.5 {
		t.Fatalf("expected slide to (4.2,3.5), got (%v,%v)", res.X, res.Z)
	}
}

func TestCheckMovement_CornerDoesNotTeleport(t *testing.T) {
	s := testRoom()
	s.AddProp(wall("w1", 4, 6, 4, 6))

	// Head-on into the corner from inside both axis bands: the direct move
	// and both single-axis slides all clip the box, so stay put.
	res := s.CheckMovement(3.75, 3.75, 4.2, 4.2, 0.3)
	if res.X != 3.75 || res.Z != 3.75 {
		t.Fatalf("expected to stay at (3.75,3.75), got (%v,%v)", res.X, res.Z)
	}
	if !res.Blocked {
		t.Fatal("expected blocked flag")
	}
}

func TestCheckMovement_RejectsOutsideRoomBounds(t *testing.T) {
	s := testRoom()
	res := s.CheckMovement(9, 5, 11, 5, 0.3)
	if res.X != 9 {
		t.Fatalf("expected x clamp at 9, got %v", res.X)
	}
}

// Sliding property: for a wall approached at any non-perpendicular angle,
// at least one axis of the displacement survives.
func TestCheckMovement_NeverSticksOnWall(t *testing.T) {
	s := testRoom()
	s.AddProp(wall("w1", 0, 10, 5, 6))

	for _, angle := range []float64{0.2, 0.5, 0.9, 1.2, 2.1, 2.8} {
		fromX, fromZ := 5.0, 4.5
		toX := fromX + 0.5*math.Cos(angle)
		toZ := fromZ + 0.5*math.Sin(angle)
		res := s.CheckMovement(fromX, fromZ, toX, toZ, 0.3)
		if res.X == fromX && res.Z == fromZ {
			t.Errorf("angle %.1f: character fully stuck", angle)
		}
	}
}

func TestRemoveProp_Idempotent(t *testing.T) {
	s := testRoom()
	s.AddProp(wall("w1", 1, 2, 1, 2))
	s.AddProp(wall("w2", 3, 4, 3, 4))

	s.RemoveProp("w1")
	s.RemoveProp("w1")      // second removal: no-op
	s.RemoveProp("unknown") // unknown id: no-op

	if s.Count() != 1 {
		t.Fatalf("expected 1 collider, got %d", s.Count())
	}
	if _, ok := s.Get("w2"); !ok {
		t.Fatal("w2 should survive unrelated removals")
	}
}

func TestFindNearestInteractable(t *testing.T) {
	s := testRoom()
	s.AddProp(types.Collider{
		ID:           "fridge",
		Bounds:       types.Bounds{MinX: 1, MaxX: 2, MinZ: 1, MaxZ: 2},
		Solid:        true,
		Interactable: true,
	})
	s.AddProp(types.Collider{
		ID:           "note",
		Bounds:       types.Bounds{MinX: 8, MaxX: 8.5, MinZ: 8, MaxZ: 8.5},
		Interactable: true,
	})

	got := s.FindNearestInteractable(2.5, 1.5, 1.5)
	if got == nil || got.ID != "fridge" {
		t.Fatalf("expected fridge, got %+v", got)
	}

	// Non-solid interactables are still discoverable.
	got = s.FindNearestInteractable(8.2, 7.8, 1.0)
	if got == nil || got.ID != "note" {
		t.Fatalf("expected note, got %+v", got)
	}
}

func TestFindNearestInteractable_EmptyAndOutOfRange(t *testing.T) {
	s := testRoom()
	if got := s.FindNearestInteractable(5, 5, 2); got != nil {
		t.Fatalf("empty set: expected nil, got %+v", got)
	}

	s.AddProp(types.Collider{
		ID:           "far",
		Bounds:       types.Bounds{MinX: 9, MaxX: 9.5, MinZ: 9, MaxZ: 9.5},
		Interactable: true,
	})
	if got := s.FindNearestInteractable(1, 1, 2); got != nil {
		t.Fatalf("out of range: expected nil, got %+v", got)
	}
}

func TestFindNearestInteractable_StableTieBreak(t *testing.T) {
	s := testRoom()
	// Two interactables equidistant from the query point; insertion order wins.
	s.AddProp(types.Collider{
		ID:           "left",
		Bounds:       types.Bounds{MinX: 3, MaxX: 4, MinZ: 5, MaxZ: 6},
		Interactable: true,
	})
	s.AddProp(types.Collider{
		ID:           "right",
		Bounds:       types.Bounds{MinX: 6, MaxX: 7, MinZ: 5, MaxZ: 6},
		Interactable: true,
	})

	got := s.FindNearestInteractable(5, 5.5, 2)
	if got == nil || got.ID != "left" {
		t.Fatalf("expected insertion-order winner 'left', got %+v", got)
	}
}

func TestCheckMovement_EmptySetIsNoChange(t *testing.T) {
	s := New() // no bounds, no colliders
	res := s.CheckMovement(0, 0, 3, 3, 0.5)
	if res.Blocked || res.X != 3 || res.Z != 3 {
		t.Fatalf("expected pass-through on empty set, got %+v", res)
	}
}
