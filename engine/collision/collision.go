// Package collision answers spatial queries against a room-scoped set of
// axis-aligned colliders: movement resolution with wall sliding, and
// proximity discovery of interactables.
package collision

import (
	"math"

	"github.com/ahale/housebound/types"
)

// Resolution is the collision-resolved destination for one movement request.
type Resolution struct {
	X       float64
	Z       float64
	Blocked bool // true if either axis was clipped
}

// Service holds the active collider set for one room. It is rebuilt on room
// transition; all methods are safe on an empty set.
type Service struct {
	bounds    types.Bounds
	hasBounds bool

	colliders map[string]types.Collider
	order     []string // insertion order, for stable scans
}

// New creates an empty collision service.
func New() *Service {
	return &Service{
		colliders: make(map[string]types.Collider),
	}
}

// SetRoomBounds defines the outer movement envelope. Movement outside it is
// always rejected.
func (s *Service) SetRoomBounds(b types.Bounds) {
	s.bounds = b
	s.hasBounds = true
}

// AddProp inserts or replaces a collider.
func (s *Service) AddProp(c types.Collider) {
	if _, exists := s.colliders[c.ID]; !exists {
		s.order = append(s.order, c.ID)
	}
	s.colliders[c.ID] = c
}

// RemoveProp deletes a collider. Removing an unknown id is a no-op.
func (s *Service) RemoveProp(id string) {
	if _, exists := s.colliders[id]; !exists {
		return
	}
	delete(s.colliders, id)
	for i, cid := range s.order {
		if cid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// Get returns the collider with the given id.
func (s *Service) Get(id string) (types.Collider, bool) {
	c, ok := s.colliders[id]
	return c, ok
}

// Count returns the number of active colliders.
func (s *Service) Count() int {
	return len(s.colliders)
}

// CheckMovement resolves a straight-line movement request for a character of
// the given radius. If the full move collides, each axis is attempted
// independently so a character sliding along a wall keeps moving in the
// unobstructed axis instead of stopping dead.
func (s *Service) CheckMovement(fromX, fromZ, toX, toZ, radius float64) Resolution {
	if s.clear(toX, toZ, radius) {
		return Resolution{X: toX, Z: toZ}
	}

	// X-only slide.
	if s.clear(toX, fromZ, radius) {
		return Resolution{X: toX, Z: fromZ, Blocked: true}
	}

	// Z-only slide.
	if s.clear(fromX, toZ, radius) {
		return Resolution{X: fromX, Z: toZ, Blocked: true}
	}

	return Resolution{X: fromX, Z: fromZ, Blocked: true}
}

// clear reports whether a character disc at (x,z) fits inside the room
// bounds without intersecting any solid collider.
func (s *Service) clear(x, z, radius float64) bool {
	if s.hasBounds {
		if x-radius < s.bounds.MinX || x+radius > s.bounds.MaxX ||
			z-radius < s.bounds.MinZ || z+radius > s.bounds.MaxZ {
			return false
		}
	}
	for _, id := range s.order {
		c := s.colliders[id]
		if !c.Solid {
			continue
		}
		if discOverlapsBox(x, z, radius, c.Bounds) {
			return false
		}
	}
	return true
}

// FindNearestInteractable returns the closest interactable collider whose
// own interaction radius (or maxRadius, whichever applies) covers the query
// point. Ties resolve to the earliest-inserted collider. Returns nil when
// nothing is in range.
func (s *Service) FindNearestInteractable(x, z, maxRadius float64) *types.Collider {
	var best *types.Collider
	bestDist := math.Inf(1)

	for _, id := range s.order {
		c := s.colliders[id]
		if !c.Interactable {
			continue
		}
		reach := maxRadius
		if c.InteractionRadius > reach {
			reach = c.InteractionRadius
		}
		d := distanceToBox(x, z, c.Bounds)
		if d <= reach && d < bestDist {
			cc := c
			best = &cc
			bestDist = d
		}
	}
	return best
}

// discOverlapsBox tests a circle of the given radius against an AABB.
func discOverlapsBox(x, z, radius float64, b types.Bounds) bool {
	return distanceToBox(x, z, b) < radius
}

// distanceToBox returns the distance from a point to the nearest edge of the
// box, zero if the point is inside.
func distanceToBox(x, z float64, b types.Bounds) float64 {
	dx := math.Max(math.Max(b.MinX-x, 0), x-b.MaxX)
	dz := math.Max(math.Max(b.MinZ-z, 0), z-b.MaxZ)
	return math.Hypot(dx, dz)
}
