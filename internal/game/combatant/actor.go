// Package combatant defines the identity and situational snapshot of a
// participant in melee combat, as seen by the selection engine.
package combatant

import "github.com/cory-johannsen/motioncombat/internal/game/geom"

// Actor is a combatant reference. References may outlive the combatant they
// point to; Valid reports whether the combatant still exists.
type Actor interface {
	ID() string
	Transform() geom.Transform
	Valid() bool
}

// IsValid reports whether a is non-nil and still refers to a live combatant.
func IsValid(a Actor) bool {
	return a != nil && a.Valid()
}

// SameActor reports whether a and b refer to the same combatant.
func SameActor(a, b Actor) bool {
	if a == nil || b == nil {
		return false
	}
	return a.ID() == b.ID()
}

// Static is a fixed-pose Actor useful for scripted encounters and tests.
type Static struct {
	Name string
	Pose geom.Transform
	Gone bool
}

// ID returns the static actor's name.
func (s *Static) ID() string { return s.Name }

// Transform returns the fixed pose.
func (s *Static) Transform() geom.Transform { return s.Pose }

// Valid reports whether the actor has not been marked gone.
func (s *Static) Valid() bool { return s != nil && !s.Gone }

// Nearest returns the valid actor in candidates closest to from, or nil.
// Ties keep the earliest candidate.
func Nearest(from geom.Vec3, candidates []Actor) Actor {
	var best Actor
	bestDist := 0.0
	for _, c := range candidates {
		if !IsValid(c) {
			continue
		}
		d := geom.Dist(from, c.Transform().Location)
		if best == nil || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
