package core

import (
	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// AttackDirectionFromInput converts 2D movement input into an attack
// direction relative to self. input.X is strafe (right positive) and
// input.Y is forward; controlYaw is the camera yaw in degrees. Input within
// deadzone on both axes, or a world direction that falls between the
// cardinal cones, yields Omni.
func AttackDirectionFromInput(input geom.Vec3, controlYaw float64, self geom.Transform, deadzone, threshold float64) action.Direction {
	input.Z = 0
	if input.IsNearlyZero(deadzone) {
		return action.DirectionOmni
	}
	cam := geom.Transform{Yaw: controlYaw}
	world := cam.Forward().Scale(input.Y).Add(cam.Right().Scale(input.X)).Normalize()
	if world.IsNearlyZero(1e-4) {
		return action.DirectionOmni
	}
	fwd := self.Forward().Dot(world)
	right := self.Right().Dot(world)
	switch {
	case fwd > threshold:
		return action.DirectionForward
	case fwd < -threshold:
		return action.DirectionBackward
	case right > threshold:
		return action.DirectionRight
	case right < -threshold:
		return action.DirectionLeft
	}
	return action.DirectionOmni
}

// AttackDirection is AttackDirectionFromInput for the core's owner using
// the configured deadzone and threshold.
func (c *Core) AttackDirection(input geom.Vec3, controlYaw float64) action.Direction {
	if !combatant.IsValid(c.owner) {
		return action.DirectionOmni
	}
	return AttackDirectionFromInput(input, controlYaw, c.owner.Transform(), c.settings.InputDeadzone, c.settings.DirectionThreshold)
}
