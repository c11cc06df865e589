package geom

import "math"

// Transform is a world-space pose: a location plus a yaw heading.
type Transform struct {
	Location Vec3
	// Yaw is the heading in degrees about +Z.
	Yaw float64
}

// Forward returns the unit forward vector for the transform's yaw.
func (t Transform) Forward() Vec3 {
	return YawForward(t.Yaw)
}

// Right returns the unit right vector for the transform's yaw.
//
// Postcondition: Right is Forward rotated -90° about +Z.
func (t Transform) Right() Vec3 {
	r := toRadians(t.Yaw)
	return Vec3{X: math.Sin(r), Y: -math.Cos(r)}
}

// YawForward returns the unit XY vector for yaw degrees.
func YawForward(yaw float64) Vec3 {
	r := toRadians(yaw)
	return Vec3{X: math.Cos(r), Y: math.Sin(r)}
}

// FacingDot returns dot(t.Forward(), normalize(target - t.Location)).
//
// Postcondition: result in [-1, 1]; 0 when target coincides with t.Location.
func (t Transform) FacingDot(target Vec3) float64 {
	return t.Forward().Dot(DirectionTo(t.Location, target))
}

// DirectionTo returns the normalized direction from `from` to `to`.
//
// Postcondition: returns Zero when the points coincide.
func DirectionTo(from, to Vec3) Vec3 {
	return to.Sub(from).Normalize()
}

// IsFacing reports whether the angle between t's forward vector and the
// direction to target is within toleranceDeg.
func IsFacing(t Transform, target Vec3, toleranceDeg float64) bool {
	dot := clamp(t.FacingDot(target), -1, 1)
	return toDegrees(math.Acos(dot)) <= toleranceDeg
}

// SignedAngle returns the signed horizontal angle in degrees, in (-180, 180],
// from t's forward vector to the direction toward target. Positive values are
// counter-clockwise (to the left).
func SignedAngle(t Transform, target Vec3) float64 {
	fwd := t.Forward()
	to := DirectionTo(t.Location, target)
	return toDegrees(math.Atan2(fwd.Cross(to).Z, fwd.Dot(to)))
}

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }

func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
