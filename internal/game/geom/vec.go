// Package geom provides the small amount of 3D vector math the combat core
// needs: distances, dot products, safe normalization, and facing tests.
//
// The coordinate convention is Z-up; yaw rotates about Z, measured in degrees
// counter-clockwise from +X.
package geom

import "math"

// nearlyZero is the squared length below which a vector normalizes to zero.
const nearlyZero = 1e-8

// Vec3 is a 3D vector.
type Vec3 struct {
	X, Y, Z float64
}

// Zero is the zero vector.
var Zero = Vec3{}

// V returns Vec3{x, y, z}.
func V(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

// Add returns v+o.
func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }

// Sub returns v-o.
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }

// Scale returns v*s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

// Cross returns the cross product v×o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Len returns the Euclidean length of v.
func (v Vec3) Len() float64 { return math.Sqrt(v.Dot(v)) }

// Len2D returns the length of v projected onto the XY plane.
func (v Vec3) Len2D() float64 { return math.Hypot(v.X, v.Y) }

// Normalize returns v scaled to unit length.
//
// Postcondition: returns Zero when v is too short to normalize safely.
func (v Vec3) Normalize() Vec3 {
	sq := v.Dot(v)
	if sq < nearlyZero {
		return Zero
	}
	return v.Scale(1 / math.Sqrt(sq))
}

// IsNearlyZero reports whether v is within tolerance of the zero vector on every axis.
func (v Vec3) IsNearlyZero(tolerance float64) bool {
	return math.Abs(v.X) <= tolerance && math.Abs(v.Y) <= tolerance && math.Abs(v.Z) <= tolerance
}

// Dist returns the 3D distance between a and b.
func Dist(a, b Vec3) float64 { return a.Sub(b).Len() }

// Dist2D returns the planar (XY-only) distance between a and b, ignoring height.
func Dist2D(a, b Vec3) float64 { return a.Sub(b).Len2D() }
