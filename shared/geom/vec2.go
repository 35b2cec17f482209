// Package geom implements the 2D vector math the simulation runs on. The
// game's positions and velocities never leave the plane, so this is a Vec2
// rather than the 3D Vector3 an engine-oriented math package would carry.
package geom

import "math"

// Vec2 is a plain value type; all operations return a new Vec2 rather than
// mutating the receiver.
type Vec2 struct {
	X, Y float32
}

func New(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

func (v Vec2) Neg() Vec2 {
	return Vec2{-v.X, -v.Y}
}

func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

// MagnitudeSq avoids the sqrt when only a comparison is needed.
func (v Vec2) MagnitudeSq() float32 {
	return v.Dot(v)
}

func (v Vec2) Magnitude() float32 {
	return float32(math.Sqrt(float64(v.MagnitudeSq())))
}

// Normalize returns a unit vector in the same direction as v. The zero
// vector normalizes to itself rather than dividing by zero.
func (v Vec2) Normalize() Vec2 {
	m := v.Magnitude()
	if m == 0 {
		return v
	}
	return v.Scale(1.0 / m)
}

// Clamp clamps each component of v independently to [min, max].
func (v Vec2) Clamp(min, max Vec2) Vec2 {
	return Vec2{
		X: clampF(v.X, min.X, max.X),
		Y: clampF(v.Y, min.Y, max.Y),
	}
}

func clampF(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampF clamps a scalar to [min, max]; exported since callers outside this
// package clamp paddle X without a full Vec2 (e.g. sim.MovePaddle).
func ClampF(v, min, max float32) float32 {
	return clampF(v, min, max)
}

// Lerp linearly interpolates between a and b. t is not clamped to [0,1];
// callers (the snapshot interpolation driver) are expected to clamp the
// overstep fraction themselves if they want that guarantee.
func Lerp(a, b Vec2, t float32) Vec2 {
	return Vec2{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
	}
}
