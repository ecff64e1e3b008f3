package zone

import "math"

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v scaled by s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{X: v.X * s, Y: v.Y * s} }

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Normalize returns a unit vector in the direction of v, or the zero
// vector if v is (near) zero.
func (v Vec2) Normalize() Vec2 {
	l := v.Len()
	if l < 1e-9 {
		return Vec2{}
	}
	return Vec2{X: v.X / l, Y: v.Y / l}
}

// Distance returns the distance between two points.
func Distance(a, b Vec2) float64 {
	return a.Sub(b).Len()
}

// Clamp clamps v's components to [min, max) on each axis.
func (v Vec2) Clamp(min, max Vec2) Vec2 {
	return Vec2{X: clampf(v.X, min.X, max.X), Y: clampf(v.Y, min.Y, max.Y)}
}

func clampf(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x >= max {
		return max - 0.1
	}
	return x
}

// Perp returns the vector rotated 90 degrees counter-clockwise.
func (v Vec2) Perp() Vec2 { return Vec2{X: -v.Y, Y: v.X} }

// DirectionVec returns the unit vector for an angle in radians.
func DirectionVec(rotation float64) Vec2 {
	return Vec2{X: math.Cos(rotation), Y: math.Sin(rotation)}
}

// AngleOf returns the angle of v in radians via atan2(y, x).
func AngleOf(v Vec2) float64 { return math.Atan2(v.Y, v.X) }
