package math

import "math"

// Angle unit conversions.
const (
	Deg2Rad = math.Pi / 180
	Rad2Deg = 180 / math.Pi
)

// WrapPi normalizes an angle in radians into (-π, π].
// Inputs are expected within a few turns of the range; non-finite values
// are returned unchanged.
func WrapPi(a float64) float64 {
	if math.IsNaN(a) || math.IsInf(a, 0) {
		return a
	}
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// Repeat wraps v into [0, length).
func Repeat(v, length float64) float64 {
	r := v - math.Floor(v/length)*length
	if r >= length {
		return 0
	}
	return r
}

// DeltaAngleDeg returns the shortest signed difference b-a in degrees,
// in the range (-180, 180].
func DeltaAngleDeg(a, b float64) float64 {
	d := Repeat(b-a, 360)
	if d > 180 {
		d -= 360
	}
	return d
}

// LerpAngleDeg interpolates between two headings in degrees along the
// shorter arc. t is clamped to [0, 1].
func LerpAngleDeg(a, b, t float64) float64 {
	return a + DeltaAngleDeg(a, b)*Clamp01(t)
}

// Clamp01 clamps t to [0, 1].
func Clamp01(t float64) float64 {
	switch {
	case t < 0:
		return 0
	case t > 1:
		return 1
	default:
		return t
	}
}
