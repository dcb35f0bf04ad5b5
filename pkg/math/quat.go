package math

import "math"

// Quat represents a quaternion for 3D rotations.
// Components are stored as X, Y, Z, W where W is the scalar part.
type Quat struct {
	X, Y, Z, W float64
}

// QuatFromAxisAngle creates a quaternion from axis-angle rotation.
// axis should be normalized, angle is in radians.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(angle / 2),
	}
}

// QuatFromYaw returns the rotation about +Y by yawDeg degrees.
func QuatFromYaw(yawDeg float64) Quat {
	return QuatFromAxisAngle(Up, yawDeg*Deg2Rad)
}

// Rotate applies the rotation to v.
func (q Quat) Rotate(v Vec3) Vec3 {
	// v' = v + 2w(u×v) + 2u×(u×v), u = (x,y,z)
	ux, uy, uz := q.X, q.Y, q.Z
	cx := uy*v.Z - uz*v.Y
	cy := uz*v.X - ux*v.Z
	cz := ux*v.Y - uy*v.X
	ccx := uy*cz - uz*cy
	ccy := uz*cx - ux*cz
	ccz := ux*cy - uy*cx
	return Vec3{
		v.X + 2*(q.W*cx+ccx),
		v.Y + 2*(q.W*cy+ccy),
		v.Z + 2*(q.W*cz+ccz),
	}
}
