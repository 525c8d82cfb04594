package scene

import (
	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Node rotations are Euler angles applied intrinsically in X, Y, Z order: the rotation
// matrix is Rx·Ry·Rz and positive angles turn counter-clockwise about their axis.
// raymath's MatrixRotateXYZ and QuaternionToMatrix rotate the other way once fed to
// Vector3Transform, so the matrices are built here.

// EulerToQuaternion returns the unit quaternion for XYZ Euler angles in radians.
func EulerToQuaternion(e rl.Vector3) rl.Quaternion {
	c1, s1 := math32.Cos(e.X/2), math32.Sin(e.X/2)
	c2, s2 := math32.Cos(e.Y/2), math32.Sin(e.Y/2)
	c3, s3 := math32.Cos(e.Z/2), math32.Sin(e.Z/2)
	return rl.NewQuaternion(
		s1*c2*c3+c1*s2*s3,
		c1*s2*c3-s1*c2*s3,
		c1*c2*s3+s1*s2*c3,
		c1*c2*c3-s1*s2*s3,
	)
}

// QuaternionToEuler is the inverse of EulerToQuaternion. Near gimbal lock (|Y| = π/2) the
// Z angle is folded into X.
func QuaternionToEuler(q rl.Quaternion) rl.Vector3 {
	q = rl.QuaternionNormalize(q)
	m := RotationMatrix(q)
	// Row/column names follow the column-vector matrix: m13 is row 1, column 3.
	m11, m12, m13 := m.M0, m.M4, m.M8
	m22, m23 := m.M5, m.M9
	m32, m33 := m.M6, m.M10

	y := math32.Asin(clamp(m13, -1, 1))
	if math32.Abs(m13) < 0.9999999 {
		return rl.NewVector3(math32.Atan2(-m23, m33), y, math32.Atan2(-m12, m11))
	}
	return rl.NewVector3(math32.Atan2(m32, m22), y, 0)
}

// RotationMatrix returns the matrix rotating points the same way Vector3RotateByQuaternion
// does, laid out for Vector3Transform and MatrixMultiply.
func RotationMatrix(q rl.Quaternion) rl.Matrix {
	x, y, z, w := q.X, q.Y, q.Z, q.W
	m := rl.MatrixIdentity()
	m.M0 = 1 - 2*(y*y+z*z)
	m.M4 = 2 * (x*y - z*w)
	m.M8 = 2 * (x*z + y*w)
	m.M1 = 2 * (x*y + z*w)
	m.M5 = 1 - 2*(x*x+z*z)
	m.M9 = 2 * (y*z - x*w)
	m.M2 = 2 * (x*z - y*w)
	m.M6 = 2 * (y*z + x*w)
	m.M10 = 1 - 2*(x*x+y*y)
	return m
}

// RotationXYZ returns the rotation matrix for XYZ Euler angles in radians.
func RotationXYZ(e rl.Vector3) rl.Matrix {
	return RotationMatrix(EulerToQuaternion(e))
}

func clamp(v, lo, hi float32) float32 {
	return max(lo, min(v, hi))
}
