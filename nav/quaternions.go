package nav

import (
	"math"

	"github.com/westphae/quaternion"
)

// EulerToQuaternion converts a roll/pitch/yaw orientation, as produced
// by the navigator, to the corresponding unit quaternion using the
// standard half-angle composition. Pure and stateless; intended for
// consumers needing a non-singular attitude representation.
func EulerToQuaternion(euler Vec3) quaternion.Quaternion {
	cr := math.Cos(euler[0] / 2)
	sr := math.Sin(euler[0] / 2)
	cp := math.Cos(euler[1] / 2)
	sp := math.Sin(euler[1] / 2)
	cy := math.Cos(euler[2] / 2)
	sy := math.Sin(euler[2] / 2)

	return quaternion.Quaternion{
		W: cr*cp*cy + sr*sp*sy,
		X: sr*cp*cy - cr*sp*sy,
		Y: cr*sp*cy + sr*cp*sy,
		Z: cr*cp*sy - sr*sp*cy,
	}
}

// FromQuaternion recovers the roll/pitch/yaw angles corresponding to a
// unit quaternion. Pitch is clamped at the ±π/2 gimbal singularity.
func FromQuaternion(q quaternion.Quaternion) Vec3 {
	roll := math.Atan2(2*(q.W*q.X+q.Y*q.Z), 1-2*(q.X*q.X+q.Y*q.Y))

	sp := 2 * (q.W*q.Y - q.Z*q.X)
	var pitch float64
	if math.Abs(sp) >= 1 {
		pitch = math.Copysign(math.Pi/2, sp)
	} else {
		pitch = math.Asin(sp)
	}

	yaw := math.Atan2(2*(q.W*q.Z+q.X*q.Y), 1-2*(q.Y*q.Y+q.Z*q.Z))

	return Vec3{roll, pitch, yaw}
}
