// Package navweb streams inertial navigator output to web clients over
// websockets. It is a consumer of the navigator, not part of the filter.
package navweb

// Port is the default port the navweb server listens on.
const Port = 8000

// NavData is the flat state snapshot streamed to web clients as JSON.
type NavData struct {
	T float64 // Seconds since the stream started

	PX, PY, PZ       float64 // Position, m, world frame
	VX, VY, VZ       float64 // Velocity, m/s, world frame
	Roll, Pitch, Yaw float64 // Small-angle orientation, rad

	QW, QX, QY, QZ float64 // Unit quaternion equivalent of the orientation

	// One-sigma uncertainties, from the covariance diagonal
	DPX, DPY, DPZ       float64
	DVX, DVY, DVZ       float64
	DRoll, DPitch, DYaw float64

	AX, AY, AZ float64 // Last accelerometer reading, m/s²
	GX, GY, GZ float64 // Last gyro reading, rad/s
}
