// Package sim generates synthetic accelerometer and gyroscope streams
// with known analytic ground truth, for exercising the inertial
// navigator without hardware.
package sim

import "github.com/athertop/gonav/nav"

// Situation defines a scenario: a fixed-rate stream of synchronized
// sensor samples plus the true kinematics they were generated from.
type Situation interface {
	// Duration returns the scenario length, s.
	Duration() float64
	// SampleRate returns the sampling rate, Hz.
	SampleRate() float64
	// NumSamples returns the number of samples in the scenario.
	NumSamples() int
	// Sample returns the i'th accelerometer (m/s²) and gyro (rad/s)
	// reading, noise included.
	Sample(i int) (accel, gyro nav.Vec3)
	// Truth returns the true position and velocity at time t.
	Truth(t float64) (pos, vel nav.Vec3)
}
