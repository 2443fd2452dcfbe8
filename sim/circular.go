package sim

import (
	"math"
	"math/rand"

	"github.com/athertop/gonav/nav"
)

// CircularSituation is uniform circular motion in the horizontal plane:
// radius r at angular rate omega, starting at (r, 0, 0). The
// accelerometer sees the centripetal acceleration, the gyro a constant
// z rate, both with additive Gaussian noise. All samples are generated
// up front from a seeded source, so a scenario replays identically.
type CircularSituation struct {
	duration float64
	rate     float64
	radius   float64
	omega    float64

	accel []nav.Vec3
	gyro  []nav.Vec3
}

var _ Situation = (*CircularSituation)(nil)

// NewCircularSituation builds a circular-motion scenario of the given
// duration (s) sampled at rate (Hz), with sensor noise of standard
// deviation noise on every axis.
func NewCircularSituation(duration, rate, radius, omega, noise float64, seed int64) *CircularSituation {
	s := &CircularSituation{
		duration: duration,
		rate:     rate,
		radius:   radius,
		omega:    omega,
	}

	rnd := rand.New(rand.NewSource(seed))
	n := int(duration * rate)
	s.accel = make([]nav.Vec3, n)
	s.gyro = make([]nav.Vec3, n)
	for i := 0; i < n; i++ {
		t := float64(i) / rate
		s.accel[i] = nav.Vec3{
			-radius*omega*omega*math.Cos(omega*t) + noise*rnd.NormFloat64(),
			-radius*omega*omega*math.Sin(omega*t) + noise*rnd.NormFloat64(),
			noise * rnd.NormFloat64(),
		}
		s.gyro[i] = nav.Vec3{
			noise * rnd.NormFloat64(),
			noise * rnd.NormFloat64(),
			omega + noise*rnd.NormFloat64(),
		}
	}
	return s
}

func (s *CircularSituation) Duration() float64   { return s.duration }
func (s *CircularSituation) SampleRate() float64 { return s.rate }
func (s *CircularSituation) NumSamples() int     { return len(s.accel) }

func (s *CircularSituation) Sample(i int) (accel, gyro nav.Vec3) {
	return s.accel[i], s.gyro[i]
}

func (s *CircularSituation) Truth(t float64) (pos, vel nav.Vec3) {
	pos = nav.Vec3{
		s.radius * math.Cos(s.omega*t),
		s.radius * math.Sin(s.omega*t),
		0,
	}
	vel = nav.Vec3{
		-s.radius * s.omega * math.Sin(s.omega*t),
		s.radius * s.omega * math.Cos(s.omega*t),
		0,
	}
	return pos, vel
}
