package sim

import (
	"math/rand"

	"github.com/athertop/gonav/nav"
)

// StaticSituation is a sensor at rest with gravity already removed:
// all-zero acceleration and rotation, plus Gaussian sensor noise. The
// truth is the origin throughout.
type StaticSituation struct {
	duration float64
	rate     float64

	accel []nav.Vec3
	gyro  []nav.Vec3
}

var _ Situation = (*StaticSituation)(nil)

// NewStaticSituation builds a zero-motion scenario of the given
// duration (s) at rate (Hz) with per-axis noise standard deviation.
func NewStaticSituation(duration, rate, noise float64, seed int64) *StaticSituation {
	s := &StaticSituation{duration: duration, rate: rate}

	rnd := rand.New(rand.NewSource(seed))
	n := int(duration * rate)
	s.accel = make([]nav.Vec3, n)
	s.gyro = make([]nav.Vec3, n)
	for i := 0; i < n; i++ {
		s.accel[i] = nav.Vec3{
			noise * rnd.NormFloat64(),
			noise * rnd.NormFloat64(),
			noise * rnd.NormFloat64(),
		}
		s.gyro[i] = nav.Vec3{
			noise * rnd.NormFloat64(),
			noise * rnd.NormFloat64(),
			noise * rnd.NormFloat64(),
		}
	}
	return s
}

func (s *StaticSituation) Duration() float64   { return s.duration }
func (s *StaticSituation) SampleRate() float64 { return s.rate }
func (s *StaticSituation) NumSamples() int     { return len(s.accel) }

func (s *StaticSituation) Sample(i int) (accel, gyro nav.Vec3) {
	return s.accel[i], s.gyro[i]
}

func (s *StaticSituation) Truth(t float64) (pos, vel nav.Vec3) {
	return nav.Vec3{}, nav.Vec3{}
}
