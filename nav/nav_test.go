package nav

import (
	"errors"
	"log"
	"math"
	"math/rand"
	"testing"
	"time"
)

func TestNewRejectsBadSampleRate(t *testing.T) {
	for _, rate := range []float64{0, -1, -100, math.NaN(), math.Inf(1)} {
		if _, err := New(rate); err == nil {
			log.Printf("Error: New(%v) should have failed\n", rate)
			t.Fail()
		}
	}
}

func TestNewDefaults(t *testing.T) {
	n, err := New(100)
	if err != nil {
		t.Fatal(err)
	}
	if n.dt != 0.01 {
		log.Printf("Error: dt was %f, should be 0.01\n", n.dt)
		t.Fail()
	}
	for i := 0; i < stateDim; i++ {
		if n.q.At(i, i) != defaultProcessNoise {
			log.Printf("Error: Q[%d,%d] was %f, should be %f\n", i, i, n.q.At(i, i), defaultProcessNoise)
			t.Fail()
		}
		for j := 0; j < stateDim; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if n.p.At(i, j) != want {
				log.Printf("Error: P[%d,%d] was %f, should be %f\n", i, j, n.p.At(i, j), want)
				t.Fail()
			}
		}
	}
	for i := 0; i < measDim; i++ {
		if n.r.At(i, i) != defaultMeasurementNoise {
			log.Printf("Error: R[%d,%d] was %f, should be %f\n", i, i, n.r.At(i, i), defaultMeasurementNoise)
			t.Fail()
		}
	}
	orientation, velocity, position := n.State()
	if orientation.norm() != 0 || velocity.norm() != 0 || position.norm() != 0 {
		log.Println("Error: initial state is not zero")
		t.Fail()
	}
}

// With exactly zero input the estimates must not drift at all: every
// innovation is proportional to the state, which starts at zero.
func TestStaticZeroInput(t *testing.T) {
	n, err := New(100)
	if err != nil {
		t.Fatal(err)
	}

	var zero Vec3
	var orientation, velocity, position Vec3
	for i := 0; i < 1000; i++ {
		orientation, velocity, position, err = n.ProcessSample(zero, zero)
		if err != nil {
			t.Fatal(err)
		}
	}
	if position.norm() > 1e-12 || velocity.norm() > 1e-12 || orientation.norm() > 1e-12 {
		log.Printf("Error: static input drifted: pos %v, vel %v, att %v\n", position, velocity, orientation)
		t.Fail()
	}
}

// One gravity-only step on a fresh navigator: no modeled orientation
// change, and position must not jump given dt=0.01.
func TestGravitySingleStep(t *testing.T) {
	n, err := New(100)
	if err != nil {
		t.Fatal(err)
	}

	orientation, velocity, position, err := n.ProcessSample(Vec3{0, 0, 9.81}, Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	if orientation.norm() > 1e-12 {
		log.Printf("Error: orientation moved on zero gyro: %v\n", orientation)
		t.Fail()
	}
	if position.norm() > 0.1 {
		log.Printf("Error: position jumped in one step: %v\n", position)
		t.Fail()
	}
	if velocity.norm() > 9.81 {
		log.Printf("Error: velocity exceeded measured acceleration: %v\n", velocity)
		t.Fail()
	}
}

func TestCovarianceStaysSymmetric(t *testing.T) {
	n, err := New(100)
	if err != nil {
		t.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(42))
	for i := 0; i < 500; i++ {
		accel := Vec3{rnd.NormFloat64() * 10, rnd.NormFloat64() * 10, rnd.NormFloat64() * 10}
		gyro := Vec3{rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64()}
		if _, _, _, err := n.ProcessSample(accel, gyro); err != nil {
			t.Fatal(err)
		}

		p := n.Covariance()
		for r := 0; r < stateDim; r++ {
			for c := r + 1; c < stateDim; c++ {
				if math.Abs(p.At(r, c)-p.At(c, r)) > 1e-12 {
					log.Printf("Error: P asymmetric at step %d: P[%d,%d]=%g, P[%d,%d]=%g\n",
						i, r, c, p.At(r, c), c, r, p.At(c, r))
					t.FailNow()
				}
			}
		}
	}
}

// Two navigators fed the identical sample sequence must produce
// bit-identical estimates.
func TestDeterminism(t *testing.T) {
	a, err := New(100)
	if err != nil {
		t.Fatal(err)
	}
	b, err := New(100)
	if err != nil {
		t.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		accel := Vec3{rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64() + 9.81}
		gyro := Vec3{rnd.NormFloat64() * 0.1, rnd.NormFloat64() * 0.1, rnd.NormFloat64() * 0.1}

		ao, av, ap, err := a.ProcessSample(accel, gyro)
		if err != nil {
			t.Fatal(err)
		}
		bo, bv, bp, err := b.ProcessSample(accel, gyro)
		if err != nil {
			t.Fatal(err)
		}
		if ao != bo || av != bv || ap != bp {
			log.Printf("Error: estimates diverged at step %d\n", i)
			t.FailNow()
		}
	}
}

// The Joseph-form update is algebraically the same filter; estimates
// must agree with the plain form to floating tolerance.
func TestJosephFormAgrees(t *testing.T) {
	plain, err := New(100)
	if err != nil {
		t.Fatal(err)
	}
	joseph, err := New(100, WithJosephForm())
	if err != nil {
		t.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(11))
	for i := 0; i < 500; i++ {
		accel := Vec3{rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64()}
		gyro := Vec3{rnd.NormFloat64() * 0.1, rnd.NormFloat64() * 0.1, rnd.NormFloat64() * 0.1}

		po, pv, pp, err := plain.ProcessSample(accel, gyro)
		if err != nil {
			t.Fatal(err)
		}
		jo, jv, jp, err := joseph.ProcessSample(accel, gyro)
		if err != nil {
			t.Fatal(err)
		}
		for k := 0; k < 3; k++ {
			if math.Abs(po[k]-jo[k]) > 1e-9 || math.Abs(pv[k]-jv[k]) > 1e-9 || math.Abs(pp[k]-jp[k]) > 1e-9 {
				log.Printf("Error: Joseph form diverged from plain form at step %d\n", i)
				t.FailNow()
			}
		}
	}
}

func TestNoiseOptions(t *testing.T) {
	n, err := New(100, WithProcessNoise(0.5), WithMeasurementNoise(2))
	if err != nil {
		t.Fatal(err)
	}
	if n.q.At(4, 4) != 0.5 {
		log.Printf("Error: Q was %f, should be 0.5\n", n.q.At(4, 4))
		t.Fail()
	}
	if n.r.At(2, 2) != 2 {
		log.Printf("Error: R was %f, should be 2\n", n.r.At(2, 2))
		t.Fail()
	}
}

func TestNonFiniteInput(t *testing.T) {
	n, err := New(100)
	if err != nil {
		t.Fatal(err)
	}

	bad := []struct {
		accel, gyro Vec3
	}{
		{Vec3{math.NaN(), 0, 0}, Vec3{}},
		{Vec3{}, Vec3{0, math.Inf(1), 0}},
		{Vec3{0, 0, math.Inf(-1)}, Vec3{}},
	}
	for _, in := range bad {
		_, _, _, err := n.ProcessSample(in.accel, in.gyro)
		var nerr *NumericalError
		if !errors.As(err, &nerr) {
			log.Printf("Error: accel %v gyro %v returned %v, want *NumericalError\n", in.accel, in.gyro, err)
			t.Fail()
		}
	}
}

// Per-sample processing must stay well under the 10 ms inter-sample
// budget at 100 Hz; 1000 calls is the regression guard.
func TestProcessSampleTiming(t *testing.T) {
	n, err := New(100)
	if err != nil {
		t.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(3))
	start := time.Now()
	for i := 0; i < 1000; i++ {
		accel := Vec3{rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64()}
		gyro := Vec3{rnd.NormFloat64(), rnd.NormFloat64(), rnd.NormFloat64()}
		if _, _, _, err := n.ProcessSample(accel, gyro); err != nil {
			t.Fatal(err)
		}
	}
	perSample := time.Since(start) / 1000
	log.Printf("ProcessSample: %v per call\n", perSample)
	if perSample > 10*time.Millisecond {
		log.Printf("Error: %v per call exceeds the 10 ms budget\n", perSample)
		t.Fail()
	}
}

func BenchmarkProcessSample(b *testing.B) {
	n, err := New(100)
	if err != nil {
		b.Fatal(err)
	}
	accel := Vec3{0.1, -0.2, 9.81}
	gyro := Vec3{0.01, 0.02, -0.01}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, _, err := n.ProcessSample(accel, gyro); err != nil {
			b.Fatal(err)
		}
	}
}
