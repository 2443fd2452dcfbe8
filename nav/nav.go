// Package nav implements an extended Kalman filter that fuses raw
// accelerometer and gyroscope samples into a running estimate of
// position, velocity and orientation.
//
// The measurement model is deliberately simple: the accelerometer is
// treated as a direct, noisy observation of velocity and the gyroscope
// as a direct, noisy observation of orientation, with no gravity
// compensation and no body-to-world rotation of the specific force.
// Orientation is a small-angle roll/pitch/yaw proxy, not a full attitude
// representation. Estimates drift under sustained acceleration; this is
// a known limitation of the model, not a bug.
package nav

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	stateDim = 9 // position, velocity, orientation; 3 components each
	measDim  = 6 // accelerometer + gyroscope

	defaultProcessNoise     = 0.01
	defaultMeasurementNoise = 0.1
)

// Vec3 is a 3-vector of float64, used for positions (m), velocities
// (m/s), orientations (rad), accelerometer readings (m/s²) and gyro
// rates (rad/s).
type Vec3 [3]float64

// norm returns the Euclidean length of the vector.
func (v Vec3) norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

func (v Vec3) finite() bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// ErrSampleRate is returned by New for a non-positive sampling rate.
var ErrSampleRate = errors.New("nav: sampling rate must be positive")

// NumericalError reports a numerical failure inside ProcessSample:
// non-finite sensor input or a singular innovation covariance. After a
// NumericalError the navigator's state and covariance are unspecified;
// callers should discard the instance and construct a new one.
type NumericalError struct {
	Op  string // the failing step, "predict" or "update"
	Err error
}

func (e *NumericalError) Error() string {
	return fmt.Sprintf("nav: numerical instability in %s: %v", e.Op, e.Err)
}

func (e *NumericalError) Unwrap() error { return e.Err }

// Option configures an InertialNavigator at construction.
type Option func(*InertialNavigator)

// WithProcessNoise overrides the default process noise variance of 0.01
// applied to every state dimension.
func WithProcessNoise(v float64) Option {
	return func(n *InertialNavigator) { n.qVar = v }
}

// WithMeasurementNoise overrides the default measurement noise variance
// of 0.1 applied to every measurement dimension.
func WithMeasurementNoise(v float64) Option {
	return func(n *InertialNavigator) { n.rVar = v }
}

// WithJosephForm switches the covariance update from the plain
// (I-KH)P form to the symmetric Joseph form. Algebraically identical,
// numerically better behaved when P becomes ill-conditioned.
func WithJosephForm() Option {
	return func(n *InertialNavigator) { n.joseph = true }
}

// InertialNavigator is a 9-state extended Kalman filter over position,
// velocity and orientation, updated once per synchronized
// accelerometer/gyroscope sample at a fixed rate.
//
// The navigator mutates its state and covariance in place and carries no
// internal locking: each ProcessSample call reads the state left by the
// previous one, so calls must be serialized by a single owner.
type InertialNavigator struct {
	dt     float64
	joseph bool

	qVar, rVar float64

	x *mat.VecDense  // state: position[0:3], velocity[3:6], orientation[6:9]
	p *mat.Dense     // error covariance
	q *mat.DiagDense // process noise covariance, fixed
	r *mat.DiagDense // measurement noise covariance, fixed
	f *mat.Dense     // state transition, fixed since dt is fixed
	h *mat.Dense     // measurement matrix, fixed
	i *mat.Dense     // 9x9 identity

	// Scratch space reused across calls; ProcessSample allocates nothing
	// on the steady path.
	fx   *mat.VecDense
	hx   *mat.VecDense
	y    *mat.VecDense
	ky   *mat.VecDense
	pf   *mat.Dense // F·P and other 9x9 intermediates
	pfft *mat.Dense
	pht  *mat.Dense // P·Hᵀ, 9x6
	s    *mat.Dense // innovation covariance, 6x6
	kt   *mat.Dense // Kᵀ, 6x9
	kh   *mat.Dense // K·H, 9x9
	krkt *mat.Dense // K·R·Kᵀ, Joseph form only
	kr   *mat.Dense // K·R, 9x6, Joseph form only
}

// New constructs a navigator for samples arriving at the given rate in
// Hz. State starts at zero with identity covariance; process and
// measurement noise default to diag(0.01) and diag(0.1).
func New(sampleRate float64, opts ...Option) (*InertialNavigator, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("%w: got %v Hz", ErrSampleRate, sampleRate)
	}

	n := &InertialNavigator{
		dt:   1 / sampleRate,
		qVar: defaultProcessNoise,
		rVar: defaultMeasurementNoise,
	}
	for _, opt := range opts {
		opt(n)
	}

	n.x = mat.NewVecDense(stateDim, nil)

	n.p = eye(stateDim)
	n.i = eye(stateDim)

	qd := make([]float64, stateDim)
	for i := range qd {
		qd[i] = n.qVar
	}
	n.q = mat.NewDiagDense(stateDim, qd)

	rd := make([]float64, measDim)
	for i := range rd {
		rd[i] = n.rVar
	}
	n.r = mat.NewDiagDense(measDim, rd)

	// Position advances by velocity; velocity and orientation have no
	// modeled autonomous dynamics.
	n.f = eye(stateDim)
	for i := 0; i < 3; i++ {
		n.f.Set(i, i+3, n.dt)
	}

	// Accelerometer observes the velocity block, gyro the orientation
	// block, both directly.
	n.h = mat.NewDense(measDim, stateDim, nil)
	for i := 0; i < 3; i++ {
		n.h.Set(i, i+3, 1)
		n.h.Set(i+3, i+6, 1)
	}

	n.fx = mat.NewVecDense(stateDim, nil)
	n.hx = mat.NewVecDense(measDim, nil)
	n.y = mat.NewVecDense(measDim, nil)
	n.ky = mat.NewVecDense(stateDim, nil)
	n.pf = mat.NewDense(stateDim, stateDim, nil)
	n.pfft = mat.NewDense(stateDim, stateDim, nil)
	n.pht = mat.NewDense(stateDim, measDim, nil)
	n.s = mat.NewDense(measDim, measDim, nil)
	n.kt = mat.NewDense(measDim, stateDim, nil)
	n.kh = mat.NewDense(stateDim, stateDim, nil)
	if n.joseph {
		n.kr = mat.NewDense(stateDim, measDim, nil)
		n.krkt = mat.NewDense(stateDim, stateDim, nil)
	}

	return n, nil
}

// SampleRate returns the sampling rate the navigator was built for, Hz.
func (n *InertialNavigator) SampleRate() float64 { return 1 / n.dt }

// State returns the current estimate split into its orientation,
// velocity and position components.
func (n *InertialNavigator) State() (orientation, velocity, position Vec3) {
	for i := 0; i < 3; i++ {
		position[i] = n.x.AtVec(i)
		velocity[i] = n.x.AtVec(i + 3)
		orientation[i] = n.x.AtVec(i + 6)
	}
	return orientation, velocity, position
}

// Covariance returns a copy of the current 9x9 error covariance.
func (n *InertialNavigator) Covariance() *mat.Dense {
	c := mat.NewDense(stateDim, stateDim, nil)
	c.Copy(n.p)
	return c
}

// ProcessSample runs one predict+update cycle on a synchronized
// accelerometer (m/s²) and gyroscope (rad/s) sample pair and returns the
// updated orientation, velocity and position estimates.
//
// Both steps run unconditionally on every call. A non-finite input or a
// singular innovation covariance returns a *NumericalError and leaves
// the navigator unusable.
func (n *InertialNavigator) ProcessSample(accel, gyro Vec3) (orientation, velocity, position Vec3, err error) {
	if !accel.finite() || !gyro.finite() {
		return orientation, velocity, position,
			&NumericalError{Op: "predict", Err: fmt.Errorf("non-finite input accel=%v gyro=%v", accel, gyro)}
	}

	n.predict(accel)
	if err := n.update(accel, gyro); err != nil {
		return orientation, velocity, position, err
	}

	orientation, velocity, position = n.State()
	return orientation, velocity, position, nil
}

// predict propagates state and covariance one sampling interval forward,
// injecting the raw accelerometer reading as a velocity derivative.
func (n *InertialNavigator) predict(accel Vec3) {
	n.fx.MulVec(n.f, n.x)
	n.x.CopyVec(n.fx)
	for i := 0; i < 3; i++ {
		n.x.SetVec(i+3, n.x.AtVec(i+3)+accel[i]*n.dt)
	}

	// P ← F·P·Fᵀ + Q
	n.pf.Mul(n.f, n.p)
	n.pfft.Mul(n.pf, n.f.T())
	n.p.Add(n.pfft, n.q)
}

// update corrects the prediction against the sample reinterpreted as a
// direct measurement of velocity (accel rows) and orientation (gyro
// rows).
func (n *InertialNavigator) update(accel, gyro Vec3) error {
	// Innovation y = z - H·x
	n.hx.MulVec(n.h, n.x)
	for i := 0; i < 3; i++ {
		n.y.SetVec(i, accel[i]-n.hx.AtVec(i))
		n.y.SetVec(i+3, gyro[i]-n.hx.AtVec(i+3))
	}

	// S = H·P·Hᵀ + R
	n.pht.Mul(n.p, n.h.T())
	n.s.Mul(n.h, n.pht)
	n.s.Add(n.s, n.r)

	// K = P·Hᵀ·S⁻¹, via a linear solve of S·Kᵀ = (P·Hᵀ)ᵀ. S is
	// symmetric so no transpose of S is needed.
	if err := n.kt.Solve(n.s, n.pht.T()); err != nil {
		return &NumericalError{Op: "update", Err: err}
	}
	k := n.kt.T()

	// state ← state + K·y
	n.ky.MulVec(k, n.y)
	n.x.AddVec(n.x, n.ky)

	// Covariance update. The plain (I-KH)P form does not guarantee
	// positive semi-definiteness and can degrade on ill-conditioned
	// input; the Joseph form is available via WithJosephForm.
	n.kh.Mul(k, n.h)
	n.kh.Sub(n.i, n.kh)
	if n.joseph {
		// P ← (I-KH)·P·(I-KH)ᵀ + K·R·Kᵀ
		n.pf.Mul(n.kh, n.p)
		n.pfft.Mul(n.pf, n.kh.T())
		n.kr.Mul(k, n.r)
		n.krkt.Mul(n.kr, n.kt)
		n.p.Add(n.pfft, n.krkt)
	} else {
		// P ← (I-KH)·P
		n.pf.Mul(n.kh, n.p)
		n.p.Copy(n.pf)
	}
	n.symmetrize()

	for i := 0; i < stateDim; i++ {
		if v := n.x.AtVec(i); math.IsNaN(v) || math.IsInf(v, 0) {
			return &NumericalError{Op: "update", Err: fmt.Errorf("non-finite state component %d", i)}
		}
	}
	return nil
}

// symmetrize restores exact symmetry of P, lost to round-off in the
// plain-form update.
func (n *InertialNavigator) symmetrize() {
	for i := 0; i < stateDim; i++ {
		for j := i + 1; j < stateDim; j++ {
			v := 0.5 * (n.p.At(i, j) + n.p.At(j, i))
			n.p.Set(i, j, v)
			n.p.Set(j, i, v)
		}
	}
}

func eye(d int) *mat.Dense {
	m := mat.NewDense(d, d, nil)
	for i := 0; i < d; i++ {
		m.Set(i, i, 1)
	}
	return m
}
