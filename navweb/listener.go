package navweb

import (
	"encoding/json"
	"math"
	"time"

	"github.com/athertop/gonav/nav"
)

// Listener mirrors navigator output into a Room after each processed
// sample.
type Listener struct {
	room  *Room
	data  *NavData
	start time.Time
}

func NewListener(r *Room) *Listener {
	return &Listener{
		room:  r,
		data:  new(NavData),
		start: time.Now(),
	}
}

// Update snapshots the navigator's current estimates, together with the
// sensor sample that produced them, and forwards the JSON encoding to
// all connected clients.
func (l *Listener) Update(n *nav.InertialNavigator, accel, gyro nav.Vec3) error {
	orientation, velocity, position := n.State()

	l.data.T = time.Since(l.start).Seconds()

	l.data.PX, l.data.PY, l.data.PZ = position[0], position[1], position[2]
	l.data.VX, l.data.VY, l.data.VZ = velocity[0], velocity[1], velocity[2]
	l.data.Roll, l.data.Pitch, l.data.Yaw = orientation[0], orientation[1], orientation[2]

	q := nav.EulerToQuaternion(orientation)
	l.data.QW, l.data.QX, l.data.QY, l.data.QZ = q.W, q.X, q.Y, q.Z

	p := n.Covariance()
	l.data.DPX = math.Sqrt(p.At(0, 0))
	l.data.DPY = math.Sqrt(p.At(1, 1))
	l.data.DPZ = math.Sqrt(p.At(2, 2))
	l.data.DVX = math.Sqrt(p.At(3, 3))
	l.data.DVY = math.Sqrt(p.At(4, 4))
	l.data.DVZ = math.Sqrt(p.At(5, 5))
	l.data.DRoll = math.Sqrt(p.At(6, 6))
	l.data.DPitch = math.Sqrt(p.At(7, 7))
	l.data.DYaw = math.Sqrt(p.At(8, 8))

	l.data.AX, l.data.AY, l.data.AZ = accel[0], accel[1], accel[2]
	l.data.GX, l.data.GY, l.data.GZ = gyro[0], gyro[1], gyro[2]

	msg, err := json.Marshal(l.data)
	if err != nil {
		return err
	}
	l.room.Forward(msg)
	return nil
}
