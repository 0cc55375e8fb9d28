package vehicle

import (
	"math"

	"github.com/mpapenbr/tankrace/pkg/model"
)

// Config holds the tunables of a vehicle
type Config struct {
	MaxSpeed     float64 // pixels per tick
	RotationRate float64 // degrees per tick
	Acceleration float64 // speed increment per tick
}

func DefaultConfig() Config {
	return Config{MaxSpeed: 3, RotationRate: 2.4, Acceleration: 0.08}
}

type Direction int

const (
	Left  Direction = 1
	Right Direction = -1
)

// Vehicle is the arcade-style kinematic state of the player.
// Speed is signed, a negative value means the vehicle is kicked back after a bounce.
type Vehicle struct {
	Pose  model.Pose
	Speed float64
	cfg   Config
}

func New(cfg Config, start model.Pose) *Vehicle {
	return &Vehicle{Pose: start, cfg: cfg}
}

func (v *Vehicle) Config() Config {
	return v.cfg
}

func (v *Vehicle) Accelerate() {
	v.Speed = math.Min(v.Speed+v.cfg.Acceleration, v.cfg.MaxSpeed)
	v.Integrate()
}

// Decelerate brakes. Braking is stronger than passive decay but never reverses.
func (v *Vehicle) Decelerate() {
	v.Speed = math.Max(v.Speed-v.cfg.Acceleration/1.5, 0)
	v.Integrate()
}

// Coast applies rolling friction when there is no throttle input
func (v *Vehicle) Coast() {
	v.Speed = math.Max(v.Speed-v.cfg.Acceleration/10, 0)
	v.Integrate()
}

func (v *Vehicle) Turn(d Direction) {
	v.Pose.Heading += float64(d) * v.cfg.RotationRate
}

// Integrate moves the vehicle along its heading. Heading 0 points up.
func (v *Vehicle) Integrate() {
	rad := v.Pose.Heading * math.Pi / 180
	v.Pose.X -= math.Sin(rad) * v.Speed
	v.Pose.Y -= math.Cos(rad) * v.Speed
}

// InvertVelocity is the bounce reaction: the speed flips and the vehicle is
// moved once in the new direction.
func (v *Vehicle) InvertVelocity() {
	v.Speed = -v.Speed
	v.Integrate()
}

// Apply maps the input state of a tick onto the vehicle.
// Opposite turn keys cancel each other, forward and backward are both applied.
func (v *Vehicle) Apply(in model.Input) {
	if in.TurnLeft {
		v.Turn(Left)
	}
	if in.TurnRight {
		v.Turn(Right)
	}
	if in.Forward {
		v.Accelerate()
	}
	if in.Backward {
		v.Decelerate()
	}
	if !in.Forward && !in.Backward {
		v.Coast()
	}
}
