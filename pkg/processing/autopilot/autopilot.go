package autopilot

import (
	"errors"
	"math"

	"github.com/samber/lo"

	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/track"
)

var ErrNoRacingLine = errors.New("track has no racing line")

// Pilot steers the vehicle along the racing line of a track
type Pilot struct {
	line         []track.Waypoint
	next         int
	centerX      float64 // footprint centre relative to the pose position
	centerY      float64
	captureRange float64
	brakeAngle   float64
	minSpeed     float64
	rotationRate float64
}

type PilotOption func(p *Pilot)

// WithCaptureRange sets the distance at which a waypoint counts as reached
func WithCaptureRange(r float64) PilotOption {
	return func(p *Pilot) {
		p.captureRange = r
	}
}

// WithBraking sets the heading error (degrees) above which the pilot brakes
// as long as the vehicle is faster than minSpeed
func WithBraking(angle, minSpeed float64) PilotOption {
	return func(p *Pilot) {
		p.brakeAngle = angle
		p.minSpeed = minSpeed
	}
}

func WithRotationRate(deg float64) PilotOption {
	return func(p *Pilot) {
		p.rotationRate = deg
	}
}

// NewPilot creates a pilot for t starting at the start pose of the track
func NewPilot(t *track.Track, opts ...PilotOption) (*Pilot, error) {
	if len(t.RacingLine) == 0 {
		return nil, ErrNoRacingLine
	}
	ret := &Pilot{
		line:         t.RacingLine,
		centerX:      float64(t.Footprint.Width()) / 2,
		centerY:      float64(t.Footprint.Height()) / 2,
		captureRange: 20,
		brakeAngle:   30,
		minSpeed:     1.5,
		rotationRate: 2.4,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.Reset(t.Start)
	return ret, nil
}

// Reset selects the nearest waypoint ahead of pose
func (p *Pilot) Reset(pose model.Pose) {
	idx := lo.RangeFrom(0, len(p.line))
	p.next = lo.MinBy(idx, func(a, b int) bool {
		return p.distance(pose, a) < p.distance(pose, b)
	})
	if math.Abs(p.headingError(pose)) > 90 {
		p.advance()
	}
}

// Next returns the index of the waypoint the pilot is heading for
func (p *Pilot) Next() int {
	return p.next
}

// Input computes the input for the next tick from the latest snapshot
func (p *Pilot) Input(s *model.Snapshot) model.Input {
	if p.distance(s.Pose, p.next) < p.captureRange {
		p.advance()
	}
	e := p.headingError(s.Pose)
	brake := math.Abs(e) > p.brakeAngle && s.Speed > p.minSpeed
	return model.Input{
		TurnLeft:  e > p.rotationRate/2,
		TurnRight: e < -p.rotationRate/2,
		Forward:   !brake,
		Backward:  brake,
	}
}

func (p *Pilot) advance() {
	p.next = (p.next + 1) % len(p.line)
}

func (p *Pilot) distance(pose model.Pose, idx int) float64 {
	wp := p.line[idx]
	return math.Hypot(wp.X-(pose.X+p.centerX), wp.Y-(pose.Y+p.centerY))
}

// headingError is the signed angle (-180,180] between the current heading and the
// direction to the next waypoint. Positive values require a left turn.
func (p *Pilot) headingError(pose model.Pose) float64 {
	wp := p.line[p.next]
	dx := wp.X - (pose.X + p.centerX)
	dy := wp.Y - (pose.Y + p.centerY)
	desired := math.Atan2(-dx, -dy) * 180 / math.Pi
	return normalize(desired - pose.Heading)
}

func normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	switch {
	case deg > 180:
		deg -= 360
	case deg <= -180:
		deg += 360
	}
	return deg
}
