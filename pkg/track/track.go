package track

import (
	"errors"
	"fmt"

	"github.com/mpapenbr/tankrace/pkg/model"
)

var (
	ErrNoCheckpoints     = errors.New("track has no checkpoints")
	ErrEmptyMask         = errors.New("mask is empty")
	ErrInvalidDescriptor = errors.New("invalid track descriptor")
)

// Zone is a mask placed at an anchor position in track space
type Zone struct {
	Mask   *Mask
	Anchor Point
}

// Center returns the track position of the zone's bounding box centre
func (z Zone) Center() (x, y float64) {
	return float64(z.Anchor.X) + float64(z.Mask.Width())/2,
		float64(z.Anchor.Y) + float64(z.Mask.Height())/2
}

type Waypoint struct {
	X float64
	Y float64
}

// Track is the immutable asset context shared by the processing core and the
// presentation layer. It is built once at startup and never mutated.
type Track struct {
	Name        string
	Width       int
	Height      int
	Playable    Zone // drivable surface
	Limit       Zone // solid obstacle silhouette
	Finish      Zone
	Checkpoints []Zone // ordered
	Footprint   *Mask  // vehicle silhouette, pointing up
	Start       model.Pose
	RacingLine  []Waypoint // used by the autopilot, may be empty
}

func (t *Track) Validate() error {
	if len(t.Checkpoints) == 0 {
		return ErrNoCheckpoints
	}
	check := func(name string, m *Mask) error {
		if m == nil || m.Count() == 0 {
			return fmt.Errorf("%s: %w", name, ErrEmptyMask)
		}
		return nil
	}
	if err := check("playable", t.Playable.Mask); err != nil {
		return err
	}
	if t.Limit.Mask == nil {
		return fmt.Errorf("limit: %w", ErrEmptyMask)
	}
	if err := check("finish", t.Finish.Mask); err != nil {
		return err
	}
	if err := check("footprint", t.Footprint); err != nil {
		return err
	}
	for i := range t.Checkpoints {
		if err := check(fmt.Sprintf("checkpoint %d", i), t.Checkpoints[i].Mask); err != nil {
			return err
		}
	}
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("%w: track size %dx%d", ErrInvalidDescriptor, t.Width, t.Height)
	}
	return nil
}

// TriggerZones returns the checkpoints followed by the finish zone
func (t *Track) TriggerZones() []Zone {
	ret := make([]Zone, 0, len(t.Checkpoints)+1)
	ret = append(ret, t.Checkpoints...)
	return append(ret, t.Finish)
}
