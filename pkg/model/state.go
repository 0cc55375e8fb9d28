package model

import (
	"time"

	"github.com/aarondl/opt/omit"
)

// Flash describes a transient feedback signal for the presentation layer
type Flash struct {
	Index    int  // sector index, -1 for lap flashes
	Improved bool // true: new best, false: slower than best
	Until    time.Time
}

// ActiveAt reports whether the flash should still be shown at t
func (f Flash) ActiveAt(t time.Time) bool {
	return !f.Until.IsZero() && t.Before(f.Until)
}

// Snapshot is the read-only state handed to the presentation layer after each tick
type Snapshot struct {
	Tick           uint64
	Time           time.Time
	Pose           Pose
	Speed          float64
	Lap            int // completed laps
	NextCheckpoint int // N means the finish is armed
	Checkpoints    int
	InZone         bool
	LapTime        time.Duration // elapsed time of the running lap
	SectorTime     time.Duration // elapsed time of the running sector
	LastLap        omit.Val[time.Duration]
	BestLap        omit.Val[time.Duration]
	Sectors        []time.Duration
	BestSectors    []time.Duration
	SectorFlash    Flash
	LapFlash       Flash
}

// FinishArmed reports whether all checkpoints of the running lap are cleared
func (s *Snapshot) FinishArmed() bool {
	return s.NextCheckpoint == s.Checkpoints
}

type TickResult struct {
	Snapshot Snapshot
	Events   []RaceEvent
}
