package model

import "time"

// RaceEvent is emitted by the processor during a tick
type RaceEvent struct {
	Type        EventType
	Tick        uint64
	Time        time.Time
	Lap         int           // completed laps after this event
	Checkpoint  int           // index of the cleared checkpoint
	Checkpoints int           // number of checkpoints on the track
	Duration    time.Duration // sector duration (checkpoint) or lap duration (lap)
	Improved    bool          // new personal best
	Cause       BounceCause
}
