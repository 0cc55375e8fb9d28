package model

type EventType int

const (
	EventAttempt    EventType = 0 // a new attempt started, lap and sector clocks run
	EventBounce     EventType = 1
	EventCheckpoint EventType = 2
	EventLap        EventType = 3
)

func (t EventType) String() string {
	switch t {
	case EventAttempt:
		return "attempt"
	case EventBounce:
		return "bounce"
	case EventCheckpoint:
		return "checkpoint"
	case EventLap:
		return "lap"
	default:
		return "unknown"
	}
}

type BounceCause int

const (
	BounceNone     BounceCause = 0
	BounceOffTrack BounceCause = 1 // no overlap with the playable area
	BounceWall     BounceCause = 2 // fully inside the track limit silhouette
)

func (c BounceCause) String() string {
	switch c {
	case BounceOffTrack:
		return "off-track"
	case BounceWall:
		return "wall"
	default:
		return "none"
	}
}
