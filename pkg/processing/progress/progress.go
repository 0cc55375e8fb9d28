package progress

import (
	"github.com/samber/lo"

	"github.com/mpapenbr/tankrace/log"
)

// Contact holds the result of one trigger zone scan
type Contact struct {
	Checkpoints []bool // aligned with the track checkpoints
	Finish      bool
}

// Any reports whether the footprint touches any trigger zone
func (c Contact) Any() bool {
	return c.Finish || lo.Contains(c.Checkpoints, true)
}

// State is the race progress of the running attempt
type State struct {
	Next   int  // next checkpoint to clear, N means the finish is armed
	Laps   int  // completed laps
	InZone bool // footprint still inside the zone that triggered last
}

// Transition is the outcome of a Step
type Transition struct {
	Cleared    bool // checkpoint Checkpoint was cleared
	Checkpoint int
	Finished   bool // a lap was completed
}

type Machine struct {
	n     int
	state State
	log   *log.Logger
}

type MachineOption func(m *Machine)

func WithLogger(l *log.Logger) MachineOption {
	return func(m *Machine) {
		m.log = l
	}
}

// NewMachine creates the state machine for a track with n checkpoints
func NewMachine(n int, opts ...MachineOption) *Machine {
	m := &Machine{n: n, log: log.Nop()}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() State {
	return m.state
}

func (m *Machine) Checkpoints() int {
	return m.n
}

// Reset restores the initial state for a new attempt
func (m *Machine) Reset() {
	m.state = State{}
}

// Step advances the machine with the zone contacts of the current tick.
// Only the checkpoint at Next is tested, out of order contacts are ignored.
func (m *Machine) Step(c Contact) Transition {
	ret := Transition{}
	s := &m.state
	if s.Next < m.n && s.Next < len(c.Checkpoints) && c.Checkpoints[s.Next] && !s.InZone {
		ret.Cleared = true
		ret.Checkpoint = s.Next
		s.Next++
		s.InZone = true
		m.log.Debug("checkpoint cleared",
			log.Int("checkpoint", ret.Checkpoint), log.Int("next", s.Next))
	}
	if !c.Any() {
		s.InZone = false
	}
	if c.Finish && s.Next == m.n && !s.InZone {
		ret.Finished = true
		s.Laps++
		s.Next = 0
		s.InZone = true
		m.log.Debug("lap completed", log.Int("laps", s.Laps))
	}
	return ret
}
