package processing

import (
	"errors"
	"slices"
	"time"

	"github.com/samber/lo"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/clock"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/processing/collision"
	"github.com/mpapenbr/tankrace/pkg/processing/progress"
	"github.com/mpapenbr/tankrace/pkg/processing/timing"
	"github.com/mpapenbr/tankrace/pkg/processing/vehicle"
	"github.com/mpapenbr/tankrace/pkg/track"
)

var ErrMissingTrack = errors.New("processor requires a track")

// Processor runs the race core. It owns the vehicle, the race progress and the
// timing record and must be driven from a single goroutine.
type Processor struct {
	track         *track.Track
	clock         clock.TimeSource
	vehicleConfig vehicle.Config
	flashDuration time.Duration
	log           *log.Logger

	vehicle  *vehicle.Vehicle
	oracle   *collision.Oracle
	progress *progress.Machine
	timing   *timing.Tracker
	tick     uint64
	running  bool // lap and sector clocks are started
	last     model.Snapshot
}

type ProcessorOption func(proc *Processor)

func WithTrack(t *track.Track) ProcessorOption {
	return func(proc *Processor) {
		proc.track = t
	}
}

func WithClock(c clock.TimeSource) ProcessorOption {
	return func(proc *Processor) {
		proc.clock = c
	}
}

func WithVehicleConfig(cfg vehicle.Config) ProcessorOption {
	return func(proc *Processor) {
		proc.vehicleConfig = cfg
	}
}

// WithFlashDuration sets how long sector and lap feedback stays active
func WithFlashDuration(d time.Duration) ProcessorOption {
	return func(proc *Processor) {
		proc.flashDuration = d
	}
}

func WithLogger(l *log.Logger) ProcessorOption {
	return func(proc *Processor) {
		proc.log = l
	}
}

func NewProcessor(opts ...ProcessorOption) (*Processor, error) {
	ret := &Processor{
		clock:         clock.NewSystem(),
		vehicleConfig: vehicle.DefaultConfig(),
		flashDuration: 2 * time.Second,
		log:           log.Nop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.track == nil {
		return nil, ErrMissingTrack
	}
	ret.oracle = collision.NewOracle(ret.track.Footprint)
	ret.progress = progress.NewMachine(len(ret.track.Checkpoints),
		progress.WithLogger(ret.log.Named("progress")))
	ret.timing = timing.NewTracker(timing.WithFlashDuration(ret.flashDuration))
	ret.Restart()
	return ret, nil
}

func (p *Processor) Track() *track.Track {
	return p.track
}

// Restart begins a new attempt. The vehicle is placed at the start pose, the
// race progress is reset and the clocks start with the next tick.
// Session bests are kept.
func (p *Processor) Restart() {
	p.vehicle = vehicle.New(p.vehicleConfig, p.track.Start)
	p.progress.Reset()
	p.running = false
	p.last = p.compose(p.clock.Now())
	p.log.Debug("attempt prepared", log.Uint64("tick", p.tick))
}

// ProcessTick executes one simulation step with the input of this tick
func (p *Processor) ProcessTick(in model.Input) model.TickResult {
	now := p.clock.Now()
	p.tick++
	events := make([]model.RaceEvent, 0)
	if !p.running {
		p.timing.Start(now)
		p.running = true
		events = append(events, p.newEvent(model.EventAttempt, now))
	}

	p.vehicle.Apply(in)
	if !p.oracle.Overlaps(p.track.Playable, p.vehicle.Pose) {
		events = append(events, p.bounce(model.BounceOffTrack, now))
	}
	if p.oracle.IsFullyContained(p.track.Limit, p.vehicle.Pose) {
		events = append(events, p.bounce(model.BounceWall, now))
	}

	contact := p.scanTriggerZones()
	tr := p.progress.Step(contact)
	if tr.Cleared {
		d, improved := p.timing.Sector(now)
		e := p.newEvent(model.EventCheckpoint, now)
		e.Checkpoint = tr.Checkpoint
		e.Duration = d
		e.Improved = improved
		events = append(events, e)
		p.log.Debug("sector",
			log.Int("sector", tr.Checkpoint), log.Duration("duration", d),
			log.Bool("improved", improved))
	}
	if tr.Finished {
		d, improved := p.timing.Lap(now)
		e := p.newEvent(model.EventLap, now)
		e.Duration = d
		e.Improved = improved
		events = append(events, e)
		p.log.Debug("lap",
			log.Int("lap", e.Lap), log.Duration("duration", d),
			log.Bool("improved", improved))
	}
	p.last = p.compose(now)
	return model.TickResult{Snapshot: p.Snapshot(), Events: events}
}

// Snapshot returns a copy of the state after the latest tick
func (p *Processor) Snapshot() model.Snapshot {
	ret := p.last
	ret.Sectors = slices.Clone(p.last.Sectors)
	ret.BestSectors = slices.Clone(p.last.BestSectors)
	return ret
}

// scanTriggerZones tests the footprint against every checkpoint and the finish.
// The result feeds both the advance check and the debounce reset of the tick.
func (p *Processor) scanTriggerZones() progress.Contact {
	pose := p.vehicle.Pose
	return progress.Contact{
		Checkpoints: lo.Map(p.track.Checkpoints, func(z track.Zone, _ int) bool {
			return p.oracle.Overlaps(z, pose)
		}),
		Finish: p.oracle.Overlaps(p.track.Finish, pose),
	}
}

func (p *Processor) bounce(cause model.BounceCause, now time.Time) model.RaceEvent {
	p.vehicle.InvertVelocity()
	p.log.Debug("bounce",
		log.Stringer("cause", cause), log.Float64("speed", p.vehicle.Speed))
	e := p.newEvent(model.EventBounce, now)
	e.Cause = cause
	return e
}

func (p *Processor) newEvent(t model.EventType, now time.Time) model.RaceEvent {
	return model.RaceEvent{
		Type:        t,
		Tick:        p.tick,
		Time:        now,
		Lap:         p.progress.State().Laps,
		Checkpoints: p.progress.Checkpoints(),
	}
}

func (p *Processor) compose(now time.Time) model.Snapshot {
	st := p.progress.State()
	ret := model.Snapshot{
		Tick:           p.tick,
		Time:           now,
		Pose:           p.vehicle.Pose,
		Speed:          p.vehicle.Speed,
		Lap:            st.Laps,
		NextCheckpoint: st.Next,
		Checkpoints:    p.progress.Checkpoints(),
		InZone:         st.InZone,
	}
	p.timing.Fill(&ret, now)
	if !p.running {
		ret.LapTime = 0
		ret.SectorTime = 0
	}
	return ret
}
