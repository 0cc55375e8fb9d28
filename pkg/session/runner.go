package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/processing"
	"github.com/mpapenbr/tankrace/pkg/processing/autopilot"
)

var ErrMissingProcessor = errors.New("runner requires a processor")

// Command is the outcome of polling the input source for one tick
type Command struct {
	Input   model.Input
	Restart bool
	Quit    bool
}

type InputSource interface {
	Poll() Command
}

// FrameSink receives the state after every tick
type FrameSink interface {
	Render(s *model.Snapshot)
}

type (
	InputSourceFunc func() Command
	FrameSinkFunc   func(s *model.Snapshot)
)

func (f InputSourceFunc) Poll() Command           { return f() }
func (f FrameSinkFunc) Render(s *model.Snapshot) { f(s) }

// NoInput never presses a key
var NoInput = InputSourceFunc(func() Command { return Command{} })

// Runner drives the processor at a fixed tick rate
type Runner struct {
	proc     *processing.Processor
	input    InputSource
	sink     FrameSink
	pilot    *autopilot.Pilot
	interval time.Duration
	events   chan model.RaceEvent
	dropped  int
	log      *log.Logger
	closer   sync.Once
}

type Option func(r *Runner)

func WithProcessor(p *processing.Processor) Option {
	return func(r *Runner) {
		r.proc = p
	}
}

func WithInput(src InputSource) Option {
	return func(r *Runner) {
		r.input = src
	}
}

func WithFrameSink(sink FrameSink) Option {
	return func(r *Runner) {
		r.sink = sink
	}
}

// WithAutopilot replaces the driving input of the input source.
// Restart and quit requests of the source are still honored.
func WithAutopilot(p *autopilot.Pilot) Option {
	return func(r *Runner) {
		r.pilot = p
	}
}

func WithTickRate(hz int) Option {
	return func(r *Runner) {
		if hz > 0 {
			r.interval = time.Second / time.Duration(hz)
		}
	}
}

// WithEventBuffer sets the capacity of the event channel.
// Events are dropped while the channel is full.
func WithEventBuffer(n int) Option {
	return func(r *Runner) {
		r.events = make(chan model.RaceEvent, n)
	}
}

func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		r.log = l
	}
}

func NewRunner(opts ...Option) (*Runner, error) {
	ret := &Runner{
		input:    NoInput,
		sink:     FrameSinkFunc(func(*model.Snapshot) {}),
		interval: time.Second / 60,
		events:   make(chan model.RaceEvent, 256),
		log:      log.Nop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.proc == nil {
		return nil, ErrMissingProcessor
	}
	return ret, nil
}

// Events delivers the race events. The channel is closed by Close.
func (r *Runner) Events() <-chan model.RaceEvent {
	return r.events
}

// Dropped returns the number of events lost because the channel was full
func (r *Runner) Dropped() int {
	return r.dropped
}

// Close closes the event channel. Step must not be called afterwards.
func (r *Runner) Close() {
	r.closer.Do(func() { close(r.events) })
}

// Run ticks until ctx is done or the input source requests to quit.
// The runner is closed on return.
func (r *Runner) Run(ctx context.Context) error {
	defer r.Close()
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	r.log.Info("session started", log.Duration("interval", r.interval))
	for {
		select {
		case <-ctx.Done():
			r.log.Info("session cancelled", log.Int("dropped", r.dropped))
			return nil
		case <-ticker.C:
			if !r.Step() {
				r.log.Info("session ended", log.Int("dropped", r.dropped))
				return nil
			}
		}
	}
}

// Step polls the input and processes one tick. It returns false if the input
// source requested to quit.
func (r *Runner) Step() bool {
	cmd := r.input.Poll()
	if cmd.Quit {
		return false
	}
	if cmd.Restart {
		r.proc.Restart()
		if r.pilot != nil {
			r.pilot.Reset(r.proc.Track().Start)
		}
	}
	in := cmd.Input
	if r.pilot != nil {
		s := r.proc.Snapshot()
		in = r.pilot.Input(&s)
	}
	res := r.proc.ProcessTick(in)
	for _, e := range res.Events {
		select {
		case r.events <- e:
		default:
			r.dropped++
		}
	}
	r.sink.Render(&res.Snapshot)
	return true
}
