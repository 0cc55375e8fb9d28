//nolint:thelper,whitespace,lll,funlen // ok for tests
package processing

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/clock"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/processing/collision"
	"github.com/mpapenbr/tankrace/pkg/processing/vehicle"
	"github.com/mpapenbr/tankrace/pkg/track"
	"github.com/mpapenbr/tankrace/testsupport/masks"
)

const tickInterval = 10 * time.Millisecond

var t0 = time.Date(2024, 4, 28, 11, 10, 12, 0, time.UTC)

// condensed event for comparison
type ev struct {
	Type       model.EventType
	Tick       uint64
	Checkpoint int
	Lap        int
	Duration   time.Duration
	Improved   bool
	Cause      model.BounceCause
}

func condense(events []model.RaceEvent) []ev {
	ret := make([]ev, 0, len(events))
	for _, e := range events {
		ret = append(ret, ev{
			Type: e.Type, Tick: e.Tick, Checkpoint: e.Checkpoint, Lap: e.Lap,
			Duration: e.Duration, Improved: e.Improved, Cause: e.Cause,
		})
	}
	return ret
}

func newTestProcessor(t *testing.T, tr *track.Track, opts ...ProcessorOption) (*Processor, *clock.Mock) {
	c := clock.NewMock(t0)
	p, err := NewProcessor(append([]ProcessorOption{WithTrack(tr), WithClock(c)}, opts...)...)
	require.NoError(t, err)
	return p, c
}

// runs ticks and collects all events, the clock advances after each tick
func drive(p *Processor, c *clock.Mock, ticks int, input func(tick int) model.Input) []model.RaceEvent {
	ret := make([]model.RaceEvent, 0)
	for i := 1; i <= ticks; i++ {
		res := p.ProcessTick(input(i))
		ret = append(ret, res.Events...)
		c.Advance(tickInterval)
	}
	return ret
}

func forward(int) model.Input { return model.Input{Forward: true} }

func TestNewProcessor(t *testing.T) {
	_, err := NewProcessor()
	assert.ErrorIs(t, err, ErrMissingTrack)

	p, _ := newTestProcessor(t, masks.Straight(3))
	s := p.Snapshot()
	assert.Equal(t, model.Pose{X: 18, Y: 380}, s.Pose)
	assert.Equal(t, uint64(0), s.Tick)
	assert.Equal(t, 3, s.Checkpoints)
	assert.Equal(t, time.Duration(0), s.LapTime)
	assert.False(t, s.BestLap.IsSet())
}

func TestProcessor_DragStrip(t *testing.T) {
	p, c := newTestProcessor(t, masks.Straight(3))
	events := drive(p, c, 140, forward)

	want := []ev{
		{Type: model.EventAttempt, Tick: 1},
		{Type: model.EventCheckpoint, Tick: 45, Checkpoint: 0, Duration: 44 * tickInterval, Improved: true},
		{Type: model.EventCheckpoint, Tick: 78, Checkpoint: 1, Duration: 33 * tickInterval, Improved: true},
		{Type: model.EventCheckpoint, Tick: 111, Checkpoint: 2, Duration: 33 * tickInterval, Improved: true},
		{Type: model.EventLap, Tick: 138, Lap: 1, Duration: 137 * tickInterval, Improved: true},
	}
	if diff := cmp.Diff(want, condense(events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	for _, e := range events {
		assert.Equal(t, 3, e.Checkpoints)
		assert.Equal(t, t0.Add(time.Duration(e.Tick-1)*tickInterval), e.Time)
	}

	s := p.Snapshot()
	assert.Equal(t, 1, s.Lap)
	assert.Equal(t, 0, s.NextCheckpoint)
	assert.Empty(t, s.Sectors)
	assert.Len(t, s.BestSectors, 3)
	assert.Equal(t, 137*tickInterval, s.BestLap.GetOr(0))
	assert.Equal(t, 137*tickInterval, s.LastLap.GetOr(0))
	assert.True(t, s.LapFlash.ActiveAt(s.Time))
	assert.Equal(t, 2*tickInterval, s.LapTime)
}

func TestProcessor_Debounce(t *testing.T) {
	p, c := newTestProcessor(t, masks.Straight(3))
	drive(p, c, 44, forward)

	res := p.ProcessTick(model.Input{Forward: true})
	assert.Len(t, res.Events, 1)
	assert.True(t, res.Snapshot.InZone)
	assert.Equal(t, 1, res.Snapshot.NextCheckpoint)
	c.Advance(tickInterval)

	// the footprint left the checkpoint
	res = p.ProcessTick(model.Input{Forward: true})
	assert.Empty(t, res.Events)
	assert.False(t, res.Snapshot.InZone)
}

func TestProcessor_DebounceWhileParked(t *testing.T) {
	// park on checkpoint 0 for several ticks
	tr := masks.Straight(3)
	tr.Start = model.Pose{X: 18, Y: 299}
	p, c := newTestProcessor(t, tr)
	events := drive(p, c, 5, func(int) model.Input { return model.Input{} })
	assert.Equal(t, []ev{
		{Type: model.EventAttempt, Tick: 1},
		{Type: model.EventCheckpoint, Tick: 1, Checkpoint: 0, Improved: true},
	}, condense(events))
	assert.True(t, p.Snapshot().InZone)
}

func TestProcessor_Bounces(t *testing.T) {
	type args struct {
		tr    *track.Track
		start model.Pose
		ticks int
	}
	tests := []struct {
		name string
		args args
		want ev
	}{
		{
			name: "leaving the drag strip",
			args: args{tr: masks.Straight(3), start: model.Pose{X: 18, Y: 380}, ticks: 146},
			want: ev{Type: model.EventBounce, Tick: 146, Cause: model.BounceOffTrack},
		},
		{
			name: "driving into the block",
			args: args{tr: masks.Arena(), start: model.Pose{X: 98, Y: 160}, ticks: 33},
			want: ev{Type: model.EventBounce, Tick: 33, Cause: model.BounceWall},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.args.tr.Start = tt.args.start
			p, c := newTestProcessor(t, tt.args.tr)
			events := drive(p, c, tt.args.ticks, forward)
			bounces := make([]ev, 0)
			for _, e := range condense(events) {
				if e.Type == model.EventBounce {
					bounces = append(bounces, e)
				}
			}
			assert.Equal(t, []ev{tt.want}, bounces)
			assert.Negative(t, p.Snapshot().Speed)
		})
	}
}

// pseudo random but deterministic input program
func wander(tick int) model.Input {
	phase := (tick / 25) % 7
	return model.Input{
		TurnLeft:  phase == 1 || phase == 4,
		TurnRight: phase == 3,
		Forward:   phase != 5,
		Backward:  phase == 5 && tick%2 == 0,
	}
}

func TestProcessor_BounceProperties(t *testing.T) {
	tr := masks.Arena()
	tr.Start = model.Pose{X: 90, Y: 150, Heading: 10}
	p, c := newTestProcessor(t, tr)
	oracle := collision.NewOracle(tr.Footprint)
	seen := map[model.BounceCause]int{}

	for i := 1; i <= 3000; i++ {
		before := p.Snapshot()
		in := wander(i)

		// expected outcome computed independently from the previous snapshot
		v := vehicle.New(vehicle.DefaultConfig(), before.Pose)
		v.Speed = before.Speed
		v.Apply(in)
		offTrack := !oracle.Overlaps(tr.Playable, v.Pose)
		if offTrack {
			v.InvertVelocity()
		}
		wall := oracle.IsFullyContained(tr.Limit, v.Pose)
		if wall {
			v.InvertVelocity()
		}

		res := p.ProcessTick(in)
		c.Advance(tickInterval)
		got := map[model.BounceCause]bool{}
		for _, e := range res.Events {
			if e.Type == model.EventBounce {
				got[e.Cause] = true
				seen[e.Cause]++
			}
		}
		require.Equal(t, offTrack, got[model.BounceOffTrack], "tick %d", i)
		require.Equal(t, wall, got[model.BounceWall], "tick %d", i)
		require.Equal(t, v.Pose, res.Snapshot.Pose, "tick %d", i)
		require.LessOrEqual(t, res.Snapshot.NextCheckpoint, 1)
	}
	t.Logf("bounces: %v", seen)
}

func TestProcessor_Restart(t *testing.T) {
	p, c := newTestProcessor(t, masks.Straight(3))
	drive(p, c, 140, forward)
	require.Equal(t, 1, p.Snapshot().Lap)

	p.Restart()
	s := p.Snapshot()
	assert.Equal(t, model.Pose{X: 18, Y: 380}, s.Pose)
	assert.Equal(t, 0.0, s.Speed)
	assert.Equal(t, 0, s.Lap)
	assert.Equal(t, 0, s.NextCheckpoint)
	assert.Equal(t, time.Duration(0), s.LapTime)
	assert.Equal(t, 137*tickInterval, s.BestLap.GetOr(0))
	assert.Len(t, s.BestSectors, 3)

	c.Advance(time.Minute)
	events := drive(p, c, 140, forward)
	want := []ev{
		{Type: model.EventAttempt, Tick: 141},
		{Type: model.EventCheckpoint, Tick: 185, Checkpoint: 0, Duration: 44 * tickInterval},
		{Type: model.EventCheckpoint, Tick: 218, Checkpoint: 1, Duration: 33 * tickInterval},
		{Type: model.EventCheckpoint, Tick: 251, Checkpoint: 2, Duration: 33 * tickInterval},
		{Type: model.EventLap, Tick: 278, Lap: 1, Duration: 137 * tickInterval},
	}
	if diff := cmp.Diff(want, condense(events)); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessor_SnapshotIsCopy(t *testing.T) {
	p, c := newTestProcessor(t, masks.Straight(3))
	drive(p, c, 80, forward)
	s := p.Snapshot()
	require.Len(t, s.Sectors, 2)
	s.Sectors[0] = time.Hour
	s.BestSectors[0] = time.Hour
	assert.NotEqual(t, time.Hour, p.Snapshot().Sectors[0])
	assert.NotEqual(t, time.Hour, p.Snapshot().BestSectors[0])
}

func TestProcessor_Logging(t *testing.T) {
	buf := bytes.Buffer{}
	p, c := newTestProcessor(t, masks.Straight(3), WithLogger(log.New(&buf, log.DebugLevel)))
	drive(p, c, 140, forward)
	assert.Contains(t, buf.String(), `"msg":"lap"`)
	assert.Contains(t, buf.String(), `"logger":"progress"`)
}
