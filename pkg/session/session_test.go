//nolint:thelper,whitespace,lll,funlen // ok for tests
package session

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/clock"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/processing"
	"github.com/mpapenbr/tankrace/pkg/processing/autopilot"
	"github.com/mpapenbr/tankrace/pkg/track"
	"github.com/mpapenbr/tankrace/testsupport/masks"
)

var t0 = time.Date(2024, 4, 28, 11, 10, 12, 0, time.UTC)

func newProc(t *testing.T, tr *track.Track) (*processing.Processor, *clock.Mock) {
	c := clock.NewMock(t0)
	p, err := processing.NewProcessor(processing.WithTrack(tr), processing.WithClock(c))
	require.NoError(t, err)
	return p, c
}

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(`{"steps":[{"ticks":3,"keys":["forward","left"]},{"ticks":2,"keys":[]}]}`))
	require.NoError(t, err)
	assert.Equal(t, 5, s.Ticks())
	assert.Equal(t, []string{"forward", "left"}, s.Steps[0].Keys)

	_, err = ParseScript([]byte(`{"steps":[{"ticks":0}]}`))
	assert.ErrorIs(t, err, ErrInvalidScript)
	_, err = ParseScript([]byte(`{"steps":[{"ticks":1,"keys":["jump"]}]}`))
	assert.ErrorIs(t, err, ErrInvalidScript)
	_, err = ParseScript([]byte(`{"steps":[`))
	assert.ErrorIs(t, err, ErrInvalidScript)
}

func TestScriptSource(t *testing.T) {
	s := &Script{Steps: []ScriptStep{
		{Ticks: 2, Keys: []string{"forward", "right"}},
		{Ticks: 2, Keys: []string{"restart", "backward"}},
	}}
	src := NewScriptSource(s)
	want := []Command{
		{Input: model.Input{Forward: true, TurnRight: true}},
		{Input: model.Input{Forward: true, TurnRight: true}},
		{Input: model.Input{Backward: true}, Restart: true},
		{Input: model.Input{Backward: true}},
		{Quit: true},
		{Quit: true},
	}
	for i, w := range want {
		assert.Equal(t, w, src.Poll(), "poll %d", i)
	}
}

func TestNewRunner(t *testing.T) {
	_, err := NewRunner()
	assert.ErrorIs(t, err, ErrMissingProcessor)
}

func TestRunner_Step(t *testing.T) {
	p, c := newProc(t, masks.Straight(3))
	frames := 0
	r, err := NewRunner(
		WithProcessor(p),
		WithInput(InputSourceFunc(func() Command {
			return Command{Input: model.Input{Forward: true}}
		})),
		WithFrameSink(FrameSinkFunc(func(s *model.Snapshot) {
			frames++
			assert.Equal(t, uint64(frames), s.Tick)
		})),
	)
	require.NoError(t, err)
	for i := 0; i < 140; i++ {
		require.True(t, r.Step())
		c.Advance(10 * time.Millisecond)
	}
	r.Close()
	r.Close()

	types := []model.EventType{}
	for e := range r.Events() {
		types = append(types, e.Type)
	}
	assert.Equal(t, []model.EventType{
		model.EventAttempt, model.EventCheckpoint, model.EventCheckpoint,
		model.EventCheckpoint, model.EventLap,
	}, types)
	assert.Equal(t, 140, frames)
	assert.Equal(t, 0, r.Dropped())
}

func TestRunner_DropsWhenFull(t *testing.T) {
	p, _ := newProc(t, masks.Straight(3))
	r, err := NewRunner(WithProcessor(p), WithEventBuffer(0))
	require.NoError(t, err)
	r.Step()
	assert.Equal(t, 1, r.Dropped())
}

func TestRunner_RestartAndQuit(t *testing.T) {
	p, c := newProc(t, masks.Straight(3))
	script := &Script{Steps: []ScriptStep{
		{Ticks: 50, Keys: []string{"forward"}},
		{Ticks: 1, Keys: []string{"restart"}},
	}}
	var last model.Snapshot
	r, err := NewRunner(WithProcessor(p), WithInput(NewScriptSource(script)),
		WithFrameSink(FrameSinkFunc(func(s *model.Snapshot) { last = *s })))
	require.NoError(t, err)
	steps := 0
	for r.Step() {
		steps++
		c.Advance(10 * time.Millisecond)
	}
	assert.Equal(t, 51, steps)
	assert.Equal(t, 0, last.NextCheckpoint)
	// restarted at the start pose and coasted one tick
	assert.Equal(t, model.Pose{X: 18, Y: 380}, last.Pose)
	assert.Equal(t, uint64(51), last.Tick)
}

func TestRunner_Run(t *testing.T) {
	p, _ := newProc(t, masks.Straight(3))
	ticks := 0
	r, err := NewRunner(WithProcessor(p), WithTickRate(1000),
		WithInput(InputSourceFunc(func() Command {
			ticks++
			return Command{Quit: ticks > 5}
		})))
	require.NoError(t, err)
	require.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 6, ticks)
	_, ok := <-r.Events() // attempt event
	assert.True(t, ok)
	_, ok = <-r.Events()
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r2, err := NewRunner(WithProcessor(p))
	require.NoError(t, err)
	assert.NoError(t, r2.Run(ctx))
}

func TestRunner_Autopilot(t *testing.T) {
	tr := track.Builtin()
	p, c := newProc(t, tr)
	pilot, err := autopilot.NewPilot(tr)
	require.NoError(t, err)
	var last model.Snapshot
	r, err := NewRunner(WithProcessor(p), WithAutopilot(pilot),
		WithFrameSink(FrameSinkFunc(func(s *model.Snapshot) { last = *s })))
	require.NoError(t, err)
	for i := 0; i < 400; i++ {
		r.Step()
		c.Advance(time.Second / 60)
	}
	assert.Equal(t, 1, last.Lap)
}

func TestEventLog(t *testing.T) {
	buf := bytes.Buffer{}
	l := NewEventLog(log.New(&buf, log.InfoLevel))
	ch := make(chan model.RaceEvent, 3)
	ch <- model.RaceEvent{Type: model.EventCheckpoint, Checkpoint: 1, Checkpoints: 4, Duration: 1500 * time.Millisecond}
	ch <- model.RaceEvent{Type: model.EventLap, Lap: 3, Duration: 62 * time.Second}
	ch <- model.RaceEvent{Type: model.EventBounce}
	close(ch)
	count := 0
	Dispatch(context.Background(), ch, l, HandlerFunc(func(context.Context, model.RaceEvent) { count++ }))
	assert.Equal(t, 3, count)
	out := buf.String()
	assert.Contains(t, out, "Checkpoint 2/4")
	assert.Contains(t, out, `"sector":"0:01.500"`)
	assert.Contains(t, out, "LAP 3")
	assert.Contains(t, out, `"time":"1:02.000"`)
	assert.NotContains(t, out, "bounce")
}
