//nolint:thelper,whitespace,lll,funlen // ok for tests
package audio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpapenbr/tankrace/pkg/model"
)

func TestToneFor(t *testing.T) {
	tests := []struct {
		name  string
		e     model.RaceEvent
		ok    bool
		notes int
	}{
		{"attempt", model.RaceEvent{Type: model.EventAttempt}, false, 0},
		{"bounce", model.RaceEvent{Type: model.EventBounce, Cause: model.BounceWall}, true, 1},
		{"checkpoint", model.RaceEvent{Type: model.EventCheckpoint}, true, 1},
		{"checkpoint improved", model.RaceEvent{Type: model.EventCheckpoint, Improved: true}, true, 2},
		{"lap", model.RaceEvent{Type: model.EventLap}, true, 2},
		{"lap improved", model.RaceEvent{Type: model.EventLap, Improved: true}, true, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tone, ok := ToneFor(tt.e)
			assert.Equal(t, tt.ok, ok)
			assert.Len(t, tone.Notes, tt.notes)
		})
	}
}

func TestToneStreamer(t *testing.T) {
	tone := Tone{Notes: []float64{440, 880}, Length: 10 * time.Millisecond}
	s, err := tone.Streamer(sampleRate)
	require.NoError(t, err)

	total := 0
	buf := make([][2]float64, 128)
	for {
		n, ok := s.Stream(buf)
		total += n
		for i := 0; i < n; i++ {
			assert.LessOrEqual(t, buf[i][0], 1.0)
			assert.GreaterOrEqual(t, buf[i][0], -1.0)
		}
		if !ok {
			break
		}
	}
	assert.Equal(t, 2*sampleRate.N(10*time.Millisecond), total)
}

func TestToneStreamerInvalidFrequency(t *testing.T) {
	// above the nyquist frequency
	_, err := Tone{Notes: []float64{30000}, Length: time.Millisecond}.Streamer(sampleRate)
	assert.Error(t, err)
}

func TestPlayerIgnoresEventsBeforeInit(t *testing.T) {
	p := NewPlayer()
	p.Handle(context.Background(), model.RaceEvent{Type: model.EventLap})
	assert.Equal(t, 0, p.mixer.Len())
	p.Close()
}
