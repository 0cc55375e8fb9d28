// Package audio plays short feedback tones for race events
package audio

import (
	"context"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/model"
)

const sampleRate = beep.SampleRate(44100)

// Tone is a sequence of sine notes of equal length
type Tone struct {
	Notes  []float64 // frequencies in Hz
	Length time.Duration
}

// ToneFor returns the tone signalling e. Attempts are silent.
func ToneFor(e model.RaceEvent) (Tone, bool) {
	switch e.Type {
	case model.EventCheckpoint:
		if e.Improved {
			return Tone{Notes: []float64{880, 1175}, Length: 60 * time.Millisecond}, true
		}
		return Tone{Notes: []float64{660}, Length: 80 * time.Millisecond}, true
	case model.EventLap:
		if e.Improved {
			return Tone{Notes: []float64{660, 880, 1320}, Length: 90 * time.Millisecond}, true
		}
		return Tone{Notes: []float64{523, 392}, Length: 90 * time.Millisecond}, true
	case model.EventBounce:
		return Tone{Notes: []float64{110}, Length: 50 * time.Millisecond}, true
	case model.EventAttempt:
	}
	return Tone{}, false
}

// Streamer renders the tone at the given sample rate
func (t Tone) Streamer(sr beep.SampleRate) (beep.Streamer, error) {
	parts := make([]beep.Streamer, 0, len(t.Notes))
	for _, f := range t.Notes {
		g, err := generators.SineTone(sr, f)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(sr.N(t.Length), g))
	}
	return &effects.Gain{Streamer: beep.Seq(parts...), Gain: -0.7}, nil
}

// Player mixes event tones onto the speaker
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
	log         *log.Logger
}

type Option func(p *Player)

func WithLogger(l *log.Logger) Option {
	return func(p *Player) {
		p.log = l
	}
}

func NewPlayer(opts ...Option) *Player {
	p := &Player{mixer: &beep.Mixer{}, log: log.Nop()}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Init opens the audio device. Events received before are ignored.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	return nil
}

// Handle implements session.Handler
func (p *Player) Handle(_ context.Context, e model.RaceEvent) {
	tone, ok := ToneFor(e)
	if !ok {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	s, err := tone.Streamer(sampleRate)
	if err != nil {
		p.log.Warn("cannot create tone", log.ErrorField(err))
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	speaker.Clear()
	speaker.Close()
	p.initialized = false
}
