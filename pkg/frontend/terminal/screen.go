// Package terminal renders the race in a terminal and reads the keyboard
package terminal

import (
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/track"
)

// Screen owns the tcell screen. It is a session.FrameSink and feeds key events
// into its Keyboard.
type Screen struct {
	screen  tcell.Screen
	view    *View
	keys    *Keyboard
	resized atomic.Bool
	log     *log.Logger
}

type ScreenOption func(s *Screen)

func WithView(v *View) ScreenOption {
	return func(s *Screen) {
		s.view = v
	}
}

func WithKeyboard(k *Keyboard) ScreenOption {
	return func(s *Screen) {
		s.keys = k
	}
}

func WithScreenLogger(l *log.Logger) ScreenOption {
	return func(s *Screen) {
		s.log = l
	}
}

// Open initializes the terminal and starts reading its events.
// The caller must Close the screen to restore the terminal.
func Open(t *track.Track, opts ...ScreenOption) (*Screen, error) {
	sc, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := sc.Init(); err != nil {
		return nil, err
	}
	s := newScreen(sc, t, opts...)
	go s.listen()
	return s, nil
}

func newScreen(sc tcell.Screen, t *track.Track, opts ...ScreenOption) *Screen {
	s := &Screen{screen: sc, log: log.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	if s.view == nil {
		s.view = NewView(t)
	}
	if s.keys == nil {
		s.keys = NewKeyboard()
	}
	sc.HideCursor()
	s.resized.Store(true)
	return s
}

func (s *Screen) Keyboard() *Keyboard {
	return s.keys
}

// PollEvent returns nil once the screen is finalized
func (s *Screen) listen() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			return
		}
		s.handle(ev)
	}
}

func (s *Screen) handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if !s.keys.HandleKey(ev) {
			s.log.Debug("unmapped key", log.String("key", ev.Name()))
		}
	case *tcell.EventResize:
		s.resized.Store(true)
	}
}

// Render implements session.FrameSink
func (s *Screen) Render(snap *model.Snapshot) {
	if s.resized.Swap(false) {
		w, h := s.screen.Size()
		s.view.Resize(w, h)
		s.screen.Clear()
		s.log.Debug("screen resized", log.Int("width", w), log.Int("height", h))
	}
	s.view.Draw(s.screen, snap)
	s.screen.Show()
}

func (s *Screen) Close() {
	s.screen.Fini()
}
