package terminal

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/mpapenbr/tankrace/pkg/clock"
	"github.com/mpapenbr/tankrace/pkg/session"
)

type control int

const (
	ctrlLeft control = iota
	ctrlRight
	ctrlForward
	ctrlBackward
	numControls
)

// Keyboard turns terminal key events into per tick commands.
// Terminals do not report key releases, a key counts as held until the hold
// window after its latest (auto repeated) press has passed.
type Keyboard struct {
	mu      sync.Mutex
	clock   clock.TimeSource
	hold    time.Duration
	until   [numControls]time.Time
	restart bool
	quit    bool
}

type KeyboardOption func(k *Keyboard)

func WithHoldWindow(d time.Duration) KeyboardOption {
	return func(k *Keyboard) {
		k.hold = d
	}
}

func WithKeyboardClock(c clock.TimeSource) KeyboardOption {
	return func(k *Keyboard) {
		k.clock = c
	}
}

func NewKeyboard(opts ...KeyboardOption) *Keyboard {
	k := &Keyboard{clock: clock.NewSystem(), hold: 150 * time.Millisecond}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// HandleKey processes a key event. It returns false for keys without meaning.
func (k *Keyboard) HandleKey(ev *tcell.EventKey) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.clock.Now()
	press := func(c control) bool {
		k.until[c] = now.Add(k.hold)
		// opposite throttle keys release each other
		if c == ctrlForward {
			k.until[ctrlBackward] = time.Time{}
		}
		if c == ctrlBackward {
			k.until[ctrlForward] = time.Time{}
		}
		return true
	}
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		k.quit = true
		return true
	case tcell.KeyLeft:
		return press(ctrlLeft)
	case tcell.KeyRight:
		return press(ctrlRight)
	case tcell.KeyUp:
		return press(ctrlForward)
	case tcell.KeyDown:
		return press(ctrlBackward)
	case tcell.KeyRune:
	default:
		return false
	}
	switch ev.Rune() {
	case 'a', 'A', 'q', 'Q':
		return press(ctrlLeft)
	case 'd', 'D':
		return press(ctrlRight)
	case 'w', 'W', 'z', 'Z':
		return press(ctrlForward)
	case 's', 'S':
		return press(ctrlBackward)
	case 'r', 'R':
		k.restart = true
		return true
	}
	return false
}

// Poll implements session.InputSource
func (k *Keyboard) Poll() session.Command {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.clock.Now()
	held := func(c control) bool { return now.Before(k.until[c]) }
	ret := session.Command{Restart: k.restart, Quit: k.quit}
	ret.Input.TurnLeft = held(ctrlLeft)
	ret.Input.TurnRight = held(ctrlRight)
	ret.Input.Forward = held(ctrlForward)
	ret.Input.Backward = held(ctrlBackward)
	if k.restart {
		k.restart = false
		k.until = [numControls]time.Time{}
	}
	return ret
}
