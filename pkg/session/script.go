package session

import (
	"errors"
	"fmt"

	"github.com/ohler55/ojg/oj"
)

var ErrInvalidScript = errors.New("invalid input script")

type (
	// ScriptStep holds keys for a number of ticks
	ScriptStep struct {
		Ticks int      `json:"ticks"`
		Keys  []string `json:"keys"`
	}
	Script struct {
		Steps []ScriptStep `json:"steps"`
	}
)

// ParseScript reads a JSON input script.
// Example: {"steps":[{"ticks":60,"keys":["forward","left"]}]}
func ParseScript(data []byte) (*Script, error) {
	s := Script{}
	if err := oj.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidScript, err)
	}
	for i := range s.Steps {
		if s.Steps[i].Ticks <= 0 {
			return nil, fmt.Errorf("%w: step %d needs ticks > 0", ErrInvalidScript, i)
		}
		if _, err := commandFromKeys(s.Steps[i].Keys); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}
	return &s, nil
}

// Ticks returns the number of ticks covered by the script
func (s *Script) Ticks() int {
	ret := 0
	for i := range s.Steps {
		ret += s.Steps[i].Ticks
	}
	return ret
}

// ScriptSource replays a script and requests to quit at its end.
// A restart key applies to the first tick of its step only.
type ScriptSource struct {
	script *Script
	step   int
	tick   int
}

func NewScriptSource(s *Script) *ScriptSource {
	return &ScriptSource{script: s}
}

func (s *ScriptSource) Poll() Command {
	if s.step >= len(s.script.Steps) {
		return Command{Quit: true}
	}
	st := &s.script.Steps[s.step]
	cmd, _ := commandFromKeys(st.Keys)
	if s.tick > 0 {
		cmd.Restart = false
	}
	s.tick++
	if s.tick >= st.Ticks {
		s.step++
		s.tick = 0
	}
	return cmd
}

func commandFromKeys(keys []string) (Command, error) {
	ret := Command{}
	for _, k := range keys {
		switch k {
		case "left":
			ret.Input.TurnLeft = true
		case "right":
			ret.Input.TurnRight = true
		case "forward":
			ret.Input.Forward = true
		case "backward":
			ret.Input.Backward = true
		case "restart":
			ret.Restart = true
		default:
			return ret, fmt.Errorf("%w: unknown key %q", ErrInvalidScript, k)
		}
	}
	return ret, nil
}
