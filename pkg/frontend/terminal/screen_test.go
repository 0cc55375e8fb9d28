//nolint:thelper,whitespace,lll,funlen // ok for tests
package terminal

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/model"
)

func TestScreenHandle(t *testing.T) {
	k, _ := newTestKeyboard()
	s := &Screen{keys: k, log: log.Nop()}

	s.handle(tcell.NewEventKey(tcell.KeyUp, 0, tcell.ModNone))
	s.handle(runeKey('x'))
	assert.Equal(t, model.Input{Forward: true}, k.Poll().Input)

	assert.False(t, s.resized.Load())
	s.handle(tcell.NewEventResize(80, 24))
	assert.True(t, s.resized.Load())
}
