//nolint:thelper,whitespace,lll,funlen // ok for tests
package terminal

import (
	"strings"
	"testing"
	"time"

	"github.com/aarondl/opt/omit"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/testsupport/masks"
)

type fakeCell struct {
	r     rune
	style tcell.Style
}

type fakeCanvas struct {
	w, h  int
	cells map[[2]int]fakeCell
}

func newFakeCanvas(w, h int) *fakeCanvas {
	return &fakeCanvas{w: w, h: h, cells: map[[2]int]fakeCell{}}
}

func (f *fakeCanvas) SetContent(x, y int, primary rune, _ []rune, style tcell.Style) {
	if x < 0 || y < 0 || x >= f.w || y >= f.h {
		return
	}
	f.cells[[2]int{x, y}] = fakeCell{r: primary, style: style}
}

func (f *fakeCanvas) Size() (width, height int) { return f.w, f.h }

func (f *fakeCanvas) at(x, y int) rune {
	return f.cells[[2]int{x, y}].r
}

func (f *fakeCanvas) line(y int) string {
	b := strings.Builder{}
	for x := 0; x < f.w; x++ {
		if r := f.at(x, y); r != 0 {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// arena is 200x200, a 100x52 canvas yields cells of 2x4 pixels
func arenaSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Time:        t0,
		Pose:        model.Pose{X: 20, Y: 150},
		Checkpoints: 1,
	}
}

func TestArrow(t *testing.T) {
	tests := []struct {
		heading float64
		want    rune
	}{
		{0, '↑'},
		{45, '↖'},
		{90, '←'},
		{180, '↓'},
		{270, '→'},
		{-90, '→'},
		{359, '↑'},
		{337.4, '↗'},
		{720 + 135, '↙'},
	}
	for _, tt := range tests {
		assert.Equal(t, string(tt.want), string(Arrow(tt.heading)), "heading %v", tt.heading)
	}
}

func TestViewTrack(t *testing.T) {
	v := NewView(masks.Arena(), WithCheckpoints(true))
	c := newFakeCanvas(100, 52)
	v.Draw(c, arenaSnapshot())

	assert.Equal(t, 2, v.scale)
	assert.Equal(t, '#', c.at(40, 20), "block top left")
	assert.Equal(t, '#', c.at(59, 29), "block bottom right")
	assert.Equal(t, ' ', c.at(39, 20), "left of block")
	assert.Equal(t, ' ', c.at(60, 30), "below block")
	assert.Equal(t, '1', c.at(0, 0), "next checkpoint")
	assert.Equal(t, '1', c.at(9, 4), "next checkpoint")
	assert.Equal(t, styleCpNext, c.cells[[2]int{0, 0}].style)
	assert.Equal(t, '=', c.at(90, 0), "finish")
	assert.Equal(t, styleFinish, c.cells[[2]int{90, 0}].style)
	assert.Equal(t, '↑', c.at(11, 38), "vehicle")
}

func TestViewCheckpointVisibility(t *testing.T) {
	s := arenaSnapshot()
	s.NextCheckpoint = 1
	t.Run("hidden", func(t *testing.T) {
		c := newFakeCanvas(100, 52)
		NewView(masks.Arena()).Draw(c, s)
		assert.Equal(t, ' ', c.at(0, 0))
	})
	t.Run("cleared checkpoint", func(t *testing.T) {
		c := newFakeCanvas(100, 52)
		NewView(masks.Arena(), WithCheckpoints(true)).Draw(c, s)
		assert.Equal(t, ':', c.at(0, 0))
		assert.Equal(t, styleCpNext, c.cells[[2]int{90, 0}].style, "finish armed")
	})
}

func TestViewStrip(t *testing.T) {
	// thin zones on a downscaled track stay visible
	v := NewView(masks.Straight(3), WithCheckpoints(true))
	c := newFakeCanvas(40, 52)
	s := &model.Snapshot{Time: t0, Pose: model.Pose{X: 18, Y: 380}, Checkpoints: 3}
	v.Draw(c, s)
	assert.Equal(t, 4, v.scale)
	assert.Equal(t, "==========", c.line(2))
	assert.Equal(t, "1111111111", c.line(37))
	assert.Equal(t, "::::::::::", c.line(25))
	assert.Equal(t, "::::::::::", c.line(12))
}

func TestViewHud(t *testing.T) {
	s := arenaSnapshot()
	s.Lap = 2
	s.LapTime = 3250 * time.Millisecond
	s.LastLap = omit.From(61500 * time.Millisecond)
	s.BestLap = omit.From(60 * time.Second)
	s.Sectors = []time.Duration{30 * time.Second, 31500 * time.Millisecond}
	s.BestSectors = []time.Duration{29 * time.Second, 31 * time.Second}

	t.Run("plain", func(t *testing.T) {
		c := newFakeCanvas(100, 52)
		NewView(masks.Arena()).Draw(c, s)
		assert.Equal(t, "LAP 3  CP 0/1  TIME 0:03.250  LAST 1:01.500  BEST 1:00.000", c.line(50))
		assert.Equal(t, "S1 0:30.000  S2 0:31.500", c.line(51))
	})
	t.Run("flashes", func(t *testing.T) {
		f := *s
		f.SectorFlash = model.Flash{Index: 1, Improved: false, Until: t0.Add(time.Second)}
		f.LapFlash = model.Flash{Index: -1, Improved: true, Until: t0.Add(time.Second)}
		c := newFakeCanvas(100, 52)
		NewView(masks.Arena()).Draw(c, &f)
		assert.Equal(t, "S1 0:30.000  S2 0:31.500 (+0.500)", c.line(51))
		assert.Equal(t, styleSlower, c.cells[[2]int{14, 51}].style)
		assert.Equal(t, styleImproved, c.cells[[2]int{35, 50}].style)
	})
	t.Run("expired flashes", func(t *testing.T) {
		f := *s
		f.SectorFlash = model.Flash{Index: 1, Improved: true, Until: t0}
		c := newFakeCanvas(100, 52)
		NewView(masks.Arena()).Draw(c, &f)
		assert.Equal(t, "S1 0:30.000  S2 0:31.500", c.line(51))
	})
	t.Run("finish armed", func(t *testing.T) {
		f := *s
		f.NextCheckpoint = 1
		c := newFakeCanvas(100, 52)
		NewView(masks.Arena()).Draw(c, &f)
		assert.True(t, strings.HasSuffix(c.line(50), "BEST 1:00.000  FINISH"))
	})
}
