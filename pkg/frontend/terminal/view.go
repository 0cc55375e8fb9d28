package terminal

import (
	"fmt"
	"math"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/track"
	"github.com/mpapenbr/tankrace/pkg/utils/laptime"
)

// Canvas is the drawing surface, tcell.Screen satisfies it
type Canvas interface {
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Size() (width, height int)
}

const hudLines = 2

type cellKind int

const (
	cellOffTrack cellKind = iota
	cellRoad
	cellWall
	cellFinish
	cellCheckpoint
)

type cell struct {
	kind       cellKind
	checkpoint int
}

var (
	styleRoad     = tcell.StyleDefault
	styleOffTrack = tcell.StyleDefault.Foreground(tcell.ColorDarkGreen)
	styleWall     = tcell.StyleDefault.Foreground(tcell.ColorGray)
	styleFinish   = tcell.StyleDefault.Foreground(tcell.ColorWhite).Bold(true)
	styleCp       = tcell.StyleDefault.Foreground(tcell.ColorDarkCyan)
	styleCpNext   = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleVehicle  = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	styleHud      = tcell.StyleDefault.Foreground(tcell.ColorSilver)
	styleImproved = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	styleSlower   = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

// arrows by heading in steps of 45 degrees, counter-clockwise from up
var arrows = []rune("↑↖←↙↓↘→↗")

// View renders a downscaled track with the vehicle and a HUD
type View struct {
	track           *track.Track
	showCheckpoints bool
	scale           int // track pixels per cell column, rows cover twice as much
	cells           [][]cell
}

type ViewOption func(v *View)

func WithCheckpoints(show bool) ViewOption {
	return func(v *View) {
		v.showCheckpoints = show
	}
}

func NewView(t *track.Track, opts ...ViewOption) *View {
	v := &View{track: t}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Resize adapts the scale to a canvas of the given size
func (v *View) Resize(width, height int) {
	rows := max(height-hudLines, 1)
	cols := max(width, 1)
	sx := (v.track.Width + cols - 1) / cols
	sy := (v.track.Height + 2*rows - 1) / (2 * rows)
	v.scale = max(sx, sy, 1)
	v.classify()
}

// a cell takes the kind of the most significant zone touching it
func (v *View) classify() {
	cw, ch := v.scale, 2*v.scale
	cols := (v.track.Width + cw - 1) / cw
	rows := (v.track.Height + ch - 1) / ch
	block := track.Rect(cw, ch)
	touches := func(z track.Zone, x, y int) bool {
		return z.Mask.Overlap(block, x-z.Anchor.X, y-z.Anchor.Y)
	}
	v.cells = make([][]cell, rows)
	for r := range v.cells {
		v.cells[r] = make([]cell, cols)
		for c := range v.cells[r] {
			x, y := c*cw, r*ch
			cur := &v.cells[r][c]
			switch {
			case touches(v.track.Limit, x, y):
				cur.kind = cellWall
			case touches(v.track.Finish, x, y):
				cur.kind = cellFinish
			case !touches(v.track.Playable, x, y):
				cur.kind = cellOffTrack
			default:
				cur.kind = cellRoad
				for i, z := range v.track.Checkpoints {
					if touches(z, x, y) {
						cur.kind = cellCheckpoint
						cur.checkpoint = i
						break
					}
				}
			}
		}
	}
}

// Draw renders the snapshot onto the canvas
func (v *View) Draw(c Canvas, s *model.Snapshot) {
	w, h := c.Size()
	if v.cells == nil {
		v.Resize(w, h)
	}
	for r, row := range v.cells {
		for col, cl := range row {
			ch, style := v.glyph(cl, s)
			c.SetContent(col, r, ch, nil, style)
		}
	}
	fw := float64(v.track.Footprint.Width())
	fh := float64(v.track.Footprint.Height())
	vc := int(math.Floor((s.Pose.X + fw/2) / float64(v.scale)))
	vr := int(math.Floor((s.Pose.Y + fh/2) / float64(2*v.scale)))
	c.SetContent(vc, vr, Arrow(s.Pose.Heading), nil, styleVehicle)
	v.drawHud(c, len(v.cells), s)
}

func (v *View) glyph(cl cell, s *model.Snapshot) (rune, tcell.Style) {
	switch cl.kind {
	case cellWall:
		return '#', styleWall
	case cellFinish:
		if s.FinishArmed() {
			return '=', styleCpNext
		}
		return '=', styleFinish
	case cellCheckpoint:
		if !v.showCheckpoints {
			return ' ', styleRoad
		}
		if cl.checkpoint == s.NextCheckpoint {
			return rune('1' + cl.checkpoint%9), styleCpNext
		}
		return ':', styleCp
	case cellOffTrack:
		return '.', styleOffTrack
	case cellRoad:
	}
	return ' ', styleRoad
}

func (v *View) drawHud(c Canvas, y int, s *model.Snapshot) {
	now := s.Time
	last := "-:--.---"
	lastStyle := styleHud
	if d, ok := s.LastLap.Get(); ok {
		last = laptime.Format(d)
		if s.LapFlash.ActiveAt(now) {
			lastStyle = flashStyle(s.LapFlash)
		}
	}
	best := "-:--.---"
	if d, ok := s.BestLap.Get(); ok {
		best = laptime.Format(d)
	}
	x := drawText(c, 0, y, fmt.Sprintf("LAP %d  CP %d/%d  TIME %s  LAST ",
		s.Lap+1, s.NextCheckpoint, s.Checkpoints, laptime.Format(s.LapTime)), styleHud)
	x = drawText(c, x, y, last, lastStyle)
	x = drawText(c, x, y, "  BEST "+best, styleHud)
	if s.FinishArmed() {
		drawText(c, x, y, "  FINISH", styleCpNext)
	}

	x = 0
	for i, d := range s.Sectors {
		style := styleHud
		text := fmt.Sprintf("S%d %s", i+1, laptime.Format(d))
		if i < len(s.BestSectors) && s.SectorFlash.Index == i && s.SectorFlash.ActiveAt(now) {
			style = flashStyle(s.SectorFlash)
			if s.SectorFlash.Improved {
				text += " (best)"
			} else {
				text += " (" + laptime.Delta(d, s.BestSectors[i]) + ")"
			}
		}
		x = drawText(c, x, y+1, text+"  ", style)
	}
	w, _ := c.Size()
	drawText(c, x, y+1, strings.Repeat(" ", max(w-x, 0)), styleHud)
}

func flashStyle(f model.Flash) tcell.Style {
	if f.Improved {
		return styleImproved
	}
	return styleSlower
}

// Arrow returns the glyph for a heading in degrees
func Arrow(heading float64) rune {
	deg := math.Mod(heading, 360)
	if deg < 0 {
		deg += 360
	}
	return arrows[int(math.Round(deg/45))%len(arrows)]
}

func drawText(c Canvas, x, y int, text string, style tcell.Style) int {
	for _, r := range text {
		c.SetContent(x, y, r, nil, style)
		x++
	}
	return x
}
