// Package masks provides synthetic tracks for tests
package masks

import (
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/track"
)

// Frame returns a mask of size w x h with a border of the given thickness
func Frame(w, h, thickness int) *track.Mask {
	m := track.NewMask(w, h)
	m.Fill(0, 0, w, thickness)
	m.Fill(0, h-thickness, w, thickness)
	m.Fill(0, 0, thickness, h)
	m.Fill(w-thickness, 0, thickness, h)
	return m
}

// RectZone returns a completely occupied zone at x,y
func RectZone(x, y, w, h int) track.Zone {
	return track.Zone{Mask: track.Rect(w, h), Anchor: track.Point{X: x, Y: y}}
}

// Straight returns a vertical drag strip of 40x400 pixels.
// The vehicle (4x4 footprint) starts at the bottom pointing up.
// Checkpoints are horizontal bars at y=300,200,100 (n of them, max 3),
// the finish is a bar at y=20. Nothing is solid.
func Straight(n int) *track.Track {
	t := &track.Track{
		Name:      "straight",
		Width:     40,
		Height:    400,
		Playable:  RectZone(0, 0, 40, 400),
		Limit:     track.Zone{Mask: track.NewMask(0, 0)},
		Finish:    RectZone(0, 20, 40, 2),
		Footprint: track.Rect(4, 4),
		Start:     model.Pose{X: 18, Y: 380},
	}
	for i := 0; i < n && i < 3; i++ {
		t.Checkpoints = append(t.Checkpoints, RectZone(0, 300-i*100, 40, 2))
	}
	return t
}

// Arena returns an open 200x200 playable square with a solid 40x40 block in the
// middle (x,y 80..120). The single checkpoint sits in the top left corner and the
// finish in the top right corner. The vehicle (4x4 footprint) starts at 20,150.
func Arena() *track.Track {
	limit := track.NewMask(200, 200)
	limit.Fill(80, 80, 40, 40)
	return &track.Track{
		Name:        "arena",
		Width:       200,
		Height:      200,
		Playable:    RectZone(0, 0, 200, 200),
		Limit:       track.Zone{Mask: limit},
		Finish:      RectZone(180, 0, 20, 20),
		Checkpoints: []track.Zone{RectZone(0, 0, 20, 20)},
		Footprint:   track.Rect(4, 4),
		Start:       model.Pose{X: 20, Y: 150},
	}
}
