//nolint:thelper,whitespace,lll,funlen // ok for tests
package collision

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/track"
	"github.com/mpapenbr/tankrace/testsupport/masks"
)

func TestOracle_Overlaps(t *testing.T) {
	o := NewOracle(track.Rect(4, 4))
	zone := masks.RectZone(12, 12, 5, 5)
	tests := []struct {
		name string
		pose model.Pose
		want bool
	}{
		{"touching corner", model.Pose{X: 9, Y: 9}, true},
		{"fractional position truncated", model.Pose{X: 8.99, Y: 9.5}, false},
		{"inside", model.Pose{X: 13, Y: 13}, true},
		{"right of zone", model.Pose{X: 17, Y: 13}, false},
		{"above zone", model.Pose{X: 13, Y: 7}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.Overlaps(zone, tt.pose))
		})
	}
}

func TestOracle_IsFullyContained(t *testing.T) {
	o := NewOracle(track.Rect(4, 4))
	zone := masks.RectZone(10, 10, 10, 10)
	tests := []struct {
		name string
		pose model.Pose
		want bool
	}{
		{"inside", model.Pose{X: 12, Y: 12}, true},
		{"flush with edges", model.Pose{X: 16, Y: 16}, true},
		{"partially inside", model.Pose{X: 17, Y: 12}, false},
		{"outside", model.Pose{X: 0, Y: 0}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, o.IsFullyContained(zone, tt.pose))
		})
	}

	// a frame never swallows the footprint
	frame := track.Zone{Mask: masks.Frame(20, 20, 3)}
	assert.True(t, o.Overlaps(frame, model.Pose{X: 1, Y: 8}))
	assert.False(t, o.IsFullyContained(frame, model.Pose{X: 1, Y: 8}))
}

func TestOracle_EmptyFootprint(t *testing.T) {
	o := NewOracle(track.NewMask(4, 4))
	zone := masks.RectZone(0, 0, 10, 10)
	assert.False(t, o.Overlaps(zone, model.Pose{X: 2, Y: 2}))
	assert.False(t, o.IsFullyContained(zone, model.Pose{X: 2, Y: 2}))
}

func TestOracle_Rotation(t *testing.T) {
	// 2x6 box, rotated by 90 degrees it covers x -2..3 and y 2..3
	o := NewOracle(track.Rect(2, 6))
	probe := masks.RectZone(3, 2, 1, 1)
	assert.False(t, o.Overlaps(probe, model.Pose{}))
	assert.True(t, o.Overlaps(probe, model.Pose{Heading: 90}))
	assert.True(t, o.Overlaps(probe, model.Pose{Heading: -270}))

	m, pos := o.Footprint(model.Pose{Heading: 90})
	assert.Equal(t, 6, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.Equal(t, track.Point{X: -2, Y: 2}, pos)

	m0, _ := o.Footprint(model.Pose{Heading: 360.4})
	m1, _ := o.Footprint(model.Pose{Heading: 0})
	assert.Same(t, m0, m1)
	m2, _ := o.Footprint(model.Pose{Heading: -90})
	m3, _ := o.Footprint(model.Pose{Heading: 270})
	assert.Same(t, m2, m3)
}
