package collision

import (
	"math"

	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/track"
)

// placed footprint for one whole degree of heading
type rotated struct {
	mask  *track.Mask
	count int
	// offset of the rotated mask relative to the unrotated box
	offX float64
	offY float64
}

// Oracle answers overlap queries of the vehicle footprint against track zones.
// Rotated footprints are cached per whole degree. An Oracle is not safe for
// concurrent use.
type Oracle struct {
	footprint *track.Mask
	cache     [360]*rotated
}

func NewOracle(footprint *track.Mask) *Oracle {
	return &Oracle{footprint: footprint}
}

// Overlaps reports whether the footprint at pose shares at least one pixel with the zone
func (o *Oracle) Overlaps(z track.Zone, pose model.Pose) bool {
	r := o.rotation(pose.Heading)
	dx, dy := offset(r, z, pose)
	return z.Mask.Overlap(r.mask, dx, dy)
}

// IsFullyContained reports whether every footprint pixel at pose is occupied in the zone
func (o *Oracle) IsFullyContained(z track.Zone, pose model.Pose) bool {
	r := o.rotation(pose.Heading)
	if r.count == 0 {
		return false
	}
	dx, dy := offset(r, z, pose)
	return z.Mask.OverlapCount(r.mask, dx, dy) == r.count
}

// Footprint returns the rotated footprint and its top-left track position for pose
func (o *Oracle) Footprint(pose model.Pose) (*track.Mask, track.Point) {
	r := o.rotation(pose.Heading)
	return r.mask, track.Point{
		X: int(math.Floor(pose.X + r.offX)),
		Y: int(math.Floor(pose.Y + r.offY)),
	}
}

func offset(r *rotated, z track.Zone, pose model.Pose) (dx, dy int) {
	return int(math.Floor(pose.X + r.offX - float64(z.Anchor.X))),
		int(math.Floor(pose.Y + r.offY - float64(z.Anchor.Y)))
}

func (o *Oracle) rotation(heading float64) *rotated {
	deg := int(math.Round(heading)) % 360
	if deg < 0 {
		deg += 360
	}
	if o.cache[deg] == nil {
		m := o.footprint
		if deg != 0 {
			m = m.Rotate(float64(deg))
		}
		o.cache[deg] = &rotated{
			mask:  m,
			count: m.Count(),
			offX:  float64(o.footprint.Width()-m.Width()) / 2,
			offY:  float64(o.footprint.Height()-m.Height()) / 2,
		}
	}
	return o.cache[deg]
}
