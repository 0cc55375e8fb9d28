package track

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// FromWKT rasterizes a (multi)polygon given as WKT into a mask.
// A pixel is occupied if its centre lies inside the geometry.
// The returned anchor is the track position of the mask origin.
func FromWKT(wkt string) (*Mask, Point, error) {
	g, err := geom.UnmarshalWKT(wkt)
	if err != nil {
		return nil, Point{}, fmt.Errorf("%w: %w", ErrInvalidDescriptor, err)
	}
	coords := g.DumpCoordinates()
	if coords.Length() == 0 {
		return nil, Point{}, fmt.Errorf("%w: empty geometry", ErrEmptyMask)
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for i := 0; i < coords.Length(); i++ {
		xy := coords.GetXY(i)
		minX, maxX = math.Min(minX, xy.X), math.Max(maxX, xy.X)
		minY, maxY = math.Min(minY, xy.Y), math.Max(maxY, xy.Y)
	}
	anchor := Point{X: int(math.Floor(minX)), Y: int(math.Floor(minY))}
	m := NewMask(int(math.Ceil(maxX))-anchor.X, int(math.Ceil(maxY))-anchor.Y)
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			pt := geom.NewPoint(geom.Coordinates{
				XY: geom.XY{
					X: float64(anchor.X+x) + 0.5,
					Y: float64(anchor.Y+y) + 0.5,
				},
				Type: geom.DimXY,
			})
			if geom.Intersects(g, pt.AsGeometry()) {
				m.Set(x, y)
			}
		}
	}
	return m, anchor, nil
}
