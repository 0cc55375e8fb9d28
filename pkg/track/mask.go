package track

import (
	"image"
	"math"
	"math/bits"
)

// alpha values above this threshold mark a pixel as occupied
const alphaThreshold = 127

type Point struct {
	X int
	Y int
}

// Mask is a binary occupancy bitmap. Coordinates outside of the mask are unoccupied.
type Mask struct {
	width  int
	height int
	stride int // words per row
	bits   []uint64
}

func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	stride := (width + 63) / 64
	return &Mask{
		width:  width,
		height: height,
		stride: stride,
		bits:   make([]uint64, stride*height),
	}
}

// Rect returns a completely occupied mask
func Rect(width, height int) *Mask {
	m := NewMask(width, height)
	m.Fill(0, 0, width, height)
	return m
}

func (m *Mask) Width() int  { return m.width }
func (m *Mask) Height() int { return m.height }

func (m *Mask) inside(x, y int) bool {
	return x >= 0 && y >= 0 && x < m.width && y < m.height
}

func (m *Mask) Set(x, y int) {
	if !m.inside(x, y) {
		return
	}
	m.bits[y*m.stride+x/64] |= 1 << (uint(x) % 64)
}

func (m *Mask) Clear(x, y int) {
	if !m.inside(x, y) {
		return
	}
	m.bits[y*m.stride+x/64] &^= 1 << (uint(x) % 64)
}

func (m *Mask) Get(x, y int) bool {
	if !m.inside(x, y) {
		return false
	}
	return m.bits[y*m.stride+x/64]&(1<<(uint(x)%64)) != 0
}

// Fill occupies the rectangle with top-left x,y (clipped to the mask)
func (m *Mask) Fill(x, y, width, height int) {
	for yy := max(y, 0); yy < min(y+height, m.height); yy++ {
		for xx := max(x, 0); xx < min(x+width, m.width); xx++ {
			m.Set(xx, yy)
		}
	}
}

// Count returns the number of occupied pixels
func (m *Mask) Count() int {
	ret := 0
	for _, w := range m.bits {
		ret += bits.OnesCount64(w)
	}
	return ret
}

// Points returns the occupied pixels in row-major order
func (m *Mask) Points() []Point {
	ret := make([]Point, 0, m.Count())
	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			if m.Get(x, y) {
				ret = append(ret, Point{X: x, Y: y})
			}
		}
	}
	return ret
}

// Overlap reports whether other, placed at offset dx,dy relative to the origin
// of m, shares at least one occupied pixel with m.
func (m *Mask) Overlap(other *Mask, dx, dy int) bool {
	found := false
	m.visitIntersection(other, dx, dy, func() bool {
		found = true
		return false
	})
	return found
}

// OverlapCount returns the number of pixels occupied in both masks, other placed
// at offset dx,dy relative to the origin of m.
func (m *Mask) OverlapCount(other *Mask, dx, dy int) int {
	ret := 0
	m.visitIntersection(other, dx, dy, func() bool {
		ret++
		return true
	})
	return ret
}

// calls fn for every pixel occupied in both masks until fn returns false
func (m *Mask) visitIntersection(other *Mask, dx, dy int, fn func() bool) {
	x0, y0 := max(0, dx), max(0, dy)
	x1, y1 := min(m.width, dx+other.width), min(m.height, dy+other.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			if m.Get(x, y) && other.Get(x-dx, y-dy) {
				if !fn() {
					return
				}
			}
		}
	}
}

// Scale returns a nearest neighbour scaled copy
func (m *Mask) Scale(factor float64) *Mask {
	w := int(math.Round(float64(m.width) * factor))
	h := int(math.Round(float64(m.height) * factor))
	ret := NewMask(w, h)
	if w == 0 || h == 0 {
		return ret
	}
	for y := 0; y < h; y++ {
		sy := y * m.height / h
		for x := 0; x < w; x++ {
			if m.Get(x*m.width/w, sy) {
				ret.Set(x, y)
			}
		}
	}
	return ret
}

// Rotate returns a copy rotated counter-clockwise by deg degrees around its centre.
// The result is enlarged to the bounding box of the rotated mask.
func (m *Mask) Rotate(deg float64) *Mask {
	rad := deg * math.Pi / 180
	sin, cos := math.Sin(rad), math.Cos(rad)
	fw, fh := float64(m.width), float64(m.height)
	w := int(math.Ceil(math.Abs(fw*cos)+math.Abs(fh*sin)-1e-9))
	h := int(math.Ceil(math.Abs(fw*sin)+math.Abs(fh*cos)-1e-9))
	ret := NewMask(w, h)
	for y := 0; y < h; y++ {
		v := float64(y) + 0.5 - float64(h)/2
		for x := 0; x < w; x++ {
			u := float64(x) + 0.5 - float64(w)/2
			// inverse rotation back into the source mask
			sx := u*cos - v*sin + fw/2
			sy := u*sin + v*cos + fh/2
			if m.Get(int(math.Floor(sx)), int(math.Floor(sy))) {
				ret.Set(x, y)
			}
		}
	}
	return ret
}

// FromImage creates a mask from the alpha channel of img
func FromImage(img image.Image) *Mask {
	b := img.Bounds()
	ret := NewMask(b.Dx(), b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			if a>>8 > alphaThreshold {
				ret.Set(x-b.Min.X, y-b.Min.Y)
			}
		}
	}
	return ret
}
