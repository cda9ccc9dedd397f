package geom

import "github.com/chewxy/math32"

// Box3 is an axis-aligned bounding box given by its minimum and maximum corners.
type Box3 struct {
	Min Vec3
	Max Vec3
}

// EmptyBox returns a box with min = +Inf and max = -Inf so that any expansion sets it.
func EmptyBox() Box3 {
	inf := math32.Inf(1)
	return Box3{Min: Vec3{inf, inf, inf}, Max: Vec3{-inf, -inf, -inf}}
}

// IsEmpty reports whether max < min on any axis.
func (b Box3) IsEmpty() bool {
	return b.Max.X < b.Min.X || b.Max.Y < b.Min.Y || b.Max.Z < b.Min.Z
}

// ExpandByPoint grows the box to include p.
func (b *Box3) ExpandByPoint(p Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// ExpandByBox grows the box to include o. Empty boxes are ignored.
func (b *Box3) ExpandByBox(o Box3) {
	if o.IsEmpty() {
		return
	}
	b.ExpandByPoint(o.Min)
	b.ExpandByPoint(o.Max)
}

// Center returns the midpoint of the box.
func (b Box3) Center() Vec3 { return b.Min.Add(b.Max).MulScalar(0.5) }

// Size returns max - min.
func (b Box3) Size() Vec3 { return b.Max.Sub(b.Min) }

// Transform returns the box spanning all eight corners of b transformed by m.
func (b Box3) Transform(m Mat4) Box3 {
	if b.IsEmpty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&1 != 0 {
			c.X = b.Max.X
		}
		if i&2 != 0 {
			c.Y = b.Max.Y
		}
		if i&4 != 0 {
			c.Z = b.Max.Z
		}
		out.ExpandByPoint(m.MulPoint(c))
	}
	return out
}
