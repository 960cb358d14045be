package common

// Vec is a point or offset in world pixels.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Rect is an axis-aligned rectangle. Left/Top are inclusive, Right/Bottom exclusive.
type Rect struct {
	Left, Top     float64
	Width, Height float64
}

func (r Rect) Right() float64  { return r.Left + r.Width }
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Min returns the top-left corner.
func (r Rect) Min() Vec { return Vec{X: r.Left, Y: r.Top} }

func (r Rect) Contains(p Vec) bool {
	return p.X >= r.Left && p.X < r.Right() && p.Y >= r.Top && p.Y < r.Bottom()
}

// Intersects reports whether r and other overlap with a non-empty area.
func (r Rect) Intersects(other Rect) bool {
	return r.Left < other.Right() &&
		r.Right() > other.Left &&
		r.Top < other.Bottom() &&
		r.Bottom() > other.Top
}

// Translate returns r moved by d.
func (r Rect) Translate(d Vec) Rect {
	return Rect{Left: r.Left + d.X, Top: r.Top + d.Y, Width: r.Width, Height: r.Height}
}
