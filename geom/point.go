package geom

import "fmt"

// Point is a position relative to some origin, y pointing down.
type Point struct {
	X Abs `json:"x"`
	Y Abs `json:"y"`
}

// NewPoint creates a point from its coordinates.
func NewPoint(x, y Abs) Point { return Point{X: x, Y: y} }

func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Transform applies an affine transform to the point.
func (p Point) Transform(t Transform) Point { return t.Apply(p) }

func (p Point) String() string { return fmt.Sprintf("(%v, %v)", p.X, p.Y) }

// Size is a width and a height.
type Size struct {
	X Abs `json:"width"`
	Y Abs `json:"height"`
}

// NewSize creates a size from width and height.
func NewSize(w, h Abs) Size { return Size{X: w, Y: h} }

func (s Size) IsZero() bool { return s.X == 0 && s.Y == 0 }

// IsFinite reports whether both components are finite.
func (s Size) IsFinite() bool { return s.X.IsFinite() && s.Y.IsFinite() }

// ToPoint converts the size to the point at its bottom-right corner.
func (s Size) ToPoint() Point { return Point{X: s.X, Y: s.Y} }

func (s Size) String() string { return fmt.Sprintf("%v × %v", s.X, s.Y) }

// Axes holds one value per axis.
type Axes[T any] struct {
	X T
	Y T
}

// NewAxes creates a pair from horizontal and vertical values.
func NewAxes[T any](x, y T) Axes[T] { return Axes[T]{X: x, Y: y} }

// Splat uses the same value for both axes.
func Splat[T any](v T) Axes[T] { return Axes[T]{X: v, Y: v} }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	Min  Point `json:"min"`
	Size Size  `json:"size"`
}

// Max returns the bottom-right corner.
func (r Rect) Max() Point { return r.Min.Add(r.Size.ToPoint()) }

// Intersects reports whether two rectangles overlap with a positive area.
func (r Rect) Intersects(o Rect) bool {
	rm, om := r.Max(), o.Max()
	return r.Min.X < om.X && o.Min.X < rm.X && r.Min.Y < om.Y && o.Min.Y < rm.Y
}

// Transform returns the bounding box of the transformed rectangle.
func (r Rect) Transform(t Transform) Rect {
	if t.IsIdentity() {
		return r
	}
	m := r.Max()
	corners := [4]Point{
		t.Apply(r.Min),
		t.Apply(Point{X: m.X, Y: r.Min.Y}),
		t.Apply(Point{X: r.Min.X, Y: m.Y}),
		t.Apply(m),
	}
	lo, hi := corners[0], corners[0]
	for _, c := range corners[1:] {
		lo.X, lo.Y = lo.X.Min(c.X), lo.Y.Min(c.Y)
		hi.X, hi.Y = hi.X.Max(c.X), hi.Y.Max(c.Y)
	}
	return Rect{Min: lo, Size: Size{X: hi.X - lo.X, Y: hi.Y - lo.Y}}
}

// Intersect returns the overlap of two rectangles. The result has zero size
// when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	rm, om := r.Max(), o.Max()
	lo := Point{X: r.Min.X.Max(o.Min.X), Y: r.Min.Y.Max(o.Min.Y)}
	hi := Point{X: rm.X.Min(om.X), Y: rm.Y.Min(om.Y)}
	return Rect{Min: lo, Size: Size{X: (hi.X - lo.X).Max(0), Y: (hi.Y - lo.Y).Max(0)}}
}

// Inflate grows the rectangle by d on every side.
func (r Rect) Inflate(d Abs) Rect {
	return Rect{
		Min:  Point{X: r.Min.X - d, Y: r.Min.Y - d},
		Size: Size{X: r.Size.X + 2*d, Y: r.Size.Y + 2*d},
	}
}
