package geom

import "math"

// Transform is a 2D affine transformation:
//
//	x' = Sx*x + Kx*y + Tx
//	y' = Ky*x + Sy*y + Ty
type Transform struct {
	Sx, Ky float64
	Kx, Sy float64
	Tx, Ty Abs
}

// Identity returns the transform that leaves every point unchanged.
func Identity() Transform {
	return Transform{Sx: 1, Sy: 1}
}

// Translate creates a translation.
func Translate(tx, ty Abs) Transform {
	return Transform{Sx: 1, Sy: 1, Tx: tx, Ty: ty}
}

// Scale creates a scaling about the origin.
func Scale(sx, sy float64) Transform {
	return Transform{Sx: sx, Sy: sy}
}

// Rotate creates a rotation about the origin (angle in radians, clockwise
// because y points down).
func Rotate(angle float64) Transform {
	cos, sin := math.Cos(angle), math.Sin(angle)
	return Transform{Sx: cos, Ky: sin, Kx: -sin, Sy: cos}
}

// IsIdentity reports whether this is the identity transform.
func (t Transform) IsIdentity() bool {
	return t == Identity()
}

// Pre returns the transform that first applies prev and then t.
func (t Transform) Pre(prev Transform) Transform {
	return Transform{
		Sx: t.Sx*prev.Sx + t.Kx*prev.Ky,
		Ky: t.Ky*prev.Sx + t.Sy*prev.Ky,
		Kx: t.Sx*prev.Kx + t.Kx*prev.Sy,
		Sy: t.Ky*prev.Kx + t.Sy*prev.Sy,
		Tx: Abs(t.Sx*float64(prev.Tx)+t.Kx*float64(prev.Ty)) + t.Tx,
		Ty: Abs(t.Ky*float64(prev.Tx)+t.Sy*float64(prev.Ty)) + t.Ty,
	}
}

// Post returns the transform that first applies t and then next.
func (t Transform) Post(next Transform) Transform {
	return next.Pre(t)
}

// Apply maps a point through the transform.
func (t Transform) Apply(p Point) Point {
	return Point{
		X: Abs(t.Sx*float64(p.X)+t.Kx*float64(p.Y)) + t.Tx,
		Y: Abs(t.Ky*float64(p.X)+t.Sy*float64(p.Y)) + t.Ty,
	}
}

// Invert returns the inverse transform, or false when t is singular.
func (t Transform) Invert() (Transform, bool) {
	det := t.Sx*t.Sy - t.Kx*t.Ky
	if math.Abs(det) < 1e-12 {
		return Identity(), false
	}
	inv := 1 / det
	tx, ty := float64(t.Tx), float64(t.Ty)
	return Transform{
		Sx: t.Sy * inv,
		Ky: -t.Ky * inv,
		Kx: -t.Kx * inv,
		Sy: t.Sx * inv,
		Tx: Abs((t.Kx*ty - t.Sy*tx) * inv),
		Ty: Abs((t.Ky*tx - t.Sx*ty) * inv),
	}, true
}
