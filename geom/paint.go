package geom

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Color 采用 0-255 的 RGBA 数值。
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

var (
	Black = Color{A: 255}
	White = Color{R: 255, G: 255, B: 255, A: 255}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}.RGBA()
}

func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor parses #rgb, #rrggbb and #rrggbbaa.
func ParseColor(value string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]}) + "ff"
	case 6:
		hex += "ff"
	case 8:
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// Stroke describes how to outline a shape.
type Stroke struct {
	Paint     Color `json:"paint"`
	Thickness Abs   `json:"thickness"`
}

// GeometryKind enumerates the shape geometries.
type GeometryKind int

const (
	GeometryLine GeometryKind = iota
	GeometryRect
	GeometryEllipse
)

func (k GeometryKind) String() string {
	switch k {
	case GeometryRect:
		return "rect"
	case GeometryEllipse:
		return "ellipse"
	default:
		return "line"
	}
}

// Geometry is a line to a target point, or a rectangle or ellipse of a size.
type Geometry struct {
	Kind GeometryKind `json:"kind"`
	// Target is the end point of a line relative to its start.
	Target Point `json:"target,omitzero"`
	// Size is the extent of a rect or ellipse.
	Size Size `json:"size,omitzero"`
}

// LineTo creates a line geometry.
func LineTo(target Point) Geometry { return Geometry{Kind: GeometryLine, Target: target} }

// RectOf creates a rectangle geometry.
func RectOf(size Size) Geometry { return Geometry{Kind: GeometryRect, Size: size} }

// EllipseOf creates an ellipse geometry inscribed in size.
func EllipseOf(size Size) Geometry { return Geometry{Kind: GeometryEllipse, Size: size} }

// Shape is a geometry with an optional fill and stroke.
type Shape struct {
	Geometry Geometry `json:"geometry"`
	Fill     *Color   `json:"fill,omitempty"`
	Stroke   *Stroke  `json:"stroke,omitempty"`
}

// Bounds returns the extent of the shape relative to its position.
func (s Shape) Bounds() Rect {
	switch s.Geometry.Kind {
	case GeometryLine:
		t := s.Geometry.Target
		r := Rect{Min: Point{X: t.X.Min(0), Y: t.Y.Min(0)}}
		r.Size = Size{X: t.X.Max(0) - r.Min.X, Y: t.Y.Max(0) - r.Min.Y}
		return r
	default:
		return Rect{Size: s.Geometry.Size}
	}
}
