package doc

import (
	"fmt"
	"image"
	"iter"

	"github.com/ByLCY/folio/geom"
)

// Element is the building block frames are composed of. The set of elements
// is closed: Group, Text, Shape, Image and MetaElement.
type Element interface {
	isElement()
}

func (Group) isElement()       {}
func (Text) isElement()        {}
func (Shape) isElement()       {}
func (Image) isElement()       {}
func (MetaElement) isElement() {}

// Group is a frame nested as a single element, with an optional transform
// and clipping.
type Group struct {
	frame *Frame
	// Transform is applied to the group's contents.
	Transform geom.Transform
	// Clips makes the frame's bounds a clipping boundary.
	Clips bool
}

// NewGroup creates a group with the identity transform and no clipping.
// The frame is consumed: its elements move into the group and it is left
// empty.
func NewGroup(frame *Frame) Group {
	inner := &Frame{size: frame.size, baseline: frame.baseline, hasBaseline: frame.hasBaseline, elems: frame.take()}
	return Group{frame: inner, Transform: geom.Identity()}
}

// Frame returns the group's contents. The result shares storage with the
// group but is a separate owner: writing to it copies the elements and
// leaves every frame holding the group unchanged.
func (g Group) Frame() *Frame {
	if g.frame == nil {
		return nil
	}
	return g.frame.Clone()
}

// Elements iterates over the group's elements without taking a handle on
// its storage.
func (g Group) Elements() iter.Seq2[geom.Point, Element] {
	if g.frame == nil {
		return func(func(geom.Point, Element) bool) {}
	}
	return g.frame.Elements()
}

// Size returns the size of the group's frame.
func (g Group) Size() geom.Size {
	if g.frame == nil {
		return geom.Size{}
	}
	return g.frame.Size()
}

func (g Group) String() string {
	if g.frame == nil {
		return "Group []"
	}
	return "Group " + g.frame.String()
}

// Shape is a geometric shape with optional fill and stroke.
type Shape struct {
	geom.Shape
}

func (s Shape) String() string {
	return fmt.Sprintf("Shape(%s)", s.Geometry.Kind)
}

// Raster is a decoded image resource.
type Raster struct {
	// Name is the source the image was loaded from.
	Name  string
	Image image.Image
}

// PixelSize returns the image's dimensions in pixels.
func (r *Raster) PixelSize() (int, int) {
	if r == nil || r.Image == nil {
		return 0, 0
	}
	b := r.Image.Bounds()
	return b.Dx(), b.Dy()
}

// Image is an image painted at a size.
type Image struct {
	Raster *Raster
	Size   geom.Size
}

func (i Image) String() string {
	if i.Raster == nil {
		return "Image"
	}
	return fmt.Sprintf("Image(%q)", i.Raster.Name)
}

// MetaElement is meta information and the region it applies to.
type MetaElement struct {
	Meta Meta
	Size geom.Size
}

func (m MetaElement) String() string {
	return fmt.Sprint(m.Meta)
}
