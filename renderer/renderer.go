// Package renderer defines exporters for finished documents and the frame
// walk they share.
package renderer

import (
	"iter"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/geom"
)

// Renderer 将文档输出为最终文件，例如 PDF。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(d *doc.Document) ([]byte, error)
}

// Placement is the page-space state an element is painted with.
type Placement struct {
	// Transform maps the element's frame coordinates to page coordinates.
	Transform geom.Transform
	// Clip is the visible page area, nil when unclipped.
	Clip *geom.Rect
}

// Visit is called for every non-group element in paint order. pos is the
// element's position in the frame it belongs to.
type Visit func(p Placement, pos geom.Point, elem doc.Element)

// Walk visits the elements of a page frame, descending into groups.
// Elements whose bounds fall entirely outside the active clip are skipped;
// exporters clip the rest against Placement.Clip.
func Walk(page *doc.Frame, visit Visit) {
	walk(page, Placement{Transform: geom.Identity()}, visit)
}

// elements is a frame or a group.
type elements interface {
	Elements() iter.Seq2[geom.Point, doc.Element]
}

func walk(f elements, p Placement, visit Visit) {
	for pos, elem := range f.Elements() {
		if g, ok := elem.(doc.Group); ok {
			inner := Placement{
				Transform: p.Transform.Pre(geom.Translate(pos.X, pos.Y).Pre(g.Transform)),
				Clip:      p.Clip,
			}
			if g.Clips {
				box := geom.Rect{Size: g.Size()}.Transform(inner.Transform)
				if p.Clip != nil {
					box = box.Intersect(*p.Clip)
				}
				inner.Clip = &box
			}
			walk(g, inner, visit)
			continue
		}
		if p.Clip != nil && !visible(*p.Clip, Bounds(pos, elem).Transform(p.Transform)) {
			continue
		}
		visit(p, pos, elem)
	}
}

// visible is like Rect.Intersects but keeps zero-width boxes such as
// horizontal lines.
func visible(clip, box geom.Rect) bool {
	cm, bm := clip.Max(), box.Max()
	return box.Min.X <= cm.X && clip.Min.X <= bm.X && box.Min.Y <= cm.Y && clip.Min.Y <= bm.Y
}

// Bounds returns the frame-space extent of an element placed at pos.
func Bounds(pos geom.Point, elem doc.Element) geom.Rect {
	switch e := elem.(type) {
	case doc.Text:
		m := e.Font.Metrics()
		asc, desc := m.Ascender.At(e.Size), m.Descender.At(e.Size)
		if asc == 0 && desc == 0 {
			asc = e.Size
		}
		return geom.Rect{Min: geom.NewPoint(pos.X, pos.Y-asc), Size: geom.NewSize(e.Width(), asc+desc)}
	case doc.Shape:
		r := e.Bounds()
		if e.Stroke != nil {
			r = r.Inflate(e.Stroke.Thickness / 2)
		}
		r.Min = r.Min.Add(pos)
		return r
	case doc.Image:
		return geom.Rect{Min: pos, Size: e.Size}
	case doc.MetaElement:
		return geom.Rect{Min: pos, Size: e.Size}
	case doc.Group:
		return geom.Rect{Size: e.Size()}.Transform(geom.Translate(pos.X, pos.Y).Pre(e.Transform))
	}
	return geom.Rect{Min: pos}
}

// Annotation is a metadata region on a page.
type Annotation struct {
	Meta doc.Meta
	// Page starts at 1.
	Page int
	// Rect is the page-space bounding box.
	Rect geom.Rect
}

// CollectAnnotations lists the links and nodes of a document in paint
// order.
func CollectAnnotations(d *doc.Document) []Annotation {
	var out []Annotation
	for i, page := range d.Pages {
		Walk(page, func(p Placement, pos geom.Point, elem doc.Element) {
			m, ok := elem.(doc.MetaElement)
			if !ok {
				return
			}
			out = append(out, Annotation{
				Meta: m.Meta,
				Page: i + 1,
				Rect: Bounds(pos, m).Transform(p.Transform),
			})
		})
	}
	return out
}
