package doc

import (
	"encoding/json"

	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/model"
)

// 该文件定义帧树的调试 JSON 形式，供 layout.WriteDebugJSON 使用。

type frameJSON struct {
	Size     geom.Size  `json:"size"`
	Baseline geom.Abs   `json:"baseline"`
	Elements []itemJSON `json:"elements"`
}

type itemJSON struct {
	Pos  geom.Point `json:"pos"`
	Kind string     `json:"kind"`

	// group
	Transform *geom.Transform `json:"transform,omitempty"`
	Clips     bool            `json:"clips,omitempty"`
	Frame     *Frame          `json:"frame,omitempty"`

	// text
	Text   string    `json:"text,omitempty"`
	Font   string    `json:"font,omitempty"`
	Size   *geom.Abs `json:"size,omitempty"`
	Width  *geom.Abs `json:"width,omitempty"`
	Lang   string    `json:"lang,omitempty"`
	Glyphs int       `json:"glyphs,omitempty"`

	// shape
	Shape *geom.Shape `json:"shape,omitempty"`

	// image and meta
	Region *geom.Size `json:"region,omitempty"`
	Source string     `json:"source,omitempty"`
	Meta   *metaJSON  `json:"meta,omitempty"`
}

type metaJSON struct {
	Link     string         `json:"link,omitempty"`
	Location model.Dict     `json:"location,omitempty"`
	Node     model.StableID `json:"node,omitempty"`
	Content  *model.Content `json:"content,omitempty"`
}

// MarshalJSON encodes the frame tree for debugging.
func (f *Frame) MarshalJSON() ([]byte, error) {
	out := frameJSON{Size: f.size, Baseline: f.Baseline(), Elements: make([]itemJSON, 0, f.Layer())}
	for pos, elem := range f.Elements() {
		out.Elements = append(out.Elements, encodeElement(pos, elem))
	}
	return json.Marshal(out)
}

func encodeElement(pos geom.Point, elem Element) itemJSON {
	it := itemJSON{Pos: pos}
	switch e := elem.(type) {
	case Group:
		it.Kind = "group"
		if !e.Transform.IsIdentity() {
			t := e.Transform
			it.Transform = &t
		}
		it.Clips = e.Clips
		it.Frame = e.frame
	case Text:
		it.Kind = "text"
		it.Text = e.Content()
		it.Font = e.Font.Name()
		size, width := e.Size, e.Width()
		it.Size, it.Width = &size, &width
		it.Lang = e.Lang.String()
		it.Glyphs = len(e.Glyphs)
	case Shape:
		it.Kind = "shape"
		s := e.Shape
		it.Shape = &s
	case Image:
		it.Kind = "image"
		size := e.Size
		it.Region = &size
		if e.Raster != nil {
			it.Source = e.Raster.Name
		}
	case MetaElement:
		it.Kind = "meta"
		size := e.Size
		it.Region = &size
		it.Meta = encodeMeta(e.Meta)
	}
	return it
}

func encodeMeta(m Meta) *metaJSON {
	switch m := m.(type) {
	case Link:
		switch d := m.Dest.(type) {
		case URL:
			return &metaJSON{Link: string(d)}
		case Internal:
			return &metaJSON{Location: d.Loc.Encode()}
		}
	case Node:
		c := m.Content
		return &metaJSON{Node: m.ID, Content: &c}
	}
	return nil
}
