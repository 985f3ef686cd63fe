package font

import (
	"fmt"

	"golang.org/x/image/font/sfnt"

	"github.com/ByLCY/folio/geom"
)

// SegmentOp is the operator of an outline segment.
type SegmentOp int

const (
	SegmentMoveTo SegmentOp = iota
	SegmentLineTo
	SegmentQuadTo
	SegmentCubeTo
)

// Segment is one command of a glyph outline. Points are relative to the
// glyph origin on the baseline, with y pointing down. Each contour starts
// with a SegmentMoveTo and is implicitly closed.
type Segment struct {
	Op   SegmentOp
	Args [3]geom.Point
}

// Outline returns the outline of a glyph set at size. Glyphs without
// contours, such as spaces, have an empty outline.
func (f *Font) Outline(glyph uint16, size geom.Abs) ([]Segment, error) {
	if f == nil {
		return nil, fmt.Errorf("font: 读取字形轮廓需要字体")
	}
	var buf sfnt.Buffer
	segs, err := f.sf.LoadGlyph(&buf, sfnt.GlyphIndex(glyph), f.ppem(), nil)
	if err != nil {
		return nil, fmt.Errorf("font: 读取 %s 的字形 %d 失败: %w", f.name, glyph, err)
	}
	// ppem 为每 em 一个设计单位，坐标是 26.6 定点的设计单位。
	scale := float64(size) / (64 * f.upem)
	out := make([]Segment, len(segs))
	for i, s := range segs {
		out[i].Op = SegmentOp(s.Op)
		for j, p := range s.Args {
			out[i].Args[j] = geom.NewPoint(geom.Abs(float64(p.X)*scale), geom.Abs(float64(p.Y)*scale))
		}
	}
	return out, nil
}
