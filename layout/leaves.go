package layout

import (
	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/style"
)

// text 处理 `text "内容" x= y= font= size= fill= lang= w= align=`。
//
// 文本帧高度为字体的上伸部与下伸部之和，基线位于上伸部底端。给出 w 时
// 帧被扩展到该宽度，文字按 align 对齐。
func (b *builder) text(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	content := a.text(0, "content")
	pos := a.pos()

	fontName := style.Get(chain, textFont)
	if v, ok := a.named("font"); ok {
		fontName = v
	}
	size := a.length("size", style.Get(chain, textSize), style.Get(chain, textSize))
	fill := style.Get(chain, textFill)
	if c := a.color("fill"); c != nil {
		fill = *c
	}
	lang := style.Get(chain, textLang)
	if code, ok := a.named("lang"); ok {
		l, err := doc.ParseLang(code)
		if err != nil {
			a.fail("lang", err)
		}
		lang = l
	}
	boxW, hasW := a.optLength("w", dst.Width())
	align := a.align("align", geom.AlignStart)
	a.check("x", "y", "font", "size", "fill", "lang", "w", "align")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}

	f, err := b.fontFor(fontName)
	if err != nil {
		return geom.Point{}, cmd.Errorf("%v", err)
	}
	shaped, err := b.shaper.Shape(f, content, lang.String(), lang.Dir())
	if err != nil {
		return geom.Point{}, cmd.Errorf("排版失败: %v", err)
	}
	runes := []rune(content)
	glyphs := make([]doc.Glyph, len(shaped))
	for i, g := range shaped {
		var c rune
		if g.Cluster >= 0 && g.Cluster < len(runes) {
			c = runes[g.Cluster]
		}
		glyphs[i] = doc.Glyph{ID: g.ID, XAdvance: g.Advance, XOffset: g.Offset, C: c}
	}
	run := doc.Text{Font: f, Size: size, Fill: fill, Lang: lang, Glyphs: glyphs}

	m := f.Metrics()
	ascent, descent := m.Ascender.At(size), m.Descender.At(size)
	frame := doc.NewFrame(geom.NewSize(run.Width(), ascent+descent))
	frame.SetBaseline(ascent)
	frame.Push(geom.NewPoint(0, ascent), run)
	if hasW && boxW >= 0 {
		frame.Resize(geom.NewSize(boxW, frame.Height()), geom.NewAxes(align, geom.AlignStart))
	}
	return b.put(dst, pos, frame, chain), nil
}

// shape 处理 `rect 宽 高` 与 `ellipse 宽 高`，可带 fill、stroke、stroke-width。
// 既无填充也无描边时以黑色填充。
func (b *builder) shape(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	w := a.reqLength(0, "w", dst.Width())
	h := a.reqLength(1, "h", dst.Height())
	pos := a.pos()
	fill := a.color("fill")
	stroke := a.stroke()
	a.check("x", "y", "w", "h", "fill", "stroke", "stroke-width")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}
	if w < 0 || h < 0 {
		return geom.Point{}, cmd.Errorf("尺寸不能为负")
	}
	if fill == nil && stroke == nil {
		black := geom.Black
		fill = &black
	}

	size := geom.NewSize(w, h)
	geo := geom.RectOf(size)
	if cmd.Name == "ellipse" {
		geo = geom.EllipseOf(size)
	}
	frame := doc.NewFrame(size)
	frame.Push(geom.Point{}, doc.Shape{Shape: geom.Shape{Geometry: geo, Fill: fill, Stroke: stroke}})
	return b.put(dst, pos, frame, chain), nil
}

// line 处理 `line dx dy`：从 (x, y) 画到 (x+dx, y+dy)。
func (b *builder) line(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	dx := a.reqLength(0, "dx", dst.Width())
	dy := a.reqLength(1, "dy", dst.Height())
	pos := a.pos()
	stroke := a.stroke()
	a.check("x", "y", "dx", "dy", "stroke", "stroke-width")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}
	if stroke == nil {
		stroke = &geom.Stroke{Paint: geom.Black, Thickness: geom.Pt(1)}
	}

	// 帧覆盖线段的包围盒，起点在帧内按方向偏移。
	start := geom.NewPoint((-dx).Max(0), (-dy).Max(0))
	frame := doc.NewFrame(geom.NewSize(abs(dx), abs(dy)))
	frame.Push(start, doc.Shape{Shape: geom.Shape{Geometry: geom.LineTo(geom.NewPoint(dx, dy)), Stroke: stroke}})
	origin := pos.Sub(start)
	return b.put(dst, origin, frame, chain), nil
}

func abs(v geom.Abs) geom.Abs {
	if v < 0 {
		return -v
	}
	return v
}
