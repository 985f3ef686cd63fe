package layout

import (
	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/style"
)

// container 处理 group、clip、rotate 与 scale。
//
// 子命令排入一个 w×h 的新帧；未给出 h 时高度取内容高度。clip 按帧边界
// 裁剪，rotate 与 scale 绕帧中心变换。
func (b *builder) container(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	pos := a.pos()
	var t geom.Transform
	switch cmd.Name {
	case "rotate":
		t = geom.Rotate(a.angle(0, "angle"))
	case "scale":
		sx := a.number(0, "sx", 1)
		t = geom.Scale(sx, a.number(1, "sy", sx))
	}
	w := a.length("w", dst.Width(), (dst.Width() - pos.X).Max(0))
	h, fixedH := a.optLength("h", dst.Height())
	a.check("x", "y", "w", "h")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}
	if w < 0 || h < 0 {
		return geom.Point{}, cmd.Errorf("尺寸不能为负")
	}

	inner := doc.NewFrame(geom.NewSize(w, h))
	extent, err := b.body(inner, cmd.Children(), chain)
	if err != nil {
		return geom.Point{}, err
	}
	if !fixedH {
		inner.SetSize(geom.NewSize(w, extent.Y))
	}
	switch cmd.Name {
	case "clip":
		inner.Clip()
	case "rotate", "scale":
		inner.Transform(aboutCenter(t, inner.Size()))
	}
	end := pos.Add(inner.Size().ToPoint())
	dst.PushFrame(pos, inner)
	return end, nil
}

// aboutCenter 把以原点为中心的变换改为以帧中心为中心。
func aboutCenter(t geom.Transform, size geom.Size) geom.Transform {
	cx, cy := size.X/2, size.Y/2
	return geom.Translate(-cx, -cy).Post(t).Post(geom.Translate(cx, cy))
}

// stack 处理 `stack x= y= w= gap= align= { ... }`：子命令自上而下排列，
// 每个子项在 w 宽度内按 align 水平对齐。
func (b *builder) stack(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	pos := a.pos()
	w := a.length("w", dst.Width(), (dst.Width() - pos.X).Max(0))
	gap := a.length("gap", dst.Height(), 0)
	align := a.align("align", geom.AlignStart)
	a.check("x", "y", "w", "gap", "align")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}
	if w < 0 {
		return geom.Point{}, cmd.Errorf("宽度不能为负")
	}

	st := doc.NewFrame(geom.NewSize(w, 0))
	var cursor geom.Abs
	for i, child := range cmd.Children() {
		item := doc.NewFrame(geom.NewSize(w, 0))
		ext, err := b.command(item, child, chain)
		if err != nil {
			return geom.Point{}, err
		}
		item.SetSize(geom.NewSize(ext.X, ext.Y))
		item.Resize(geom.NewSize(w, ext.Y), geom.NewAxes(align, geom.AlignStart))
		if i > 0 {
			cursor += gap
		}
		st.PushFrame(geom.NewPoint(0, cursor), item)
		cursor += ext.Y
	}
	st.SetSize(geom.NewSize(w, cursor))

	end := pos.Add(st.Size().ToPoint())
	dst.PushFrame(pos, st)
	return end, nil
}

// background 处理 `background fill= { ... }`：内容放到 dst 所有已有元素之后。
// 背景不计入内容尺寸。
func (b *builder) background(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	fill := a.color("fill")
	a.check("fill")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}

	bg := doc.NewFrame(dst.Size())
	if fill != nil {
		bg.Push(geom.Point{}, doc.Shape{Shape: geom.Shape{Geometry: geom.RectOf(dst.Size()), Fill: fill}})
	}
	if _, err := b.body(bg, cmd.Children(), chain); err != nil {
		return geom.Point{}, err
	}
	dst.PrependFrame(geom.Point{}, bg)
	return geom.Point{}, nil
}
