package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/sirupsen/logrus"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/font"
	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/renderer"
)

// Renderer draws documents via github.com/tdewolff/canvas. Layout works in
// points, canvas in millimeters; conversion happens at the drawing calls.
// A Renderer holds no per-document state and is safe for concurrent use.
type Renderer struct {
	creator string
	log     logrus.FieldLogger
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the canvas renderer.
type Options struct {
	// Creator is written to the PDF info dictionary.
	Creator string
	Logger  logrus.FieldLogger
}

// NewRenderer creates a canvas-based renderer.
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		creator: opts.Creator,
		log:     opts.Logger,
	}
	if r.log == nil {
		r.log = logrus.StandardLogger()
	}
	return r
}

// Render renders the document into a PDF byte slice. Links become PDF link
// annotations; internal links jump to named destinations.
func (r *Renderer) Render(d *doc.Document) ([]byte, error) {
	if d == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(d.Pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的页面")
	}

	anns := renderer.CollectAnnotations(d)
	dests := collectDestinations(anns, len(d.Pages))

	var buf bytes.Buffer
	first := d.Pages[0].Size()
	writer := pdf.New(&buf, mm(first.X), mm(first.Y), nil)
	writer.SetInfo(d.Title, "", "", d.Author, r.creator)

	p := newPainter()
	links := 0
	for i, page := range d.Pages {
		number := i + 1
		size := page.Size()
		if i > 0 {
			writer.NewPage(mm(size.X), mm(size.Y))
		}
		height := mm(size.Y)
		for _, loc := range dests.pages[number] {
			writer.AddAnchor(dests.names[loc], anchorRect(loc, height))
		}
		for _, a := range anns {
			if a.Page == number && r.addLink(writer, a, height, dests) {
				links++
			}
		}

		c := canvas.New(mm(size.X), mm(size.Y))
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := p.drawPage(ctx, page); err != nil {
			return nil, fmt.Errorf("第 %d 页: %w", number, err)
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.log.WithFields(logrus.Fields{
		"pages": len(d.Pages),
		"bytes": buf.Len(),
		"links": links,
	}).Debug("pdf rendered")
	return buf.Bytes(), nil
}

// addLink writes a link annotation onto the current page. Nodes carry no
// link and are skipped.
func (r *Renderer) addLink(writer *pdf.PDF, a renderer.Annotation, height float64, dests destinations) bool {
	link, ok := a.Meta.(doc.Link)
	if !ok {
		return false
	}
	rect := linkRect(a.Rect, height)
	switch dest := link.Dest.(type) {
	case doc.URL:
		writer.AddLink(string(dest), rect)
	case doc.Internal:
		name, ok := dests.names[dest.Loc]
		if !ok {
			r.log.WithFields(logrus.Fields{
				"page":   a.Page,
				"target": dest.Loc.String(),
			}).Warn("链接目标不在文档内，已忽略")
			return false
		}
		writer.AddLink("#"+name, rect)
	default:
		return false
	}
	return true
}

// destinations names every internal link target of a document.
type destinations struct {
	names map[doc.Location]string
	pages map[int][]doc.Location
}

func collectDestinations(anns []renderer.Annotation, pages int) destinations {
	d := destinations{names: map[doc.Location]string{}, pages: map[int][]doc.Location{}}
	for _, a := range anns {
		link, ok := a.Meta.(doc.Link)
		if !ok {
			continue
		}
		in, ok := link.Dest.(doc.Internal)
		if !ok || in.Loc.Page < 1 || in.Loc.Page > pages {
			continue
		}
		if _, ok := d.names[in.Loc]; ok {
			continue
		}
		d.names[in.Loc] = fmt.Sprintf("loc%d", len(d.names)+1)
		d.pages[in.Loc.Page] = append(d.pages[in.Loc.Page], in.Loc)
	}
	return d
}

// PDF 坐标以页面左下角为原点。
func linkRect(r geom.Rect, height float64) canvas.Rect {
	m := r.Max()
	return canvas.Rect{X0: mm(r.Min.X), Y0: height - mm(m.Y), X1: mm(m.X), Y1: height - mm(r.Min.Y)}
}

func anchorRect(loc doc.Location, height float64) canvas.Rect {
	x, y := mm(loc.Pos.X), height-mm(loc.Pos.Y)
	return canvas.Rect{X0: x, Y0: y, X1: x, Y1: y}
}

// painter draws the visible elements of a document. Glyph outlines are
// cached for the duration of one render.
type painter struct {
	outlines map[glyphKey]*canvas.Path
}

type glyphKey struct {
	font  uint64
	glyph uint16
}

func newPainter() *painter {
	return &painter{outlines: map[glyphKey]*canvas.Path{}}
}

func (p *painter) drawPage(ctx *canvas.Context, page *doc.Frame) error {
	var err error
	renderer.Walk(page, func(pl renderer.Placement, pos geom.Point, elem doc.Element) {
		if err != nil {
			return
		}
		err = p.drawElement(ctx, pl, pos, elem)
	})
	return err
}

func (p *painter) drawElement(ctx *canvas.Context, pl renderer.Placement, pos geom.Point, elem doc.Element) error {
	switch e := elem.(type) {
	case doc.Text:
		path, err := p.textPath(e)
		if err != nil {
			return err
		}
		fillPath(ctx, place(path, pl, pos), e.Fill)
	case doc.Shape:
		fill, stroke := shapePaths(e.Shape)
		if fill != nil {
			fillPath(ctx, place(fill, pl, pos), *e.Fill)
		}
		if stroke != nil {
			fillPath(ctx, place(stroke, pl, pos), e.Stroke.Paint)
		}
	case doc.Image:
		drawImage(ctx, pl, pos, e)
	}
	return nil
}

// textPath builds the outlines of a run relative to its baseline origin.
// Glyphs are drawn by ID, so a ligature paints exactly the glyph the shaper
// chose.
func (p *painter) textPath(t doc.Text) (*canvas.Path, error) {
	if t.Font == nil {
		return nil, fmt.Errorf("文本缺少字体")
	}
	out := &canvas.Path{}
	scale := t.Size.ToPt()
	var x geom.Abs
	for _, g := range t.Glyphs {
		outline, err := p.outline(t.Font, g.ID)
		if err != nil {
			return nil, err
		}
		if !outline.Empty() {
			origin := x + g.XOffset.At(t.Size)
			m := canvas.Identity.Translate(mm(origin), 0).Scale(scale, scale)
			out = out.Append(outline.Copy().Transform(m))
		}
		x += g.XAdvance.At(t.Size)
	}
	return out, nil
}

// outline returns the glyph's outline at one point, in millimeters.
func (p *painter) outline(f *font.Font, glyph uint16) (*canvas.Path, error) {
	key := glyphKey{font: f.ID(), glyph: glyph}
	if path, ok := p.outlines[key]; ok {
		return path, nil
	}
	segs, err := f.Outline(glyph, 1)
	if err != nil {
		return nil, err
	}
	path := outlinePath(segs)
	p.outlines[key] = path
	return path, nil
}

func outlinePath(segs []font.Segment) *canvas.Path {
	path := &canvas.Path{}
	for i, s := range segs {
		a := s.Args
		switch s.Op {
		case font.SegmentMoveTo:
			if i > 0 {
				path.Close()
			}
			path.MoveTo(mm(a[0].X), mm(a[0].Y))
		case font.SegmentLineTo:
			path.LineTo(mm(a[0].X), mm(a[0].Y))
		case font.SegmentQuadTo:
			path.QuadTo(mm(a[0].X), mm(a[0].Y), mm(a[1].X), mm(a[1].Y))
		case font.SegmentCubeTo:
			path.CubeTo(mm(a[0].X), mm(a[0].Y), mm(a[1].X), mm(a[1].Y), mm(a[2].X), mm(a[2].Y))
		}
	}
	if len(segs) > 0 {
		path.Close()
	}
	return path
}

// shapePaths returns the local fill and stroke areas of a shape. Strokes
// are expanded to outlines so that both clip the same way.
func shapePaths(s geom.Shape) (fill, stroke *canvas.Path) {
	g := s.Geometry
	var geo *canvas.Path
	switch g.Kind {
	case geom.GeometryRect:
		geo = canvas.Rectangle(mm(g.Size.X), mm(g.Size.Y))
	case geom.GeometryEllipse:
		// canvas 的椭圆以圆心为原点。
		rx, ry := mm(g.Size.X/2), mm(g.Size.Y/2)
		geo = canvas.Ellipse(rx, ry).Translate(rx, ry)
	case geom.GeometryLine:
		geo = &canvas.Path{}
		geo.MoveTo(0, 0)
		geo.LineTo(mm(g.Target.X), mm(g.Target.Y))
	}
	if s.Fill != nil && g.Kind != geom.GeometryLine {
		fill = geo
	}
	if s.Stroke != nil && s.Stroke.Thickness > 0 {
		stroke = geo.Stroke(mm(s.Stroke.Thickness), canvas.ButtCap, canvas.MiterJoin, canvas.Tolerance)
	}
	return fill, stroke
}

// place moves a local path into page space and clips it. The path is
// modified in place.
func place(path *canvas.Path, pl renderer.Placement, pos geom.Point) *canvas.Path {
	path = path.Transform(matrix(pl.Transform).Translate(mm(pos.X), mm(pos.Y)))
	if pl.Clip != nil && !path.Empty() {
		path = path.And(rectPath(*pl.Clip))
	}
	return path
}

func fillPath(ctx *canvas.Context, path *canvas.Path, c geom.Color) {
	if path.Empty() {
		return
	}
	ctx.SetFillColor(toColor(c))
	ctx.SetStrokeColor(canvas.Transparent)
	ctx.SetStrokeWidth(0)
	ctx.DrawPath(0, 0, path)
}

func drawImage(ctx *canvas.Context, pl renderer.Placement, pos geom.Point, img doc.Image) {
	px, region, ok := cropToClip(img, pl, pos)
	if !ok {
		return
	}
	src := img.Raster.Image
	if pw, ph := img.Raster.PixelSize(); px != image.Rect(0, 0, pw, ph) {
		src = imaging.Crop(src, px.Add(src.Bounds().Min))
	}
	// DPMM 只能表达等比缩放，纵向差异通过视图缩放补齐。
	dpmm := float64(px.Dx()) / mm(region.Size.X)
	sy := mm(region.Size.Y) * dpmm / float64(px.Dy())
	ctx.Push()
	ctx.ComposeView(matrix(pl.Transform))
	ctx.ComposeView(canvas.Identity.Translate(mm(region.Min.X), mm(region.Min.Y)).Scale(1, sy))
	ctx.DrawImage(0, 0, src, canvas.DPMM(dpmm))
	ctx.Pop()
}

// cropToClip returns the pixels of an image that show through the
// placement's clip, and the local box they cover. The crop follows the
// clip's bounding box in image space, which is exact unless the image is
// rotated against its clip.
func cropToClip(img doc.Image, pl renderer.Placement, pos geom.Point) (image.Rectangle, geom.Rect, bool) {
	pw, ph := img.Raster.PixelSize()
	if pw == 0 || ph == 0 || img.Size.X <= 0 || img.Size.Y <= 0 {
		return image.Rectangle{}, geom.Rect{}, false
	}
	box := geom.Rect{Min: pos, Size: img.Size}
	full := image.Rect(0, 0, pw, ph)
	if pl.Clip == nil {
		return full, box, true
	}
	inv, ok := pl.Transform.Invert()
	if !ok {
		return image.Rectangle{}, geom.Rect{}, false
	}
	local := pl.Clip.Transform(inv).Intersect(box)
	if local.Size.X <= 0 || local.Size.Y <= 0 {
		return image.Rectangle{}, geom.Rect{}, false
	}

	sx := float64(pw) / float64(img.Size.X)
	sy := float64(ph) / float64(img.Size.Y)
	m := local.Max()
	px := image.Rect(
		int(math.Floor(float64(local.Min.X-pos.X)*sx+1e-6)),
		int(math.Floor(float64(local.Min.Y-pos.Y)*sy+1e-6)),
		int(math.Ceil(float64(m.X-pos.X)*sx-1e-6)),
		int(math.Ceil(float64(m.Y-pos.Y)*sy-1e-6)),
	).Intersect(full)
	if px.Empty() {
		return image.Rectangle{}, geom.Rect{}, false
	}
	region := geom.Rect{
		Min:  geom.NewPoint(pos.X+geom.Abs(float64(px.Min.X)/sx), pos.Y+geom.Abs(float64(px.Min.Y)/sy)),
		Size: geom.NewSize(geom.Abs(float64(px.Dx())/sx), geom.Abs(float64(px.Dy())/sy)),
	}
	return px, region, true
}

func rectPath(r geom.Rect) *canvas.Path {
	return canvas.Rectangle(mm(r.Size.X), mm(r.Size.Y)).Translate(mm(r.Min.X), mm(r.Min.Y))
}

// matrix converts a point-space transform to a millimeter view matrix.
func matrix(t geom.Transform) canvas.Matrix {
	return canvas.Matrix{
		{t.Sx, t.Kx, mm(t.Tx)},
		{t.Ky, t.Sy, mm(t.Ty)},
	}
}

func toColor(c geom.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, float64(c.A)/255.0)
}

func mm(v geom.Abs) float64 { return v.ToMM() }
