package layout

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/style"
)

// 未指定尺寸时图片按 96 DPI 换算。
const pointsPerPixel = 72.0 / 96.0

// Fit 决定图片如何适配给定区域。
type Fit int

const (
	// FitContain 等比缩放至完全放入区域，居中留白。
	FitContain Fit = iota
	// FitCover 等比缩放至铺满区域，居中并裁掉溢出部分。
	FitCover
	// FitStretch 拉伸至区域尺寸。
	FitStretch
)

func (f Fit) String() string {
	switch f {
	case FitCover:
		return "cover"
	case FitStretch:
		return "stretch"
	default:
		return "contain"
	}
}

// ParseFit 解析 contain、cover、stretch。
func ParseFit(s string) (Fit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "contain":
		return FitContain, nil
	case "cover":
		return FitCover, nil
	case "stretch", "fill":
		return FitStretch, nil
	default:
		return FitContain, fmt.Errorf("未知的图片适配方式 %q", s)
	}
}

// FitImage 生成一个 box 大小的帧，按 fit 放置图片。
func FitImage(r *doc.Raster, box geom.Size, fit Fit) *doc.Frame {
	pw, ph := r.PixelSize()
	if fit == FitStretch || pw == 0 || ph == 0 {
		f := doc.NewFrame(box)
		f.Push(geom.Point{}, doc.Image{Raster: r, Size: box})
		return f
	}

	sx := float64(box.X) / float64(pw)
	sy := float64(box.Y) / float64(ph)
	s := min(sx, sy)
	if fit == FitCover {
		s = max(sx, sy)
	}
	size := geom.NewSize(geom.Abs(float64(pw)*s), geom.Abs(float64(ph)*s))
	f := doc.NewFrame(size)
	f.Push(geom.Point{}, doc.Image{Raster: r, Size: size})
	f.Resize(box, geom.Splat(geom.AlignCenter))
	if fit == FitCover {
		f.Clip()
	}
	return f
}

// image 处理 `image "来源" [宽 [高]] fit=contain|cover|stretch x= y=`。
// 只给出一边时另一边按图片宽高比计算。
func (b *builder) image(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	src := a.text(0, "src")
	w, hasW := a.posLength(1, "w", dst.Width())
	h, hasH := a.posLength(2, "h", dst.Height())
	pos := a.pos()
	fitName, _ := a.named("fit")
	fit, err := ParseFit(fitName)
	if err != nil {
		a.fail("fit", err)
	}
	a.check("x", "y", "w", "h", "fit")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}

	r, err := b.raster(src)
	if err != nil {
		return geom.Point{}, cmd.Errorf("%v", err)
	}
	pw, ph := r.PixelSize()
	if pw == 0 || ph == 0 {
		return geom.Point{}, cmd.Errorf("图片 %s 为空", src)
	}
	box := geom.NewSize(geom.Abs(float64(pw)*pointsPerPixel), geom.Abs(float64(ph)*pointsPerPixel))
	switch {
	case hasW && hasH:
		box = geom.NewSize(w, h)
	case hasW:
		box = geom.NewSize(w, geom.Abs(float64(w)*float64(ph)/float64(pw)))
	case hasH:
		box = geom.NewSize(geom.Abs(float64(h)*float64(pw)/float64(ph)), h)
	}
	if box.X < 0 || box.Y < 0 {
		return geom.Point{}, cmd.Errorf("尺寸不能为负")
	}
	return b.put(dst, pos, FitImage(r, box, fit), chain), nil
}

// raster 加载图片，同一来源只加载一次。
func (b *builder) raster(src string) (*doc.Raster, error) {
	if r, ok := b.rasters[src]; ok {
		return r, nil
	}
	r, err := b.images.Load(src)
	if err != nil {
		return nil, err
	}
	b.rasters[src] = r
	return r, nil
}

// FileImages 从目录加载图片文件，并按 EXIF 方向摆正。
type FileImages struct {
	Dir string
}

func (l FileImages) Load(src string) (*doc.Raster, error) {
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.Dir, path)
	}
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("加载图片 %s 失败: %w", src, err)
	}
	return &doc.Raster{Name: src, Image: img}, nil
}

// ImageMap 从内存中的图片加载，便于测试与嵌入。
type ImageMap map[string]image.Image

func (m ImageMap) Load(src string) (*doc.Raster, error) {
	img, ok := m[src]
	if !ok {
		return nil, fmt.Errorf("找不到图片 %s", src)
	}
	return &doc.Raster{Name: src, Image: img}, nil
}
