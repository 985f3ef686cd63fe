package layout

import (
	"bytes"
	"encoding/json"
	"image"
	"io"
	"math"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/font"
	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/model"
)

// stubShaper 为每个字符生成一个 0.5em 宽的字形，避免测试依赖真实排版结果。
type stubShaper struct {
	langs []string
	dirs  []geom.Dir
}

func (s *stubShaper) Shape(f *font.Font, text, lang string, dir geom.Dir) ([]font.Shaped, error) {
	s.langs = append(s.langs, lang)
	s.dirs = append(s.dirs, dir)
	var out []font.Shaped
	for i, r := range []rune(text) {
		out = append(out, font.Shaped{ID: uint16(r), Advance: 0.5, Cluster: i})
	}
	return out, nil
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func build(t *testing.T, src string, data any, images ImageLoader) (*doc.Document, *stubShaper) {
	t.Helper()
	script, err := dsl.ParseString(src)
	require.NoError(t, err, "解析脚本失败")
	shaper := &stubShaper{}
	d, err := Build(script, data, BuildOptions{Shaper: shaper, Images: images, Logger: quietLogger()})
	require.NoError(t, err, "布局计算失败")
	return d, shaper
}

func buildErr(t *testing.T, src string) error {
	t.Helper()
	script, err := dsl.ParseString(src)
	require.NoError(t, err, "解析脚本失败")
	_, err = Build(script, nil, BuildOptions{Shaper: &stubShaper{}, Images: ImageMap{}, Logger: quietLogger()})
	return err
}

func serifAscent(t *testing.T, size geom.Abs) geom.Abs {
	t.Helper()
	f, err := font.Builtin("serif")
	require.NoError(t, err)
	return f.Metrics().Ascender.At(size)
}

func TestBuildText(t *testing.T) {
	d, shaper := build(t, `document "Hi ${name}" by "Ada" {
  page 100pt 100pt {
    text "Hello ${name}" x=10pt y=20pt size=10pt fill=#336699
  }
}`, map[string]any{"name": "Bob"}, nil)

	assert.Equal(t, "Hi Bob", d.Title)
	assert.Equal(t, "Ada", d.Author)
	require.Len(t, d.Pages, 1)
	page := d.Pages[0]
	assert.Equal(t, geom.NewSize(100, 100), page.Size())

	items := page.Items()
	require.Len(t, items, 1)
	run, ok := items[0].Element.(doc.Text)
	require.True(t, ok)
	assert.Equal(t, "Hello Bob", run.Content())
	assert.InDelta(t, 45.0, float64(run.Width()), 1e-9)
	assert.Equal(t, geom.Color{R: 0x33, G: 0x66, B: 0x99, A: 0xff}, run.Fill)
	assert.Equal(t, doc.English, run.Lang)
	assert.InDelta(t, float64(20+serifAscent(t, 10)), float64(items[0].Pos.Y), 1e-9)
	assert.Equal(t, geom.Abs(10), items[0].Pos.X)
	assert.Equal(t, []string{"en"}, shaper.langs)
}

func TestTextAlignWithinWidth(t *testing.T) {
	d, _ := build(t, `document "t" {
  page 100pt 100pt {
    text "ab" w=100pt align=end size=10pt
  }
}`, nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 1)
	assert.InDelta(t, 90.0, float64(items[0].Pos.X), 1e-9)
}

func TestLangScope(t *testing.T) {
	d, shaper := build(t, `document "t" {
  lang "ar"
  page 100pt 100pt {
    text "a"
    style lang=de { text "b" }
  }
}`, nil, nil)
	assert.Equal(t, []string{"ar", "de"}, shaper.langs)
	assert.Equal(t, []geom.Dir{geom.RTL, geom.LTR}, shaper.dirs)
	items := d.Pages[0].Items()
	assert.Equal(t, doc.German, items[1].Element.(doc.Text).Lang)
}

func TestStyleScope(t *testing.T) {
	d, _ := build(t, `document "t" {
  font body "builtin:sans"
  page 100pt 100pt {
    style font=body size=20pt fill=#ff0000 {
      text "a"
      style size=50% { text "b" }
    }
  }
}`, nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 2)
	a := items[0].Element.(doc.Text)
	b := items[1].Element.(doc.Text)
	assert.Equal(t, geom.Abs(20), a.Size)
	assert.Equal(t, geom.Abs(10), b.Size)
	assert.Equal(t, uint8(0xff), a.Fill.R)

	sans, err := font.Builtin("sans")
	require.NoError(t, err)
	assert.Equal(t, sans.ID(), a.Font.ID())
}

func TestPlaceNamedFrame(t *testing.T) {
	d, _ := build(t, `document "t" {
  frame badge 20pt 10pt {
    rect 20pt 10pt fill=#eeeeee
    text "B" size=5pt
  }
  page 100pt 100pt {
    place badge x=5pt y=5pt
    place badge x=5pt y=30pt
  }
}`, nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 4)
	assert.Equal(t, geom.NewPoint(5, 5), items[0].Pos)
	assert.Equal(t, geom.NewPoint(5, 30), items[2].Pos)
	assert.Equal(t, "BB", d.Pages[0].Text())
}

func TestPlaceLargeFrameIsGrouped(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("document \"t\" {\n  frame grid 50pt 50pt {\n")
	for i := 0; i < doc.InlineThreshold+1; i++ {
		sb.WriteString("    rect 5pt 5pt\n")
	}
	sb.WriteString("  }\n  page 100pt 100pt {\n    rect 1pt 1pt\n    place grid x=10pt y=10pt\n    place grid x=50pt y=50pt\n  }\n}\n")

	d, _ := build(t, sb.String(), nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 3)
	g1, ok := items[1].Element.(doc.Group)
	require.True(t, ok)
	g2 := items[2].Element.(doc.Group)
	assert.True(t, g1.Frame().Shares(g2.Frame()), "两次放置应共享同一份元素")
	assert.Equal(t, geom.NewPoint(50, 50), items[2].Pos)
}

func TestLinkMetadataFolds(t *testing.T) {
	d, _ := build(t, `document "t" {
  page 100pt 100pt {
    link "https://example.com" {
      goto 1 x=0pt y=50pt {
        text "x" x=1pt y=1pt
      }
    }
  }
}`, nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 3)
	assert.IsType(t, doc.Text{}, items[0].Element)

	inner := items[1].Element.(doc.MetaElement)
	link, ok := inner.Meta.(doc.Link)
	require.True(t, ok)
	internal, ok := link.Dest.(doc.Internal)
	require.True(t, ok)
	assert.Equal(t, 1, internal.Loc.Page)
	assert.Equal(t, geom.Abs(50), internal.Loc.Pos.Y)

	outer := items[2].Element.(doc.MetaElement)
	assert.Equal(t, doc.Link{Dest: doc.URL("https://example.com")}, outer.Meta)
	assert.Equal(t, items[1].Pos, items[2].Pos)
}

func TestNodeStableIDs(t *testing.T) {
	d, _ := build(t, `document "t" {
  page 100pt 100pt {
    node "intro" role="heading:2" depth=3 width=2pt { text "a" }
    node "intro" { text "b" }
  }
}`, nil, nil)
	var nodes []doc.Node
	for _, it := range d.Pages[0].Items() {
		if m, ok := it.Element.(doc.MetaElement); ok {
			nodes = append(nodes, m.Meta.(doc.Node))
		}
	}
	require.Len(t, nodes, 2)
	assert.Equal(t, model.NewStableID("intro", 0), nodes[0].ID)
	assert.Equal(t, model.NewStableID("intro", 1), nodes[1].ID)
	assert.Equal(t, "heading:2", nodes[0].Content.Kind)
	assert.Equal(t, model.Int(3), nodes[0].Content.Attrs["depth"])
	assert.Equal(t, model.Length(2), nodes[0].Content.Attrs["width"])
	assert.Equal(t, "node", nodes[1].Content.Kind)
}

func TestStackAlignment(t *testing.T) {
	d, _ := build(t, `document "t" {
  page 200pt 200pt {
    stack w=100pt gap=5pt align=center {
      rect 20pt 10pt
      rect 40pt 10pt
    }
  }
}`, nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 2)
	assert.Equal(t, geom.NewPoint(40, 0), items[0].Pos)
	assert.Equal(t, geom.NewPoint(30, 15), items[1].Pos)
}

func TestClipAndRotate(t *testing.T) {
	d, _ := build(t, `document "t" {
  page 100pt 100pt {
    clip w=50pt h=50pt { rect 100pt 100pt }
    rotate 90deg x=10pt w=20pt h=10pt { rect 20pt 10pt }
  }
}`, nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 2)

	clip := items[0].Element.(doc.Group)
	assert.True(t, clip.Clips)
	assert.Equal(t, geom.NewSize(50, 50), clip.Frame().Size())

	rot := items[1].Element.(doc.Group)
	assert.False(t, rot.Clips)
	assert.Equal(t, geom.Abs(10), items[1].Pos.X)
	center := rot.Transform.Apply(geom.NewPoint(10, 5))
	assert.InDelta(t, 10, float64(center.X), 1e-9)
	assert.InDelta(t, 5, float64(center.Y), 1e-9)
	corner := rot.Transform.Apply(geom.Point{})
	assert.InDelta(t, 15, float64(corner.X), 1e-9)
	assert.InDelta(t, -5, float64(corner.Y), 1e-9)
}

func TestBackgroundAndBaseline(t *testing.T) {
	d, _ := build(t, `document "t" {
  page 100pt 100pt {
    text "a"
    background fill=#ff0000
    baseline 30pt
  }
}`, nil, nil)
	page := d.Pages[0]
	items := page.Items()
	require.Len(t, items, 2)
	shape := items[0].Element.(doc.Shape)
	assert.Equal(t, geom.GeometryRect, shape.Geometry.Kind)
	assert.Equal(t, geom.NewSize(100, 100), shape.Geometry.Size)
	assert.IsType(t, doc.Text{}, items[1].Element)
	assert.Equal(t, geom.Abs(30), page.Baseline())
}

func TestLineBoundingFrame(t *testing.T) {
	d, _ := build(t, `document "t" {
  page 100pt 100pt {
    line -10pt 20pt x=50pt y=10pt stroke=#000 stroke-width=2pt
  }
}`, nil, nil)
	items := d.Pages[0].Items()
	require.Len(t, items, 1)
	assert.Equal(t, geom.NewPoint(50, 10), items[0].Pos)
	shape := items[0].Element.(doc.Shape)
	assert.Equal(t, geom.NewPoint(-10, 20), shape.Geometry.Target)
	assert.Equal(t, geom.Abs(2), shape.Stroke.Thickness)
}

func TestImageFit(t *testing.T) {
	images := ImageMap{"px": image.NewRGBA(image.Rect(0, 0, 20, 10))}
	d, _ := build(t, `document "t" {
  page 200pt 200pt {
    image "px" 40pt 40pt
    image "px" 40pt 40pt fit=cover y=50pt
    image "px" 40pt 40pt fit=stretch y=100pt
    image "px" w=30pt y=150pt
  }
}`, nil, images)
	items := d.Pages[0].Items()
	require.Len(t, items, 4)

	contain := items[0].Element.(doc.Image)
	assert.Equal(t, geom.NewSize(40, 20), contain.Size)
	assert.Equal(t, geom.NewPoint(0, 10), items[0].Pos)

	cover := items[1].Element.(doc.Group)
	assert.True(t, cover.Clips)
	inner := cover.Frame().Items()
	require.Len(t, inner, 1)
	assert.Equal(t, geom.NewSize(80, 40), inner[0].Element.(doc.Image).Size)
	assert.Equal(t, geom.NewPoint(-20, 0), inner[0].Pos)

	assert.Equal(t, geom.NewSize(40, 40), items[2].Element.(doc.Image).Size)
	assert.Equal(t, geom.NewSize(30, 15), items[3].Element.(doc.Image).Size)
}

func TestParseFit(t *testing.T) {
	for _, f := range []Fit{FitContain, FitCover, FitStretch} {
		parsed, err := ParseFit(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, parsed)
	}
	_, err := ParseFit("zoom")
	assert.Error(t, err)
}

func TestBuildErrors(t *testing.T) {
	cases := map[string]string{
		"missing page":    `document "t" { frame f 1pt 1pt { } }`,
		"unknown cmd":     `document "t" { page a4 { sparkle } }`,
		"unknown arg":     `document "t" { page a4 { rect 1pt 1pt glow=1 } }`,
		"undefined frame": `document "t" { page a4 { place nope } }`,
		"page zero":       `document "t" { page a4 { goto 0 { text "x" } } }`,
		"bad lang":        `document "t" { page a4 { text "x" lang=english } }`,
		"bad role":        `document "t" { page a4 { node "k" role="sidebar" { } } }`,
		"bad color":       `document "t" { page a4 { rect 1pt 1pt fill=red } }`,
		"unknown paper":   `document "t" { page b7 { } }`,
		"missing image":   `document "t" { page a4 { image "nope" } }`,
		"undefined font":  `document "t" { page a4 { text "x" font=nope } }`,
		"duplicate frame": `document "t" { frame f 1pt 1pt { }; frame f 1pt 1pt { }; page a4 { } }`,
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, buildErr(t, src))
		})
	}
}

func TestArgErrorsAreCollected(t *testing.T) {
	err := buildErr(t, `document "t" { page a4 { rect 1pt 1pt x=abc y=def } }`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "参数 x")
	assert.Contains(t, err.Error(), "参数 y")
}

func TestPageSizes(t *testing.T) {
	d, _ := build(t, `document "t" {
  page a4 { }
  page a4 landscape { }
  page letter { }
}`, nil, nil)
	require.Len(t, d.Pages, 3)
	assert.InDelta(t, 595.0, float64(d.Pages[0].Width()), 1)
	assert.InDelta(t, 842.0, float64(d.Pages[1].Width()), 1)
	assert.InDelta(t, 612.0, float64(d.Pages[2].Width()), 1e-9)
}

func TestDebugJSON(t *testing.T) {
	d, _ := build(t, `document "Debug" { page 10pt 10pt { rect 5pt 5pt } }`, nil, nil)

	var plain bytes.Buffer
	require.NoError(t, EncodeDebugJSON(&plain, d, false))
	assert.Contains(t, plain.String(), `"title": "Debug"`)

	var packed bytes.Buffer
	require.NoError(t, EncodeDebugJSON(&packed, d, true))
	r, err := xz.NewReader(&packed)
	require.NoError(t, err)
	raw, err := io.ReadAll(r)
	require.NoError(t, err)

	var decoded struct {
		Pages []struct {
			Elements []map[string]any `json:"elements"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded.Pages, 1)
	require.Len(t, decoded.Pages[0].Elements, 1)
	assert.Equal(t, "shape", decoded.Pages[0].Elements[0]["kind"])
}

func TestAboutCenter(t *testing.T) {
	tr := aboutCenter(geom.Rotate(math.Pi), geom.NewSize(10, 10))
	p := tr.Apply(geom.Point{})
	assert.InDelta(t, 10, float64(p.X), 1e-9)
	assert.InDelta(t, 10, float64(p.Y), 1e-9)
}

func TestPresetFonts(t *testing.T) {
	mono, err := font.Builtin("mono")
	require.NoError(t, err)
	serif, err := font.Builtin("serif")
	require.NoError(t, err)

	run := func(src string, fonts map[string]string) (*doc.Document, error) {
		script, err := dsl.ParseString(src)
		require.NoError(t, err)
		return Build(script, nil, BuildOptions{Shaper: &stubShaper{}, Fonts: fonts, Logger: quietLogger()})
	}

	d, err := run(`document "t" {
  page 100pt 100pt {
    text "a" font=body
  }
}`, map[string]string{"body": "builtin:mono"})
	require.NoError(t, err)
	assert.Same(t, mono, d.Pages[0].Items()[0].Element.(doc.Text).Font)

	d, err = run(`document "t" {
  font body "builtin:serif"
  page 100pt 100pt {
    text "a" font=body
  }
}`, map[string]string{"body": "builtin:mono"})
	require.NoError(t, err, "脚本可以覆盖预设字体")
	assert.Same(t, serif, d.Pages[0].Items()[0].Element.(doc.Text).Font)

	_, err = run(`document "t" { page a4 {} }`, map[string]string{"body": "builtin:nope"})
	assert.ErrorContains(t, err, "预设字体 body")
}
