// Package font loads font files and exposes the metrics and glyph data the
// frame tree stores in font-relative units.
package font

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/folio/geom"
)

// Metrics are the vertical metrics of a font in Em.
type Metrics struct {
	Ascender  geom.Em `json:"ascender"`
	Descender geom.Em `json:"descender"` // positive, below the baseline
	CapHeight geom.Em `json:"capHeight"`
	XHeight   geom.Em `json:"xHeight"`
	LineGap   geom.Em `json:"lineGap"`
}

// Font is a parsed font file. A Font is immutable and safe for concurrent
// use.
type Font struct {
	id      uint64
	name    string
	data    []byte
	sf      *sfnt.Font
	upem    float64
	metrics Metrics
}

// Parse parses TrueType or OpenType font data. The slice is retained.
func Parse(data []byte) (*Font, error) {
	sf, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: 解析字体失败: %w", err)
	}
	f := &Font{
		id:   xxhash.Sum64(data),
		data: data,
		sf:   sf,
		upem: float64(sf.UnitsPerEm()),
	}
	if f.upem <= 0 {
		return nil, fmt.Errorf("font: invalid units per em %v", f.upem)
	}

	var buf sfnt.Buffer
	for _, id := range []sfnt.NameID{sfnt.NameIDPostScript, sfnt.NameIDFull, sfnt.NameIDFamily} {
		if name, err := sf.Name(&buf, id); err == nil && name != "" {
			f.name = name
			break
		}
	}
	if f.name == "" {
		f.name = "unknown"
	}

	m, err := sf.Metrics(&buf, f.ppem(), xfont.HintingNone)
	if err != nil {
		return nil, fmt.Errorf("font: 读取字体度量失败: %w", err)
	}
	f.metrics = Metrics{
		Ascender:  f.toEm(m.Ascent),
		Descender: f.toEm(m.Descent),
		CapHeight: f.toEm(m.CapHeight),
		XHeight:   f.toEm(m.XHeight),
		LineGap:   f.toEm(m.Height - m.Ascent - m.Descent),
	}
	if f.metrics.CapHeight == 0 {
		f.metrics.CapHeight = f.metrics.Ascender
	}
	return f, nil
}

// ppem requests metrics at one pixel per font unit, so results are design
// units in 26.6 fixed point.
func (f *Font) ppem() fixed.Int26_6 {
	return fixed.Int26_6(f.upem * 64)
}

func (f *Font) toEm(v fixed.Int26_6) geom.Em {
	return geom.EmFromUnits(float64(v)/64, f.upem)
}

// ID identifies the font by its data. A nil font has id 0.
func (f *Font) ID() uint64 {
	if f == nil {
		return 0
	}
	return f.id
}

// Name returns the PostScript name, falling back to the full or family name.
func (f *Font) Name() string {
	if f == nil {
		return ""
	}
	return f.name
}

// Data returns the raw font file.
func (f *Font) Data() []byte { return f.data }

func (f *Font) UnitsPerEm() float64 { return f.upem }

func (f *Font) Metrics() Metrics {
	if f == nil {
		return Metrics{}
	}
	return f.metrics
}

// NumGlyphs returns the number of glyphs in the font.
func (f *Font) NumGlyphs() int { return f.sf.NumGlyphs() }

// GlyphIndex maps a character to a glyph id; 0 means the font has no glyph
// for it.
func (f *Font) GlyphIndex(r rune) uint16 {
	var buf sfnt.Buffer
	idx, err := f.sf.GlyphIndex(&buf, r)
	if err != nil {
		return 0
	}
	return uint16(idx)
}

// Advance returns the horizontal advance of a glyph.
func (f *Font) Advance(glyph uint16) geom.Em {
	var buf sfnt.Buffer
	adv, err := f.sf.GlyphAdvance(&buf, sfnt.GlyphIndex(glyph), f.ppem(), xfont.HintingNone)
	if err != nil {
		return 0
	}
	return f.toEm(adv)
}

// IsMonospace reports whether the name suggests a fixed-pitch font.
func (f *Font) IsMonospace() bool {
	n := strings.ToLower(f.Name())
	return strings.Contains(n, "mono") || strings.Contains(n, "code")
}

func (f *Font) String() string {
	return fmt.Sprintf("Font(%s)", f.Name())
}
