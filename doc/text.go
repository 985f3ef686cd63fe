package doc

import (
	"encoding/binary"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/ByLCY/folio/font"
	"github.com/ByLCY/folio/geom"
)

// Text is a run of shaped glyphs sharing one font, size, fill and language.
type Text struct {
	// Font the glyphs are contained in.
	Font *font.Font
	Size geom.Abs
	Fill geom.Color
	// Lang is the natural language of the text.
	Lang   Lang
	Glyphs []Glyph
}

// Glyph is one glyph in a run of shaped text.
type Glyph struct {
	// ID is the glyph's index in the font.
	ID       uint16
	XAdvance geom.Em
	XOffset  geom.Em
	// C is the first character of the glyph's cluster, kept for text
	// extraction only.
	C rune
}

// Width returns the advance width of the run.
func (t Text) Width() geom.Abs {
	var sum geom.Em
	for _, g := range t.Glyphs {
		sum += g.XAdvance
	}
	return sum.At(t.Size)
}

// Equal compares two runs structurally. Fonts compare by identity.
func (t Text) Equal(o Text) bool {
	return t.Font.ID() == o.Font.ID() &&
		t.Size == o.Size &&
		t.Fill == o.Fill &&
		t.Lang == o.Lang &&
		slices.Equal(t.Glyphs, o.Glyphs)
}

// Hash returns a structural hash consistent with Equal.
func (t Text) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	put(t.Font.ID())
	put(math.Float64bits(float64(t.Size)))
	_, _ = d.Write([]byte{t.Fill.R, t.Fill.G, t.Fill.B, t.Fill.A})
	_, _ = d.WriteString(t.Lang.String())
	for _, g := range t.Glyphs {
		put(uint64(g.ID)<<32 | uint64(uint32(g.C)))
		put(math.Float64bits(float64(g.XAdvance)))
		put(math.Float64bits(float64(g.XOffset)))
	}
	return d.Sum64()
}

// Content returns an approximation of the source text.
func (t Text) Content() string {
	var b strings.Builder
	for _, g := range t.Glyphs {
		b.WriteRune(g.C)
	}
	return b.String()
}

func (t Text) String() string {
	q := strconv.Quote(t.Content())
	return "Text(" + q + ")"
}
