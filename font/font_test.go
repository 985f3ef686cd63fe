package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/geom"
)

func TestBuiltinFonts(t *testing.T) {
	for _, name := range BuiltinNames() {
		f, err := Builtin("builtin:" + name)
		require.NoError(t, err, name)
		assert.NotEmpty(t, f.Name())
		assert.Positive(t, f.UnitsPerEm())
		assert.Positive(t, f.NumGlyphs())

		again, err := Builtin(name)
		require.NoError(t, err)
		assert.Same(t, f, again, "内置字体应当只解析一次")
	}

	_, err := Builtin("builtin:fantasy")
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	f, err := Builtin("serif")
	require.NoError(t, err)

	m := f.Metrics()
	assert.Greater(t, float64(m.Ascender), 0.5)
	assert.Less(t, float64(m.Ascender), 1.5)
	assert.Positive(t, float64(m.Descender))
	assert.Positive(t, float64(m.XHeight))
	assert.Less(t, float64(m.XHeight), float64(m.CapHeight))
}

func TestGlyphAdvance(t *testing.T) {
	f, err := Builtin("mono")
	require.NoError(t, err)

	a, m := f.GlyphIndex('a'), f.GlyphIndex('m')
	require.NotZero(t, a)
	require.NotZero(t, m)
	assert.InDelta(t, float64(f.Advance(a)), float64(f.Advance(m)), 1e-9, "等宽字体字宽应一致")
	assert.True(t, f.IsMonospace())
	assert.Zero(t, f.GlyphIndex('\U0001F600'))
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not a font"))
	assert.Error(t, err)
}

func TestNilFont(t *testing.T) {
	var f *Font
	assert.Zero(t, f.ID())
	assert.Empty(t, f.Name())
	assert.Equal(t, Metrics{}, f.Metrics())
}

func TestShape(t *testing.T) {
	f, err := Builtin("serif")
	require.NoError(t, err)
	s, err := NewShaper(ShaperOptions{})
	require.NoError(t, err)
	defer s.Close()

	glyphs, err := s.Shape(f, "Hello", "en", geom.LTR)
	require.NoError(t, err)
	require.Len(t, glyphs, 5)
	for i, g := range glyphs {
		assert.Equal(t, i, g.Cluster)
		assert.Positive(t, float64(g.Advance))
	}
	assert.Equal(t, f.GlyphIndex('H'), glyphs[0].ID)

	empty, err := s.Shape(f, "", "en", geom.LTR)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = s.Shape(nil, "x", "en", geom.LTR)
	assert.Error(t, err)
}

func TestShapeWithoutCache(t *testing.T) {
	f, err := Builtin("sans")
	require.NoError(t, err)
	s, err := NewShaper(ShaperOptions{CacheEntries: -1})
	require.NoError(t, err)
	defer s.Close()

	first, err := s.Shape(f, "abc", "en", geom.LTR)
	require.NoError(t, err)
	second, err := s.Shape(f, "abc", "en", geom.LTR)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
