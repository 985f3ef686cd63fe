package doc

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/folio/geom"
)

func word(s string) Text {
	glyphs := make([]Glyph, 0, len(s))
	for i, r := range s {
		glyphs = append(glyphs, Glyph{ID: uint16(i + 1), XAdvance: 0.5, C: r})
	}
	return Text{Size: geom.Pt(10), Fill: geom.Black, Lang: English, Glyphs: glyphs}
}

func square() Shape {
	fill := geom.Black
	return Shape{geom.Shape{Geometry: geom.RectOf(geom.NewSize(5, 5)), Fill: &fill}}
}

func frameWith(size geom.Size, n int) *Frame {
	f := NewFrame(size)
	for i := 0; i < n; i++ {
		f.Push(geom.NewPoint(geom.Abs(i), 0), square())
	}
	return f
}

type stubStyles []Meta

func (s stubStyles) Metadata() []Meta { return s }

func TestNewFramePanicsOnInvalidSize(t *testing.T) {
	assert.Panics(t, func() { NewFrame(geom.NewSize(-1, 10)) })
	assert.Panics(t, func() { NewFrame(geom.NewSize(geom.Abs(math.Inf(1)), 10)) })
	assert.Panics(t, func() { NewFrame(geom.NewSize(geom.Abs(math.NaN()), 10)) })
	assert.NotPanics(t, func() { NewFrame(geom.Size{}) })
}

func TestBaselineDefaultsToHeight(t *testing.T) {
	f := NewFrame(geom.NewSize(50, 20))
	assert.False(t, f.HasBaseline())
	assert.Equal(t, geom.Abs(20), f.Baseline())

	f.SetBaseline(15)
	assert.True(t, f.HasBaseline())
	assert.Equal(t, geom.Abs(15), f.Baseline())

	f.Translate(geom.NewPoint(3, 4))
	assert.Equal(t, geom.Abs(19), f.Baseline())
}

func TestCloneIsCopyOnWrite(t *testing.T) {
	a := NewFrame(geom.NewSize(50, 20))
	a.Push(geom.Point{}, word("hi"))
	b := a.Clone()
	require.True(t, a.Shares(b))

	b.Push(geom.NewPoint(0, 10), square())
	assert.False(t, a.Shares(b), "写入时应复制")
	assert.Equal(t, 1, a.Layer())
	assert.Equal(t, 2, b.Layer())

	// Writing to the now unique original must not copy again.
	c := a.Clone()
	c.Push(geom.Point{}, square())
	a.Push(geom.Point{}, square())
	assert.Equal(t, 2, a.Layer())
	assert.Equal(t, 2, c.Layer())
}

func TestCloneIsolatesNestedGroups(t *testing.T) {
	inner := frameWith(geom.NewSize(10, 10), InlineThreshold+1)
	a := NewFrame(geom.NewSize(100, 100))
	a.Push(geom.Point{}, square())
	a.PushFrame(geom.Point{}, inner)
	require.Equal(t, 2, a.Layer())

	b := a.Clone()
	b.Translate(geom.NewPoint(1, 1))

	ga := a.Items()[1].Element.(Group)
	gb := b.Items()[1].Element.(Group)
	assert.True(t, ga.Frame().Shares(gb.Frame()))

	fb := gb.Frame()
	fb.Push(geom.Point{}, square())
	assert.Equal(t, InlineThreshold+2, fb.Layer())
	assert.Equal(t, InlineThreshold+1, ga.Frame().Layer())
	assert.Equal(t, InlineThreshold+1, gb.Frame().Layer())
	assert.Equal(t, geom.Point{}, a.Items()[0].Pos)
}

func TestGroupFrameWritesStayLocal(t *testing.T) {
	inner := frameWith(geom.NewSize(10, 10), InlineThreshold+1)
	a := NewFrame(geom.NewSize(100, 100))
	a.Push(geom.Point{}, square())
	a.PushFrame(geom.Point{}, inner)

	b := a.Clone()
	b.Items()[1].Element.(Group).Frame().Push(geom.Point{}, square())

	nested := func(f *Frame) int { return f.Items()[1].Element.(Group).Frame().Layer() }
	assert.Equal(t, InlineThreshold+1, nested(a), "通过 b 的写入不应影响 a")
	assert.Equal(t, InlineThreshold+1, nested(b))
}

func TestNewGroupConsumesFrame(t *testing.T) {
	inner := frameWith(geom.NewSize(10, 10), 3)
	g := NewGroup(inner)
	assert.Equal(t, 0, inner.Layer())
	assert.Equal(t, geom.NewSize(10, 10), g.Size())

	inner.Push(geom.Point{}, square())
	assert.Equal(t, 3, g.Frame().Layer())

	n := 0
	for range g.Elements() {
		n++
	}
	assert.Equal(t, 3, n)
}

func TestTranslateByZeroKeepsSharing(t *testing.T) {
	a := frameWith(geom.NewSize(10, 10), 2)
	b := a.Clone()
	b.Translate(geom.Point{})
	assert.True(t, a.Shares(b))

	b.Translate(geom.NewPoint(2, 3))
	assert.False(t, a.Shares(b))
	assert.Equal(t, geom.NewPoint(2, 3), b.Items()[0].Pos)
	assert.Equal(t, geom.Point{}, a.Items()[0].Pos)
}

func TestPushFrameInlinePolicy(t *testing.T) {
	t.Run("empty parent always inlines", func(t *testing.T) {
		parent := NewFrame(geom.NewSize(100, 100))
		parent.PushFrame(geom.NewPoint(5, 5), frameWith(geom.NewSize(10, 10), 10))
		assert.Equal(t, 10, parent.Layer())
		assert.Equal(t, geom.NewPoint(5, 5), parent.Items()[0].Pos)
	})

	t.Run("small child inlines", func(t *testing.T) {
		parent := frameWith(geom.NewSize(100, 100), 1)
		parent.PushFrame(geom.NewPoint(0, 20), frameWith(geom.NewSize(10, 10), InlineThreshold))
		require.Equal(t, 1+InlineThreshold, parent.Layer())
		for _, it := range parent.Items()[1:] {
			assert.IsType(t, Shape{}, it.Element)
			assert.Equal(t, geom.Abs(20), it.Pos.Y)
		}
	})

	t.Run("large child is grouped", func(t *testing.T) {
		parent := frameWith(geom.NewSize(100, 100), 1)
		child := frameWith(geom.NewSize(10, 10), InlineThreshold+1)
		parent.PushFrame(geom.NewPoint(0, 20), child)
		require.Equal(t, 2, parent.Layer())
		g, ok := parent.Items()[1].Element.(Group)
		require.True(t, ok)
		assert.Equal(t, InlineThreshold+1, g.Frame().Layer())
		assert.True(t, g.Transform.IsIdentity())
		assert.False(t, g.Clips)
	})

	t.Run("threshold is tunable", func(t *testing.T) {
		old := InlineThreshold
		InlineThreshold = 0
		defer func() { InlineThreshold = old }()

		parent := frameWith(geom.NewSize(100, 100), 1)
		parent.PushFrame(geom.Point{}, frameWith(geom.NewSize(10, 10), 1))
		assert.IsType(t, Group{}, parent.Items()[1].Element)
	})
}

func TestPushFrameConsumesChild(t *testing.T) {
	parent := frameWith(geom.NewSize(100, 100), 1)
	child := frameWith(geom.NewSize(10, 10), 2)
	parent.PushFrame(geom.NewPoint(1, 1), child)
	assert.True(t, child.IsEmpty())
	assert.Equal(t, 3, parent.Layer())
}

func TestPushSharedChildLeavesOriginalIntact(t *testing.T) {
	original := frameWith(geom.NewSize(10, 10), 2)
	parent := frameWith(geom.NewSize(100, 100), 1)
	parent.PushFrame(geom.NewPoint(7, 0), original.Clone())

	assert.Equal(t, 3, parent.Layer())
	assert.Equal(t, geom.Abs(7), parent.Items()[1].Pos.X)
	assert.Equal(t, geom.Abs(0), original.Items()[0].Pos.X)
	assert.Equal(t, 2, original.Layer())
}

func TestPrependFrame(t *testing.T) {
	parent := NewFrame(geom.NewSize(100, 100))
	parent.Push(geom.Point{}, word("top"))
	parent.PrependFrame(geom.NewPoint(1, 2), frameWith(geom.NewSize(10, 10), 2))

	items := parent.Items()
	require.Len(t, items, 3)
	assert.IsType(t, Shape{}, items[0].Element)
	assert.IsType(t, Shape{}, items[1].Element)
	assert.IsType(t, Text{}, items[2].Element)
	assert.Equal(t, geom.NewPoint(1, 2), items[0].Pos)
}

func TestInsertAndPrepend(t *testing.T) {
	f := NewFrame(geom.NewSize(10, 10))
	f.Push(geom.Point{}, word("x"))
	f.PrependMultiple(
		Item{Pos: geom.NewPoint(1, 0), Element: word("a")},
		Item{Pos: geom.NewPoint(2, 0), Element: word("b")},
	)
	f.Insert(1, geom.Point{}, word("m"))
	f.Prepend(geom.Point{}, word("z"))
	assert.Equal(t, "zambx", f.Text())

	assert.Panics(t, func() { f.Insert(f.Layer()+1, geom.Point{}, square()) })
	assert.Panics(t, func() { f.Insert(-1, geom.Point{}, square()) })
	assert.NotPanics(t, func() { f.Insert(f.Layer(), geom.Point{}, square()) })
}

func TestClearSharedFrame(t *testing.T) {
	a := frameWith(geom.NewSize(10, 10), 3)
	b := a.Clone()
	b.Clear()
	assert.True(t, b.IsEmpty())
	assert.Equal(t, 3, a.Layer())

	a.Clear()
	assert.True(t, a.IsEmpty())
	assert.Equal(t, geom.NewSize(10, 10), a.Size())
}

func TestResize(t *testing.T) {
	cases := []struct {
		name   string
		aligns geom.Axes[geom.Align]
		want   geom.Point
	}{
		{"start", geom.Splat(geom.AlignStart), geom.Point{}},
		{"center", geom.Splat(geom.AlignCenter), geom.NewPoint(5, 10)},
		{"end", geom.NewAxes(geom.AlignEnd, geom.AlignCenter), geom.NewPoint(10, 10)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := NewFrame(geom.NewSize(10, 10))
			f.Push(geom.Point{}, square())
			f.Resize(geom.NewSize(20, 30), tc.aligns)
			assert.Equal(t, geom.NewSize(20, 30), f.Size())
			assert.Equal(t, tc.want, f.Items()[0].Pos)
		})
	}

	same := frameWith(geom.NewSize(10, 10), 1)
	shared := same.Clone()
	same.Resize(geom.NewSize(10, 10), geom.Splat(geom.AlignCenter))
	assert.True(t, same.Shares(shared), "尺寸不变时不应复制")
}

func TestMetaCoversFrame(t *testing.T) {
	f := NewFrame(geom.NewSize(40, 12))
	f.Push(geom.Point{}, word("link"))
	link := Link{Dest: URL("https://example.com")}
	f.Meta(stubStyles{link})

	items := f.Items()
	require.Len(t, items, 2)
	me, ok := items[1].Element.(MetaElement)
	require.True(t, ok)
	assert.Equal(t, link, me.Meta)
	assert.Equal(t, geom.NewSize(40, 12), me.Size)

	f.Meta(nil)
	f.Meta(stubStyles{})
	assert.Equal(t, 2, f.Layer())
}

func TestTransformWrapsContents(t *testing.T) {
	f := frameWith(geom.NewSize(10, 10), 3)
	f.SetBaseline(7)
	rot := geom.Rotate(math.Pi / 2)
	f.Transform(rot)

	items := f.Items()
	require.Len(t, items, 1)
	g := items[0].Element.(Group)
	assert.Equal(t, rot, g.Transform)
	assert.False(t, g.Clips)
	assert.Equal(t, 3, g.Frame().Layer())
	assert.Equal(t, geom.Abs(7), g.Frame().Baseline())
	assert.Equal(t, geom.NewSize(10, 10), f.Size())
}

func TestTextRecursesIntoGroups(t *testing.T) {
	inner := NewFrame(geom.NewSize(10, 10))
	inner.Push(geom.Point{}, word("lo"))
	inner.Clip()

	f := NewFrame(geom.NewSize(20, 10))
	f.Push(geom.Point{}, word("hel"))
	f.Push(geom.Point{}, NewGroup(inner))
	assert.Equal(t, "hello", f.Text())
}

// A frame with one run is placed twice into a page; clipping the page
// wraps both copies in a single clipping group.
func TestComposeAndClip(t *testing.T) {
	f1 := NewFrame(geom.NewSize(50, 20))
	f1.Push(geom.NewPoint(0, 15), word("abc"))
	copy1 := f1.Clone()

	f2 := NewFrame(geom.NewSize(50, 40))
	f2.PushFrame(geom.Point{}, f1)
	assert.Equal(t, 1, f2.Layer())

	f2.PushFrame(geom.NewPoint(0, 20), copy1)
	items := f2.Items()
	require.Len(t, items, 2)
	assert.Equal(t, geom.NewPoint(0, 15), items[0].Pos)
	assert.Equal(t, geom.NewPoint(0, 35), items[1].Pos)

	f2.Clip()
	require.Equal(t, 1, f2.Layer())
	g := f2.Items()[0].Element.(Group)
	assert.True(t, g.Clips)
	assert.Equal(t, 2, g.Frame().Layer())
	assert.Equal(t, geom.NewSize(50, 40), f2.Size())
	assert.Equal(t, "abcabc", f2.Text())
}

func TestFrameJSON(t *testing.T) {
	f := NewFrame(geom.NewSize(10, 10))
	f.Push(geom.Point{}, word("a"))
	loc, err := NewLocation(2, geom.NewPoint(1, 2))
	require.NoError(t, err)
	f.Meta(stubStyles{Link{Dest: Internal{Loc: loc}}})

	data, err := json.Marshal(f)
	require.NoError(t, err)

	var decoded struct {
		Elements []struct {
			Kind string         `json:"kind"`
			Text string         `json:"text"`
			Meta map[string]any `json:"meta"`
		} `json:"elements"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded.Elements, 2)
	assert.Equal(t, "text", decoded.Elements[0].Kind)
	assert.Equal(t, "a", decoded.Elements[0].Text)
	assert.Equal(t, "meta", decoded.Elements[1].Kind)
	assert.Contains(t, decoded.Elements[1].Meta, "location")
}

func TestFragment(t *testing.T) {
	f := NewFrame(geom.NewSize(1, 1))
	assert.Same(t, f, FragmentOf(f).IntoFrame())
	assert.Panics(t, func() { FragmentOf().IntoFrame() })
	assert.Panics(t, func() { FragmentOf(f, f.Clone()).IntoFrame() })
	assert.Equal(t, 2, FragmentOf(f, f).Len())
}
