package doc

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/ByLCY/folio/geom"
)

// InlineThreshold is the largest child frame, in elements, that PushFrame
// and PrependFrame splice into a non-empty parent instead of wrapping it in
// a Group.
var InlineThreshold = 5

// Item is an element and its position relative to the frame's top-left.
type Item struct {
	Pos     geom.Point
	Element Element
}

// buffer is the element storage shared between frames. refs counts the
// frames that reference it; a frame may only write to a buffer it owns
// alone.
type buffer struct {
	refs  atomic.Int64
	items []Item
}

func newBuffer(items []Item) *buffer {
	b := &buffer{items: items}
	b.refs.Store(1)
	return b
}

func (b *buffer) shared() bool { return b.refs.Load() > 1 }

func (b *buffer) retain() { b.refs.Add(1) }

func (b *buffer) release() { b.refs.Add(-1) }

// cloneItems copies items for a new owner. Group frames are cloned as well
// so that the copy holds its own handle on every nested buffer.
func cloneItems(items []Item, extra int) []Item {
	out := make([]Item, len(items), len(items)+extra)
	for i, it := range items {
		if g, ok := it.Element.(Group); ok {
			g.frame = g.frame.Clone()
			it.Element = g
		}
		out[i] = it
	}
	return out
}

// Frame is a finished layout with elements at fixed positions.
//
// Frames share their element storage: Clone is O(1) and the first write
// through either frame copies the elements. Frames must not be copied by
// value; use Clone.
type Frame struct {
	size        geom.Size
	baseline    geom.Abs
	hasBaseline bool
	elems       *buffer
}

// NewFrame creates an empty frame.
//
// Panics if the size is not finite or negative.
func NewFrame(size geom.Size) *Frame {
	mustValidSize(size)
	return &Frame{size: size}
}

func mustValidSize(size geom.Size) {
	if !size.IsFinite() || size.X < 0 || size.Y < 0 {
		panic(fmt.Sprintf("frame: invalid size %v", size))
	}
}

// Clone returns a frame sharing this frame's elements.
func (f *Frame) Clone() *Frame {
	c := &Frame{size: f.size, baseline: f.baseline, hasBaseline: f.hasBaseline, elems: f.elems}
	if c.elems != nil {
		c.elems.retain()
	}
	return c
}

// Shares reports whether both frames currently reference the same element
// storage.
func (f *Frame) Shares(other *Frame) bool {
	return f.elems != nil && f.elems == other.elems
}

func (f *Frame) items() []Item {
	if f.elems == nil {
		return nil
	}
	return f.elems.items
}

// unique makes the element storage exclusively owned by f, copying it if
// another frame still references it.
func (f *Frame) unique() *buffer {
	switch {
	case f.elems == nil:
		f.elems = newBuffer(nil)
	case f.elems.shared():
		old := f.elems
		f.elems = newBuffer(cloneItems(old.items, 1))
		old.release()
	}
	return f.elems
}

// take detaches the element storage from a consumed frame.
func (f *Frame) take() *buffer {
	b := f.elems
	f.elems = nil
	return b
}

func (f *Frame) IsEmpty() bool { return len(f.items()) == 0 }

func (f *Frame) Size() geom.Size { return f.size }

// SetSize sets the size without moving any content.
func (f *Frame) SetSize(size geom.Size) {
	mustValidSize(size)
	f.size = size
}

func (f *Frame) Width() geom.Abs  { return f.size.X }
func (f *Frame) Height() geom.Abs { return f.size.Y }

// Baseline returns the baseline measured from the top. Without an explicit
// baseline it is the bottom edge.
func (f *Frame) Baseline() geom.Abs {
	if f.hasBaseline {
		return f.baseline
	}
	return f.size.Y
}

// HasBaseline reports whether the baseline was set explicitly.
func (f *Frame) HasBaseline() bool { return f.hasBaseline }

func (f *Frame) SetBaseline(baseline geom.Abs) {
	f.baseline = baseline
	f.hasBaseline = true
}

// Elements iterates over the elements in paint order, back to front.
func (f *Frame) Elements() iter.Seq2[geom.Point, Element] {
	items := f.items()
	return func(yield func(geom.Point, Element) bool) {
		for _, it := range items {
			if !yield(it.Pos, it.Element) {
				return
			}
		}
	}
}

// Items returns a copy of the positioned elements.
func (f *Frame) Items() []Item {
	return slices.Clone(f.items())
}

// Text recovers the text inside the frame and its groups.
func (f *Frame) Text() string {
	var b strings.Builder
	f.writeText(&b)
	return b.String()
}

func (f *Frame) writeText(b *strings.Builder) {
	for _, it := range f.items() {
		switch e := it.Element.(type) {
		case Text:
			for _, g := range e.Glyphs {
				b.WriteRune(g.C)
			}
		case Group:
			e.frame.writeText(b)
		}
	}
}

// Layer is the layer the next item will be added on, i.e. the number of
// elements in the frame.
func (f *Frame) Layer() int { return len(f.items()) }

// Push adds an element in the foreground.
func (f *Frame) Push(pos geom.Point, elem Element) {
	b := f.unique()
	b.items = append(b.items, Item{Pos: pos, Element: elem})
}

// PushFrame adds a frame in the foreground, inlining its elements or
// wrapping it in a group depending on its size. The child is consumed.
func (f *Frame) PushFrame(pos geom.Point, child *Frame) {
	if f.shouldInline(child) {
		f.inline(f.Layer(), pos, child)
	} else {
		f.Push(pos, NewGroup(child))
	}
}

// Insert adds an element at the given layer.
//
// Panics if layer is greater than the number of layers present.
func (f *Frame) Insert(layer int, pos geom.Point, elem Element) {
	if layer < 0 || layer > f.Layer() {
		panic(fmt.Sprintf("frame: layer %d out of range [0, %d]", layer, f.Layer()))
	}
	b := f.unique()
	b.items = slices.Insert(b.items, layer, Item{Pos: pos, Element: elem})
}

// Prepend adds an element in the background.
func (f *Frame) Prepend(pos geom.Point, elem Element) {
	f.Insert(0, pos, elem)
}

// PrependMultiple adds elements in the background. The first item ends up
// furthest back.
func (f *Frame) PrependMultiple(items ...Item) {
	if len(items) == 0 {
		return
	}
	b := f.unique()
	b.items = slices.Insert(b.items, 0, items...)
}

// PrependFrame adds a frame in the background. The child is consumed.
func (f *Frame) PrependFrame(pos geom.Point, child *Frame) {
	if f.shouldInline(child) {
		f.inline(0, pos, child)
	} else {
		f.Prepend(pos, NewGroup(child))
	}
}

func (f *Frame) shouldInline(child *Frame) bool {
	return f.IsEmpty() || child.Layer() <= InlineThreshold
}

// inline splices the child's elements in at layer, reusing the child's
// storage whenever it is not shared.
func (f *Frame) inline(layer int, pos geom.Point, child *Frame) {
	if pos.IsZero() && f.IsEmpty() {
		if f.elems != nil {
			f.elems.release()
		}
		f.elems = child.take()
		return
	}

	src := child.take()
	if src == nil || len(src.items) == 0 {
		if src != nil {
			src.release()
		}
		return
	}

	sink := f.unique()
	var moved []Item
	if src.shared() {
		moved = cloneItems(src.items, 0)
		src.release()
	} else {
		moved = src.items
	}
	if !pos.IsZero() {
		for i := range moved {
			moved[i].Pos = moved[i].Pos.Add(pos)
		}
	}
	sink.items = slices.Insert(sink.items, layer, moved...)
}

// Clear removes all elements.
func (f *Frame) Clear() {
	if f.elems == nil {
		return
	}
	if f.elems.shared() {
		f.elems.release()
		f.elems = nil
		return
	}
	clear(f.elems.items)
	f.elems.items = f.elems.items[:0]
}

// Resize changes the size, distributing the new space according to the
// alignments.
func (f *Frame) Resize(target geom.Size, aligns geom.Axes[geom.Align]) {
	if f.size == target {
		return
	}
	mustValidSize(target)
	offset := geom.Point{
		X: aligns.X.Position(target.X - f.size.X),
		Y: aligns.Y.Position(target.Y - f.size.Y),
	}
	f.size = target
	f.Translate(offset)
}

// Translate moves the baseline and contents by an offset.
func (f *Frame) Translate(offset geom.Point) {
	if offset.IsZero() {
		return
	}
	if f.hasBaseline {
		f.baseline += offset.Y
	}
	if f.IsEmpty() {
		return
	}
	b := f.unique()
	for i := range b.items {
		b.items[i].Pos = b.items[i].Pos.Add(offset)
	}
}

// Meta attaches the metadata active in styles to the whole frame.
func (f *Frame) Meta(styles Styles) {
	if styles == nil {
		return
	}
	for _, m := range styles.Metadata() {
		f.Push(geom.Point{}, MetaElement{Meta: m, Size: f.size})
	}
}

// Transform applies t to everything currently in the frame.
func (f *Frame) Transform(t geom.Transform) {
	f.group(func(g *Group) { g.Transform = t })
}

// Clip clips everything currently in the frame to its size.
func (f *Frame) Clip() {
	f.group(func(g *Group) { g.Clips = true })
}

// group moves the contents into a group, lets fn configure it and leaves the
// group as the only element.
func (f *Frame) group(fn func(*Group)) {
	g := NewGroup(f)
	fn(&g)
	f.Push(geom.Point{}, g)
}

func (f *Frame) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, it := range f.items() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fmt.Sprint(it.Element))
	}
	b.WriteByte(']')
	return b.String()
}
