// Package doc is the finished-document model: the frame tree produced by
// layout and consumed by exporters.
//
// A Frame is an ordered list of positioned elements. Elements are painted in
// order, back to front. Frames share element storage copy-on-write, so the
// same sublayout can appear at many positions without being copied.
package doc

import "fmt"

// Document is a finished document with metadata and page frames.
type Document struct {
	Pages  []*Frame
	Title  string
	Author string
}

// Fragment is a partial layout result of one or more frames.
type Fragment []*Frame

// FragmentOf creates a fragment from frames.
func FragmentOf(frames ...*Frame) Fragment { return Fragment(frames) }

func (f Fragment) Len() int { return len(f) }

// IntoFrame extracts the first and only frame.
//
// Panics if there is not exactly one frame.
func (f Fragment) IntoFrame() *Frame {
	if len(f) != 1 {
		panic(fmt.Sprintf("fragment: expected exactly one frame, got %d", len(f)))
	}
	return f[0]
}

func (f Fragment) String() string {
	if len(f) == 1 {
		return f[0].String()
	}
	return fmt.Sprint([]*Frame(f))
}
