package doc

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/model"
)

// Meta is information that isn't visible or renderable: a Link or a Node.
type Meta interface {
	isMeta()
}

// Link is an internal or external link.
type Link struct {
	Dest Destination
}

// Node marks the area produced by an identifiable piece of content.
type Node struct {
	ID      model.StableID
	Content model.Content
}

func (Link) isMeta() {}
func (Node) isMeta() {}

func (l Link) String() string { return fmt.Sprintf("Link(%v)", l.Dest) }

func (n Node) String() string { return fmt.Sprintf("Node(%v, %v)", n.ID, n.Content) }

// Styles gives access to the metadata active in a style scope.
type Styles interface {
	// Metadata returns the folded metadata, innermost scope first.
	Metadata() []Meta
}

// FoldMeta combines the metadata of an inner scope with that of its
// enclosing scope: inner entries first, outer entries appended. The result
// never has spare capacity shared with inner.
func FoldMeta(inner, outer []Meta) []Meta {
	if len(outer) == 0 {
		return slices.Clip(inner)
	}
	out := make([]Meta, 0, len(inner)+len(outer))
	out = append(out, inner...)
	return append(out, outer...)
}

// Destination is where a link points: Internal or URL.
type Destination interface {
	isDestination()
}

// Internal links to a point on a page.
type Internal struct {
	Loc Location
}

// URL links to an external resource.
type URL string

func (Internal) isDestination() {}
func (URL) isDestination()      {}

func (i Internal) String() string { return fmt.Sprintf("Internal(%v)", i.Loc) }
func (u URL) String() string      { return fmt.Sprintf("Url(%q)", string(u)) }

var ErrInvalidPage = errors.New("page numbers start at 1")

// Location is a physical location in a document.
type Location struct {
	// Page starts at 1.
	Page int
	// Pos is measured from the top left of the page.
	Pos geom.Point
}

// NewLocation creates a location; page must be at least 1.
func NewLocation(page int, pos geom.Point) (Location, error) {
	if page < 1 {
		return Location{}, fmt.Errorf("location page %d: %w", page, ErrInvalidPage)
	}
	return Location{Page: page, Pos: pos}, nil
}

// Encode converts the location into a user-facing record.
func (l Location) Encode() model.Dict {
	return model.Dict{
		"page": model.Int(int64(l.Page)),
		"x":    model.Length(l.Pos.X),
		"y":    model.Length(l.Pos.Y),
	}
}

func (l Location) String() string {
	return fmt.Sprintf("page %d at %v", l.Page, l.Pos)
}
