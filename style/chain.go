// Package style resolves properties through nested scopes.
//
// A Chain is an immutable list of scopes, innermost first. Looking a
// property up walks the chain and either takes the innermost value or folds
// all values together, depending on the property.
package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ByLCY/folio/doc"
)

// Map is one scope of style values keyed by property name.
type Map map[string]any

// Chain is a linked list of scopes. The zero value is an empty chain.
type Chain struct {
	head Map
	tail *Chain
}

// Push returns a chain with m as its innermost scope. The receiver is not
// modified.
func (c Chain) Push(m Map) Chain {
	if len(m) == 0 {
		return c
	}
	tail := c
	return Chain{head: m, tail: &tail}
}

// Depth returns the number of scopes.
func (c Chain) Depth() int {
	n := 0
	for s := &c; s != nil && s.head != nil; s = s.tail {
		n++
	}
	return n
}

// values yields the raw values for name, innermost first.
func (c Chain) values(name string) []any {
	var out []any
	for s := &c; s != nil && s.head != nil; s = s.tail {
		if v, ok := s.head[name]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Property describes how a style value is looked up.
type Property[T any] struct {
	Name    string
	Default T
	// Fold combines an inner value with the folded outer value. Without Fold
	// the innermost value wins.
	Fold func(inner, outer T) T
}

// Set returns a single-entry scope setting the property.
func (p Property[T]) Set(v T) Map {
	return Map{p.Name: v}
}

// Get resolves the property in the chain.
func Get[T any](c Chain, p Property[T]) T {
	vals := c.values(p.Name)
	if len(vals) == 0 {
		return p.Default
	}
	if p.Fold == nil {
		if v, ok := vals[0].(T); ok {
			return v
		}
		return p.Default
	}
	acc := p.Default
	for i := len(vals) - 1; i >= 0; i-- {
		v, ok := vals[i].(T)
		if !ok {
			continue
		}
		acc = p.Fold(v, acc)
	}
	return acc
}

// MetaData is the metadata attached to everything laid out in a scope.
// Nested scopes fold with doc.FoldMeta.
var MetaData = Property[[]doc.Meta]{
	Name: "metadata",
	Fold: doc.FoldMeta,
}

// Metadata returns the folded metadata of the chain.
func (c Chain) Metadata() []doc.Meta {
	return Get(c, MetaData)
}

var _ doc.Styles = Chain{}

func (c Chain) String() string {
	var scopes []string
	for s := &c; s != nil && s.head != nil; s = s.tail {
		keys := make([]string, 0, len(s.head))
		for k := range s.head {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		scopes = append(scopes, "{"+strings.Join(keys, ", ")+"}")
	}
	return fmt.Sprintf("Chain[%s]", strings.Join(scopes, " "))
}
