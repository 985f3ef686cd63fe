// Package model holds the values that connect finished frames back to the
// content that produced them: stable identifiers, opaque content references
// and the generic key-value records handed to external consumers.
package model

import (
	"encoding/binary"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/ByLCY/folio/geom"
)

// StableID identifies a piece of content across layout re-runs. Two
// identical keys are told apart by their disambiguator (the n-th occurrence).
type StableID uint64

// NewStableID derives the id from a content key and its occurrence index.
func NewStableID(key string, disambiguator int) StableID {
	d := xxhash.New()
	_, _ = d.WriteString(key)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(disambiguator))
	_, _ = d.Write(buf[:])
	return StableID(d.Sum64())
}

func (id StableID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// MarshalText encodes the id as hex so JSON keeps all 64 bits.
func (id StableID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// Content is an opaque reference to the source content a region came from.
// The frame tree never looks inside.
type Content struct {
	Kind  string `json:"kind"`
	Label string `json:"label,omitempty"`
	Attrs Dict   `json:"attrs,omitempty"`
}

func (c Content) String() string {
	if c.Label == "" {
		return c.Kind
	}
	return c.Kind + "<" + c.Label + ">"
}

// ValueKind enumerates the kinds of Value.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindInt
	KindLength
	KindStr
)

// Value is one entry of a Dict.
type Value struct {
	Kind   ValueKind
	Int    int64
	Length geom.Abs
	Str    string
}

func Int(v int64) Value       { return Value{Kind: KindInt, Int: v} }
func Length(v geom.Abs) Value { return Value{Kind: KindLength, Length: v} }
func Str(v string) Value      { return Value{Kind: KindStr, Str: v} }

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindLength:
		return v.Length.String()
	case KindStr:
		return strconv.Quote(v.Str)
	default:
		return "none"
	}
}

// MarshalJSON encodes ints as numbers and lengths as {"pt": n}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindInt:
		return []byte(strconv.FormatInt(v.Int, 10)), nil
	case KindLength:
		return []byte(`{"pt":` + strconv.FormatFloat(v.Length.ToPt(), 'f', -1, 64) + `}`), nil
	case KindStr:
		return []byte(strconv.Quote(v.Str)), nil
	default:
		return []byte("null"), nil
	}
}

// Dict is a string-keyed record.
type Dict map[string]Value

// Keys returns the keys in sorted order.
func (d Dict) Keys() []string {
	return slices.Sorted(maps.Keys(d))
}

func (d Dict) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, k := range d.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(d[k].String())
	}
	b.WriteByte(')')
	return b.String()
}
