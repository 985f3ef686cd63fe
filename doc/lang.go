package doc

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"

	"golang.org/x/text/language"

	"github.com/ByLCY/folio/geom"
)

var (
	ErrInvalidLang   = errors.New("expected two or three letter language code (ISO 639-1/2/3)")
	ErrInvalidRegion = errors.New("expected two letter region code (ISO 3166-1 alpha-2)")
)

// ParseError reports an identifier that failed validation.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid code %q: %v", e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Lang identifies a natural language by its lowercase ISO 639 code. The code
// is right-padded with spaces; n tracks its real length.
type Lang struct {
	code [3]byte
	n    uint8
}

var (
	English = Lang{code: [3]byte{'e', 'n', ' '}, n: 2}
	German  = Lang{code: [3]byte{'d', 'e', ' '}, n: 2}
)

// ParseLang constructs a language from a two- or three-letter ISO 639-1/2/3
// code.
func ParseLang(iso string) (Lang, error) {
	if n := len(iso); n < 2 || n > 3 || !asciiLetters(iso) {
		return Lang{}, &ParseError{Input: iso, Err: ErrInvalidLang}
	}
	l := Lang{code: [3]byte{' ', ' ', ' '}, n: uint8(len(iso))}
	for i := 0; i < len(iso); i++ {
		l.code[i] = lower(iso[i])
	}
	return l, nil
}

// MustParseLang is like ParseLang but panics on invalid input.
func MustParseLang(iso string) Lang {
	l, err := ParseLang(iso)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the lowercase code.
func (l Lang) String() string { return string(l.code[:l.n]) }

func (l Lang) IsZero() bool { return l.n == 0 }

// Dir returns the default writing direction for the language.
func (l Lang) Dir() geom.Dir {
	switch l.String() {
	case "ar", "dv", "fa", "he", "ks", "pa", "ps", "sd", "ug", "ur", "yi":
		return geom.RTL
	default:
		return geom.LTR
	}
}

// Compare orders languages byte-wise.
func (l Lang) Compare(o Lang) int {
	if c := bytes.Compare(l.code[:], o.code[:]); c != 0 {
		return c
	}
	return cmp.Compare(l.n, o.n)
}

// Tag converts the language to a BCP 47 tag.
func (l Lang) Tag() language.Tag {
	if l.IsZero() {
		return language.Und
	}
	return language.Make(l.String())
}

func (l Lang) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Lang) UnmarshalText(text []byte) error {
	v, err := ParseLang(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Region identifies a region by its uppercase ISO 3166-1 alpha-2 code.
type Region struct {
	code [2]byte
}

// ParseRegion constructs a region from its two-letter code.
func ParseRegion(iso string) (Region, error) {
	if len(iso) != 2 || !asciiLetters(iso) {
		return Region{}, &ParseError{Input: iso, Err: ErrInvalidRegion}
	}
	return Region{code: [2]byte{upper(iso[0]), upper(iso[1])}}, nil
}

func (r Region) String() string {
	if r.IsZero() {
		return ""
	}
	return string(r.code[:])
}

func (r Region) IsZero() bool { return r.code == [2]byte{} }

// Compare orders regions byte-wise.
func (r Region) Compare(o Region) int { return bytes.Compare(r.code[:], o.code[:]) }

// Tag converts the region for use with golang.org/x/text. Well-formed codes
// that ISO does not assign are rejected here.
func (r Region) Tag() (language.Region, error) {
	return language.ParseRegion(r.String())
}

func (r Region) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

func (r *Region) UnmarshalText(text []byte) error {
	v, err := ParseRegion(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

func asciiLetters(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func lower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

func upper(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
