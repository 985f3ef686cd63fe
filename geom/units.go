package geom

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// This file defines unit-safe lengths. Abs is stored in points; Length keeps
// the unit an author wrote so it can be reported back unchanged.

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm

	ptPerCm = 10 * MmToPt
	ptPerIn = 72.0
)

// Abs is an absolute length in points.
type Abs float64

// Pt creates an absolute length from points.
func Pt(v float64) Abs { return Abs(v) }

// Mm creates an absolute length from millimeters.
func Mm(v float64) Abs { return Abs(v * MmToPt) }

// Cm creates an absolute length from centimeters.
func Cm(v float64) Abs { return Abs(v * ptPerCm) }

// In creates an absolute length from inches.
func In(v float64) Abs { return Abs(v * ptPerIn) }

func (a Abs) ToPt() float64 { return float64(a) }
func (a Abs) ToMM() float64 { return float64(a) * PtToMm }

// IsFinite reports whether the length is neither infinite nor NaN.
func (a Abs) IsFinite() bool {
	f := float64(a)
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

func (a Abs) IsZero() bool { return a == 0 }

// Min returns the smaller of two lengths.
func (a Abs) Min(b Abs) Abs {
	if b < a {
		return b
	}
	return a
}

// Max returns the larger of two lengths.
func (a Abs) Max(b Abs) Abs {
	if b > a {
		return b
	}
	return a
}

// SafeDiv divides by b, returning zero when b is zero.
func (a Abs) SafeDiv(b Abs) float64 {
	if b == 0 {
		return 0
	}
	return float64(a) / float64(b)
}

// ApproxEq compares two lengths with a tolerance suited for layout math.
func (a Abs) ApproxEq(b Abs) bool {
	return math.Abs(float64(a-b)) < 1e-9
}

func (a Abs) String() string {
	return strconv.FormatFloat(float64(a), 'f', -1, 64) + "pt"
}

// Em is a length relative to the font size. Glyph metrics are stored in Em
// so that one shaped run can be painted at any size.
type Em float64

// EmFromUnits converts font design units to Em.
func EmFromUnits(units float64, unitsPerEm float64) Em {
	if unitsPerEm == 0 {
		return 0
	}
	return Em(units / unitsPerEm)
}

// At resolves the em length at the given font size.
func (e Em) At(size Abs) Abs {
	res := Abs(float64(e) * float64(size))
	if !res.IsFinite() {
		return 0
	}
	return res
}

func (e Em) String() string {
	return strconv.FormatFloat(float64(e), 'f', -1, 64) + "em"
}

// Unit represents the original unit of a length value as written in a script.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers like factors
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitEM               // font-relative
)

// String returns the short suffix for the unit.
func (u Unit) String() string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitEM:
		return "em"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

func (l Length) IsZero() bool { return l.Value == 0 }

// Resolve converts the length to an absolute length. Em lengths are resolved
// against fontSize; unit-less numbers are taken as points.
func (l Length) Resolve(fontSize Abs) Abs {
	switch l.Unit {
	case UnitMM:
		return Mm(l.Value)
	case UnitCM:
		return Cm(l.Value)
	case UnitIN:
		return In(l.Value)
	case UnitEM:
		return Em(l.Value).At(fontSize)
	default:
		return Pt(l.Value)
	}
}

// Abs resolves lengths that cannot be font-relative.
func (l Length) Abs() Abs { return l.Resolve(0) }

func (l Length) String() string {
	return strconv.FormatFloat(l.Value, 'f', -1, 64) + l.Unit.String()
}

var unitSuffixes = []struct {
	s string
	u Unit
}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"em", UnitEM}}

// ParseLength parses a length such as "12pt", "1.5cm" or "3" preserving its
// unit.
func ParseLength(value string) (Length, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, fmt.Errorf("geom: empty length")
	}
	unit := UnitNone
	num := v
	for _, suf := range unitSuffixes {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}, fmt.Errorf("geom: invalid length %q: %w", value, err)
	}
	return Length{Value: f, Unit: unit}, nil
}
