package geom

import (
	"fmt"
	"strings"
)

// Align positions content along one axis.
type Align int

const (
	AlignStart Align = iota
	AlignCenter
	AlignEnd
)

// Axis-specific names used by scripts and callers.
const (
	Left    = AlignStart
	Top     = AlignStart
	Center  = AlignCenter
	Horizon = AlignCenter
	Right   = AlignEnd
	Bottom  = AlignEnd
)

// Position returns the offset for this alignment given the slack between the
// available and the used extent.
func (a Align) Position(slack Abs) Abs {
	switch a {
	case AlignCenter:
		return slack / 2
	case AlignEnd:
		return slack
	default:
		return 0
	}
}

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignEnd:
		return "end"
	default:
		return "start"
	}
}

// ParseAlign accepts start/center/end and the axis-specific aliases.
func ParseAlign(s string) (Align, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "start", "left", "top":
		return AlignStart, nil
	case "center", "middle", "horizon":
		return AlignCenter, nil
	case "end", "right", "bottom":
		return AlignEnd, nil
	default:
		return AlignStart, fmt.Errorf("geom: unknown alignment %q", s)
	}
}

// Dir is a writing or stacking direction.
type Dir int

const (
	LTR Dir = iota
	RTL
	TTB
	BTT
)

// IsHorizontal reports whether the direction runs along the x axis.
func (d Dir) IsHorizontal() bool { return d == LTR || d == RTL }

func (d Dir) String() string {
	switch d {
	case RTL:
		return "rtl"
	case TTB:
		return "ttb"
	case BTT:
		return "btt"
	default:
		return "ltr"
	}
}
