package doc

import (
	"fmt"
	"strconv"
	"strings"
)

// RoleKind enumerates the standard semantic roles.
type RoleKind int

const (
	RoleParagraph RoleKind = iota
	RoleHeading
	RoleGenericBlock
	RoleGenericInline
	RoleList
	RoleListItem
	RoleListLabel
	RoleListItemBody
	RoleFormula
	RoleTable
	RoleTableRow
	RoleTableCell
	RoleCode
	RoleHeader
	RoleFooter
	RoleBackground
	RoleForeground
)

var roleNames = [...]string{
	RoleParagraph:     "paragraph",
	RoleHeading:       "heading",
	RoleGenericBlock:  "block",
	RoleGenericInline: "inline",
	RoleList:          "list",
	RoleListItem:      "list-item",
	RoleListLabel:     "list-label",
	RoleListItemBody:  "list-item-body",
	RoleFormula:       "formula",
	RoleTable:         "table",
	RoleTableRow:      "table-row",
	RoleTableCell:     "table-cell",
	RoleCode:          "code",
	RoleHeader:        "header",
	RoleFooter:        "footer",
	RoleBackground:    "background",
	RoleForeground:    "foreground",
}

func (k RoleKind) String() string {
	if k < 0 || int(k) >= len(roleNames) {
		return "RoleKind(" + strconv.Itoa(int(k)) + ")"
	}
	return roleNames[k]
}

// Role is a semantic document-structure role. Level and Outlined apply to
// headings, Ordered to lists.
type Role struct {
	Kind     RoleKind
	Level    int
	Outlined bool
	Ordered  bool
}

// Heading creates a heading role. Panics if level is below 1.
func Heading(level int, outlined bool) Role {
	if level < 1 {
		panic(fmt.Sprintf("role: heading level %d must be at least 1", level))
	}
	return Role{Kind: RoleHeading, Level: level, Outlined: outlined}
}

// List creates a list role.
func List(ordered bool) Role {
	return Role{Kind: RoleList, Ordered: ordered}
}

// Parent returns the role kind a role of this kind must be nested in.
// Producers uphold this; nothing here checks it.
func (r Role) Parent() (RoleKind, bool) {
	switch r.Kind {
	case RoleListItem:
		return RoleList, true
	case RoleListLabel, RoleListItemBody:
		return RoleListItem, true
	case RoleTableRow:
		return RoleTable, true
	case RoleTableCell:
		return RoleTableRow, true
	default:
		return 0, false
	}
}

func (r Role) String() string {
	switch r.Kind {
	case RoleHeading:
		s := "heading:" + strconv.Itoa(r.Level)
		if !r.Outlined {
			s += ":unoutlined"
		}
		return s
	case RoleList:
		if r.Ordered {
			return "list:ordered"
		}
		return "list"
	default:
		return r.Kind.String()
	}
}

// ParseRole parses the String form of a role, e.g. "heading:2",
// "list:ordered" or "table-cell".
func ParseRole(s string) (Role, error) {
	parts := strings.Split(strings.ToLower(strings.TrimSpace(s)), ":")
	switch parts[0] {
	case "heading":
		level := 1
		if len(parts) > 1 {
			n, err := strconv.Atoi(parts[1])
			if err != nil || n < 1 {
				return Role{}, fmt.Errorf("role %q: invalid heading level", s)
			}
			level = n
		}
		outlined := len(parts) < 3 || parts[2] != "unoutlined"
		return Heading(level, outlined), nil
	case "list":
		return List(len(parts) > 1 && parts[1] == "ordered"), nil
	}
	if len(parts) == 1 {
		for k, name := range roleNames {
			if name == parts[0] {
				return Role{Kind: RoleKind(k)}, nil
			}
		}
	}
	return Role{}, fmt.Errorf("role %q: unknown role", s)
}
