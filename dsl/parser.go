// Package dsl parses frame scripts.
//
// A script names a document and lists commands. Every command is an
// identifier followed by arguments and an optional block:
//
//	document "Report" by "Ada" {
//	  font body "builtin:serif"
//	  frame badge 40mm 12mm {
//	    rect 40mm 12mm fill=#eeeeee
//	    text "Hi ${name}" x=2mm y=3mm font=body
//	  }
//	  page a4 {
//	    place badge x=10mm y=10mm
//	  }
//	}
//
// Arguments are positional values or key=value pairs. Values are strings,
// numbers with an optional unit, colors or bare identifiers.
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	scriptLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d+|\d+|\.\d+)(?:pt|mm|cm|in|em|deg|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[=;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	scriptParser = participle.MustBuild[Script](
		participle.Lexer(scriptLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
		participle.UseLookahead(2),
	)
)

// Script is the root AST node of a frame script.
type Script struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Title  StringLiteral  `parser:"Newline* 'document' @String"`
	Author StringLiteral  `parser:"( 'by' @String )?"`
	Body   *Block         `parser:"@@ Newline*"`
}

// Block is a braced list of commands separated by newlines or semicolons.
type Block struct {
	Commands []*Command `parser:"'{' ( Newline | ';' )* ( @@ ( Newline | ';' )* )* '}'"`
}

// Command is a single instruction.
type Command struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Name  string         `parser:"@Ident"`
	Args  []*Arg         `parser:"@@*"`
	Block *Block         `parser:"@@?"`
}

// Arg is a positional or named argument.
type Arg struct {
	Key   string `parser:"( @Ident '=' )?"`
	Value *Value `parser:"@@"`
}

// Value is a literal argument value.
type Value struct {
	Pos    lexer.Position `parser:"" json:"-"`
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
	Color  *string        `parser:"| @Color"`
	Ident  *string        `parser:"| @Ident"`
}

// Text returns the value as written, with strings unquoted.
func (v *Value) Text() string {
	switch {
	case v == nil:
		return ""
	case v.String != nil:
		return string(*v.String)
	case v.Number != nil:
		return *v.Number
	case v.Color != nil:
		return *v.Color
	case v.Ident != nil:
		return *v.Ident
	default:
		return ""
	}
}

// Kind names the value's token type.
func (v *Value) Kind() string {
	switch {
	case v == nil:
		return "none"
	case v.String != nil:
		return "string"
	case v.Number != nil:
		return "number"
	case v.Color != nil:
		return "color"
	default:
		return "ident"
	}
}

// Positional returns the i-th argument without a key, or nil.
func (c *Command) Positional(i int) *Value {
	n := 0
	for _, a := range c.Args {
		if a.Key != "" {
			continue
		}
		if n == i {
			return a.Value
		}
		n++
	}
	return nil
}

// NumPositional counts the arguments without a key.
func (c *Command) NumPositional() int {
	n := 0
	for _, a := range c.Args {
		if a.Key == "" {
			n++
		}
	}
	return n
}

// Named returns the value of the last key=value argument with the given
// key, or nil.
func (c *Command) Named(key string) *Value {
	var found *Value
	for _, a := range c.Args {
		if strings.EqualFold(a.Key, key) {
			found = a.Value
		}
	}
	return found
}

// Children returns the commands of the block, if any.
func (c *Command) Children() []*Command {
	if c.Block == nil {
		return nil
	}
	return c.Block.Commands
}

// Errorf reports an error at the command's position.
func (c *Command) Errorf(format string, args ...any) error {
	return fmt.Errorf("%s: %s: %s", c.Pos, c.Name, fmt.Sprintf(format, args...))
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a script from r. name is used in positions.
func Parse(name string, r io.Reader) (*Script, error) {
	return scriptParser.Parse(name, r)
}

// ParseString parses a script from a string.
func ParseString(input string) (*Script, error) {
	return scriptParser.ParseString("", input)
}

// Grammar returns the EBNF of the script language.
func Grammar() string {
	return scriptParser.String()
}
