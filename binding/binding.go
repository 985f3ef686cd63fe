// Package binding fills ${path} placeholders in script text from bound data.
package binding

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Template is text split into literal parts and placeholders.
type Template struct {
	parts []part
}

type part struct {
	literal  string
	path     []step
	fallback *string
	raw      string
}

// step is one path segment: a key or an index.
type step struct {
	key   string
	index int
	isIdx bool
}

// Compile 解析文本中的 ${a.b[0]} 与 ${a ?? "默认值"} 占位符。
// 未闭合的 ${ 作为普通文本保留。
func Compile(text string) (*Template, error) {
	t := &Template{}
	rest := text
	for {
		start := strings.Index(rest, "${")
		if start < 0 {
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			break
		}
		end += start
		if start > 0 {
			t.parts = append(t.parts, part{literal: rest[:start]})
		}
		p, err := compilePlaceholder(rest[start : end+1])
		if err != nil {
			return nil, err
		}
		t.parts = append(t.parts, p)
		rest = rest[end+1:]
	}
	if rest != "" {
		t.parts = append(t.parts, part{literal: rest})
	}
	return t, nil
}

func compilePlaceholder(raw string) (part, error) {
	expr := strings.TrimSpace(raw[2 : len(raw)-1])
	p := part{raw: raw}
	if i := strings.Index(expr, "??"); i >= 0 {
		fb := strings.TrimSpace(expr[i+2:])
		if unq, err := strconv.Unquote(fb); err == nil {
			fb = unq
		}
		p.fallback = &fb
		expr = strings.TrimSpace(expr[:i])
	}
	if expr == "" {
		return part{literal: raw}, nil
	}
	path, err := parsePath(expr)
	if err != nil {
		return part{}, err
	}
	p.path = path
	return p, nil
}

// Execute 用 data 渲染模板。找不到的路径使用默认值，没有默认值时保留原占位符。
func (t *Template) Execute(data any) string {
	var b strings.Builder
	for _, p := range t.parts {
		if p.path == nil {
			b.WriteString(p.literal)
			continue
		}
		if v, ok := lookup(data, p.path); ok {
			b.WriteString(format(v))
		} else if p.fallback != nil {
			b.WriteString(*p.fallback)
		} else {
			b.WriteString(p.raw)
		}
	}
	return b.String()
}

// HasPlaceholders reports whether the template references any data.
func (t *Template) HasPlaceholders() bool {
	for _, p := range t.parts {
		if p.path != nil {
			return true
		}
	}
	return false
}

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 占位符语法错误时原样返回文本。
func Interpolate(text string, data any) string {
	if !strings.Contains(text, "${") {
		return text
	}
	t, err := Compile(text)
	if err != nil {
		return text
	}
	return t.Execute(data)
}

// Lookup resolves a dotted path such as "items[2].name" in data.
func Lookup(data any, path string) (any, bool) {
	steps, err := parsePath(path)
	if err != nil {
		return nil, false
	}
	return lookup(data, steps)
}

// parsePath splits a path into its keys and indexes.
func parsePath(path string) ([]step, error) {
	var steps []step
	for _, seg := range strings.Split(path, ".") {
		seg = strings.TrimSpace(seg)
		name := seg
		var idx string
		if i := strings.IndexByte(seg, '['); i >= 0 {
			name, idx = seg[:i], seg[i:]
		}
		if name == "" && idx == "" {
			return nil, fmt.Errorf("binding: 路径 %q 含空段", path)
		}
		if name != "" {
			steps = append(steps, step{key: name})
		}
		for idx != "" {
			end := strings.IndexByte(idx, ']')
			if idx[0] != '[' || end < 0 {
				return nil, fmt.Errorf("binding: 路径 %q 的下标未闭合", path)
			}
			n, err := strconv.Atoi(strings.TrimSpace(idx[1:end]))
			if err != nil {
				return nil, fmt.Errorf("binding: 路径 %q 的下标无效: %w", path, err)
			}
			steps = append(steps, step{index: n, isIdx: true})
			idx = idx[end+1:]
		}
	}
	return steps, nil
}

func lookup(data any, steps []step) (any, bool) {
	cur := data
	for _, s := range steps {
		if cur == nil {
			return nil, false
		}
		var ok bool
		if s.isIdx {
			cur, ok = index(cur, s.index)
		} else {
			cur, ok = field(cur, s.key)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

func field(cur any, key string) (any, bool) {
	switch c := cur.(type) {
	case map[string]any:
		v, ok := c[key]
		return v, ok
	case map[string]string:
		v, ok := c[key]
		return v, ok
	}
	rv := reflect.Indirect(reflect.ValueOf(cur))
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(key).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Struct:
		f := rv.FieldByNameFunc(func(n string) bool { return strings.EqualFold(n, key) })
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	}
	return nil, false
}

func index(cur any, i int) (any, bool) {
	if c, ok := cur.([]any); ok {
		if i < 0 || i >= len(c) {
			return nil, false
		}
		return c[i], true
	}
	rv := reflect.Indirect(reflect.ValueOf(cur))
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if i < 0 || i >= rv.Len() {
		return nil, false
	}
	return rv.Index(i).Interface(), true
}

func format(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(v)
	}
}
