package layout

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/geom"
)

// args 读取一条命令的参数，并把所有参数错误收集到一起一次性返回。
type args struct {
	cmd *dsl.Command
	// region 是百分比长度的参照尺寸。
	region   geom.Size
	fontSize geom.Abs
	data     any
	err      error
}

func newArgs(cmd *dsl.Command, region geom.Size, fontSize geom.Abs, data any) *args {
	return &args{cmd: cmd, region: region, fontSize: fontSize, data: data}
}

func (a *args) fail(key string, err error) {
	a.err = multierr.Append(a.err, a.cmd.Errorf("参数 %s: %v", key, err))
}

// check 报告不认识的命名参数。
func (a *args) check(allowed ...string) {
	for _, arg := range a.cmd.Args {
		if arg.Key == "" {
			continue
		}
		ok := false
		for _, k := range allowed {
			if strings.EqualFold(k, arg.Key) {
				ok = true
				break
			}
		}
		if !ok {
			a.fail(arg.Key, fmt.Errorf("未知参数"))
		}
	}
}

func (a *args) Err() error { return a.err }

// text 返回第 i 个位置参数并代入绑定数据。
func (a *args) text(i int, key string) string {
	v := a.cmd.Positional(i)
	if v == nil {
		a.fail(key, fmt.Errorf("缺少参数"))
		return ""
	}
	return binding.Interpolate(v.Text(), a.data)
}

func (a *args) named(key string) (string, bool) {
	v := a.cmd.Named(key)
	if v == nil {
		return "", false
	}
	return binding.Interpolate(v.Text(), a.data), true
}

func (a *args) resolve(key, raw string, base geom.Abs) (geom.Abs, bool) {
	if strings.HasSuffix(raw, "%") {
		f, err := strconv.ParseFloat(strings.TrimSuffix(raw, "%"), 64)
		if err != nil {
			a.fail(key, err)
			return 0, false
		}
		return geom.Abs(f / 100 * float64(base)), true
	}
	l, err := geom.ParseLength(raw)
	if err != nil {
		a.fail(key, err)
		return 0, false
	}
	return l.Resolve(a.fontSize), true
}

// length 读取命名长度参数；"%" 相对于 base。
func (a *args) length(key string, base, def geom.Abs) geom.Abs {
	v, ok := a.optLength(key, base)
	if !ok {
		return def
	}
	return v
}

func (a *args) optLength(key string, base geom.Abs) (geom.Abs, bool) {
	raw, ok := a.named(key)
	if !ok {
		return 0, false
	}
	return a.resolve(key, raw, base)
}

// posLength 读取第 i 个位置参数，缺省时改读命名参数 key。
func (a *args) posLength(i int, key string, base geom.Abs) (geom.Abs, bool) {
	if v := a.cmd.Positional(i); v != nil {
		return a.resolve(key, binding.Interpolate(v.Text(), a.data), base)
	}
	return a.optLength(key, base)
}

func (a *args) reqLength(i int, key string, base geom.Abs) geom.Abs {
	v, ok := a.posLength(i, key, base)
	if !ok && a.cmd.Positional(i) == nil && a.cmd.Named(key) == nil {
		a.fail(key, fmt.Errorf("缺少长度"))
	}
	return v
}

// pos 读取 x、y 参数。
func (a *args) pos() geom.Point {
	return geom.Point{
		X: a.length("x", a.region.X, 0),
		Y: a.length("y", a.region.Y, 0),
	}
}

func (a *args) color(key string) *geom.Color {
	raw, ok := a.named(key)
	if !ok {
		return nil
	}
	c, err := geom.ParseColor(raw)
	if err != nil {
		a.fail(key, err)
		return nil
	}
	return &c
}

func (a *args) align(key string, def geom.Align) geom.Align {
	raw, ok := a.named(key)
	if !ok {
		return def
	}
	v, err := geom.ParseAlign(raw)
	if err != nil {
		a.fail(key, err)
		return def
	}
	return v
}

// stroke 读取 stroke 与 stroke-width；只给出其一时另一项取默认值。
func (a *args) stroke() *geom.Stroke {
	paint := a.color("stroke")
	width, hasWidth := a.optLength("stroke-width", a.fontSize)
	if paint == nil && !hasWidth {
		return nil
	}
	s := &geom.Stroke{Paint: geom.Black, Thickness: geom.Pt(1)}
	if paint != nil {
		s.Paint = *paint
	}
	if hasWidth {
		s.Thickness = width
	}
	return s
}

// number 读取第 i 个位置参数作为数字。
func (a *args) number(i int, key string, def float64) float64 {
	v := a.cmd.Positional(i)
	if v == nil {
		return def
	}
	f, err := strconv.ParseFloat(binding.Interpolate(v.Text(), a.data), 64)
	if err != nil {
		a.fail(key, err)
		return def
	}
	return f
}

// angle 读取角度，默认单位为度，返回弧度。
func (a *args) angle(i int, key string) float64 {
	v := a.cmd.Positional(i)
	if v == nil {
		v = a.cmd.Named(key)
	}
	if v == nil {
		a.fail(key, fmt.Errorf("缺少角度"))
		return 0
	}
	raw := strings.TrimSuffix(strings.ToLower(v.Text()), "deg")
	deg, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		a.fail(key, err)
		return 0
	}
	return deg * math.Pi / 180
}
