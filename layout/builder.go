package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ByLCY/folio/binding"
	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/font"
	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/model"
	"github.com/ByLCY/folio/style"
)

// 预设纸张尺寸（纵向）。
var paperSizes = map[string]geom.Size{
	"a3":     geom.NewSize(geom.Mm(297), geom.Mm(420)),
	"a4":     geom.NewSize(geom.Mm(210), geom.Mm(297)),
	"a5":     geom.NewSize(geom.Mm(148), geom.Mm(210)),
	"letter": geom.NewSize(geom.In(8.5), geom.In(11)),
	"legal":  geom.NewSize(geom.In(8.5), geom.In(14)),
}

type builder struct {
	opts    BuildOptions
	data    any
	log     logrus.FieldLogger
	shaper  Shaper
	images  ImageLoader
	root    style.Chain
	fonts   map[string]*font.Font
	presets map[string]bool
	frames  map[string]*doc.Frame
	rasters map[string]*doc.Raster
	// nodes 记录每个 node 键出现的次数，作为稳定标识的消歧值。
	nodes   map[string]int
	targets []doc.Location
	closers []func()
}

// Build 解释帧脚本，生成由帧树组成的文档。
func Build(script *dsl.Script, data any, opts BuildOptions) (*doc.Document, error) {
	if script == nil || script.Body == nil {
		return nil, fmt.Errorf("脚本为空")
	}
	b, err := newBuilder(data, opts)
	if err != nil {
		return nil, err
	}
	defer b.close()

	d := &doc.Document{
		Title:  binding.Interpolate(string(script.Title), data),
		Author: binding.Interpolate(string(script.Author), data),
	}
	for _, cmd := range script.Body.Commands {
		switch cmd.Name {
		case "font":
			err = b.declareFont(cmd)
		case "frame":
			err = b.declareFrame(cmd)
		case "lang":
			err = b.declareLang(cmd)
		case "page":
			var page *doc.Frame
			page, err = b.page(cmd)
			if err == nil {
				d.Pages = append(d.Pages, page)
			}
		default:
			err = cmd.Errorf("不支持的顶层命令")
		}
		if err != nil {
			return nil, err
		}
	}
	if len(d.Pages) == 0 {
		return nil, fmt.Errorf("脚本中缺少 page")
	}
	for _, loc := range b.targets {
		if loc.Page > len(d.Pages) {
			b.log.WithField("target", loc.String()).Warn("内部链接指向不存在的页面")
		}
	}
	b.log.WithFields(logrus.Fields{
		"pages":  len(d.Pages),
		"frames": len(b.frames),
		"fonts":  len(b.fonts),
	}).Debug("layout finished")
	return d, nil
}

func newBuilder(data any, opts BuildOptions) (*builder, error) {
	b := &builder{
		opts:    opts,
		data:    data,
		log:     opts.logger(),
		shaper:  opts.Shaper,
		images:  opts.Images,
		fonts:   map[string]*font.Font{},
		presets: map[string]bool{},
		frames:  map[string]*doc.Frame{},
		rasters: map[string]*doc.Raster{},
		nodes:   map[string]int{},
	}
	if b.shaper == nil {
		s, err := font.NewShaper(font.ShaperOptions{Logger: b.log})
		if err != nil {
			return nil, err
		}
		b.shaper = s
		b.closers = append(b.closers, s.Close)
	}
	if b.images == nil {
		b.images = FileImages{Dir: opts.BaseDir}
	}
	for name, src := range opts.Fonts {
		f, err := b.loadFont(src)
		if err != nil {
			b.close()
			return nil, fmt.Errorf("预设字体 %s: %w", name, err)
		}
		b.fonts[name] = f
		b.presets[name] = true
	}
	if !opts.Lang.IsZero() {
		b.root = b.root.Push(textLang.Set(opts.Lang))
	}
	return b, nil
}

func (b *builder) close() {
	for _, c := range b.closers {
		c()
	}
}

// declareFont 处理 `font 名称 "来源"`，来源为 builtin:名称 或字体文件路径。
func (b *builder) declareFont(cmd *dsl.Command) error {
	a := newArgs(cmd, geom.Size{}, defaultFontSize, b.data)
	name := a.text(0, "name")
	src := a.text(1, "src")
	a.check()
	if err := a.Err(); err != nil {
		return err
	}
	if _, ok := b.fonts[name]; ok && !b.presets[name] {
		return cmd.Errorf("字体 %s 重复定义", name)
	}
	delete(b.presets, name)
	f, err := b.loadFont(src)
	if err != nil {
		return cmd.Errorf("%v", err)
	}
	b.fonts[name] = f
	b.log.WithFields(logrus.Fields{"name": name, "font": f.Name()}).Debug("font loaded")
	return nil
}

func (b *builder) loadFont(src string) (*font.Font, error) {
	if strings.HasPrefix(src, "builtin:") || strings.HasPrefix(src, "built-in:") {
		return font.Builtin(src)
	}
	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(b.opts.BaseDir, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取字体 %s 失败: %w", src, err)
	}
	return font.Parse(data)
}

// fontFor 按名称查找字体。名称为空时使用 default 字体或内置衬线体。
func (b *builder) fontFor(name string) (*font.Font, error) {
	if name == "" {
		if f, ok := b.fonts["default"]; ok {
			return f, nil
		}
		return font.Builtin("serif")
	}
	if f, ok := b.fonts[name]; ok {
		return f, nil
	}
	if strings.Contains(name, ":") {
		return font.Builtin(name)
	}
	return nil, fmt.Errorf("未定义的字体 %s", name)
}

func (b *builder) declareLang(cmd *dsl.Command) error {
	a := newArgs(cmd, geom.Size{}, defaultFontSize, b.data)
	code := a.text(0, "lang")
	a.check()
	if err := a.Err(); err != nil {
		return err
	}
	lang, err := doc.ParseLang(code)
	if err != nil {
		return cmd.Errorf("%v", err)
	}
	b.root = b.root.Push(textLang.Set(lang))
	return nil
}

// declareFrame 处理 `frame 名称 宽 高 { ... }`，生成可被 place 复用的帧。
func (b *builder) declareFrame(cmd *dsl.Command) error {
	a := newArgs(cmd, geom.Size{}, defaultFontSize, b.data)
	name := a.text(0, "name")
	w := a.reqLength(1, "w", 0)
	h := a.reqLength(2, "h", 0)
	a.check("w", "h")
	if err := a.Err(); err != nil {
		return err
	}
	if _, ok := b.frames[name]; ok {
		return cmd.Errorf("帧 %s 重复定义", name)
	}
	if w < 0 || h < 0 {
		return cmd.Errorf("帧尺寸不能为负")
	}
	f := doc.NewFrame(geom.NewSize(w, h))
	if _, err := b.body(f, cmd.Children(), b.root); err != nil {
		return err
	}
	b.frames[name] = f
	return nil
}

// page 处理 `page a4 [landscape] { ... }` 或 `page 宽 高 { ... }`。
func (b *builder) page(cmd *dsl.Command) (*doc.Frame, error) {
	size, err := b.pageSize(cmd)
	if err != nil {
		return nil, err
	}
	page := doc.NewFrame(size)
	if _, err := b.body(page, cmd.Children(), b.root); err != nil {
		return nil, err
	}
	return page, nil
}

func (b *builder) pageSize(cmd *dsl.Command) (geom.Size, error) {
	first := cmd.Positional(0)
	if first == nil {
		return paperSizes["a4"], nil
	}
	a := newArgs(cmd, geom.Size{}, defaultFontSize, b.data)
	a.check()
	var size geom.Size
	if first.Kind() == "ident" {
		preset, ok := paperSizes[strings.ToLower(first.Text())]
		if !ok {
			return geom.Size{}, cmd.Errorf("未知纸张尺寸 %s", first.Text())
		}
		size = preset
		if o := cmd.Positional(1); o != nil {
			switch strings.ToLower(o.Text()) {
			case "landscape":
				size = geom.NewSize(size.Y, size.X)
			case "portrait":
			default:
				a.fail("orientation", fmt.Errorf("未知方向 %s", o.Text()))
			}
		}
	} else {
		size = geom.NewSize(a.reqLength(0, "w", 0), a.reqLength(1, "h", 0))
	}
	if err := a.Err(); err != nil {
		return geom.Size{}, err
	}
	if size.X <= 0 || size.Y <= 0 {
		return geom.Size{}, cmd.Errorf("页面尺寸必须为正")
	}
	return size, nil
}

// body 依次排布命令，返回内容所达到的右下角。
func (b *builder) body(dst *doc.Frame, cmds []*dsl.Command, chain style.Chain) (geom.Point, error) {
	var extent geom.Point
	for _, cmd := range cmds {
		end, err := b.command(dst, cmd, chain)
		if err != nil {
			return extent, err
		}
		extent.X = extent.X.Max(end.X)
		extent.Y = extent.Y.Max(end.Y)
	}
	return extent, nil
}

func (b *builder) command(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	b.log.WithFields(logrus.Fields{
		"cmd": cmd.Name,
		"pos": cmd.Pos.String(),
	}).Debug("layout command")

	switch cmd.Name {
	case "text":
		return b.text(dst, cmd, chain)
	case "rect", "ellipse":
		return b.shape(dst, cmd, chain)
	case "line":
		return b.line(dst, cmd, chain)
	case "image":
		return b.image(dst, cmd, chain)
	case "place":
		return b.place(dst, cmd, chain)
	case "group", "clip", "rotate", "scale":
		return b.container(dst, cmd, chain)
	case "stack":
		return b.stack(dst, cmd, chain)
	case "background":
		return b.background(dst, cmd, chain)
	case "baseline":
		return b.baseline(dst, cmd, chain)
	case "link", "goto", "node", "style":
		return b.scoped(dst, cmd, chain)
	default:
		return geom.Point{}, cmd.Errorf("不支持的命令")
	}
}

func (b *builder) args(cmd *dsl.Command, region geom.Size, chain style.Chain) *args {
	return newArgs(cmd, region, style.Get(chain, textSize), b.data)
}

// put 为叶子帧附加当前作用域的元信息，再放入 dst。
func (b *builder) put(dst *doc.Frame, pos geom.Point, f *doc.Frame, chain style.Chain) geom.Point {
	f.Meta(chain)
	end := pos.Add(f.Size().ToPoint())
	dst.PushFrame(pos, f)
	return end
}

// place 处理 `place 名称 x= y=`，放入命名帧的共享副本。
func (b *builder) place(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	name := a.text(0, "name")
	pos := a.pos()
	a.check("x", "y")
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}
	tpl, ok := b.frames[name]
	if !ok {
		return geom.Point{}, cmd.Errorf("未定义的帧 %s", name)
	}
	return b.put(dst, pos, tpl.Clone(), chain), nil
}

// scoped 处理 link、goto、node 与 style：子命令直接排入 dst，
// 但处于扩展后的样式作用域中。
func (b *builder) scoped(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	inner, err := b.scope(dst, cmd, chain)
	if err != nil {
		return geom.Point{}, err
	}
	return b.body(dst, cmd.Children(), inner)
}

func (b *builder) scope(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (style.Chain, error) {
	a := b.args(cmd, dst.Size(), chain)
	switch cmd.Name {
	case "link":
		url := a.text(0, "url")
		a.check()
		if err := a.Err(); err != nil {
			return chain, err
		}
		if url == "" {
			return chain, cmd.Errorf("链接地址为空")
		}
		return withMeta(chain, doc.Link{Dest: doc.URL(url)}), nil

	case "goto":
		page := a.number(0, "page", 0)
		pos := a.pos()
		a.check("x", "y")
		if err := a.Err(); err != nil {
			return chain, err
		}
		loc, err := doc.NewLocation(int(page), pos)
		if err != nil {
			return chain, cmd.Errorf("%v", err)
		}
		b.targets = append(b.targets, loc)
		return withMeta(chain, doc.Link{Dest: doc.Internal{Loc: loc}}), nil

	case "node":
		node, err := b.node(cmd, a)
		if err != nil {
			return chain, err
		}
		return withMeta(chain, node), nil

	case "style":
		return b.styleScope(cmd, a, chain)
	}
	return chain, cmd.Errorf("不支持的作用域")
}

// node 处理 `node "键" role="heading:1" label="..." 其他属性...`。
func (b *builder) node(cmd *dsl.Command, a *args) (doc.Node, error) {
	key := a.text(0, "key")
	if err := a.Err(); err != nil {
		return doc.Node{}, err
	}
	content := model.Content{Kind: "node", Label: key, Attrs: model.Dict{}}
	for _, arg := range cmd.Args {
		switch strings.ToLower(arg.Key) {
		case "":
		case "role":
			role, err := doc.ParseRole(binding.Interpolate(arg.Value.Text(), b.data))
			if err != nil {
				return doc.Node{}, cmd.Errorf("%v", err)
			}
			content.Kind = role.String()
		case "label":
			content.Label = binding.Interpolate(arg.Value.Text(), b.data)
		default:
			content.Attrs[arg.Key] = attrValue(arg.Value, b.data)
		}
	}
	n := b.nodes[key]
	b.nodes[key] = n + 1
	return doc.Node{ID: model.NewStableID(key, n), Content: content}, nil
}

func attrValue(v *dsl.Value, data any) model.Value {
	raw := binding.Interpolate(v.Text(), data)
	if v.Kind() == "number" {
		if l, err := geom.ParseLength(raw); err == nil {
			if l.Unit == geom.UnitNone && l.Value == float64(int64(l.Value)) {
				return model.Int(int64(l.Value))
			}
			return model.Length(l.Abs())
		}
	}
	return model.Str(raw)
}

// styleScope 处理 `style font= size= fill= lang= { ... }`。
func (b *builder) styleScope(cmd *dsl.Command, a *args, chain style.Chain) (style.Chain, error) {
	scope := style.Map{}
	if name, ok := a.named("font"); ok {
		if _, err := b.fontFor(name); err != nil {
			a.fail("font", err)
		}
		scope[textFont.Name] = name
	}
	if size, ok := a.optLength("size", style.Get(chain, textSize)); ok {
		scope[textSize.Name] = size
	}
	if fill := a.color("fill"); fill != nil {
		scope[textFill.Name] = *fill
	}
	if code, ok := a.named("lang"); ok {
		lang, err := doc.ParseLang(code)
		if err != nil {
			a.fail("lang", err)
		}
		scope[textLang.Name] = lang
	}
	a.check("font", "size", "fill", "lang")
	if err := a.Err(); err != nil {
		return chain, err
	}
	return chain.Push(scope), nil
}

// baseline 处理 `baseline 长度`，设置所在帧的基线。
func (b *builder) baseline(dst *doc.Frame, cmd *dsl.Command, chain style.Chain) (geom.Point, error) {
	a := b.args(cmd, dst.Size(), chain)
	v := a.reqLength(0, "baseline", dst.Height())
	a.check()
	if err := a.Err(); err != nil {
		return geom.Point{}, err
	}
	dst.SetBaseline(v)
	return geom.Point{}, nil
}
