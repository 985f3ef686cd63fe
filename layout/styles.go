package layout

import (
	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/geom"
	"github.com/ByLCY/folio/style"
)

const defaultFontSize = geom.Abs(11)

// 文本样式属性，由 style 命令与 text 命令的参数设置。
var (
	textFont = style.Property[string]{Name: "font"}
	textSize = style.Property[geom.Abs]{Name: "size", Default: defaultFontSize}
	textFill = style.Property[geom.Color]{Name: "fill", Default: geom.Black}
	textLang = style.Property[doc.Lang]{Name: "lang", Default: doc.English}
)

func withMeta(chain style.Chain, m doc.Meta) style.Chain {
	return chain.Push(style.MetaData.Set([]doc.Meta{m}))
}
