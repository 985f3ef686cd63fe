package layout

import (
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/font"
	"github.com/ByLCY/folio/geom"
)

// BuildOptions 配置布局阶段所需的依赖，例如排版后端与图片来源。
type BuildOptions struct {
	// Shaper 为空时使用 font.NewShaper 创建的默认实现。
	Shaper Shaper
	// Images 为空时从 BaseDir 读取图片文件。
	Images ImageLoader
	// BaseDir 是脚本中相对路径（字体、图片）的根目录。
	BaseDir string
	// Lang 是文本的默认语言，零值表示英语。
	Lang doc.Lang
	// Fonts 预先声明的字体（名称 → 来源），脚本中的同名 font 会覆盖它们。
	Fonts  map[string]string
	Logger logrus.FieldLogger
}

// Shaper 将一段文本排成字形序列。*font.Shaper 实现了该接口。
type Shaper interface {
	Shape(f *font.Font, text, lang string, dir geom.Dir) ([]font.Shaped, error)
}

// ImageLoader 按脚本中的来源名称加载图片。
type ImageLoader interface {
	Load(src string) (*doc.Raster, error)
}

func (o BuildOptions) logger() logrus.FieldLogger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}
