// Package config loads the command line tool's YAML settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"

	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/layout"
)

type Config struct {
	// BaseDir 为空时使用脚本所在目录。
	BaseDir string `yaml:"baseDir"`
	Lang    string `yaml:"lang"`
	// Debug 非空时输出帧树 JSON，以 .xz 结尾时压缩。
	Debug    string            `yaml:"debug"`
	Fonts    map[string]string `yaml:"fonts"`
	LogLevel string            `yaml:"logLevel"`
	// ShapeCache 是排版缓存条目数，0 使用默认值，负数关闭缓存。
	ShapeCache int64  `yaml:"shapeCache"`
	Creator    string `yaml:"creator"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Lang:     "en",
		LogLevel: "info",
		Creator:  "folio",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("读取配置 %s 失败: %w", path, err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("解析配置 %s 失败: %w", path, err)
	}
	// 相对路径以配置文件所在目录为准。
	dir := filepath.Dir(path)
	if cfg.BaseDir != "" && !filepath.IsAbs(cfg.BaseDir) {
		cfg.BaseDir = filepath.Join(dir, cfg.BaseDir)
	}
	for name, src := range cfg.Fonts {
		if filepath.Ext(src) != "" && !filepath.IsAbs(src) {
			cfg.Fonts[name] = filepath.Join(dir, src)
		}
	}
	return cfg, cfg.Validate()
}

// Validate reports every invalid field.
func (c Config) Validate() error {
	var err error
	if c.Lang != "" {
		if _, e := doc.ParseLang(c.Lang); e != nil {
			err = multierr.Append(err, fmt.Errorf("lang: %w", e))
		}
	}
	if _, e := logrus.ParseLevel(c.LogLevel); e != nil {
		err = multierr.Append(err, fmt.Errorf("logLevel: %w", e))
	}
	for name, src := range c.Fonts {
		if name == "" || src == "" {
			err = multierr.Append(err, fmt.Errorf("fonts: 名称和来源不能为空"))
		}
	}
	return err
}

// Level returns the parsed log level, info when unset or invalid.
func (c Config) Level() logrus.Level {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}

// BuildOptions fills the layout options the settings cover.
func (c Config) BuildOptions(log logrus.FieldLogger) (layout.BuildOptions, error) {
	opts := layout.BuildOptions{
		BaseDir: c.BaseDir,
		Fonts:   c.Fonts,
		Logger:  log,
	}
	if c.Lang != "" {
		lang, err := doc.ParseLang(c.Lang)
		if err != nil {
			return opts, err
		}
		opts.Lang = lang
	}
	return opts, nil
}
