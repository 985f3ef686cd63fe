package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/folio/config"
	"github.com/ByLCY/folio/doc"
	"github.com/ByLCY/folio/dsl"
	"github.com/ByLCY/folio/font"
	"github.com/ByLCY/folio/layout"
	"github.com/ByLCY/folio/renderer"
	canvasrenderer "github.com/ByLCY/folio/renderer/canvas"
)

func main() {
	input := flag.String("in", "examples/demo.folio", "帧脚本路径")
	output := flag.String("out", "output/demo.pdf", "PDF 输出路径")
	configPath := flag.String("config", "", "YAML 配置文件")
	debug := flag.String("debug", "", "帧树调试 JSON 输出路径（.xz 结尾时压缩）")
	dataJSON := flag.String("data", "", "绑定到脚本的 JSON 数据")
	lang := flag.String("lang", "", "默认文本语言（ISO 639）")
	verbose := flag.Bool("v", false, "输出调试日志")
	grammar := flag.Bool("grammar", false, "打印脚本语法后退出")
	flag.Parse()

	if *grammar {
		fmt.Println(dsl.Grammar())
		return
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("加载配置失败")
	}
	// 命令行参数优先于配置文件。
	if *debug != "" {
		cfg.Debug = *debug
	}
	if *lang != "" {
		cfg.Lang = *lang
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(*input)
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("配置无效")
	}
	log.SetLevel(cfg.Level())

	var inputData any
	if *dataJSON != "" {
		if err := json.Unmarshal([]byte(*dataJSON), &inputData); err != nil {
			log.WithError(err).Fatal("解析 data JSON 失败")
		}
	}

	r := canvasrenderer.NewRenderer(canvasrenderer.Options{Creator: cfg.Creator, Logger: log})
	size, err := run(*input, *output, cfg, inputData, r, log)
	if err != nil {
		log.WithError(err).Fatal("生成 PDF 失败")
	}
	fmt.Printf("已生成 PDF：%s（%s）\n", *output, humanize.Bytes(uint64(size)))
}

// run 串联解析、布局与渲染，返回写入的字节数。
func run(inputPath, outputPath string, cfg config.Config, data any, r renderer.Renderer, log logrus.FieldLogger) (int, error) {
	if r == nil {
		return 0, fmt.Errorf("renderer 不能为空")
	}
	file, err := os.Open(inputPath)
	if err != nil {
		return 0, fmt.Errorf("无法打开脚本 %s: %w", inputPath, err)
	}
	defer file.Close()

	script, err := dsl.Parse(inputPath, file)
	if err != nil {
		return 0, fmt.Errorf("解析脚本失败: %w", err)
	}

	opts, err := cfg.BuildOptions(log)
	if err != nil {
		return 0, err
	}
	shaper, err := font.NewShaper(font.ShaperOptions{CacheEntries: cfg.ShapeCache, Logger: log})
	if err != nil {
		return 0, err
	}
	defer shaper.Close()
	opts.Shaper = shaper

	result, err := layout.Build(script, data, opts)
	if err != nil {
		return 0, fmt.Errorf("布局计算失败: %w", err)
	}

	if cfg.Debug != "" {
		if err := writeDebug(result, cfg.Debug); err != nil {
			return 0, err
		}
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return 0, fmt.Errorf("创建输出目录失败: %w", err)
	}

	pdfBytes, err := r.Render(result)
	if err != nil {
		return 0, fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if err := os.WriteFile(outputPath, pdfBytes, 0o644); err != nil {
		return 0, fmt.Errorf("写入 PDF 文件失败: %w", err)
	}
	log.WithFields(logrus.Fields{
		"pages": len(result.Pages),
		"size":  humanize.Bytes(uint64(len(pdfBytes))),
	}).Info("pdf written")
	return len(pdfBytes), nil
}

func writeDebug(result *doc.Document, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
