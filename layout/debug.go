package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/ByLCY/folio/doc"
)

type debugDocument struct {
	Title  string       `json:"title,omitempty"`
	Author string       `json:"author,omitempty"`
	Pages  []*doc.Frame `json:"pages"`
}

// EncodeDebugJSON 将帧树编码为缩进的 JSON，compress 为 true 时使用 xz 压缩。
func EncodeDebugJSON(w io.Writer, d *doc.Document, compress bool) error {
	if d == nil {
		return nil
	}
	out := w
	var zw *xz.Writer
	if compress {
		var err error
		zw, err = xz.NewWriter(w)
		if err != nil {
			return fmt.Errorf("创建 xz 压缩流失败: %w", err)
		}
		out = zw
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(debugDocument{Title: d.Title, Author: d.Author, Pages: d.Pages}); err != nil {
		return err
	}
	if zw != nil {
		return zw.Close()
	}
	return nil
}

// WriteDebugJSON 将布局结果输出为 JSON，便于调试或可视化。路径以 .xz 结尾时压缩输出。
func WriteDebugJSON(d *doc.Document, path string) (err error) {
	if d == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return EncodeDebugJSON(f, d, strings.HasSuffix(path, ".xz"))
}
