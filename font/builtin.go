package font

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/go-fonts/latin-modern/lmmono10regular"
	"github.com/go-fonts/latin-modern/lmroman10bold"
	"github.com/go-fonts/latin-modern/lmroman10italic"
	"github.com/go-fonts/latin-modern/lmroman10regular"
	"github.com/go-fonts/latin-modern/lmsans10regular"
)

// 内置字体通过 "builtin:<name>" 引用。
var builtinData = map[string][]byte{
	"serif":        lmroman10regular.TTF,
	"serif-bold":   lmroman10bold.TTF,
	"serif-italic": lmroman10italic.TTF,
	"sans":         lmsans10regular.TTF,
	"mono":         lmmono10regular.TTF,
}

var (
	builtinMu    sync.Mutex
	builtinFonts = map[string]*Font{}
)

// Builtin returns a bundled font by name. Names may carry a "builtin:" or
// "built-in:" prefix.
func Builtin(name string) (*Font, error) {
	name = strings.TrimPrefix(strings.TrimPrefix(name, "built-in:"), "builtin:")
	builtinMu.Lock()
	defer builtinMu.Unlock()
	if f, ok := builtinFonts[name]; ok {
		return f, nil
	}
	data, ok := builtinData[name]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 builtin:%s（可用：%s）", name, strings.Join(BuiltinNames(), ", "))
	}
	f, err := Parse(data)
	if err != nil {
		return nil, err
	}
	builtinFonts[name] = f
	return f, nil
}

// BuiltinNames lists the bundled font names.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtinData))
	for n := range builtinData {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
