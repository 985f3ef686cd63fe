package font

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/dgraph-io/ristretto"
	gotext "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"github.com/sirupsen/logrus"

	"github.com/ByLCY/folio/geom"
)

// Shaped is one output glyph of the shaper.
type Shaped struct {
	ID      uint16
	Advance geom.Em
	Offset  geom.Em
	// Cluster is the index of the first rune of the glyph's cluster.
	Cluster int
}

// ShaperOptions configures a Shaper.
type ShaperOptions struct {
	// CacheEntries bounds the number of memoized runs; 0 picks a default,
	// negative disables the cache.
	CacheEntries int64
	Logger       logrus.FieldLogger
}

// Shaper turns strings into glyph runs with HarfBuzz shaping from
// go-text/typesetting. It is safe for concurrent use.
type Shaper struct {
	pool  sync.Pool
	mu    sync.RWMutex
	faces map[uint64]*gotext.Font
	cache *ristretto.Cache
	log   logrus.FieldLogger
}

// NewShaper creates a shaper.
func NewShaper(opts ShaperOptions) (*Shaper, error) {
	s := &Shaper{
		pool:  sync.Pool{New: func() any { return &shaping.HarfbuzzShaper{} }},
		faces: map[uint64]*gotext.Font{},
		log:   opts.Logger,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if opts.CacheEntries >= 0 {
		n := opts.CacheEntries
		if n == 0 {
			n = 4096
		}
		cache, err := ristretto.NewCache(&ristretto.Config{
			NumCounters: n * 10,
			MaxCost:     n,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("font: 创建排版缓存失败: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// Close releases the cache.
func (s *Shaper) Close() {
	if s.cache != nil {
		s.cache.Close()
	}
}

// Shape shapes text set in f. lang is a BCP 47 language code and dir the
// writing direction.
func (s *Shaper) Shape(f *Font, text, lang string, dir geom.Dir) ([]Shaped, error) {
	if f == nil {
		return nil, fmt.Errorf("font: 排版需要字体")
	}
	if text == "" {
		return nil, nil
	}
	key := cacheKey(f, text, lang, dir)
	if s.cache != nil {
		if v, ok := s.cache.Get(key); ok {
			return v.([]Shaped), nil
		}
	}

	gf, err := s.face(f)
	if err != nil {
		return nil, err
	}
	runes := []rune(text)
	input := shaping.Input{
		Text:      runes,
		RunStart:  0,
		RunEnd:    len(runes),
		Direction: toDirection(dir),
		Face:      gotext.NewFace(gf),
		Size:      f.ppem(),
		Script:    detectScript(runes),
		Language:  language.NewLanguage(lang),
	}
	hb := s.pool.Get().(*shaping.HarfbuzzShaper)
	out := hb.Shape(input)
	s.pool.Put(hb)

	glyphs := make([]Shaped, len(out.Glyphs))
	for i, g := range out.Glyphs {
		glyphs[i] = Shaped{
			ID:      uint16(g.GlyphID),
			Advance: f.toEm(g.Advance),
			Offset:  f.toEm(g.XOffset),
			Cluster: g.TextIndex(),
		}
	}
	if s.cache != nil {
		s.cache.Set(key, glyphs, 1)
	}
	s.log.WithFields(logrus.Fields{
		"font":   f.Name(),
		"runes":  len(runes),
		"glyphs": len(glyphs),
	}).Debug("shaped run")
	return glyphs, nil
}

// face returns the go-text font for f, parsing it once.
func (s *Shaper) face(f *Font) (*gotext.Font, error) {
	s.mu.RLock()
	gf, ok := s.faces[f.ID()]
	s.mu.RUnlock()
	if ok {
		return gf, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gf, ok := s.faces[f.ID()]; ok {
		return gf, nil
	}
	face, err := gotext.ParseTTF(bytes.NewReader(f.Data()))
	if err != nil {
		return nil, fmt.Errorf("font: 解析字体 %s 失败: %w", f.Name(), err)
	}
	s.faces[f.ID()] = face.Font
	return face.Font, nil
}

func cacheKey(f *Font, text, lang string, dir geom.Dir) string {
	return strconv.FormatUint(f.ID(), 16) + "|" + lang + "|" + dir.String() + "|" + text
}

func toDirection(d geom.Dir) di.Direction {
	switch d {
	case geom.RTL:
		return di.DirectionRTL
	case geom.TTB:
		return di.DirectionTTB
	case geom.BTT:
		return di.DirectionBTT
	default:
		return di.DirectionLTR
	}
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}
