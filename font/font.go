// Package font translates PDF font dictionaries into fonts the content
// stream evaluator can measure and extract text with.
package font

import (
	"math"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
	"unicode/utf8"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/encoding"
	"github.com/ScriptRock/pdfeval/oplist"
)

// DefaultMatrix maps the 1000 unit glyph space of all but Type3 fonts to
// text space.
var DefaultMatrix = matrix.Matrix{0.001, 0, 0, 0.001, 0, 0}

// ErrorFontName is the loaded name of fonts that failed to load.
const ErrorFontName = "g_font_error"

// Descriptor flags, see
// PDF_ISO_32000-2: Table 121: Font flags
const (
	FlagFixedPitch  = 1 << 0
	FlagSerif       = 1 << 1
	FlagSymbolic    = 1 << 2
	FlagScript      = 1 << 3
	FlagNonsymbolic = 1 << 5
	FlagItalic      = 1 << 6
	FlagAllCap      = 1 << 16
	FlagSmallCap    = 1 << 17
	FlagForceBold   = 1 << 18
)

// VMetric holds the vertical metrics of a glyph in vertical writing mode:
// the vertical advance and the position vector from the horizontal to the
// vertical origin.
type VMetric struct {
	W1y, Vx, Vy float64
}

// A Font is a translated font resource.
type Font struct {
	// LoadedName identifies the font in operator lists.
	LoadedName string
	Name       string
	Type       string
	Subtype    string
	Dict       *pdfeval.Dict

	Composite bool
	Vertical  bool
	Type3     bool

	FontMatrix matrix.Matrix
	BBox       rect.Rect
	// IsCharBBox is set when BBox was recomputed from Type3 glyph boxes.
	// For Type3 fonts BBox, IsCharBBox, CharProcs and Type3Dependencies are
	// written once while the glyph procedures are evaluated; readers wait
	// for that evaluation first.
	IsCharBBox bool

	Widths         Widths
	DefaultWidth   float64
	VMetrics       map[uint32]VMetric
	DefaultVMetric VMetric

	CMap      *encoding.CMap
	ToUnicode *encoding.ToUnicode
	Encoding  encoding.Simple
	CIDToGID  []uint16
	Registry  string
	Ordering  string

	Flags           int
	Ascent, Descent float64
	FallbackName    string
	Bold            bool
	Italic          bool
	Monospace       bool
	Serif           bool
	MissingFile     bool
	Program         *Program

	// CharProcs holds the evaluated glyph procedures of a Type3 font, by
	// glyph name.
	CharProcs         map[string]*oplist.OperatorList
	Type3Dependencies []string

	// Error is set on fonts standing in for one that failed to load.
	Error error

	sent atomic.Bool

	mu     sync.Mutex
	glyphs map[uint64]*Glyph
}

// NewErrorFont returns the font used in place of one that could not be
// loaded. It has no glyphs.
func NewErrorFont(err error) *Font {
	return &Font{
		LoadedName:   ErrorFontName,
		FontMatrix:   DefaultMatrix,
		FallbackName: "sans-serif",
		MissingFile:  true,
		Error:        err,
	}
}

// MarkSent reports whether the font still has to be sent to the consumer,
// and records that it has been. It returns true only once.
func (f *Font) MarkSent() bool {
	return f.sent.CompareAndSwap(false, true)
}

// Category classifies the text of a glyph for text extraction.
type Category int

const (
	Ordinary Category = iota
	Whitespace
	// Diacritic is a zero-width combining mark.
	Diacritic
	// Invisible is a format mark such as a zero-width joiner.
	Invisible
)

// Categorize returns the category of glyph text s.
func Categorize(s string) Category {
	if s == "" {
		return Ordinary
	}
	first, _ := utf8.DecodeRuneInString(s)
	if unicode.IsSpace(first) {
		return Whitespace
	}
	if strings.IndexFunc(s, func(r rune) bool { return unicode.Is(unicode.Mn, r) }) >= 0 {
		return Diacritic
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	if unicode.Is(unicode.Cf, last) {
		return Invisible
	}
	return Ordinary
}

// A Glyph is one character code of a string shown with a font.
type Glyph struct {
	Code    uint32
	CID     uint32
	Name    string
	Unicode string
	// Width is the advance in glyph space, before the font matrix.
	Width    float64
	VMetric  *VMetric
	IsSpace  bool
	Category Category
}

// CharsToGlyphs splits a shown string into glyphs. Composite fonts split
// codes according to the codespace ranges of their CMap; simple fonts
// use single bytes. Glyphs are shared between calls.
func (f *Font) CharsToGlyphs(raw string) []*Glyph {
	if f.Error != nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.glyphs == nil {
		f.glyphs = make(map[uint64]*Glyph)
	}

	var glyphs []*Glyph
	for i := 0; i < len(raw); {
		c, n := uint32(raw[i]), 1
		if f.Composite && f.CMap != nil {
			c, n = f.CMap.Next(raw[i:])
		}
		i += n

		isSpace := n == 1 && c == 0x20
		key := uint64(c) << 1
		if isSpace {
			key |= 1
		}
		g, ok := f.glyphs[key]
		if !ok {
			g = f.makeGlyph(c, isSpace)
			f.glyphs[key] = g
		}
		glyphs = append(glyphs, g)
	}
	return glyphs
}

func (f *Font) makeGlyph(c uint32, isSpace bool) *Glyph {
	g := &Glyph{Code: c, CID: c, IsSpace: isSpace}
	if f.Composite && f.CMap != nil {
		if cid, ok := f.CMap.Lookup(c); ok {
			g.CID = cid
		}
	} else if c < 256 {
		g.Name = f.Encoding[c]
	}

	g.Width = f.DefaultWidth
	if w, ok := f.Widths.Lookup(g.CID); ok {
		g.Width = w
	}
	if f.Vertical {
		vm := f.DefaultVMetric
		if v, ok := f.VMetrics[g.CID]; ok {
			vm = v
		}
		g.VMetric = &vm
	}

	if s, ok := f.ToUnicode.Get(c); ok {
		g.Unicode = s
	} else if utf8.ValidRune(rune(c)) {
		g.Unicode = string(rune(c))
	}
	g.Category = Categorize(g.Unicode)
	return g
}

type span struct {
	first, last uint32
	fixed       float64
	linear      []float64
}

// Widths maps character codes, or CIDs for composite fonts, to advance
// widths. Later entries take precedence.
type Widths struct {
	spans []span
}

// Set assigns consecutive widths starting at code first.
func (w *Widths) Set(first uint32, widths ...float64) {
	if len(widths) == 0 {
		return
	}
	w.spans = append(w.spans, span{first: first, last: first + uint32(len(widths)) - 1, linear: widths})
}

// SetRange assigns the same width to first..last.
func (w *Widths) SetRange(first, last uint32, width float64) {
	if last < first {
		return
	}
	w.spans = append(w.spans, span{first: first, last: last, fixed: width})
}

// Lookup returns the width of code.
func (w *Widths) Lookup(code uint32) (float64, bool) {
	for i := len(w.spans) - 1; i >= 0; i-- {
		s := w.spans[i]
		if code >= s.first && code <= s.last {
			if s.linear != nil {
				return s.linear[code-s.first], true
			}
			return s.fixed, true
		}
	}
	return 0, false
}

// Empty reports whether no width is set.
func (w *Widths) Empty() bool { return len(w.spans) == 0 }

// monospace reports whether all non-zero widths, including def, agree.
func (w *Widths) monospace(def float64) bool {
	first := def
	for _, s := range w.spans {
		ws := s.linear
		if ws == nil {
			ws = []float64{s.fixed}
		}
		for _, x := range ws {
			switch {
			case x == 0:
			case first == 0:
				first = x
			case x != first:
				return false
			}
		}
	}
	return true
}

// Type3BBox returns the bounding box a Type3 font should use given the
// boxes declared by its glyphs with d1. The union of the glyph boxes
// replaces the font box when that is empty or differs in size by a
// factor of ten or more from a glyph box.
func Type3BBox(font rect.Rect, glyphs []rect.Rect) (rect.Rect, bool) {
	size := func(r rect.Rect) float64 {
		return max(math.Abs(r.URx-r.LLx), math.Abs(r.URy-r.LLy))
	}
	fontSize := size(font)

	union := rect.Rect{}
	found, replace := false, fontSize == 0
	for _, g := range glyphs {
		g = normalize(g)
		gs := size(g)
		if gs <= 0 {
			continue
		}
		if fontSize > 0 && (gs >= 10*fontSize || 10*gs <= fontSize) {
			replace = true
		}
		if !found {
			union, found = g, true
			continue
		}
		union.LLx = min(union.LLx, g.LLx)
		union.LLy = min(union.LLy, g.LLy)
		union.URx = max(union.URx, g.URx)
		union.URy = max(union.URy, g.URy)
	}
	if !found || !replace {
		return font, false
	}
	return union, true
}

func normalize(r rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: min(r.LLx, r.URx), LLy: min(r.LLy, r.URy),
		URx: max(r.LLx, r.URx), URy: max(r.LLy, r.URy),
	}
}

