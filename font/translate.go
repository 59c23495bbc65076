package font

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/encoding"
)

// A Translator turns font dictionaries into Fonts. One Translator serves
// a whole document and is safe for concurrent use.
type Translator struct {
	Fetcher Fetcher
	Logger  *slog.Logger

	mu      sync.Mutex
	metrics map[string]*Metrics
}

// NewTranslator returns a Translator reading external data through f,
// which may be nil.
func NewTranslator(f Fetcher, logger *slog.Logger) *Translator {
	return &Translator{Fetcher: f, Logger: logger, metrics: make(map[string]*Metrics)}
}

func (t *Translator) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}

// cidCollections have UCS2 CMaps for text extraction.
var cidCollections = map[string]bool{"GB1": true, "CNS1": true, "Japan1": true, "Korea1": true}

// Translate builds the font described by p. The glyph procedures of Type3
// fonts are left for the caller to evaluate.
func (t *Translator) Translate(ctx context.Context, x pdfeval.XRef, p *Preview, loadedName string) (*Font, error) {
	dict := p.Dict
	f := &Font{
		LoadedName: loadedName,
		Type:       p.Type,
		Dict:       p.BaseDict,
		Composite:  p.Composite,
		Type3:      p.Type == "Type3",
		FontMatrix: DefaultMatrix,
	}
	if m, ok := pdfeval.GetMatrix(x, dict.GetRaw("FontMatrix")); ok {
		f.FontMatrix = m
	}

	baseFont, _ := pdfeval.GetName(x, dict.GetRaw("BaseFont"))
	desc := p.Descriptor
	if desc == nil && !f.Type3 {
		return t.translateStandard(ctx, x, p, f, string(baseFont))
	}

	var fontName pdfeval.Name
	if desc != nil {
		fontName, _ = pdfeval.GetName(x, desc.GetRaw("FontName"))
		if flags, err := pdfeval.GetInt(x, desc.GetRaw("Flags")); err == nil {
			f.Flags = flags
		}
		if bbox, ok := pdfeval.GetRect(x, desc.GetRaw("FontBBox")); ok {
			f.BBox = bbox
		}
		f.Ascent = numberOr(x, desc.GetRaw("Ascent"), 0)
		f.Descent = numberOr(x, desc.GetRaw("Descent"), 0)
	}
	if f.Type3 {
		fontName = pdfeval.Name(p.Type)
		if bbox, ok := pdfeval.GetRect(x, dict.GetRaw("FontBBox")); ok {
			f.BBox = bbox
		}
	}
	if fontName == "" {
		fontName = baseFont
	}
	if fontName == "" {
		return nil, pdfeval.Errorf("invalid font name")
	}
	f.Name = NormalizeName(string(fontName))

	if desc != nil && !f.Type3 {
		prog, err := readProgram(x, desc)
		switch {
		case pdfeval.IsMissingData(err):
			return nil, err
		case err != nil:
			t.logger().Warn("cannot read font program", slog.String("font", f.Name), slog.Any("err", err))
		}
		f.Program = prog
		if prog != nil {
			f.Subtype = prog.Format
		}
	}
	f.MissingFile = f.Program == nil && !f.Type3

	var fromNames *encoding.ToUnicode
	var hasEncoding bool
	if f.Composite {
		if err := t.compositeEncoding(ctx, x, p, f); err != nil {
			return nil, err
		}
	} else {
		var err error
		if fromNames, hasEncoding, err = simpleEncoding(x, p, f); err != nil {
			return nil, err
		}
	}
	if err := t.buildToUnicode(ctx, x, p, f, fromNames, hasEncoding); err != nil {
		return nil, err
	}
	if err := t.extractWidths(ctx, x, p, f, string(baseFont)); err != nil {
		return nil, err
	}
	t.finish(ctx, f)
	return f, nil
}

// translateStandard handles fonts without a descriptor, which are
// standard fonts or are treated like one.
func (t *Translator) translateStandard(ctx context.Context, x pdfeval.XRef, p *Preview, f *Font, baseFont string) (*Font, error) {
	if baseFont == "" {
		return nil, pdfeval.Errorf("font without BaseFont")
	}
	f.Name = NormalizeName(baseFont)
	f.MissingFile = true

	metrics := t.standardMetrics(ctx, f.Name)
	if metrics.Monospace {
		f.Flags |= FlagFixedPitch
	}
	if IsSerif(f.Name) {
		f.Flags |= FlagSerif
	}
	if IsSymbolic(f.Name) {
		f.Flags |= FlagSymbolic
	} else {
		f.Flags |= FlagNonsymbolic
	}
	f.Ascent, f.Descent = metrics.Ascent, metrics.Descent

	fromNames, hasEncoding, err := simpleEncoding(x, p, f)
	if err != nil {
		return nil, err
	}
	if err := t.buildToUnicode(ctx, x, p, f, fromNames, hasEncoding); err != nil {
		return nil, err
	}
	if err := t.extractWidths(ctx, x, p, f, baseFont); err != nil {
		return nil, err
	}
	t.finish(ctx, f)
	return f, nil
}

func (t *Translator) finish(ctx context.Context, f *Font) {
	if f.Ascent == 0 && f.Descent == 0 {
		switch {
		case f.Program != nil && f.Program.Ascent != 0:
			f.Ascent, f.Descent = f.Program.Ascent, f.Program.Descent
		case f.BBox.URy != f.BBox.LLy:
			f.Ascent, f.Descent = f.BBox.URy, f.BBox.LLy
		case !f.Type3:
			m := t.standardMetrics(ctx, f.Name)
			f.Ascent, f.Descent = m.Ascent, m.Descent
		}
	}
	if f.Type3 {
		// Type3 metrics are in glyph space.
		f.Ascent *= f.FontMatrix[3] * 1000
		f.Descent *= f.FontMatrix[3] * 1000
	}
	f.Ascent /= 1000
	f.Descent /= 1000

	lower := strings.ToLower(f.Name)
	f.Bold = f.Flags&FlagForceBold != 0 || strings.Contains(lower, "bold") || strings.Contains(lower, "black") || strings.Contains(lower, "heavy")
	f.Italic = f.Flags&FlagItalic != 0 || strings.Contains(lower, "italic") || strings.Contains(lower, "oblique")
	f.Serif = f.Flags&FlagSerif != 0 || IsSerif(f.Name)
	f.Monospace = f.Flags&FlagFixedPitch != 0

	switch {
	case f.Monospace:
		f.FallbackName = "monospace"
	case f.Serif:
		f.FallbackName = "serif"
	default:
		f.FallbackName = "sans-serif"
	}
}

// compositeEncoding reads the CMap, the character collection and the
// CIDToGIDMap of a composite font.
func (t *Translator) compositeEncoding(ctx context.Context, x pdfeval.XRef, p *Preview, f *Font) error {
	enc := p.BaseDict.GetRaw("Encoding")
	if enc == nil {
		return pdfeval.Errorf("composite font %s without encoding", f.Name)
	}
	cm, err := ParseCMap(ctx, t.Fetcher, x, enc)
	if err != nil {
		return err
	}
	f.CMap = cm
	f.Vertical = cm.Vertical

	if info, _ := pdfeval.GetDict(x, p.Dict.GetRaw("CIDSystemInfo")); info != nil {
		f.Registry = stringOr(x, info.GetRaw("Registry"))
		f.Ordering = stringOr(x, info.GetRaw("Ordering"))
	}

	m, err := pdfeval.Resolve(x, p.Dict.GetRaw("CIDToGIDMap"))
	if err != nil {
		return err
	}
	if s, ok := m.(*pdfeval.Stream); ok {
		data, err := s.Decode()
		if err != nil {
			return err
		}
		f.CIDToGID = make([]uint16, len(data)/2)
		for i := range f.CIDToGID {
			f.CIDToGID[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
		}
	}
	return nil
}

// simpleEncoding computes the glyph name of every code of a simple font
// from its Encoding entry, its flags and its font program. It returns the
// text derived from the glyph names and whether the font dictionary
// specified an encoding.
func simpleEncoding(x pdfeval.XRef, p *Preview, f *Font) (*encoding.ToUnicode, bool, error) {
	enc, err := pdfeval.Resolve(x, p.BaseDict.GetRaw("Encoding"))
	if err != nil {
		return nil, false, err
	}

	var baseName string
	var diffs []any
	switch enc := enc.(type) {
	case pdfeval.Name:
		baseName = string(enc)
	case *pdfeval.Dict:
		if n, ok := enc.GetRaw("BaseEncoding").(pdfeval.Name); ok {
			baseName = string(n)
		}
		a, err := pdfeval.GetArray(x, enc.GetRaw("Differences"))
		if err != nil && !pdfeval.IsFormatError(err) {
			return nil, false, err
		}
		for _, d := range a {
			d, err := pdfeval.Resolve(x, d)
			if err != nil {
				return nil, false, err
			}
			switch d := d.(type) {
			case pdfeval.Name:
				diffs = append(diffs, string(d))
			case int64, float64:
				diffs = append(diffs, d)
			}
		}
	}
	if _, ok := encoding.Base(baseName); !ok {
		baseName = ""
	}

	nonEmbedded := f.Program == nil
	symbolsFont := IsSymbolic(f.Name)
	if baseName != "" && nonEmbedded && symbolsFont {
		baseName = ""
	}

	var base encoding.Simple
	switch {
	case baseName != "":
		base, _ = encoding.Base(baseName)
	case f.Program != nil && len(f.Program.Encoding) > 0:
		copy(base[:], f.Program.Encoding)
	default:
		base = encoding.Standard
		if f.Type == "TrueType" && f.Flags&FlagNonsymbolic == 0 {
			base = encoding.WinAnsi
		}
		if f.Flags&FlagSymbolic != 0 || symbolsFont {
			base = encoding.MacRoman
			if nonEmbedded && strings.Contains(strings.ToLower(f.Name), "symbol") {
				base = encoding.Symbol
			}
		}
	}
	for i, name := range base {
		if name == ".notdef" {
			base[i] = ""
		}
	}

	withDiffs := base
	withDiffs.ApplyDifferences(diffs)
	f.Encoding = withDiffs

	fromNames := simpleToUnicode(withDiffs, baseName, false)
	if fromNames == nil {
		fromNames = simpleToUnicode(withDiffs, baseName, true)
	}
	return fromNames, baseName != "" || len(diffs) > 0, nil
}

// simpleToUnicode derives text for the codes of a simple font from glyph
// names. Names such as C35 are ambiguous between decimal and hexadecimal;
// when a hexadecimal reading is required for some code the result is nil
// so the caller can retry with hex set.
func simpleToUnicode(enc encoding.Simple, baseName string, hex bool) *encoding.ToUnicode {
	tu := encoding.NewToUnicode()
	for code, name := range enc {
		if name == "" {
			continue
		}
		if s := encoding.GlyphText(name); s != "" {
			tu.Set(uint32(code), s)
			continue
		}

		var r int64 = -1
		switch name[0] {
		case 'G':
			if len(name) == 3 {
				r = parseHex(name[1:])
			}
		case 'g':
			if len(name) == 5 {
				r = parseHex(name[1:])
			}
		case 'C', 'c':
			if len(name) >= 3 && len(name) <= 4 {
				digits := name[1:]
				if hex {
					r = parseHex(digits)
					break
				}
				r = parseDec(digits)
				if r < 0 && parseHex(digits) >= 0 {
					return nil
				}
			}
		default:
			switch name {
			case "f_h", "f_t", "T_h":
				tu.Set(uint32(code), strings.ReplaceAll(name, "_", ""))
				continue
			}
		}
		if r <= 0 || r > 0x10ffff {
			continue
		}
		if baseName != "" && r == int64(code) {
			if b, ok := encoding.Base(baseName); ok && b[code] != "" {
				if s := encoding.GlyphText(b[code]); s != "" {
					tu.Set(uint32(code), s)
					continue
				}
			}
		}
		tu.Set(uint32(code), string(rune(r)))
	}
	return tu
}

func parseHex(s string) int64 {
	var v int64
	for i := 0; i < len(s); i++ {
		d := unhexDigit(s[i])
		if d < 0 {
			return -1
		}
		v = v<<4 | int64(d)
	}
	return v
}

func unhexDigit(c byte) int {
	switch {
	case '0' <= c && c <= '9':
		return int(c - '0')
	case 'a' <= c && c <= 'f':
		return int(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

func parseDec(s string) int64 {
	var v int64
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return -1
		}
		v = v*10 + int64(s[i]-'0')
	}
	return v
}

// buildToUnicode sets f.ToUnicode. An embedded ToUnicode map wins, with
// glyph names filling its gaps for simple fonts. Composite fonts from the
// Adobe CJK collections are mapped through the collection's UCS2 CMap;
// other composite fonts map codes to themselves.
func (t *Translator) buildToUnicode(ctx context.Context, x pdfeval.XRef, p *Preview, f *Font, fromNames *encoding.ToUnicode, hasEncoding bool) error {
	explicit, err := ParseToUnicode(x, p.ToUnicode)
	switch {
	case pdfeval.IsMissingData(err):
		return err
	case err != nil:
		t.logger().Warn("cannot read ToUnicode map", slog.String("font", f.Name), slog.Any("err", err))
		explicit = nil
	}
	if explicit != nil && (explicit.Len() > 0 || explicit.IsIdentity()) {
		if !f.Composite && hasEncoding {
			explicit.Fill(fromNames)
		}
		f.ToUnicode = explicit
		return nil
	}

	if !f.Composite {
		f.ToUnicode = fromNames
		return nil
	}

	if f.Registry == "Adobe" && cidCollections[f.Ordering] {
		name := "Adobe-" + f.Ordering + "-UCS2"
		ucs2, err := predefinedCMap(ctx, t.Fetcher, name, 0)
		if err == nil {
			tu := encoding.NewToUnicode()
			set := func(code, cid uint32) {
				if u, ok := ucs2.Lookup(cid); ok && u != 0 {
					tu.Set(code, string(rune(u)))
				}
			}
			if f.CMap.IsIdentity() {
				ucs2.Each(func(cid, _ uint32) { set(cid, cid) })
			} else {
				f.CMap.Each(set)
			}
			f.ToUnicode = tu
			return nil
		}
		if pdfeval.IsMissingData(err) || ctx.Err() != nil {
			return err
		}
		t.logger().Warn("cannot load UCS2 CMap", slog.String("cmap", name), slog.Any("err", err))
	}
	f.ToUnicode = encoding.IdentityToUnicode()
	return nil
}

// extractWidths reads the glyph widths. Simple fonts without a Widths
// array are measured with the metrics of the standard font their name
// refers to, then with the font program.
func (t *Translator) extractWidths(ctx context.Context, x pdfeval.XRef, p *Preview, f *Font, baseFont string) error {
	dict := p.Dict
	if f.Composite {
		f.DefaultWidth = numberOr(x, dict.GetRaw("DW"), 1000)
		w, err := pdfeval.GetArray(x, dict.GetRaw("W"))
		if err != nil && !pdfeval.IsFormatError(err) {
			return err
		}
		if err := parseW(x, w, 1, func(first, last uint32, v []float64, fixed bool) {
			if fixed {
				f.Widths.SetRange(first, last, v[0])
			} else {
				f.Widths.Set(first, v...)
			}
		}); err != nil {
			return err
		}

		if f.Vertical {
			dw2 := []float64{880, -1000}
			if v, err := pdfeval.GetNumbers(x, dict.GetRaw("DW2")); err == nil && len(v) == 2 {
				dw2 = v
			}
			f.DefaultVMetric = VMetric{W1y: dw2[1], Vx: f.DefaultWidth / 2, Vy: dw2[0]}
			w2, err := pdfeval.GetArray(x, dict.GetRaw("W2"))
			if err != nil && !pdfeval.IsFormatError(err) {
				return err
			}
			f.VMetrics = make(map[uint32]VMetric)
			if err := parseW(x, w2, 3, func(first, last uint32, v []float64, fixed bool) {
				for c := first; c <= last && c-first < 0x10000; c++ {
					k := 0
					if !fixed {
						k = int(c-first) * 3
					}
					f.VMetrics[c] = VMetric{W1y: v[k], Vx: v[k+1], Vy: v[k+2]}
				}
			}); err != nil {
				return err
			}
		}
	} else {
		widths, err := pdfeval.GetArray(x, dict.GetRaw("Widths"))
		if err != nil && !pdfeval.IsFormatError(err) {
			return err
		}
		if widths != nil {
			ww := make([]float64, len(widths))
			for i, w := range widths {
				ww[i] = numberOr(x, w, 0)
			}
			f.Widths.Set(uint32(max(p.FirstChar, 0)), ww...)
			if p.Descriptor != nil {
				f.DefaultWidth = numberOr(x, p.Descriptor.GetRaw("MissingWidth"), 0)
			}
		} else if !f.Type3 {
			t.widthsFromMetrics(ctx, f, baseFont)
		}
	}

	if f.Widths.monospace(f.DefaultWidth) {
		f.Flags |= FlagFixedPitch
	} else {
		f.Flags &^= FlagFixedPitch
	}
	return nil
}

func (t *Translator) widthsFromMetrics(ctx context.Context, f *Font, baseFont string) {
	name := baseFont
	if name == "" {
		name = f.Name
	}
	metrics := t.standardMetrics(ctx, name)
	if metrics.Monospace {
		f.DefaultWidth = metrics.DefaultWidth
	}
	for code, glyphName := range f.Encoding {
		if glyphName == "" {
			continue
		}
		w, ok := f.Program.WidthByName(glyphName)
		if !ok {
			w, ok = metrics.Width(glyphName)
		}
		if ok {
			f.Widths.Set(uint32(code), w)
		}
	}
}

// parseW walks a W or W2 array of a CIDFont: entries are either
// "c [v...]" or "first last v". Values come in groups of n.
func parseW(x pdfeval.XRef, w pdfeval.Array, n int, set func(first, last uint32, v []float64, fixed bool)) error {
	i := 1
	for i < len(w) {
		first, err := pdfeval.GetInt(x, w[i-1])
		if err != nil {
			return err
		}
		next, err := pdfeval.Resolve(x, w[i])
		if err != nil {
			return err
		}
		switch next := next.(type) {
		case pdfeval.Array:
			values := make([]float64, len(next))
			for j, v := range next {
				values[j] = numberOr(x, v, 0)
			}
			if count := len(values) / n; count > 0 && first >= 0 {
				set(uint32(first), uint32(first+count-1), values[:count*n], false)
			}
			i += 2
		default:
			last, ok := pdfeval.Number(next)
			if !ok {
				return pdfeval.Errorf("bad W array entry %s", pdfeval.Format(next))
			}
			values := make([]float64, n)
			for j := range values {
				if i+1+j < len(w) {
					values[j] = numberOr(x, w[i+1+j], 0)
				}
			}
			if first >= 0 && int(last) >= first {
				set(uint32(first), uint32(last), values, true)
			}
			i += 2 + n
		}
	}
	return nil
}

func numberOr(x pdfeval.XRef, obj pdfeval.Object, def float64) float64 {
	v, err := pdfeval.Resolve(x, obj)
	if err != nil {
		return def
	}
	if n, ok := pdfeval.Number(v); ok {
		return n
	}
	return def
}

func stringOr(x pdfeval.XRef, obj pdfeval.Object) string {
	v, _ := pdfeval.Resolve(x, obj)
	s, _ := v.(string)
	return s
}
