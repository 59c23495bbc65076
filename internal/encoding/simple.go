package encoding

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/encoding/charmap"
)

// NoRune is the replacement for codes that have no Unicode mapping.
const NoRune = unicode.ReplacementChar

// A Simple maps single-byte character codes to glyph names. An empty name
// stands for .notdef.
type Simple [256]string

var (
	Standard  = Simple(standardEncoding)
	MacExpert = Simple(macExpertEncoding)
	Symbol    = Simple(symbolEncoding)
	WinAnsi   = fromCharmap(charmap.Windows1252)
	MacRoman  = fromCharmap(charmap.Macintosh)
)

var runeToGlyph = func() map[rune]string {
	m := make(map[rune]string, len(glyphList))
	for name, r := range glyphList {
		if prev, ok := m[r]; ok && prev < name {
			continue
		}
		m[r] = name
	}
	// Prefer the names used by the standard encodings.
	for _, name := range []string{"space", "hyphen", "quotesingle", "grave", "periodcentered", "Delta", "Omega", "fraction"} {
		m[glyphList[name]] = name
	}
	return m
}()

func fromCharmap(cm *charmap.Charmap) Simple {
	var enc Simple
	for c := 0x20; c < 256; c++ {
		r := cm.DecodeByte(byte(c))
		if name, ok := runeToGlyph[r]; ok {
			enc[c] = name
		}
	}
	if cm == charmap.Windows1252 {
		// Unused positions show a bullet in PDF viewers.
		for _, c := range []byte{0x7f, 0x81, 0x8d, 0x8f, 0x90, 0x9d} {
			enc[c] = "bullet"
		}
		enc[0xa0] = "space"
		enc[0xad] = "hyphen"
	}
	return enc
}

// Base returns the named predefined encoding. Names are those of the
// Encoding entry of a font dictionary.
func Base(name string) (Simple, bool) {
	switch name {
	case "StandardEncoding":
		return Standard, true
	case "WinAnsiEncoding":
		return WinAnsi, true
	case "MacRomanEncoding":
		return MacRoman, true
	case "MacExpertEncoding":
		return MacExpert, true
	case "SymbolSetEncoding":
		return Symbol, true
	}
	return Simple{}, false
}

// ApplyDifferences overlays a Differences array, a sequence of codes each
// followed by glyph names for consecutive codes.
func (e *Simple) ApplyDifferences(diffs []any) {
	code := -1
	for _, d := range diffs {
		switch v := d.(type) {
		case int64:
			code = int(v)
		case float64:
			code = int(v)
		case string:
			if code >= 0 && code < 256 {
				e[code] = v
			}
			code++
		}
	}
}

// GlyphText returns the text for a glyph name. Besides the names of the
// glyph list it understands uniXXXX sequences, uXXXX[XX], and names with
// a suffix after a period such as "a.sc". It returns "" when the name is
// unknown.
func GlyphText(name string) string {
	if name == "" || name == ".notdef" {
		return ""
	}
	if r, ok := glyphList[name]; ok {
		return string(r)
	}
	if i := strings.IndexByte(name, '.'); i > 0 {
		return GlyphText(name[:i])
	}
	if i := strings.IndexByte(name, '_'); i > 0 {
		var b strings.Builder
		for _, part := range strings.Split(name, "_") {
			b.WriteString(GlyphText(part))
		}
		return b.String()
	}
	if rest, ok := strings.CutPrefix(name, "uni"); ok && len(rest) >= 4 && len(rest)%4 == 0 {
		var b strings.Builder
		for ; len(rest) > 0; rest = rest[4:] {
			r, ok := hexRune(rest[:4])
			if !ok || r >= 0xd800 && r <= 0xdfff {
				return ""
			}
			b.WriteRune(r)
		}
		return b.String()
	}
	if rest, ok := strings.CutPrefix(name, "u"); ok && len(rest) >= 4 && len(rest) <= 6 {
		if r, ok := hexRune(rest); ok && r <= unicode.MaxRune {
			return string(r)
		}
	}
	return ""
}

// GlyphName returns the conventional glyph name for r.
func GlyphName(r rune) string {
	if name, ok := runeToGlyph[r]; ok {
		return name
	}
	if r > 0xffff {
		return "u" + strings.ToUpper(strconv.FormatInt(int64(r), 16))
	}
	return "uni" + strings.ToUpper(leftPad(strconv.FormatInt(int64(r), 16), 4))
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}

func hexRune(s string) (rune, bool) {
	for _, c := range s {
		if !('0' <= c && c <= '9' || 'A' <= c && c <= 'F') {
			return 0, false
		}
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}

// Decode converts single-byte codes to text through the encoding.
// Codes without a glyph name decode to NoRune.
func (e *Simple) Decode(raw string) string {
	var b strings.Builder
	for i := 0; i < len(raw); i++ {
		s := GlyphText(e[raw[i]])
		if s == "" {
			b.WriteRune(NoRune)
			continue
		}
		b.WriteString(s)
	}
	return b.String()
}
