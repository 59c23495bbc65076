package font

import (
	"bytes"

	"seehuhn.de/go/postscript/type1"
	"seehuhn.de/go/sfnt"
	"seehuhn.de/go/sfnt/glyph"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/encoding"
)

// Program describes an embedded font program. Type1 programs and
// TrueType or OpenType programs are parsed for their metrics; compact
// font format programs are kept opaque.
type Program struct {
	// Format is Type1, TrueType, OpenType, Type1C or CIDFontType0C.
	Format string
	Name   string

	// Encoding is the built-in encoding of a Type1 program.
	Encoding []string

	NumGlyphs int
	Ascent    float64
	Descent   float64

	t1  *type1.Font
	ttf *sfnt.Font
}

// readProgram loads the font program referenced by a font descriptor. It
// returns nil when the descriptor has none.
func readProgram(x pdfeval.XRef, desc *pdfeval.Dict) (*Program, error) {
	for _, key := range []pdfeval.Name{"FontFile", "FontFile2", "FontFile3"} {
		s, err := pdfeval.GetStream(x, desc.GetRaw(key))
		if err != nil {
			return nil, err
		}
		if s == nil {
			continue
		}

		p := &Program{}
		switch key {
		case "FontFile":
			p.Format = "Type1"
		case "FontFile2":
			p.Format = "TrueType"
		default:
			sub, err := pdfeval.GetName(x, s.Dict.GetRaw("Subtype"))
			if err != nil {
				return nil, err
			}
			p.Format = string(sub)
		}
		if p.Format == "Type1C" || p.Format == "CIDFontType0C" {
			return p, nil
		}

		data, err := s.Decode()
		if err != nil {
			return nil, err
		}
		switch p.Format {
		case "Type1":
			f, err := type1.Read(bytes.NewReader(data))
			if err != nil {
				return nil, pdfeval.Wrap(err, "Type1 font program")
			}
			p.t1 = f
			p.Name = f.FontName
			p.Encoding = f.Encoding
			p.NumGlyphs = len(f.Glyphs)
		case "TrueType", "OpenType":
			f, err := sfnt.Read(bytes.NewReader(data))
			if err != nil {
				return nil, pdfeval.Wrap(err, p.Format+" font program")
			}
			p.ttf = f
			p.Name = f.PostScriptName()
			p.NumGlyphs = f.NumGlyphs()
			q := 1000 / float64(f.UnitsPerEm)
			p.Ascent = float64(f.Ascent) * q
			p.Descent = float64(f.Descent) * q
		default:
			return nil, pdfeval.Errorf("unknown font program type /%s", p.Format)
		}
		return p, nil
	}
	return nil, nil
}

// WidthByName returns the advance width of a glyph, in thousandths of the
// font size. TrueType glyphs are found through the Unicode value of name.
func (p *Program) WidthByName(name string) (float64, bool) {
	switch {
	case p == nil:
		return 0, false
	case p.t1 != nil:
		if _, ok := p.t1.Glyphs[name]; !ok {
			return 0, false
		}
		return p.t1.GlyphWidthPDF(name), true
	case p.ttf != nil:
		rr := []rune(encoding.GlyphText(name))
		if len(rr) != 1 {
			return 0, false
		}
		cmap, err := p.ttf.CMapTable.GetBest()
		if err != nil {
			return 0, false
		}
		gid := cmap.Lookup(rr[0])
		if gid == 0 {
			return 0, false
		}
		return p.ttf.GlyphWidthPDF(gid), true
	}
	return 0, false
}

// WidthByGID returns the advance width of a TrueType glyph.
func (p *Program) WidthByGID(gid uint16) (float64, bool) {
	if p == nil || p.ttf == nil || int(gid) >= p.NumGlyphs {
		return 0, false
	}
	return p.ttf.GlyphWidthPDF(glyph.ID(gid)), true
}
