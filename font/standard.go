package font

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
	"seehuhn.de/go/postscript/afm"
	"seehuhn.de/go/sfnt"

	"github.com/ScriptRock/pdfeval/internal/encoding"
)

// The standard 14 fonts.
var standard14 = map[string]bool{
	"Courier":               true,
	"Courier-Bold":          true,
	"Courier-BoldOblique":   true,
	"Courier-Oblique":       true,
	"Helvetica":             true,
	"Helvetica-Bold":        true,
	"Helvetica-BoldOblique": true,
	"Helvetica-Oblique":     true,
	"Times-Roman":           true,
	"Times-Bold":            true,
	"Times-BoldItalic":      true,
	"Times-Italic":          true,
	"Symbol":                true,
	"ZapfDingbats":          true,
}

// stdAliases maps common names of the standard fonts, after
// normalization, to the standard name.
var stdAliases = map[string]string{
	"Arial":                        "Helvetica",
	"Arial-Bold":                   "Helvetica-Bold",
	"Arial-BoldItalic":             "Helvetica-BoldOblique",
	"Arial-Italic":                 "Helvetica-Oblique",
	"ArialMT":                      "Helvetica",
	"Arial-BoldMT":                 "Helvetica-Bold",
	"Arial-BoldItalicMT":           "Helvetica-BoldOblique",
	"Arial-ItalicMT":               "Helvetica-Oblique",
	"ArialUnicodeMS":               "Helvetica",
	"ArialUnicodeMS-Bold":          "Helvetica-Bold",
	"ArialUnicodeMS-BoldItalic":    "Helvetica-BoldOblique",
	"ArialUnicodeMS-Italic":        "Helvetica-Oblique",
	"Courier-BoldItalic":           "Courier-BoldOblique",
	"Courier-Italic":               "Courier-Oblique",
	"CourierNew":                   "Courier",
	"CourierNew-Bold":              "Courier-Bold",
	"CourierNew-BoldItalic":        "Courier-BoldOblique",
	"CourierNew-Italic":            "Courier-Oblique",
	"CourierNewPS-BoldItalicMT":    "Courier-BoldOblique",
	"CourierNewPS-BoldMT":          "Courier-Bold",
	"CourierNewPS-ItalicMT":        "Courier-Oblique",
	"CourierNewPSMT":               "Courier",
	"Helvetica-BoldItalic":         "Helvetica-BoldOblique",
	"Helvetica-Italic":             "Helvetica-Oblique",
	"Symbol-Bold":                  "Symbol",
	"Symbol-BoldItalic":            "Symbol",
	"Symbol-Italic":                "Symbol",
	"Times":                        "Times-Roman",
	"Times-BoldOblique":            "Times-BoldItalic",
	"Times-Oblique":                "Times-Italic",
	"TimesNewRoman":                "Times-Roman",
	"TimesNewRoman-Bold":           "Times-Bold",
	"TimesNewRoman-BoldItalic":     "Times-BoldItalic",
	"TimesNewRoman-Italic":         "Times-Italic",
	"TimesNewRomanPS":              "Times-Roman",
	"TimesNewRomanPS-Bold":         "Times-Bold",
	"TimesNewRomanPS-BoldItalic":   "Times-BoldItalic",
	"TimesNewRomanPS-BoldItalicMT": "Times-BoldItalic",
	"TimesNewRomanPS-BoldMT":       "Times-Bold",
	"TimesNewRomanPS-Italic":       "Times-Italic",
	"TimesNewRomanPS-ItalicMT":     "Times-Italic",
	"TimesNewRomanPSMT":            "Times-Roman",
	"TimesNewRomanPSMT-Bold":       "Times-Bold",
	"TimesNewRomanPSMT-BoldItalic": "Times-BoldItalic",
	"TimesNewRomanPSMT-Italic":     "Times-Italic",
}

// serifFamilies lists family names of serif fonts.
var serifFamilies = []string{
	"Adobe Jenson", "Adobe Text", "Albertus", "Aldus", "Alexandria", "Algerian",
	"American Typewriter", "Antiqua", "Apex", "Arno", "Aster", "Aurora",
	"Baskerville", "Bell", "Bembo", "Bembo Schoolbook", "Benguiat", "Berkeley",
	"Bernhard Modern", "Berthold City", "Bodoni", "Bauer Bodoni", "Book Antiqua",
	"Bookman", "Bordeaux Roman", "Californian FB", "Calisto", "Calvert", "Capitals",
	"Cambria", "Cartier", "Caslon", "Catull", "Centaur", "Century Old Style",
	"Century Schoolbook", "Chaparral", "Charis SIL", "Cheltenham", "Cholla Slab",
	"Clarendon", "Clearface", "Cochin", "Colonna", "Computer Modern", "Concrete Roman",
	"Constantia", "Cooper Black", "Corona", "Ecotype", "Egyptienne", "Elephant",
	"Excelsior", "Fairfield", "FF Scala", "Folkard", "Footlight", "FreeSerif",
	"Friz Quadrata", "Garamond", "Gentium", "Georgia", "Gloucester", "Goudy",
	"Granjon", "High Tower Text", "Hoefler Text", "Imprint", "Ionic No. 5",
	"Janson", "Joanna", "Korinna", "Lexicon", "LiberationSerif", "Liberation Serif",
	"Linux Libertine", "Literaturnaya", "Lucida", "Lucida Bright", "Melior",
	"Memphis", "Miller", "Minion", "Modern", "Mona Lisa", "Mrs Eaves",
	"MS Serif", "Museo Slab", "New York", "Nimbus Roman", "NPS Rawlinson Roadway",
	"NuptialScript", "Palatino", "Perpetua", "Plantin", "Plantin Schoolbook",
	"Playbill", "Poor Richard", "Rawlinson Roadway", "Renault", "Requiem",
	"Rockwell", "Roman", "Rotis Serif", "Sabon", "Scala", "Seagull", "Sistina",
	"Souvenir", "STIX", "Stone Informal", "Stone Serif", "Sylfaen", "Times",
	"Trajan", "Trinité", "Trump Mediaeval", "Utopia", "Vale Type", "Bitstream Vera",
	"Vera Serif", "Versailles", "Wanted", "Weiss", "Wide Latin", "Windsor", "XITS",
}

var serifLookup = func() map[string]bool {
	m := make(map[string]bool, len(serifFamilies))
	for _, f := range serifFamilies {
		m[strings.ReplaceAll(f, " ", "")] = true
	}
	return m
}()

// NormalizeName strips a subset tag and replaces the separators that
// producers use between family and style by a hyphen.
func NormalizeName(name string) string {
	if i := strings.IndexByte(name, '+'); i == 6 {
		name = name[i+1:]
	}
	return strings.NewReplacer(",", "-", "_", "-").Replace(name)
}

// StandardName returns the standard font that name refers to, or "".
func StandardName(name string) string {
	name = NormalizeName(name)
	if standard14[name] {
		return name
	}
	if std, ok := stdAliases[name]; ok {
		return std
	}
	return stdAliases[strings.ReplaceAll(name, " ", "")]
}

// IsSerif reports whether name looks like the name of a serif font.
func IsSerif(name string) bool {
	name = NormalizeName(name)
	family, _, _ := strings.Cut(name, "-")
	family = strings.ReplaceAll(family, " ", "")
	if serifLookup[family] {
		return true
	}
	return strings.HasPrefix(family, "Times")
}

// IsSymbolic reports whether name is one of the symbol fonts, whose codes
// do not follow a Latin encoding.
func IsSymbolic(name string) bool {
	std := StandardName(name)
	return std == "Symbol" || std == "ZapfDingbats" || strings.Contains(name, "Dingbats") ||
		strings.HasPrefix(NormalizeName(name), "Wingdings")
}

// Metrics holds the glyph widths of a font without a Widths array, in
// thousandths of the font size.
type Metrics struct {
	Name         string
	Widths       map[string]float64
	DefaultWidth float64
	Monospace    bool
	Ascent       float64
	Descent      float64
}

// Width returns the width of the named glyph.
func (m *Metrics) Width(name string) (float64, bool) {
	if m.Monospace {
		return m.DefaultWidth, true
	}
	w, ok := m.Widths[name]
	return w, ok
}

// goFonts are the fallback programs for the standard fonts, by style.
var goFonts = map[string][]byte{
	"Helvetica":             goregular.TTF,
	"Helvetica-Bold":        gobold.TTF,
	"Helvetica-BoldOblique": gobolditalic.TTF,
	"Helvetica-Oblique":     goitalic.TTF,
	"Times-Roman":           goregular.TTF,
	"Times-Bold":            gobold.TTF,
	"Times-BoldItalic":      gobolditalic.TTF,
	"Times-Italic":          goitalic.TTF,
	"Courier":               gomono.TTF,
	"Courier-Bold":          gomonobold.TTF,
	"Courier-BoldOblique":   gomonobolditalic.TTF,
	"Courier-Oblique":       gomonoitalic.TTF,
}

// standardMetrics returns the metrics for name. Fonts that are neither
// standard nor aliases use Times-Roman or Helvetica depending on whether
// they look serif. The metrics come from AFM data read through f; when
// those are not available the matching Go font is measured instead.
func (t *Translator) standardMetrics(ctx context.Context, name string) *Metrics {
	std := StandardName(name)
	if std == "" {
		std = "Helvetica"
		if IsSerif(name) {
			std = "Times-Roman"
		}
	}

	t.mu.Lock()
	m, ok := t.metrics[std]
	t.mu.Unlock()
	if ok {
		return m
	}

	m, err := t.loadMetrics(ctx, std)
	if err != nil {
		t.logger().Debug("standard font metrics unavailable", slog.String("font", std), slog.Any("err", err))
		m = &Metrics{Name: std, Widths: map[string]float64{}}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if prev, ok := t.metrics[std]; ok {
		return prev
	}
	t.metrics[std] = m
	return m
}

func (t *Translator) loadMetrics(ctx context.Context, std string) (*Metrics, error) {
	if strings.HasPrefix(std, "Courier") {
		return &Metrics{Name: std, DefaultWidth: 600, Monospace: true, Ascent: 629, Descent: -157}, nil
	}

	if t.Fetcher != nil {
		data, err := t.Fetcher.Fetch(ctx, KindStandardFont, std)
		if err == nil {
			return readAFM(std, data)
		}
		if !errors.Is(err, ErrNotAvailable) {
			return nil, err
		}
	}

	ttf, ok := goFonts[std]
	if !ok {
		return nil, ErrNotAvailable
	}
	return sfntMetrics(std, ttf)
}

func readAFM(name string, data []byte) (*Metrics, error) {
	info, err := afm.Read(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	m := &Metrics{
		Name:      name,
		Widths:    make(map[string]float64, len(info.Glyphs)),
		Monospace: info.IsFixedPitch,
		Ascent:    float64(info.Ascent),
		Descent:   float64(info.Descent),
	}
	for glyphName, g := range info.Glyphs {
		m.Widths[glyphName] = float64(g.WidthX)
	}
	if m.Monospace {
		m.DefaultWidth = m.Widths["space"]
	}
	return m, nil
}

// sfntMetrics measures the glyphs of the standard Latin character set in
// a TrueType program, addressing them by their Unicode value.
func sfntMetrics(name string, ttf []byte) (*Metrics, error) {
	f, err := sfnt.Read(bytes.NewReader(ttf))
	if err != nil {
		return nil, err
	}
	cmap, err := f.CMapTable.GetBest()
	if err != nil {
		return nil, err
	}
	q := 1000 / float64(f.UnitsPerEm)
	m := &Metrics{
		Name:    name,
		Widths:  make(map[string]float64),
		Ascent:  float64(f.Ascent) * q,
		Descent: float64(f.Descent) * q,
	}
	for _, enc := range []*encoding.Simple{&encoding.Standard, &encoding.WinAnsi} {
		for _, glyphName := range enc {
			if glyphName == "" {
				continue
			}
			if _, ok := m.Widths[glyphName]; ok {
				continue
			}
			rr := []rune(encoding.GlyphText(glyphName))
			if len(rr) != 1 {
				continue
			}
			if gid := cmap.Lookup(rr[0]); gid != 0 {
				m.Widths[glyphName] = f.GlyphWidthPDF(gid)
			}
		}
	}
	return m, nil
}
