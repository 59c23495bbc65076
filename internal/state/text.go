package state

import (
	"seehuhn.de/go/geom/matrix"

	"github.com/ScriptRock/pdfeval/font"
)

// DefaultFontMatrix maps glyph space to text space for all fonts but Type3.
var DefaultFontMatrix = matrix.Matrix{0.001, 0, 0, 0.001, 0, 0}

// Text holds the state of the text-content extractor, see
// PDF_ISO_32000-2: Table 102: Text state parameters
//
// Methods on Text implement the operators from:
// PDF_ISO_32000-2: Table 103: Text state operators
// and
// PDF_ISO_32000-2: Table 106: Text-positioning operators
type Text struct {
	CTM        matrix.Matrix
	Font       *font.Font
	FontName   string
	FontSize   float64
	LoadedName string
	FontMatrix matrix.Matrix

	TextMatrix     matrix.Matrix
	TextLineMatrix matrix.Matrix

	CharSpacing float64
	WordSpacing float64
	Leading     float64
	HScale      float64
	Rise        float64
}

// NewText returns the initial text state.
func NewText() *Text {
	return &Text{
		CTM:            matrix.Identity,
		FontMatrix:     DefaultFontMatrix,
		TextMatrix:     matrix.Identity,
		TextLineMatrix: matrix.Identity,
		HScale:         1,
	}
}

// Clone implements Cloner.
func (t *Text) Clone() *Text {
	c := *t
	return &c
}

// CM applies the cm operator.
func (t *Text) CM(m matrix.Matrix) { t.CTM = m.Mul(t.CTM) }

func (t *Text) Tc(v float64) { t.CharSpacing = v }

func (t *Text) Tw(v float64) { t.WordSpacing = v }

// Tz sets the horizontal scaling from a percentage.
func (t *Text) Tz(v float64) { t.HScale = v / 100 }

func (t *Text) TL(v float64) { t.Leading = v }

func (t *Text) Ts(v float64) { t.Rise = v }

// Tf records the selected font. The font matrix falls back to the default
// when f is nil or has none.
func (t *Text) Tf(f *font.Font, size float64) {
	t.Font = f
	t.FontSize = size
	t.FontMatrix = DefaultFontMatrix
	if f != nil {
		t.LoadedName = f.LoadedName
		if f.FontMatrix != (matrix.Matrix{}) {
			t.FontMatrix = f.FontMatrix
		}
	}
}

// BT starts a text object.
func (t *Text) BT() {
	t.TextMatrix = matrix.Identity
	t.TextLineMatrix = matrix.Identity
}

// Td moves to the start of the next line, offset by (tx, ty).
func (t *Text) Td(tx, ty float64) {
	t.TextLineMatrix = matrix.Translate(tx, ty).Mul(t.TextLineMatrix)
	t.TextMatrix = t.TextLineMatrix
}

// TD is Td that also sets the leading to -ty.
func (t *Text) TD(tx, ty float64) {
	t.TL(-ty)
	t.Td(tx, ty)
}

// Tm sets both the text matrix and the text line matrix.
func (t *Text) Tm(m matrix.Matrix) {
	t.TextMatrix = m
	t.TextLineMatrix = m
}

// Tstar moves to the start of the next line.
func (t *Text) Tstar() {
	t.Td(0, -t.Leading)
}

// Translate moves the text matrix, but not the text line matrix, by
// (tx, ty) in text space. It is used after each glyph and for the numbers
// of a TJ array.
func (t *Text) Translate(tx, ty float64) {
	t.TextMatrix = matrix.Translate(tx, ty).Mul(t.TextMatrix)
}

// RenderMatrix returns the text rendering matrix for the given CTM, see
// PDF_ISO_32000-2: 9.4.4 Text space details.
func (t *Text) RenderMatrix(ctm matrix.Matrix) matrix.Matrix {
	tsm := matrix.Matrix{t.FontSize * t.HScale, 0, 0, t.FontSize, 0, t.Rise}
	return tsm.Mul(t.TextMatrix).Mul(ctm)
}
