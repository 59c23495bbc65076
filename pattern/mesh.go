package pattern

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/internal/function"
)

// FigureKind tells how the vertices of a Figure form triangles.
type FigureKind int

const (
	// Triangles lists three vertices per triangle.
	Triangles FigureKind = iota
	// LatticeFigure is a grid of VerticesPerRow columns.
	LatticeFigure
)

// A Figure indexes into the coordinates and colors of its Mesh.
type Figure struct {
	Kind           FigureKind
	Coords         []int
	Colors         []int
	VerticesPerRow int
}

// Mesh is a free-form (type 4) or lattice-form (type 5) Gouraud-shaded
// triangle mesh.
type Mesh struct {
	Type       int
	Coords     []vec.Vec2
	Colors     []colorspace.RGB
	Figures    []Figure
	Bounds     rect.Rect
	BBox       *rect.Rect
	Background *colorspace.RGB
}

func (m *Mesh) ShadingType() int { return m.Type }

// IR returns ["Mesh", type, coords, colors, figures, bounds, bbox, background].
func (m *Mesh) IR() []any {
	var bbox, bg any
	if m.BBox != nil {
		bbox = *m.BBox
	}
	if m.Background != nil {
		bg = *m.Background
	}
	return []any{"Mesh", m.Type, m.Coords, m.Colors, m.Figures, m.Bounds, bbox, bg}
}

// meshReader reads the bit-packed vertex data of a mesh shading.
type meshReader struct {
	data   []byte
	pos    int
	buf    uint64
	bufLen int

	bitsPerCoord int
	bitsPerComp  int
	bitsPerFlag  int
	decode       []float64
	numComps     int
	fn           function.Func
	cs           colorspace.ColorSpace
}

func (r *meshReader) hasData() bool {
	return r.bufLen > 0 || r.pos < len(r.data)
}

// readBits returns the next n bits, or ok == false at the end of data.
func (r *meshReader) readBits(n int) (v uint64, ok bool) {
	for r.bufLen < n {
		if r.pos >= len(r.data) {
			return 0, false
		}
		r.buf = r.buf<<8 | uint64(r.data[r.pos])
		r.pos++
		r.bufLen += 8
	}
	r.bufLen -= n
	v = r.buf >> r.bufLen & (1<<n - 1)
	return v, true
}

// align discards the bits left in the current byte.
func (r *meshReader) align() {
	r.buf, r.bufLen = 0, 0
}

func (r *meshReader) scale(bits int) float64 {
	return 1 / (math.Exp2(float64(bits)) - 1)
}

func (r *meshReader) readFlag() (int, bool) {
	v, ok := r.readBits(r.bitsPerFlag)
	return int(v), ok
}

func (r *meshReader) readCoord() (vec.Vec2, bool) {
	xi, ok1 := r.readBits(r.bitsPerCoord)
	yi, ok2 := r.readBits(r.bitsPerCoord)
	if !ok1 || !ok2 {
		return vec.Vec2{}, false
	}
	s, d := r.scale(r.bitsPerCoord), r.decode
	return vec.Vec2{
		X: float64(xi)*s*(d[1]-d[0]) + d[0],
		Y: float64(yi)*s*(d[3]-d[2]) + d[2],
	}, true
}

func (r *meshReader) readColor() (colorspace.RGB, bool) {
	comps := make([]float64, r.numComps)
	s := r.scale(r.bitsPerComp)
	for i, j := 0, 4; i < r.numComps; i, j = i+1, j+2 {
		ci, ok := r.readBits(r.bitsPerComp)
		if !ok {
			return colorspace.RGB{}, false
		}
		comps[i] = float64(ci)*s*(r.decode[j+1]-r.decode[j]) + r.decode[j]
	}
	if r.fn != nil {
		comps = r.fn.Apply(comps...)
	}
	return r.cs.RGB(comps), true
}

func parseMesh(pc colorspace.ParseContext, s *pdfeval.Stream, typ int) (*Mesh, error) {
	x, d := pc.XRef, s.Dict
	cs, err := colorspace.Parse(pc, d.GetRaw("ColorSpace"))
	if err != nil {
		return nil, err
	}
	m := &Mesh{Type: typ}
	if bbox, ok := pdfeval.GetRect(x, d.GetRaw("BBox")); ok {
		m.BBox = &bbox
	}
	if d.Has("Background") {
		bg, err := pdfeval.GetNumbers(x, d.GetRaw("Background"))
		if err != nil {
			return nil, err
		}
		c := cs.RGB(bg)
		m.Background = &c
	}

	r := &meshReader{cs: cs, numComps: cs.NumComps()}
	if d.Has("Function") {
		if r.fn, err = function.Parse(x, d.GetRaw("Function")); err != nil {
			return nil, err
		}
		r.numComps = 1
	}
	if r.bitsPerCoord, err = bits(x, d, "BitsPerCoordinate", 32); err != nil {
		return nil, err
	}
	if r.bitsPerComp, err = bits(x, d, "BitsPerComponent", 16); err != nil {
		return nil, err
	}
	if typ == FreeForm {
		if r.bitsPerFlag, err = bits(x, d, "BitsPerFlag", 8); err != nil {
			return nil, err
		}
	}
	if r.decode, err = pdfeval.GetNumbers(x, d.GetRaw("Decode")); err != nil {
		return nil, err
	}
	if len(r.decode) < 4+2*r.numComps {
		return nil, pdfeval.Errorf("mesh shading Decode has %d entries, want %d", len(r.decode), 4+2*r.numComps)
	}
	if r.data, err = s.Decode(); err != nil {
		return nil, err
	}

	switch typ {
	case FreeForm:
		err = m.decodeFreeForm(r)
	case Lattice:
		var perRow int
		perRow, err = pdfeval.GetInt(x, d.GetRaw("VerticesPerRow"))
		if err == nil && perRow < 2 {
			err = pdfeval.Errorf("invalid VerticesPerRow %d", perRow)
		}
		if err == nil {
			m.decodeLattice(r, perRow)
		}
	}
	if err != nil {
		return nil, err
	}
	m.updateBounds()
	return m, nil
}

func bits(x pdfeval.XRef, d *pdfeval.Dict, key pdfeval.Name, limit int) (int, error) {
	n, err := pdfeval.GetInt(x, d.GetRaw(key))
	if err != nil {
		return 0, err
	}
	if n < 1 || n > limit {
		return 0, pdfeval.Errorf("invalid %s %d", key, n)
	}
	return n, nil
}

// decodeFreeForm reads type 4 vertices. A flag of 0 starts a new triangle;
// 1 and 2 reuse two vertices of the previous one.
func (m *Mesh) decodeFreeForm(r *meshReader) error {
	var ps []int
	left := 0
	for r.hasData() {
		f, ok := r.readFlag()
		if !ok {
			break
		}
		p, ok := r.readCoord()
		if !ok {
			break
		}
		c, ok := r.readColor()
		if !ok {
			break
		}
		if left == 0 {
			n := len(ps)
			switch {
			case f == 0:
				left = 3
			case f == 1 && n >= 2:
				ps = append(ps, ps[n-2], ps[n-1])
				left = 1
			case f == 2 && n >= 3:
				ps = append(ps, ps[n-3], ps[n-1])
				left = 1
			default:
				return pdfeval.Errorf("invalid free-form mesh flag %d", f)
			}
		}
		ps = append(ps, len(m.Coords))
		m.Coords = append(m.Coords, p)
		m.Colors = append(m.Colors, c)
		left--
		r.align()
	}
	// An incomplete trailing triangle is dropped.
	ps = ps[:len(ps)-len(ps)%3]
	m.Figures = append(m.Figures, Figure{Kind: Triangles, Coords: ps, Colors: ps})
	return nil
}

func (m *Mesh) decodeLattice(r *meshReader, perRow int) {
	var ps []int
	for r.hasData() {
		p, ok := r.readCoord()
		if !ok {
			break
		}
		c, ok := r.readColor()
		if !ok {
			break
		}
		ps = append(ps, len(m.Coords))
		m.Coords = append(m.Coords, p)
		m.Colors = append(m.Colors, c)
	}
	ps = ps[:len(ps)-len(ps)%perRow]
	m.Figures = append(m.Figures, Figure{Kind: LatticeFigure, Coords: ps, Colors: ps, VerticesPerRow: perRow})
}

func (m *Mesh) updateBounds() {
	if len(m.Coords) == 0 {
		return
	}
	b := rect.Rect{LLx: m.Coords[0].X, LLy: m.Coords[0].Y, URx: m.Coords[0].X, URy: m.Coords[0].Y}
	for _, p := range m.Coords[1:] {
		b.LLx, b.URx = min(b.LLx, p.X), max(b.URx, p.X)
		b.LLy, b.URy = min(b.LLy, p.Y), max(b.URy, p.Y)
	}
	m.Bounds = b
}
