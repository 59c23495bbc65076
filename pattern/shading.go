package pattern

import (
	"log/slog"
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/internal/function"
)

// Shading types, see PDF_ISO_32000-2: 8.7.4.5.
const (
	FunctionBased = 1
	Axial         = 2
	Radial        = 3
	FreeForm      = 4
	Lattice       = 5
	Coons         = 6
	TensorProduct = 7
)

// numSamples is the number of points at which the function of an axial or
// radial shading is evaluated.
const numSamples = 840

// smallNumber moves the color stops next to a transparent background
// inwards so the background never bleeds into the gradient.
const smallNumber = 1e-6

// A Shading is the backend representation of a shading dictionary.
type Shading interface {
	ShadingType() int
	IR() []any
}

// Stop is a color stop of an axial or radial gradient.
type Stop struct {
	Offset float64
	Color  string
}

// RadialAxial is an axial (type 2) or radial (type 3) shading, sampled
// into color stops.
type RadialAxial struct {
	Type       int
	BBox       *rect.Rect
	Stops      []Stop
	P0, P1     vec.Vec2
	R0, R1     float64
	Background string
}

func (s *RadialAxial) ShadingType() int { return s.Type }

// IR returns ["RadialAxial", kind, bbox, stops, p0, p1, r0, r1]; the radii
// are nil for axial shadings.
func (s *RadialAxial) IR() []any {
	var bbox any
	if s.BBox != nil {
		bbox = *s.BBox
	}
	if s.Type == Axial {
		return []any{"RadialAxial", "axial", bbox, s.Stops, s.P0, s.P1, nil, nil}
	}
	return []any{"RadialAxial", "radial", bbox, s.Stops, s.P0, s.P1, s.R0, s.R1}
}

// Dummy stands in for shadings that are not supported. Backends paint
// nothing for it.
type Dummy struct {
	Type int
}

func (s *Dummy) ShadingType() int { return s.Type }
func (*Dummy) IR() []any          { return []any{"Dummy"} }

// ParseShading reads a shading dictionary or stream. Function-based and
// patch mesh shadings return a *Dummy; callers report those as
// unsupported. Any other unknown type is a format error.
func ParseShading(pc colorspace.ParseContext, obj pdfeval.Object) (Shading, error) {
	obj, err := pdfeval.Resolve(pc.XRef, obj)
	if err != nil {
		return nil, err
	}
	var d *pdfeval.Dict
	var s *pdfeval.Stream
	switch o := obj.(type) {
	case *pdfeval.Dict:
		d = o
	case *pdfeval.Stream:
		d, s = o.Dict, o
	default:
		return nil, pdfeval.Errorf("invalid shading %s", pdfeval.Format(obj))
	}

	typ, err := pdfeval.GetInt(pc.XRef, d.GetRaw("ShadingType"))
	if err != nil {
		return nil, err
	}
	switch typ {
	case Axial, Radial:
		return parseRadialAxial(pc, d, typ)
	case FreeForm, Lattice:
		if s == nil {
			return nil, pdfeval.Errorf("mesh data is not a stream")
		}
		return parseMesh(pc, s, typ)
	case FunctionBased, Coons, TensorProduct:
		return &Dummy{Type: typ}, nil
	}
	return nil, pdfeval.Errorf("unsupported ShadingType %d", typ)
}

func parseRadialAxial(pc colorspace.ParseContext, d *pdfeval.Dict, typ int) (*RadialAxial, error) {
	x := pc.XRef
	cs, err := colorspace.Parse(pc, d.GetRaw("ColorSpace"))
	if err != nil {
		return nil, err
	}
	s := &RadialAxial{Type: typ, Background: "transparent"}
	if bbox, ok := pdfeval.GetRect(x, d.GetRaw("BBox")); ok {
		s.BBox = &bbox
	}

	coords, err := pdfeval.GetNumbers(x, d.GetRaw("Coords"))
	if err != nil {
		return nil, err
	}
	want := 4
	if typ == Radial {
		want = 6
	}
	if len(coords) != want {
		return nil, pdfeval.Errorf("shading Coords has %d entries, want %d", len(coords), want)
	}
	if typ == Axial {
		s.P0, s.P1 = vec.Vec2{X: coords[0], Y: coords[1]}, vec.Vec2{X: coords[2], Y: coords[3]}
	} else {
		s.P0, s.P1 = vec.Vec2{X: coords[0], Y: coords[1]}, vec.Vec2{X: coords[3], Y: coords[4]}
		s.R0, s.R1 = coords[2], coords[5]
	}

	var extendStart, extendEnd bool
	if ext, err := pdfeval.GetArray(x, d.GetRaw("Extend")); err == nil && len(ext) == 2 {
		extendStart, _ = pdfeval.GetBool(x, ext[0])
		extendEnd, _ = pdfeval.GetBool(x, ext[1])
	}
	if typ == Radial && (!extendStart || !extendEnd) {
		dist := math.Hypot(s.P0.X-s.P1.X, s.P0.Y-s.P1.Y)
		if s.R0 <= s.R1+dist && s.R1 <= s.R0+dist {
			slog.Debug("radial gradient with overlapping circles is not extended exactly")
		}
	}

	t0, t1 := 0.0, 1.0
	if dom, err := pdfeval.GetNumbers(x, d.GetRaw("Domain")); err == nil && len(dom) == 2 {
		t0, t1 = dom[0], dom[1]
	}
	fn, err := function.Parse(x, d.GetRaw("Function"))
	if err != nil {
		return nil, err
	}

	if t0 >= t1 {
		slog.Debug("bad shading domain", slog.Float64("t0", t0), slog.Float64("t1", t1))
		return s, nil
	}
	s.Stops = sampleStops(func(t float64) colorspace.RGB {
		return cs.RGB(fn.Apply(t))
	}, t0, t1)

	if d.Has("Background") {
		bg, err := pdfeval.GetNumbers(x, d.GetRaw("Background"))
		if err != nil {
			return nil, err
		}
		s.Background = cs.RGB(bg).Hex()
	}
	if !extendStart {
		s.Stops[0].Offset += smallNumber
		s.Stops = append([]Stop{{0, s.Background}}, s.Stops...)
	}
	if !extendEnd {
		s.Stops[len(s.Stops)-1].Offset -= smallNumber
		s.Stops = append(s.Stops, Stop{1, s.Background})
	}
	return s, nil
}

// sampleStops evaluates color at numSamples points of [t0, t1] and keeps
// only the samples where the color stops changing linearly, within one
// unit per channel.
func sampleStops(color func(float64) colorspace.RGB, t0, t1 float64) []Stop {
	step := (t1 - t0) / numSamples
	at := func(i int) [3]float64 {
		c := color(t0 + float64(i)*step)
		return [3]float64{float64(c[0]), float64(c[1]), float64(c[2])}
	}
	hex := func(c [3]float64) string {
		return colorspace.RGB{byte(c[0]), byte(c[1]), byte(c[2])}.Hex()
	}

	base := at(0)
	stops := []Stop{{0, hex(base)}}
	iBase, iPrev := 0, 1
	prev := at(1)

	var maxSlope, minSlope [3]float64
	resetSlopes := func(from, to [3]float64) {
		for k := range maxSlope {
			maxSlope[k] = to[k] - from[k] + 1
			minSlope[k] = to[k] - from[k] - 1
		}
	}
	resetSlopes(base, prev)

	for i := 2; i < numSamples; i++ {
		cur := at(i)
		run := float64(i - iBase)
		ok := true
		for k := range maxSlope {
			maxSlope[k] = min(maxSlope[k], (cur[k]-base[k]+1)/run)
			minSlope[k] = max(minSlope[k], (cur[k]-base[k]-1)/run)
			ok = ok && minSlope[k] <= maxSlope[k]
		}
		if !ok {
			stops = append(stops, Stop{float64(iPrev) / numSamples, hex(prev)})
			resetSlopes(prev, cur)
			iBase, base = iPrev, prev
		}
		iPrev, prev = i, cur
	}
	return append(stops, Stop{1, hex(prev)})
}
