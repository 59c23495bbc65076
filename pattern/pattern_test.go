package pattern

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/oplist"
)

func dict(x pdfeval.XRef, kv ...any) *pdfeval.Dict {
	d := pdfeval.NewDict(x)
	for i := 0; i < len(kv); i += 2 {
		d.Set(pdfeval.Name(kv[i].(string)), kv[i+1])
	}
	return d
}

func nums(v ...float64) pdfeval.Array {
	a := make(pdfeval.Array, len(v))
	for i, f := range v {
		a[i] = f
	}
	return a
}

func Test_NewTiling(t *testing.T) {
	x := pdfeval.NewMemXRef()
	ol := oplist.New(nil)
	valid := func(kv ...any) *pdfeval.Dict {
		d := dict(x,
			"PatternType", int64(1),
			"PaintType", int64(2),
			"TilingType", int64(1),
			"BBox", nums(0, 0, 10, 20),
			"XStep", int64(10),
			"YStep", 20.5,
			"Matrix", nums(2, 0, 0, 2, 5, 5),
		)
		for i := 0; i < len(kv); i += 2 {
			d.Set(pdfeval.Name(kv[i].(string)), kv[i+1])
		}
		return d
	}

	tp, err := NewTiling(x, valid(), "#ff0000", ol)
	if err != nil {
		t.Fatal(err)
	}
	ir := tp.IR()
	if ir[2] != ol {
		t.Error("tiling IR does not carry the compiled operator list")
	}
	ir[2] = nil
	want := []any{"TilingPattern", "#ff0000", nil, matrix.Matrix{2, 0, 0, 2, 5, 5},
		rect.Rect{URx: 10, URy: 20}, 10.0, 20.5, Uncolored, 1}
	if diff := cmp.Diff(ir, want); diff != "" {
		t.Error("tiling IR did not match expectations:", diff)
	}

	testCases := map[string]*pdfeval.Dict{
		"empty bbox":      valid("BBox", nums(0, 0, 0, 20)),
		"missing bbox":    valid("BBox", nil),
		"missing xstep":   valid("XStep", nil),
		"name as ystep":   valid("YStep", pdfeval.Name("big")),
		"real paint type": valid("PaintType", 1.5),
	}
	for name, d := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewTiling(x, d, "", ol); !pdfeval.IsFormatError(err) {
				t.Errorf("got error %v, want a format error", err)
			}
		})
	}
}

var approx = cmpopts.EquateApprox(0, 1e-9)

func redToBlue(x pdfeval.XRef) *pdfeval.Dict {
	return dict(x,
		"FunctionType", int64(2),
		"Domain", nums(0, 1),
		"C0", nums(1, 0, 0),
		"C1", nums(0, 0, 1),
		"N", int64(1),
	)
}

func Test_ParseShading_RadialAxial(t *testing.T) {
	x := pdfeval.NewMemXRef()
	pc := colorspace.ParseContext{XRef: x}

	testCases := map[string]struct {
		shading *pdfeval.Dict
		want    []any
	}{
		"axial extended": {
			shading: dict(x,
				"ShadingType", int64(2),
				"ColorSpace", pdfeval.Name("DeviceRGB"),
				"Coords", nums(0, 0, 100, 0),
				"Function", redToBlue(x),
				"Extend", pdfeval.Array{true, true},
			),
			want: []any{"RadialAxial", "axial", nil,
				[]Stop{{0, "#ff0000"}, {1, "#0000ff"}},
				vec.Vec2{}, vec.Vec2{X: 100}, nil, nil},
		},
		"axial with background": {
			shading: dict(x,
				"ShadingType", int64(2),
				"ColorSpace", pdfeval.Name("DeviceRGB"),
				"Coords", nums(0, 0, 0, 50),
				"Function", redToBlue(x),
				"Background", nums(0, 1, 0),
				"BBox", nums(10, 10, 0, 0),
			),
			want: []any{"RadialAxial", "axial", rect.Rect{URx: 10, URy: 10},
				[]Stop{{0, "#00ff00"}, {smallNumber, "#ff0000"}, {1 - smallNumber, "#0000ff"}, {1, "#00ff00"}},
				vec.Vec2{}, vec.Vec2{Y: 50}, nil, nil},
		},
		"radial": {
			shading: dict(x,
				"ShadingType", int64(3),
				"ColorSpace", pdfeval.Name("DeviceRGB"),
				"Coords", nums(1, 2, 0, 1, 2, 30),
				"Function", redToBlue(x),
				"Extend", pdfeval.Array{false, true},
			),
			want: []any{"RadialAxial", "radial", nil,
				[]Stop{{0, "transparent"}, {smallNumber, "#ff0000"}, {1, "#0000ff"}},
				vec.Vec2{X: 1, Y: 2}, vec.Vec2{X: 1, Y: 2}, 0.0, 30.0},
		},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			sh, err := ParseShading(pc, tc.shading)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(sh.IR(), tc.want, approx); diff != "" {
				t.Error("shading IR did not match expectations:", diff)
			}
		})
	}
}

func Test_ParseShading_FreeForm(t *testing.T) {
	x := pdfeval.NewMemXRef()
	pc := colorspace.ParseContext{XRef: x}
	d := dict(x,
		"ShadingType", int64(4),
		"ColorSpace", pdfeval.Name("DeviceRGB"),
		"BitsPerCoordinate", int64(8),
		"BitsPerComponent", int64(8),
		"BitsPerFlag", int64(8),
		"Decode", nums(0, 255, 0, 255, 0, 1, 0, 1, 0, 1),
	)
	data := []byte{
		0, 0, 0, 255, 0, 0,
		0, 255, 0, 0, 255, 0,
		0, 0, 255, 0, 0, 255,
		1, 255, 255, 255, 255, 255,
		2, 128, 128, 0, 0, 0,
	}
	sh, err := ParseShading(pc, pdfeval.NewStream(d, data))
	if err != nil {
		t.Fatal(err)
	}
	m := sh.(*Mesh)

	wantCoords := []vec.Vec2{{}, {X: 255}, {Y: 255}, {X: 255, Y: 255}, {X: 128, Y: 128}}
	if diff := cmp.Diff(m.Coords, wantCoords, approx); diff != "" {
		t.Error("coordinates did not match expectations:", diff)
	}
	wantColors := []colorspace.RGB{{255, 0, 0}, {0, 255, 0}, {0, 0, 255}, {255, 255, 255}, {0, 0, 0}}
	if diff := cmp.Diff(m.Colors, wantColors); diff != "" {
		t.Error("colors did not match expectations:", diff)
	}
	tri := []int{0, 1, 2, 1, 2, 3, 1, 3, 4}
	wantFigures := []Figure{{Kind: Triangles, Coords: tri, Colors: tri}}
	if diff := cmp.Diff(m.Figures, wantFigures); diff != "" {
		t.Error("figures did not match expectations:", diff)
	}
	if diff := cmp.Diff(m.Bounds, rect.Rect{URx: 255, URy: 255}, approx); diff != "" {
		t.Error("bounds did not match expectations:", diff)
	}

	bad := pdfeval.NewStream(d, []byte{1, 0, 0, 0, 0, 0})
	if _, err := ParseShading(pc, bad); !pdfeval.IsFormatError(err) {
		t.Errorf("leading flag 1 gave %v, want a format error", err)
	}
}

func Test_ParseShading_Lattice(t *testing.T) {
	x := pdfeval.NewMemXRef()
	pc := colorspace.ParseContext{XRef: x}
	lattice := func(perRow int64) *pdfeval.Stream {
		d := dict(x,
			"ShadingType", int64(5),
			"ColorSpace", pdfeval.Name("DeviceRGB"),
			"BitsPerCoordinate", int64(4),
			"BitsPerComponent", int64(4),
			"VerticesPerRow", perRow,
			"Decode", nums(0, 15, 0, 15, 0, 1),
			"Function", redToBlue(x),
			"Background", nums(1, 1, 1),
		)
		// x, y and t packed in 4-bit units.
		return pdfeval.NewStream(d, []byte{0x00, 0x0f, 0x00, 0x0f, 0xff, 0xff})
	}

	sh, err := ParseShading(pc, lattice(2))
	if err != nil {
		t.Fatal(err)
	}
	m := sh.(*Mesh)
	wantCoords := []vec.Vec2{{}, {X: 15}, {Y: 15}, {X: 15, Y: 15}}
	if diff := cmp.Diff(m.Coords, wantCoords, approx); diff != "" {
		t.Error("coordinates did not match expectations:", diff)
	}
	wantColors := []colorspace.RGB{{255, 0, 0}, {255, 0, 0}, {0, 0, 255}, {0, 0, 255}}
	if diff := cmp.Diff(m.Colors, wantColors); diff != "" {
		t.Error("colors did not match expectations:", diff)
	}
	idx := []int{0, 1, 2, 3}
	wantFigures := []Figure{{Kind: LatticeFigure, Coords: idx, Colors: idx, VerticesPerRow: 2}}
	if diff := cmp.Diff(m.Figures, wantFigures); diff != "" {
		t.Error("figures did not match expectations:", diff)
	}
	if m.Background == nil || *m.Background != (colorspace.RGB{255, 255, 255}) {
		t.Errorf("background = %v", m.Background)
	}

	if _, err := ParseShading(pc, lattice(1)); !pdfeval.IsFormatError(err) {
		t.Errorf("one vertex per row gave %v, want a format error", err)
	}
}

func Test_ParseShading_Unsupported(t *testing.T) {
	x := pdfeval.NewMemXRef()
	pc := colorspace.ParseContext{XRef: x}

	for _, typ := range []int{FunctionBased, Coons, TensorProduct} {
		sh, err := ParseShading(pc, dict(x, "ShadingType", int64(typ)))
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(sh, Shading(&Dummy{Type: typ})); diff != "" {
			t.Error("unsupported shading did not match expectations:", diff)
		}
	}

	testCases := map[string]pdfeval.Object{
		"unknown type":       dict(x, "ShadingType", int64(9)),
		"mesh without data":  dict(x, "ShadingType", int64(4)),
		"not a dictionary":   int64(2),
		"short coords":       dict(x, "ShadingType", int64(2), "ColorSpace", pdfeval.Name("DeviceGray"), "Coords", nums(0, 0, 1)),
		"unknown colorspace": dict(x, "ShadingType", int64(2), "ColorSpace", pdfeval.Name("Nope")),
	}
	for name, obj := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseShading(pc, obj); !pdfeval.IsFormatError(err) {
				t.Errorf("got error %v, want a format error", err)
			}
		})
	}
}
