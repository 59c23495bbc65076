package evaluator

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/font"
	"github.com/ScriptRock/pdfeval/oplist"
)

func Test_RemoveType3ColorOps(t *testing.T) {
	type op struct {
		fn   oplist.OpCode
		args []any
	}
	testCases := map[string]struct {
		ops     []op
		want    []oplist.OpCode
		box     rect.Rect
		haveBox bool
	}{
		"colored glyph": {
			ops: []op{
				{oplist.OpSetCharWidth, []any{1000.0, 0.0}},
				{oplist.OpSetFillRGBColor, []any{"#ff0000"}},
				{oplist.OpFill, nil},
			},
			want: []oplist.OpCode{oplist.OpSetCharWidth, oplist.OpSetFillRGBColor, oplist.OpFill},
		},
		"uncolored glyph": {
			ops: []op{
				{oplist.OpSetCharWidthAndBounds, []any{1000.0, 0.0, 0.0, 0.0, 750.0, 750.0}},
				{oplist.OpSetFillRGBColor, []any{"#ff0000"}},
				{oplist.OpSetGState, []any{[][2]any{{"LW", 2.0}, {"TR", nil}}}},
				{oplist.OpFill, nil},
			},
			want:    []oplist.OpCode{oplist.OpSetCharWidthAndBounds, oplist.OpSetGState, oplist.OpFill},
			box:     rect.Rect{URx: 750, URy: 750},
			haveBox: true,
		},
		"degenerate bounds": {
			ops: []op{
				{oplist.OpSetCharWidthAndBounds, []any{1000.0, 0.0, 0.0, 0.0, 0.0, 0.0}},
				{oplist.OpSetStrokeRGBColor, []any{"#000000"}},
				{oplist.OpStroke, nil},
			},
			want: []oplist.OpCode{oplist.OpStroke},
		},
		"empty": {},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			ol := oplist.New(nil)
			for _, o := range tc.ops {
				ol.AddOp(o.fn, o.args...)
			}
			box, ok := removeType3ColorOps(ol)
			if ok != tc.haveBox {
				t.Errorf("haveBox = %v, want %v", ok, tc.haveBox)
			}
			if diff := cmp.Diff(tc.box, box); diff != "" {
				t.Error("glyph box did not match expectations:", diff)
			}
			if diff := cmp.Diff(tc.want, ol.OpCodes()); diff != "" {
				t.Error("opcodes did not match expectations:", diff)
			}
		})
	}
}

func Test_Evaluator_Type3(t *testing.T) {
	x := pdfeval.NewMemXRef()
	proc := x.Add(stream(x, "1000 0 0 0 750 750 d1 1 0 0 rg 0 0 750 750 re f"))
	t3 := x.Add(dict(x,
		"Type", pdfeval.Name("Font"),
		"Subtype", pdfeval.Name("Type3"),
		"FontBBox", pdfeval.Array{int64(0), int64(0), int64(0), int64(0)},
		"FontMatrix", pdfeval.Array{0.001, int64(0), int64(0), 0.001, int64(0), int64(0)},
		"CharProcs", dict(x, "a", proc),
		"Encoding", dict(x, "Differences", pdfeval.Array{int64(97), pdfeval.Name("a")}),
		"FirstChar", int64(97),
		"LastChar", int64(97),
		"Widths", pdfeval.Array{int64(1000)},
	))
	res := dict(x, "Font", dict(x, "T3", t3))

	e, rec := testEvaluator(x, nil, 0, false)
	operatorList(t, e, "BT /T3 12 Tf (a) Tj ET", res)
	operatorList(t, e, "BT /T3 12 Tf (a) Tj ET", res)

	fonts := rec.sent(ResourceFont)
	if len(fonts) != 1 {
		t.Fatalf("%d fonts sent, want 1", len(fonts))
	}
	f, ok := fonts[0].Data.(*font.Font)
	if !ok {
		t.Fatalf("sent %T, want a font", fonts[0].Data)
	}
	if !f.Type3 {
		t.Error("font is not a Type3 font")
	}
	glyph, ok := f.CharProcs["a"]
	if !ok {
		t.Fatal("no glyph procedure for a")
	}
	want := []oplist.OpCode{oplist.OpSetCharWidthAndBounds, oplist.OpConstructPath, oplist.OpFill}
	if diff := cmp.Diff(want, glyph.OpCodes()); diff != "" {
		t.Error("glyph procedure did not match expectations:", diff)
	}
	if x.Fetches(proc) != 1 {
		t.Errorf("glyph procedure fetched %d times, want 1", x.Fetches(proc))
	}
	if !f.IsCharBBox {
		t.Error("font box not taken from the glyph boxes")
	}
}
