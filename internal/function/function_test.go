package function

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ScriptRock/pdfeval"
)

func nums(v ...float64) pdfeval.Array {
	a := make(pdfeval.Array, len(v))
	for i, x := range v {
		a[i] = x
	}
	return a
}

func dict(x pdfeval.XRef, kv ...any) *pdfeval.Dict {
	d := pdfeval.NewDict(x)
	for i := 0; i < len(kv); i += 2 {
		d.Set(pdfeval.Name(kv[i].(string)), kv[i+1])
	}
	return d
}

func Test_Parse_Apply(t *testing.T) {
	x := pdfeval.NewMemXRef()
	exp := dict(x, "FunctionType", int64(2), "Domain", nums(0, 1),
		"C0", nums(0, 0, 0), "C1", nums(1, 0.5, 0), "N", int64(1))
	square := dict(x, "FunctionType", int64(2), "Domain", nums(0, 1), "N", int64(2))
	stitch := dict(x, "FunctionType", int64(3), "Domain", nums(0, 1),
		"Functions", pdfeval.Array{square, x.Add(square)},
		"Bounds", nums(0.5), "Encode", nums(0, 1, 1, 0))
	sampled := pdfeval.NewStream(dict(x, "FunctionType", int64(0), "Domain", nums(0, 1),
		"Range", nums(0, 1), "Size", pdfeval.Array{int64(2)}, "BitsPerSample", int64(8)),
		[]byte{0, 255})
	sampled2D := pdfeval.NewStream(dict(x, "FunctionType", int64(0), "Domain", nums(0, 1, 0, 1),
		"Range", nums(0, 1), "Size", pdfeval.Array{int64(2), int64(2)}, "BitsPerSample", int64(8)),
		[]byte{0, 255, 255, 255})
	ps := pdfeval.NewStream(dict(x, "FunctionType", int64(4), "Domain", nums(0, 1, 0, 1),
		"Range", nums(0, 10, 0, 10)),
		[]byte("{ 2 copy gt { exch } if 10 mul exch 10 mul }"))

	testCases := map[string]struct {
		fn    pdfeval.Object
		input []float64
		want  []float64
	}{
		"exponential":       {fn: exp, input: []float64{0.5}, want: []float64{0.5, 0.25, 0}},
		"exponential clip":  {fn: exp, input: []float64{2}, want: []float64{1, 0.5, 0}},
		"stitching first":   {fn: stitch, input: []float64{0.25}, want: []float64{0.25}},
		"stitching second":  {fn: stitch, input: []float64{0.75}, want: []float64{0.25}},
		"sampled midpoint":  {fn: sampled, input: []float64{0.5}, want: []float64{0.5}},
		"sampled 2D corner": {fn: sampled2D, input: []float64{0, 0}, want: []float64{0}},
		"sampled 2D center": {fn: sampled2D, input: []float64{0.5, 0.5}, want: []float64{0.75}},
		"postscript":        {fn: ps, input: []float64{0.8, 0.3}, want: []float64{8, 3}},
		"array of functions": {
			fn:    pdfeval.Array{square, square},
			input: []float64{0.5},
			want:  []float64{0.25, 0.25},
		},
	}

	opt := cmpopts.EquateApprox(0, 1e-9)
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			f, err := Parse(x, tc.fn)
			if err != nil {
				t.Fatal(err)
			}

			got := f.Apply(tc.input...)
			if diff := cmp.Diff(got, tc.want, opt); diff != "" {
				t.Error("function output did not match expectations:", diff)
			}
		})
	}
}

func Test_Parse_Errors(t *testing.T) {
	x := pdfeval.NewMemXRef()
	testCases := map[string]pdfeval.Object{
		"unknown type":   dict(x, "FunctionType", int64(7), "Domain", nums(0, 1)),
		"missing domain": dict(x, "FunctionType", int64(2), "N", int64(1)),
		"bad bounds": dict(x, "FunctionType", int64(3), "Domain", nums(0, 1),
			"Functions", pdfeval.Array{}, "Bounds", nums(0.5)),
		"bad program": pdfeval.NewStream(dict(x, "FunctionType", int64(4), "Domain", nums(0, 1),
			"Range", nums(0, 1)), []byte("{ 1 frobnicate }")),
		"not a function": pdfeval.Name("Identity"),
	}

	for name, obj := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(x, obj)
			if !pdfeval.IsFormatError(err) {
				t.Errorf("got error %v, want a format error", err)
			}
		})
	}
}

func Test_Type4_Operators(t *testing.T) {
	testCases := map[string]struct {
		program string
		input   []float64
		want    float64
	}{
		"ifelse true":  {program: "{ 0.5 gt { 1 } { 0 } ifelse }", input: []float64{0.7}, want: 1},
		"ifelse false": {program: "{ 0.5 gt { 1 } { 0 } ifelse }", input: []float64{0.2}, want: 0},
		"roll":         {program: "{ 1 2 3 3 1 roll pop pop exch pop }", input: []float64{0}, want: 3},
		"index":        {program: "{ 4 5 2 index add add }", input: []float64{1}, want: 10},
		"trig":         {program: "{ pop 90 sin }", input: []float64{0}, want: 1},
		"idiv":         {program: "{ pop 7 2 idiv }", input: []float64{0}, want: 3},
		"cvi bitshift": {program: "{ pop 1.9 cvi 3 bitshift }", input: []float64{0}, want: 8},
		"underflow":    {program: "{ pop pop }", input: []float64{0}, want: 0},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			code, err := compile(tc.program)
			if err != nil {
				t.Fatal(err)
			}
			f := &Type4{Domain: []float64{0, 1}, Range: []float64{0, 100}, code: code}

			got := f.Apply(tc.input...)
			if diff := cmp.Diff(got, []float64{tc.want}, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Error("function output did not match expectations:", diff)
			}
		})
	}
}
