package colorspace

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ScriptRock/pdfeval"
)

func dict(x pdfeval.XRef, kv ...any) *pdfeval.Dict {
	d := pdfeval.NewDict(x)
	for i := 0; i < len(kv); i += 2 {
		d.Set(pdfeval.Name(kv[i].(string)), kv[i+1])
	}
	return d
}

func Test_Parse_RGB(t *testing.T) {
	x := pdfeval.NewMemXRef()
	tint := dict(x, "FunctionType", int64(2), "Domain", pdfeval.Array{int64(0), int64(1)},
		"C0", pdfeval.Array{int64(0), int64(0), int64(0), int64(0)},
		"C1", pdfeval.Array{int64(0), int64(1), int64(1), int64(0)}, "N", int64(1))
	icc := pdfeval.NewStream(dict(x, "N", int64(3)), nil)
	res := dict(x, "ColorSpace", dict(x,
		"CS0", pdfeval.Array{pdfeval.Name("Indexed"), pdfeval.Name("DeviceRGB"), int64(1), "\xff\x00\x00\x00\x00\xff"},
		"CS1", x.Add(pdfeval.Array{pdfeval.Name("ICCBased"), x.Add(icc)}),
		"Spot", pdfeval.Array{pdfeval.Name("Separation"), pdfeval.Name("Red"), pdfeval.Name("DeviceCMYK"), tint},
		"Alias", pdfeval.Name("CS0"),
	))

	testCases := map[string]struct {
		cs    pdfeval.Object
		comps []float64
		want  RGB
		name  string
	}{
		"gray":            {cs: pdfeval.Name("DeviceGray"), comps: []float64{0.5}, want: RGB{128, 128, 128}, name: "DeviceGray"},
		"abbreviated rgb": {cs: pdfeval.Name("RGB"), comps: []float64{1, 0, 0}, want: RGB{255, 0, 0}, name: "DeviceRGB"},
		"cmyk black":      {cs: pdfeval.Name("DeviceCMYK"), comps: []float64{0, 0, 0, 1}, want: RGB{0, 0, 0}, name: "DeviceCMYK"},
		"cmyk cyan":       {cs: pdfeval.Name("DeviceCMYK"), comps: []float64{1, 0, 0, 0}, want: RGB{0, 255, 255}, name: "DeviceCMYK"},
		"indexed":         {cs: pdfeval.Name("CS0"), comps: []float64{1}, want: RGB{0, 0, 255}, name: "Indexed"},
		"indexed clamped": {cs: pdfeval.Name("CS0"), comps: []float64{7}, want: RGB{0, 0, 255}, name: "Indexed"},
		"alias":           {cs: pdfeval.Name("Alias"), comps: []float64{0}, want: RGB{255, 0, 0}, name: "Indexed"},
		"icc by N":        {cs: pdfeval.Name("CS1"), comps: []float64{0, 1, 0}, want: RGB{0, 255, 0}, name: "DeviceRGB"},
		"separation":      {cs: pdfeval.Name("Spot"), comps: []float64{1}, want: RGB{255, 0, 0}, name: "Separation"},
		"pattern base": {
			cs:    pdfeval.Array{pdfeval.Name("Pattern"), pdfeval.Name("DeviceGray")},
			comps: []float64{1},
			want:  RGB{255, 255, 255},
			name:  "Pattern",
		},
	}

	pc := ParseContext{XRef: x, Resources: res, Memo: NewMemo()}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cs, err := Parse(pc, tc.cs)
			if err != nil {
				t.Fatal(err)
			}
			if cs.Name() != tc.name {
				t.Errorf("family = %s, want %s", cs.Name(), tc.name)
			}

			if diff := cmp.Diff(cs.RGB(tc.comps), tc.want); diff != "" {
				t.Error("converted color did not match expectations:", diff)
			}
		})
	}
}

func Test_Parse_Cycle(t *testing.T) {
	x := pdfeval.NewMemXRef()
	self := x.Alloc()
	x.Set(self, pdfeval.Array{pdfeval.Name("Indexed"), self, int64(0), ""})

	a, b := x.Alloc(), x.Alloc()
	x.Set(a, pdfeval.Array{pdfeval.Name("Pattern"), b})
	x.Set(b, pdfeval.Array{pdfeval.Name("Indexed"), a, int64(0), ""})

	res := dict(x, "ColorSpace", dict(x,
		"Loop", pdfeval.Array{pdfeval.Name("Indexed"), pdfeval.Name("Loop"), int64(0), ""},
		"Ping", pdfeval.Name("Pong"),
		"Pong", pdfeval.Name("Ping"),
	))

	testCases := map[string]pdfeval.Object{
		"self reference":   self,
		"two references":   a,
		"resource name":    pdfeval.Name("Loop"),
		"name alias cycle": pdfeval.Name("Ping"),
	}

	pc := ParseContext{XRef: x, Resources: res, Memo: NewMemo()}
	for name, obj := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(pc, obj)
			if !pdfeval.IsFormatError(err) || !errors.Is(err, pdfeval.ErrCircularReference) {
				t.Errorf("got error %v, want a circular reference format error", err)
			}
		})
	}
}

func Test_Parse_Memo(t *testing.T) {
	x := pdfeval.NewMemXRef()
	ref := x.Add(pdfeval.Array{pdfeval.Name("CalGray"), dict(x, "WhitePoint", pdfeval.Array{0.9642, 1.0, 0.8249})})
	pc := ParseContext{XRef: x, Memo: NewMemo()}

	first, err := Parse(pc, ref)
	if err != nil {
		t.Fatal(err)
	}
	second, err := Parse(pc, ref)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("second parse returned a different instance")
	}
	if n := x.Fetches(ref); n != 1 {
		t.Errorf("fetched %d times, want 1", n)
	}
	if c := first.RGB([]float64{1}); c[0] < 250 || c[1] < 250 || c[2] < 250 {
		t.Errorf("CalGray white converted to %v", c)
	}
}

func Test_Parse_Errors(t *testing.T) {
	x := pdfeval.NewMemXRef()
	testCases := map[string]pdfeval.Object{
		"unknown name":       pdfeval.Name("Nope"),
		"unknown family":     pdfeval.Array{pdfeval.Name("Bogus")},
		"missing whitepoint": pdfeval.Array{pdfeval.Name("Lab"), dict(x)},
		"icc bad N":          pdfeval.Array{pdfeval.Name("ICCBased"), pdfeval.NewStream(dict(x, "N", int64(2)), nil)},
		"indexed of pattern": pdfeval.Array{pdfeval.Name("Indexed"), pdfeval.Name("Pattern"), int64(0), ""},
		"not a color space":  int64(3),
	}

	pc := ParseContext{XRef: x}
	for name, obj := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(pc, obj); !pdfeval.IsFormatError(err) {
				t.Errorf("got error %v, want a format error", err)
			}
		})
	}
}

func Test_IsDefaultDecode(t *testing.T) {
	testCases := map[string]struct {
		decode []float64
		cs     ColorSpace
		want   bool
	}{
		"absent":   {cs: DeviceRGB, want: true},
		"default":  {decode: []float64{0, 1}, cs: DeviceGray, want: true},
		"inverted": {decode: []float64{1, 0}, cs: DeviceGray, want: false},
		"indexed":  {decode: []float64{0, 15}, cs: &Indexed{Base: DeviceRGB, HiVal: 15}, want: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if got := IsDefaultDecode(tc.decode, tc.cs); got != tc.want {
				t.Errorf("IsDefaultDecode = %v, want %v", got, tc.want)
			}
		})
	}
}
