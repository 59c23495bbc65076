// Package function evaluates PDF functions, see
// PDF_ISO_32000-2: 7.10 Functions.
package function

import (
	"fmt"
	"math"

	"github.com/ScriptRock/pdfeval"
)

// Func is a PDF function.
type Func interface {
	// Shape returns the number of input and output values of the function.
	Shape() (int, int)

	// Apply applies the function to the given input values.
	Apply(inputs ...float64) []float64
}

// maxDepth bounds the nesting of stitching functions.
const maxDepth = 8

// Parse reads a function dictionary or stream. An array of functions with
// one output each is combined into a single function whose outputs are
// the concatenation of theirs.
func Parse(x pdfeval.XRef, obj pdfeval.Object) (Func, error) {
	return parse(x, obj, 0)
}

func parse(x pdfeval.XRef, obj pdfeval.Object, depth int) (Func, error) {
	if depth > maxDepth {
		return nil, pdfeval.Errorf("function nesting too deep")
	}
	obj, err := pdfeval.Resolve(x, obj)
	if err != nil {
		return nil, err
	}
	if a, ok := obj.(pdfeval.Array); ok {
		fns := make(multi, 0, len(a))
		for _, e := range a {
			f, err := parse(x, e, depth+1)
			if err != nil {
				return nil, err
			}
			fns = append(fns, f)
		}
		if len(fns) == 0 {
			return nil, pdfeval.Errorf("empty function array")
		}
		return fns, nil
	}

	var (
		d    *pdfeval.Dict
		strm *pdfeval.Stream
	)
	switch o := obj.(type) {
	case *pdfeval.Dict:
		d = o
	case *pdfeval.Stream:
		d, strm = o.Dict, o
	default:
		return nil, pdfeval.Errorf("invalid function %s", pdfeval.Format(obj))
	}

	ft, err := pdfeval.GetInt(x, d.GetRaw("FunctionType"))
	if err != nil {
		return nil, err
	}
	domain, err := pdfeval.GetNumbers(x, d.GetRaw("Domain"))
	if err != nil {
		return nil, err
	}
	if len(domain) < 2 || len(domain)%2 != 0 {
		return nil, pdfeval.Errorf("function: invalid Domain %v", domain)
	}
	rng, err := pdfeval.GetNumbers(x, d.GetRaw("Range"))
	if err != nil {
		return nil, err
	}
	if len(rng)%2 != 0 {
		return nil, pdfeval.Errorf("function: invalid Range %v", rng)
	}

	switch ft {
	case 0:
		if strm == nil {
			return nil, pdfeval.Errorf("sampled function is not a stream")
		}
		return readType0(x, strm, domain, rng)
	case 2:
		return readType2(x, d, domain, rng)
	case 3:
		return readType3(x, d, domain, rng, depth)
	case 4:
		if strm == nil {
			return nil, pdfeval.Errorf("PostScript function is not a stream")
		}
		return readType4(strm, domain, rng)
	default:
		return nil, pdfeval.Errorf("unknown function type %d", ft)
	}
}

type multi []Func

func (m multi) Shape() (int, int) {
	in, _ := m[0].Shape()
	out := 0
	for _, f := range m {
		_, n := f.Shape()
		out += n
	}
	return in, out
}

func (m multi) Apply(inputs ...float64) []float64 {
	var out []float64
	for _, f := range m {
		out = append(out, f.Apply(inputs...)...)
	}
	return out
}

// Type2 is an exponential interpolation function.
type Type2 struct {
	Domain []float64
	Range  []float64
	C0, C1 []float64
	N      float64
}

func readType2(x pdfeval.XRef, d *pdfeval.Dict, domain, rng []float64) (*Type2, error) {
	c0, err := pdfeval.GetNumbers(x, d.GetRaw("C0"))
	if err != nil {
		return nil, err
	}
	c1, err := pdfeval.GetNumbers(x, d.GetRaw("C1"))
	if err != nil {
		return nil, err
	}
	if c0 == nil {
		c0 = []float64{0}
	}
	if c1 == nil {
		c1 = []float64{1}
	}
	if len(c0) != len(c1) {
		return nil, pdfeval.Errorf("exponential function: C0 and C1 differ in length")
	}
	n, err := pdfeval.GetNumber(x, d.GetRaw("N"))
	if err != nil {
		return nil, err
	}
	return &Type2{Domain: domain[:2], Range: rng, C0: c0, C1: c1, N: n}, nil
}

// Shape implements Func.
func (f *Type2) Shape() (int, int) { return 1, len(f.C0) }

// Apply implements Func.
func (f *Type2) Apply(inputs ...float64) []float64 {
	x := clip(first(inputs), f.Domain[0], f.Domain[1])
	xn := math.Pow(x, f.N)
	out := make([]float64, len(f.C0))
	for i := range out {
		out[i] = f.C0[i] + xn*(f.C1[i]-f.C0[i])
	}
	clipRange(out, f.Range)
	return out
}

// Type3 is a stitching function.
type Type3 struct {
	Domain    []float64
	Range     []float64
	Functions []Func
	Bounds    []float64
	Encode    []float64
}

func readType3(x pdfeval.XRef, d *pdfeval.Dict, domain, rng []float64, depth int) (*Type3, error) {
	fa, err := pdfeval.GetArray(x, d.GetRaw("Functions"))
	if err != nil {
		return nil, err
	}
	if len(fa) == 0 {
		return nil, pdfeval.Errorf("stitching function without Functions")
	}
	f := &Type3{Domain: domain[:2], Range: rng}
	for _, e := range fa {
		sub, err := parse(x, e, depth+1)
		if err != nil {
			return nil, err
		}
		f.Functions = append(f.Functions, sub)
	}
	if f.Bounds, err = pdfeval.GetNumbers(x, d.GetRaw("Bounds")); err != nil {
		return nil, err
	}
	if f.Encode, err = pdfeval.GetNumbers(x, d.GetRaw("Encode")); err != nil {
		return nil, err
	}
	k := len(f.Functions)
	if len(f.Bounds) != k-1 || len(f.Encode) != 2*k {
		return nil, pdfeval.Errorf("stitching function: %d functions with %d bounds and %d encode values",
			k, len(f.Bounds), len(f.Encode))
	}
	return f, nil
}

// Shape implements Func.
func (f *Type3) Shape() (int, int) {
	_, n := f.Functions[0].Shape()
	return 1, n
}

// Apply implements Func.
func (f *Type3) Apply(inputs ...float64) []float64 {
	x := clip(first(inputs), f.Domain[0], f.Domain[1])
	i := 0
	for i < len(f.Bounds) && x >= f.Bounds[i] {
		i++
	}
	lo, hi := f.Domain[0], f.Domain[1]
	if i > 0 {
		lo = f.Bounds[i-1]
	}
	if i < len(f.Bounds) {
		hi = f.Bounds[i]
	}
	e := interpolate(x, lo, hi, f.Encode[2*i], f.Encode[2*i+1])
	out := f.Functions[i].Apply(e)
	clipRange(out, f.Range)
	return out
}

func first(in []float64) float64 {
	if len(in) == 0 {
		return 0
	}
	return in[0]
}

func clip(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}

func clipRange(out, rng []float64) {
	for i := range out {
		if 2*i+1 < len(rng) {
			out[i] = clip(out[i], rng[2*i], rng[2*i+1])
		}
	}
}

// interpolate maps x from [xMin, xMax] to [yMin, yMax].
func interpolate(x, xMin, xMax, yMin, yMax float64) float64 {
	if xMax == xMin {
		return yMin
	}
	return yMin + (x-xMin)*(yMax-yMin)/(xMax-xMin)
}

func (f *Type2) String() string { return fmt.Sprintf("exp(%v..%v, N=%g)", f.C0, f.C1, f.N) }
