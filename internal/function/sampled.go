package function

import (
	"math"

	"github.com/ScriptRock/pdfeval"
)

// maxSamples bounds the sample table of a Type 0 function.
const maxSamples = 1 << 24

// Type0 is a sampled function using multilinear interpolation.
type Type0 struct {
	Domain        []float64
	Range         []float64
	Size          []int
	BitsPerSample int
	Encode        []float64
	Decode        []float64

	samples []float64 // normalized to [0, 1]
}

func readType0(x pdfeval.XRef, s *pdfeval.Stream, domain, rng []float64) (*Type0, error) {
	d := s.Dict
	m, n := len(domain)/2, len(rng)/2
	if n == 0 {
		return nil, pdfeval.Errorf("sampled function without Range")
	}
	sizes, err := pdfeval.GetNumbers(x, d.GetRaw("Size"))
	if err != nil {
		return nil, err
	}
	if len(sizes) != m {
		return nil, pdfeval.Errorf("sampled function: %d sizes for %d inputs", len(sizes), m)
	}
	f := &Type0{Domain: domain, Range: rng, Size: make([]int, m)}
	total := n
	for i, v := range sizes {
		if v < 1 || v > maxSamples {
			return nil, pdfeval.Errorf("sampled function: invalid Size %v", v)
		}
		f.Size[i] = int(v)
		total *= int(v)
		if total > maxSamples {
			return nil, pdfeval.Errorf("sampled function too large")
		}
	}
	if f.BitsPerSample, err = pdfeval.GetInt(x, d.GetRaw("BitsPerSample")); err != nil {
		return nil, err
	}
	switch f.BitsPerSample {
	case 1, 2, 4, 8, 12, 16, 24, 32:
	default:
		return nil, pdfeval.Errorf("sampled function: invalid BitsPerSample %d", f.BitsPerSample)
	}

	if f.Encode, err = pdfeval.GetNumbers(x, d.GetRaw("Encode")); err != nil {
		return nil, err
	}
	if len(f.Encode) != 2*m {
		f.Encode = make([]float64, 2*m)
		for i, sz := range f.Size {
			f.Encode[2*i+1] = float64(sz - 1)
		}
	}
	if f.Decode, err = pdfeval.GetNumbers(x, d.GetRaw("Decode")); err != nil {
		return nil, err
	}
	if len(f.Decode) != 2*n {
		f.Decode = rng
	}

	data, err := s.Decode()
	if err != nil {
		return nil, err
	}
	f.samples = unpackSamples(data, total, f.BitsPerSample)
	return f, nil
}

// unpackSamples reads count big-endian samples of the given width. Missing
// samples read as zero.
func unpackSamples(data []byte, count, bps int) []float64 {
	out := make([]float64, count)
	max := math.Pow(2, float64(bps)) - 1
	var buf uint64
	bits := 0
	pos := 0
	for i := range out {
		for bits < bps {
			buf <<= 8
			if pos < len(data) {
				buf |= uint64(data[pos])
			}
			pos++
			bits += 8
		}
		v := (buf >> uint(bits-bps)) & (1<<uint(bps) - 1)
		bits -= bps
		out[i] = float64(v) / max
	}
	return out
}

// Shape implements Func.
func (f *Type0) Shape() (int, int) { return len(f.Domain) / 2, len(f.Range) / 2 }

// Apply implements Func.
func (f *Type0) Apply(inputs ...float64) []float64 {
	m, n := f.Shape()

	// Position of the input in the sample grid, per dimension.
	lo := make([]int, m)
	frac := make([]float64, m)
	for i := 0; i < m; i++ {
		var x float64
		if i < len(inputs) {
			x = inputs[i]
		}
		x = clip(x, f.Domain[2*i], f.Domain[2*i+1])
		e := interpolate(x, f.Domain[2*i], f.Domain[2*i+1], f.Encode[2*i], f.Encode[2*i+1])
		e = clip(e, 0, float64(f.Size[i]-1))
		lo[i] = int(math.Floor(e))
		if lo[i] >= f.Size[i]-1 {
			lo[i] = max(f.Size[i]-2, 0)
		}
		frac[i] = e - float64(lo[i])
	}

	out := make([]float64, n)
	for corner := 0; corner < 1<<m; corner++ {
		weight := 1.0
		idx := 0
		stride := n
		for i := 0; i < m; i++ {
			p := lo[i]
			if corner>>i&1 == 1 {
				if f.Size[i] > 1 {
					p++
				}
				weight *= frac[i]
			} else {
				weight *= 1 - frac[i]
			}
			idx += p * stride
			stride *= f.Size[i]
		}
		if weight == 0 {
			continue
		}
		for j := 0; j < n; j++ {
			out[j] += weight * f.samples[idx+j]
		}
	}
	for j := range out {
		out[j] = interpolate(out[j], 0, 1, f.Decode[2*j], f.Decode[2*j+1])
	}
	clipRange(out, f.Range)
	return out
}
