package colorspace

import (
	"github.com/ScriptRock/pdfeval/internal/function"
)

// Indexed maps a single component to a color of a base space through a
// lookup table.
type Indexed struct {
	Base   ColorSpace
	HiVal  int
	Lookup []byte
}

func (*Indexed) Name() string            { return "Indexed" }
func (*Indexed) NumComps() int           { return 1 }
func (*Indexed) DefaultColor() []float64 { return []float64{0} }

// Range implements ranger.
func (s *Indexed) Range() []float64 { return []float64{0, float64(s.HiVal)} }

// BaseColor returns the components of entry i in the base space.
func (s *Indexed) BaseColor(i int) []float64 {
	i = max(0, min(i, s.HiVal))
	n := s.Base.NumComps()
	rng := Range(s.Base)
	out := make([]float64, n)
	for j := range out {
		var b byte
		if k := i*n + j; k < len(s.Lookup) {
			b = s.Lookup[k]
		}
		lo, hi := rng[2*j], rng[2*j+1]
		out[j] = lo + float64(b)/255*(hi-lo)
	}
	return out
}

func (s *Indexed) RGB(comps []float64) RGB {
	return s.Base.RGB(s.BaseColor(int(comp(comps, 0) + 0.5)))
}

// Alternate is a Separation or DeviceN space: colorants are converted to
// the alternate space by the tint transform.
type Alternate struct {
	Family    string
	Colorants []string
	Base      ColorSpace
	Tint      function.Func
}

func (s *Alternate) Name() string  { return s.Family }
func (s *Alternate) NumComps() int { return len(s.Colorants) }

func (s *Alternate) DefaultColor() []float64 {
	c := make([]float64, len(s.Colorants))
	for i := range c {
		c[i] = 1
	}
	return c
}

func (s *Alternate) RGB(comps []float64) RGB {
	in := make([]float64, s.NumComps())
	for i := range in {
		in[i] = clamp01(comp(comps, i))
	}
	return s.Base.RGB(s.Tint.Apply(in...))
}

// IsNone reports whether the space paints nothing, as a Separation with
// colorant None does.
func (s *Alternate) IsNone() bool {
	return s.Family == "Separation" && len(s.Colorants) == 1 && s.Colorants[0] == "None"
}

// Pattern is the pattern color space. Base is set for uncolored tiling
// patterns, whose color is given in the base space.
type Pattern struct {
	Base ColorSpace
}

func (*Pattern) Name() string { return "Pattern" }

func (s *Pattern) NumComps() int {
	if s.Base == nil {
		return 0
	}
	return s.Base.NumComps()
}

func (s *Pattern) DefaultColor() []float64 {
	if s.Base == nil {
		return nil
	}
	return s.Base.DefaultColor()
}

func (s *Pattern) RGB(comps []float64) RGB {
	if s.Base == nil {
		return RGB{}
	}
	return s.Base.RGB(comps)
}
