package colorspace

import "math"

// CalGray is a CIE-based gray color space.
type CalGray struct {
	WhitePoint [3]float64
	Gamma      float64
}

func (*CalGray) Name() string            { return "CalGray" }
func (*CalGray) NumComps() int           { return 1 }
func (*CalGray) DefaultColor() []float64 { return []float64{0} }

func (s *CalGray) RGB(comps []float64) RGB {
	a := math.Pow(clamp01(comp(comps, 0)), s.Gamma)
	return xyzToRGB(s.WhitePoint[0]*a, s.WhitePoint[1]*a, s.WhitePoint[2]*a)
}

// CalRGB is a CIE-based RGB color space.
type CalRGB struct {
	WhitePoint [3]float64
	Gamma      [3]float64
	Matrix     [9]float64
}

func (*CalRGB) Name() string            { return "CalRGB" }
func (*CalRGB) NumComps() int           { return 3 }
func (*CalRGB) DefaultColor() []float64 { return []float64{0, 0, 0} }

func (s *CalRGB) RGB(comps []float64) RGB {
	var lin [3]float64
	for i := range lin {
		lin[i] = math.Pow(clamp01(comp(comps, i)), s.Gamma[i])
	}
	m := s.Matrix
	x := m[0]*lin[0] + m[3]*lin[1] + m[6]*lin[2]
	y := m[1]*lin[0] + m[4]*lin[1] + m[7]*lin[2]
	z := m[2]*lin[0] + m[5]*lin[1] + m[8]*lin[2]
	return xyzToRGB(x, y, z)
}

// Lab is the CIE 1976 L*a*b* color space.
type Lab struct {
	WhitePoint [3]float64
	// Ranges holds aMin, aMax, bMin, bMax.
	Ranges [4]float64
}

func (*Lab) Name() string  { return "Lab" }
func (*Lab) NumComps() int { return 3 }

func (s *Lab) DefaultColor() []float64 {
	return []float64{0, clampTo(0, s.Ranges[0], s.Ranges[1]), clampTo(0, s.Ranges[2], s.Ranges[3])}
}

// Range implements ranger.
func (s *Lab) Range() []float64 {
	return []float64{0, 100, s.Ranges[0], s.Ranges[1], s.Ranges[2], s.Ranges[3]}
}

func (s *Lab) RGB(comps []float64) RGB {
	l := clampTo(comp(comps, 0), 0, 100)
	a := clampTo(comp(comps, 1), s.Ranges[0], s.Ranges[1])
	b := clampTo(comp(comps, 2), s.Ranges[2], s.Ranges[3])

	m := (l + 16) / 116
	ll := m + a/500
	n := m - b/200
	g := func(x float64) float64 {
		if x >= 6.0/29 {
			return x * x * x
		}
		return 108.0 / 841 * (x - 4.0/29)
	}
	wp := s.WhitePoint
	return xyzToRGB(wp[0]*g(ll), wp[1]*g(m), wp[2]*g(n))
}

// xyzToRGB converts CIE XYZ relative to a D50 white to sRGB.
func xyzToRGB(x, y, z float64) RGB {
	// Bradford adaptation from D50 to D65.
	x2 := 0.9555766*x - 0.0230393*y + 0.0631636*z
	y2 := -0.0282895*x + 1.0099416*y + 0.0210077*z
	z2 := 0.0122982*x - 0.0204830*y + 1.3299098*z

	r := 3.2404542*x2 - 1.5371385*y2 - 0.4985314*z2
	g := -0.9692660*x2 + 1.8760108*y2 + 0.0415560*z2
	b := 0.0556434*x2 - 0.2040259*y2 + 1.0572252*z2
	return RGB{toByte(srgbGamma(r)), toByte(srgbGamma(g)), toByte(srgbGamma(b))}
}

func srgbGamma(v float64) float64 {
	if v <= 0.0031308 {
		return 12.92 * v
	}
	return 1.055*math.Pow(v, 1/2.4) - 0.055
}

func clamp01(v float64) float64 { return clampTo(v, 0, 1) }

func clampTo(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
