// Package colorspace resolves PDF color spaces and converts colors to RGB.
package colorspace

import (
	"fmt"
	"math"
)

// A ColorSpace converts color components to RGB.
type ColorSpace interface {
	// Name returns the color space family.
	Name() string

	// NumComps returns the number of color components.
	NumComps() int

	// RGB converts one color. Missing components read as zero.
	RGB(comps []float64) RGB

	// DefaultColor returns the initial color of the space.
	DefaultColor() []float64
}

// An RGB color with 8 bits per channel.
type RGB [3]byte

// Hex returns the color as "#rrggbb".
func (c RGB) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]) }

// ranger is implemented by color spaces whose components are not all in
// [0, 1].
type ranger interface {
	Range() []float64
}

// Range returns the minimum and maximum of every component of cs.
func Range(cs ColorSpace) []float64 {
	if r, ok := cs.(ranger); ok {
		return r.Range()
	}
	n := cs.NumComps()
	rng := make([]float64, 2*n)
	for i := 0; i < n; i++ {
		rng[2*i+1] = 1
	}
	return rng
}

// IsDefaultDecode reports whether decode is absent or maps every component
// to its own range, for images with n components.
func IsDefaultDecode(decode []float64, cs ColorSpace) bool {
	if len(decode) == 0 {
		return true
	}
	rng := Range(cs)
	if len(decode) != len(rng) {
		return true
	}
	for i := range rng {
		if math.Abs(decode[i]-rng[i]) > 1e-6 {
			return false
		}
	}
	return true
}

func comp(comps []float64, i int) float64 {
	if i < len(comps) {
		return comps[i]
	}
	return 0
}

func toByte(v float64) byte {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return byte(v*255 + 0.5)
}

// Device color spaces.
var (
	DeviceGray ColorSpace = deviceGray{}
	DeviceRGB  ColorSpace = deviceRGB{}
	DeviceCMYK ColorSpace = deviceCMYK{}
)

type deviceGray struct{}

func (deviceGray) Name() string            { return "DeviceGray" }
func (deviceGray) NumComps() int           { return 1 }
func (deviceGray) DefaultColor() []float64 { return []float64{0} }

func (deviceGray) RGB(comps []float64) RGB {
	g := toByte(comp(comps, 0))
	return RGB{g, g, g}
}

type deviceRGB struct{}

func (deviceRGB) Name() string            { return "DeviceRGB" }
func (deviceRGB) NumComps() int           { return 3 }
func (deviceRGB) DefaultColor() []float64 { return []float64{0, 0, 0} }

func (deviceRGB) RGB(comps []float64) RGB {
	return RGB{toByte(comp(comps, 0)), toByte(comp(comps, 1)), toByte(comp(comps, 2))}
}

type deviceCMYK struct{}

func (deviceCMYK) Name() string            { return "DeviceCMYK" }
func (deviceCMYK) NumComps() int           { return 4 }
func (deviceCMYK) DefaultColor() []float64 { return []float64{0, 0, 0, 1} }

func (deviceCMYK) RGB(comps []float64) RGB {
	c, m, y, k := comp(comps, 0), comp(comps, 1), comp(comps, 2), comp(comps, 3)
	return RGB{
		toByte((1 - c) * (1 - k)),
		toByte((1 - m) * (1 - k)),
		toByte((1 - y) * (1 - k)),
	}
}
