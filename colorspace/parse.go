package colorspace

import (
	"errors"
	"slices"
	"sync"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/function"
)

// maxDepth bounds the nesting of color spaces, which only Indexed,
// Pattern and the alternate spaces create.
const maxDepth = 16

// A Memo caches color spaces by reference for the lifetime of a document.
// It is safe for concurrent use.
type Memo struct {
	mu sync.Mutex
	m  map[pdfeval.Ref]ColorSpace
}

// NewMemo returns an empty cache.
func NewMemo() *Memo { return &Memo{m: make(map[pdfeval.Ref]ColorSpace)} }

// Get returns the color space parsed from ref.
func (m *Memo) Get(ref pdfeval.Ref) (ColorSpace, bool) {
	if m == nil {
		return nil, false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cs, ok := m.m[ref]
	return cs, ok
}

// Put stores cs unless ref is already cached.
func (m *Memo) Put(ref pdfeval.Ref, cs ColorSpace) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.m[ref]; !ok {
		m.m[ref] = cs
	}
}

// ParseContext holds what Parse needs besides the color space itself.
type ParseContext struct {
	XRef      pdfeval.XRef
	Resources *pdfeval.Dict
	Memo      *Memo
}

// path is the chain of references and resource names being resolved.
type path struct {
	refs  pdfeval.RefSet
	names []pdfeval.Name
	depth int
}

func (p path) withRef(ref pdfeval.Ref) path {
	p.refs = p.refs.Clone()
	p.refs.Add(ref)
	return p
}

// Parse resolves a color space given by name, array or reference. Names
// other than the device families are looked up in the ColorSpace resources.
// A color space that refers back to itself is a *pdfeval.FormatError
// wrapping pdfeval.ErrCircularReference.
func Parse(pc ParseContext, obj pdfeval.Object) (ColorSpace, error) {
	return pc.parse(obj, path{refs: pdfeval.RefSet{}})
}

func (pc ParseContext) parse(obj pdfeval.Object, p path) (ColorSpace, error) {
	if p.depth > maxDepth {
		return nil, pdfeval.Errorf("color space nesting too deep")
	}
	p.depth++

	if ref, ok := obj.(pdfeval.Ref); ok {
		if cs, ok := pc.Memo.Get(ref); ok {
			return cs, nil
		}
		if p.refs.Has(ref) {
			return nil, pdfeval.Errorf("color space %v: %w", ref, pdfeval.ErrCircularReference)
		}
		o, err := pdfeval.Resolve(pc.XRef, ref)
		if err != nil {
			return nil, err
		}
		cs, err := pc.parse(o, p.withRef(ref))
		if err != nil {
			return nil, err
		}
		pc.Memo.Put(ref, cs)
		return cs, nil
	}

	switch o := obj.(type) {
	case pdfeval.Name:
		return pc.parseName(o, p)
	case pdfeval.Array:
		return pc.parseArray(o, p)
	case *pdfeval.Stream:
		// A bare ICC profile stream is accepted in place of [/ICCBased s].
		return pc.parseICC(o, p)
	default:
		return nil, pdfeval.Errorf("invalid color space %s", pdfeval.Format(obj))
	}
}

func (pc ParseContext) parseName(name pdfeval.Name, p path) (ColorSpace, error) {
	switch name {
	case "G", "DeviceGray":
		return DeviceGray, nil
	case "RGB", "DeviceRGB":
		return DeviceRGB, nil
	case "CMYK", "DeviceCMYK", "CalCMYK":
		return DeviceCMYK, nil
	case "Pattern":
		return &Pattern{}, nil
	}

	if slices.Contains(p.names, name) {
		return nil, pdfeval.Errorf("color space /%s: %w", name, pdfeval.ErrCircularReference)
	}
	spaces, err := pdfeval.GetDict(pc.XRef, pc.Resources.GetRaw("ColorSpace"))
	if err != nil {
		return nil, err
	}
	if !spaces.Has(name) {
		return nil, pdfeval.Errorf("unknown color space /%s", name)
	}
	p.names = append(slices.Clip(p.names), name)
	return pc.parse(spaces.GetRaw(name), p)
}

func (pc ParseContext) parseArray(a pdfeval.Array, p path) (ColorSpace, error) {
	if len(a) == 0 {
		return nil, pdfeval.Errorf("empty color space array")
	}
	family, err := pdfeval.GetName(pc.XRef, a[0])
	if err != nil {
		return nil, err
	}
	arg := func(i int) pdfeval.Object {
		if i < len(a) {
			return a[i]
		}
		return nil
	}

	switch family {
	case "G", "DeviceGray", "RGB", "DeviceRGB", "CMYK", "DeviceCMYK", "CalCMYK":
		return pc.parseName(family, p)

	case "CalGray":
		d, err := pdfeval.GetDict(pc.XRef, arg(1))
		if err != nil {
			return nil, err
		}
		wp, err := whitePoint(pc.XRef, d, family)
		if err != nil {
			return nil, err
		}
		gamma := 1.0
		if d.Has("Gamma") {
			if gamma, err = pdfeval.GetNumber(pc.XRef, d.GetRaw("Gamma")); err != nil {
				return nil, err
			}
		}
		return &CalGray{WhitePoint: wp, Gamma: gamma}, nil

	case "CalRGB":
		d, err := pdfeval.GetDict(pc.XRef, arg(1))
		if err != nil {
			return nil, err
		}
		wp, err := whitePoint(pc.XRef, d, family)
		if err != nil {
			return nil, err
		}
		cs := &CalRGB{WhitePoint: wp, Gamma: [3]float64{1, 1, 1}, Matrix: [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}}
		if g, err := pdfeval.GetNumbers(pc.XRef, d.GetRaw("Gamma")); err == nil && len(g) == 3 {
			copy(cs.Gamma[:], g)
		}
		if m, err := pdfeval.GetNumbers(pc.XRef, d.GetRaw("Matrix")); err == nil && len(m) == 9 {
			copy(cs.Matrix[:], m)
		}
		return cs, nil

	case "Lab":
		d, err := pdfeval.GetDict(pc.XRef, arg(1))
		if err != nil {
			return nil, err
		}
		wp, err := whitePoint(pc.XRef, d, family)
		if err != nil {
			return nil, err
		}
		cs := &Lab{WhitePoint: wp, Ranges: [4]float64{-100, 100, -100, 100}}
		if r, err := pdfeval.GetNumbers(pc.XRef, d.GetRaw("Range")); err == nil && len(r) == 4 {
			copy(cs.Ranges[:], r)
		}
		return cs, nil

	case "ICCBased":
		if ref, ok := arg(1).(pdfeval.Ref); ok {
			if p.refs.Has(ref) {
				return nil, pdfeval.Errorf("ICC profile %v: %w", ref, pdfeval.ErrCircularReference)
			}
			p = p.withRef(ref)
		}
		s, err := pdfeval.GetStream(pc.XRef, arg(1))
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, pdfeval.Errorf("ICCBased color space without profile")
		}
		return pc.parseICC(s, p)

	case "Pattern":
		if arg(1) == nil {
			return &Pattern{}, nil
		}
		base, err := pc.parse(arg(1), p)
		if err != nil {
			return nil, err
		}
		return &Pattern{Base: base}, nil

	case "I", "Indexed":
		base, err := pc.parse(arg(1), p)
		if err != nil {
			return nil, err
		}
		if _, ok := base.(*Pattern); ok {
			return nil, pdfeval.Errorf("Indexed color space with Pattern base")
		}
		hiVal, err := pdfeval.GetInt(pc.XRef, arg(2))
		if err != nil {
			return nil, err
		}
		hiVal = max(0, min(hiVal, 255))
		lookup, err := pdfeval.Resolve(pc.XRef, arg(3))
		if err != nil {
			return nil, err
		}
		cs := &Indexed{Base: base, HiVal: hiVal}
		switch l := lookup.(type) {
		case string:
			cs.Lookup = []byte(l)
		case *pdfeval.Stream:
			if cs.Lookup, err = l.Decode(); err != nil {
				return nil, err
			}
		default:
			return nil, pdfeval.Errorf("Indexed color space: invalid lookup %s", pdfeval.Format(lookup))
		}
		return cs, nil

	case "Separation", "DeviceN":
		var colorants []string
		if family == "Separation" {
			n, err := pdfeval.GetName(pc.XRef, arg(1))
			if err != nil {
				return nil, err
			}
			colorants = []string{string(n)}
		} else {
			names, err := pdfeval.GetArray(pc.XRef, arg(1))
			if err != nil {
				return nil, err
			}
			for _, e := range names {
				n, err := pdfeval.GetName(pc.XRef, e)
				if err != nil {
					return nil, err
				}
				colorants = append(colorants, string(n))
			}
		}
		if len(colorants) == 0 {
			return nil, pdfeval.Errorf("%s color space without colorants", family)
		}
		base, err := pc.parse(arg(2), p)
		if err != nil {
			return nil, err
		}
		tint, err := function.Parse(pc.XRef, arg(3))
		if err != nil {
			return nil, err
		}
		return &Alternate{Family: string(family), Colorants: colorants, Base: base, Tint: tint}, nil
	}

	return nil, pdfeval.Errorf("unknown color space family /%s", family)
}

func (pc ParseContext) parseICC(s *pdfeval.Stream, p path) (ColorSpace, error) {
	if alt := s.Dict.GetRaw("Alternate"); alt != nil {
		cs, err := pc.parse(alt, p)
		switch {
		case err == nil:
			return cs, nil
		case errors.Is(err, pdfeval.ErrCircularReference), !pdfeval.IsFormatError(err):
			return nil, err
		}
		// A malformed Alternate falls back to the component count.
	}
	n, err := pdfeval.GetInt(pc.XRef, s.Dict.GetRaw("N"))
	if err != nil {
		return nil, err
	}
	switch n {
	case 1:
		return DeviceGray, nil
	case 3:
		return DeviceRGB, nil
	case 4:
		return DeviceCMYK, nil
	}
	return nil, pdfeval.Errorf("ICCBased color space with %d components", n)
}

func whitePoint(x pdfeval.XRef, d *pdfeval.Dict, family pdfeval.Name) ([3]float64, error) {
	var wp [3]float64
	nums, err := pdfeval.GetNumbers(x, d.GetRaw("WhitePoint"))
	if err != nil {
		return wp, err
	}
	if len(nums) != 3 {
		return wp, pdfeval.Errorf("%s color space: WhitePoint missing", family)
	}
	copy(wp[:], nums)
	return wp, nil
}
