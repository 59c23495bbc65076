package font

import (
	"fmt"
	"hash"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/ScriptRock/pdfeval"
)

// A Preview is what is known about a font dictionary before it is
// translated: enough to find an equivalent font that was translated
// already.
type Preview struct {
	// Dict is the font dictionary, or the descendant font of a Type0 font.
	Dict       *pdfeval.Dict
	BaseDict   *pdfeval.Dict
	Descriptor *pdfeval.Dict
	Composite  bool
	Type       string
	FirstChar  int
	LastChar   int
	ToUnicode  pdfeval.Object

	// Hash summarizes the entries that determine how codes are
	// measured and extracted. It is empty for fonts without a
	// descriptor.
	Hash string
}

// Preevaluate resolves the descendant of composite fonts and hashes the
// font.
func Preevaluate(x pdfeval.XRef, d *pdfeval.Dict) (*Preview, error) {
	p := &Preview{Dict: d, BaseDict: d}
	typ, err := pdfeval.GetName(x, d.GetRaw("Subtype"))
	if err != nil || typ == "" {
		return nil, pdfeval.Errorf("invalid font Subtype")
	}
	if typ == "Type0" {
		df, err := pdfeval.Resolve(x, d.GetRaw("DescendantFonts"))
		if err != nil {
			return nil, err
		}
		if a, ok := df.(pdfeval.Array); ok {
			if len(a) == 0 {
				return nil, pdfeval.Errorf("descendant fonts are not specified")
			}
			df = a[0]
		}
		desc, err := pdfeval.GetDict(x, df)
		if err != nil || desc == nil {
			return nil, pdfeval.Errorf("descendant font is not a dictionary")
		}
		p.Dict = desc
		p.Composite = true
		if typ, err = pdfeval.GetName(x, desc.GetRaw("Subtype")); err != nil || typ == "" {
			return nil, pdfeval.Errorf("invalid font Subtype")
		}
	}
	p.Type = string(typ)

	p.FirstChar, p.LastChar = 0, 0xff
	if p.Composite {
		p.LastChar = 0xffff
	}
	if v, ok := p.Dict.GetRaw("FirstChar").(int64); ok {
		p.FirstChar = int(v)
	}
	if v, ok := p.Dict.GetRaw("LastChar").(int64); ok {
		p.LastChar = int(v)
	}

	p.ToUnicode = p.Dict.GetRaw("ToUnicode")
	if p.ToUnicode == nil {
		p.ToUnicode = p.BaseDict.GetRaw("ToUnicode")
	}

	p.Descriptor, err = pdfeval.GetDict(x, p.Dict.GetRaw("FontDescriptor"))
	if err != nil {
		if pdfeval.IsMissingData(err) {
			return nil, err
		}
		p.Descriptor = nil
	}
	if p.Descriptor != nil {
		if p.Hash, err = p.hash(x); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Preview) hash(x pdfeval.XRef) (string, error) {
	h := fnv.New64a()
	put := func(s string) { h.Write([]byte(s)) }

	switch enc := p.BaseDict.GetRaw("Encoding").(type) {
	case pdfeval.Name:
		put(string(enc))
	case pdfeval.Ref:
		put(enc.String())
	case *pdfeval.Dict:
		for _, key := range enc.Keys() {
			switch v := enc.GetRaw(key).(type) {
			case pdfeval.Name:
				put(string(v))
			case pdfeval.Ref:
				put(v.String())
			case pdfeval.Array:
				put(strconv.Itoa(len(v)))
				for _, e := range v {
					switch e := e.(type) {
					case pdfeval.Name:
						put(string(e))
					case int64, float64:
						put(fmt.Sprint(e))
					}
				}
			}
		}
	}
	put(fmt.Sprintf("%d-%d", p.FirstChar, p.LastChar))

	tu, err := pdfeval.Resolve(x, p.ToUnicode)
	if err != nil {
		return "", err
	}
	switch tu := tu.(type) {
	case *pdfeval.Stream:
		raw, err := tu.Raw()
		if err != nil {
			return "", err
		}
		h.Write(raw)
	case pdfeval.Name:
		put(string(tu))
	}

	widths := p.Dict.GetRaw("Widths")
	if widths == nil {
		widths = p.BaseDict.GetRaw("Widths")
	}
	if err := hashNumbers(h, x, widths); err != nil {
		return "", err
	}

	if p.Composite {
		put("compositeFont")
		w := p.Dict.GetRaw("W")
		if w == nil {
			w = p.BaseDict.GetRaw("W")
		}
		if err := hashNumbers(h, x, w); err != nil {
			return "", err
		}

		switch m := p.Dict.GetRaw("CIDToGIDMap").(type) {
		case pdfeval.Name:
			put(string(m))
		case pdfeval.Ref:
			put(m.String())
		}
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}

// hashNumbers hashes an array of numbers, references and nested arrays as
// a comma separated list.
func hashNumbers(h hash.Hash64, x pdfeval.XRef, obj pdfeval.Object) error {
	a, err := pdfeval.GetArray(x, obj)
	if err != nil && !pdfeval.IsFormatError(err) {
		return err
	}
	parts := make([]string, 0, len(a))
	for _, e := range a {
		switch e := e.(type) {
		case int64, float64:
			parts = append(parts, fmt.Sprint(e))
		case pdfeval.Ref:
			parts = append(parts, e.String())
		case pdfeval.Array:
			sub := make([]string, 0, len(e))
			for _, n := range e {
				sub = append(sub, fmt.Sprint(n))
			}
			parts = append(parts, "["+strings.Join(sub, ",")+"]")
		}
	}
	h.Write([]byte(strings.Join(parts, ",")))
	return nil
}
