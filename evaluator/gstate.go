package evaluator

import (
	"context"
	"log/slog"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/function"
	"github.com/ScriptRock/pdfeval/oplist"
)

// blendModes maps PDF blend modes to their canvas names.
var blendModes = map[pdfeval.Name]string{
	"Normal":     "source-over",
	"Compatible": "source-over",
	"Multiply":   "multiply",
	"Screen":     "screen",
	"Overlay":    "overlay",
	"Darken":     "darken",
	"Lighten":    "lighten",
	"ColorDodge": "color-dodge",
	"ColorBurn":  "color-burn",
	"HardLight":  "hard-light",
	"SoftLight":  "soft-light",
	"Difference": "difference",
	"Exclusion":  "exclusion",
	"Hue":        "hue",
	"Saturation": "saturation",
	"Color":      "color",
	"Luminosity": "luminosity",
}

// NormalizeBlendMode returns the canvas name of a BM entry. For an array
// the first supported mode wins; unsupported modes map to "source-over".
func NormalizeBlendMode(v pdfeval.Object) string {
	if a, ok := v.(pdfeval.Array); ok {
		for _, m := range a {
			if n, ok := m.(pdfeval.Name); ok {
				if bm, ok := blendModes[n]; ok {
					return bm
				}
			}
		}
		slog.Warn("unsupported blend mode array", slog.String("bm", pdfeval.Format(v)))
		return "source-over"
	}
	n, ok := v.(pdfeval.Name)
	if !ok {
		return "source-over"
	}
	if bm, ok := blendModes[n]; ok {
		return bm
	}
	slog.Warn("unsupported blend mode", slog.String("bm", string(n)))
	return "source-over"
}

// setGStateByName handles the gs operator.
func (e *Evaluator) setGStateByName(ctx context.Context, c *opCall, arg pdfeval.Object) error {
	name, ok := arg.(pdfeval.Name)
	if !ok {
		return pdfeval.Errorf("GState must be referred to by name")
	}
	if entries, ok := c.gStates.GetByName(name); ok {
		if len(entries) > 0 {
			c.ol.AddOp(oplist.OpSetGState, entries)
		}
		return nil
	}

	gs, err := e.extGState(ctx, c.resources, name)
	if err != nil {
		return err
	}
	return e.setGState(ctx, c, gs, name)
}

// extGState looks up a graphics state parameter dictionary by name.
func (e *Evaluator) extGState(ctx context.Context, resources *pdfeval.Dict, name pdfeval.Name) (*pdfeval.Dict, error) {
	return retry(ctx, e, func() (*pdfeval.Dict, error) {
		ext, err := resources.Get("ExtGState")
		if err != nil {
			return nil, err
		}
		extDict, ok := ext.(*pdfeval.Dict)
		if !ok {
			return nil, pdfeval.Errorf("ExtGState should be a dictionary")
		}
		v, err := extDict.Get(name)
		if err != nil {
			return nil, err
		}
		d, ok := v.(*pdfeval.Dict)
		if !ok {
			return nil, pdfeval.Errorf("GState %s should be a dictionary", name)
		}
		return d, nil
	})
}

// setGState emits a setGState operation with the entries of gs that the
// consumer understands. Graphics states without fonts or soft masks are
// cached by cacheKey.
func (e *Evaluator) setGState(ctx context.Context, c *opCall, gs *pdfeval.Dict, cacheKey pdfeval.Name) error {
	simple := true
	var entries [][2]any
	for _, key := range gs.Keys() {
		value, err := gs.Get(key)
		if err != nil {
			return err
		}
		k := string(key)
		switch key {
		case "Type":
		case "LW", "LC", "LJ", "ML", "D", "RI", "FL", "CA", "ca":
			entries = append(entries, [2]any{k, plain(value)})
		case "Font":
			simple = false
			a, ok := value.(pdfeval.Array)
			if !ok || len(a) != 2 {
				e.log.Warn("invalid Font entry in graphics state")
				continue
			}
			loadedName, err := e.handleSetFont(ctx, c.resources, "", a[0], c.ol, c.state())
			if err != nil {
				return err
			}
			c.ol.AddDependency(loadedName)
			entries = append(entries, [2]any{k, []any{loadedName, num(a[1])}})
		case "BM":
			entries = append(entries, [2]any{k, NormalizeBlendMode(value)})
		case "SMask":
			switch v := value.(type) {
			case pdfeval.Name:
				if v == "None" {
					entries = append(entries, [2]any{k, false})
				}
			case *pdfeval.Dict:
				simple = false
				if err := e.handleSMask(ctx, c, v); err != nil {
					return err
				}
				entries = append(entries, [2]any{k, true})
			default:
				e.log.Warn("unsupported SMask type")
			}
		case "TR":
			entries = append(entries, [2]any{k, e.transferMaps(value)})
		case "OP", "op", "OPM", "BG", "BG2", "UCR", "UCR2", "TR2", "HT", "SM", "SA", "AIS", "TK":
			e.log.Info("graphic state operator", slog.String("key", k))
		default:
			e.log.Info("unknown graphic state operator", slog.String("key", k))
		}
	}
	if len(entries) > 0 {
		c.ol.AddOp(oplist.OpSetGState, entries)
	}
	if simple {
		c.gStates.Set(cacheKey, gs.Ref, entries)
	}
	return nil
}

// transferMaps samples a TR entry: one function for all components or
// four, one per component. Identity functions yield a nil map. The result
// is nil when no function has an effect.
func (e *Evaluator) transferMaps(tr pdfeval.Object) [][]byte {
	var fns pdfeval.Array
	switch tr := tr.(type) {
	case pdfeval.Array:
		fns = tr
	case *pdfeval.Dict, *pdfeval.Stream:
		if !isFunction(tr) {
			return nil
		}
		fns = pdfeval.Array{tr}
	default:
		return nil
	}
	if len(fns) != 1 && len(fns) != 4 {
		return nil
	}
	maps := make([][]byte, 0, len(fns))
	effectful := 0
	for _, entry := range fns {
		obj, err := pdfeval.Resolve(e.xref, entry)
		if err != nil {
			return nil
		}
		if n, ok := obj.(pdfeval.Name); ok && n == "Identity" {
			maps = append(maps, nil)
			continue
		}
		if !isFunction(obj) {
			return nil
		}
		fn, err := function.Parse(e.xref, obj)
		if err != nil {
			e.log.Warn("invalid transfer function", slog.Any("err", err))
			return nil
		}
		maps = append(maps, sampleTransfer(fn))
		effectful++
	}
	if effectful == 0 {
		return nil
	}
	return maps
}
