package evaluator

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/internal/state"
	"github.com/ScriptRock/pdfeval/oplist"
	"github.com/ScriptRock/pdfeval/pattern"
)

// tilingEntry is a compiled tiling pattern kept for the rest of a call.
type tilingEntry struct {
	ol   *oplist.OperatorList
	dict *pdfeval.Dict
}

// handleColorN handles scn and SCN in a Pattern color space. The last
// operand names the pattern; the others are the color of an uncolored
// tiling pattern.
func (e *Evaluator) handleColorN(ctx context.Context, c *opCall, fn oplist.OpCode, args []pdfeval.Object, cs *colorspace.Pattern) error {
	if len(args) == 0 {
		return pdfeval.Errorf("missing pattern name")
	}
	name, ok := args[len(args)-1].(pdfeval.Name)
	if !ok {
		return pdfeval.Errorf("unknown pattern name %s", pdfeval.Format(args[len(args)-1]))
	}
	comps := numbers(args[:len(args)-1])
	color := func() string {
		if cs.Base == nil {
			return ""
		}
		return cs.Base.RGB(comps).Hex()
	}

	raw, err := retry(ctx, e, func() (pdfeval.Object, error) {
		return resource(e.xref, c.resources, "Pattern", name)
	})
	if err != nil {
		return err
	}
	if ref, ok := raw.(pdfeval.Ref); ok {
		if t, ok := c.tilings.GetByRef(ref); ok {
			tiling, err := pattern.NewTiling(e.xref, t.dict, color(), t.ol)
			if err == nil {
				c.ol.AddDependencies(t.ol.Dependencies())
				c.ol.AddOp(fn, tiling.IR()...)
				return nil
			}
		}
	}

	obj, err := retry(ctx, e, func() (pdfeval.Object, error) { return pdfeval.Resolve(e.xref, raw) })
	if err != nil {
		return err
	}
	var dict *pdfeval.Dict
	var content *pdfeval.Stream
	switch o := obj.(type) {
	case *pdfeval.Dict:
		dict = o
	case *pdfeval.Stream:
		dict, content = o.Dict, o
	default:
		return pdfeval.Errorf("unknown pattern name %s", name)
	}

	typ, _ := pdfeval.GetInt(e.xref, dict.GetRaw("PatternType"))
	switch typ {
	case pattern.TypeTiling:
		if content == nil {
			return pdfeval.Errorf("tiling pattern %s is not a stream", name)
		}
		return e.handleTilingType(ctx, c, fn, color(), content)
	case pattern.TypeShading:
		id, err := e.parseShading(ctx, c, dict.GetRaw("Shading"))
		if err != nil || id == "" {
			return err
		}
		var m any
		if mat, ok := pdfeval.GetMatrix(e.xref, dict.GetRaw("Matrix")); ok {
			m = mat
		}
		c.ol.AddOp(fn, "Shading", id, m)
		return nil
	}
	return pdfeval.Errorf("unknown PatternType %d", typ)
}

// handleTilingType compiles the content of a tiling pattern into its own
// operator list. Its resources fall back to those of the caller.
func (e *Evaluator) handleTilingType(ctx context.Context, c *opCall, fn oplist.OpCode, color string, s *pdfeval.Stream) error {
	dict := s.Dict
	ref := s.Ref()
	if !ref.IsZero() && c.forms.Has(ref) {
		return pdfeval.Errorf("ignoring circular reference to pattern %s: %w", ref, pdfeval.ErrCircularReference)
	}
	if c.depth >= e.opts.MaxFormDepth {
		return pdfeval.Errorf("patterns nested deeper than %d", e.opts.MaxFormDepth)
	}
	own, err := pdfeval.GetDict(e.xref, dict.GetRaw("Resources"))
	if err != nil {
		return err
	}
	data, err := s.Decode()
	if err != nil {
		return err
	}

	forms := c.forms.Clone()
	if !ref.IsZero() {
		forms.Add(ref)
	}
	ol := oplist.New(nil)
	if err := e.operatorList(ctx, data, pdfeval.Merge(own, c.resources), ol, state.NewGraphics(), forms, c.depth+1); err != nil {
		return err
	}
	tiling, err := pattern.NewTiling(e.xref, dict, color, ol)
	if err != nil {
		return err
	}
	c.ol.AddDependencies(ol.Dependencies())
	c.ol.AddOp(fn, tiling.IR()...)
	if !ref.IsZero() {
		c.tilings.Set("", ref, &tilingEntry{ol: ol, dict: dict})
	}
	return nil
}

// shadingFill resolves the operand of sh. It returns an empty id for
// shadings that failed before in lenient mode.
func (e *Evaluator) shadingFill(ctx context.Context, c *opCall, arg pdfeval.Object) (string, error) {
	name, ok := arg.(pdfeval.Name)
	if !ok {
		return "", pdfeval.Errorf("shading must be referred to by name")
	}
	shading, err := retry(ctx, e, func() (pdfeval.Object, error) {
		res, err := c.resources.Get("Shading")
		if err != nil {
			return nil, err
		}
		d, ok := res.(*pdfeval.Dict)
		if !ok {
			return nil, pdfeval.Errorf("no shading resource found")
		}
		sh := d.GetRaw(name)
		if sh == nil {
			return nil, pdfeval.Errorf("no shading object found")
		}
		return sh, nil
	})
	if err != nil {
		return "", err
	}
	return e.parseShading(ctx, c, shading)
}

// parseShading sends the IR of a shading and returns its id. Shadings
// are cached per call by dictionary, since they are often direct objects.
func (e *Evaluator) parseShading(ctx context.Context, c *opCall, obj pdfeval.Object) (string, error) {
	resolved, err := retry(ctx, e, func() (pdfeval.Object, error) { return pdfeval.Resolve(e.xref, obj) })
	if err != nil {
		return "", err
	}
	var key *pdfeval.Dict
	switch o := resolved.(type) {
	case *pdfeval.Dict:
		key = o
	case *pdfeval.Stream:
		key = o.Dict
	default:
		return "", pdfeval.Errorf("invalid shading %s", pdfeval.Format(resolved))
	}
	if id, ok := c.shadings[key]; ok {
		return id, nil
	}

	sh, err := retry(ctx, e, func() (pattern.Shading, error) {
		return pattern.ParseShading(colorspace.ParseContext{
			XRef:      e.xref,
			Resources: c.resources,
			Memo:      e.doc.colorSpaces,
		}, resolved)
	})
	if err != nil {
		if ctx.Err() != nil || pdfeval.IsMissingData(err) {
			return "", err
		}
		if !e.opts.IgnoreErrors {
			return "", err
		}
		e.log.Warn("ignoring shading", slog.Any("err", err))
		e.notify(FeatureShading, err)
		c.shadings[key] = ""
		return "", nil
	}
	if d, ok := sh.(*pattern.Dummy); ok {
		e.notify(FeatureShading, &pdfeval.UnsupportedError{Feature: "shading type " + strconv.Itoa(d.Type)})
	}

	id := "pattern_" + e.ids.NewObjID()
	if e.parsingType3 {
		id = e.ids.DocID() + "_type3_" + id
	}
	c.shadings[key] = id
	if err := e.send(ctx, &Resource{Kind: ResourcePattern, ID: id, Common: e.parsingType3, Data: sh.IR()}); err != nil {
		return "", err
	}
	return id, nil
}
