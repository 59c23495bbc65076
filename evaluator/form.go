package evaluator

import (
	"context"
	"log/slog"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/internal/function"
	"github.com/ScriptRock/pdfeval/oplist"
)

// maxVisibilityNesting bounds the nesting of visibility expressions.
const maxVisibilityNesting = 10

// OptionalContent describes the optional content group or membership
// dictionary that controls the visibility of a marked-content section,
// form or image.
type OptionalContent struct {
	// Type is "OCG" or "OCMD".
	Type string
	// ID is the reference of an OCG.
	ID string
	// IDs and Policy are set for an OCMD listing its groups.
	IDs    []string
	Policy string
	// Expression is a visibility expression: an operator name followed by
	// group ids and nested expressions.
	Expression []any
}

// SMaskOptions describe a soft mask given in a graphics state.
type SMaskOptions struct {
	// Subtype is Alpha or Luminosity.
	Subtype  string
	Backdrop *colorspace.RGB
	// TransferMap maps mask values through the transfer function TR.
	TransferMap []byte

	backdrop []float64
}

// GroupOptions are the arguments of beginGroup and endGroup.
type GroupOptions struct {
	Matrix   *matrix.Matrix
	BBox     *rect.Rect
	SMask    *SMaskOptions
	Isolated bool
	Knockout bool
}

// buildFormXObject emits a form XObject, wrapping the operations of its
// content in paintFormXObjectBegin and End. Forms with a group are also
// wrapped in beginGroup and endGroup; smask is set when the form is a soft
// mask.
func (e *Evaluator) buildFormXObject(ctx context.Context, c *opCall, xobj *pdfeval.Stream, smask *SMaskOptions) error {
	ref := xobj.Ref()
	if !ref.IsZero() && c.forms.Has(ref) {
		return pdfeval.Errorf("ignoring circular reference to form %s: %w", ref, pdfeval.ErrCircularReference)
	}
	if c.depth >= e.opts.MaxFormDepth {
		return pdfeval.Errorf("form XObjects nested deeper than %d", e.opts.MaxFormDepth)
	}

	dict := xobj.Dict
	var mat *matrix.Matrix
	if m, ok := pdfeval.GetMatrix(e.xref, dict.GetRaw("Matrix")); ok {
		mat = &m
	}
	var bbox *rect.Rect
	if r, ok := pdfeval.GetRect(e.xref, dict.GetRaw("BBox")); ok {
		r = rect.Rect{LLx: min(r.LLx, r.URx), LLy: min(r.LLy, r.URy), URx: max(r.LLx, r.URx), URy: max(r.LLy, r.URy)}
		bbox = &r
	}

	var oc *OptionalContent
	if dict.Has("OC") {
		var err error
		if oc, err = e.parseMarkedContentProps(ctx, c.resources, dict.GetRaw("OC")); err != nil {
			return err
		}
	}

	group, err := pdfeval.GetDict(e.xref, dict.GetRaw("Group"))
	if err != nil {
		return err
	}
	var groupOptions *GroupOptions
	if group != nil {
		groupOptions = &GroupOptions{Matrix: mat, BBox: bbox, SMask: smask}
		var cs colorspace.ColorSpace
		if s, _ := pdfeval.GetName(e.xref, group.GetRaw("S")); s == "Transparency" {
			groupOptions.Isolated, _ = pdfeval.GetBool(e.xref, group.GetRaw("I"))
			groupOptions.Knockout, _ = pdfeval.GetBool(e.xref, group.GetRaw("K"))
			if group.Has("CS") {
				if cs, err = e.parseColorSpace(ctx, c.resources, group.GetRaw("CS")); err != nil {
					return err
				}
			}
		}
		if smask != nil && smask.backdrop != nil {
			if cs == nil {
				cs = colorspace.DeviceRGB
			}
			rgb := cs.RGB(smask.backdrop)
			smask.Backdrop = &rgb
		}
	}

	resources, err := pdfeval.GetDict(e.xref, dict.GetRaw("Resources"))
	if err != nil {
		return err
	}
	if resources == nil {
		resources = c.resources
	}
	data, err := xobj.Decode()
	if err != nil {
		return err
	}

	if oc != nil {
		c.ol.AddOp(oplist.OpBeginMarkedContentProps, "OC", oc)
	}
	var matArg, bboxArg any
	if mat != nil {
		matArg = *mat
	}
	if groupOptions != nil {
		c.ol.AddOp(oplist.OpBeginGroup, groupOptions)
	} else if bbox != nil {
		bboxArg = *bbox
	}
	c.ol.AddOp(oplist.OpPaintFormXObjectBegin, matArg, bboxArg)

	forms := c.forms.Clone()
	if !ref.IsZero() {
		forms.Add(ref)
	}
	if err := e.operatorList(ctx, data, resources, c.ol, c.state().Clone(), forms, c.depth+1); err != nil {
		return err
	}

	c.ol.AddOp(oplist.OpPaintFormXObjectEnd)
	if groupOptions != nil {
		c.ol.AddOp(oplist.OpEndGroup, groupOptions)
	}
	if oc != nil {
		c.ol.AddOp(oplist.OpEndMarkedContent)
	}
	return nil
}

// handleSMask emits the form of a soft mask dictionary.
func (e *Evaluator) handleSMask(ctx context.Context, c *opCall, smask *pdfeval.Dict) error {
	g, err := pdfeval.GetStream(e.xref, smask.GetRaw("G"))
	if err != nil {
		return err
	}
	if g == nil {
		return pdfeval.Errorf("soft mask without a form")
	}
	subtype, _ := pdfeval.GetName(e.xref, smask.GetRaw("S"))
	opts := &SMaskOptions{Subtype: string(subtype)}
	if bc, err := pdfeval.GetNumbers(e.xref, smask.GetRaw("BC")); err == nil && len(bc) > 0 {
		opts.backdrop = bc
	}
	if tr, err := pdfeval.Resolve(e.xref, smask.GetRaw("TR")); err == nil && isFunction(tr) {
		fn, err := function.Parse(e.xref, tr)
		if err != nil {
			return err
		}
		opts.TransferMap = sampleTransfer(fn)
	}
	return e.buildFormXObject(ctx, c, g, opts)
}

func isFunction(obj pdfeval.Object) bool {
	switch o := obj.(type) {
	case *pdfeval.Dict:
		return o.Has("FunctionType")
	case *pdfeval.Stream:
		return o.Dict.Has("FunctionType")
	}
	return false
}

// sampleTransfer evaluates a transfer function at 256 points.
func sampleTransfer(fn function.Func) []byte {
	m := make([]byte, 256)
	for i := range m {
		out := fn.Apply(float64(i) / 255)
		if len(out) > 0 {
			m[i] = byte(max(0, min(255, int(out[0]*255))))
		}
	}
	return m
}

// parseMarkedContentProps reads the properties of an optional content
// section: a name in the Properties resources or an inline dictionary.
// It returns nil for properties that are neither an OCG nor a usable OCMD.
func (e *Evaluator) parseMarkedContentProps(ctx context.Context, resources *pdfeval.Dict, obj pdfeval.Object) (*OptionalContent, error) {
	var props *pdfeval.Dict
	switch o := obj.(type) {
	case pdfeval.Name:
		var err error
		props, err = retry(ctx, e, func() (*pdfeval.Dict, error) {
			p, err := resource(e.xref, resources, "Properties", o)
			if err != nil {
				return nil, err
			}
			return pdfeval.GetDict(e.xref, p)
		})
		if err != nil {
			return nil, err
		}
	default:
		d, err := pdfeval.GetDict(e.xref, o)
		if err != nil {
			return nil, pdfeval.Errorf("optional content properties malformed")
		}
		props = d
	}
	if props == nil {
		return nil, pdfeval.Errorf("optional content properties malformed")
	}

	typ, _ := pdfeval.GetName(e.xref, props.GetRaw("Type"))
	switch typ {
	case "OCG":
		return &OptionalContent{Type: "OCG", ID: props.Ref.String()}, nil
	case "OCMD":
		if ve, err := pdfeval.GetArray(e.xref, props.GetRaw("VE")); err == nil && ve != nil {
			if expr := e.visibilityExpression(ve, 0); len(expr) > 0 {
				return &OptionalContent{Type: "OCMD", Expression: expr}, nil
			}
		}
		ocgs, err := pdfeval.Resolve(e.xref, props.GetRaw("OCGs"))
		if err != nil {
			return nil, err
		}
		var policy string
		if p, err := pdfeval.GetName(e.xref, props.GetRaw("P")); err == nil {
			policy = string(p)
		}
		switch ocgs := ocgs.(type) {
		case pdfeval.Array:
			ids := make([]string, 0, len(ocgs))
			for _, g := range ocgs {
				if r, ok := g.(pdfeval.Ref); ok {
					ids = append(ids, r.String())
				}
			}
			return &OptionalContent{Type: "OCMD", IDs: ids, Policy: policy}, nil
		case *pdfeval.Dict:
			return &OptionalContent{Type: "OCMD", IDs: []string{ocgs.Ref.String()}, Policy: policy}, nil
		}
	}
	return nil, nil
}

// visibilityExpression converts a VE array, see
// PDF_ISO_32000-2: 8.11.2.3 Optional content membership dictionaries
func (e *Evaluator) visibilityExpression(a pdfeval.Array, depth int) []any {
	depth++
	if depth > maxVisibilityNesting {
		e.log.Warn("visibility expression is too deeply nested")
		return nil
	}
	if len(a) < 2 {
		e.log.Warn("invalid visibility expression")
		return nil
	}
	op, err := pdfeval.GetName(e.xref, a[0])
	if err != nil {
		e.log.Warn("invalid visibility expression")
		return nil
	}
	switch op {
	case "And", "Or", "Not":
	default:
		e.log.Warn("invalid operator in visibility expression", slog.String("op", string(op)))
		return nil
	}
	expr := []any{string(op)}
	for _, raw := range a[1:] {
		obj, err := pdfeval.Resolve(e.xref, raw)
		if err != nil {
			continue
		}
		if nested, ok := obj.(pdfeval.Array); ok {
			expr = append(expr, e.visibilityExpression(nested, depth))
		} else if r, ok := raw.(pdfeval.Ref); ok {
			expr = append(expr, r.String())
		}
	}
	return expr
}
