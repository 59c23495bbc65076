package evaluator

import (
	"context"
	"io"
	"log/slog"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/cache"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/internal/scheduler"
	"github.com/ScriptRock/pdfeval/internal/state"
	"github.com/ScriptRock/pdfeval/oplist"
)

// opCall is one evaluation of a content stream into an operator list.
// Forms, tiling patterns and glyph procedures each get their own.
type opCall struct {
	resources *pdfeval.Dict
	ol        *oplist.OperatorList
	pre       *preprocessor[*state.Graphics]

	// forms holds the form XObjects being evaluated, outermost first.
	forms pdfeval.RefSet
	depth int

	parsingText bool

	images      *cache.Local[*cachedImage]
	colorSpaces *cache.Local[colorspace.ColorSpace]
	gStates     *cache.Local[[][2]any]
	tilings     *cache.Local[*tilingEntry]
	shadings    map[*pdfeval.Dict]string
}

func (c *opCall) state() *state.Graphics { return c.pre.stack.State }

// GetOperatorList evaluates content with the given resources and appends
// the drawing operations to ol. Unmatched q operators are closed. When
// ctx is cancelled evaluation stops and nil is returned.
func (e *Evaluator) GetOperatorList(ctx context.Context, content []byte, resources *pdfeval.Dict, ol *oplist.OperatorList) error {
	err := e.operatorList(ctx, content, resources, ol, state.NewGraphics(), pdfeval.RefSet{}, 0)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (e *Evaluator) operatorList(ctx context.Context, content []byte, resources *pdfeval.Dict, ol *oplist.OperatorList, initial *state.Graphics, forms pdfeval.RefSet, depth int) error {
	c := &opCall{
		resources:   resources,
		ol:          ol,
		pre:         newPreprocessor(content, initial, e.log),
		forms:       forms,
		depth:       depth,
		images:      cache.NewLocal[*cachedImage](),
		colorSpaces: cache.NewLocal[colorspace.ColorSpace](),
		gStates:     cache.NewLocal[[][2]any](),
		tilings:     cache.NewLocal[*tilingEntry](),
		shadings:    make(map[*pdfeval.Dict]string),
	}

	err := e.runOperatorList(ctx, c)
	if err != nil && ctx.Err() == nil && e.opts.IgnoreErrors && !pdfeval.IsMissingData(err) {
		e.log.Warn("ignoring errors during operator list", slog.Any("err", err))
		e.notify(FeatureOperatorList, err)
		err = nil
	}
	if err != nil {
		return err
	}
	for i := c.pre.depth(); i > 0; i-- {
		ol.AddOp(oplist.OpRestore)
	}
	return nil
}

func (e *Evaluator) runOperatorList(ctx context.Context, c *opCall) error {
	slot := scheduler.New(e.opts.TimeSlice, e.opts.CheckEvery)
	slot.Reset()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if slot.Check() {
			if err := e.yield(ctx, c.ol); err != nil {
				return err
			}
			slot.Reset()
		}

		op, err := c.pre.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := e.dispatch(ctx, c, op); err != nil {
			return err
		}
		if err := c.ol.Err(); err != nil {
			return err
		}
	}
}

// dispatch handles one operation. Resource lookups complete before it
// returns, so operations reach the list in content order.
func (e *Evaluator) dispatch(ctx context.Context, c *opCall, op operation) error {
	fn, args := op.fn, op.args
	st := c.state()

	switch fn {
	case oplist.OpPaintXObject:
		return e.tolerate(ctx, FeatureXObject, e.paintXObject(ctx, c, args[0]))

	case oplist.OpSetFont:
		return e.setFont(ctx, c, args)

	case oplist.OpBeginText:
		c.parsingText = true
	case oplist.OpEndText:
		c.parsingText = false

	case oplist.OpEndInlineImage:
		s, ok := args[0].(*pdfeval.Stream)
		if !ok {
			return e.tolerate(ctx, FeatureImage, pdfeval.Errorf("inline image without data"))
		}
		return e.tolerate(ctx, FeatureImage, e.buildPaintImage(ctx, c, s, "", true))

	case oplist.OpShowText, oplist.OpShowSpacedText, oplist.OpNextLineShowText, oplist.OpNextLineSetSpacingShowText:
		return e.showText(ctx, c, fn, args)

	case oplist.OpSetTextRenderingMode:
		st.TextRenderingMode = int(num(args[0]))

	case oplist.OpSetFillColorSpace, oplist.OpSetStrokeColorSpace:
		cs, err := e.colorSpaceOperand(ctx, c, args[0])
		if err := e.tolerate(ctx, FeatureColorSpace, err); err != nil {
			return err
		}
		if cs == nil {
			cs = colorspace.DeviceGray
		}
		set := oplist.OpSetFillRGBColor
		if fn == oplist.OpSetFillColorSpace {
			st.FillColorSpace = cs
		} else {
			st.StrokeColorSpace = cs
			set = oplist.OpSetStrokeRGBColor
		}
		if _, ok := cs.(*colorspace.Pattern); !ok {
			c.ol.AddOp(set, cs.RGB(cs.DefaultColor()).Hex())
		}
		return nil

	case oplist.OpSetFillColor:
		c.ol.AddOp(oplist.OpSetFillRGBColor, st.FillColorSpace.RGB(numbers(args)).Hex())
		return nil
	case oplist.OpSetStrokeColor:
		c.ol.AddOp(oplist.OpSetStrokeRGBColor, st.StrokeColorSpace.RGB(numbers(args)).Hex())
		return nil
	case oplist.OpSetFillGray:
		st.FillColorSpace = colorspace.DeviceGray
		c.ol.AddOp(oplist.OpSetFillRGBColor, colorspace.DeviceGray.RGB(numbers(args)).Hex())
		return nil
	case oplist.OpSetStrokeGray:
		st.StrokeColorSpace = colorspace.DeviceGray
		c.ol.AddOp(oplist.OpSetStrokeRGBColor, colorspace.DeviceGray.RGB(numbers(args)).Hex())
		return nil
	case oplist.OpSetFillCMYKColor:
		st.FillColorSpace = colorspace.DeviceCMYK
		c.ol.AddOp(oplist.OpSetFillRGBColor, colorspace.DeviceCMYK.RGB(numbers(args)).Hex())
		return nil
	case oplist.OpSetStrokeCMYKColor:
		st.StrokeColorSpace = colorspace.DeviceCMYK
		c.ol.AddOp(oplist.OpSetStrokeRGBColor, colorspace.DeviceCMYK.RGB(numbers(args)).Hex())
		return nil
	case oplist.OpSetFillRGBColor:
		st.FillColorSpace = colorspace.DeviceRGB
		c.ol.AddOp(oplist.OpSetFillRGBColor, colorspace.DeviceRGB.RGB(numbers(args)).Hex())
		return nil
	case oplist.OpSetStrokeRGBColor:
		st.StrokeColorSpace = colorspace.DeviceRGB
		c.ol.AddOp(oplist.OpSetStrokeRGBColor, colorspace.DeviceRGB.RGB(numbers(args)).Hex())
		return nil

	case oplist.OpSetFillColorN, oplist.OpSetStrokeColorN:
		cs := st.FillColorSpace
		rgb := oplist.OpSetFillRGBColor
		if fn == oplist.OpSetStrokeColorN {
			cs = st.StrokeColorSpace
			rgb = oplist.OpSetStrokeRGBColor
		}
		if p, ok := cs.(*colorspace.Pattern); ok {
			return e.tolerate(ctx, FeaturePattern, e.handleColorN(ctx, c, fn, args, p))
		}
		c.ol.AddOp(rgb, cs.RGB(numbers(args)).Hex())
		return nil

	case oplist.OpShadingFill:
		id, err := e.shadingFill(ctx, c, args[0])
		if err := e.tolerate(ctx, FeatureShading, err); err != nil || id == "" {
			return err
		}
		c.ol.AddOp(oplist.OpShadingFill, id)
		return nil

	case oplist.OpBeginMarkedContentProps:
		tag, ok := args[0].(pdfeval.Name)
		if !ok {
			e.log.Warn("expected name for beginMarkedContentProps", slog.String("arg", pdfeval.Format(args[0])))
			c.ol.AddOp(oplist.OpBeginMarkedContentProps, "OC", nil)
			return nil
		}
		if tag == "OC" {
			oc, err := e.parseMarkedContentProps(ctx, c.resources, args[1])
			if err := e.tolerate(ctx, FeatureMarkedContent, err); err != nil {
				return err
			}
			if oc == nil {
				c.ol.AddOp(oplist.OpBeginMarkedContentProps, "OC", nil)
			} else {
				c.ol.AddOp(oplist.OpBeginMarkedContentProps, "OC", oc)
			}
			return nil
		}
		var mcid any
		if d, err := pdfeval.GetDict(e.xref, args[1]); err == nil && d != nil {
			if v, ok := d.GetRaw("MCID").(int64); ok {
				mcid = int(v)
			}
		}
		c.ol.AddOp(oplist.OpBeginMarkedContentProps, string(tag), mcid)
		return nil

	case oplist.OpMarkPoint, oplist.OpMarkPointProps, oplist.OpBeginCompat, oplist.OpEndCompat:
		return nil

	case oplist.OpSetGState:
		return e.tolerate(ctx, FeatureExtGState, e.setGStateByName(ctx, c, args[0]))

	case oplist.OpMoveTo, oplist.OpLineTo, oplist.OpCurveTo, oplist.OpCurveTo2, oplist.OpCurveTo3, oplist.OpClosePath, oplist.OpRectangle:
		c.ol.AddPath(fn, numbers(args), c.parsingText)
		return nil
	}

	if hasDict(args) {
		e.log.Warn("ignoring operator with a dictionary operand", slog.String("op", fn.String()))
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		out[i] = plain(a)
	}
	c.ol.AddOp(fn, out...)
	return nil
}

// colorSpaceOperand resolves the operand of cs and CS, which names a
// device family or a ColorSpace resource.
func (e *Evaluator) colorSpaceOperand(ctx context.Context, c *opCall, obj pdfeval.Object) (colorspace.ColorSpace, error) {
	name, isName := obj.(pdfeval.Name)
	if isName {
		if cs, ok := c.colorSpaces.GetByName(name); ok {
			return cs, nil
		}
	}
	cs, err := e.parseColorSpace(ctx, c.resources, obj)
	if err != nil {
		return nil, err
	}
	if isName {
		var ref pdfeval.Ref
		if r, err := resource(e.xref, c.resources, "ColorSpace", name); err == nil {
			ref, _ = r.(pdfeval.Ref)
		}
		c.colorSpaces.Set(name, ref, cs)
	}
	return cs, nil
}
