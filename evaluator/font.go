package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"seehuhn.de/go/geom/rect"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/font"
	"github.com/ScriptRock/pdfeval/internal/state"
	"github.com/ScriptRock/pdfeval/oplist"
)

// type3IgnoredGState are the graphics state entries that have no effect in
// the glyph procedures of an uncolored Type3 font.
var type3IgnoredGState = map[string]bool{
	"TR": true, "TR2": true, "HT": true, "BG": true, "BG2": true, "UCR": true, "UCR2": true,
}

// setFont handles the Tf operator.
func (e *Evaluator) setFont(ctx context.Context, c *opCall, args []pdfeval.Object) error {
	name, _ := args[0].(pdfeval.Name)
	loadedName, err := e.handleSetFont(ctx, c.resources, name, nil, c.ol, c.state())
	if err != nil {
		return err
	}
	c.ol.AddDependency(loadedName)
	c.ol.AddOp(oplist.OpSetFont, loadedName, num(args[1]))
	return nil
}

// handleSetFont loads the font named by name in the Font resources, or
// the one fontRef points to, makes it the current font of st and sends it
// to the consumer. It returns the loaded name of the font.
func (e *Evaluator) handleSetFont(ctx context.Context, resources *pdfeval.Dict, name pdfeval.Name, fontRef pdfeval.Object, ol *oplist.OperatorList, st *state.Graphics) (string, error) {
	f, ref, err := e.loadFont(ctx, name, fontRef, resources)
	if err != nil {
		return "", err
	}
	if f.Type3 {
		err := e.loadType3(ctx, f, ref, resources)
		switch {
		case err == nil:
			if ol != nil {
				ol.AddDependencies(f.Type3Dependencies)
			}
		case ctx.Err() != nil || pdfeval.IsMissingData(err):
			return "", err
		case errors.Is(err, pdfeval.ErrCircularReference) && !e.opts.IgnoreErrors:
			return "", err
		default:
			e.log.Warn("Type3 font load error", slog.String("font", string(name)), slog.Any("err", err))
			e.notify(FeatureFontType3, err)
			f = font.NewErrorFont(pdfeval.Wrap(err, "Type3 font load error"))
		}
	}
	if st != nil {
		st.Font = f
	}
	if f.MarkSent() {
		if err := e.send(ctx, &Resource{Kind: ResourceFont, ID: f.LoadedName, Common: true, Data: f}); err != nil {
			return "", err
		}
	}
	return f.LoadedName, nil
}

// errorFont logs why a font could not be loaded and returns the font used
// in its place.
func (e *Evaluator) errorFont(name pdfeval.Name, err error) *font.Font {
	e.log.Warn("cannot load font", slog.String("font", string(name)), slog.Any("err", err))
	e.notify(FeatureFontLoad, err)
	return font.NewErrorFont(err)
}

// loadFont returns the translated font for a font resource together with
// the reference it was fetched by. Fonts are cached per document by
// reference, and fonts with equal descriptors and hashes share a font id.
// Fonts that cannot be loaded yield an error font; the returned error is
// reserved for cancellation, missing data and Type3 cycles.
func (e *Evaluator) loadFont(ctx context.Context, name pdfeval.Name, fontRef pdfeval.Object, resources *pdfeval.Dict) (*font.Font, pdfeval.Ref, error) {
	if fontRef == nil && name != "" {
		var err error
		if fontRef, err = resource(e.xref, resources, "Font", name); err != nil {
			if pdfeval.IsMissingData(err) {
				return nil, pdfeval.Ref{}, err
			}
			e.log.Warn("invalid Font resources", slog.Any("err", err))
		}
	}

	ref, isRef := fontRef.(pdfeval.Ref)
	var obj pdfeval.Object
	if isRef {
		if e.type3Refs.Has(ref) {
			return nil, ref, pdfeval.Errorf("Type3 font %s refers to itself: %w", ref, pdfeval.ErrCircularReference)
		}
		if p, ok := e.doc.fonts.Get(fontKey{ref: ref}); ok {
			f, err := p.Wait(ctx)
			return f, ref, err
		}
		var err error
		obj, err = retry(ctx, e, func() (pdfeval.Object, error) { return pdfeval.Resolve(e.xref, ref) })
		if pdfeval.IsMissingData(err) || ctx.Err() != nil {
			return nil, ref, err
		}
		if err != nil {
			e.log.Warn("cannot fetch font", slog.Any("ref", ref), slog.Any("err", err))
		}
	} else {
		obj = fontRef
	}

	dict, ok := obj.(*pdfeval.Dict)
	if !ok {
		err := pdfeval.Errorf("font %q is not available", name)
		if !e.opts.IgnoreErrors && !e.parsingType3 {
			return e.errorFont(name, err), ref, nil
		}
		e.log.Warn("using fallback font", slog.String("font", string(name)))
		dict = e.doc.fallbackFont()
		ref, isRef = pdfeval.Ref{}, false
	}

	if !isRef {
		if p, ok := e.doc.fonts.Get(fontKey{dict: dict}); ok {
			f, err := p.Wait(ctx)
			return f, ref, err
		}
	}

	preview, err := retry(ctx, e, func() (*font.Preview, error) { return font.Preevaluate(e.xref, dict) })
	if pdfeval.IsMissingData(err) || ctx.Err() != nil {
		return nil, ref, err
	}
	if err != nil {
		return e.errorFont(name, err), ref, nil
	}

	var fontID string
	if preview.Hash != "" && preview.Descriptor != nil {
		var prev pdfeval.Ref
		fontID, prev = e.doc.alias(preview.Descriptor, preview.Hash, ref)
		if isRef && !prev.IsZero() {
			if p, ok := e.doc.fonts.Get(fontKey{ref: prev}); ok {
				f, err := e.doc.fonts.Put(fontKey{ref: ref}, p).Wait(ctx)
				return f, ref, err
			}
		}
	} else {
		fontID = e.ids.NewFontID()
	}

	key := fontKey{ref: ref}
	if !isRef {
		key = fontKey{dict: dict}
	}
	p, created := e.doc.fonts.GetOrCreate(key)
	if !created {
		f, err := p.Wait(ctx)
		return f, ref, err
	}

	loadedName := e.ids.DocID() + "_" + fontID
	f, err := retry(ctx, e, func() (*font.Font, error) {
		return e.doc.translator.Translate(ctx, e.xref, preview, loadedName)
	})
	switch {
	case ctx.Err() != nil || pdfeval.IsMissingData(err):
		e.doc.fonts.Delete(key)
		p.Resolve(nil, err)
		return nil, ref, err
	case err != nil:
		e.log.Warn("cannot translate font", slog.String("font", string(name)), slog.Any("err", err))
		e.notify(FeatureFontLoad, err)
		f = font.NewErrorFont(err)
		f.LoadedName = loadedName
	}
	p.Resolve(f, nil)
	return f, ref, nil
}

// loadType3 evaluates the glyph procedures of a Type3 font once per
// document.
func (e *Evaluator) loadType3(ctx context.Context, f *font.Font, ref pdfeval.Ref, resources *pdfeval.Dict) error {
	if slices.Contains(e.type3Fonts, f) {
		return pdfeval.Errorf("Type3 font %s refers to itself: %w", f.Name, pdfeval.ErrCircularReference)
	}
	p, created := e.doc.type3.GetOrCreate(f)
	if !created {
		_, err := p.Wait(ctx)
		return err
	}
	err := e.type3Evaluator(f, ref).loadCharProcs(ctx, f, resources)
	if ctx.Err() != nil || pdfeval.IsMissingData(err) {
		e.doc.type3.Delete(f)
	}
	p.Resolve(struct{}{}, err)
	return err
}

// loadCharProcs runs on the Type3 evaluator. A glyph that fails to
// evaluate is left empty, except that cycles and missing data abort the
// whole font.
func (e *Evaluator) loadCharProcs(ctx context.Context, f *font.Font, resources *pdfeval.Dict) error {
	charProcs, err := pdfeval.GetDict(e.xref, f.Dict.GetRaw("CharProcs"))
	if err != nil {
		return err
	}
	fontResources, err := pdfeval.GetDict(e.xref, f.Dict.GetRaw("Resources"))
	if err != nil {
		return err
	}
	if fontResources == nil {
		fontResources = resources
	}

	var glyphBoxes []rect.Rect
	procs := make(map[string]*oplist.OperatorList)
	var deps []string
	seen := make(map[string]bool)
	for _, key := range charProcs.Keys() {
		ol := oplist.New(nil)
		err := e.charProc(ctx, charProcs.GetRaw(key), fontResources, ol)
		switch {
		case err == nil:
		case ctx.Err() != nil || pdfeval.IsMissingData(err) || errors.Is(err, pdfeval.ErrCircularReference):
			return err
		default:
			e.log.Warn("Type3 font resource is not available", slog.String("glyph", string(key)), slog.Any("err", err))
			ol = oplist.New(nil)
		}
		if r, ok := removeType3ColorOps(ol); ok {
			glyphBoxes = append(glyphBoxes, r)
		}
		procs[string(key)] = ol
		for _, d := range ol.Dependencies() {
			if !seen[d] {
				seen[d] = true
				deps = append(deps, d)
			}
		}
	}

	if r, ok := font.Type3BBox(f.BBox, glyphBoxes); ok {
		f.BBox, f.IsCharBBox = r, true
	}
	f.CharProcs = procs
	f.Type3Dependencies = deps
	return nil
}

func (e *Evaluator) charProc(ctx context.Context, obj pdfeval.Object, resources *pdfeval.Dict, ol *oplist.OperatorList) error {
	s, err := pdfeval.GetStream(e.xref, obj)
	if err != nil {
		return err
	}
	if s == nil {
		return pdfeval.Errorf("missing glyph procedure")
	}
	data, err := s.Decode()
	if err != nil {
		return err
	}
	return e.operatorList(ctx, data, resources, ol, state.NewGraphics(), pdfeval.RefSet{}, 0)
}

// removeType3ColorOps drops the color operators of a glyph procedure that
// starts with d1, whose glyphs are painted in the current color. It
// returns the glyph box declared by d1 when that is not degenerate.
// A degenerate d1 is removed as well.
func removeType3ColorOps(ol *oplist.OperatorList) (rect.Rect, bool) {
	first, ok := firstOp(ol)
	if !ok || first.Fn != oplist.OpSetCharWidthAndBounds {
		return rect.Rect{}, false
	}

	var box rect.Rect
	var haveBox bool
	if v := anyNumbers(first.Args); len(v) == 6 {
		box = rect.Rect{
			LLx: min(v[2], v[4]), LLy: min(v[3], v[5]),
			URx: max(v[2], v[4]), URy: max(v[3], v[5]),
		}
		haveBox = box.URx > box.LLx && box.URy > box.LLy
	}

	i := 0
	ol.Rewrite(func(op oplist.Op) (oplist.Op, bool) {
		i++
		if i == 1 && !haveBox {
			return op, false
		}
		switch op.Fn {
		case oplist.OpSetStrokeColorSpace, oplist.OpSetFillColorSpace,
			oplist.OpSetStrokeColor, oplist.OpSetStrokeColorN,
			oplist.OpSetFillColor, oplist.OpSetFillColorN,
			oplist.OpSetStrokeGray, oplist.OpSetFillGray,
			oplist.OpSetStrokeRGBColor, oplist.OpSetFillRGBColor,
			oplist.OpSetStrokeCMYKColor, oplist.OpSetFillCMYKColor,
			oplist.OpShadingFill, oplist.OpSetRenderingIntent:
			return op, false
		case oplist.OpSetGState:
			entries, ok := op.Args[0].([][2]any)
			if !ok {
				break
			}
			kept := make([][2]any, 0, len(entries))
			for _, kv := range entries {
				if k, _ := kv[0].(string); !type3IgnoredGState[k] {
					kept = append(kept, kv)
				}
			}
			op.Args = []any{kept}
		}
		return op, true
	})
	return box, haveBox
}

func firstOp(ol *oplist.OperatorList) (oplist.Op, bool) {
	ops := ol.Ops()
	if len(ops) == 0 {
		return oplist.Op{}, false
	}
	return ops[0], true
}

func anyNumbers(args []any) []float64 {
	v := make([]float64, 0, len(args))
	for _, a := range args {
		if f, ok := a.(float64); ok {
			v = append(v, f)
		}
	}
	return v
}

// showText handles the text showing operators. Strings become the glyphs
// of the current font; TJ arrays keep their numbers between the glyphs.
// All of them are emitted as showText.
func (e *Evaluator) showText(ctx context.Context, c *opCall, fn oplist.OpCode, args []pdfeval.Object) error {
	st := c.state()
	if st.Font == nil {
		return e.ensureStateFont()
	}

	var glyphs []any
	switch fn {
	case oplist.OpShowText, oplist.OpNextLineShowText:
		glyphs = handleText(st.Font, args[0])
	case oplist.OpShowSpacedText:
		a, _ := args[0].(pdfeval.Array)
		for _, item := range a {
			switch item := item.(type) {
			case string:
				glyphs = append(glyphs, handleText(st.Font, item)...)
			case int64, float64:
				glyphs = append(glyphs, num(item))
			}
		}
	case oplist.OpNextLineSetSpacingShowText:
		glyphs = handleText(st.Font, args[2])
	}

	switch fn {
	case oplist.OpNextLineShowText:
		c.ol.AddOp(oplist.OpNextLine)
	case oplist.OpNextLineSetSpacingShowText:
		c.ol.AddOp(oplist.OpNextLine)
		c.ol.AddOp(oplist.OpSetWordSpacing, num(args[0]))
		c.ol.AddOp(oplist.OpSetCharSpacing, num(args[1]))
	}
	c.ol.AddOp(oplist.OpShowText, glyphs)
	return nil
}

// ensureStateFont reports text shown before any Tf. It is an error in
// strict mode; otherwise the text is skipped.
func (e *Evaluator) ensureStateFont() error {
	err := pdfeval.Errorf("Missing setFont (Tf) operator before text rendering operator.")
	if !e.opts.IgnoreErrors {
		return err
	}
	e.log.Warn("ensureStateFont", slog.Any("err", err))
	e.notify(FeatureFontLoad, err)
	return nil
}

// handleText maps a string operand to the glyphs of f.
func handleText(f *font.Font, obj pdfeval.Object) []any {
	s, _ := obj.(string)
	glyphs := f.CharsToGlyphs(s)
	out := make([]any, len(glyphs))
	for i, g := range glyphs {
		out[i] = g
	}
	return out
}
