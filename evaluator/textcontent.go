package evaluator

import (
	"context"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"seehuhn.de/go/geom/matrix"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/cache"
	"github.com/ScriptRock/pdfeval/font"
	"github.com/ScriptRock/pdfeval/internal/encoding"
	"github.com/ScriptRock/pdfeval/internal/scheduler"
	"github.com/ScriptRock/pdfeval/internal/state"
	"github.com/ScriptRock/pdfeval/oplist"
	"github.com/ScriptRock/pdfeval/text"
)

// Thresholds for the gap between two glyphs, as a fraction of the font
// size.
const (
	// Gaps up to trackingSpaceFactor are letter spacing.
	trackingSpaceFactor = 0.1
	// Gaps up to notASpaceFactor never count as a space.
	notASpaceFactor = 0.03
	// Gaps below negativeSpaceFactor start a new item.
	negativeSpaceFactor = -0.2
	// Gaps between the two space-in-flow factors become one space.
	spaceInFlowMinFactor = 0.1
	spaceInFlowMaxFactor = 0.6
	// verticalShiftRatio is the shift across the writing direction, as a
	// fraction of the item height, that starts a new item.
	verticalShiftRatio = 0.25
)

// textRun is the item being built from consecutive glyphs.
type textRun struct {
	initialized bool
	str         []string
	totalWidth  float64
	totalHeight float64
	width       float64
	height      float64
	vertical    bool
	transform   matrix.Matrix
	fontName    string
	hasEOL      bool

	// prevTransform is the rendering matrix after the last glyph. It is
	// kept across items to measure the gap to the next glyph.
	prevTransform    matrix.Matrix
	hasPrev          bool
	textAdvanceScale float64

	spaceInFlowMin   float64
	spaceInFlowMax   float64
	trackingSpaceMin float64
	negativeSpaceMax float64
	notASpace        float64
}

// textCall is one extraction of text from a content stream. Nested forms
// get their own call sharing the builder of the outermost one.
type textCall struct {
	e         *Evaluator
	resources *pdfeval.Dict
	pre       *preprocessor[*state.Text]
	st        *state.Text
	b         *text.Builder
	sink      text.Sink

	forms pdfeval.RefSet
	depth int

	// markedContent is the open marked-content depth, shared with nested
	// forms.
	markedContent *int

	run       textRun
	lastChars [2]string
	lastPos   int

	emptyXObjects *cache.Local[bool]
	emptyGStates  *cache.Local[bool]
}

// GetTextContent extracts the text of content and delivers it to sink in
// chunks. When ctx is cancelled extraction stops and nil is returned.
func (e *Evaluator) GetTextContent(ctx context.Context, content []byte, resources *pdfeval.Dict, sink text.Sink) error {
	level := 0
	err := e.textContent(ctx, content, resources, state.NewText(), sink, &text.Builder{}, pdfeval.RefSet{}, 0, &level)
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (e *Evaluator) textContent(ctx context.Context, content []byte, resources *pdfeval.Dict, initial *state.Text, sink text.Sink, b *text.Builder, forms pdfeval.RefSet, depth int, markedContent *int) error {
	c := &textCall{
		e:             e,
		resources:     resources,
		pre:           newPreprocessor(content, initial, e.log),
		st:            initial,
		b:             b,
		sink:          sink,
		forms:         forms,
		depth:         depth,
		markedContent: markedContent,
		lastChars:     [2]string{" ", " "},
		emptyXObjects: cache.NewLocal[bool](),
		emptyGStates:  cache.NewLocal[bool](),
	}

	err := e.runTextContent(ctx, c)
	if err != nil {
		if ctx.Err() != nil || pdfeval.IsMissingData(err) || !e.opts.IgnoreErrors {
			return err
		}
		e.log.Warn("ignoring errors during text content", slog.Any("err", err))
		e.notify(FeatureTextContent, err)
	}
	c.flushItem()
	return b.Flush(sink, false)
}

func (e *Evaluator) runTextContent(ctx context.Context, c *textCall) error {
	slot := scheduler.New(e.opts.TimeSlice, e.opts.CheckEvery)
	slot.Reset()
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if slot.Check() {
			if err := e.yield(ctx, nil); err != nil {
				return err
			}
			if err := c.next(ctx); err != nil {
				return err
			}
			slot.Reset()
		}

		prev := c.st
		op, err := c.pre.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		c.st = c.pre.stack.State

		wait, err := e.textOp(ctx, c, op, prev)
		if err != nil {
			return err
		}
		if wait || c.b.Len() >= c.sink.DesiredSize() {
			if err := c.next(ctx); err != nil {
				return err
			}
		}
	}
}

// next sends a batch of items and waits until the sink wants more.
func (c *textCall) next(ctx context.Context) error {
	if err := c.b.Flush(c.sink, true); err != nil {
		return err
	}
	return c.sink.Ready(ctx)
}

// textOp handles one operation. It reports whether a resource was loaded,
// after which the sink gets a chance to catch up.
func (e *Evaluator) textOp(ctx context.Context, c *textCall, op operation, prev *state.Text) (bool, error) {
	st := c.st
	args := op.args

	switch op.fn {
	case oplist.OpSetFont:
		name, _ := args[0].(pdfeval.Name)
		size := num(args[1])
		if st.Font != nil && string(name) == st.FontName && size == st.FontSize {
			return false, nil
		}
		c.flushItem()
		st.FontName = string(name)
		st.FontSize = size
		f, err := e.textFont(ctx, name, nil, c.resources)
		if err != nil {
			return false, err
		}
		st.Tf(f, size)
		return true, nil

	case oplist.OpSetTextRise:
		st.Ts(num(args[0]))
	case oplist.OpSetHScale:
		st.Tz(num(args[0]))
	case oplist.OpSetLeading:
		st.TL(num(args[0]))
	case oplist.OpMoveText:
		st.Td(num(args[0]), num(args[1]))
	case oplist.OpSetLeadingMoveText:
		st.TD(num(args[0]), num(args[1]))
	case oplist.OpNextLine:
		st.Tstar()
	case oplist.OpSetTextMatrix:
		st.Tm(toMatrix(args))
		c.updateAdvanceScale()
	case oplist.OpSetCharSpacing:
		st.Tc(num(args[0]))
	case oplist.OpSetWordSpacing:
		st.Tw(num(args[0]))
	case oplist.OpBeginText:
		st.BT()

	case oplist.OpShowSpacedText:
		if st.Font == nil {
			return false, e.ensureStateFont()
		}
		spaceFactor := -st.FontSize / 1000
		if st.Font.Vertical {
			spaceFactor = -spaceFactor
		}
		a, _ := args[0].(pdfeval.Array)
		var buf strings.Builder
		for _, item := range a {
			switch item := item.(type) {
			case string:
				buf.WriteString(item)
			case int64, float64:
				if v := num(item); v != 0 {
					c.buildText(buf.String(), v*spaceFactor)
					buf.Reset()
				}
			}
		}
		if buf.Len() > 0 {
			c.buildText(buf.String(), 0)
		}
	case oplist.OpShowText:
		if st.Font == nil {
			return false, e.ensureStateFont()
		}
		s, _ := args[0].(string)
		c.buildText(s, 0)
	case oplist.OpNextLineShowText:
		if st.Font == nil {
			return false, e.ensureStateFont()
		}
		st.Tstar()
		s, _ := args[0].(string)
		c.buildText(s, 0)
	case oplist.OpNextLineSetSpacingShowText:
		if st.Font == nil {
			return false, e.ensureStateFont()
		}
		st.Tw(num(args[0]))
		st.Tc(num(args[1]))
		st.Tstar()
		s, _ := args[2].(string)
		c.buildText(s, 0)

	case oplist.OpPaintXObject:
		c.flushItem()
		if name, ok := args[0].(pdfeval.Name); ok {
			if _, empty := c.emptyXObjects.GetByName(name); empty {
				return false, nil
			}
		}
		return true, e.tolerate(ctx, FeatureXObject, e.textXObject(ctx, c, args[0]))

	case oplist.OpSetGState:
		if name, ok := args[0].(pdfeval.Name); ok {
			if _, empty := c.emptyGStates.GetByName(name); empty {
				return false, nil
			}
		}
		return true, e.tolerate(ctx, FeatureExtGState, e.textGState(ctx, c, args[0]))

	case oplist.OpBeginMarkedContent:
		c.flushItem()
		if e.opts.IncludeMarkedContent {
			*c.markedContent++
			tag, _ := args[0].(pdfeval.Name)
			c.b.Add(text.Item{Kind: text.KindBeginMarkedContent, Tag: string(tag)})
		}
	case oplist.OpBeginMarkedContentProps:
		c.flushItem()
		if e.opts.IncludeMarkedContent {
			*c.markedContent++
			var id string
			if props, ok := args[1].(*pdfeval.Dict); ok {
				if mcid, ok := props.GetRaw("MCID").(int64); ok {
					id = e.ids.PageObjID() + "_mc" + strconv.FormatInt(mcid, 10)
				}
			}
			tag, _ := args[0].(pdfeval.Name)
			c.b.Add(text.Item{Kind: text.KindBeginMarkedContentProps, Tag: string(tag), ID: id})
		}
	case oplist.OpEndMarkedContent:
		c.flushItem()
		if e.opts.IncludeMarkedContent && *c.markedContent > 0 {
			*c.markedContent--
			c.b.Add(text.Item{Kind: text.KindEndMarkedContent})
		}

	case oplist.OpRestore:
		if prev.Font != st.Font || prev.FontSize != st.FontSize || prev.FontName != st.FontName {
			c.flushItem()
		}
	}
	return false, nil
}

// trackingSink records whether a nested form produced any items.
type trackingSink struct {
	text.Sink
	enqueued bool
}

func (s *trackingSink) Enqueue(c text.Content, size int) error {
	if size > 0 {
		s.enqueued = true
	}
	return s.Sink.Enqueue(c, size)
}

// textXObject extracts the text of a form XObject. Images and forms
// without text are remembered so that they are skipped next time.
func (e *Evaluator) textXObject(ctx context.Context, c *textCall, arg pdfeval.Object) error {
	name, ok := arg.(pdfeval.Name)
	if !ok {
		return pdfeval.Errorf("XObject must be referred to by name")
	}
	obj, err := retry(ctx, e, func() (pdfeval.Object, error) {
		return resource(e.xref, c.resources, "XObject", name)
	})
	if err != nil {
		return err
	}
	if ref, ok := obj.(pdfeval.Ref); ok {
		if _, empty := c.emptyXObjects.GetByRef(ref); empty {
			return nil
		}
		if _, ok := e.doc.images.GetData(ref, e.page); ok {
			return nil
		}
		obj, err = retry(ctx, e, func() (pdfeval.Object, error) { return pdfeval.Resolve(e.xref, ref) })
		if err != nil {
			return err
		}
	}
	xobj, ok := obj.(*pdfeval.Stream)
	if !ok {
		return pdfeval.Errorf("XObject should be a stream")
	}
	subtype, err := pdfeval.GetName(e.xref, xobj.Dict.GetRaw("Subtype"))
	if err != nil || subtype == "" {
		return pdfeval.Errorf("XObject should have a Name subtype")
	}
	ref := xobj.Ref()
	if subtype != "Form" {
		c.emptyXObjects.Set(name, ref, true)
		return nil
	}
	if !ref.IsZero() && c.forms.Has(ref) {
		return pdfeval.Errorf("ignoring circular reference to form %s: %w", ref, pdfeval.ErrCircularReference)
	}
	if c.depth >= e.opts.MaxFormDepth {
		return pdfeval.Errorf("form XObjects nested deeper than %d", e.opts.MaxFormDepth)
	}

	st := c.st.Clone()
	if m, ok := pdfeval.GetMatrix(e.xref, xobj.Dict.GetRaw("Matrix")); ok {
		st.CM(m)
	}
	resources, err := pdfeval.GetDict(e.xref, xobj.Dict.GetRaw("Resources"))
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
	if err := c.b.Flush(c.sink, false); err != nil {
		return err
	}

	forms := c.forms.Clone()
	if !ref.IsZero() {
		forms.Add(ref)
	}
	sink := &trackingSink{Sink: c.sink}
	if err := e.textContent(ctx, data, resources, st, sink, c.b, forms, c.depth+1, c.markedContent); err != nil {
		return err
	}
	if !sink.enqueued {
		c.emptyXObjects.Set(name, ref, true)
	}
	return nil
}

// textGState applies the Font entry of a graphics state. States without
// one are remembered so that they are skipped next time.
func (e *Evaluator) textGState(ctx context.Context, c *textCall, arg pdfeval.Object) error {
	name, ok := arg.(pdfeval.Name)
	if !ok {
		return pdfeval.Errorf("GState must be referred to by name")
	}
	gs, err := e.extGState(ctx, c.resources, name)
	if err != nil {
		return err
	}
	entry, err := pdfeval.GetArray(e.xref, gs.GetRaw("Font"))
	if err != nil || len(entry) < 2 {
		c.emptyGStates.Set(name, gs.Ref, true)
		return nil
	}

	c.flushItem()
	st := c.st
	st.FontName = ""
	size := num(entry[1])
	f, err := e.textFont(ctx, "", entry[0], c.resources)
	if err != nil {
		return err
	}
	st.Tf(f, size)
	return nil
}

// textFont loads a font for text extraction. The glyph procedures of a
// Type3 font are evaluated too, because their boxes decide the text
// transform; failing to evaluate them only loses that correction.
func (e *Evaluator) textFont(ctx context.Context, name pdfeval.Name, fontRef pdfeval.Object, resources *pdfeval.Dict) (*font.Font, error) {
	f, ref, err := e.loadFont(ctx, name, fontRef, resources)
	if err != nil {
		return nil, err
	}
	if f.Type3 {
		if err := e.loadType3(ctx, f, ref, resources); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			e.log.Debug("ignoring Type3 font error", slog.String("font", string(name)), slog.Any("err", err))
		}
	}
	return f, nil
}

func (c *textCall) saveLastChar(ch string) bool {
	next := (c.lastPos + 1) % 2
	ret := c.lastChars[c.lastPos] != " " && c.lastChars[next] == " "
	c.lastChars[c.lastPos] = ch
	c.lastPos = next
	return !c.e.opts.KeepWhiteSpace && ret
}

func (c *textCall) shouldAddWhitespace() bool {
	return !c.e.opts.KeepWhiteSpace &&
		c.lastChars[c.lastPos] != " " &&
		c.lastChars[(c.lastPos+1)%2] == " "
}

func (c *textCall) resetLastChars() {
	c.lastChars = [2]string{" ", " "}
	c.lastPos = 0
}

// currentTransform returns the text rendering matrix. Type3 glyphs given
// in a scaled glyph space are stretched to the height of their bounding
// box.
func (c *textCall) currentTransform() matrix.Matrix {
	st := c.st
	tsm := matrix.Matrix{st.FontSize * st.HScale, 0, 0, st.FontSize, 0, st.Rise}
	if f := st.Font; f != nil && f.Type3 && (st.FontSize <= 1 || f.IsCharBBox) && st.FontMatrix != font.DefaultMatrix {
		if h := f.BBox.URy - f.BBox.LLy; h > 0 {
			tsm[3] *= h * st.FontMatrix[3]
		}
	}
	return tsm.Mul(st.TextMatrix).Mul(st.CTM)
}

func (c *textCall) advanceScale() float64 {
	lm, ctm := c.st.TextLineMatrix, c.st.CTM
	return math.Hypot(lm[0], lm[1]) * math.Hypot(ctm[0], ctm[1])
}

// ensureItem starts a new item at the current position if none is open.
func (c *textCall) ensureItem() *textRun {
	r := &c.run
	if r.initialized {
		return r
	}
	st := c.st
	f := st.Font
	c.b.AddStyle(st.LoadedName, text.Style{
		FontFamily: f.FallbackName,
		Ascent:     f.Ascent,
		Descent:    f.Descent,
		Vertical:   f.Vertical,
	})
	r.fontName = st.LoadedName
	r.transform = c.currentTransform()
	trm := r.transform
	if !f.Vertical {
		r.width, r.totalWidth = 0, 0
		r.height = math.Hypot(trm[2], trm[3])
		r.totalHeight = r.height
		r.vertical = false
	} else {
		r.width = math.Hypot(trm[0], trm[1])
		r.totalWidth = r.width
		r.height, r.totalHeight = 0, 0
		r.vertical = true
	}
	r.textAdvanceScale = c.advanceScale()

	size := st.FontSize
	r.trackingSpaceMin = size * trackingSpaceFactor
	r.notASpace = size * notASpaceFactor
	r.negativeSpaceMax = size * negativeSpaceFactor
	r.spaceInFlowMin = size * spaceInFlowMinFactor
	r.spaceInFlowMax = size * spaceInFlowMaxFactor
	r.hasEOL = false
	r.initialized = true
	return r
}

// updateAdvanceScale folds the advance measured so far into the total
// when Tm changes the scale of text space.
func (c *textCall) updateAdvanceScale() {
	r := &c.run
	if !r.initialized {
		return
	}
	scale := c.advanceScale()
	if scale == r.textAdvanceScale {
		return
	}
	if !r.vertical {
		r.totalWidth += r.width * r.textAdvanceScale
		r.width = 0
	} else {
		r.totalHeight += r.height * r.textAdvanceScale
		r.height = 0
	}
	r.textAdvanceScale = scale
}

// flushItem closes the open item and adds it to the builder.
func (c *textCall) flushItem() {
	r := &c.run
	if !r.initialized {
		return
	}
	if !r.vertical {
		r.totalWidth += r.width * r.textAdvanceScale
	} else {
		r.totalHeight += r.height * r.textAdvanceScale
	}
	s := strings.Join(r.str, "")
	if !c.e.opts.DisableNormalization {
		s = encoding.Normalize(s)
	}
	s, dir := text.Bidi(s, r.vertical)
	c.b.Add(text.Item{
		Kind:      text.KindText,
		Str:       s,
		Dir:       dir,
		Width:     math.Abs(r.totalWidth),
		Height:    math.Abs(r.totalHeight),
		Transform: r.transform,
		FontName:  r.fontName,
		HasEOL:    r.hasEOL,
	})
	r.initialized = false
	r.str = r.str[:0]
}

func (c *textCall) pushWhitespace(width, height float64, transform matrix.Matrix, fontName string) {
	c.b.Add(text.Item{
		Kind:      text.KindText,
		Str:       " ",
		Dir:       text.LTR,
		Width:     width,
		Height:    height,
		Transform: transform,
		FontName:  fontName,
	})
}

// appendEOL ends the current line, with an empty item if none is open.
func (c *textCall) appendEOL() {
	c.resetLastChars()
	if c.run.initialized {
		c.run.hasEOL = true
		c.flushItem()
		return
	}
	c.b.Add(text.Item{
		Kind:      text.KindText,
		Dir:       text.LTR,
		Transform: c.currentTransform(),
		FontName:  c.st.LoadedName,
		HasEOL:    true,
	})
}

// addFakeSpaces turns a gap into a space. A space-in-flow gap adds a
// space to the open item and returns false; a wider gap becomes an item
// of its own and returns true.
func (c *textCall) addFakeSpaces(width, orientation float64) bool {
	r := &c.run
	if orientation*r.spaceInFlowMin <= width && width <= orientation*r.spaceInFlowMax {
		if r.initialized {
			c.resetLastChars()
			r.str = append(r.str, " ")
		}
		return false
	}
	fontName := r.fontName
	height := 0.0
	if r.vertical {
		height, width = width, 0
	}
	c.flushItem()
	c.resetLastChars()
	c.pushWhitespace(math.Abs(width), math.Abs(height), r.prevTransform, fontName)
	return true
}

// compareWithLastPosition classifies the gap between the previous glyph
// and the current position and updates the open item accordingly.
func (c *textCall) compareWithLastPosition() {
	r := &c.run
	f := c.st.Font
	if f == nil || !r.hasPrev {
		return
	}
	cur := c.currentTransform()
	posX, posY := cur[4], cur[5]
	lastX, lastY := r.prevTransform[4], r.prevTransform[5]
	if posX == lastX && posY == lastY {
		return
	}

	rotate := -1
	switch {
	case cur[0] != 0 && cur[1] == 0 && cur[2] == 0:
		rotate = 0
		if cur[0] < 0 {
			rotate = 180
		}
	case cur[1] != 0 && cur[0] == 0 && cur[3] == 0:
		rotate = 90
		if cur[1] < 0 {
			rotate = 270
		}
	}
	switch rotate {
	case 0:
	case 90:
		posX, posY = posY, posX
		lastX, lastY = lastY, lastX
	case 180:
		posX, posY, lastX, lastY = -posX, -posY, -lastX, -lastY
	case 270:
		posX, posY = -posY, -posX
		lastX, lastY = -lastY, -lastX
	default:
		posX, posY = inverseRotation(posX, posY, cur)
		lastX, lastY = inverseRotation(lastX, lastY, r.prevTransform)
	}

	if f.Vertical {
		advanceY := (lastY - posY) / r.textAdvanceScale
		advanceX := posX - lastX
		orientation := sign(r.height)
		if advanceY < orientation*r.negativeSpaceMax {
			if math.Abs(advanceX) > 0.5*r.width {
				c.appendEOL()
				return
			}
			c.resetLastChars()
			c.flushItem()
			return
		}
		if math.Abs(advanceX) > r.width {
			c.appendEOL()
			return
		}
		if advanceY <= orientation*r.notASpace {
			c.resetLastChars()
		}
		switch {
		case advanceY <= orientation*r.trackingSpaceMin:
			if c.shouldAddWhitespace() {
				c.flushItem()
				c.resetLastChars()
				c.pushWhitespace(0, math.Abs(advanceY), r.prevTransform, r.fontName)
			} else {
				r.height += advanceY
			}
		case r.initialized && advanceY > orientation*r.spaceInFlowMax && math.Abs(advanceY) > math.Abs(r.height):
			c.appendEOL()
			return
		case !c.addFakeSpaces(advanceY, orientation):
			if len(r.str) == 0 {
				c.resetLastChars()
				c.pushWhitespace(0, math.Abs(advanceY), r.prevTransform, r.fontName)
			} else {
				r.height += advanceY
			}
		}
		if math.Abs(advanceX) > r.width*verticalShiftRatio {
			c.flushItem()
		}
		return
	}

	advanceX := (posX - lastX) / r.textAdvanceScale
	advanceY := posY - lastY
	orientation := sign(r.width)
	if advanceX < orientation*r.negativeSpaceMax {
		if math.Abs(advanceY) > 0.5*r.height {
			c.appendEOL()
			return
		}
		c.resetLastChars()
		c.flushItem()
		return
	}
	if math.Abs(advanceY) > r.height {
		c.appendEOL()
		return
	}
	if advanceX <= orientation*r.notASpace {
		c.resetLastChars()
	}
	switch {
	case advanceX <= orientation*r.trackingSpaceMin:
		if c.shouldAddWhitespace() {
			c.flushItem()
			c.resetLastChars()
			c.pushWhitespace(math.Abs(advanceX), 0, r.prevTransform, r.fontName)
		} else {
			r.width += advanceX
		}
	case r.initialized && advanceX > orientation*r.spaceInFlowMax && math.Abs(advanceX) > math.Abs(r.width):
		c.appendEOL()
		return
	case !c.addFakeSpaces(advanceX, orientation):
		if len(r.str) == 0 {
			c.resetLastChars()
			c.pushWhitespace(math.Abs(advanceX), 0, r.prevTransform, r.fontName)
		} else {
			r.width += advanceX
		}
	}
	if math.Abs(advanceY) > r.height*verticalShiftRatio {
		c.flushItem()
	}
}

// buildText adds the glyphs of chars to the open item and advances the
// text matrix. extraSpacing is the adjustment following chars in a TJ
// array, already in text space.
func (c *textCall) buildText(chars string, extraSpacing float64) {
	st := c.st
	f := st.Font
	if chars == "" {
		if spacing := st.CharSpacing + extraSpacing; spacing != 0 {
			c.advance(spacing)
		}
		if c.e.opts.KeepWhiteSpace {
			c.compareWithLastPosition()
		}
		return
	}

	glyphs := f.CharsToGlyphs(chars)
	scale := st.FontMatrix[0] * st.FontSize
	for i, g := range glyphs {
		if g.Category == font.Invisible {
			continue
		}
		charSpacing := st.CharSpacing
		if i == len(glyphs)-1 {
			charSpacing += extraSpacing
		}
		glyphWidth := g.Width
		if f.Vertical {
			glyphWidth = -glyphWidth
			if g.VMetric != nil {
				glyphWidth = g.VMetric.W1y
			}
		}
		scaled := glyphWidth * scale

		if !c.e.opts.KeepWhiteSpace && g.Category == font.Whitespace {
			if !f.Vertical {
				charSpacing += scaled + st.WordSpacing
			} else {
				charSpacing += -scaled + st.WordSpacing
			}
			c.advance(charSpacing)
			c.saveLastChar(" ")
			continue
		}

		if g.Category != font.Diacritic {
			c.compareWithLastPosition()
		}
		r := c.ensureItem()
		if g.Category == font.Diacritic {
			scaled = 0
		}
		if !f.Vertical {
			scaled *= st.HScale
			st.Translate(scaled, 0)
			r.width += scaled
		} else {
			st.Translate(0, scaled)
			scaled = math.Abs(scaled)
			r.height += scaled
		}
		if scaled != 0 {
			r.prevTransform = c.currentTransform()
			r.hasPrev = true
		}
		if c.saveLastChar(g.Unicode) {
			r.str = append(r.str, " ")
		}
		r.str = append(r.str, g.Unicode)

		if charSpacing != 0 {
			c.advance(charSpacing)
		}
	}
}

// advance moves the text matrix by spacing along the writing direction.
// Horizontal spacing is scaled by Tz; vertical spacing moves down.
func (c *textCall) advance(spacing float64) {
	st := c.st
	if st.Font != nil && st.Font.Vertical {
		st.Translate(0, -spacing)
		return
	}
	st.Translate(spacing*st.HScale, 0)
}

func inverseRotation(x, y float64, m matrix.Matrix) (float64, float64) {
	scale := math.Hypot(m[0], m[1])
	return (m[0]*x + m[1]*y) / scale, (m[2]*x + m[3]*y) / scale
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
