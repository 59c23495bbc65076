package evaluator

import (
	"context"
	"errors"
	"log/slog"
	"runtime"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/font"
	"github.com/ScriptRock/pdfeval/oplist"
)

// maxDataRequests bounds how often one resolution asks for missing data
// before giving up.
const maxDataRequests = 16

// An Evaluator interprets the content streams of one page. GetOperatorList
// and GetTextContent may run concurrently; each call works on its own
// state and only shares the document caches.
type Evaluator struct {
	xref pdfeval.XRef
	doc  *Document
	page int
	opts Options
	log  *slog.Logger
	ids  *IDFactory

	// type3Refs holds the Type3 fonts whose glyphs are being evaluated,
	// type3Fonts the same fonts including direct ones.
	type3Refs    pdfeval.RefSet
	type3Fonts   []*font.Font
	parsingType3 bool
}

// New returns an evaluator for the page with the given index.
func New(xref pdfeval.XRef, doc *Document, pageIndex int, opts Options) *Evaluator {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.MaxFormDepth <= 0 {
		opts.MaxFormDepth = DefaultOptions().MaxFormDepth
	}
	return &Evaluator{
		xref: xref,
		doc:  doc,
		page: pageIndex,
		opts: opts,
		log:  opts.Logger.With(slog.Int("page", pageIndex)),
		ids:  &IDFactory{page: pageIndex, doc: doc},
	}
}

// type3Evaluator returns the strict evaluator used for the glyph
// procedures of the Type3 font f fetched by ref.
func (e *Evaluator) type3Evaluator(f *font.Font, ref pdfeval.Ref) *Evaluator {
	c := *e
	c.opts.IgnoreErrors = false
	c.parsingType3 = true
	c.type3Fonts = append(e.type3Fonts[:len(e.type3Fonts):len(e.type3Fonts)], f)
	c.type3Refs = e.type3Refs.Clone()
	if c.type3Refs == nil {
		c.type3Refs = pdfeval.RefSet{}
	}
	if !ref.IsZero() {
		c.type3Refs.Add(ref)
	}
	return &c
}

func (e *Evaluator) notify(feature Feature, err error) {
	if e.opts.Observer != nil {
		e.opts.Observer.Notice(Notice{Feature: feature, Err: err})
	}
}

// tolerate decides what happens with an error raised by one resource. In
// lenient mode it is logged, reported and dropped. Cancellation and
// missing data always propagate.
func (e *Evaluator) tolerate(ctx context.Context, feature Feature, err error) error {
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if pdfeval.IsMissingData(err) || !e.opts.IgnoreErrors {
		return err
	}
	e.log.Warn("ignoring "+string(feature), slog.Any("err", err))
	e.notify(feature, err)
	return nil
}

// retry runs fn until it succeeds or fails for a reason other than
// missing data. Missing data is requested from the XRef when it is a
// DataLoader.
func retry[V any](ctx context.Context, e *Evaluator, fn func() (V, error)) (V, error) {
	for i := 0; ; i++ {
		v, err := fn()
		var missing *pdfeval.MissingDataError
		if err == nil || !errors.As(err, &missing) || i >= maxDataRequests {
			return v, err
		}
		loader, ok := e.xref.(pdfeval.DataLoader)
		if !ok {
			return v, err
		}
		e.log.Debug("requesting missing data", slog.Any("ref", missing.Ref))
		if err := loader.RequestData(ctx, missing); err != nil {
			return v, err
		}
	}
}

// yield gives up the processor when a time slot ran out and waits until
// the consumer of ol accepts more operations.
func (e *Evaluator) yield(ctx context.Context, ol *oplist.OperatorList) error {
	if e.opts.Yield != nil {
		if err := e.opts.Yield(ctx); err != nil {
			return err
		}
	} else {
		runtime.Gosched()
	}
	if ol != nil {
		return ol.Ready(ctx)
	}
	return ctx.Err()
}

func (e *Evaluator) send(ctx context.Context, r *Resource) error {
	if e.opts.Transport == nil {
		return nil
	}
	if !r.Common {
		r.Page = e.page
	}
	return e.opts.Transport.Send(ctx, r)
}

func (e *Evaluator) parseColorSpace(ctx context.Context, resources *pdfeval.Dict, obj pdfeval.Object) (colorspace.ColorSpace, error) {
	return retry(ctx, e, func() (colorspace.ColorSpace, error) {
		return colorspace.Parse(colorspace.ParseContext{
			XRef:      e.xref,
			Resources: resources,
			Memo:      e.doc.colorSpaces,
		}, obj)
	})
}

// resource returns the named entry of the resource category, e.g. the
// font /F1 of the Font resources, without resolving it.
func resource(x pdfeval.XRef, resources *pdfeval.Dict, category, name pdfeval.Name) (pdfeval.Object, error) {
	d, err := pdfeval.GetDict(x, resources.GetRaw(category))
	if err != nil {
		return nil, err
	}
	return d.GetRaw(name), nil
}

// plain converts an operand into an operator list argument.
func plain(obj pdfeval.Object) any {
	switch o := obj.(type) {
	case int64:
		return float64(o)
	case pdfeval.Name:
		return string(o)
	case pdfeval.Array:
		a := make([]any, len(o))
		for i, v := range o {
			a[i] = plain(v)
		}
		return a
	}
	return obj
}

// hasDict reports whether any operand is a dictionary, which cannot be
// passed on to the consumer.
func hasDict(args []pdfeval.Object) bool {
	for _, a := range args {
		if _, ok := a.(*pdfeval.Dict); ok {
			return true
		}
	}
	return false
}
