package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/cache"
	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/font"
)

// fontKey identifies a font resource: by reference, or by the dictionary
// itself when the resource is a direct object.
type fontKey struct {
	ref  pdfeval.Ref
	dict *pdfeval.Dict
}

// fontAlias records the font id given to a font hash, and the last
// reference translated with it.
type fontAlias struct {
	fontID   string
	aliasRef pdfeval.Ref
}

// A Document holds the caches that live as long as a document. It is
// shared by the evaluators of all its pages and is safe for concurrent use.
type Document struct {
	// ID distinguishes the document in object ids shared between pages.
	ID string

	fonts       *cache.Promises[fontKey, *font.Font]
	type3       *cache.Promises[*font.Font, struct{}]
	colorSpaces *colorspace.Memo
	images      *cache.GlobalImages[*cachedImage]
	imageLoads  *cache.Promises[pdfeval.Ref, *cachedImage]
	translator  *font.Translator

	mu      sync.Mutex
	aliases map[*pdfeval.Dict]map[string]*fontAlias

	fontIDs atomic.Int64

	fallbackOnce sync.Once
	fallback     *pdfeval.Dict
}

// fallbackFont returns the font dictionary used in lenient mode when a
// font resource is missing.
func (d *Document) fallbackFont() *pdfeval.Dict {
	d.fallbackOnce.Do(func() {
		f := pdfeval.NewDict(nil)
		f.Set("BaseFont", pdfeval.Name("Helvetica"))
		f.Set("Type", pdfeval.Name("FallbackType"))
		f.Set("Subtype", pdfeval.Name("FallbackType"))
		f.Set("Encoding", pdfeval.Name("WinAnsiEncoding"))
		d.fallback = f
	})
	return d.fallback
}

// NewDocument returns the caches for a document. Font programs and
// character maps that are not embedded are read through f, which may be
// nil.
func NewDocument(id string, f font.Fetcher, logger *slog.Logger) *Document {
	return &Document{
		ID:          id,
		fonts:       cache.NewPromises[fontKey, *font.Font](),
		type3:       cache.NewPromises[*font.Font, struct{}](),
		colorSpaces: colorspace.NewMemo(),
		images:      cache.NewGlobalImages[*cachedImage](),
		imageLoads:  cache.NewPromises[pdfeval.Ref, *cachedImage](),
		translator:  font.NewTranslator(f, logger),
		aliases:     make(map[*pdfeval.Dict]map[string]*fontAlias),
	}
}

// EvictPages drops the pages from the document-wide image cache.
func (d *Document) EvictPages(pages ...int) {
	d.images.EvictPages(pages...)
}

// CachedImages returns the number of images cached for the whole document.
func (d *Document) CachedImages() int {
	return d.images.Len()
}

// alias returns the font id for a font with the given descriptor and
// hash, allocating one on first use. It also returns the reference that
// was last translated with that hash.
func (d *Document) alias(desc *pdfeval.Dict, hash string, ref pdfeval.Ref) (fontID string, prev pdfeval.Ref) {
	d.mu.Lock()
	defer d.mu.Unlock()
	byHash, ok := d.aliases[desc]
	if !ok {
		byHash = make(map[string]*fontAlias)
		d.aliases[desc] = byHash
	}
	a, ok := byHash[hash]
	if !ok {
		a = &fontAlias{fontID: d.newFontID()}
		byHash[hash] = a
	}
	prev = a.aliasRef
	if !ref.IsZero() {
		a.aliasRef = ref
	}
	return a.fontID, prev
}

func (d *Document) newFontID() string {
	return fmt.Sprintf("f%d", d.fontIDs.Add(1))
}

// IDFactory creates the ids of objects sent to the consumer.
type IDFactory struct {
	page int
	doc  *Document
	objs atomic.Int64
}

// NewObjID returns a new id for an object of the page, "p<page>_<n>".
func (f *IDFactory) NewObjID() string {
	return fmt.Sprintf("p%d_%d", f.page, f.objs.Add(1))
}

// NewFontID returns a new document-wide font id, "f<n>".
func (f *IDFactory) NewFontID() string {
	return f.doc.newFontID()
}

// DocID returns the prefix of objects shared between pages, "g_<doc>".
func (f *IDFactory) DocID() string {
	return "g_" + f.doc.ID
}

// PageObjID returns the id of the page itself.
func (f *IDFactory) PageObjID() string {
	return fmt.Sprintf("p%d", f.page)
}

// ResourceKind tells the consumer how to interpret Resource.Data.
type ResourceKind int

const (
	// ResourceFont carries a *font.Font.
	ResourceFont ResourceKind = iota + 1
	// ResourceImage carries an *ImageData, or nil for images that failed
	// to decode.
	ResourceImage
	// ResourceMask carries an *ImageData with one bit per pixel.
	ResourceMask
	// ResourcePattern carries the IR of a shading.
	ResourcePattern
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceFont:
		return "Font"
	case ResourceImage:
		return "Image"
	case ResourceMask:
		return "Mask"
	case ResourcePattern:
		return "Pattern"
	}
	return fmt.Sprintf("ResourceKind(%d)", int(k))
}

// A Resource is an object an operator list depends on.
type Resource struct {
	Kind ResourceKind
	ID   string
	// Common is set for objects shared by all pages; Page is the page
	// index otherwise.
	Common bool
	Page   int
	Data   any
}

// A Transport delivers resources to the rendering backend. It is the
// only way evaluated objects leave the evaluator besides the operator
// list itself.
type Transport interface {
	Send(ctx context.Context, r *Resource) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, r *Resource) error

func (f TransportFunc) Send(ctx context.Context, r *Resource) error { return f(ctx, r) }
