package cache

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ScriptRock/pdfeval"
)

const (
	// NumPagesThreshold is the number of distinct pages that must use an
	// image before it is cached document-wide.
	NumPagesThreshold = 2
	// MinImagesToCache is the number of entries below which the byte
	// limit is not enforced.
	MinImagesToCache = 10
	// MaxByteSize bounds the total size of cached image data.
	MaxByteSize = 5 * 10e6
)

type globalEntry[V any] struct {
	data     V
	byteSize int
}

// GlobalImages caches decoded images that are shared between pages. It
// lives as long as the document and is safe for concurrent use.
type GlobalImages[V any] struct {
	mu           sync.Mutex
	pages        map[pdfeval.Ref]map[int]struct{}
	images       map[pdfeval.Ref]*globalEntry[V]
	decodeFailed pdfeval.RefSet
}

// NewGlobalImages returns an empty cache.
func NewGlobalImages[V any]() *GlobalImages[V] {
	return &GlobalImages[V]{
		pages:        make(map[pdfeval.Ref]map[int]struct{}),
		images:       make(map[pdfeval.Ref]*globalEntry[V]),
		decodeFailed: pdfeval.RefSet{},
	}
}

func (c *GlobalImages[V]) byteSize() int {
	n := 0
	for _, e := range c.images {
		n += e.byteSize
	}
	return n
}

func (c *GlobalImages[V]) limitReached() bool {
	return len(c.images) >= MinImagesToCache && c.byteSize() >= MaxByteSize
}

// ShouldCache records that page uses the image ref and reports whether the
// image data should be stored with SetData.
func (c *GlobalImages[V]) ShouldCache(ref pdfeval.Ref, page int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	set, ok := c.pages[ref]
	if !ok {
		set = make(map[int]struct{})
		c.pages[ref] = set
	}
	set[page] = struct{}{}
	if len(set) < NumPagesThreshold {
		return false
	}
	if _, ok := c.images[ref]; !ok && c.limitReached() {
		return false
	}
	return true
}

// GetData returns the cached data for ref, recording that page uses it.
// Images used by fewer than NumPagesThreshold pages are never returned.
func (c *GlobalImages[V]) GetData(ref pdfeval.Ref, page int) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero V
	set, ok := c.pages[ref]
	if !ok || len(set) < NumPagesThreshold {
		return zero, false
	}
	e, ok := c.images[ref]
	if !ok {
		return zero, false
	}
	set[page] = struct{}{}
	return e.data, true
}

// SetData stores data for ref. ShouldCache must have been called for ref
// first. Existing data is kept.
func (c *GlobalImages[V]) SetData(ref pdfeval.Ref, data V) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pages[ref]; !ok {
		return fmt.Errorf("global image cache: SetData(%v) without ShouldCache", ref)
	}
	if _, ok := c.images[ref]; ok {
		return nil
	}
	if c.limitReached() {
		slog.Warn("global image cache limit reached", slog.Any("ref", ref))
		return nil
	}
	c.images[ref] = &globalEntry[V]{data: data}
	return nil
}

// AddByteSize records the decoded size of a cached image once.
func (c *GlobalImages[V]) AddByteSize(ref pdfeval.Ref, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.images[ref]; ok && e.byteSize == 0 {
		e.byteSize = n
	}
}

// AddDecodeFailed marks ref as an image that could not be decoded.
func (c *GlobalImages[V]) AddDecodeFailed(ref pdfeval.Ref) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decodeFailed.Add(ref)
}

// HasDecodeFailed reports whether ref failed to decode before.
func (c *GlobalImages[V]) HasDecodeFailed(ref pdfeval.Ref) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decodeFailed.Has(ref)
}

// EvictPages forgets that the given pages use any image. Cached images
// that drop below the page threshold are removed.
func (c *GlobalImages[V]) EvictPages(pages ...int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ref, set := range c.pages {
		for _, p := range pages {
			delete(set, p)
		}
		if len(set) < NumPagesThreshold {
			delete(c.images, ref)
		}
		if len(set) == 0 {
			delete(c.pages, ref)
		}
	}
}

// Clear removes all image data. Unless onlyData is set, the page
// bookkeeping and decode failures are dropped as well.
func (c *GlobalImages[V]) Clear(onlyData bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !onlyData {
		c.pages = make(map[pdfeval.Ref]map[int]struct{})
		c.decodeFailed = pdfeval.RefSet{}
	}
	c.images = make(map[pdfeval.Ref]*globalEntry[V])
}

// Len returns the number of cached images.
func (c *GlobalImages[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}
