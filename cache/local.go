// Package cache holds the resource caches of the evaluator: caches local
// to one evaluator call, the document-wide image cache, and a map of
// in-flight resolutions.
package cache

import "github.com/ScriptRock/pdfeval"

// Local caches resources for the duration of one evaluator call. Entries
// are found by resource name, which is fast but only valid within one
// resource dictionary, or by reference, which also deduplicates a resource
// that appears under several names.
type Local[V any] struct {
	byName  map[pdfeval.Name]V
	nameRef map[pdfeval.Name]pdfeval.Ref
	byRef   map[pdfeval.Ref]V
}

// NewLocal returns an empty cache.
func NewLocal[V any]() *Local[V] {
	return &Local[V]{
		byName:  make(map[pdfeval.Name]V),
		nameRef: make(map[pdfeval.Name]pdfeval.Ref),
		byRef:   make(map[pdfeval.Ref]V),
	}
}

// GetByName returns the entry stored for name.
func (c *Local[V]) GetByName(name pdfeval.Name) (V, bool) {
	if ref, ok := c.nameRef[name]; ok {
		return c.GetByRef(ref)
	}
	v, ok := c.byName[name]
	return v, ok
}

// GetByRef returns the entry stored for ref.
func (c *Local[V]) GetByRef(ref pdfeval.Ref) (V, bool) {
	v, ok := c.byRef[ref]
	return v, ok
}

// Set stores v. With a non-zero ref the entry is keyed by reference and
// the name becomes an alias for it; otherwise it is keyed by name only.
// Existing entries are kept.
func (c *Local[V]) Set(name pdfeval.Name, ref pdfeval.Ref, v V) {
	if !ref.IsZero() {
		if _, ok := c.byRef[ref]; ok {
			if name != "" {
				c.nameRef[name] = ref
			}
			return
		}
		if name != "" {
			c.nameRef[name] = ref
		}
		c.byRef[ref] = v
		return
	}
	if name == "" {
		return
	}
	if _, ok := c.byName[name]; ok {
		return
	}
	c.byName[name] = v
}

// Len returns the number of entries.
func (c *Local[V]) Len() int { return len(c.byName) + len(c.byRef) }
