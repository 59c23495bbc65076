package pdfeval

import (
	"context"
	"fmt"
	"sync"
)

// An XRef resolves indirect references. Fetch is memoized and safe for
// concurrent use. It returns ErrNotFound for unknown references,
// ErrCircularReference when resolution loops back on itself, and a
// *MissingDataError when the object's bytes are not loaded yet.
type XRef interface {
	Fetch(ref Ref) (Object, error)
}

// A DataLoader is implemented by XRefs backed by progressively loaded data.
// RequestData blocks until the bytes described by the error are available.
type DataLoader interface {
	RequestData(ctx context.Context, missing *MissingDataError) error
}

// A MemXRef is an in-memory XRef. The zero value is not usable, call
// NewMemXRef.
type MemXRef struct {
	mu      sync.Mutex
	objs    map[Ref]Object
	pending map[Ref]Object
	fetches map[Ref]int
	next    uint32
}

// NewMemXRef returns an empty in-memory XRef.
func NewMemXRef() *MemXRef {
	return &MemXRef{
		objs:    make(map[Ref]Object),
		pending: make(map[Ref]Object),
		fetches: make(map[Ref]int),
		next:    1,
	}
}

// Add stores obj under a fresh reference and returns it.
func (x *MemXRef) Add(obj Object) Ref {
	x.mu.Lock()
	ref := Ref{Num: x.next}
	x.next++
	x.mu.Unlock()
	x.Set(ref, obj)
	return ref
}

// Alloc reserves a reference without storing an object, so that
// self-referencing structures can be built.
func (x *MemXRef) Alloc() Ref {
	x.mu.Lock()
	defer x.mu.Unlock()
	ref := Ref{Num: x.next}
	x.next++
	return ref
}

// Set stores obj under ref. Dictionaries and streams are bound to x and
// record ref as their identity.
func (x *MemXRef) Set(ref Ref, obj Object) {
	x.bind(ref, obj)
	x.mu.Lock()
	defer x.mu.Unlock()
	x.objs[ref] = obj
	if ref.Num >= x.next {
		x.next = ref.Num + 1
	}
}

// SetPending stores obj under ref but reports it as missing until a
// RequestData call for ref, which simulates progressive loading.
func (x *MemXRef) SetPending(ref Ref, obj Object) {
	x.bind(ref, obj)
	x.mu.Lock()
	defer x.mu.Unlock()
	x.pending[ref] = obj
	if ref.Num >= x.next {
		x.next = ref.Num + 1
	}
}

func (x *MemXRef) bind(ref Ref, obj Object) {
	switch o := obj.(type) {
	case *Dict:
		o.Ref = ref
	case *Stream:
		o.Dict.Ref = ref
	}
	x.Bind(obj)
}

// Fetch implements XRef.
func (x *MemXRef) Fetch(ref Ref) (Object, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.fetches[ref]++
	if obj, ok := x.objs[ref]; ok {
		return obj, nil
	}
	if _, ok := x.pending[ref]; ok {
		return nil, &MissingDataError{Ref: ref}
	}
	return nil, fmt.Errorf("%v: %w", ref, ErrNotFound)
}

// RequestData implements DataLoader by making the pending object available.
func (x *MemXRef) RequestData(ctx context.Context, missing *MissingDataError) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	obj, ok := x.pending[missing.Ref]
	if !ok {
		return fmt.Errorf("%v: %w", missing.Ref, ErrNotFound)
	}
	delete(x.pending, missing.Ref)
	x.objs[missing.Ref] = obj
	return nil
}

// Fetches returns how often ref was fetched.
func (x *MemXRef) Fetches(ref Ref) int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.fetches[ref]
}

// Bind attaches obj and everything reachable from it through direct objects
// to x, so that Get can resolve references. Use it for dictionaries built
// by hand that are not themselves stored in x.
func (x *MemXRef) Bind(obj Object) {
	switch o := obj.(type) {
	case *Dict:
		if o == nil {
			return
		}
		o.xref = x
		for _, k := range o.keys {
			x.Bind(o.m[k])
		}
	case *Stream:
		x.Bind(o.Dict)
	case Array:
		for _, e := range o {
			x.Bind(e)
		}
	}
}
