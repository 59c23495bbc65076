// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfeval

import (
	"bytes"
	"fmt"
	"strconv"
	"sync"

	"github.com/ScriptRock/pdfeval/internal/encoding"
)

// An Object is a PDF syntax object, one of the following Go types:
//
//	nil, the PDF null
//	bool, a PDF boolean
//	int64, a PDF integer
//	float64, a PDF real
//	string, a PDF string (raw bytes)
//	Name, a PDF name without the leading slash
//	Operator, a content-stream operator
//	Array, a PDF array
//	*Dict, a PDF dictionary
//	*Stream, a PDF stream
//	Ref, an indirect reference
type Object any

// A Name is a PDF name, without the leading slash.
type Name string

// An Operator is a content-stream keyword such as "Tj" or "re".
type Operator string

// An Array is a PDF array.
type Array []Object

// A Ref is an indirect reference to an object in the XRef.
type Ref struct {
	Num uint32
	Gen uint16
}

func (r Ref) String() string { return fmt.Sprintf("%d %d R", r.Num, r.Gen) }

// IsZero reports whether r is the zero reference, used for direct objects.
func (r Ref) IsZero() bool { return r == Ref{} }

// A Dict is a PDF dictionary. Keys keep their insertion order.
// Get resolves indirect references through the XRef the dictionary was read
// from, GetRaw does not.
type Dict struct {
	// Ref is the reference the dictionary was fetched by, or zero for
	// direct objects.
	Ref Ref

	xref XRef
	keys []Name
	m    map[Name]Object
}

// NewDict returns an empty dictionary resolving references through xref.
func NewDict(xref XRef) *Dict {
	return &Dict{xref: xref, m: make(map[Name]Object)}
}

// XRef returns the resolver used by Get.
func (d *Dict) XRef() XRef {
	if d == nil {
		return nil
	}
	return d.xref
}

// Set stores v under key. A nil v removes the key.
func (d *Dict) Set(key Name, v Object) {
	if v == nil {
		d.Delete(key)
		return
	}
	if d.m == nil {
		d.m = make(map[Name]Object)
	}
	if _, ok := d.m[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.m[key] = v
}

// Delete removes key from the dictionary.
func (d *Dict) Delete(key Name) {
	if _, ok := d.m[key]; !ok {
		return
	}
	delete(d.m, key)
	for i, k := range d.keys {
		if k == key {
			d.keys = append(d.keys[:i], d.keys[i+1:]...)
			break
		}
	}
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Name {
	if d == nil {
		return nil
	}
	return append([]Name(nil), d.keys...)
}

// Has reports whether key is present.
func (d *Dict) Has(key Name) bool {
	if d == nil {
		return false
	}
	_, ok := d.m[key]
	return ok
}

// GetRaw returns the value stored under key without dereferencing it.
func (d *Dict) GetRaw(key Name) Object {
	if d == nil {
		return nil
	}
	return d.m[key]
}

// Get returns the value stored under key, resolving indirect references.
// A missing key yields (nil, nil).
func (d *Dict) Get(key Name) (Object, error) {
	if d == nil {
		return nil, nil
	}
	return Resolve(d.xref, d.m[key])
}

// Lookup returns the value of the first key present, which lets callers
// accept abbreviated inline-image keys next to the full names.
func (d *Dict) Lookup(keys ...Name) (Object, error) {
	for _, k := range keys {
		if d.Has(k) {
			return d.Get(k)
		}
	}
	return nil, nil
}

// Clone returns a shallow copy of d.
func (d *Dict) Clone() *Dict {
	c := NewDict(d.XRef())
	if d == nil {
		return c
	}
	c.Ref = d.Ref
	for _, k := range d.keys {
		c.Set(k, d.m[k])
	}
	return c
}

// Merge returns a dictionary holding the entries of all dicts, where earlier
// dictionaries win. Sub-dictionaries are not merged.
func Merge(dicts ...*Dict) *Dict {
	var out *Dict
	for _, d := range dicts {
		if d == nil {
			continue
		}
		if out == nil {
			out = NewDict(d.xref)
		}
		for _, k := range d.keys {
			if !out.Has(k) {
				out.Set(k, d.m[k])
			}
		}
	}
	if out == nil {
		out = NewDict(nil)
	}
	return out
}

func (d *Dict) String() string { return objfmt(d) }

// A Stream is a PDF stream: a dictionary plus a byte sequence.
type Stream struct {
	Dict *Dict

	offset int64
	load   func() ([]byte, error)

	mu      sync.Mutex
	raw     []byte
	loaded  bool
	decoded []byte
	decErr  error
	decDone bool
}

// NewStream returns a stream with the given dictionary and undecoded data.
func NewStream(dict *Dict, raw []byte) *Stream {
	if dict == nil {
		dict = NewDict(nil)
	}
	return &Stream{Dict: dict, raw: raw, loaded: true}
}

// Ref returns the reference the stream was fetched by.
func (s *Stream) Ref() Ref { return s.Dict.Ref }

// Raw returns the stream data before any filter is applied.
func (s *Stream) Raw() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawLocked()
}

func (s *Stream) rawLocked() ([]byte, error) {
	if s.loaded {
		return s.raw, nil
	}
	if s.load == nil {
		return nil, Errorf("stream data not present")
	}
	raw, err := s.load()
	if err != nil {
		return nil, err
	}
	s.raw, s.loaded = raw, true
	return raw, nil
}

// Decode returns the stream data with all filters applied. Image codec
// filters (DCTDecode, JPXDecode, JBIG2Decode) cannot be applied and are
// reported as an *UnsupportedError; use DecodeUntilImage for image data.
func (s *Stream) Decode() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.decDone {
		return s.decoded, s.decErr
	}
	raw, err := s.rawLocked()
	if err != nil {
		// Missing data is not memoized so a later call can succeed.
		return nil, err
	}
	data, rest, err := decodeFilters(s.Dict, raw)
	if err == nil && rest != nil {
		err = &UnsupportedError{Feature: "filter " + string(rest.Name)}
	}
	s.decoded, s.decErr, s.decDone = data, err, true
	return data, err
}

// DecodeUntilImage applies filters up to the first image codec filter and
// returns the partially decoded data together with that filter, which is
// nil when every filter was applied.
func (s *Stream) DecodeUntilImage() ([]byte, *Filter, error) {
	raw, err := s.Raw()
	if err != nil {
		return nil, nil, err
	}
	return decodeFilters(s.Dict, raw)
}

func (s *Stream) String() string { return fmt.Sprintf("%v@%d", objfmt(s.Dict), s.offset) }

// A RefSet is a set of references. Resolvers thread a RefSet through
// recursive calls to detect cycles.
type RefSet map[Ref]struct{}

// Has reports whether r is in the set.
func (s RefSet) Has(r Ref) bool {
	_, ok := s[r]
	return ok
}

// Add inserts r into the set.
func (s RefSet) Add(r Ref) { s[r] = struct{}{} }

// Remove deletes r from the set.
func (s RefSet) Remove(r Ref) { delete(s, r) }

// Clone returns an independent copy of s. Cloning a nil set returns an
// empty, non-nil set.
func (s RefSet) Clone() RefSet {
	c := make(RefSet, len(s))
	for r := range s {
		c[r] = struct{}{}
	}
	return c
}

func objfmt(x any) string {
	switch x := x.(type) {
	default:
		return fmt.Sprint(x)
	case nil:
		return "null"
	case string:
		if encoding.IsPDFDocEncoded(x) {
			return strconv.Quote(encoding.PDFDocDecode(x))
		}
		if encoding.IsUTF16(x) {
			return strconv.Quote(encoding.UTF16Decode(x[2:]))
		}
		return strconv.Quote(x)
	case Name:
		return "/" + string(x)
	case Operator:
		return string(x)
	case *Dict:
		if x == nil {
			return "null"
		}
		var buf bytes.Buffer
		buf.WriteString("<<")
		for i, k := range x.keys {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString("/")
			buf.WriteString(string(k))
			buf.WriteString(" ")
			buf.WriteString(objfmt(x.m[k]))
		}
		buf.WriteString(">>")
		return buf.String()
	case Array:
		var buf bytes.Buffer
		buf.WriteString("[")
		for i, elem := range x {
			if i > 0 {
				buf.WriteString(" ")
			}
			buf.WriteString(objfmt(elem))
		}
		buf.WriteString("]")
		return buf.String()
	case *Stream:
		return x.String()
	case Ref:
		return x.String()
	case objdef:
		return fmt.Sprintf("{%v obj}%v", x.ref, objfmt(x.obj))
	}
}

// Format returns a PDF-like textual representation of obj for messages.
func Format(obj Object) string { return objfmt(obj) }
