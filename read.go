// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package pdfeval implements the PDF object model and a content-stream
// evaluator front end.
//
// # Overview
//
// A PDF document is a graph of objects: booleans, numbers, strings, names,
// arrays, dictionaries and streams, linked by indirect references. An XRef
// resolves references to objects. Reader is an XRef over a PDF file and
// MemXRef is an in-memory one, used for synthesized documents and tests.
//
// Dict.Get resolves references transparently while Dict.GetRaw returns the
// stored value unchanged. The distinction matters wherever object identity
// is used, for example as a cache key or for cycle detection.
//
// Content streams are read with a Parser, which yields one Operation per
// operator together with its operands. The evaluator package turns those
// operations into operator lists and text content.
package pdfeval

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// xrefEntry locates one object in the file.
type xrefEntry struct {
	ref      Ref
	inStream bool
	stream   Ref
	offset   int64
}

// A Reader is a single PDF file open for reading. It implements XRef.
type Reader struct {
	f       io.ReaderAt
	end     int64
	xref    []xrefEntry
	trailer *Dict

	mu    sync.Mutex
	cache map[Ref]Object
}

// Open opens a file for reading.
// Reader.Close should be called when done with the Reader.
func Open(file string) (*Reader, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	reader, err := NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, err
	}
	return reader, nil
}

// NewReader opens a file for reading, using the data in f with the given total size.
func NewReader(f io.ReaderAt, size int64) (r *Reader, err error) {
	defer func() {
		if p := recover(); p != nil {
			fe, ok := p.(*FormatError)
			if !ok {
				panic(p)
			}
			r, err = nil, fe
		}
	}()

	buf := make([]byte, 10)
	f.ReadAt(buf, 0)
	if !bytes.HasPrefix(buf, []byte("%PDF-1.")) && !bytes.HasPrefix(buf, []byte("%PDF-2.")) {
		return nil, fmt.Errorf("not a PDF file: invalid header")
	}
	end := size
	const endChunk = 100
	if end < endChunk {
		return nil, Errorf("file too short")
	}
	buf = make([]byte, endChunk)
	f.ReadAt(buf, end-endChunk)
	buf = bytes.TrimRight(buf, "\r\n\t ")
	if !bytes.HasSuffix(buf, []byte("%%EOF")) {
		return nil, fmt.Errorf("not a PDF file: missing %%%%EOF")
	}
	i := findLastLine(buf, "startxref")
	if i < 0 {
		return nil, Errorf("missing final startxref")
	}

	r = &Reader{
		f:     f,
		end:   end,
		cache: make(map[Ref]Object),
	}
	pos := end - endChunk + int64(i)
	b := newBuffer(io.NewSectionReader(f, pos, end-pos), pos)
	if b.readToken() != keyword("startxref") {
		return nil, Errorf("missing startxref")
	}
	startxref, ok := b.readToken().(int64)
	if !ok {
		return nil, Errorf("startxref not followed by integer")
	}
	b = r.newBuffer(startxref)
	xref, trailer, err := readXref(r, b)
	if err != nil {
		return nil, err
	}
	r.xref = xref
	r.trailer = trailer
	if trailer.Has("Encrypt") {
		return nil, &UnsupportedError{Feature: "encrypted documents"}
	}
	return r, nil
}

func (r *Reader) newBuffer(offset int64) *buffer {
	b := newBuffer(io.NewSectionReader(r.f, offset, r.end-offset), offset)
	b.xref = r
	return b
}

// Close closes the underlying Reader if it is an io.Closer.
func (r *Reader) Close() error {
	if c, ok := r.f.(io.Closer); ok {
		return c.Close()
	}

	return nil
}

// Trailer returns the trailer dictionary.
func (r *Reader) Trailer() *Dict { return r.trailer }

func readXref(r *Reader, b *buffer) ([]xrefEntry, *Dict, error) {
	tok := b.readToken()
	if tok == keyword("xref") {
		return readXrefTable(r, b)
	}
	if _, ok := tok.(int64); ok {
		b.unreadToken(tok)
		return readXrefStream(r, b)
	}
	return nil, nil, Errorf("cross-reference table not found: %v", tok)
}

func readXrefStream(r *Reader, b *buffer) ([]xrefEntry, *Dict, error) {
	obj1 := b.readObject()
	obj, ok := obj1.(objdef)
	if !ok {
		return nil, nil, Errorf("cross-reference table not found: %v", objfmt(obj1))
	}
	strm, ok := obj.obj.(*Stream)
	if !ok {
		return nil, nil, Errorf("cross-reference table not found: %v", objfmt(obj))
	}
	r.attach(strm)
	if strm.Dict.GetRaw("Type") != Name("XRef") {
		return nil, nil, Errorf("xref stream does not have type XRef")
	}
	size, ok := strm.Dict.GetRaw("Size").(int64)
	if !ok {
		return nil, nil, Errorf("xref stream missing Size")
	}
	table := make([]xrefEntry, size)

	table, err := readXrefStreamData(strm, table, size)
	if err != nil {
		return nil, nil, err
	}

	for prevoff := strm.Dict.GetRaw("Prev"); prevoff != nil; {
		off, ok := prevoff.(int64)
		if !ok {
			return nil, nil, Errorf("xref Prev is not integer: %v", prevoff)
		}
		b := r.newBuffer(off)
		obj1 := b.readObject()
		obj, ok := obj1.(objdef)
		if !ok {
			return nil, nil, Errorf("xref prev stream not found: %v", objfmt(obj1))
		}
		prevstrm, ok := obj.obj.(*Stream)
		if !ok {
			return nil, nil, Errorf("xref prev stream not found: %v", objfmt(obj))
		}
		r.attach(prevstrm)
		prevoff = prevstrm.Dict.GetRaw("Prev")
		if prevstrm.Dict.GetRaw("Type") != Name("XRef") {
			return nil, nil, Errorf("xref prev stream does not have type XRef")
		}
		psize, _ := prevstrm.Dict.GetRaw("Size").(int64)
		if psize > size {
			return nil, nil, Errorf("xref prev stream larger than last stream")
		}
		if table, err = readXrefStreamData(prevstrm, table, psize); err != nil {
			return nil, nil, fmt.Errorf("reading xref prev stream: %w", err)
		}
	}

	return table, strm.Dict, nil
}

func readXrefStreamData(strm *Stream, table []xrefEntry, size int64) ([]xrefEntry, error) {
	index, _ := strm.Dict.GetRaw("Index").(Array)
	if index == nil {
		index = Array{int64(0), size}
	}
	if len(index)%2 != 0 {
		return nil, Errorf("invalid Index array %v", objfmt(index))
	}
	ww, ok := strm.Dict.GetRaw("W").(Array)
	if !ok {
		return nil, Errorf("xref stream missing W array")
	}

	var w []int
	for _, x := range ww {
		i, ok := x.(int64)
		if !ok || int64(int(i)) != i {
			return nil, Errorf("invalid W array %v", objfmt(ww))
		}
		w = append(w, int(i))
	}
	if len(w) < 3 {
		return nil, Errorf("invalid W array %v", objfmt(ww))
	}

	wtotal := 0
	for _, wid := range w {
		wtotal += wid
	}
	raw, err := strm.Decode()
	if err != nil {
		return nil, err
	}
	data := bytes.NewReader(raw)
	buf := make([]byte, wtotal)
	for len(index) > 0 {
		start, ok1 := index[0].(int64)
		n, ok2 := index[1].(int64)
		if !ok1 || !ok2 {
			return nil, Errorf("malformed Index pair %v %v", objfmt(index[0]), objfmt(index[1]))
		}
		index = index[2:]
		for i := 0; i < int(n); i++ {
			_, err := io.ReadFull(data, buf)
			if err != nil {
				return nil, Errorf("error reading xref stream: %v", err)
			}
			v1 := decodeInt(buf[0:w[0]])
			if w[0] == 0 {
				v1 = 1
			}
			v2 := decodeInt(buf[w[0] : w[0]+w[1]])
			v3 := decodeInt(buf[w[0]+w[1] : w[0]+w[1]+w[2]])
			x := int(start) + i
			for len(table) <= x {
				table = append(table, xrefEntry{})
			}
			if table[x].ref != (Ref{}) {
				continue
			}
			switch v1 {
			case 0:
				table[x] = xrefEntry{ref: Ref{Gen: 65535}}
			case 1:
				table[x] = xrefEntry{ref: Ref{Num: uint32(x), Gen: uint16(v3)}, offset: int64(v2)}
			case 2:
				table[x] = xrefEntry{ref: Ref{Num: uint32(x)}, inStream: true, stream: Ref{Num: uint32(v2)}, offset: int64(v3)}
			default:
				slog.Debug("invalid xref stream type", slog.Int("v1", v1), slog.Any("buf", buf))
			}
		}
	}
	return table, nil
}

func decodeInt(b []byte) int {
	x := 0
	for _, c := range b {
		x = x<<8 | int(c)
	}
	return x
}

func readXrefTable(r *Reader, b *buffer) ([]xrefEntry, *Dict, error) {
	var table []xrefEntry

	table, err := readXrefTableData(b, table)
	if err != nil {
		return nil, nil, err
	}

	trailer, ok := b.readObject().(*Dict)
	if !ok {
		return nil, nil, Errorf("xref table not followed by trailer dictionary")
	}

	for prevoff := trailer.GetRaw("Prev"); prevoff != nil; {
		off, ok := prevoff.(int64)
		if !ok {
			return nil, nil, Errorf("xref Prev is not integer: %v", prevoff)
		}
		b := r.newBuffer(off)
		tok := b.readToken()
		if tok != keyword("xref") {
			return nil, nil, Errorf("xref Prev does not point to xref")
		}
		table, err = readXrefTableData(b, table)
		if err != nil {
			return nil, nil, err
		}

		prev, ok := b.readObject().(*Dict)
		if !ok {
			return nil, nil, Errorf("xref Prev table not followed by trailer dictionary")
		}
		prevoff = prev.GetRaw("Prev")
	}

	size, ok := trailer.GetRaw("Size").(int64)
	if !ok {
		return nil, nil, Errorf("trailer missing /Size entry")
	}

	if size < int64(len(table)) {
		table = table[:size]
	}

	return table, trailer, nil
}

func readXrefTableData(b *buffer, table []xrefEntry) ([]xrefEntry, error) {
	for {
		tok := b.readToken()
		if tok == keyword("trailer") {
			break
		}
		start, ok1 := tok.(int64)
		n, ok2 := b.readToken().(int64)
		if !ok1 || !ok2 {
			return nil, Errorf("malformed xref table")
		}
		for i := 0; i < int(n); i++ {
			off, ok1 := b.readToken().(int64)
			gen, ok2 := b.readToken().(int64)
			alloc, ok3 := b.readToken().(keyword)
			if !ok1 || !ok2 || !ok3 || alloc != keyword("f") && alloc != keyword("n") {
				return nil, Errorf("malformed xref table")
			}
			x := int(start) + i
			for len(table) <= x {
				table = append(table, xrefEntry{})
			}
			if alloc == "n" && table[x].offset == 0 {
				table[x] = xrefEntry{ref: Ref{Num: uint32(x), Gen: uint16(gen)}, offset: off}
			}
		}
	}
	return table, nil
}

func findLastLine(buf []byte, s string) int {
	bs := []byte(s)
	max := len(buf)
	for {
		i := bytes.LastIndex(buf[:max], bs)
		if i <= 0 || i+len(bs) >= len(buf) {
			return -1
		}
		if (buf[i-1] == '\n' || buf[i-1] == '\r') && (buf[i+len(bs)] == '\n' || buf[i+len(bs)] == '\r') {
			return i
		}
		max = i
	}
}

// Fetch implements XRef. Objects are parsed once and memoized.
func (r *Reader) Fetch(ref Ref) (Object, error) {
	return r.fetch(ref, nil)
}

func (r *Reader) fetch(ref Ref, visiting RefSet) (obj Object, err error) {
	r.mu.Lock()
	if obj, ok := r.cache[ref]; ok {
		r.mu.Unlock()
		return obj, nil
	}
	r.mu.Unlock()

	if visiting.Has(ref) {
		return nil, fmt.Errorf("%v: %w", ref, ErrCircularReference)
	}
	visiting = visiting.Clone()
	visiting.Add(ref)

	defer func() {
		if p := recover(); p != nil {
			fe, ok := p.(*FormatError)
			if !ok {
				panic(p)
			}
			obj, err = nil, fe
		}
	}()

	obj, err = r.load(ref, visiting)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.cache[ref]; ok {
		// Another goroutine won the race; keep object identity stable.
		return prev, nil
	}
	r.cache[ref] = obj
	return obj, nil
}

func (r *Reader) load(ref Ref, visiting RefSet) (Object, error) {
	if ref.Num >= uint32(len(r.xref)) {
		return nil, fmt.Errorf("%v: %w", ref, ErrNotFound)
	}
	xref := r.xref[ref.Num]
	if xref.ref != ref || !xref.inStream && xref.offset == 0 {
		return nil, fmt.Errorf("%v: %w", ref, ErrNotFound)
	}

	if !xref.inStream {
		b := r.newBuffer(xref.offset)
		def, ok := b.readObject().(objdef)
		if !ok {
			return nil, Errorf("loading %v: no object definition at offset %d", ref, xref.offset)
		}
		if def.ref != ref {
			return nil, Errorf("loading %v: found %v", ref, def.ref)
		}
		r.bind(ref, def.obj)
		return def.obj, nil
	}

	sobj, err := r.fetch(xref.stream, visiting)
	if err != nil {
		return nil, err
	}
	for {
		strm, ok := sobj.(*Stream)
		if !ok {
			return nil, Errorf("loading %v: object stream %v is not a stream", ref, xref.stream)
		}
		if strm.Dict.GetRaw("Type") != Name("ObjStm") {
			return nil, Errorf("loading %v: not an object stream", ref)
		}
		n, _ := strm.Dict.GetRaw("N").(int64)
		first, _ := strm.Dict.GetRaw("First").(int64)
		if first == 0 {
			return nil, Errorf("object stream missing First")
		}
		data, err := strm.Decode()
		if err != nil {
			return nil, err
		}
		b := newBuffer(bytes.NewReader(data), 0)
		b.allowEOF = true
		b.allowStream = false
		b.xref = r
		for i := 0; i < int(n); i++ {
			id, _ := b.readToken().(int64)
			off, _ := b.readToken().(int64)
			if uint32(id) == ref.Num {
				b.seekForward(first + off)
				obj := b.readObject()
				r.bind(ref, obj)
				return obj, nil
			}
		}
		ext := strm.Dict.GetRaw("Extends")
		if ext == nil {
			return nil, Errorf("cannot find %v in object stream", ref)
		}
		extRef, ok := ext.(Ref)
		if !ok {
			return nil, Errorf("object stream Extends is not a reference")
		}
		if sobj, err = r.fetch(extRef, visiting); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) bind(ref Ref, obj Object) {
	switch o := obj.(type) {
	case *Dict:
		o.Ref = ref
	case *Stream:
		o.Dict.Ref = ref
		r.attach(o)
	}
}

// attach sets up lazy loading of a stream's data from the file.
func (r *Reader) attach(s *Stream) {
	offset := s.offset
	s.load = func() ([]byte, error) {
		length, err := GetInt(r, s.Dict.GetRaw("Length"))
		if err != nil {
			return nil, err
		}
		if length < 0 || offset+int64(length) > r.end {
			return nil, Errorf("stream length %d out of range", length)
		}
		buf := make([]byte, length)
		if _, err := r.f.ReadAt(buf, offset); err != nil && err != io.EOF {
			return nil, err
		}
		return buf, nil
	}
}
