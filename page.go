// Copyright 2014 The Go Authors.  All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pdfeval

import (
	"bytes"

	"seehuhn.de/go/geom/rect"
)

// maxPageTreeDepth bounds the nesting of the page tree.
const maxPageTreeDepth = 64

// A Page represent a single page in a PDF file.
// The methods interpret a Page dictionary stored in Dict.
type Page struct {
	Dict  *Dict
	Index int
}

// Page returns the page for the given page number.
// Page numbers are indexed starting at 1, not 0.
// If the page is not found, Page returns an error wrapping ErrNotFound.
func (r *Reader) Page(num int) (Page, error) {
	pages, err := r.pageTree()
	if err != nil {
		return Page{}, err
	}
	return FindPage(pages, num-1)
}

// NumPage returns the number of pages in the PDF file.
func (r *Reader) NumPage() int {
	pages, err := r.pageTree()
	if err != nil {
		return 0
	}
	n, _ := GetInt(r, pages.GetRaw("Count"))
	return n
}

func (r *Reader) pageTree() (*Dict, error) {
	root, err := GetDict(r, r.trailer.GetRaw("Root"))
	if err != nil {
		return nil, err
	}
	pages, err := GetDict(r, root.GetRaw("Pages"))
	if err != nil {
		return nil, err
	}
	if pages == nil {
		return nil, Errorf("document has no page tree")
	}
	return pages, nil
}

// FindPage walks a page tree rooted at pages and returns the page with the
// given 0-based index.
func FindPage(pages *Dict, index int) (Page, error) {
	x := pages.XRef()
	num := index
	node := pages
	visited := RefSet{}
Search:
	for depth := 0; depth < maxPageTreeDepth; depth++ {
		if !node.Ref.IsZero() {
			if visited.Has(node.Ref) {
				return Page{}, Errorf("page tree: %w", ErrCircularReference)
			}
			visited.Add(node.Ref)
		}
		kids, err := GetArray(x, node.GetRaw("Kids"))
		if err != nil {
			return Page{}, err
		}
		for _, k := range kids {
			kid, err := GetDict(x, k)
			if err != nil {
				return Page{}, err
			}
			if kid == nil {
				continue
			}
			if kid.GetRaw("Type") == Name("Pages") || kid.Has("Kids") {
				c, _ := GetInt(x, kid.GetRaw("Count"))
				if num < c {
					node = kid
					continue Search
				}
				num -= c
				continue
			}
			if num == 0 {
				return Page{Dict: kid, Index: index}, nil
			}
			num--
		}
		break
	}
	return Page{}, Errorf("page %d: %w", index+1, ErrNotFound)
}

func (p Page) findInherited(key Name) (Object, error) {
	x := p.Dict.XRef()
	d := p.Dict
	for i := 0; d != nil && i < maxPageTreeDepth; i++ {
		if d.Has(key) {
			return d.Get(key)
		}
		var err error
		if d, err = GetDict(x, d.GetRaw("Parent")); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// Resources returns the resources dictionary associated with the page,
// which may be inherited from an ancestor in the page tree.
func (p Page) Resources() (*Dict, error) {
	obj, err := p.findInherited("Resources")
	if err != nil {
		return nil, err
	}
	res, err := GetDict(p.Dict.XRef(), obj)
	if err != nil {
		return nil, err
	}
	if res == nil {
		res = NewDict(p.Dict.XRef())
	}
	return res, nil
}

// MediaBox returns the page boundaries, defaulting to US Letter.
func (p Page) MediaBox() rect.Rect {
	obj, err := p.findInherited("MediaBox")
	if err == nil {
		if r, ok := GetRect(p.Dict.XRef(), obj); ok {
			return r
		}
	}
	return rect.Rect{URx: 612, URy: 792}
}

// Contents returns the decoded content stream of the page. When Contents is
// an array the streams are joined with white space in between.
func (p Page) Contents() ([]byte, error) {
	x := p.Dict.XRef()
	obj, err := p.Dict.Get("Contents")
	if err != nil {
		return nil, err
	}
	switch v := obj.(type) {
	case nil:
		return nil, nil
	case *Stream:
		return v.Decode()
	case Array:
		var buf bytes.Buffer
		for _, e := range v {
			s, err := GetStream(x, e)
			if err != nil {
				return nil, err
			}
			if s == nil {
				continue
			}
			data, err := s.Decode()
			if err != nil {
				return nil, err
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil
	default:
		return nil, Errorf("page Contents is %T", obj)
	}
}
