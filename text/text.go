// Package text holds the output of text extraction: positioned text items
// and the font styles they refer to, delivered in chunks to a Sink.
package text

import (
	"fmt"
	"strings"

	"seehuhn.de/go/geom/matrix"
)

// Kind distinguishes text items from marked-content boundaries.
type Kind int

const (
	KindText Kind = iota
	KindBeginMarkedContent
	KindBeginMarkedContentProps
	KindEndMarkedContent
)

// Dir is the writing direction of an item.
type Dir string

const (
	LTR Dir = "ltr"
	RTL Dir = "rtl"
	TTB Dir = "ttb"
)

// An Item is a run of text drawn with one font along one line.
type Item struct {
	Kind      Kind
	Str       string
	Dir       Dir
	Width     float64
	Height    float64
	Transform matrix.Matrix
	FontName  string
	HasEOL    bool

	// Tag and ID are set on marked-content items.
	Tag string
	ID  string
}

// A Style describes a font used by items.
type Style struct {
	FontFamily string
	Ascent     float64
	Descent    float64
	Vertical   bool
}

// Content is extracted text: items in content-stream order and the styles
// of the fonts they name.
type Content struct {
	Items  []Item
	Styles map[string]Style
}

// Append adds the items and styles of c2 to c.
func (c *Content) Append(c2 Content) {
	c.Items = append(c.Items, c2.Items...)
	if len(c2.Styles) > 0 && c.Styles == nil {
		c.Styles = make(map[string]Style, len(c2.Styles))
	}
	for k, v := range c2.Styles {
		c.Styles[k] = v
	}
}

// String renders the text items without position information, breaking
// lines at end-of-line items.
func (c Content) String() string {
	var b strings.Builder
	for _, it := range c.Items {
		if it.Kind != KindText {
			continue
		}
		b.WriteString(it.Str)
		if it.HasEOL {
			b.WriteByte('\n')
		}
	}

	return b.String()
}

// DebugString renders the text with an annotation at each change of font
// and marks for marked-content sections.
func (c Content) DebugString() string {
	var (
		b    strings.Builder
		font string
	)
	for _, it := range c.Items {
		switch it.Kind {
		case KindBeginMarkedContent, KindBeginMarkedContentProps:
			fmt.Fprintf(&b, "<%s>", it.Tag)
			continue
		case KindEndMarkedContent:
			b.WriteString("</>")
			continue
		}
		if it.FontName != font {
			font = it.FontName
			fmt.Fprintf(&b, "[%s|%.1f]", font, it.Transform[3])
		}
		b.WriteString(it.Str)
		if it.HasEOL {
			b.WriteByte('\n')
		}
	}

	return b.String()
}
