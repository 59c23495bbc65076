// Package state keeps the graphics and text state of the content-stream
// interpreters together with the save/restore stack of the q and Q
// operators.
package state

import (
	"seehuhn.de/go/geom/matrix"

	"github.com/ScriptRock/pdfeval/colorspace"
	"github.com/ScriptRock/pdfeval/font"
)

// A Cloner returns an independent copy of itself.
type Cloner[T any] interface {
	Clone() T
}

// Stack holds the current state and the states saved by q.
//
// PDF_ISO_32000-2: 8.4.2 Graphics state stack
type Stack[T Cloner[T]] struct {
	State T
	saved []T
}

// NewStack returns a stack whose current state is initial.
func NewStack[T Cloner[T]](initial T) *Stack[T] {
	return &Stack[T]{State: initial}
}

// Save pushes the current state. The current state continues as a copy.
func (s *Stack[T]) Save() {
	s.saved = append(s.saved, s.State)
	s.State = s.State.Clone()
}

// Restore pops the most recently saved state. It reports false, leaving
// the state unchanged, when nothing was saved.
func (s *Stack[T]) Restore() bool {
	n := len(s.saved)
	if n == 0 {
		return false
	}
	s.State = s.saved[n-1]
	s.saved = s.saved[:n-1]
	return true
}

// Len returns the number of saved states.
func (s *Stack[T]) Len() int { return len(s.saved) }

// Graphics holds the part of the graphics state that the operator-list
// builder needs, see
// PDF_ISO_32000-2: Table 51: Device-independent graphics state parameters
type Graphics struct {
	CTM               matrix.Matrix
	Font              *font.Font
	TextRenderingMode int
	FillColorSpace    colorspace.ColorSpace
	StrokeColorSpace  colorspace.ColorSpace
}

// NewGraphics returns the initial graphics state: identity CTM and gray
// color spaces.
func NewGraphics() *Graphics {
	return &Graphics{
		CTM:              matrix.Identity,
		FillColorSpace:   colorspace.DeviceGray,
		StrokeColorSpace: colorspace.DeviceGray,
	}
}

// Clone implements Cloner.
func (g *Graphics) Clone() *Graphics {
	c := *g
	return &c
}

// CM applies the cm operator: the CTM is premultiplied by m.
func (g *Graphics) CM(m matrix.Matrix) {
	g.CTM = m.Mul(g.CTM)
}
