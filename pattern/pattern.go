// Package pattern builds the intermediate representations of tiling
// patterns and shadings that a rendering backend replays.
package pattern

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/rect"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/oplist"
)

// Pattern types, see PDF_ISO_32000-2: 8.7.3.
const (
	TypeTiling  = 1
	TypeShading = 2
)

// Tiling paint types.
const (
	Colored   = 1
	Uncolored = 2
)

// Tiling is a compiled tiling pattern: the operator list of its content
// stream together with its cell geometry.
type Tiling struct {
	// Color is the "#rrggbb" color of an uncolored pattern, or empty.
	Color      string
	OpList     *oplist.OperatorList
	Matrix     matrix.Matrix
	BBox       rect.Rect
	XStep      float64
	YStep      float64
	PaintType  int
	TilingType int
}

// NewTiling reads the geometry of the tiling pattern d and combines it with
// the operator list its content stream compiled to.
func NewTiling(x pdfeval.XRef, d *pdfeval.Dict, color string, ol *oplist.OperatorList) (*Tiling, error) {
	t := &Tiling{Color: color, OpList: ol, Matrix: matrix.Identity}
	if m, ok := pdfeval.GetMatrix(x, d.GetRaw("Matrix")); ok {
		t.Matrix = m
	}

	bbox, ok := pdfeval.GetRect(x, d.GetRaw("BBox"))
	if !ok || bbox.URx == bbox.LLx || bbox.URy == bbox.LLy {
		return nil, pdfeval.Errorf("invalid tiling pattern BBox")
	}
	t.BBox = bbox

	var err error
	if t.XStep, err = requireNumber(x, d, "XStep"); err != nil {
		return nil, err
	}
	if t.YStep, err = requireNumber(x, d, "YStep"); err != nil {
		return nil, err
	}
	if t.PaintType, err = requireInt(x, d, "PaintType"); err != nil {
		return nil, err
	}
	if t.TilingType, err = requireInt(x, d, "TilingType"); err != nil {
		return nil, err
	}
	return t, nil
}

// IR returns the pattern as sent to the rendering backend.
func (t *Tiling) IR() []any {
	var color any
	if t.Color != "" {
		color = t.Color
	}
	return []any{"TilingPattern", color, t.OpList, t.Matrix, t.BBox, t.XStep, t.YStep, t.PaintType, t.TilingType}
}

func requireNumber(x pdfeval.XRef, d *pdfeval.Dict, key pdfeval.Name) (float64, error) {
	obj, err := pdfeval.Resolve(x, d.GetRaw(key))
	if err != nil {
		return 0, err
	}
	v, ok := pdfeval.Number(obj)
	if !ok {
		return 0, pdfeval.Errorf("invalid tiling pattern %s %s", key, pdfeval.Format(obj))
	}
	return v, nil
}

func requireInt(x pdfeval.XRef, d *pdfeval.Dict, key pdfeval.Name) (int, error) {
	obj, err := pdfeval.Resolve(x, d.GetRaw(key))
	if err != nil {
		return 0, err
	}
	v, ok := obj.(int64)
	if !ok {
		return 0, pdfeval.Errorf("invalid tiling pattern %s %s", key, pdfeval.Format(obj))
	}
	return int(v), nil
}
