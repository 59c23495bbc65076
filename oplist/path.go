package oplist

import (
	"log/slog"
	"math"

	"seehuhn.de/go/geom/rect"
)

// A Path is the argument of a constructPath operation: a run of path
// construction operations with their flattened operands and the bounding
// box of the points they name.
type Path struct {
	Ops  []OpCode
	Args []float64
	BBox rect.Rect
}

func emptyBBox() rect.Rect {
	return rect.Rect{
		LLx: math.Inf(1), LLy: math.Inf(1),
		URx: math.Inf(-1), URy: math.Inf(-1),
	}
}

func (p *Path) include(x, y float64) {
	p.BBox.LLx = math.Min(p.BBox.LLx, x)
	p.BBox.URx = math.Max(p.BBox.URx, x)
	p.BBox.LLy = math.Min(p.BBox.LLy, y)
	p.BBox.URy = math.Max(p.BBox.URy, y)
}

// add appends one operation and grows the bounding box by its points.
func (p *Path) add(fn OpCode, args []float64) {
	p.Ops = append(p.Ops, fn)
	p.Args = append(p.Args, args...)
	switch fn {
	case OpRectangle:
		if len(args) == 4 {
			p.include(args[0], args[1])
			p.include(args[0]+args[2], args[1]+args[3])
		}
	case OpMoveTo, OpLineTo, OpCurveTo, OpCurveTo2, OpCurveTo3:
		for i := 0; i+1 < len(args); i += 2 {
			p.include(args[i], args[i+1])
		}
	}
}

// Empty reports whether the path names no points.
func (p *Path) Empty() bool { return p.BBox.LLx > p.BBox.URx }

// AddPath appends a path construction operation, merging it into the
// preceding constructPath operation when there is one. A path started
// inside a text object is wrapped in save and restore.
func (l *OperatorList) AddPath(fn OpCode, args []float64, parsingText bool) {
	if n := len(l.fn); n > 0 && l.fn[n-1] == OpConstructPath {
		if p, ok := l.args[n-1][0].(*Path); ok {
			p.add(fn, args)
			return
		}
	}
	if parsingText {
		slog.Debug("path construction inside a text object")
		l.AddOp(OpSave)
	}
	p := &Path{BBox: emptyBBox()}
	p.add(fn, args)
	l.AddOp(OpConstructPath, p)
	if parsingText {
		l.AddOp(OpRestore)
	}
}
