package oplist

import (
	"context"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
)

func Test_OpCode_String(t *testing.T) {
	testCases := map[string]struct {
		op   OpCode
		want string
		num  int
	}{
		"first":      {op: OpDependency, want: "dependency", num: 1},
		"save":       {op: OpSave, want: "save", num: 10},
		"show text":  {op: OpShowText, want: "showText", num: 44},
		"end group":  {op: OpEndGroup, want: "endGroup", num: 77},
		"annotation": {op: OpBeginAnnotation, want: "beginAnnotation", num: 80},
		"image":      {op: OpPaintImageXObject, want: "paintImageXObject", num: 85},
		"path":       {op: OpConstructPath, want: "constructPath", num: 91},
		"last":       {op: OpSetFillTransparent, want: "setFillTransparent", num: 93},
		"retired":    {op: OpCode(82), want: "OpCode(82)", num: 82},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if int(tc.op) != tc.num {
				t.Errorf("%v = %d, want %d", tc.op, int(tc.op), tc.num)
			}
			if diff := cmp.Diff(tc.op.String(), tc.want); diff != "" {
				t.Error("opcode name did not match expectations:", diff)
			}
		})
	}
}

func Test_OperatorList_Dependencies(t *testing.T) {
	l := New(nil)
	l.AddDependency("img_1")
	l.AddOp(OpSave)
	l.AddDependency("img_1")
	l.AddDependency("g_d0_f1")

	nested := New(nil)
	nested.AddDependency("pattern_3")
	nested.AddDependency("img_1")
	nested.AddOp(OpFill)
	l.AddOpList(nested)

	want := []OpCode{OpDependency, OpSave, OpDependency, OpDependency, OpDependency, OpFill}
	if diff := cmp.Diff(l.OpCodes(), want); diff != "" {
		t.Error("operations did not match expectations:", diff)
	}
	if diff := cmp.Diff(l.Dependencies(), []string{"img_1", "g_d0_f1", "pattern_3"}); diff != "" {
		t.Error("dependencies did not match expectations:", diff)
	}
	for i, op := range l.Ops() {
		if op.Fn == OpDependency && len(op.Args) != 1 {
			t.Errorf("dependency at %d has %d args", i, len(op.Args))
		}
	}
}

func Test_OperatorList_Chunking(t *testing.T) {
	testCases := map[string]struct {
		ops        func(l *OperatorList)
		wantChunks []int
	}{
		"full chunk": {
			ops: func(l *OperatorList) {
				for i := 0; i < ChunkSize+5; i++ {
					l.AddOp(OpFill)
				}
			},
			wantChunks: []int{ChunkSize, 5},
		},
		"early cut at restore": {
			ops: func(l *OperatorList) {
				for i := 0; i < ChunkSizeAbout-1; i++ {
					l.AddOp(OpFill)
				}
				l.AddOp(OpRestore)
				l.AddOp(OpFill)
			},
			wantChunks: []int{ChunkSizeAbout, 1},
		},
		"no early cut at other ops": {
			ops: func(l *OperatorList) {
				for i := 0; i < ChunkSizeAbout+1; i++ {
					l.AddOp(OpFill)
				}
			},
			wantChunks: []int{ChunkSizeAbout + 1},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var rec Recorder
			l := New(&rec)
			tc.ops(l)
			total := l.TotalLength()
			if err := l.Flush(true); err != nil {
				t.Fatal(err)
			}

			var got []int
			for _, c := range rec.Chunks {
				got = append(got, c.Length)
				if len(c.Fn) != len(c.Args) {
					t.Errorf("chunk has %d ops and %d args", len(c.Fn), len(c.Args))
				}
			}
			if diff := cmp.Diff(got, tc.wantChunks); diff != "" {
				t.Error("chunk sizes did not match expectations:", diff)
			}
			if !rec.Chunks[len(rec.Chunks)-1].LastChunk {
				t.Error("final chunk not marked as last")
			}
			if sum := len(rec.Ops()); sum != total {
				t.Errorf("recorded %d ops, list had %d", sum, total)
			}
		})
	}
}

func Test_OperatorList_AddPath(t *testing.T) {
	l := New(nil)
	l.AddPath(OpMoveTo, []float64{10, 20}, false)
	l.AddPath(OpLineTo, []float64{30, 5}, false)
	l.AddPath(OpCurveTo, []float64{0, 0, 50, 60, 40, 40}, false)
	l.AddPath(OpRectangle, []float64{100, 100, -10, 20}, false)
	l.AddOp(OpStroke)
	l.AddPath(OpMoveTo, []float64{1, 1}, true)

	want := []OpCode{OpConstructPath, OpStroke, OpSave, OpConstructPath, OpRestore}
	if diff := cmp.Diff(l.OpCodes(), want); diff != "" {
		t.Error("operations did not match expectations:", diff)
	}

	p := l.Ops()[0].Args[0].(*Path)
	wantPath := &Path{
		Ops:  []OpCode{OpMoveTo, OpLineTo, OpCurveTo, OpRectangle},
		Args: []float64{10, 20, 30, 5, 0, 0, 50, 60, 40, 40, 100, 100, -10, 20},
		BBox: rect.Rect{LLx: 0, LLy: 0, URx: 100, URy: 120},
	}
	if diff := cmp.Diff(p, wantPath); diff != "" {
		t.Error("path did not match expectations:", diff)
	}

	closed := New(nil)
	closed.AddPath(OpClosePath, nil, false)
	if p := closed.Ops()[0].Args[0].(*Path); !p.Empty() || !math.IsInf(p.BBox.LLx, 1) {
		t.Errorf("closePath alone produced bbox %v", p.BBox)
	}
}

func Test_OperatorList_AddImageOps(t *testing.T) {
	testCases := map[string]struct {
		oc      any
		hasMask bool
		want    []OpCode
	}{
		"plain": {want: []OpCode{OpPaintImageXObject}},
		"optional content": {
			oc:   "oc1",
			want: []OpCode{OpBeginMarkedContentProps, OpPaintImageXObject, OpEndMarkedContent},
		},
		"mask": {
			hasMask: true,
			want:    []OpCode{OpSave, OpSetGState, OpPaintImageXObject, OpRestore},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			l := New(nil)
			l.AddImageOps(OpPaintImageXObject, []any{"img_p0_1", 10, 10}, tc.oc, tc.hasMask)

			if diff := cmp.Diff(l.OpCodes(), tc.want); diff != "" {
				t.Error("operations did not match expectations:", diff)
			}
		})
	}
}

type slowSink struct {
	Recorder
	waits int
}

func (s *slowSink) Ready(ctx context.Context) error {
	s.waits++
	return ctx.Err()
}

func Test_OperatorList_Ready(t *testing.T) {
	s := &slowSink{}
	l := New(s)
	if err := l.Ready(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.waits != 1 {
		t.Errorf("sink waited %d times, want 1", s.waits)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := New(nil).Ready(ctx); err == nil {
		t.Error("Ready ignored a cancelled context")
	}
}
