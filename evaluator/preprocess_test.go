package evaluator

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/state"
	"github.com/ScriptRock/pdfeval/oplist"
)

type readOp struct {
	Fn   oplist.OpCode
	Args []pdfeval.Object
}

func readAll(content string) ([]readOp, *preprocessor[*state.Graphics], error) {
	p := newPreprocessor([]byte(content), state.NewGraphics(), slog.New(slog.DiscardHandler))
	var ops []readOp
	for {
		op, err := p.read()
		if err == io.EOF {
			return ops, p, nil
		}
		if err != nil {
			return ops, p, err
		}
		ops = append(ops, readOp{Fn: op.fn, Args: op.args})
	}
}

func Test_Preprocessor_Read(t *testing.T) {
	testCases := map[string]struct {
		content string
		want    []readOp
	}{
		"operands": {
			content: "1 w /F1 12 Tf",
			want: []readOp{
				{oplist.OpSetLineWidth, []pdfeval.Object{int64(1)}},
				{oplist.OpSetFont, []pdfeval.Object{pdfeval.Name("F1"), int64(12)}},
			},
		},
		"surplus operands fill in later": {
			content: "1 2 3 w 4 5 6 7 8 c",
			want: []readOp{
				{oplist.OpSetLineWidth, []pdfeval.Object{int64(3)}},
				{oplist.OpCurveTo, []pdfeval.Object{int64(2), int64(4), int64(5), int64(6), int64(7), int64(8)}},
			},
		},
		"unknown operator passes its operands on": {
			content: "10 foo w",
			want:    []readOp{{oplist.OpSetLineWidth, []pdfeval.Object{int64(10)}}},
		},
		"missing operands": {
			content: "w 1 J",
			want:    []readOp{{oplist.OpSetLineCap, []pdfeval.Object{int64(1)}}},
		},
		"broken keyword": {
			content: "fals 2 w",
			want:    []readOp{{oplist.OpSetLineWidth, []pdfeval.Object{int64(2)}}},
		},
		"variadic": {
			content: "0.5 0.5 0.5 /P0 scn",
			want: []readOp{
				{oplist.OpSetFillColorN, []pdfeval.Object{0.5, 0.5, 0.5, pdfeval.Name("P0")}},
			},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, _, err := readAll(tc.content)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Error("operations did not match expectations:", diff)
			}
		})
	}
}

func Test_Preprocessor_InvalidPaths(t *testing.T) {
	content := ""
	for range maxInvalidPathOps {
		content += "m "
	}
	if _, _, err := readAll(content); err != nil {
		t.Errorf("%d invalid path operators rejected: %v", maxInvalidPathOps, err)
	}
	if _, _, err := readAll(content + "m"); !pdfeval.IsFormatError(err) {
		t.Errorf("err = %v, want a format error", err)
	}
}

func Test_Preprocessor_Stack(t *testing.T) {
	testCases := map[string]struct {
		content string
		ctm     matrix.Matrix
		depth   int
	}{
		"transform": {
			content: "2 0 0 2 0 0 cm 1 0 0 1 5 5 cm",
			ctm:     matrix.Matrix{2, 0, 0, 2, 10, 10},
		},
		"restore": {
			content: "q 2 0 0 2 0 0 cm Q 1 0 0 1 5 5 cm",
			ctm:     matrix.Translate(5, 5),
		},
		"unmatched save": {
			content: "q q 2 0 0 2 0 0 cm Q",
			ctm:     matrix.Identity,
			depth:   1,
		},
		"unmatched restore": {
			content: "Q 2 0 0 2 0 0 cm",
			ctm:     matrix.Scale(2, 2),
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, p, err := readAll(tc.content)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.ctm, p.stack.State.CTM); diff != "" {
				t.Error("CTM did not match expectations:", diff)
			}
			if p.depth() != tc.depth {
				t.Errorf("depth = %d, want %d", p.depth(), tc.depth)
			}
		})
	}
}
