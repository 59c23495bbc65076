package state

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/matrix"
)

func Test_Stack_SaveRestore(t *testing.T) {
	s := NewStack(NewGraphics())
	s.State.CM(matrix.Translate(10, 20))

	s.Save()
	s.State.CM(matrix.Scale(2, 2))
	s.State.TextRenderingMode = 3
	if got, want := s.State.CTM, (matrix.Matrix{2, 0, 0, 2, 10, 20}); got != want {
		t.Errorf("CTM after scale = %v, want %v", got, want)
	}

	if !s.Restore() {
		t.Fatal("Restore reported an empty stack")
	}
	if diff := cmp.Diff(s.State.CTM, matrix.Matrix{1, 0, 0, 1, 10, 20}); diff != "" {
		t.Error("restored CTM did not match expectations:", diff)
	}
	if s.State.TextRenderingMode != 0 {
		t.Errorf("rendering mode leaked out of the saved state: %d", s.State.TextRenderingMode)
	}

	if s.Restore() {
		t.Error("Restore on an empty stack reported success")
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}

func Test_Text_Operators(t *testing.T) {
	testCases := map[string]struct {
		ops      func(tx *Text)
		wantTm   matrix.Matrix
		wantTlm  matrix.Matrix
		wantLead float64
	}{
		"Td moves both matrices": {
			ops:     func(tx *Text) { tx.Td(5, 7) },
			wantTm:  matrix.Matrix{1, 0, 0, 1, 5, 7},
			wantTlm: matrix.Matrix{1, 0, 0, 1, 5, 7},
		},
		"TD sets leading": {
			ops:      func(tx *Text) { tx.TD(0, -12) },
			wantTm:   matrix.Matrix{1, 0, 0, 1, 0, -12},
			wantTlm:  matrix.Matrix{1, 0, 0, 1, 0, -12},
			wantLead: 12,
		},
		"T* uses leading": {
			ops: func(tx *Text) {
				tx.Tm(matrix.Matrix{2, 0, 0, 2, 100, 100})
				tx.TL(10)
				tx.Tstar()
			},
			wantTm:   matrix.Matrix{2, 0, 0, 2, 100, 80},
			wantTlm:  matrix.Matrix{2, 0, 0, 2, 100, 80},
			wantLead: 10,
		},
		"Translate leaves line matrix": {
			ops: func(tx *Text) {
				tx.Tm(matrix.Matrix{2, 0, 0, 2, 100, 100})
				tx.Translate(3, 0)
			},
			wantTm:  matrix.Matrix{2, 0, 0, 2, 106, 100},
			wantTlm: matrix.Matrix{2, 0, 0, 2, 100, 100},
		},
	}

	opt := cmpopts.EquateApprox(0, 1e-9)
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			tx := NewText()
			tx.BT()
			tc.ops(tx)

			if diff := cmp.Diff(tx.TextMatrix, tc.wantTm, opt); diff != "" {
				t.Error("text matrix did not match expectations:", diff)
			}
			if diff := cmp.Diff(tx.TextLineMatrix, tc.wantTlm, opt); diff != "" {
				t.Error("text line matrix did not match expectations:", diff)
			}
			if tx.Leading != tc.wantLead {
				t.Errorf("leading = %v, want %v", tx.Leading, tc.wantLead)
			}
		})
	}
}

func Test_Text_RenderMatrix(t *testing.T) {
	tx := NewText()
	tx.Tf(nil, 12)
	tx.Tz(50)
	tx.Ts(3)
	tx.Tm(matrix.Translate(10, 20))

	got := tx.RenderMatrix(matrix.Scale(2, 2))
	want := matrix.Matrix{12, 0, 0, 24, 20, 46}
	if diff := cmp.Diff(got, want, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Error("render matrix did not match expectations:", diff)
	}
	if tx.FontMatrix != DefaultFontMatrix {
		t.Errorf("font matrix = %v, want default", tx.FontMatrix)
	}
}

func Test_Stack_TextClone(t *testing.T) {
	s := NewStack(NewText())
	s.Save()
	s.State.Tc(2)
	s.State.Td(1, 1)
	s.Restore()

	if s.State.CharSpacing != 0 || s.State.TextMatrix != matrix.Identity {
		t.Errorf("restored text state was modified: %+v", s.State)
	}
}
