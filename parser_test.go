package pdfeval

import (
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// formatOps reads all operations of content, each rendered as its
// operands followed by the operator.
func formatOps(t *testing.T, content string) []string {
	t.Helper()
	p := NewParser([]byte(content))
	var out []string
	for {
		op, err := p.Next()
		if err == io.EOF {
			return out
		}
		if err != nil {
			t.Fatal(err)
		}
		parts := make([]string, 0, len(op.Args)+1)
		for _, a := range op.Args {
			parts = append(parts, Format(a))
		}
		out = append(out, strings.Join(append(parts, string(op.Op)), " "))
	}
}

func Test_Parser_Next(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  []string
	}{
		"operands": {
			input: "1 0 0 1 10.5 -3 cm /F1 12 Tf (Hi) Tj",
			want:  []string{"1 0 0 1 10.5 -3 cm", "/F1 12 Tf", `"Hi" Tj`},
		},
		"arrays and dictionaries": {
			input: "[(A) -120 (B)] TJ /Span <</MCID 3>> BDC",
			want:  []string{`["A" -120 "B"] TJ`, "/Span <</MCID 3>> BDC"},
		},
		"hex string and null": {
			input: "<4142> Tj null 1 d",
			want:  []string{`"AB" Tj`, "null 1 d"},
		},
		"comments": {
			input: "q % save\nQ",
			want:  []string{"q", "Q"},
		},
		"unbalanced delimiters": {
			input: "1 ] w",
			want:  []string{"1 w"},
		},
		"trailing operands": {
			input: "1 w 2 3",
			want:  []string{"1 w"},
		},
		"no whitespace between operators": {
			input: "q 1 0 0 1 0 0 cmQ",
			want:  []string{"q", "1 0 0 1 0 0 cmQ"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.want, formatOps(t, tc.input)); diff != "" {
				t.Error("operations did not match expectations:", diff)
			}
		})
	}
}

func Test_Parser_InlineImage(t *testing.T) {
	testCases := map[string]struct {
		input string
		dict  string
		data  string
		next  []string
	}{
		"abbreviated keys": {
			input: "BI /W 2 /H 1 /CS /G /BPC 8 ID \x00\xff EI Q",
			dict:  "<</Width 2 /Height 1 /ColorSpace /DeviceGray /BitsPerComponent 8>>",
			data:  "\x00\xff",
			next:  []string{"Q"},
		},
		"data containing EI": {
			input: "BI /W 4 /H 1 /CS /RGB /BPC 8 /F [/AHx] ID 4549 EI2 EI\nQ",
			dict:  "<</Width 4 /Height 1 /ColorSpace /DeviceRGB /BitsPerComponent 8 /Filter [/ASCIIHexDecode]>>",
			data:  "4549 EI2",
			next:  []string{"Q"},
		},
		"length": {
			input: "BI /W 1 /H 1 /L 4 ID  EI EI Q",
			dict:  "<</Width 1 /Height 1 /Length 4>>",
			data:  " EI ",
			next:  []string{"Q"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			p := NewParser([]byte(tc.input))
			op, err := p.Next()
			if err != nil {
				t.Fatal(err)
			}
			if op.Op != "EI" || len(op.Args) != 1 {
				t.Fatalf("got %s with %d operands, want EI with the image", op.Op, len(op.Args))
			}
			s, ok := op.Args[0].(*Stream)
			if !ok {
				t.Fatalf("operand is %T, want a stream", op.Args[0])
			}
			if diff := cmp.Diff(tc.dict, Format(s.Dict)); diff != "" {
				t.Error("image dictionary did not match expectations:", diff)
			}
			raw, err := s.Raw()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.data, string(raw)); diff != "" {
				t.Error("image data did not match expectations:", diff)
			}
			for _, want := range tc.next {
				op, err := p.Next()
				if err != nil {
					t.Fatal(err)
				}
				if string(op.Op) != want {
					t.Errorf("next operator %s, want %s", op.Op, want)
				}
			}
		})
	}
}

func Test_Interpret(t *testing.T) {
	input := `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
1 begincodespacerange <00> <FF> endcodespacerange
2 beginbfchar
<01> <0041>
<02> <0042>
endbfchar
/Foo { dup pop } def
endcmap`

	var got []string
	err := Interpret([]byte(input), func(stk *Stack, op Operator) {
		switch op {
		case "endbfchar":
			got = append(got, fmt.Sprintf("%d pairs", stk.Len()/2))
		case "def":
			proc := stk.Pop()
			got = append(got, Format(stk.Pop())+"="+Format(proc))
		}
		for stk.Len() > 0 {
			stk.Pop()
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"2 pairs", "/Foo=null"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Error("interpreted operations did not match expectations:", diff)
	}
}
