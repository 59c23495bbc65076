package pdfeval

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/rect"
)

// buildPDF writes a PDF file with a classic cross-reference table. Object
// i+1 is objs[i].
func buildPDF(objs ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	offsets := make([]int, len(objs))
	for i, o := range objs {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, o)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objs)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<</Size %d /Root 1 0 R>>\nstartxref\n%d\n%%%%EOF\n", len(objs)+1, xref)
	return buf.Bytes()
}

func contentStream(data string) string {
	return fmt.Sprintf("<</Length %d>>\nstream\n%s\nendstream", len(data), data)
}

func testPDF() []byte {
	return buildPDF(
		"<</Type /Catalog /Pages 2 0 R>>",
		"<</Type /Pages /Kids [3 0 R 4 0 R] /Count 2 /Resources <</Font <</F1 5 0 R>>>> /MediaBox [0 0 200 100]>>",
		"<</Type /Page /Parent 2 0 R /Contents 6 0 R>>",
		"<</Type /Page /Parent 2 0 R /Contents [6 0 R 7 0 R] /MediaBox [0 0 50 50]>>",
		"<</Type /Font /Subtype /Type1 /BaseFont /Helvetica>>",
		contentStream("BT /F1 12 Tf (A) Tj ET"),
		"<</Length 8 0 R>>\nstream\n0 0 m\nendstream",
		"5",
	)
}

func Test_Reader_Pages(t *testing.T) {
	data := testPDF()
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}
	if n := r.NumPage(); n != 2 {
		t.Fatalf("NumPage = %d, want 2", n)
	}

	testCases := map[string]struct {
		num      int
		contents string
		mediaBox rect.Rect
	}{
		"inherited media box": {
			num:      1,
			contents: "BT /F1 12 Tf (A) Tj ET",
			mediaBox: rect.Rect{URx: 200, URy: 100},
		},
		"content array": {
			num:      2,
			contents: "BT /F1 12 Tf (A) Tj ET\n0 0 m\n",
			mediaBox: rect.Rect{URx: 50, URy: 50},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			p, err := r.Page(tc.num)
			if err != nil {
				t.Fatal(err)
			}
			if p.Index != tc.num-1 {
				t.Errorf("Index = %d, want %d", p.Index, tc.num-1)
			}
			contents, err := p.Contents()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.contents, string(contents)); diff != "" {
				t.Error("contents did not match expectations:", diff)
			}
			if diff := cmp.Diff(tc.mediaBox, p.MediaBox()); diff != "" {
				t.Error("media box did not match expectations:", diff)
			}

			res, err := p.Resources()
			if err != nil {
				t.Fatal(err)
			}
			fonts, err := GetDict(r, res.GetRaw("Font"))
			if err != nil {
				t.Fatal(err)
			}
			if fonts.GetRaw("F1") != (Ref{Num: 5}) {
				t.Errorf("F1 = %v, want 5 0 R", Format(fonts.GetRaw("F1")))
			}
			f, err := GetDict(r, fonts.GetRaw("F1"))
			if err != nil {
				t.Fatal(err)
			}
			if f.Ref != (Ref{Num: 5}) {
				t.Errorf("font bound to %v", f.Ref)
			}
			if name, _ := GetName(r, f.GetRaw("BaseFont")); name != "Helvetica" {
				t.Errorf("BaseFont = %s", name)
			}
		})
	}

	if _, err := r.Page(3); !errors.Is(err, ErrNotFound) {
		t.Errorf("page 3: err = %v, want not found", err)
	}
}

func Test_Reader_Fetch(t *testing.T) {
	data := testPDF()
	r, err := NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatal(err)
	}

	a, err := r.Fetch(Ref{Num: 5})
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Fetch(Ref{Num: 5})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("fetching twice returned different objects")
	}
	if _, err := r.Fetch(Ref{Num: 42}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if root := r.Trailer().GetRaw("Root"); root != (Ref{Num: 1}) {
		t.Errorf("Root = %v", Format(root))
	}
}

func Test_NewReader_Invalid(t *testing.T) {
	testCases := map[string][]byte{
		"no header":    bytes.Repeat([]byte("x"), 200),
		"too short":    []byte("%PDF-1.4\n%%EOF\n"),
		"no eof":       append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte(" "), 200)...),
		"no startxref": append(append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte(" "), 200)...), "\n%%EOF\n"...),
	}

	for name, data := range testCases {
		t.Run(name, func(t *testing.T) {
			if _, err := NewReader(bytes.NewReader(data), int64(len(data))); err == nil {
				t.Error("invalid file accepted")
			}
		})
	}
}

func Test_FindPage_Cycle(t *testing.T) {
	x := NewMemXRef()
	pages := x.Alloc()
	d := NewDict(x)
	d.Set("Type", Name("Pages"))
	d.Set("Kids", Array{pages})
	d.Set("Count", int64(1))
	x.Set(pages, d)

	if _, err := FindPage(d, 0); !errors.Is(err, ErrCircularReference) {
		t.Errorf("err = %v, want a circular reference", err)
	}
}
