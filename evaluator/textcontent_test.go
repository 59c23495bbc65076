package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"seehuhn.de/go/geom/matrix"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/text"
)

func textContent(t *testing.T, e *Evaluator, content string, resources *pdfeval.Dict) text.Content {
	t.Helper()
	sink := text.NewBuffer(0)
	if err := e.GetTextContent(context.Background(), []byte(content), resources, sink); err != nil {
		t.Fatal(err)
	}
	return sink.Content()
}

// textItem is the part of an item the tests compare.
type textItem struct {
	Kind   text.Kind
	Str    string
	Width  float64
	HasEOL bool
	Tag    string
	ID     string
}

func textItems(c text.Content) []textItem {
	out := make([]textItem, 0, len(c.Items))
	for _, it := range c.Items {
		out = append(out, textItem{Kind: it.Kind, Str: it.Str, Width: it.Width, HasEOL: it.HasEOL, Tag: it.Tag, ID: it.ID})
	}
	return out
}

func Test_Evaluator_GetTextContent(t *testing.T) {
	x := pdfeval.NewMemXRef()
	f1 := testFont(x, "Arial")
	form := x.Add(stream(x, "BT /F1 10 Tf (B) Tj ET",
		"Subtype", pdfeval.Name("Form"),
		"Matrix", pdfeval.Array{int64(1), int64(0), int64(0), int64(1), int64(0), int64(100)},
	))
	res := dict(x,
		"Font", dict(x, "F1", f1),
		"XObject", dict(x, "Fm0", form),
		"ExtGState", dict(x, "GS0", dict(x, "Font", pdfeval.Array{f1, int64(10)})),
	)

	testCases := map[string]struct {
		content string
		want    []textItem
	}{
		"letter spacing": {
			content: "BT /F1 10 Tf (A) Tj 10.2 0 Td (B) Tj ET",
			want:    []textItem{{Str: "AB", Width: 20.2}},
		},
		"space in flow": {
			content: "BT /F1 10 Tf (A) Tj 14 0 Td (B) Tj ET",
			want:    []textItem{{Str: "A B", Width: 24}},
		},
		"negative gap": {
			content: "BT /F1 10 Tf (A) Tj 7.5 0 Td (B) Tj ET",
			want:    []textItem{{Str: "A", Width: 10}, {Str: "B", Width: 10}},
		},
		"wide gap": {
			content: "BT /F1 10 Tf (A) Tj 22 0 Td (B) Tj ET",
			want:    []textItem{{Str: "A", Width: 10, HasEOL: true}, {Str: "B", Width: 10}},
		},
		"space glyph": {
			content: "BT /F1 10 Tf (A B) Tj ET",
			want:    []textItem{{Str: "A B", Width: 25}},
		},
		"spaced text": {
			content: "BT /F1 10 Tf [(A) -400 (B)] TJ ET",
			want:    []textItem{{Str: "A B", Width: 24}},
		},
		"next line": {
			content: "BT /F1 10 Tf 12 TL (A) Tj T* (B) Tj ET",
			want:    []textItem{{Str: "A", Width: 10, HasEOL: true}, {Str: "B", Width: 10}},
		},
		"form": {
			content: "BT /F1 10 Tf (A) Tj ET /Fm0 Do",
			want:    []textItem{{Str: "A", Width: 10}, {Str: "B", Width: 10}},
		},
		"graphics state font": {
			content: "BT /GS0 gs (A) Tj ET",
			want:    []textItem{{Str: "A", Width: 10}},
		},
		"no text": {
			content: "0 0 10 10 re f",
			want:    []textItem{},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			e, _ := testEvaluator(x, nil, 0, false)
			got := textItems(textContent(t, e, tc.content, res))
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9), cmpopts.EquateEmpty()); diff != "" {
				t.Error("text items did not match expectations:", diff)
			}
		})
	}
}

func Test_Evaluator_GetTextContent_Styles(t *testing.T) {
	x := pdfeval.NewMemXRef()
	res := dict(x, "Font", dict(x, "F1", testFont(x, "Arial")))
	e, _ := testEvaluator(x, nil, 0, false)

	c := textContent(t, e, "BT /F1 10 Tf (A) Tj /F1 12 Tf (B) Tj ET", res)
	want := map[string]text.Style{
		"g_d_f1": {FontFamily: "sans-serif", Ascent: 0.8, Descent: -0.2},
	}
	if diff := cmp.Diff(want, c.Styles, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Error("styles did not match expectations:", diff)
	}
	for _, it := range c.Items {
		if it.FontName != "g_d_f1" {
			t.Errorf("item %q uses font %q", it.Str, it.FontName)
		}
	}
	if got := c.String(); got != "AB" && got != "A B" {
		t.Errorf("text = %q", got)
	}
}

func Test_Evaluator_GetTextContent_MarkedContent(t *testing.T) {
	x := pdfeval.NewMemXRef()
	res := dict(x, "Font", dict(x, "F1", testFont(x, "Arial")))
	content := "/Span <</MCID 0>> BDC BT /F1 10 Tf (A) Tj ET EMC /P BMC EMC EMC"

	testCases := map[string]struct {
		include bool
		want    []textItem
	}{
		"excluded": {
			want: []textItem{{Str: "A", Width: 10}},
		},
		"included": {
			include: true,
			want: []textItem{
				{Kind: text.KindBeginMarkedContentProps, Tag: "Span", ID: "p0_mc0"},
				{Str: "A", Width: 10},
				{Kind: text.KindEndMarkedContent},
				{Kind: text.KindBeginMarkedContent, Tag: "P"},
				{Kind: text.KindEndMarkedContent},
			},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			e, _ := testEvaluator(x, nil, 0, false)
			e.opts.IncludeMarkedContent = tc.include
			got := textItems(textContent(t, e, content, res))
			if diff := cmp.Diff(tc.want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Error("text items did not match expectations:", diff)
			}
		})
	}
}

func Test_Evaluator_GetTextContent_EmptyForm(t *testing.T) {
	x := pdfeval.NewMemXRef()
	form := x.Add(stream(x, "0 0 10 10 re f", "Subtype", pdfeval.Name("Form")))
	img := testImage(x)
	res := dict(x, "XObject", dict(x, "Fm0", form, "Im0", img))

	e, _ := testEvaluator(x, nil, 0, false)
	c := textContent(t, e, "/Fm0 Do /Im0 Do q /Fm0 Do /Im0 Do Q", res)
	if len(c.Items) != 0 {
		t.Errorf("%d items, want none", len(c.Items))
	}
	if n := x.Fetches(form); n != 1 {
		t.Errorf("form fetched %d times, want 1", n)
	}
	if n := x.Fetches(img); n != 1 {
		t.Errorf("image fetched %d times, want 1", n)
	}
}

func Test_Evaluator_GetTextContent_Errors(t *testing.T) {
	x := pdfeval.NewMemXRef()
	form := x.Alloc()
	x.Set(form, stream(x, "/Fm0 Do",
		"Subtype", pdfeval.Name("Form"),
		"Resources", dict(x, "XObject", dict(x, "Fm0", form)),
	))
	res := dict(x,
		"Font", dict(x, "F1", testFont(x, "Arial")),
		"XObject", dict(x, "Fm0", form),
	)

	testCases := map[string]struct {
		content string
		check   func(err error) bool
		feature Feature
	}{
		"circular form": {
			content: "/Fm0 Do",
			check:   func(err error) bool { return errors.Is(err, pdfeval.ErrCircularReference) },
			feature: FeatureXObject,
		},
		"missing font": {
			content: "BT (A) Tj ET",
			check:   func(err error) bool { return err != nil && strings.Contains(err.Error(), "Missing setFont") },
			feature: FeatureFontLoad,
		},
		"missing xobject": {
			content: "/Nope Do",
			check:   func(err error) bool { return err != nil },
			feature: FeatureXObject,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			strict, _ := testEvaluator(x, nil, 0, false)
			err := strict.GetTextContent(context.Background(), []byte(tc.content), res, text.NewBuffer(0))
			if !tc.check(err) {
				t.Errorf("strict err = %v", err)
			}

			lenient, rec := testEvaluator(x, nil, 0, true)
			c := textContent(t, lenient, tc.content, res)
			if len(c.Items) != 0 {
				t.Errorf("%d items, want none", len(c.Items))
			}
			if diff := cmp.Diff([]Feature{tc.feature}, rec.features()); diff != "" {
				t.Error("notices did not match expectations:", diff)
			}
		})
	}
}

func Test_Evaluator_GetTextContent_Backpressure(t *testing.T) {
	x := pdfeval.NewMemXRef()
	res := dict(x, "Font", dict(x, "F1", testFont(x, "Arial")))
	var b strings.Builder
	b.WriteString("BT /F1 10 Tf 12 TL ")
	for range 25 {
		b.WriteString("(A) Tj T* ")
	}
	b.WriteString("ET")

	e, _ := testEvaluator(x, nil, 0, false)
	sink := text.NewBuffer(text.BatchSize)
	done := make(chan error, 1)
	go func() {
		done <- e.GetTextContent(context.Background(), []byte(b.String()), res, sink)
	}()

	var items []text.Item
	for {
		select {
		case err := <-done:
			if err != nil {
				t.Fatal(err)
			}
			for _, c := range sink.Take() {
				items = append(items, c.Items...)
			}
			if len(items) != 25 {
				t.Errorf("%d items, want 25", len(items))
			}
			return
		default:
			for _, c := range sink.Take() {
				if len(c.Items) > 2*text.BatchSize {
					t.Errorf("chunk of %d items", len(c.Items))
				}
				items = append(items, c.Items...)
			}
		}
	}
}

func Test_Evaluator_GetTextContent_Type3(t *testing.T) {
	newResources := func() (*pdfeval.MemXRef, *pdfeval.Dict) {
		x := pdfeval.NewMemXRef()
		t3 := x.Add(dict(x,
			"Type", pdfeval.Name("Font"),
			"Subtype", pdfeval.Name("Type3"),
			"FontBBox", pdfeval.Array{int64(0), int64(0), int64(0), int64(0)},
			"FontMatrix", pdfeval.Array{0.01, int64(0), int64(0), 0.01, int64(0), int64(0)},
			"CharProcs", dict(x, "a", x.Add(stream(x, "100 0 0 0 75 75 d1 0 0 75 75 re f"))),
			"Encoding", dict(x, "Differences", pdfeval.Array{int64(97), pdfeval.Name("a")}),
			"FirstChar", int64(97),
			"LastChar", int64(97),
			"Widths", pdfeval.Array{int64(100)},
		))
		return x, dict(x, "Font", dict(x, "T3", t3))
	}
	const content = "BT /T3 12 Tf (a) Tj ET"

	testCases := map[string]struct {
		operatorListFirst bool
	}{
		"text only":           {},
		"after operator list": {operatorListFirst: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			x, res := newResources()
			e, _ := testEvaluator(x, nil, 0, false)
			if tc.operatorListFirst {
				operatorList(t, e, content, res)
			}
			c := textContent(t, e, content, res)
			if len(c.Items) == 0 {
				t.Fatal("no text items")
			}
			want := matrix.Matrix{12, 0, 0, 9, 0, 0}
			if diff := cmp.Diff(want, c.Items[0].Transform, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
				t.Error("transform did not match expectations:", diff)
			}
		})
	}
}
