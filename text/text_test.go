package text

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/geom/matrix"
)

func Test_Content_String(t *testing.T) {
	testCases := map[string]struct {
		input Content
		want  string
		debug string
	}{
		"empty": {},
		"single item": {
			input: Content{Items: []Item{{Str: "abc", FontName: "f1", Transform: matrix.Scale(10, 10)}}},
			want:  "abc",
			debug: "[f1|10.0]abc",
		},
		"line breaks": {
			input: Content{Items: []Item{
				{Str: "Hello", HasEOL: true, FontName: "f1", Transform: matrix.Scale(12, 12)},
				{Str: "World", FontName: "f1", Transform: matrix.Scale(12, 12)},
				{Str: "!", FontName: "f2", Transform: matrix.Scale(8, 8)},
			}},
			want:  "Hello\nWorld!",
			debug: "[f1|12.0]Hello\nWorld[f2|8.0]!",
		},
		"marked content": {
			input: Content{Items: []Item{
				{Kind: KindBeginMarkedContent, Tag: "Span"},
				{Str: "x", FontName: "f1", Transform: matrix.Identity},
				{Kind: KindEndMarkedContent},
			}},
			want:  "x",
			debug: "<Span>[f1|1.0]x</>",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.input.String(), tc.want); diff != "" {
				t.Error("rendered text did not match expectations:", diff)
			}
			if diff := cmp.Diff(tc.input.DebugString(), tc.debug); diff != "" {
				t.Error("debug text did not match expectations:", diff)
			}
		})
	}
}

func Test_Bidi(t *testing.T) {
	testCases := map[string]struct {
		input    string
		vertical bool
		want     string
		dir      Dir
	}{
		"empty":             {input: "", want: "", dir: LTR},
		"latin":             {input: "hello", want: "hello", dir: LTR},
		"vertical":          {input: "縦書き", vertical: true, want: "縦書き", dir: TTB},
		"hebrew":            {input: "שלום", want: "םולש", dir: RTL},
		"mostly latin":      {input: "abcde ש", want: "abcde ש", dir: LTR},
		"short with hebrew": {input: "aש", dir: RTL},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, dir := Bidi(tc.input, tc.vertical)
			if dir != tc.dir {
				t.Errorf("direction = %q, want %q", dir, tc.dir)
			}
			if tc.want == "" && tc.input != "" {
				return
			}
			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("visual string did not match expectations:", diff)
			}
		})
	}
}

func Test_Builder_Flush(t *testing.T) {
	buf := NewBuffer(0)
	var b Builder
	b.AddStyle("f1", Style{FontFamily: "serif", Ascent: 0.8, Descent: -0.2})
	for i := 0; i < BatchSize-1; i++ {
		b.Add(Item{Str: "a", FontName: "f1"})
	}
	if err := b.Flush(buf, true); err != nil {
		t.Fatal(err)
	}
	if n := buf.Chunks(); n != 0 {
		t.Fatalf("batched flush sent %d chunks below the batch size", n)
	}

	b.Add(Item{Str: "b", FontName: "f1"})
	if err := b.Flush(buf, true); err != nil {
		t.Fatal(err)
	}
	b.AddStyle("f1", Style{FontFamily: "sans-serif"})
	b.Add(Item{Str: "c", FontName: "f1"})
	if err := b.Flush(buf, false); err != nil {
		t.Fatal(err)
	}
	if err := b.Flush(buf, false); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(buf.Content().String(), "aaaaaaaaabc"); diff != "" {
		t.Error("buffered text did not match expectations:", diff)
	}

	chunks := buf.Take()
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if diff := cmp.Diff(chunks[0].Styles, map[string]Style{"f1": {FontFamily: "serif", Ascent: 0.8, Descent: -0.2}}); diff != "" {
		t.Error("first chunk styles did not match expectations:", diff)
	}
	if chunks[1].Styles != nil {
		t.Errorf("style sent twice: %v", chunks[1].Styles)
	}
	if c := buf.Content(); len(c.Items) != 0 || c.Styles != nil {
		t.Errorf("taken chunks still buffered: %v", c)
	}
}

func Test_Buffer_Ready(t *testing.T) {
	buf := NewBuffer(2)
	ctx := context.Background()
	if err := buf.Ready(ctx); err != nil {
		t.Fatal(err)
	}
	if err := buf.Enqueue(Content{Items: []Item{{Str: "a"}, {Str: "b"}}}, 2); err != nil {
		t.Fatal(err)
	}
	if got := buf.DesiredSize(); got != 0 {
		t.Errorf("DesiredSize = %d, want 0", got)
	}

	done := make(chan error)
	go func() { done <- buf.Ready(ctx) }()
	select {
	case <-done:
		t.Fatal("Ready returned while the buffer was full")
	case <-time.After(10 * time.Millisecond):
	}
	buf.Take()
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	buf.Enqueue(Content{Items: []Item{{Str: "c"}, {Str: "d"}}}, 2)
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := buf.Ready(cctx); err == nil {
		t.Error("Ready on a full buffer ignored cancellation")
	}
}
