package encoding

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_ToUnicode(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  string
	}{
		"notdef":         {input: ".notdef", want: ""},
		"glyph list":     {input: "Aacute", want: "Á"},
		"ligature":       {input: "fi", want: "ﬁ"},
		"greek":          {input: "alpha", want: "α"},
		"uni sequence":   {input: "uni00410042", want: "AB"},
		"uni lowercase":  {input: "uni00e9", want: ""},
		"u five digits":  {input: "u1F600", want: "😀"},
		"suffix":         {input: "a.sc", want: "a"},
		"ligature parts": {input: "f_f_i", want: "ffi"},
		"unknown":        {input: "g123", want: ""},
		"surrogate":      {input: "uniD800", want: ""},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := GlyphText(tc.input)

			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("text did not match expectations:", diff)
			}
		})
	}
}

func Test_Simple_Base(t *testing.T) {
	testCases := map[string]struct {
		enc  string
		code byte
		want string
	}{
		"standard quoteright": {enc: "StandardEncoding", code: 0x27, want: "quoteright"},
		"winansi quotesingle": {enc: "WinAnsiEncoding", code: 0x27, want: "quotesingle"},
		"winansi euro":        {enc: "WinAnsiEncoding", code: 0x80, want: "Euro"},
		"winansi bullet hole": {enc: "WinAnsiEncoding", code: 0x81, want: "bullet"},
		"winansi eacute":      {enc: "WinAnsiEncoding", code: 0xe9, want: "eacute"},
		"macroman eacute":     {enc: "MacRomanEncoding", code: 0x8e, want: "eacute"},
		"symbol alpha":        {enc: "SymbolSetEncoding", code: 0x61, want: "alpha"},
		"expert one eighth":   {enc: "MacExpertEncoding", code: 0x4a, want: "oneeighth"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			enc, ok := Base(tc.enc)
			if !ok {
				t.Fatalf("unknown encoding %s", tc.enc)
			}

			if diff := cmp.Diff(enc[tc.code], tc.want); diff != "" {
				t.Error("glyph name did not match expectations:", diff)
			}
		})
	}
}

func Test_Simple_ApplyDifferences(t *testing.T) {
	enc := WinAnsi
	enc.ApplyDifferences([]any{int64(65), "B", "C", int64(0x61), "alpha"})

	got := enc.Decode("ABab\x01")
	want := "BCαb�"
	if diff := cmp.Diff(got, want); diff != "" {
		t.Error("decoded text did not match expectations:", diff)
	}
	if WinAnsi[65] != "A" {
		t.Error("differences leaked into the base encoding")
	}
}

func Test_CMap_Next(t *testing.T) {
	m := NewCMap("test")
	m.AddCodespace(1, 0x00, 0x80)
	m.AddCodespace(2, 0x8140, 0xfefe)

	testCases := map[string]struct {
		input    string
		wantCode uint32
		wantLen  int
	}{
		"one byte":     {input: "\x41\x81\x40", wantCode: 0x41, wantLen: 1},
		"two bytes":    {input: "\x81\x40", wantCode: 0x8140, wantLen: 2},
		"no codespace": {input: "\xff\xff", wantCode: 0xff, wantLen: 1},
		"truncated":    {input: "\x81", wantCode: 0x81, wantLen: 1},
		"empty string": {input: "", wantCode: 0, wantLen: 0},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			code, n := m.Next(tc.input)

			if diff := cmp.Diff([2]int{int(code), n}, [2]int{int(tc.wantCode), tc.wantLen}); diff != "" {
				t.Error("code split did not match expectations:", diff)
			}
		})
	}
}

func Test_CMap_Lookup(t *testing.T) {
	parent := NewCMap("parent")
	parent.AddCodespace(2, 0, 0xffff)
	parent.AddCIDRange(2, 0x0100, 0x01ff, 1000)
	parent.AddCID(0x0005, 7)

	m := NewCMap("child")
	m.AddCIDRange(2, 0x0100, 0x010f, 50)
	m.UseCMap(parent)

	testCases := map[string]struct {
		code uint32
		want uint32
		ok   bool
	}{
		"child range wins": {code: 0x0102, want: 52, ok: true},
		"parent range":     {code: 0x0110, want: 1016, ok: true},
		"parent single":    {code: 0x0005, want: 7, ok: true},
		"unmapped":         {code: 0x0300},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cid, ok := m.Lookup(tc.code)
			if ok != tc.ok {
				t.Fatalf("got ok %v, want %v", ok, tc.ok)
			}

			if diff := cmp.Diff(cid, tc.want); diff != "" {
				t.Error("CID did not match expectations:", diff)
			}
		})
	}

	if cid, ok := IdentityCMap(true).Lookup(0x1234); !ok || cid != 0x1234 {
		t.Errorf("identity lookup = %d, %v", cid, ok)
	}
}

func Test_ToUnicode_SetRange(t *testing.T) {
	tu := NewToUnicode()
	tu.SetRange(0x10, 0x12, "fa")
	tu.Set(0x20, "x")

	got := []string{}
	for _, c := range []uint32{0x10, 0x11, 0x12, 0x13, 0x20} {
		s, _ := tu.Get(c)
		got = append(got, s)
	}
	want := []string{"fa", "fb", "fc", "", "x"}
	if diff := cmp.Diff(got, want); diff != "" {
		t.Error("mapped text did not match expectations:", diff)
	}
}

func Test_Text(t *testing.T) {
	testCases := map[string]struct {
		input string
		want  string
	}{
		"pdfdoc ascii":  {input: "abc", want: "abc"},
		"pdfdoc bullet": {input: "\x80x", want: "•x"},
		"utf16":         {input: "\xfe\xff\x00A\x00\xe9", want: "Aé"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			var got string
			if IsUTF16(tc.input) {
				got = UTF16Decode(tc.input[2:])
			} else {
				got = PDFDocDecode(tc.input)
			}

			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("decoded string did not match expectations:", diff)
			}
		})
	}

	if got := Normalize("ﬁ"); got != "fi" {
		t.Errorf("Normalize(ﬁ) = %q", got)
	}
}
