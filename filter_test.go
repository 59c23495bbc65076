package pdfeval

import (
	"bytes"
	"compress/lzw"
	"compress/zlib"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func zlibData(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func lzwData(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := lzw.NewWriter(&buf, lzw.MSB, 8)
	if _, err := w.Write(data); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func streamDict(kv ...any) *Dict {
	d := NewDict(nil)
	for i := 0; i < len(kv); i += 2 {
		d.Set(Name(kv[i].(string)), kv[i+1])
	}
	return d
}

func Test_Stream_Decode(t *testing.T) {
	text := []byte("BT /F1 12 Tf (Hello) Tj ET")

	testCases := map[string]struct {
		dict *Dict
		raw  []byte
		want []byte
	}{
		"no filter": {
			dict: streamDict(),
			raw:  text,
			want: text,
		},
		"flate": {
			dict: streamDict("Filter", Name("FlateDecode")),
			raw:  zlibData(t, text),
			want: text,
		},
		"ascii hex": {
			dict: streamDict("Filter", Name("AHx")),
			raw:  []byte("48 65 6c6C 6f7>"),
			want: []byte("Hellop"),
		},
		"ascii85": {
			dict: streamDict("Filter", Name("ASCII85Decode")),
			raw:  []byte("<~87cURDZ~>"),
			want: []byte("Hello"),
		},
		"run length": {
			dict: streamDict("Filter", Name("RunLengthDecode")),
			raw:  []byte{2, 'a', 'b', 'c', 254, 'x', 128, 'z'},
			want: []byte("abcxxx"),
		},
		"lzw without early change": {
			dict: streamDict("Filter", Name("LZWDecode"), "DecodeParms", streamDict("EarlyChange", int64(0))),
			raw:  lzwData(t, text),
			want: text,
		},
		"filter chain": {
			dict: streamDict("Filter", Array{Name("ASCIIHexDecode"), Name("FlateDecode")}),
			raw:  []byte(hexString(zlibData(t, text)) + ">"),
			want: text,
		},
		"png up predictor": {
			dict: streamDict(
				"Filter", Name("FlateDecode"),
				"DecodeParms", streamDict("Predictor", int64(12), "Columns", int64(3)),
			),
			raw:  zlibData(t, []byte{2, 1, 2, 3, 2, 1, 1, 1}),
			want: []byte{1, 2, 3, 2, 3, 4},
		},
		"tiff predictor": {
			dict: streamDict(
				"Filter", Name("FlateDecode"),
				"DecodeParms", streamDict("Predictor", int64(2), "Columns", int64(3)),
			),
			raw:  zlibData(t, []byte{1, 1, 1, 5, 0, 0}),
			want: []byte{1, 2, 3, 5, 5, 5},
		},
		"identity crypt": {
			dict: streamDict("Filter", Name("Crypt")),
			raw:  text,
			want: text,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, err := NewStream(tc.dict, tc.raw).Decode()
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Error("decoded data did not match expectations:", diff)
			}
		})
	}
}

func hexString(data []byte) string {
	const digits = "0123456789abcdef"
	out := make([]byte, 0, 2*len(data))
	for _, c := range data {
		out = append(out, digits[c>>4], digits[c&15])
	}
	return string(out)
}

func Test_Stream_DecodeErrors(t *testing.T) {
	testCases := map[string]struct {
		dict  *Dict
		check func(err error) bool
	}{
		"unknown filter": {
			dict:  streamDict("Filter", Name("Foo")),
			check: IsFormatError,
		},
		"image codec": {
			dict: streamDict("Filter", Name("DCTDecode")),
			check: func(err error) bool {
				var ue *UnsupportedError
				return errors.As(err, &ue)
			},
		},
		"invalid filter entry": {
			dict:  streamDict("Filter", int64(1)),
			check: IsFormatError,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := NewStream(tc.dict, []byte("data")).Decode()
			if !tc.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func Test_Stream_DecodeUntilImage(t *testing.T) {
	jpeg := []byte{0xff, 0xd8, 0xff, 0xd9}
	dict := streamDict("Filter", Array{Name("ASCIIHexDecode"), Name("DCTDecode")})
	data, filter, err := NewStream(dict, []byte(hexString(jpeg))).DecodeUntilImage()
	if err != nil {
		t.Fatal(err)
	}
	if filter == nil || filter.Name != "DCTDecode" {
		t.Fatalf("filter = %v, want DCTDecode", filter)
	}
	if diff := cmp.Diff(jpeg, data); diff != "" {
		t.Error("image data did not match expectations:", diff)
	}
}
