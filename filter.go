package pdfeval

import (
	"bytes"
	"compress/flate"
	"compress/lzw"
	"compress/zlib"
	"encoding/ascii85"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/image/ccitt"
	tifflzw "golang.org/x/image/tiff/lzw"
)

// A Filter is one entry of a stream's filter chain.
type Filter struct {
	Name   Name
	Params *Dict
}

// IsImageCodec reports whether the filter is an image codec that this
// package passes through undecoded.
func (f Filter) IsImageCodec() bool {
	switch f.Name {
	case "DCTDecode", "JPXDecode", "JBIG2Decode":
		return true
	}
	return false
}

// Filters returns the filter chain of a stream dictionary.
func Filters(d *Dict) ([]Filter, error) {
	x := d.XRef()
	fobj, err := d.Get("Filter")
	if err != nil {
		return nil, err
	}
	pobj, err := d.Get("DecodeParms")
	if err != nil {
		return nil, err
	}
	switch f := fobj.(type) {
	case nil:
		return nil, nil
	case Name:
		params, _ := GetDict(x, pobj)
		if a, ok := pobj.(Array); ok && len(a) > 0 {
			params, _ = GetDict(x, a[0])
		}
		return []Filter{{Name: f, Params: params}}, nil
	case Array:
		pa, _ := GetArray(x, pobj)
		res := make([]Filter, 0, len(f))
		for i, fo := range f {
			name, err := GetName(x, fo)
			if err != nil {
				return nil, err
			}
			var params *Dict
			if i < len(pa) {
				params, _ = GetDict(x, pa[i])
			}
			res = append(res, Filter{Name: name, Params: params})
		}
		return res, nil
	default:
		return nil, Errorf("invalid stream filter %v", objfmt(fobj))
	}
}

func decodeFilters(d *Dict, raw []byte) ([]byte, *Filter, error) {
	ff, err := Filters(d)
	if err != nil {
		return nil, nil, err
	}
	data := raw
	for i := range ff {
		f := ff[i]
		if f.IsImageCodec() {
			return data, &f, nil
		}
		data, err = applyFilter(data, f)
		if err != nil {
			return nil, nil, err
		}
	}
	return data, nil, nil
}

func applyFilter(data []byte, f Filter) ([]byte, error) {
	switch f.Name {
	case "FlateDecode", "Fl":
		out, err := inflate(data)
		if err != nil {
			return nil, err
		}
		return predict(out, f.Params)
	case "LZWDecode", "LZW":
		early := int64(1)
		if f.Params != nil {
			if v, ok := f.Params.GetRaw("EarlyChange").(int64); ok {
				early = v
			}
		}
		var rd io.ReadCloser
		if early != 0 {
			rd = tifflzw.NewReader(bytes.NewReader(data), tifflzw.MSB, 8)
		} else {
			rd = lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
		}
		defer rd.Close()
		out, err := readPartial(rd, "LZWDecode")
		if err != nil {
			return nil, err
		}
		return predict(out, f.Params)
	case "ASCII85Decode", "A85":
		return decodeASCII85(data)
	case "ASCIIHexDecode", "AHx":
		return decodeASCIIHex(data), nil
	case "RunLengthDecode", "RL":
		return decodeRunLength(data), nil
	case "CCITTFaxDecode", "CCF":
		return decodeCCITT(data, f.Params)
	case "Crypt":
		if f.Params == nil || f.Params.GetRaw("Name") == nil || f.Params.GetRaw("Name") == Name("Identity") {
			return data, nil
		}
		return nil, &UnsupportedError{Feature: "Crypt filter"}
	default:
		return nil, Errorf("unknown filter %s", f.Name)
	}
}

// readPartial reads rd to the end. Truncated data is common in the wild, so
// bytes read before a decoding error are kept.
func readPartial(rd io.Reader, filter string) ([]byte, error) {
	out, err := io.ReadAll(rd)
	if err != nil {
		if len(out) == 0 {
			return nil, Wrap(err, filter)
		}
		slog.Debug("truncated stream data", slog.String("filter", filter), slog.Any("err", err))
	}
	return out, nil
}

func inflate(data []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		// Some producers omit the zlib header.
		fr := flate.NewReader(bytes.NewReader(data))
		defer fr.Close()
		return readPartial(fr, "FlateDecode")
	}
	defer zr.Close()
	return readPartial(zr, "FlateDecode")
}

func paramInt(d *Dict, key Name, def int) int {
	if d == nil {
		return def
	}
	if v, ok := d.GetRaw(key).(int64); ok {
		return int(v)
	}
	return def
}

func paramBool(d *Dict, key Name, def bool) bool {
	if d == nil {
		return def
	}
	if v, ok := d.GetRaw(key).(bool); ok {
		return v
	}
	return def
}

// predict undoes PNG (10-15) and TIFF (2) predictors.
func predict(data []byte, params *Dict) ([]byte, error) {
	pred := paramInt(params, "Predictor", 1)
	if pred <= 1 {
		return data, nil
	}
	colors := paramInt(params, "Colors", 1)
	bpc := paramInt(params, "BitsPerComponent", 8)
	columns := paramInt(params, "Columns", 1)
	if colors < 1 || bpc < 1 || columns < 1 {
		return nil, Errorf("invalid predictor parameters")
	}
	rowBytes := (colors*bpc*columns + 7) / 8
	bpp := (colors*bpc + 7) / 8

	if pred == 2 {
		if bpc != 8 {
			slog.Debug("unsupported TIFF predictor depth", slog.Int("bpc", bpc))
			return data, nil
		}
		out := append([]byte(nil), data...)
		for row := 0; row+rowBytes <= len(out); row += rowBytes {
			for i := bpp; i < rowBytes; i++ {
				out[row+i] += out[row+i-bpp]
			}
		}
		return out, nil
	}
	if pred < 10 {
		return nil, Errorf("unknown predictor %d", pred)
	}

	out := make([]byte, 0, len(data))
	prev := make([]byte, rowBytes)
	for len(data) > 0 {
		kind := data[0]
		data = data[1:]
		n := min(rowBytes, len(data))
		cur := make([]byte, rowBytes)
		copy(cur, data[:n])
		data = data[n:]
		for i := 0; i < rowBytes; i++ {
			var left, upLeft byte
			if i >= bpp {
				left = cur[i-bpp]
				upLeft = prev[i-bpp]
			}
			up := prev[i]
			switch kind {
			case 0:
			case 1:
				cur[i] += left
			case 2:
				cur[i] += up
			case 3:
				cur[i] += byte((int(left) + int(up)) / 2)
			case 4:
				cur[i] += paeth(left, up, upLeft)
			default:
				return nil, Errorf("malformed PNG predictor row type %d", kind)
			}
		}
		out = append(out, cur[:n]...)
		prev = cur
	}
	return out, nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	switch {
	case pa <= pb && pa <= pc:
		return a
	case pb <= pc:
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func decodeASCII85(data []byte) ([]byte, error) {
	clean := make([]byte, 0, len(data))
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("<~"))
	for _, c := range data {
		if c == '~' {
			break
		}
		if !isSpace(c) {
			clean = append(clean, c)
		}
	}
	out := make([]byte, 4*len(clean)+4)
	n, _, err := ascii85.Decode(out, clean, true)
	if err != nil {
		var ce ascii85.CorruptInputError
		if errors.As(err, &ce) {
			return nil, Errorf("ASCII85Decode: corrupt input at byte %d", int64(ce))
		}
		return nil, Wrap(err, "ASCII85Decode")
	}
	return out[:n], nil
}

func decodeASCIIHex(data []byte) []byte {
	out := make([]byte, 0, len(data)/2)
	hi := -1
	for _, c := range data {
		if c == '>' {
			break
		}
		v := unhex(c)
		if v < 0 {
			continue
		}
		if hi < 0 {
			hi = v
			continue
		}
		out = append(out, byte(hi<<4|v))
		hi = -1
	}
	if hi >= 0 {
		out = append(out, byte(hi<<4))
	}
	return out
}

func decodeRunLength(data []byte) []byte {
	var out []byte
	for i := 0; i < len(data); {
		n := int(data[i])
		i++
		switch {
		case n == 128:
			return out
		case n < 128:
			end := min(i+n+1, len(data))
			out = append(out, data[i:end]...)
			i = end
		default:
			if i >= len(data) {
				return out
			}
			for j := 0; j < 257-n; j++ {
				out = append(out, data[i])
			}
			i++
		}
	}
	return out
}

func decodeCCITT(data []byte, params *Dict) ([]byte, error) {
	k := paramInt(params, "K", 0)
	columns := paramInt(params, "Columns", 1728)
	rows := paramInt(params, "Rows", 0)
	sf := ccitt.Group3
	if k < 0 {
		sf = ccitt.Group4
	}
	height := rows
	if height <= 0 {
		height = ccitt.AutoDetectHeight
	}
	opts := &ccitt.Options{
		Align:  paramBool(params, "EncodedByteAlign", false),
		Invert: paramBool(params, "BlackIs1", false),
	}
	rd := ccitt.NewReader(bytes.NewReader(data), ccitt.MSB, sf, columns, height, opts)
	out, err := readPartial(rd, "CCITTFaxDecode")
	if err != nil {
		return nil, fmt.Errorf("%w (K=%d)", err, k)
	}
	return out, nil
}
