package pdfeval

import (
	"bytes"
	"io"
	"log/slog"
)

// An Operation is one content-stream operator with its operands.
type Operation struct {
	Op   Operator
	Args []Object
}

// A Parser reads operations from content-stream bytes.
type Parser struct {
	b    *buffer
	args []Object
}

// NewParser returns a parser reading the content stream data.
func NewParser(data []byte) *Parser {
	return &Parser{b: newContentBuffer(bytes.NewReader(data))}
}

// Next returns the next operation. At the end of the data it returns io.EOF
// and drops any operands not followed by an operator. Inline images are
// returned as a single "EI" operation whose operand is the image stream.
func (p *Parser) Next() (op Operation, err error) {
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*FormatError)
			if !ok {
				panic(r)
			}
			p.args = nil
			err = fe
		}
	}()

	for {
		tok := p.b.readToken()
		if tok == io.EOF {
			p.args = nil
			return Operation{}, io.EOF
		}
		kw, ok := tok.(keyword)
		if !ok {
			p.args = append(p.args, tok)
			continue
		}
		switch kw {
		case "[", "<<":
			p.b.unreadToken(kw)
			p.args = append(p.args, p.b.readObject())
			continue
		case "null":
			p.args = append(p.args, nil)
			continue
		case "]", ">>", "{", "}":
			slog.Debug("skipping unbalanced delimiter", slog.String("delim", string(kw)))
			continue
		case "BI":
			img := p.readInlineImage()
			p.args = nil
			return Operation{Op: "EI", Args: []Object{img}}, nil
		}
		op = Operation{Op: Operator(kw), Args: p.args}
		p.args = nil
		return op, nil
	}
}

var inlineKeys = map[Name]Name{
	"BPC": "BitsPerComponent",
	"CS":  "ColorSpace",
	"D":   "Decode",
	"DP":  "DecodeParms",
	"F":   "Filter",
	"H":   "Height",
	"IM":  "ImageMask",
	"I":   "Interpolate",
	"W":   "Width",
	"L":   "Length",
}

var inlineNames = map[Name]Name{
	"G":    "DeviceGray",
	"RGB":  "DeviceRGB",
	"CMYK": "DeviceCMYK",
	"I":    "Indexed",
	"AHx":  "ASCIIHexDecode",
	"A85":  "ASCII85Decode",
	"LZW":  "LZWDecode",
	"Fl":   "FlateDecode",
	"RL":   "RunLengthDecode",
	"CCF":  "CCITTFaxDecode",
	"DCT":  "DCTDecode",
}

func expandInline(v Object) Object {
	switch v := v.(type) {
	case Name:
		if full, ok := inlineNames[v]; ok {
			return full
		}
	case Array:
		out := make(Array, len(v))
		for i, e := range v {
			out[i] = expandInline(e)
		}
		return out
	}
	return v
}

// readInlineImage reads "key value ... ID data EI" after a BI keyword.
func (p *Parser) readInlineImage() *Stream {
	dict := NewDict(nil)
	for {
		tok := p.b.readToken()
		if tok == io.EOF {
			p.b.errorf("inline image without ID")
		}
		if tok == keyword("ID") {
			break
		}
		key, ok := tok.(Name)
		if !ok {
			slog.Debug("skipping inline image token", slog.Any("token", tok))
			continue
		}
		if full, ok := inlineKeys[key]; ok {
			key = full
		}
		val := p.b.readObject()
		if key == "ColorSpace" || key == "Filter" {
			val = expandInline(val)
		}
		dict.Set(key, val)
	}

	// A single white-space byte separates ID from the data.
	if c := p.b.readByte(); !isSpace(c) {
		p.b.unreadByte()
	}

	var data []byte
	if n, ok := dict.GetRaw("Length").(int64); ok && n > 0 {
		data = make([]byte, 0, n)
		for i := int64(0); i < n && !p.b.eof; i++ {
			data = append(data, p.b.readByte())
		}
		if tok := p.b.readToken(); tok != keyword("EI") {
			slog.Debug("inline image data not followed by EI", slog.Any("token", tok))
			p.b.unreadToken(tok)
		}
	} else {
		data = p.scanInlineData()
	}
	return NewStream(dict, data)
}

// scanInlineData reads bytes up to an "EI" token that is preceded by white
// space and followed by white space, a delimiter, or the end of the data.
func (p *Parser) scanInlineData() []byte {
	var data []byte
	for {
		c := p.b.readByte()
		if p.b.eof {
			return data
		}
		data = append(data, c)
		n := len(data)
		if n < 3 || data[n-2] != 'E' || data[n-1] != 'I' || !isSpace(data[n-3]) {
			continue
		}
		next := p.b.readByte()
		if p.b.eof || isSpace(next) || isDelim(next) {
			if !p.b.eof {
				p.b.unreadByte()
			}
			return data[:n-3]
		}
		data = append(data, next)
	}
}

// A Stack holds operands for Interpret.
type Stack struct {
	stk []Object
}

// Len returns the number of operands on the stack.
func (s *Stack) Len() int { return len(s.stk) }

// Push pushes v onto the stack.
func (s *Stack) Push(v Object) { s.stk = append(s.stk, v) }

// Pop removes and returns the top of the stack, or nil when it is empty.
func (s *Stack) Pop() Object {
	n := len(s.stk)
	if n == 0 {
		return nil
	}
	v := s.stk[n-1]
	s.stk = s.stk[:n-1]
	return v
}

// Interpret runs a PostScript-like program such as a CMap: operands are
// pushed on a stack and do is called for every operator. Procedures in
// braces are skipped.
func Interpret(data []byte, do func(stk *Stack, op Operator)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fe, ok := r.(*FormatError)
			if !ok {
				panic(r)
			}
			err = fe
		}
	}()

	b := newContentBuffer(bytes.NewReader(data))
	var stk Stack
	depth := 0
	for {
		tok := b.readToken()
		if tok == io.EOF {
			return nil
		}
		kw, ok := tok.(keyword)
		switch {
		case ok && kw == "{":
			depth++
			continue
		case ok && kw == "}":
			if depth > 0 {
				depth--
			}
			if depth == 0 {
				stk.Push(nil)
			}
			continue
		case depth > 0:
			continue
		case !ok:
			stk.Push(tok)
			continue
		}
		switch kw {
		case "null":
			stk.Push(nil)
		case "[", "<<":
			b.unreadToken(kw)
			stk.Push(b.readObject())
		default:
			do(&stk, Operator(kw))
		}
	}
}
