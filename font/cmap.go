package font

import (
	"context"
	"log/slog"
	"unicode/utf16"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/encoding"
)

// maxUseCMap bounds chains of usecmap references.
const maxUseCMap = 8

type codeSpan struct {
	n      int
	lo, hi uint32
}

type cidSpan struct {
	codeSpan
	cid uint32
}

type bfSpan struct {
	codeSpan
	dst  string
	dsts []string
}

// cmapProgram holds the mappings read from a CMap or ToUnicode stream
// before they are applied.
type cmapProgram struct {
	name   string
	wmode  int
	use    string
	spaces []codeSpan
	cids   []cidSpan
	bfs    []bfSpan
}

func code(s string) uint32 {
	var c uint32
	for i := 0; i < len(s) && i < 4; i++ {
		c = c<<8 | uint32(s[i])
	}
	return c
}

func popString(stk *pdfeval.Stack) (string, bool) {
	s, ok := stk.Pop().(string)
	return s, ok && len(s) > 0
}

// readCMap runs the CMap program in data. Malformed entries are skipped.
func readCMap(data []byte) (*cmapProgram, error) {
	p := &cmapProgram{}
	mark := -1
	begin := func(stk *pdfeval.Stack) {
		stk.Pop() // count
		mark = stk.Len()
	}
	// args pops the operands pushed since the matching begin operator,
	// in program order.
	args := func(stk *pdfeval.Stack, group int) [][]pdfeval.Object {
		n := stk.Len() - mark
		if mark < 0 || n < 0 {
			slog.Debug("cmap: end without begin")
			return nil
		}
		flat := make([]pdfeval.Object, n)
		for i := n - 1; i >= 0; i-- {
			flat[i] = stk.Pop()
		}
		mark = -1
		var out [][]pdfeval.Object
		for i := 0; i+group <= len(flat); i += group {
			out = append(out, flat[i:i+group])
		}
		return out
	}

	err := pdfeval.Interpret(data, func(stk *pdfeval.Stack, op pdfeval.Operator) {
		switch op {
		case "findresource":
			stk.Pop() // category
			stk.Pop() // key
			stk.Push(nil)
		case "dict":
			stk.Pop()
			stk.Push(nil)
		case "currentdict":
			stk.Push(nil)
		case "dup":
			v := stk.Pop()
			stk.Push(v)
			stk.Push(v)
		case "pop":
			stk.Pop()
		case "def":
			value := stk.Pop()
			key, _ := stk.Pop().(pdfeval.Name)
			switch key {
			case "WMode":
				if v, ok := value.(int64); ok {
					p.wmode = int(v)
				}
			case "CMapName":
				if v, ok := value.(pdfeval.Name); ok {
					p.name = string(v)
				}
			}
		case "defineresource":
			stk.Pop() // category
			value := stk.Pop()
			stk.Pop() // key
			stk.Push(value)
		case "usecmap":
			if name, ok := stk.Pop().(pdfeval.Name); ok {
				p.use = string(name)
			}

		case "begincodespacerange", "begincidchar", "begincidrange",
			"beginbfchar", "beginbfrange", "beginnotdefrange":
			begin(stk)

		case "endcodespacerange":
			for _, a := range args(stk, 2) {
				lo, ok1 := a[0].(string)
				hi, ok2 := a[1].(string)
				if !ok1 || !ok2 || len(lo) == 0 || len(lo) != len(hi) || len(lo) > 4 {
					slog.Debug("cmap: bad codespace range", slog.Any("lo", a[0]), slog.Any("hi", a[1]))
					continue
				}
				p.spaces = append(p.spaces, codeSpan{len(lo), code(lo), code(hi)})
			}
		case "endcidchar":
			for _, a := range args(stk, 2) {
				src, ok := a[0].(string)
				cid, ok2 := a[1].(int64)
				if !ok || !ok2 || src == "" {
					continue
				}
				c := code(src)
				p.cids = append(p.cids, cidSpan{codeSpan{len(src), c, c}, uint32(cid)})
			}
		case "endcidrange":
			for _, a := range args(stk, 3) {
				lo, ok1 := a[0].(string)
				hi, ok2 := a[1].(string)
				cid, ok3 := a[2].(int64)
				if !ok1 || !ok2 || !ok3 || lo == "" {
					continue
				}
				p.cids = append(p.cids, cidSpan{codeSpan{len(lo), code(lo), code(hi)}, uint32(cid)})
			}
		case "endbfchar":
			for _, a := range args(stk, 2) {
				src, ok := a[0].(string)
				if !ok || src == "" {
					continue
				}
				c := code(src)
				span := bfSpan{codeSpan: codeSpan{len(src), c, c}}
				switch dst := a[1].(type) {
				case string:
					span.dst = dst
				case pdfeval.Name:
					span.dst = utf16BE(encoding.GlyphText(string(dst)))
				default:
					continue
				}
				p.bfs = append(p.bfs, span)
			}
		case "endbfrange":
			for _, a := range args(stk, 3) {
				lo, ok1 := a[0].(string)
				hi, ok2 := a[1].(string)
				if !ok1 || !ok2 || lo == "" {
					continue
				}
				span := bfSpan{codeSpan: codeSpan{len(lo), code(lo), code(hi)}}
				switch dst := a[2].(type) {
				case string:
					span.dst = dst
				case pdfeval.Array:
					for _, d := range dst {
						s, _ := d.(string)
						span.dsts = append(span.dsts, s)
					}
				default:
					continue
				}
				p.bfs = append(p.bfs, span)
			}
		case "endnotdefrange":
			args(stk, 3)

		case "begin", "end", "begincmap", "endcmap":
		default:
			slog.Debug("cmap: unhandled op", slog.String("op", string(op)))
		}
	})
	return p, err
}

// decodeUnicode decodes the destination of a ToUnicode mapping, which is
// UTF-16BE. Single bytes are taken as they are.
func decodeUnicode(s string) string {
	if len(s) == 1 {
		return string(rune(s[0]))
	}
	return encoding.UTF16Decode(s)
}

func utf16BE(s string) string {
	var b []byte
	for _, u := range utf16.Encode([]rune(s)) {
		b = append(b, byte(u>>8), byte(u))
	}
	return string(b)
}

// ParseCMap returns the CMap given by the Encoding entry of a Type0 font:
// the name of a predefined CMap or an embedded CMap stream. Predefined
// CMaps other than Identity-H and Identity-V are read through f.
func ParseCMap(ctx context.Context, f Fetcher, x pdfeval.XRef, obj pdfeval.Object) (*encoding.CMap, error) {
	obj, err := pdfeval.Resolve(x, obj)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case pdfeval.Name:
		return predefinedCMap(ctx, f, string(obj), 0)
	case *pdfeval.Stream:
		data, err := obj.Decode()
		if err != nil {
			return nil, err
		}
		p, err := readCMap(data)
		if err != nil {
			return nil, err
		}
		if p.use == "" {
			if use, ok := obj.Dict.GetRaw("UseCMap").(pdfeval.Name); ok {
				p.use = string(use)
			}
		}
		if p.wmode == 0 {
			if v, err := pdfeval.GetInt(x, obj.Dict.GetRaw("WMode")); err == nil {
				p.wmode = v
			}
		}
		return buildCMap(ctx, f, p, 0)
	}
	return nil, pdfeval.Errorf("invalid CMap %s", pdfeval.Format(obj))
}

func predefinedCMap(ctx context.Context, f Fetcher, name string, depth int) (*encoding.CMap, error) {
	switch name {
	case "Identity-H":
		return encoding.IdentityCMap(false), nil
	case "Identity-V":
		return encoding.IdentityCMap(true), nil
	}
	if depth > maxUseCMap {
		return nil, pdfeval.Errorf("CMap %s: %w", name, pdfeval.ErrCircularReference)
	}
	if f == nil {
		return nil, &pdfeval.UnsupportedError{Feature: "predefined CMap " + name}
	}
	data, err := f.Fetch(ctx, KindCMap, name)
	if err != nil {
		return nil, err
	}
	p, err := readCMap(data)
	if err != nil {
		return nil, err
	}
	if p.name == "" {
		p.name = name
	}
	return buildCMap(ctx, f, p, depth)
}

func buildCMap(ctx context.Context, f Fetcher, p *cmapProgram, depth int) (*encoding.CMap, error) {
	cm := encoding.NewCMap(p.name)
	cm.Vertical = p.wmode == 1
	for _, s := range p.spaces {
		cm.AddCodespace(s.n, s.lo, s.hi)
	}
	for _, c := range p.cids {
		cm.AddCIDRange(c.n, c.lo, c.hi, c.cid)
	}
	for _, b := range p.bfs {
		if b.dsts != nil {
			for i, d := range b.dsts {
				if c := b.lo + uint32(i); c <= b.hi {
					cm.AddCID(c, code(d))
				}
			}
			continue
		}
		cm.AddCIDRange(b.n, b.lo, b.hi, code(b.dst))
	}
	if p.use != "" {
		parent, err := predefinedCMap(ctx, f, p.use, depth+1)
		if err != nil {
			return nil, err
		}
		cm.UseCMap(parent)
	}
	if !cm.HasCodespace() {
		// Some producers omit the codespace; two-byte codes are the norm.
		cm.AddCodespace(2, 0, 0xffff)
	}
	return cm, nil
}

// ParseToUnicode reads a ToUnicode entry, either a CMap stream or the
// name Identity-H or Identity-V.
func ParseToUnicode(x pdfeval.XRef, obj pdfeval.Object) (*encoding.ToUnicode, error) {
	obj, err := pdfeval.Resolve(x, obj)
	if err != nil {
		return nil, err
	}
	switch obj := obj.(type) {
	case nil:
		return nil, nil
	case pdfeval.Name:
		if obj == "Identity-H" || obj == "Identity-V" {
			return encoding.IdentityToUnicode(), nil
		}
		return nil, pdfeval.Errorf("unknown ToUnicode name /%s", obj)
	case *pdfeval.Stream:
		data, err := obj.Decode()
		if err != nil {
			return nil, err
		}
		p, err := readCMap(data)
		if err != nil {
			return nil, err
		}
		tu := encoding.NewToUnicode()
		for _, c := range p.cids {
			for code := c.lo; code <= c.hi && code-c.lo < 0x10000; code++ {
				tu.Set(code, string(rune(c.cid+code-c.lo)))
			}
		}
		for _, b := range p.bfs {
			if b.dsts != nil {
				for i, d := range b.dsts {
					if c := b.lo + uint32(i); c <= b.hi {
						tu.Set(c, decodeUnicode(d))
					}
				}
				continue
			}
			tu.SetRange(b.lo, b.hi, decodeUnicode(b.dst))
		}
		return tu, nil
	}
	return nil, pdfeval.Errorf("invalid ToUnicode %s", pdfeval.Format(obj))
}
