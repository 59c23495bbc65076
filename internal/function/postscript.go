package function

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/ScriptRock/pdfeval"
)

const (
	maxStack   = 100
	maxNesting = 32
)

var (
	errStackUnderflow = errors.New("stack underflow")
	errStackOverflow  = errors.New("stack overflow")
	errTypeCheck      = errors.New("type check")
)

// Type4 is a PostScript calculator function.
type Type4 struct {
	Domain []float64
	Range  []float64

	code []psOp
}

type psKind uint8

const (
	psNum psKind = iota
	psBool
	psOperator
	psIf
	psIfElse
)

type psOp struct {
	kind  psKind
	num   float64
	isInt bool
	b     bool
	name  string
	then  []psOp
	els   []psOp
}

type psValue struct {
	f      float64
	isInt  bool
	isBool bool
	b      bool
}

func readType4(s *pdfeval.Stream, domain, rng []float64) (*Type4, error) {
	if len(rng) == 0 {
		return nil, pdfeval.Errorf("PostScript function without Range")
	}
	data, err := s.Decode()
	if err != nil {
		return nil, err
	}
	code, err := compile(string(data))
	if err != nil {
		return nil, pdfeval.Wrap(err, "PostScript function")
	}
	return &Type4{Domain: domain, Range: rng, code: code}, nil
}

func tokenize(src string) []string {
	src = strings.NewReplacer("{", " { ", "}", " } ").Replace(src)
	return strings.Fields(src)
}

func compile(src string) ([]psOp, error) {
	tokens := tokenize(src)
	if len(tokens) == 0 || tokens[0] != "{" {
		return nil, errors.New("program must start with {")
	}
	code, pos, err := compileBlock(tokens, 1, 0)
	if err != nil {
		return nil, err
	}
	if pos != len(tokens) {
		return nil, errors.New("tokens after end of program")
	}
	return code, nil
}

// compileBlock compiles tokens up to the matching "}" and returns the
// position after it.
func compileBlock(tokens []string, pos, depth int) ([]psOp, int, error) {
	if depth > maxNesting {
		return nil, 0, errors.New("procedures nested too deeply")
	}
	var code []psOp
	var blocks [][]psOp
	for pos < len(tokens) {
		tok := tokens[pos]
		pos++
		switch tok {
		case "}":
			if len(blocks) > 0 {
				return nil, 0, errors.New("procedure not followed by if or ifelse")
			}
			return code, pos, nil
		case "{":
			block, next, err := compileBlock(tokens, pos, depth+1)
			if err != nil {
				return nil, 0, err
			}
			blocks = append(blocks, block)
			pos = next
			continue
		case "if":
			if len(blocks) != 1 {
				return nil, 0, errors.New("if needs one procedure")
			}
			code = append(code, psOp{kind: psIf, then: blocks[0]})
		case "ifelse":
			if len(blocks) != 2 {
				return nil, 0, errors.New("ifelse needs two procedures")
			}
			code = append(code, psOp{kind: psIfElse, then: blocks[0], els: blocks[1]})
		case "true", "false":
			code = append(code, psOp{kind: psBool, b: tok == "true"})
		default:
			if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
				code = append(code, psOp{kind: psNum, num: float64(i), isInt: true})
			} else if f, err := strconv.ParseFloat(tok, 64); err == nil {
				code = append(code, psOp{kind: psNum, num: f})
			} else if _, ok := psOperators[tok]; ok {
				code = append(code, psOp{kind: psOperator, name: tok})
			} else {
				return nil, 0, errors.New("unknown operator " + tok)
			}
		}
		blocks = nil
	}
	return nil, 0, errors.New("unterminated procedure")
}

// Shape implements Func.
func (f *Type4) Shape() (int, int) { return len(f.Domain) / 2, len(f.Range) / 2 }

// Apply implements Func. Runtime errors yield the low end of each range.
func (f *Type4) Apply(inputs ...float64) []float64 {
	m, n := f.Shape()
	stk := make([]psValue, 0, maxStack)
	for i := 0; i < m; i++ {
		var x float64
		if i < len(inputs) {
			x = inputs[i]
		}
		stk = append(stk, psValue{f: clip(x, f.Domain[2*i], f.Domain[2*i+1])})
	}
	stk, err := run(f.code, stk)
	out := make([]float64, n)
	if err != nil || len(stk) < n {
		for i := range out {
			out[i] = f.Range[2*i]
		}
		return out
	}
	for i := 0; i < n; i++ {
		out[i] = stk[len(stk)-n+i].f
	}
	clipRange(out, f.Range)
	return out
}

func run(code []psOp, stk []psValue) ([]psValue, error) {
	var err error
	for _, op := range code {
		switch op.kind {
		case psNum:
			stk = append(stk, psValue{f: op.num, isInt: op.isInt})
		case psBool:
			stk = append(stk, psValue{isBool: true, b: op.b})
		case psIf, psIfElse:
			if len(stk) < 1 {
				return nil, errStackUnderflow
			}
			c := stk[len(stk)-1]
			stk = stk[:len(stk)-1]
			if !c.isBool {
				return nil, errTypeCheck
			}
			switch {
			case c.b:
				stk, err = run(op.then, stk)
			case op.kind == psIfElse:
				stk, err = run(op.els, stk)
			}
		case psOperator:
			stk, err = psOperators[op.name](stk)
		}
		if err != nil {
			return nil, err
		}
		if len(stk) > maxStack {
			return nil, errStackOverflow
		}
	}
	return stk, nil
}

func num(f float64) psValue  { return psValue{f: f} }
func integer(i int) psValue  { return psValue{f: float64(i), isInt: true} }
func boolean(b bool) psValue { return psValue{isBool: true, b: b} }

func unary(fn func(a psValue) (psValue, error)) func([]psValue) ([]psValue, error) {
	return func(stk []psValue) ([]psValue, error) {
		n := len(stk)
		if n < 1 {
			return nil, errStackUnderflow
		}
		v, err := fn(stk[n-1])
		if err != nil {
			return nil, err
		}
		stk[n-1] = v
		return stk, nil
	}
}

func binary(fn func(a, b psValue) (psValue, error)) func([]psValue) ([]psValue, error) {
	return func(stk []psValue) ([]psValue, error) {
		n := len(stk)
		if n < 2 {
			return nil, errStackUnderflow
		}
		v, err := fn(stk[n-2], stk[n-1])
		if err != nil {
			return nil, err
		}
		stk[n-2] = v
		return stk[:n-1], nil
	}
}

func math1(fn func(float64) float64) func([]psValue) ([]psValue, error) {
	return unary(func(a psValue) (psValue, error) {
		if a.isBool {
			return psValue{}, errTypeCheck
		}
		return num(fn(a.f)), nil
	})
}

func arith(fn func(a, b float64) float64) func([]psValue) ([]psValue, error) {
	return binary(func(a, b psValue) (psValue, error) {
		if a.isBool || b.isBool {
			return psValue{}, errTypeCheck
		}
		r := fn(a.f, b.f)
		if a.isInt && b.isInt && r == math.Trunc(r) && math.Abs(r) < 1<<31 {
			return integer(int(r)), nil
		}
		return num(r), nil
	})
}

func ints(fn func(a, b int) (int, error)) func([]psValue) ([]psValue, error) {
	return binary(func(a, b psValue) (psValue, error) {
		if !a.isInt || !b.isInt {
			return psValue{}, errTypeCheck
		}
		r, err := fn(int(a.f), int(b.f))
		return integer(r), err
	})
}

func compare(fn func(a, b float64) bool) func([]psValue) ([]psValue, error) {
	return binary(func(a, b psValue) (psValue, error) {
		if a.isBool || b.isBool {
			return psValue{}, errTypeCheck
		}
		return boolean(fn(a.f, b.f)), nil
	})
}

func logical(bf func(a, b bool) bool, inf func(a, b int) int) func([]psValue) ([]psValue, error) {
	return binary(func(a, b psValue) (psValue, error) {
		switch {
		case a.isBool && b.isBool:
			return boolean(bf(a.b, b.b)), nil
		case a.isInt && b.isInt:
			return integer(inf(int(a.f), int(b.f))), nil
		}
		return psValue{}, errTypeCheck
	})
}

func equal(a, b psValue) bool {
	if a.isBool || b.isBool {
		return a.isBool && b.isBool && a.b == b.b
	}
	return a.f == b.f
}

func degrees(r float64) float64 { return r * 180 / math.Pi }
func radians(d float64) float64 { return d * math.Pi / 180 }

var psOperators map[string]func([]psValue) ([]psValue, error)

func init() {
	psOperators = map[string]func([]psValue) ([]psValue, error){
		"abs": unary(func(a psValue) (psValue, error) {
			a.f = math.Abs(a.f)
			return a, nil
		}),
		"neg": unary(func(a psValue) (psValue, error) {
			a.f = -a.f
			return a, nil
		}),
		"add": arith(func(a, b float64) float64 { return a + b }),
		"sub": arith(func(a, b float64) float64 { return a - b }),
		"mul": arith(func(a, b float64) float64 { return a * b }),
		"div": binary(func(a, b psValue) (psValue, error) {
			if b.f == 0 {
				return psValue{}, errors.New("undefined result")
			}
			return num(a.f / b.f), nil
		}),
		"idiv": ints(func(a, b int) (int, error) {
			if b == 0 {
				return 0, errors.New("undefined result")
			}
			return a / b, nil
		}),
		"mod": ints(func(a, b int) (int, error) {
			if b == 0 {
				return 0, errors.New("undefined result")
			}
			return a % b, nil
		}),
		"bitshift": ints(func(a, b int) (int, error) {
			if b >= 0 {
				return int(int32(a << uint(b))), nil
			}
			return a >> uint(-b), nil
		}),
		"atan": binary(func(a, b psValue) (psValue, error) {
			d := degrees(math.Atan2(a.f, b.f))
			if d < 0 {
				d += 360
			}
			return num(d), nil
		}),
		"exp": binary(func(a, b psValue) (psValue, error) {
			return num(math.Pow(a.f, b.f)), nil
		}),
		"ceiling":  math1(math.Ceil),
		"floor":    math1(math.Floor),
		"round":    math1(func(x float64) float64 { return math.Floor(x + 0.5) }),
		"truncate": math1(math.Trunc),
		"sqrt":     math1(math.Sqrt),
		"sin":      math1(func(x float64) float64 { return math.Sin(radians(x)) }),
		"cos":      math1(func(x float64) float64 { return math.Cos(radians(x)) }),
		"ln":       math1(math.Log),
		"log":      math1(math.Log10),
		"cvi": unary(func(a psValue) (psValue, error) {
			return integer(int(math.Trunc(a.f))), nil
		}),
		"cvr": unary(func(a psValue) (psValue, error) { return num(a.f), nil }),
		"eq": binary(func(a, b psValue) (psValue, error) {
			return boolean(equal(a, b)), nil
		}),
		"ne": binary(func(a, b psValue) (psValue, error) {
			return boolean(!equal(a, b)), nil
		}),
		"gt":  compare(func(a, b float64) bool { return a > b }),
		"ge":  compare(func(a, b float64) bool { return a >= b }),
		"lt":  compare(func(a, b float64) bool { return a < b }),
		"le":  compare(func(a, b float64) bool { return a <= b }),
		"and": logical(func(a, b bool) bool { return a && b }, func(a, b int) int { return a & b }),
		"or":  logical(func(a, b bool) bool { return a || b }, func(a, b int) int { return a | b }),
		"xor": logical(func(a, b bool) bool { return a != b }, func(a, b int) int { return a ^ b }),
		"not": unary(func(a psValue) (psValue, error) {
			if a.isBool {
				return boolean(!a.b), nil
			}
			if a.isInt {
				return integer(^int(a.f)), nil
			}
			return psValue{}, errTypeCheck
		}),
		"pop": func(stk []psValue) ([]psValue, error) {
			if len(stk) < 1 {
				return nil, errStackUnderflow
			}
			return stk[:len(stk)-1], nil
		},
		"dup": func(stk []psValue) ([]psValue, error) {
			if len(stk) < 1 {
				return nil, errStackUnderflow
			}
			return append(stk, stk[len(stk)-1]), nil
		},
		"exch": func(stk []psValue) ([]psValue, error) {
			n := len(stk)
			if n < 2 {
				return nil, errStackUnderflow
			}
			stk[n-1], stk[n-2] = stk[n-2], stk[n-1]
			return stk, nil
		},
		"copy": func(stk []psValue) ([]psValue, error) {
			n := len(stk)
			if n < 1 || !stk[n-1].isInt {
				return nil, errStackUnderflow
			}
			k := int(stk[n-1].f)
			stk = stk[:n-1]
			if k < 0 || k > len(stk) {
				return nil, errStackUnderflow
			}
			return append(stk, stk[len(stk)-k:]...), nil
		},
		"index": func(stk []psValue) ([]psValue, error) {
			n := len(stk)
			if n < 1 || !stk[n-1].isInt {
				return nil, errStackUnderflow
			}
			k := int(stk[n-1].f)
			stk = stk[:n-1]
			if k < 0 || k >= len(stk) {
				return nil, errStackUnderflow
			}
			return append(stk, stk[len(stk)-1-k]), nil
		},
		"roll": func(stk []psValue) ([]psValue, error) {
			n := len(stk)
			if n < 2 || !stk[n-1].isInt || !stk[n-2].isInt {
				return nil, errStackUnderflow
			}
			cnt, j := int(stk[n-2].f), int(stk[n-1].f)
			stk = stk[:n-2]
			if cnt < 0 || cnt > len(stk) {
				return nil, errStackUnderflow
			}
			if cnt == 0 {
				return stk, nil
			}
			j = ((j % cnt) + cnt) % cnt
			part := stk[len(stk)-cnt:]
			rolled := append(append([]psValue(nil), part[cnt-j:]...), part[:cnt-j]...)
			copy(part, rolled)
			return stk, nil
		},
	}
}
