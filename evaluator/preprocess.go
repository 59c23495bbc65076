package evaluator

import (
	"log/slog"

	"seehuhn.de/go/geom/matrix"

	"github.com/ScriptRock/pdfeval"
	"github.com/ScriptRock/pdfeval/internal/state"
	"github.com/ScriptRock/pdfeval/oplist"
)

const (
	// maxOperands is the most operands any operator takes (scn with
	// DeviceN colors and a pattern name).
	maxOperands = 33
	// maxInvalidPathOps is the number of path operators with missing
	// operands tolerated before the content is rejected.
	maxInvalidPathOps = 10
)

type opInfo struct {
	fn       oplist.OpCode
	numArgs  int
	variadic bool
}

// opTable lists the content-stream operators, see
// PDF_ISO_32000-2: Annex A: Operator summary
var opTable = map[pdfeval.Operator]opInfo{
	// Graphics state
	"w":  {oplist.OpSetLineWidth, 1, false},
	"J":  {oplist.OpSetLineCap, 1, false},
	"j":  {oplist.OpSetLineJoin, 1, false},
	"M":  {oplist.OpSetMiterLimit, 1, false},
	"d":  {oplist.OpSetDash, 2, false},
	"ri": {oplist.OpSetRenderingIntent, 1, false},
	"i":  {oplist.OpSetFlatness, 1, false},
	"gs": {oplist.OpSetGState, 1, false},
	"q":  {oplist.OpSave, 0, false},
	"Q":  {oplist.OpRestore, 0, false},
	"cm": {oplist.OpTransform, 6, false},

	// Path
	"m":  {oplist.OpMoveTo, 2, false},
	"l":  {oplist.OpLineTo, 2, false},
	"c":  {oplist.OpCurveTo, 6, false},
	"v":  {oplist.OpCurveTo2, 4, false},
	"y":  {oplist.OpCurveTo3, 4, false},
	"h":  {oplist.OpClosePath, 0, false},
	"re": {oplist.OpRectangle, 4, false},
	"S":  {oplist.OpStroke, 0, false},
	"s":  {oplist.OpCloseStroke, 0, false},
	"f":  {oplist.OpFill, 0, false},
	"F":  {oplist.OpFill, 0, false},
	"f*": {oplist.OpEOFill, 0, false},
	"B":  {oplist.OpFillStroke, 0, false},
	"B*": {oplist.OpEOFillStroke, 0, false},
	"b":  {oplist.OpCloseFillStroke, 0, false},
	"b*": {oplist.OpCloseEOFillStroke, 0, false},
	"n":  {oplist.OpEndPath, 0, false},

	// Clipping
	"W":  {oplist.OpClip, 0, false},
	"W*": {oplist.OpEOClip, 0, false},

	// Text
	"BT":  {oplist.OpBeginText, 0, false},
	"ET":  {oplist.OpEndText, 0, false},
	"Tc":  {oplist.OpSetCharSpacing, 1, false},
	"Tw":  {oplist.OpSetWordSpacing, 1, false},
	"Tz":  {oplist.OpSetHScale, 1, false},
	"TL":  {oplist.OpSetLeading, 1, false},
	"Tf":  {oplist.OpSetFont, 2, false},
	"Tr":  {oplist.OpSetTextRenderingMode, 1, false},
	"Ts":  {oplist.OpSetTextRise, 1, false},
	"Td":  {oplist.OpMoveText, 2, false},
	"TD":  {oplist.OpSetLeadingMoveText, 2, false},
	"Tm":  {oplist.OpSetTextMatrix, 6, false},
	"T*":  {oplist.OpNextLine, 0, false},
	"Tj":  {oplist.OpShowText, 1, false},
	"TJ":  {oplist.OpShowSpacedText, 1, false},
	"'":   {oplist.OpNextLineShowText, 1, false},
	"\"":  {oplist.OpNextLineSetSpacingShowText, 3, false},
	"d0":  {oplist.OpSetCharWidth, 2, false},
	"d1":  {oplist.OpSetCharWidthAndBounds, 6, false},
	"CS":  {oplist.OpSetStrokeColorSpace, 1, false},
	"cs":  {oplist.OpSetFillColorSpace, 1, false},
	"SC":  {oplist.OpSetStrokeColor, 4, true},
	"SCN": {oplist.OpSetStrokeColorN, maxOperands, true},
	"sc":  {oplist.OpSetFillColor, 4, true},
	"scn": {oplist.OpSetFillColorN, maxOperands, true},
	"G":   {oplist.OpSetStrokeGray, 1, false},
	"g":   {oplist.OpSetFillGray, 1, false},
	"RG":  {oplist.OpSetStrokeRGBColor, 3, false},
	"rg":  {oplist.OpSetFillRGBColor, 3, false},
	"K":   {oplist.OpSetStrokeCMYKColor, 4, false},
	"k":   {oplist.OpSetFillCMYKColor, 4, false},

	// Shading, images and XObjects
	"sh": {oplist.OpShadingFill, 1, false},
	"BI": {oplist.OpBeginInlineImage, 0, false},
	"ID": {oplist.OpBeginImageData, 0, false},
	"EI": {oplist.OpEndInlineImage, 1, false},
	"Do": {oplist.OpPaintXObject, 1, false},

	// Marked content and compatibility
	"MP":  {oplist.OpMarkPoint, 1, false},
	"DP":  {oplist.OpMarkPointProps, 2, false},
	"BMC": {oplist.OpBeginMarkedContent, 1, false},
	"BDC": {oplist.OpBeginMarkedContentProps, 2, false},
	"EMC": {oplist.OpEndMarkedContent, 0, false},
	"BX":  {oplist.OpBeginCompat, 0, false},
	"EX":  {oplist.OpEndCompat, 0, false},
}

// brokenOps are fragments left when a producer dropped the whitespace
// between two keywords. They are skipped without a warning.
var brokenOps = map[pdfeval.Operator]bool{
	"BM":   true,
	"BD":   true,
	"true": true,
	"fa":   true,
	"fal":  true,
	"fals": true,
	"nu":   true,
	"nul":  true,
}

// matrixState is a state the preprocessor can save, restore and transform.
type matrixState[T any] interface {
	state.Cloner[T]
	CM(m matrix.Matrix)
}

// An operation is a validated operator with its operands.
type operation struct {
	fn   oplist.OpCode
	op   pdfeval.Operator
	args []pdfeval.Object
}

// A preprocessor reads operations from a content stream, checks their
// operand counts and tracks q, Q and cm on a state stack before the
// caller sees them.
type preprocessor[T matrixState[T]] struct {
	parser *pdfeval.Parser
	stack  *state.Stack[T]
	log    *slog.Logger

	// carry holds operands read before an unknown operator; they go to
	// the next operator.
	carry []pdfeval.Object
	// extra holds surplus leading operands, which fill in for missing
	// operands of a later operator.
	extra          []pdfeval.Object
	invalidPathOps int
}

func newPreprocessor[T matrixState[T]](content []byte, initial T, log *slog.Logger) *preprocessor[T] {
	return &preprocessor[T]{
		parser: pdfeval.NewParser(content),
		stack:  state.NewStack(initial),
		log:    log,
	}
}

// depth returns the number of unmatched q operators.
func (p *preprocessor[T]) depth() int { return p.stack.Len() }

// read returns the next operation, or io.EOF at the end of the content.
func (p *preprocessor[T]) read() (operation, error) {
	for {
		op, err := p.parser.Next()
		if err != nil {
			return operation{}, err
		}
		args := op.Args
		if len(p.carry) > 0 {
			args = append(p.carry, args...)
			p.carry = nil
		}
		if len(args) > maxOperands {
			return operation{}, pdfeval.Errorf("too many operands (%d) before %s", len(args), op.Op)
		}

		info, ok := opTable[op.Op]
		if !ok {
			if !brokenOps[op.Op] {
				p.log.Warn("unknown operator", slog.String("op", string(op.Op)))
			}
			p.carry = args
			continue
		}

		n := len(args)
		if !info.variadic {
			for n > info.numArgs {
				p.extra = append(p.extra, args[0])
				args = args[1:]
				n--
			}
			for n < info.numArgs && len(p.extra) > 0 {
				last := p.extra[len(p.extra)-1]
				p.extra = p.extra[:len(p.extra)-1]
				args = append([]pdfeval.Object{last}, args...)
				n++
			}
			if n < info.numArgs {
				if info.fn >= oplist.OpMoveTo && info.fn <= oplist.OpEndPath {
					p.invalidPathOps++
					if p.invalidPathOps > maxInvalidPathOps {
						return operation{}, pdfeval.Errorf("invalid command %s: expected %d args, but received %d args", op.Op, info.numArgs, n)
					}
				}
				p.log.Warn("skipping command with missing operands",
					slog.String("op", string(op.Op)), slog.Int("want", info.numArgs), slog.Int("got", n))
				continue
			}
		} else if n > info.numArgs {
			p.log.Debug("too many operands",
				slog.String("op", string(op.Op)), slog.Int("max", info.numArgs), slog.Int("got", n))
		}

		switch info.fn {
		case oplist.OpSave:
			p.stack.Save()
		case oplist.OpRestore:
			p.stack.Restore()
		case oplist.OpTransform:
			p.stack.State.CM(toMatrix(args))
		}
		return operation{fn: info.fn, op: op.Op, args: args}, nil
	}
}

// num returns the numeric value of an operand; anything else reads as 0.
func num(obj pdfeval.Object) float64 {
	v, _ := pdfeval.Number(obj)
	return v
}

func numbers(args []pdfeval.Object) []float64 {
	v := make([]float64, len(args))
	for i, a := range args {
		v[i] = num(a)
	}
	return v
}

func toMatrix(args []pdfeval.Object) matrix.Matrix {
	var m matrix.Matrix
	for i := range m {
		if i < len(args) {
			m[i] = num(args[i])
		}
	}
	return m
}
