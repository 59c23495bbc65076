package oplist

import (
	"context"
	"log/slog"
)

const (
	// ChunkSize is the number of operations after which a list with a
	// sink is flushed.
	ChunkSize = 1000
	// ChunkSizeAbout is the lower flush threshold applied at restore and
	// endText, which are good places to cut a chunk.
	ChunkSizeAbout = ChunkSize - 20
)

// An Op is one entry of an operator list.
type Op struct {
	Fn   OpCode
	Args []any
}

// A Chunk is a batch of operations sent to a Sink.
type Chunk struct {
	Fn        []OpCode
	Args      [][]any
	LastChunk bool
	Length    int
}

// A Sink receives operator list chunks in order.
type Sink interface {
	Enqueue(c Chunk) error
}

// A Waiter is a Sink with backpressure. Ready blocks until the consumer
// wants more data.
type Waiter interface {
	Ready(ctx context.Context) error
}

// An OperatorList is an append-only list of drawing operations with the
// set of external object ids a consumer must load before replaying it.
// The argument slice at each index belongs to the operation at that index.
type OperatorList struct {
	fn   []OpCode
	args [][]any

	deps     map[string]struct{}
	depOrder []string

	sink  Sink
	total int
	err   error
}

// New returns an empty list. With a non-nil sink the list is sent in
// chunks as it grows; otherwise it only accumulates.
func New(sink Sink) *OperatorList {
	return &OperatorList{deps: make(map[string]struct{}), sink: sink}
}

// Len returns the number of operations not yet flushed.
func (l *OperatorList) Len() int { return len(l.fn) }

// TotalLength returns the number of operations including flushed ones.
func (l *OperatorList) TotalLength() int { return l.total + len(l.fn) }

// Err returns the first error the sink reported.
func (l *OperatorList) Err() error { return l.err }

// AddOp appends an operation.
func (l *OperatorList) AddOp(fn OpCode, args ...any) {
	if !fn.Valid() {
		slog.Warn("dropping invalid operation", slog.Int("op", int(fn)))
		return
	}
	l.fn = append(l.fn, fn)
	l.args = append(l.args, args)
	if l.sink == nil {
		return
	}
	n := len(l.fn)
	if n >= ChunkSize || (n >= ChunkSizeAbout && (fn == OpRestore || fn == OpEndText)) {
		if err := l.Flush(false); err != nil && l.err == nil {
			l.err = err
		}
	}
}

// AddDependency records id as required by the list and emits a
// dependency operation the first time it is seen.
func (l *OperatorList) AddDependency(id string) {
	if _, ok := l.deps[id]; ok {
		return
	}
	l.deps[id] = struct{}{}
	l.depOrder = append(l.depOrder, id)
	l.AddOp(OpDependency, id)
}

// AddDependencies calls AddDependency for each id.
func (l *OperatorList) AddDependencies(ids []string) {
	for _, id := range ids {
		l.AddDependency(id)
	}
}

// AddOpList appends the operations of other and absorbs its dependencies.
func (l *OperatorList) AddOpList(other *OperatorList) {
	if other == nil {
		return
	}
	for _, id := range other.depOrder {
		if _, ok := l.deps[id]; !ok {
			l.deps[id] = struct{}{}
			l.depOrder = append(l.depOrder, id)
		}
	}
	for i, fn := range other.fn {
		l.AddOp(fn, other.args[i]...)
	}
}

// AddImageOps appends an image painting operation. A non-nil
// optionalContent wraps it in a marked-content section so that it can be
// hidden; hasMask resets the soft mask around it.
func (l *OperatorList) AddImageOps(fn OpCode, args []any, optionalContent any, hasMask bool) {
	if hasMask {
		l.AddOp(OpSave)
		l.AddOp(OpSetGState, [][2]any{{"SMask", false}})
	}
	if optionalContent != nil {
		l.AddOp(OpBeginMarkedContentProps, "OC", optionalContent)
	}
	l.AddOp(fn, args...)
	if optionalContent != nil {
		l.AddOp(OpEndMarkedContent)
	}
	if hasMask {
		l.AddOp(OpRestore)
	}
}

// Rewrite replaces every unflushed operation by the result of fn, or
// drops it when fn returns false.
func (l *OperatorList) Rewrite(fn func(op Op) (Op, bool)) {
	j := 0
	for i := range l.fn {
		op, keep := fn(Op{Fn: l.fn[i], Args: l.args[i]})
		if !keep {
			continue
		}
		l.fn[j], l.args[j] = op.Fn, op.Args
		j++
	}
	clear(l.args[j:])
	l.fn, l.args = l.fn[:j], l.args[:j]
}

// Ops returns the unflushed operations.
func (l *OperatorList) Ops() []Op {
	ops := make([]Op, len(l.fn))
	for i, fn := range l.fn {
		ops[i] = Op{Fn: fn, Args: l.args[i]}
	}
	return ops
}

// OpCodes returns the opcodes of the unflushed operations.
func (l *OperatorList) OpCodes() []OpCode {
	return append([]OpCode(nil), l.fn...)
}

// Dependencies returns the recorded dependency ids in insertion order.
func (l *OperatorList) Dependencies() []string {
	return append([]string(nil), l.depOrder...)
}

// Ready waits until the sink accepts more data. It returns immediately
// for lists without a sink or with a sink that has no backpressure.
func (l *OperatorList) Ready(ctx context.Context) error {
	if w, ok := l.sink.(Waiter); ok {
		return w.Ready(ctx)
	}
	return ctx.Err()
}

// Flush sends the pending operations to the sink. The dependency set
// starts over, because the consumer has seen the ids already sent.
func (l *OperatorList) Flush(last bool) error {
	if l.sink == nil {
		return nil
	}
	c := Chunk{Fn: l.fn, Args: l.args, LastChunk: last, Length: len(l.fn)}
	l.total += len(l.fn)
	l.fn, l.args = nil, nil
	l.deps = make(map[string]struct{})
	l.depOrder = nil
	return l.sink.Enqueue(c)
}

// A Recorder is a Sink that keeps every chunk.
type Recorder struct {
	Chunks []Chunk
}

// Enqueue implements Sink.
func (r *Recorder) Enqueue(c Chunk) error {
	r.Chunks = append(r.Chunks, c)
	return nil
}

// Ops returns the operations of all recorded chunks in order.
func (r *Recorder) Ops() []Op {
	var ops []Op
	for _, c := range r.Chunks {
		for i, fn := range c.Fn {
			ops = append(ops, Op{Fn: fn, Args: c.Args[i]})
		}
	}
	return ops
}
