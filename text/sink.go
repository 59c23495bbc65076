package text

import (
	"context"
	"sync"
)

// A Sink receives text chunks. DesiredSize is the number of items the
// consumer still wants before it is saturated; Ready blocks until it
// wants more.
type Sink interface {
	Enqueue(c Content, size int) error
	DesiredSize() int
	Ready(ctx context.Context) error
}

// Buffer is an in-memory Sink with a high-water mark. A consumer drains
// it with Take, which releases producers blocked in Ready. Taken chunks
// are no longer referenced by the buffer.
type Buffer struct {
	mu            sync.Mutex
	highWaterMark int
	queued        int
	pending       []Content
	wake          chan struct{}
}

// NewBuffer returns a buffer that applies backpressure once highWaterMark
// items are queued. A non-positive mark never blocks.
func NewBuffer(highWaterMark int) *Buffer {
	return &Buffer{highWaterMark: highWaterMark, wake: make(chan struct{})}
}

// Enqueue implements Sink.
func (b *Buffer) Enqueue(c Content, size int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, c)
	b.queued += size
	return nil
}

// DesiredSize implements Sink.
func (b *Buffer) DesiredSize() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.desiredSize()
}

func (b *Buffer) desiredSize() int {
	if b.highWaterMark <= 0 {
		return 1
	}
	return b.highWaterMark - b.queued
}

// Ready implements Sink.
func (b *Buffer) Ready(ctx context.Context) error {
	for {
		b.mu.Lock()
		if b.desiredSize() > 0 {
			b.mu.Unlock()
			return ctx.Err()
		}
		wake := b.wake
		b.mu.Unlock()

		select {
		case <-wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Take returns the chunks queued since the last call and resets the
// backpressure.
func (b *Buffer) Take() []Content {
	b.mu.Lock()
	defer b.mu.Unlock()
	chunks := b.pending
	b.pending = nil
	b.queued = 0
	close(b.wake)
	b.wake = make(chan struct{})
	return chunks
}

// Content returns the chunks waiting to be taken merged into one value,
// without taking them.
func (b *Buffer) Content() Content {
	b.mu.Lock()
	defer b.mu.Unlock()
	var c Content
	for _, chunk := range b.pending {
		c.Append(chunk)
	}
	return c
}

// Chunks returns the number of chunks waiting to be taken.
func (b *Buffer) Chunks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}
