package cache

import (
	"context"
	"sync"
)

// A Promise is the pending result of a resolution. It is resolved once.
type Promise[V any] struct {
	done chan struct{}
	once sync.Once
	val  V
	err  error
}

// NewPromise returns an unresolved promise.
func NewPromise[V any]() *Promise[V] {
	return &Promise[V]{done: make(chan struct{})}
}

// Resolved returns a promise that already holds v.
func Resolved[V any](v V) *Promise[V] {
	p := NewPromise[V]()
	p.Resolve(v, nil)
	return p
}

// Resolve sets the result and wakes all waiters. Later calls are ignored.
func (p *Promise[V]) Resolve(v V, err error) {
	p.once.Do(func() {
		p.val, p.err = v, err
		close(p.done)
	})
}

// Wait blocks until the promise is resolved or ctx is done.
func (p *Promise[V]) Wait(ctx context.Context) (V, error) {
	select {
	case <-p.done:
		return p.val, p.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}

// Done reports whether the promise is resolved.
func (p *Promise[V]) Done() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// Promises maps keys to promises. Insertion is atomic, so concurrent
// callers asking for the same key share one resolution.
type Promises[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*Promise[V]
}

// NewPromises returns an empty map.
func NewPromises[K comparable, V any]() *Promises[K, V] {
	return &Promises[K, V]{m: make(map[K]*Promise[V])}
}

// GetOrCreate returns the promise for k. created is true when the caller
// inserted a new, unresolved promise and is responsible for resolving it.
func (c *Promises[K, V]) GetOrCreate(k K) (p *Promise[V], created bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.m[k]; ok {
		return p, false
	}
	p = NewPromise[V]()
	c.m[k] = p
	return p, true
}

// Get returns the promise for k.
func (c *Promises[K, V]) Get(k K) (*Promise[V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.m[k]
	return p, ok
}

// Put stores p for k unless an entry exists, and returns the entry in the
// map.
func (c *Promises[K, V]) Put(k K, p *Promise[V]) *Promise[V] {
	c.mu.Lock()
	defer c.mu.Unlock()
	if old, ok := c.m[k]; ok {
		return old
	}
	c.m[k] = p
	return p
}

// Delete removes the entry for k.
func (c *Promises[K, V]) Delete(k K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, k)
}

// Len returns the number of entries.
func (c *Promises[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
