package text

// BatchSize is the number of items collected before a batched flush sends
// a chunk.
const BatchSize = 10

// Builder collects the items and styles of the next chunk.
type Builder struct {
	items  []Item
	styles map[string]Style
	seen   map[string]bool
}

// Add appends an item.
func (b *Builder) Add(it Item) {
	b.items = append(b.items, it)
}

// AddStyle records the style of a font. Each font is described once per
// builder, in the chunk that first uses it.
func (b *Builder) AddStyle(name string, s Style) {
	if b.seen[name] {
		return
	}
	if b.seen == nil {
		b.seen = make(map[string]bool)
	}
	if b.styles == nil {
		b.styles = make(map[string]Style)
	}
	b.seen[name] = true
	b.styles[name] = s
}

// Len returns the number of collected items.
func (b *Builder) Len() int { return len(b.items) }

// Flush sends the collected items to sink. A batched flush waits until
// at least BatchSize items are collected. Nothing is sent while the
// builder is empty.
func (b *Builder) Flush(sink Sink, batch bool) error {
	n := len(b.items)
	if batch && n < BatchSize {
		return nil
	}
	if n == 0 && len(b.styles) == 0 {
		return nil
	}
	c := Content{Items: b.items, Styles: b.styles}
	b.items, b.styles = nil, nil
	return sink.Enqueue(c, n)
}
