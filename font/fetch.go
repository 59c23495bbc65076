package font

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Kind selects the collection a Fetcher reads from.
type Kind int

const (
	// KindCMap names a predefined CMap such as "UniJIS-UCS2-H" or
	// "Adobe-Japan1-UCS2", in text form.
	KindCMap Kind = iota + 1

	// KindStandardFont names one of the 14 standard fonts. The data are
	// AFM metrics.
	KindStandardFont

	// KindSystemFont names a font program installed on the host, as
	// TrueType or OpenType.
	KindSystemFont
)

func (k Kind) String() string {
	switch k {
	case KindCMap:
		return "cmap"
	case KindStandardFont:
		return "standard font"
	case KindSystemFont:
		return "system font"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ErrNotAvailable is returned by fetchers that do not have the requested
// data.
var ErrNotAvailable = errors.New("font data not available")

// A Fetcher retrieves external font data by name. Implementations may
// forward the request to another process; callers needing a timeout set
// one on ctx.
type Fetcher interface {
	Fetch(ctx context.Context, kind Kind, name string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, kind Kind, name string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, kind Kind, name string) ([]byte, error) {
	return f(ctx, kind, name)
}

// DirFetcher reads files from a directory tree:
//
//	cmaps/<name>        predefined CMaps
//	standard/<name>.afm standard font metrics
//	system/<name>.ttf   system fonts, also tried with .otf
type DirFetcher string

func (d DirFetcher) Fetch(ctx context.Context, kind Kind, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if name == "" || filepath.Base(name) != name {
		return nil, fmt.Errorf("%v %q: %w", kind, name, ErrNotAvailable)
	}

	var candidates []string
	switch kind {
	case KindCMap:
		candidates = []string{filepath.Join("cmaps", name)}
	case KindStandardFont:
		candidates = []string{filepath.Join("standard", name+".afm")}
	case KindSystemFont:
		candidates = []string{filepath.Join("system", name+".ttf"), filepath.Join("system", name+".otf")}
	}
	for _, c := range candidates {
		data, err := os.ReadFile(filepath.Join(string(d), c))
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("%v %q: %w", kind, name, ErrNotAvailable)
}

// A CachingFetcher memoizes the results of another Fetcher. Concurrent
// requests for the same data share a single call. Failures other than
// ErrNotAvailable are not cached.
type CachingFetcher struct {
	next  Fetcher
	group singleflight.Group

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	data []byte
	err  error
}

// NewCachingFetcher wraps next.
func NewCachingFetcher(next Fetcher) *CachingFetcher {
	return &CachingFetcher{next: next, cache: make(map[string]cached)}
}

func (c *CachingFetcher) Fetch(ctx context.Context, kind Kind, name string) ([]byte, error) {
	key := fmt.Sprintf("%d/%s", kind, name)

	c.mu.Lock()
	r, ok := c.cache[key]
	c.mu.Unlock()
	if ok {
		return r.data, r.err
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		r, ok := c.cache[key]
		c.mu.Unlock()
		if ok {
			return r.data, r.err
		}
		data, err := c.next.Fetch(ctx, kind, name)
		if err == nil || errors.Is(err, ErrNotAvailable) {
			c.mu.Lock()
			c.cache[key] = cached{data, err}
			c.mu.Unlock()
		}
		return data, err
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}
