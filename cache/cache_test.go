package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ScriptRock/pdfeval"
)

func Test_Local_Set(t *testing.T) {
	ref := pdfeval.Ref{Num: 5}
	c := NewLocal[string]()
	c.Set("Im1", ref, "first")
	c.Set("Im2", ref, "second")
	c.Set("Inline", pdfeval.Ref{}, "direct")
	c.Set("Inline", pdfeval.Ref{}, "ignored")

	testCases := map[string]struct {
		get  func() (string, bool)
		want string
		ok   bool
	}{
		"by name":        {get: func() (string, bool) { return c.GetByName("Im1") }, want: "first", ok: true},
		"alias of ref":   {get: func() (string, bool) { return c.GetByName("Im2") }, want: "first", ok: true},
		"by ref":         {get: func() (string, bool) { return c.GetByRef(ref) }, want: "first", ok: true},
		"direct by name": {get: func() (string, bool) { return c.GetByName("Inline") }, want: "direct", ok: true},
		"unknown name":   {get: func() (string, bool) { return c.GetByName("Im3") }},
		"unknown ref":    {get: func() (string, bool) { return c.GetByRef(pdfeval.Ref{Num: 6}) }},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got, ok := tc.get()
			if ok != tc.ok {
				t.Fatalf("ok = %v, want %v", ok, tc.ok)
			}

			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("cached value did not match expectations:", diff)
			}
		})
	}
}

func Test_GlobalImages_Promotion(t *testing.T) {
	ref := pdfeval.Ref{Num: 12}
	c := NewGlobalImages[string]()

	// A single page never promotes the image.
	if c.ShouldCache(ref, 0) {
		t.Fatal("image used by one page should not be cached")
	}
	if c.ShouldCache(ref, 0) {
		t.Fatal("repeated use on the same page should not promote the image")
	}
	if _, ok := c.GetData(ref, 0); ok {
		t.Fatal("GetData returned data for a single-page image")
	}

	// A second page does.
	if !c.ShouldCache(ref, 1) {
		t.Fatal("image used by two pages should be cached")
	}
	if err := c.SetData(ref, "decoded"); err != nil {
		t.Fatal(err)
	}
	c.AddByteSize(ref, 100)

	got, ok := c.GetData(ref, 2)
	if !ok {
		t.Fatal("third page did not find the cached image")
	}
	if diff := cmp.Diff(got, "decoded"); diff != "" {
		t.Error("cached image did not match expectations:", diff)
	}

	if err := c.SetData(pdfeval.Ref{Num: 99}, "x"); err == nil {
		t.Error("SetData without ShouldCache succeeded")
	}

	c.EvictPages(1, 2)
	if _, ok := c.GetData(ref, 3); ok {
		t.Error("image still cached after its pages were evicted")
	}
}

func Test_GlobalImages_Limit(t *testing.T) {
	c := NewGlobalImages[int]()
	for i := 1; i <= MinImagesToCache; i++ {
		ref := pdfeval.Ref{Num: uint32(i)}
		c.ShouldCache(ref, 0)
		if !c.ShouldCache(ref, 1) {
			t.Fatalf("image %d not cacheable", i)
		}
		if err := c.SetData(ref, i); err != nil {
			t.Fatal(err)
		}
		c.AddByteSize(ref, MaxByteSize/MinImagesToCache)
	}

	ref := pdfeval.Ref{Num: 100}
	c.ShouldCache(ref, 0)
	if c.ShouldCache(ref, 1) {
		t.Error("image accepted after the size limit was reached")
	}
	if c.Len() != MinImagesToCache {
		t.Errorf("Len = %d, want %d", c.Len(), MinImagesToCache)
	}

	c.AddDecodeFailed(ref)
	if !c.HasDecodeFailed(ref) {
		t.Error("decode failure not recorded")
	}
	c.Clear(false)
	if c.Len() != 0 || c.HasDecodeFailed(ref) {
		t.Error("Clear left entries behind")
	}
}

func Test_Promises_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	c := NewPromises[pdfeval.Ref, *int]()
	ref := pdfeval.Ref{Num: 3}

	var resolutions atomic.Int32
	results := make([]*int, 8)
	var wg sync.WaitGroup
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, created := c.GetOrCreate(ref)
			if created {
				resolutions.Add(1)
				v := 42
				p.Resolve(&v, nil)
			}
			results[i], _ = p.Wait(ctx)
		}()
	}
	wg.Wait()

	if n := resolutions.Load(); n != 1 {
		t.Errorf("resolved %d times, want 1", n)
	}
	for i, r := range results {
		if r != results[0] {
			t.Errorf("caller %d got a different instance", i)
		}
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	p, _ := c.GetOrCreate(pdfeval.Ref{Num: 4})
	if _, err := p.Wait(cancelled); err == nil {
		t.Error("Wait on a cancelled context returned no error")
	}
}
