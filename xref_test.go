package pdfeval

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_MemXRef_Fetch(t *testing.T) {
	x := NewMemXRef()
	d := NewDict(nil)
	d.Set("Type", Name("Font"))
	ref := x.Add(d)

	obj, err := x.Fetch(ref)
	if err != nil {
		t.Fatal(err)
	}
	if obj != d {
		t.Error("fetched a different object")
	}
	if d.Ref != ref {
		t.Errorf("dictionary bound to %v, want %v", d.Ref, ref)
	}
	if d.XRef() != x {
		t.Error("dictionary not bound to the xref")
	}
	if _, err := x.Fetch(Ref{Num: 99}); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want not found", err)
	}
	if n := x.Fetches(ref); n != 1 {
		t.Errorf("%d fetches, want 1", n)
	}
}

func Test_MemXRef_Pending(t *testing.T) {
	x := NewMemXRef()
	ref := x.Alloc()
	x.SetPending(ref, int64(7))

	_, err := x.Fetch(ref)
	var missing *MissingDataError
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want missing data", err)
	}
	if missing.Ref != ref {
		t.Errorf("missing %v, want %v", missing.Ref, ref)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := x.RequestData(ctx, missing); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}

	if err := x.RequestData(context.Background(), missing); err != nil {
		t.Fatal(err)
	}
	obj, err := x.Fetch(ref)
	if err != nil {
		t.Fatal(err)
	}
	if obj != int64(7) {
		t.Errorf("fetched %v, want 7", obj)
	}
}

func Test_Dict_Get(t *testing.T) {
	x := NewMemXRef()
	width := x.Add(int64(500))
	chain := x.Add(width)
	d := NewDict(nil)
	d.Set("W", width)
	d.Set("Chain", chain)
	d.Set("Direct", 1.5)
	x.Bind(d)

	testCases := map[string]struct {
		key  Name
		raw  Object
		want Object
	}{
		"indirect": {key: "W", raw: width, want: int64(500)},
		"chain":    {key: "Chain", raw: chain, want: int64(500)},
		"direct":   {key: "Direct", raw: 1.5, want: 1.5},
		"missing":  {key: "Nope"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if diff := cmp.Diff(tc.raw, d.GetRaw(tc.key)); diff != "" {
				t.Error("raw value did not match expectations:", diff)
			}
			got, err := d.Get(tc.key)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Error("resolved value did not match expectations:", diff)
			}
		})
	}

	want := []Name{"W", "Chain", "Direct"}
	if diff := cmp.Diff(want, d.Keys()); diff != "" {
		t.Error("keys did not match expectations:", diff)
	}
	d.Set("W", nil)
	if d.Has("W") || d.Len() != 2 {
		t.Errorf("setting nil kept the key: %v", d.Keys())
	}
}

func Test_Resolve_Cycle(t *testing.T) {
	x := NewMemXRef()
	ref := x.Alloc()
	x.Set(ref, ref)

	_, err := Resolve(x, ref)
	if !errors.Is(err, ErrCircularReference) {
		t.Errorf("err = %v, want a circular reference", err)
	}
	if !IsFormatError(err) {
		t.Errorf("err = %v, want a format error", err)
	}
}

func Test_Merge(t *testing.T) {
	a := NewDict(nil)
	a.Set("A", int64(1))
	a.Set("B", int64(2))
	b := NewDict(nil)
	b.Set("B", int64(3))
	b.Set("C", int64(4))

	got := Format(Merge(nil, a, b))
	if diff := cmp.Diff("<</A 1 /B 2 /C 4>>", got); diff != "" {
		t.Error("merged dictionary did not match expectations:", diff)
	}
}
