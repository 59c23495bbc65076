package scheduler

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type fakeClock struct {
	t     time.Time
	reads int
}

func (c *fakeClock) Now() time.Time {
	c.reads++
	return c.t
}

func Test_TimeSlot_Check(t *testing.T) {
	testCases := map[string]struct {
		advance time.Duration
		calls   int
		want    []bool
		reads   int
	}{
		"within slot": {
			advance: 5 * time.Millisecond,
			calls:   6,
			want:    []bool{false, false, false, false, false, false},
			reads:   3,
		},
		"slot expired": {
			advance: 25 * time.Millisecond,
			calls:   6,
			want:    []bool{false, false, true, false, false, true},
			reads:   3,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			clock := &fakeClock{t: time.Unix(0, 0)}
			s := New(20*time.Millisecond, 3)
			s.Now = clock.Now
			s.Reset()
			clock.t = clock.t.Add(tc.advance)

			var got []bool
			for i := 0; i < tc.calls; i++ {
				got = append(got, s.Check())
			}

			if diff := cmp.Diff(got, tc.want); diff != "" {
				t.Error("yield decisions did not match expectations:", diff)
			}
			if clock.reads != tc.reads {
				t.Errorf("clock read %d times, want %d", clock.reads, tc.reads)
			}
		})
	}
}

func Test_TimeSlot_Defaults(t *testing.T) {
	s := New(0, 0)
	if s.Slice != DefaultSlice || s.CheckEvery != DefaultCheckEvery {
		t.Errorf("New(0, 0) = %v, %d", s.Slice, s.CheckEvery)
	}
	s.Reset()
	if s.Check() {
		t.Error("fresh slot expired on the first check")
	}
}
