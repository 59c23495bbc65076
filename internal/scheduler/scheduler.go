// Package scheduler bounds the synchronous work an evaluator does before
// it yields.
package scheduler

import "time"

const (
	// DefaultSlice is the default length of one time slot.
	DefaultSlice = 20 * time.Millisecond
	// DefaultCheckEvery is how many operators run between clock reads.
	DefaultCheckEvery = 100
)

// A TimeSlot tracks the deadline of the current slot. The clock is only
// read every CheckEvery calls to Check.
type TimeSlot struct {
	Slice      time.Duration
	CheckEvery int
	Now        func() time.Time

	end     time.Time
	counter int
}

// New returns a TimeSlot with the given slice and check interval. Zero
// values select the defaults.
func New(slice time.Duration, checkEvery int) *TimeSlot {
	if slice <= 0 {
		slice = DefaultSlice
	}
	if checkEvery <= 0 {
		checkEvery = DefaultCheckEvery
	}
	return &TimeSlot{Slice: slice, CheckEvery: checkEvery, Now: time.Now}
}

// Reset starts a new slot.
func (s *TimeSlot) Reset() {
	s.end = s.now().Add(s.Slice)
	s.counter = 0
}

// Check counts one unit of work and reports whether the slot has run out.
func (s *TimeSlot) Check() bool {
	s.counter++
	if s.counter < s.CheckEvery {
		return false
	}
	s.counter = 0
	return !s.now().Before(s.end)
}

func (s *TimeSlot) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
