// Package press holds the button timing core: the state shared by the edge
// callback and the polling loop, the long press classifier, and the loop.
package press

import (
	"sync"
	"time"
)

// Raw GPIO levels of an active-low button.
const (
	LevelPressed  = 0
	LevelReleased = 1
)

// Snapshot is a consistent copy of the shared state taken under lock.
type Snapshot struct {
	Pressed bool
	Start   time.Time
	Elapsed time.Duration
	// Segment identifies the hold segment Start belongs to.
	Segment uint64
	// Done is closed once the segment has ended.
	Done <-chan struct{}
}

// State is the record shared between the edge callback and the polling loop.
// Every field is read and written under lock, and the lock is never held
// across anything but field updates.
type State struct {
	lock    sync.Mutex
	pressed bool
	start   time.Time
	segment uint64
	done    chan struct{}
}

func NewState() *State {
	return &State{}
}

// OnEdge applies a level read after a pin transition. It never blocks.
func (s *State) OnEdge(raw int, now time.Time) error {
	switch raw {
	case LevelPressed:
		s.lock.Lock()
		defer s.lock.Unlock()

		// A second falling edge without a release in between supersedes the
		// running segment.
		if s.pressed {
			close(s.done)
		}
		s.pressed = true
		s.start = s.clamp(now)
		s.segment++
		s.done = make(chan struct{})
	case LevelReleased:
		s.lock.Lock()
		defer s.lock.Unlock()

		if s.pressed {
			s.pressed = false
			close(s.done)
		}
	default:
		return &InvalidValueError{Value: raw}
	}
	return nil
}

// Sample returns the state as seen at now.
func (s *State) Sample(now time.Time) Snapshot {
	s.lock.Lock()
	defer s.lock.Unlock()

	snapshot := Snapshot{
		Pressed: s.pressed,
		Start:   s.start,
		Segment: s.segment,
		Done:    s.done,
	}
	if s.pressed && now.After(s.start) {
		snapshot.Elapsed = now.Sub(s.start)
	}
	return snapshot
}

// Rearm restarts the timing of segment at now. It does nothing, and returns
// false, if the segment was released or replaced since it was sampled.
func (s *State) Rearm(segment uint64, now time.Time) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.pressed || s.segment != segment {
		return false
	}
	s.start = s.clamp(now)
	return true
}

// clamp keeps start non-decreasing.
func (s *State) clamp(t time.Time) time.Time {
	if t.Before(s.start) {
		return s.start
	}
	return t
}
