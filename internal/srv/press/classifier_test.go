package press

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	threshold := 3 * time.Second
	tests := []struct {
		elapsed time.Duration
		want    Classification
	}{
		{0, SHORT_PRESS},
		{10 * time.Millisecond, SHORT_PRESS},
		{threshold - time.Nanosecond, SHORT_PRESS},
		{threshold, LONG_PRESS},
		{threshold + time.Nanosecond, LONG_PRESS},
		{10 * time.Second, LONG_PRESS},
	}

	for _, tt := range tests {
		if got := Classify(tt.elapsed, threshold); got != tt.want {
			t.Errorf("Classify(%v, %v) = %s, want %s", tt.elapsed, threshold, got, tt.want)
		}
	}
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		name    string
		want    Policy
		wantErr bool
	}{
		{"", REARM_ON_FIRE, false},
		{"rearm_on_fire", REARM_ON_FIRE, false},
		{"  FIRE_ONCE_PER_PRESS ", FIRE_ONCE_PER_PRESS, false},
		{"twice", REARM_ON_FIRE, true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePolicy(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePolicy(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}

func held(segment uint64, elapsed time.Duration) Snapshot {
	return Snapshot{Pressed: true, Segment: segment, Elapsed: elapsed}
}

func TestTrackerSteps(t *testing.T) {
	threshold := 3 * time.Second
	released := Snapshot{}

	type step struct {
		snapshot Snapshot
		want     Decision
	}
	tests := []struct {
		name   string
		policy Policy
		steps  []step
	}{
		{
			name:   "short press never fires",
			policy: REARM_ON_FIRE,
			steps: []step{
				{held(1, 0), Decision{Phase: HOLDING_PHASE}},
				{held(1, time.Second), Decision{Phase: HOLDING_PHASE}},
				{released, Decision{Phase: IDLE_PHASE}},
			},
		},
		{
			name:   "rearm fires on every threshold",
			policy: REARM_ON_FIRE,
			steps: []step{
				{held(1, time.Second), Decision{Phase: HOLDING_PHASE}},
				{held(1, threshold), Decision{Phase: FIRED_PHASE, Fire: true, Rearm: true}},
				{held(1, 250*time.Millisecond), Decision{Phase: HOLDING_PHASE}},
				{held(1, threshold), Decision{Phase: FIRED_PHASE, Fire: true, Rearm: true}},
				{released, Decision{Phase: IDLE_PHASE}},
			},
		},
		{
			name:   "fire once waits for release",
			policy: FIRE_ONCE_PER_PRESS,
			steps: []step{
				{held(1, threshold), Decision{Phase: FIRED_PHASE, Fire: true}},
				{held(1, 2*threshold), Decision{Phase: FIRED_PHASE}},
				{held(1, 5*threshold), Decision{Phase: FIRED_PHASE}},
				{released, Decision{Phase: IDLE_PHASE}},
				{held(2, threshold), Decision{Phase: FIRED_PHASE, Fire: true}},
			},
		},
		{
			name:   "new segment without observed release",
			policy: FIRE_ONCE_PER_PRESS,
			steps: []step{
				{held(1, threshold), Decision{Phase: FIRED_PHASE, Fire: true}},
				{held(2, time.Second), Decision{Phase: HOLDING_PHASE}},
				{held(2, threshold), Decision{Phase: FIRED_PHASE, Fire: true}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := NewTracker(tt.policy)
			if tracker.Phase() != IDLE_PHASE {
				t.Fatalf("initial phase: got %s", tracker.Phase())
			}
			for i, s := range tt.steps {
				got := tracker.Step(s.snapshot, threshold)
				if got != s.want {
					t.Errorf("step %d: got %+v, want %+v", i, got, s.want)
				}
				if tracker.Phase() != got.Phase {
					t.Errorf("step %d: tracker phase %s, decision phase %s", i, tracker.Phase(), got.Phase)
				}
			}
		})
	}
}
