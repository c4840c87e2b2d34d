package press

import (
	"github.com/pkg/errors"
	"strings"
	"time"
)

type Classification int

const (
	SHORT_PRESS Classification = iota
	LONG_PRESS
)

func (c Classification) String() string {
	if c == LONG_PRESS {
		return "long"
	}
	return "short"
}

// Classify returns LONG_PRESS iff elapsed reaches threshold.
func Classify(elapsed, threshold time.Duration) Classification {
	if elapsed >= threshold {
		return LONG_PRESS
	}
	return SHORT_PRESS
}

// Policy tells what happens once the action fired while the button is
// still held.
type Policy int

const (
	// REARM_ON_FIRE restarts the timing, a sustained hold fires again every
	// threshold.
	REARM_ON_FIRE Policy = iota
	// FIRE_ONCE_PER_PRESS fires once, then waits for a release.
	FIRE_ONCE_PER_PRESS
)

var policyNames = map[Policy]string{
	REARM_ON_FIRE:       "rearm_on_fire",
	FIRE_ONCE_PER_PRESS: "fire_once_per_press",
}

func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return "unknown"
}

func ParsePolicy(name string) (Policy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return REARM_ON_FIRE, nil
	}
	for policy, policyName := range policyNames {
		if policyName == name {
			return policy, nil
		}
	}
	return REARM_ON_FIRE, errors.Errorf("unknown press policy %q", name)
}

type Phase int

const (
	IDLE_PHASE Phase = iota
	HOLDING_PHASE
	FIRED_PHASE
)

func (p Phase) String() string {
	switch p {
	case HOLDING_PHASE:
		return "holding"
	case FIRED_PHASE:
		return "fired"
	default:
		return "idle"
	}
}

// Decision is the outcome of one Tracker step.
type Decision struct {
	Phase Phase
	Fire  bool
	Rearm bool
}

// Tracker is the long press action state machine. It only sees snapshots,
// so it is not safe for concurrent use and needs no lock: the polling loop
// owns it.
type Tracker struct {
	policy  Policy
	phase   Phase
	segment uint64
}

func NewTracker(policy Policy) *Tracker {
	return &Tracker{policy: policy}
}

func (t *Tracker) Phase() Phase {
	return t.phase
}

// Step advances the machine with a fresh snapshot.
func (t *Tracker) Step(snapshot Snapshot, threshold time.Duration) Decision {
	if !snapshot.Pressed {
		t.phase = IDLE_PHASE
		return Decision{Phase: t.phase}
	}

	if t.phase == IDLE_PHASE || snapshot.Segment != t.segment {
		t.segment = snapshot.Segment
		t.phase = HOLDING_PHASE
	} else if t.phase == FIRED_PHASE {
		if t.policy == FIRE_ONCE_PER_PRESS {
			return Decision{Phase: t.phase}
		}
		// The previous fire re-armed the segment.
		t.phase = HOLDING_PHASE
	}

	if Classify(snapshot.Elapsed, threshold) == SHORT_PRESS {
		return Decision{Phase: t.phase}
	}

	t.phase = FIRED_PHASE
	return Decision{
		Phase: t.phase,
		Fire:  true,
		Rearm: t.policy == REARM_ON_FIRE,
	}
}
