package press

import (
	"context"
	"github.com/jonboulle/clockwork"
	"github.com/jypelle/longpress/internal/srv/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"sync"
	"time"
)

// Config is immutable once the loop is built.
type Config struct {
	Threshold    time.Duration
	PollInterval time.Duration
	Policy       Policy
}

var DefaultConfig = Config{
	Threshold:    3 * time.Second,
	PollInterval: 250 * time.Millisecond,
	Policy:       REARM_ON_FIRE,
}

func (c Config) Validate() error {
	if c.Threshold <= 0 {
		return errors.Errorf("threshold must be positive, got %v", c.Threshold)
	}
	if c.PollInterval <= 0 {
		return errors.Errorf("poll interval must be positive, got %v", c.PollInterval)
	}
	if _, ok := policyNames[c.Policy]; !ok {
		return errors.Errorf("unknown press policy %d", c.Policy)
	}
	return nil
}

// Action is run by the loop on every long press. Its context is cancelled on
// shutdown and as soon as the button is released.
type Action func(ctx context.Context, ev event.PressEvent) error

// Status is what the loop exposes to other goroutines.
type Status struct {
	Phase        Phase
	FireCount    int64
	FailureCount int64
	LastFire     time.Time
}

// Loop polls State at a fixed interval and runs the action on long presses.
type Loop struct {
	config  Config
	state   *State
	tracker *Tracker
	action  Action
	clock   clockwork.Clock

	lock   sync.RWMutex
	status Status
}

// NewLoop builds a loop. A nil clock means the real one.
func NewLoop(config Config, state *State, action Action, clock clockwork.Clock) *Loop {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Loop{
		config:  config,
		state:   state,
		tracker: NewTracker(config.Policy),
		action:  action,
		clock:   clock,
	}
}

// Run polls until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	logrus.Infof("Start timing loop (threshold: %v, poll: %v, policy: %s)", l.config.Threshold, l.config.PollInterval, l.config.Policy)

	ticker := l.clock.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logrus.Infof("Stop timing loop")
			return nil
		case <-ticker.Chan():
			if ctx.Err() != nil {
				logrus.Infof("Stop timing loop")
				return nil
			}
			l.Poll(ctx)
		}
	}
}

// Poll runs a single iteration. Action failures are logged and dropped.
func (l *Loop) Poll(ctx context.Context) {
	now := l.clock.Now()
	snapshot := l.state.Sample(now)
	decision := l.tracker.Step(snapshot, l.config.Threshold)
	l.setPhase(decision.Phase)

	if !snapshot.Pressed {
		logrus.Debugf("Button not pressed")
		return
	}
	logrus.Debugf("Button held for %v", snapshot.Elapsed)

	if !decision.Fire {
		return
	}

	logrus.Infof("Long press detected after %v", snapshot.Elapsed)
	err := l.dispatch(ctx, snapshot, now)
	l.recordFire(now, err)

	if decision.Rearm && !l.state.Rearm(snapshot.Segment, l.clock.Now()) {
		logrus.Debugf("Segment %d ended before re-arm", snapshot.Segment)
	}
}

func (l *Loop) dispatch(ctx context.Context, snapshot Snapshot, now time.Time) (err error) {
	actionCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Release of the segment aborts the action.
	go func() {
		select {
		case <-snapshot.Done:
			cancel()
		case <-actionCtx.Done():
		}
	}()

	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("long press action panicked: %v", rec)
		}
	}()

	return l.action(actionCtx, event.PressEvent{
		PressEventType: event.LONG_PRESS_EVENT_TYPE,
		Timestamp:      now,
		Held:           snapshot.Elapsed,
		Segment:        snapshot.Segment,
	})
}

func (l *Loop) recordFire(now time.Time, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()

	l.status.FireCount++
	l.status.LastFire = now
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logrus.Infof("Long press action aborted")
	default:
		l.status.FailureCount++
		logrus.Warnf("Long press action failed: %v", err)
	}
}

func (l *Loop) setPhase(phase Phase) {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.status.Phase = phase
}

func (l *Loop) Status() Status {
	l.lock.RLock()
	defer l.lock.RUnlock()
	return l.status
}
