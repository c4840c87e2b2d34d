package srv

import (
	"context"
	"github.com/jypelle/longpress/apimodel"
	"github.com/jypelle/longpress/internal/srv/event"
	"github.com/jypelle/longpress/internal/srv/press"
	"github.com/sirupsen/logrus"
)

// onEdge runs in the GPIO callback context: update the state, queue a
// notification, return.
func (s *ServerApp) onEdge(raw int) {
	now := s.clock.Now()
	before := s.pressState.Sample(now)

	if err := s.pressState.OnEdge(raw, now); err != nil {
		logrus.Warnf("Ignoring edge: %v", err)
		return
	}

	switch raw {
	case press.LevelPressed:
		after := s.pressState.Sample(now)
		logrus.Debugf("Button pressed (segment %d)", after.Segment)
		s.notify(event.PressEvent{
			PressEventType: event.PRESS_EVENT_TYPE,
			Timestamp:      now,
			Segment:        after.Segment,
		})
	case press.LevelReleased:
		if !before.Pressed {
			return
		}
		logrus.Infof("Button released after %v (%s press)", before.Elapsed, press.Classify(before.Elapsed, s.pressConfig.Threshold))
		s.notify(event.PressEvent{
			PressEventType: event.RELEASE_EVENT_TYPE,
			Timestamp:      now,
			Held:           before.Elapsed,
			Segment:        before.Segment,
		})
	}
}

// onLongPress is the timing loop action.
func (s *ServerApp) onLongPress(ctx context.Context, ev event.PressEvent) error {
	logrus.Infof("Long press on segment %d, running action", ev.Segment)
	s.notify(ev)
	return s.displayDevice.Scroll(ctx, s.Display.LongPressText, s.Display.ScrollInterval)
}

func (s *ServerApp) notify(ev event.PressEvent) {
	if s.notifierDevice == nil {
		return
	}
	if !s.notifierDevice.Notify(ev) {
		logrus.Warnf("Notification queue full, %s event dropped", ev.PressEventType)
	}
}

func (s *ServerApp) pressStatus() apimodel.PressStatus {
	snapshot := s.pressState.Sample(s.clock.Now())
	loopStatus := s.pressLoop.Status()

	status := apimodel.PressStatus{
		Pressed:      snapshot.Pressed,
		HeldMs:       snapshot.Elapsed.Milliseconds(),
		Segment:      snapshot.Segment,
		Phase:        loopStatus.Phase.String(),
		Policy:       s.pressConfig.Policy.String(),
		ThresholdMs:  s.pressConfig.Threshold.Milliseconds(),
		FireCount:    loopStatus.FireCount,
		FailureCount: loopStatus.FailureCount,
		DisplayText:  s.displayDevice.LastText(),
	}
	if !loopStatus.LastFire.IsZero() {
		lastFire := loopStatus.LastFire
		status.LastFire = &lastFire
	}
	return status
}
