package event

import (
	"time"
)

// Button
type PressEventType int

const (
	PRESS_EVENT_TYPE PressEventType = iota
	RELEASE_EVENT_TYPE
	LONG_PRESS_EVENT_TYPE
)

func (t PressEventType) String() string {
	switch t {
	case PRESS_EVENT_TYPE:
		return "PRESS"
	case RELEASE_EVENT_TYPE:
		return "RELEASE"
	case LONG_PRESS_EVENT_TYPE:
		return "LONG_PRESS"
	}
	return "UNKNOWN"
}

type PressEvent struct {
	PressEventType PressEventType
	Timestamp      time.Time
	// Held is the hold time measured when the event was raised
	Held    time.Duration
	Segment uint64
}

// Api
type ApiEvent struct {
	Result chan error
	Data   interface{}
}

type ApiEventDisplayClearData struct{}

type ApiEventButtonData struct {
	Pressed bool
}
