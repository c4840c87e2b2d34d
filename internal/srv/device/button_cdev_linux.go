//go:build linux

package device

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/warthog618/go-gpiocdev"
	"strconv"
	"sync"
)

// CdevButton is an EdgeSignal on the Linux GPIO character device. Edges are
// delivered by the gpiocdev event handler goroutine. The line is only
// requested while a handler is registered.
type CdevButton struct {
	lock   sync.Mutex
	chip   string
	offset int
	line   *gpiocdev.Line
	gate   edgeGate
}

func NewCdevButton(chip string, offset int) (*CdevButton, error) {
	if chip == "" {
		return nil, &HardwareInitError{Resource: "gpio chip", Err: errors.New("no chip name")}
	}
	return &CdevButton{chip: chip, offset: offset}, nil
}

func (b *CdevButton) Register(handler EdgeHandler) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.line != nil {
		return errors.Errorf("a handler is already registered on %s:%d", b.chip, b.offset)
	}

	b.gate.open(handler)
	line, err := gpiocdev.RequestLine(b.chip, b.offset,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
			b.gate.call(eventToRaw(evt))
		}))
	if err != nil {
		b.gate.close()
		return &HardwareInitError{Resource: "gpio line " + b.chip + ":" + strconv.Itoa(b.offset), Err: err}
	}
	b.line = line

	logrus.Infof("Edge handler registered on %s:%d", b.chip, b.offset)
	return nil
}

func eventToRaw(evt gpiocdev.LineEvent) int {
	if evt.Type == gpiocdev.LineEventFallingEdge {
		return levelPressed
	}
	return levelReleased
}

// Deregister waits for a handler call in progress, then releases the line.
func (b *CdevButton) Deregister() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.line == nil {
		return nil
	}
	b.gate.close()
	err := b.line.Close()
	b.line = nil
	logrus.Infof("Edge handler removed from %s:%d", b.chip, b.offset)
	if err != nil {
		return errors.Wrapf(err, "release line %s:%d", b.chip, b.offset)
	}
	return nil
}

func (b *CdevButton) Read() (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.line == nil {
		return 0, errors.Errorf("line %s:%d not requested", b.chip, b.offset)
	}
	value, err := b.line.Value()
	if err != nil {
		return 0, errors.Wrapf(err, "read line %s:%d", b.chip, b.offset)
	}
	return value, nil
}

func (b *CdevButton) Close() error {
	return b.Deregister()
}
