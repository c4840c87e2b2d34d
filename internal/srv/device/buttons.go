package device

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
	"sync"
	"time"
)

// Raw levels of the active-low button.
const (
	levelPressed  = 0
	levelReleased = 1
)

// How long the periph watcher waits for an edge before checking for a
// deregistration.
const edgeWaitTimeout = 200 * time.Millisecond

// EdgeHandler receives the raw pin level read after each transition.
// It is called from the GPIO layer and must not block.
type EdgeHandler func(raw int)

// EdgeSignal is an edge triggered input pin.
type EdgeSignal interface {
	// Register sets the pin as input on both edges and installs handler.
	Register(handler EdgeHandler) error
	// Deregister removes the handler. No call is made once it returns.
	Deregister() error
	// Read returns the raw level, 0 when pressed.
	Read() (int, error)
	Close() error
}

// edgeGate forwards edges to a handler until it is closed. close waits for
// the call in progress, if any, so no call is made once it returns.
type edgeGate struct {
	lock    sync.RWMutex
	handler EdgeHandler
}

func (g *edgeGate) open(handler EdgeHandler) {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.handler = handler
}

func (g *edgeGate) call(raw int) {
	g.lock.RLock()
	defer g.lock.RUnlock()
	if g.handler != nil {
		g.handler(raw)
	}
}

func (g *edgeGate) close() {
	g.lock.Lock()
	defer g.lock.Unlock()
	g.handler = nil
}

// PeriphButton is an EdgeSignal on top of a periph.io pin.
type PeriphButton struct {
	lock sync.Mutex
	pin  gpio.PinIO

	askDone chan bool
	done    chan bool
}

func NewPeriphButton(name string) (*PeriphButton, error) {
	if _, err := host.Init(); err != nil {
		return nil, &HardwareInitError{Resource: "periph host", Err: err}
	}

	pin := gpioreg.ByName(name)
	if pin == nil {
		return nil, &HardwareInitError{Resource: "button " + name, Err: errors.New("pin not found")}
	}
	return newPeriphButton(pin), nil
}

func newPeriphButton(pin gpio.PinIO) *PeriphButton {
	return &PeriphButton{pin: pin}
}

func (b *PeriphButton) Register(handler EdgeHandler) error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.askDone != nil {
		return errors.Errorf("a handler is already registered on %s", b.pin)
	}

	// Set it as input, with an internal pull up resistor:
	if err := b.pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
		return &HardwareInitError{Resource: "button " + b.pin.String(), Err: err}
	}

	b.askDone = make(chan bool)
	b.done = make(chan bool)
	go b.watch(handler, b.askDone, b.done)

	logrus.Infof("Edge handler registered on %s", b.pin)
	return nil
}

func (b *PeriphButton) watch(handler EdgeHandler, askDone <-chan bool, done chan<- bool) {
	defer close(done)
	for {
		select {
		case <-askDone:
			return
		default:
		}

		if !b.pin.WaitForEdge(edgeWaitTimeout) {
			continue
		}

		select {
		case <-askDone:
			return
		default:
			handler(levelToRaw(b.pin.Read()))
		}
	}
}

func (b *PeriphButton) Deregister() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	if b.askDone == nil {
		return nil
	}
	close(b.askDone)
	<-b.done
	b.askDone = nil
	b.done = nil

	logrus.Infof("Edge handler removed from %s", b.pin)
	return b.pin.In(gpio.PullUp, gpio.NoEdge)
}

func (b *PeriphButton) Read() (int, error) {
	return levelToRaw(b.pin.Read()), nil
}

func (b *PeriphButton) Close() error {
	if err := b.Deregister(); err != nil {
		return err
	}
	return b.pin.Halt()
}

func levelToRaw(l gpio.Level) int {
	if l == gpio.Low {
		return levelPressed
	}
	return levelReleased
}

// SimulatedButton is driven by Press and Release instead of a pin.
type SimulatedButton struct {
	lock    sync.Mutex
	handler EdgeHandler
	level   int
}

func NewSimulatedButton() *SimulatedButton {
	return &SimulatedButton{level: levelReleased}
}

func (b *SimulatedButton) Register(handler EdgeHandler) error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.handler != nil {
		return errors.New("a handler is already registered on the simulated button")
	}
	b.handler = handler
	logrus.Infof("Edge handler registered on simulated button")
	return nil
}

func (b *SimulatedButton) Deregister() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.handler = nil
	return nil
}

func (b *SimulatedButton) Read() (int, error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.level, nil
}

func (b *SimulatedButton) Close() error {
	return b.Deregister()
}

// Press simulates a falling edge.
func (b *SimulatedButton) Press() {
	b.SetLevel(levelPressed)
}

// Release simulates a rising edge.
func (b *SimulatedButton) Release() {
	b.SetLevel(levelReleased)
}

// SetLevel forces a raw level, including invalid ones, and raises an edge.
func (b *SimulatedButton) SetLevel(raw int) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.level = raw
	if b.handler != nil {
		b.handler(raw)
	}
}
