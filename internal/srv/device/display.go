package device

import (
	"context"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/font"
	"image"
	"image/draw"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"
	"sync"
	"time"
)

// TextDisplay shows status text.
type TextDisplay interface {
	Render(text string) error
	Clear() error
	Scroll(ctx context.Context, text string, interval time.Duration) error
}

type DisplayOpts struct {
	Bus      string
	Address  uint16
	Width    int
	Height   int
	FontPath string
	FontSize float64
	Contrast byte

	// Clock paces scrolling, the real clock when nil.
	Clock clockwork.Clock
	// Window shows the simulated display in a desktop window, when built
	// with the window tag.
	Window bool
}

var DefaultDisplayOpts = DisplayOpts{
	Address:  0x3C,
	Width:    128,
	Height:   32,
	FontSize: 12,
	Contrast: 0xFF,
}

// screen is the subset of *ssd1306.Dev the display needs.
type screen interface {
	Bounds() image.Rectangle
	Draw(r image.Rectangle, src image.Image, sp image.Point) error
	Halt() error
}

type Display struct {
	oledLock sync.Mutex
	screen   screen
	i2cBus   i2c.BusCloser

	lock       sync.RWMutex
	face       font.Face
	clock      clockwork.Clock
	lastText   string
	simulation bool

	window *simulationWindow
}

// NewDisplay opens the I2C bus and initializes a ssd1306.
func NewDisplay(opts DisplayOpts) (*Display, error) {
	face, err := LoadFace(opts.FontPath, opts.FontSize)
	if err != nil {
		return nil, err
	}

	if _, err := host.Init(); err != nil {
		return nil, &HardwareInitError{Resource: "periph host", Err: err}
	}

	// Open a handle to the I²C bus:
	bus, err := i2creg.Open(opts.Bus)
	if err != nil {
		return nil, &HardwareInitError{Resource: "i2c bus", Err: err}
	}

	dev, err := newOled(bus, opts)
	if err != nil {
		bus.Close()
		return nil, err
	}

	d := newDisplay(dev, face, opts.Clock)
	d.i2cBus = bus
	return d, nil
}

func newOled(bus i2c.Bus, opts DisplayOpts) (*ssd1306.Dev, error) {
	// Open a handle to a ssd1306 connected on the I²C bus:
	dev, err := ssd1306.NewI2C(&addressedBus{Bus: bus, addr: opts.Address}, &ssd1306.Opts{
		W:          opts.Width,
		H:          opts.Height,
		Sequential: opts.Height < 64,
	})
	if err != nil {
		return nil, &HardwareInitError{Resource: "oled display", Err: err}
	}
	if err := dev.SetContrast(opts.Contrast); err != nil {
		return nil, &HardwareInitError{Resource: "oled display", Err: errors.Wrap(err, "set contrast")}
	}
	return dev, nil
}

// NewSimulatedDisplay renders into memory and logs every frame. With
// opts.Window the frames are also shown in a window.
func NewSimulatedDisplay(opts DisplayOpts) (*Display, error) {
	face, err := LoadFace(opts.FontPath, opts.FontSize)
	if err != nil {
		return nil, err
	}
	mem := newMemScreen(opts.Width, opts.Height)
	d := newDisplay(mem, face, opts.Clock)
	d.simulation = true
	if opts.Window {
		d.window = startSimulationWindow(opts.Width, opts.Height, mem.Snapshot)
		if d.window != nil {
			mem.onDraw = d.window.invalidate
		}
	}
	return d, nil
}

func newDisplay(s screen, face font.Face, clock clockwork.Clock) *Display {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Display{
		screen: s,
		face:   face,
		clock:  clock,
	}
}

func (d *Display) Start() error {
	logrus.Infof("Start display device")
	return d.Clear()
}

func (d *Display) Stop() {
	logrus.Infof("Stop display device")

	if err := d.Clear(); err != nil {
		logrus.Warnf("Unable to clear display: %v", err)
	}

	d.oledLock.Lock()
	defer d.oledLock.Unlock()
	if err := d.screen.Halt(); err != nil {
		logrus.Warnf("Unable to halt display: %v", err)
	}
	if d.i2cBus != nil {
		d.i2cBus.Close()
	}
	if d.window != nil {
		d.window.close()
	}
}

// Render replaces the whole screen with text.
func (d *Display) Render(text string) error {
	d.lock.Lock()
	defer d.lock.Unlock()

	img := image1bit.NewVerticalLSB(d.screen.Bounds())
	AddLabel(img, d.face, text)
	if err := d.flush(img); err != nil {
		return &RenderError{Text: text, Err: err}
	}
	d.lastText = text
	if d.simulation {
		logrus.Debugf("Display: %q", text)
	}
	return nil
}

func (d *Display) Clear() error {
	d.lock.Lock()
	defer d.lock.Unlock()

	img := image1bit.NewVerticalLSB(d.screen.Bounds())
	if err := d.flush(img); err != nil {
		return &RenderError{Err: err}
	}
	d.lastText = ""
	return nil
}

// Scroll writes text one more character per frame. See Scroll.
func (d *Display) Scroll(ctx context.Context, text string, interval time.Duration) error {
	return Scroll(ctx, d.clock, d, text, interval)
}

func (d *Display) LastText() string {
	d.lock.RLock()
	defer d.lock.RUnlock()
	return d.lastText
}

func (d *Display) flush(img image.Image) error {
	d.oledLock.Lock()
	defer d.oledLock.Unlock()
	return d.screen.Draw(d.screen.Bounds(), img, image.Point{})
}

// addressedBus sends every transaction to addr, the ssd1306 driver always
// uses 0x3C.
type addressedBus struct {
	i2c.Bus
	addr uint16
}

func (b *addressedBus) Tx(_ uint16, w, r []byte) error {
	return b.Bus.Tx(b.addr, w, r)
}

// memScreen is the simulation screen. onDraw, when set, is called after
// every frame.
type memScreen struct {
	lock   sync.Mutex
	img    *image1bit.VerticalLSB
	err    error
	onDraw func()
}

func newMemScreen(w, h int) *memScreen {
	return &memScreen{img: image1bit.NewVerticalLSB(image.Rect(0, 0, w, h))}
}

func (m *memScreen) Bounds() image.Rectangle {
	return m.img.Bounds()
}

func (m *memScreen) Draw(r image.Rectangle, src image.Image, sp image.Point) error {
	m.lock.Lock()
	if m.err != nil {
		m.lock.Unlock()
		return m.err
	}
	draw.Draw(m.img, r, src, sp, draw.Src)
	m.lock.Unlock()

	if m.onDraw != nil {
		m.onDraw()
	}
	return nil
}

// Snapshot returns a copy of the current frame.
func (m *memScreen) Snapshot() image.Image {
	m.lock.Lock()
	defer m.lock.Unlock()
	frame := image1bit.NewVerticalLSB(m.img.Bounds())
	copy(frame.Pix, m.img.Pix)
	return frame
}

func (m *memScreen) Halt() error {
	return nil
}
