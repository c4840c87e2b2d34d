//go:build window

package device

import (
	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget"
	"github.com/sirupsen/logrus"
	"image"
)

const windowBuild = true

// simulationWindow shows the simulated display frames on the desktop.
type simulationWindow struct {
	window *app.Window
	frame  func() image.Image
}

func startSimulationWindow(width, height int, frame func() image.Image) *simulationWindow {
	w := &simulationWindow{
		window: app.NewWindow(
			app.Title("longpress"),
			app.Size(unit.Px(float32(2*width)), unit.Px(float32(2*height))),
			app.MinSize(unit.Px(float32(width)), unit.Px(float32(height))),
		),
		frame: frame,
	}
	go func() {
		if err := w.loop(); err != nil {
			logrus.Errorf("Simulation window closed: %v", err)
		}
	}()
	go app.Main()

	logrus.Infof("Simulation window opened")
	return w
}

func (w *simulationWindow) invalidate() {
	w.window.Invalidate()
}

func (w *simulationWindow) close() {
	w.window.Close()
}

func (w *simulationWindow) loop() error {
	var ops op.Ops
	for {
		e := <-w.window.Events()
		switch e := e.(type) {
		case system.DestroyEvent:
			return e.Err
		case system.FrameEvent:
			gtx := layout.NewContext(&ops, e)
			img := widget.Image{Src: paint.NewImageOp(w.frame()), Fit: widget.Contain}
			img.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}
