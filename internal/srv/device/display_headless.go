//go:build !window

package device

import (
	"github.com/sirupsen/logrus"
	"image"
)

const windowBuild = false

// simulationWindow needs the window build tag.
type simulationWindow struct{}

func startSimulationWindow(width, height int, frame func() image.Image) *simulationWindow {
	logrus.Warnf("Built without the window tag, the simulated display stays headless")
	return nil
}

func (w *simulationWindow) invalidate() {
}

func (w *simulationWindow) close() {
}
