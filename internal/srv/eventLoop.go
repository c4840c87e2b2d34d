package srv

import (
	"github.com/jypelle/longpress/internal/srv/event"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var errSimulationOnly = errors.New("button can only be driven in simulation mode")

func (s *ServerApp) eventLoop() {
	var apiEventChannel chan event.ApiEvent
	if s.apiDevice != nil {
		apiEventChannel = s.apiDevice.EventChannel()
	}

	for loop := true; loop; {
		select {
		case ev := <-apiEventChannel:
			switch data := ev.Data.(type) {
			case event.ApiEventDisplayClearData:
				logrus.Debugf("Receive display clear event")
				ev.Result <- s.displayDevice.Clear()
			case event.ApiEventButtonData:
				logrus.Debugf("Receive button event: pressed=%t", data.Pressed)
				if s.simulatedButton == nil {
					ev.Result <- errSimulationOnly
					continue
				}
				if data.Pressed {
					s.simulatedButton.Press()
				} else {
					s.simulatedButton.Release()
				}
				ev.Result <- nil
			default:
				ev.Result <- errors.Errorf("unexpected api event %T", data)
			}
		case <-s.eventLoopAskDone:
			loop = false
		}
	}
	s.eventLoopDone <- true
}
