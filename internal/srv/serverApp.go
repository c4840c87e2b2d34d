package srv

import (
	"context"
	"github.com/jonboulle/clockwork"
	"github.com/jypelle/longpress/internal/srv/config"
	"github.com/jypelle/longpress/internal/srv/device"
	"github.com/jypelle/longpress/internal/srv/press"
	"github.com/jypelle/longpress/internal/version"
	"github.com/sirupsen/logrus"
	"sync"
)

type ServerApp struct {
	*config.ServerConfig
	pressConfig press.Config
	clock       clockwork.Clock

	displayDevice   *device.Display
	buttonDevice    device.EdgeSignal
	simulatedButton *device.SimulatedButton
	notifierDevice  *device.Notifier
	apiDevice       *device.Api

	pressState *press.State
	pressLoop  *press.Loop

	pressLoopCancel context.CancelFunc
	pressLoopDone   chan bool

	eventLoopAskDone chan bool
	eventLoopDone    chan bool

	stopOnce sync.Once
}

// NewServerApp loads the configuration and opens every device. Hardware
// failures are returned as *device.HardwareInitError. windowMode shows the
// simulated display in a window.
func NewServerApp(configDir string, debugMode bool, simulationMode bool, windowMode bool) (*ServerApp, error) {
	logrus.Debugf("Creation of longpress server %s ...", version.AppVersion)

	serverConfig, err := config.NewServerConfig(configDir, debugMode, simulationMode)
	if err != nil {
		return nil, err
	}

	displayOpts := displayOpts(serverConfig.Display)
	displayOpts.Window = windowMode

	var displayDevice *device.Display
	var buttonDevice device.EdgeSignal
	if serverConfig.SimulationMode {
		if displayDevice, err = device.NewSimulatedDisplay(displayOpts); err != nil {
			return nil, err
		}
		buttonDevice = device.NewSimulatedButton()
	} else {
		if displayDevice, err = device.NewDisplay(displayOpts); err != nil {
			return nil, err
		}
		if buttonDevice, err = newButton(serverConfig.Button); err != nil {
			displayDevice.Stop()
			return nil, err
		}
	}

	var publisher device.Publisher
	if serverConfig.Mqtt != nil {
		mqttPublisher, err := device.NewMqttPublisher(*serverConfig.Mqtt)
		if err != nil {
			logrus.Warnf("MQTT notifications disabled: %v", err)
		} else {
			publisher = mqttPublisher
		}
	}

	app, err := newServerApp(serverConfig, displayDevice, buttonDevice, publisher, nil)
	if err != nil {
		displayDevice.Stop()
		buttonDevice.Close()
		return nil, err
	}

	logrus.Debugln("Server created")
	return app, nil
}

func newServerApp(serverConfig *config.ServerConfig, displayDevice *device.Display, buttonDevice device.EdgeSignal, publisher device.Publisher, clock clockwork.Clock) (*ServerApp, error) {
	pressConfig, err := serverConfig.PressConfig()
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	app := &ServerApp{
		ServerConfig:     serverConfig,
		pressConfig:      pressConfig,
		clock:            clock,
		displayDevice:    displayDevice,
		buttonDevice:     buttonDevice,
		pressState:       press.NewState(),
		eventLoopAskDone: make(chan bool),
		eventLoopDone:    make(chan bool),
	}
	if simulatedButton, ok := buttonDevice.(*device.SimulatedButton); ok {
		app.simulatedButton = simulatedButton
	}
	if publisher != nil {
		app.notifierDevice = device.NewNotifier(publisher, serverConfig.Mqtt.Topic)
	}
	if serverConfig.Api.Enabled {
		app.apiDevice = device.NewApi(serverConfig.Api, app.pressStatus)
	}
	app.pressLoop = press.NewLoop(pressConfig, app.pressState, app.onLongPress, clock)

	return app, nil
}

func newButton(param config.ButtonParam) (device.EdgeSignal, error) {
	if param.Driver == config.GPIOCDEV_DRIVER {
		return device.NewCdevButton(param.Chip, param.Offset)
	}
	return device.NewPeriphButton(param.Pin)
}

func displayOpts(param config.DisplayParam) device.DisplayOpts {
	return device.DisplayOpts{
		Bus:      param.Bus,
		Address:  param.Address,
		Width:    param.Width,
		Height:   param.Height,
		FontPath: param.FontPath,
		FontSize: param.FontSize,
		Contrast: param.Contrast,
	}
}

func (s *ServerApp) Start() error {
	logrus.Printf("Starting longpress server ...")

	// Start display device
	if err := s.displayDevice.Start(); err != nil {
		logrus.Warnf("Unable to clear display: %v", err)
	}
	if s.Display.StartupText != "" {
		if err := s.displayDevice.Render(s.Display.StartupText); err != nil {
			logrus.Warnf("Unable to show startup text: %v", err)
		}
	}

	// Start notifier device
	if s.notifierDevice != nil {
		s.notifierDevice.Start()
	}

	// Start event loop
	go s.eventLoop()

	// Start timing loop
	ctx, cancel := context.WithCancel(context.Background())
	s.pressLoopCancel = cancel
	s.pressLoopDone = make(chan bool)
	go func() {
		defer close(s.pressLoopDone)
		if err := s.pressLoop.Run(ctx); err != nil {
			logrus.Errorf("Timing loop stopped: %v", err)
		}
	}()

	// Start button device
	if err := s.buttonDevice.Register(s.onEdge); err != nil {
		s.Stop()
		return err
	}
	if raw, err := s.buttonDevice.Read(); err != nil {
		logrus.Warnf("Unable to read button: %v", err)
	} else {
		logrus.Debugf("Initial button level: %d", raw)
	}

	// Start api device
	if s.apiDevice != nil {
		s.apiDevice.Start()
	}

	return nil
}

// Stop releases every device. Only the first call has an effect.
func (s *ServerApp) Stop() {
	s.stopOnce.Do(s.stop)
}

func (s *ServerApp) stop() {
	logrus.Printf("Stopping longpress server ...")

	// Stop api
	if s.apiDevice != nil {
		s.apiDevice.StopSendingEvent()
	}

	// Stop button device
	if err := s.buttonDevice.Deregister(); err != nil {
		logrus.Warnf("Unable to remove edge handler: %v", err)
	}

	// Nothing was started before Start
	if s.pressLoopCancel != nil {
		s.stopLoops()
		if s.notifierDevice != nil {
			s.notifierDevice.Stop()
		}
	}

	if err := s.buttonDevice.Close(); err != nil {
		logrus.Warnf("Unable to close button: %v", err)
	}

	// Stop display device
	s.displayDevice.Stop()

	logrus.Printf("Server stopped")
}

func (s *ServerApp) stopLoops() {
	logrus.Infof("Stop event loop")
	s.pressLoopCancel()
	<-s.pressLoopDone
	s.eventLoopAskDone <- true
	<-s.eventLoopDone
}
