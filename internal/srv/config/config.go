package config

import (
	"github.com/jypelle/longpress/internal/srv/press"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	"os"
	"path/filepath"
)

const paramFilename = "param.yaml"

const (
	PERIPH_DRIVER   = "periph"
	GPIOCDEV_DRIVER = "gpiocdev"
)

type ServerConfig struct {
	ConfigDir      string
	DebugMode      bool
	SimulationMode bool

	*ServerParam
}

// NewServerConfig loads param.yaml from configDir, creating the folder and a
// default param file when missing. Keys absent from the file keep their
// default value.
func NewServerConfig(configDir string, debugMode bool, simulationMode bool) (*ServerConfig, error) {
	serverConfig := &ServerConfig{
		ConfigDir:      configDir,
		DebugMode:      debugMode,
		SimulationMode: simulationMode,
		ServerParam:    &ServerParam{},
	}

	// Check Configuration folder
	_, err := os.Stat(configDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "unable to access config folder %s", configDir)
		}
		logrus.Printf("Creation of config folder: %s", configDir)
		if err = os.MkdirAll(configDir, 0770); err != nil {
			return nil, errors.Wrap(err, "unable to create config folder")
		}
	}

	if err = yaml.Unmarshal(ParamDefaultFile, serverConfig.ServerParam); err != nil {
		return nil, errors.Wrap(err, "unable to interpret default param file")
	}

	// Open param file
	rawConfig, err := os.ReadFile(serverConfig.GetCompleteParamFilename())
	if err == nil {
		if err = yaml.Unmarshal(rawConfig, serverConfig.ServerParam); err != nil {
			return nil, errors.Wrapf(err, "unable to interpret param file %s", serverConfig.GetCompleteParamFilename())
		}
	} else if os.IsNotExist(err) {
		logrus.Infof("Create default param file")
		if err = serverConfig.SaveParam(); err != nil {
			return nil, err
		}
	} else {
		return nil, errors.Wrap(err, "unable to read param file")
	}

	if err = serverConfig.Validate(); err != nil {
		return nil, err
	}
	return serverConfig, nil
}

func (sc *ServerConfig) GetCompleteParamFilename() string {
	return filepath.Join(sc.ConfigDir, paramFilename)
}

func (sc *ServerConfig) SaveParam() error {
	logrus.Debugf("Save param file: %s", sc.GetCompleteParamFilename())
	rawConfig, err := yaml.Marshal(sc.ServerParam)
	if err != nil {
		return errors.Wrap(err, "unable to serialize param file")
	}
	if err = os.WriteFile(sc.GetCompleteParamFilename(), rawConfig, 0660); err != nil {
		return errors.Wrap(err, "unable to save param file")
	}
	return nil
}

func (sc *ServerConfig) Validate() error {
	switch sc.Button.Driver {
	case PERIPH_DRIVER, GPIOCDEV_DRIVER:
	default:
		return errors.Errorf("unknown button driver %q", sc.Button.Driver)
	}

	if _, err := sc.PressConfig(); err != nil {
		return err
	}

	if sc.Display.Width <= 0 || sc.Display.Height <= 0 || sc.Display.Height%8 != 0 {
		return errors.Errorf("invalid display size %dx%d", sc.Display.Width, sc.Display.Height)
	}
	if sc.Display.FontSize <= 0 {
		return errors.Errorf("invalid font size %v", sc.Display.FontSize)
	}
	if sc.Display.ScrollInterval < 0 {
		return errors.Errorf("invalid scroll interval %v", sc.Display.ScrollInterval)
	}

	if sc.Api.Enabled && (sc.Api.Port <= 0 || sc.Api.Port > 65535) {
		return errors.Errorf("invalid api port %d", sc.Api.Port)
	}
	if sc.Mqtt != nil {
		if sc.Mqtt.Broker == "" {
			return errors.New("mqtt section without broker")
		}
		if sc.Mqtt.Topic == "" {
			return errors.New("mqtt section without topic")
		}
	}
	return nil
}

// PressConfig returns the timing loop configuration.
func (sc *ServerConfig) PressConfig() (press.Config, error) {
	policy, err := press.ParsePolicy(sc.Press.Policy)
	if err != nil {
		return press.Config{}, err
	}
	pressConfig := press.Config{
		Threshold:    sc.Press.Threshold,
		PollInterval: sc.Press.PollInterval,
		Policy:       policy,
	}
	if err = pressConfig.Validate(); err != nil {
		return press.Config{}, err
	}
	return pressConfig, nil
}
