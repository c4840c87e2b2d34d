package config

import (
	_ "embed"
	"time"
)

//go:embed param_default.yaml
var ParamDefaultFile []byte

type ServerParam struct {
	Button  ButtonParam  `yaml:"button"`
	Press   PressParam   `yaml:"press"`
	Display DisplayParam `yaml:"display"`
	Api     ApiParam     `yaml:"api"`
	Mqtt    *MqttParam   `yaml:"mqtt,omitempty"`
}

type ButtonParam struct {
	Driver string `yaml:"driver"`
	Pin    string `yaml:"pin"`
	Chip   string `yaml:"chip"`
	Offset int    `yaml:"offset"`
}

type PressParam struct {
	Threshold    time.Duration `yaml:"threshold"`
	PollInterval time.Duration `yaml:"poll_interval"`
	Policy       string        `yaml:"policy"`
}

type DisplayParam struct {
	Bus            string        `yaml:"bus"`
	Address        uint16        `yaml:"address"`
	Width          int           `yaml:"width"`
	Height         int           `yaml:"height"`
	FontPath       string        `yaml:"font_path"`
	FontSize       float64       `yaml:"font_size"`
	Contrast       byte          `yaml:"contrast"`
	StartupText    string        `yaml:"startup_text"`
	LongPressText  string        `yaml:"long_press_text"`
	ScrollInterval time.Duration `yaml:"scroll_interval"`
}

type ApiParam struct {
	Enabled bool   `yaml:"enabled"`
	Port    int64  `yaml:"port"`
	ApiKey  string `yaml:"api_key"`
}

type MqttParam struct {
	Broker   string `yaml:"broker"`
	ClientId string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}
