package config

import (
	"github.com/jypelle/longpress/internal/srv/press"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewServerConfigCreatesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "longpress")

	sc, err := NewServerConfig(dir, false, true)
	if err != nil {
		t.Fatalf("NewServerConfig: %v", err)
	}
	if _, err := os.Stat(sc.GetCompleteParamFilename()); err != nil {
		t.Fatalf("default param file not written: %v", err)
	}

	if sc.Button.Driver != PERIPH_DRIVER || sc.Button.Pin != "GPIO24" {
		t.Errorf("button: got %+v", sc.Button)
	}
	if sc.Display.Address != 0x3C || sc.Display.Width != 128 || sc.Display.Height != 32 {
		t.Errorf("display: got %+v", sc.Display)
	}
	if sc.Display.LongPressText != "Create ACP......" {
		t.Errorf("long press text: got %q", sc.Display.LongPressText)
	}
	if sc.Mqtt != nil {
		t.Errorf("mqtt should be disabled by default: %+v", sc.Mqtt)
	}

	pressConfig, err := sc.PressConfig()
	if err != nil {
		t.Fatalf("PressConfig: %v", err)
	}
	if pressConfig != press.DefaultConfig {
		t.Errorf("press config: got %+v, want %+v", pressConfig, press.DefaultConfig)
	}

	// The saved file loads back to the same values.
	again, err := NewServerConfig(dir, false, true)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *again.ServerParam != *sc.ServerParam {
		t.Errorf("reloaded %+v, want %+v", *again.ServerParam, *sc.ServerParam)
	}
}

func TestNewServerConfigOverlay(t *testing.T) {
	dir := t.TempDir()
	raw := `
press:
  threshold: 1500ms
  policy: fire_once_per_press
display:
  address: 0x3d
  height: 64
mqtt:
  broker: tcp://broker:1883
  topic: home/button
`
	if err := os.WriteFile(filepath.Join(dir, paramFilename), []byte(raw), 0600); err != nil {
		t.Fatal(err)
	}

	sc, err := NewServerConfig(dir, true, false)
	if err != nil {
		t.Fatalf("NewServerConfig: %v", err)
	}
	if sc.Press.Threshold != 1500*time.Millisecond {
		t.Errorf("threshold: got %v", sc.Press.Threshold)
	}
	if sc.Press.PollInterval != 250*time.Millisecond {
		t.Errorf("poll interval should keep its default, got %v", sc.Press.PollInterval)
	}
	if sc.Display.Address != 0x3D || sc.Display.Height != 64 || sc.Display.Width != 128 {
		t.Errorf("display: got %+v", sc.Display)
	}
	if sc.Mqtt == nil || sc.Mqtt.Broker != "tcp://broker:1883" || sc.Mqtt.Topic != "home/button" {
		t.Errorf("mqtt: got %+v", sc.Mqtt)
	}

	pressConfig, err := sc.PressConfig()
	if err != nil {
		t.Fatalf("PressConfig: %v", err)
	}
	if pressConfig.Policy != press.FIRE_ONCE_PER_PRESS {
		t.Errorf("policy: got %s", pressConfig.Policy)
	}
}

func TestNewServerConfigInvalid(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr string
	}{
		{"bad yaml", "press: [", "unable to interpret param file"},
		{"bad duration", "press:\n  threshold: soon\n", "unable to interpret param file"},
		{"zero threshold", "press:\n  threshold: 0s\n", "threshold must be positive"},
		{"unknown policy", "press:\n  policy: sometimes\n", "unknown press policy"},
		{"unknown driver", "button:\n  driver: sysfs\n", "unknown button driver"},
		{"display height", "display:\n  height: 30\n", "invalid display size"},
		{"api port", "api:\n  enabled: true\n  port: 0\n", "invalid api port"},
		{"mqtt broker", "mqtt:\n  topic: t\n", "mqtt section without broker"},
		{"mqtt topic", "mqtt:\n  broker: tcp://b:1883\n", "mqtt section without topic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			if err := os.WriteFile(filepath.Join(dir, paramFilename), []byte(tt.raw), 0600); err != nil {
				t.Fatal(err)
			}
			_, err := NewServerConfig(dir, false, false)
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}
