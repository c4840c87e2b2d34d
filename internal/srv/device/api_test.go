package device

import (
	"encoding/json"
	"errors"
	"github.com/jypelle/longpress/apimodel"
	"github.com/jypelle/longpress/internal/srv/config"
	"github.com/jypelle/longpress/internal/srv/event"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestApi(t *testing.T, apiKey string) (*httptest.Server, chan interface{}) {
	t.Helper()

	status := func() apimodel.PressStatus {
		return apimodel.PressStatus{Pressed: true, HeldMs: 1200, Segment: 3, Phase: "holding", Policy: "rearm_on_fire", ThresholdMs: 3000}
	}
	api := NewApi(config.ApiParam{Enabled: true, Port: 8080, ApiKey: apiKey}, status)

	received := make(chan interface{}, 8)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case ev := <-api.EventChannel():
				received <- ev.Data
				if data, ok := ev.Data.(event.ApiEventButtonData); ok && !data.Pressed {
					ev.Result <- errors.New("not in simulation mode")
				} else {
					ev.Result <- nil
				}
			case <-done:
				return
			}
		}
	}()

	server := httptest.NewServer(api.Handler())
	t.Cleanup(func() {
		server.Close()
		close(done)
	})
	return server, received
}

func do(t *testing.T, method, url, apiKey string) (*http.Response, apimodel.ErrorMessage) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if apiKey != "" {
		req.Header.Set("x-api-key", apiKey)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var msg apimodel.ErrorMessage
	json.NewDecoder(resp.Body).Decode(&msg)
	return resp, msg
}

func TestApiIsAlive(t *testing.T) {
	server, _ := newTestApi(t, "")

	resp, msg := do(t, http.MethodGet, server.URL+"/api/is_alive", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d", resp.StatusCode)
	}
	if msg.ErrStatusCode != http.StatusOK || msg.ErrMessage != "Ok" {
		t.Errorf("body: got %+v", msg)
	}

	resp, _ = do(t, http.MethodPost, server.URL+"/api/is_alive", "")
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST is_alive: got %d", resp.StatusCode)
	}
	resp, _ = do(t, http.MethodGet, server.URL+"/api/nothing", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown route: got %d", resp.StatusCode)
	}
}

func TestApiPressStatus(t *testing.T) {
	server, _ := newTestApi(t, "")

	resp, err := http.Get(server.URL + "/api/press")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var status apimodel.PressStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !status.Pressed || status.HeldMs != 1200 || status.Segment != 3 || status.Phase != "holding" {
		t.Errorf("status: got %+v", status)
	}
	if status.LastFire != nil {
		t.Errorf("last fire: got %v", status.LastFire)
	}
}

func TestApiKey(t *testing.T) {
	server, _ := newTestApi(t, "secret")

	tests := []struct {
		key  string
		want int
	}{
		{"", http.StatusForbidden},
		{"wrong", http.StatusForbidden},
		{"secret", http.StatusOK},
	}
	for _, tt := range tests {
		resp, _ := do(t, http.MethodGet, server.URL+"/api/is_alive", tt.key)
		if resp.StatusCode != tt.want {
			t.Errorf("key %q: got %d, want %d", tt.key, resp.StatusCode, tt.want)
		}
	}
}

func TestApiEvents(t *testing.T) {
	server, received := newTestApi(t, "")

	tests := []struct {
		path       string
		wantStatus int
		wantData   interface{}
	}{
		{"/api/display/clear", http.StatusOK, event.ApiEventDisplayClearData{}},
		{"/api/button/press", http.StatusOK, event.ApiEventButtonData{Pressed: true}},
		{"/api/button/release", http.StatusForbidden, event.ApiEventButtonData{Pressed: false}},
	}

	for _, tt := range tests {
		resp, msg := do(t, http.MethodPost, server.URL+tt.path, "")
		if resp.StatusCode != tt.wantStatus {
			t.Errorf("%s: got %d, want %d", tt.path, resp.StatusCode, tt.wantStatus)
		}
		if tt.wantStatus == http.StatusForbidden && msg.ErrMessage != "not in simulation mode" {
			t.Errorf("%s: message %q", tt.path, msg.ErrMessage)
		}
		if data := <-received; data != tt.wantData {
			t.Errorf("%s: event data %#v, want %#v", tt.path, data, tt.wantData)
		}
	}
}
