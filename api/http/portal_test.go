// Copyright 2025 Northern.tech AS
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gopkg.in/yaml.v3"

	dconfig "github.com/NorthernTechHQ/iris-agent/config"
	system_mocks "github.com/NorthernTechHQ/iris-agent/system/mocks"
)

// stubClock makes the post-save reboot delay a no-op.
type stubClock struct{}

func (stubClock) Now() time.Time        { return time.Time{} }
func (stubClock) Sleep(_ time.Duration) {}

func TestPortalForm(t *testing.T) {
	portal := NewPortalController(config.Config, nil)
	router := NewRouter(portal, NewStatusController(nil))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", APIURLForm, nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `name="ssid"`)
	assert.Contains(t, w.Body.String(), `name="ns_url"`)
}

func TestPortalSave(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "iris-agent.yaml")
	config.Config.Set(dconfig.SettingConfigFile, configFile)

	rebooted := make(chan struct{})
	rebooter := &system_mocks.Rebooter{}
	rebooter.On("Reboot").
		Run(func(_ mock.Arguments) { close(rebooted) }).
		Return(nil)

	portal := NewPortalController(config.Config, rebooter).
		WithClock(stubClock{})
	router := NewRouter(portal, NewStatusController(nil))

	form := url.Values{}
	form.Set("ssid", "home")
	form.Set("pwd", "hunter2")
	form.Set("ns_url", "https://cgm.example.com")
	form.Set("units", "mgdl")
	form.Set("low", "70")
	form.Set("high", "180")

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", APIURLSave+"?"+form.Encode(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Configuration saved")

	b, err := os.ReadFile(configFile)
	assert.NoError(t, err)

	var settings map[string]interface{}
	err = yaml.Unmarshal(b, &settings)
	assert.NoError(t, err)
	assert.Equal(t, "home", settings[dconfig.SettingWifiSSID])
	assert.Equal(t, "hunter2", settings[dconfig.SettingWifiPassword])
	assert.Equal(t, "https://cgm.example.com", settings["ns_url"])
	assert.Equal(t, "mgdl", settings["display_units"])

	// the save handler schedules the reboot asynchronously
	select {
	case <-rebooted:
	case <-time.After(5 * time.Second):
		t.Fatal("device was never rebooted")
	}
	rebooter.AssertExpectations(t)
}

func TestPortalSaveInvalid(t *testing.T) {
	configFile := filepath.Join(t.TempDir(), "iris-agent.yaml")
	config.Config.Set(dconfig.SettingConfigFile, configFile)

	rebooter := &system_mocks.Rebooter{}
	portal := NewPortalController(config.Config, rebooter).
		WithClock(stubClock{})
	router := NewRouter(portal, NewStatusController(nil))

	testCases := []struct {
		Name  string
		Query string
	}{
		{
			Name:  "missing ssid",
			Query: "ns_url=" + url.QueryEscape("https://cgm.example.com"),
		},
		{
			Name:  "bad server url",
			Query: "ssid=home&ns_url=" + url.QueryEscape("not a url"),
		},
		{
			Name: "unknown units",
			Query: "ssid=home&units=furlongs&ns_url=" +
				url.QueryEscape("https://cgm.example.com"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest(
				"GET", APIURLSave+"?"+tc.Query, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.NoFileExists(t, configFile)
		})
	}

	rebooter.AssertNotCalled(t, "Reboot")
}
