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
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mendersoftware/go-lib-micro/config"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	dconfig "github.com/NorthernTechHQ/iris-agent/config"
	"github.com/NorthernTechHQ/iris-agent/model"
	"github.com/NorthernTechHQ/iris-agent/system"
	"github.com/NorthernTechHQ/iris-agent/utils"
)

// rebootDelay gives the browser time to receive the confirmation page
// before the connection goes away with the device.
const rebootDelay = 2 * time.Second

const formHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Device Setup</title>
</head>
<body>
<form action="/save" method="GET">
  <h1>Iris Device Setup</h1>
  <fieldset>
    <legend>Wi-Fi</legend>
    <p><label>SSID <input type="text" name="ssid" required></label></p>
    <p><label>Password <input type="password" name="pwd"></label></p>
  </fieldset>
  <fieldset>
    <legend>Nightscout</legend>
    <p><label>URL <input type="url" name="ns_url" required></label></p>
    <p><label>API secret <input type="text" name="token"></label></p>
    <p><label>Endpoint <input type="text" name="endpoint"
       value="/api/v1/entries/sgv.json?count=2"></label></p>
  </fieldset>
  <fieldset>
    <legend>Alerts</legend>
    <p><label>Units <select name="units">
      <option value="mmol">mmol/L</option>
      <option value="mgdl">mg/dL</option>
    </select></label></p>
    <p><label>Low threshold <input type="number" name="low" value="4.0" step="0.1"></label></p>
    <p><label>High threshold <input type="number" name="high" value="11.0" step="0.1"></label></p>
    <p><label>Stale threshold (min) <input type="number" name="stale" value="7"></label></p>
  </fieldset>
  <button type="submit">Save &amp; Reboot</button>
</form>
</body>
</html>`

const savedHTML = `<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>Configuration Saved</title></head>
<body>
<h1>Configuration saved</h1>
<p>The device is rebooting to connect to your Wi-Fi.</p>
</body>
</html>`

// PortalController serves the first-boot configuration portal
type PortalController struct {
	conf     config.Reader
	rebooter system.Rebooter
	clock    utils.Clock
}

// NewPortalController returns a new PortalController
func NewPortalController(
	conf config.Reader,
	rebooter system.Rebooter,
) *PortalController {
	return &PortalController{
		conf:     conf,
		rebooter: rebooter,
		clock:    utils.RealClock{},
	}
}

// WithClock overrides the portal clock, for tests.
func (h *PortalController) WithClock(clock utils.Clock) *PortalController {
	h.clock = clock
	return h
}

// Form responds to GET /
func (h *PortalController) Form(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(formHTML))
}

// Save responds to GET/POST /save: it validates the submitted settings,
// writes the configuration file and reboots the device.
func (h *PortalController) Save(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.FromContext(ctx)

	req := model.SetupRequest{
		Units:        model.UnitsMmol,
		Endpoint:     "/api/v1/entries/sgv.json?count=2",
		LowLimit:     4.0,
		HighLimit:    11.0,
		StaleMinutes: 7,
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	configFile := h.conf.GetString(dconfig.SettingConfigFile)
	if err := writeConfigFile(configFile, req); err != nil {
		l.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	l.Infof("configuration saved to %s", configFile)

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(savedHTML))

	go func() {
		h.clock.Sleep(rebootDelay)
		if err := h.rebooter.Reboot(); err != nil {
			l.Error(errors.Wrap(err, "failed to reboot after setup"))
		}
	}()
}

// writeConfigFile persists the submitted settings as the agent
// configuration, with the usual write-temp-then-rename pattern.
func writeConfigFile(path string, req model.SetupRequest) error {
	settings := map[string]interface{}{
		dconfig.SettingWifiSSID:     req.WifiSSID,
		dconfig.SettingWifiPassword: req.WifiPassword,
		"ns_url":                    req.ServerURL,
		"ns_token":                  req.ServerToken,
		"ns_endpoint":               req.Endpoint,
		"display_units":             req.Units,
		"low_threshold":             req.LowLimit,
		"high_threshold":            req.HighLimit,
		"stale_minutes":             req.StaleMinutes,
	}
	b, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Wrap(err, "failed to encode configuration")
	}
	temp := path + ".new"
	if err := os.WriteFile(temp, b, 0600); err != nil {
		return errors.Wrap(err, "failed to stage configuration")
	}
	if err := os.Rename(temp, path); err != nil {
		_ = os.Remove(temp)
		return errors.Wrap(err, "failed to commit configuration")
	}
	return nil
}
