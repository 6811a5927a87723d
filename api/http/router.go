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

	"github.com/gin-gonic/gin"
	"github.com/mendersoftware/go-lib-micro/accesslog"
	"github.com/mendersoftware/go-lib-micro/config"

	dconfig "github.com/NorthernTechHQ/iris-agent/config"
	"github.com/NorthernTechHQ/iris-agent/store"
	"github.com/NorthernTechHQ/iris-agent/system"
)

// URLs served by the setup portal
const (
	APIURLForm   = "/"
	APIURLSave   = "/save"
	APIURLStatus = "/status"
)

// NewRouter returns the gin router of the setup portal
func NewRouter(
	portal *PortalController,
	status *StatusController,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DisableConsoleColor()

	router := gin.New()
	router.Use(accesslog.Middleware())
	router.Use(gin.Recovery())

	router.GET(APIURLForm, portal.Form)
	// The original portal submits the form with GET; keep accepting it
	// so cached copies of the form keep working across updates.
	router.GET(APIURLSave, portal.Save)
	router.POST(APIURLSave, portal.Save)
	router.GET(APIURLStatus, status.Status)

	return router
}

// RunPortal serves the setup portal until the device is configured; saving
// a configuration reboots the device, so this call does not return on real
// hardware.
func RunPortal(
	conf config.Reader,
	ds store.DataStore,
	rebooter system.Rebooter,
) error {
	portal := NewPortalController(conf, rebooter)
	status := NewStatusController(ds)

	srv := &http.Server{
		Addr:    conf.GetString(dconfig.SettingPortalListen),
		Handler: NewRouter(portal, status),
	}
	return srv.ListenAndServe()
}
