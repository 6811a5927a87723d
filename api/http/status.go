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
	"github.com/mendersoftware/go-lib-micro/log"

	"github.com/NorthernTechHQ/iris-agent/store"
)

// StatusController contains status-related end-points
type StatusController struct {
	store store.DataStore
}

// NewStatusController returns a new StatusController
func NewStatusController(ds store.DataStore) *StatusController {
	return &StatusController{store: ds}
}

// Status responds to GET /status
func (h StatusController) Status(c *gin.Context) {
	ctx := c.Request.Context()
	l := log.FromContext(ctx)

	deviceID, err := h.store.GetDeviceID(ctx)
	if err != nil {
		l.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}
	version, err := h.store.GetLocalVersion(ctx)
	if err != nil {
		l.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"device_id": deviceID,
		"version":   version,
	})
}
