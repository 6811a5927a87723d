// Copyright 2024 Northern.tech AS
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

package app

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/NorthernTechHQ/iris-agent/model"
)

// deviceIDLength is the length of derived identities; short enough to fit
// the on-device status bar next to the status text.
const deviceIDLength = 6

// GetOrCreateDeviceID loads the persisted device identity. On first boot it
// derives a short identifier and persists it; a persistence failure is
// logged and the volatile identity is used for this boot cycle.
func (e *engine) GetOrCreateDeviceID(ctx context.Context) (string, error) {
	l := log.FromContext(ctx)

	deviceID, err := e.store.GetDeviceID(ctx)
	if err != nil {
		return "", err
	}
	if deviceID != "" {
		// possibly manually provisioned
		device := model.Device{ID: deviceID}
		if err := device.Validate(); err != nil {
			return "", errors.Wrap(err, "invalid persisted device ID")
		}
		return deviceID, nil
	}

	deviceID, err = deriveDeviceID()
	if err != nil {
		return "", err
	}
	if err := e.store.SetDeviceID(ctx, deviceID); err != nil {
		l.Warnf("failed to persist device ID %s: %s", deviceID, err.Error())
	} else {
		l.Infof("provisioned device ID %s", deviceID)
	}
	return deviceID, nil
}

// deriveDeviceID builds a short identifier. Appliance builds seed it from a
// hardware-unique value; random UUIDs keep freshly flashed units unique.
func deriveDeviceID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", errors.Wrap(err, "failed to derive device ID")
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return strings.ToUpper(hex[:deviceIDLength]), nil
}
