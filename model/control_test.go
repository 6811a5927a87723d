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

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestControlDocumentActionFor(t *testing.T) {
	testCases := []struct {
		Name string

		Document ControlDocument
		DeviceID string
		Action   Action
	}{
		{
			Name: "reboot",
			Document: ControlDocument{
				RebootIDs: []string{"A1B2C3", "D4E5F6"},
			},
			DeviceID: "A1B2C3",
			Action:   ActionReboot,
		},
		{
			Name: "force update",
			Document: ControlDocument{
				ForceUpdateIDs: []string{"A1B2C3"},
			},
			DeviceID: "A1B2C3",
			Action:   ActionForceUpdate,
		},
		{
			Name: "reboot takes priority over force update",
			Document: ControlDocument{
				RebootIDs:      []string{"A1B2C3"},
				ForceUpdateIDs: []string{"A1B2C3"},
			},
			DeviceID: "A1B2C3",
			Action:   ActionReboot,
		},
		{
			Name: "device not listed",
			Document: ControlDocument{
				RebootIDs:      []string{"D4E5F6"},
				ForceUpdateIDs: []string{"D4E5F6"},
			},
			DeviceID: "A1B2C3",
			Action:   ActionNone,
		},
		{
			Name:     "empty document",
			DeviceID: "A1B2C3",
			Action:   ActionNone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Action, tc.Document.ActionFor(tc.DeviceID))
		})
	}
}
