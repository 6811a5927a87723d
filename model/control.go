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

// Action is the remote command resolved from a control document poll.
type Action string

// Values for the control channel actions
const (
	ActionNone        = Action("none")
	ActionReboot      = Action("reboot")
	ActionForceUpdate = Action("force_update")
)

// ControlDocument maps device IDs to pending remote commands. Hash is the
// content digest of the raw fetched document; a poll acts only when the hash
// differs from the last applied one, so a command that stays listed across
// many polls fires exactly once.
type ControlDocument struct {
	RebootIDs      []string `json:"reboot_ids"`
	ForceUpdateIDs []string `json:"force_update_ids"`

	Hash string `json:"-"`
}

// ActionFor resolves the pending action for a device. Reboot takes priority
// over force-update when the device is listed in both sets.
func (d ControlDocument) ActionFor(deviceID string) Action {
	if containsID(d.RebootIDs, deviceID) {
		return ActionReboot
	}
	if containsID(d.ForceUpdateIDs, deviceID) {
		return ActionForceUpdate
	}
	return ActionNone
}

func containsID(ids []string, deviceID string) bool {
	for _, id := range ids {
		if id == deviceID {
			return true
		}
	}
	return false
}
