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

package system

import (
	"golang.org/x/sys/unix"
)

// Rebooter forces a full device reset. A successful Reboot does not return.
//
//go:generate ../utils/mockgen.sh
type Rebooter interface {
	Reboot() error
}

type rebooter struct{}

// NewRebooter returns the hardware rebooter.
func NewRebooter() Rebooter {
	return rebooter{}
}

// Reboot syncs pending filesystem writes and restarts the device.
func (rebooter) Reboot() error {
	unix.Sync()
	return unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
}
