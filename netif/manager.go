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

package netif

import (
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Manager owns the single wireless interface. The update engine treats "not
// connected" the same as a failed fetch: skip the attempt, never fatal.
//
//go:generate ../utils/mockgen.sh
type Manager interface {
	IsConnected() bool
	Connect(ctx context.Context, ssid, password string, timeout time.Duration) error
	Disconnect() error
}

type nmcliManager struct{}

// NewManager returns a Manager driving the interface through NetworkManager.
func NewManager() Manager {
	return &nmcliManager{}
}

func (m *nmcliManager) IsConnected() bool {
	out, err := exec.Command("nmcli", "-t", "-f", "STATE", "general").Output()
	if err != nil {
		return false
	}
	return strings.HasPrefix(strings.TrimSpace(string(out)), "connected")
}

func (m *nmcliManager) Connect(
	ctx context.Context,
	ssid, password string,
	timeout time.Duration,
) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"device", "wifi", "connect", ssid}
	if password != "" {
		args = append(args, "password", password)
	}
	out, err := exec.CommandContext(ctx, "nmcli", args...).CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "netif: failed to connect to %q: %s",
			ssid, strings.TrimSpace(string(out)))
	}
	return nil
}

func (m *nmcliManager) Disconnect() error {
	out, err := exec.Command("nmcli", "networking", "off").CombinedOutput()
	if err != nil {
		return errors.Wrapf(err, "netif: failed to disconnect: %s",
			strings.TrimSpace(string(out)))
	}
	return nil
}
