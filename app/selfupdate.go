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
	"os"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"
)

// ApplyStagedSelfUpdate installs a staged replacement of the agent binary,
// left at AgentPath + ".next" by a previous update run. The agent cannot
// replace its own executable while running it, so the swap happens first
// thing on boot and the caller reboots immediately afterwards so the new
// agent runs cold. Reports whether a replacement was applied.
func (e *engine) ApplyStagedSelfUpdate(ctx context.Context) (bool, error) {
	l := log.FromContext(ctx)

	agent := e.conf.AgentPath
	staged := agent + StagedAgentSuffix
	backup := agent + BackupSuffix

	if _, err := os.Stat(staged); os.IsNotExist(err) {
		return false, nil
	} else if err != nil {
		return false, errors.Wrap(ErrSelfUpdateFailed, err.Error())
	}
	l.Infof("applying staged agent %s", staged)

	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return false, errors.Wrap(ErrSelfUpdateFailed, err.Error())
	}
	if _, err := os.Stat(agent); err == nil {
		if err := os.Rename(agent, backup); err != nil {
			return false, errors.Wrap(ErrSelfUpdateFailed, err.Error())
		}
	} else if !os.IsNotExist(err) {
		return false, errors.Wrap(ErrSelfUpdateFailed, err.Error())
	}
	if err := os.Rename(staged, agent); err != nil {
		// Put the old agent back; a failed self-update must never
		// leave the device without a runnable updater.
		if errRestore := os.Rename(backup, agent); errRestore != nil {
			l.Errorf("failed to restore agent after aborted self-update: %s",
				errRestore.Error())
		}
		return false, errors.Wrap(ErrSelfUpdateFailed, err.Error())
	}
	if err := os.Chmod(agent, 0755); err != nil {
		return false, errors.Wrap(ErrSelfUpdateFailed, err.Error())
	}
	return true, nil
}
