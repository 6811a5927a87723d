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

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/NorthernTechHQ/iris-agent/model"
)

// EvaluateControl polls the control channel once. A document whose content
// hash equals the last applied one resolves to ActionNone, so a command
// that stays listed across polls fires exactly once. The new hash is
// persisted before the action is returned: a crash during the resulting
// reboot must not re-trigger the same action indefinitely.
func (e *engine) EvaluateControl(
	ctx context.Context,
	deviceID string,
) (model.Action, error) {
	l := log.FromContext(ctx)

	doc, err := e.control.GetControlDocument(ctx)
	if err != nil {
		return model.ActionNone, err
	}

	lastHash, err := e.store.GetControlHash(ctx)
	if err != nil {
		return model.ActionNone, err
	}
	if doc.Hash == lastHash {
		l.Debugf("control document unchanged (%s)", doc.Hash)
		return model.ActionNone, nil
	}

	if err := e.store.SetControlHash(ctx, doc.Hash); err != nil {
		// Acting without the marker risks a reboot loop; skip this
		// poll and let a later one retry.
		return model.ActionNone, errors.Wrap(err,
			"control: failed to persist document hash")
	}

	action := doc.ActionFor(deviceID)
	l.Infof("control document %s resolves to action %q", doc.Hash, action)
	return action, nil
}
