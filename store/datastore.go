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

package store

import (
	"context"
)

// DataStore interface for the persisted device state: the device identity,
// the local version marker and the last applied control document hash.
// Getters return the empty string when the value has never been persisted,
// except GetLocalVersion which falls back to model.VersionUnknown.
//
//go:generate ../utils/mockgen.sh
type DataStore interface {
	GetDeviceID(ctx context.Context) (string, error)
	SetDeviceID(ctx context.Context, deviceID string) error
	GetLocalVersion(ctx context.Context) (string, error)
	SetLocalVersion(ctx context.Context, version string) error
	GetControlHash(ctx context.Context) (string, error)
	SetControlHash(ctx context.Context, hash string) error
	Close() error
}
