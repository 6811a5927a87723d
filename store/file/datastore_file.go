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

package file

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/NorthernTechHQ/iris-agent/model"
)

// Persisted marker file names within the data directory.
const (
	DeviceIDFile     = "device_id"
	LocalVersionFile = "local_version"
	ControlHashFile  = "last_control_hash"

	tempSuffix = ".new"
)

// DataStore persists the device state as one flat file per value. Values
// are written with a write-temp-then-rename pattern so a marker is never
// observed in a half-written state.
type DataStore struct {
	dataDir string
}

// NewDataStore creates the data directory if needed and returns the store.
func NewDataStore(dataDir string) (*DataStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, errors.Wrap(err, "store: failed to create data directory")
	}
	return &DataStore{dataDir: dataDir}, nil
}

// GetDeviceID returns the persisted device identity, or the empty string
// when the device has not been provisioned yet.
func (ds *DataStore) GetDeviceID(ctx context.Context) (string, error) {
	return ds.readMarker(DeviceIDFile)
}

// SetDeviceID persists the device identity. It refuses to overwrite an
// existing (possibly manually assigned) identity.
func (ds *DataStore) SetDeviceID(ctx context.Context, deviceID string) error {
	existing, err := ds.readMarker(DeviceIDFile)
	if err != nil {
		return err
	}
	if existing != "" {
		return errors.New("store: device ID already provisioned")
	}
	return ds.writeMarker(DeviceIDFile, deviceID)
}

// GetLocalVersion returns the version of the last fully committed update,
// or model.VersionUnknown when no update has ever completed.
func (ds *DataStore) GetLocalVersion(ctx context.Context) (string, error) {
	version, err := ds.readMarker(LocalVersionFile)
	if err != nil {
		return model.VersionUnknown, err
	}
	if version == "" {
		return model.VersionUnknown, nil
	}
	return version, nil
}

// SetLocalVersion persists the version marker. This is the commit point of
// an update: it must only be called once every file swap has succeeded.
func (ds *DataStore) SetLocalVersion(ctx context.Context, version string) error {
	return ds.writeMarker(LocalVersionFile, version)
}

// GetControlHash returns the hash of the last applied control document.
func (ds *DataStore) GetControlHash(ctx context.Context) (string, error) {
	return ds.readMarker(ControlHashFile)
}

// SetControlHash persists the control document hash.
func (ds *DataStore) SetControlHash(ctx context.Context, hash string) error {
	return ds.writeMarker(ControlHashFile, hash)
}

// Close implements store.DataStore.
func (ds *DataStore) Close() error {
	return nil
}

func (ds *DataStore) readMarker(name string) (string, error) {
	b, err := os.ReadFile(filepath.Join(ds.dataDir, name))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "store: failed to read %s", name)
	}
	return strings.TrimSpace(string(b)), nil
}

func (ds *DataStore) writeMarker(name, value string) error {
	target := filepath.Join(ds.dataDir, name)
	temp := target + tempSuffix

	f, err := os.OpenFile(temp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "store: failed to stage %s", name)
	}
	_, err = f.WriteString(value + "\n")
	if err == nil {
		err = f.Sync()
	}
	if errClose := f.Close(); err == nil {
		err = errClose
	}
	if err != nil {
		_ = os.Remove(temp)
		return errors.Wrapf(err, "store: failed to write %s", name)
	}
	if err := os.Rename(temp, target); err != nil {
		_ = os.Remove(temp)
		return errors.Wrapf(err, "store: failed to commit %s", name)
	}
	return nil
}
