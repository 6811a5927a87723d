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
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	store_mocks "github.com/NorthernTechHQ/iris-agent/store/mocks"
)

func TestGetOrCreateDeviceIDExisting(t *testing.T) {
	ds := &store_mocks.DataStore{}
	ds.On("GetDeviceID", anyContext()).Return("A1B2C3", nil)

	engine := NewUpdateEngine(Config{}, ds, nil, nil, nil, nil, nil)

	deviceID, err := engine.GetOrCreateDeviceID(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, "A1B2C3", deviceID)

	ds.AssertExpectations(t)
	ds.AssertNotCalled(t, "SetDeviceID", mock.Anything, mock.Anything)
}

func TestGetOrCreateDeviceIDFirstBoot(t *testing.T) {
	ds := &store_mocks.DataStore{}
	ds.On("GetDeviceID", anyContext()).Return("", nil)
	ds.On("SetDeviceID", anyContext(), mock.AnythingOfType("string")).
		Return(nil)

	engine := NewUpdateEngine(Config{}, ds, nil, nil, nil, nil, nil)

	deviceID, err := engine.GetOrCreateDeviceID(context.Background())
	assert.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile("^[0-9A-F]{6}$"), deviceID)

	ds.AssertExpectations(t)
}

func TestGetOrCreateDeviceIDPersistFailure(t *testing.T) {
	ds := &store_mocks.DataStore{}
	ds.On("GetDeviceID", anyContext()).Return("", nil)
	ds.On("SetDeviceID", anyContext(), mock.AnythingOfType("string")).
		Return(errors.New("read-only file system"))

	engine := NewUpdateEngine(Config{}, ds, nil, nil, nil, nil, nil)

	// a volatile identity still lets this boot proceed
	deviceID, err := engine.GetOrCreateDeviceID(context.Background())
	assert.NoError(t, err)
	assert.Len(t, deviceID, 6)
}

func TestGetOrCreateDeviceIDInvalidMarker(t *testing.T) {
	ds := &store_mocks.DataStore{}
	ds.On("GetDeviceID", anyContext()).
		Return(strings.Repeat("F", 65), nil)

	engine := NewUpdateEngine(Config{}, ds, nil, nil, nil, nil, nil)

	_, err := engine.GetOrCreateDeviceID(context.Background())
	assert.Error(t, err)
}

func TestGetOrCreateDeviceIDStoreError(t *testing.T) {
	errStore := errors.New("marker unreadable")

	ds := &store_mocks.DataStore{}
	ds.On("GetDeviceID", anyContext()).Return("", errStore)

	engine := NewUpdateEngine(Config{}, ds, nil, nil, nil, nil, nil)

	_, err := engine.GetOrCreateDeviceID(context.Background())
	assert.Equal(t, errStore, err)
}
