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
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
)

// VersionUnknown is the local version assumed when no version marker has
// been persisted yet. Version strings are compared for equality only; the
// manifest format defines no ordering between versions.
const VersionUnknown = "0.0.0"

// FileEntry describes one file carried by a firmware manifest.
type FileEntry struct {
	// Path is the object path on the update server.
	Path string `json:"path"`
	// Target is the installation path relative to the firmware
	// directory. Defaults to the last segment of Path.
	Target string `json:"target,omitempty"`
}

// TargetPath returns the effective installation path of the entry.
func (f FileEntry) TargetPath() string {
	if f.Target != "" {
		return path.Clean(f.Target)
	}
	return path.Base(f.Path)
}

var errUnsafePath = errors.New("path must be a relative path below the firmware directory")

func safeRelativePath(value interface{}) error {
	p, _ := value.(string)
	if p == "" {
		return nil
	}
	if strings.HasPrefix(p, "/") {
		return errUnsafePath
	}
	clean := path.Clean(p)
	// A path cleaning to "." names the firmware directory itself; swapping
	// it would rename the whole installation away.
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return errUnsafePath
	}
	return nil
}

// Validate validates the struct
func (f FileEntry) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Path, validation.Required,
			validation.By(safeRelativePath)),
		validation.Field(&f.Target, validation.By(safeRelativePath)),
	)
}

// Manifest is the remote description of one firmware release: a version
// string and the flat list of files that make it up. It is fetched fresh on
// every update check and never persisted as a whole.
type Manifest struct {
	Version string      `json:"version"`
	Files   []FileEntry `json:"files"`
}

// Validate validates the struct
func (m Manifest) Validate() error {
	return validation.ValidateStruct(&m,
		validation.Field(&m.Version, validation.Required),
		validation.Field(&m.Files),
	)
}
