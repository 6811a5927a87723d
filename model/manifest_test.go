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

func TestFileEntryTargetPath(t *testing.T) {
	testCases := []struct {
		Name string

		Entry  FileEntry
		Target string
	}{
		{
			Name:   "explicit target",
			Entry:  FileEntry{Path: "release/1.0.1/main.bin", Target: "main.bin"},
			Target: "main.bin",
		},
		{
			Name:   "nested target",
			Entry:  FileEntry{Path: "release/1.0.1/layout.json", Target: "ui/layout.json"},
			Target: "ui/layout.json",
		},
		{
			Name:   "target defaults to last path segment",
			Entry:  FileEntry{Path: "release/1.0.1/main.bin"},
			Target: "main.bin",
		},
		{
			Name:   "redundant segments cleaned",
			Entry:  FileEntry{Path: "main.bin", Target: "ui/./layout.json"},
			Target: "ui/layout.json",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			assert.Equal(t, tc.Target, tc.Entry.TargetPath())
		})
	}
}

func TestManifestValidate(t *testing.T) {
	testCases := []struct {
		Name string

		Manifest Manifest
		Err      string
	}{
		{
			Name: "ok",
			Manifest: Manifest{
				Version: "1.0.1",
				Files: []FileEntry{
					{Path: "release/1.0.1/main.bin", Target: "main.bin"},
				},
			},
		},
		{
			Name: "ok, empty file list",
			Manifest: Manifest{
				Version: "1.0.1",
			},
		},
		{
			Name: "ko, missing version",
			Manifest: Manifest{
				Files: []FileEntry{{Path: "main.bin"}},
			},
			Err: "version: cannot be blank",
		},
		{
			Name: "ko, missing path",
			Manifest: Manifest{
				Version: "1.0.1",
				Files:   []FileEntry{{Target: "main.bin"}},
			},
			Err: "path: cannot be blank",
		},
		{
			Name: "ko, absolute target",
			Manifest: Manifest{
				Version: "1.0.1",
				Files: []FileEntry{
					{Path: "main.bin", Target: "/etc/passwd"},
				},
			},
			Err: "relative path below",
		},
		{
			Name: "ko, target traverses upwards",
			Manifest: Manifest{
				Version: "1.0.1",
				Files: []FileEntry{
					{Path: "main.bin", Target: "../../etc/passwd"},
				},
			},
			Err: "relative path below",
		},
		{
			Name: "ko, disguised traversal",
			Manifest: Manifest{
				Version: "1.0.1",
				Files: []FileEntry{
					{Path: "main.bin", Target: "ui/../../passwd"},
				},
			},
			Err: "relative path below",
		},
		{
			Name: "ko, target names the firmware directory",
			Manifest: Manifest{
				Version: "1.0.1",
				Files: []FileEntry{
					{Path: "main.bin", Target: "."},
				},
			},
			Err: "relative path below",
		},
		{
			Name: "ko, disguised firmware directory target",
			Manifest: Manifest{
				Version: "1.0.1",
				Files: []FileEntry{
					{Path: "main.bin", Target: "ui/.."},
				},
			},
			Err: "relative path below",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			err := tc.Manifest.Validate()
			if tc.Err == "" {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tc.Err)
			}
		})
	}
}
