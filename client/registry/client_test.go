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

package registry

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/NorthernTechHQ/iris-agent/model"
)

func TestGetManifest(t *testing.T) {
	testCases := []struct {
		Name string

		Status int
		Body   string
		Token  string

		Manifest *model.Manifest
		Err      error
	}{
		{
			Name:   "ok",
			Status: http.StatusOK,
			Body: `{"version": "1.0.1", "files": [` +
				`{"path": "release/1.0.1/main.bin", "target": "main.bin"}]}`,
			Manifest: &model.Manifest{
				Version: "1.0.1",
				Files: []model.FileEntry{{
					Path:   "release/1.0.1/main.bin",
					Target: "main.bin",
				}},
			},
		},
		{
			Name:   "ok, with auth token",
			Status: http.StatusOK,
			Token:  "secrettoken",
			Body: `{"version": "1.0.1", "files": [` +
				`{"path": "main.bin"}]}`,
			Manifest: &model.Manifest{
				Version: "1.0.1",
				Files:   []model.FileEntry{{Path: "main.bin"}},
			},
		},
		{
			Name:   "ko, not found",
			Status: http.StatusNotFound,
			Body:   "not found",
			Err:    ErrFetchFailed,
		},
		{
			Name:   "ko, malformed document",
			Status: http.StatusOK,
			Body:   `{"version": `,
			Err:    ErrParseFailed,
		},
		{
			Name:   "ko, unsafe manifest rejected",
			Status: http.StatusOK,
			Body: `{"version": "1.0.1", "files": [` +
				`{"path": "main.bin", "target": "../../etc/passwd"}]}`,
			Err: ErrParseFailed,
		},
		{
			Name:   "ko, missing version",
			Status: http.StatusOK,
			Body:   `{"files": [{"path": "main.bin"}]}`,
			Err:    ErrParseFailed,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(
				func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "/versions.json", r.URL.Path)
					if tc.Token != "" {
						assert.Equal(t, "Bearer "+tc.Token,
							r.Header.Get("Authorization"))
					}
					w.WriteHeader(tc.Status)
					_, _ = w.Write([]byte(tc.Body))
				}))
			defer srv.Close()

			client := NewClient(Config{
				ServerURL:    srv.URL,
				ManifestPath: "versions.json",
				Token:        tc.Token,
				Timeout:      time.Second,
			})

			manifest, err := client.GetManifest(context.Background())
			if tc.Err != nil {
				assert.True(t, errors.Is(err, tc.Err), err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tc.Manifest, manifest)
			}
		})
	}
}

func TestGetManifestServerDown(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	client := NewClient(Config{
		ServerURL:    srv.URL,
		ManifestPath: "versions.json",
		Timeout:      time.Second,
	})

	_, err := client.GetManifest(context.Background())
	assert.True(t, errors.Is(err, ErrFetchFailed), err)
}

func TestDownloadFile(t *testing.T) {
	// larger than the copy buffer to exercise chunked copying
	payload := bytes.Repeat([]byte("firmware"), 1024)

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/release/1.0.1/main.bin", r.URL.Path)
			assert.Equal(t, "application/octet-stream",
				r.Header.Get("Accept"))
			_, _ = w.Write(payload)
		}))
	defer srv.Close()

	client := NewClient(Config{
		ServerURL: srv.URL + "/",
		Timeout:   time.Second,
		ChunkSize: 512,
	})

	var buf bytes.Buffer
	err := client.DownloadFile(
		context.Background(), "/release/1.0.1/main.bin", &buf)
	assert.NoError(t, err)
	assert.Equal(t, payload, buf.Bytes())
}

func TestDownloadFileNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	client := NewClient(Config{
		ServerURL: srv.URL,
		Timeout:   time.Second,
	})

	var buf bytes.Buffer
	err := client.DownloadFile(context.Background(), "missing.bin", &buf)
	assert.True(t, errors.Is(err, ErrDownloadFailed), err)
	assert.Zero(t, buf.Len())
}
