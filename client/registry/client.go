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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mendersoftware/go-lib-micro/log"
	"github.com/pkg/errors"

	"github.com/NorthernTechHQ/iris-agent/model"
)

const defaultChunkSize = 4096

// Client errors
var (
	ErrFetchFailed    = errors.New("registry: fetching manifest failed")
	ErrParseFailed    = errors.New("registry: parsing manifest failed")
	ErrDownloadFailed = errors.New("registry: file download failed")
)

// Client is the update server content API: the firmware manifest and the
// objects it references. Any error it returns is treated by the caller as
// "no update available", never as fatal.
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	GetManifest(ctx context.Context) (*model.Manifest, error)
	DownloadFile(ctx context.Context, remotePath string, w io.Writer) error
}

// Config holds the client configuration.
type Config struct {
	// ServerURL is the content host base URL.
	ServerURL string
	// ManifestPath is the manifest object path on the server.
	ManifestPath string
	// Token is the static auth token; may be empty for public manifests.
	Token string
	// Timeout bounds every request.
	Timeout time.Duration
	// ChunkSize is the download copy buffer size in bytes.
	ChunkSize int
}

type client struct {
	client *http.Client
	conf   Config
}

// NewClient returns a new registry client.
func NewClient(conf Config) *client {
	if conf.ChunkSize <= 0 {
		conf.ChunkSize = defaultChunkSize
	}
	return &client{
		conf:   conf,
		client: &http.Client{Timeout: conf.Timeout},
	}
}

// GetManifest fetches and parses the firmware manifest.
func (c *client) GetManifest(ctx context.Context) (*model.Manifest, error) {
	l := log.FromContext(ctx)

	rsp, err := c.get(ctx, c.conf.ManifestPath, "application/json")
	if err != nil {
		return nil, errors.Wrap(ErrFetchFailed, err.Error())
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrFetchFailed,
			"unexpected status %v", rsp.StatusCode)
	}

	manifest := &model.Manifest{}
	if err := json.NewDecoder(rsp.Body).Decode(manifest); err != nil {
		return nil, errors.Wrap(ErrParseFailed, err.Error())
	}
	if err := manifest.Validate(); err != nil {
		return nil, errors.Wrap(ErrParseFailed, err.Error())
	}

	l.Debugf("fetched manifest version %s with %d files",
		manifest.Version, len(manifest.Files))
	return manifest, nil
}

// DownloadFile streams the remote object into w in fixed-size chunks to
// bound peak memory on constrained hardware.
func (c *client) DownloadFile(
	ctx context.Context,
	remotePath string,
	w io.Writer,
) error {
	rsp, err := c.get(ctx, remotePath, "application/octet-stream")
	if err != nil {
		return errors.Wrap(ErrDownloadFailed, err.Error())
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return errors.Wrapf(ErrDownloadFailed,
			"%s: unexpected status %v", remotePath, rsp.StatusCode)
	}

	buf := make([]byte, c.conf.ChunkSize)
	if _, err := io.CopyBuffer(w, rsp.Body, buf); err != nil {
		return errors.Wrapf(ErrDownloadFailed, "%s: %s", remotePath, err.Error())
	}
	return nil
}

func (c *client) get(ctx context.Context, path, accept string) (*http.Response, error) {
	url := strings.TrimSuffix(c.conf.ServerURL, "/") +
		"/" + strings.TrimPrefix(path, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.conf.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.conf.Token)
	}
	return c.client.Do(req)
}
