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

package control

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/NorthernTechHQ/iris-agent/model"
)

// hashLength truncates the content digest; collisions only re-run an
// idempotent action, so a short digest is sufficient.
const hashLength = 16

// Client errors
var (
	ErrFetchFailed = errors.New("control: fetching control document failed")
	ErrParseFailed = errors.New("control: parsing control document failed")
)

// Client fetches the control document mapping device IDs to pending remote
// commands. The returned document carries the content digest of the raw
// body, used by the caller to de-duplicate polls.
//
//go:generate ../../utils/mockgen.sh
type Client interface {
	GetControlDocument(ctx context.Context) (*model.ControlDocument, error)
}

// Config holds the client configuration.
type Config struct {
	// ServerURL is the content host base URL.
	ServerURL string
	// ControlPath is the control document path on the server.
	ControlPath string
	// Token is the static auth token; may be empty.
	Token string
	// Timeout bounds every request.
	Timeout time.Duration
}

type client struct {
	client *http.Client
	conf   Config
}

// NewClient returns a new control channel client.
func NewClient(conf Config) *client {
	return &client{
		conf:   conf,
		client: &http.Client{Timeout: conf.Timeout},
	}
}

// GetControlDocument fetches and parses the control document.
func (c *client) GetControlDocument(
	ctx context.Context,
) (*model.ControlDocument, error) {
	url := strings.TrimSuffix(c.conf.ServerURL, "/") +
		"/" + strings.TrimPrefix(c.conf.ControlPath, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(ErrFetchFailed, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if c.conf.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.conf.Token)
	}

	rsp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(ErrFetchFailed, err.Error())
	}
	defer rsp.Body.Close()

	if rsp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrFetchFailed,
			"unexpected status %v", rsp.StatusCode)
	}

	body, err := io.ReadAll(rsp.Body)
	if err != nil {
		return nil, errors.Wrap(ErrFetchFailed, err.Error())
	}

	doc := &model.ControlDocument{}
	if err := json.Unmarshal(body, doc); err != nil {
		return nil, errors.Wrap(ErrParseFailed, err.Error())
	}
	doc.Hash = DigestOf(body)
	return doc, nil
}

// DigestOf returns the short content digest used for poll de-duplication.
func DigestOf(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])[:hashLength]
}
