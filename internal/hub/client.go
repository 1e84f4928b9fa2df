// Copyright 2025 Arion Yau
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"tvremote/internal/logger"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
)

// Caller runs remote service calls, either in process or against a hub
type Caller interface {
	Call(ctx context.Context, service remote.Service, req ServiceRequest) (*ServiceResponse, error)
	Entities(ctx context.Context) ([]platform.EntityInfo, error)
}

// LocalCaller runs service calls on an in-process entry manager
type LocalCaller struct {
	Manager *EntryManager
	UserID  string
}

// Call runs the service call on the entry manager
func (l *LocalCaller) Call(ctx context.Context, service remote.Service, req ServiceRequest) (*ServiceResponse, error) {
	return l.Manager.CallServiceWithNonce(ctx, req.Nonce, remote.ServiceCall{
		Service:    service,
		EntityID:   req.EntityID,
		Command:    req.Command,
		NumRepeats: req.NumRepeats,
		Context:    platform.NewContext(l.UserID),
	}), nil
}

// Entities lists the entry manager's entities
func (l *LocalCaller) Entities(ctx context.Context) ([]platform.EntityInfo, error) {
	return l.Manager.Entities(), nil
}

// Client talks to a running hub over its HTTP API. Service calls carry a
// nonce so a retried request is answered from the hub's cache instead of
// pressing the key twice.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retries    int
	logger     zerolog.Logger
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithToken sets the bearer token sent with every request
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithRetries sets how many times a failed request is retried
func WithRetries(n int) ClientOption {
	return func(c *Client) {
		c.retries = n
	}
}

// WithClientHTTPClient replaces the underlying HTTP client
func WithClientHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the hub at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retries:    2,
		logger:     logger.ForComponent("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type clientResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Health checks that the hub answers
func (c *Client) Health(ctx context.Context) error {
	resp, _, err := c.do(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("hub unhealthy: %s", resp.Error)
	}
	return nil
}

// Entities lists the hub's entities
func (c *Client) Entities(ctx context.Context) ([]platform.EntityInfo, error) {
	resp, status, err := c.do(ctx, http.MethodGet, "/api/v1/entities", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("list entities failed with status %d: %s", status, resp.Error)
	}

	var entities []platform.EntityInfo
	if err := json.Unmarshal(resp.Data, &entities); err != nil {
		return nil, fmt.Errorf("failed to decode entities: %w", err)
	}
	return entities, nil
}

// Call runs a remote service on the hub. A nonce is generated when the
// request has none, and reused on every retry.
func (c *Client) Call(ctx context.Context, service remote.Service, req ServiceRequest) (*ServiceResponse, error) {
	if req.Nonce == "" {
		req.Nonce = GenerateNonce()
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			c.logger.Debug().
				Int("attempt", attempt).
				Str("nonce", req.Nonce).
				Err(lastErr).
				Msg("Retrying service call")

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		resp, status, err := c.do(ctx, http.MethodPost, "/api/v1/services/remote/"+string(service), body)
		if err != nil {
			lastErr = err
			continue
		}

		var result ServiceResponse
		if len(resp.Data) == 0 || json.Unmarshal(resp.Data, &result) != nil {
			lastErr = fmt.Errorf("service call failed with status %d: %s", status, resp.Error)
			if status >= 500 {
				continue
			}
			return nil, lastErr
		}
		return &result, nil
	}

	return nil, fmt.Errorf("service call failed after %d attempts: %w", c.retries+1, lastErr)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*clientResponse, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request to hub failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	var out clientResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("hub returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return &out, resp.StatusCode, nil
}
