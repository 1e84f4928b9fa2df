package action

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"tvremote/internal/logger"
	"tvremote/internal/platform"
)

// Webhook turns a device on by calling an HTTP endpoint, for example a smart
// plug or an automation server
type Webhook struct {
	URL     string
	Method  string
	Headers map[string]string

	httpClient *http.Client
	logger     zerolog.Logger
}

type webhookPayload struct {
	Event    string `json:"event"`
	Context  string `json:"context_id"`
	UserID   string `json:"user_id,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

// NewWebhook creates a webhook action. method defaults to POST.
func NewWebhook(url, method string, headers map[string]string) *Webhook {
	if method == "" {
		method = http.MethodPost
	}
	return &Webhook{
		URL:     url,
		Method:  method,
		Headers: headers,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger.ForComponent("webhook_action"),
	}
}

// Run sends the request and fails on any non-2xx answer
func (w *Webhook) Run(ctx context.Context, callCtx platform.Context) error {
	payload, err := json.Marshal(webhookPayload{
		Event:    "turn_on",
		Context:  callCtx.ID,
		UserID:   callCtx.UserID,
		ParentID: callCtx.ParentID,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, w.Method, w.URL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.Headers {
		req.Header.Set(k, v)
	}

	w.logger.Debug().
		Str("url", w.URL).
		Str("method", w.Method).
		Str("context_id", callCtx.ID).
		Msg("Calling turn-on webhook")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook failed with status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}
