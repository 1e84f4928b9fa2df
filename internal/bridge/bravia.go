package bridge

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"tvremote/internal/logger"
)

const irccPath = "/sony/IRCC"

const irccEnvelope = `<?xml version="1.0" encoding="utf-8"?>
<s:Envelope xmlns:s="http://schemas.xmlsoap.org/soap/envelope/" s:encodingStyle="http://schemas.xmlsoap.org/soap/encoding/">
  <s:Body>
    <u:X_SendIRCC xmlns:u="urn:schemas-sony-com:service:IRCC:1">
      <IRCCCode>%s</IRCCCode>
    </u:X_SendIRCC>
  </s:Body>
</s:Envelope>`

// Bravia is a bridge to a Sony Bravia television using IP control with a
// pre-shared key
type Bravia struct {
	httpClient *http.Client
	host       string
	credential string
	power      *powerOffTracker
	logger     zerolog.Logger
}

// BraviaOption configures a Bravia bridge
type BraviaOption func(*Bravia)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(client *http.Client) BraviaOption {
	return func(b *Bravia) {
		b.httpClient = client
	}
}

// WithClock replaces the time source used for the power-off window
func WithClock(now func() time.Time) BraviaOption {
	return func(b *Bravia) {
		b.power = newPowerOffTracker(now)
	}
}

// NewBravia creates a bridge for the television at host (host or host:port)
func NewBravia(host, credential string, opts ...BraviaOption) *Bravia {
	b := &Bravia{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		host:       host,
		credential: credential,
		power:      newPowerOffTracker(nil),
		logger:     logger.ForComponent("bravia").With().Str("host", host).Logger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	return b
}

// PowerOff sends the power-off key and opens the power-off window
func (b *Bravia) PowerOff(ctx context.Context) error {
	b.power.start()
	return b.sendIRCC(ctx, "KEY_POWEROFF", irccCodes["KEY_POWEROFF"])
}

// PowerOffInProgress reports whether the power-off window is open
func (b *Bravia) PowerOffInProgress() bool {
	return b.power.inProgress()
}

// SendKeys sends each key in order. Every name is resolved before anything
// is sent.
func (b *Bravia) SendKeys(ctx context.Context, keys []string) error {
	codes := make([]IRCCCode, len(keys))
	for i, key := range keys {
		code, ok := LookupKey(key)
		if !ok {
			return fmt.Errorf("unknown key: %s", key)
		}
		codes[i] = code
	}

	for i, code := range codes {
		if err := b.sendIRCC(ctx, keys[i], code); err != nil {
			return err
		}
	}
	return nil
}

// sendIRCC posts one IRCC SOAP request
func (b *Bravia) sendIRCC(ctx context.Context, key string, code IRCCCode) error {
	url := fmt.Sprintf("http://%s%s", b.host, irccPath)
	body := fmt.Sprintf(irccEnvelope, string(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBufferString(body))
	if err != nil {
		return fmt.Errorf("failed to create IRCC request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"urn:schemas-sony-com:service:IRCC:1#X_SendIRCC"`)
	req.Header.Set("X-Auth-PSK", b.credential)

	b.logger.Debug().
		Str("key", key).
		Str("code", string(code)).
		Msg("Sending IRCC request")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send IRCC request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		b.logger.Error().
			Int("status", resp.StatusCode).
			Str("body", string(respBody)).
			Msg("IRCC request failed")
		return fmt.Errorf("IRCC request failed with status %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
