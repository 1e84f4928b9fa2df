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

package bridge_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tvremote/internal/bridge"
	"tvremote/internal/tvremote"
)

var (
	_ tvremote.Bridge = (*bridge.Bravia)(nil)
	_ tvremote.Bridge = (*bridge.Simulated)(nil)
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// irccServer records the IRCC codes it receives
func irccServer(t *testing.T, status int) (*httptest.Server, *[]string) {
	t.Helper()
	var mu sync.Mutex
	codes := []string{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sony/IRCC", r.URL.Path)
		assert.Equal(t, "text/xml; charset=utf-8", r.Header.Get("Content-Type"))
		assert.Equal(t, `"urn:schemas-sony-com:service:IRCC:1#X_SendIRCC"`, r.Header.Get("SOAPAction"))
		assert.Equal(t, "test-psk", r.Header.Get("X-Auth-PSK"))

		body, _ := io.ReadAll(r.Body)
		start := strings.Index(string(body), "<IRCCCode>") + len("<IRCCCode>")
		end := strings.Index(string(body), "</IRCCCode>")

		mu.Lock()
		codes = append(codes, string(body)[start:end])
		mu.Unlock()

		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte("Authentication failed"))
		}
	}))
	t.Cleanup(server.Close)

	return server, &codes
}

func hostOf(server *httptest.Server) string {
	return strings.TrimPrefix(server.URL, "http://")
}

func TestBravia_SendKeys(t *testing.T) {
	t.Run("sends one request per key in order", func(t *testing.T) {
		server, codes := irccServer(t, http.StatusOK)
		b := bridge.NewBravia(hostOf(server), "test-psk")

		require.NoError(t, b.SendKeys(context.Background(), []string{"KEY_VOLUP", "mute", "back"}))

		volUp, _ := bridge.LookupKey("KEY_VOLUP")
		mute, _ := bridge.LookupKey("KEY_MUTE")
		ret, _ := bridge.LookupKey("KEY_RETURN")
		assert.Equal(t, []string{string(volUp), string(mute), string(ret)}, *codes)
	})

	t.Run("rejects unknown keys before sending anything", func(t *testing.T) {
		server, codes := irccServer(t, http.StatusOK)
		b := bridge.NewBravia(hostOf(server), "test-psk")

		err := b.SendKeys(context.Background(), []string{"KEY_HOME", "KEY_SELFDESTRUCT"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown key: KEY_SELFDESTRUCT")
		assert.Empty(t, *codes)
	})

	t.Run("reports HTTP failures", func(t *testing.T) {
		server, _ := irccServer(t, http.StatusForbidden)
		b := bridge.NewBravia(hostOf(server), "test-psk")

		err := b.SendKeys(context.Background(), []string{"KEY_HOME"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 403")
		assert.Contains(t, err.Error(), "Authentication failed")
	})

	t.Run("reports connection failures", func(t *testing.T) {
		b := bridge.NewBravia("127.0.0.1:1", "test-psk",
			bridge.WithHTTPClient(&http.Client{Timeout: time.Second}))

		err := b.SendKeys(context.Background(), []string{"KEY_HOME"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to send IRCC request")
	})
}

func TestBravia_PowerOff(t *testing.T) {
	t.Run("sends the power-off code and opens the window", func(t *testing.T) {
		server, codes := irccServer(t, http.StatusOK)
		clock := &fakeClock{now: time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)}
		b := bridge.NewBravia(hostOf(server), "test-psk", bridge.WithClock(clock.Now))

		assert.False(t, b.PowerOffInProgress())
		require.NoError(t, b.PowerOff(context.Background()))

		off, _ := bridge.LookupKey("KEY_POWEROFF")
		assert.Equal(t, []string{string(off)}, *codes)
		assert.True(t, b.PowerOffInProgress())

		clock.Advance(bridge.PowerOffWindow - time.Second)
		assert.True(t, b.PowerOffInProgress())

		clock.Advance(2 * time.Second)
		assert.False(t, b.PowerOffInProgress())
	})
}

func TestLookupKey(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"KEY_VOLUP", "KEY_VOLUP"},
		{"volup", "KEY_VOLUP"},
		{" key_hdmi1 ", "KEY_HDMI1"},
		{"ok", "KEY_ENTER"},
		{"input", "KEY_SOURCE"},
		{"power-off", "KEY_POWER_OFF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, bridge.NormalizeKey(tt.name))
		})
	}

	_, ok := bridge.LookupKey("KEY_POWER_OFF")
	assert.False(t, ok)
	_, ok = bridge.LookupKey("poweroff")
	assert.True(t, ok)
	assert.Contains(t, bridge.Keys(), "KEY_MUTE")
}

func TestSimulated(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 20, 0, 0, 0, time.UTC)}
	s := bridge.NewSimulated("Living Room TV", clock.Now)

	require.NoError(t, s.SendKeys(context.Background(), []string{"KEY_UP", "KEY_DOWN"}))
	assert.Equal(t, []string{"KEY_UP", "KEY_DOWN"}, s.Sent())

	require.NoError(t, s.PowerOff(context.Background()))
	assert.Equal(t, 1, s.PowerOffs())
	assert.True(t, s.PowerOffInProgress())

	clock.Advance(bridge.PowerOffWindow)
	assert.False(t, s.PowerOffInProgress())
}
