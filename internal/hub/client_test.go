package hub_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tvremote/internal/hub"
	"tvremote/internal/remote"
)

func TestClient(t *testing.T) {
	ctx := context.Background()
	api, em, cfg := newTestAPI(t, "secret")
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	token, err := hub.NewJWTService(cfg.API.JWTSecret, cfg.API.JWTIssuer, 1).GenerateToken("alice", cfg.Hub.ID)
	require.NoError(t, err)
	client := hub.NewClient(server.URL+"/", hub.WithToken(token), hub.WithRetries(0))

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, client.Health(ctx))
	})

	t.Run("entities", func(t *testing.T) {
		entities, err := client.Entities(ctx)
		require.NoError(t, err)
		require.Len(t, entities, 3)
		assert.Equal(t, "remote.living_room_tv", entities[2].EntityID)
	})

	t.Run("service call", func(t *testing.T) {
		resp, err := client.Call(ctx, remote.ServiceSendCommand, hub.ServiceRequest{
			EntityID: "remote.living_room_tv",
			Command:  []string{"KEY_NETFLIX"},
		})
		require.NoError(t, err)
		assert.True(t, resp.Success, resp.Error)
		assert.Equal(t, []string{"KEY_NETFLIX"}, simulatedBridge(t, em, "living_room").Sent())
	})

	t.Run("failed service call returns the response", func(t *testing.T) {
		resp, err := client.Call(ctx, remote.ServiceTurnOn, hub.ServiceRequest{EntityID: "remote.kitchen_tv"})
		require.NoError(t, err)
		assert.False(t, resp.Success)
		assert.Equal(t, hub.CodeNotSupported, resp.Code)
	})

	t.Run("missing token is an error", func(t *testing.T) {
		_, err := hub.NewClient(server.URL).Entities(ctx)
		assert.Error(t, err)
	})
}

func TestClientRetriesWithSameNonce(t *testing.T) {
	em := newTestManager(t)
	api := hub.NewAPIServer(testConfig(), em)

	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The first attempt runs but its answer is lost
		if attempts.Add(1) == 1 {
			api.Handler().ServeHTTP(httptest.NewRecorder(), r)
			http.Error(w, "gateway timeout", http.StatusGatewayTimeout)
			return
		}
		api.Handler().ServeHTTP(w, r)
	}))
	defer server.Close()

	client := hub.NewClient(server.URL, hub.WithRetries(1))
	resp, err := client.Call(context.Background(), remote.ServiceSendCommand, hub.ServiceRequest{
		EntityID: "remote.living_room_tv",
		Command:  []string{"KEY_POWER"},
	})
	require.NoError(t, err)
	assert.True(t, resp.Success, resp.Error)
	assert.Equal(t, int32(2), attempts.Load())
	assert.Equal(t, []string{"KEY_POWER"}, simulatedBridge(t, em, "living_room").Sent())
}
