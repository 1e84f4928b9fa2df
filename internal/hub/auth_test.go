package hub_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tvremote/internal/hub"
)

func TestJWTService(t *testing.T) {
	service := hub.NewJWTService("secret", "tvremote", 1)

	t.Run("round trips claims", func(t *testing.T) {
		token, err := service.GenerateToken("alice", "hub_test")
		require.NoError(t, err)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Subject)
		assert.Equal(t, "hub_test", claims.HubID)
		assert.Equal(t, "tvremote", claims.Issuer)
	})

	t.Run("rejects other issuer", func(t *testing.T) {
		token, err := hub.NewJWTService("secret", "someone-else", 1).GenerateToken("alice", "hub_test")
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		token, err := hub.NewJWTService("secret", "tvremote", -1).GenerateToken("alice", "hub_test")
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)
	})
}

func TestRequireAuth(t *testing.T) {
	service := hub.NewJWTService("secret", "tvremote", 1)

	var subject string
	handler := service.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := hub.ClaimsFromRequest(r)
		if ok {
			subject = claims.Subject
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"invalid token", "Bearer abc", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	t.Run("valid token exposes claims", func(t *testing.T) {
		token, err := service.GenerateToken("bob", "hub_test")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "bob", subject)
	})
}
