package hub_test

import (
	"testing"
	"time"

	"tvremote/internal/hub"
)

func TestNewNonceCache(t *testing.T) {
	t.Run("falls back to defaults for invalid parameters", func(t *testing.T) {
		cache := hub.NewNonceCache(0, 0)
		defer cache.Shutdown()

		entityID := "remote.living_room"
		nonce := hub.GenerateNonce()
		response := &hub.ServiceResponse{Success: true, Service: "turn_off"}

		cache.StoreResponse(entityID, nonce, response)
		retrieved, found := cache.CheckNonce(entityID, nonce)
		if !found {
			t.Fatal("Expected to find stored nonce")
		}
		if retrieved.Service != response.Service {
			t.Error("Retrieved response doesn't match stored response")
		}

		stats := cache.GetStats()
		if stats["max_size"] != 50 {
			t.Errorf("Expected default max_size 50, got %v", stats["max_size"])
		}
	})
}

func TestGenerateNonce(t *testing.T) {
	t.Run("generates unique nonces", func(t *testing.T) {
		if hub.GenerateNonce() == hub.GenerateNonce() {
			t.Error("Expected unique nonces, got identical ones")
		}
	})

	t.Run("generated nonce passes validation", func(t *testing.T) {
		nonce := hub.GenerateNonce()
		if !hub.ValidateNonce(nonce) {
			t.Errorf("Generated nonce %s failed validation", nonce)
		}
	})
}

func TestValidateNonce(t *testing.T) {
	tests := []struct {
		name     string
		nonce    string
		expected bool
	}{
		{"empty nonce", "", false},
		{"too short", "123", false},
		{"valid nonce", "1691234567890-a1b2c3d4", true},
		{"uppercase hex", "1691234567890-A1B2C3D4", true},
		{"no dash", "1691234567890a1b2c3d4", false},
		{"multiple dashes", "1691234567890-a1b2-c3d4", false},
		{"dash at start", "-1691234567890a1b2c3d4", false},
		{"non-numeric timestamp", "abc1234567890-a1b2c3d4", false},
		{"short timestamp", "123456789-a1b2c3d4", false},
		{"invalid hex", "1691234567890-xyz2c3d4", false},
		{"short hex", "1691234567890-a1b2c3", false},
		{"long hex", "1691234567890-a1b2c3d4e", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := hub.ValidateNonce(tt.nonce); result != tt.expected {
				t.Errorf("hub.ValidateNonce(%s) = %v, expected %v", tt.nonce, result, tt.expected)
			}
		})
	}
}

func TestNonceCacheBasicOperations(t *testing.T) {
	cache := hub.NewNonceCache(10, time.Hour)
	defer cache.Shutdown()

	entityID := "remote.living_room"
	nonce := "1691234567890-a1b2c3d4"
	response := &hub.ServiceResponse{Success: true, Service: "send_command", EntityID: entityID}

	t.Run("unknown nonce is not found", func(t *testing.T) {
		resp, found := cache.CheckNonce(entityID, nonce)
		if found || resp != nil {
			t.Error("Expected nonce not to be found")
		}
	})

	t.Run("stored nonce returns the same response", func(t *testing.T) {
		cache.StoreResponse(entityID, nonce, response)

		resp, found := cache.CheckNonce(entityID, nonce)
		if !found {
			t.Fatal("Expected to find stored nonce")
		}
		if resp != response {
			t.Errorf("Expected cached response %+v, got %+v", response, resp)
		}
	})

	t.Run("empty nonce is never cached", func(t *testing.T) {
		cache.StoreResponse(entityID, "", response)
		resp, found := cache.CheckNonce(entityID, "")
		if found || resp != nil {
			t.Error("Expected empty nonce to not be found")
		}
	})

	t.Run("nonces are scoped per entity", func(t *testing.T) {
		if _, found := cache.CheckNonce("remote.bedroom", nonce); found {
			t.Error("Expected nonce of another entity to not be found")
		}
	})
}

func TestNonceCacheExpiration(t *testing.T) {
	shortExpiration := 50 * time.Millisecond
	cache := hub.NewNonceCache(10, shortExpiration)
	defer cache.Shutdown()

	entityID := "remote.living_room"
	nonce := "1691234567890-a1b2c3d4"
	cache.StoreResponse(entityID, nonce, &hub.ServiceResponse{Success: true})

	if resp, found := cache.CheckNonce(entityID, nonce); !found || resp == nil {
		t.Error("Expected to find fresh nonce")
	}

	time.Sleep(shortExpiration + 10*time.Millisecond)

	if resp, found := cache.CheckNonce(entityID, nonce); found || resp != nil {
		t.Error("Expected expired nonce to not be found")
	}
}

func TestNonceCacheEntityOperations(t *testing.T) {
	cache := hub.NewNonceCache(10, time.Hour)
	defer cache.Shutdown()

	entity1 := "remote.living_room"
	entity2 := "remote.bedroom"
	response := &hub.ServiceResponse{Success: true}

	cache.StoreResponse(entity1, "1691234567890-a1b2c3d4", response)
	cache.StoreResponse(entity1, "1691234567891-a1b2c3d4", response)
	cache.StoreResponse(entity2, "1691234567890-a1b2c3d4", response)

	t.Run("entity nonce count", func(t *testing.T) {
		if count := cache.GetEntityNonceCount(entity1); count != 2 {
			t.Errorf("Expected entity1 count 2, got %d", count)
		}
		if count := cache.GetEntityNonceCount(entity2); count != 1 {
			t.Errorf("Expected entity2 count 1, got %d", count)
		}
		if count := cache.GetEntityNonceCount("remote.missing"); count != 0 {
			t.Errorf("Expected missing entity count 0, got %d", count)
		}
	})

	t.Run("clear entity", func(t *testing.T) {
		cache.ClearEntity(entity1)

		if count := cache.GetEntityNonceCount(entity1); count != 0 {
			t.Errorf("Expected cleared entity1 count 0, got %d", count)
		}
		if count := cache.GetEntityNonceCount(entity2); count != 1 {
			t.Errorf("Expected entity2 count unchanged at 1, got %d", count)
		}
	})
}

func TestNonceCacheLRUEviction(t *testing.T) {
	cache := hub.NewNonceCache(2, time.Hour)
	defer cache.Shutdown()

	entityID := "remote.living_room"
	cache.StoreResponse(entityID, "1691234567890-00000001", &hub.ServiceResponse{})
	cache.StoreResponse(entityID, "1691234567890-00000002", &hub.ServiceResponse{})
	cache.StoreResponse(entityID, "1691234567890-00000003", &hub.ServiceResponse{})

	if count := cache.GetEntityNonceCount(entityID); count != 2 {
		t.Errorf("Expected count capped at 2, got %d", count)
	}
	if _, found := cache.CheckNonce(entityID, "1691234567890-00000001"); found {
		t.Error("Expected oldest nonce to be evicted")
	}
}

func TestNonceCacheStats(t *testing.T) {
	cache := hub.NewNonceCache(10, time.Hour)
	defer cache.Shutdown()

	response := &hub.ServiceResponse{Success: true}
	cache.StoreResponse("remote.a", "nonce1", response)
	cache.StoreResponse("remote.a", "nonce2", response)
	cache.StoreResponse("remote.b", "nonce3", response)

	stats := cache.GetStats()

	if stats["total_entities"] != 2 {
		t.Errorf("Expected 2 total entities, got %v", stats["total_entities"])
	}
	if stats["total_nonces"] != 3 {
		t.Errorf("Expected 3 total nonces, got %v", stats["total_nonces"])
	}

	entityStats := stats["entity_stats"].(map[string]int)
	if entityStats["remote.a"] != 2 || entityStats["remote.b"] != 1 {
		t.Errorf("Unexpected entity stats %v", entityStats)
	}
}

func TestNonceCacheShutdown(t *testing.T) {
	cache := hub.NewNonceCache(10, time.Hour)

	entityID := "remote.living_room"
	cache.StoreResponse(entityID, "1691234567890-a1b2c3d4", &hub.ServiceResponse{Success: true})

	if cache.GetEntityNonceCount(entityID) != 1 {
		t.Error("Expected nonce to be stored before shutdown")
	}

	cache.Shutdown()
	cache.Shutdown()

	if cache.GetEntityNonceCount(entityID) != 0 {
		t.Error("Expected cache to be cleared after shutdown")
	}
}
