package hub

import (
	"crypto/rand"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cachedResponse is the response remembered for a nonce
type cachedResponse struct {
	response  *ServiceResponse
	timestamp time.Time
}

// NonceCache de-duplicates retried service calls per entity. A call that
// arrives again with the same nonce gets the first call's response instead
// of running again.
type NonceCache struct {
	entityCaches map[string]*lru.Cache[string, *cachedResponse]
	mutex        sync.RWMutex
	maxSize      int
	expiration   time.Duration
	stop         chan struct{}
	stopOnce     sync.Once
}

// NewNonceCache creates a new nonce cache
func NewNonceCache(maxSize int, expiration time.Duration) *NonceCache {
	if maxSize <= 0 {
		maxSize = 50
	}
	if expiration <= 0 {
		expiration = time.Hour
	}

	nc := &NonceCache{
		entityCaches: make(map[string]*lru.Cache[string, *cachedResponse]),
		maxSize:      maxSize,
		expiration:   expiration,
		stop:         make(chan struct{}),
	}

	go nc.cleanupExpired()

	return nc
}

// GenerateNonce generates a unique nonce with timestamp and random component
func GenerateNonce() string {
	timestamp := time.Now().UnixMilli()

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		nanos := time.Now().UnixNano()
		randomBytes = []byte{
			byte(nanos >> 24),
			byte(nanos >> 16),
			byte(nanos >> 8),
			byte(nanos),
		}
	}

	// Format: timestamp_ms-random_hex
	return fmt.Sprintf("%d-%x", timestamp, randomBytes)
}

// getEntityCache gets or creates the cache for an entity
func (nc *NonceCache) getEntityCache(entityID string) *lru.Cache[string, *cachedResponse] {
	nc.mutex.Lock()
	defer nc.mutex.Unlock()

	cache, exists := nc.entityCaches[entityID]
	if !exists {
		cache, _ = lru.New[string, *cachedResponse](nc.maxSize)
		nc.entityCaches[entityID] = cache
	}

	return cache
}

// CheckNonce returns the cached response for a nonce if it is still fresh
func (nc *NonceCache) CheckNonce(entityID, nonce string) (*ServiceResponse, bool) {
	if nonce == "" {
		return nil, false
	}

	cache := nc.getEntityCache(entityID)

	if cached, found := cache.Get(nonce); found {
		if time.Since(cached.timestamp) > nc.expiration {
			cache.Remove(nonce)
			return nil, false
		}
		return cached.response, true
	}

	return nil, false
}

// StoreResponse stores a response for a nonce
func (nc *NonceCache) StoreResponse(entityID, nonce string, response *ServiceResponse) {
	if nonce == "" {
		return
	}

	nc.getEntityCache(entityID).Add(nonce, &cachedResponse{
		response:  response,
		timestamp: time.Now(),
	})
}

// ClearEntity clears all nonces for an entity
func (nc *NonceCache) ClearEntity(entityID string) {
	nc.mutex.Lock()
	defer nc.mutex.Unlock()

	if cache, exists := nc.entityCaches[entityID]; exists {
		cache.Purge()
	}
}

// GetEntityNonceCount returns the number of cached nonces for an entity
func (nc *NonceCache) GetEntityNonceCount(entityID string) int {
	nc.mutex.RLock()
	cache, exists := nc.entityCaches[entityID]
	nc.mutex.RUnlock()

	if !exists {
		return 0
	}

	return cache.Len()
}

// GetStats returns cache statistics
func (nc *NonceCache) GetStats() map[string]interface{} {
	nc.mutex.RLock()
	defer nc.mutex.RUnlock()

	totalNonces := 0
	entityStats := make(map[string]int)

	for entityID, cache := range nc.entityCaches {
		count := cache.Len()
		totalNonces += count
		entityStats[entityID] = count
	}

	return map[string]interface{}{
		"total_entities": len(nc.entityCaches),
		"total_nonces":   totalNonces,
		"max_size":       nc.maxSize,
		"expiration":     nc.expiration.String(),
		"entity_stats":   entityStats,
	}
}

// cleanupExpired runs a periodic cleanup of expired responses
func (nc *NonceCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			nc.performCleanup()
		case <-nc.stop:
			return
		}
	}
}

// performCleanup removes expired entries from all entity caches
func (nc *NonceCache) performCleanup() {
	nc.mutex.RLock()
	entityCaches := make(map[string]*lru.Cache[string, *cachedResponse], len(nc.entityCaches))
	for entityID, cache := range nc.entityCaches {
		entityCaches[entityID] = cache
	}
	nc.mutex.RUnlock()

	now := time.Now()

	for entityID, cache := range entityCaches {
		for _, nonce := range cache.Keys() {
			if value, found := cache.Peek(nonce); found && now.Sub(value.timestamp) > nc.expiration {
				cache.Remove(nonce)
			}
		}

		if cache.Len() == 0 {
			nc.mutex.Lock()
			delete(nc.entityCaches, entityID)
			nc.mutex.Unlock()
		}
	}
}

// Shutdown stops the cleanup routine and drops every cached response
func (nc *NonceCache) Shutdown() {
	nc.stopOnce.Do(func() {
		close(nc.stop)
	})

	nc.mutex.Lock()
	defer nc.mutex.Unlock()

	for _, cache := range nc.entityCaches {
		cache.Purge()
	}
	nc.entityCaches = make(map[string]*lru.Cache[string, *cachedResponse])
}

// ValidateNonce validates the format of a nonce (timestamp_ms-8hex)
func ValidateNonce(nonce string) bool {
	if len(nonce) < 13 || strings.Count(nonce, "-") != 1 {
		return false
	}

	timestampPart, randomPart, _ := strings.Cut(nonce, "-")
	if len(timestampPart) < 13 {
		return false
	}
	for _, c := range timestampPart {
		if c < '0' || c > '9' {
			return false
		}
	}

	if len(randomPart) != 8 {
		return false
	}
	for _, c := range randomPart {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}

	return true
}
