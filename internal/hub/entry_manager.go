package hub

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"tvremote/internal/action"
	"tvremote/internal/bridge"
	"tvremote/internal/logger"
	"tvremote/internal/platform"
	"tvremote/internal/remote"
	"tvremote/internal/tvremote"
	"tvremote/internal/wol"
)

// Response codes of failed service calls
const (
	CodeInvalidRequest = "invalid_request"
	CodeNotFound       = "not_found"
	CodeNotSupported   = "not_supported"
	CodeFailed         = "failed"
)

// ServiceResponse is the outcome of a service call as reported to clients
type ServiceResponse struct {
	Success   bool   `json:"success"`
	Service   string `json:"service"`
	EntityID  string `json:"entity_id"`
	ContextID string `json:"context_id,omitempty"`
	Code      string `json:"code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// EntryManager builds a config entry and remote entity for every configured
// television and runs service calls against them
type EntryManager struct {
	config     *Config
	registry   *platform.Registry
	entries    map[string]*tvremote.ConfigEntry
	entityIDs  map[string]string // television id -> entity id
	mutex      sync.RWMutex
	logger     zerolog.Logger
	nonceCache *NonceCache
	inflight   singleflight.Group
	testMode   bool
}

// entrySet is everything built from one configuration
type entrySet struct {
	registry  *platform.Registry
	entries   map[string]*tvremote.ConfigEntry
	entityIDs map[string]string
}

// NewEntryManager creates a new entry manager
func NewEntryManager(config *Config, testMode bool) *EntryManager {
	return &EntryManager{
		config:     config,
		registry:   platform.NewRegistry(),
		entries:    make(map[string]*tvremote.ConfigEntry),
		entityIDs:  make(map[string]string),
		logger:     logger.ForComponent("entry_manager"),
		nonceCache: NewNonceCache(50, time.Hour),
		testMode:   testMode,
	}
}

// Initialize sets up an entry for every television in the configuration
func (em *EntryManager) Initialize(ctx context.Context) error {
	em.mutex.RLock()
	config := em.config
	em.mutex.RUnlock()

	set, err := em.build(ctx, config)
	if err != nil {
		return err
	}

	em.mutex.Lock()
	em.registry = set.registry
	em.entries = set.entries
	em.entityIDs = set.entityIDs
	em.mutex.Unlock()
	return nil
}

// build sets every television of config up in a fresh registry. Nothing
// of the manager's current state is touched.
func (em *EntryManager) build(ctx context.Context, config *Config) (*entrySet, error) {
	em.logger.Info().
		Int("television_count", len(config.Televisions)).
		Bool("test_mode", em.testMode).
		Msg("Initializing televisions")

	set := &entrySet{
		registry:  platform.NewRegistry(),
		entries:   make(map[string]*tvremote.ConfigEntry),
		entityIDs: make(map[string]string),
	}

	for _, tv := range config.Televisions {
		entityID, err := em.setupTelevision(ctx, set, tv)
		if err != nil {
			em.logger.Error().
				Str("television_id", tv.ID).
				Err(err).
				Msg("Failed to set up television")
			return nil, fmt.Errorf("failed to set up television %s: %w", tv.ID, err)
		}

		em.logger.Info().
			Str("television_id", tv.ID).
			Str("entity_id", entityID).
			Str("type", tv.Type).
			Str("host", tv.Host).
			Msg("Television set up successfully")
	}

	return set, nil
}

// setupTelevision creates the bridge and entry and registers the remote
func (em *EntryManager) setupTelevision(ctx context.Context, set *entrySet, tv TelevisionConfig) (string, error) {
	b, err := em.createBridge(tv)
	if err != nil {
		return "", err
	}

	entry := platform.NewConfigEntry[tvremote.Bridge](tv.Name, tv.ID, map[string]string{
		platform.ConfHost:         tv.Host,
		platform.ConfMAC:          tv.MAC,
		platform.ConfName:         tv.Name,
		platform.ConfModel:        tv.Model,
		platform.ConfManufacturer: tv.Manufacturer,
	}, b)

	opts := []tvremote.Option{tvremote.WithWakeOnLAN(wol.NewSender(tv.Broadcast))}
	if tv.TurnOnAction != nil {
		turnOn, err := action.New(*tv.TurnOnAction, set.registry)
		if err != nil {
			return "", fmt.Errorf("invalid turn_on_action: %w", err)
		}
		opts = append(opts, tvremote.WithTurnOnAction(turnOn))
	}

	var added []platform.Entity
	collect := func(entities ...platform.Entity) {
		set.registry.AddEntities(entities...)
		added = append(added, entities...)
	}

	if err := tvremote.SetupEntry(ctx, entry, collect, opts...); err != nil {
		return "", err
	}
	if len(added) != 1 {
		return "", fmt.Errorf("expected one entity, got %d", len(added))
	}

	entityID := added[0].Base().EntityID()
	set.entries[tv.ID] = entry
	set.entityIDs[tv.ID] = entityID
	return entityID, nil
}

// createBridge creates the bridge for a television
func (em *EntryManager) createBridge(tv TelevisionConfig) (tvremote.Bridge, error) {
	if em.testMode {
		return bridge.NewSimulated(tv.Name, nil), nil
	}

	switch tv.Type {
	case BridgeBravia:
		if tv.Credential == "" {
			return nil, fmt.Errorf("credential is required for bravia television")
		}
		return bridge.NewBravia(tv.Host, tv.Credential), nil
	case BridgeSimulated:
		return bridge.NewSimulated(tv.Name, nil), nil
	default:
		return nil, fmt.Errorf("unsupported television type: %s", tv.Type)
	}
}

// Registry returns the entity registry
func (em *EntryManager) Registry() *platform.Registry {
	em.mutex.RLock()
	defer em.mutex.RUnlock()
	return em.registry
}

// EntityID returns the remote entity id of a television
func (em *EntryManager) EntityID(televisionID string) (string, error) {
	em.mutex.RLock()
	defer em.mutex.RUnlock()

	entityID, exists := em.entityIDs[televisionID]
	if !exists {
		return "", fmt.Errorf("%w: television %s", platform.ErrEntityNotFound, televisionID)
	}
	return entityID, nil
}

// Bridge returns the bridge shared by a television's entry and remote
func (em *EntryManager) Bridge(televisionID string) (tvremote.Bridge, error) {
	em.mutex.RLock()
	defer em.mutex.RUnlock()

	entry, exists := em.entries[televisionID]
	if !exists {
		return nil, fmt.Errorf("%w: television %s", platform.ErrEntityNotFound, televisionID)
	}
	return entry.RuntimeData, nil
}

// Remote returns the remote entity with the given id
func (em *EntryManager) Remote(entityID string) (remote.Entity, error) {
	entity, err := em.Registry().Get(entityID)
	if err != nil {
		return nil, err
	}
	r, ok := entity.(remote.Entity)
	if !ok {
		return nil, fmt.Errorf("entity %s is not a remote", entityID)
	}
	return r, nil
}

// Entities returns information about all registered entities
func (em *EntryManager) Entities() []platform.EntityInfo {
	entities := em.Registry().Entities()
	infos := make([]platform.EntityInfo, 0, len(entities))
	for _, e := range entities {
		infos = append(infos, e.Base().Info())
	}
	return infos
}

// CallService runs a service call and reports its outcome
func (em *EntryManager) CallService(ctx context.Context, call remote.ServiceCall) *ServiceResponse {
	if call.Context.ID == "" {
		call.Context = platform.NewContext(call.Context.UserID)
	}

	em.logger.Debug().
		Str("service", string(call.Service)).
		Str("entity_id", call.EntityID).
		Strs("command", call.Command).
		Str("context_id", call.Context.ID).
		Msg("Calling service")

	response := &ServiceResponse{
		Success:   true,
		Service:   string(call.Service),
		EntityID:  call.EntityID,
		ContextID: call.Context.ID,
	}

	if err := remote.Call(ctx, em.Registry(), call); err != nil {
		response.Success = false
		response.Code = errorCode(err)
		response.Error = err.Error()

		em.logger.Error().
			Str("service", string(call.Service)).
			Str("entity_id", call.EntityID).
			Str("code", response.Code).
			Err(err).
			Msg("Service call failed")
		return response
	}

	em.logger.Info().
		Str("service", string(call.Service)).
		Str("entity_id", call.EntityID).
		Msg("Service call completed")

	return response
}

// CallServiceWithNonce runs a service call unless a call with the same nonce
// already ran, in which case the earlier response is returned. Calls that
// arrive while the first one is still running wait for its response.
func (em *EntryManager) CallServiceWithNonce(ctx context.Context, nonce string, call remote.ServiceCall) *ServiceResponse {
	if nonce == "" {
		return em.CallService(ctx, call)
	}

	em.mutex.RLock()
	cache := em.nonceCache
	em.mutex.RUnlock()

	if cached, found := cache.CheckNonce(call.EntityID, nonce); found {
		em.logDuplicate(call.EntityID, nonce)
		return cached
	}

	if !ValidateNonce(nonce) {
		em.logger.Warn().
			Str("entity_id", call.EntityID).
			Str("nonce", nonce).
			Msg("Invalid nonce format")
		return &ServiceResponse{
			Success:  false,
			Service:  string(call.Service),
			EntityID: call.EntityID,
			Code:     CodeInvalidRequest,
			Error:    "invalid nonce format",
		}
	}

	result, _, shared := em.inflight.Do(call.EntityID+"\x00"+nonce, func() (interface{}, error) {
		// The previous flight may have stored its response after the check above
		if cached, found := cache.CheckNonce(call.EntityID, nonce); found {
			return cached, nil
		}
		response := em.CallService(ctx, call)
		cache.StoreResponse(call.EntityID, nonce, response)
		return response, nil
	})
	if shared {
		em.logDuplicate(call.EntityID, nonce)
	}
	return result.(*ServiceResponse)
}

func (em *EntryManager) logDuplicate(entityID, nonce string) {
	em.logger.Info().
		Str("entity_id", entityID).
		Str("nonce", nonce).
		Msg("Returning cached response for duplicate nonce")
}

// errorCode classifies a service call error
func errorCode(err error) string {
	switch {
	case errors.Is(err, remote.ErrInvalidCall), errors.Is(err, platform.ErrCallLoop):
		return CodeInvalidRequest
	case errors.Is(err, platform.ErrEntityNotFound):
		return CodeNotFound
	case errors.Is(err, platform.ErrNotSupported):
		return CodeNotSupported
	default:
		return CodeFailed
	}
}

// Shutdown drops every entry and entity
func (em *EntryManager) Shutdown() {
	em.mutex.Lock()
	defer em.mutex.Unlock()

	em.logger.Info().
		Int("entry_count", len(em.entries)).
		Msg("Shutting down entry manager")

	em.nonceCache.Shutdown()

	for _, entityID := range em.entityIDs {
		em.registry.Remove(entityID)
	}
	em.entries = make(map[string]*tvremote.ConfigEntry)
	em.entityIDs = make(map[string]string)
}

// Reload replaces the configuration and sets every television up again.
// When a television fails to set up the current entries stay in place.
func (em *EntryManager) Reload(ctx context.Context, newConfig *Config) error {
	em.logger.Info().Msg("Reloading entry manager with new configuration")

	set, err := em.build(ctx, newConfig)
	if err != nil {
		return err
	}

	em.mutex.Lock()
	oldCache := em.nonceCache
	em.config = newConfig
	em.registry = set.registry
	em.entries = set.entries
	em.entityIDs = set.entityIDs
	em.nonceCache = NewNonceCache(50, time.Hour)
	em.mutex.Unlock()

	oldCache.Shutdown()
	return nil
}

// GetEntryCount returns the number of set up entries
func (em *EntryManager) GetEntryCount() int {
	em.mutex.RLock()
	defer em.mutex.RUnlock()
	return len(em.entries)
}

// GetNonceStats returns nonce cache statistics
func (em *EntryManager) GetNonceStats() map[string]interface{} {
	em.mutex.RLock()
	defer em.mutex.RUnlock()
	return em.nonceCache.GetStats()
}
