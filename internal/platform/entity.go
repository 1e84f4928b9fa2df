package platform

// DeviceInfo describes the physical device an entity belongs to
type DeviceInfo struct {
	Identifiers  []string `json:"identifiers"`
	Name         string   `json:"name"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Model        string   `json:"model,omitempty"`
}

// EntityBase carries the attributes every entity shares with the host.
// The entity id is assigned by the Registry when the entity is added.
type EntityBase struct {
	Domain   string
	UniqueID string

	// Name is the entity's own name. Empty means the entity is named after
	// its device.
	Name       string
	Device     DeviceInfo
	ShouldPoll bool

	entityID string
}

// Entity is anything the host can register
type Entity interface {
	Base() *EntityBase
}

// Base returns the shared entity attributes
func (e *EntityBase) Base() *EntityBase {
	return e
}

// EntityID returns the id assigned at registration, or "" before that
func (e *EntityBase) EntityID() string {
	return e.entityID
}

// DisplayName returns the name shown to users
func (e *EntityBase) DisplayName() string {
	if e.Name == "" {
		return e.Device.Name
	}
	if e.Device.Name == "" {
		return e.Name
	}
	return e.Device.Name + " " + e.Name
}

// EntityInfo is the serialisable view of a registered entity
type EntityInfo struct {
	EntityID   string     `json:"entity_id"`
	UniqueID   string     `json:"unique_id"`
	Domain     string     `json:"domain"`
	Name       string     `json:"name"`
	ShouldPoll bool       `json:"should_poll"`
	Device     DeviceInfo `json:"device"`
}

// Info snapshots the entity for listing
func (e *EntityBase) Info() EntityInfo {
	return EntityInfo{
		EntityID:   e.entityID,
		UniqueID:   e.UniqueID,
		Domain:     e.Domain,
		Name:       e.DisplayName(),
		ShouldPoll: e.ShouldPoll,
		Device:     e.Device,
	}
}
