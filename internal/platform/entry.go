package platform

import (
	"github.com/google/uuid"
)

// Keys of ConfigEntry.Data
const (
	ConfHost         = "host"
	ConfMAC          = "mac"
	ConfName         = "name"
	ConfModel        = "model"
	ConfManufacturer = "manufacturer"
)

// ConfigEntry is one configured integration instance. RuntimeData holds the
// live object the integration built for it, typically a connection.
type ConfigEntry[T any] struct {
	EntryID     string
	Title       string
	UniqueID    string
	Data        map[string]string
	RuntimeData T
}

// NewConfigEntry creates an entry with a fresh entry id
func NewConfigEntry[T any](title, uniqueID string, data map[string]string, runtime T) *ConfigEntry[T] {
	if data == nil {
		data = map[string]string{}
	}
	return &ConfigEntry[T]{
		EntryID:     uuid.NewString(),
		Title:       title,
		UniqueID:    uniqueID,
		Data:        data,
		RuntimeData: runtime,
	}
}

// Get returns a data value, or "" when unset
func (e *ConfigEntry[T]) Get(key string) string {
	return e.Data[key]
}
