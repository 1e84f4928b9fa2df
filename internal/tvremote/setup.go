package tvremote

import (
	"context"
	"fmt"

	"tvremote/internal/platform"
)

// SetupEntry registers the remote entity of a television entry
func SetupEntry(ctx context.Context, entry *ConfigEntry, addEntities platform.AddEntitiesCallback, opts ...Option) error {
	if entry.RuntimeData == nil {
		return fmt.Errorf("config entry %s has no bridge", entry.EntryID)
	}

	addEntities(NewRemote(entry.RuntimeData, entry, opts...))
	return nil
}
