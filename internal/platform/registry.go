package platform

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"
)

// AddEntitiesCallback registers entities with the host
type AddEntitiesCallback func(entities ...Entity)

// Registry holds every entity known to the host, keyed by entity id
type Registry struct {
	entities map[string]Entity
	mutex    sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entities: make(map[string]Entity),
	}
}

// AddEntities assigns entity ids and stores the entities. It satisfies
// AddEntitiesCallback.
func (r *Registry) AddEntities(entities ...Entity) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for _, entity := range entities {
		base := entity.Base()
		objectID := Slugify(base.DisplayName())
		if objectID == "" {
			objectID = Slugify(base.UniqueID)
		}
		if objectID == "" {
			objectID = "unnamed"
		}

		candidate := base.Domain + "." + objectID
		for n := 2; ; n++ {
			if _, taken := r.entities[candidate]; !taken {
				break
			}
			candidate = fmt.Sprintf("%s.%s_%d", base.Domain, objectID, n)
		}

		base.entityID = candidate
		r.entities[candidate] = entity
	}
}

// Get returns an entity by id
func (r *Registry) Get(entityID string) (Entity, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entity, exists := r.entities[entityID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrEntityNotFound, entityID)
	}
	return entity, nil
}

// Remove drops an entity from the registry
func (r *Registry) Remove(entityID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.entities, entityID)
}

// Entities returns every entity sorted by entity id
func (r *Registry) Entities() []Entity {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	ids := make([]string, 0, len(r.entities))
	for id := range r.entities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	entities := make([]Entity, 0, len(ids))
	for _, id := range ids {
		entities = append(entities, r.entities[id])
	}
	return entities
}

// Len returns the number of registered entities
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.entities)
}

// Slugify lowercases s and collapses everything that is not a letter or digit
// into single underscores
func Slugify(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(r)
			continue
		}
		pending = true
	}
	return b.String()
}
