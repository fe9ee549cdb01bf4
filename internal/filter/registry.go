package filter

import (
	"errors"
	"fmt"
	"sort"
)

// ErrFilterNotFound unknown entity type or filter name. A client error: the
// pipeline fails the whole build rather than silently skipping, so a caller
// can never believe a restriction was applied when it was not.
var ErrFilterNotFound = errors.New("filter not found")

type registryKey struct {
	entityType string
	role       Role
	name       string
}

// Registry maps (entity type, role, name) to filter specs. Populated once at
// boot; read-only afterwards, so no locking.
type Registry struct {
	specs  map[registryKey]Spec
	access map[string][]Spec // entityType -> access specs, registration order
}

func NewRegistry() *Registry {
	return &Registry{
		specs:  map[registryKey]Spec{},
		access: map[string][]Spec{},
	}
}

// Register adds a spec. Registering the same (entity, role, name) twice is a
// boot-time bug and panics.
func (r *Registry) Register(s Spec) {
	key := registryKey{entityType: s.EntityType, role: s.Role, name: s.Name}
	if _, exists := r.specs[key]; exists {
		panic(fmt.Sprintf("filter already registered: %s/%s/%s", s.EntityType, s.Role, s.Name))
	}
	r.specs[key] = s
	if s.Role == RoleAccess {
		r.access[s.EntityType] = append(r.access[s.EntityType], s)
	}
}

// Resolve looks up one spec.
func (r *Registry) Resolve(entityType string, role Role, name string) (Spec, error) {
	s, ok := r.specs[registryKey{entityType: entityType, role: role, name: name}]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s/%s/%s", ErrFilterNotFound, entityType, role, name)
	}
	return s, nil
}

// AccessSpecs returns every access filter for the entity type, in
// registration order.
func (r *Registry) AccessSpecs(entityType string) []Spec {
	return r.access[entityType]
}

// HasEntity reports whether any filter is registered for the entity type.
func (r *Registry) HasEntity(entityType string) bool {
	if len(r.access[entityType]) > 0 {
		return true
	}
	for key := range r.specs {
		if key.entityType == entityType {
			return true
		}
	}
	return false
}

// EntityTypes lists the known entity types, sorted, for diagnostics.
func (r *Registry) EntityTypes() []string {
	seen := map[string]bool{}
	for key := range r.specs {
		seen[key.entityType] = true
	}
	out := make([]string, 0, len(seen))
	for et := range seen {
		out = append(out, et)
	}
	sort.Strings(out)
	return out
}
