// Package source holds the registry of concrete entity.SourceAdapter
// implementations, one per entity.SourceType, grounded on the teacher's
// entity.ConcertSearcher/VenuePlaceSearcher port style: narrow
// consumer-defined interfaces, one concrete implementation per kind,
// tried through a registry rather than a type switch.
package source

import (
	"fmt"

	"github.com/sienaindigoandlavender/festivals-in-morocco/internal/entity"
)

// Registry resolves a Source's adapter kind to the concrete
// entity.SourceAdapter that fetches and normalizes its records.
type Registry struct {
	adapters map[entity.SourceType]entity.SourceAdapter
}

// NewRegistry builds an empty registry; call Register for each adapter
// kind the deployment wires up.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[entity.SourceType]entity.SourceAdapter)}
}

// Register associates an adapter kind with its implementation. Intended
// to be called once per kind during di wiring.
func (r *Registry) Register(kind entity.SourceType, adapter entity.SourceAdapter) {
	r.adapters[kind] = adapter
}

// Resolve returns the adapter for a source's type.
//
// # Possible errors
//
//   - no adapter registered for the given kind.
func (r *Registry) Resolve(kind entity.SourceType) (entity.SourceAdapter, error) {
	adapter, ok := r.adapters[kind]
	if !ok {
		return nil, fmt.Errorf("no adapter registered for source type %q", kind)
	}
	return adapter, nil
}
