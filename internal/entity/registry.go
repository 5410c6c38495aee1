package entity

import (
	"fmt"
	"sync"
)

var (
	registry   []Spec
	registryMu sync.RWMutex

	references   = make(map[ReferenceKind]ReferenceSpec)
	referencesMu sync.RWMutex
)

// Register adds an entity spec to the registry. Registration order is
// significant: classification ties break toward the earlier registration.
// Panics if the kind is already registered.
func Register(spec Spec) {
	registryMu.Lock()
	defer registryMu.Unlock()

	for _, existing := range registry {
		if existing.Kind == spec.Kind {
			panic(fmt.Sprintf("entity kind already registered: %s", spec.Kind))
		}
	}
	registry = append(registry, spec)
}

// RegisterReference adds a referenced-kind spec.
// Panics if the kind is already registered.
func RegisterReference(spec ReferenceSpec) {
	referencesMu.Lock()
	defer referencesMu.Unlock()

	if _, exists := references[spec.Kind]; exists {
		panic(fmt.Sprintf("reference kind already registered: %s", spec.Kind))
	}
	references[spec.Kind] = spec
}

// Get returns the spec for a kind.
func Get(kind Kind) (Spec, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	for _, spec := range registry {
		if spec.Kind == kind {
			return spec, true
		}
	}
	return Spec{}, false
}

// GetReference returns the spec for a referenced kind.
func GetReference(kind ReferenceKind) (ReferenceSpec, bool) {
	referencesMu.RLock()
	defer referencesMu.RUnlock()

	spec, ok := references[kind]
	return spec, ok
}

// All returns every registered spec in registration order.
func All() []Spec {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]Spec, len(registry))
	copy(out, registry)
	return out
}

// Count returns the number of registered entity kinds.
func Count() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}
