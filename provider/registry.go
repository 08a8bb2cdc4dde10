package provider

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

// Registry maps names to provider factories.
type Registry[T Provider, D any] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T, D]
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider, D any]() *Registry[T, D] {
	return &Registry[T, D]{factories: make(map[string]Factory[T, D])}
}

// RegisterFactory registers factory under name, replacing any previous one.
func (r *Registry[T, D]) RegisterFactory(name string, factory Factory[T, D]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create builds the provider registered under name.
func (r *Registry[T, D]) Create(name string, deps D) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider %q not registered (available: %v)", name, r.List())
	}
	return factory(deps)
}

// Has reports whether name is registered.
func (r *Registry[T, D]) Has(name string) bool {
	return slices.Contains(r.List(), name)
}

// List returns the sorted names of all registered factories.
func (r *Registry[T, D]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
