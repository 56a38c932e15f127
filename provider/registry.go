package provider

import (
	"fmt"
	"slices"
	"sync"
)

// Registry maps backend names, as written in config, to factories.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
}

func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{factories: map[string]Factory[T]{}}
}

// Register binds name to factory, replacing any earlier binding.
func (r *Registry[T]) Register(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create runs the factory bound to name with the backend's settings.
func (r *Registry[T]) Create(name string, settings map[string]any) (T, error) {
	r.mu.RLock()
	factory := r.factories[name]
	r.mu.RUnlock()
	if factory == nil {
		var zero T
		return zero, fmt.Errorf("unknown backend %q, registered: %v", name, r.Names())
	}
	return factory(settings)
}

// Names returns the registered backend names, sorted.
func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var names []string
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
