// Package registry holds process-wide single instances keyed by name. Each
// instance is built lazily by the factory registered for its name.
package registry

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds the instance for a name.
type Factory func() any

// Registry maps names to factories and the instances they produced.
type Registry struct {
	mu        sync.Mutex
	factories map[string]Factory
	instances map[string]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		instances: make(map[string]any),
	}
}

// Register sets the factory for name. An instance already built for name is kept.
func (r *Registry) Register(name string, factory Factory) {
	if factory == nil {
		panic("registry factory required")
	}
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Get returns the instance for name, building it on first use.
func (r *Registry) Get(name string) (any, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances[name]; ok {
		return inst, nil
	}
	factory, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("registry: %q not registered", name)
	}
	inst := factory()
	r.instances[name] = inst
	return inst, nil
}

// Lookup returns the instance for name without building it.
func (r *Registry) Lookup(name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Resolve is Get with a type assertion.
func Resolve[T any](r *Registry, name string) (T, error) {
	var zero T
	inst, err := r.Get(name)
	if err != nil {
		return zero, err
	}
	typed, ok := inst.(T)
	if !ok {
		return zero, fmt.Errorf("registry: %q is %T, not %T", name, inst, zero)
	}
	return typed, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Built returns the names that currently have an instance, sorted.
func (r *Registry) Built() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.instances))
	for name := range r.instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every instance; factories stay registered.
func (r *Registry) Reset() {
	r.mu.Lock()
	r.instances = make(map[string]any)
	r.mu.Unlock()
}
