package scoring

import (
	"errors"
	"fmt"
	"sync"
)

// Built-in scorer class names.
const (
	ClassDefaultAttack  = "default-attack"
	ClassDefaultDefense = "default-defense"
)

// Factory constructs a fresh Scorer instance.
type Factory func() Scorer

// Class is a handle to a registered scorer class. A handle goes stale when
// its class is replaced or removed.
type Class struct {
	Name       string
	Generation uint64
}

type registration struct {
	class   Class
	factory Factory
}

// Registry indexes scorer factories by class name.
//
// Invariant: each name maps to at most one live generation.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]registration
	nextGen uint64
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]registration)}
}

// Register adds a new class.
//
// Precondition: name must be non-empty; f must be non-nil.
// Postcondition: returns error on name collision.
func (r *Registry) Register(name string, f Factory) (Class, error) {
	if name == "" {
		return Class{}, errors.New("scoring.Registry: class name must not be empty")
	}
	if f == nil {
		return Class{}, fmt.Errorf("scoring.Registry: class %q has nil factory", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[name]; exists {
		return Class{}, fmt.Errorf("scoring.Registry: class %q already registered", name)
	}
	return r.put(name, f), nil
}

// Replace registers f under name, superseding any existing class.
//
// Postcondition: handles to the previous generation report Valid == false.
func (r *Registry) Replace(name string, f Factory) (Class, error) {
	if name == "" || f == nil {
		return Class{}, fmt.Errorf("scoring.Registry: invalid replacement for %q", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.put(name, f), nil
}

func (r *Registry) put(name string, f Factory) Class {
	r.nextGen++
	c := Class{Name: name, Generation: r.nextGen}
	r.classes[name] = registration{class: c, factory: f}
	return c
}

// Remove deletes a class; existing handles go stale.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.classes, name)
}

// Lookup returns the current handle for name.
func (r *Registry) Lookup(name string) (Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.classes[name]
	return reg.class, ok
}

// Valid reports whether c is still the current generation of its class.
func (r *Registry) Valid(c Class) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.classes[c.Name]
	return ok && reg.class == c
}

// New instantiates a scorer for c.
//
// Postcondition: returns error if c is stale.
func (r *Registry) New(c Class) (Scorer, error) {
	r.mu.RLock()
	reg, ok := r.classes[c.Name]
	r.mu.RUnlock()
	if !ok || reg.class != c {
		return nil, fmt.Errorf("scoring.Registry: class %q (generation %d) is stale", c.Name, c.Generation)
	}
	return reg.factory(), nil
}
