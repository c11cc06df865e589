package eventbus

import (
	"sync"

	"go.uber.org/zap"
)

// Registry holds one Bus per world. Buses are created on first use and
// disposed with their world.
type Registry struct {
	logger *zap.Logger

	mu    sync.Mutex
	buses map[string]*Bus
}

// NewRegistry returns an empty Registry.
//
// Precondition: logger must be non-nil.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{logger: logger, buses: make(map[string]*Bus)}
}

// Get returns the bus for world, creating it if needed.
//
// Postcondition: returns nil for an empty world ID; repeated calls with the
// same ID return the same Bus until Dispose.
func (r *Registry) Get(world string) *Bus {
	if world == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.buses[world]; ok {
		return b
	}
	b := New(world, r.logger)
	r.buses[world] = b
	r.logger.Info("created combat event bus", zap.String("world", world))
	return b
}

// Dispose drops world's bus and all of its subscriptions.
func (r *Registry) Dispose(world string) {
	r.mu.Lock()
	b, ok := r.buses[world]
	delete(r.buses, world)
	r.mu.Unlock()
	if ok {
		b.dispose()
		r.logger.Info("disposed combat event bus", zap.String("world", world))
	}
}

// Len returns the number of live buses.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buses)
}
