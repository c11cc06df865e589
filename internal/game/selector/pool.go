package selector

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
)

// Pool caches one Chooser per scorer class so switching back to a set with
// a previously used class reuses its chooser.
//
// Invariant: entries for stale classes are pruned before every Acquire.
type Pool struct {
	registry *scoring.Registry
	choosers map[scoring.Class]*Chooser
	logger   *zap.Logger
}

// NewPool returns an empty Pool backed by registry.
//
// Precondition: registry and logger must be non-nil.
func NewPool(registry *scoring.Registry, logger *zap.Logger) *Pool {
	return &Pool{
		registry: registry,
		choosers: make(map[scoring.Class]*Chooser),
		logger:   logger,
	}
}

// Acquire returns the cached chooser for class, creating it if necessary.
//
// Postcondition: returns error when class is stale or unknown.
func (p *Pool) Acquire(class scoring.Class) (*Chooser, error) {
	p.prune()
	if c, ok := p.choosers[class]; ok {
		return c, nil
	}
	scorer, err := p.registry.New(class)
	if err != nil {
		return nil, fmt.Errorf("acquiring chooser: %w", err)
	}
	c := NewChooser(class, scorer, p.logger)
	p.choosers[class] = c
	return c, nil
}

// Len returns the number of cached choosers, including any stale ones not yet pruned.
func (p *Pool) Len() int { return len(p.choosers) }

// Clear drops every cached chooser.
func (p *Pool) Clear() {
	for k, c := range p.choosers {
		c.Reset()
		delete(p.choosers, k)
	}
}

func (p *Pool) prune() {
	for k, c := range p.choosers {
		if !p.registry.Valid(k) {
			p.logger.Debug("pruning stale chooser",
				zap.String("scorer", k.Name),
				zap.Uint64("generation", k.Generation),
			)
			c.Reset()
			delete(p.choosers, k)
		}
	}
}
