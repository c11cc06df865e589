package core

import (
	"fmt"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
)

// ActionSet pairs a table with the scorer class used to choose from it.
type ActionSet struct {
	Key         string
	Table       *action.Table
	ScorerClass string
}

// Catalog holds action sets in insertion order.
type Catalog struct {
	keys []string
	sets map[string]ActionSet
}

// NewCatalog returns a Catalog holding sets in the given order.
//
// Postcondition: returns error on an empty or duplicate key.
func NewCatalog(sets ...ActionSet) (*Catalog, error) {
	c := &Catalog{sets: make(map[string]ActionSet, len(sets))}
	for _, s := range sets {
		if err := c.Add(s); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add appends s.
//
// Postcondition: returns error on an empty or duplicate key; c is unchanged on error.
func (c *Catalog) Add(s ActionSet) error {
	if s.Key == "" {
		return fmt.Errorf("core.Catalog: set key must not be empty")
	}
	if _, dup := c.sets[s.Key]; dup {
		return fmt.Errorf("core.Catalog: duplicate set key %q", s.Key)
	}
	c.keys = append(c.keys, s.Key)
	c.sets[s.Key] = s
	return nil
}

// Replace swaps the set stored under s.Key, or appends it when absent.
func (c *Catalog) Replace(s ActionSet) {
	if _, ok := c.sets[s.Key]; !ok {
		c.keys = append(c.keys, s.Key)
	}
	c.sets[s.Key] = s
}

// Get returns the set stored under key.
func (c *Catalog) Get(key string) (ActionSet, bool) {
	if c == nil {
		return ActionSet{}, false
	}
	s, ok := c.sets[key]
	return s, ok
}

// Keys returns set keys in insertion order.
func (c *Catalog) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// First returns the first inserted key.
func (c *Catalog) First() (string, bool) {
	if c == nil || len(c.keys) == 0 {
		return "", false
	}
	return c.keys[0], true
}

// Len returns the number of sets.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// resolve validates the set under key for variant.
func (c *Catalog) resolve(key string, variant action.Variant) (ActionSet, error) {
	s, ok := c.Get(key)
	if !ok {
		return ActionSet{}, fmt.Errorf("%w: %q", ErrSetNotFound, key)
	}
	if s.Table == nil || s.ScorerClass == "" {
		return ActionSet{}, fmt.Errorf("%w: %q is missing its table or scorer class", ErrSetMisconfigured, key)
	}
	if s.Table.Variant() != variant {
		return ActionSet{}, fmt.Errorf("%w: %q holds %s rows, want %s", ErrSetMisconfigured, key, s.Table.Variant(), variant)
	}
	return s, nil
}
