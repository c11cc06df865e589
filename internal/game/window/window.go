// Package window models the time ranges inside an animation clip during
// which combat behavior is enabled, and the subscription plumbing used to
// deliver their begin and end signals.
package window

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/motioncombat/internal/game/geom"
)

// Category classifies a window.
type Category int

const (
	CategoryNone Category = iota
	CategoryHitbox
	CategoryCombo
	CategoryParry
	CategoryDefense
	CategoryAttackStart
	CategoryCustom
)

var categoryNames = []string{"none", "hitbox", "combo", "parry", "defense", "attack_start", "custom"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("unknown(%d)", int(c))
	}
	return categoryNames[c]
}

// Dispatched reports whether the combat core reacts to windows of this category.
func (c Category) Dispatched() bool {
	switch c {
	case CategoryHitbox, CategoryCombo, CategoryParry, CategoryDefense:
		return true
	}
	return false
}

// ParseCategory converts a case-insensitive name to a Category.
func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, n := range categoryNames {
		if n == s {
			return Category(i), nil
		}
	}
	return CategoryNone, fmt.Errorf("window: unknown category %q", s)
}

// UnmarshalYAML decodes a Category from its name.
func (c *Category) UnmarshalYAML(n *yaml.Node) error {
	parsed, err := ParseCategory(n.Value)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Hitbox describes the collision volume active during a hitbox window.
type Hitbox struct {
	Socket string    `yaml:"socket"`
	Radius float64   `yaml:"radius"`
	Offset geom.Vec3 `yaml:"offset"`
	Damage float64   `yaml:"damage"`
}

// Window is one annotated time range in a clip.
//
// Invariant: End >= Start.
type Window struct {
	ID       string        `yaml:"id"`
	Category Category      `yaml:"category"`
	Label    string        `yaml:"label"`
	Start    time.Duration `yaml:"start"`
	End      time.Duration `yaml:"end"`
	Hitbox   *Hitbox       `yaml:"hitbox"`
	Tag      string        `yaml:"tag"`
}

// Length returns End - Start.
func (w *Window) Length() time.Duration { return w.End - w.Start }

// Contains reports whether t lies in [Start, End).
func (w *Window) Contains(t time.Duration) bool { return t >= w.Start && t < w.End }

// Clip is a named animation clip with sections and annotated windows.
type Clip struct {
	Name     string                   `yaml:"name"`
	Length   time.Duration            `yaml:"length"`
	Sections map[string]time.Duration `yaml:"sections"`
	Windows  []*Window                `yaml:"windows"`
}

// SectionStart returns the start offset of a named section. The empty name
// and unknown names start at 0.
func (c *Clip) SectionStart(section string) time.Duration {
	if section == "" {
		return 0
	}
	return c.Sections[section]
}

// Validate checks clip and window invariants.
//
// Postcondition: nil return guarantees a non-empty name, positive length,
// unique window IDs, and every window inside [0, Length].
func (c *Clip) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("window.Clip: name must not be empty")
	}
	if c.Length <= 0 {
		return fmt.Errorf("window.Clip %q: length must be positive", c.Name)
	}
	for s, at := range c.Sections {
		if at < 0 || at > c.Length {
			return fmt.Errorf("window.Clip %q: section %q at %s outside clip", c.Name, s, at)
		}
	}
	ids := make(map[string]struct{}, len(c.Windows))
	for _, w := range c.Windows {
		if w.ID == "" {
			return fmt.Errorf("window.Clip %q: window has empty id", c.Name)
		}
		if _, dup := ids[w.ID]; dup {
			return fmt.Errorf("window.Clip %q: duplicate window id %q", c.Name, w.ID)
		}
		ids[w.ID] = struct{}{}
		if w.Start < 0 || w.End < w.Start || w.End > c.Length {
			return fmt.Errorf("window.Clip %q: window %q range [%s, %s] invalid", c.Name, w.ID, w.Start, w.End)
		}
		if w.Category == CategoryHitbox && w.Hitbox == nil {
			return fmt.Errorf("window.Clip %q: hitbox window %q missing hitbox", c.Name, w.ID)
		}
	}
	return nil
}
