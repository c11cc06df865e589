// Package core is the per-combatant combat component: it owns the attack
// action catalog, selects and plays attacks, drives the combo window, and
// dispatches clip window signals to hit detection and the defense component.
//
// A Core is frame-synchronous and must only be used from the goroutine that
// ticks its combatant.
package core

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/combo"
	"github.com/cory-johannsen/motioncombat/internal/game/eventbus"
	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
	"github.com/cory-johannsen/motioncombat/internal/game/selector"
	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// Deps are the collaborators a Core is wired to.
type Deps struct {
	Owner     combatant.Actor
	Animator  Animator
	Windows   window.Source
	Targeting Targeting
	// Hits may be nil; hitbox windows are then ignored.
	Hits HitDetector
	// Bus may be nil; events are then not published.
	Bus     *eventbus.Bus
	Scorers *scoring.Registry
	Logger  *zap.Logger
}

// Core is the attack side of a combatant.
//
// Invariant: at most one current entry; the combo allowed list is non-empty
// only while the combo window is open. Window-owned state (combo, hit
// detection, parry and defense windows) never outlives the clip that opened it.
type Core struct {
	owner     combatant.Actor
	animator  Animator
	targeting Targeting
	hits      HitDetector
	bus       *eventbus.Bus
	scorers   *scoring.Registry
	settings  Settings
	logger    *zap.Logger

	catalog   *Catalog
	pool      *selector.Pool
	chooser   *selector.Chooser
	activeKey string

	binder     *window.Binder
	combo      combo.Machine
	hitboxOpen bool
	current    action.Entry
	hasCurrent bool

	defense *Defense
}

// New builds a Core for d.Owner over catalog. When catalog is non-empty the
// first inserted set is activated; activation errors are logged, not returned.
//
// Precondition: d.Owner, d.Animator, d.Windows, d.Scorers, and d.Logger must be non-nil.
func New(d Deps, catalog *Catalog, s Settings) *Core {
	if catalog == nil {
		catalog = &Catalog{sets: map[string]ActionSet{}}
	}
	c := &Core{
		owner:     d.Owner,
		animator:  d.Animator,
		targeting: d.Targeting,
		hits:      d.Hits,
		bus:       d.Bus,
		scorers:   d.Scorers,
		settings:  s,
		logger:    d.Logger.With(zap.String("combatant", d.Owner.ID())),
		catalog:   catalog,
		pool:      selector.NewPool(d.Scorers, d.Logger),
	}
	c.binder = window.NewBinder(d.Windows, c)
	if first, ok := catalog.First(); ok {
		_ = c.ActivateSet(first)
	}
	return c
}

// Owner returns the combatant this core belongs to.
func (c *Core) Owner() combatant.Actor { return c.owner }

// Bus returns the event bus, which may be nil.
func (c *Core) Bus() *eventbus.Bus { return c.bus }

// Settings returns the core settings.
func (c *Core) Settings() Settings { return c.settings }

// Catalog returns the attack catalog.
func (c *Core) Catalog() *Catalog { return c.catalog }

// ActivateSet makes the set stored under key the active attack set.
//
// Postcondition: on error the previously active set stays in effect and the
// error is logged once at Warn; on success the active chooser's working list
// holds a copy of every row of the set's table.
func (c *Core) ActivateSet(key string) error {
	err := c.activate(key)
	if err != nil {
		c.logger.Warn("activating attack set", zap.String("set", key), zap.Error(err))
	}
	return err
}

func (c *Core) activate(key string) error {
	set, err := c.catalog.resolve(key, action.VariantAttack)
	if err != nil {
		return err
	}
	class, ok := c.scorers.Lookup(set.ScorerClass)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScorer, set.ScorerClass)
	}
	ch, err := c.pool.Acquire(class)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownScorer, err)
	}
	ch.SetEntries(set.Table.Rows())
	c.chooser = ch
	c.activeKey = key
	c.logger.Debug("attack set activated",
		zap.String("set", key),
		zap.String("scorer", class.Name),
		zap.Int("rows", set.Table.Len()),
	)
	return nil
}

// ActiveKey returns the key of the active attack set, or "" when none is active.
func (c *Core) ActiveKey() string { return c.activeKey }

// ActiveTable returns the active set's table.
func (c *Core) ActiveTable() (*action.Table, bool) {
	if c.activeKey == "" {
		return nil, false
	}
	s, ok := c.catalog.Get(c.activeKey)
	if !ok || s.Table == nil {
		return nil, false
	}
	return s.Table, true
}

// Chooser returns the active attack chooser, or nil when no set is active.
func (c *Core) Chooser() *selector.Chooser { return c.chooser }

// Current returns the most recently performed entry.
func (c *Core) Current() (action.Entry, bool) {
	if !c.hasCurrent {
		return action.Entry{}, false
	}
	return c.current.Clone(), true
}

// Busy reports whether the animator is playing any clip, including hit
// reactions started outside the core.
func (c *Core) Busy() bool {
	_, ok := c.animator.ActiveClip()
	return ok
}

// ComboState returns the combo window state.
func (c *Core) ComboState() combo.State { return c.combo.State() }

// AllowedCombo returns the names that may currently be chained into.
func (c *Core) AllowedCombo() []string { return c.combo.Allowed() }

// BoundWindows returns the number of window subscriptions held for the current clip.
func (c *Core) BoundWindows() int { return c.binder.Bound() }

// Defense returns the attached defense component, or nil.
func (c *Core) Defense() *Defense { return c.defense }

// ClosestTarget returns the nearest valid target within the configured range, or nil.
func (c *Core) ClosestTarget() combatant.Actor {
	if c.targeting == nil || !combatant.IsValid(c.owner) {
		return nil
	}
	t := c.targeting.Closest(c.owner.Transform().Location, c.settings.TargetRange)
	if !combatant.IsValid(t) {
		return nil
	}
	return t
}

func (c *Core) targets() []combatant.Actor {
	if c.targeting == nil {
		return nil
	}
	all := c.targeting.Targets()
	out := make([]combatant.Actor, 0, len(all))
	for _, t := range all {
		if combatant.IsValid(t) {
			out = append(out, t)
		}
	}
	return out
}

// SelectAttack chooses the best attack of kind from the active set without
// playing it.
//
// Postcondition: the chooser's working list is replaced by the active rows of
// kind; returns ErrSetNotFound with no active set and ErrNoCandidate when
// nothing was eligible.
func (c *Core) SelectAttack(kind action.AttackType, dir action.Direction, sit combatant.Situation) (action.Entry, error) {
	table, ok := c.ActiveTable()
	if !ok || c.chooser == nil {
		return action.Entry{}, fmt.Errorf("selecting attack: %w", ErrSetNotFound)
	}
	if !combatant.IsValid(c.owner) {
		return action.Entry{}, fmt.Errorf("selecting attack: %w", ErrNoCandidate)
	}
	rows := selector.ByAttackType(table.Rows(), kind)
	if len(rows) == 0 {
		return action.Entry{}, fmt.Errorf("selecting %s attack: %w", kind, ErrNoCandidate)
	}
	c.chooser.SetEntries(rows)
	e, ok := c.chooser.Choose(scoring.Context{
		Self:      c.owner,
		Targets:   c.targets(),
		Direction: dir,
		Situation: sit,
	})
	if !ok {
		return action.Entry{}, fmt.Errorf("selecting %s attack: %w", kind, ErrNoCandidate)
	}
	return e, nil
}

// PerformAttack selects an attack and plays it.
//
// Postcondition: on error the current entry is unchanged; selection misses
// are logged at Warn.
func (c *Core) PerformAttack(kind action.AttackType, dir action.Direction, sit combatant.Situation) (action.Entry, error) {
	e, err := c.SelectAttack(kind, dir, sit)
	if err != nil {
		c.logger.Warn("no attack chosen",
			zap.Stringer("type", kind),
			zap.Stringer("direction", dir),
			zap.Error(err),
		)
		return action.Entry{}, err
	}
	if err := c.perform(e); err != nil {
		return action.Entry{}, err
	}
	return e, nil
}

// PerformDefense asks the attached defense component for the best defense
// against attacker and plays it.
func (c *Core) PerformDefense(attacker combatant.Actor, intent action.DefenseIntent, sit combatant.Situation) (action.Entry, error) {
	if c.defense == nil {
		return action.Entry{}, fmt.Errorf("performing defense: %w", ErrSetNotFound)
	}
	e, err := c.defense.ChooseDefense(attacker, intent, sit)
	if err != nil {
		c.logger.Warn("no defense chosen", zap.Stringer("intent", intent), zap.Error(err))
		return action.Entry{}, err
	}
	if err := c.perform(e); err != nil {
		return action.Entry{}, err
	}
	return e, nil
}

// ContinueCombo chains into a follow-up allowed by the open combo window.
// Candidates are the active chooser's working rows named in the allowed
// list; targets are not considered. kind is recorded for diagnostics only.
//
// Postcondition: on success the combo window is Closed and the chosen entry
// is current; on error the current entry and working list are unchanged.
func (c *Core) ContinueCombo(kind action.AttackType, dir action.Direction, sit combatant.Situation) (action.Entry, error) {
	if !c.combo.CanContinue() {
		return action.Entry{}, ErrComboClosed
	}
	if c.chooser == nil {
		return action.Entry{}, fmt.Errorf("continuing combo: %w", ErrSetNotFound)
	}
	original := c.chooser.Entries()
	filtered := selector.ByNames(original, c.combo.Allowed())
	if len(filtered) == 0 {
		return action.Entry{}, fmt.Errorf("continuing combo: %w", ErrNoCandidate)
	}

	c.chooser.SetEntries(filtered)
	e, ok := c.chooser.Choose(scoring.Context{Self: c.owner, Direction: dir, Situation: sit})
	c.chooser.SetEntries(original)
	if !ok {
		return action.Entry{}, fmt.Errorf("continuing combo: %w", ErrNoCandidate)
	}

	if err := c.perform(e); err != nil {
		return action.Entry{}, err
	}
	c.combo.Chained()
	c.logger.Debug("combo chained", zap.String("entry", e.Name), zap.Stringer("type", kind))
	return e, nil
}

// TryContinueCombo is ContinueCombo reporting only success.
func (c *Core) TryContinueCombo(kind action.AttackType, dir action.Direction, sit combatant.Situation) bool {
	_, err := c.ContinueCombo(kind, dir, sit)
	if err != nil && !errors.Is(err, ErrComboClosed) {
		c.logger.Debug("combo continuation failed", zap.Error(err))
	}
	return err == nil
}

// perform makes e current, binds its windows, and plays its clip.
func (c *Core) perform(e action.Entry) error {
	blendIn := max(e.BlendIn, 0)
	blendOut := max(e.BlendOut, 0)
	if c.combo.IsOpen() {
		blendIn = min(blendIn, c.settings.ComboBlendCeiling)
		blendOut = min(blendOut, c.settings.ComboBlendCeiling)
	}

	if active, ok := c.animator.ActiveClip(); ok && active != e.Clip {
		c.animator.Stop(active, blendOut)
		c.closeWindows(active)
	}
	if err := c.animator.Play(e.Clip, e.Section, 1, blendIn, blendOut); err != nil {
		c.logger.Warn("playing clip", zap.String("entry", e.Name), zap.String("clip", e.Clip), zap.Error(err))
		return fmt.Errorf("playing %q: %w", e.Clip, err)
	}
	// Replaying the same clip restarts its windows from the top.
	c.closeWindows(e.Clip)

	c.current, c.hasCurrent = e.Clone(), true
	c.binder.Bind(e.Clip)

	if e.IsAttack() && c.bus != nil {
		c.bus.PublishActionStarted(c.owner, c.ClosestTarget(), e.Name)
	}
	c.logger.Debug("action started",
		zap.String("entry", e.Name),
		zap.Stringer("variant", e.Variant),
		zap.Duration("blend_in", blendIn),
		zap.Duration("blend_out", blendOut),
	)
	return nil
}

// closeWindows ends whatever windows the outgoing clip left open. Animators
// are not required to deliver end signals for a clip they stop.
func (c *Core) closeWindows(clip string) {
	if c.hitboxOpen {
		c.hitboxOpen = false
		if c.hits != nil {
			c.hits.Stop()
		}
	}
	if c.combo.IsOpen() {
		c.combo.End()
		c.logger.Debug("combo window interrupted", zap.String("clip", clip))
	}
	if c.defense != nil {
		c.defense.interrupt()
	}
}

// ReportHit publishes a HitLanded event for the current entry striking defender.
//
// Postcondition: returns false without publishing when there is no current entry.
func (c *Core) ReportHit(defender combatant.Actor, damage float64) bool {
	if !c.hasCurrent {
		return false
	}
	if c.bus != nil {
		c.bus.PublishHitLanded(c.owner, defender, c.current.Name, damage)
	}
	return true
}

// Close releases window subscriptions and pooled choosers.
func (c *Core) Close() {
	c.binder.UnbindAll()
	c.hitboxOpen = false
	c.combo.End()
	if c.hits != nil {
		c.hits.Stop()
	}
	c.pool.Clear()
	c.chooser = nil
	c.activeKey = ""
	if c.defense != nil {
		c.defense.Close()
	}
}
