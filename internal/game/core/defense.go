package core

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/action"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/eventbus"
	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
	"github.com/cory-johannsen/motioncombat/internal/game/selector"
	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// Defense is the defensive side of a combatant: it owns the defense
// catalog and tracks the parry and defense windows opened by the clips its
// Core plays.
//
// Invariant: the cached threat is non-nil only while the parry window is open.
type Defense struct {
	core    *Core
	catalog *Catalog
	logger  *zap.Logger

	chooser   *selector.Chooser
	activeKey string

	parryOpen   bool
	defenseOpen bool
	threat      combatant.Actor

	subs []eventbus.Subscription
}

// NewDefense attaches a defense component to core. When catalog is non-empty
// the first inserted set is activated.
//
// Precondition: core must be non-nil and not already have a defense attached.
func NewDefense(core *Core, catalog *Catalog) *Defense {
	if catalog == nil {
		catalog = &Catalog{sets: map[string]ActionSet{}}
	}
	d := &Defense{
		core:    core,
		catalog: catalog,
		logger:  core.logger.With(zap.String("component", "defense")),
	}
	core.defense = d
	if bus := core.bus; bus != nil {
		d.subs = append(d.subs,
			bus.Subscribe(eventbus.ActionStarted, d.onActionStarted),
			bus.Subscribe(eventbus.ParryWindowOpened, d.onParryWindowOpened),
			bus.Subscribe(eventbus.ParrySucceeded, d.onParrySucceeded),
			bus.Subscribe(eventbus.DefenseSucceeded, d.onDefenseSucceeded),
		)
	}
	if first, ok := catalog.First(); ok {
		_ = d.SetActiveSet(first)
	}
	return d
}

// Catalog returns the defense catalog.
func (d *Defense) Catalog() *Catalog { return d.catalog }

// SetActiveSet makes the set stored under key the active defense set. The
// previous chooser is discarded and a fresh one is built; defense choosers
// are not pooled.
//
// Postcondition: on error the previous set stays active and the error is
// logged at Warn.
func (d *Defense) SetActiveSet(key string) error {
	err := d.activate(key)
	if err != nil {
		d.logger.Warn("activating defense set", zap.String("set", key), zap.Error(err))
	}
	return err
}

func (d *Defense) activate(key string) error {
	set, err := d.catalog.resolve(key, action.VariantDefense)
	if err != nil {
		return err
	}
	class, ok := d.core.scorers.Lookup(set.ScorerClass)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownScorer, set.ScorerClass)
	}
	scorer, err := d.core.scorers.New(class)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnknownScorer, err)
	}
	if d.chooser != nil {
		d.chooser.Reset()
	}
	d.chooser = selector.NewChooser(class, scorer, d.logger)
	d.chooser.SetEntries(set.Table.Rows())
	d.activeKey = key
	return nil
}

// ActiveKey returns the key of the active defense set, or "".
func (d *Defense) ActiveKey() string { return d.activeKey }

// Chooser returns the active defense chooser, or nil.
func (d *Defense) Chooser() *selector.Chooser { return d.chooser }

// ChooseDefense picks the best defense against attacker for intent.
//
// Postcondition: the working list is refreshed from the active table before
// selection; returns ErrSetNotFound with no active set and ErrNoCandidate
// when nothing was eligible.
func (d *Defense) ChooseDefense(attacker combatant.Actor, intent action.DefenseIntent, sit combatant.Situation) (action.Entry, error) {
	set, ok := d.catalog.Get(d.activeKey)
	if !ok || d.chooser == nil || set.Table == nil {
		return action.Entry{}, fmt.Errorf("choosing defense: %w", ErrSetNotFound)
	}
	d.chooser.SetEntries(set.Table.Rows())
	e, ok := d.chooser.Choose(scoring.Context{
		Self:      d.core.owner,
		Other:     attacker,
		Intent:    intent,
		Situation: sit,
	})
	if !ok {
		return action.Entry{}, fmt.Errorf("choosing %s defense: %w", intent, ErrNoCandidate)
	}
	return e, nil
}

// IsParryWindowOpen reports whether a parry would currently be considered.
func (d *Defense) IsParryWindowOpen() bool { return d.parryOpen }

// IsDefenseWindowOpen reports whether a block would currently succeed.
func (d *Defense) IsDefenseWindowOpen() bool { return d.defenseOpen }

// Threat returns the threat cached when the parry window opened, or nil.
func (d *Defense) Threat() combatant.Actor { return d.threat }

// TryParry attempts to parry the cached threat.
//
// Postcondition: returns ErrNoParryWindow without an open window and a valid
// threat, ErrNotFacing when the facing dot does not exceed the threshold;
// on nil publishes ParrySucceeded. Never changes the cached threat.
func (d *Defense) TryParry() error {
	if !d.parryOpen || !combatant.IsValid(d.threat) {
		d.logger.Debug("parry failed: no active window or invalid threat")
		return ErrNoParryWindow
	}
	self := d.core.owner
	if !combatant.IsValid(self) {
		return ErrNoParryWindow
	}
	dot := self.Transform().FacingDot(d.threat.Transform().Location)
	if dot <= d.core.settings.FacingThreshold {
		d.logger.Debug("parry failed: not facing threat",
			zap.String("threat", d.threat.ID()),
			zap.Float64("facing", dot),
		)
		return ErrNotFacing
	}
	d.logger.Info("parry succeeded", zap.String("threat", d.threat.ID()))
	if d.core.bus != nil {
		d.core.bus.PublishParrySucceeded(self, d.threat)
	}
	return nil
}

// TryDefense attempts to block.
//
// Postcondition: returns ErrNoDefenseWindow without an open defense window;
// on nil publishes DefenseSucceeded with the cached threat, which may be nil.
func (d *Defense) TryDefense() error {
	if !d.defenseOpen {
		d.logger.Debug("block failed: no active defense window")
		return ErrNoDefenseWindow
	}
	d.logger.Info("block succeeded")
	if d.core.bus != nil {
		d.core.bus.PublishDefenseSucceeded(d.core.owner, d.threat)
	}
	return nil
}

func (d *Defense) parryWindowBegin(w *window.Window) {
	d.parryOpen = true
	d.threat = d.core.ClosestTarget()
	var threatID string
	if d.threat != nil {
		threatID = d.threat.ID()
	}
	d.logger.Debug("parry window open", zap.String("threat", threatID), zap.Duration("length", w.Length()))
	if d.core.bus != nil {
		d.core.bus.PublishParryWindowOpened(d.threat, d.core.owner, w.Length())
	}
}

func (d *Defense) parryWindowEnd() {
	d.parryOpen = false
	d.threat = nil
	d.logger.Debug("parry window closed")
}

func (d *Defense) defenseWindowBegin() {
	d.defenseOpen = true
	d.logger.Debug("defense window open")
	if d.core.bus != nil {
		d.core.bus.Publish(eventbus.Event{Kind: eventbus.DefenseWindowChanged, Defender: d.core.owner, Open: true})
	}
}

func (d *Defense) defenseWindowEnd() {
	d.defenseOpen = false
	d.logger.Debug("defense window closed")
	if d.core.bus != nil {
		d.core.bus.Publish(eventbus.Event{Kind: eventbus.DefenseWindowChanged, Defender: d.core.owner, Open: false})
	}
}

// interrupt closes the parry and defense windows of a clip that was cut off.
func (d *Defense) interrupt() {
	if d.parryOpen || d.threat != nil {
		d.parryWindowEnd()
	}
	if d.defenseOpen {
		d.defenseWindowEnd()
	}
}

func (d *Defense) onActionStarted(e eventbus.Event) {
	if combatant.SameActor(e.Attacker, d.core.owner) {
		return
	}
	d.logger.Debug("attack started nearby", zap.String("attacker", actorID(e.Attacker)), zap.String("target", actorID(e.Defender)))
}

func (d *Defense) onParryWindowOpened(e eventbus.Event) {
	if combatant.SameActor(e.Defender, d.core.owner) {
		return
	}
	d.logger.Debug("parry window opened nearby", zap.String("defender", actorID(e.Defender)), zap.Duration("length", e.Duration))
}

func (d *Defense) onParrySucceeded(e eventbus.Event) {
	switch {
	case combatant.SameActor(e.Defender, d.core.owner):
		d.logger.Info("parried", zap.String("attacker", actorID(e.Attacker)))
	case combatant.SameActor(e.Attacker, d.core.owner):
		d.logger.Info("attack was parried", zap.String("defender", actorID(e.Defender)))
	}
}

func (d *Defense) onDefenseSucceeded(e eventbus.Event) {
	if combatant.SameActor(e.Defender, d.core.owner) {
		d.logger.Info("blocked", zap.String("attacker", actorID(e.Attacker)))
	}
}

// Close unsubscribes from the event bus and drops the chooser.
func (d *Defense) Close() {
	if d.core.bus != nil {
		for _, s := range d.subs {
			d.core.bus.Unsubscribe(s)
		}
	}
	d.subs = nil
	if d.chooser != nil {
		d.chooser.Reset()
	}
	d.chooser = nil
	d.activeKey = ""
}

func actorID(a combatant.Actor) string {
	if !combatant.IsValid(a) {
		return ""
	}
	return a.ID()
}
