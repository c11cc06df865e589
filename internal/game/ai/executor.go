package ai

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/core"
	"github.com/cory-johannsen/motioncombat/internal/game/eventbus"
)

// ErrNoDefense is returned for parry and defend operators when the combatant
// has no defense component attached.
var ErrNoDefense = errors.New("ai: combatant has no defense component")

// Outcome records the result of executing one planned action.
type Outcome struct {
	Planned PlannedAction
	// Entry is the name of the entry that started playing, if any.
	Entry string
	Err   error
}

// Executor plans and executes HTN actions for one combatant against its core.
// It tracks the most recent attacker targeting the combatant from the event bus.
//
// Executor is frame-synchronous like the core it drives.
type Executor struct {
	core      *core.Core
	planner   *Planner
	targeting core.Targeting
	vitals    Vitals
	logger    *zap.Logger

	incoming string
	subs     []eventbus.Subscription
}

// NewExecutor wires an Executor to c and subscribes to c's event bus.
//
// Precondition: c, planner and logger must be non-nil. targeting and vitals may be nil.
func NewExecutor(c *core.Core, planner *Planner, targeting core.Targeting, vitals Vitals, logger *zap.Logger) *Executor {
	e := &Executor{
		core:      c,
		planner:   planner,
		targeting: targeting,
		vitals:    vitals,
		logger:    logger.With(zap.String("combatant", c.Owner().ID()), zap.String("domain", planner.Domain().ID)),
	}
	if bus := c.Bus(); bus != nil {
		e.subs = append(e.subs,
			bus.Subscribe(eventbus.ActionStarted, e.onActionStarted),
			bus.Subscribe(eventbus.HitLanded, e.onResolved),
			bus.Subscribe(eventbus.ParrySucceeded, e.onResolved),
			bus.Subscribe(eventbus.DefenseSucceeded, e.onResolved),
		)
	}
	return e
}

// Incoming returns the ID of the combatant whose attack is currently aimed at
// this one, or "".
func (e *Executor) Incoming() string { return e.incoming }

func (e *Executor) onActionStarted(ev eventbus.Event) {
	owner := e.core.Owner()
	if combatant.SameActor(ev.Defender, owner) && !combatant.SameActor(ev.Attacker, owner) && ev.Attacker != nil {
		e.incoming = ev.Attacker.ID()
	}
}

// onResolved clears the tracked attacker once the exchange aimed at this
// combatant has landed or been defended.
func (e *Executor) onResolved(ev eventbus.Event) {
	if combatant.SameActor(ev.Defender, e.core.Owner()) {
		e.incoming = ""
	}
}

// Disengage forgets the tracked attacker when it is id, for swings that
// ended or were interrupted without reaching this combatant.
func (e *Executor) Disengage(id string) {
	if id != "" && e.incoming == id {
		e.incoming = ""
	}
}

// SetPlanner swaps the planner, for content reloads.
//
// Precondition: p must be non-nil.
func (e *Executor) SetPlanner(p *Planner) { e.planner = p }

// Planner returns the active planner.
func (e *Executor) Planner() *Planner { return e.planner }

// State builds the current world-state snapshot.
func (e *Executor) State() *WorldState {
	return BuildCombatWorldState(e.core, e.targets(), e.vitals, e.incoming)
}

// Tick plans against the current world state and executes every planned action in order.
//
// Postcondition: one Outcome per planned action, in plan order.
func (e *Executor) Tick(sit combatant.Situation) ([]Outcome, error) {
	ws := e.State()
	plan, err := e.planner.Plan(ws)
	if err != nil {
		return nil, fmt.Errorf("ai.Executor.Tick: %w", err)
	}
	out := make([]Outcome, 0, len(plan))
	for _, pa := range plan {
		o := e.execute(pa, sit)
		if o.Err != nil {
			e.logger.Debug("planned action failed",
				zap.String("operator", pa.Operator),
				zap.String("action", pa.Action),
				zap.Error(o.Err),
			)
		} else if o.Entry != "" {
			e.logger.Debug("planned action started",
				zap.String("operator", pa.Operator),
				zap.String("entry", o.Entry),
			)
		}
		out = append(out, o)
	}
	return out, nil
}

func (e *Executor) execute(pa PlannedAction, sit combatant.Situation) Outcome {
	o := Outcome{Planned: pa}
	switch pa.Action {
	case ActionAttack:
		entry, err := e.core.PerformAttack(pa.AttackType, pa.Direction, sit)
		o.Entry, o.Err = entry.Name, err
	case ActionContinueCombo:
		entry, err := e.core.ContinueCombo(pa.AttackType, pa.Direction, sit)
		o.Entry, o.Err = entry.Name, err
	case ActionPerformDefense:
		entry, err := e.core.PerformDefense(e.actor(pa.Target), pa.Intent, sit)
		o.Entry, o.Err = entry.Name, err
	case ActionDefend:
		d := e.core.Defense()
		if d == nil {
			o.Err = ErrNoDefense
			break
		}
		o.Err = d.TryDefense()
	case ActionParry:
		d := e.core.Defense()
		if d == nil {
			o.Err = ErrNoDefense
			break
		}
		o.Err = d.TryParry()
	case ActionPass:
	default:
		o.Err = fmt.Errorf("ai: unknown action %q", pa.Action)
	}
	if o.Err != nil {
		o.Entry = ""
	}
	return o
}

func (e *Executor) targets() []combatant.Actor {
	if e.targeting == nil {
		return nil
	}
	return e.targeting.Targets()
}

// actor returns the valid target with id, or nil.
func (e *Executor) actor(id string) combatant.Actor {
	if id == "" {
		return nil
	}
	for _, t := range e.targets() {
		if combatant.IsValid(t) && t.ID() == id {
			return t
		}
	}
	return nil
}

// Close unsubscribes from the event bus.
func (e *Executor) Close() {
	if bus := e.core.Bus(); bus != nil {
		for _, s := range e.subs {
			bus.Unsubscribe(s)
		}
	}
	e.subs = nil
}
