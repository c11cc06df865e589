// Package eventbus provides the per-world broadcast channel for combat
// events such as attack starts and successful parries.
package eventbus

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
)

// Kind identifies an event type.
type Kind int

const (
	ActionStarted Kind = iota
	ParryWindowOpened
	ParrySucceeded
	DefenseSucceeded
	HitLanded
	DefenseWindowChanged
)

var kindNames = []string{
	"action_started", "parry_window_opened", "parry_succeeded",
	"defense_succeeded", "hit_landed", "defense_window_changed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("unknown(%d)", int(k))
	}
	return kindNames[k]
}

// Event is a combat notification. Which fields are set depends on Kind:
//
//	ActionStarted:        Attacker, Defender (closest target, may be nil), Entry
//	ParryWindowOpened:    Attacker (threat), Defender (owner of the window), Duration
//	ParrySucceeded:       Defender, Attacker
//	DefenseSucceeded:     Defender, Attacker (may be nil)
//	HitLanded:            Attacker, Defender, Entry, Damage
//	DefenseWindowChanged: Defender, Open
type Event struct {
	Kind     Kind
	Attacker combatant.Actor
	Defender combatant.Actor
	Entry    string
	Duration time.Duration
	Damage   float64
	Open     bool
}

// Handler receives events.
type Handler func(Event)

// Subscription identifies one registered handler.
type Subscription struct {
	kind Kind
	id   uint64
}

type registration struct {
	id      uint64
	handler Handler
}

// Bus fans events out to subscribers of each Kind.
//
// Bus is safe for concurrent use. Handler lists are snapshotted before
// delivery so handlers may subscribe or unsubscribe while an event is in flight.
type Bus struct {
	world  string
	logger *zap.Logger

	mu       sync.Mutex
	nextID   uint64
	handlers map[Kind][]registration
	closed   bool
}

// New returns an empty Bus for world.
//
// Precondition: logger must be non-nil.
func New(world string, logger *zap.Logger) *Bus {
	return &Bus{
		world:    world,
		logger:   logger,
		handlers: make(map[Kind][]registration),
	}
}

// World returns the world the bus belongs to.
func (b *Bus) World() string { return b.world }

// Subscribe registers h for events of kind.
func (b *Bus) Subscribe(kind Kind, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.handlers[kind] = append(b.handlers[kind], registration{id: b.nextID, handler: h})
	return Subscription{kind: kind, id: b.nextID}
}

// Unsubscribe removes exactly the handler identified by s.
func (b *Bus) Unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	regs := b.handlers[s.kind]
	for i, r := range regs {
		if r.id == s.id {
			b.handlers[s.kind] = append(regs[:i:i], regs[i+1:]...)
			return
		}
	}
}

// Publish delivers e to every handler subscribed to e.Kind at the time of the call.
//
// Postcondition: a disposed bus drops events.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	regs := b.handlers[e.Kind]
	snapshot := make([]registration, len(regs))
	copy(snapshot, regs)
	b.mu.Unlock()

	for _, r := range snapshot {
		r.handler(e)
	}
}

// Subscribers returns the number of handlers registered for kind.
func (b *Bus) Subscribers(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.handlers[kind])
}

func (b *Bus) dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[Kind][]registration)
}

// PublishActionStarted announces that attacker began entry; target may be nil.
func (b *Bus) PublishActionStarted(attacker, target combatant.Actor, entry string) {
	b.Publish(Event{Kind: ActionStarted, Attacker: attacker, Defender: target, Entry: entry})
}

// PublishParryWindowOpened announces a parry opportunity against threat.
func (b *Bus) PublishParryWindowOpened(threat, owner combatant.Actor, d time.Duration) {
	b.Publish(Event{Kind: ParryWindowOpened, Attacker: threat, Defender: owner, Duration: d})
}

// PublishParrySucceeded announces a successful parry.
func (b *Bus) PublishParrySucceeded(defender, attacker combatant.Actor) {
	b.Publish(Event{Kind: ParrySucceeded, Defender: defender, Attacker: attacker})
}

// PublishDefenseSucceeded announces a successful block; attacker may be nil.
func (b *Bus) PublishDefenseSucceeded(defender, attacker combatant.Actor) {
	b.Publish(Event{Kind: DefenseSucceeded, Defender: defender, Attacker: attacker})
}

// PublishHitLanded announces a confirmed hit.
func (b *Bus) PublishHitLanded(attacker, defender combatant.Actor, entry string, damage float64) {
	b.Publish(Event{Kind: HitLanded, Attacker: attacker, Defender: defender, Entry: entry, Damage: damage})
}
