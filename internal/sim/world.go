package sim

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/motioncombat/internal/config"
	"github.com/cory-johannsen/motioncombat/internal/content"
	"github.com/cory-johannsen/motioncombat/internal/game/ai"
	"github.com/cory-johannsen/motioncombat/internal/game/combatant"
	"github.com/cory-johannsen/motioncombat/internal/game/core"
	"github.com/cory-johannsen/motioncombat/internal/game/eventbus"
	"github.com/cory-johannsen/motioncombat/internal/game/geom"
	"github.com/cory-johannsen/motioncombat/internal/game/reaction"
	"github.com/cory-johannsen/motioncombat/internal/game/scoring"
	"github.com/cory-johannsen/motioncombat/internal/game/window"
)

// Movement and stamina tuning for simulated fighters.
const (
	// WalkSpeed is the approach speed in units per second.
	WalkSpeed = 200.0
	// EngageDistance is the distance at which fighters stop closing in.
	EngageDistance = 150.0
	// TurnRate is the fastest a fighter turns, in degrees per second.
	TurnRate = 720.0
	// WalkFacingTolerance is how far off its opponent a fighter may face
	// and still walk forward, in degrees.
	WalkFacingTolerance = 45.0
	// AttackStaminaCost is spent each time a fighter starts an attack.
	AttackStaminaCost = 12.0
	// StaminaRegen is recovered per second.
	StaminaRegen = 20.0
)

// ErrWorldClosed is returned by operations on a closed world.
var ErrWorldClosed = errors.New("sim: world closed")

// Deps are the shared services a World is built from.
type Deps struct {
	Bundle  *content.Bundle
	Buses   *eventbus.Registry
	Scorers *scoring.Registry
	// Scripts may be nil; scripted AI preconditions are then false.
	Scripts ai.ScriptCaller
	Combat  config.CombatConfig
	Logger  *zap.Logger
}

// FighterReport is a point-in-time summary of one fighter.
type FighterReport struct {
	ID      string
	Health  float64
	Stamina float64
	Clip    string
	Entry   string
}

// Report is a point-in-time summary of a world.
type Report struct {
	World    string
	Elapsed  time.Duration
	Over     bool
	Winner   string
	Fighters []FighterReport
}

// World is one duel arena: a set of fighters sharing an event bus.
//
// Invariant: the fighter list is fixed at construction.
type World struct {
	id      string
	deps    Deps
	bus     *eventbus.Bus
	logger  *zap.Logger
	running float64

	mu       sync.Mutex
	fighters []*Fighter
	elapsed  time.Duration
	over     bool
	winner   string
	closed   bool
	subs     []eventbus.Subscription
}

// NewWorld builds a world holding one fighter per spec, each wired from its
// loadout in d.Bundle.
//
// Precondition: d.Bundle, d.Buses, d.Scorers and d.Logger must be non-nil.
// Postcondition: on error no bus remains registered for the world.
func NewWorld(d Deps, specs ...FighterSpec) (*World, error) {
	if len(specs) < 2 {
		return nil, fmt.Errorf("sim.NewWorld: need at least two fighters, got %d", len(specs))
	}
	id := uuid.NewString()
	w := &World{
		id:      id,
		deps:    d,
		bus:     d.Buses.Get(id),
		logger:  d.Logger.With(zap.String("world", id)),
		running: d.Combat.RunningSpeed,
	}
	if w.running <= 0 {
		w.running = config.DefaultCombat().RunningSpeed
	}
	seen := make(map[string]bool, len(specs))
	for _, s := range specs {
		if s.Name == "" || seen[s.Name] {
			w.teardown()
			return nil, fmt.Errorf("sim.NewWorld: fighter name %q empty or duplicated", s.Name)
		}
		seen[s.Name] = true
		f, err := w.newFighter(s)
		if err != nil {
			w.teardown()
			return nil, fmt.Errorf("sim.NewWorld: fighter %q: %w", s.Name, err)
		}
		w.fighters = append(w.fighters, f)
	}
	w.subs = append(w.subs,
		w.bus.Subscribe(eventbus.ActionStarted, w.onActionStarted),
		w.bus.Subscribe(eventbus.ParrySucceeded, w.onParrySucceeded),
		w.bus.Subscribe(eventbus.HitLanded, w.onHitLanded),
	)
	w.logger.Info("world created", zap.Int("fighters", len(w.fighters)))
	return w, nil
}

func (w *World) newFighter(s FighterSpec) (*Fighter, error) {
	b := w.deps.Bundle
	attacks, defenses, err := b.Catalogs(s.Loadout)
	if err != nil {
		return nil, err
	}
	domain := b.Domain(s.Loadout)
	if domain == nil {
		return nil, fmt.Errorf("loadout %q has no ai domain", s.Loadout)
	}
	health := s.Health
	if health <= 0 {
		health = DefaultHealth
	}
	f := &Fighter{
		id:        s.Name,
		loadout:   s.Loadout,
		pose:      s.Pose,
		health:    health,
		maxHealth: health,
		stamina:   MaxStamina,
	}
	logger := w.logger.With(zap.String("fighter", s.Name))
	timeline := window.NewTimeline(b.Clips)
	f.animator = NewAnimator(timeline, logger)
	f.hits = newHitDetector(f)
	f.hits.ended = w.onSwingEnded
	f.core = core.New(core.Deps{
		Owner:     f,
		Animator:  f.animator,
		Windows:   timeline,
		Targeting: &arenaView{world: w, self: f},
		Hits:      f.hits,
		Bus:       w.bus,
		Scorers:   w.deps.Scorers,
		Logger:    w.deps.Logger,
	}, attacks, core.SettingsFromConfig(w.deps.Combat))
	f.defense = core.NewDefense(f.core, defenses)
	f.responder = reaction.NewResponder(f, f.animator, b.Reaction(s.Loadout), w.deps.Combat.ReactionBlendOut, logger)
	planner := ai.NewPlanner(domain, w.deps.Scripts, domain.ID)
	f.exec = ai.NewExecutor(f.core, planner, &arenaView{world: w, self: f}, w, logger)
	return f, nil
}

// ID returns the world's unique identifier.
func (w *World) ID() string { return w.id }

// Bus returns the world's event bus.
func (w *World) Bus() *eventbus.Bus { return w.bus }

// Fighter returns the fighter named id.
func (w *World) Fighter(id string) (*Fighter, bool) {
	for _, f := range w.fighters {
		if f.id == id {
			return f, true
		}
	}
	return nil, false
}

// Vitals reports a fighter's health percentage and stamina.
func (w *World) Vitals(id string) (healthPercent, stamina float64, ok bool) {
	f, ok := w.Fighter(id)
	if !ok {
		return 0, 0, false
	}
	return f.HealthPercent(), f.stamina, true
}

// Tick advances the world by dt: every standing fighter plans and acts,
// steps toward its nearest opponent, advances its clip, and sweeps its
// hitbox. It reports whether the duel is over.
func (w *World) Tick(dt time.Duration) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return true, ErrWorldClosed
	}
	if w.over {
		return true, nil
	}
	w.elapsed += dt

	for _, f := range w.fighters {
		if !f.Valid() {
			continue
		}
		w.steer(f, dt)
		sit := combatant.BuildSituation(combatant.Movement{
			OnGround:      true,
			Velocity:      f.velocity,
			Stamina:       f.stamina,
			HealthPercent: f.HealthPercent(),
		}, f.defense, w.running)
		if _, err := f.exec.Tick(sit); err != nil {
			return false, fmt.Errorf("sim.World.Tick: fighter %q: %w", f.id, err)
		}
	}
	for _, f := range w.fighters {
		if f.Valid() {
			f.animator.Advance(dt)
		}
	}
	for _, f := range w.fighters {
		for _, target := range f.hits.Sweep(w.fighters) {
			w.strike(f, target)
		}
	}
	for _, f := range w.fighters {
		if f.Valid() {
			f.recover(StaminaRegen * dt.Seconds())
		}
	}
	w.settle()
	return w.over, nil
}

// steer turns f toward its nearest opponent at TurnRate and, while f is
// idle, roughly facing it and out of engagement distance, walks toward it.
func (w *World) steer(f *Fighter, dt time.Duration) {
	f.velocity = geom.Vec3{}
	near := w.nearest(f)
	if near == nil {
		return
	}
	target := near.pose.Location
	maxTurn := TurnRate * dt.Seconds()
	// Sub-nanodegree errors from the trig round-trip are not worth a turn.
	if turn := geom.SignedAngle(f.pose, target); math.Abs(turn) > 1e-9 {
		turn = math.Max(-maxTurn, math.Min(maxTurn, turn))
		f.pose.Yaw = normalizeYaw(f.pose.Yaw + turn)
	}

	to := target.Sub(f.pose.Location)
	dist := to.Len2D()
	if f.core.Busy() || dist <= EngageDistance || !geom.IsFacing(f.pose, target, WalkFacingTolerance) {
		return
	}
	step := min(WalkSpeed*dt.Seconds(), dist-EngageDistance)
	dir := geom.Vec3{X: to.X, Y: to.Y}.Normalize()
	f.velocity = dir.Scale(WalkSpeed)
	f.pose.Location = f.pose.Location.Add(dir.Scale(step))
}

// normalizeYaw wraps yaw into (-180, 180].
func normalizeYaw(yaw float64) float64 {
	yaw = math.Mod(yaw, 360)
	switch {
	case yaw > 180:
		yaw -= 360
	case yaw <= -180:
		yaw += 360
	}
	return yaw
}

func (w *World) nearest(f *Fighter) *Fighter {
	var best *Fighter
	bestDist := math.Inf(1)
	for _, o := range w.fighters {
		if o == f || !o.Valid() {
			continue
		}
		if d := geom.Dist(f.pose.Location, o.pose.Location); d < bestDist {
			best, bestDist = o, d
		}
	}
	return best
}

// strike resolves attacker's armed hitbox reaching defender: an open
// defense window blocks it; otherwise damage is applied and the defender
// plays a hit reaction.
func (w *World) strike(attacker, defender *Fighter) {
	entry := attacker.hits.Entry()
	hitbox := attacker.hits.hitbox
	if hitbox == nil {
		return
	}
	if defender.defense.IsDefenseWindowOpen() {
		if err := defender.defense.TryDefense(); err == nil {
			w.logger.Debug("strike blocked", zap.String("attacker", attacker.id), zap.String("defender", defender.id), zap.String("entry", entry.Name))
			return
		}
	}
	dmg := hitbox.Damage
	attacker.core.ReportHit(defender, dmg)
	fell := defender.damage(dmg)
	w.logger.Debug("strike landed",
		zap.String("attacker", attacker.id),
		zap.String("defender", defender.id),
		zap.String("entry", entry.Name),
		zap.Float64("damage", dmg),
		zap.Float64("health", defender.health),
	)
	if fell {
		if clip, ok := defender.animator.ActiveClip(); ok {
			defender.animator.Stop(clip, 0)
		}
		w.logger.Info("fighter defeated", zap.String("fighter", defender.id), zap.String("by", attacker.id))
		return
	}
	defender.responder.React(defender, reaction.Impact{
		Locator: locatorFor(entry),
		Point:   attacker.pose.Location,
	}, severityFor(dmg))
}

// settle ends the duel once at most one fighter stands.
func (w *World) settle() {
	var standing []*Fighter
	for _, f := range w.fighters {
		if f.Valid() {
			standing = append(standing, f)
		}
	}
	if len(standing) > 1 {
		return
	}
	w.over = true
	if len(standing) == 1 {
		w.winner = standing[0].id
	}
	w.logger.Info("duel over", zap.String("winner", w.winner), zap.Duration("elapsed", w.elapsed))
}

func (w *World) onActionStarted(ev eventbus.Event) {
	if ev.Attacker == nil {
		return
	}
	if f, ok := w.Fighter(ev.Attacker.ID()); ok {
		f.spend(AttackStaminaCost)
		f.hits.newSwing()
	}
}

// onParrySucceeded deflects the rest of the attacker's swing off the defender.
func (w *World) onParrySucceeded(ev eventbus.Event) {
	if ev.Attacker == nil || ev.Defender == nil {
		return
	}
	if f, ok := w.Fighter(ev.Attacker.ID()); ok {
		f.hits.Deflect(ev.Defender.ID())
	}
}

// onHitLanded releases fighters bracing against the struck defender's own
// swing, which the hit reaction interrupts.
func (w *World) onHitLanded(ev eventbus.Event) {
	if ev.Defender == nil {
		return
	}
	for _, f := range w.fighters {
		f.exec.Disengage(ev.Defender.ID())
	}
}

// onSwingEnded releases fighters the finished swing never reached.
func (w *World) onSwingEnded(attacker *Fighter, struck map[string]bool) {
	for _, f := range w.fighters {
		if f != attacker && !struck[f.id] {
			f.exec.Disengage(attacker.id)
		}
	}
}

// Reload rebinds every fighter to the tables, reaction tables and AI
// domains of b. Clip libraries are not reloaded.
//
// Postcondition: on error fighters processed before the failure keep the
// new content; the rest keep the old.
func (w *World) Reload(b *content.Bundle) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWorldClosed
	}
	for _, f := range w.fighters {
		attacks, defenses, err := b.Catalogs(f.loadout)
		if err != nil {
			return fmt.Errorf("sim.World.Reload: fighter %q: %w", f.id, err)
		}
		replaceSets(f.core.Catalog(), attacks)
		replaceSets(f.defense.Catalog(), defenses)
		if key := f.core.ActiveKey(); key != "" {
			_ = f.core.ActivateSet(key)
		}
		if key := f.defense.ActiveKey(); key != "" {
			_ = f.defense.SetActiveSet(key)
		}
		f.responder.SetTable(b.Reaction(f.loadout))
		if domain := b.Domain(f.loadout); domain != nil {
			f.exec.SetPlanner(ai.NewPlanner(domain, w.deps.Scripts, domain.ID))
		}
	}
	w.deps.Bundle = b
	w.logger.Info("world content reloaded")
	return nil
}

func replaceSets(dst, src *core.Catalog) {
	for _, k := range src.Keys() {
		if s, ok := src.Get(k); ok {
			dst.Replace(s)
		}
	}
}

// Report summarizes the world.
func (w *World) Report() Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	r := Report{World: w.id, Elapsed: w.elapsed, Over: w.over, Winner: w.winner}
	for _, f := range w.fighters {
		fr := FighterReport{ID: f.id, Health: f.health, Stamina: f.stamina}
		fr.Clip, _ = f.animator.ActiveClip()
		if e, ok := f.core.Current(); ok {
			fr.Entry = e.Name
		}
		r.Fighters = append(r.Fighters, fr)
	}
	return r
}

// Close tears down every fighter and disposes of the world's bus.
func (w *World) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.teardown()
	w.logger.Info("world closed")
}

func (w *World) teardown() {
	for _, s := range w.subs {
		w.bus.Unsubscribe(s)
	}
	w.subs = nil
	for _, f := range w.fighters {
		f.close()
	}
	w.deps.Buses.Dispose(w.id)
}

// arenaView is the targeting view of one fighter: every other standing
// fighter of the world.
type arenaView struct {
	world *World
	self  *Fighter
}

// Targets returns the other standing fighters.
func (v *arenaView) Targets() []combatant.Actor {
	out := make([]combatant.Actor, 0, len(v.world.fighters))
	for _, f := range v.world.fighters {
		if f != v.self && f.Valid() {
			out = append(out, f)
		}
	}
	return out
}

// Closest returns the nearest other standing fighter within maxRange of from, or nil.
func (v *arenaView) Closest(from geom.Vec3, maxRange float64) combatant.Actor {
	var best combatant.Actor
	bestDist := math.Inf(1)
	for _, t := range v.Targets() {
		if d := geom.Dist(from, t.Transform().Location); d <= maxRange && d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}
